package flac

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type countingProcessor struct {
	mu    sync.Mutex
	calls int
}

func (c *countingProcessor) OnStreamInfo(StreamInfo) {}
func (c *countingProcessor) OnPCM([]byte) Intent {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return Continue
}

func TestProcessorRegistryFireStreamInfo(t *testing.T) {
	var reg processorRegistry
	var got StreamInfo
	p := &funcProcessor{onInfo: func(si StreamInfo) { got = si }}
	reg.add(p)
	reg.fireStreamInfo(StreamInfo{SampleRate: 48000})
	assert.Equal(t, uint32(48000), got.SampleRate)
}

func TestProcessorRegistryFirePCMAbort(t *testing.T) {
	var reg processorRegistry
	reg.add(&funcProcessor{onPCM: func([]byte) Intent { return Continue }})
	reg.add(&funcProcessor{onPCM: func([]byte) Intent { return Abort }})
	assert.Equal(t, Abort, reg.firePCM(nil))
}

func TestProcessorRegistryRemove(t *testing.T) {
	var reg processorRegistry
	p1 := &countingProcessor{}
	p2 := &countingProcessor{}
	reg.add(p1)
	reg.add(p2)
	reg.remove(p1)

	reg.firePCM(nil)
	assert.Equal(t, 0, p1.calls)
	assert.Equal(t, 1, p2.calls)
}

func TestProcessorRegistrySnapshotIsolatesMutation(t *testing.T) {
	var reg processorRegistry
	p1 := &countingProcessor{}
	reg.add(p1)

	snap := reg.snapshot()
	reg.add(&countingProcessor{})
	assert.Len(t, snap, 1, "snapshot must not see additions made after it was taken")
}

type funcProcessor struct {
	onInfo func(StreamInfo)
	onPCM  func([]byte) Intent
}

func (f *funcProcessor) OnStreamInfo(si StreamInfo) {
	if f.onInfo != nil {
		f.onInfo(si)
	}
}

func (f *funcProcessor) OnPCM(pcm []byte) Intent {
	if f.onPCM != nil {
		return f.onPCM(pcm)
	}
	return Continue
}
