package flac

import "sync"

// Intent is returned by Processor.OnPCM to signal whether the driver should
// keep decoding. Spec §5 allows a processor to terminate the decode loop by
// "returning a negative intent"; Abort is that intent.
type Intent int

const (
	Continue Intent = iota
	Abort
)

// Processor is the structural callback contract of spec §6: onStreamInfo is
// fired once, synchronously, when Stream.Decode starts; onPCM fires
// once per decoded frame with a borrowed view of interleaved PCM bytes valid
// only until the call returns.
type Processor interface {
	OnStreamInfo(info StreamInfo)
	OnPCM(pcm []byte) Intent
}

// processorRegistry is the "only concurrent touch point" spec §5 describes:
// concurrent add/remove/fire under a snapshot-and-release pattern, so a
// processor registering or unregistering mid-fan-out never disturbs the
// current dispatch (spec §9 design note).
type processorRegistry struct {
	mu         sync.RWMutex
	processors []Processor
}

func (r *processorRegistry) add(p Processor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processors = append(r.processors, p)
}

func (r *processorRegistry) remove(p Processor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, q := range r.processors {
		if q == p {
			r.processors = append(r.processors[:i], r.processors[i+1:]...)
			return
		}
	}
}

func (r *processorRegistry) snapshot() []Processor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cp := make([]Processor, len(r.processors))
	copy(cp, r.processors)
	return cp
}

func (r *processorRegistry) fireStreamInfo(info StreamInfo) {
	for _, p := range r.snapshot() {
		p.OnStreamInfo(info)
	}
}

// firePCM dispatches to every registered processor and returns Abort if any
// one of them asked to stop. Ordering across processors is unspecified
// (spec §5).
func (r *processorRegistry) firePCM(pcm []byte) Intent {
	intent := Continue
	for _, p := range r.snapshot() {
		if p.OnPCM(pcm) == Abort {
			intent = Abort
		}
	}
	return intent
}
