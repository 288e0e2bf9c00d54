package flac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBytesPerSample(t *testing.T) {
	testCases := []struct {
		bps      int
		expected int
	}{
		{8, 1}, {12, 2}, {16, 2}, {20, 3}, {24, 3}, {32, 4},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, bytesPerSample(tc.bps))
	}
}

func TestPCMFormatterInterleaving(t *testing.T) {
	var f PCMFormatter
	subframes := []*Subframe{
		{Samples: []int32{1, 2}},
		{Samples: []int32{10, 20}},
	}
	out := f.Format(subframes, 8)
	assert.Equal(t, []byte{1, 10, 2, 20}, out)
}

func TestPCMFormatterNegativeSamples16Bit(t *testing.T) {
	var f PCMFormatter
	subframes := []*Subframe{{Samples: []int32{-1}}}
	out := f.Format(subframes, 16)
	assert.Equal(t, []byte{0xFF, 0xFF}, out)
}

func TestPCMFormatterReusesBuffer(t *testing.T) {
	var f PCMFormatter
	subframes := []*Subframe{{Samples: []int32{1, 2, 3, 4}}}
	big := f.Format(subframes, 16)
	assert.Len(t, big, 8)
	bigCap := cap(f.buf)

	subframes2 := []*Subframe{{Samples: []int32{1}}}
	small := f.Format(subframes2, 16)
	assert.Len(t, small, 2)
	assert.Equal(t, bigCap, cap(f.buf), "buffer should not shrink its capacity")
}

func TestPCMFormatter24Bit(t *testing.T) {
	var f PCMFormatter
	subframes := []*Subframe{{Samples: []int32{0x010203}}}
	out := f.Format(subframes, 24)
	assert.Equal(t, []byte{0x03, 0x02, 0x01}, out)
}
