package flac

import "encoding/binary"

// bytesPerSample rounds bitsPerSample up to the nearest whole byte width, as
// spec §4.I requires (8/16/24/32).
func bytesPerSample(bitsPerSample int) int {
	switch {
	case bitsPerSample <= 8:
		return 1
	case bitsPerSample <= 16:
		return 2
	case bitsPerSample <= 24:
		return 3
	default:
		return 4
	}
}

// PCMFormatter packs reconstructed per-channel int samples into interleaved
// little-endian bytes. Its internal buffer is grown to fit the largest
// frame seen and never shrunk, matching the buffer-growth policy of spec §5.
type PCMFormatter struct {
	buf []byte
}

// Format interleaves subframes' samples at the given bits-per-sample width
// and returns a borrowed view into the formatter's internal buffer, valid
// until the next call to Format.
func (f *PCMFormatter) Format(subframes []*Subframe, bitsPerSample int) []byte {
	if len(subframes) == 0 {
		return nil
	}
	nSamples := len(subframes[0].Samples)
	channels := len(subframes)
	width := bytesPerSample(bitsPerSample)
	need := nSamples * channels * width

	if cap(f.buf) < need {
		f.buf = make([]byte, need)
	} else {
		f.buf = f.buf[:need]
	}

	pos := 0
	for i := 0; i < nSamples; i++ {
		for c := 0; c < channels; c++ {
			v := uint32(subframes[c].Samples[i])
			switch width {
			case 1:
				f.buf[pos] = byte(v)
			case 2:
				binary.LittleEndian.PutUint16(f.buf[pos:], uint16(v))
			case 3:
				f.buf[pos] = byte(v)
				f.buf[pos+1] = byte(v >> 8)
				f.buf[pos+2] = byte(v >> 16)
			case 4:
				binary.LittleEndian.PutUint32(f.buf[pos:], v)
			}
			pos += width
		}
	}
	return f.buf
}
