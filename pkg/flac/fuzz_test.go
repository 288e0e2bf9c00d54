package flac

import (
	"bytes"
	"testing"
)

// FuzzReadUIntRoundTrip checks that any value written at a given bit width
// comes back unchanged, across byte-boundary-crossing widths.
func FuzzReadUIntRoundTrip(f *testing.F) {
	f.Add(uint32(0), uint(1))
	f.Add(uint32(0xFFFFFFFF), uint(32))
	f.Add(uint32(0x5A5A), uint(17))
	f.Add(uint32(1), uint(1))

	f.Fuzz(func(t *testing.T, v uint32, n uint) {
		n = n%32 + 1 // clamp to [1, 32]
		if n < 32 {
			v &= (1 << n) - 1
		}

		var w bitWriter
		w.writeBits(v, n)
		br := NewBitReader(bytes.NewReader(w.bytes()))
		got, err := br.ReadUInt(n)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != v {
			t.Fatalf("round trip mismatch: wrote %d (%d bits), got %d", v, n, got)
		}
	})
}

// FuzzDecodeFrameNeverPanics feeds arbitrary bytes at decodeFrame and
// requires that malformed input always surfaces as an error, never a panic
// or an infinite loop (spec §7's error-over-crash policy).
func FuzzDecodeFrameNeverPanics(f *testing.F) {
	valid := buildFixedMonoFrameBytesForFuzz()
	f.Add(valid)
	f.Add([]byte{0xFF, 0xF8, 0x00, 0x00})
	f.Add([]byte{})
	f.Add(bytes.Repeat([]byte{0xFF}, 64))

	f.Fuzz(func(t *testing.T, data []byte) {
		br := NewBitReader(bytes.NewReader(data))
		scratch := make([]int32, 65536)
		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("decodeFrame panicked on input %x: %v", data, r)
			}
		}()
		_, _ = decodeFrame(br, 44100, 16, scratch)
	})
}

// buildFixedMonoFrameBytesForFuzz mirrors buildFixedMonoFrame without needing
// a *testing.T, so it can seed the corpus.
func buildFixedMonoFrameBytesForFuzz() []byte {
	var header bitWriter
	header.writeBits(0x3FFE, 14)
	header.writeBits(0, 1)
	header.writeBits(0, 1)
	header.writeBits(6, 4)
	header.writeBits(0, 4)
	header.writeBits(0, 4)
	header.writeBits(1, 3)
	header.writeBits(0, 1)
	header.writeBits(0, 8)
	header.writeBits(3, 8)
	headerBytes := header.bytes()

	gotCRC8 := crc8Bytes(headerBytes)

	var body bitWriter
	body.writeBits(0, 1)
	body.writeBits(8, 6)
	body.writeBits(0, 1)
	body.writeBits(0, 2)
	body.writeBits(0, 4)
	body.writeBits(0, 4)
	for i := 0; i < 4; i++ {
		body.writeBits(0b1, 1)
	}
	body.writeBits(0, 2)
	bodyBytes := body.bytes()

	all := append(append([]byte{}, headerBytes...), gotCRC8)
	all = append(all, bodyBytes...)
	gotCRC16 := crc16Bytes(all)

	var footer bitWriter
	footer.writeBits(uint32(gotCRC16), 16)
	return append(all, footer.bytes()...)
}
