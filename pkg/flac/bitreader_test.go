package flac

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadUInt(t *testing.T) {
	// 0xB5 = 1011 0101
	br := NewBitReader(bytes.NewReader([]byte{0xB5}))
	v, err := br.ReadUInt(3)
	assert.NoError(t, err)
	assert.Equal(t, uint32(0b101), v)

	v, err = br.ReadUInt(5)
	assert.NoError(t, err)
	assert.Equal(t, uint32(0b10101), v)
}

func TestReadUIntSpansBytes(t *testing.T) {
	br := NewBitReader(bytes.NewReader([]byte{0xFF, 0x00}))
	v, err := br.ReadUInt(12)
	assert.NoError(t, err)
	assert.Equal(t, uint32(0xFF0), v)
}

func TestReadIntSignExtends(t *testing.T) {
	testCases := []struct {
		desc     string
		bits     uint
		input    byte
		expected int32
	}{
		{desc: "4-bit negative", bits: 4, input: 0b1000_0000, expected: -8},
		{desc: "4-bit positive", bits: 4, input: 0b0111_0000, expected: 7},
		{desc: "8-bit -1", bits: 8, input: 0xFF, expected: -1},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			br := NewBitReader(bytes.NewReader([]byte{tc.input}))
			v, err := br.ReadInt(tc.bits)
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, v)
		})
	}
}

func TestReadUnary(t *testing.T) {
	// 0001 1010 -> 3 leading zeros then a 1
	br := NewBitReader(bytes.NewReader([]byte{0b0001_1010}))
	v, err := br.ReadUnary()
	assert.NoError(t, err)
	assert.Equal(t, uint32(3), v)
}

func TestReadUnaryAcrossByteBoundary(t *testing.T) {
	br := NewBitReader(bytes.NewReader([]byte{0x00, 0x00, 0x01}))
	v, err := br.ReadUnary()
	assert.NoError(t, err)
	assert.Equal(t, uint32(23), v)
}

func TestCRCFoldedOnlyOnFullByte(t *testing.T) {
	br := NewBitReader(bytes.NewReader([]byte{0x01, 0x02}))
	_, err := br.ReadUInt(4)
	assert.NoError(t, err)
	assert.Equal(t, uint8(0), br.CRC8(), "CRC must not update until a whole byte is consumed")

	_, err = br.ReadUInt(4)
	assert.NoError(t, err)
	assert.NotEqual(t, uint8(0), br.CRC8(), "CRC must update once 0x01 is fully consumed")
}

func TestUnexpectedEndOfInput(t *testing.T) {
	br := NewBitReader(bytes.NewReader(nil))
	_, err := br.ReadUInt(1)
	assert.Error(t, err)
	flacErr, ok := err.(*Error)
	assert.True(t, ok)
	assert.Equal(t, UnexpectedEnd, flacErr.Kind)
}

func TestDecodeUTF8Int32(t *testing.T) {
	testCases := []struct {
		desc     string
		bytes    []byte
		expected uint32
	}{
		{desc: "single byte", bytes: []byte{0x41}, expected: 0x41},
		{desc: "two byte sequence", bytes: []byte{0b1100_0001, 0b1000_0001}, expected: 0x41},
		{desc: "malformed continuation returns sentinel", bytes: []byte{0b1100_0001, 0x00}, expected: utf8Sentinel32},
		{desc: "reserved leading-one count returns sentinel", bytes: []byte{0b1000_0000, 0, 0, 0, 0}, expected: utf8Sentinel32},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			br := NewBitReader(bytes.NewReader(tc.bytes))
			v, err := br.ReadUTF8Int32()
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, v)
		})
	}
}

func TestReadByteBlockAlignedRequiresAlignment(t *testing.T) {
	br := NewBitReader(bytes.NewReader([]byte{0xFF, 0xFF}))
	_, err := br.ReadUInt(1)
	assert.NoError(t, err)

	dst := make([]byte, 1)
	err = br.ReadByteBlockAligned(dst, 1)
	assert.Error(t, err)
	flacErr, ok := err.(*Error)
	assert.True(t, ok)
	assert.Equal(t, LostSync, flacErr.Kind)
}

func TestReadRiceSignedBlock(t *testing.T) {
	// Rice parameter 0 encodes zigzag values directly in unary.
	// Values: 0, -1, 1 -> zigzag 0, 1, 2 -> unary "1", "01", "001"
	br := NewBitReader(bytes.NewReader([]byte{0b1_01_001_00}))
	dst := make([]int32, 3)
	err := br.ReadRiceSignedBlock(dst, 0, 3, 0)
	assert.NoError(t, err)
	assert.Equal(t, []int32{0, -1, 1}, dst)
}

func TestBitOffsetTracksConsumedBits(t *testing.T) {
	br := NewBitReader(bytes.NewReader([]byte{0xFF, 0xFF}))
	_, err := br.ReadUInt(5)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), br.BitOffset())
	assert.False(t, br.IsByteAligned())
	assert.Equal(t, uint(3), br.BitsLeftForByteAlignment())
}

func TestReadUIntPanicsOnOversizedWidth(t *testing.T) {
	br := NewBitReader(bytes.NewReader(nil))
	assert.Panics(t, func() { br.ReadUInt(33) })
}

var _ io.Reader = (*bytes.Reader)(nil)
