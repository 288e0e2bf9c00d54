package flac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpdateCRC8(t *testing.T) {
	testCases := []struct {
		desc     string
		seed     uint8
		bytes    []byte
		expected uint8
	}{
		{desc: "single zero byte", seed: 0, bytes: []byte{0x00}, expected: 0x00},
		{desc: "single byte 0x01", seed: 0, bytes: []byte{0x01}, expected: 0x07},
		{desc: "empty input leaves seed unchanged", seed: 0x42, bytes: nil, expected: 0x42},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			crc := tc.seed
			for _, b := range tc.bytes {
				crc = updateCRC8(crc, b)
			}
			assert.Equal(t, tc.expected, crc)
		})
	}
}

func TestUpdateCRC16(t *testing.T) {
	crc := uint16(0)
	for _, b := range []byte("123456789") {
		crc = updateCRC16(crc, b)
	}
	assert.Equal(t, uint16(0xFEE8), crc, "CRC-16/FLAC of the standard check string \"123456789\"")
}

func TestCRC8OfCheckString(t *testing.T) {
	crc := uint8(0)
	for _, b := range []byte("123456789") {
		crc = updateCRC8(crc, b)
	}
	assert.Equal(t, uint8(0xF4), crc, "CRC-8/FLAC of the standard check string \"123456789\"")
}
