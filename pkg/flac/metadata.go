package flac

import "encoding/binary"

// Metadata block type codes (spec §4.G).
const (
	blockTypeStreamInfo    = 0
	blockTypePadding       = 1
	blockTypeApplication   = 2
	blockTypeSeekTable     = 3
	blockTypeVorbisComment = 4
	blockTypeCueSheet      = 5
	blockTypePicture       = 6
)

// StreamInfo is the mandatory, first metadata block (spec Data Model). Once
// parsed it is immutable for the stream's lifetime. Field names mirror the
// teacher's own usage of a decoded FLAC stream's info block in
// cmd/convert.go (NChannels, SampleRate, BitsPerSample).
type StreamInfo struct {
	MinBlockSize  uint16
	MaxBlockSize  uint16
	MinFrameSize  uint32
	MaxFrameSize  uint32
	SampleRate    uint32
	NChannels     uint8
	BitsPerSample uint8
	SampleCount   uint64
	MD5sum        [16]byte
}

// VorbisComment is the optional tag/value metadata block (spec §4.G,
// SPEC_FULL supplement #3): a free-form vendor string plus key=value pairs.
type VorbisComment struct {
	Vendor   string
	Comments []string
}

type metaBlockHeader struct {
	isLast    bool
	blockType uint32
	length    uint32
}

func readMetaBlockHeader(br *BitReader) (metaBlockHeader, error) {
	last, err := br.ReadUInt(1)
	if err != nil {
		return metaBlockHeader{}, err
	}
	typ, err := br.ReadUInt(7)
	if err != nil {
		return metaBlockHeader{}, err
	}
	length, err := br.ReadUInt(24)
	if err != nil {
		return metaBlockHeader{}, err
	}
	return metaBlockHeader{isLast: last == 1, blockType: typ, length: length}, nil
}

func parseStreamInfo(br *BitReader, length uint32) (StreamInfo, error) {
	if length != 34 {
		return StreamInfo{}, newErr(BadMetadata, br.BitOffset(), "STREAMINFO block has wrong length")
	}
	var si StreamInfo

	minBlock, err := br.ReadUInt(16)
	if err != nil {
		return StreamInfo{}, err
	}
	maxBlock, err := br.ReadUInt(16)
	if err != nil {
		return StreamInfo{}, err
	}
	minFrame, err := br.ReadUInt(24)
	if err != nil {
		return StreamInfo{}, err
	}
	maxFrame, err := br.ReadUInt(24)
	if err != nil {
		return StreamInfo{}, err
	}
	sampleRate, err := br.ReadUInt(20)
	if err != nil {
		return StreamInfo{}, err
	}
	channels, err := br.ReadUInt(3)
	if err != nil {
		return StreamInfo{}, err
	}
	bps, err := br.ReadUInt(5)
	if err != nil {
		return StreamInfo{}, err
	}
	totalSamples, err := br.ReadULong(36)
	if err != nil {
		return StreamInfo{}, err
	}

	si.MinBlockSize = uint16(minBlock)
	si.MaxBlockSize = uint16(maxBlock)
	si.MinFrameSize = minFrame
	si.MaxFrameSize = maxFrame
	si.SampleRate = sampleRate
	si.NChannels = uint8(channels) + 1
	si.BitsPerSample = uint8(bps) + 1
	si.SampleCount = totalSamples

	if err := br.ReadByteBlockAligned(si.MD5sum[:], 16); err != nil {
		return StreamInfo{}, err
	}

	if sampleRate == 0 || sampleRate > 655350 {
		return StreamInfo{}, newErr(BadMetadata, br.BitOffset(), "sample rate out of range")
	}
	if si.NChannels == 0 || si.NChannels > 8 {
		return StreamInfo{}, newErr(BadMetadata, br.BitOffset(), "channel count out of range")
	}

	return si, nil
}

func skipMetaBlock(br *BitReader, length uint32) error {
	buf := make([]byte, length)
	return br.ReadByteBlockAligned(buf, int(length))
}

func parseVorbisComment(br *BitReader, length uint32) (VorbisComment, error) {
	buf := make([]byte, length)
	if err := br.ReadByteBlockAligned(buf, int(length)); err != nil {
		return VorbisComment{}, err
	}
	if len(buf) < 4 {
		return VorbisComment{}, newErr(BadMetadata, br.BitOffset(), "VORBIS_COMMENT block too short")
	}

	readField := func(b []byte) (string, []byte, bool) {
		if len(b) < 4 {
			return "", nil, false
		}
		n := binary.LittleEndian.Uint32(b)
		b = b[4:]
		if uint64(n) > uint64(len(b)) {
			return "", nil, false
		}
		return string(b[:n]), b[n:], true
	}

	vendor, rest, ok := readField(buf)
	if !ok {
		return VorbisComment{}, newErr(BadMetadata, br.BitOffset(), "malformed VORBIS_COMMENT vendor field")
	}
	vc := VorbisComment{Vendor: vendor}

	if len(rest) < 4 {
		return VorbisComment{}, newErr(BadMetadata, br.BitOffset(), "VORBIS_COMMENT missing comment count")
	}
	count := binary.LittleEndian.Uint32(rest)
	rest = rest[4:]

	for i := uint32(0); i < count; i++ {
		var comment string
		var ok bool
		comment, rest, ok = readField(rest)
		if !ok {
			return VorbisComment{}, newErr(BadMetadata, br.BitOffset(), "malformed VORBIS_COMMENT entry")
		}
		vc.Comments = append(vc.Comments, comment)
	}

	return vc, nil
}
