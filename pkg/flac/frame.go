package flac

// ChannelAssignment tags how the decoded channels map to left/right (spec
// Data Model). The three stereo modes always carry exactly two channels.
type ChannelAssignment int

const (
	ChannelIndependent ChannelAssignment = iota
	ChannelLeftSide
	ChannelRightSide
	ChannelMidSide
)

// FrameHeader carries everything spec.md's Data Model names for a frame
// header, after the codes in the bitstream have been resolved to values.
type FrameHeader struct {
	BlockSize        int
	SampleRate       int
	ChannelAssignment ChannelAssignment
	Channels         int
	BitsPerSample    int
	IsVariableBlockSize bool
	FrameNumber      uint64 // valid when !IsVariableBlockSize
	SampleNumber     uint64 // valid when IsVariableBlockSize
}

// Frame is a fully decoded FLAC frame: header plus one reconstructed,
// decorrelated Subframe per channel.
type Frame struct {
	Header    FrameHeader
	Subframes []*Subframe
}

var fixedBlockSizeTable = [16]int{
	0, 192, 576, 1152, 2304, 4608, 0, 0,
	256, 512, 1024, 2048, 4096, 8192, 16384, 32768,
}

var fixedSampleRateTable = [12]int{
	0, 88200, 176400, 192000, 8000, 16000, 22050, 24000, 32000, 44100, 48000, 96000,
}

// decodeFrameHeader parses the frame header (spec §4.F steps 1-6) and
// verifies its CRC-8 (step 7). streamSampleRate and streamBps back-fill the
// "get from STREAMINFO" codes.
func decodeFrameHeader(br *BitReader, streamSampleRate, streamBps int) (FrameHeader, error) {
	br.ResetCRC8(0)

	sync, err := br.ReadUInt(14)
	if err != nil {
		return FrameHeader{}, err
	}
	if sync != 0x3FFE {
		return FrameHeader{}, newErr(LostSync, br.BitOffset(), "bad frame sync code")
	}
	reserved1, err := br.ReadUInt(1)
	if err != nil {
		return FrameHeader{}, err
	}
	if reserved1 != 0 {
		return FrameHeader{}, newErr(LostSync, br.BitOffset(), "nonzero reserved frame bit")
	}
	blockingStrategy, err := br.ReadUInt(1)
	if err != nil {
		return FrameHeader{}, err
	}

	return decodeFrameHeaderBody(br, blockingStrategy, streamSampleRate, streamBps)
}

// decodeFrameHeaderBody parses everything after the sync/reserved/blocking
// bits. It is split out of decodeFrameHeader so the resync routine in
// flac.go can resume header parsing once it has located a sync pattern
// byte-by-byte, without re-deriving the rest of the header logic.
func decodeFrameHeaderBody(br *BitReader, blockingStrategy uint32, streamSampleRate, streamBps int) (FrameHeader, error) {
	blockSizeCode, err := br.ReadUInt(4)
	if err != nil {
		return FrameHeader{}, err
	}
	sampleRateCode, err := br.ReadUInt(4)
	if err != nil {
		return FrameHeader{}, err
	}
	channelCode, err := br.ReadUInt(4)
	if err != nil {
		return FrameHeader{}, err
	}
	sampleSizeCode, err := br.ReadUInt(3)
	if err != nil {
		return FrameHeader{}, err
	}
	reserved2, err := br.ReadUInt(1)
	if err != nil {
		return FrameHeader{}, err
	}
	if reserved2 != 0 {
		return FrameHeader{}, newErr(LostSync, br.BitOffset(), "nonzero reserved frame bit")
	}

	var hdr FrameHeader
	hdr.IsVariableBlockSize = blockingStrategy == 1

	if hdr.IsVariableBlockSize {
		sampleNumber, err := br.ReadUTF8Int64()
		if err != nil {
			return FrameHeader{}, err
		}
		if sampleNumber == utf8Sentinel36 {
			return FrameHeader{}, newErr(LostSync, br.BitOffset(), "malformed UTF-8 sample number")
		}
		hdr.SampleNumber = sampleNumber
	} else {
		frameNumber, err := br.ReadUTF8Int32()
		if err != nil {
			return FrameHeader{}, err
		}
		if frameNumber == utf8Sentinel32 {
			return FrameHeader{}, newErr(LostSync, br.BitOffset(), "malformed UTF-8 frame number")
		}
		hdr.FrameNumber = uint64(frameNumber)
	}

	switch {
	case blockSizeCode == 0:
		return FrameHeader{}, newErr(LostSync, br.BitOffset(), "reserved block size code")
	case blockSizeCode == 6:
		v, err := br.ReadUInt(8)
		if err != nil {
			return FrameHeader{}, err
		}
		hdr.BlockSize = int(v) + 1
	case blockSizeCode == 7:
		v, err := br.ReadUInt(16)
		if err != nil {
			return FrameHeader{}, err
		}
		hdr.BlockSize = int(v) + 1
	default:
		hdr.BlockSize = fixedBlockSizeTable[blockSizeCode]
	}

	switch {
	case sampleRateCode == 0:
		hdr.SampleRate = streamSampleRate
	case sampleRateCode == 12:
		v, err := br.ReadUInt(8)
		if err != nil {
			return FrameHeader{}, err
		}
		hdr.SampleRate = int(v) * 1000
	case sampleRateCode == 13:
		v, err := br.ReadUInt(16)
		if err != nil {
			return FrameHeader{}, err
		}
		hdr.SampleRate = int(v)
	case sampleRateCode == 14:
		v, err := br.ReadUInt(16)
		if err != nil {
			return FrameHeader{}, err
		}
		hdr.SampleRate = int(v) * 10
	case sampleRateCode == 15:
		return FrameHeader{}, newErr(LostSync, br.BitOffset(), "reserved sample rate code")
	default:
		hdr.SampleRate = fixedSampleRateTable[sampleRateCode]
	}

	switch {
	case channelCode <= 7:
		hdr.ChannelAssignment = ChannelIndependent
		hdr.Channels = int(channelCode) + 1
	case channelCode == 8:
		hdr.ChannelAssignment = ChannelLeftSide
		hdr.Channels = 2
	case channelCode == 9:
		hdr.ChannelAssignment = ChannelRightSide
		hdr.Channels = 2
	case channelCode == 10:
		hdr.ChannelAssignment = ChannelMidSide
		hdr.Channels = 2
	default:
		return FrameHeader{}, newErr(LostSync, br.BitOffset(), "reserved channel assignment")
	}

	switch sampleSizeCode {
	case 0:
		hdr.BitsPerSample = streamBps
	case 1:
		hdr.BitsPerSample = 8
	case 2:
		hdr.BitsPerSample = 12
	case 3:
		return FrameHeader{}, newErr(LostSync, br.BitOffset(), "reserved sample size code")
	case 4:
		hdr.BitsPerSample = 16
	case 5:
		hdr.BitsPerSample = 20
	case 6:
		hdr.BitsPerSample = 24
	case 7:
		hdr.BitsPerSample = 32
	}

	gotCRC8 := br.CRC8()
	wantCRC8, err := br.ReadUInt(8)
	if err != nil {
		return FrameHeader{}, err
	}
	if uint8(wantCRC8) != gotCRC8 {
		return FrameHeader{}, newErr(BadHeaderCRC, br.BitOffset(), "frame header CRC-8 mismatch")
	}

	return hdr, nil
}

// sideChannelBonusChannel returns which of the two channels (0 or 1) carries the
// extra bit of a stereo side channel, or -1 for independent channels.
func sideChannelBonusChannel(ca ChannelAssignment) int {
	switch ca {
	case ChannelLeftSide:
		return 1
	case ChannelRightSide:
		return 0
	case ChannelMidSide:
		return 1
	default:
		return -1
	}
}

// decodeFrame reads and fully reconstructs one frame, including footer CRC
// verification and channel decorrelation (spec §4.F steps 8-11).
func decodeFrame(br *BitReader, streamSampleRate, streamBps int, scratch []int32) (*Frame, error) {
	br.ResetCRC16(0)

	hdr, err := decodeFrameHeader(br, streamSampleRate, streamBps)
	if err != nil {
		return nil, err
	}
	return finishFrame(br, hdr, scratch)
}

// finishFrame decodes every subframe and the footer once the header is
// already in hand (steps 8-11). Shared by decodeFrame and the resync path in
// flac.go, which derives hdr by hand after locating a sync pattern.
func finishFrame(br *BitReader, hdr FrameHeader, scratch []int32) (*Frame, error) {
	bonusChannel := sideChannelBonusChannel(hdr.ChannelAssignment)
	subframes := make([]*Subframe, hdr.Channels)
	for c := 0; c < hdr.Channels; c++ {
		bonus := 0
		if c == bonusChannel {
			bonus = 1
		}
		sf, err := decodeSubframe(br, hdr.BlockSize, hdr.BitsPerSample, bonus, scratch)
		if err != nil {
			return nil, err
		}
		subframes[c] = sf
	}

	if pad := br.BitsLeftForByteAlignment(); pad > 0 {
		if _, err := br.ReadUInt(pad); err != nil {
			return nil, err
		}
	}

	gotCRC16 := br.CRC16()
	wantCRC16, err := br.ReadUInt(16)
	if err != nil {
		return nil, err
	}
	if uint16(wantCRC16) != gotCRC16 {
		return nil, newErr(BadFrameCRC, br.BitOffset(), "frame footer CRC-16 mismatch")
	}

	applyDecorrelation(hdr.ChannelAssignment, subframes)

	return &Frame{Header: hdr, Subframes: subframes}, nil
}

// applyDecorrelation reverses the frame's stereo decorrelation in place
// (spec §4.F step 11).
func applyDecorrelation(ca ChannelAssignment, subframes []*Subframe) {
	if ca == ChannelIndependent {
		return
	}
	left := subframes[0].Samples
	right := subframes[1].Samples

	switch ca {
	case ChannelLeftSide:
		for i := range left {
			side := right[i]
			right[i] = left[i] - side
		}
	case ChannelRightSide:
		for i := range right {
			side := left[i]
			left[i] = right[i] + side
		}
	case ChannelMidSide:
		for i := range left {
			mid := left[i]
			side := right[i]
			mid = (mid << 1) | (side & 1)
			left[i] = (mid + side) >> 1
			right[i] = (mid - side) >> 1
		}
	}
}
