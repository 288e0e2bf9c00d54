/*
Package flac decodes a FLAC (Free Lossless Audio Codec) bitstream into
linear PCM samples bit-identical to whatever a conforming encoder produced.

The package implements the decode pipeline only: stream synchronization,
metadata parsing, frame parsing, Rice-coded residual decoding, fixed/LPC
signal restoration, inter-channel decorrelation, and CRC verification. It
does not encode, resample, mix, or perform network I/O; the byte-oriented
input source and any audio-playback sink are the caller's responsibility.

A typical pull-style consumer:

	s, err := flac.Open("song.flac")
	if err != nil {
		// handle err
	}
	defer s.Close()
	for {
		frame, err := s.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			// handle err
		}
		// frame.Subframes[c].Samples holds channel c's reconstructed samples
	}

A push-style consumer registers one or more Processors and calls Decode:

	s, _ := flac.Open("song.flac")
	s.RegisterProcessor(myProcessor)
	err := s.Decode()
*/
package flac

import (
	"crypto/md5"
	"hash"
	"io"
	"os"
)

// driverState names the states of the Stream Driver (spec §4.H). Open/New
// drive SearchForMetadata through ReadMetadata eagerly; ParseNext/Decode
// drive SearchForFrameSync through ReadFrame thereafter.
type driverState int

const (
	stateSearchForMetadata driverState = iota
	stateReadMetadata
	stateSearchForFrameSync
	stateReadFrame
	stateEndOfStream
	stateAborted
)

// Stream is a single FLAC bitstream being decoded. It owns the bit reader,
// the per-channel residual scratch buffer, and the PCM staging buffer; the
// caller retains ownership of the underlying byte source.
type Stream struct {
	br     *BitReader
	closer io.Closer

	info           StreamInfo
	vorbisComments []VorbisComment

	state driverState

	scratch   []int32
	formatter PCMFormatter

	processors processorRegistry

	md5sum    hash.Hash
	VerifyMD5 bool

	// ContinueOnFrameError makes ParseNext/Decode resync past a recoverable
	// error (LostSync, BadHeaderCRC, BadFrameCRC) instead of returning it,
	// per spec §7's policy and SPEC_FULL supplement #4.
	ContinueOnFrameError bool

	samplesDecoded uint64
}

// Open validates the "fLaC" signature of the named file and parses its
// metadata blocks, returning a Stream ready to decode frames. The caller
// must Close the returned Stream.
func Open(path string) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapErr(IoError, 0, "opening FLAC file", err)
	}
	s, err := New(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	s.closer = f
	return s, nil
}

// New validates the "fLaC" signature of r and parses its metadata blocks,
// returning a Stream ready to decode frames.
func New(r io.Reader) (*Stream, error) {
	br := NewBitReader(r)
	s := &Stream{
		br:        br,
		VerifyMD5: true,
		md5sum:    md5.New(),
		state:     stateSearchForMetadata,
	}

	var magic [4]byte
	if err := br.ReadByteBlockAligned(magic[:], 4); err != nil {
		return nil, err
	}
	if string(magic[:]) != "fLaC" {
		return nil, newErr(BadMagic, br.BitOffset(), "missing fLaC stream marker")
	}

	s.state = stateReadMetadata
	if err := s.parseMetadata(); err != nil {
		return nil, err
	}
	s.state = stateSearchForFrameSync

	s.scratch = make([]int32, s.info.MaxBlockSize)
	return s, nil
}

// parseMetadata reads metadata blocks until the last-block flag is set
// (spec §4.G). STREAMINFO is mandatory and must be first; VORBIS_COMMENT is
// collected; everything else is skipped by length.
func (s *Stream) parseMetadata() error {
	isFirst := true
	for {
		hdr, err := readMetaBlockHeader(s.br)
		if err != nil {
			return err
		}
		if isFirst && hdr.blockType != blockTypeStreamInfo {
			return newErr(BadMetadata, s.br.BitOffset(), "first metadata block is not STREAMINFO")
		}
		isFirst = false

		switch hdr.blockType {
		case blockTypeStreamInfo:
			si, err := parseStreamInfo(s.br, hdr.length)
			if err != nil {
				return err
			}
			s.info = si
		case blockTypeVorbisComment:
			vc, err := parseVorbisComment(s.br, hdr.length)
			if err != nil {
				return err
			}
			s.vorbisComments = append(s.vorbisComments, vc)
		default:
			if err := skipMetaBlock(s.br, hdr.length); err != nil {
				return err
			}
		}

		if hdr.isLast {
			return nil
		}
	}
}

// Info returns the stream's STREAMINFO block, immutable since New returned.
func (s *Stream) Info() StreamInfo { return s.info }

// VorbisComments returns any VORBIS_COMMENT blocks collected while parsing
// metadata (SPEC_FULL supplement #3).
func (s *Stream) VorbisComments() []VorbisComment { return s.vorbisComments }

// RegisterProcessor adds p to the set of listeners fired by Decode. Safe to
// call concurrently with Decode (spec §5).
func (s *Stream) RegisterProcessor(p Processor) { s.processors.add(p) }

// UnregisterProcessor removes p from the set of listeners. Safe to call
// concurrently with Decode (spec §5).
func (s *Stream) UnregisterProcessor(p Processor) { s.processors.remove(p) }

// ParseNext decodes and returns the next frame, or io.EOF once the stream's
// declared sample count (if known) has been fully consumed. If
// ContinueOnFrameError is set, a recoverable error triggers an internal
// resync past the damaged frame rather than being returned.
func (s *Stream) ParseNext() (*Frame, error) {
	if s.info.SampleCount != 0 && s.samplesDecoded >= s.info.SampleCount {
		s.state = stateEndOfStream
		return nil, io.EOF
	}

	s.state = stateReadFrame
	f, err := decodeFrame(s.br, int(s.info.SampleRate), int(s.info.BitsPerSample), s.scratch)
	if err != nil {
		flacErr, ok := err.(*Error)
		if !ok || !s.ContinueOnFrameError || !flacErr.Recoverable() {
			s.state = stateAborted
			return nil, err
		}
		f, err = s.resyncAndDecode()
		if err != nil {
			s.state = stateAborted
			return nil, err
		}
	}

	s.samplesDecoded += uint64(len(f.Subframes[0].Samples))
	if s.VerifyMD5 {
		s.feedMD5(f)
	}
	s.state = stateSearchForFrameSync
	return f, nil
}

// resyncAndDecode implements the bytewise resync routine of spec §4.H:
// align to a byte boundary, then scan for the 14-bit sync pattern followed
// by a zero reserved bit, and resume header parsing from there.
func (s *Stream) resyncAndDecode() (*Frame, error) {
	if pad := s.br.BitsLeftForByteAlignment(); pad > 0 {
		if _, err := s.br.ReadUInt(pad); err != nil {
			return nil, err
		}
	}

	prev, err := s.br.ReadUInt(8)
	if err != nil {
		return nil, err
	}
	for {
		cur, err := s.br.ReadUInt(8)
		if err != nil {
			return nil, err
		}
		if byte(prev) == 0xFF && byte(cur)&0xFE == 0xF8 {
			s.br.ResetCRC8(0)
			s.br.ResetCRC16(0)
			s.br.foldByte(0xFF)
			s.br.foldByte(byte(cur))
			blockingStrategy := uint32(cur & 1)
			hdr, err := decodeFrameHeaderBody(s.br, blockingStrategy, int(s.info.SampleRate), int(s.info.BitsPerSample))
			if err != nil {
				prev = cur
				continue
			}
			return finishFrame(s.br, hdr, s.scratch)
		}
		prev = cur
	}
}

func (s *Stream) feedMD5(f *Frame) {
	pcm := s.formatter.Format(f.Subframes, int(s.info.BitsPerSample))
	s.md5sum.Write(pcm)
}

// Decode drives the full SearchForFrameSync/ReadFrame loop (spec §4.H),
// firing OnStreamInfo once and OnPCM once per frame to every registered
// Processor. It returns early if any processor's OnPCM returns Abort.
func (s *Stream) Decode() error {
	s.processors.fireStreamInfo(s.info)
	for {
		f, err := s.ParseNext()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		pcm := s.formatter.Format(f.Subframes, int(s.info.BitsPerSample))
		if s.processors.firePCM(pcm) == Abort {
			s.state = stateAborted
			return nil
		}
	}
}

// Close releases the underlying byte source, if it is an io.Closer, and
// verifies the accumulated MD5 against STREAMINFO if VerifyMD5 is set and
// the stream's declared sample count was fully consumed.
func (s *Stream) Close() error {
	var closeErr error
	if s.closer != nil {
		closeErr = s.closer.Close()
	}
	if s.VerifyMD5 && s.info.SampleCount != 0 && s.samplesDecoded >= s.info.SampleCount {
		var zero [16]byte
		if s.info.MD5sum != zero {
			sum := s.md5sum.Sum(nil)
			if !md5Equal(sum, s.info.MD5sum) {
				return newErr(BadMetadata, s.br.BitOffset(), "decoded stream MD5 does not match STREAMINFO")
			}
		}
	}
	return closeErr
}

func md5Equal(sum []byte, want [16]byte) bool {
	if len(sum) != 16 {
		return false
	}
	for i := range want {
		if sum[i] != want[i] {
			return false
		}
	}
	return true
}
