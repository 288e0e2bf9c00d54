package flac

// SubframeKind tags which of the four subframe encodings was transmitted
// (spec Data Model, §9 "Subframe polymorphism" redesign note: a tagged
// variant replaces the canonical decoder's virtual dispatch).
type SubframeKind int

const (
	SubframeConstant SubframeKind = iota
	SubframeVerbatim
	SubframeFixed
	SubframeLPC
)

// Subframe holds one channel's reconstructed samples for a single frame,
// plus the prediction parameters that produced them.
type Subframe struct {
	Kind        SubframeKind
	Order       int // predictor order; 0 for Constant/Verbatim
	WastedBits  uint
	QLPPrecision int   // LPC only
	Shift        int   // LPC only
	Coefficients []int32 // LPC only, length Order

	// Samples holds blockSize reconstructed values at the frame's full
	// dynamic range (after the wastedBits left-shift).
	Samples []int32
	// NSamples is len(Samples); named to mirror the convenience field the
	// teacher's own cmd/convert.go already reads off a decoded FLAC frame.
	NSamples int
}

// decodeSubframe reads one subframe from br. blockSize is the frame's block
// size; bps is the frame's bits-per-sample; sideChannelBonus is 1 when this
// channel carries the extra bit of a stereo side channel, else 0.
func decodeSubframe(br *BitReader, blockSize, bps, sideChannelBonus int, scratch []int32) (*Subframe, error) {
	header, err := br.ReadUInt(8)
	if err != nil {
		return nil, err
	}
	// bit 7: zero padding (unchecked, matches common decoder practice)
	sel := (header >> 1) & 0x3F
	hasWasted := header&1 != 0

	var wastedBits uint
	if hasWasted {
		count, err := br.ReadUnary()
		if err != nil {
			return nil, err
		}
		wastedBits = uint(count) + 1
	}

	effectiveBps := bps + sideChannelBonus - int(wastedBits)
	if effectiveBps < 0 || effectiveBps > 32 {
		return nil, newErr(Unparseable, br.BitOffset(), "subframe bits-per-sample out of range")
	}

	sf := &Subframe{WastedBits: wastedBits}

	switch {
	case sel == 0:
		sf.Kind = SubframeConstant
		if err := decodeConstant(br, sf, blockSize, effectiveBps); err != nil {
			return nil, err
		}
	case sel == 1:
		sf.Kind = SubframeVerbatim
		if err := decodeVerbatim(br, sf, blockSize, effectiveBps); err != nil {
			return nil, err
		}
	case sel&0x20 != 0:
		sf.Kind = SubframeLPC
		order := int(sel&0x1F) + 1
		if order > blockSize {
			return nil, newErr(Unparseable, br.BitOffset(), "predictor order exceeds block size")
		}
		if err := decodeLPC(br, sf, blockSize, effectiveBps, order, scratch); err != nil {
			return nil, err
		}
	case sel&0x38 == 0x08:
		order := int(sel & 0x07)
		if order > 4 {
			return nil, newErr(Unparseable, br.BitOffset(), "reserved fixed predictor order")
		}
		if order > blockSize {
			return nil, newErr(Unparseable, br.BitOffset(), "predictor order exceeds block size")
		}
		sf.Kind = SubframeFixed
		if err := decodeFixed(br, sf, blockSize, effectiveBps, order, scratch); err != nil {
			return nil, err
		}
	default:
		return nil, newErr(Unparseable, br.BitOffset(), "reserved subframe type")
	}

	if wastedBits > 0 {
		for i, v := range sf.Samples {
			sf.Samples[i] = v << wastedBits
		}
	}
	sf.NSamples = len(sf.Samples)
	return sf, nil
}

func readSigned(br *BitReader, n int) (int32, error) {
	if n == 0 {
		return 0, nil
	}
	return br.ReadInt(uint(n))
}

func decodeConstant(br *BitReader, sf *Subframe, blockSize, effectiveBps int) error {
	v, err := readSigned(br, effectiveBps)
	if err != nil {
		return err
	}
	sf.Samples = make([]int32, blockSize)
	for i := range sf.Samples {
		sf.Samples[i] = v
	}
	return nil
}

func decodeVerbatim(br *BitReader, sf *Subframe, blockSize, effectiveBps int) error {
	sf.Samples = make([]int32, blockSize)
	for i := range sf.Samples {
		v, err := readSigned(br, effectiveBps)
		if err != nil {
			return err
		}
		sf.Samples[i] = v
	}
	return nil
}

func decodeFixed(br *BitReader, sf *Subframe, blockSize, effectiveBps, order int, scratch []int32) error {
	sf.Order = order
	sf.Samples = make([]int32, blockSize)
	for i := 0; i < order; i++ {
		v, err := readSigned(br, effectiveBps)
		if err != nil {
			return err
		}
		sf.Samples[i] = v
	}
	residual := scratch[:blockSize-order]
	if err := decodeResidual(br, residual, blockSize, order); err != nil {
		return err
	}
	restoreFixed(sf.Samples, order, residual)
	return nil
}

func decodeLPC(br *BitReader, sf *Subframe, blockSize, effectiveBps, order int, scratch []int32) error {
	sf.Order = order
	sf.Samples = make([]int32, blockSize)
	for i := 0; i < order; i++ {
		v, err := readSigned(br, effectiveBps)
		if err != nil {
			return err
		}
		sf.Samples[i] = v
	}

	precisionCode, err := br.ReadUInt(4)
	if err != nil {
		return err
	}
	if precisionCode == 0xF {
		return newErr(LostSync, br.BitOffset(), "reserved LPC precision code")
	}
	qlpPrecision := int(precisionCode) + 1

	shift, err := br.ReadInt(5)
	if err != nil {
		return err
	}
	if shift < 0 {
		// The canonical FLAC reference rejects negative shifts; see
		// DESIGN.md for the Open Question this resolves.
		return newErr(Unparseable, br.BitOffset(), "negative LPC quantization shift")
	}

	coeffs := make([]int32, order)
	for i := 0; i < order; i++ {
		c, err := br.ReadInt(uint(qlpPrecision))
		if err != nil {
			return err
		}
		coeffs[i] = c
	}

	sf.QLPPrecision = qlpPrecision
	sf.Shift = int(shift)
	sf.Coefficients = coeffs

	residual := scratch[:blockSize-order]
	if err := decodeResidual(br, residual, blockSize, order); err != nil {
		return err
	}
	restoreLPC(sf.Samples, order, coeffs, int(shift), residual, effectiveBps, qlpPrecision)
	return nil
}
