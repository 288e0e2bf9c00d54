package flac

// restoreFixed reconstructs samples for a fixed predictor of the given order
// (spec §4.D). warmup holds the order literal samples already in dst[0:order];
// residual holds the remaining blockSize-order values. dst must have room for
// blockSize samples total.
func restoreFixed(dst []int32, order int, residual []int32) {
	switch order {
	case 0:
		copy(dst, residual)
	case 1:
		for i, r := range residual {
			n := order + i
			dst[n] = r + dst[n-1]
		}
	case 2:
		for i, r := range residual {
			n := order + i
			dst[n] = r + 2*dst[n-1] - dst[n-2]
		}
	case 3:
		for i, r := range residual {
			n := order + i
			dst[n] = r + 3*dst[n-1] - 3*dst[n-2] + dst[n-3]
		}
	case 4:
		for i, r := range residual {
			n := order + i
			dst[n] = r + 4*dst[n-1] - 6*dst[n-2] + 4*dst[n-3] - dst[n-4]
		}
	}
}

// bitLen returns ceil(log2(n)) for n >= 1.
func bitLen(n int) int {
	bits := 0
	v := n - 1
	for v > 0 {
		bits++
		v >>= 1
	}
	return bits
}

// restoreLPC reconstructs samples for an LPC predictor (spec §4.D). warmup
// occupies dst[0:order]; coeffs has order entries (most recent tap first,
// matching the order they are applied: c[j] multiplies x[n-1-j]); residual
// holds the remaining blockSize-order values. The accumulator is widened to
// 64 bits whenever bps+qlpPrecision+ceil(log2(order)) would overflow 32 bits.
func restoreLPC(dst []int32, order int, coeffs []int32, shift int, residual []int32, effectiveBps, qlpPrecision int) {
	wide := effectiveBps+qlpPrecision+bitLen(order) > 32

	if wide {
		for i, r := range residual {
			n := order + i
			var acc int64
			for j := 0; j < order; j++ {
				acc += int64(coeffs[j]) * int64(dst[n-1-j])
			}
			dst[n] = r + int32(acc>>uint(shift))
		}
		return
	}

	for i, r := range residual {
		n := order + i
		var acc int32
		for j := 0; j < order; j++ {
			acc += coeffs[j] * dst[n-1-j]
		}
		dst[n] = r + (acc >> uint(shift))
	}
}
