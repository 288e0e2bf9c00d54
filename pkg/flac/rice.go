package flac

// decodeResidual decodes a partitioned-Rice residual block (spec §4.C) into
// dst[0:blockSize-predictorOrder]. blockSize and predictorOrder describe the
// subframe being reconstructed; dst must have room for blockSize-predictorOrder
// samples.
func decodeResidual(br *BitReader, dst []int32, blockSize, predictorOrder int) error {
	method, err := br.ReadUInt(2)
	if err != nil {
		return err
	}
	var paramBits uint
	switch method {
	case 0:
		paramBits = 4
	case 1:
		paramBits = 5
	default:
		return newErr(Unparseable, br.BitOffset(), "reserved residual coding method")
	}

	partOrder, err := br.ReadUInt(4)
	if err != nil {
		return err
	}
	partitions := 1 << partOrder
	if blockSize%partitions != 0 {
		return newErr(Unparseable, br.BitOffset(), "block size not divisible by partition count")
	}
	samplesPerPartition := blockSize / partitions
	if samplesPerPartition <= predictorOrder && partOrder != 0 {
		return newErr(Unparseable, br.BitOffset(), "partition too small for predictor order")
	}

	escapeCode := uint32(1)<<paramBits - 1
	pos := 0
	for p := 0; p < partitions; p++ {
		n := samplesPerPartition
		if p == 0 {
			n -= predictorOrder
		}

		param, err := br.ReadUInt(paramBits)
		if err != nil {
			return err
		}
		if param == escapeCode {
			rawBits, err := br.ReadUInt(5)
			if err != nil {
				return err
			}
			for i := 0; i < n; i++ {
				if rawBits == 0 {
					dst[pos+i] = 0
					continue
				}
				v, err := br.ReadInt(uint(rawBits))
				if err != nil {
					return err
				}
				dst[pos+i] = v
			}
		} else {
			if err := br.ReadRiceSignedBlock(dst, pos, n, uint(param)); err != nil {
				return err
			}
		}
		pos += n
	}
	return nil
}
