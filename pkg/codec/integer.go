package codec

import (
	"fmt"
	"math"
)

func checkIntWidth(nbits uint8) error {
	if nbits < 1 || nbits > 32 {
		return fmt.Errorf("%w: integer widths are 1..32, got %d", ErrBadWidth, nbits)
	}
	return nil
}

// encodeUnsigned packs non-negative integral values MSB-first at nbits each.
func encodeUnsigned(values []float32, nbits uint8) ([]byte, error) {
	if err := checkIntWidth(nbits); err != nil {
		return nil, err
	}

	width := uint(nbits)
	max := uint64(1)<<width - 1
	w := newBitWriter(packedSize(len(values), width))
	for i, f := range values {
		if f < 0 || float64(f) > float64(max) {
			return nil, fmt.Errorf("%w: value %g at index %d exceeds %d bits", ErrValueRange, f, i, nbits)
		}
		w.write(uint64(math.Round(float64(f))), width)
	}
	return w.bytes(), nil
}

func decodeUnsigned(packed []byte, nbits uint8, out []float32) error {
	if err := checkIntWidth(nbits); err != nil {
		return err
	}
	if len(packed) < packedSize(len(out), uint(nbits)) {
		return fmt.Errorf("%w: %d bytes for %d values at %d bits", ErrShortData, len(packed), len(out), nbits)
	}

	r := newBitReader(packed)
	for i := range out {
		v, err := r.read(uint(nbits))
		if err != nil {
			return err
		}
		out[i] = float32(v)
	}
	return nil
}

// encodeSigned packs integral values as two's complement at nbits each.
func encodeSigned(values []float32, nbits uint8) ([]byte, error) {
	if err := checkIntWidth(nbits); err != nil {
		return nil, err
	}
	if nbits < 2 {
		return nil, fmt.Errorf("%w: signed values need at least 2 bits", ErrBadWidth)
	}

	width := uint(nbits)
	lo := -(int64(1) << (width - 1))
	hi := int64(1)<<(width-1) - 1
	mask := uint64(1)<<width - 1

	w := newBitWriter(packedSize(len(values), width))
	for i, f := range values {
		v := int64(math.Round(float64(f)))
		if v < lo || v > hi {
			return nil, fmt.Errorf("%w: value %g at index %d exceeds %d signed bits", ErrValueRange, f, i, nbits)
		}
		w.write(uint64(v) & mask, width)
	}
	return w.bytes(), nil
}

func decodeSigned(packed []byte, nbits uint8, out []float32) error {
	if err := checkIntWidth(nbits); err != nil {
		return err
	}
	if nbits < 2 {
		return fmt.Errorf("%w: signed values need at least 2 bits", ErrBadWidth)
	}
	if len(packed) < packedSize(len(out), uint(nbits)) {
		return fmt.Errorf("%w: %d bytes for %d values at %d bits", ErrShortData, len(packed), len(out), nbits)
	}

	width := uint(nbits)
	signBit := uint64(1) << (width - 1)
	r := newBitReader(packed)
	for i := range out {
		v, err := r.read(width)
		if err != nil {
			return err
		}
		if v&signBit != 0 {
			out[i] = float32(int64(v) - int64(1)<<width)
		} else {
			out[i] = float32(v)
		}
	}
	return nil
}
