package codec

import (
	"encoding/binary"
	"fmt"
	"math"
)

// encodeFloat stores raw IEEE 754 values, little-endian, at 32 or 64 bits.
func encodeFloat(values []float32, nbits uint8) ([]byte, error) {
	switch nbits {
	case 32:
		buf := make([]byte, 4*len(values))
		for i, v := range values {
			binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
		}
		return buf, nil
	case 64:
		buf := make([]byte, 8*len(values))
		for i, v := range values {
			binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(float64(v)))
		}
		return buf, nil
	default:
		return nil, fmt.Errorf("%w: ieee requires width 32 or 64, got %d", ErrBadWidth, nbits)
	}
}

func decodeFloat(packed []byte, nbits uint8, out []float32) error {
	switch nbits {
	case 32:
		if len(packed) < 4*len(out) {
			return fmt.Errorf("%w: %d bytes for %d float32", ErrShortData, len(packed), len(out))
		}
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(packed[4*i:]))
		}
		return nil
	case 64:
		if len(packed) < 8*len(out) {
			return fmt.Errorf("%w: %d bytes for %d float64", ErrShortData, len(packed), len(out))
		}
		for i := range out {
			out[i] = float32(math.Float64frombits(binary.LittleEndian.Uint64(packed[8*i:])))
		}
		return nil
	default:
		return fmt.Errorf("%w: ieee requires width 32 or 64, got %d", ErrBadWidth, nbits)
	}
}
