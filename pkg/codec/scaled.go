package codec

import (
	"encoding/binary"
	"fmt"
	"math"
)

// scaledHeaderSize is the fixed prefix of a scaled payload:
// float32 minimum + float32 quantization step, little-endian.
const scaledHeaderSize = 8

// encodeScaled quantizes values onto a linear [min, max] grid with 2^nbits-1
// steps and bit-packs the resulting mantissas after an 8-byte header.
func encodeScaled(values []float32, nbits uint8) ([]byte, error) {
	if err := checkIntWidth(nbits); err != nil {
		return nil, err
	}

	min, max := float32(math.Inf(1)), float32(math.Inf(-1))
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if len(values) == 0 {
		min, max = 0, 0
	}

	width := uint(nbits)
	steps := uint64(1)<<width - 1
	scale := float32(0)
	if steps > 0 && max > min {
		scale = (max - min) / float32(steps)
	}

	buf := make([]byte, scaledHeaderSize, scaledHeaderSize+packedSize(len(values), width))
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(min))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(scale))

	w := newBitWriter(packedSize(len(values), width))
	for _, v := range values {
		var q uint64
		if scale > 0 {
			q = uint64(math.Round(float64((v - min) / scale)))
			if q > steps {
				q = steps
			}
		}
		w.write(q, width)
	}
	return append(buf, w.bytes()...), nil
}

func decodeScaled(packed []byte, nbits uint8, out []float32) error {
	if err := checkIntWidth(nbits); err != nil {
		return err
	}
	if len(packed) < scaledHeaderSize+packedSize(len(out), uint(nbits)) {
		return fmt.Errorf("%w: %d bytes for %d scaled values at %d bits", ErrShortData, len(packed), len(out), nbits)
	}

	min := math.Float32frombits(binary.LittleEndian.Uint32(packed[0:]))
	scale := math.Float32frombits(binary.LittleEndian.Uint32(packed[4:]))

	r := newBitReader(packed[scaledHeaderSize:])
	for i := range out {
		q, err := r.read(uint(nbits))
		if err != nil {
			return err
		}
		out[i] = min + float32(q)*scale
	}
	return nil
}
