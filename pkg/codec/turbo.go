package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// Turbo payloads carry a 4-byte little-endian uncompressed length followed by
// one lz4 block. Incompressible spans are stored raw with the high bit of the
// length set.
const (
	turboHeaderSize = 4
	turboRawFlag    = uint32(1) << 31
)

func turboCompress(packed []byte) ([]byte, error) {
	if uint64(len(packed)) >= uint64(turboRawFlag) {
		return nil, fmt.Errorf("turbo: payload too large: %d bytes", len(packed))
	}

	bound := lz4.CompressBlockBound(len(packed))
	buf := make([]byte, turboHeaderSize+bound)
	n, err := lz4.CompressBlock(packed, buf[turboHeaderSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("turbo: compress: %w", err)
	}

	if n == 0 || n >= len(packed) {
		// Incompressible, store raw.
		raw := make([]byte, turboHeaderSize+len(packed))
		binary.LittleEndian.PutUint32(raw, uint32(len(packed))|turboRawFlag)
		copy(raw[turboHeaderSize:], packed)
		return raw, nil
	}

	binary.LittleEndian.PutUint32(buf, uint32(len(packed)))
	return buf[:turboHeaderSize+n], nil
}

func turboDecompress(packed []byte) ([]byte, error) {
	if len(packed) < turboHeaderSize {
		return nil, fmt.Errorf("%w: turbo header", ErrShortData)
	}

	size := binary.LittleEndian.Uint32(packed)
	body := packed[turboHeaderSize:]

	if size&turboRawFlag != 0 {
		size &^= turboRawFlag
		if uint32(len(body)) < size {
			return nil, fmt.Errorf("%w: raw turbo body %d < %d", ErrShortData, len(body), size)
		}
		return body[:size], nil
	}

	out := make([]byte, size)
	n, err := lz4.UncompressBlock(body, out)
	if err != nil {
		return nil, fmt.Errorf("turbo: decompress: %w", err)
	}
	if n != int(size) {
		return nil, fmt.Errorf("%w: turbo block yielded %d of %d bytes", ErrShortData, n, size)
	}
	return out, nil
}
