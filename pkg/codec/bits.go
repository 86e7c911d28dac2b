package codec

import "fmt"

// bitWriter packs values MSB-first into a byte stream. Widths up to 32 bits
// are supported; the 64-bit accumulator never holds more than 39 bits.
type bitWriter struct {
	buf []byte
	acc uint64
	n   uint
}

func newBitWriter(capacity int) *bitWriter {
	return &bitWriter{buf: make([]byte, 0, capacity)}
}

func (w *bitWriter) write(v uint64, width uint) {
	w.acc = w.acc<<width | v
	w.n += width
	for w.n >= 8 {
		w.n -= 8
		w.buf = append(w.buf, byte(w.acc>>w.n))
	}
}

// bytes flushes any partial byte (zero padded on the right) and returns the
// packed stream.
func (w *bitWriter) bytes() []byte {
	if w.n > 0 {
		w.buf = append(w.buf, byte(w.acc<<(8-w.n)))
		w.acc, w.n = 0, 0
	}
	return w.buf
}

// bitReader is the MSB-first counterpart to bitWriter.
type bitReader struct {
	data []byte
	acc  uint64
	n    uint
	pos  int
}

func newBitReader(data []byte) *bitReader {
	return &bitReader{data: data}
}

func (r *bitReader) read(width uint) (uint64, error) {
	for r.n < width {
		if r.pos >= len(r.data) {
			return 0, fmt.Errorf("%w: need %d bits at byte %d", ErrShortData, width, r.pos)
		}
		r.acc = r.acc<<8 | uint64(r.data[r.pos])
		r.pos++
		r.n += 8
	}
	r.n -= width
	v := r.acc >> r.n & (1<<width - 1)
	return v, nil
}

// packedSize returns the byte length of n values packed at width bits.
func packedSize(n int, width uint) int {
	return (n*int(width) + 7) / 8
}
