// Package cache provides a persistent cache of decoded record payloads,
// keyed by archive path and record identity. It sits in front of the codec
// layer for hot records; every failure degrades to decoding from the
// archive, so callers may treat it as best-effort.
package cache

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/cockroachdb/pebble"
	"github.com/klauspost/compress/zstd"

	"github.com/skadidb/skadi/pkg/archive"
)

// FieldCache stores zstd-compressed float32 payloads in a pebble database.
type FieldCache struct {
	db      *pebble.DB
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// Open creates or reopens a cache at dir.
func Open(dir string) (*FieldCache, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, err
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, err
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		db.Close()
		return nil, err
	}

	return &FieldCache{db: db, encoder: encoder, decoder: decoder}, nil
}

// Key derives the cache key of one record. The payload checksum is part of
// the key, so a record rewritten with different data never aliases a stale
// entry.
func Key(archivePath string, h archive.Handle, meta archive.RecordMetadata) []byte {
	return []byte(fmt.Sprintf("%s|%d|%08x", archivePath, h, meta.Checksum))
}

// Put stores a decoded payload.
func (c *FieldCache) Put(key []byte, values []float32) error {
	raw := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(raw[4*i:], math.Float32bits(v))
	}

	compressed := c.encoder.EncodeAll(raw, nil)
	return c.db.Set(key, compressed, pebble.NoSync)
}

// Get returns the cached payload, or ok=false on a miss. A stored payload
// whose length disagrees with n counts as a miss.
func (c *FieldCache) Get(key []byte, n int) ([]float32, bool, error) {
	compressed, closer, err := c.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer closer.Close()

	raw, err := c.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, false, err
	}
	if len(raw) != 4*n {
		return nil, false, nil
	}

	values := make([]float32, n)
	for i := range values {
		values[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return values, true, nil
}

// Delete drops one entry.
func (c *FieldCache) Delete(key []byte) error {
	return c.db.Delete(key, pebble.NoSync)
}

// Close releases the database and the compressors.
func (c *FieldCache) Close() error {
	c.decoder.Close()
	if err := c.encoder.Close(); err != nil {
		c.db.Close()
		return err
	}
	return c.db.Close()
}
