package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skadidb/skadi/pkg/archive"
)

func TestFieldCache_PutGetRoundTrip(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	defer c.Close()

	key := []byte("archive.skd|3|deadbeef")
	values := []float32{1.5, -2.25, 101325.0, 0}

	require.NoError(t, c.Put(key, values))

	got, ok, err := c.Get(key, len(values))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, values, got)
}

func TestFieldCache_Miss(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	defer c.Close()

	_, ok, err := c.Get([]byte("absent"), 4)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFieldCache_LengthMismatchIsMiss(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	defer c.Close()

	key := []byte("k")
	require.NoError(t, c.Put(key, []float32{1, 2, 3}))

	_, ok, err := c.Get(key, 4)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFieldCache_Delete(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	defer c.Close()

	key := []byte("k")
	require.NoError(t, c.Put(key, []float32{9}))
	require.NoError(t, c.Delete(key))

	_, ok, err := c.Get(key, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKey_IncludesChecksum(t *testing.T) {
	meta := archive.RecordMetadata{Checksum: 0xAB}
	other := archive.RecordMetadata{Checksum: 0xCD}

	a := Key("f.skd", 1, meta)
	b := Key("f.skd", 1, other)
	assert.NotEqual(t, a, b)
}
