package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skadidb/skadi/pkg/codec"
)

func testParams(name string, ip1 int32) RecordParams {
	return RecordParams{
		Name:     name,
		TypVar:   "P",
		Etiket:   "FORECAST",
		IP1:      ip1,
		IP2:      12,
		IP3:      0,
		DateO:    442998800,
		Deet:     3600,
		Npas:     12,
		NI:       3,
		NJ:       2,
		NK:       1,
		GridType: "G",
		IG1:      1,
		IG2:      2,
		IG3:      3,
		IG4:      4,
		NBits:    32,
		DataType: codec.TypeFloat,
	}
}

func testValues(n int, seed float32) []float32 {
	values := make([]float32, n)
	for i := range values {
		values[i] = seed + float32(i)*0.5
	}
	return values
}

// writeTestArchive builds an archive with one record per (name, ip1) pair.
func writeTestArchive(t *testing.T, path string, records ...RecordParams) {
	t.Helper()

	w, err := Create(path)
	require.NoError(t, err)
	for i, p := range records {
		require.NoError(t, w.Append(p, testValues(int(p.NI*p.NJ*p.NK), float32(i))))
	}
	require.NoError(t, w.Close())
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.skd"))
	assert.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestOpen_EmptyArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.skd")
	writeTestArchive(t, path)

	session, err := Open(path)
	require.NoError(t, err)
	defer session.Close()

	count, err := session.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	_, cursor, err := session.FindFirst(Template())
	assert.ErrorIs(t, err, ErrNotFound)

	// The cursor from an empty search is already exhausted.
	_, err = session.FindNext(cursor)
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestSession_ExactKeyLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exact.skd")
	writeTestArchive(t, path,
		testParams("TT", 1000),
		testParams("UU", 850),
		testParams("GZ", 500),
	)

	session, err := Open(path)
	require.NoError(t, err)
	defer session.Close()

	template := Template()
	template.Name = "UU"
	template.IP1 = 850

	h, _, err := session.FindFirst(template)
	require.NoError(t, err)

	meta, err := session.Describe(h)
	require.NoError(t, err)
	assert.Equal(t, "UU", meta.Name)
	assert.Equal(t, "P", meta.TypVar)
	assert.Equal(t, "FORECAST", meta.Etiket)
	assert.Equal(t, int32(850), meta.IP1)
	assert.Equal(t, int32(12), meta.IP2)
	assert.Equal(t, int32(442998800), meta.DateO)
	assert.Equal(t, int32(3), meta.NI)
	assert.Equal(t, int32(2), meta.NJ)
	assert.Equal(t, int32(1), meta.NK)
	assert.Equal(t, "G", meta.GridType)
	assert.Equal(t, uint8(32), meta.NBits)
	assert.Equal(t, codec.TypeFloat, meta.DataType)
}

func TestSession_WildcardEnumerationVisitsAllInOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "all.skd")
	writeTestArchive(t, path,
		testParams("TT", 1000),
		testParams("UU", 850),
		testParams("TT", 500),
		testParams("GZ", 250),
	)

	session, err := Open(path)
	require.NoError(t, err)
	defer session.Close()

	h, cursor, err := session.FindFirst(Template())
	require.NoError(t, err)

	var names []string
	for {
		meta, err := session.Describe(h)
		require.NoError(t, err)
		names = append(names, fmt.Sprintf("%s/%d", meta.Name, meta.IP1))

		h, err = session.FindNext(cursor)
		if err != nil {
			assert.ErrorIs(t, err, ErrExhausted)
			break
		}
	}

	assert.Equal(t, []string{"TT/1000", "UU/850", "TT/500", "GZ/250"}, names)

	// Exhaustion is idempotent.
	_, err = session.FindNext(cursor)
	assert.ErrorIs(t, err, ErrExhausted)
	_, err = session.FindNext(cursor)
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestSession_WildcardIP1MatchesBothLevels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "levels.skd")
	writeTestArchive(t, path,
		testParams("TT", 1000),
		testParams("TT", 2000),
	)

	session, err := Open(path)
	require.NoError(t, err)
	defer session.Close()

	template := Template()
	template.Name = "TT"

	h, cursor, err := session.FindFirst(template)
	require.NoError(t, err)
	meta, err := session.Describe(h)
	require.NoError(t, err)
	assert.Equal(t, int32(1000), meta.IP1)

	h, err = session.FindNext(cursor)
	require.NoError(t, err)
	meta, err = session.Describe(h)
	require.NoError(t, err)
	assert.Equal(t, int32(2000), meta.IP1)

	_, err = session.FindNext(cursor)
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestSession_NotFoundLeavesSessionUsable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "miss.skd")
	writeTestArchive(t, path, testParams("TT", 1000))

	session, err := Open(path)
	require.NoError(t, err)
	defer session.Close()

	template := Template()
	template.Name = "ZZ"
	_, _, err = session.FindFirst(template)
	assert.ErrorIs(t, err, ErrNotFound)

	// The miss must not poison later searches.
	template.Name = "TT"
	_, _, err = session.FindFirst(template)
	assert.NoError(t, err)
}

func TestSession_ReadMatchesDescribe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "read.skd")
	writeTestArchive(t, path, testParams("TT", 1000))

	session, err := Open(path)
	require.NoError(t, err)
	defer session.Close()

	h, _, err := session.FindFirst(Template())
	require.NoError(t, err)

	meta, err := session.Describe(h)
	require.NoError(t, err)

	out := make([]float32, meta.Elements())
	require.NoError(t, session.Read(h, out))
	assert.Equal(t, testValues(meta.Elements(), 0), out)
}

func TestSession_ReadSizeMismatchLeavesBufferUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "size.skd")
	writeTestArchive(t, path, testParams("TT", 1000))

	session, err := Open(path)
	require.NoError(t, err)
	defer session.Close()

	h, _, err := session.FindFirst(Template())
	require.NoError(t, err)

	meta, err := session.Describe(h)
	require.NoError(t, err)

	short := make([]float32, meta.Elements()-1)
	for i := range short {
		short[i] = -99
	}
	err = session.Read(h, short)
	assert.ErrorIs(t, err, ErrSizeMismatch)
	for i := range short {
		assert.Equal(t, float32(-99), short[i])
	}
}

func TestSession_UseAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "closed.skd")
	writeTestArchive(t, path, testParams("TT", 1000))

	session, err := Open(path)
	require.NoError(t, err)

	h, cursor, err := session.FindFirst(Template())
	require.NoError(t, err)

	require.NoError(t, session.Close())
	require.NoError(t, session.Close()) // double close is harmless

	_, _, err = session.FindFirst(Template())
	assert.ErrorIs(t, err, ErrClosed)
	_, err = session.FindNext(cursor)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = session.Describe(h)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, session.Read(h, make([]float32, 6)), ErrClosed)
	_, err = session.Count()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSession_IndependentCursors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cursors.skd")
	writeTestArchive(t, path,
		testParams("TT", 1000),
		testParams("TT", 2000),
		testParams("TT", 3000),
	)

	session, err := Open(path)
	require.NoError(t, err)
	defer session.Close()

	template := Template()
	template.Name = "TT"

	_, a, err := session.FindFirst(template)
	require.NoError(t, err)
	_, b, err := session.FindFirst(template)
	require.NoError(t, err)

	// Advancing one cursor must not move the other.
	_, err = session.FindNext(a)
	require.NoError(t, err)
	_, err = session.FindNext(a)
	require.NoError(t, err)
	assert.Equal(t, 2, a.Position())
	assert.Equal(t, 0, b.Position())
}

func TestSession_CorruptPayloadFailsOnlyThatRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crc.skd")
	writeTestArchive(t, path,
		testParams("TT", 1000),
		testParams("UU", 850),
	)

	// Flip one byte inside the first payload (data region starts after the
	// fixed header).
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	raw[headerSize] ^= 0xFF
	require.NoError(t, os.WriteFile(path, raw, 0600))

	session, err := Open(path)
	require.NoError(t, err)
	defer session.Close()

	first, cursor, err := session.FindFirst(Template())
	require.NoError(t, err)

	out := make([]float32, 6)
	assert.ErrorIs(t, session.Read(first, out), ErrDecode)

	// The second record still reads fine.
	second, err := session.FindNext(cursor)
	require.NoError(t, err)
	assert.NoError(t, session.Read(second, out))
}

func TestSession_MultiBlockDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.skd")

	w, err := Create(path)
	require.NoError(t, err)
	total := maxEntriesPerBlock + 40
	for i := 0; i < total; i++ {
		p := testParams("TT", int32(1000+i))
		require.NoError(t, w.Append(p, testValues(6, float32(i))))
	}
	require.NoError(t, w.Close())

	session, err := Open(path)
	require.NoError(t, err)
	defer session.Close()

	count, err := session.Count()
	require.NoError(t, err)
	assert.Equal(t, total, count)

	// Order survives the block boundary.
	h, cursor, err := session.FindFirst(Template())
	require.NoError(t, err)
	seen := 0
	for {
		meta, err := session.Describe(h)
		require.NoError(t, err)
		assert.Equal(t, int32(1000+seen), meta.IP1)
		seen++

		h, err = session.FindNext(cursor)
		if err != nil {
			break
		}
	}
	assert.Equal(t, total, seen)
}

func TestWriter_RejectsWildcardKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reject.skd")
	w, err := Create(path)
	require.NoError(t, err)
	defer w.Close()

	p := testParams("TT", Wildcard)
	err = w.Append(p, testValues(6, 0))
	assert.Error(t, err)

	p = testParams("", 1000)
	err = w.Append(p, testValues(6, 0))
	assert.Error(t, err)
}

func TestWriter_RejectsDimensionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dims.skd")
	w, err := Create(path)
	require.NoError(t, err)
	defer w.Close()

	err = w.Append(testParams("TT", 1000), testValues(5, 0))
	assert.Error(t, err)
}

func TestWriter_AppendAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wclosed.skd")
	w, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.ErrorIs(t, w.Append(testParams("TT", 1000), testValues(6, 0)), ErrClosed)
	assert.ErrorIs(t, w.Close(), ErrClosed)
}
