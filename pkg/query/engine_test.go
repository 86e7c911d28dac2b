package query

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skadidb/skadi/pkg/archive"
	"github.com/skadidb/skadi/pkg/codec"
)

func fixtureSession(t *testing.T) *archive.Session {
	t.Helper()

	path := filepath.Join(t.TempDir(), "query.skd")
	w, err := archive.Create(path)
	require.NoError(t, err)

	records := []struct {
		name   string
		typvar string
		ip1    int32
		ip2    int32
	}{
		{"TT", "P", 1000, 0},
		{"UU", "P", 1000, 0},
		{"TT", "A", 850, 6},
		{"TT", "P", 500, 12},
		{"GZ", "P", 500, 12},
	}
	for _, r := range records {
		p := archive.RecordParams{
			Name: r.name, TypVar: r.typvar, Etiket: "RUN1",
			IP1: r.ip1, IP2: r.ip2, IP3: 0, DateO: 7,
			NI: 2, NJ: 1, NK: 1, GridType: "G",
			NBits: 32, DataType: codec.TypeFloat,
		}
		require.NoError(t, w.Append(p, []float32{1, 2}))
	}
	require.NoError(t, w.Close())

	session, err := archive.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session
}

func collect(t *testing.T, it ResultIterator) []archive.RecordMetadata {
	t.Helper()

	var out []archive.RecordMetadata
	for it.Next() {
		out = append(out, it.Metadata())
	}
	require.NoError(t, it.Err())
	require.NoError(t, it.Close())
	return out
}

func TestEngine_AllRecords(t *testing.T) {
	engine := NewEngine(fixtureSession(t))

	it, err := engine.Execute(New())
	require.NoError(t, err)

	results := collect(t, it)
	require.Len(t, results, 5)
	assert.Equal(t, "TT", results[0].Name)
	assert.Equal(t, "GZ", results[4].Name)
}

func TestEngine_IndexedNameQuery(t *testing.T) {
	engine := NewEngine(fixtureSession(t))

	it, err := engine.Execute(New().WithName("TT"))
	require.NoError(t, err)

	results := collect(t, it)
	require.Len(t, results, 3)
	assert.Equal(t, int32(1000), results[0].IP1)
	assert.Equal(t, int32(850), results[1].IP1)
	assert.Equal(t, int32(500), results[2].IP1)
}

func TestEngine_CompositeIndexedQuery(t *testing.T) {
	engine := NewEngine(fixtureSession(t))

	it, err := engine.Execute(New().WithName("TT").WithTypVar("P").WithIP1(500))
	require.NoError(t, err)

	results := collect(t, it)
	require.Len(t, results, 1)
	assert.Equal(t, int32(12), results[0].IP2)
}

func TestEngine_IndexedAndUnindexedConstraintsCombine(t *testing.T) {
	engine := NewEngine(fixtureSession(t))

	// ip2 is not indexed; the candidate list from nomvar must still be
	// filtered by it.
	it, err := engine.Execute(New().WithName("TT").WithIP2(6))
	require.NoError(t, err)

	results := collect(t, it)
	require.Len(t, results, 1)
	assert.Equal(t, "A", results[0].TypVar)
}

func TestEngine_NoMatches(t *testing.T) {
	engine := NewEngine(fixtureSession(t))

	it, err := engine.Execute(New().WithName("ZZ"))
	require.NoError(t, err)
	assert.False(t, it.Next())
	assert.NoError(t, it.Err())
}

func TestEngine_UnindexedScanMatchesIndexedResults(t *testing.T) {
	session := fixtureSession(t)
	engine := NewEngine(session)

	indexed, err := engine.Execute(New().WithName("TT"))
	require.NoError(t, err)

	// The same template through the raw cursor path.
	scan := &cursorIterator{session: session, template: New().WithName("TT").Template()}

	for indexed.Next() {
		require.True(t, scan.Next())
		assert.Equal(t, scan.Handle(), indexed.Handle())
	}
	assert.False(t, scan.Next())
}

func TestEngine_ClosedSession(t *testing.T) {
	session := fixtureSession(t)
	require.NoError(t, session.Close())

	engine := NewEngine(session)
	_, err := engine.Execute(New())
	assert.ErrorIs(t, err, archive.ErrClosed)
}
