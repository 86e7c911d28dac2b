package index

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skadidb/skadi/pkg/archive"
	"github.com/skadidb/skadi/pkg/codec"
)

func buildFixture(t *testing.T) *archive.Session {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.skd")
	w, err := archive.Create(path)
	require.NoError(t, err)

	records := []struct {
		name string
		ip1  int32
	}{
		{"TT", 1000},
		{"UU", 850},
		{"TT", 850},
		{"GZ", 500},
		{"TT", 1000},
	}
	for _, r := range records {
		p := archive.RecordParams{
			Name: r.name, TypVar: "P", Etiket: "TEST",
			IP1: r.ip1, IP2: 0, IP3: 0, DateO: 1,
			NI: 2, NJ: 2, NK: 1, GridType: "G",
			NBits: 32, DataType: codec.TypeFloat,
		}
		require.NoError(t, w.Append(p, []float32{1, 2, 3, 4}))
	}
	require.NoError(t, w.Close())

	session, err := archive.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session
}

func TestIndexManager_BuildAndSearch(t *testing.T) {
	session := buildFixture(t)
	dir, err := session.Directory()
	require.NoError(t, err)

	im := NewIndexManager()
	im.BuildFromDirectory(dir)

	nameIdx := im.Index(FieldName)
	require.NotNil(t, nameIdx)
	assert.Equal(t, []int{0, 2, 4}, nameIdx.Search("TT"))
	assert.Equal(t, []int{1}, nameIdx.Search("UU"))
	assert.Empty(t, nameIdx.Search("ZZ"))
	assert.Equal(t, 3, nameIdx.Cardinality())
}

func TestIndexManager_CandidatesIntersection(t *testing.T) {
	session := buildFixture(t)
	dir, err := session.Directory()
	require.NoError(t, err)

	im := NewIndexManager()
	im.BuildFromDirectory(dir)

	template := archive.Template()
	template.Name = "TT"
	template.IP1 = 1000

	positions, narrowed := im.Candidates(template)
	assert.True(t, narrowed)
	assert.Equal(t, []int{0, 4}, positions)
}

func TestIndexManager_NoIndexedFieldFallsBack(t *testing.T) {
	session := buildFixture(t)
	dir, err := session.Directory()
	require.NoError(t, err)

	im := NewIndexManager()
	im.BuildFromDirectory(dir)

	positions, narrowed := im.Candidates(archive.Template())
	assert.False(t, narrowed)
	assert.Nil(t, positions)

	// ip2 is not indexed, so an ip2-only template cannot narrow either.
	template := archive.Template()
	template.IP2 = 12
	_, narrowed = im.Candidates(template)
	assert.False(t, narrowed)
}

func TestIntersectSorted(t *testing.T) {
	assert.Equal(t, []int{2, 5}, intersectSorted([]int{1, 2, 5, 9}, []int{2, 3, 5}))
	assert.Empty(t, intersectSorted([]int{1, 3}, []int{2, 4}))
	assert.Empty(t, intersectSorted(nil, []int{1}))
}
