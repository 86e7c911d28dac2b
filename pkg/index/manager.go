// Package index provides secondary lookup structures over an archive's
// directory. Results are always position lists in ascending scan order, so
// layering an index under a search changes nothing about result order.
package index

import (
	"strconv"
	"sync"

	"github.com/skadidb/skadi/pkg/archive"
)

// Field names understood by the manager.
const (
	FieldName   = "nomvar"
	FieldTypVar = "typvar"
	FieldIP1    = "ip1"
)

// SecondaryIndex maps the concrete values of one metadata field to the
// ascending directory positions holding them.
type SecondaryIndex struct {
	fieldName string
	positions map[string][]int
	mutex     sync.RWMutex
}

// NewSecondaryIndex creates an empty index for a field.
func NewSecondaryIndex(fieldName string) *SecondaryIndex {
	return &SecondaryIndex{
		fieldName: fieldName,
		positions: make(map[string][]int),
	}
}

// Insert records that the field holds value at a directory position.
// Positions must be inserted in ascending order, which a directory scan
// guarantees.
func (idx *SecondaryIndex) Insert(value string, position int) {
	idx.mutex.Lock()
	defer idx.mutex.Unlock()

	idx.positions[value] = append(idx.positions[value], position)
}

// Search returns the ascending positions holding the value.
func (idx *SecondaryIndex) Search(value string) []int {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	return idx.positions[value]
}

// Cardinality returns the number of distinct values indexed.
func (idx *SecondaryIndex) Cardinality() int {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	return len(idx.positions)
}

// IndexManager builds and caches the per-field indexes of one directory.
type IndexManager struct {
	indexes map[string]*SecondaryIndex
	mutex   sync.RWMutex
}

// NewIndexManager creates an empty manager.
func NewIndexManager() *IndexManager {
	return &IndexManager{
		indexes: make(map[string]*SecondaryIndex),
	}
}

// BuildFromDirectory scans the directory once and populates the indexes for
// every supported field. Deleted entries are not indexed.
func (im *IndexManager) BuildFromDirectory(dir *archive.Directory) {
	im.mutex.Lock()
	defer im.mutex.Unlock()

	name := NewSecondaryIndex(FieldName)
	typvar := NewSecondaryIndex(FieldTypVar)
	ip1 := NewSecondaryIndex(FieldIP1)

	for pos := 0; pos < dir.Len(); pos++ {
		e := dir.Entry(pos)
		if e.Deleted {
			continue
		}
		name.Insert(e.Name, pos)
		typvar.Insert(e.TypVar, pos)
		ip1.Insert(ip1Key(e.IP1), pos)
	}

	im.indexes[FieldName] = name
	im.indexes[FieldTypVar] = typvar
	im.indexes[FieldIP1] = ip1
}

// Index returns the index for a field, or nil if the field is not indexed.
func (im *IndexManager) Index(fieldName string) *SecondaryIndex {
	im.mutex.RLock()
	defer im.mutex.RUnlock()

	return im.indexes[fieldName]
}

// Candidates returns the ascending positions that can possibly satisfy the
// template's indexed fields, and whether any index narrowed the scan. With
// no concrete indexed field the caller must fall back to a full scan.
func (im *IndexManager) Candidates(template archive.RecordKey) ([]int, bool) {
	im.mutex.RLock()
	defer im.mutex.RUnlock()

	var lists [][]int
	if template.Name != "" {
		if idx := im.indexes[FieldName]; idx != nil {
			lists = append(lists, idx.Search(template.Name))
		}
	}
	if template.TypVar != "" {
		if idx := im.indexes[FieldTypVar]; idx != nil {
			lists = append(lists, idx.Search(template.TypVar))
		}
	}
	if template.IP1 != archive.Wildcard {
		if idx := im.indexes[FieldIP1]; idx != nil {
			lists = append(lists, idx.Search(ip1Key(template.IP1)))
		}
	}

	if len(lists) == 0 {
		return nil, false
	}

	result := lists[0]
	for _, list := range lists[1:] {
		result = intersectSorted(result, list)
	}
	return result, true
}

// intersectSorted merges two ascending position lists.
func intersectSorted(a, b []int) []int {
	out := make([]int, 0, min(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

func ip1Key(v int32) string {
	return strconv.Itoa(int(v))
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
