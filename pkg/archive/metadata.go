package archive

import (
	"strings"

	"github.com/skadidb/skadi/pkg/codec"
)

// Wildcard is the sentinel for integer key fields meaning "match any".
// Text key fields use the empty string for the same purpose.
const Wildcard int32 = -1

// Field width limits, in meaningful characters. Shorter values are
// space-padded on disk and trimmed on load.
const (
	NameLen   = 4
	TypVarLen = 2
	EtiketLen = 12
)

// RecordKey is the composite identity template used for search and storage.
// During search, empty text fields and Wildcard integers match any stored
// value; during storage all fields must be concrete.
type RecordKey struct {
	Name   string // variable name, <= 4 chars
	TypVar string // classification tag, <= 2 chars
	Etiket string // free-form label, <= 12 chars
	IP1    int32  // level encoding
	IP2    int32  // time encoding
	IP3    int32  // member encoding
	DateO  int32  // encoded origin timestamp
}

// Template returns an all-wildcard key that matches every record.
func Template() RecordKey {
	return RecordKey{IP1: Wildcard, IP2: Wildcard, IP3: Wildcard, DateO: Wildcard}
}

// Matches reports whether a stored key satisfies every concrete field of the
// template t.
func (t RecordKey) Matches(stored RecordKey) bool {
	if t.Name != "" && strings.TrimSpace(t.Name) != stored.Name {
		return false
	}
	if t.TypVar != "" && strings.TrimSpace(t.TypVar) != stored.TypVar {
		return false
	}
	if t.Etiket != "" && strings.TrimSpace(t.Etiket) != stored.Etiket {
		return false
	}
	if t.IP1 != Wildcard && t.IP1 != stored.IP1 {
		return false
	}
	if t.IP2 != Wildcard && t.IP2 != stored.IP2 {
		return false
	}
	if t.IP3 != Wildcard && t.IP3 != stored.IP3 {
		return false
	}
	if t.DateO != Wildcard && t.DateO != stored.DateO {
		return false
	}
	return true
}

// RecordMetadata is the fixed-size descriptor kept per record in the
// directory index.
type RecordMetadata struct {
	RecordKey

	Deet int32 // time step length, seconds
	Npas int32 // step number

	NI, NJ, NK int32 // payload dimensions

	GridType           string // 1-character grid tag
	IG1, IG2, IG3, IG4 int32  // grid descriptors

	NBits    uint8          // packed bit width
	DataType codec.DataType // codec selector

	Deleted bool // entry flagged deleted, skipped by search

	Offset   uint64 // payload position in the data region
	Length   uint32 // payload byte length
	Checksum uint32 // CRC32 (IEEE) of the packed payload
}

// Elements returns the decoded element count ni*nj*nk.
func (m *RecordMetadata) Elements() int {
	return int(m.NI) * int(m.NJ) * int(m.NK)
}
