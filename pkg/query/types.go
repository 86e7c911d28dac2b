// Package query provides a fluent search API over an archive session,
// backed by the secondary indexes in pkg/index when the template pins an
// indexed field.
package query

import (
	"github.com/skadidb/skadi/pkg/archive"
)

// Query builds a search template one constraint at a time. The zero
// constraint set matches every record.
type Query struct {
	template archive.RecordKey
}

// New returns a query with an all-wildcard template.
func New() *Query {
	return &Query{template: archive.Template()}
}

// WithName constrains the variable name.
func (q *Query) WithName(name string) *Query {
	q.template.Name = name
	return q
}

// WithTypVar constrains the classification tag.
func (q *Query) WithTypVar(typvar string) *Query {
	q.template.TypVar = typvar
	return q
}

// WithEtiket constrains the free-form label.
func (q *Query) WithEtiket(etiket string) *Query {
	q.template.Etiket = etiket
	return q
}

// WithIP1 constrains the level encoding.
func (q *Query) WithIP1(ip1 int32) *Query {
	q.template.IP1 = ip1
	return q
}

// WithIP2 constrains the time encoding.
func (q *Query) WithIP2(ip2 int32) *Query {
	q.template.IP2 = ip2
	return q
}

// WithIP3 constrains the member encoding.
func (q *Query) WithIP3(ip3 int32) *Query {
	q.template.IP3 = ip3
	return q
}

// WithDateO constrains the origin timestamp.
func (q *Query) WithDateO(dateo int32) *Query {
	q.template.DateO = dateo
	return q
}

// Template returns the assembled search template.
func (q *Query) Template() archive.RecordKey {
	return q.template
}

// ResultIterator streams matching records in physical scan order.
type ResultIterator interface {
	// Next advances to the next match; false at exhaustion or on error.
	Next() bool
	// Handle returns the current record's handle.
	Handle() archive.Handle
	// Metadata returns the current record's full metadata.
	Metadata() archive.RecordMetadata
	// Err returns the error that stopped iteration, nil on normal exhaustion.
	Err() error
	// Close releases the iterator.
	Close() error
}
