package query

import (
	"errors"
	"sync"

	"github.com/skadidb/skadi/pkg/archive"
	"github.com/skadidb/skadi/pkg/index"
)

// Engine executes queries over one session. The secondary indexes are built
// from the session's directory on first use and reused afterwards, which is
// safe because the directory never changes while the session is open.
type Engine struct {
	session *archive.Session

	once    sync.Once
	indexes *index.IndexManager
	initErr error
}

// NewEngine creates a query engine for a session.
func NewEngine(session *archive.Session) *Engine {
	return &Engine{session: session}
}

func (e *Engine) buildIndexes() {
	dir, err := e.session.Directory()
	if err != nil {
		e.initErr = err
		return
	}
	e.indexes = index.NewIndexManager()
	e.indexes.BuildFromDirectory(dir)
}

// Execute runs the query and returns an iterator over the matches, in
// physical scan order. An empty result is not an error; the iterator's first
// Next simply returns false.
func (e *Engine) Execute(q *Query) (ResultIterator, error) {
	e.once.Do(e.buildIndexes)
	if e.initErr != nil {
		return nil, e.initErr
	}

	template := q.Template()
	if candidates, narrowed := e.indexes.Candidates(template); narrowed {
		return &positionIterator{
			session:   e.session,
			template:  template,
			positions: candidates,
		}, nil
	}

	return &cursorIterator{session: e.session, template: template}, nil
}

// positionIterator walks an index-narrowed candidate list, verifying the
// full template against each candidate's metadata.
type positionIterator struct {
	session   *archive.Session
	template  archive.RecordKey
	positions []int
	current   archive.Handle
	meta      archive.RecordMetadata
	err       error
}

func (it *positionIterator) Next() bool {
	for len(it.positions) > 0 {
		pos := it.positions[0]
		it.positions = it.positions[1:]

		meta, err := it.session.Describe(archive.Handle(pos))
		if err != nil {
			it.err = err
			return false
		}
		if meta.Deleted || !it.template.Matches(meta.RecordKey) {
			continue
		}

		it.current = archive.Handle(pos)
		it.meta = meta
		return true
	}
	return false
}

func (it *positionIterator) Handle() archive.Handle           { return it.current }
func (it *positionIterator) Metadata() archive.RecordMetadata { return it.meta }
func (it *positionIterator) Err() error                       { return it.err }
func (it *positionIterator) Close() error                     { return nil }

// cursorIterator falls back to the session's native cursor scan.
type cursorIterator struct {
	session  *archive.Session
	template archive.RecordKey
	cursor   *archive.Cursor
	current  archive.Handle
	meta     archive.RecordMetadata
	started  bool
	err      error
}

func (it *cursorIterator) Next() bool {
	var h archive.Handle
	var err error

	if !it.started {
		it.started = true
		h, it.cursor, err = it.session.FindFirst(it.template)
		if errors.Is(err, archive.ErrNotFound) {
			return false
		}
	} else {
		h, err = it.session.FindNext(it.cursor)
		if errors.Is(err, archive.ErrExhausted) {
			return false
		}
	}
	if err != nil {
		it.err = err
		return false
	}

	meta, err := it.session.Describe(h)
	if err != nil {
		it.err = err
		return false
	}

	it.current = h
	it.meta = meta
	return true
}

func (it *cursorIterator) Handle() archive.Handle           { return it.current }
func (it *cursorIterator) Metadata() archive.RecordMetadata { return it.meta }
func (it *cursorIterator) Err() error                       { return it.err }
func (it *cursorIterator) Close() error                     { return nil }
