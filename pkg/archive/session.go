package archive

import (
	"fmt"
	"hash/crc32"
	"os"
	"sync"

	"github.com/skadidb/skadi/pkg/codec"
)

// Handle identifies one record within its owning session. It is the record's
// physical scan position and stays valid until the session closes.
type Handle int

// Session owns an open archive file and its directory index. The read path
// is the only path: a session never mutates the file.
type Session struct {
	path   string
	file   *os.File
	dir    *Directory
	mutex  sync.Mutex
	isOpen bool
}

// Open validates the archive header, builds the directory index by walking
// the on-disk directory chain, and returns a ready session. Open is atomic:
// either the full index is built or an error is returned and no session
// exists.
func Open(path string) (*Session, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}

	dir, err := loadDirectory(file, stat.Size())
	if err != nil {
		file.Close()
		return nil, err
	}

	return &Session{
		path:   path,
		file:   file,
		dir:    dir,
		isOpen: true,
	}, nil
}

// Close releases the file handle. Every cursor and handle derived from the
// session becomes invalid; further operations fail ErrClosed. Closing twice
// is harmless.
func (s *Session) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isOpen {
		return nil
	}
	s.isOpen = false
	s.dir = nil
	return s.file.Close()
}

// Path returns the archive file path.
func (s *Session) Path() string {
	return s.path
}

// Count returns the number of directory entries, deleted ones included.
func (s *Session) Count() (int, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isOpen {
		return 0, ErrClosed
	}
	return s.dir.Len(), nil
}

// Directory returns the session's immutable directory index, for callers
// that layer their own lookup structures over it.
func (s *Session) Directory() (*Directory, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isOpen {
		return nil, ErrClosed
	}
	return s.dir, nil
}

// FindFirst scans the directory from the beginning for the first record
// matching the template and returns its handle together with a cursor for
// subsequent FindNext calls. With no match it returns ErrNotFound and an
// already-exhausted cursor; the session stays usable.
func (s *Session) FindFirst(template RecordKey) (Handle, *Cursor, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isOpen {
		return 0, nil, ErrClosed
	}

	cursor := &Cursor{session: s, template: template}
	pos := s.dir.match(0, template)
	if pos < 0 {
		cursor.exhausted = true
		return 0, cursor, ErrNotFound
	}

	cursor.position = pos
	return Handle(pos), cursor, nil
}

// FindNext resumes the cursor's search at the position after its last match.
// Once the directory end is reached the cursor is exhausted and every further
// call deterministically returns ErrExhausted.
func (s *Session) FindNext(cursor *Cursor) (Handle, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isOpen {
		return 0, ErrClosed
	}
	if cursor == nil || cursor.session != s {
		return 0, fmt.Errorf("cursor does not belong to this session")
	}
	if cursor.exhausted {
		return 0, ErrExhausted
	}

	pos := s.dir.match(cursor.position+1, cursor.template)
	if pos < 0 {
		cursor.exhausted = true
		return 0, ErrExhausted
	}

	cursor.position = pos
	return Handle(pos), nil
}

// Describe returns the full metadata of a record. Pure index lookup, no I/O.
func (s *Session) Describe(h Handle) (RecordMetadata, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isOpen {
		return RecordMetadata{}, ErrClosed
	}
	if int(h) < 0 || int(h) >= s.dir.Len() {
		return RecordMetadata{}, fmt.Errorf("%w: invalid record handle %d", ErrNotFound, h)
	}
	return s.dir.Entry(int(h)), nil
}

// Read decodes the record's payload into out, whose length must equal the
// record's ni*nj*nk. On ErrSizeMismatch the buffer is untouched; on ErrDecode
// the session stays usable for further operations.
func (s *Session) Read(h Handle, out []float32) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isOpen {
		return ErrClosed
	}
	if int(h) < 0 || int(h) >= s.dir.Len() {
		return fmt.Errorf("%w: invalid record handle %d", ErrNotFound, h)
	}

	meta := s.dir.Entry(int(h))
	if len(out) != meta.Elements() {
		return fmt.Errorf("%w: buffer holds %d elements, record has %d",
			ErrSizeMismatch, len(out), meta.Elements())
	}

	packed := make([]byte, meta.Length)
	if _, err := s.file.ReadAt(packed, int64(meta.Offset)); err != nil {
		return fmt.Errorf("%w: reading payload: %v", ErrDecode, err)
	}

	if crc := crc32.ChecksumIEEE(packed); crc != meta.Checksum {
		return fmt.Errorf("%w: payload checksum %08x, directory says %08x", ErrDecode, crc, meta.Checksum)
	}

	if err := codec.Decode(meta.DataType, meta.NBits, packed, out); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}
