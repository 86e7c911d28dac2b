package archive

// Errors
var (
	// ErrNotFound is returned by a search with no matching record. The
	// session stays usable.
	ErrNotFound = &ArchiveError{"no record matches the search template"}

	// ErrExhausted is the terminal signal of an enumeration, returned by
	// every FindNext past the last match.
	ErrExhausted = &ArchiveError{"search exhausted"}

	// ErrCorrupt means the archive's directory is inconsistent. The session
	// cannot be opened.
	ErrCorrupt = &ArchiveError{"archive directory corrupt"}

	// ErrSizeMismatch means the caller's buffer does not match the record's
	// declared dimensions.
	ErrSizeMismatch = &ArchiveError{"buffer size does not match record dimensions"}

	// ErrDecode means the payload could not be decoded. Only that read
	// fails; the session stays usable.
	ErrDecode = &ArchiveError{"payload decode failed"}

	// ErrClosed is returned for any operation on a closed session or writer,
	// or on cursors and handles derived from one.
	ErrClosed = &ArchiveError{"session is closed"}
)

// ArchiveError represents an archive engine error.
type ArchiveError struct {
	Message string
}

func (e *ArchiveError) Error() string {
	return e.Message
}
