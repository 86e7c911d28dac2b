package archive

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Directory is the in-memory catalog of all records' metadata, built once
// when a session opens and immutable afterwards. A record's position in the
// entry slice is its stable handle for the session's lifetime.
type Directory struct {
	entries []RecordMetadata
}

// loadDirectory walks the on-disk directory chain and validates every entry
// against the file bounds.
func loadDirectory(r io.ReaderAt, fileSize int64) (*Directory, error) {
	hdr := make([]byte, headerSize)
	if _, err := r.ReadAt(hdr, 0); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	var h header
	if err := h.unmarshal(hdr); err != nil {
		return nil, err
	}

	if h.dirOffset > uint64(fileSize) {
		return nil, fmt.Errorf("%w: directory offset %d beyond file size %d", ErrCorrupt, h.dirOffset, fileSize)
	}

	dir := &Directory{entries: make([]RecordMetadata, 0, h.recordCount)}

	offset := h.dirOffset
	var blocks uint32
	for offset != 0 {
		if blocks >= h.dirBlockCount {
			return nil, fmt.Errorf("%w: directory chain longer than declared %d blocks", ErrCorrupt, h.dirBlockCount)
		}

		blockHdr := make([]byte, dirBlockHeaderSize)
		if _, err := r.ReadAt(blockHdr, int64(offset)); err != nil {
			return nil, fmt.Errorf("%w: directory block at %d: %v", ErrCorrupt, offset, err)
		}

		count := binary.LittleEndian.Uint32(blockHdr[0:])
		next := binary.LittleEndian.Uint64(blockHdr[8:])
		if count == 0 || count > maxEntriesPerBlock {
			return nil, fmt.Errorf("%w: directory block at %d declares %d entries", ErrCorrupt, offset, count)
		}

		body := make([]byte, int(count)*dirEntrySize)
		if _, err := r.ReadAt(body, int64(offset)+dirBlockHeaderSize); err != nil {
			return nil, fmt.Errorf("%w: directory block at %d: %v", ErrCorrupt, offset, err)
		}

		for i := 0; i < int(count); i++ {
			m := unmarshalEntry(body[i*dirEntrySize:])
			if err := validateEntry(&m, fileSize); err != nil {
				return nil, err
			}
			dir.entries = append(dir.entries, m)
		}

		offset = next
		blocks++
	}

	if uint32(len(dir.entries)) != h.recordCount {
		return nil, fmt.Errorf("%w: directory holds %d entries, header declares %d",
			ErrCorrupt, len(dir.entries), h.recordCount)
	}

	return dir, nil
}

// Len returns the number of records, deleted entries included.
func (d *Directory) Len() int {
	return len(d.entries)
}

// Entry returns the metadata at a scan position.
func (d *Directory) Entry(pos int) RecordMetadata {
	return d.entries[pos]
}

// match returns the lowest scan position >= from whose entry satisfies the
// template, or -1. Deleted entries never match.
func (d *Directory) match(from int, template RecordKey) int {
	if from < 0 {
		from = 0
	}
	for pos := from; pos < len(d.entries); pos++ {
		e := &d.entries[pos]
		if e.Deleted {
			continue
		}
		if template.Matches(e.RecordKey) {
			return pos
		}
	}
	return -1
}
