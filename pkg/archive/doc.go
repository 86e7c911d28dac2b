// Package archive implements the SkadiDB record archive: a self-describing
// container of keyed meteorological records with an in-memory directory
// index, template search with wildcards, strictly-forward cursor enumeration
// and packed payload decoding.
//
// # File layout
//
// Archives are little-endian:
//
//	[header(32)][data region][directory blocks]
//
// The header carries the SKD1 magic, format version, record count and the
// offset of the first directory block. Directory blocks hold fixed 92-byte
// entries (the full record metadata plus payload offset, length and CRC32)
// and chain through a next-offset field.
//
// # Sessions
//
// A Session is read-only. Open scans the directory chain once, validates
// every entry against the file bounds, and freezes the index; the entry's
// scan position is the record's Handle for the session's lifetime. Search
// (FindFirst/FindNext) resolves ties to the lowest scan position and never
// revisits a record within one cursor.
//
// # Writing
//
// Writer produces new archives append-only: payloads stream out in call
// order and the directory is written once at Close. Updating or deleting
// records in an existing archive is not supported.
package archive
