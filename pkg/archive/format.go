package archive

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/skadidb/skadi/pkg/codec"
)

// On-disk layout, little-endian throughout.
//
//	[header(32)][data region][directory block]...[directory block]
//
// The header is written first with a zero record count and backpatched when
// the writer finalizes. Directory blocks chain through nextOffset; zero
// terminates the chain.
const (
	// Magic identifies a SkadiDB archive, followed by the format version.
	Magic   = "SKD1"
	Version = 1

	headerSize = 32

	// Directory block: entryCount(4) + reserved(4) + nextOffset(8).
	dirBlockHeaderSize = 16
	dirEntrySize       = 92
	maxEntriesPerBlock = 256

	maxBitWidth = 64
)

type header struct {
	recordCount   uint32
	dirBlockCount uint32
	dirOffset     uint64
}

func (h *header) marshal() []byte {
	buf := make([]byte, headerSize)
	copy(buf[0:4], Magic)
	binary.LittleEndian.PutUint16(buf[4:], Version)
	binary.LittleEndian.PutUint32(buf[8:], h.recordCount)
	binary.LittleEndian.PutUint32(buf[12:], h.dirBlockCount)
	binary.LittleEndian.PutUint64(buf[16:], h.dirOffset)
	return buf
}

func (h *header) unmarshal(buf []byte) error {
	if len(buf) < headerSize {
		return fmt.Errorf("%w: short header", ErrCorrupt)
	}
	if string(buf[0:4]) != Magic {
		return fmt.Errorf("%w: bad magic %q", ErrCorrupt, buf[0:4])
	}
	if v := binary.LittleEndian.Uint16(buf[4:]); v != Version {
		return fmt.Errorf("%w: unsupported version %d", ErrCorrupt, v)
	}
	h.recordCount = binary.LittleEndian.Uint32(buf[8:])
	h.dirBlockCount = binary.LittleEndian.Uint32(buf[12:])
	h.dirOffset = binary.LittleEndian.Uint64(buf[16:])
	return nil
}

const entryFlagDeleted = 0x01

// putPadded writes s into dst space-padded to its full width.
func putPadded(dst []byte, s string) {
	for i := range dst {
		dst[i] = ' '
	}
	copy(dst, s)
}

func trimPadded(src []byte) string {
	return strings.TrimRight(string(src), " ")
}

func marshalEntry(buf []byte, m *RecordMetadata) {
	putPadded(buf[0:4], m.Name)
	putPadded(buf[4:6], m.TypVar)
	putPadded(buf[6:7], m.GridType)
	var flags byte
	if m.Deleted {
		flags |= entryFlagDeleted
	}
	buf[7] = flags
	putPadded(buf[8:20], m.Etiket)
	binary.LittleEndian.PutUint32(buf[20:], uint32(m.DateO))
	binary.LittleEndian.PutUint32(buf[24:], uint32(m.Deet))
	binary.LittleEndian.PutUint32(buf[28:], uint32(m.Npas))
	binary.LittleEndian.PutUint32(buf[32:], uint32(m.NI))
	binary.LittleEndian.PutUint32(buf[36:], uint32(m.NJ))
	binary.LittleEndian.PutUint32(buf[40:], uint32(m.NK))
	binary.LittleEndian.PutUint32(buf[44:], uint32(m.IP1))
	binary.LittleEndian.PutUint32(buf[48:], uint32(m.IP2))
	binary.LittleEndian.PutUint32(buf[52:], uint32(m.IP3))
	binary.LittleEndian.PutUint32(buf[56:], uint32(m.IG1))
	binary.LittleEndian.PutUint32(buf[60:], uint32(m.IG2))
	binary.LittleEndian.PutUint32(buf[64:], uint32(m.IG3))
	binary.LittleEndian.PutUint32(buf[68:], uint32(m.IG4))
	buf[72] = m.NBits
	buf[73] = byte(m.DataType)
	binary.LittleEndian.PutUint64(buf[76:], m.Offset)
	binary.LittleEndian.PutUint32(buf[84:], m.Length)
	binary.LittleEndian.PutUint32(buf[88:], m.Checksum)
}

func unmarshalEntry(buf []byte) RecordMetadata {
	var m RecordMetadata
	m.Name = trimPadded(buf[0:4])
	m.TypVar = trimPadded(buf[4:6])
	m.GridType = trimPadded(buf[6:7])
	m.Deleted = buf[7]&entryFlagDeleted != 0
	m.Etiket = trimPadded(buf[8:20])
	m.DateO = int32(binary.LittleEndian.Uint32(buf[20:]))
	m.Deet = int32(binary.LittleEndian.Uint32(buf[24:]))
	m.Npas = int32(binary.LittleEndian.Uint32(buf[28:]))
	m.NI = int32(binary.LittleEndian.Uint32(buf[32:]))
	m.NJ = int32(binary.LittleEndian.Uint32(buf[36:]))
	m.NK = int32(binary.LittleEndian.Uint32(buf[40:]))
	m.IP1 = int32(binary.LittleEndian.Uint32(buf[44:]))
	m.IP2 = int32(binary.LittleEndian.Uint32(buf[48:]))
	m.IP3 = int32(binary.LittleEndian.Uint32(buf[52:]))
	m.IG1 = int32(binary.LittleEndian.Uint32(buf[56:]))
	m.IG2 = int32(binary.LittleEndian.Uint32(buf[60:]))
	m.IG3 = int32(binary.LittleEndian.Uint32(buf[64:]))
	m.IG4 = int32(binary.LittleEndian.Uint32(buf[68:]))
	m.NBits = buf[72]
	m.DataType = codec.DataType(buf[73])
	m.Offset = binary.LittleEndian.Uint64(buf[76:])
	m.Length = binary.LittleEndian.Uint32(buf[84:])
	m.Checksum = binary.LittleEndian.Uint32(buf[88:])
	return m
}

// validateEntry enforces the invariants a directory entry must satisfy
// against the containing file's size.
func validateEntry(m *RecordMetadata, fileSize int64) error {
	if m.NI <= 0 || m.NJ <= 0 || m.NK <= 0 {
		return fmt.Errorf("%w: record %q has dimensions %dx%dx%d", ErrCorrupt, m.Name, m.NI, m.NJ, m.NK)
	}
	if m.NBits < 1 || m.NBits > maxBitWidth {
		return fmt.Errorf("%w: record %q has bit width %d", ErrCorrupt, m.Name, m.NBits)
	}
	if !codec.Registered(m.DataType) {
		return fmt.Errorf("%w: record %q has unknown data type %d", ErrCorrupt, m.Name, m.DataType)
	}
	end := m.Offset + uint64(m.Length)
	if end < m.Offset || end > uint64(fileSize) {
		return fmt.Errorf("%w: record %q spans [%d,%d) beyond file size %d",
			ErrCorrupt, m.Name, m.Offset, end, fileSize)
	}
	return nil
}
