package archive

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/skadidb/skadi/pkg/codec"
)

// RecordParams describes one record to append: a fully concrete key plus its
// dimensions, grid descriptors and codec parameters.
type RecordParams struct {
	Name   string
	TypVar string
	Etiket string
	IP1    int32
	IP2    int32
	IP3    int32
	DateO  int32

	Deet int32
	Npas int32

	NI, NJ, NK int32

	GridType           string
	IG1, IG2, IG3, IG4 int32

	NBits    uint8
	DataType codec.DataType
}

// Writer produces a new archive: header first, payloads appended in call
// order, directory chain written on Close. There is no update or delete; the
// directory is written once.
type Writer struct {
	file    *os.File
	writer  *bufio.Writer
	entries []RecordMetadata
	offset  uint64
	mutex   sync.Mutex
	isOpen  bool
}

// Create opens a new archive file for writing, truncating any previous file
// at that path.
func Create(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0600)
	if err != nil {
		return nil, err
	}

	w := &Writer{
		file:   file,
		writer: bufio.NewWriterSize(file, 64*1024),
		offset: headerSize,
		isOpen: true,
	}

	// Placeholder header, backpatched on Close.
	empty := header{}
	if _, err := w.writer.Write(empty.marshal()); err != nil {
		file.Close()
		return nil, err
	}

	return w, nil
}

func checkParams(p *RecordParams, n int) error {
	if name := strings.TrimSpace(p.Name); name == "" || len(name) > NameLen {
		return fmt.Errorf("record name %q must be 1..%d characters", p.Name, NameLen)
	}
	if len(strings.TrimSpace(p.TypVar)) > TypVarLen {
		return fmt.Errorf("typvar %q exceeds %d characters", p.TypVar, TypVarLen)
	}
	if len(strings.TrimSpace(p.Etiket)) > EtiketLen {
		return fmt.Errorf("etiket %q exceeds %d characters", p.Etiket, EtiketLen)
	}
	if len(p.GridType) > 1 {
		return fmt.Errorf("grid type %q must be a single character", p.GridType)
	}
	if p.IP1 < 0 || p.IP2 < 0 || p.IP3 < 0 || p.DateO < 0 {
		return fmt.Errorf("stored keys must be concrete: ip1=%d ip2=%d ip3=%d dateo=%d",
			p.IP1, p.IP2, p.IP3, p.DateO)
	}
	if p.NI <= 0 || p.NJ <= 0 || p.NK <= 0 {
		return fmt.Errorf("dimensions %dx%dx%d must be positive", p.NI, p.NJ, p.NK)
	}
	if elems := int(p.NI) * int(p.NJ) * int(p.NK); elems != n {
		return fmt.Errorf("%d values for declared dimensions %dx%dx%d", n, p.NI, p.NJ, p.NK)
	}
	if p.NBits < 1 || p.NBits > maxBitWidth {
		return fmt.Errorf("bit width %d outside 1..%d", p.NBits, maxBitWidth)
	}
	if !codec.Registered(p.DataType) {
		return fmt.Errorf("no codec registered for data type %d", p.DataType)
	}
	return nil
}

// Append encodes values through the codec selected by the params and writes
// the packed payload to the data region.
func (w *Writer) Append(p RecordParams, values []float32) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if !w.isOpen {
		return ErrClosed
	}
	if err := checkParams(&p, len(values)); err != nil {
		return err
	}

	packed, err := codec.Encode(p.DataType, p.NBits, values)
	if err != nil {
		return err
	}

	n, err := w.writer.Write(packed)
	if err != nil {
		return err
	}

	meta := RecordMetadata{
		RecordKey: RecordKey{
			Name:   strings.TrimSpace(p.Name),
			TypVar: strings.TrimSpace(p.TypVar),
			Etiket: strings.TrimSpace(p.Etiket),
			IP1:    p.IP1,
			IP2:    p.IP2,
			IP3:    p.IP3,
			DateO:  p.DateO,
		},
		Deet:     p.Deet,
		Npas:     p.Npas,
		NI:       p.NI,
		NJ:       p.NJ,
		NK:       p.NK,
		GridType: p.GridType,
		IG1:      p.IG1,
		IG2:      p.IG2,
		IG3:      p.IG3,
		IG4:      p.IG4,
		NBits:    p.NBits,
		DataType: p.DataType,
		Offset:   w.offset,
		Length:   uint32(len(packed)),
		Checksum: crc32.ChecksumIEEE(packed),
	}
	w.entries = append(w.entries, meta)
	w.offset += uint64(n)
	return nil
}

// Count returns the number of records appended so far.
func (w *Writer) Count() int {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return len(w.entries)
}

// Close writes the directory chain after the data region, backpatches the
// header and syncs the file. The writer is unusable afterwards.
func (w *Writer) Close() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if !w.isOpen {
		return ErrClosed
	}
	w.isOpen = false

	dirOffset := w.offset
	blocks := uint32(0)

	for start := 0; start < len(w.entries); start += maxEntriesPerBlock {
		end := start + maxEntriesPerBlock
		if end > len(w.entries) {
			end = len(w.entries)
		}
		count := end - start

		blockHdr := make([]byte, dirBlockHeaderSize)
		binary.LittleEndian.PutUint32(blockHdr[0:], uint32(count))
		next := uint64(0)
		if end < len(w.entries) {
			next = w.offset + uint64(dirBlockHeaderSize+count*dirEntrySize)
		}
		binary.LittleEndian.PutUint64(blockHdr[8:], next)

		if _, err := w.writer.Write(blockHdr); err != nil {
			w.file.Close()
			return err
		}

		buf := make([]byte, dirEntrySize)
		for i := start; i < end; i++ {
			marshalEntry(buf, &w.entries[i])
			if _, err := w.writer.Write(buf); err != nil {
				w.file.Close()
				return err
			}
		}

		w.offset += uint64(dirBlockHeaderSize + count*dirEntrySize)
		blocks++
	}

	if err := w.writer.Flush(); err != nil {
		w.file.Close()
		return err
	}

	h := header{
		recordCount:   uint32(len(w.entries)),
		dirBlockCount: blocks,
		dirOffset:     dirOffset,
	}
	if len(w.entries) == 0 {
		h.dirOffset = 0
	}
	if _, err := w.file.WriteAt(h.marshal(), 0); err != nil {
		w.file.Close()
		return err
	}

	if err := w.file.Sync(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}
