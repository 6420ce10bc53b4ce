// Package mocatalog reads gettext MO message catalogs well enough to
// recover a flat msgid -> msgstr map. It is intentionally minimal: no
// plural-forms handling, no charset transcoding, no metadata parsing
// beyond what is needed to walk the two offset/length tables.
package mocatalog

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	magicLittleEndian = 0x950412de
	magicBigEndian    = 0xde120495
	headerSize        = 28
)

// Reader decodes a MO catalog's string table from an io.ReaderAt.
type Reader interface {
	Strings(r io.ReaderAt) (map[string]string, error)
}

// GettextReader is the only shipped Reader implementation.
type GettextReader struct{}

// NewReader returns the standard gettext MO reader.
func NewReader() GettextReader {
	return GettextReader{}
}

type header struct {
	order       binary.ByteOrder
	numStrings  uint32
	origTabOff  uint32
	transTabOff uint32
}

// Strings parses a full MO file from r and returns its msgid -> msgstr
// table. The catalog's own msgid "" metadata entry (charset, plural
// rules, translator credits) is included verbatim like any other entry;
// callers that want it stripped can drop the empty key themselves.
func (GettextReader) Strings(r io.ReaderAt) (map[string]string, error) {
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, h.numStrings)
	for i := uint32(0); i < h.numStrings; i++ {
		orig, err := readTableEntry(r, h.order, h.origTabOff, i)
		if err != nil {
			return nil, fmt.Errorf("mocatalog: reading original-string entry %d: %w", i, err)
		}
		trans, err := readTableEntry(r, h.order, h.transTabOff, i)
		if err != nil {
			return nil, fmt.Errorf("mocatalog: reading translated-string entry %d: %w", i, err)
		}
		out[orig] = trans
	}

	return out, nil
}

func readHeader(r io.ReaderAt) (header, error) {
	buf := make([]byte, headerSize)
	if _, err := r.ReadAt(buf, 0); err != nil {
		return header{}, fmt.Errorf("mocatalog: reading header: %w", err)
	}

	var order binary.ByteOrder
	switch binary.LittleEndian.Uint32(buf[0:4]) {
	case magicLittleEndian:
		order = binary.LittleEndian
	case magicBigEndian:
		order = binary.BigEndian
	default:
		return header{}, fmt.Errorf("mocatalog: not a MO file (bad magic)")
	}

	return header{
		order:       order,
		numStrings:  order.Uint32(buf[8:12]),
		origTabOff:  order.Uint32(buf[12:16]),
		transTabOff: order.Uint32(buf[16:20]),
	}, nil
}

// readTableEntry reads the (length, offset) pair at index idx of the
// table starting at tableOff, then reads the string it points to.
func readTableEntry(r io.ReaderAt, order binary.ByteOrder, tableOff, idx uint32) (string, error) {
	const entrySize = 8
	entry := make([]byte, entrySize)
	if _, err := r.ReadAt(entry, int64(tableOff)+int64(idx)*entrySize); err != nil {
		return "", err
	}

	length := order.Uint32(entry[0:4])
	offset := order.Uint32(entry[4:8])

	str := make([]byte, length)
	if length > 0 {
		if _, err := r.ReadAt(str, int64(offset)); err != nil {
			return "", err
		}
	}

	return string(str), nil
}
