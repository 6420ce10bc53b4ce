// Package binreader provides bounds-checked little-endian field reads and
// null-terminated string extraction over an in-memory byte buffer. It is
// the only package that touches raw bytes directly; every higher-level
// parser in this module goes through it.
package binreader

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	"github.com/wowsunpack/wowsunpack/internal/xerrors"
)

// ReadUint32LE reads a little-endian uint32 at offset.
func ReadUint32LE(buf []byte, offset int) (uint32, error) {
	if err := checkBounds(buf, offset, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[offset:]), nil
}

// ReadInt32LE reads a little-endian int32 at offset.
func ReadInt32LE(buf []byte, offset int) (int32, error) {
	v, err := ReadUint32LE(buf, offset)
	return int32(v), err
}

// ReadUint64LE reads a little-endian uint64 at offset.
func ReadUint64LE(buf []byte, offset int) (uint64, error) {
	if err := checkBounds(buf, offset, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[offset:]), nil
}

// ReadInt64LE reads a little-endian int64 at offset.
func ReadInt64LE(buf []byte, offset int) (int64, error) {
	v, err := ReadUint64LE(buf, offset)
	return int64(v), err
}

// ReadCString scans forward from offset for the first 0x00 byte and returns
// the bytes in between decoded as UTF-8. It fails if no terminator is found
// before the end of the buffer, or if the span does not decode as valid
// UTF-8. If buf[offset] is itself the terminator, it returns ErrEmptyString
// — the caller decides whether an empty name is fatal in its context.
func ReadCString(buf []byte, offset int) (string, error) {
	if offset < 0 || offset > len(buf) {
		return "", fmt.Errorf("read cstring at %d: offset out of range (len %d)", offset, len(buf))
	}

	end := offset
	for end < len(buf) && buf[end] != 0 {
		end++
	}
	if end >= len(buf) {
		return "", fmt.Errorf("read cstring at %d: no null terminator before end of buffer", offset)
	}

	if end == offset {
		return "", xerrors.ErrEmptyString
	}

	s := buf[offset:end]
	if !utf8.Valid(s) {
		return "", fmt.Errorf("read cstring at %d: invalid utf-8", offset)
	}
	return string(s), nil
}

func checkBounds(buf []byte, offset, size int) error {
	if offset < 0 || offset+size > len(buf) {
		return fmt.Errorf("read at %d: out of range (need %d bytes, have %d)", offset, size, len(buf)-offset)
	}
	return nil
}
