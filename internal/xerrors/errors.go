// Package xerrors defines the sentinel error kinds surfaced across the
// idx/pkg extraction pipeline, so callers can classify failures with
// errors.Is regardless of which layer wrapped them.
package xerrors

import "errors"

var (
	// ErrMalformedIdx covers header/section size/offset violations, bad
	// magic bytes, and any other structural problem in a .idx file.
	ErrMalformedIdx = errors.New("malformed idx file")

	// ErrMissingPackages means a game install root has no res_packages
	// directory.
	ErrMissingPackages = errors.New("res_packages directory not found")

	// ErrMissingIdxDir means the install root's bin directory, which holds
	// the numbered build directories and their idx subdirectories, cannot
	// be read. A single build without an idx subdirectory is skipped, not
	// reported with this error.
	ErrMissingIdxDir = errors.New("idx directory not found")

	// ErrNoBuild means discovery walked every candidate build and none
	// had a usable idx directory.
	ErrNoBuild = errors.New("no complete build found under bin/")

	// ErrUnknownPath means a query resolved to no node in the tree. It is
	// non-fatal: callers log it and treat the result as empty.
	ErrUnknownPath = errors.New("path not found in directory tree")

	// ErrOutOfBounds means a file record's (offset, offset+size) range
	// does not fit inside its package file.
	ErrOutOfBounds = errors.New("file record out of bounds of package file")

	// ErrIoRead is a read-side filesystem failure during extraction.
	ErrIoRead = errors.New("io read failure")

	// ErrIoWrite is a write-side filesystem failure during extraction.
	ErrIoWrite = errors.New("io write failure")

	// ErrDecompress covers DEFLATE failures and uncompressed-size
	// mismatches.
	ErrDecompress = errors.New("decompression failure")

	// ErrFfi covers native-library load or call failures, confined to the
	// gameparams bridge.
	ErrFfi = errors.New("native library call failed")

	// ErrEmptyString is returned by ReadCString when the byte at offset
	// is already the terminator — callers decide whether that is fatal.
	ErrEmptyString = errors.New("empty string")
)
