// Package extract reads payloads out of res_packages .pkg files and writes
// them to a destination tree, inflating raw-DEFLATE-compressed entries as
// needed.
package extract

import (
	"bytes"
	"compress/flate"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/spf13/afero"
	"github.com/wowsunpack/wowsunpack/internal/idxfile"
	"github.com/wowsunpack/wowsunpack/internal/pathutil"
	"github.com/wowsunpack/wowsunpack/internal/xerrors"
)

// Extractor reads package payloads out of pkgRoot and writes them under
// destRoot. The destination side goes through an afero.Fs so callers can
// swap in an in-memory filesystem for tests or a staged/overlay one for
// dry runs, without this package knowing the difference.
type Extractor struct {
	pkgRoot  string
	destRoot string
	destFS   afero.Fs
}

// New returns an Extractor reading packages from pkgRoot and writing
// extracted files under destRoot on the real filesystem.
func New(pkgRoot, destRoot string) *Extractor {
	return NewWithFS(pkgRoot, destRoot, afero.NewOsFs())
}

// NewWithFS is New with an explicit destination filesystem.
func NewWithFS(pkgRoot, destRoot string, destFS afero.Fs) *Extractor {
	return &Extractor{pkgRoot: pkgRoot, destRoot: destRoot, destFS: destFS}
}

// One extracts a single file record, returning the destination path it was
// written to.
func (e *Extractor) One(ctx context.Context, rec idxfile.FileRecord) (string, error) {
	pkgPath := filepath.Join(e.pkgRoot, rec.PkgName)

	f, err := openWithRetry(ctx, pkgPath)
	if err != nil {
		return "", fmt.Errorf("%w: opening package %s: %v", xerrors.ErrIoRead, pkgPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("%w: stat package %s: %v", xerrors.ErrIoRead, pkgPath, err)
	}

	if rec.Offset < 0 || rec.Offset+int64(rec.Size) > info.Size() {
		return "", fmt.Errorf("%w: %s at offset %d size %d exceeds package length %d",
			xerrors.ErrOutOfBounds, rec.Path, rec.Offset, rec.Size, info.Size())
	}

	raw := make([]byte, rec.Size)
	if _, err := f.ReadAt(raw, rec.Offset); err != nil {
		return "", fmt.Errorf("%w: reading %s from %s: %v", xerrors.ErrIoRead, rec.Path, pkgPath, err)
	}

	payload, err := inflate(raw, rec)
	if err != nil {
		return "", err
	}

	destPath := filepath.Join(e.destRoot, filepath.FromSlash(rec.Path))
	if err := writeAtomic(e.destFS, destPath, payload); err != nil {
		return "", err
	}

	return destPath, nil
}

// Outcome is the result of extracting a single file record as part of a
// batch.
type Outcome struct {
	Record idxfile.FileRecord
	Path   string
	Err    error
}

func inflate(raw []byte, rec idxfile.FileRecord) ([]byte, error) {
	if rec.Stored() {
		return raw, nil
	}

	zr := flate.NewReader(bytes.NewReader(raw))
	defer zr.Close()

	out := make([]byte, rec.UncompressedSize)
	n, err := io.ReadFull(zr, out)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("%w: %s: %v", xerrors.ErrDecompress, rec.Path, err)
	}
	if int64(n) != rec.UncompressedSize {
		return nil, fmt.Errorf("%w: %s: inflated %d bytes, want %d", xerrors.ErrDecompress, rec.Path, n, rec.UncompressedSize)
	}

	// A well-formed raw-DEFLATE stream ends exactly at the expected size;
	// anything trailing it is not part of this entry's payload.
	return out, nil
}

// writeAtomic writes data to a temporary sibling of destPath on fsys, then
// renames it over destPath, so a reader never observes a partially
// written file.
func writeAtomic(fsys afero.Fs, destPath string, data []byte) error {
	dir := filepath.Dir(destPath)
	if err := fsys.MkdirAll(dir, 0o755); err != nil && !os.IsExist(err) {
		return fmt.Errorf("%w: creating %s: %v", xerrors.ErrIoWrite, dir, err)
	}

	tmp, err := afero.TempFile(fsys, dir, ".wowsunpack-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: creating temp file in %s: %v", xerrors.ErrIoWrite, dir, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		fsys.Remove(tmpPath)
		return fmt.Errorf("%w: writing %s: %v", xerrors.ErrIoWrite, tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		fsys.Remove(tmpPath)
		return fmt.Errorf("%w: closing %s: %v", xerrors.ErrIoWrite, tmpPath, err)
	}

	if err := fsys.Rename(tmpPath, destPath); err != nil {
		fsys.Remove(tmpPath)
		return fmt.Errorf("%w: renaming %s to %s: %v", xerrors.ErrIoWrite, tmpPath, destPath, err)
	}
	return nil
}

// openWithRetry opens pkgPath for reading, retrying a bounded number of
// times on a missing or momentarily-locked file — the game client holds a
// brief advisory lock on package files during its own startup scan.
func openWithRetry(ctx context.Context, pkgPath string) (*os.File, error) {
	var f *os.File
	err := retry.Do(
		func() error {
			opened, err := os.Open(pkgPath)
			if err != nil {
				return err
			}
			f = opened
			return nil
		},
		retry.Attempts(5),
		retry.Delay(50*time.Millisecond),
		retry.MaxDelay(time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(func(err error) bool {
			return os.IsNotExist(err) || os.IsPermission(err)
		}),
		retry.OnRetry(func(n uint, err error) {
			slog.DebugContext(ctx, "package file not yet available, retrying",
				"attempt", n+1, "path", pkgPath, "error", err)
		}),
		retry.Context(ctx),
	)
	return f, err
}

// RemoveEmptyDestDirs cleans up empty parent directories left behind after
// extraction under a prefix removal (e.g. a failed batch that partially
// wrote then was rolled back by the caller).
func RemoveEmptyDestDirs(destRoot, path string) {
	pathutil.RemoveEmptyDirs(destRoot, path)
}
