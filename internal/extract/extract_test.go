package extract

import (
	"bytes"
	"compress/flate"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wowsunpack/wowsunpack/internal/idxfile"
	"github.com/wowsunpack/wowsunpack/internal/xerrors"
)

func writePkg(t *testing.T, dir, name string, content []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), content, 0o644))
}

func deflateRaw(t *testing.T, plain []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	require.NoError(t, err)
	_, err = w.Write(plain)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestExtractStoredFile(t *testing.T) {
	pkgRoot := t.TempDir()
	destRoot := t.TempDir()
	content := []byte("hello, pkg")
	writePkg(t, pkgRoot, "demo.pkg", content)

	rec := idxfile.FileRecord{
		Path: "gui/hello.txt", PkgName: "demo.pkg",
		Offset: 0, Size: int32(len(content)), UncompressedSize: int64(len(content)),
	}

	e := New(pkgRoot, destRoot)
	destPath, err := e.One(context.Background(), rec)
	require.NoError(t, err)

	got, err := os.ReadFile(destPath)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, filepath.Join(destRoot, "gui", "hello.txt"), destPath)
}

func TestExtractCompressedFile(t *testing.T) {
	pkgRoot := t.TempDir()
	destRoot := t.TempDir()
	plain := bytes.Repeat([]byte("abcdefgh"), 64)
	compressed := deflateRaw(t, plain)
	writePkg(t, pkgRoot, "demo.pkg", compressed)

	rec := idxfile.FileRecord{
		Path: "data/blob.bin", PkgName: "demo.pkg",
		Offset: 0, Size: int32(len(compressed)), UncompressedSize: int64(len(plain)),
	}

	e := New(pkgRoot, destRoot)
	destPath, err := e.One(context.Background(), rec)
	require.NoError(t, err)

	got, err := os.ReadFile(destPath)
	require.NoError(t, err)
	assert.Equal(t, plain, got)
}

func TestExtractOutOfBounds(t *testing.T) {
	pkgRoot := t.TempDir()
	destRoot := t.TempDir()
	writePkg(t, pkgRoot, "demo.pkg", []byte("short"))

	rec := idxfile.FileRecord{
		Path: "x.bin", PkgName: "demo.pkg",
		Offset: 0, Size: 1000, UncompressedSize: 1000,
	}

	e := New(pkgRoot, destRoot)
	_, err := e.One(context.Background(), rec)
	assert.ErrorIs(t, err, xerrors.ErrOutOfBounds)
}

func TestExtractMissingPackage(t *testing.T) {
	pkgRoot := t.TempDir()
	destRoot := t.TempDir()

	rec := idxfile.FileRecord{Path: "x.bin", PkgName: "missing.pkg", Size: 1, UncompressedSize: 1}

	e := New(pkgRoot, destRoot)
	_, err := e.One(context.Background(), rec)
	assert.ErrorIs(t, err, xerrors.ErrIoRead)
}

func TestExtractDecompressionMismatch(t *testing.T) {
	pkgRoot := t.TempDir()
	destRoot := t.TempDir()
	writePkg(t, pkgRoot, "demo.pkg", []byte{0xff, 0xff, 0xff, 0xff})

	rec := idxfile.FileRecord{
		Path: "x.bin", PkgName: "demo.pkg",
		Offset: 0, Size: 4, UncompressedSize: 100,
	}

	e := New(pkgRoot, destRoot)
	_, err := e.One(context.Background(), rec)
	assert.ErrorIs(t, err, xerrors.ErrDecompress)
}

func TestExtractCreatesParentDirectories(t *testing.T) {
	pkgRoot := t.TempDir()
	destRoot := t.TempDir()
	writePkg(t, pkgRoot, "demo.pkg", []byte("x"))

	rec := idxfile.FileRecord{
		Path: "a/b/c/d.bin", PkgName: "demo.pkg",
		Offset: 0, Size: 1, UncompressedSize: 1,
	}

	e := New(pkgRoot, destRoot)
	destPath, err := e.One(context.Background(), rec)
	require.NoError(t, err)

	_, err = os.Stat(destPath)
	assert.NoError(t, err)
}

func TestExtractWithMemFS(t *testing.T) {
	pkgRoot := t.TempDir()
	writePkg(t, pkgRoot, "demo.pkg", []byte("in memory"))

	rec := idxfile.FileRecord{
		Path: "gui/hello.txt", PkgName: "demo.pkg",
		Offset: 0, Size: 9, UncompressedSize: 9,
	}

	memFS := afero.NewMemMapFs()
	e := NewWithFS(pkgRoot, "/out", memFS)
	destPath, err := e.One(context.Background(), rec)
	require.NoError(t, err)

	got, err := afero.ReadFile(memFS, destPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("in memory"), got)

	_, err = os.Stat(destPath)
	assert.True(t, os.IsNotExist(err), "memfs writes must not touch the real filesystem")
}

func TestBatchNeverAbortsOnSingleFailure(t *testing.T) {
	pkgRoot := t.TempDir()
	destRoot := t.TempDir()
	writePkg(t, pkgRoot, "demo.pkg", []byte("0123456789"))

	recs := []idxfile.FileRecord{
		{Path: "ok.bin", PkgName: "demo.pkg", Offset: 0, Size: 10, UncompressedSize: 10},
		{Path: "bad.bin", PkgName: "demo.pkg", Offset: 0, Size: 9999, UncompressedSize: 9999},
	}

	e := New(pkgRoot, destRoot)
	outcomes := e.Batch(context.Background(), recs, 4)

	require.Len(t, outcomes, 2)
	assert.NoError(t, outcomes[0].Err)
	assert.ErrorIs(t, outcomes[1].Err, xerrors.ErrOutOfBounds)
}
