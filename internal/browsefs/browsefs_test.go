package browsefs

import (
	"bytes"
	"compress/flate"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wowsunpack/wowsunpack/internal/dirtree"
	"github.com/wowsunpack/wowsunpack/internal/idxfile"
)

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

func TestOpenStoredFileStreamsContent(t *testing.T) {
	pkgRoot := t.TempDir()
	content := []byte("hello from the archive")
	require.NoError(t, os.WriteFile(filepath.Join(pkgRoot, "gui.pkg"), content, 0o644))

	tree := dirtree.New()
	tree.Insert(idxfile.FileRecord{
		Path: "gui/hello.txt", PkgName: "gui.pkg",
		Offset: 0, Size: int32(len(content)), UncompressedSize: int64(len(content)),
	})

	fsys := New(tree, pkgRoot)
	vf, err := fsys.Open("gui/hello.txt")
	require.NoError(t, err)
	defer vf.Close()

	got, err := io.ReadAll(vf)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestOpenCompressedFileInflates(t *testing.T) {
	pkgRoot := t.TempDir()
	plain := bytes.Repeat([]byte("xyz123"), 100)
	compressed := deflateRaw(t, plain)
	require.NoError(t, os.WriteFile(filepath.Join(pkgRoot, "data.pkg"), compressed, 0o644))

	tree := dirtree.New()
	tree.Insert(idxfile.FileRecord{
		Path: "data/blob.bin", PkgName: "data.pkg",
		Offset: 0, Size: int32(len(compressed)), UncompressedSize: int64(len(plain)),
	})

	fsys := New(tree, pkgRoot)
	vf, err := fsys.Open("data/blob.bin")
	require.NoError(t, err)
	defer vf.Close()

	got, err := io.ReadAll(vf)
	require.NoError(t, err)
	assert.Equal(t, plain, got)
}

func TestOpenDirectoryListsChildren(t *testing.T) {
	pkgRoot := t.TempDir()
	tree := dirtree.New()
	tree.Insert(idxfile.FileRecord{Path: "gui/icons/flag.png", PkgName: "gui.pkg"})
	tree.Insert(idxfile.FileRecord{Path: "gui/readme.txt", PkgName: "gui.pkg"})

	fsys := New(tree, pkgRoot)
	vf, err := fsys.Open("gui")
	require.NoError(t, err)

	infos, err := vf.Readdir(-1)
	require.NoError(t, err)

	var names []string
	for _, info := range infos {
		names = append(names, info.Name())
	}
	assert.ElementsMatch(t, []string{"icons", "readme.txt"}, names)
}

func TestOpenUnknownPathFails(t *testing.T) {
	fsys := New(dirtree.New(), t.TempDir())
	_, err := fsys.Open("nowhere")
	assert.Error(t, err)
}

func TestVirtualFileWriteRejected(t *testing.T) {
	pkgRoot := t.TempDir()
	tree := dirtree.New()
	tree.Insert(idxfile.FileRecord{Path: "x.bin", PkgName: "x.pkg", Size: 1, UncompressedSize: 1})

	fsys := New(tree, pkgRoot)
	vf, err := fsys.Open("x.bin")
	require.NoError(t, err)

	_, err = vf.Write([]byte("no"))
	assert.ErrorIs(t, err, ErrReadOnly)
}

func TestWebDAVRejectsMutatingVerbs(t *testing.T) {
	fsys := New(dirtree.New(), t.TempDir())
	dav := AsWebDAV(fsys)

	ctx := context.Background()
	assert.ErrorIs(t, dav.Mkdir(ctx, "/new", 0o755), ErrReadOnly)
	assert.ErrorIs(t, dav.RemoveAll(ctx, "/x"), ErrReadOnly)
	assert.ErrorIs(t, dav.Rename(ctx, "/a", "/b"), ErrReadOnly)
}

func TestWebDAVOpenFileRejectsWriteFlags(t *testing.T) {
	pkgRoot := t.TempDir()
	tree := dirtree.New()
	tree.Insert(idxfile.FileRecord{Path: "x.bin", PkgName: "x.pkg", Size: 1, UncompressedSize: 1})

	dav := AsWebDAV(New(tree, pkgRoot))
	_, err := dav.OpenFile(context.Background(), "/x.bin", os.O_WRONLY, 0)
	assert.ErrorIs(t, err, ErrReadOnly)
}

func TestWebDAVOpenFileAllowsReadOnly(t *testing.T) {
	pkgRoot := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(pkgRoot, "x.pkg"), []byte("Z"), 0o644))

	tree := dirtree.New()
	tree.Insert(idxfile.FileRecord{Path: "x.bin", PkgName: "x.pkg", Size: 1, UncompressedSize: 1})

	dav := AsWebDAV(New(tree, pkgRoot))
	f, err := dav.OpenFile(context.Background(), "/x.bin", os.O_RDONLY, 0)
	require.NoError(t, err)
	defer f.Close()

	got, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, []byte("Z"), got)
}
