// Package browsefs exposes a built directory tree as a read-only
// filesystem, streaming file contents straight out of their owning
// package file — nothing is ever written to a destination root here.
package browsefs

import (
	"compress/flate"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/wowsunpack/wowsunpack/internal/dirtree"
	"github.com/wowsunpack/wowsunpack/internal/idxfile"
	"github.com/wowsunpack/wowsunpack/internal/xerrors"
)

// ErrReadOnly is returned by every mutating operation this filesystem is
// asked to perform — the archive it serves cannot be written to.
var ErrReadOnly = fmt.Errorf("read-only archive")

// FS serves tree over pkgRoot as a read-only filesystem.
type FS struct {
	tree    *dirtree.Tree
	pkgRoot string
}

// New returns an FS backed by tree, reading package payloads from pkgRoot.
func New(tree *dirtree.Tree, pkgRoot string) *FS {
	return &FS{tree: tree, pkgRoot: pkgRoot}
}

// normalizePath strips any leading/trailing slashes so it matches the
// forward-slash-joined paths the directory tree stores.
func normalizePath(name string) string {
	return strings.Trim(filepath.ToSlash(name), "/")
}

// Open resolves name against the tree and returns either a VirtualFile
// streaming a leaf's content, or one listing a directory's children.
func (f *FS) Open(name string) (*VirtualFile, error) {
	path := normalizePath(name)

	var node *dirtree.Node
	var ok bool
	if path == "" {
		node, ok = f.tree.Root(), true
	} else {
		node, ok = f.tree.Find(path)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", xerrors.ErrUnknownPath, name)
	}

	base := filepath.Base(path)
	if path == "" {
		base = "/"
	}

	if !node.IsLeaf() {
		return &VirtualFile{name: base, isDir: true, node: node, fs: f}, nil
	}

	rec, _ := node.Record()
	return &VirtualFile{name: base, isDir: false, node: node, rec: rec, fs: f}, nil
}

// Stat is a lightweight Open that only needs the FileInfo.
func (f *FS) Stat(name string) (fs.FileInfo, error) {
	vf, err := f.Open(name)
	if err != nil {
		return nil, err
	}
	return vf, nil
}

// VirtualFile is a read-only fs.File/fs.FileInfo over either a tree
// directory (Readdir only) or a tree leaf (Read/Seek streaming from its
// owning package, inflating on the fly if compressed).
type VirtualFile struct {
	name  string
	isDir bool
	node  *dirtree.Node
	rec   idxfile.FileRecord
	fs    *FS

	mu      sync.Mutex
	pkg     *os.File
	reader  io.Reader
	readPos int64 // logical position within the decompressed stream
}

func (v *VirtualFile) Name() string { return v.name }

func (v *VirtualFile) Size() int64 {
	if v.isDir {
		return 0
	}
	return v.rec.UncompressedSize
}

func (v *VirtualFile) Mode() fs.FileMode {
	if v.isDir {
		return fs.ModeDir | 0o555
	}
	return 0o444
}

func (v *VirtualFile) ModTime() time.Time { return time.Time{} }
func (v *VirtualFile) IsDir() bool        { return v.isDir }
func (v *VirtualFile) Sys() any           { return nil }
func (v *VirtualFile) Stat() (fs.FileInfo, error) { return v, nil }

// Readdir lists the immediate children of a directory VirtualFile. count
// <= 0 means "all of them"; count > 0 returns at most the first count
// children. Unlike os.File.Readdir, successive calls do not advance: each
// call starts again from the first child.
func (v *VirtualFile) Readdir(count int) ([]fs.FileInfo, error) {
	if !v.isDir {
		return nil, fmt.Errorf("readdir %s: not a directory", v.name)
	}

	names := v.node.Children()
	if count > 0 && count < len(names) {
		names = names[:count]
	}

	infos := make([]fs.FileInfo, 0, len(names))
	for _, name := range names {
		child, ok := v.node.Child(name)
		if !ok {
			continue
		}
		vf := &VirtualFile{name: name, isDir: !child.IsLeaf(), node: child}
		if child.IsLeaf() {
			vf.rec, _ = child.Record()
		}
		infos = append(infos, vf)
	}
	return infos, nil
}

// openPackage lazily opens the owning package file and positions a reader
// (inflating through compress/flate when the payload is compressed) at
// the start of this record's span.
func (v *VirtualFile) openPackage() error {
	if v.reader != nil {
		return nil
	}

	pkgPath := filepath.Join(v.fs.pkgRoot, v.rec.PkgName)
	f, err := os.Open(pkgPath)
	if err != nil {
		return fmt.Errorf("%w: opening package %s: %v", xerrors.ErrIoRead, pkgPath, err)
	}
	v.pkg = f

	section := io.NewSectionReader(f, v.rec.Offset, int64(v.rec.Size))
	if v.rec.Stored() {
		v.reader = section
	} else {
		v.reader = flate.NewReader(section)
	}
	v.readPos = 0
	return nil
}

// Read streams sequentially from the current logical position.
func (v *VirtualFile) Read(p []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.isDir {
		return 0, fmt.Errorf("read %s: is a directory", v.name)
	}
	if err := v.openPackage(); err != nil {
		return 0, err
	}

	n, err := v.reader.Read(p)
	v.readPos += int64(n)
	return n, err
}

// Seek only supports io.SeekStart with offset 0 — rewinding to the start
// of the stream — since a compressed entry cannot be seeked into
// arbitrarily without re-inflating from the beginning.
func (v *VirtualFile) Seek(offset int64, whence int) (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if whence == io.SeekStart && offset == 0 {
		if v.pkg != nil {
			v.pkg.Close()
			v.pkg = nil
			v.reader = nil
		}
		v.readPos = 0
		return 0, nil
	}
	return v.readPos, fmt.Errorf("seek %s: arbitrary seeking is not supported over a compressed entry", v.name)
}

// Write always fails: this filesystem is read-only.
func (v *VirtualFile) Write([]byte) (int, error) { return 0, ErrReadOnly }

// Close releases the underlying package file handle, if one was opened.
func (v *VirtualFile) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.pkg != nil {
		err := v.pkg.Close()
		v.pkg = nil
		v.reader = nil
		return err
	}
	return nil
}
