package dirtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wowsunpack/wowsunpack/internal/idxfile"
)

func rec(path string) idxfile.FileRecord {
	return idxfile.FileRecord{Path: path, PkgName: "demo.pkg", Size: 1, UncompressedSize: 1}
}

func TestInsertAndFind(t *testing.T) {
	tr := New()
	tr.Insert(rec("gui/icons/flag.png"))

	node, ok := tr.Find("gui/icons/flag.png")
	require.True(t, ok)
	assert.True(t, node.IsLeaf())

	r, ok := node.Record()
	require.True(t, ok)
	assert.Equal(t, "gui/icons/flag.png", r.Path)
}

func TestFindMissing(t *testing.T) {
	tr := New()
	tr.Insert(rec("gui/icons/flag.png"))

	_, ok := tr.Find("gui/icons/missing.png")
	assert.False(t, ok)
}

func TestGotoRoot(t *testing.T) {
	tr := New()
	tr.Insert(rec("a/b.bin"))

	node, ok := tr.Goto(nil)
	require.True(t, ok)
	assert.False(t, node.IsLeaf())
	assert.Equal(t, []string{"a"}, node.Directories())
}

func TestFilesAndDirectories(t *testing.T) {
	tr := New()
	tr.Insert(rec("gui/icons/flag.png"))
	tr.Insert(rec("gui/readme.txt"))

	node, ok := tr.Find("gui")
	require.True(t, ok)
	assert.Equal(t, []string{"readme.txt"}, node.Files())
	assert.Equal(t, []string{"icons"}, node.Directories())
}

func TestNodeCanBeLeafAndDirectory(t *testing.T) {
	tr := New()
	tr.Insert(rec("a"))
	tr.Insert(rec("a/b.bin"))

	node, ok := tr.Find("a")
	require.True(t, ok)
	assert.True(t, node.IsLeaf())
	assert.Equal(t, []string{"b.bin"}, node.Files())
}

func TestLastWriteWins(t *testing.T) {
	tr := New()
	tr.Insert(idxfile.FileRecord{Path: "a.bin", PkgName: "first.pkg"})
	tr.Insert(idxfile.FileRecord{Path: "a.bin", PkgName: "second.pkg"})

	node, ok := tr.Find("a.bin")
	require.True(t, ok)
	r, _ := node.Record()
	assert.Equal(t, "second.pkg", r.PkgName)
}

func TestWalkFromCollectsAllLeaves(t *testing.T) {
	tr := New()
	tr.Insert(rec("a/one.bin"))
	tr.Insert(rec("a/b/two.bin"))
	tr.Insert(rec("c.bin"))

	var paths []string
	WalkFrom(tr.Root(), "", func(path string, _ idxfile.FileRecord) {
		paths = append(paths, path)
	})

	assert.ElementsMatch(t, []string{"a/one.bin", "a/b/two.bin", "c.bin"}, paths)
}

func TestWalkFromSubtree(t *testing.T) {
	tr := New()
	tr.Insert(rec("a/one.bin"))
	tr.Insert(rec("a/b/two.bin"))
	tr.Insert(rec("c.bin"))

	node, ok := tr.Find("a")
	require.True(t, ok)

	var paths []string
	WalkFrom(node, "a", func(path string, _ idxfile.FileRecord) {
		paths = append(paths, path)
	})

	assert.ElementsMatch(t, []string{"a/one.bin", "a/b/two.bin"}, paths)
}

func TestEmptyPathIgnored(t *testing.T) {
	tr := New()
	tr.Insert(idxfile.FileRecord{Path: "", PkgName: "x.pkg"})

	var count int
	WalkFrom(tr.Root(), "", func(string, idxfile.FileRecord) { count++ })
	assert.Equal(t, 0, count)
}
