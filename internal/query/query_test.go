package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wowsunpack/wowsunpack/internal/dirtree"
	"github.com/wowsunpack/wowsunpack/internal/idxfile"
	"github.com/wowsunpack/wowsunpack/internal/xerrors"
)

func buildTree() *dirtree.Tree {
	tr := dirtree.New()
	tr.Insert(idxfile.FileRecord{Path: "gui/icons/flag.png", PkgName: "gui.pkg"})
	tr.Insert(idxfile.FileRecord{Path: "gui/icons/flag2.png", PkgName: "gui.pkg"})
	tr.Insert(idxfile.FileRecord{Path: "gui/readme.txt", PkgName: "gui.pkg"})
	tr.Insert(idxfile.FileRecord{Path: "scripts/params.bin", PkgName: "scripts.pkg"})
	return tr
}

func TestResolveExactDirectory(t *testing.T) {
	tr := buildTree()
	recs, err := ResolveExact(tr, "gui/icons")
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestResolveExactFile(t *testing.T) {
	tr := buildTree()
	recs, err := ResolveExact(tr, "gui/readme.txt")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "gui/readme.txt", recs[0].Path)
}

func TestResolveExactUnknown(t *testing.T) {
	tr := buildTree()
	_, err := ResolveExact(tr, "nowhere")
	assert.ErrorIs(t, err, xerrors.ErrUnknownPath)
}

func TestResolveGlobWildcard(t *testing.T) {
	tr := buildTree()
	recs := ResolveGlob(tr, "gui/icons/*")
	assert.Len(t, recs, 2)
}

func TestResolveGlobIsCaseInsensitive(t *testing.T) {
	tr := buildTree()
	recs := ResolveGlob(tr, "GUI/README.TXT")
	assert.Len(t, recs, 1)
}

func TestResolveGlobNoMatch(t *testing.T) {
	tr := buildTree()
	recs := ResolveGlob(tr, "nope/*")
	assert.Empty(t, recs)
}

func TestResolveGlobEscapesMetacharacters(t *testing.T) {
	tr := buildTree()
	recs := ResolveGlob(tr, "gui/icons/[")
	assert.Empty(t, recs)
}

func TestBrowserNavigateAndList(t *testing.T) {
	tr := buildTree()
	br := NewBrowser(tr)

	require.NoError(t, br.Navigate("gui"))
	files, err := br.ListFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"readme.txt"}, files)

	dirs, err := br.ListDirectories()
	require.NoError(t, err)
	assert.Equal(t, []string{"icons"}, dirs)
}

func TestBrowserBackAndReset(t *testing.T) {
	tr := buildTree()
	br := NewBrowser(tr)

	require.NoError(t, br.Navigate("gui"))
	require.NoError(t, br.Navigate("icons"))
	assert.Equal(t, "gui/icons", br.Path())

	br.Back()
	assert.Equal(t, "gui", br.Path())

	br.Reset()
	assert.Equal(t, "", br.Path())
}

func TestBrowserNavigateUnknown(t *testing.T) {
	tr := buildTree()
	br := NewBrowser(tr)
	assert.ErrorIs(t, br.Navigate("missing"), xerrors.ErrUnknownPath)
}

func TestBrowserUnpackSub(t *testing.T) {
	tr := buildTree()
	br := NewBrowser(tr)
	require.NoError(t, br.Navigate("gui"))

	recs, err := br.UnpackSub("icons")
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestBrowserUnpackCurrent(t *testing.T) {
	tr := buildTree()
	br := NewBrowser(tr)
	require.NoError(t, br.Navigate("gui"))

	recs, err := br.UnpackCurrent()
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}

func TestBrowserBackAtRootIsNoop(t *testing.T) {
	tr := buildTree()
	br := NewBrowser(tr)
	br.Back()
	assert.Equal(t, "", br.Path())
}
