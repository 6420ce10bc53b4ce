package discovery

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wowsunpack/wowsunpack/internal/xerrors"
)

func mkBuild(t *testing.T, root string, build int, withIdx bool) {
	t.Helper()
	buildRoot := filepath.Join(root, "bin", strconv.Itoa(build))
	require.NoError(t, os.MkdirAll(buildRoot, 0o755))
	if withIdx {
		require.NoError(t, os.MkdirAll(filepath.Join(buildRoot, "idx"), 0o755))
		require.NoError(t, os.MkdirAll(filepath.Join(buildRoot, "res", "texts"), 0o755))
	}
}

func TestFindPicksNewestComplete(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "res_packages"), 0o755))
	mkBuild(t, root, 100, true)
	mkBuild(t, root, 200, true)
	mkBuild(t, root, 300, false) // newer but incomplete — no idx dir

	layout, err := Find(root)
	require.NoError(t, err)
	assert.Equal(t, 200, layout.Build)
	assert.DirExists(t, layout.IdxRoot)
}

func TestFindMissingPackages(t *testing.T) {
	root := t.TempDir()
	mkBuild(t, root, 100, true)

	_, err := Find(root)
	assert.ErrorIs(t, err, xerrors.ErrMissingPackages)
}

func TestFindNoCompleteBuild(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "res_packages"), 0o755))
	mkBuild(t, root, 100, false)

	_, err := Find(root)
	assert.ErrorIs(t, err, xerrors.ErrNoBuild)
}

func TestFindIgnoresNonNumericBinEntries(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "res_packages"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "bin", "common"), 0o755))
	mkBuild(t, root, 150, true)

	layout, err := Find(root)
	require.NoError(t, err)
	assert.Equal(t, 150, layout.Build)
}
