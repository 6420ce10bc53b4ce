// Package discovery locates the newest complete game build under a World
// of Warships install root, and derives the paths the rest of the module
// reads from it.
package discovery

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/wowsunpack/wowsunpack/internal/xerrors"
)

// Layout is the resolved set of paths a complete build exposes.
type Layout struct {
	PkgRoot  string
	IdxRoot  string
	TextRoot string
	Build    int
}

// Find locates the newest build under root whose idx directory exists,
// skipping any numerically-higher build still mid-download (§4.6).
func Find(root string) (Layout, error) {
	pkgRoot := filepath.Join(root, "res_packages")
	if info, err := os.Stat(pkgRoot); err != nil || !info.IsDir() {
		return Layout{}, fmt.Errorf("%w: %s", xerrors.ErrMissingPackages, pkgRoot)
	}

	builds, err := listBuilds(filepath.Join(root, "bin"))
	if err != nil {
		return Layout{}, err
	}

	for _, build := range builds {
		idxRoot := filepath.Join(root, "bin", strconv.Itoa(build), "idx")
		info, err := os.Stat(idxRoot)
		if err != nil || !info.IsDir() {
			slog.Debug("discovery: skipping incomplete build", "build", build, "reason", "no idx directory")
			continue
		}

		return Layout{
			PkgRoot:  pkgRoot,
			IdxRoot:  idxRoot,
			TextRoot: filepath.Join(root, "bin", strconv.Itoa(build), "res", "texts"),
			Build:    build,
		}, nil
	}

	return Layout{}, fmt.Errorf("%w: searched %d candidate build(s) under %s", xerrors.ErrNoBuild, len(builds), root)
}

// listBuilds enumerates root/bin/*, keeps entries whose name parses as a
// non-negative integer, and returns them sorted newest first.
func listBuilds(binRoot string) ([]int, error) {
	entries, err := os.ReadDir(binRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", xerrors.ErrMissingIdxDir, binRoot)
	}

	var builds []int
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		n, err := strconv.Atoi(e.Name())
		if err != nil || n < 0 {
			continue
		}
		builds = append(builds, n)
	}

	sort.Sort(sort.Reverse(sort.IntSlice(builds)))
	return builds, nil
}
