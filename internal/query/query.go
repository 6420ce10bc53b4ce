// Package query resolves paths and glob patterns against a directory tree,
// and provides a stateful Browser cursor for interactive navigation.
package query

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/wowsunpack/wowsunpack/internal/dirtree"
	"github.com/wowsunpack/wowsunpack/internal/idxfile"
	"github.com/wowsunpack/wowsunpack/internal/xerrors"
)

// ResolveExact returns every file record under path (path itself if it is
// a leaf, or every leaf beneath it if it is a directory). An unknown path
// is non-fatal to the module as a whole — callers log it and treat the
// result as empty — but is still surfaced as ErrUnknownPath so a caller
// that cares can distinguish "nothing there" from "empty directory".
func ResolveExact(tree *dirtree.Tree, path string) ([]idxfile.FileRecord, error) {
	node, ok := tree.Find(path)
	if !ok {
		return nil, fmt.Errorf("%w: %q", xerrors.ErrUnknownPath, path)
	}

	var out []idxfile.FileRecord
	dirtree.WalkFrom(node, path, func(_ string, rec idxfile.FileRecord) {
		out = append(out, rec)
	})
	return out, nil
}

// ResolveGlob matches pattern against the lowercased rendered path of every
// leaf in the tree. Only '*' is a wildcard (translated to ".*"); every
// other regex metacharacter in pattern is escaped, and the match is
// anchored to the whole path. Because every non-wildcard character is
// escaped before compilation, the resulting pattern is always valid —
// there is no ill-formed glob to reject.
func ResolveGlob(tree *dirtree.Tree, pattern string) []idxfile.FileRecord {
	re := compileGlob(pattern)

	var out []idxfile.FileRecord
	dirtree.WalkFrom(tree.Root(), "", func(path string, rec idxfile.FileRecord) {
		if re.MatchString(strings.ToLower(path)) {
			out = append(out, rec)
		}
	})
	return out
}

func compileGlob(pattern string) *regexp.Regexp {
	parts := strings.Split(pattern, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	expr := "^" + strings.Join(parts, ".*") + "$"
	return regexp.MustCompile(strings.ToLower(expr))
}
