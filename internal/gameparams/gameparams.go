// Package gameparams is the single confined entry point to the native
// GameParams.data -> JSON converter. No other package may import unsafe
// or cgo; a future build that links the real converter satisfies this
// same interface without touching anything outside this package.
package gameparams

import (
	"fmt"

	"github.com/wowsunpack/wowsunpack/internal/xerrors"
)

// Unpack converts the GameParams.data blob at path to JSON alongside it.
// compact selects a minified encoding over a pretty-printed one.
//
// The default build ships no native converter, so this always fails with
// ErrFfi.
func Unpack(path string, compact bool) error {
	return fmt.Errorf("%w: native GameParams converter not linked into this build (path=%s, compact=%v)",
		xerrors.ErrFfi, path, compact)
}
