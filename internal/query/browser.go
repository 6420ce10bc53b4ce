package query

import (
	"fmt"

	"github.com/wowsunpack/wowsunpack/internal/dirtree"
	"github.com/wowsunpack/wowsunpack/internal/idxfile"
	"github.com/wowsunpack/wowsunpack/internal/xerrors"
)

// Browser is a stateful directory cursor over a Tree. Every operation
// re-resolves against the tree rather than caching a *dirtree.Node, so a
// Browser stays valid across a tree rebuild (§4.4).
type Browser struct {
	tree     *dirtree.Tree
	segments []string
}

// NewBrowser returns a Browser positioned at the tree root.
func NewBrowser(tree *dirtree.Tree) *Browser {
	return &Browser{tree: tree}
}

// Path renders the current cursor position as a "/"-joined string, empty
// at the root.
func (b *Browser) Path() string {
	path := ""
	for i, seg := range b.segments {
		if i > 0 {
			path += "/"
		}
		path += seg
	}
	return path
}

// Navigate descends into the named child directory, entry, or file.
// Navigating into a file leaf is allowed — it just leaves the cursor
// somewhere ListFiles/ListDirectories will report as empty.
func (b *Browser) Navigate(name string) error {
	next := append(append([]string{}, b.segments...), name)
	if _, ok := b.tree.Goto(next); !ok {
		return fmt.Errorf("%w: %q under %q", xerrors.ErrUnknownPath, name, b.Path())
	}
	b.segments = next
	return nil
}

// Back moves the cursor up one level. It is a no-op at the root.
func (b *Browser) Back() {
	if len(b.segments) == 0 {
		return
	}
	b.segments = b.segments[:len(b.segments)-1]
}

// Reset returns the cursor to the tree root.
func (b *Browser) Reset() {
	b.segments = nil
}

func (b *Browser) current() (*dirtree.Node, error) {
	node, ok := b.tree.Goto(b.segments)
	if !ok {
		return nil, fmt.Errorf("%w: %q", xerrors.ErrUnknownPath, b.Path())
	}
	return node, nil
}

// ListFiles lists the file leaves immediately under the cursor.
func (b *Browser) ListFiles() ([]string, error) {
	node, err := b.current()
	if err != nil {
		return nil, err
	}
	return node.Files(), nil
}

// ListDirectories lists the subdirectories immediately under the cursor.
func (b *Browser) ListDirectories() ([]string, error) {
	node, err := b.current()
	if err != nil {
		return nil, err
	}
	return node.Directories(), nil
}

// UnpackSub resolves every file record under the named child of the
// current position, without moving the cursor.
func (b *Browser) UnpackSub(sub string) ([]idxfile.FileRecord, error) {
	next := append(append([]string{}, b.segments...), sub)
	node, ok := b.tree.Goto(next)
	if !ok {
		return nil, fmt.Errorf("%w: %q under %q", xerrors.ErrUnknownPath, sub, b.Path())
	}

	var out []idxfile.FileRecord
	dirtree.WalkFrom(node, joinSegments(next), func(_ string, rec idxfile.FileRecord) {
		out = append(out, rec)
	})
	return out, nil
}

// UnpackCurrent resolves every file record under the cursor's current
// position.
func (b *Browser) UnpackCurrent() ([]idxfile.FileRecord, error) {
	node, err := b.current()
	if err != nil {
		return nil, err
	}

	var out []idxfile.FileRecord
	dirtree.WalkFrom(node, b.Path(), func(_ string, rec idxfile.FileRecord) {
		out = append(out, rec)
	})
	return out, nil
}

func joinSegments(segments []string) string {
	path := ""
	for i, seg := range segments {
		if i > 0 {
			path += "/"
		}
		path += seg
	}
	return path
}
