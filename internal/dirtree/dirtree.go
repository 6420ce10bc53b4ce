// Package dirtree assembles the flat path->FileRecord maps produced by
// internal/idxfile into a single rooted directory tree, and exposes the
// traversal primitives the query resolver and facade build on.
package dirtree

import (
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/wowsunpack/wowsunpack/internal/idxfile"
)

// Node is one entry of the tree: a directory, a file leaf, or both at once
// (a path can be the parent of other paths and still carry its own record,
// e.g. when two idx files disagree about a path's role).
type Node struct {
	Name     string
	children map[string]*Node
	record   *idxfile.FileRecord
}

// Tree is the rooted directory tree built from one or more ParseResults.
// Safe for concurrent reads; Insert is serialized internally so callers
// don't need to coordinate across idx files.
type Tree struct {
	mu   sync.RWMutex
	root *Node
}

// New returns an empty tree with a synthetic root node.
func New() *Tree {
	return &Tree{root: &Node{Name: "", children: map[string]*Node{}}}
}

// Insert adds rec at rec.Path, creating any missing intermediate directory
// nodes along the way. A path already carrying a record is overwritten,
// not rejected, since later idx files in the same scan take precedence
// over earlier ones (§4.3); the overwrite is logged at debug level when
// the prior occupant came from a different package.
func (t *Tree) Insert(rec idxfile.FileRecord) {
	segments := splitPath(rec.Path)
	if len(segments) == 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	cur := t.root
	for _, seg := range segments {
		next, ok := cur.children[seg]
		if !ok {
			next = &Node{Name: seg, children: map[string]*Node{}}
			cur.children[seg] = next
		}
		cur = next
	}

	if cur.record != nil && cur.record.PkgName != rec.PkgName {
		slog.Debug("directory tree: path redefined by a later package",
			"path", rec.Path, "old_package", cur.record.PkgName, "new_package", rec.PkgName)
	}
	r := rec
	cur.record = &r
}

// Find walks path segment by segment from the root.
func (t *Tree) Find(path string) (*Node, bool) {
	return t.Goto(splitPath(path))
}

// Goto walks pre-split segments from the root. An empty slice returns the
// root itself.
func (t *Tree) Goto(segments []string) (*Node, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	cur := t.root
	for _, seg := range segments {
		next, ok := cur.children[seg]
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Root returns the tree's root node.
func (t *Tree) Root() *Node {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.root
}

// Record returns the file record attached to this node, if any.
func (n *Node) Record() (idxfile.FileRecord, bool) {
	if n.record == nil {
		return idxfile.FileRecord{}, false
	}
	return *n.record, true
}

// IsLeaf reports whether this node carries a file record. A node can be a
// leaf and have children at the same time (§4.3).
func (n *Node) IsLeaf() bool {
	return n.record != nil
}

// Files returns the names of immediate children that are file leaves,
// sorted for deterministic listing output.
func (n *Node) Files() []string {
	var out []string
	for name, child := range n.children {
		if child.IsLeaf() {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Directories returns the names of immediate children that are not file
// leaves, sorted for deterministic listing output.
func (n *Node) Directories() []string {
	var out []string
	for name, child := range n.children {
		if !child.IsLeaf() {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Child returns the named immediate child, if any.
func (n *Node) Child(name string) (*Node, bool) {
	child, ok := n.children[name]
	return child, ok
}

// Children returns every immediate child name, file or directory, sorted.
func (n *Node) Children() []string {
	var out []string
	for name := range n.children {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// WalkFrom depth-first visits every leaf reachable from node, including
// node itself if it is a leaf. Traversal order is deterministic
// (lexicographic by child name) but is not itself part of the contract —
// callers must not depend on it for anything but reproducible tests.
func WalkFrom(node *Node, path string, visit func(path string, rec idxfile.FileRecord)) {
	if node.IsLeaf() {
		rec, _ := node.Record()
		visit(path, rec)
	}

	for _, name := range node.Children() {
		child := node.children[name]
		childPath := name
		if path != "" {
			childPath = path + "/" + name
		}
		WalkFrom(child, childPath, visit)
	}
}

func splitPath(path string) []string {
	parts := strings.Split(path, "/")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
