// Copyright © 2026 Sketchdock contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: filetree/node.go
// Summary: Node model for the folder/file hierarchy.
// Usage: Used by the manager; hosts receive nodes via copy-on-read
// accessors and must treat them as snapshots.

package filetree

import (
	"sort"
	"strings"
)

// Kind discriminates the node variants.
type Kind int

const (
	KindFile Kind = iota
	KindFolder
)

// Node is one entry in the file tree. Folders carry children, files
// carry opaque metadata. Children are kept in insertion order; display
// ordering is applied at visibility time.
type Node struct {
	ID    string
	Name  string
	Path  string
	Depth int
	Kind  Kind
	Data  any

	children []*Node
}

// IsFolder reports whether the node can hold children.
func (n *Node) IsFolder() bool { return n.Kind == KindFolder }

// Children returns a copy of the child slice in insertion order.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// childNamed returns the child whose name equals name case-insensitively.
func (n *Node) childNamed(name string, except *Node) *Node {
	for _, c := range n.children {
		if c == except {
			continue
		}
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// childIndex returns the position of c in n's children, -1 when absent.
func (n *Node) childIndex(c *Node) int {
	for i, child := range n.children {
		if child == c {
			return i
		}
	}
	return -1
}

// joinPath builds a child path under parent. The root's path is the
// empty string, so its children live at bare names.
func joinPath(parentPath, name string) string {
	if parentPath == "" {
		return name
	}
	return parentPath + "/" + name
}

// depthOf derives a node's depth from its path: separators plus one,
// zero for the root.
func depthOf(path string) int {
	if path == "" {
		return 0
	}
	return strings.Count(path, "/") + 1
}

// sortedForDisplay returns children ordered folders-first, then by
// case-insensitive name comparison.
func sortedForDisplay(children []*Node) []*Node {
	out := make([]*Node, len(children))
	copy(out, children)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsFolder() != out[j].IsFolder() {
			return out[i].IsFolder()
		}
		ni, nj := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if ni != nj {
			return ni < nj
		}
		return out[i].Name < out[j].Name
	})
	return out
}
