// Copyright © 2026 Sketchdock contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: filetree/manager.go
// Summary: Hierarchical file/folder manager with O(1) path lookup,
// expansion, and cycle-safe moves.
// Usage: One instance per workspace; the desk binds its nodes to panels.

package filetree

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/framegrace/sketchdock/drop"
	"github.com/framegrace/sketchdock/ident"
)

// Manager owns one file tree plus its lookup indices and view state.
// All operations are total: a failed precondition returns false/nil and
// leaves the tree untouched.
type Manager struct {
	mu   sync.RWMutex
	root *Node

	pathToFile   map[string]*Node
	pathToFolder map[string]*Node

	selected       map[string]struct{}
	anchorID       string
	lastSelectedID string
	isAddMode      bool

	expanded    map[string]struct{}
	focusedPath string
}

// NewManager returns a manager with an empty root folder. The root is
// expanded from the start so its children are visible.
func NewManager() *Manager {
	root := &Node{
		ID:   ident.Fresh(0),
		Kind: KindFolder,
		Path: "",
	}
	m := &Manager{
		root:         root,
		pathToFile:   make(map[string]*Node),
		pathToFolder: make(map[string]*Node),
		selected:     make(map[string]struct{}),
		expanded:     make(map[string]struct{}),
	}
	m.pathToFolder[""] = root
	m.expanded[""] = struct{}{}
	return m
}

// Root returns the root folder node.
func (m *Manager) Root() *Node {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.root
}

// GetFile looks a file up by path in O(1).
func (m *Manager) GetFile(path string) *Node {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pathToFile[path]
}

// GetFolder looks a folder up by path in O(1).
func (m *Manager) GetFolder(path string) *Node {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pathToFolder[path]
}

// GetNode looks any node up by path in O(1).
func (m *Manager) GetNode(path string) *Node {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.nodeAt(path)
}

func (m *Manager) nodeAt(path string) *Node {
	if n, ok := m.pathToFolder[path]; ok {
		return n
	}
	return m.pathToFile[path]
}

// CheckDuplicateName reports an error string when parent already holds a
// sibling (other than except) sharing the name case-insensitively. An
// empty string means the name is free.
func (m *Manager) CheckDuplicateName(parentPath, name, exceptPath string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	parent := m.pathToFolder[parentPath]
	if parent == nil {
		return fmt.Sprintf("no folder at %q", parentPath)
	}
	var except *Node
	if exceptPath != "" {
		except = m.nodeAt(exceptPath)
	}
	if parent.childNamed(name, except) != nil {
		return fmt.Sprintf("%q already exists here", name)
	}
	return ""
}

// AddFile appends a file under the folder at parentPath. Returns nil on
// a missing parent or a duplicate name.
func (m *Manager) AddFile(parentPath, name string, data any) *Node {
	return m.addNode(parentPath, name, KindFile, data)
}

// AddFolder appends a folder under the folder at parentPath.
func (m *Manager) AddFolder(parentPath, name string) *Node {
	return m.addNode(parentPath, name, KindFolder, nil)
}

func (m *Manager) addNode(parentPath, name string, kind Kind, data any) *Node {
	if name == "" || strings.Contains(name, "/") {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	parent := m.pathToFolder[parentPath]
	if parent == nil {
		return nil
	}
	if parent.childNamed(name, nil) != nil {
		log.Printf("FileTree: Rejecting duplicate name %q under %q", name, parentPath)
		return nil
	}

	path := joinPath(parentPath, name)
	node := &Node{
		ID:    ident.Seeded(path, 0),
		Name:  name,
		Path:  path,
		Depth: depthOf(path),
		Kind:  kind,
		Data:  data,
	}
	parent.children = append(parent.children, node)
	m.index(node)
	return node
}

// Remove detaches the node at path, dropping every descendant from the
// indices and evicting any view state that referenced them.
func (m *Manager) Remove(path string) bool {
	if path == "" {
		return false // the root is not removable
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	node := m.nodeAt(path)
	if node == nil {
		return false
	}
	parent := m.parentOf(node)
	if parent == nil {
		return false
	}
	idx := parent.childIndex(node)
	parent.children = append(parent.children[:idx], parent.children[idx+1:]...)

	walk(node, func(n *Node) {
		m.unindex(n)
		delete(m.selected, n.Path)
		delete(m.expanded, n.Path)
		if m.anchorID == n.Path {
			m.anchorID = ""
		}
		if m.lastSelectedID == n.Path {
			m.lastSelectedID = ""
		}
		if m.focusedPath == n.Path {
			m.focusedPath = ""
		}
	})
	log.Printf("FileTree: Removed %q", path)
	return true
}

// Move relocates the subtree at sourcePath relative to targetPath.
// Rejected when source and target coincide, when target sits inside
// source, when "inside" is asked of a non-folder, or when the new parent
// already holds the name.
func (m *Manager) Move(sourcePath, targetPath string, pos drop.TreePosition) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sourcePath == targetPath {
		return false
	}
	source := m.nodeAt(sourcePath)
	target := m.nodeAt(targetPath)
	if source == nil || target == nil || sourcePath == "" {
		return false
	}
	if isDescendantPath(sourcePath, targetPath) {
		log.Printf("FileTree: Rejecting move of %q into its own subtree", sourcePath)
		return false
	}

	var newParent *Node
	insertAt := -1
	switch pos {
	case drop.Inside:
		if !target.IsFolder() {
			return false
		}
		newParent = target
		insertAt = len(target.children)
	case drop.Before, drop.After:
		newParent = m.parentOf(target)
		if newParent == nil {
			return false // before/after the root is meaningless
		}
		insertAt = newParent.childIndex(target)
		if pos == drop.After {
			insertAt++
		}
	default:
		return false
	}

	if newParent.childNamed(source.Name, source) != nil {
		log.Printf("FileTree: Rejecting move, %q already exists under %q", source.Name, newParent.Path)
		return false
	}

	// Detach. When source and target share a parent the insertion index
	// shifts left once the source is pulled out.
	oldParent := m.parentOf(source)
	srcIdx := oldParent.childIndex(source)
	oldParent.children = append(oldParent.children[:srcIdx], oldParent.children[srcIdx+1:]...)
	if newParent == oldParent && srcIdx < insertAt {
		insertAt--
	}

	newParent.children = append(newParent.children, nil)
	copy(newParent.children[insertAt+1:], newParent.children[insertAt:])
	newParent.children[insertAt] = source

	m.rewritePaths(source, newParent.Path)
	log.Printf("FileTree: Moved %q %s %q", sourcePath, pos, targetPath)
	return true
}

// rewritePaths re-homes a subtree under newParentPath, fixing Path and
// Depth on every node, re-keying the indices, and carrying selection,
// expansion, anchor, and focus over to the new paths.
func (m *Manager) rewritePaths(n *Node, newParentPath string) {
	oldPath := n.Path
	newPath := joinPath(newParentPath, n.Name)

	m.unindex(n)
	n.Path = newPath
	n.Depth = depthOf(newPath)
	m.index(n)

	if _, ok := m.selected[oldPath]; ok {
		delete(m.selected, oldPath)
		m.selected[newPath] = struct{}{}
	}
	if _, ok := m.expanded[oldPath]; ok {
		delete(m.expanded, oldPath)
		m.expanded[newPath] = struct{}{}
	}
	if m.anchorID == oldPath {
		m.anchorID = newPath
	}
	if m.lastSelectedID == oldPath {
		m.lastSelectedID = newPath
	}
	if m.focusedPath == oldPath {
		m.focusedPath = newPath
	}

	for _, c := range n.children {
		m.rewritePaths(c, newPath)
	}
}

// Rename changes a node's name in place, rewriting descendant paths.
// Rejected on duplicates in the same parent.
func (m *Manager) Rename(path, newName string) bool {
	if newName == "" || strings.Contains(newName, "/") || path == "" {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	node := m.nodeAt(path)
	if node == nil {
		return false
	}
	parent := m.parentOf(node)
	if parent == nil || parent.childNamed(newName, node) != nil {
		return false
	}
	node.Name = newName
	m.rewritePaths(node, parent.Path)
	return true
}

// Focus records path as the keyboard-focused node.
func (m *Manager) Focus(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.nodeAt(path) == nil {
		return false
	}
	m.focusedPath = path
	return true
}

// FocusedPath returns the focused node's path, "" when none.
func (m *Manager) FocusedPath() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.focusedPath
}

func (m *Manager) index(n *Node) {
	if n.IsFolder() {
		m.pathToFolder[n.Path] = n
	} else {
		m.pathToFile[n.Path] = n
	}
}

func (m *Manager) unindex(n *Node) {
	if n.IsFolder() {
		delete(m.pathToFolder, n.Path)
	} else {
		delete(m.pathToFile, n.Path)
	}
}

// parentOf locates a node's parent through the folder index.
func (m *Manager) parentOf(n *Node) *Node {
	if n.Path == "" {
		return nil
	}
	parentPath := ""
	if i := strings.LastIndex(n.Path, "/"); i >= 0 {
		parentPath = n.Path[:i]
	}
	return m.pathToFolder[parentPath]
}

// isDescendantPath reports whether candidate lies strictly inside root's
// subtree, path-wise.
func isDescendantPath(root, candidate string) bool {
	return strings.HasPrefix(candidate, root+"/")
}

// walk visits n and every descendant depth-first in insertion order.
func walk(n *Node, f func(*Node)) {
	f(n)
	for _, c := range n.children {
		walk(c, f)
	}
}

// CheckConsistency verifies that the indices exactly cover the tree and
// that every referenced view path still resolves. Tests use it as the
// structural invariant oracle.
func (m *Manager) CheckConsistency() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := 0
	var err error
	walk(m.root, func(n *Node) {
		if err != nil {
			return
		}
		seen++
		if n.Depth != depthOf(n.Path) {
			err = fmt.Errorf("node %q has depth %d, want %d", n.Path, n.Depth, depthOf(n.Path))
			return
		}
		if m.nodeAt(n.Path) != n {
			err = fmt.Errorf("index miss for %q", n.Path)
		}
	})
	if err != nil {
		return err
	}
	if total := len(m.pathToFile) + len(m.pathToFolder); total != seen {
		return fmt.Errorf("indices hold %d entries, tree has %d nodes", total, seen)
	}
	for path := range m.selected {
		if m.nodeAt(path) == nil {
			return fmt.Errorf("selection references missing node %q", path)
		}
	}
	for _, path := range []string{m.anchorID, m.lastSelectedID, m.focusedPath} {
		if path != "" && m.nodeAt(path) == nil {
			return fmt.Errorf("view state references missing node %q", path)
		}
	}
	return nil
}
