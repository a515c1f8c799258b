// Copyright © 2026 Sketchdock contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: filetree/select_test.go
// Summary: Exercises selection, expansion, and the visible projection.
// Usage: Executed during `go test` to guard against regressions.

package filetree

import (
	"testing"
)

// flatTree assembles a root with files a, b, c, d so the visible
// sequence is [root, a, b, c, d].
func flatTree(t *testing.T) *Manager {
	t.Helper()
	m := NewManager()
	for _, name := range []string{"a", "b", "c", "d"} {
		if m.AddFile("", name, nil) == nil {
			t.Fatalf("add %q failed", name)
		}
	}
	return m
}

func visiblePaths(m *Manager) []string {
	var out []string
	for _, n := range m.VisibleNodes() {
		out = append(out, n.Path)
	}
	return out
}

func TestVisibleOrdering(t *testing.T) {
	m := NewManager()
	m.AddFile("", "zebra.draw", nil)
	m.AddFolder("", "Beta")
	m.AddFile("", "Alpha.draw", nil)
	m.AddFolder("", "alpha")

	got := visiblePaths(m)
	// Folders first, case-insensitive name order, then files.
	want := []string{"", "alpha", "Beta", "Alpha.draw", "zebra.draw"}
	if !equalStrings(got, want) {
		t.Fatalf("visible order %v, want %v", got, want)
	}
}

func TestVisibleRespectsExpansion(t *testing.T) {
	m := buildTree(t)

	got := visiblePaths(m)
	want := []string{"", "docs", "src", "readme.draw"}
	if !equalStrings(got, want) {
		t.Fatalf("collapsed visible %v, want %v", got, want)
	}

	m.Expand("src")
	got = visiblePaths(m)
	want = []string{"", "docs", "src", "src/util", "src/main.draw", "readme.draw"}
	if !equalStrings(got, want) {
		t.Fatalf("expanded visible %v, want %v", got, want)
	}

	m.ExpandAll()
	if len(visiblePaths(m)) != 7 {
		t.Fatalf("expandAll visible %v", visiblePaths(m))
	}

	m.CollapseAll()
	got = visiblePaths(m)
	if !equalStrings(got, []string{"", "docs", "src", "readme.draw"}) {
		t.Fatalf("collapseAll visible %v", got)
	}
}

func TestExpandSiblings(t *testing.T) {
	m := NewManager()
	m.AddFolder("", "one")
	m.AddFolder("", "two")
	m.AddFolder("", "three")
	m.AddFile("", "loose.draw", nil)

	if !m.ExpandSiblings("two") {
		t.Fatalf("expandSiblings failed")
	}
	for _, p := range []string{"one", "two", "three"} {
		if !m.IsExpanded(p) {
			t.Fatalf("sibling folder %q not expanded", p)
		}
	}
}

func TestSelectAndToggle(t *testing.T) {
	m := flatTree(t)

	if !m.Select("a") {
		t.Fatalf("select failed")
	}
	if got := m.SelectedPaths(); !equalStrings(got, []string{"a"}) {
		t.Fatalf("select: %v", got)
	}
	if m.IsAddMode() {
		t.Fatalf("plain select must not be additive")
	}

	m.ToggleSelection("c")
	if got := m.SelectedPaths(); !equalStrings(got, []string{"a", "c"}) {
		t.Fatalf("toggle on: %v", got)
	}
	if !m.IsAddMode() {
		t.Fatalf("toggle must mark add mode")
	}
	m.ToggleSelection("a")
	if got := m.SelectedPaths(); !equalStrings(got, []string{"c"}) {
		t.Fatalf("toggle off: %v", got)
	}
}

func TestSelectRange(t *testing.T) {
	m := flatTree(t)

	m.Select("a")
	if !m.SelectRange("c", false) {
		t.Fatalf("range failed")
	}
	if got := m.SelectedPaths(); !equalStrings(got, []string{"a", "b", "c"}) {
		t.Fatalf("range a..c: %v", got)
	}

	if !m.SelectRange("d", true) {
		t.Fatalf("additive range failed")
	}
	if got := m.SelectedPaths(); !equalStrings(got, []string{"a", "b", "c", "d"}) {
		t.Fatalf("additive range: %v", got)
	}

	// Non-additive range replaces.
	m.Select("d")
	m.SelectRange("b", false)
	if got := m.SelectedPaths(); !equalStrings(got, []string{"b", "c", "d"}) {
		t.Fatalf("reverse range: %v", got)
	}
}

func TestSelectRangeSkipsHiddenNodes(t *testing.T) {
	m := buildTree(t)
	// src collapsed: its children are not visible, so a range across it
	// must not pick them up.
	m.Select("docs")
	if !m.SelectRange("readme.draw", false) {
		t.Fatalf("range failed")
	}
	got := m.SelectedPaths()
	want := []string{"docs", "readme.draw", "src"}
	if !equalStrings(got, want) {
		t.Fatalf("range over collapsed folder: %v, want %v", got, want)
	}
}

func TestSelectionConsistencyAfterMutations(t *testing.T) {
	m := buildTree(t)
	m.ExpandAll()
	m.Select("src/main.draw")
	m.ToggleSelection("readme.draw")
	m.Remove("src")
	if err := m.CheckConsistency(); err != nil {
		t.Fatal(err)
	}
	if got := m.SelectedPaths(); !equalStrings(got, []string{"readme.draw"}) {
		t.Fatalf("selection after removal: %v", got)
	}
}
