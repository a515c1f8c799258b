// Copyright © 2026 Sketchdock contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: tui/layout_test.go
// Summary: Exercises the dock-to-screen projection.
// Usage: Executed during `go test` to guard against regressions.

package tui

import (
	"testing"

	"github.com/framegrace/sketchdock/dock"
	"github.com/framegrace/sketchdock/drop"
)

func TestComputeSplit(t *testing.T) {
	m := dock.NewManager()
	a := m.AddPanel("draw", "A")
	b := m.AddPanel("draw", "B")

	l := Compute(m.Snapshot(), drop.Rect{W: 100, H: 50})
	if len(l.Panels) != 2 || len(l.Dividers) != 1 {
		t.Fatalf("layout: %d panels %d dividers", len(l.Panels), len(l.Dividers))
	}
	var ra, rb drop.Rect
	for _, pr := range l.Panels {
		switch pr.Panel.ID {
		case a:
			ra = pr.Rect
		case b:
			rb = pr.Rect
		}
	}
	if ra.W != 50 || rb.W != 50 || ra.H != 50 || rb.X != 50 {
		t.Fatalf("split rects %+v %+v", ra, rb)
	}
}

func TestComputeHonoursSize(t *testing.T) {
	m := dock.NewManager()
	m.AddPanel("draw", "A")
	m.AddPanel("draw", "B")
	root := m.Snapshot().Root
	m.ResizeContainer(root.ID, 0.25)

	l := Compute(m.Snapshot(), drop.Rect{W: 100, H: 40})
	if l.Panels[0].Rect.W != 25 && l.Panels[1].Rect.W != 25 {
		t.Fatalf("resize not reflected: %+v", l.Panels)
	}
}

func TestComputeMaximized(t *testing.T) {
	m := dock.NewManager()
	a := m.AddPanel("draw", "A")
	m.AddPanel("draw", "B")
	m.Maximize(a)

	l := Compute(m.Snapshot(), drop.Rect{W: 100, H: 50})
	if len(l.Panels) != 1 || l.Panels[0].Panel.ID != a {
		t.Fatalf("maximized layout: %+v", l.Panels)
	}
	if l.Panels[0].Rect.W != 100 || l.Panels[0].Rect.H != 50 {
		t.Fatalf("maximized panel not full-bounds: %+v", l.Panels[0].Rect)
	}
}

func TestComputeTabsShowActive(t *testing.T) {
	m := dock.NewManager()
	a := m.AddPanel("draw", "A")
	b := m.AddTab(a, "draw", "B")

	l := Compute(m.Snapshot(), drop.Rect{W: 90, H: 30})
	if len(l.Panels) != 1 {
		t.Fatalf("tab layout shows %d panels", len(l.Panels))
	}
	pr := l.Panels[0]
	if pr.Panel.ID != b {
		t.Fatalf("active tab is %s, want %s", pr.Panel.ID, b)
	}
	if pr.Tabs == nil || len(pr.TabRects) != 2 {
		t.Fatalf("tab strip missing: %+v", pr)
	}
	if pr.TabRects[0].Rect.W != 45 || pr.TabRects[1].Rect.X != 45 {
		t.Fatalf("tab rects %+v", pr.TabRects)
	}

	// Tab rects feed straight into the header classifier.
	rects := []drop.Rect{pr.TabRects[0].Rect, pr.TabRects[1].Rect}
	if got := drop.ForTabHeader(5, rects); got.Index != 0 || got.Position != drop.TabBefore {
		t.Fatalf("header classification %+v", got)
	}
}

func TestHitTest(t *testing.T) {
	m := dock.NewManager()
	a := m.AddPanel("draw", "A")
	b := m.AddPanel("draw", "B")

	l := Compute(m.Snapshot(), drop.Rect{W: 100, H: 50})
	if pr, ok := l.HitTest(drop.Point{X: 10, Y: 10}); !ok || pr.Panel.ID != a {
		t.Fatalf("hit left half: %+v %v", pr, ok)
	}
	if pr, ok := l.HitTest(drop.Point{X: 80, Y: 10}); !ok || pr.Panel.ID != b {
		t.Fatalf("hit right half: %+v %v", pr, ok)
	}
	if _, ok := l.HitTest(drop.Point{X: 500, Y: 10}); ok {
		t.Fatalf("hit outside bounds")
	}
}

func TestComputeEmpty(t *testing.T) {
	l := Compute(dock.NewManager().Snapshot(), drop.Rect{W: 10, H: 10})
	if len(l.Panels) != 0 {
		t.Fatalf("empty state produced panels")
	}
}
