// Copyright © 2026 Sketchdock contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: tui/layout.go
// Summary: Projects the dock tree onto screen rectangles.
// Usage: The host renders from this projection and feeds its rects back
// into the drop classifier during drags.

package tui

import (
	"github.com/framegrace/sketchdock/dock"
	"github.com/framegrace/sketchdock/drop"
)

// headerHeight is the tab/title strip height in cells.
const headerHeight = 1

// PanelRect is one visible panel with its screen geometry.
type PanelRect struct {
	Panel  *dock.Node
	Rect   drop.Rect
	Header drop.Rect
	// Tabs is the enclosing tab container, nil for a lone panel.
	Tabs *dock.Node
	// TabRects are the per-tab header rects when Tabs is set, ordered
	// left to right.
	TabRects []TabRect
}

// TabRect is one tab cell in a header strip.
type TabRect struct {
	PanelID string
	Rect    drop.Rect
}

// DividerRect is a draggable container divider.
type DividerRect struct {
	Container *dock.Node
	Rect      drop.Rect
}

// Layout is the full screen projection of one dock snapshot.
type Layout struct {
	Panels   []PanelRect
	Dividers []DividerRect
}

// Compute projects a dock state onto bounds. Only the maximized panel
// is laid out while maximization is active.
func Compute(s *dock.State, bounds drop.Rect) *Layout {
	l := &Layout{}
	if s == nil || s.Root == nil {
		return l
	}
	if s.MaximizedPanelID != "" {
		if panel := findPanel(s.Root, s.MaximizedPanelID); panel != nil {
			l.Panels = append(l.Panels, panelRect(panel, nil, bounds))
			return l
		}
	}
	l.place(s.Root, bounds)
	return l
}

func (l *Layout) place(n *dock.Node, r drop.Rect) {
	switch n.Kind {
	case dock.KindPanel:
		l.Panels = append(l.Panels, panelRect(n, nil, r))
	case dock.KindContainer:
		first, second, divider := splitRect(r, n.Dir, n.Size)
		l.place(n.First, first)
		l.place(n.Second, second)
		l.Dividers = append(l.Dividers, DividerRect{Container: n, Rect: divider})
	case dock.KindTabs:
		active := n.Panels[0]
		for _, p := range n.Panels {
			if p.ID == n.ActiveID {
				active = p
				break
			}
		}
		l.Panels = append(l.Panels, panelRect(active, n, r))
	}
}

func panelRect(panel *dock.Node, tabs *dock.Node, r drop.Rect) PanelRect {
	pr := PanelRect{
		Panel:  panel,
		Rect:   r,
		Header: drop.Rect{X: r.X, Y: r.Y, W: r.W, H: headerHeight},
		Tabs:   tabs,
	}
	if tabs != nil {
		width := r.W / float64(len(tabs.Panels))
		for i, p := range tabs.Panels {
			pr.TabRects = append(pr.TabRects, TabRect{
				PanelID: p.ID,
				Rect:    drop.Rect{X: r.X + float64(i)*width, Y: r.Y, W: width, H: headerHeight},
			})
		}
	}
	return pr
}

// splitRect divides r along dir at the given fraction. The halves fill r
// between them; the one-cell divider rect straddles their boundary.
func splitRect(r drop.Rect, dir dock.Direction, size float64) (first, second, divider drop.Rect) {
	if dir == dock.Horizontal {
		fw := r.W * size
		first = drop.Rect{X: r.X, Y: r.Y, W: fw, H: r.H}
		second = drop.Rect{X: r.X + fw, Y: r.Y, W: r.W - fw, H: r.H}
		divider = drop.Rect{X: r.X + fw - 0.5, Y: r.Y, W: 1, H: r.H}
		return
	}
	fh := r.H * size
	first = drop.Rect{X: r.X, Y: r.Y, W: r.W, H: fh}
	second = drop.Rect{X: r.X, Y: r.Y + fh, W: r.W, H: r.H - fh}
	divider = drop.Rect{X: r.X, Y: r.Y + fh - 0.5, W: r.W, H: 1}
	return
}

// HitTest returns the panel rect containing the point, if any.
func (l *Layout) HitTest(pt drop.Point) (PanelRect, bool) {
	for _, pr := range l.Panels {
		if pr.Rect.Contains(pt) {
			return pr, true
		}
	}
	return PanelRect{}, false
}

func findPanel(root *dock.Node, id string) *dock.Node {
	var out *dock.Node
	var descend func(n *dock.Node)
	descend = func(n *dock.Node) {
		if n == nil || out != nil {
			return
		}
		if n.Kind == dock.KindPanel && n.ID == id {
			out = n
			return
		}
		descend(n.First)
		descend(n.Second)
		for _, p := range n.Panels {
			descend(p)
		}
	}
	descend(root)
	return out
}
