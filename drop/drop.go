// Copyright © 2026 Sketchdock contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: drop/drop.go
// Summary: Classifies pointer coordinates into discrete drop intents.
// Usage: Shared by the dock and file-tree managers to interpret drags.

package drop

// Position is the discrete outcome of classifying a drag gesture.
type Position string

const (
	Top       Position = "top"
	Right     Position = "right"
	Bottom    Position = "bottom"
	Left      Position = "left"
	TabBefore Position = "tab-before"
	TabAfter  Position = "tab-after"
	TabInto   Position = "tab-into"
)

// IsEdge reports whether p splits the target along one of its edges.
func (p Position) IsEdge() bool {
	switch p {
	case Top, Right, Bottom, Left:
		return true
	}
	return false
}

// IsTab reports whether p inserts into a tab strip.
func (p Position) IsTab() bool {
	switch p {
	case TabBefore, TabAfter, TabInto:
		return true
	}
	return false
}

// Point is a pointer location in the host's coordinate space.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle in the host's coordinate space.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether pt lies inside r (edges inclusive).
func (r Rect) Contains(pt Point) bool {
	return pt.X >= r.X && pt.X <= r.X+r.W && pt.Y >= r.Y && pt.Y <= r.Y+r.H
}

// CenterX returns the horizontal centre of r.
func (r Rect) CenterX() float64 { return r.X + r.W/2 }

// CenterY returns the vertical centre of r.
func (r Rect) CenterY() float64 { return r.Y + r.H/2 }

// ForPanel classifies a drop on a panel body. A tabbable target (one
// with a header rect) yields tab-into for pointers inside the header or
// hovering the central third of the body; otherwise the nearest edge
// wins, ties breaking top, bottom, left, right.
func ForPanel(pt Point, target Rect, header *Rect) Position {
	if header != nil {
		if header.Contains(pt) {
			return TabInto
		}
		inMidX := pt.X > target.X+target.W/3 && pt.X < target.X+2*target.W/3
		inMidY := pt.Y > target.Y+target.H/3 && pt.Y < target.Y+2*target.H/3
		if inMidX && inMidY {
			return TabInto
		}
	}
	distTop := pt.Y - target.Y
	distBottom := target.Y + target.H - pt.Y
	distLeft := pt.X - target.X
	distRight := target.X + target.W - pt.X

	best := Top
	min := distTop
	if distBottom < min {
		best, min = Bottom, distBottom
	}
	if distLeft < min {
		best, min = Left, distLeft
	}
	if distRight < min {
		best = Right
	}
	return best
}

const (
	// tabEscapeDist is how far the pointer must stray from a tab's centre
	// before container edges are considered at all.
	tabEscapeDist = 30
	// containerEdgeDist is the capture band inside the container edges.
	containerEdgeDist = 20
)

// ForTab classifies a drop on a single tab. A pointer that has escaped
// the tab (more than 30px from its centre on either axis) and sits within
// 20px of a container edge produces an edge split on the container;
// otherwise the tab is partitioned into horizontal thirds.
func ForTab(pt Point, tab Rect, container *Rect) Position {
	if container != nil {
		dx := pt.X - tab.CenterX()
		dy := pt.Y - tab.CenterY()
		escaped := dx > tabEscapeDist || dx < -tabEscapeDist ||
			dy > tabEscapeDist || dy < -tabEscapeDist
		if escaped {
			if edge, ok := containerEdge(pt, *container); ok {
				return edge
			}
		}
	}

	third := tab.W / 3
	switch {
	case pt.X < tab.X+third:
		return TabBefore
	case pt.X > tab.X+2*third:
		return TabAfter
	default:
		return TabInto
	}
}

// containerEdge reports the container edge within capture distance of pt,
// preferring the horizontal edges when the pointer sits in a corner band.
func containerEdge(pt Point, c Rect) (Position, bool) {
	switch {
	case pt.X-c.X <= containerEdgeDist:
		return Left, true
	case c.X+c.W-pt.X <= containerEdgeDist:
		return Right, true
	case pt.Y-c.Y <= containerEdgeDist:
		return Top, true
	case c.Y+c.H-pt.Y <= containerEdgeDist:
		return Bottom, true
	}
	return "", false
}

// HeaderTarget pairs a drop position with the index of the tab it applies
// to within the strip passed to ForTabHeader.
type HeaderTarget struct {
	Index    int
	Position Position
}

// ForTabHeader classifies a horizontal drop across an ordered tab strip.
// tabs must be left-to-right and non-empty.
func ForTabHeader(x float64, tabs []Rect) HeaderTarget {
	last := len(tabs) - 1
	if x < tabs[0].X {
		return HeaderTarget{Index: 0, Position: TabBefore}
	}
	if x > tabs[last].X+tabs[last].W {
		return HeaderTarget{Index: last, Position: TabAfter}
	}

	for i, tab := range tabs {
		if x < tab.X || x > tab.X+tab.W {
			continue
		}
		third := tab.W / 3
		switch {
		case x < tab.X+third:
			return HeaderTarget{Index: i, Position: TabBefore}
		case x > tab.X+2*third:
			// A right-third hit on the last tab stays on the last tab;
			// there is no next tab to target.
			if i == last {
				return HeaderTarget{Index: i, Position: TabAfter}
			}
			return HeaderTarget{Index: i + 1, Position: TabBefore}
		default:
			return HeaderTarget{Index: i, Position: TabInto}
		}
	}

	// Pointer sits in a gap between two tabs: the midpoint decides.
	for i := 0; i < last; i++ {
		gapStart := tabs[i].X + tabs[i].W
		gapEnd := tabs[i+1].X
		if x >= gapStart && x <= gapEnd {
			if x < (gapStart+gapEnd)/2 {
				return HeaderTarget{Index: i, Position: TabAfter}
			}
			return HeaderTarget{Index: i + 1, Position: TabBefore}
		}
	}
	return HeaderTarget{Index: last, Position: TabAfter}
}

// TreeRowKind selects the vertical zoning used for a file-tree row.
type TreeRowKind int

const (
	RowFile TreeRowKind = iota
	RowFolder
)

// TreePosition is the outcome of classifying a drop on a file-tree row.
type TreePosition string

const (
	Before TreePosition = "before"
	Inside TreePosition = "inside"
	After  TreePosition = "after"
)

// ForTreeRow classifies a drop on a file-tree row from the pointer's y.
// Files split 50/50 into before/after; folders 30/40/30 with an inside
// band.
func ForTreeRow(y float64, row Rect, kind TreeRowKind) TreePosition {
	rel := y - row.Y
	if kind == RowFile {
		if rel < row.H/2 {
			return Before
		}
		return After
	}
	switch {
	case rel < row.H*0.3:
		return Before
	case rel > row.H*0.7:
		return After
	default:
		return Inside
	}
}
