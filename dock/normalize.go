// Copyright © 2026 Sketchdock contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: dock/normalize.go
// Summary: Tree normalisation applied after every structural mutation.
// Usage: Internal to the manager; keeps the §3-style invariants true
// before any event reaches a subscriber.

package dock

// normalize runs the full post-mutation pipeline: degenerate containers
// collapse, undersized tab containers dissolve, and the active-panel map
// is reconciled with the surviving tree.
func (m *Manager) normalize() {
	m.state.Root = rebalance(m.state.Root)
	m.state.Root = optimize(m.state.Root)
	m.recalcActivePanels()
	if m.state.MaximizedPanelID != "" {
		if n := findNode(m.state.Root, m.state.MaximizedPanelID); n == nil || n.Kind != KindPanel {
			m.state.MaximizedPanelID = ""
		}
	}
}

// rebalance collapses containers left with a single surviving child.
// Nested containers sharing a split direction stay nested; the engine
// never re-associates splits.
func rebalance(n *Node) *Node {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KindContainer:
		n.First = rebalance(n.First)
		n.Second = rebalance(n.Second)
		if n.First == nil && n.Second == nil {
			return nil
		}
		if n.First == nil {
			return n.Second
		}
		if n.Second == nil {
			return n.First
		}
		if n.Size < MinSize || n.Size > MaxSize {
			n.Size = clampSize(n.Size)
		}
	case KindTabs:
		kept := n.Panels[:0]
		for _, p := range n.Panels {
			if p != nil {
				kept = append(kept, p)
			}
		}
		n.Panels = kept
	}
	return n
}

// optimize dissolves tab containers that no longer justify a tab strip:
// one panel collapses to that panel, zero panels removes the node. The
// active id is clamped to a member.
func optimize(n *Node) *Node {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KindContainer:
		n.First = optimize(n.First)
		n.Second = optimize(n.Second)
		if n.First == nil && n.Second == nil {
			return nil
		}
		if n.First == nil {
			return n.Second
		}
		if n.Second == nil {
			return n.First
		}
	case KindTabs:
		switch len(n.Panels) {
		case 0:
			return nil
		case 1:
			return n.Panels[0]
		}
		if tabIndex(n, n.ActiveID) < 0 {
			n.ActiveID = n.Panels[0].ID
		}
	}
	return n
}

// recalcActivePanels rebuilds the tab-container → active-panel map.
// A stored active id that still names a member wins; otherwise a
// previously recorded choice is honoured; otherwise the first panel.
func (m *Manager) recalcActivePanels() {
	prev := m.state.ActivePanels
	next := make(map[string]string)
	walkNodes(m.state.Root, func(n *Node) bool {
		if n.Kind != KindTabs {
			return true
		}
		switch {
		case tabIndex(n, n.ActiveID) >= 0:
			// Stored id still a member.
		case tabIndex(n, prev[n.ID]) >= 0:
			n.ActiveID = prev[n.ID]
		default:
			n.ActiveID = n.Panels[0].ID
		}
		next[n.ID] = n.ActiveID
		return true
	})
	m.state.ActivePanels = next
}

func clampSize(size float64) float64 {
	if size < MinSize {
		return MinSize
	}
	if size > MaxSize {
		return MaxSize
	}
	return size
}
