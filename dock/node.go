// Copyright © 2026 Sketchdock contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: dock/node.go
// Summary: Tagged-union node model for the dock layout tree.
// Usage: Used throughout the package; hosts receive deep copies via
// snapshots and must treat them as read-only.

package dock

import (
	"encoding/json"
	"fmt"
)

// Kind discriminates the dock node variants.
type Kind string

const (
	KindPanel     Kind = "panel"
	KindContainer Kind = "container"
	KindTabs      Kind = "tabs"
)

// Direction is the split axis of a container.
type Direction string

const (
	Horizontal Direction = "horizontal"
	Vertical   Direction = "vertical"
)

// Size bounds for a container divider.
const (
	MinSize = 0.1
	MaxSize = 0.9
)

// Node is one vertex of the dock tree. The Kind field selects which of
// the variant fields are meaningful; traversals switch exhaustively on
// it. Parent links are deliberately absent; parents are found by
// recursive search.
type Node struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`

	// Panel fields.
	Title      string `json:"title,omitempty"`
	ContentKey string `json:"contentKey,omitempty"`
	Content    any    `json:"content,omitempty"`

	// Container fields. Size is the fractional extent of First; Second
	// occupies the remainder.
	Dir    Direction `json:"dir,omitempty"`
	First  *Node     `json:"first,omitempty"`
	Second *Node     `json:"second,omitempty"`
	Size   float64   `json:"size,omitempty"`

	// Tab container fields. Panels holds KindPanel nodes only.
	Panels   []*Node `json:"panels,omitempty"`
	ActiveID string  `json:"activeId,omitempty"`
}

// State is the complete dock model handed to subscribers.
type State struct {
	Root             *Node             `json:"root"`
	ActivePanels     map[string]string `json:"activePanels"`
	InstanceID       string            `json:"instanceId"`
	MaximizedPanelID string            `json:"maximizedPanelId,omitempty"`
}

// Clone deep-copies a node. Panel Content is shared, not copied; it is
// opaque to the engine.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := *n
	out.First = n.First.Clone()
	out.Second = n.Second.Clone()
	if n.Panels != nil {
		out.Panels = make([]*Node, len(n.Panels))
		for i, p := range n.Panels {
			out.Panels[i] = p.Clone()
		}
	}
	return &out
}

// Clone deep-copies the state.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := &State{
		Root:             s.Root.Clone(),
		ActivePanels:     make(map[string]string, len(s.ActivePanels)),
		InstanceID:       s.InstanceID,
		MaximizedPanelID: s.MaximizedPanelID,
	}
	for k, v := range s.ActivePanels {
		out.ActivePanels[k] = v
	}
	return out
}

// MarshalJSON keeps opaque panel content out of serialised layouts; a
// restored layout re-binds content through its contentKey.
func (s *State) MarshalJSON() ([]byte, error) {
	type alias State
	clone := (*State)(s).Clone()
	walkNodes(clone.Root, func(n *Node) bool {
		n.Content = nil
		return true
	})
	return json.Marshal((*alias)(clone))
}

// walkNodes visits n and its descendants depth-first; returning false
// from the visitor prunes the subtree.
func walkNodes(n *Node, f func(*Node) bool) {
	if n == nil {
		return
	}
	if !f(n) {
		return
	}
	switch n.Kind {
	case KindContainer:
		walkNodes(n.First, f)
		walkNodes(n.Second, f)
	case KindTabs:
		for _, p := range n.Panels {
			walkNodes(p, f)
		}
	}
}

// findNode returns the node with the given id, or nil.
func findNode(root *Node, id string) *Node {
	var out *Node
	walkNodes(root, func(n *Node) bool {
		if n.ID == id {
			out = n
			return false
		}
		return out == nil
	})
	return out
}

// findParent returns the parent of the node with the given id. The root
// has no parent.
func findParent(root *Node, id string) *Node {
	var out *Node
	walkNodes(root, func(n *Node) bool {
		if out != nil {
			return false
		}
		switch n.Kind {
		case KindContainer:
			if (n.First != nil && n.First.ID == id) || (n.Second != nil && n.Second.ID == id) {
				out = n
				return false
			}
		case KindTabs:
			for _, p := range n.Panels {
				if p.ID == id {
					out = n
					return false
				}
			}
		}
		return true
	})
	return out
}

// panelTitles collects the display names of every panel in the tree.
func panelTitles(root *Node) []string {
	var out []string
	walkNodes(root, func(n *Node) bool {
		if n.Kind == KindPanel {
			out = append(out, n.Title)
		}
		return true
	})
	return out
}

// panelCount returns the number of panels in the tree.
func panelCount(root *Node) int {
	count := 0
	walkNodes(root, func(n *Node) bool {
		if n.Kind == KindPanel {
			count++
		}
		return true
	})
	return count
}

// tabIndex returns the position of a panel id in a tab container, -1
// when absent.
func tabIndex(tabs *Node, id string) int {
	for i, p := range tabs.Panels {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// CheckInvariants verifies the structural invariants of a dock state.
// Tests use it as the oracle after every operation sequence.
func CheckInvariants(s *State) error {
	if s == nil {
		return fmt.Errorf("nil state")
	}
	ids := make(map[string]struct{})
	var err error
	walkNodes(s.Root, func(n *Node) bool {
		if err != nil {
			return false
		}
		if n.ID == "" {
			err = fmt.Errorf("node with empty id (kind %s)", n.Kind)
			return false
		}
		if _, dup := ids[n.ID]; dup {
			err = fmt.Errorf("duplicate id %q", n.ID)
			return false
		}
		ids[n.ID] = struct{}{}

		switch n.Kind {
		case KindPanel:
			if n.First != nil || n.Second != nil || len(n.Panels) > 0 {
				err = fmt.Errorf("panel %q carries container fields", n.ID)
			}
		case KindContainer:
			if n.First == nil || n.Second == nil {
				err = fmt.Errorf("container %q has a missing child", n.ID)
				return false
			}
			if n.Size < MinSize || n.Size > MaxSize {
				err = fmt.Errorf("container %q size %v out of range", n.ID, n.Size)
			}
		case KindTabs:
			if len(n.Panels) < 2 {
				err = fmt.Errorf("tab container %q has %d panels", n.ID, len(n.Panels))
				return false
			}
			if tabIndex(n, n.ActiveID) < 0 {
				err = fmt.Errorf("tab container %q active id %q is not a member", n.ID, n.ActiveID)
			}
			for _, p := range n.Panels {
				if p.Kind != KindPanel {
					err = fmt.Errorf("tab container %q holds a %s", n.ID, p.Kind)
				}
			}
		default:
			err = fmt.Errorf("unknown node kind %q", n.Kind)
		}
		return err == nil
	})
	if err != nil {
		return err
	}
	if s.MaximizedPanelID != "" {
		n := findNode(s.Root, s.MaximizedPanelID)
		if n == nil || n.Kind != KindPanel {
			return fmt.Errorf("maximized id %q does not name a panel", s.MaximizedPanelID)
		}
	}
	return nil
}
