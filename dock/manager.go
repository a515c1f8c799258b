// Copyright © 2026 Sketchdock contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: dock/manager.go
// Summary: Implements the dock-tree manager: panel add/remove/move,
// tab handling, resize, activation, and maximize.
// Usage: One instance per workspace; hosts subscribe to its events and
// re-render from Snapshot().

package dock

import (
	"fmt"
	"log"
	"sync"

	"github.com/framegrace/sketchdock/drop"
	"github.com/framegrace/sketchdock/ident"
)

// Manager owns one dock tree. Every operation is total: a failed
// precondition returns false or an empty id, leaves the state untouched,
// and emits nothing. Successful structural mutations emit their granular
// events first and layoutChanged last; an in-place tab reorder, a resize,
// an activation, a maximize, and a restore emit only their own event.
type Manager struct {
	mu     sync.Mutex
	state  *State
	events *Dispatcher
}

// NewManager creates a manager around an empty layout.
func NewManager() *Manager {
	return &Manager{
		state: &State{
			ActivePanels: make(map[string]string),
			InstanceID:   ident.InstanceToken(),
		},
		events: NewDispatcher(),
	}
}

// NewManagerWithLayout creates a manager around a caller-supplied tree.
// The tree is cloned, normalised, and must pass the invariant check.
func NewManagerWithLayout(root *Node) (*Manager, error) {
	m := NewManager()
	m.state.Root = root.Clone()
	m.normalize()
	if err := CheckInvariants(m.state); err != nil {
		return nil, err
	}
	return m, nil
}

// RestoreLayout swaps in a previously serialised tree. The tree is
// cloned and normalised; an invariant failure leaves the current layout
// in place.
func (m *Manager) RestoreLayout(root *Node) error {
	m.mu.Lock()

	before := m.state
	m.state = &State{
		Root:         root.Clone(),
		ActivePanels: make(map[string]string),
		InstanceID:   before.InstanceID,
	}
	m.normalize()
	if err := CheckInvariants(m.state); err != nil {
		m.state = before
		m.mu.Unlock()
		return fmt.Errorf("restore layout: %w", err)
	}

	log.Printf("Dock: Restored layout with %d panels", panelCount(m.state.Root))
	m.mu.Unlock()
	m.emitAll([]Event{{Type: EventLayoutChanged}})
	return nil
}

// Events exposes the manager's event bus.
func (m *Manager) Events() *Dispatcher { return m.events }

// Snapshot returns a deep copy of the current state. Observers never see
// owned nodes.
func (m *Manager) Snapshot() *State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

// emitAll broadcasts queued events in order, outside the state lock.
func (m *Manager) emitAll(events []Event) {
	for _, ev := range events {
		m.events.Emit(ev)
	}
}

// AddPanel creates a new panel and docks it according to the root shape:
// a panel root gains a horizontal sibling split, a container root splits
// its second child vertically, a tabs root gains a tab. Returns the new
// panel's id.
func (m *Manager) AddPanel(contentKey, title string) string {
	m.mu.Lock()

	panel := m.newPanel(contentKey, title)
	switch {
	case m.state.Root == nil:
		m.state.Root = panel
	case m.state.Root.Kind == KindPanel:
		m.state.Root = &Node{
			Kind:   KindContainer,
			ID:     ident.Fresh(0),
			Dir:    Horizontal,
			First:  m.state.Root,
			Second: panel,
			Size:   0.5,
		}
	case m.state.Root.Kind == KindContainer:
		root := m.state.Root
		root.Second = &Node{
			Kind:   KindContainer,
			ID:     ident.Fresh(0),
			Dir:    Vertical,
			First:  root.Second,
			Second: panel,
			Size:   0.5,
		}
	case m.state.Root.Kind == KindTabs:
		m.state.Root.Panels = append(m.state.Root.Panels, panel)
		m.state.Root.ActiveID = panel.ID
	}
	m.normalize()

	log.Printf("Dock: Added panel %q (%s)", panel.Title, panel.ID)
	events := []Event{
		{Type: EventPanelAdded, PanelID: panel.ID},
		{Type: EventLayoutChanged},
	}
	m.mu.Unlock()
	m.emitAll(events)
	return panel.ID
}

// AddTab adds a panel as a tab on the target: a panel target is wrapped
// into a new tab container, a tabs target appends. Returns the new
// panel's id, "" when the target is missing or not tabbable.
func (m *Manager) AddTab(targetID, contentKey, title string) string {
	m.mu.Lock()

	target := findNode(m.state.Root, targetID)
	if target == nil || target.Kind == KindContainer {
		m.mu.Unlock()
		return ""
	}
	panel := m.newPanel(contentKey, title)
	if target.Kind == KindPanel {
		// A panel already stacked in a tab container gains a sibling tab
		// there instead of nesting a second strip.
		if parent := findParent(m.state.Root, targetID); parent != nil && parent.Kind == KindTabs {
			target = parent
		}
	}
	switch target.Kind {
	case KindPanel:
		tabs := &Node{
			Kind:     KindTabs,
			ID:       ident.Fresh(0),
			Panels:   []*Node{target.Clone(), panel},
			ActiveID: panel.ID,
		}
		m.replaceNode(targetID, tabs)
	case KindTabs:
		target.Panels = append(target.Panels, panel)
		target.ActiveID = panel.ID
	}
	m.normalize()

	log.Printf("Dock: Added tab %q (%s) on %s", panel.Title, panel.ID, targetID)
	events := []Event{
		{Type: EventPanelAdded, PanelID: panel.ID},
		{Type: EventActivePanelChanged, PanelID: panel.ID},
		{Type: EventLayoutChanged},
	}
	m.mu.Unlock()
	m.emitAll(events)
	return panel.ID
}

// RemovePanel deletes the panel with the given id, collapsing whatever
// structure it leaves behind.
func (m *Manager) RemovePanel(id string) bool {
	m.mu.Lock()

	node := findNode(m.state.Root, id)
	if node == nil || node.Kind != KindPanel {
		m.mu.Unlock()
		return false
	}
	events := make([]Event, 0, 3)
	if m.state.MaximizedPanelID == id {
		m.state.MaximizedPanelID = ""
		events = append(events, Event{Type: EventPanelRestored, PanelID: id})
	}
	m.detach(id)
	m.normalize()

	log.Printf("Dock: Removed panel %s", id)
	events = append(events,
		Event{Type: EventPanelRemoved, PanelID: id},
		Event{Type: EventLayoutChanged},
	)
	m.mu.Unlock()
	m.emitAll(events)
	return true
}

// MovePanel relocates the source panel relative to the target node.
// Tab positions between siblings of one tab container reorder in place;
// everything else detaches the source and re-inserts it. Rejected while
// a panel is maximized.
func (m *Manager) MovePanel(sourceID, targetID string, pos drop.Position) bool {
	m.mu.Lock()

	if m.state.MaximizedPanelID != "" || sourceID == targetID {
		m.mu.Unlock()
		return false
	}
	source := findNode(m.state.Root, sourceID)
	target := findNode(m.state.Root, targetID)
	if source == nil || target == nil || source.Kind != KindPanel {
		m.mu.Unlock()
		return false
	}
	if !pos.IsEdge() && !pos.IsTab() {
		m.mu.Unlock()
		return false
	}

	// Fast path: sibling tabs reorder in place, preserving activation
	// without a detach/re-insert cycle.
	if pos.IsTab() {
		if tabs := findParent(m.state.Root, sourceID); tabs != nil && tabs.Kind == KindTabs &&
			tabIndex(tabs, targetID) >= 0 {
			m.reorderTabs(tabs, sourceID, targetID, pos)
			log.Printf("Dock: Reordered tab %s %s %s", sourceID, pos, targetID)
			m.mu.Unlock()
			m.emitAll([]Event{{Type: EventPanelMoved, PanelID: sourceID, NodeID: targetID}})
			return true
		}
	}

	before := m.state.Clone()
	detached := m.detach(sourceID)
	m.state.Root = rebalance(m.state.Root)
	m.state.Root = optimize(m.state.Root)

	if !m.insert(detached, targetID, pos) {
		// The target dissolved during detach (for instance a tab
		// container that collapsed); the move cannot apply.
		m.state = before
		m.mu.Unlock()
		return false
	}
	m.normalize()

	log.Printf("Dock: Moved panel %s %s %s", sourceID, pos, targetID)
	events := []Event{
		{Type: EventPanelMoved, PanelID: sourceID, NodeID: targetID},
		{Type: EventLayoutChanged},
	}
	m.mu.Unlock()
	m.emitAll(events)
	return true
}

// reorderTabs moves source next to target within one tab container and
// activates it.
func (m *Manager) reorderTabs(tabs *Node, sourceID, targetID string, pos drop.Position) {
	srcIdx := tabIndex(tabs, sourceID)
	source := tabs.Panels[srcIdx]
	tabs.Panels = append(tabs.Panels[:srcIdx], tabs.Panels[srcIdx+1:]...)

	insertAt := tabIndex(tabs, targetID)
	if pos == drop.TabAfter {
		insertAt++
	}
	tabs.Panels = append(tabs.Panels, nil)
	copy(tabs.Panels[insertAt+1:], tabs.Panels[insertAt:])
	tabs.Panels[insertAt] = source

	tabs.ActiveID = sourceID
	m.state.ActivePanels[tabs.ID] = sourceID
}

// insert places a detached panel relative to the target node.
func (m *Manager) insert(source *Node, targetID string, pos drop.Position) bool {
	target := findNode(m.state.Root, targetID)
	if target == nil {
		return false
	}

	if pos.IsEdge() {
		// A panel stacked in a tab strip splits around the whole strip, so
		// tab containers keep holding panels only.
		if target.Kind == KindPanel {
			if parent := findParent(m.state.Root, targetID); parent != nil && parent.Kind == KindTabs {
				target, targetID = parent, parent.ID
			}
		}
		dir := Vertical
		if pos == drop.Left || pos == drop.Right {
			dir = Horizontal
		}
		container := &Node{
			Kind: KindContainer,
			ID:   ident.Fresh(0),
			Dir:  dir,
			Size: 0.5,
		}
		clone := target.Clone()
		if pos == drop.Top || pos == drop.Left {
			container.First, container.Second = source, clone
		} else {
			container.First, container.Second = clone, source
		}
		m.replaceNode(targetID, container)
		return true
	}

	switch target.Kind {
	case KindTabs:
		insertAt := len(target.Panels)
		if pos == drop.TabBefore {
			insertAt = 0
		}
		target.Panels = append(target.Panels, nil)
		copy(target.Panels[insertAt+1:], target.Panels[insertAt:])
		target.Panels[insertAt] = source
		target.ActiveID = source.ID
		return true
	case KindPanel:
		if parent := findParent(m.state.Root, targetID); parent != nil && parent.Kind == KindTabs {
			insertAt := tabIndex(parent, targetID)
			switch pos {
			case drop.TabAfter:
				insertAt++
			case drop.TabInto:
				insertAt = len(parent.Panels)
			}
			parent.Panels = append(parent.Panels, nil)
			copy(parent.Panels[insertAt+1:], parent.Panels[insertAt:])
			parent.Panels[insertAt] = source
			parent.ActiveID = source.ID
			return true
		}
		// A standalone panel grows a fresh tab container around itself.
		tabs := &Node{
			Kind:     KindTabs,
			ID:       ident.Fresh(0),
			ActiveID: source.ID,
		}
		clone := target.Clone()
		if pos == drop.TabBefore {
			tabs.Panels = []*Node{source, clone}
		} else {
			tabs.Panels = []*Node{clone, source}
		}
		m.replaceNode(targetID, tabs)
		return true
	}
	return false
}

// ResizeContainer moves a container's divider, clamped to [0.1, 0.9].
// Rejected while a panel is maximized.
func (m *Manager) ResizeContainer(nodeID string, size float64) bool {
	m.mu.Lock()

	if m.state.MaximizedPanelID != "" {
		m.mu.Unlock()
		return false
	}
	node := findNode(m.state.Root, nodeID)
	if node == nil || node.Kind != KindContainer {
		m.mu.Unlock()
		return false
	}
	node.Size = clampSize(size)
	size = node.Size

	m.mu.Unlock()
	m.emitAll([]Event{{Type: EventResize, NodeID: nodeID, Size: size}})
	return true
}

// ActivatePanel makes the panel the active tab of its tab container.
// A panel outside any tab container is untouched.
func (m *Manager) ActivatePanel(panelID string) bool {
	m.mu.Lock()

	panel := findNode(m.state.Root, panelID)
	if panel == nil || panel.Kind != KindPanel {
		m.mu.Unlock()
		return false
	}
	tabs := findParent(m.state.Root, panelID)
	if tabs == nil || tabs.Kind != KindTabs {
		m.mu.Unlock()
		return false
	}
	if tabs.ActiveID == panelID {
		m.mu.Unlock()
		return true
	}
	tabs.ActiveID = panelID
	m.state.ActivePanels[tabs.ID] = panelID

	m.mu.Unlock()
	m.emitAll([]Event{{Type: EventActivePanelChanged, PanelID: panelID}})
	return true
}

// Maximize records the panel as maximized; the host renders only it.
func (m *Manager) Maximize(panelID string) bool {
	m.mu.Lock()

	node := findNode(m.state.Root, panelID)
	if node == nil || node.Kind != KindPanel {
		m.mu.Unlock()
		return false
	}
	if m.state.MaximizedPanelID == panelID {
		m.mu.Unlock()
		return true
	}
	m.state.MaximizedPanelID = panelID

	m.mu.Unlock()
	m.emitAll([]Event{{Type: EventPanelMaximized, PanelID: panelID}})
	return true
}

// Restore clears maximization.
func (m *Manager) Restore() bool {
	m.mu.Lock()

	id := m.state.MaximizedPanelID
	if id == "" {
		m.mu.Unlock()
		return false
	}
	m.state.MaximizedPanelID = ""

	m.mu.Unlock()
	m.emitAll([]Event{{Type: EventPanelRestored, PanelID: id}})
	return true
}

// EditPanel rewrites a panel's title and content key in one step.
func (m *Manager) EditPanel(panelID, title, contentKey string) bool {
	return m.editPanel(panelID, &title, &contentKey)
}

// UpdatePanelTitle rewrites just the title.
func (m *Manager) UpdatePanelTitle(panelID, title string) bool {
	return m.editPanel(panelID, &title, nil)
}

// UpdatePanelContentKey rewrites just the content key.
func (m *Manager) UpdatePanelContentKey(panelID, contentKey string) bool {
	return m.editPanel(panelID, nil, &contentKey)
}

func (m *Manager) editPanel(panelID string, title, contentKey *string) bool {
	m.mu.Lock()

	panel := findNode(m.state.Root, panelID)
	if panel == nil || panel.Kind != KindPanel {
		m.mu.Unlock()
		return false
	}
	titleChanged := false
	if title != nil && panel.Title != *title {
		panel.Title = *title
		titleChanged = true
	}
	if contentKey != nil {
		panel.ContentKey = *contentKey
	}

	events := []Event{{Type: EventPanelEdited, PanelID: panelID}}
	if titleChanged {
		events = append(events, Event{Type: EventLayoutChanged})
	}
	m.mu.Unlock()
	m.emitAll(events)
	return true
}

// newPanel builds a panel node, deriving a unique display title when the
// caller leaves it blank.
func (m *Manager) newPanel(contentKey, title string) *Node {
	if title == "" {
		title = ident.UniqueName("Panel", panelTitles(m.state.Root))
	}
	return &Node{
		Kind:       KindPanel,
		ID:         ident.Fresh(0),
		Title:      title,
		ContentKey: contentKey,
	}
}

// detach unlinks the node with the given id from the tree and returns
// it. Containers and tab strips left degenerate are repaired by the
// caller's normalize pass.
func (m *Manager) detach(id string) *Node {
	node := findNode(m.state.Root, id)
	if node == nil {
		return nil
	}
	parent := findParent(m.state.Root, id)
	if parent == nil {
		m.state.Root = nil
		return node
	}
	switch parent.Kind {
	case KindContainer:
		if parent.First != nil && parent.First.ID == id {
			parent.First = nil
		} else {
			parent.Second = nil
		}
	case KindTabs:
		idx := tabIndex(parent, id)
		parent.Panels = append(parent.Panels[:idx], parent.Panels[idx+1:]...)
	}
	return node
}

// replaceNode swaps the node with the given id for replacement.
func (m *Manager) replaceNode(id string, replacement *Node) {
	if m.state.Root != nil && m.state.Root.ID == id {
		m.state.Root = replacement
		return
	}
	parent := findParent(m.state.Root, id)
	if parent == nil {
		return
	}
	switch parent.Kind {
	case KindContainer:
		if parent.First != nil && parent.First.ID == id {
			parent.First = replacement
		} else {
			parent.Second = replacement
		}
	case KindTabs:
		if idx := tabIndex(parent, id); idx >= 0 {
			parent.Panels[idx] = replacement
		}
	}
}
