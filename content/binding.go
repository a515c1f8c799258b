// Copyright © 2026 Sketchdock contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: content/binding.go
// Summary: Maps panel identity to renderable content descriptors and
// forwards host gestures to the dock manager.
// Usage: The host renders whatever Resolve returns and calls the On*
// methods from its input layer.

package content

import (
	"log"
	"sync"

	"github.com/framegrace/sketchdock/dock"
	"github.com/framegrace/sketchdock/drop"
)

// Descriptor pairs a content key with whatever the host renders for it.
type Descriptor struct {
	Key     string
	Label   string
	Content any
}

// PanelComponent marks content that owns per-panel state. The binder
// re-keys instances of such content on the content key, so switching a
// panel's descriptor produces a fresh instance instead of leaking state
// across panels.
type PanelComponent interface {
	PanelComponent()
}

// Registry holds the available content descriptors in registration
// order.
type Registry struct {
	mu          sync.RWMutex
	descriptors []Descriptor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a descriptor. A duplicate key replaces the earlier
// registration.
func (r *Registry) Register(d Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.descriptors {
		if existing.Key == d.Key {
			r.descriptors[i] = d
			return
		}
	}
	r.descriptors = append(r.descriptors, d)
}

// Available returns the descriptors in registration order.
func (r *Registry) Available() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, len(r.descriptors))
	copy(out, r.descriptors)
	return out
}

// Lookup finds a descriptor by key.
func (r *Registry) Lookup(key string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.descriptors {
		if d.Key == key {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Binder is the contract the core exposes to the host: content
// resolution on one side, gesture forwarding on the other.
type Binder struct {
	registry *Registry
	dock     *dock.Manager
}

// NewBinder ties a registry to a dock manager.
func NewBinder(registry *Registry, dm *dock.Manager) *Binder {
	return &Binder{registry: registry, dock: dm}
}

// AvailableContents lists the registered descriptors.
func (b *Binder) AvailableContents() []Descriptor {
	return b.registry.Available()
}

// Resolve returns the content for a panel: the descriptor matching its
// content key, falling back to the panel's embedded content. The second
// result is the instance key the host should key the rendered component
// on.
func (b *Binder) Resolve(panel *dock.Node) (Descriptor, string, bool) {
	if panel == nil || panel.Kind != dock.KindPanel {
		return Descriptor{}, "", false
	}
	if d, ok := b.registry.Lookup(panel.ContentKey); ok {
		return d, instanceKey(panel, d), true
	}
	if panel.Content != nil {
		d := Descriptor{Key: panel.ContentKey, Label: panel.Title, Content: panel.Content}
		return d, instanceKey(panel, d), true
	}
	log.Printf("Content: No descriptor for panel %s (key %q)", panel.ID, panel.ContentKey)
	return Descriptor{}, "", false
}

// instanceKey keys plain content on the panel id alone; panel components
// additionally carry the content key so a descriptor switch rebuilds the
// instance.
func instanceKey(panel *dock.Node, d Descriptor) string {
	if _, ok := d.Content.(PanelComponent); ok {
		return panel.ID + ":" + panel.ContentKey
	}
	return panel.ID
}

// OnMove forwards a drag-drop gesture.
func (b *Binder) OnMove(sourceID, targetID string, pos drop.Position) bool {
	return b.dock.MovePanel(sourceID, targetID, pos)
}

// OnRemove forwards a close gesture.
func (b *Binder) OnRemove(id string) bool {
	return b.dock.RemovePanel(id)
}

// OnMaximize forwards a maximize gesture.
func (b *Binder) OnMaximize(id string) bool {
	return b.dock.Maximize(id)
}

// OnRestore forwards a restore gesture.
func (b *Binder) OnRestore() bool {
	return b.dock.Restore()
}

// OnActivate forwards a tab activation.
func (b *Binder) OnActivate(id string) bool {
	return b.dock.ActivatePanel(id)
}

// OnResize forwards a divider drag.
func (b *Binder) OnResize(nodeID string, size float64) bool {
	return b.dock.ResizeContainer(nodeID, size)
}
