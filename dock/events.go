// Copyright © 2026 Sketchdock contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: dock/events.go
// Summary: Publish/subscribe event bus for dock mutations.
// Usage: The manager broadcasts one or more events per successful
// operation; the host UI re-renders from a snapshot on each event.

package dock

import "sync"

// EventType names every event the dock manager emits.
type EventType string

const (
	EventPanelAdded         EventType = "panelAdded"
	EventPanelRemoved       EventType = "panelRemoved"
	EventPanelEdited        EventType = "panelEdited"
	EventPanelMoved         EventType = "panelMoved"
	EventResize             EventType = "resize"
	EventActivePanelChanged EventType = "activePanelChanged"
	EventLayoutChanged      EventType = "layoutChanged"
	EventPanelMaximized     EventType = "panelMaximized"
	EventPanelRestored      EventType = "panelRestored"
)

// Event is one notification. PanelID and NodeID are set where the event
// concerns a specific node; Size accompanies resize.
type Event struct {
	Type    EventType
	PanelID string
	NodeID  string
	Size    float64
}

// Handler receives events for one subscribed type.
type Handler func(Event)

// Dispatcher is a small typed publish/subscribe bus. Reentrant emits
// from inside a handler are permitted; handlers must be idempotent and
// must not mutate the manager during dispatch.
type Dispatcher struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[EventType]map[int]Handler
}

// NewDispatcher creates an empty bus.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[EventType]map[int]Handler)}
}

// Subscribe registers a handler for one event type and returns its
// unsubscribe token.
func (d *Dispatcher) Subscribe(t EventType, h Handler) (unsubscribe func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	id := d.nextID
	if d.handlers[t] == nil {
		d.handlers[t] = make(map[int]Handler)
	}
	d.handlers[t][id] = h
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.handlers[t], id)
	}
}

// SubscribeAll registers a handler for every event type and returns one
// combined unsubscribe token.
func (d *Dispatcher) SubscribeAll(h Handler) (unsubscribe func()) {
	types := []EventType{
		EventPanelAdded, EventPanelRemoved, EventPanelEdited,
		EventPanelMoved, EventResize, EventActivePanelChanged,
		EventLayoutChanged, EventPanelMaximized, EventPanelRestored,
	}
	unsubs := make([]func(), 0, len(types))
	for _, t := range types {
		unsubs = append(unsubs, d.Subscribe(t, h))
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

// Emit broadcasts an event to its subscribers. The handler set is
// copied first so subscribers may unsubscribe (or emit) reentrantly.
func (d *Dispatcher) Emit(ev Event) {
	d.mu.RLock()
	hs := make([]Handler, 0, len(d.handlers[ev.Type]))
	for _, h := range d.handlers[ev.Type] {
		hs = append(hs, h)
	}
	d.mu.RUnlock()
	for _, h := range hs {
		h(ev)
	}
}
