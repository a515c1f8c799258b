// Copyright © 2026 Sketchdock contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: dock/node_test.go
// Summary: Exercises node cloning, serialisation, and the invariant oracle.
// Usage: Executed during `go test` to guard against regressions.

package dock

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestCloneIsDeep(t *testing.T) {
	m, a, _ := twoPanels(t)
	snap := m.Snapshot()

	// Mutating the snapshot must not leak back into the manager.
	snap.Root.Size = 0.2
	findNode(snap.Root, a).Title = "tampered"

	fresh := m.Snapshot()
	if fresh.Root.Size != 0.5 || findNode(fresh.Root, a).Title != "A" {
		t.Fatalf("snapshot aliases manager state: %+v", fresh.Root)
	}
}

func TestStateJSONOmitsContent(t *testing.T) {
	m := NewManager()
	a := m.AddPanel("draw", "A")
	snap := m.Snapshot()
	findNode(snap.Root, a).Content = map[string]string{"secret": "blob"}

	raw, err := json.Marshal(snap)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "secret") {
		t.Fatalf("opaque content leaked into serialised layout: %s", raw)
	}

	var back State
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatal(err)
	}
	if back.Root.ID != snap.Root.ID || back.InstanceID != snap.InstanceID {
		t.Fatalf("round trip lost identity: %+v", back)
	}
}

func TestCheckInvariantsRejectsBadTrees(t *testing.T) {
	panel := func(id string) *Node { return &Node{Kind: KindPanel, ID: id} }

	cases := []struct {
		name string
		root *Node
	}{
		{"duplicate ids", &Node{Kind: KindContainer, ID: "c", Dir: Horizontal, Size: 0.5,
			First: panel("p"), Second: panel("p")}},
		{"missing child", &Node{Kind: KindContainer, ID: "c", Dir: Horizontal, Size: 0.5,
			First: panel("p")}},
		{"single tab", &Node{Kind: KindTabs, ID: "t", ActiveID: "p", Panels: []*Node{panel("p")}}},
		{"foreign active id", &Node{Kind: KindTabs, ID: "t", ActiveID: "zz",
			Panels: []*Node{panel("p1"), panel("p2")}}},
		{"size out of range", &Node{Kind: KindContainer, ID: "c", Dir: Vertical, Size: 0.95,
			First: panel("p1"), Second: panel("p2")}},
	}
	for _, c := range cases {
		s := &State{Root: c.root, ActivePanels: map[string]string{}}
		if err := CheckInvariants(s); err == nil {
			t.Errorf("%s: invariant checker accepted a bad tree", c.name)
		}
	}

	ok := &State{
		Root:         &Node{Kind: KindContainer, ID: "c", Dir: Horizontal, Size: 0.5, First: panel("p1"), Second: panel("p2")},
		ActivePanels: map[string]string{},
	}
	if err := CheckInvariants(ok); err != nil {
		t.Errorf("good tree rejected: %v", err)
	}

	ok.MaximizedPanelID = "p1"
	if err := CheckInvariants(ok); err != nil {
		t.Errorf("valid maximize rejected: %v", err)
	}
	ok.MaximizedPanelID = "ghost"
	if err := CheckInvariants(ok); err == nil {
		t.Errorf("dangling maximize accepted")
	}
}

func TestReentrantEmit(t *testing.T) {
	d := NewDispatcher()
	var order []string
	d.Subscribe(EventPanelAdded, func(Event) {
		order = append(order, "outer")
		d.Emit(Event{Type: EventLayoutChanged})
	})
	d.Subscribe(EventLayoutChanged, func(Event) {
		order = append(order, "inner")
	})
	d.Emit(Event{Type: EventPanelAdded})
	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Fatalf("reentrant emit order %v", order)
	}
}
