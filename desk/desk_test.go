// Copyright © 2026 Sketchdock contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: desk/desk_test.go
// Summary: Exercises the workspace glue end to end over the in-memory
// store.
// Usage: Executed during `go test` to guard against regressions.

package desk

import (
	"testing"

	"github.com/framegrace/sketchdock/config"
	"github.com/framegrace/sketchdock/content"
	"github.com/framegrace/sketchdock/dock"
	"github.com/framegrace/sketchdock/drop"
	"github.com/framegrace/sketchdock/history"
	"github.com/framegrace/sketchdock/storage"
)

func newDesk(t *testing.T) (*Desk, *storage.Memory) {
	t.Helper()
	store := storage.NewMemory()
	if _, err := store.CreateFolder("", "drawings"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.CreateFile("drawings", "cat.draw"); err != nil {
		t.Fatal(err)
	}
	if err := store.WriteFile("drawings/cat.draw",
		[]byte(`{"strokes":[{"id":"s1","points":[{"x":1,"y":2}],"color":"#000","width":2}]}`)); err != nil {
		t.Fatal(err)
	}
	if _, err := store.CreateFile("", "notes.txt"); err != nil {
		t.Fatal(err)
	}
	if err := store.WriteFile("notes.txt", []byte("hello world\n")); err != nil {
		t.Fatal(err)
	}
	d, err := New(config.Defaults(), store)
	if err != nil {
		t.Fatal(err)
	}
	return d, store
}

func TestSyncBuildsFileTree(t *testing.T) {
	d, _ := newDesk(t)
	if d.Files().GetFile("drawings/cat.draw") == nil || d.Files().GetFile("notes.txt") == nil {
		t.Fatalf("file tree missing entries")
	}
	if d.Files().GetFolder("drawings") == nil {
		t.Fatalf("folder missing")
	}
	if err := d.Files().CheckConsistency(); err != nil {
		t.Fatal(err)
	}
}

func TestOpenDrawFile(t *testing.T) {
	d, _ := newDesk(t)
	panelID, err := d.OpenFile("drawings/cat.draw")
	if err != nil {
		t.Fatal(err)
	}
	strokes := d.Strokes(panelID)
	if len(strokes) != 1 || strokes[0].ID != "s1" {
		t.Fatalf("opened strokes %v", strokes)
	}
	if d.IsDirty(panelID) {
		t.Fatalf("freshly opened drawing must be clean")
	}

	// Re-opening the same path reuses the panel.
	again, err := d.OpenFile("drawings/cat.draw")
	if err != nil || again != panelID {
		t.Fatalf("reopen created a second panel: %s vs %s (%v)", again, panelID, err)
	}
}

func TestOpenPreviewFile(t *testing.T) {
	d, _ := newDesk(t)
	panelID, err := d.OpenFile("notes.txt")
	if err != nil {
		t.Fatal(err)
	}
	p, ok := d.Preview(panelID)
	if !ok || len(p.Lines) == 0 {
		t.Fatalf("preview not built: %v %v", p, ok)
	}
}

func TestEditSaveCycle(t *testing.T) {
	d, store := newDesk(t)
	panelID, err := d.OpenFile("drawings/cat.draw")
	if err != nil {
		t.Fatal(err)
	}

	d.PushStrokes(panelID, []history.Stroke{
		{ID: "s1", Color: "#000", Width: 2},
		{ID: "s2", Color: "#f00", Width: 3},
	})
	if !d.IsDirty(panelID) {
		t.Fatalf("push must dirty the panel")
	}

	if err := d.Save(panelID); err != nil {
		t.Fatal(err)
	}
	if d.IsDirty(panelID) {
		t.Fatalf("save must clean the panel")
	}

	data, err := store.ReadFile("drawings/cat.draw")
	if err != nil {
		t.Fatal(err)
	}
	doc, err := content.DecodeDraw(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Strokes) != 2 || doc.Strokes[1].ID != "s2" {
		t.Fatalf("saved payload %v", doc.Strokes)
	}

	// Undo back to the opened state; redo forward again.
	strokes, ok := d.Undo(panelID)
	if !ok || len(strokes) != 1 {
		t.Fatalf("undo: %v %v", strokes, ok)
	}
	if !d.IsDirty(panelID) {
		t.Fatalf("undo away from the saved entry must dirty")
	}
	strokes, ok = d.Redo(panelID)
	if !ok || len(strokes) != 2 {
		t.Fatalf("redo: %v %v", strokes, ok)
	}
	if d.IsDirty(panelID) {
		t.Fatalf("redo back to the saved entry must be clean")
	}
}

func TestLayoutPersistRoundTrip(t *testing.T) {
	d, store := newDesk(t)
	a, err := d.OpenFile("drawings/cat.draw")
	if err != nil {
		t.Fatal(err)
	}
	d.Dock().AddTab(a, "draw", "Scratch")
	want := d.Dock().Snapshot()

	if err := d.SaveLayout(); err != nil {
		t.Fatal(err)
	}

	// The layout file stays out of listings.
	root, err := store.ListRoot()
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range root.Children {
		if c.Name == ".sketchdock" {
			t.Fatalf("layout folder leaked into the listing")
		}
	}

	d2, err := New(config.Defaults(), store)
	if err != nil {
		t.Fatal(err)
	}
	if err := d2.RestoreLayout(); err != nil {
		t.Fatal(err)
	}
	got := d2.Dock().Snapshot()
	if got.Root == nil || got.Root.Kind != want.Root.Kind {
		t.Fatalf("restored root %+v, want kind %v", got.Root, want.Root.Kind)
	}
	if err := dock.CheckInvariants(got); err != nil {
		t.Fatal(err)
	}
}

func TestRestoreLayoutWithoutFile(t *testing.T) {
	d, _ := newDesk(t)
	if err := d.RestoreLayout(); err != nil {
		t.Fatalf("missing layout must restore to nothing: %v", err)
	}
}

func TestExternalChangeReloadsCleanPanel(t *testing.T) {
	d, store := newDesk(t)
	panelID, err := d.OpenFile("drawings/cat.draw")
	if err != nil {
		t.Fatal(err)
	}

	if err := store.WriteFile("drawings/cat.draw",
		[]byte(`{"strokes":[{"id":"x1","points":[],"color":"#00f","width":1}]}`)); err != nil {
		t.Fatal(err)
	}
	d.HandleExternalChange("drawings/cat.draw")

	strokes := d.Strokes(panelID)
	if len(strokes) != 1 || strokes[0].ID != "x1" {
		t.Fatalf("clean panel did not reload: %v", strokes)
	}
}

func TestExternalChangeSparesDirtyPanel(t *testing.T) {
	d, store := newDesk(t)
	panelID, err := d.OpenFile("drawings/cat.draw")
	if err != nil {
		t.Fatal(err)
	}
	d.PushStrokes(panelID, []history.Stroke{{ID: "mine", Color: "#000", Width: 1}})

	if err := store.WriteFile("drawings/cat.draw", []byte(`{"strokes":[]}`)); err != nil {
		t.Fatal(err)
	}
	d.HandleExternalChange("drawings/cat.draw")

	strokes := d.Strokes(panelID)
	if len(strokes) != 1 || strokes[0].ID != "mine" {
		t.Fatalf("dirty panel lost local strokes: %v", strokes)
	}
}

func TestMoveNodeMirrorsStore(t *testing.T) {
	d, store := newDesk(t)
	panelID, err := d.OpenFile("drawings/cat.draw")
	if err != nil {
		t.Fatal(err)
	}
	if err := d.CreateFolder("", "archive"); err != nil {
		t.Fatal(err)
	}
	if !d.MoveNode("drawings/cat.draw", "archive", drop.Inside) {
		t.Fatalf("move failed")
	}
	if _, err := store.ReadFile("archive/cat.draw"); err != nil {
		t.Fatalf("store did not follow the move: %v", err)
	}
	if p, _ := d.PanelPath(panelID); p != "archive/cat.draw" {
		t.Fatalf("panel path not rebound: %q", p)
	}
	// A save after the move lands at the new path.
	d.PushStrokes(panelID, []history.Stroke{{ID: "n", Color: "#000", Width: 1}})
	if err := d.Save(panelID); err != nil {
		t.Fatal(err)
	}
	data, err := store.ReadFile("archive/cat.draw")
	if err != nil {
		t.Fatal(err)
	}
	doc, err := content.DecodeDraw(data)
	if err != nil || len(doc.Strokes) != 1 || doc.Strokes[0].ID != "n" {
		t.Fatalf("post-move save misrouted: %v %v", doc, err)
	}
}

func TestDeleteNodeClosesPanels(t *testing.T) {
	d, store := newDesk(t)
	panelID, err := d.OpenFile("drawings/cat.draw")
	if err != nil {
		t.Fatal(err)
	}
	if err := d.DeleteNode("drawings"); err != nil {
		t.Fatal(err)
	}
	if _, ok := d.PanelPath(panelID); ok {
		t.Fatalf("panel survived its file's deletion")
	}
	if _, err := store.ReadFile("drawings/cat.draw"); storage.KindOf(err) != storage.KindNotFound {
		t.Fatalf("store still holds the file: %v", err)
	}
	if d.Files().GetFolder("drawings") != nil {
		t.Fatalf("tree still holds the folder")
	}
}

func TestCreateRenameRejectDuplicates(t *testing.T) {
	d, _ := newDesk(t)
	if err := d.CreateFile("", "notes.txt"); err == nil {
		t.Fatalf("duplicate create accepted")
	}
	if err := d.CreateFile("", "fresh.draw"); err != nil {
		t.Fatal(err)
	}
	if err := d.RenameNode("fresh.draw", "notes.txt"); err == nil {
		t.Fatalf("duplicate rename accepted")
	}
	if err := d.RenameNode("fresh.draw", "sketch.draw"); err != nil {
		t.Fatal(err)
	}
	if d.Files().GetFile("sketch.draw") == nil {
		t.Fatalf("rename not applied to tree")
	}
}
