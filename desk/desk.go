// Copyright © 2026 Sketchdock contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: desk/desk.go
// Summary: Workspace composition: binds the file tree, dock tree,
// per-panel history, and the persistence adapter together.
// Usage: Hosts construct one Desk and drive it from their input layer.

package desk

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/framegrace/sketchdock/config"
	"github.com/framegrace/sketchdock/content"
	"github.com/framegrace/sketchdock/dock"
	"github.com/framegrace/sketchdock/drop"
	"github.com/framegrace/sketchdock/filetree"
	"github.com/framegrace/sketchdock/history"
	"github.com/framegrace/sketchdock/storage"
)

// layoutFolder and layoutFile name where the dock layout persists
// inside the workspace store. The dot prefix keeps them out of
// listings.
const (
	layoutFolder = ".sketchdock"
	layoutFile   = ".sketchdock/layout.json"
)

// Desk owns one workspace: a dock tree, the file tree mirroring the
// store, and a drawing history per open panel.
type Desk struct {
	cfg      config.Config
	dock     *dock.Manager
	files    *filetree.Manager
	store    storage.Adapter
	registry *content.Registry
	binder   *content.Binder

	mu         sync.Mutex
	histories  map[string]history.State   // panel id → drawing history
	panelPaths map[string]string          // panel id → workspace path
	previews   map[string]*content.Preview // panel id → preview content
	saveTimers map[string]*time.Timer

	onError   func(error)
	onRefresh func()
}

// New builds a desk over the given store. The file tree is synced from
// the store immediately.
func New(cfg config.Config, store storage.Adapter) (*Desk, error) {
	d := &Desk{
		cfg:        cfg,
		dock:       dock.NewManager(),
		files:      filetree.NewManager(),
		store:      store,
		registry:   content.NewRegistry(),
		histories:  make(map[string]history.State),
		panelPaths: make(map[string]string),
		previews:   make(map[string]*content.Preview),
		saveTimers: make(map[string]*time.Timer),
		onError:    func(err error) { log.Printf("Desk: %v", err) },
		onRefresh:  func() {},
	}
	d.registry.Register(content.Descriptor{Key: "draw", Label: "Drawing"})
	d.registry.Register(content.Descriptor{Key: content.PreviewKey, Label: "Preview", Content: &content.Preview{}})
	d.binder = content.NewBinder(d.registry, d.dock)

	// Dropped panels release their history and pending saves.
	d.dock.Events().Subscribe(dock.EventPanelRemoved, func(ev dock.Event) {
		d.forgetPanel(ev.PanelID)
	})

	if err := d.SyncFileTree(); err != nil {
		return nil, err
	}
	return d, nil
}

// Dock exposes the dock manager.
func (d *Desk) Dock() *dock.Manager { return d.dock }

// Files exposes the file-tree manager.
func (d *Desk) Files() *filetree.Manager { return d.files }

// Binder exposes the content binding surface.
func (d *Desk) Binder() *content.Binder { return d.binder }

// OnError replaces the error sink.
func (d *Desk) OnError(f func(error)) {
	if f != nil {
		d.onError = f
	}
}

// OnRefresh registers the host's re-render hook, invoked after
// completed saves and external reconciliations.
func (d *Desk) OnRefresh(f func()) {
	if f != nil {
		d.onRefresh = f
	}
}

// SyncFileTree rebuilds the file-tree manager from a fresh store
// listing, carrying expansion, selection, and focus over for paths
// that still exist.
func (d *Desk) SyncFileTree() error {
	root, err := d.store.ListRoot()
	if err != nil {
		return fmt.Errorf("sync file tree: %w", err)
	}

	old := d.files
	fresh := filetree.NewManager()
	var fill func(parentPath string, entries []storage.Entry)
	fill = func(parentPath string, entries []storage.Entry) {
		for _, e := range entries {
			if e.IsDir {
				if fresh.AddFolder(parentPath, e.Name) != nil {
					fill(e.Path, e.Children)
				}
			} else {
				fresh.AddFile(parentPath, e.Name, nil)
			}
		}
	}
	fill("", root.Children)

	for _, n := range collectFolders(old) {
		if old.IsExpanded(n) && fresh.GetFolder(n) != nil {
			fresh.Expand(n)
		}
	}
	for _, p := range old.SelectedPaths() {
		if fresh.GetNode(p) != nil {
			fresh.ToggleSelection(p)
		}
	}
	if fp := old.FocusedPath(); fp != "" && fresh.GetNode(fp) != nil {
		fresh.Focus(fp)
	}
	d.files = fresh
	return nil
}

func collectFolders(m *filetree.Manager) []string {
	var out []string
	var descend func(n *filetree.Node)
	descend = func(n *filetree.Node) {
		if !n.IsFolder() {
			return
		}
		out = append(out, n.Path)
		for _, c := range n.Children() {
			descend(c)
		}
	}
	descend(m.Root())
	return out
}

// OpenFile binds the file at path to a new panel: drawings get a
// drawing surface with history, everything else a read-only preview.
// A path already open activates its panel instead.
func (d *Desk) OpenFile(path string) (string, error) {
	node := d.files.GetFile(path)
	if node == nil {
		return "", fmt.Errorf("open %q: not in the file tree", path)
	}

	d.mu.Lock()
	for panelID, p := range d.panelPaths {
		if p == path {
			d.mu.Unlock()
			d.dock.ActivatePanel(panelID)
			return panelID, nil
		}
	}
	d.mu.Unlock()

	data, err := d.store.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("open %q: %w", path, err)
	}

	if content.IsDrawFile(path) {
		doc, err := content.DecodeDraw(data)
		if err != nil {
			return "", fmt.Errorf("open %q: %w", path, err)
		}
		panelID := d.dock.AddPanel("draw", node.Name)
		d.mu.Lock()
		d.histories[panelID] = history.New(d.cfg.HistoryMaxSize).Initialize(doc.Strokes)
		d.panelPaths[panelID] = path
		d.mu.Unlock()
		return panelID, nil
	}

	panelID := d.dock.AddPanel(content.PreviewKey, node.Name)
	d.mu.Lock()
	d.previews[panelID] = content.BuildPreview(node.Name, data)
	d.panelPaths[panelID] = path
	d.mu.Unlock()
	return panelID, nil
}

// PanelPath returns the workspace path bound to a panel.
func (d *Desk) PanelPath(panelID string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.panelPaths[panelID]
	return p, ok
}

// Preview returns the preview content bound to a panel.
func (d *Desk) Preview(panelID string) (*content.Preview, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.previews[panelID]
	return p, ok
}

// Strokes returns the current strokes of a drawing panel.
func (d *Desk) Strokes(panelID string) []history.Stroke {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.histories[panelID].Current()
}

// PushStrokes records a new stroke set on the panel's history.
func (d *Desk) PushStrokes(panelID string, strokes []history.Stroke) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, ok := d.histories[panelID]
	if !ok {
		return false
	}
	d.histories[panelID] = h.Push(strokes)
	return true
}

// Undo steps a drawing panel back one entry.
func (d *Desk) Undo(panelID string) ([]history.Stroke, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, ok := d.histories[panelID]
	if !ok {
		return nil, false
	}
	next, strokes, ok := h.Undo()
	if !ok {
		return nil, false
	}
	d.histories[panelID] = next
	return strokes, true
}

// Redo re-applies a drawing panel's undone entry.
func (d *Desk) Redo(panelID string) ([]history.Stroke, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, ok := d.histories[panelID]
	if !ok {
		return nil, false
	}
	next, strokes, ok := h.Redo()
	if !ok {
		return nil, false
	}
	d.histories[panelID] = next
	return strokes, true
}

// ClearStrokes empties a drawing panel's surface, recorded as one
// undoable step.
func (d *Desk) ClearStrokes(panelID string) bool {
	return d.PushStrokes(panelID, nil)
}

// IsDirty reports whether a drawing panel has unsaved changes.
func (d *Desk) IsDirty(panelID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, ok := d.histories[panelID]
	return ok && h.IsDirty()
}

// Save writes a drawing panel's current strokes through the adapter
// and marks its history clean. The write targets whichever file
// currently bears the panel's path.
func (d *Desk) Save(panelID string) error {
	d.mu.Lock()
	h, hasHistory := d.histories[panelID]
	path, hasPath := d.panelPaths[panelID]
	d.mu.Unlock()
	if !hasHistory || !hasPath {
		return fmt.Errorf("save: panel %s holds no drawing", panelID)
	}

	data, err := content.EncodeDraw(&content.Document{Strokes: h.Current()})
	if err != nil {
		return err
	}
	if err := d.store.WriteFile(path, data); err != nil {
		d.onError(err)
		return err
	}

	d.mu.Lock()
	// Mark saved only if the entry we wrote is still current; strokes
	// pushed while the write was in flight stay dirty.
	if cur, ok := d.histories[panelID]; ok &&
		cur.CurrentGeneration() == h.CurrentGeneration() {
		d.histories[panelID] = cur.MarkSaved()
	}
	d.mu.Unlock()

	log.Printf("Desk: Saved %s (%d bytes)", path, len(data))
	d.onRefresh()
	return nil
}

// RequestSave schedules a debounced save for the panel, coalescing
// bursts of edits into one write.
func (d *Desk) RequestSave(panelID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.histories[panelID]; !ok {
		return
	}
	debounce := time.Duration(d.cfg.AutosaveDebounceMs) * time.Millisecond
	if t, ok := d.saveTimers[panelID]; ok {
		t.Stop()
	}
	d.saveTimers[panelID] = time.AfterFunc(debounce, func() {
		if err := d.Save(panelID); err != nil {
			d.onError(err)
		}
	})
}

// HandleExternalChange reconciles one changed workspace path: a clean
// open panel reloads from the store, a dirty one is left alone so no
// unsaved strokes vanish. The file tree listing is refreshed either
// way.
func (d *Desk) HandleExternalChange(path string) {
	if err := d.SyncFileTree(); err != nil {
		d.onError(err)
	}

	d.mu.Lock()
	var panelID string
	for id, p := range d.panelPaths {
		if p == path {
			panelID = id
			break
		}
	}
	h, hasHistory := d.histories[panelID]
	d.mu.Unlock()
	if panelID == "" {
		d.onRefresh()
		return
	}
	if hasHistory && h.IsDirty() {
		log.Printf("Desk: External change to %s ignored, panel has unsaved strokes", path)
		return
	}

	data, err := d.store.ReadFile(path)
	if err != nil {
		if storage.KindOf(err) == storage.KindNotFound {
			// The file went away under us; close its panel.
			d.dock.RemovePanel(panelID)
			d.onRefresh()
			return
		}
		d.onError(err)
		return
	}
	if hasHistory {
		doc, err := content.DecodeDraw(data)
		if err != nil {
			d.onError(err)
			return
		}
		d.mu.Lock()
		d.histories[panelID] = history.New(d.cfg.HistoryMaxSize).Initialize(doc.Strokes)
		d.mu.Unlock()
	} else {
		d.mu.Lock()
		if _, ok := d.previews[panelID]; ok {
			_, name := storage.Split(path)
			d.previews[panelID] = content.BuildPreview(name, data)
		}
		d.mu.Unlock()
	}
	d.onRefresh()
}

// CreateFile makes an empty file in both the store and the tree.
func (d *Desk) CreateFile(parentPath, name string) error {
	if msg := d.files.CheckDuplicateName(parentPath, name, ""); msg != "" {
		return fmt.Errorf("create file: %s", msg)
	}
	if _, err := d.store.CreateFile(parentPath, name); err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	d.files.AddFile(parentPath, name, nil)
	return nil
}

// CreateFolder makes a folder in both the store and the tree.
func (d *Desk) CreateFolder(parentPath, name string) error {
	if msg := d.files.CheckDuplicateName(parentPath, name, ""); msg != "" {
		return fmt.Errorf("create folder: %s", msg)
	}
	if _, err := d.store.CreateFolder(parentPath, name); err != nil {
		return fmt.Errorf("create folder: %w", err)
	}
	d.files.AddFolder(parentPath, name)
	return nil
}

// DeleteNode removes a file or folder from the tree and the store, and
// closes any panel bound to a removed path.
func (d *Desk) DeleteNode(path string) error {
	node := d.files.GetNode(path)
	if node == nil {
		return fmt.Errorf("delete %q: not in the file tree", path)
	}
	isDir := node.IsFolder()
	parent, name := storage.Split(path)
	if !d.files.Remove(path) {
		return fmt.Errorf("delete %q: tree rejected the removal", path)
	}
	if err := d.store.Delete(parent, name, isDir); err != nil {
		d.onError(err)
		return err
	}

	d.mu.Lock()
	var doomed []string
	for panelID, p := range d.panelPaths {
		if p == path || (isDir && len(p) > len(path) && p[:len(path)+1] == path+"/") {
			doomed = append(doomed, panelID)
		}
	}
	d.mu.Unlock()
	for _, panelID := range doomed {
		d.dock.RemovePanel(panelID)
	}
	return nil
}

// RenameNode renames in the tree and mirrors the change to the store.
func (d *Desk) RenameNode(path, newName string) error {
	node := d.files.GetNode(path)
	if node == nil {
		return fmt.Errorf("rename %q: not in the file tree", path)
	}
	isDir := node.IsFolder()
	parent, oldName := storage.Split(path)
	if !d.files.Rename(path, newName) {
		return fmt.Errorf("rename %q: tree rejected %q", path, newName)
	}
	if err := d.store.Rename(parent, oldName, newName, isDir); err != nil {
		d.onError(err)
		return err
	}
	d.rebindPanelPaths(path, node.Path)
	return nil
}

// MoveNode applies a drag-drop move to the tree and mirrors any parent
// change to the store.
func (d *Desk) MoveNode(sourcePath, targetPath string, pos drop.TreePosition) bool {
	node := d.files.GetNode(sourcePath)
	if node == nil {
		return false
	}
	isDir := node.IsFolder()
	oldParent, _ := storage.Split(sourcePath)
	if !d.files.Move(sourcePath, targetPath, pos) {
		return false
	}
	newParent, _ := storage.Split(node.Path)
	if newParent != oldParent {
		if err := d.store.Move(sourcePath, newParent, isDir); err != nil {
			d.onError(err)
			// The store and tree disagree now; a resync restores truth.
			if err := d.SyncFileTree(); err != nil {
				d.onError(err)
			}
			return false
		}
		d.rebindPanelPaths(sourcePath, node.Path)
	}
	return true
}

// rebindPanelPaths re-keys open panels after a path changed, matching
// by old path exactly or by subtree prefix.
func (d *Desk) rebindPanelPaths(oldPath, newPath string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for panelID, p := range d.panelPaths {
		switch {
		case p == oldPath:
			d.panelPaths[panelID] = newPath
		case len(p) > len(oldPath) && p[:len(oldPath)+1] == oldPath+"/":
			d.panelPaths[panelID] = newPath + p[len(oldPath):]
		}
	}
}

// SaveLayout persists the dock layout into the workspace store.
func (d *Desk) SaveLayout() error {
	snap := d.dock.Snapshot()
	data, err := snap.MarshalJSON()
	if err != nil {
		return fmt.Errorf("save layout: %w", err)
	}
	if _, err := d.store.CreateFolder("", layoutFolder); err != nil &&
		storage.KindOf(err) != storage.KindAlreadyExists {
		return fmt.Errorf("save layout: %w", err)
	}
	if _, err := d.store.CreateFile(layoutFolder, "layout.json"); err != nil &&
		storage.KindOf(err) != storage.KindAlreadyExists {
		return fmt.Errorf("save layout: %w", err)
	}
	if err := d.store.WriteFile(layoutFile, data); err != nil {
		return fmt.Errorf("save layout: %w", err)
	}
	return nil
}

// RestoreLayout loads a previously saved dock layout, if any. Only the
// dock tree comes back: panels keep their ids, titles, and content keys,
// but they are not re-bound to files and carry no history or preview.
func (d *Desk) RestoreLayout() error {
	data, err := d.store.ReadFile(layoutFile)
	if err != nil {
		if storage.KindOf(err) == storage.KindNotFound {
			return nil
		}
		return fmt.Errorf("restore layout: %w", err)
	}
	var snap dock.State
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("restore layout: %w", err)
	}
	if snap.Root == nil {
		return nil
	}
	return d.dock.RestoreLayout(snap.Root)
}

func (d *Desk) forgetPanel(panelID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.saveTimers[panelID]; ok {
		t.Stop()
		delete(d.saveTimers, panelID)
	}
	delete(d.histories, panelID)
	delete(d.panelPaths, panelID)
	delete(d.previews, panelID)
}
