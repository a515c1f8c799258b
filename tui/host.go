// Copyright © 2026 Sketchdock contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: tui/host.go
// Summary: Interactive tcell host: renders the workspace wireframe and
// routes keys and mouse drags into the engine.
// Usage: Started by cmd/sketchdock; this is a driver for the core, not
// a paint surface.

package tui

import (
	"fmt"
	"log"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/framegrace/sketchdock/config"
	"github.com/framegrace/sketchdock/desk"
	"github.com/framegrace/sketchdock/dock"
	"github.com/framegrace/sketchdock/drop"
	"github.com/framegrace/sketchdock/hotkeys"
)

const sidebarWidth = 28

// dragPhase models the pointer gesture as a small state machine; a
// pointer-up anywhere returns to dragIdle.
type dragPhase int

const (
	dragIdle dragPhase = iota
	dragArmed
	dragActive
)

// Host drives one desk through a tcell screen.
type Host struct {
	desk    *desk.Desk
	screen  tcell.Screen
	keys    *hotkeys.Dispatcher
	layout  *Layout
	dirty   bool
	quit    bool
	focused string // active panel id, "" when the tree has focus

	treeIndex int // focused row in the visible file tree

	drag       dragPhase
	dragSource string
	dragPos    drop.Position
	dragTarget string
}

// NewHost wires a desk to a screen, with the configured keybinding
// overrides applied over the default hotkeys.
func NewHost(d *desk.Desk, screen tcell.Screen, cfg config.Config) *Host {
	h := &Host{desk: d, screen: screen, keys: hotkeys.NewDispatcher(bindingsFor(cfg)), dirty: true}
	h.bindKeys()
	d.OnRefresh(func() { h.dirty = true })
	d.Dock().Events().Subscribe(dock.EventLayoutChanged, func(dock.Event) { h.dirty = true })
	d.Dock().Events().Subscribe(dock.EventActivePanelChanged, func(ev dock.Event) {
		h.focused = ev.PanelID
		h.dirty = true
	})
	return h
}

// bindingsFor merges the configured chord overrides over the default
// binding set. An override replaces every default chord for its
// command; unknown commands bind as new entries. Unparseable chords
// are logged and skipped.
func bindingsFor(cfg config.Config) []hotkeys.Binding {
	bindings := hotkeys.Defaults()
	for cmd, chord := range cfg.Keybindings {
		key, ctrl, shift, alt, meta, err := config.ParseChord(chord)
		if err != nil {
			log.Printf("Host: Ignoring keybinding for %q: %v", cmd, err)
			continue
		}
		override := hotkeys.Binding{
			Command: cmd,
			Key:     key,
			Mods:    hotkeys.Modifiers{Ctrl: ctrl, Shift: shift, Alt: alt, Meta: meta},
		}
		kept := bindings[:0]
		for _, b := range bindings {
			if b.Command == cmd {
				if override.Description == "" {
					override.Description = b.Description
				}
				continue
			}
			kept = append(kept, b)
		}
		bindings = append(kept, override)
	}
	return bindings
}

func (h *Host) bindKeys() {
	h.keys.Bind(hotkeys.CmdUndo, func(string) {
		if _, ok := h.desk.Undo(h.focused); ok {
			h.dirty = true
		}
	})
	h.keys.Bind(hotkeys.CmdRedo, func(string) {
		if _, ok := h.desk.Redo(h.focused); ok {
			h.dirty = true
		}
	})
	h.keys.Bind(hotkeys.CmdSave, func(string) {
		if h.focused != "" {
			if err := h.desk.Save(h.focused); err != nil {
				log.Printf("Host: Save failed: %v", err)
			}
		}
	})
	h.keys.Bind(hotkeys.CmdClear, func(string) {
		if h.desk.ClearStrokes(h.focused) {
			h.desk.RequestSave(h.focused)
			h.dirty = true
		}
	})
}

// Run loops until quit. The screen must already be initialised.
func (h *Host) Run() error {
	for !h.quit {
		if h.dirty {
			h.render()
			h.dirty = false
		}
		ev := h.screen.PollEvent()
		if ev == nil {
			return nil
		}
		switch ev := ev.(type) {
		case *tcell.EventResize:
			h.screen.Sync()
			h.dirty = true
		case *tcell.EventKey:
			h.handleKey(ev)
		case *tcell.EventMouse:
			h.handleMouse(ev)
		}
	}
	return nil
}

func (h *Host) handleKey(ev *tcell.EventKey) {
	if h.keys.Dispatch(ev, false) {
		return
	}
	switch {
	case ev.Key() == tcell.KeyCtrlC || (ev.Key() == tcell.KeyRune && ev.Rune() == 'q'):
		h.quit = true
	case ev.Key() == tcell.KeyUp:
		h.moveTreeFocus(-1)
	case ev.Key() == tcell.KeyDown:
		h.moveTreeFocus(1)
	case ev.Key() == tcell.KeyEnter:
		h.openTreeSelection()
	case ev.Key() == tcell.KeyRune && ev.Rune() == 'm':
		h.toggleMaximize()
	case ev.Key() == tcell.KeyRune && ev.Rune() == 'n':
		h.desk.Dock().AddPanel("draw", "")
	}
}

func (h *Host) moveTreeFocus(delta int) {
	visible := h.desk.Files().VisibleNodes()
	if len(visible) == 0 {
		return
	}
	h.treeIndex += delta
	if h.treeIndex < 0 {
		h.treeIndex = 0
	}
	if h.treeIndex >= len(visible) {
		h.treeIndex = len(visible) - 1
	}
	h.desk.Files().Focus(visible[h.treeIndex].Path)
	h.dirty = true
}

func (h *Host) openTreeSelection() {
	visible := h.desk.Files().VisibleNodes()
	if h.treeIndex < 0 || h.treeIndex >= len(visible) {
		return
	}
	node := visible[h.treeIndex]
	if node.IsFolder() {
		h.desk.Files().ToggleExpanded(node.Path)
		h.dirty = true
		return
	}
	panelID, err := h.desk.OpenFile(node.Path)
	if err != nil {
		log.Printf("Host: Open failed: %v", err)
		return
	}
	h.focused = panelID
	h.desk.Files().Select(node.Path)
	h.dirty = true
}

func (h *Host) toggleMaximize() {
	snap := h.desk.Dock().Snapshot()
	if snap.MaximizedPanelID != "" {
		h.desk.Binder().OnRestore()
	} else if h.focused != "" {
		h.desk.Binder().OnMaximize(h.focused)
	}
	h.dirty = true
}

func (h *Host) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	pt := drop.Point{X: float64(x), Y: float64(y)}
	pressed := ev.Buttons()&tcell.Button1 != 0

	if x < sidebarWidth {
		if pressed && h.drag == dragIdle {
			h.clickTree(y)
		} else if !pressed {
			h.resetDrag()
		}
		return
	}
	if h.layout == nil {
		return
	}
	pt.X -= sidebarWidth

	switch {
	case pressed && h.drag == dragIdle:
		if pr, ok := h.layout.HitTest(pt); ok {
			h.drag = dragArmed
			h.dragSource = pr.Panel.ID
			h.focused = pr.Panel.ID
			h.desk.Binder().OnActivate(pr.Panel.ID)
			h.clickTabStrip(pr, pt)
			h.dirty = true
		}
	case pressed && h.drag != dragIdle:
		h.drag = dragActive
		h.trackDrag(pt)
	case !pressed && h.drag == dragActive:
		// Drop. A gesture ending outside every zone is a no-op.
		if h.dragTarget != "" && h.dragTarget != h.dragSource {
			h.desk.Binder().OnMove(h.dragSource, h.dragTarget, h.dragPos)
		}
		h.resetDrag()
	case !pressed:
		h.resetDrag()
	}
}

// clickTabStrip activates the tab under a header click.
func (h *Host) clickTabStrip(pr PanelRect, pt drop.Point) {
	if pr.Tabs == nil || !pr.Header.Contains(pt) {
		return
	}
	for _, tr := range pr.TabRects {
		if tr.Rect.Contains(pt) {
			h.desk.Binder().OnActivate(tr.PanelID)
			h.focused = tr.PanelID
			return
		}
	}
}

// trackDrag classifies the pointer against the panel under it.
func (h *Host) trackDrag(pt drop.Point) {
	pr, ok := h.layout.HitTest(pt)
	if !ok {
		h.dragTarget = ""
		return
	}
	h.dragTarget = pr.Panel.ID
	header := pr.Header
	h.dragPos = drop.ForPanel(pt, pr.Rect, &header)
	if h.dragPos == drop.TabInto && pr.Tabs != nil {
		// Inside a tab strip the per-tab thirds decide the exact slot.
		rects := make([]drop.Rect, len(pr.TabRects))
		for i, tr := range pr.TabRects {
			rects[i] = tr.Rect
		}
		target := drop.ForTabHeader(pt.X, rects)
		h.dragTarget = pr.TabRects[target.Index].PanelID
		h.dragPos = target.Position
	}
}

func (h *Host) resetDrag() {
	h.drag = dragIdle
	h.dragSource = ""
	h.dragTarget = ""
	h.dirty = true
}

func (h *Host) clickTree(y int) {
	visible := h.desk.Files().VisibleNodes()
	if y < 0 || y >= len(visible) {
		return
	}
	h.treeIndex = y
	h.openTreeSelection()
}

// render paints the sidebar and the dock wireframe.
func (h *Host) render() {
	h.screen.Clear()
	w, hgt := h.screen.Size()

	h.renderTree(hgt)
	bounds := drop.Rect{X: 0, Y: 0, W: float64(w - sidebarWidth), H: float64(hgt)}
	snap := h.desk.Dock().Snapshot()
	h.layout = Compute(snap, bounds)
	for _, pr := range h.layout.Panels {
		h.renderPanel(pr)
	}
	h.screen.Show()
}

func (h *Host) renderTree(height int) {
	style := tcell.StyleDefault
	focusStyle := style.Reverse(true)
	visible := h.desk.Files().VisibleNodes()
	for row, node := range visible {
		if row >= height {
			break
		}
		label := node.Name
		if node.Path == "" {
			label = "workspace"
		}
		prefix := ""
		for i := 0; i < node.Depth; i++ {
			prefix += " "
		}
		if node.IsFolder() {
			if h.desk.Files().IsExpanded(node.Path) {
				prefix += "- "
			} else {
				prefix += "+ "
			}
		} else {
			prefix += "  "
		}
		line := runewidth.Truncate(prefix+label, sidebarWidth-1, "…")
		st := style
		if row == h.treeIndex {
			st = focusStyle
		}
		if h.desk.Files().IsSelected(node.Path) {
			st = st.Bold(true)
		}
		h.print(0, row, line, st)
	}
	for yy := 0; yy < height; yy++ {
		h.screen.SetContent(sidebarWidth-1, yy, '│', nil, style)
	}
}

func (h *Host) renderPanel(pr PanelRect) {
	x0 := int(pr.Rect.X) + sidebarWidth
	y0 := int(pr.Rect.Y)
	x1 := int(pr.Rect.X+pr.Rect.W) + sidebarWidth - 1
	y1 := int(pr.Rect.Y+pr.Rect.H) - 1
	if x1 <= x0 || y1 <= y0 {
		return
	}

	style := tcell.StyleDefault
	headerStyle := style.Reverse(pr.Panel.ID == h.focused)

	for x := x0; x <= x1; x++ {
		h.screen.SetContent(x, y1, '─', nil, style)
	}
	for y := y0; y <= y1; y++ {
		h.screen.SetContent(x1, y, '│', nil, style)
	}

	title := pr.Panel.Title
	if h.desk.IsDirty(pr.Panel.ID) {
		title = "● " + title
	}
	if pr.Tabs != nil {
		var strip string
		for _, p := range pr.Tabs.Panels {
			name := p.Title
			if p.ID == pr.Tabs.ActiveID {
				name = "[" + name + "]"
			}
			strip += " " + name
		}
		title = strip
	}
	header := runewidth.Truncate(fmt.Sprintf(" %s", title), x1-x0, " ")
	h.print(x0, y0, runewidth.FillRight(header, x1-x0), headerStyle)

	if strokes := h.desk.Strokes(pr.Panel.ID); strokes != nil {
		h.print(x0+1, y0+1, fmt.Sprintf("%d strokes", len(strokes)), style.Dim(true))
	}
}

func (h *Host) print(x, y int, s string, style tcell.Style) {
	col := x
	for _, r := range s {
		h.screen.SetContent(col, y, r, nil, style)
		col += runewidth.RuneWidth(r)
	}
}
