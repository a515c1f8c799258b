// Copyright © 2026 Sketchdock contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: hotkeys/binding.go
// Summary: Hotkey binding model, the default set, and display formatting.
// Usage: Consumed by the dispatcher and by hosts rendering shortcut hints.

package hotkeys

import (
	"fmt"
	"strings"
)

// Modifiers is the exact modifier chord a binding requires.
type Modifiers struct {
	Ctrl  bool
	Shift bool
	Alt   bool
	Meta  bool
}

// Binding ties a key chord to a named command.
type Binding struct {
	Command     string
	Key         string
	Mods        Modifiers
	Description string
}

// Command names for the default set.
const (
	CmdToolPencil = "tool.pencil"
	CmdToolEraser = "tool.eraser"
	CmdUndo       = "edit.undo"
	CmdRedo       = "edit.redo"
	CmdSave       = "file.save"
	CmdClear      = "edit.clear"
)

// BrushSizeCommand returns the command selecting brush size n (1-5).
func BrushSizeCommand(n int) string { return fmt.Sprintf("brush.size.%d", n) }

// ColorSlotCommand returns the command selecting colour slot n (1-8).
func ColorSlotCommand(n int) string { return fmt.Sprintf("color.slot.%d", n) }

// Defaults returns the built-in binding set.
func Defaults() []Binding {
	b := []Binding{
		{Command: CmdToolPencil, Key: "b", Description: "Pencil tool"},
		{Command: CmdToolEraser, Key: "e", Description: "Eraser tool"},
		{Command: CmdUndo, Key: "z", Mods: Modifiers{Ctrl: true}, Description: "Undo"},
		{Command: CmdRedo, Key: "z", Mods: Modifiers{Ctrl: true, Shift: true}, Description: "Redo"},
		{Command: CmdRedo, Key: "y", Mods: Modifiers{Ctrl: true}, Description: "Redo"},
		{Command: CmdSave, Key: "s", Mods: Modifiers{Ctrl: true}, Description: "Save"},
		{Command: CmdClear, Key: "Delete", Mods: Modifiers{Ctrl: true}, Description: "Clear drawing"},
	}
	for n := 1; n <= 5; n++ {
		b = append(b, Binding{
			Command:     BrushSizeCommand(n),
			Key:         fmt.Sprintf("%d", n),
			Description: fmt.Sprintf("Brush size %d", n),
		})
	}
	for n := 1; n <= 8; n++ {
		b = append(b, Binding{
			Command:     ColorSlotCommand(n),
			Key:         fmt.Sprintf("%d", n),
			Mods:        Modifiers{Shift: true},
			Description: fmt.Sprintf("Colour slot %d", n),
		})
	}
	return b
}

// Format renders a binding as a platform-sensitive display string. On
// macOS the modifier glyphs join with no separator; elsewhere the names
// join with "+".
func Format(b Binding, platform string) string {
	key := displayKey(b.Key)
	if platform == "darwin" {
		var sb strings.Builder
		if b.Mods.Meta || b.Mods.Ctrl {
			sb.WriteString("⌘")
		}
		if b.Mods.Alt {
			sb.WriteString("⌥")
		}
		if b.Mods.Shift {
			sb.WriteString("⇧")
		}
		sb.WriteString(key)
		return sb.String()
	}

	parts := make([]string, 0, 4)
	if b.Mods.Ctrl || b.Mods.Meta {
		parts = append(parts, "Ctrl")
	}
	if b.Mods.Alt {
		parts = append(parts, "Alt")
	}
	if b.Mods.Shift {
		parts = append(parts, "Shift")
	}
	parts = append(parts, key)
	return strings.Join(parts, "+")
}

func displayKey(key string) string {
	switch strings.ToLower(key) {
	case "delete":
		return "Del"
	case "backspace":
		return "⌫"
	}
	return strings.ToUpper(key)
}
