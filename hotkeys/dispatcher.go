// Copyright © 2026 Sketchdock contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: hotkeys/dispatcher.go
// Summary: Routes key events to commands with exact-modifier matching.
// Usage: Hosts feed tcell key events in; matching events are consumed.

package hotkeys

import (
	"log"
	"runtime"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
)

// Handler runs when a binding's command fires.
type Handler func(cmd string)

// Dispatcher matches incoming key events against an installed binding
// set. A disabled dispatcher matches nothing, which is how hosts scope
// hotkeys to a focused element.
type Dispatcher struct {
	mu       sync.RWMutex
	bindings []Binding
	handlers map[string]Handler
	enabled  bool
	platform string
}

// NewDispatcher returns a dispatcher loaded with the given bindings.
// Pass Defaults() for the stock set.
func NewDispatcher(bindings []Binding) *Dispatcher {
	return &Dispatcher{
		bindings: bindings,
		handlers: make(map[string]Handler),
		enabled:  true,
		platform: runtime.GOOS,
	}
}

// SetPlatform overrides platform detection. Tests use this to pin the
// macOS ctrl/meta equivalence.
func (d *Dispatcher) SetPlatform(platform string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.platform = platform
}

// Enable turns dispatch on.
func (d *Dispatcher) Enable() { d.setEnabled(true) }

// Disable turns dispatch off; events pass through unmatched.
func (d *Dispatcher) Disable() { d.setEnabled(false) }

func (d *Dispatcher) setEnabled(v bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enabled = v
}

// Bind registers a handler for a command. Rebinding replaces the
// previous handler.
func (d *Dispatcher) Bind(cmd string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[cmd] = h
}

// Chord is a normalised key event: the logical key name plus the exact
// modifier chord.
type Chord struct {
	Key  string
	Mods Modifiers
}

// ChordFromEvent normalises a tcell key event. Control-letter key codes
// fold back into the plain letter with the ctrl flag set.
func ChordFromEvent(ev *tcell.EventKey) Chord {
	var c Chord
	mods := ev.Modifiers()
	c.Mods.Ctrl = mods&tcell.ModCtrl != 0
	c.Mods.Shift = mods&tcell.ModShift != 0
	c.Mods.Alt = mods&tcell.ModAlt != 0
	c.Mods.Meta = mods&tcell.ModMeta != 0

	switch key := ev.Key(); {
	case key == tcell.KeyRune:
		r := ev.Rune()
		c.Key = string(r)
		if r >= 'A' && r <= 'Z' {
			// Shifted letters arrive upper-cased; the chord carries the
			// shift flag, the key name stays canonical.
			c.Key = strings.ToLower(c.Key)
			c.Mods.Shift = true
		}
	case key == tcell.KeyDelete:
		c.Key = "Delete"
	case key == tcell.KeyBackspace, key == tcell.KeyBackspace2:
		c.Key = "Backspace"
	case key == tcell.KeyEscape:
		c.Key = "Escape"
	case key == tcell.KeyEnter:
		c.Key = "Enter"
	case key == tcell.KeyTab:
		c.Key = "Tab"
	case key >= tcell.KeyCtrlA && key <= tcell.KeyCtrlZ:
		c.Key = string(rune('a' + key - tcell.KeyCtrlA))
		c.Mods.Ctrl = true
	default:
		c.Key = strings.ToLower(tcell.KeyNames[key])
	}
	return c
}

// matches applies the exact-modifier rule with the macOS ctrl/meta
// substitution: either side satisfies a ctrl requirement there.
func matches(b Binding, c Chord, platform string) bool {
	if !strings.EqualFold(b.Key, c.Key) {
		return false
	}
	if b.Mods.Shift != c.Mods.Shift || b.Mods.Alt != c.Mods.Alt {
		return false
	}
	if platform == "darwin" {
		wantPrimary := b.Mods.Ctrl || b.Mods.Meta
		gotPrimary := c.Mods.Ctrl || c.Mods.Meta
		return wantPrimary == gotPrimary
	}
	return b.Mods.Ctrl == c.Mods.Ctrl && b.Mods.Meta == c.Mods.Meta
}

// Match returns the binding the chord resolves to. inTextEntry marks the
// event target as a text-entry control, which suppresses every key but
// Escape.
func (d *Dispatcher) Match(c Chord, inTextEntry bool) (Binding, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.enabled {
		return Binding{}, false
	}
	if inTextEntry && !strings.EqualFold(c.Key, "Escape") {
		return Binding{}, false
	}
	for _, b := range d.bindings {
		if matches(b, c, d.platform) {
			return b, true
		}
	}
	return Binding{}, false
}

// Dispatch matches the event and, on a hit, invokes the command's
// handler. It reports whether the event was consumed; callers must stop
// propagating consumed events.
func (d *Dispatcher) Dispatch(ev *tcell.EventKey, inTextEntry bool) bool {
	b, ok := d.Match(ChordFromEvent(ev), inTextEntry)
	if !ok {
		return false
	}
	d.mu.RLock()
	h := d.handlers[b.Command]
	d.mu.RUnlock()
	if h == nil {
		log.Printf("Hotkeys: No handler bound for command %q", b.Command)
		return true
	}
	h(b.Command)
	return true
}
