// Copyright © 2026 Sketchdock contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: history/history.go
// Summary: Bounded undo/redo stacks with dirty tracking for drawing panels.
// Usage: Each drawing panel owns one State; operations return new States
// and leave the old one untouched (Push and Redo copy the stack they grow).

package history

import "time"

// Stroke is one drawn stroke as stored in a .draw payload.
type Stroke struct {
	ID     string  `json:"id"`
	Points []Point `json:"points"`
	Color  string  `json:"color"`
	Width  float64 `json:"width"`
}

// Point is a single coordinate on a stroke.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Entry captures the full stroke set at one moment.
type Entry struct {
	Strokes []Stroke
	At      time.Time
	gen     uint64 // identity for saved-entry comparison
}

// DefaultMaxSize bounds the undo stack when the caller passes no limit.
const DefaultMaxSize = 50

// State holds the undo and redo stacks. The zero value is not usable;
// construct with New. States are values: operations never mutate their
// receiver.
type State struct {
	undo    []Entry
	redo    []Entry
	maxSize int
	saved   uint64 // gen of the saved entry, 0 when none
	nextGen uint64
}

// New returns an empty history bounded at maxSize entries. maxSize <= 0
// selects DefaultMaxSize.
func New(maxSize int) State {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return State{maxSize: maxSize, nextGen: 1}
}

// Push appends the given strokes as the new current entry, dropping the
// oldest entry once the stack exceeds its bound, and clears the redo
// stack.
func (s State) Push(strokes []Stroke) State {
	entry := Entry{Strokes: strokes, At: time.Now(), gen: s.nextGen}
	s.nextGen++

	undo := make([]Entry, len(s.undo), len(s.undo)+1)
	copy(undo, s.undo)
	undo = append(undo, entry)
	if len(undo) > s.maxSize {
		undo = undo[len(undo)-s.maxSize:]
	}
	s.undo = undo
	s.redo = nil
	return s
}

// Initialize replaces the whole history with a single entry and marks it
// saved, so the state starts clean.
func (s State) Initialize(strokes []Stroke) State {
	entry := Entry{Strokes: strokes, At: time.Now(), gen: s.nextGen}
	s.nextGen++
	s.undo = []Entry{entry}
	s.redo = nil
	s.saved = entry.gen
	return s
}

// Undo steps back one entry. ok is false when there is nothing to undo;
// the returned strokes are the new current set.
func (s State) Undo() (State, []Stroke, bool) {
	if len(s.undo) <= 1 {
		return s, nil, false
	}
	top := s.undo[len(s.undo)-1]

	redo := make([]Entry, len(s.redo), len(s.redo)+1)
	copy(redo, s.redo)
	s.redo = append(redo, top)
	s.undo = s.undo[:len(s.undo)-1]
	return s, s.undo[len(s.undo)-1].Strokes, true
}

// Redo re-applies the most recently undone entry.
func (s State) Redo() (State, []Stroke, bool) {
	if len(s.redo) == 0 {
		return s, nil, false
	}
	top := s.redo[len(s.redo)-1]

	undo := make([]Entry, len(s.undo), len(s.undo)+1)
	copy(undo, s.undo)
	s.undo = append(undo, top)
	s.redo = s.redo[:len(s.redo)-1]
	return s, top.Strokes, true
}

// MarkSaved records the current entry as the on-disk snapshot.
func (s State) MarkSaved() State {
	if len(s.undo) == 0 {
		s.saved = 0
		return s
	}
	s.saved = s.undo[len(s.undo)-1].gen
	return s
}

// Clear empties both stacks and forgets the saved snapshot.
func (s State) Clear() State {
	s.undo = nil
	s.redo = nil
	s.saved = 0
	return s
}

// Current returns the strokes of the current entry, nil when empty.
func (s State) Current() []Stroke {
	if len(s.undo) == 0 {
		return nil
	}
	return s.undo[len(s.undo)-1].Strokes
}

// CurrentGeneration identifies the current entry; two states report the
// same generation exactly when their tops are the same entry. Zero
// means empty.
func (s State) CurrentGeneration() uint64 {
	if len(s.undo) == 0 {
		return 0
	}
	return s.undo[len(s.undo)-1].gen
}

// CanUndo reports whether Undo would succeed.
func (s State) CanUndo() bool { return len(s.undo) > 1 }

// CanRedo reports whether Redo would succeed.
func (s State) CanRedo() bool { return len(s.redo) > 0 }

// Len returns the undo stack depth.
func (s State) Len() int { return len(s.undo) }

// IsDirty reports whether the current entry differs from the saved one.
// With no saved snapshot, any entry at all counts as dirty.
func (s State) IsDirty() bool {
	if s.saved == 0 {
		return len(s.undo) > 0
	}
	if len(s.undo) == 0 {
		return true
	}
	return s.undo[len(s.undo)-1].gen != s.saved
}
