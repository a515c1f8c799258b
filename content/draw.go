// Copyright © 2026 Sketchdock contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: content/draw.go
// Summary: Codec for the .draw drawing-file payload.
// Usage: The desk reads and writes drawings through this codec; the
// stroke model itself lives with the history engine that tracks it.

package content

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/framegrace/sketchdock/history"
)

// DrawSuffix is the file suffix for drawing documents.
const DrawSuffix = ".draw"

// Document is the parsed payload of a .draw file.
type Document struct {
	Strokes []history.Stroke `json:"strokes"`
}

// IsDrawFile reports whether a path names a drawing document.
func IsDrawFile(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), DrawSuffix)
}

// DecodeDraw parses a UTF-8 JSON drawing payload. A missing strokes key
// decodes to an empty document; malformed strokes are rejected.
func DecodeDraw(data []byte) (*Document, error) {
	var doc Document
	if len(data) > 0 {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode draw payload: %w", err)
		}
	}
	for i, s := range doc.Strokes {
		if s.Width <= 0 {
			return nil, fmt.Errorf("stroke %d (%s): width %v is not positive", i, s.ID, s.Width)
		}
	}
	return &doc, nil
}

// EncodeDraw serialises a document back to its on-disk form.
func EncodeDraw(doc *Document) ([]byte, error) {
	if doc == nil {
		doc = &Document{}
	}
	out := *doc
	if out.Strokes == nil {
		out.Strokes = []history.Stroke{}
	}
	data, err := json.Marshal(&out)
	if err != nil {
		return nil, fmt.Errorf("encode draw payload: %w", err)
	}
	return data, nil
}
