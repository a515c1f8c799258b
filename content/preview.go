// Copyright © 2026 Sketchdock contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: content/preview.go
// Summary: Read-only text preview content: language detection plus
// token styling for non-drawing files.
// Usage: Registered as the "preview" descriptor; the host renders the
// spans with its own colour mapping.

package content

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/go-enry/go-enry/v2"
)

// PreviewKey is the registry key of the built-in text preview.
const PreviewKey = "preview"

// Span is one styled run of text on a preview line.
type Span struct {
	Text string
	Type chroma.TokenType
}

// PreviewLine is one rendered line of a preview.
type PreviewLine struct {
	Spans []Span
}

// Preview is a tokenised snapshot of a text file.
type Preview struct {
	Language string
	Lines    []PreviewLine
}

// PanelComponent marks previews as per-panel instances, so switching a
// panel's content key to or from the preview rebuilds its instance.
func (*Preview) PanelComponent() {}

// BuildPreview detects the file's language and tokenises its text into
// per-line spans. It never fails: unknown languages fall back to plain
// text spans.
func BuildPreview(filename string, data []byte) *Preview {
	text := string(data)
	lang := enry.GetLanguage(filename, data)
	lexer := pickLexer(lang, text)
	lexer = chroma.Coalesce(lexer)

	p := &Preview{Language: lang}
	tokens, err := chroma.Tokenise(lexer, nil, text)
	if err != nil {
		return plainPreview(lang, text)
	}

	line := PreviewLine{}
	for _, tok := range tokens {
		if tok.Type == chroma.EOFType {
			break
		}
		parts := strings.Split(tok.Value, "\n")
		for i, part := range parts {
			if i > 0 {
				p.Lines = append(p.Lines, line)
				line = PreviewLine{}
			}
			if part != "" {
				line.Spans = append(line.Spans, Span{Text: part, Type: tok.Type})
			}
		}
	}
	if len(line.Spans) > 0 {
		p.Lines = append(p.Lines, line)
	}
	return p
}

// pickLexer resolves a lexer by detected language name, then by content
// analysis, then the fallback.
func pickLexer(lang, text string) chroma.Lexer {
	if lang != "" {
		if l := lexers.Get(lang); l != nil {
			return l
		}
	}
	if l := lexers.Analyse(text); l != nil {
		return l
	}
	return lexers.Fallback
}

func plainPreview(lang, text string) *Preview {
	p := &Preview{Language: lang}
	for _, raw := range strings.Split(text, "\n") {
		line := PreviewLine{}
		if raw != "" {
			line.Spans = []Span{{Text: raw, Type: chroma.Text}}
		}
		p.Lines = append(p.Lines, line)
	}
	return p
}
