// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package formatting

import (
	"strings"
)

type Style int

const (
	// StylePlain records a scalar that was written unquoted.
	StylePlain Style = iota
	StyleSingle
	StyleDouble
	// StyleExempt marks strings built by partial interpolation; they are
	// always printed plain.
	StyleExempt
)

func (s Style) String() string {
	switch s {
	case StyleSingle:
		return "single"
	case StyleDouble:
		return "double"
	case StyleExempt:
		return "exempt"
	default:
		return "plain"
	}
}

// Table maps structural keys to the quote style a scalar had in source.
// Lookups try the exact normalized path first, then the path without
// sequence indexes and its shorter suffixes. Suffix entries that were
// registered with different styles are ambiguous and never match.
type Table struct {
	exact     map[string]Style
	suffixes  map[string]Style
	conflicts map[string]bool

	scriptsWithExpressions         map[string]bool
	scriptsWithLastLineExpressions map[string]bool
}

func NewTable() *Table {
	return &Table{
		exact:                          map[string]Style{},
		suffixes:                       map[string]Style{},
		conflicts:                      map[string]bool{},
		scriptsWithExpressions:         map[string]bool{},
		scriptsWithLastLineExpressions: map[string]bool{},
	}
}

func (t *Table) Len() int { return len(t.exact) }

func (t *Table) Register(path Path, content string, style Style) {
	t.exact[path.Key(content)] = style

	names := path.Names()
	for i := range names {
		key := strings.Join(names[i:], ".") + ":" + content
		if existing, found := t.suffixes[key]; found && existing != style {
			t.conflicts[key] = true
			continue
		}
		t.suffixes[key] = style
	}
}

func (t *Table) Lookup(path Path, content string) (Style, bool) {
	if style, found := t.exact[path.Key(content)]; found {
		return style, true
	}

	names := path.Names()
	for i := range names {
		key := strings.Join(names[i:], ".") + ":" + content
		if t.conflicts[key] {
			return StylePlain, false
		}
		if style, found := t.suffixes[key]; found {
			return style, true
		}
	}
	return StylePlain, false
}

// Relocate copies the style known for content at one path to another.
func (t *Table) Relocate(from, to Path, content string) bool {
	style, found := t.Lookup(from, content)
	if !found {
		return false
	}
	t.Register(to, content, style)
	return true
}

// MarkScript records multiline content that contained a directive before
// expansion. lastLine is set when its last non-blank line was a directive.
func (t *Table) MarkScript(content string, lastLine bool) {
	key := strings.TrimSpace(content)
	t.scriptsWithExpressions[key] = true
	if lastLine {
		t.scriptsWithLastLineExpressions[key] = true
	}
}

func (t *Table) scriptStyle(content string) (hadExpressions, lastLine bool) {
	key := strings.TrimSpace(content)
	return t.scriptsWithExpressions[key], t.scriptsWithLastLineExpressions[key]
}

// Merge adds every entry of other into t.
func (t *Table) Merge(other *Table) {
	if other == nil {
		return
	}
	for key, style := range other.exact {
		t.exact[key] = style
	}
	for key, style := range other.suffixes {
		if existing, found := t.suffixes[key]; found && existing != style {
			t.conflicts[key] = true
			continue
		}
		t.suffixes[key] = style
	}
	for key := range other.conflicts {
		t.conflicts[key] = true
	}
	for key := range other.scriptsWithExpressions {
		t.scriptsWithExpressions[key] = true
	}
	for key := range other.scriptsWithLastLineExpressions {
		t.scriptsWithLastLineExpressions[key] = true
	}
}
