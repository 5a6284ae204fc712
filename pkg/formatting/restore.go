// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package formatting

import (
	"strings"

	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/expr"
	"gopkg.in/yaml.v3"
)

type RestoreOpts struct {
	// Compat follows the vendor serializer: double quotes for multiline
	// strings with trailing whitespace and keep-chomping after a trailing
	// directive line.
	Compat bool
}

// Restore applies recorded presentation to string scalar values of the
// final document. It only changes node styles, never values, except for
// the extra trailing line folded scripts get in compat mode.
func Restore(t *Table, node *yaml.Node, opts RestoreOpts) {
	if t == nil || node == nil {
		return
	}
	t.restore(node, nil, opts)
}

func (t *Table) restore(node *yaml.Node, path Path, opts RestoreOpts) {
	switch node.Kind {
	case yaml.DocumentNode:
		for _, child := range node.Content {
			t.restore(child, path, opts)
		}

	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			t.restore(node.Content[i+1], path.Append(node.Content[i].Value), opts)
		}

	case yaml.SequenceNode:
		for i, child := range node.Content {
			t.restore(child, path.Append(i), opts)
		}

	case yaml.ScalarNode:
		if node.Tag != "!!str" {
			return
		}
		if strings.Contains(node.Value, "\n") {
			t.restoreMultiline(node, path, opts)
			return
		}
		t.restoreSingleLine(node, path)
	}
}

func (t *Table) restoreSingleLine(node *yaml.Node, path Path) {
	style, found := t.Lookup(path, node.Value)

	if found && (style == StyleSingle || style == StyleDouble) {
		switch {
		case strings.Contains(node.Value, ":"):
			node.Style = yaml.SingleQuotedStyle
		case style == StyleSingle:
			node.Style = yaml.SingleQuotedStyle
		default:
			node.Style = yaml.DoubleQuotedStyle
		}
		return
	}

	node.Style = 0
	if expr.LooksNumeric(node.Value) {
		// bare numbers print unquoted
		node.Tag = ""
	}
}

func (t *Table) restoreMultiline(node *yaml.Node, path Path, opts RestoreOpts) {
	if style, found := t.Lookup(path, node.Value); found && style == StyleDouble {
		node.Style = yaml.DoubleQuotedStyle
		return
	}
	if opts.Compat && hasInnerTrailingWhitespace(node.Value) {
		node.Style = yaml.DoubleQuotedStyle
		return
	}

	hadExpressions, lastLine := t.scriptStyle(node.Value)
	if !hadExpressions {
		node.Style = yaml.LiteralStyle
		return
	}

	node.Style = yaml.FoldedStyle
	if opts.Compat && lastLine && !strings.HasSuffix(node.Value, "\n\n") {
		node.Value += "\n"
	}
}

func hasInnerTrailingWhitespace(value string) bool {
	lines := strings.Split(value, "\n")
	for _, line := range lines[:len(lines)-1] {
		if line != strings.TrimRight(line, " \t") {
			return true
		}
	}
	return false
}
