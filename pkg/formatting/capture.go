// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package formatting

import (
	"gopkg.in/yaml.v3"
)

// Capture records the quote style of every string scalar value in a
// parsed document before any expansion happens.
func Capture(node *yaml.Node) *Table {
	t := NewTable()
	t.Capture(node)
	return t
}

func (t *Table) Capture(node *yaml.Node) {
	if node == nil {
		return
	}
	t.capture(node, nil)
}

func (t *Table) capture(node *yaml.Node, path Path) {
	switch node.Kind {
	case yaml.DocumentNode:
		for _, child := range node.Content {
			t.capture(child, path)
		}

	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			t.capture(node.Content[i+1], path.Append(node.Content[i].Value))
		}

	case yaml.SequenceNode:
		for i, child := range node.Content {
			t.capture(child, path.Append(i))
		}

	case yaml.ScalarNode:
		if node.ShortTag() != "!!str" {
			return
		}
		switch {
		case node.Style&yaml.SingleQuotedStyle != 0:
			t.Register(path, node.Value, StyleSingle)
		case node.Style&yaml.DoubleQuotedStyle != 0:
			t.Register(path, node.Value, StyleDouble)
		case node.Style&yaml.FoldedStyle != 0:
			t.MarkScript(node.Value, false)
		case node.Style&yaml.LiteralStyle != 0:
			// block scalars get their style from content, not the table
		default:
			t.Register(path, node.Value, StylePlain)
		}
	}
}
