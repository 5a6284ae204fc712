// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlmeta

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/filepos"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/orderedmap"
	"gopkg.in/yaml.v3"
)

// ParseError reports a document that is not valid YAML.
type ParseError struct {
	Name     string
	Position *filepos.Position
	Msg      string
}

func (e ParseError) Error() string {
	if e.Position.IsKnown() {
		return fmt.Sprintf("Unmarshaling YAML template '%s' (%s): %s", e.Name, e.Position.AsCompactString(), e.Msg)
	}
	return fmt.Sprintf("Unmarshaling YAML template '%s': %s", e.Name, e.Msg)
}

// Document is a parsed YAML document: the plain tree the expander works on
// and the lossless node tree used to read source presentation.
type Document struct {
	Name  string
	Tree  interface{}
	Node  *yaml.Node
	Empty bool
}

// ParseBytes parses the first YAML document in data.
func ParseBytes(data []byte, associatedName string) (*Document, error) {
	var node yaml.Node

	dec := yaml.NewDecoder(bytes.NewReader(data))
	err := dec.Decode(&node)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &Document{Name: associatedName, Empty: true}, nil
		}
		pos, msg := filepos.FromYAMLError(err, associatedName)
		return nil, ParseError{Name: associatedName, Position: pos, Msg: msg}
	}

	tree, err := FromNode(&node)
	if err != nil {
		return nil, ParseError{Name: associatedName, Position: filepos.NewUnknownPositionInFile(associatedName), Msg: err.Error()}
	}

	return &Document{Name: associatedName, Tree: tree, Node: &node}, nil
}

// ParseValue parses a single YAML value, as used for flag values.
func ParseValue(data string) (interface{}, error) {
	doc, err := ParseBytes([]byte(data), "")
	if err != nil {
		return nil, err
	}
	return doc.Tree, nil
}

// FromNode converts a node tree into nil, bool, int, float64, string,
// []interface{} and *orderedmap.Map values.
func FromNode(node *yaml.Node) (interface{}, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return FromNode(node.Content[0])

	case yaml.MappingNode:
		result := orderedmap.NewMap()
		for i := 0; i+1 < len(node.Content); i += 2 {
			val, err := FromNode(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			result.Set(node.Content[i].Value, val)
		}
		return result, nil

	case yaml.SequenceNode:
		result := make([]interface{}, 0, len(node.Content))
		for _, child := range node.Content {
			val, err := FromNode(child)
			if err != nil {
				return nil, err
			}
			result = append(result, val)
		}
		return result, nil

	case yaml.AliasNode:
		if node.Alias == nil {
			return nil, fmt.Errorf("Unknown anchor '%s' referenced", node.Value)
		}
		return FromNode(node.Alias)

	case yaml.ScalarNode:
		return scalarValue(node)
	}
	return nil, fmt.Errorf("Unexpected YAML node kind %d at line %d", node.Kind, node.Line)
}

func scalarValue(node *yaml.Node) (interface{}, error) {
	switch node.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, err
		}
		return b, nil
	case "!!int":
		if i, err := strconv.Atoi(node.Value); err == nil {
			return i, nil
		}
		var f float64
		if err := node.Decode(&f); err != nil {
			return node.Value, nil
		}
		return f, nil
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return node.Value, nil
		}
		return f, nil
	default:
		return node.Value, nil
	}
}
