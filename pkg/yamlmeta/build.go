// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlmeta

import (
	"fmt"
	"strconv"

	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/expr"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/orderedmap"
	"gopkg.in/yaml.v3"
)

// NewDocumentNode builds the node tree that is printed for an expanded
// tree. Strings are tagged !!str so the encoder quotes them when they
// would otherwise read back as another type.
func NewDocumentNode(tree interface{}) *yaml.Node {
	return &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{NewNode(tree)}}
}

func NewNode(val interface{}) *yaml.Node {
	switch typedVal := val.(type) {
	case *orderedmap.Map:
		result := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		typedVal.Iterate(func(k string, v interface{}) {
			result.Content = append(result.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, NewNode(v))
		})
		return result

	case []interface{}:
		result := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range typedVal {
			result.Content = append(result.Content, NewNode(item))
		}
		return result

	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}

	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(typedVal)}

	case expr.RenderedBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: typedVal.String()}

	case int:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(typedVal)}

	case float64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: numberTag(typedVal), Value: expr.FormatNumber(typedVal)}

	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: typedVal}

	default:
		if expr.IsUndefined(val) {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: ""}
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: fmt.Sprintf("%v", val)}
	}
}

func numberTag(f float64) string {
	if _, err := strconv.Atoi(expr.FormatNumber(f)); err == nil {
		return "!!int"
	}
	return "!!float"
}
