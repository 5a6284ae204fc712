// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package templates

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/expr"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/formatting"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/orderedmap"
)

// Parameter is one declared template parameter.
type Parameter struct {
	Name       string
	Type       string
	Default    interface{}
	HasDefault bool
	Values     []interface{}
}

// Parameters are a template's declarations in source order.
type Parameters struct {
	List []Parameter
	// Paths locate each default in the template document.
	Paths map[string]formatting.Path
}

var declarationKeys = []string{"name", "type", "default", "value", "values", "displayName"}

var runtimeReferenceRegexp = regexp.MustCompile(`^\$\([^)]+\)$`)

// ExtractParameters reads a parameters block written as a list of
// declarations, a mapping of declarations or a mapping of defaults.
func ExtractParameters(raw interface{}) (Parameters, error) {
	result := Parameters{Paths: map[string]formatting.Path{}}

	switch typedRaw := raw.(type) {
	case nil:
		return result, nil

	case []interface{}:
		for i, item := range typedRaw {
			switch typedItem := item.(type) {
			case *orderedmap.Map:
				nameVal, _ := typedItem.Get("name")
				name, ok := nameVal.(string)
				if !ok || name == "" {
					return result, fmt.Errorf("Expected parameter declaration %d to have a name", i)
				}
				param := declaration(name, typedItem)
				result.List = append(result.List, param)
				result.Paths[name] = formatting.Path{"parameters", i, defaultKey(typedItem)}
			case string:
				result.List = append(result.List, Parameter{Name: typedItem})
				result.Paths[typedItem] = formatting.Path{"parameters", i}
			default:
				return result, fmt.Errorf("Expected parameter declaration %d to be a mapping, but was %T", i, item)
			}
		}
		return result, nil

	case *orderedmap.Map:
		typedRaw.Iterate(func(name string, val interface{}) {
			if decl, ok := val.(*orderedmap.Map); ok && isDeclaration(decl) {
				result.List = append(result.List, declaration(name, decl))
				result.Paths[name] = formatting.Path{"parameters", name, defaultKey(decl)}
				return
			}
			result.List = append(result.List, Parameter{Name: name, Default: val, HasDefault: true})
			result.Paths[name] = formatting.Path{"parameters", name}
		})
		return result, nil

	default:
		return result, fmt.Errorf("Expected parameters to be a list or a mapping, but was %T", raw)
	}
}

func isDeclaration(m *orderedmap.Map) bool {
	for _, key := range declarationKeys {
		if m.Has(key) {
			return true
		}
	}
	return false
}

func defaultKey(m *orderedmap.Map) string {
	for _, key := range []string{"default", "value"} {
		if m.Has(key) {
			return key
		}
	}
	return "default"
}

func declaration(name string, m *orderedmap.Map) Parameter {
	param := Parameter{Name: name}
	if typeVal, found := m.Get("type"); found {
		param.Type, _ = typeVal.(string)
	}
	if values, found := m.Get("values"); found {
		param.Values, _ = values.([]interface{})
		param.HasDefault = true
		if len(param.Values) > 0 {
			param.Default = param.Values[0]
		}
	}
	if val, found := m.Get("value"); found {
		param.Default, param.HasDefault = val, true
	}
	if val, found := m.Get("default"); found {
		param.Default, param.HasDefault = val, true
	}
	return param
}

func (p Parameters) Lookup(name string) (Parameter, bool) {
	for _, param := range p.List {
		if param.Name == name {
			return param, true
		}
	}
	return Parameter{}, false
}

// Defaults returns a copy of every declared default.
func (p Parameters) Defaults() *orderedmap.Map {
	result := orderedmap.NewMap()
	for _, param := range p.List {
		if param.HasDefault {
			result.Set(param.Name, orderedmap.DeepCopyValue(param.Default))
		}
	}
	return result
}

// Validate checks provided values against the declarations and reports
// every problem in one error.
func (p Parameters) Validate(identifier string, provided *orderedmap.Map, stack CallStack) error {
	verr := ParameterValidationError{Identifier: identifier, Stack: stack}

	for _, param := range p.List {
		val, found := provided.Get(param.Name)
		if !found {
			if !param.HasDefault {
				verr.MissingRequired = append(verr.MissingRequired, param.Name)
			}
			continue
		}
		if isRuntimeReference(val) {
			continue
		}
		if param.Type != "" && !acceptsType(param.Name, param.Type, val) {
			verr.TypeErrors = append(verr.TypeErrors,
				fmt.Sprintf("%s (expected %s, got %s)", param.Name, param.Type, describeType(val)))
		}
		if param.Values != nil && !containsValue(param.Values, val) {
			verr.InvalidValues = append(verr.InvalidValues,
				fmt.Sprintf("%s ('%s' is not one of [%s])", param.Name, expr.Stringify(val), joinValues(param.Values)))
		}
	}

	provided.Iterate(func(name string, _ interface{}) {
		if _, found := p.Lookup(name); !found {
			verr.UnknownParameters = append(verr.UnknownParameters, name)
		}
	})

	if verr.HasErrors() {
		return verr
	}
	return nil
}

func isRuntimeReference(val interface{}) bool {
	str, ok := val.(string)
	return ok && runtimeReferenceRegexp.MatchString(strings.TrimSpace(str))
}

func acceptsType(name, typeName string, val interface{}) bool {
	switch strings.ToLower(typeName) {
	case "string":
		switch val.(type) {
		case string, int, float64, bool, expr.RenderedBool:
			return true
		}
		return false

	case "number":
		switch typedVal := val.(type) {
		case int, float64:
			return true
		case string:
			return expr.LooksNumeric(strings.TrimSpace(typedVal))
		}
		return false

	case "boolean":
		switch typedVal := val.(type) {
		case bool, expr.RenderedBool:
			return true
		case string:
			switch strings.ToLower(strings.TrimSpace(typedVal)) {
			case "true", "false", "__true__", "__false__":
				return true
			}
		}
		return false

	case "object":
		switch val.(type) {
		case *orderedmap.Map, []interface{}:
			return true
		case string:
			return name == "dependsOn"
		}
		return false

	case "step", "steplist", "job", "joblist", "deployment", "deploymentlist", "stage", "stagelist":
		_, ok := val.([]interface{})
		return ok
	}
	return true
}

func describeType(val interface{}) string {
	switch val.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case int, float64:
		return "number"
	case bool, expr.RenderedBool:
		return "boolean"
	case []interface{}:
		return "list"
	case *orderedmap.Map:
		return "mapping"
	}
	return fmt.Sprintf("%T", val)
}

func containsValue(values []interface{}, val interface{}) bool {
	for _, allowed := range values {
		if expr.CompareValues(allowed, val) == 0 {
			return true
		}
	}
	return false
}

func joinValues(values []interface{}) string {
	var pieces []string
	for _, val := range values {
		pieces = append(pieces, expr.Stringify(val))
	}
	return strings.Join(pieces, ", ")
}
