// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package expand

import (
	"strconv"
	"strings"

	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/expr"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/orderedmap"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/scope"
)

const dynamicKey = "--"

var iterationKeyFields = []string{"key", "name", "matrixKey", "label", "id", "value"}

func (w walker) mapping(m *orderedmap.Map, sc *scope.Scope) (*orderedmap.Map, error) {
	result := orderedmap.NewMap()
	items := m.Items()

	var expandedVars interface{}
	varsExpanded := false

	if rawVars, found := m.Get("variables"); found && !w.underParameters(sc) {
		vars, keep, err := w.value(rawVars, sc.At("variables"))
		if err != nil {
			return nil, err
		}
		if keep {
			expandedVars = vars
			varsExpanded = true
			sc = sc.WithVariables(VariablesToMap(vars))
		}
	}

	for i := 0; i < len(items); i++ {
		item := items[i]
		directive := ClassifyKey(item.Key)

		switch directive.Kind {
		case DirectiveIf:
			chain := []branch{{key: item.Key, body: item.Value}}
			for i+1 < len(items) {
				cont, isElse := isChainContinuation(items[i+1].Key)
				if !cont {
					break
				}
				i++
				chain = append(chain, branch{key: items[i].Key, body: items[i].Value})
				if isElse {
					break
				}
			}
			if taken := w.pickBranch(chain, sc); taken != nil {
				if err := w.mergeBody(result, taken.body, sc.At(taken.key)); err != nil {
					return nil, err
				}
			}

		case DirectiveElseIf, DirectiveElse:
			// not preceded by an if; nothing can select it

		case DirectiveEach:
			if err := w.eachIntoMapping(result, directive, item, sc); err != nil {
				return nil, err
			}

		case DirectiveInsert:
			if err := w.mergeBody(result, item.Value, sc.At(item.Key)); err != nil {
				return nil, err
			}

		default:
			key := item.Key
			if strings.Contains(key, "${{") {
				key = w.interpolate(key, sc)
			}

			if item.Key == "variables" && varsExpanded {
				result.Set(key, expandedVars)
				continue
			}

			val, keep, err := w.value(item.Value, sc.At(item.Key))
			if err != nil {
				return nil, err
			}
			if keep {
				result.Set(key, val)
			}
		}
	}

	if w.preserveTemplates {
		return result, nil
	}
	return Canonicalize(result, sc), nil
}

func (w walker) underParameters(sc *scope.Scope) bool {
	for _, name := range sc.ExpansionPath.Names() {
		if name == "parameters" {
			return true
		}
	}
	return false
}

// mergeBody expands a branch body and merges it into result.
func (w walker) mergeBody(result *orderedmap.Map, body interface{}, sc *scope.Scope) error {
	switch typedBody := body.(type) {
	case nil:
		return nil

	case *orderedmap.Map:
		if IsTemplateRef(typedBody) && !w.preserveTemplates {
			items, err := w.resolveTemplate(typedBody, sc)
			if err != nil {
				return err
			}
			mergeItems(result, items)
			return nil
		}
		expanded, err := w.mapping(typedBody, sc)
		if err != nil {
			return err
		}
		mergeItems(result, []interface{}{expanded})
		return nil

	case []interface{}:
		expanded, err := w.sequence(typedBody, sc)
		if err != nil {
			return err
		}
		mergeItems(result, expanded)
		return nil

	default:
		val, keep, err := w.value(typedBody, sc)
		if err != nil || !keep {
			return err
		}
		switch typedVal := val.(type) {
		case *orderedmap.Map:
			mergeItems(result, []interface{}{typedVal})
		case []interface{}:
			mergeItems(result, typedVal)
		default:
			result.Set("value", val)
		}
		return nil
	}
}

func mergeItems(result *orderedmap.Map, items []interface{}) {
	for _, item := range items {
		if m, ok := item.(*orderedmap.Map); ok {
			m.Iterate(func(k string, v interface{}) { result.Set(k, v) })
		}
	}
}

func (w walker) eachIntoMapping(result *orderedmap.Map, directive Directive, item orderedmap.MapItem, sc *scope.Scope) error {
	collection := normalizeCollection(w.e.evaluator.Evaluate(directive.Expr, sc))

	for idx, elem := range collection {
		iterScope := sc.ForIteration(directive.Var, elem, idx)
		bodyScope := iterScope.At(item.Key)

		body := item.Value
		if bodyMap, ok := body.(*orderedmap.Map); ok && bodyMap.Has(dynamicKey) {
			dynamicVal, _ := bodyMap.Get(dynamicKey)
			key := w.iterationKey(elem, directive.Var, iterScope, idx)

			val, keep, err := w.value(dynamicVal, bodyScope.At(key))
			if err != nil {
				return err
			}
			if keep {
				result.Set(key, val)
			}

			rest := bodyMap.Copy()
			rest.Delete(dynamicKey)
			body = rest
		}

		if err := w.mergeBody(result, body, bodyScope); err != nil {
			return err
		}
	}
	return nil
}

// iterationKey names the mapping entry produced for one each iteration.
func (w walker) iterationKey(elem interface{}, varName string, sc *scope.Scope, idx int) string {
	if key, ok := scalarKey(elem); ok {
		return key
	}
	if m, ok := elem.(*orderedmap.Map); ok {
		for _, field := range iterationKeyFields {
			if val, found := m.Get(field); found {
				if key, ok := scalarKey(val); ok {
					return key
				}
			}
		}
	}
	if key, ok := scalarKey(w.e.evaluator.Evaluate(varName, sc)); ok {
		return key
	}
	return strconv.Itoa(idx)
}

func scalarKey(val interface{}) (string, bool) {
	switch val.(type) {
	case string, int, float64, bool, expr.RenderedBool:
		key := expr.Stringify(val)
		return key, key != ""
	}
	return "", false
}

func (w walker) sequence(list []interface{}, sc *scope.Scope) ([]interface{}, error) {
	result := []interface{}{}

	for i := 0; i < len(list); i++ {
		item := list[i]
		directive := Classify(item)

		switch directive.Kind {
		case DirectiveIf:
			first := item.(*orderedmap.Map).Items()[0]
			chain := []branch{{key: first.Key, body: first.Value, idx: i}}
			for i+1 < len(list) {
				next := Classify(list[i+1])
				if next.Kind != DirectiveElseIf && next.Kind != DirectiveElse {
					break
				}
				i++
				entry := list[i].(*orderedmap.Map).Items()[0]
				chain = append(chain, branch{key: entry.Key, body: entry.Value, idx: i})
				if next.Kind == DirectiveElse {
					break
				}
			}
			if taken := w.pickBranch(chain, sc); taken != nil {
				spliced, err := w.splice(taken.body, sc.At(taken.idx, taken.key))
				if err != nil {
					return nil, err
				}
				result = append(result, spliced...)
			}

		case DirectiveElseIf, DirectiveElse:
			// orphaned branch

		case DirectiveEach:
			entry := item.(*orderedmap.Map).Items()[0]
			collection := normalizeCollection(w.e.evaluator.Evaluate(directive.Expr, sc))
			for idx, elem := range collection {
				iterScope := sc.ForIteration(directive.Var, elem, idx)
				spliced, err := w.splice(entry.Value, iterScope.At(i, entry.Key))
				if err != nil {
					return nil, err
				}
				result = append(result, spliced...)
			}

		case DirectiveInsert:
			entry := item.(*orderedmap.Map).Items()[0]
			spliced, err := w.splice(entry.Value, sc.At(i, entry.Key))
			if err != nil {
				return nil, err
			}
			result = append(result, spliced...)

		case DirectiveTemplateRef:
			ref := item.(*orderedmap.Map)
			if w.preserveTemplates {
				preserved, err := w.preservedTemplateRef(ref, sc.At(i))
				if err != nil {
					return nil, err
				}
				result = append(result, preserved)
				continue
			}
			items, err := w.resolveTemplate(ref, sc.At(i))
			if err != nil {
				return nil, err
			}
			result = append(result, items...)

		default:
			val, keep, err := w.value(item, sc.At(i))
			if err != nil {
				return nil, err
			}
			if !keep {
				continue
			}
			if str, ok := item.(string); ok {
				if _, full := FullExpression(str); full {
					if spliced, ok := val.([]interface{}); ok {
						result = append(result, spliced...)
						continue
					}
				}
			}
			result = append(result, val)
		}
	}
	return result, nil
}

// splice expands a branch body into the items it adds to a sequence.
// Sequence bodies flatten one level; anything else becomes one item.
func (w walker) splice(body interface{}, sc *scope.Scope) ([]interface{}, error) {
	switch typedBody := body.(type) {
	case nil:
		return nil, nil
	case []interface{}:
		return w.sequence(typedBody, sc)
	default:
		return w.sequence([]interface{}{typedBody}, sc)
	}
}

// VariablesToMap reads a variables block in list or mapping form into
// name/value pairs. Groups and unresolved template entries are skipped.
func VariablesToMap(vars interface{}) *orderedmap.Map {
	result := orderedmap.NewMap()

	switch typedVars := vars.(type) {
	case *orderedmap.Map:
		typedVars.Iterate(func(k string, v interface{}) { result.Set(k, v) })

	case []interface{}:
		for _, item := range typedVars {
			entry, ok := item.(*orderedmap.Map)
			if !ok || entry.Has("group") || entry.Has("template") {
				continue
			}
			if name, found := entry.Get("name"); found {
				if nameStr, ok := name.(string); ok {
					val, _ := entry.Get("value")
					result.Set(nameStr, val)
				}
				continue
			}
			if entry.Len() == 1 {
				only := entry.Items()[0]
				result.Set(only.Key, only.Value)
			}
		}
	}
	return result
}
