// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package expand

import (
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/expr"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/orderedmap"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/scope"
)

// TemplateResolver expands a template reference into the items it
// contributes to the caller.
type TemplateResolver interface {
	ResolveTemplate(ref *orderedmap.Map, sc *scope.Scope, e *Expander) ([]interface{}, error)
}

// Expander rewrites a tree into an equivalent one without directives.
// Input trees are never modified.
type Expander struct {
	evaluator *expr.Evaluator
	resolver  TemplateResolver
}

func NewExpander(evaluator *expr.Evaluator, resolver TemplateResolver) *Expander {
	if evaluator == nil {
		evaluator = expr.NewEvaluator(nil)
	}
	return &Expander{evaluator: evaluator, resolver: resolver}
}

func (e *Expander) Evaluator() *expr.Evaluator { return e.evaluator }

// Expand returns the expanded tree, or nil when the whole value
// evaluated to nothing.
func (e *Expander) Expand(tree interface{}, sc *scope.Scope) (interface{}, error) {
	result, keep, err := walker{e, false}.value(tree, sc)
	if err != nil || !keep {
		return nil, err
	}
	return result, nil
}

// ExpandPreservingTemplates evaluates expressions but leaves template
// references in place (with their parameters evaluated) so they can be
// expanded later in another scope.
func (e *Expander) ExpandPreservingTemplates(tree interface{}, sc *scope.Scope) (interface{}, error) {
	result, keep, err := walker{e, true}.value(tree, sc)
	if err != nil || !keep {
		return nil, err
	}
	return result, nil
}

// ExpandMapping expands a mapping in place of a document root.
func (e *Expander) ExpandMapping(m *orderedmap.Map, sc *scope.Scope) (*orderedmap.Map, error) {
	return walker{e, false}.mapping(m, sc)
}

// Interpolate replaces every ${{ }} in text with its string value.
func (e *Expander) Interpolate(text string, sc *scope.Scope) string {
	return walker{e, false}.interpolate(text, sc)
}

// Evaluate evaluates an expression payload against sc.
func (e *Expander) Evaluate(exprText string, sc *scope.Scope) interface{} {
	return e.evaluator.Evaluate(exprText, sc)
}

type walker struct {
	e                 *Expander
	preserveTemplates bool
}

func (w walker) value(val interface{}, sc *scope.Scope) (interface{}, bool, error) {
	switch typedVal := val.(type) {
	case string:
		return w.str(typedVal, sc)

	case []interface{}:
		result, err := w.sequence(typedVal, sc)
		return result, true, err

	case *orderedmap.Map:
		if IsTemplateRef(typedVal) {
			if w.preserveTemplates {
				result, err := w.preservedTemplateRef(typedVal, sc)
				return result, true, err
			}
			items, err := w.resolveTemplate(typedVal, sc)
			return items, true, err
		}
		result, err := w.mapping(typedVal, sc)
		return result, true, err

	default:
		return val, true, nil
	}
}

func (w walker) resolveTemplate(ref *orderedmap.Map, sc *scope.Scope) ([]interface{}, error) {
	if w.e.resolver == nil {
		return []interface{}{ref.DeepCopy()}, nil
	}
	return w.e.resolver.ResolveTemplate(ref, sc, w.e)
}

func (w walker) preservedTemplateRef(ref *orderedmap.Map, sc *scope.Scope) (*orderedmap.Map, error) {
	result := orderedmap.NewMap()
	err := ref.IterateErr(func(k string, v interface{}) error {
		switch k {
		case "parameters":
			expanded, keep, err := w.value(v, sc.At(k))
			if err != nil {
				return err
			}
			if keep {
				result.Set(k, expanded)
			}
		case "template":
			if str, ok := v.(string); ok {
				result.Set(k, w.interpolate(str, sc.At(k)))
				return nil
			}
			result.Set(k, v)
		default:
			result.Set(k, orderedmap.DeepCopyValue(v))
		}
		return nil
	})
	return result, err
}

type branch struct {
	key  string
	body interface{}
	idx  int
}

// pickBranch evaluates conditions left to right and stops at the first
// truthy one; later branches are never evaluated.
func (w walker) pickBranch(chain []branch, sc *scope.Scope) *branch {
	for i, b := range chain {
		d := ClassifyKey(b.key)
		if d.Kind == DirectiveElse {
			return &chain[i]
		}
		if expr.ToBoolean(w.e.evaluator.Evaluate(d.Expr, sc)) {
			return &chain[i]
		}
	}
	return nil
}

func isChainContinuation(key string) (bool, bool) {
	switch ClassifyKey(key).Kind {
	case DirectiveElseIf:
		return true, false
	case DirectiveElse:
		return true, true
	}
	return false, false
}

// normalizeCollection turns the each collection into an ordered list.
// Mappings become {key, value} entries.
func normalizeCollection(val interface{}) []interface{} {
	switch typedVal := val.(type) {
	case []interface{}:
		return typedVal
	case *orderedmap.Map:
		var result []interface{}
		typedVal.Iterate(func(k string, v interface{}) {
			entry := orderedmap.NewMap()
			entry.Set("key", k)
			entry.Set("value", v)
			result = append(result, entry)
		})
		return result
	}
	return nil
}
