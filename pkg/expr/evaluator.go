// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package expr

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/orderedmap"
	gocache "github.com/patrickmn/go-cache"
)

// Context supplies the names visible to an expression.
type Context interface {
	Local(name string) (interface{}, bool)
	Parameter(name string) (interface{}, bool)
	Variable(name string) (interface{}, bool)
	// Collection returns the whole parameters, variables,
	// resources or locals mapping.
	Collection(name string) (interface{}, bool)
}

// FunctionTable resolves calls to functions that are not values in scope.
// Call returns Undefined for unknown names.
type FunctionTable interface {
	Call(name string, args []interface{}) interface{}
}

var (
	barePathRegexp   = regexp.MustCompile(`^[A-Za-z_][\w-]*(\.[\w-]+|\[\d+\]|\['[^']*'\])*$`)
	pathSegmentRegex = regexp.MustCompile(`[^.\[\]]+|\[\d+\]|\['[^']*'\]`)
)

type parsed struct {
	ast node
	err error
}

// Evaluator parses and evaluates expression payloads. Parse results are
// cached per instance by exact source text.
type Evaluator struct {
	cache *gocache.Cache
	funcs FunctionTable
}

func NewEvaluator(funcs FunctionTable) *Evaluator {
	if funcs == nil {
		funcs = DefaultFunctions()
	}
	return &Evaluator{
		cache: gocache.New(gocache.NoExpiration, 0),
		funcs: funcs,
	}
}

// Reset drops all cached parse results.
func (e *Evaluator) Reset() { e.cache.Flush() }

func (e *Evaluator) CachedCount() int { return e.cache.ItemCount() }

// Evaluate never fails: text that does not parse is resolved as a
// dotted context path when it looks like one, otherwise returned as is.
func (e *Evaluator) Evaluate(text string, ctx Context) interface{} {
	text = strings.TrimSpace(text)
	if text == "" {
		return Undefined
	}

	// parameters.my-param would otherwise parse as a subtraction
	if strings.Contains(text, "-") && barePathRegexp.MatchString(text) {
		return ResolveContextValue(text, ctx)
	}

	result := e.parse(text)
	if result.err != nil {
		if barePathRegexp.MatchString(text) {
			return ResolveContextValue(text, ctx)
		}
		return text
	}
	return e.eval(result.ast, ctx)
}

func (e *Evaluator) parse(text string) parsed {
	if cached, found := e.cache.Get(text); found {
		return cached.(parsed)
	}
	ast, err := parse(text)
	result := parsed{ast, err}
	e.cache.Set(text, result, gocache.NoExpiration)
	return result
}

// ResolveContextValue walks a dotted path segment by segment. A missing
// key directly under the root yields Undefined while a missing key
// deeper down yields an empty string.
func ResolveContextValue(path string, ctx Context) interface{} {
	segments := pathSegmentRegex.FindAllString(strings.TrimSpace(path), -1)
	if len(segments) == 0 {
		return Undefined
	}

	current := resolveIdentifier(segments[0], ctx)
	if IsUndefined(current) {
		return Undefined
	}

	for i, segment := range segments[1:] {
		segment = strings.TrimSuffix(strings.TrimPrefix(segment, "["), "]")
		segment = strings.Trim(segment, "'")

		switch typedCurrent := current.(type) {
		case *orderedmap.Map:
			val, found := lookupKey(typedCurrent, segment)
			if !found {
				if i == 0 {
					return Undefined
				}
				return ""
			}
			current = val
		case []interface{}:
			current = member(typedCurrent, segment)
			if IsUndefined(current) {
				return Undefined
			}
		default:
			return Undefined
		}
	}
	return current
}

func resolveIdentifier(name string, ctx Context) interface{} {
	if ctx == nil {
		return Undefined
	}
	if val, found := ctx.Local(name); found {
		return val
	}
	if val, found := ctx.Parameter(name); found {
		return val
	}
	if val, found := ctx.Variable(name); found {
		return val
	}
	switch name {
	case "parameters", "variables", "resources", "locals":
		if val, found := ctx.Collection(name); found {
			return val
		}
	}
	return Undefined
}

func lookupKey(m *orderedmap.Map, key string) (interface{}, bool) {
	if val, found := m.Get(key); found {
		return val, true
	}
	for _, item := range m.Items() {
		if strings.EqualFold(item.Key, key) {
			return item.Value, true
		}
	}
	return nil, false
}

func member(obj interface{}, name string) interface{} {
	switch typedObj := obj.(type) {
	case *orderedmap.Map:
		if val, found := lookupKey(typedObj, name); found {
			return val
		}
	case []interface{}:
		if idx, err := strconv.Atoi(name); err == nil {
			if idx >= 0 && idx < len(typedObj) {
				return typedObj[idx]
			}
			return Undefined
		}
		// repositories are reachable by alias
		for _, item := range typedObj {
			if m, ok := item.(*orderedmap.Map); ok {
				if alias, found := m.Get("repository"); found && alias == name {
					return m
				}
			}
		}
		if name == "length" {
			return len(typedObj)
		}
	case string:
		if name == "length" {
			return len(typedObj)
		}
	}
	return Undefined
}

func (e *Evaluator) eval(n node, ctx Context) interface{} {
	switch typedNode := n.(type) {
	case literalNode:
		return typedNode.value

	case identNode:
		return resolveIdentifier(typedNode.name, ctx)

	case memberNode:
		return member(e.eval(typedNode.object, ctx), typedNode.property)

	case indexNode:
		obj := e.eval(typedNode.object, ctx)
		idx := e.eval(typedNode.index, ctx)
		if IsUndefined(idx) {
			return Undefined
		}
		return member(obj, Stringify(idx))

	case callNode:
		return e.evalCall(typedNode, ctx)

	case unaryNode:
		operand := e.eval(typedNode.operand, ctx)
		switch typedNode.op {
		case "!":
			return RenderedBool(!ToBoolean(operand))
		case "-":
			return numberResult(-ToNumber(operand))
		default:
			return numberResult(ToNumber(operand))
		}

	case binaryNode:
		return e.evalBinary(typedNode, ctx)

	case conditionalNode:
		if ToBoolean(e.eval(typedNode.test, ctx)) {
			return e.eval(typedNode.consequent, ctx)
		}
		return e.eval(typedNode.alternate, ctx)

	case arrayNode:
		result := make([]interface{}, 0, len(typedNode.elements))
		for _, element := range typedNode.elements {
			result = append(result, e.eval(element, ctx))
		}
		return result

	case objectNode:
		result := orderedmap.NewMap()
		for i, key := range typedNode.keys {
			result.Set(key, e.eval(typedNode.values[i], ctx))
		}
		return result
	}
	return Undefined
}

func (e *Evaluator) evalCall(n callNode, ctx Context) interface{} {
	args := make([]interface{}, len(n.args))
	for i, arg := range n.args {
		args[i] = e.eval(arg, ctx)
	}

	switch callee := n.callee.(type) {
	case memberNode:
		if fn, ok := member(e.eval(callee.object, ctx), callee.property).(Func); ok {
			return fn(args)
		}
		return Undefined
	case identNode:
		if fn, ok := resolveIdentifier(callee.name, ctx).(Func); ok {
			return fn(args)
		}
		return e.funcs.Call(callee.name, args)
	}
	return Undefined
}

func (e *Evaluator) evalBinary(n binaryNode, ctx Context) interface{} {
	left := e.eval(n.left, ctx)

	switch n.op {
	case "&&":
		if !ToBoolean(left) {
			return left
		}
		return e.eval(n.right, ctx)
	case "||":
		if ToBoolean(left) {
			return left
		}
		return e.eval(n.right, ctx)
	case "??":
		if left == nil || IsUndefined(left) {
			return e.eval(n.right, ctx)
		}
		return left
	}

	right := e.eval(n.right, ctx)

	switch n.op {
	case "==", "===":
		return RenderedBool(CompareValues(left, right) == 0)
	case "!=", "!==":
		return RenderedBool(CompareValues(left, right) != 0)
	case "<":
		return RenderedBool(CompareValues(left, right) < 0)
	case "<=":
		return RenderedBool(CompareValues(left, right) <= 0)
	case ">":
		return RenderedBool(CompareValues(left, right) > 0)
	case ">=":
		return RenderedBool(CompareValues(left, right) >= 0)
	case "+":
		_, leftStr := left.(string)
		_, rightStr := right.(string)
		if leftStr || rightStr {
			return Stringify(left) + Stringify(right)
		}
		return numberResult(ToNumber(left) + ToNumber(right))
	case "-":
		return numberResult(ToNumber(left) - ToNumber(right))
	case "*":
		return numberResult(ToNumber(left) * ToNumber(right))
	case "/":
		return numberResult(ToNumber(left) / ToNumber(right))
	case "%":
		return numberResult(math.Mod(ToNumber(left), ToNumber(right)))
	}
	return Undefined
}

func numberResult(f float64) interface{} {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Undefined
	}
	return f
}
