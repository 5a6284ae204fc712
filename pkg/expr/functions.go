// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package expr

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/orderedmap"
)

// Functions is a case-insensitive function table.
type Functions map[string]func(args []interface{}) interface{}

var _ FunctionTable = Functions{}

func (f Functions) Call(name string, args []interface{}) interface{} {
	if fn, found := f[name]; found {
		return fn(args)
	}
	if fn, found := f[strings.ToLower(name)]; found {
		return fn(args)
	}
	return Undefined
}

// DefaultFunctions returns the built-in functions. Keys are lowercase.
func DefaultFunctions() Functions {
	constant := func(val bool) func([]interface{}) interface{} {
		return func([]interface{}) interface{} { return RenderedBool(val) }
	}

	return Functions{
		"and":               variadic(1, fnAnd),
		"or":                variadic(1, fnOr),
		"not":               exact(1, func(args []interface{}) interface{} { return RenderedBool(!ToBoolean(args[0])) }),
		"xor":               exact(2, func(args []interface{}) interface{} { return RenderedBool(ToBoolean(args[0]) != ToBoolean(args[1])) }),
		"eq":                exact(2, compareFn(func(c int) bool { return c == 0 })),
		"ne":                exact(2, compareFn(func(c int) bool { return c != 0 })),
		"gt":                exact(2, compareFn(func(c int) bool { return c > 0 })),
		"ge":                exact(2, compareFn(func(c int) bool { return c >= 0 })),
		"lt":                exact(2, compareFn(func(c int) bool { return c < 0 })),
		"le":                exact(2, compareFn(func(c int) bool { return c <= 0 })),
		"contains":          exact(2, fnContains),
		"containsvalue":     exact(2, fnContainsValue),
		"startswith":        exact(2, stringPredicate(strings.HasPrefix)),
		"endswith":          exact(2, stringPredicate(strings.HasSuffix)),
		"in":                variadic(1, fnIn),
		"notin":             variadic(1, func(args []interface{}) interface{} { return RenderedBool(!bool(fnIn(args).(RenderedBool))) }),
		"coalesce":          variadic(0, fnCoalesce),
		"format":            variadic(1, fnFormat),
		"join":              exact(2, fnJoin),
		"lower":             exact(1, func(args []interface{}) interface{} { return strings.ToLower(Stringify(args[0])) }),
		"upper":             exact(1, func(args []interface{}) interface{} { return strings.ToUpper(Stringify(args[0])) }),
		"trim":              exact(1, func(args []interface{}) interface{} { return strings.TrimSpace(Stringify(args[0])) }),
		"replace":           exact(3, fnReplace),
		"split":             exact(2, fnSplit),
		"length":            exact(1, fnLength),
		"converttojson":     exact(1, func(args []interface{}) interface{} { return ToJSON(args[0]) }),
		"iif":               exact(3, fnIif),
		"always":            constant(true),
		"succeeded":         constant(true),
		"succeededorfailed": constant(true),
		"failed":            constant(false),
		"canceled":          constant(false),
	}
}

func exact(n int, fn func([]interface{}) interface{}) func([]interface{}) interface{} {
	return func(args []interface{}) interface{} {
		if len(args) != n {
			return Undefined
		}
		return fn(args)
	}
}

func variadic(min int, fn func([]interface{}) interface{}) func([]interface{}) interface{} {
	return func(args []interface{}) interface{} {
		if len(args) < min {
			return Undefined
		}
		return fn(args)
	}
}

func fnAnd(args []interface{}) interface{} {
	for _, arg := range args {
		if !ToBoolean(arg) {
			return RenderedBool(false)
		}
	}
	return RenderedBool(true)
}

func fnOr(args []interface{}) interface{} {
	for _, arg := range args {
		if ToBoolean(arg) {
			return RenderedBool(true)
		}
	}
	return RenderedBool(false)
}

func compareFn(pred func(int) bool) func([]interface{}) interface{} {
	return func(args []interface{}) interface{} {
		return RenderedBool(pred(CompareValuesFold(args[0], args[1])))
	}
}

func stringPredicate(pred func(s, affix string) bool) func([]interface{}) interface{} {
	return func(args []interface{}) interface{} {
		return RenderedBool(pred(strings.ToLower(Stringify(args[0])), strings.ToLower(Stringify(args[1]))))
	}
}

func fnContains(args []interface{}) interface{} {
	if list, ok := args[0].([]interface{}); ok {
		return fnContainsValue([]interface{}{list, args[1]})
	}
	return RenderedBool(strings.Contains(strings.ToLower(Stringify(args[0])), strings.ToLower(Stringify(args[1]))))
}

func fnContainsValue(args []interface{}) interface{} {
	switch typedColl := args[0].(type) {
	case []interface{}:
		for _, item := range typedColl {
			if CompareValuesFold(item, args[1]) == 0 {
				return RenderedBool(true)
			}
		}
	case *orderedmap.Map:
		for _, item := range typedColl.Items() {
			if CompareValuesFold(item.Value, args[1]) == 0 {
				return RenderedBool(true)
			}
		}
	}
	return RenderedBool(false)
}

func fnIn(args []interface{}) interface{} {
	for _, candidate := range args[1:] {
		if CompareValuesFold(args[0], candidate) == 0 {
			return RenderedBool(true)
		}
	}
	return RenderedBool(false)
}

func fnCoalesce(args []interface{}) interface{} {
	for _, arg := range args {
		if arg == nil || IsUndefined(arg) {
			continue
		}
		if str, ok := arg.(string); ok && str == "" {
			continue
		}
		return arg
	}
	return Undefined
}

var formatPlaceholderRegexp = regexp.MustCompile(`\{\{|\}\}|\{(\d+)\}`)

func fnFormat(args []interface{}) interface{} {
	return formatPlaceholderRegexp.ReplaceAllStringFunc(Stringify(args[0]), func(match string) string {
		switch match {
		case "{{":
			return "{"
		case "}}":
			return "}"
		}
		idx, err := strconv.Atoi(match[1 : len(match)-1])
		if err != nil || idx+1 >= len(args) {
			return ""
		}
		return Stringify(args[idx+1])
	})
}

func fnJoin(args []interface{}) interface{} {
	sep := Stringify(args[0])
	switch typedColl := args[1].(type) {
	case []interface{}:
		strs := make([]string, 0, len(typedColl))
		for _, item := range typedColl {
			strs = append(strs, Stringify(item))
		}
		return strings.Join(strs, sep)
	case *orderedmap.Map:
		return strings.Join(typedColl.Keys(), sep)
	default:
		return Stringify(typedColl)
	}
}

func fnReplace(args []interface{}) interface{} {
	return strings.ReplaceAll(Stringify(args[0]), Stringify(args[1]), Stringify(args[2]))
}

func fnSplit(args []interface{}) interface{} {
	var result []interface{}
	for _, piece := range strings.Split(Stringify(args[0]), Stringify(args[1])) {
		result = append(result, piece)
	}
	return result
}

func fnLength(args []interface{}) interface{} {
	switch typedVal := args[0].(type) {
	case []interface{}:
		return len(typedVal)
	case *orderedmap.Map:
		return typedVal.Len()
	case nil:
		return 0
	default:
		if IsUndefined(typedVal) {
			return 0
		}
		return len(Stringify(typedVal))
	}
}

func fnIif(args []interface{}) interface{} {
	if ToBoolean(args[0]) {
		return args[1]
	}
	return args[2]
}
