// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package expr_test

import (
	"testing"

	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/expr"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/orderedmap"
	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testContext struct {
	locals, parameters, variables *orderedmap.Map
}

func (c testContext) Local(name string) (interface{}, bool)     { return c.locals.Get(name) }
func (c testContext) Parameter(name string) (interface{}, bool) { return c.parameters.Get(name) }
func (c testContext) Variable(name string) (interface{}, bool)  { return c.variables.Get(name) }

func (c testContext) Collection(name string) (interface{}, bool) {
	switch name {
	case "parameters":
		return c.parameters, true
	case "variables":
		return c.variables, true
	case "locals":
		return c.locals, true
	}
	return nil, false
}

func newTestContext() testContext {
	nested := orderedmap.NewMap()
	nested.Set("name", "api")
	nested.Set("replicas", 3)

	parameters := orderedmap.NewMap()
	parameters.Set("env", "prod")
	parameters.Set("enabled", true)
	parameters.Set("count", 2)
	parameters.Set("service", nested)
	parameters.Set("regions", []interface{}{"eu", "us"})
	parameters.Set("my-param", "hyphen")

	variables := orderedmap.NewMap()
	variables.Set("buildConfiguration", "Release")

	locals := orderedmap.NewMap()
	locals.Set("item", "local-item")

	return testContext{locals: locals, parameters: parameters, variables: variables}
}

func TestEvaluateLiteralsAndOperators(t *testing.T) {
	e := expr.NewEvaluator(nil)
	ctx := newTestContext()

	cases := []struct {
		src      string
		expected interface{}
	}{
		{"1 + 2 * 3", 7.0},
		{"(1 + 2) * 3", 9.0},
		{"10 % 4", 2.0},
		{"-parameters.count", -2.0},
		{"'a' + 'b'", "ab"},
		{"'n' + 1", "n1"},
		{"true", expr.RenderedBool(true)},
		{"FALSE", expr.RenderedBool(false)},
		{"null", nil},
		{"!parameters.enabled", expr.RenderedBool(false)},
		{"parameters.env == 'prod'", expr.RenderedBool(true)},
		{"parameters.env != 'prod'", expr.RenderedBool(false)},
		{"parameters.count === '2'", expr.RenderedBool(true)},
		{"parameters.count < 10", expr.RenderedBool(true)},
		{"'True' == true", expr.RenderedBool(true)},
		{"'__false__' == false", expr.RenderedBool(true)},
		{"parameters.enabled ? 'on' : 'off'", "on"},
		{"parameters.missing ?? 'fallback'", "fallback"},
		{"parameters.env || 'x'", "prod"},
		{"'' || 'x'", "x"},
		{"parameters.enabled && parameters.env", "prod"},
		{"parameters.service.name", "api"},
		{"parameters['service']['replicas']", 3},
		{"parameters.regions[1]", "us"},
		{"parameters.regions.0", "eu"},
		{"parameters.regions.length", 2},
		{"variables.buildConfiguration", "Release"},
		{"buildConfiguration", "Release"},
		{"item", "local-item"},
		{"env", "prod"},
		{"parameters.my-param", "hyphen"},
	}

	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			assert.Equal(t, tc.expected, e.Evaluate(tc.src, ctx))
		})
	}
}

func TestEvaluateArrayAndObjectLiterals(t *testing.T) {
	e := expr.NewEvaluator(nil)
	result := e.Evaluate("{name: 'a', values: [1, parameters.env]}", newTestContext())

	m, ok := result.(*orderedmap.Map)
	require.True(t, ok)
	assert.Equal(t, []string{"name", "values"}, m.Keys())

	values, _ := m.Get("values")
	assert.Equal(t, []interface{}{1.0, "prod"}, values)
}

func TestEvaluateStringEscapes(t *testing.T) {
	e := expr.NewEvaluator(nil)

	assert.Equal(t, `C:\src\out`, e.Evaluate(`'C:\src\out'`, nil))
	assert.Equal(t, "a\tb", e.Evaluate(`'a\tb'`, nil))
	assert.Equal(t, `\d+`, e.Evaluate(`'\d+'`, nil))
	assert.Equal(t, "it's", e.Evaluate(`'it''s'`, nil))
	assert.Equal(t, "A", e.Evaluate(`'\x41'`, nil))
}

func TestEvaluateUnresolvable(t *testing.T) {
	e := expr.NewEvaluator(nil)
	ctx := newTestContext()

	assert.True(t, expr.IsUndefined(e.Evaluate("parameters.missing", ctx)))
	assert.True(t, expr.IsUndefined(e.Evaluate("unknownName", ctx)))
	assert.True(t, expr.IsUndefined(e.Evaluate("parameters.missing.deeper", ctx)))
	assert.True(t, expr.IsUndefined(e.Evaluate("", ctx)))

	// not an expression and not a path: the text itself
	assert.Equal(t, "not an expression", e.Evaluate("not an expression", ctx))
	assert.Equal(t, "a +", e.Evaluate("a +", ctx))
}

func TestResolveContextValueMissingKeys(t *testing.T) {
	ctx := newTestContext()

	assert.True(t, expr.IsUndefined(expr.ResolveContextValue("parameters.missing", ctx)))
	assert.Equal(t, "", expr.ResolveContextValue("parameters.service.missing", ctx))
	assert.Equal(t, "api", expr.ResolveContextValue("parameters.service.name", ctx))
	assert.Equal(t, "us", expr.ResolveContextValue("parameters.regions[1]", ctx))
	assert.True(t, expr.IsUndefined(expr.ResolveContextValue("nothing.here", ctx)))
}

func TestEvaluateCallsFunctions(t *testing.T) {
	e := expr.NewEvaluator(nil)
	ctx := newTestContext()

	assert.Equal(t, expr.RenderedBool(true), e.Evaluate("eq(parameters.env, 'PROD')", ctx))
	assert.Equal(t, expr.RenderedBool(true), e.Evaluate("Eq(parameters.env, 'prod')", ctx))
	assert.Equal(t, expr.RenderedBool(false), e.Evaluate("and(parameters.enabled, eq(parameters.count, 3))", ctx))
	assert.Equal(t, expr.RenderedBool(true), e.Evaluate("or(false, contains(parameters.env, 'ro'))", ctx))
	assert.Equal(t, expr.RenderedBool(true), e.Evaluate("containsValue(parameters.regions, 'US')", ctx))
	assert.Equal(t, expr.RenderedBool(true), e.Evaluate("in(parameters.env, 'dev', 'prod')", ctx))
	assert.Equal(t, expr.RenderedBool(true), e.Evaluate("notIn(parameters.env, 'dev')", ctx))
	assert.Equal(t, "x", e.Evaluate("coalesce(parameters.missing, '', 'x')", ctx))
	assert.Equal(t, "prod-2 {}", e.Evaluate("format('{0}-{1} {{}}', parameters.env, parameters.count)", ctx))
	assert.Equal(t, "eu,us", e.Evaluate("join(',', parameters.regions)", ctx))
	assert.Equal(t, "PROD", e.Evaluate("upper(parameters.env)", ctx))
	assert.Equal(t, []interface{}{"a", "b"}, e.Evaluate("split('a;b', ';')", ctx))
	assert.Equal(t, 2, e.Evaluate("length(parameters.regions)", ctx))
	assert.Equal(t, `["eu","us"]`, e.Evaluate("convertToJson(parameters.regions)", ctx))
	assert.Equal(t, "yes", e.Evaluate("iif(parameters.enabled, 'yes', 'no')", ctx))
	assert.Equal(t, expr.RenderedBool(true), e.Evaluate("succeeded()", ctx))
	assert.Equal(t, expr.RenderedBool(false), e.Evaluate("failed()", ctx))
	assert.True(t, expr.IsUndefined(e.Evaluate("noSuchFunction(1)", ctx)))
	assert.True(t, expr.IsUndefined(e.Evaluate("eq(1)", ctx)))
}

func TestEvaluateMemberFunctionValue(t *testing.T) {
	obj := orderedmap.NewMap()
	obj.Set("twice", expr.Func(func(args []interface{}) interface{} {
		return expr.Stringify(args[0]) + expr.Stringify(args[0])
	}))
	ctx := newTestContext()
	ctx.locals.Set("helpers", obj)

	assert.Equal(t, "abab", expr.NewEvaluator(nil).Evaluate("helpers.twice('ab')", ctx))
}

func TestEvaluatorCachesParses(t *testing.T) {
	e := expr.NewEvaluator(nil)
	ctx := newTestContext()

	e.Evaluate("parameters.env", ctx)
	e.Evaluate("parameters.env", ctx)
	e.Evaluate("1 +", ctx)
	assert.Equal(t, 2, e.CachedCount())

	e.Reset()
	assert.Equal(t, 0, e.CachedCount())
}

func TestEvaluateNeverPanics(t *testing.T) {
	e := expr.NewEvaluator(nil)
	ctx := newTestContext()
	f := fuzz.New().NilChance(0)

	alphabet := []string{"parameters", ".", "env", "(", ")", "[", "]", "{", "}", "'", `"`, "\\",
		"?", ":", "??", "&&", "||", "!", "==", "<", "+", "-", "*", "/", "%", ",", "1", "0.5", " ", "eq", "x"}

	for i := 0; i < 500; i++ {
		var picks []uint8
		f.Fuzz(&picks)

		src := ""
		for _, pick := range picks {
			src += alphabet[int(pick)%len(alphabet)]
		}

		require.NotPanics(t, func() { e.Evaluate(src, ctx) }, "source: %q", src)
	}
}
