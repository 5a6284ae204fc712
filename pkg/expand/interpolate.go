// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package expand

import (
	"strings"

	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/expr"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/formatting"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/orderedmap"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/scope"
)

func (w walker) str(source string, sc *scope.Scope) (interface{}, bool, error) {
	if !strings.Contains(source, "${{") {
		return source, true, nil
	}

	if exprText, ok := FullExpression(source); ok {
		result := w.e.evaluator.Evaluate(exprText, sc)

		switch typedResult := result.(type) {
		case string:
			if typedResult != source {
				w.registerSubstitution(exprText, typedResult, sc)
			}
			return typedResult, true, nil

		case []interface{}, *orderedmap.Map:
			// values coming out of parameters may still carry directives
			// or template references that belong to the current scope
			return w.value(orderedmap.DeepCopyValue(typedResult), sc)

		default:
			if expr.IsUndefined(result) {
				return nil, false, nil
			}
			return result, true, nil
		}
	}

	result := w.interpolate(source, sc)
	w.registerInterpolation(source, result, sc)
	return result, true, nil
}

func (w walker) registerSubstitution(exprText, result string, sc *scope.Scope) {
	table := sc.Formatting
	if table == nil {
		return
	}
	if strings.Contains(result, ":") && !strings.Contains(result, "\n") {
		table.Register(sc.ExpansionPath, result, formatting.StyleSingle)
		return
	}
	if name, ok := ParameterRef(exprText); ok {
		if declPath, found := sc.ParameterMap[name]; found {
			table.Relocate(declPath, sc.ExpansionPath, result)
		}
	}
}

func (w walker) registerInterpolation(source, result string, sc *scope.Scope) {
	table := sc.Formatting
	if table == nil || result == source {
		return
	}
	if !strings.Contains(result, "\n") {
		table.Register(sc.ExpansionPath, result, formatting.StyleExempt)
		return
	}

	table.MarkScript(result, lastContentLineIsDirective(source))
	if style, found := table.Lookup(sc.ExpansionPath, source); found && style == formatting.StyleDouble {
		table.Register(sc.ExpansionPath, result, formatting.StyleDouble)
	}
}

// lastContentLineIsDirective reports whether the last non-blank line of
// text consisted of a single expression and nothing else.
func lastContentLineIsDirective(text string) bool {
	lines := strings.Split(text, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			_, full := FullExpression(lines[i])
			return full
		}
	}
	return false
}

// interpolate substitutes every ${{ }} occurrence line by line. Lines that
// only held expressions which rendered empty become blank lines.
func (w walker) interpolate(text string, sc *scope.Scope) string {
	if !strings.Contains(text, "${{") {
		return text
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if !strings.Contains(line, "${{") {
			continue
		}
		replaced := interpolationRegexp.ReplaceAllStringFunc(line, func(match string) string {
			return w.interpolationValue(match[3:len(match)-2], sc)
		})
		if strings.TrimSpace(replaced) == "" {
			replaced = ""
		}
		lines[i] = replaced
	}
	return strings.Join(lines, "\n")
}

func (w walker) interpolationValue(exprText string, sc *scope.Scope) string {
	exprText = strings.TrimSpace(exprText)
	result := w.e.evaluator.Evaluate(exprText, sc)

	if expr.IsUndefined(result) {
		// left for the runner to resolve at execution time
		if name, ok := ParameterRef(exprText); ok {
			return "$(" + name + ")"
		}
		return ""
	}
	if result == nil {
		return ""
	}
	return expr.Stringify(result)
}
