// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package expand

import (
	"regexp"
	"strings"

	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/orderedmap"
)

type DirectiveKind int

const (
	DirectiveNone DirectiveKind = iota
	DirectiveIf
	DirectiveElseIf
	DirectiveElse
	DirectiveEach
	DirectiveInsert
	DirectiveTemplateRef
)

func (k DirectiveKind) String() string {
	switch k {
	case DirectiveIf:
		return "if"
	case DirectiveElseIf:
		return "elseif"
	case DirectiveElse:
		return "else"
	case DirectiveEach:
		return "each"
	case DirectiveInsert:
		return "insert"
	case DirectiveTemplateRef:
		return "template"
	default:
		return "none"
	}
}

// Directive is a classified mapping key.
type Directive struct {
	Kind DirectiveKind
	// Expr is the condition or the collection expression.
	Expr string
	// Var is the loop variable of an each directive.
	Var string
}

var (
	ifRegexp     = regexp.MustCompile(`^\$\{\{\s*if\s+(.+?)\s*\}\}$`)
	elseIfRegexp = regexp.MustCompile(`^\$\{\{\s*elseif\s+(.+?)\s*\}\}$`)
	elseRegexp   = regexp.MustCompile(`^\$\{\{\s*else\s*\}\}$`)
	eachRegexp   = regexp.MustCompile(`^\$\{\{\s*each\s+([A-Za-z_][\w]*)\s+in\s+(.+?)\s*\}\}$`)
	insertRegexp = regexp.MustCompile(`^\$\{\{\s*insert\s*\}\}$`)

	interpolationRegexp = regexp.MustCompile(`\$\{\{(.*?)\}\}`)
	parameterRefRegexp  = regexp.MustCompile(`^\s*parameters\.([A-Za-z_][\w-]*)\s*$`)
)

// ClassifyKey matches a mapping key against the directive grammar.
func ClassifyKey(key string) Directive {
	key = strings.TrimSpace(key)
	if !strings.HasPrefix(key, "${{") {
		return Directive{Kind: DirectiveNone}
	}
	if matches := ifRegexp.FindStringSubmatch(key); matches != nil {
		return Directive{Kind: DirectiveIf, Expr: matches[1]}
	}
	if matches := elseIfRegexp.FindStringSubmatch(key); matches != nil {
		return Directive{Kind: DirectiveElseIf, Expr: matches[1]}
	}
	if elseRegexp.MatchString(key) {
		return Directive{Kind: DirectiveElse}
	}
	if matches := eachRegexp.FindStringSubmatch(key); matches != nil {
		return Directive{Kind: DirectiveEach, Var: matches[1], Expr: matches[2]}
	}
	if insertRegexp.MatchString(key) {
		return Directive{Kind: DirectiveInsert}
	}
	return Directive{Kind: DirectiveNone}
}

// Classify also recognizes template references.
func Classify(val interface{}) Directive {
	if IsTemplateRef(val) {
		return Directive{Kind: DirectiveTemplateRef}
	}
	if m, ok := val.(*orderedmap.Map); ok && m.Len() == 1 {
		return ClassifyKey(m.Items()[0].Key)
	}
	return Directive{Kind: DirectiveNone}
}

func IsTemplateRef(val interface{}) bool {
	m, ok := val.(*orderedmap.Map)
	return ok && m.Has("template")
}

// FullExpression returns the payload when s is exactly one ${{ }}
// surrounded by optional whitespace.
func FullExpression(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "${{") || !strings.HasSuffix(trimmed, "}}") {
		return "", false
	}
	if strings.Count(trimmed, "${{") != 1 {
		return "", false
	}
	inner := trimmed[3 : len(trimmed)-2]
	if strings.Contains(inner, "}}") {
		return "", false
	}
	return strings.TrimSpace(inner), true
}

// ParameterRef returns X for a bare parameters.X expression.
func ParameterRef(exprText string) (string, bool) {
	matches := parameterRefRegexp.FindStringSubmatch(exprText)
	if matches == nil {
		return "", false
	}
	return matches[1], true
}
