// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package templates

import (
	"fmt"
	"strings"
)

// CallStack lists template identifiers from the root document inward.
type CallStack []string

func (s CallStack) String() string {
	var lines []string
	for i, frame := range s {
		if i == 0 {
			lines = append(lines, frame)
			continue
		}
		lines = append(lines, strings.Repeat("  ", i)+"└── "+frame)
	}
	return strings.Join(lines, "\n")
}

func (s CallStack) suffix() string {
	if len(s) == 0 {
		return ""
	}
	return "\n\nTemplate call stack:\n" + s.String()
}

func (s CallStack) with(frame string) CallStack {
	return append(append(CallStack{}, s...), frame)
}

type ParseError struct {
	Identifier string
	Err        error
	Stack      CallStack
}

func (e ParseError) Error() string {
	return fmt.Sprintf("Parsing template '%s': %s%s", e.Identifier, e.Err, e.Stack.suffix())
}

func (e ParseError) Unwrap() error { return e.Err }

type TemplateNotFoundError struct {
	Identifier string
	Path       string
	Stack      CallStack
}

func (e TemplateNotFoundError) Error() string {
	msg := "Template file not found: " + e.Identifier
	if e.Path != "" && e.Path != e.Identifier {
		msg += fmt.Sprintf(" (looked for '%s')", e.Path)
	}
	return msg + e.Stack.suffix()
}

type RepositoryUndefinedError struct {
	Alias      string
	Identifier string
	// MissingLocation is set when the repository is declared but none of
	// its location fields resolve.
	MissingLocation bool
	Stack           CallStack
}

func (e RepositoryUndefinedError) Error() string {
	hint := fmt.Sprintf("declare it under resources.repositories or pass --resource-location %s=<path>", e.Alias)
	if e.MissingLocation {
		return fmt.Sprintf("Repository '%s' used by template '%s' has no local location: "+
			"set location on its resources.repositories entry or pass --resource-location %s=<path>%s",
			e.Alias, e.Identifier, e.Alias, e.Stack.suffix())
	}
	return fmt.Sprintf("Repository '%s' used by template '%s' is not defined: %s%s",
		e.Alias, e.Identifier, hint, e.Stack.suffix())
}

// ParameterValidationError collects every problem found with the
// parameters passed to one template.
type ParameterValidationError struct {
	Identifier        string
	MissingRequired   []string
	TypeErrors        []string
	InvalidValues     []string
	UnknownParameters []string
	Stack             CallStack
}

func (e ParameterValidationError) HasErrors() bool {
	return len(e.MissingRequired)+len(e.TypeErrors)+len(e.InvalidValues)+len(e.UnknownParameters) > 0
}

func (e ParameterValidationError) Error() string {
	lines := []string{fmt.Sprintf("Invalid parameters for template '%s':", e.Identifier)}
	if len(e.MissingRequired) > 0 {
		lines = append(lines, "  missing required parameters: "+strings.Join(e.MissingRequired, ", "))
	}
	if len(e.TypeErrors) > 0 {
		lines = append(lines, "  type errors: "+strings.Join(e.TypeErrors, "; "))
	}
	if len(e.InvalidValues) > 0 {
		lines = append(lines, "  invalid values: "+strings.Join(e.InvalidValues, "; "))
	}
	if len(e.UnknownParameters) > 0 {
		lines = append(lines, "  unknown parameters: "+strings.Join(e.UnknownParameters, ", "))
	}
	return strings.Join(lines, "\n") + e.Stack.suffix()
}

type TemplateDepthError struct {
	Identifier string
	MaxDepth   int
	Stack      CallStack
}

func (e TemplateDepthError) Error() string {
	return fmt.Sprintf("Expanding template '%s': templates nested more than %d levels deep%s",
		e.Identifier, e.MaxDepth, e.Stack.suffix())
}
