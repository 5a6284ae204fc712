// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package formatting

import (
	"strconv"
	"strings"
)

// Path is a structural location: string keys and int indexes.
type Path []interface{}

// Append returns a new path; the receiver is never modified.
func (p Path) Append(segments ...interface{}) Path {
	result := make(Path, 0, len(p)+len(segments))
	result = append(result, p...)
	return append(result, segments...)
}

// Normalize drops segments that are directives so a slot matches before
// and after its enclosing directive key is expanded away.
func (p Path) Normalize() Path {
	var result Path
	for _, segment := range p {
		if str, ok := segment.(string); ok && strings.Contains(str, "${{") {
			continue
		}
		result = append(result, segment)
	}
	return result
}

// Names is the normalized path without sequence indexes.
func (p Path) Names() []string {
	var result []string
	for _, segment := range p.Normalize() {
		if str, ok := segment.(string); ok {
			result = append(result, str)
		}
	}
	return result
}

func (p Path) String() string {
	pieces := make([]string, 0, len(p))
	for _, segment := range p {
		switch typedSegment := segment.(type) {
		case int:
			pieces = append(pieces, strconv.Itoa(typedSegment))
		case string:
			pieces = append(pieces, typedSegment)
		}
	}
	return strings.Join(pieces, ".")
}

// Key is the normalized structural key for a scalar at this path.
func (p Path) Key(content string) string {
	return p.Normalize().String() + ":" + content
}

// LastName returns the innermost string key, if any.
func (p Path) LastName() string {
	for i := len(p) - 1; i >= 0; i-- {
		if str, ok := p[i].(string); ok && !strings.Contains(str, "${{") {
			return str
		}
	}
	return ""
}
