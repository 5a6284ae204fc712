// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package filepos

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Position is a 1-based line within a named source. Line 0 means the
// line is unknown.
type Position struct {
	lineNum int
	file    string
}

func NewPositionInFile(lineNum int, file string) *Position {
	if lineNum <= 0 {
		panic("Lines are 1 based")
	}
	return &Position{lineNum: lineNum, file: file}
}

// NewUnknownPositionInFile produces a Position of a known file at an unknown line.
func NewUnknownPositionInFile(file string) *Position {
	return &Position{file: file}
}

var yamlLineErrRegexp = regexp.MustCompile(`^yaml: line (\d+): (.+)$`)

// FromYAMLError extracts the line a YAML decoder complained about.
// The returned message has the line prefix removed.
func FromYAMLError(err error, file string) (*Position, string) {
	msg := err.Error()
	if matches := yamlLineErrRegexp.FindStringSubmatch(msg); len(matches) == 3 {
		lineNum, convErr := strconv.Atoi(matches[1])
		if convErr == nil && lineNum > 0 {
			return NewPositionInFile(lineNum, file), matches[2]
		}
	}
	return NewUnknownPositionInFile(file), strings.TrimPrefix(msg, "yaml: ")
}

func (p *Position) IsKnown() bool { return p != nil && p.lineNum > 0 }

func (p *Position) LineNum() int {
	if !p.IsKnown() {
		panic("Position is unknown")
	}
	return p.lineNum
}

func (p *Position) GetFile() string {
	if p == nil {
		return ""
	}
	return p.file
}

func (p *Position) AsString() string {
	return "line " + p.AsCompactString()
}

func (p *Position) AsCompactString() string {
	filePrefix := p.GetFile()
	if len(filePrefix) > 0 {
		filePrefix += ":"
	}
	if p.IsKnown() {
		return fmt.Sprintf("%s%d", filePrefix, p.lineNum)
	}
	return filePrefix + "?"
}
