// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlfmt

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

type PrinterOpts struct {
	// Compat collapses blank lines after keys and list items and ends the
	// document with two blank lines, as the hosted runtime prints it.
	Compat bool
}

type Printer struct {
	opts PrinterOpts
}

func NewPrinter(opts PrinterOpts) *Printer {
	return &Printer{opts}
}

func (p *Printer) Print(writer io.Writer, node *yaml.Node) error {
	str, err := p.PrintStr(node)
	if err != nil {
		return err
	}
	_, err = io.WriteString(writer, str)
	return err
}

func (p *Printer) PrintStr(node *yaml.Node) (string, error) {
	if node == nil || (node.Kind == yaml.DocumentNode && len(node.Content) == 0) {
		return TouchUp("", p.opts.Compat), nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	err := enc.Encode(node)
	if err != nil {
		return "", fmt.Errorf("Encoding YAML: %s", err)
	}
	err = enc.Close()
	if err != nil {
		return "", fmt.Errorf("Encoding YAML: %s", err)
	}

	return TouchUp(trimKeptFoldedScalars(buf.String()), p.opts.Compat), nil
}

var (
	blockScalarHeaderRegexp = regexp.MustCompile(`(^|:\s|-\s)[|>][-+]?[1-9]?\s*$`)
	listItemRegexp          = regexp.MustCompile(`^\s*-(\s|$)`)
	mappingKeyRegexp        = regexp.MustCompile(`^\s*[^\s#'"-][^:]*:(\s|$)`)
	keptFoldedHeaderRegexp  = regexp.MustCompile(`(^|:\s|-\s)>[1-9]?\+\s*$`)
)

// trimKeptFoldedScalars drops one blank line from the end of every
// keep-chomped folded scalar. The encoder writes a break too many after
// the last content line of such scalars, so without this the printed
// text reads back with an extra trailing newline.
func trimKeptFoldedScalars(text string) string {
	lines := strings.Split(text, "\n")
	last := len(lines)
	if last > 0 && lines[last-1] == "" {
		// terminator of the final line
		last--
	}

	result := make([]string, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		result = append(result, line)
		if i >= last || !keptFoldedHeaderRegexp.MatchString(line) {
			continue
		}

		indent := blockParentIndent(line)
		end := i + 1
		for end < last && (strings.TrimSpace(lines[end]) == "" || indentOf(lines[end]) > indent) {
			end++
		}
		blankFrom := end
		for blankFrom > i+1 && strings.TrimSpace(lines[blankFrom-1]) == "" {
			blankFrom--
		}

		result = append(result, lines[i+1:end]...)
		if blankFrom < end {
			result = result[:len(result)-1]
		}
		i = end - 1
	}
	return strings.Join(result, "\n")
}

// blockParentIndent is the column of the node owning a block scalar
// header; content lines are indented deeper than it.
func blockParentIndent(line string) int {
	col := indentOf(line)
	rest := line[col:]
	for strings.HasPrefix(rest, "- ") {
		col += 2
		rest = rest[2:]
	}
	if strings.HasPrefix(rest, ">") && col >= 2 {
		// sequence item scalar; content is indented past the dash
		return col - 2
	}
	return col
}

func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " "))
}

// TouchUp normalizes blank lines and the end of the document.
func TouchUp(text string, compat bool) string {
	if !compat {
		trimmed := strings.TrimRight(text, "\n")
		if trimmed == "" {
			return ""
		}
		return trimmed + "\n"
	}

	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	result := make([]string, 0, len(lines))

	blockIndent := -1
	prevStructural := false

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			if blockIndent < 0 && prevStructural {
				continue
			}
			result = append(result, line)
			continue
		}

		indent := indentOf(line)
		if blockIndent >= 0 && indent > blockIndent {
			// block scalar content
			result = append(result, line)
			prevStructural = false
			continue
		}
		blockIndent = -1

		result = append(result, line)
		prevStructural = listItemRegexp.MatchString(line) || mappingKeyRegexp.MatchString(line)
		if blockScalarHeaderRegexp.MatchString(line) {
			blockIndent = indent
			prevStructural = false
		}
	}

	out := strings.TrimRight(strings.Join(result, "\n"), "\n")
	if out == "" {
		return "\n\n"
	}
	return out + "\n\n\n"
}
