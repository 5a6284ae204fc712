// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package expr

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenNumber
	tokenString
	tokenIdent
	tokenPunct
)

type token struct {
	kind tokenKind
	text string
	num  float64
	pos  int
}

// Longest operators first so greedy matching works.
var punctuators = []string{
	"===", "!==",
	"==", "!=", "<=", ">=", "&&", "||", "??",
	"(", ")", "[", "]", "{", "}", ",", ".", ":", "?",
	"!", "<", ">", "+", "-", "*", "/", "%",
}

type lexer struct {
	src    []rune
	pos    int
	tokens []token
}

func tokenize(src string) ([]token, error) {
	l := &lexer{src: []rune(src)}
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		l.tokens = append(l.tokens, tok)
		if tok.kind == tokenEOF {
			return l.tokens, nil
		}
	}
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.src) && unicode.IsSpace(l.src[l.pos]) {
		l.pos++
	}
	if l.pos >= len(l.src) {
		return token{kind: tokenEOF, pos: l.pos}, nil
	}

	start := l.pos
	ch := l.src[l.pos]

	switch {
	case ch == '\'' || ch == '"':
		str, err := l.readString(ch)
		if err != nil {
			return token{}, err
		}
		return token{kind: tokenString, text: str, pos: start}, nil

	case unicode.IsDigit(ch) && l.afterDot():
		// a.0.b indexes rather than reading "0." as a number
		for l.pos < len(l.src) && unicode.IsDigit(l.src[l.pos]) {
			l.pos++
		}
		text := string(l.src[start:l.pos])
		num, _ := strconv.ParseFloat(text, 64)
		return token{kind: tokenNumber, text: text, num: num, pos: start}, nil

	case unicode.IsDigit(ch) || (ch == '.' && l.peekIsDigit(1)):
		return l.readNumber()

	case ch == '_' || ch == '$' || unicode.IsLetter(ch):
		for l.pos < len(l.src) && isIdentRune(l.src[l.pos]) {
			l.pos++
		}
		return token{kind: tokenIdent, text: string(l.src[start:l.pos]), pos: start}, nil
	}

	rest := string(l.src[l.pos:])
	for _, punct := range punctuators {
		if strings.HasPrefix(rest, punct) {
			l.pos += len([]rune(punct))
			return token{kind: tokenPunct, text: punct, pos: start}, nil
		}
	}
	return token{}, fmt.Errorf("unexpected character %q at %d", ch, start)
}

func isIdentRune(ch rune) bool {
	return ch == '_' || ch == '$' || unicode.IsLetter(ch) || unicode.IsDigit(ch)
}

func (l *lexer) afterDot() bool {
	if len(l.tokens) == 0 {
		return false
	}
	last := l.tokens[len(l.tokens)-1]
	return last.kind == tokenPunct && last.text == "."
}

func (l *lexer) peekIsDigit(offset int) bool {
	idx := l.pos + offset
	return idx < len(l.src) && unicode.IsDigit(l.src[idx])
}

func (l *lexer) readNumber() (token, error) {
	start := l.pos
	for l.pos < len(l.src) && (unicode.IsDigit(l.src[l.pos]) || l.src[l.pos] == '.') {
		l.pos++
	}
	if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		l.pos++
		if l.pos < len(l.src) && (l.src[l.pos] == '+' || l.src[l.pos] == '-') {
			l.pos++
		}
		for l.pos < len(l.src) && unicode.IsDigit(l.src[l.pos]) {
			l.pos++
		}
	}
	text := string(l.src[start:l.pos])
	num, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return token{}, fmt.Errorf("invalid number %q", text)
	}
	return token{kind: tokenNumber, text: text, num: num, pos: start}, nil
}

// readString accepts JS-style escapes. A backslash that does not start a
// known escape is kept literally and a doubled single quote inside a single
// quoted literal is one quote.
func (l *lexer) readString(quote rune) (string, error) {
	l.pos++ // opening quote
	var sb strings.Builder

	for l.pos < len(l.src) {
		ch := l.src[l.pos]

		switch {
		case ch == quote:
			if quote == '\'' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '\'' {
				sb.WriteRune('\'')
				l.pos += 2
				continue
			}
			l.pos++
			return sb.String(), nil

		case ch == '\\':
			if l.pos+1 >= len(l.src) {
				sb.WriteRune('\\')
				l.pos++
				continue
			}
			consumed, ok := l.readEscape(&sb)
			if !ok {
				sb.WriteRune('\\')
				l.pos++
				continue
			}
			l.pos += consumed

		default:
			sb.WriteRune(ch)
			l.pos++
		}
	}
	return "", fmt.Errorf("unterminated string literal")
}

func (l *lexer) readEscape(sb *strings.Builder) (int, bool) {
	esc := l.src[l.pos+1]
	simple := map[rune]rune{
		'\\': '\\', '\'': '\'', '"': '"', 'n': '\n', 'r': '\r',
		't': '\t', 'b': '\b', 'f': '\f', 'v': '\v', '0': 0,
	}
	if repl, found := simple[esc]; found {
		sb.WriteRune(repl)
		return 2, true
	}

	hexLen := 0
	switch esc {
	case 'x':
		hexLen = 2
	case 'u':
		hexLen = 4
	default:
		return 0, false
	}
	end := l.pos + 2 + hexLen
	if end > len(l.src) {
		return 0, false
	}
	code, err := strconv.ParseUint(string(l.src[l.pos+2:end]), 16, 32)
	if err != nil {
		return 0, false
	}
	sb.WriteRune(rune(code))
	return 2 + hexLen, true
}
