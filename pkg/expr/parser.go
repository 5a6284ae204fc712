// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package expr

import (
	"fmt"
	"strings"
)

type node interface{}

type literalNode struct{ value interface{} }

type identNode struct{ name string }

type memberNode struct {
	object   node
	property string
}

type indexNode struct {
	object node
	index  node
}

type callNode struct {
	callee node
	args   []node
}

type unaryNode struct {
	op      string
	operand node
}

type binaryNode struct {
	op          string
	left, right node
}

type conditionalNode struct {
	test, consequent, alternate node
}

type arrayNode struct{ elements []node }

type objectNode struct {
	keys   []string
	values []node
}

type parser struct {
	tokens []token
	pos    int
}

func parse(src string) (node, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	result, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokenEOF {
		return nil, fmt.Errorf("unexpected token %q at %d", tok.text, tok.pos)
	}
	return result, nil
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) advance() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) isPunct(texts ...string) bool {
	tok := p.peek()
	if tok.kind != tokenPunct {
		return false
	}
	for _, text := range texts {
		if tok.text == text {
			return true
		}
	}
	return false
}

func (p *parser) expect(text string) error {
	if !p.isPunct(text) {
		tok := p.peek()
		if tok.kind == tokenEOF {
			return fmt.Errorf("expected %q but reached end of expression", text)
		}
		return fmt.Errorf("expected %q but found %q at %d", text, tok.text, tok.pos)
	}
	p.advance()
	return nil
}

func (p *parser) parseConditional() (node, error) {
	test, err := p.parseNullish()
	if err != nil {
		return nil, err
	}
	if !p.isPunct("?") {
		return test, nil
	}
	p.advance()
	consequent, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	if err := p.expect(":"); err != nil {
		return nil, err
	}
	alternate, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	return conditionalNode{test, consequent, alternate}, nil
}

func (p *parser) parseNullish() (node, error) {
	return p.parseBinary(p.parseOr, "??")
}

func (p *parser) parseOr() (node, error) {
	return p.parseBinary(p.parseAnd, "||")
}

func (p *parser) parseAnd() (node, error) {
	return p.parseBinary(p.parseEquality, "&&")
}

func (p *parser) parseEquality() (node, error) {
	return p.parseBinary(p.parseRelational, "==", "!=", "===", "!==")
}

func (p *parser) parseRelational() (node, error) {
	return p.parseBinary(p.parseAdditive, "<", "<=", ">", ">=")
}

func (p *parser) parseAdditive() (node, error) {
	return p.parseBinary(p.parseMultiplicative, "+", "-")
}

func (p *parser) parseMultiplicative() (node, error) {
	return p.parseBinary(p.parseUnary, "*", "/", "%")
}

func (p *parser) parseBinary(next func() (node, error), ops ...string) (node, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for p.isPunct(ops...) {
		op := p.advance().text
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op, left, right}
	}
	return left, nil
}

func (p *parser) parseUnary() (node, error) {
	if p.isPunct("!", "+", "-") {
		op := p.advance().text
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return unaryNode{op, operand}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (node, error) {
	result, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		switch {
		case p.isPunct("."):
			p.advance()
			tok := p.advance()
			if tok.kind != tokenIdent && tok.kind != tokenNumber {
				return nil, fmt.Errorf("expected property name after '.' at %d", tok.pos)
			}
			result = memberNode{result, tok.text}

		case p.isPunct("["):
			p.advance()
			index, err := p.parseConditional()
			if err != nil {
				return nil, err
			}
			if err := p.expect("]"); err != nil {
				return nil, err
			}
			result = indexNode{result, index}

		case p.isPunct("("):
			p.advance()
			args, err := p.parseList(")")
			if err != nil {
				return nil, err
			}
			result = callNode{result, args}

		default:
			return result, nil
		}
	}
}

func (p *parser) parseList(closing string) ([]node, error) {
	var items []node
	for !p.isPunct(closing) {
		item, err := p.parseConditional()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if !p.isPunct(",") {
			break
		}
		p.advance()
	}
	if err := p.expect(closing); err != nil {
		return nil, err
	}
	return items, nil
}

func (p *parser) parsePrimary() (node, error) {
	tok := p.advance()

	switch tok.kind {
	case tokenNumber:
		return literalNode{tok.num}, nil

	case tokenString:
		return literalNode{tok.text}, nil

	case tokenIdent:
		switch strings.ToLower(tok.text) {
		case "true":
			return literalNode{RenderedBool(true)}, nil
		case "false":
			return literalNode{RenderedBool(false)}, nil
		case "null":
			return literalNode{nil}, nil
		case "undefined":
			return literalNode{Undefined}, nil
		}
		return identNode{tok.text}, nil

	case tokenPunct:
		switch tok.text {
		case "(":
			inner, err := p.parseConditional()
			if err != nil {
				return nil, err
			}
			if err := p.expect(")"); err != nil {
				return nil, err
			}
			return inner, nil

		case "[":
			elements, err := p.parseList("]")
			if err != nil {
				return nil, err
			}
			return arrayNode{elements}, nil

		case "{":
			return p.parseObject()
		}
		return nil, fmt.Errorf("unexpected %q at %d", tok.text, tok.pos)

	default:
		return nil, fmt.Errorf("unexpected end of expression")
	}
}

func (p *parser) parseObject() (node, error) {
	result := objectNode{}
	for !p.isPunct("}") {
		keyTok := p.advance()
		switch keyTok.kind {
		case tokenIdent, tokenString, tokenNumber:
		default:
			return nil, fmt.Errorf("expected object key at %d", keyTok.pos)
		}
		if err := p.expect(":"); err != nil {
			return nil, err
		}
		value, err := p.parseConditional()
		if err != nil {
			return nil, err
		}
		result.keys = append(result.keys, keyTok.text)
		result.values = append(result.values, value)
		if !p.isPunct(",") {
			break
		}
		p.advance()
	}
	if err := p.expect("}"); err != nil {
		return nil, err
	}
	return result, nil
}
