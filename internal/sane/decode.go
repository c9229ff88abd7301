package sane

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/binrep/binrep/internal/binreperr"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokNumber
	tokBool
	tokEquals
	tokComma
	tokLBracket
	tokRBracket
	tokLBrace
	tokRBrace
	tokNewline
)

type token struct {
	kind tokenKind
	text string
	line int
}

// lexer turns SANE source bytes into a token stream. Comments start with '#'
// and run to end of line; they are dropped, not preserved.
type lexer struct {
	src  []byte
	pos  int
	line int
}

func newLexer(src []byte) *lexer {
	return &lexer{src: src, line: 1}
}

func (l *lexer) peekByte() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) next() (token, error) {
	for {
		for l.pos < len(l.src) && (l.src[l.pos] == ' ' || l.src[l.pos] == '\t' || l.src[l.pos] == '\r') {
			l.pos++
		}
		if l.pos < len(l.src) && l.src[l.pos] == '#' {
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
			continue
		}
		break
	}

	if l.pos >= len(l.src) {
		return token{kind: tokEOF, line: l.line}, nil
	}

	c := l.src[l.pos]
	line := l.line

	switch {
	case c == '\n':
		l.pos++
		l.line++
		return token{kind: tokNewline, line: line}, nil
	case c == '=':
		l.pos++
		return token{kind: tokEquals, line: line}, nil
	case c == ',':
		l.pos++
		return token{kind: tokComma, line: line}, nil
	case c == '[':
		l.pos++
		return token{kind: tokLBracket, line: line}, nil
	case c == ']':
		l.pos++
		return token{kind: tokRBracket, line: line}, nil
	case c == '{':
		l.pos++
		return token{kind: tokLBrace, line: line}, nil
	case c == '}':
		l.pos++
		return token{kind: tokRBrace, line: line}, nil
	case c == '"':
		return l.lexString()
	case c == '-' || (c >= '0' && c <= '9'):
		return l.lexNumber()
	case isIdentStart(c):
		return l.lexIdent()
	default:
		return token{}, fmt.Errorf("unexpected character %q at line %d", c, line)
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9') || c == '-' || c == '.'
}

func (l *lexer) lexIdent() (token, error) {
	start := l.pos
	line := l.line
	for l.pos < len(l.src) && isIdentCont(l.src[l.pos]) {
		l.pos++
	}
	text := string(l.src[start:l.pos])
	switch text {
	case "true", "false":
		return token{kind: tokBool, text: text, line: line}, nil
	default:
		return token{kind: tokIdent, text: text, line: line}, nil
	}
}

func (l *lexer) lexNumber() (token, error) {
	start := l.pos
	line := l.line
	if l.src[l.pos] == '-' {
		l.pos++
	}
	for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
		l.pos++
	}
	if l.pos < len(l.src) && l.src[l.pos] == '.' {
		l.pos++
		for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
			l.pos++
		}
	}
	return token{kind: tokNumber, text: string(l.src[start:l.pos]), line: line}, nil
}

func (l *lexer) lexString() (token, error) {
	line := l.line
	l.pos++ // opening quote
	var b strings.Builder
	for {
		if l.pos >= len(l.src) {
			return token{}, fmt.Errorf("unterminated string starting at line %d", line)
		}
		c := l.src[l.pos]
		if c == '"' {
			l.pos++
			return token{kind: tokString, text: b.String(), line: line}, nil
		}
		if c == '\n' {
			return token{}, fmt.Errorf("unterminated string starting at line %d", line)
		}
		if c == '\\' {
			l.pos++
			if l.pos >= len(l.src) {
				return token{}, fmt.Errorf("unterminated escape at line %d", line)
			}
			switch l.src[l.pos] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			default:
				return token{}, fmt.Errorf("invalid escape \\%c at line %d", l.src[l.pos], line)
			}
			l.pos++
			continue
		}
		b.WriteByte(c)
		l.pos++
	}
}

// parser consumes the token stream with one token of lookahead.
type parser struct {
	lx   *lexer
	tok  token
	peek *token
}

func newParser(src []byte) (*parser, error) {
	p := &parser{lx: newLexer(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *parser) advance() error {
	if p.peek != nil {
		p.tok = *p.peek
		p.peek = nil
		return nil
	}
	t, err := p.lx.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *parser) skipNewlines() error {
	for p.tok.kind == tokNewline {
		if err := p.advance(); err != nil {
			return err
		}
	}
	return nil
}

// Decode parses SANE source into a Document.
func Decode(src []byte) (*Document, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, binreperr.Malformed(err)
	}
	doc := NewDocument()
	var current *Object = doc.Object

	if err := p.skipNewlines(); err != nil {
		return nil, binreperr.Malformed(err)
	}

	for p.tok.kind != tokEOF {
		if p.tok.kind == tokLBracket {
			if err := p.advance(); err != nil {
				return nil, binreperr.Malformed(err)
			}
			if p.tok.kind != tokIdent {
				return nil, binreperr.Malformed(fmt.Errorf("expected section name at line %d", p.tok.line))
			}
			name := p.tok.text
			if err := p.advance(); err != nil {
				return nil, binreperr.Malformed(err)
			}
			if p.tok.kind != tokRBracket {
				return nil, binreperr.Malformed(fmt.Errorf("expected ']' at line %d", p.tok.line))
			}
			if err := p.advance(); err != nil {
				return nil, binreperr.Malformed(err)
			}
			current = doc.AddSection(name).Object
		} else if p.tok.kind == tokIdent {
			key := p.tok.text
			if err := p.advance(); err != nil {
				return nil, binreperr.Malformed(err)
			}
			if p.tok.kind != tokEquals {
				return nil, binreperr.Malformed(fmt.Errorf("expected '=' after key %q at line %d", key, p.tok.line))
			}
			if err := p.advance(); err != nil {
				return nil, binreperr.Malformed(err)
			}
			val, err := p.parseValue()
			if err != nil {
				return nil, binreperr.Malformed(err)
			}
			current.Set(key, val)
		} else {
			return nil, binreperr.Malformed(fmt.Errorf("unexpected token at line %d", p.tok.line))
		}

		if p.tok.kind != tokEOF && p.tok.kind != tokNewline {
			return nil, binreperr.Malformed(fmt.Errorf("expected newline at line %d", p.tok.line))
		}
		if err := p.skipNewlines(); err != nil {
			return nil, binreperr.Malformed(err)
		}
	}

	return doc, nil
}

func (p *parser) parseValue() (Value, error) {
	switch p.tok.kind {
	case tokString:
		s := p.tok.text
		return s, p.advance()
	case tokNumber:
		text := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		if strings.Contains(text, ".") {
			f, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, err
			}
			return f, nil
		}
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, err
		}
		return n, nil
	case tokBool:
		b := p.tok.text == "true"
		return b, p.advance()
	case tokLBracket:
		return p.parseArray()
	case tokLBrace:
		return p.parseInlineObject()
	default:
		return nil, fmt.Errorf("unexpected value token at line %d", p.tok.line)
	}
}

func (p *parser) parseArray() ([]Value, error) {
	if err := p.advance(); err != nil { // consume '['
		return nil, err
	}
	var items []Value
	for {
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
		if p.tok.kind == tokRBracket {
			return items, p.advance()
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		items = append(items, v)
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
		if p.tok.kind == tokComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
		if p.tok.kind == tokRBracket {
			return items, p.advance()
		}
		return nil, fmt.Errorf("expected ',' or ']' at line %d", p.tok.line)
	}
}

func (p *parser) parseInlineObject() (*Object, error) {
	if err := p.advance(); err != nil { // consume '{'
		return nil, err
	}
	obj := NewObject()
	for {
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
		if p.tok.kind == tokRBrace {
			return obj, p.advance()
		}
		if p.tok.kind != tokIdent {
			return nil, fmt.Errorf("expected key in inline object at line %d", p.tok.line)
		}
		key := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.kind != tokEquals {
			return nil, fmt.Errorf("expected '=' in inline object at line %d", p.tok.line)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		obj.Set(key, val)
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
		if p.tok.kind == tokComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
		if p.tok.kind == tokRBrace {
			return obj, p.advance()
		}
		return nil, fmt.Errorf("expected ',' or '}' in inline object at line %d", p.tok.line)
	}
}
