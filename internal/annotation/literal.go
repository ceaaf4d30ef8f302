package annotation

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// EvalLiteral interprets raw tag text as a literal value. The accepted
// grammar is JSON extended with single-quoted strings, bare identifiers
// (which evaluate to themselves as strings) and trailing commas. Nothing is
// ever executed; malformed input returns an error.
func EvalLiteral(raw string) (any, error) {
	p := &literalParser{input: raw}
	p.skipSpace()
	if p.eof() {
		return nil, fmt.Errorf("empty literal")
	}
	val, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.eof() {
		return nil, fmt.Errorf("unexpected trailing input at offset %d", p.pos)
	}
	return val, nil
}

type literalParser struct {
	input string
	pos   int
}

func (p *literalParser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *literalParser) peek() byte {
	return p.input[p.pos]
}

func (p *literalParser) skipSpace() {
	for !p.eof() && unicode.IsSpace(rune(p.input[p.pos])) {
		p.pos++
	}
}

func (p *literalParser) parseValue() (any, error) {
	switch c := p.peek(); {
	case c == '\'' || c == '"':
		return p.parseString(c)
	case c == '[':
		return p.parseArray()
	case c == '{':
		return p.parseObject()
	case c == '-' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	case isIdentStart(c):
		return p.parseIdent()
	default:
		return nil, fmt.Errorf("unexpected character %q at offset %d", c, p.pos)
	}
}

func (p *literalParser) parseString(quote byte) (string, error) {
	start := p.pos
	p.pos++ // opening quote
	var b strings.Builder
	for !p.eof() {
		c := p.input[p.pos]
		switch c {
		case quote:
			p.pos++
			return b.String(), nil
		case '\\':
			p.pos++
			if p.eof() {
				return "", fmt.Errorf("unterminated escape in string at offset %d", start)
			}
			esc := p.input[p.pos]
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '\\', '\'', '"', '/':
				b.WriteByte(esc)
			default:
				return "", fmt.Errorf("unsupported escape \\%c at offset %d", esc, p.pos)
			}
			p.pos++
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return "", fmt.Errorf("unterminated string starting at offset %d", start)
}

func (p *literalParser) parseNumber() (any, error) {
	start := p.pos
	if p.peek() == '-' {
		p.pos++
	}
	for !p.eof() {
		c := p.peek()
		if (c >= '0' && c <= '9') || c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-' {
			p.pos++
			continue
		}
		break
	}
	text := p.input[start:p.pos]
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", text, err)
	}
	return f, nil
}

func (p *literalParser) parseIdent() (any, error) {
	start := p.pos
	for !p.eof() && isIdentPart(p.peek()) {
		p.pos++
	}
	word := p.input[start:p.pos]
	switch word {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "null", "undefined":
		return nil, nil
	default:
		// Bare identifiers evaluate to themselves as strings.
		return word, nil
	}
}

func (p *literalParser) parseArray() (any, error) {
	p.pos++ // [
	var out []any
	for {
		p.skipSpace()
		if p.eof() {
			return nil, fmt.Errorf("unterminated array")
		}
		if p.peek() == ']' {
			p.pos++
			return out, nil
		}
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		out = append(out, val)
		p.skipSpace()
		if p.eof() {
			return nil, fmt.Errorf("unterminated array")
		}
		switch p.peek() {
		case ',':
			p.pos++
		case ']':
		default:
			return nil, fmt.Errorf("expected ',' or ']' at offset %d", p.pos)
		}
	}
}

func (p *literalParser) parseObject() (any, error) {
	p.pos++ // {
	out := map[string]any{}
	for {
		p.skipSpace()
		if p.eof() {
			return nil, fmt.Errorf("unterminated object")
		}
		if p.peek() == '}' {
			p.pos++
			return out, nil
		}
		var key string
		switch c := p.peek(); {
		case c == '\'' || c == '"':
			k, err := p.parseString(c)
			if err != nil {
				return nil, err
			}
			key = k
		case isIdentStart(c):
			start := p.pos
			for !p.eof() && isIdentPart(p.peek()) {
				p.pos++
			}
			key = p.input[start:p.pos]
		default:
			return nil, fmt.Errorf("expected object key at offset %d", p.pos)
		}
		p.skipSpace()
		if p.eof() || p.peek() != ':' {
			return nil, fmt.Errorf("expected ':' after key %q", key)
		}
		p.pos++
		p.skipSpace()
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		out[key] = val
		p.skipSpace()
		if p.eof() {
			return nil, fmt.Errorf("unterminated object")
		}
		switch p.peek() {
		case ',':
			p.pos++
		case '}':
		default:
			return nil, fmt.Errorf("expected ',' or '}' at offset %d", p.pos)
		}
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9') || c == '-'
}
