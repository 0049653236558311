package ingest

import (
	"fmt"
	"strings"
	"unicode"
)

// The report embeds metadata as Python dict literals, e.g.
//
//	{'satellite': 'INSAT-3D', 'doc_section': None, 'keywords': ['a', 'b']}
//
// This is a minimal reader for exactly that shape: single-quoted
// strings, None/True/False, flat lists and bare numbers. It is not a
// general Python parser.

type metaDict map[string]any

func (m metaDict) str(key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func (m metaDict) list(key string) []string {
	items, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func parseMetaLiteral(s string) (metaDict, error) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no dict literal found")
	}

	p := &literalParser{input: s[start : end+1]}
	dict, err := p.parseDict()
	if err != nil {
		return nil, err
	}
	return dict, nil
}

type literalParser struct {
	input string
	pos   int
}

func (p *literalParser) parseDict() (metaDict, error) {
	if err := p.expect('{'); err != nil {
		return nil, err
	}
	dict := make(metaDict)
	p.skipSpace()
	if p.peek() == '}' {
		p.pos++
		return dict, nil
	}
	for {
		p.skipSpace()
		key, err := p.parseString()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if err := p.expect(':'); err != nil {
			return nil, err
		}
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		dict[key] = value

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case '}':
			p.pos++
			return dict, nil
		default:
			return nil, fmt.Errorf("unexpected character at %d", p.pos)
		}
	}
}

func (p *literalParser) parseValue() (any, error) {
	p.skipSpace()
	switch c := p.peek(); {
	case c == '\'' || c == '"':
		return p.parseString()
	case c == '[':
		return p.parseList()
	case c == '{':
		return p.parseDict()
	case c == 'N' && strings.HasPrefix(p.input[p.pos:], "None"):
		p.pos += len("None")
		return nil, nil
	case c == 'T' && strings.HasPrefix(p.input[p.pos:], "True"):
		p.pos += len("True")
		return true, nil
	case c == 'F' && strings.HasPrefix(p.input[p.pos:], "False"):
		p.pos += len("False")
		return false, nil
	case c == '-' || unicode.IsDigit(rune(c)):
		return p.parseNumber()
	default:
		return nil, fmt.Errorf("unexpected value at %d", p.pos)
	}
}

func (p *literalParser) parseList() ([]any, error) {
	if err := p.expect('['); err != nil {
		return nil, err
	}
	var items []any
	p.skipSpace()
	if p.peek() == ']' {
		p.pos++
		return items, nil
	}
	for {
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		items = append(items, value)

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case ']':
			p.pos++
			return items, nil
		default:
			return nil, fmt.Errorf("unexpected character in list at %d", p.pos)
		}
	}
}

func (p *literalParser) parseString() (string, error) {
	quote := p.peek()
	if quote != '\'' && quote != '"' {
		return "", fmt.Errorf("expected string at %d", p.pos)
	}
	p.pos++

	var b strings.Builder
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		switch c {
		case '\\':
			if p.pos+1 < len(p.input) {
				b.WriteByte(p.input[p.pos+1])
				p.pos += 2
				continue
			}
			return "", fmt.Errorf("dangling escape at %d", p.pos)
		case quote:
			p.pos++
			return b.String(), nil
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return "", fmt.Errorf("unterminated string")
}

func (p *literalParser) parseNumber() (any, error) {
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c == '-' || c == '.' || unicode.IsDigit(rune(c)) {
			p.pos++
			continue
		}
		break
	}
	if p.pos == start {
		return nil, fmt.Errorf("expected number at %d", start)
	}
	return p.input[start:p.pos], nil
}

func (p *literalParser) expect(c byte) error {
	p.skipSpace()
	if p.pos >= len(p.input) || p.input[p.pos] != c {
		return fmt.Errorf("expected %q at %d", string(c), p.pos)
	}
	p.pos++
	return nil
}

func (p *literalParser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *literalParser) skipSpace() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}
