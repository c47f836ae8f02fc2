// Package jsonmat implements layer L3b, JSON ingestion: a minimal
// hand-written JSON reader (not encoding/json, matching the original
// tool's bespoke parser) and the schema walk that merges a decoded
// document into a matdb.Database (spec §2, §4.5).
package jsonmat

import (
	"strconv"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/ce2cdb/matcdb/internal/matdb"
	"golang.org/x/xerrors"
)

// parser is a minimal recursive-descent JSON reader producing matdb.Value
// trees directly, so jsonmat and the component database share one value
// representation end to end.
type parser struct {
	s   string
	pos int
}

// Parse decodes a complete JSON document into a matdb.Value.
func Parse(data []byte) (matdb.Value, error) {
	p := &parser{s: string(data)}
	p.skipSpace()
	v, err := p.parseValue()
	if err != nil {
		return matdb.Value{}, err
	}
	p.skipSpace()
	if p.pos != len(p.s) {
		return matdb.Value{}, xerrors.Errorf("jsonmat: trailing data at offset %d", p.pos)
	}
	return v, nil
}

func (p *parser) skipSpace() {
	for p.pos < len(p.s) {
		switch p.s[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) parseValue() (matdb.Value, error) {
	if p.pos >= len(p.s) {
		return matdb.Value{}, xerrors.New("jsonmat: unexpected end of input")
	}
	switch c := p.s[p.pos]; {
	case c == '{':
		return p.parseObject()
	case c == '[':
		return p.parseArray()
	case c == '"':
		s, err := p.parseString()
		return matdb.StringValue(s), err
	case c == 't':
		return p.parseLiteral("true", matdb.BoolValue(true))
	case c == 'f':
		return p.parseLiteral("false", matdb.BoolValue(false))
	case c == 'n':
		return p.parseLiteral("null", matdb.NullValue())
	case c == '-' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	default:
		return matdb.Value{}, xerrors.Errorf("jsonmat: unexpected character %q at offset %d", c, p.pos)
	}
}

func (p *parser) parseLiteral(lit string, v matdb.Value) (matdb.Value, error) {
	if p.pos+len(lit) > len(p.s) || p.s[p.pos:p.pos+len(lit)] != lit {
		return matdb.Value{}, xerrors.Errorf("jsonmat: expected %q at offset %d", lit, p.pos)
	}
	p.pos += len(lit)
	return v, nil
}

func (p *parser) parseObject() (matdb.Value, error) {
	p.pos++ // '{'
	var keys []string
	fields := make(map[string]matdb.Value)
	p.skipSpace()
	if p.pos < len(p.s) && p.s[p.pos] == '}' {
		p.pos++
		return matdb.StructValue(keys, fields), nil
	}
	for {
		p.skipSpace()
		if p.pos >= len(p.s) || p.s[p.pos] != '"' {
			return matdb.Value{}, xerrors.Errorf("jsonmat: expected object key at offset %d", p.pos)
		}
		key, err := p.parseString()
		if err != nil {
			return matdb.Value{}, err
		}
		p.skipSpace()
		if p.pos >= len(p.s) || p.s[p.pos] != ':' {
			return matdb.Value{}, xerrors.Errorf("jsonmat: expected ':' at offset %d", p.pos)
		}
		p.pos++
		p.skipSpace()
		val, err := p.parseValue()
		if err != nil {
			return matdb.Value{}, err
		}
		if _, seen := fields[key]; !seen {
			keys = append(keys, key)
		}
		fields[key] = val
		p.skipSpace()
		if p.pos >= len(p.s) {
			return matdb.Value{}, xerrors.New("jsonmat: unterminated object")
		}
		if p.s[p.pos] == ',' {
			p.pos++
			continue
		}
		if p.s[p.pos] == '}' {
			p.pos++
			break
		}
		return matdb.Value{}, xerrors.Errorf("jsonmat: expected ',' or '}' at offset %d", p.pos)
	}
	return matdb.StructValue(keys, fields), nil
}

func (p *parser) parseArray() (matdb.Value, error) {
	p.pos++ // '['
	var items []matdb.Value
	p.skipSpace()
	if p.pos < len(p.s) && p.s[p.pos] == ']' {
		p.pos++
		return matdb.Value{Kind: matdb.KindList, List: items}, nil
	}
	for {
		p.skipSpace()
		v, err := p.parseValue()
		if err != nil {
			return matdb.Value{}, err
		}
		items = append(items, v)
		p.skipSpace()
		if p.pos >= len(p.s) {
			return matdb.Value{}, xerrors.New("jsonmat: unterminated array")
		}
		if p.s[p.pos] == ',' {
			p.pos++
			continue
		}
		if p.s[p.pos] == ']' {
			p.pos++
			break
		}
		return matdb.Value{}, xerrors.Errorf("jsonmat: expected ',' or ']' at offset %d", p.pos)
	}
	return matdb.Value{Kind: matdb.KindList, List: items}, nil
}

func (p *parser) parseNumber() (matdb.Value, error) {
	start := p.pos
	isFloat := false
	if p.s[p.pos] == '-' {
		p.pos++
	}
	for p.pos < len(p.s) && isDigit(p.s[p.pos]) {
		p.pos++
	}
	if p.pos < len(p.s) && p.s[p.pos] == '.' {
		isFloat = true
		p.pos++
		for p.pos < len(p.s) && isDigit(p.s[p.pos]) {
			p.pos++
		}
	}
	if p.pos < len(p.s) && (p.s[p.pos] == 'e' || p.s[p.pos] == 'E') {
		isFloat = true
		p.pos++
		if p.pos < len(p.s) && (p.s[p.pos] == '+' || p.s[p.pos] == '-') {
			p.pos++
		}
		for p.pos < len(p.s) && isDigit(p.s[p.pos]) {
			p.pos++
		}
	}
	lit := p.s[start:p.pos]
	if isFloat {
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return matdb.Value{}, xerrors.Errorf("jsonmat: invalid number %q: %w", lit, err)
		}
		return matdb.Float64Value(f), nil
	}
	n, err := strconv.ParseInt(lit, 10, 64)
	if err != nil {
		return matdb.Value{}, xerrors.Errorf("jsonmat: invalid number %q: %w", lit, err)
	}
	return matdb.Int64Value(matdb.KindInt64, n), nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// parseString reads a double-quoted JSON string, decoding standard escapes
// and \uXXXX sequences (including UTF-16 surrogate pairs) without going
// through encoding/json, per the original tool's bespoke reader.
func (p *parser) parseString() (string, error) {
	p.pos++ // opening quote
	var out []rune
	for {
		if p.pos >= len(p.s) {
			return "", xerrors.New("jsonmat: unterminated string")
		}
		c := p.s[p.pos]
		if c == '"' {
			p.pos++
			return string(out), nil
		}
		if c != '\\' {
			r, size := utf8.DecodeRuneInString(p.s[p.pos:])
			out = append(out, r)
			p.pos += size
			continue
		}
		p.pos++
		if p.pos >= len(p.s) {
			return "", xerrors.New("jsonmat: unterminated escape")
		}
		switch p.s[p.pos] {
		case '"':
			out = append(out, '"')
			p.pos++
		case '\\':
			out = append(out, '\\')
			p.pos++
		case '/':
			out = append(out, '/')
			p.pos++
		case 'b':
			out = append(out, '\b')
			p.pos++
		case 'f':
			out = append(out, '\f')
			p.pos++
		case 'n':
			out = append(out, '\n')
			p.pos++
		case 'r':
			out = append(out, '\r')
			p.pos++
		case 't':
			out = append(out, '\t')
			p.pos++
		case 'u':
			r, err := p.parseUnicodeEscape()
			if err != nil {
				return "", err
			}
			out = append(out, r)
		default:
			return "", xerrors.Errorf("jsonmat: invalid escape '\\%c' at offset %d", p.s[p.pos], p.pos)
		}
	}
}

// parseUnicodeEscape reads one \uXXXX sequence, and a following \uXXXX low
// surrogate when the first forms a UTF-16 high surrogate, combining them
// per spec §4.5's "UTF-16 escape decoding".
func (p *parser) parseUnicodeEscape() (rune, error) {
	p.pos++ // 'u'
	hi, err := p.readHex4()
	if err != nil {
		return 0, err
	}
	if utf16.IsSurrogate(rune(hi)) {
		if p.pos+1 < len(p.s) && p.s[p.pos] == '\\' && p.s[p.pos+1] == 'u' {
			save := p.pos
			p.pos += 2
			lo, err := p.readHex4()
			if err == nil {
				if r := utf16.DecodeRune(rune(hi), rune(lo)); r != utf8.RuneError {
					return r, nil
				}
			}
			p.pos = save
		}
		return utf8.RuneError, nil
	}
	return rune(hi), nil
}

func (p *parser) readHex4() (uint16, error) {
	if p.pos+4 > len(p.s) {
		return 0, xerrors.New("jsonmat: truncated \\u escape")
	}
	v, err := strconv.ParseUint(p.s[p.pos:p.pos+4], 16, 16)
	if err != nil {
		return 0, xerrors.Errorf("jsonmat: invalid \\u escape: %w", err)
	}
	p.pos += 4
	return uint16(v), nil
}
