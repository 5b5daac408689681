// Package codec serializes session field values to a deterministic,
// single-line textual form and parses them back. The grammar is purely
// structural; decoding never evaluates anything.
//
//	value   = "~"                      nil
//	        | "T" | "F"                bool
//	        | "i" int                  e.g. i42, i-7
//	        | "d" float                e.g. d1.5, d2e-3
//	        | quoted                   Go-quoted string
//	        | "[" value ("," value)* "]" | "[]"
//	        | "{" quoted ":" value ("," quoted ":" value)* "}" | "{}"
//
// Integers and floats are distinct kinds, mapping order is preserved and
// strings are quoted with strconv semantics, so Decode(Encode(v))
// reproduces v exactly.
package codec

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrCorruptPayload marks a stored payload that is not a well-formed
// encoding produced by this package.
var ErrCorruptPayload = errors.New("codec: corrupt payload")

// Encode renders v in the format described in the package comment.
func Encode(v Value) string {
	var b strings.Builder
	encodeTo(&b, v)
	return b.String()
}

func encodeTo(b *strings.Builder, v Value) {
	switch v.Kind {
	case KindNil:
		b.WriteByte('~')
	case KindBool:
		if v.Bool {
			b.WriteByte('T')
		} else {
			b.WriteByte('F')
		}
	case KindInt:
		b.WriteByte('i')
		b.WriteString(strconv.FormatInt(v.Int, 10))
	case KindFloat:
		b.WriteByte('d')
		b.WriteString(strconv.FormatFloat(v.Float, 'g', -1, 64))
	case KindString:
		b.WriteString(strconv.Quote(v.Str))
	case KindList:
		b.WriteByte('[')
		for i, item := range v.List {
			if i > 0 {
				b.WriteByte(',')
			}
			encodeTo(b, item)
		}
		b.WriteByte(']')
	case KindMap:
		b.WriteByte('{')
		for i, e := range v.Map {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Quote(e.Key))
			b.WriteByte(':')
			encodeTo(b, e.Val)
		}
		b.WriteByte('}')
	}
}

// Decode parses s back into a Value. Any deviation from the grammar,
// including trailing bytes, fails with ErrCorruptPayload.
func Decode(s string) (Value, error) {
	d := &decoder{input: s}
	v, err := d.value()
	if err != nil {
		return Value{}, err
	}
	if d.pos != len(d.input) {
		return Value{}, d.corrupt("trailing data")
	}
	return v, nil
}

type decoder struct {
	input string
	pos   int
}

func (d *decoder) corrupt(what string) error {
	return errors.Wrapf(ErrCorruptPayload, "%s at offset %d", what, d.pos)
}

func (d *decoder) value() (Value, error) {
	if d.pos >= len(d.input) {
		return Value{}, d.corrupt("unexpected end of payload")
	}
	switch d.input[d.pos] {
	case '~':
		d.pos++
		return Nil(), nil
	case 'T':
		d.pos++
		return Bool(true), nil
	case 'F':
		d.pos++
		return Bool(false), nil
	case 'i':
		d.pos++
		tok, err := d.numberToken()
		if err != nil {
			return Value{}, err
		}
		n, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return Value{}, d.corrupt("bad integer")
		}
		return Int(n), nil
	case 'd':
		d.pos++
		tok, err := d.numberToken()
		if err != nil {
			return Value{}, err
		}
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return Value{}, d.corrupt("bad float")
		}
		return Float(f), nil
	case '"':
		s, err := d.quoted()
		if err != nil {
			return Value{}, err
		}
		return String(s), nil
	case '[':
		return d.list()
	case '{':
		return d.mapping()
	}
	return Value{}, d.corrupt("unexpected byte")
}

// numberToken consumes bytes up to the next structural delimiter.
func (d *decoder) numberToken() (string, error) {
	start := d.pos
	for d.pos < len(d.input) && !isDelimiter(d.input[d.pos]) {
		d.pos++
	}
	if d.pos == start {
		return "", d.corrupt("empty number")
	}
	return d.input[start:d.pos], nil
}

func isDelimiter(c byte) bool {
	return c == ',' || c == ']' || c == '}'
}

func (d *decoder) quoted() (string, error) {
	// d.input[d.pos] is the opening quote
	i := d.pos + 1
	for i < len(d.input) {
		switch d.input[i] {
		case '\\':
			i += 2
		case '"':
			s, err := strconv.Unquote(d.input[d.pos : i+1])
			if err != nil {
				return "", d.corrupt("bad string escape")
			}
			d.pos = i + 1
			return s, nil
		default:
			i++
		}
	}
	return "", d.corrupt("unterminated string")
}

func (d *decoder) list() (Value, error) {
	d.pos++ // consume '['
	items := []Value{}
	if d.pos < len(d.input) && d.input[d.pos] == ']' {
		d.pos++
		return List(items...), nil
	}
	for {
		item, err := d.value()
		if err != nil {
			return Value{}, err
		}
		items = append(items, item)
		if d.pos >= len(d.input) {
			return Value{}, d.corrupt("unterminated list")
		}
		switch d.input[d.pos] {
		case ',':
			d.pos++
		case ']':
			d.pos++
			return List(items...), nil
		default:
			return Value{}, d.corrupt("expected ',' or ']'")
		}
	}
}

func (d *decoder) mapping() (Value, error) {
	d.pos++ // consume '{'
	entries := []Entry{}
	if d.pos < len(d.input) && d.input[d.pos] == '}' {
		d.pos++
		return Map(entries...), nil
	}
	for {
		if d.pos >= len(d.input) || d.input[d.pos] != '"' {
			return Value{}, d.corrupt("expected quoted map key")
		}
		key, err := d.quoted()
		if err != nil {
			return Value{}, err
		}
		if d.pos >= len(d.input) || d.input[d.pos] != ':' {
			return Value{}, d.corrupt("expected ':' after map key")
		}
		d.pos++
		val, err := d.value()
		if err != nil {
			return Value{}, err
		}
		entries = append(entries, E(key, val))
		if d.pos >= len(d.input) {
			return Value{}, d.corrupt("unterminated map")
		}
		switch d.input[d.pos] {
		case ',':
			d.pos++
		case '}':
			d.pos++
			return Map(entries...), nil
		default:
			return Value{}, d.corrupt("expected ',' or '}'")
		}
	}
}
