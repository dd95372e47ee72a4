// Package textual implements the line-oriented textual emitter (spec
// component C7): one JSON-style object per line, UTF-8, CRLF
// terminated, with strict numeric formatting (spec.md §4.5). Grounded
// on the teacher's NMEA sentence encoder
// (pkg/gnssgo/nmea/sentences.go) for the "one record type, one
// exported Encode function, shared low-level field writer" shape.
package textual

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// line accumulates one record's fields in declaration order. Every
// class's Encode function builds one, writes its fields through the
// typed helpers below (which apply the inclusion predicate
// themselves), then calls finish.
type line struct {
	b strings.Builder
}

func newLine(class string) *line {
	l := &line{}
	l.b.WriteString(`{"class":"`)
	l.b.WriteString(class)
	l.b.WriteByte('"')
	return l
}

func (l *line) key(name string) {
	l.b.WriteByte(',')
	l.b.WriteByte('"')
	l.b.WriteString(name)
	l.b.WriteString(`":`)
}

// Int always includes name (enums/counters are never nullable in the
// textual protocol the way floats are).
func (l *line) Int(name string, v int) {
	l.key(name)
	l.b.WriteString(strconv.Itoa(v))
}

// IntIf includes name only if v != sentinel.
func (l *line) IntIf(name string, v, sentinel int) {
	if v == sentinel {
		return
	}
	l.Int(name, v)
}

// Int64If includes name only if v != sentinel.
func (l *line) Int64If(name string, v, sentinel int64) {
	if v == sentinel {
		return
	}
	l.key(name)
	l.b.WriteString(strconv.FormatInt(v, 10))
}

// Float includes name only if v is finite, formatted to precision
// fractional digits with signed-zero normalization: a value whose
// magnitude is below half a unit in the last printed place is emitted
// as the bare literal 0 rather than "-0.000..." or "0.000...".
func (l *line) Float(name string, v float64, precision int) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	l.key(name)
	l.b.WriteString(formatFloat(v, precision))
}

func formatFloat(v float64, precision int) string {
	epsilon := 0.5 * math.Pow(10, -float64(precision))
	if math.Abs(v) < epsilon {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', precision, 64)
}

// Bool always includes name as the literal true/false.
func (l *line) Bool(name string, v bool) {
	l.key(name)
	if v {
		l.b.WriteString("true")
	} else {
		l.b.WriteString("false")
	}
}

// StringIf includes name only if v is non-empty, JSON-escaped.
func (l *line) StringIf(name, v string) {
	if v == "" {
		return
	}
	l.key(name)
	l.b.WriteByte('"')
	l.b.WriteString(EscapeString(v))
	l.b.WriteByte('"')
}

// String always includes name, JSON-escaped (for fields like the
// class-specific id strings that are never absent once the record is
// emitted at all).
func (l *line) String(name, v string) {
	l.key(name)
	l.b.WriteByte('"')
	l.b.WriteString(EscapeString(v))
	l.b.WriteByte('"')
}

// finish closes the object and CRLF-terminates the record.
func (l *line) finish() string {
	l.b.WriteString("}\r\n")
	return l.b.String()
}

// EscapeString applies spec.md §4.5's string escaping: control bytes
// 0x00-0x1F and 0x7F become a six-byte \u00xx sequence, quote and
// backslash are backslash-escaped, well-formed multi-byte UTF-8 is
// passed through, and a malformed leading byte is replaced by \u00xx
// of that byte alone.
func EscapeString(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '"':
			b.WriteString(`\"`)
			i++
		case c == '\\':
			b.WriteString(`\\`)
			i++
		case c < 0x20 || c == 0x7F:
			b.WriteString(`\u00`)
			b.WriteString(hexByte(c))
			i++
		case c < 0x80:
			b.WriteByte(c)
			i++
		default:
			r, size := utf8.DecodeRuneInString(s[i:])
			if r == utf8.RuneError && size <= 1 {
				b.WriteString(`\u00`)
				b.WriteString(hexByte(c))
				i++
				continue
			}
			b.WriteString(s[i : i+size])
			i += size
		}
	}
	return b.String()
}

func hexByte(c byte) string {
	const hex = "0123456789abcdef"
	return string([]byte{hex[c>>4], hex[c&0xF]})
}
