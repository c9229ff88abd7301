package sane

import (
	"fmt"
	"strconv"
	"strings"
)

// Encode serializes doc deterministically: keys in insertion order, compact
// scalar forms, sections last and in the order they were added. Decode(Encode(doc))
// produces a Document equal in content to doc.
func Encode(doc *Document) []byte {
	var b strings.Builder
	writeObjectBody(&b, doc.Object)
	for _, s := range doc.sections {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%s]\n", s.Name)
		writeObjectBody(&b, s.Object)
	}
	return []byte(b.String())
}

func writeObjectBody(b *strings.Builder, o *Object) {
	for _, k := range o.keys {
		v, _ := o.Get(k)
		b.WriteString(k)
		b.WriteString(" = ")
		writeValue(b, v)
		b.WriteByte('\n')
	}
}

func writeValue(b *strings.Builder, v Value) {
	switch t := v.(type) {
	case string:
		writeQuoted(b, t)
	case int64:
		b.WriteString(strconv.FormatInt(t, 10))
	case int:
		b.WriteString(strconv.Itoa(t))
	case float64:
		b.WriteString(strconv.FormatFloat(t, 'g', -1, 64))
	case bool:
		if t {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case []Value:
		b.WriteByte('[')
		for i, item := range t {
			if i > 0 {
				b.WriteString(", ")
			}
			writeValue(b, item)
		}
		b.WriteByte(']')
	case *Object:
		b.WriteByte('{')
		for i, k := range t.keys {
			if i > 0 {
				b.WriteString(", ")
			}
			val, _ := t.Get(k)
			b.WriteString(k)
			b.WriteString(" = ")
			writeValue(b, val)
		}
		b.WriteByte('}')
	default:
		panic(fmt.Sprintf("sane: unencodable value type %T", v))
	}
}

func writeQuoted(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, c := range s {
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(c)
		}
	}
	b.WriteByte('"')
}
