package ir

import (
	"strconv"
	"strings"
)

// Format renders a value the way the REPL prints it.
func Format(v Value) string {
	var b strings.Builder
	writeValue(&b, v)
	return b.String()
}

func writeValue(b *strings.Builder, v Value) {
	switch val := v.(type) {
	case nil:
		b.WriteString("#<void>")
	case Null:
		b.WriteString("null")
	case Bool:
		if val {
			b.WriteString("#t")
		} else {
			b.WriteString("#f")
		}
	case Int:
		b.WriteString(strconv.FormatInt(int64(val), 10))
	case String:
		b.WriteString(strconv.Quote(string(val)))
	case Symbol:
		b.WriteByte('\'')
		b.WriteString(string(val))
	case List:
		b.WriteByte('(')
		for i, elem := range val {
			if i > 0 {
				b.WriteByte(' ')
			}
			writeValue(b, elem)
		}
		b.WriteByte(')')
	case Map:
		b.WriteString("#hash(")
		for i, p := range val {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteByte('(')
			writeValue(b, p.Key)
			b.WriteString(" . ")
			writeValue(b, p.Value)
			b.WriteByte(')')
		}
		b.WriteByte(')')
	case Proc:
		name := ""
		if val.Fn != nil {
			name = val.Fn.Name()
		}
		if name == "" {
			b.WriteString("#<procedure>")
		} else {
			b.WriteString("#<procedure:" + name + ">")
		}
	case Opaque:
		if s, ok := val.Payload.(interface{ String() string }); ok {
			b.WriteString("#<" + val.Tag + ":" + s.String() + ">")
		} else {
			b.WriteString("#<" + val.Tag + ">")
		}
	}
}

// TypeName returns the runtime type name of a value.
func TypeName(v Value) string {
	switch val := v.(type) {
	case Null:
		return "null"
	case Bool:
		return "boolean"
	case Int:
		return "integer"
	case String:
		return "string"
	case Symbol:
		return "symbol"
	case List:
		return "list"
	case Map:
		return "map"
	case Proc:
		return "procedure"
	case Opaque:
		return val.Tag
	default:
		return "void"
	}
}
