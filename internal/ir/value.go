package ir

import (
	"slices"

	"golang.org/x/text/unicode/norm"
)

// Value is a sealed interface representing host runtime values.
// Only Null, Bool, Int, String, Symbol, List, Map, Proc and Opaque implement it.
type Value interface {
	value() // Sealed - only these types implement it
}

// Null represents the empty value.
type Null struct{}

func (Null) value() {}

// Bool represents a boolean value.
type Bool bool

func (Bool) value() {}

// Int represents an integer value. Always int64, never float64.
type Int int64

func (Int) value() {}

// String represents a string value.
type String string

func (String) value() {}

// Symbol represents an interned identifier such as 'apple.
// Symbols compare equal when their NFC normalized names are equal.
type Symbol string

func (Symbol) value() {}

// List represents an immutable ordered sequence of values.
type List []Value

func (List) value() {}

// Pair is a single key/value entry of a Map.
type Pair struct {
	Key   Value
	Value Value
}

// Map represents an association from arbitrary values to values.
// Entries keep insertion order so rendering is deterministic.
type Map []Pair

func (Map) value() {}

// Proc is a first-class procedure value.
type Proc struct {
	Fn Callable
}

func (Proc) value() {}

// Opaque carries a host object (for example a contract) through the value
// model without the runtime interpreting it.
type Opaque struct {
	Tag     string
	Payload any
}

func (Opaque) value() {}

// NewString creates an NFC normalized String value.
func NewString(s string) String {
	return String(norm.NFC.String(s))
}

// NewSymbol creates an NFC normalized Symbol value.
func NewSymbol(s string) Symbol {
	return Symbol(norm.NFC.String(s))
}

// NewInt creates an Int value.
func NewInt(n int64) Int {
	return Int(n)
}

// NewBool creates a Bool value.
func NewBool(b bool) Bool {
	return Bool(b)
}

// NewList creates a List from values. The input slice is copied.
func NewList(vals ...Value) List {
	return List(slices.Clone(vals))
}

// P is a shorthand for Pair for ergonomic Map construction.
// Example: NewMap(P(NewSymbol("a"), NewInt(1)))
func P(key, value Value) Pair {
	return Pair{Key: key, Value: value}
}

// NewMap creates a Map from pairs. A later pair replaces an earlier pair
// with an equal key, keeping the position of the first occurrence.
func NewMap(pairs ...Pair) Map {
	m := make(Map, 0, len(pairs))
	for _, p := range pairs {
		if i := m.index(p.Key); i >= 0 {
			m[i].Value = p.Value
			continue
		}
		m = append(m, p)
	}
	return m
}

// Lookup returns the value stored under key.
func (m Map) Lookup(key Value) (Value, bool) {
	if i := m.index(key); i >= 0 {
		return m[i].Value, true
	}
	return nil, false
}

func (m Map) index(key Value) int {
	for i, p := range m {
		if Equal(p.Key, key) {
			return i
		}
	}
	return -1
}

// NewProc wraps a Callable as a value.
func NewProc(fn Callable) Proc {
	return Proc{Fn: fn}
}

// AsCallable returns the callable behind a procedure value.
func AsCallable(v Value) (Callable, bool) {
	p, ok := v.(Proc)
	if !ok || p.Fn == nil {
		return nil, false
	}
	return p.Fn, true
}

// Truthy reports whether v counts as true. Every value except #f is truthy.
func Truthy(v Value) bool {
	b, ok := v.(Bool)
	return !ok || bool(b)
}

// Equal reports structural equality. Procedures are equal only when they
// wrap the same callable; opaque values compare by payload identity.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Int:
		bv, ok := b.(Int)
		return ok && av == bv
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Symbol:
		bv, ok := b.(Symbol)
		return ok && av == bv
	case List:
		bv, ok := b.(List)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Map:
		bv, ok := b.(Map)
		if !ok || len(av) != len(bv) {
			return false
		}
		for _, p := range av {
			other, found := bv.Lookup(p.Key)
			if !found || !Equal(p.Value, other) {
				return false
			}
		}
		return true
	case Proc:
		bv, ok := b.(Proc)
		return ok && av.Fn == bv.Fn
	case Opaque:
		bv, ok := b.(Opaque)
		return ok && av.Tag == bv.Tag && av.Payload == bv.Payload
	default:
		return false
	}
}
