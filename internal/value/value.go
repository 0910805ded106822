// Package value provides the typed values predicates compare against.
//
// Value is a sealed interface. Records are Objects; field lookups return
// Null for missing keys.
package value

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

// Value is a sealed interface representing the supported value types.
// Only Null, String, Int, Float, Bool, Time, Array and Object implement it.
type Value interface {
	value() // Sealed - only these types implement it
	Kind() Kind
}

// Kind names a value type.
type Kind string

const (
	KindNull   Kind = "null"
	KindString Kind = "string"
	KindInt    Kind = "int"
	KindFloat  Kind = "float"
	KindBool   Kind = "bool"
	KindTime   Kind = "datetime"
	KindArray  Kind = "array"
	KindObject Kind = "object"
)

// Null is the absent value.
type Null struct{}

func (Null) value()     {}
func (Null) Kind() Kind { return KindNull }

// String is a text value.
type String string

func (String) value()     {}
func (String) Kind() Kind { return KindString }

// Int is an integer value. Always int64.
type Int int64

func (Int) value()     {}
func (Int) Kind() Kind { return KindInt }

// Float is a floating point value.
type Float float64

func (Float) value()     {}
func (Float) Kind() Kind { return KindFloat }

// Bool is a boolean value.
type Bool bool

func (Bool) value()     {}
func (Bool) Kind() Kind { return KindBool }

// Time is a date-time value.
type Time time.Time

func (Time) value()     {}
func (Time) Kind() Kind { return KindTime }

// Array is an ordered list of values.
type Array []Value

func (Array) value()     {}
func (Array) Kind() Kind { return KindArray }

// Object maps field names to values.
// Use SortedKeys for deterministic iteration.
type Object map[string]Value

func (Object) value()     {}
func (Object) Kind() Kind { return KindObject }

// Get returns the named field, or Null if absent.
func (o Object) Get(name string) Value {
	if v, ok := o[name]; ok && v != nil {
		return v
	}
	return Null{}
}

// SortedKeys returns the keys in byte order.
func (o Object) SortedKeys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Format renders v as a literal: strings are quoted, times use RFC 3339,
// integral floats end in ".0" and object keys are sorted.
func Format(v Value) string {
	var b strings.Builder
	format(&b, v)
	return b.String()
}

func format(b *strings.Builder, v Value) {
	switch val := v.(type) {
	case nil, Null:
		b.WriteString("null")
	case String:
		b.WriteString(strconv.Quote(string(val)))
	case Int:
		b.WriteString(strconv.FormatInt(int64(val), 10))
	case Float:
		f := strconv.FormatFloat(float64(val), 'g', -1, 64)
		b.WriteString(f)
		// Integral floats keep a marker so they never read as an Int.
		if !strings.ContainsAny(f, ".eEIN") {
			b.WriteString(".0")
		}
	case Bool:
		b.WriteString(strconv.FormatBool(bool(val)))
	case Time:
		b.WriteString(time.Time(val).UTC().Format(time.RFC3339Nano))
	case Array:
		b.WriteByte('[')
		for i, e := range val {
			if i > 0 {
				b.WriteString(", ")
			}
			format(b, e)
		}
		b.WriteByte(']')
	case Object:
		b.WriteByte('{')
		for i, k := range val.SortedKeys() {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.Quote(k))
			b.WriteString(": ")
			format(b, val[k])
		}
		b.WriteByte('}')
	}
}
