package table

import (
	"math"
	"strconv"
	"strings"
)

// Kind identifies the scalar type held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Value is a dynamically-typed table cell: exactly one of null, bool, int,
// float, or string. The zero Value is null. Value is comparable, so it can
// be used directly as a map key for grouping.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
}

func Null() Value       { return Value{} }
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float canonicalizes NaN to null: NaN is not self-equal, which would break
// value equality and map-key grouping, and it marks a missing value anyway.
func Float(f float64) Value {
	if math.IsNaN(f) {
		return Value{}
	}
	return Value{kind: KindFloat, f: f}
}

func String(s string) Value { return Value{kind: KindString, s: s} }

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the boolean payload; false for any other kind.
func (v Value) Bool() bool { return v.kind == KindBool && v.b }

// Int returns the integer payload, truncating floats; 0 for other kinds.
func (v Value) Int() int64 {
	switch v.kind {
	case KindInt:
		return v.i
	case KindFloat:
		return int64(v.f)
	default:
		return 0
	}
}

// Float returns the numeric payload, promoting ints; 0 for other kinds.
func (v Value) Float() float64 {
	switch v.kind {
	case KindFloat:
		return v.f
	case KindInt:
		return float64(v.i)
	default:
		return 0
	}
}

// Str returns the string payload; empty for any other kind.
func (v Value) Str() string {
	if v.kind == KindString {
		return v.s
	}
	return ""
}

// String renders the value's display form: the form filters and config
// values are matched against, and the form written to text formats. Null
// renders as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return v.s
	default:
		return ""
	}
}

// Equal reports exact-value equality. Int and float cross-compare
// numerically, so Int(2) equals Float(2.0).
func (v Value) Equal(o Value) bool {
	if v.kind == o.kind {
		return v == o
	}
	if (v.kind == KindInt || v.kind == KindFloat) && (o.kind == KindInt || o.kind == KindFloat) {
		return v.Float() == o.Float()
	}
	return false
}

// Native returns the value as a plain Go scalar (nil, bool, int64, float64,
// or string), for handing to encoders.
func (v Value) Native() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	default:
		return nil
	}
}

// Infer parses a text cell into a typed Value: empty → null, then int,
// float, bool, falling back to string. Used by the text-based formats
// (csv, xlsx) whose cells carry no type information. A "NaN" cell parses
// as a float and canonicalizes to null, like a missing value.
func Infer(cell string) Value {
	if cell == "" {
		return Null()
	}
	if i, err := strconv.ParseInt(cell, 10, 64); err == nil {
		return Int(i)
	}
	if f, err := strconv.ParseFloat(cell, 64); err == nil {
		return Float(f)
	}
	switch strings.ToLower(cell) {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	}
	return String(cell)
}
