// Package interp implements the pseudocode evaluator and its scoped
// environment.
package interp

import (
	"math"
	"strconv"
)

// Value is the interface for all runtime values.
// Use the sealed marker method to restrict implementations to this package.
type Value interface {
	cieValue() // sealed marker
}

// IntValue represents an INTEGER value.
type IntValue struct {
	Value int64
}

func (IntValue) cieValue() {}

// RealValue represents a REAL value.
type RealValue struct {
	Value float64
}

func (RealValue) cieValue() {}

// StrValue represents a STRING value.
type StrValue struct {
	Value string
}

func (StrValue) cieValue() {}

// BoolValue represents a BOOLEAN value.
type BoolValue struct {
	Value bool
}

func (BoolValue) cieValue() {}

// CharValue represents a CHAR value, exactly one character.
type CharValue struct {
	Value rune
}

func (CharValue) cieValue() {}

// DateValue represents a DATE value. Dates are opaque text; no calendar
// arithmetic is defined on them.
type DateValue struct {
	Value string
}

func (DateValue) cieValue() {}

// NewInt creates an INTEGER value.
func NewInt(v int64) Value {
	return IntValue{Value: v}
}

// NewReal creates a REAL value.
func NewReal(v float64) Value {
	return RealValue{Value: v}
}

// NewStr creates a STRING value.
func NewStr(v string) Value {
	return StrValue{Value: v}
}

// NewBool creates a BOOLEAN value.
func NewBool(v bool) Value {
	return BoolValue{Value: v}
}

// NewChar creates a CHAR value.
func NewChar(v rune) Value {
	return CharValue{Value: v}
}

// NewDate creates a DATE value.
func NewDate(v string) Value {
	return DateValue{Value: v}
}

// TagOf returns the inferred type tag of a value, used for constants
// (which carry no declared type) and for error messages.
func TagOf(v Value) Type {
	switch v.(type) {
	case IntValue:
		return TypeInteger
	case RealValue:
		return TypeReal
	case StrValue:
		return TypeString
	case BoolValue:
		return TypeBoolean
	case CharValue:
		return TypeChar
	case DateValue:
		return TypeDate
	default:
		return TypeInvalid
	}
}

// FormatValue renders a value the way OUTPUT prints it. Booleans use the
// canonical TRUE/FALSE spellings; reals keep a fractional part even when
// integral, so `8 / 2` prints as 4.0 rather than 4.
func FormatValue(v Value) string {
	switch val := v.(type) {
	case IntValue:
		return strconv.FormatInt(val.Value, 10)
	case RealValue:
		if !math.IsInf(val.Value, 0) && !math.IsNaN(val.Value) && math.Trunc(val.Value) == val.Value {
			return strconv.FormatFloat(val.Value, 'f', 1, 64)
		}
		return strconv.FormatFloat(val.Value, 'g', -1, 64)
	case StrValue:
		return val.Value
	case BoolValue:
		if val.Value {
			return "TRUE"
		}
		return "FALSE"
	case CharValue:
		return string(val.Value)
	case DateValue:
		return val.Value
	default:
		return ""
	}
}
