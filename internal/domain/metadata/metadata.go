// Package metadata provides the typed metadata model attached to vector records.
//
// A record's metadata is a flat map of field name to Value, where a Value is one
// of four variants: string, number, bool, or set-of-strings. Keeping the variant
// set closed is what makes exact-equality filtering decidable across records that
// share no schema.
package metadata

import (
	"slices"
	"sort"
)

// Kind identifies the variant held by a Value.
type Kind uint8

// Value variants.
const (
	KindInvalid Kind = iota
	KindString
	KindNumber
	KindBool
	KindStringSet
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindStringSet:
		return "string_set"
	default:
		return "invalid"
	}
}

// Value is a typed metadata field value (immutable value object).
// The zero Value is invalid and never matches anything.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	set  []string // sorted and deduplicated at construction
}

// String creates a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number creates a numeric value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Bool creates a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// StringSet creates a set-of-strings value. Order and duplicates are
// irrelevant: two sets with the same members compare equal.
func StringSet(members ...string) Value {
	set := slices.Clone(members)
	sort.Strings(set)
	set = slices.Compact(set)
	return Value{kind: KindStringSet, set: set}
}

// Kind returns the variant held by the value.
func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether the value holds one of the supported variants.
func (v Value) IsValid() bool { return v.kind != KindInvalid }

// AsString returns the string variant.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsNumber returns the numeric variant.
func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == KindNumber }

// AsBool returns the boolean variant.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsStringSet returns a copy of the set variant, sorted.
func (v Value) AsStringSet() ([]string, bool) {
	if v.kind != KindStringSet {
		return nil, false
	}
	return slices.Clone(v.set), true
}

// Equal reports exact equality between two values. Values of different
// kinds are never equal; invalid values equal nothing, themselves included.
func (v Value) Equal(other Value) bool {
	if v.kind == KindInvalid || v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == other.str
	case KindNumber:
		return v.num == other.num
	case KindBool:
		return v.b == other.b
	case KindStringSet:
		return slices.Equal(v.set, other.set)
	default:
		return false
	}
}

// Metadata is a flat field-name to value mapping.
type Metadata map[string]Value

// Clone returns a deep copy. Value internals are immutable, so copying
// the map is enough.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	c := make(Metadata, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
