// © Copyright 2026, DataRobot, Inc. and its affiliates.
// SPDX-License-Identifier: Apache-2.0

package bridge

import "sort"

// ValueKind identifies the foreign representation of a Value. A value's
// kind is determined once, when it is constructed or crosses the boundary,
// and is matched exhaustively from then on.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindRaw
	KindCharacter
	KindLogical
	KindNumeric
	KindList
	KindTable
	KindOpaque
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindRaw:
		return "raw"
	case KindCharacter:
		return "character"
	case KindLogical:
		return "logical"
	case KindNumeric:
		return "numeric"
	case KindList:
		return "list"
	case KindTable:
		return "table"
	case KindOpaque:
		return "opaque"
	default:
		return "unknown"
	}
}

// Value is a value living in the foreign session. The host never
// interprets a Value except through its typed accessors; conversion to a
// host-native type goes through FromForeign or the facade's result
// shaping.
type Value struct {
	kind  ValueKind
	raw   []byte
	chars []string
	flag  bool
	nums  []float64
	list  *NamedList
	table *Frame
	obj   any
}

// Null returns the foreign null marker.
func Null() Value { return Value{kind: KindNull} }

// Raw returns a foreign raw-byte vector holding an exact copy of b.
func Raw(b []byte) Value {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Value{kind: KindRaw, raw: cp}
}

// Character returns a one-element character vector. Scalar strings are
// always a length-1 vector on the foreign side; the wrapping is done here,
// explicitly, rather than relying on implicit coercion.
func Character(s string) Value {
	return Value{kind: KindCharacter, chars: []string{s}}
}

// CharacterVector returns a character vector with the given elements.
func CharacterVector(ss []string) Value {
	cp := make([]string, len(ss))
	copy(cp, ss)
	return Value{kind: KindCharacter, chars: cp}
}

// Logical returns a foreign truth value.
func Logical(b bool) Value { return Value{kind: KindLogical, flag: b} }

// NumericVector returns a foreign numeric vector.
func NumericVector(xs []float64) Value {
	cp := make([]float64, len(xs))
	copy(cp, xs)
	return Value{kind: KindNumeric, nums: cp}
}

// ListValue wraps a named list.
func ListValue(l *NamedList) Value { return Value{kind: KindList, list: l} }

// TableValue wraps a tabular frame.
func TableValue(f *Frame) Value { return Value{kind: KindTable, table: f} }

// Opaque wraps a session-owned object (typically the loaded model) that
// the host holds only as a handle and never converts.
func Opaque(obj any) Value { return Value{kind: KindOpaque, obj: obj} }

// Kind returns the value's foreign kind.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether the value is the foreign null marker.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsRaw reports whether the value is a raw-byte vector.
func (v Value) IsRaw() bool { return v.kind == KindRaw }

// IsCharacter reports whether the value is a character vector.
func (v Value) IsCharacter() bool { return v.kind == KindCharacter }

// Bytes returns a copy of a raw vector's contents. It returns nil for any
// other kind.
func (v Value) Bytes() []byte {
	if v.kind != KindRaw {
		return nil
	}
	cp := make([]byte, len(v.raw))
	copy(cp, v.raw)
	return cp
}

// Str returns the single element of a character vector. A character
// vector of any other length has no defined scalar conversion and fails.
func (v Value) Str() (string, error) {
	if v.kind != KindCharacter {
		return "", newError(KindUnsupportedValue, "expected character value, got %s", v.kind)
	}
	if len(v.chars) != 1 {
		return "", newError(KindUnsupportedValue,
			"character vector of length %d has no scalar conversion", len(v.chars))
	}
	return v.chars[0], nil
}

// Strings returns the elements of a character vector.
func (v Value) Strings() []string {
	cp := make([]string, len(v.chars))
	copy(cp, v.chars)
	return cp
}

// Bool returns the logical value, false for any other kind.
func (v Value) Bool() bool { return v.kind == KindLogical && v.flag }

// Floats returns the elements of a numeric vector.
func (v Value) Floats() []float64 {
	cp := make([]float64, len(v.nums))
	copy(cp, v.nums)
	return cp
}

// List returns the named list, nil for any other kind.
func (v Value) List() *NamedList { return v.list }

// Table returns the tabular frame, nil for any other kind.
func (v Value) Table() *Frame { return v.table }

// Object returns the wrapped object of an opaque value.
func (v Value) Object() any { return v.obj }

// Args is the keyword-argument map passed on every call into the foreign
// session. Values must already be in foreign representation.
type Args map[string]Value

// NamedList is an ordered list of foreign values with optional element
// names. Element order is preserved; names may be empty.
type NamedList struct {
	names []string
	vals  []Value
}

// NewNamedList returns an empty named list.
func NewNamedList() *NamedList { return &NamedList{} }

// Append adds an element. An empty name is allowed (positional element).
func (l *NamedList) Append(name string, v Value) *NamedList {
	l.names = append(l.names, name)
	l.vals = append(l.vals, v)
	return l
}

// Len returns the number of elements.
func (l *NamedList) Len() int { return len(l.vals) }

// Name returns the name of element i.
func (l *NamedList) Name(i int) string { return l.names[i] }

// At returns element i.
func (l *NamedList) At(i int) Value { return l.vals[i] }

// Get returns the first element with the given name.
func (l *NamedList) Get(name string) (Value, bool) {
	for i, n := range l.names {
		if n == name {
			return l.vals[i], true
		}
	}
	return Value{}, false
}

// ToForeign converts a host value into its foreign representation.
// Supported host values: nil, []byte, string, and map[string]any whose
// values are themselves nil, []byte or string. Anything else fails with
// an UnsupportedValueType error.
func ToForeign(v any) (Value, error) {
	switch hv := v.(type) {
	case nil:
		return Null(), nil
	case []byte:
		return Raw(hv), nil
	case string:
		return Character(hv), nil
	case map[string]any:
		l := NewNamedList()
		// Deterministic element order for a host map.
		keys := make([]string, 0, len(hv))
		for k := range hv {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fv, err := toForeignScalar(hv[k])
			if err != nil {
				return Value{}, newError(KindUnsupportedValue,
					"mapping key %q: %s", k, err.(*BridgeError).Message)
			}
			l.Append(k, fv)
		}
		return ListValue(l), nil
	default:
		return Value{}, newError(KindUnsupportedValue,
			"cannot convert host value of type %T to a foreign value", v)
	}
}

// toForeignScalar converts a mapping element: only null, bytes and text
// are representable inside a foreign named list built from a host map.
func toForeignScalar(v any) (Value, error) {
	switch hv := v.(type) {
	case nil:
		return Null(), nil
	case []byte:
		return Raw(hv), nil
	case string:
		return Character(hv), nil
	default:
		return Value{}, newError(KindUnsupportedValue,
			"cannot convert host value of type %T to a foreign value", v)
	}
}

// FromForeign converts a foreign value back to a host-native value: null
// to nil, raw to []byte, a length-1 character vector to string, and a
// named list to map[string]any with the same rules applied to each
// element. Tables and numeric vectors are deliberately not handled here:
// their host shape depends on the prediction mode, so the predictor facade
// normalizes them (a bare numeric prediction array becomes a single-column
// frame, for example). Any other kind fails with an UnsupportedValueType
// error.
func FromForeign(v Value) (any, error) {
	switch v.kind {
	case KindNull:
		return nil, nil
	case KindRaw:
		return v.Bytes(), nil
	case KindCharacter:
		return v.Str()
	case KindList:
		return listToMap(v.List())
	default:
		return nil, newError(KindUnsupportedValue,
			"cannot convert foreign %s value to a host value", v.kind)
	}
}

// fromForeignScalar converts a foreign value that must be null, raw or
// character. Used for unstructured payloads and list elements.
func fromForeignScalar(v Value) (any, error) {
	switch v.kind {
	case KindNull:
		return nil, nil
	case KindRaw:
		return v.Bytes(), nil
	case KindCharacter:
		return v.Str()
	default:
		return nil, newError(KindUnsupportedValue,
			"cannot convert foreign %s value to a host value", v.kind)
	}
}

// listToMap converts a foreign named list into a host mapping, converting
// each element through the scalar rules.
func listToMap(l *NamedList) (map[string]any, error) {
	if l == nil {
		return nil, nil
	}
	m := make(map[string]any, l.Len())
	for i := 0; i < l.Len(); i++ {
		hv, err := fromForeignScalar(l.At(i))
		if err != nil {
			return nil, err
		}
		m[l.Name(i)] = hv
	}
	return m, nil
}
