// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package ennio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value
type Kind int

// Value kinds
const (
	KindBool Kind = iota
	KindPositiveInt
	KindNegativeInt
	KindString
	KindList
	KindMap
)

var kindNames = [...]string{
	KindBool:        "bool",
	KindPositiveInt: "positive-int",
	KindNegativeInt: "negative-int",
	KindString:      "string",
	KindList:        "list",
	KindMap:         "map",
}

// String implements fmt.Stringer
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

func parseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), true
		}
	}
	return 0, false
}

// Value is a typed unit of data produced by an action.
//
// The set of implementations is closed: Bool, PositiveInt, NegativeInt, String, List and Map.
// Integers are split by the signedness of their source type, a PositiveInt and a NegativeInt
// holding the same number are never equal.
type Value interface {
	// Kind returns the variant of the value
	Kind() Kind
	// Interface returns the plain Go form of the value (bool, uint64, int64, string, []any, map[string]any)
	Interface() any
	// String returns a debug representation
	String() string

	isValue()
}

// Bool is a boolean Value
type Bool bool

// PositiveInt is an unsigned integer Value
type PositiveInt uint64

// NegativeInt is a signed integer Value
type NegativeInt int64

// String is a string Value
type String string

// List is an ordered sequence of Values
type List []Value

// Map is a string keyed mapping of Values
type Map map[string]Value

var (
	_ Value = Bool(false)
	_ Value = PositiveInt(0)
	_ Value = NegativeInt(0)
	_ Value = String("")
	_ Value = List(nil)
	_ Value = Map(nil)
)

func (Bool) isValue()        {}
func (PositiveInt) isValue() {}
func (NegativeInt) isValue() {}
func (String) isValue()      {}
func (List) isValue()        {}
func (Map) isValue()         {}

// Kind implements Value
func (Bool) Kind() Kind { return KindBool }

// Kind implements Value
func (PositiveInt) Kind() Kind { return KindPositiveInt }

// Kind implements Value
func (NegativeInt) Kind() Kind { return KindNegativeInt }

// Kind implements Value
func (String) Kind() Kind { return KindString }

// Kind implements Value
func (List) Kind() Kind { return KindList }

// Kind implements Value
func (Map) Kind() Kind { return KindMap }

// Interface implements Value
func (v Bool) Interface() any { return bool(v) }

// Interface implements Value
func (v PositiveInt) Interface() any { return uint64(v) }

// Interface implements Value
func (v NegativeInt) Interface() any { return int64(v) }

// Interface implements Value
func (v String) Interface() any { return string(v) }

// Interface implements Value
func (v List) Interface() any {
	out := make([]any, len(v))
	for i, item := range v {
		out[i] = item.Interface()
	}
	return out
}

// Interface implements Value
func (v Map) Interface() any {
	out := make(map[string]any, len(v))
	for k, item := range v {
		out[k] = item.Interface()
	}
	return out
}

func (v Bool) String() string        { return fmt.Sprintf("Bool(%t)", bool(v)) }
func (v PositiveInt) String() string { return fmt.Sprintf("PositiveInt(%d)", uint64(v)) }
func (v NegativeInt) String() string { return fmt.Sprintf("NegativeInt(%d)", int64(v)) }
func (v String) String() string      { return fmt.Sprintf("String(%q)", string(v)) }

func (v List) String() string {
	parts := make([]string, len(v))
	for i, item := range v {
		parts[i] = item.String()
	}
	return "List[" + strings.Join(parts, ", ") + "]"
}

// String prints entries sorted by key so the representation is stable
func (v Map) String() string {
	keys := slices.Sorted(maps.Keys(v))
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%q: %s", k, v[k])
	}
	return "Map{" + strings.Join(parts, ", ") + "}"
}

// Equal reports whether two values are structurally equal
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case List:
		bv := b.(List)
		return slices.EqualFunc(av, bv, Equal)
	case Map:
		bv := b.(Map)
		return maps.EqualFunc(av, bv, Equal)
	default:
		return a == b
	}
}

// ValueOf converts a Go value into the matching Value variant.
//
// Signed integer types become NegativeInt and unsigned ones PositiveInt regardless of the number held.
// Slices, arrays and string keyed maps are converted recursively.
func ValueOf(in any) (Value, error) {
	switch v := in.(type) {
	case Value:
		return v, nil
	case bool:
		return Bool(v), nil
	case string:
		return String(v), nil
	case int:
		return NegativeInt(v), nil
	case int8:
		return NegativeInt(v), nil
	case int16:
		return NegativeInt(v), nil
	case int32:
		return NegativeInt(v), nil
	case int64:
		return NegativeInt(v), nil
	case uint:
		return PositiveInt(v), nil
	case uint8:
		return PositiveInt(v), nil
	case uint16:
		return PositiveInt(v), nil
	case uint32:
		return PositiveInt(v), nil
	case uint64:
		return PositiveInt(v), nil
	case nil:
		return nil, fmt.Errorf("unable to convert nil to a value")
	}

	rv := reflect.ValueOf(in)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		list := make(List, rv.Len())
		for i := range rv.Len() {
			item, err := ValueOf(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			list[i] = item
		}
		return list, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("unable to convert %T to a value: map keys must be strings", in)
		}
		m := make(Map, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key := iter.Key().String()
			item, err := ValueOf(iter.Value().Interface())
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			m[key] = item
		}
		return m, nil
	}

	return nil, fmt.Errorf("unable to convert %T to a value", in)
}

// Text renders a value as plain text
//
// Strings are returned as is, scalars in their decimal or boolean form,
// lists and maps as JSON of their plain Go form.
func Text(v Value) string {
	switch val := v.(type) {
	case nil:
		return ""
	case String:
		return string(val)
	case Bool:
		return strconv.FormatBool(bool(val))
	case PositiveInt:
		return strconv.FormatUint(uint64(val), 10)
	case NegativeInt:
		return strconv.FormatInt(int64(val), 10)
	default:
		b, err := json.Marshal(v.Interface())
		if err != nil {
			return v.String()
		}
		return string(b)
	}
}

func marshalTagged(k Kind, payload any) ([]byte, error) {
	return json.Marshal(map[string]any{k.String(): payload})
}

// MarshalJSON encodes the value tagged with its kind
func (v Bool) MarshalJSON() ([]byte, error) { return marshalTagged(KindBool, bool(v)) }

// MarshalJSON encodes the value tagged with its kind
func (v PositiveInt) MarshalJSON() ([]byte, error) { return marshalTagged(KindPositiveInt, uint64(v)) }

// MarshalJSON encodes the value tagged with its kind
func (v NegativeInt) MarshalJSON() ([]byte, error) { return marshalTagged(KindNegativeInt, int64(v)) }

// MarshalJSON encodes the value tagged with its kind
func (v String) MarshalJSON() ([]byte, error) { return marshalTagged(KindString, string(v)) }

// MarshalJSON encodes the value tagged with its kind
func (v List) MarshalJSON() ([]byte, error) {
	items := []Value(v)
	if items == nil {
		items = []Value{}
	}
	return marshalTagged(KindList, items)
}

// MarshalJSON encodes the value tagged with its kind
func (v Map) MarshalJSON() ([]byte, error) {
	entries := map[string]Value(v)
	if entries == nil {
		entries = map[string]Value{}
	}
	return marshalTagged(KindMap, entries)
}

// UnmarshalValue decodes a value produced by one of the variants' MarshalJSON
func UnmarshalValue(data []byte) (Value, error) {
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return nil, err
	}
	if len(tagged) != 1 {
		return nil, fmt.Errorf("expected exactly one kind tag, got %d", len(tagged))
	}

	var tag string
	var payload json.RawMessage
	for k, v := range tagged {
		tag, payload = k, v
	}

	kind, ok := parseKind(tag)
	if !ok {
		return nil, fmt.Errorf("unknown value kind %q", tag)
	}

	dec := func(dst any) error {
		d := json.NewDecoder(bytes.NewReader(payload))
		d.DisallowUnknownFields()
		if err := d.Decode(dst); err != nil {
			return fmt.Errorf("%s: %w", kind, err)
		}
		return nil
	}

	switch kind {
	case KindBool:
		var b bool
		if err := dec(&b); err != nil {
			return nil, err
		}
		return Bool(b), nil
	case KindPositiveInt:
		var u uint64
		if err := dec(&u); err != nil {
			return nil, err
		}
		return PositiveInt(u), nil
	case KindNegativeInt:
		var i int64
		if err := dec(&i); err != nil {
			return nil, err
		}
		return NegativeInt(i), nil
	case KindString:
		var s string
		if err := dec(&s); err != nil {
			return nil, err
		}
		return String(s), nil
	case KindList:
		var raw []json.RawMessage
		if err := dec(&raw); err != nil {
			return nil, err
		}
		list := make(List, len(raw))
		for i, r := range raw {
			item, err := UnmarshalValue(r)
			if err != nil {
				return nil, fmt.Errorf("list[%d]: %w", i, err)
			}
			list[i] = item
		}
		return list, nil
	default:
		var raw map[string]json.RawMessage
		if err := dec(&raw); err != nil {
			return nil, err
		}
		m := make(Map, len(raw))
		for k, r := range raw {
			item, err := UnmarshalValue(r)
			if err != nil {
				return nil, fmt.Errorf("map[%q]: %w", k, err)
			}
			m[k] = item
		}
		return m, nil
	}
}
