// Package store implements a small, self-describing configuration value:
// a recursive tree of strings, integers, floats, lists and associative
// arrays, together with a textual syntax, a path language for addressing
// nested values, and structural clone/merge operations.
package store

import "fmt"

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindString Kind = iota
	KindInteger
	KindFloat
	KindList
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindList:
		return "list"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Value is the core recursive data element of a store: exactly one of
// String, Integer, Float, List or Array. Clone and Merge never share a
// child between two Values. The mutators (Set, Append, SetAt) store the
// pointer they are given as is, so inserting one *Value into two
// containers makes it reachable through both.
type Value struct {
	kind Kind

	str string
	i32 int32
	f64 float64

	list []*Value

	keys []string // insertion order, kept for deterministic enumeration
	arr  map[string]*Value
}

// NewString creates a String Value.
func NewString(s string) *Value {
	return &Value{kind: KindString, str: s}
}

// NewInteger creates an Integer Value.
func NewInteger(i int32) *Value {
	return &Value{kind: KindInteger, i32: i}
}

// NewFloat creates a Float Value.
func NewFloat(f float64) *Value {
	return &Value{kind: KindFloat, f64: f}
}

// NewList creates an empty List Value.
func NewList() *Value {
	return &Value{kind: KindList}
}

// NewArray creates an empty Array Value.
func NewArray() *Value {
	return &Value{kind: KindArray, arr: map[string]*Value{}}
}

// Kind reports which variant v holds.
func (v *Value) Kind() Kind {
	return v.kind
}

// IsString reports whether v holds a String.
func (v *Value) IsString() bool { return v.kind == KindString }

// IsInteger reports whether v holds an Integer.
func (v *Value) IsInteger() bool { return v.kind == KindInteger }

// IsFloat reports whether v holds a Float.
func (v *Value) IsFloat() bool { return v.kind == KindFloat }

// IsList reports whether v holds a List.
func (v *Value) IsList() bool { return v.kind == KindList }

// IsArray reports whether v holds an Array.
func (v *Value) IsArray() bool { return v.kind == KindArray }

// StringValue returns the string content of v and true, or ("", false) if
// v is not a String.
func (v *Value) StringValue() (string, bool) {
	if v.kind != KindString {
		return "", false
	}

	return v.str, true
}

// IntegerValue returns the integer content of v and true, or (0, false) if
// v is not an Integer.
func (v *Value) IntegerValue() (int32, bool) {
	if v.kind != KindInteger {
		return 0, false
	}

	return v.i32, true
}

// FloatValue returns the float content of v and true, or (0, false) if v
// is not a Float.
func (v *Value) FloatValue() (float64, bool) {
	if v.kind != KindFloat {
		return 0, false
	}

	return v.f64, true
}

// Len returns the number of elements of a List or entries of an Array.
// Leaves report 0.
func (v *Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.list)
	case KindArray:
		return len(v.keys)
	default:
		return 0
	}
}

// At returns the List element at index i, or (nil, false) if v is not a
// List or i is out of range.
func (v *Value) At(i int) (*Value, bool) {
	if v.kind != KindList || i < 0 || i >= len(v.list) {
		return nil, false
	}

	return v.list[i], true
}

// Append adds child to the end of a List. It panics if v is not a List;
// callers must check Kind first, as with any other container mutator.
func (v *Value) Append(child *Value) {
	if v.kind != KindList {
		panic("store: Append on non-list Value")
	}

	v.list = append(v.list, child)
}

// SetAt replaces the List element at index i with child. i == Len() is
// permitted and appends; i beyond that is out of range.
func (v *Value) SetAt(i int, child *Value) error {
	if v.kind != KindList {
		panic("store: SetAt on non-list Value")
	}

	switch {
	case i < 0 || i > len(v.list):
		return fmt.Errorf("%w: list index %d out of range (len %d)", ErrPathOutOfRange, i, len(v.list))
	case i == len(v.list):
		v.list = append(v.list, child)
	default:
		v.list[i] = child
	}

	return nil
}

// DeleteAt removes the List element at index i.
func (v *Value) DeleteAt(i int) error {
	if v.kind != KindList {
		panic("store: DeleteAt on non-list Value")
	}

	if i < 0 || i >= len(v.list) {
		return fmt.Errorf("%w: list index %d out of range (len %d)", ErrNotFound, i, len(v.list))
	}

	v.list = append(v.list[:i], v.list[i+1:]...)

	return nil
}

// Get returns the Array entry for key, or (nil, false) if v is not an
// Array or has no such entry.
func (v *Value) Get(key string) (*Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}

	child, ok := v.arr[key]

	return child, ok
}

// Set inserts or replaces the Array entry for key. It panics if v is not
// an Array.
func (v *Value) Set(key string, child *Value) {
	if v.kind != KindArray {
		panic("store: Set on non-array Value")
	}

	if _, exists := v.arr[key]; !exists {
		v.keys = append(v.keys, key)
	}

	v.arr[key] = child
}

// Delete removes the Array entry for key, reporting whether it was
// present.
func (v *Value) Delete(key string) bool {
	if v.kind != KindArray {
		panic("store: Delete on non-array Value")
	}

	if _, ok := v.arr[key]; !ok {
		return false
	}

	delete(v.arr, key)

	for i, k := range v.keys {
		if k == key {
			v.keys = append(v.keys[:i], v.keys[i+1:]...)
			break
		}
	}

	return true
}

// Keys returns the Array's keys in enumeration order. The slice is a
// fresh copy; mutating it does not affect v.
func (v *Value) Keys() []string {
	if v.kind != KindArray {
		return nil
	}

	out := make([]string, len(v.keys))
	copy(out, v.keys)

	return out
}

// Elements returns the List's elements in order. The slice is a fresh
// copy; mutating it does not affect v.
func (v *Value) Elements() []*Value {
	if v.kind != KindList {
		return nil
	}

	out := make([]*Value, len(v.list))
	copy(out, v.list)

	return out
}
