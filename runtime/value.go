// Copyright (c) 2026 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runtime

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Kind represents the kind of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBoolean
	KindNumber
	KindText
	KindList
	KindMap
	KindCallable
)

// String returns the name of the kind as it is used in error messages.
func (k Kind) String() string {
	return []string{"null", "boolean", "number", "text", "list", "map", "callable"}[k]
}

// Func is the function of a Callable value.
type Func func(args []Value) (Value, error)

// Value is a value of the template language. The zero Value is Null.
//
// Values are never modified after they are created, so a Value can be shared
// by concurrent renderings.
type Value struct {
	kind Kind
	b    bool
	n    decimal.Decimal
	s    string
	l    []Value
	m    *Map
	f    Func
}

// Null is the null value.
var Null = Value{}

var (
	trueValue  = Value{kind: KindBoolean, b: true}
	falseValue = Value{kind: KindBoolean}
)

// Bool returns a Boolean value.
func Bool(b bool) Value {
	if b {
		return trueValue
	}
	return falseValue
}

// Number returns a Number value.
func Number(n decimal.Decimal) Value {
	return Value{kind: KindNumber, n: n}
}

// Int returns a Number value with value n.
func Int(n int) Value {
	return Value{kind: KindNumber, n: decimal.New(int64(n), 0)}
}

// Text returns a Text value.
func Text(s string) Value {
	return Value{kind: KindText, s: s}
}

// List returns a List value with the given elements. The caller must not
// modify the elements after the call.
func List(elements []Value) Value {
	return Value{kind: KindList, l: elements}
}

// MapOf returns a Map value. The caller must not modify m after the call.
func MapOf(m *Map) Value {
	if m == nil {
		m = &Map{}
	}
	return Value{kind: KindMap, m: m}
}

// Callable returns a Callable value.
func Callable(f Func) Value {
	return Value{kind: KindCallable, f: f}
}

// Kind returns the kind of v.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether v is Null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// Bool returns the boolean of a Boolean value. It returns false for the
// other kinds.
func (v Value) Bool() bool {
	return v.b
}

// Number returns the number of a Number value. It returns zero for the other
// kinds.
func (v Value) Number() decimal.Decimal {
	return v.n
}

// Text returns the text of a Text value. It returns an empty string for the
// other kinds, use String to get the textual form of any value.
func (v Value) Text() string {
	return v.s
}

// List returns the elements of a List value. The returned slice must not be
// modified.
func (v Value) List() []Value {
	return v.l
}

// Map returns the map of a Map value.
func (v Value) Map() *Map {
	return v.m
}

// Func returns the function of a Callable value.
func (v Value) Func() Func {
	return v.f
}

// Truthy reports whether v is true when used as a condition. Null, false,
// zero, the empty text, the empty list and the empty map are false.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBoolean:
		return v.b
	case KindNumber:
		return !v.n.IsZero()
	case KindText:
		return v.s != ""
	case KindList:
		return len(v.l) > 0
	case KindMap:
		return v.m.Len() > 0
	case KindCallable:
		return true
	}
	return false
}

// String returns the textual form of v. Null is the empty string.
func (v Value) String() string {
	if v.kind == KindText {
		return v.s
	}
	var b strings.Builder
	v.writeTo(&b, false)
	return b.String()
}

// writeTo writes the textual form of v to b. nested reports whether v is
// an element of a list or a map.
func (v Value) writeTo(b *strings.Builder, nested bool) {
	switch v.kind {
	case KindNull:
		if nested {
			b.WriteString("null")
		}
	case KindBoolean:
		if v.b {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case KindNumber:
		b.WriteString(v.n.String())
	case KindText:
		b.WriteString(v.s)
	case KindList:
		b.WriteByte('[')
		for i, e := range v.l {
			if i > 0 {
				b.WriteString(", ")
			}
			e.writeTo(b, true)
		}
		b.WriteByte(']')
	case KindMap:
		b.WriteByte('{')
		for i, k := range v.m.keys {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(k)
			b.WriteString(": ")
			v.m.values[k].writeTo(b, true)
		}
		b.WriteByte('}')
	case KindCallable:
		b.WriteString("<func>")
	}
}

// Equal reports whether v and w are equal. Values of different kinds are
// never equal, lists and maps are compared element by element and callables
// are never equal.
func (v Value) Equal(w Value) bool {
	if v.kind != w.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBoolean:
		return v.b == w.b
	case KindNumber:
		return v.n.Equal(w.n)
	case KindText:
		return v.s == w.s
	case KindList:
		if len(v.l) != len(w.l) {
			return false
		}
		for i, e := range v.l {
			if !e.Equal(w.l[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if v.m.Len() != w.m.Len() {
			return false
		}
		for _, k := range v.m.keys {
			e, ok := w.m.values[k]
			if !ok || !v.m.values[k].Equal(e) {
				return false
			}
		}
		return true
	}
	return false
}

// Interface returns v as a Go value: nil, bool, decimal.Decimal, string,
// []interface{}, map[string]interface{} or Func.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindBoolean:
		return v.b
	case KindNumber:
		return v.n
	case KindText:
		return v.s
	case KindList:
		s := make([]interface{}, len(v.l))
		for i, e := range v.l {
			s[i] = e.Interface()
		}
		return s
	case KindMap:
		m := make(map[string]interface{}, v.m.Len())
		for k, e := range v.m.values {
			m[k] = e.Interface()
		}
		return m
	case KindCallable:
		return v.f
	}
	return nil
}

// Map is a map from text keys to values that preserves the insertion order
// of the keys. The zero Map is empty and ready to use.
type Map struct {
	keys   []string
	values map[string]Value
}

// NewMap returns a new empty map with space for n keys.
func NewMap(n int) *Map {
	return &Map{keys: make([]string, 0, n), values: make(map[string]Value, n)}
}

// Set sets the value of key k. If k is already present its position is not
// changed.
func (m *Map) Set(k string, v Value) {
	if m.values == nil {
		m.values = map[string]Value{}
	}
	if _, ok := m.values[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.values[k] = v
}

// Get returns the value of key k and reports whether it is present.
func (m *Map) Get(k string) (Value, bool) {
	if m == nil {
		return Null, false
	}
	v, ok := m.values[k]
	return v, ok
}

// Len returns the number of keys.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// Range calls f for each key and value in insertion order. If f returns
// false, Range stops the iteration.
func (m *Map) Range(f func(k string, v Value) bool) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		if !f(k, m.values[k]) {
			return
		}
	}
}
