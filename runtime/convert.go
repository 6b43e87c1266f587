// Copyright (c) 2026 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runtime

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
)

var (
	valueType   = reflect.TypeOf(Value{})
	funcType    = reflect.TypeOf(Func(nil))
	decimalType = reflect.TypeOf(decimal.Decimal{})
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// ValueOf returns the Value of a Go value.
//
// nil and nil pointers are Null, booleans are Boolean, integers, floats and
// decimal.Decimal are Number, strings and byte slices are Text, slices and
// arrays are List, maps are Map with the keys sorted, structs are Map with
// the exported fields in declaration order and functions are Callable.
//
// The name of a struct field can be changed with the "enjoy" tag; a field
// with the tag `enjoy:"-"` is skipped. ValueOf returns an error if v
// contains a cycle or a value that cannot be converted, as a channel.
func ValueOf(v interface{}) (Value, error) {
	switch v := v.(type) {
	case nil:
		return Null, nil
	case Value:
		return v, nil
	case bool:
		return Bool(v), nil
	case string:
		return Text(v), nil
	case int:
		return Int(v), nil
	case decimal.Decimal:
		return Number(v), nil
	case Func:
		return Callable(v), nil
	case func(args []Value) (Value, error):
		return Callable(v), nil
	}
	c := converter{visiting: map[uintptr]bool{}}
	return c.valueOf(reflect.ValueOf(v))
}

// converter converts Go values to Values.
type converter struct {
	visiting map[uintptr]bool // pointers, maps and slices being converted
}

func (c *converter) valueOf(rv reflect.Value) (Value, error) {
	if !rv.IsValid() {
		return Null, nil
	}
	if rv.Type() == valueType {
		return rv.Interface().(Value), nil
	}
	if rv.Type() == decimalType {
		return Number(rv.Interface().(decimal.Decimal)), nil
	}
	switch rv.Kind() {
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Number(decimal.New(rv.Int(), 0)), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Number(decimal.NewFromBigInt(new(big.Int).SetUint64(rv.Uint()), 0)), nil
	case reflect.Float32:
		d, err := decimal.NewFromString(strconv.FormatFloat(rv.Float(), 'f', -1, 32))
		if err != nil {
			return Null, fmt.Errorf("cannot convert %v to number", rv.Float())
		}
		return Number(d), nil
	case reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Null, fmt.Errorf("cannot convert %v to number", f)
		}
		return Number(decimal.NewFromFloat(f)), nil
	case reflect.String:
		return Text(rv.String()), nil
	case reflect.Interface:
		if rv.IsNil() {
			return Null, nil
		}
		return c.valueOf(rv.Elem())
	case reflect.Ptr:
		if rv.IsNil() {
			return Null, nil
		}
		if err := c.enter(rv.Pointer()); err != nil {
			return Null, err
		}
		v, err := c.valueOf(rv.Elem())
		c.exit(rv.Pointer())
		return v, err
	case reflect.Slice:
		if rv.IsNil() {
			return List(nil), nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return Text(string(rv.Bytes())), nil
		}
		if err := c.enter(rv.Pointer()); err != nil {
			return Null, err
		}
		v, err := c.list(rv)
		c.exit(rv.Pointer())
		return v, err
	case reflect.Array:
		return c.list(rv)
	case reflect.Map:
		if rv.IsNil() {
			return MapOf(nil), nil
		}
		if err := c.enter(rv.Pointer()); err != nil {
			return Null, err
		}
		v, err := c.mapOf(rv)
		c.exit(rv.Pointer())
		return v, err
	case reflect.Struct:
		return c.structOf(rv)
	case reflect.Func:
		if rv.IsNil() {
			return Null, nil
		}
		if rv.Type().ConvertibleTo(funcType) {
			return Callable(rv.Convert(funcType).Interface().(Func)), nil
		}
		return c.funcOf(rv)
	}
	return Null, fmt.Errorf("cannot convert value of type %s", rv.Type())
}

// enter marks the pointer p as being converted. It returns an error if p is
// already being converted.
func (c *converter) enter(p uintptr) error {
	if c.visiting[p] {
		return errors.New("cannot convert a value that contains a cycle")
	}
	c.visiting[p] = true
	return nil
}

func (c *converter) exit(p uintptr) {
	delete(c.visiting, p)
}

func (c *converter) list(rv reflect.Value) (Value, error) {
	n := rv.Len()
	elements := make([]Value, n)
	for i := 0; i < n; i++ {
		e, err := c.valueOf(rv.Index(i))
		if err != nil {
			return Null, err
		}
		elements[i] = e
	}
	return List(elements), nil
}

func (c *converter) mapOf(rv reflect.Value) (Value, error) {
	keys := rv.MapKeys()
	names := make([]string, len(keys))
	for i, k := range keys {
		if k.Kind() == reflect.String {
			names[i] = k.String()
		} else {
			names[i] = fmt.Sprint(k.Interface())
		}
	}
	index := make([]int, len(keys))
	for i := range index {
		index[i] = i
	}
	sort.Slice(index, func(i, j int) bool { return names[index[i]] < names[index[j]] })
	m := NewMap(len(keys))
	for _, i := range index {
		v, err := c.valueOf(rv.MapIndex(keys[i]))
		if err != nil {
			return Null, err
		}
		m.Set(names[i], v)
	}
	return MapOf(m), nil
}

func (c *converter) structOf(rv reflect.Value) (Value, error) {
	fields, err := getStructFields(rv.Type())
	if err != nil {
		return Null, err
	}
	m := NewMap(len(fields))
	for _, field := range fields {
		fv, err := rv.FieldByIndexErr(field.index)
		if err != nil {
			continue
		}
		v, err := c.valueOf(fv)
		if err != nil {
			return Null, err
		}
		m.Set(field.name, v)
	}
	return MapOf(m), nil
}

// funcOf returns a Callable that calls the function fn. The arguments are
// converted to the types of the parameters and the first result is
// converted to a Value. If the last result is an error, it is returned by
// the Callable.
func (c *converter) funcOf(fn reflect.Value) (Value, error) {
	typ := fn.Type()
	numOut := typ.NumOut()
	returnsErr := numOut > 0 && typ.Out(numOut-1) == errorType
	if numOut > 2 || numOut == 2 && !returnsErr {
		return Null, fmt.Errorf("cannot convert function of type %s", typ)
	}
	f := func(args []Value) (Value, error) {
		numIn := typ.NumIn()
		if typ.IsVariadic() {
			if len(args) < numIn-1 {
				return Null, fmt.Errorf("not enough arguments in call, have %d, want at least %d", len(args), numIn-1)
			}
		} else if len(args) != numIn {
			return Null, fmt.Errorf("wrong number of arguments in call, have %d, want %d", len(args), numIn)
		}
		in := make([]reflect.Value, len(args))
		for i, arg := range args {
			var t reflect.Type
			if typ.IsVariadic() && i >= numIn-1 {
				t = typ.In(numIn - 1).Elem()
			} else {
				t = typ.In(i)
			}
			v, err := goValue(arg, t)
			if err != nil {
				return Null, fmt.Errorf("argument %d: %s", i+1, err)
			}
			in[i] = v
		}
		out := fn.Call(in)
		if returnsErr {
			if err := out[len(out)-1]; !err.IsNil() {
				return Null, err.Interface().(error)
			}
			out = out[:len(out)-1]
		}
		if len(out) == 0 {
			return Null, nil
		}
		return ValueOf(out[0].Interface())
	}
	return Callable(f), nil
}

// goValue converts v to a Go value of type t.
func goValue(v Value, t reflect.Type) (reflect.Value, error) {
	if t == valueType {
		return reflect.ValueOf(v), nil
	}
	if t == decimalType {
		if v.kind != KindNumber {
			return reflect.Value{}, fmt.Errorf("cannot use %s as number", v.kind)
		}
		return reflect.ValueOf(v.n), nil
	}
	switch t.Kind() {
	case reflect.Bool:
		if v.kind == KindBoolean {
			return reflect.ValueOf(v.b).Convert(t), nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if v.kind == KindNumber {
			if !isInteger(v.n) {
				return reflect.Value{}, fmt.Errorf("cannot use %s as integer", v.n)
			}
			rv := reflect.New(t).Elem()
			n := v.n.IntPart()
			if rv.OverflowInt(n) || !v.n.Equal(decimal.New(n, 0)) {
				return reflect.Value{}, fmt.Errorf("%s overflows %s", v.n, t)
			}
			rv.SetInt(n)
			return rv, nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if v.kind == KindNumber {
			if !isInteger(v.n) || v.n.IsNegative() {
				return reflect.Value{}, fmt.Errorf("cannot use %s as unsigned integer", v.n)
			}
			rv := reflect.New(t).Elem()
			n := v.n.BigInt()
			if !n.IsUint64() || rv.OverflowUint(n.Uint64()) {
				return reflect.Value{}, fmt.Errorf("%s overflows %s", v.n, t)
			}
			rv.SetUint(n.Uint64())
			return rv, nil
		}
	case reflect.Float32, reflect.Float64:
		if v.kind == KindNumber {
			f, _ := v.n.Float64()
			return reflect.ValueOf(f).Convert(t), nil
		}
	case reflect.String:
		if v.kind == KindText {
			return reflect.ValueOf(v.s).Convert(t), nil
		}
	case reflect.Interface:
		if t.NumMethod() == 0 {
			i := v.Interface()
			if i == nil {
				return reflect.Zero(t), nil
			}
			return reflect.ValueOf(i), nil
		}
	case reflect.Slice:
		if v.kind == KindList {
			s := reflect.MakeSlice(t, len(v.l), len(v.l))
			for i, e := range v.l {
				ev, err := goValue(e, t.Elem())
				if err != nil {
					return reflect.Value{}, err
				}
				s.Index(i).Set(ev)
			}
			return s, nil
		}
	case reflect.Map:
		if v.kind == KindMap && t.Key().Kind() == reflect.String {
			m := reflect.MakeMapWithSize(t, v.m.Len())
			var err error
			v.m.Range(func(k string, e Value) bool {
				var ev reflect.Value
				ev, err = goValue(e, t.Elem())
				if err != nil {
					return false
				}
				m.SetMapIndex(reflect.ValueOf(k).Convert(t.Key()), ev)
				return true
			})
			if err != nil {
				return reflect.Value{}, err
			}
			return m, nil
		}
	}
	return reflect.Value{}, fmt.Errorf("cannot use %s as %s", v.kind, t)
}

// isInteger reports whether d is an integer.
func isInteger(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(0))
}
