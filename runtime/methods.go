// Copyright (c) 2026 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runtime

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// method is a built-in method of a kind of value.
type method func(recv Value, args []Value) (Value, error)

var textMethods = map[string]method{
	"length": func(recv Value, args []Value) (Value, error) {
		if err := checkArgs(args, 0); err != nil {
			return Null, err
		}
		return Int(utf8.RuneCountInString(recv.s)), nil
	},
	"upper": func(recv Value, args []Value) (Value, error) {
		if err := checkArgs(args, 0); err != nil {
			return Null, err
		}
		return Text(strings.ToUpper(recv.s)), nil
	},
	"lower": func(recv Value, args []Value) (Value, error) {
		if err := checkArgs(args, 0); err != nil {
			return Null, err
		}
		return Text(strings.ToLower(recv.s)), nil
	},
	"trim": func(recv Value, args []Value) (Value, error) {
		if err := checkArgs(args, 0); err != nil {
			return Null, err
		}
		return Text(strings.TrimSpace(recv.s)), nil
	},
	"contains": func(recv Value, args []Value) (Value, error) {
		if err := checkArgs(args, 1, KindText); err != nil {
			return Null, err
		}
		return Bool(strings.Contains(recv.s, args[0].s)), nil
	},
	"startsWith": func(recv Value, args []Value) (Value, error) {
		if err := checkArgs(args, 1, KindText); err != nil {
			return Null, err
		}
		return Bool(strings.HasPrefix(recv.s, args[0].s)), nil
	},
	"endsWith": func(recv Value, args []Value) (Value, error) {
		if err := checkArgs(args, 1, KindText); err != nil {
			return Null, err
		}
		return Bool(strings.HasSuffix(recv.s, args[0].s)), nil
	},
	"replace": func(recv Value, args []Value) (Value, error) {
		if err := checkArgs(args, 2, KindText, KindText); err != nil {
			return Null, err
		}
		return Text(strings.ReplaceAll(recv.s, args[0].s, args[1].s)), nil
	},
	"split": func(recv Value, args []Value) (Value, error) {
		if err := checkArgs(args, 1, KindText); err != nil {
			return Null, err
		}
		parts := strings.Split(recv.s, args[0].s)
		elements := make([]Value, len(parts))
		for i, p := range parts {
			elements[i] = Text(p)
		}
		return List(elements), nil
	},
	"substring": func(recv Value, args []Value) (Value, error) {
		if len(args) == 0 || len(args) > 2 {
			return Null, fmt.Errorf("wrong number of arguments, have %d, want 1 or 2", len(args))
		}
		runes := []rune(recv.s)
		begin, err := intArg(args, 0)
		if err != nil {
			return Null, err
		}
		end := len(runes)
		if len(args) == 2 {
			end, err = intArg(args, 1)
			if err != nil {
				return Null, err
			}
		}
		if begin < 0 || end > len(runes) || begin > end {
			return Null, fmt.Errorf("range [%d:%d] out of bounds with length %d", begin, end, len(runes))
		}
		return Text(string(runes[begin:end])), nil
	},
	"indexOf": func(recv Value, args []Value) (Value, error) {
		if err := checkArgs(args, 1, KindText); err != nil {
			return Null, err
		}
		i := strings.Index(recv.s, args[0].s)
		if i > 0 {
			i = utf8.RuneCountInString(recv.s[:i])
		}
		return Int(i), nil
	},
}

var listMethods = map[string]method{
	"size": func(recv Value, args []Value) (Value, error) {
		if err := checkArgs(args, 0); err != nil {
			return Null, err
		}
		return Int(len(recv.l)), nil
	},
	"isEmpty": func(recv Value, args []Value) (Value, error) {
		if err := checkArgs(args, 0); err != nil {
			return Null, err
		}
		return Bool(len(recv.l) == 0), nil
	},
	"contains": func(recv Value, args []Value) (Value, error) {
		if err := checkArgs(args, 1); err != nil {
			return Null, err
		}
		for _, e := range recv.l {
			if e.Equal(args[0]) {
				return trueValue, nil
			}
		}
		return falseValue, nil
	},
	"join": func(recv Value, args []Value) (Value, error) {
		if err := checkArgs(args, 1, KindText); err != nil {
			return Null, err
		}
		var b strings.Builder
		for i, e := range recv.l {
			if i > 0 {
				b.WriteString(args[0].s)
			}
			b.WriteString(e.String())
		}
		return Text(b.String()), nil
	},
	"first": func(recv Value, args []Value) (Value, error) {
		if err := checkArgs(args, 0); err != nil {
			return Null, err
		}
		if len(recv.l) == 0 {
			return Null, nil
		}
		return recv.l[0], nil
	},
	"last": func(recv Value, args []Value) (Value, error) {
		if err := checkArgs(args, 0); err != nil {
			return Null, err
		}
		if len(recv.l) == 0 {
			return Null, nil
		}
		return recv.l[len(recv.l)-1], nil
	},
}

var mapMethods = map[string]method{
	"size": func(recv Value, args []Value) (Value, error) {
		if err := checkArgs(args, 0); err != nil {
			return Null, err
		}
		return Int(recv.m.Len()), nil
	},
	"isEmpty": func(recv Value, args []Value) (Value, error) {
		if err := checkArgs(args, 0); err != nil {
			return Null, err
		}
		return Bool(recv.m.Len() == 0), nil
	},
	"containsKey": func(recv Value, args []Value) (Value, error) {
		if err := checkArgs(args, 1, KindText); err != nil {
			return Null, err
		}
		_, ok := recv.m.Get(args[0].s)
		return Bool(ok), nil
	},
	"get": func(recv Value, args []Value) (Value, error) {
		if err := checkArgs(args, 1, KindText); err != nil {
			return Null, err
		}
		v, _ := recv.m.Get(args[0].s)
		return v, nil
	},
	"keys": func(recv Value, args []Value) (Value, error) {
		if err := checkArgs(args, 0); err != nil {
			return Null, err
		}
		keys := make([]Value, 0, recv.m.Len())
		recv.m.Range(func(k string, _ Value) bool {
			keys = append(keys, Text(k))
			return true
		})
		return List(keys), nil
	},
	"values": func(recv Value, args []Value) (Value, error) {
		if err := checkArgs(args, 0); err != nil {
			return Null, err
		}
		values := make([]Value, 0, recv.m.Len())
		recv.m.Range(func(_ string, v Value) bool {
			values = append(values, v)
			return true
		})
		return List(values), nil
	},
}

// lookupMethod returns the built-in method name of the values of kind k.
// It returns nil if there is no such method.
func lookupMethod(k Kind, name string) method {
	switch k {
	case KindText:
		return textMethods[name]
	case KindList:
		return listMethods[name]
	case KindMap:
		return mapMethods[name]
	}
	return nil
}

// checkArgs checks that there are n arguments and that the kinds of the
// first arguments are kinds.
func checkArgs(args []Value, n int, kinds ...Kind) error {
	if len(args) != n {
		return fmt.Errorf("wrong number of arguments, have %d, want %d", len(args), n)
	}
	for i, k := range kinds {
		if args[i].kind != k {
			return fmt.Errorf("cannot use %s as %s in argument %d", args[i].kind, k, i+1)
		}
	}
	return nil
}

// intArg returns the i-th argument as an int.
func intArg(args []Value, i int) (int, error) {
	a := args[i]
	if a.kind != KindNumber || !isInteger(a.n) {
		return 0, fmt.Errorf("cannot use %s as integer in argument %d", a.String(), i+1)
	}
	if a.n.Cmp(decimalInt(math.MinInt)) < 0 || a.n.Cmp(decimalInt(math.MaxInt)) > 0 {
		return 0, fmt.Errorf("integer %s out of range in argument %d", a.String(), i+1)
	}
	return int(a.n.IntPart()), nil
}

// decimalInt returns n as a decimal.
func decimalInt(n int) decimal.Decimal {
	return decimal.New(int64(n), 0)
}
