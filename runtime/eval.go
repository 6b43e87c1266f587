// Copyright (c) 2026 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runtime

import (
	"fmt"
	"strings"

	"github.com/open2b/enjoy/ast"
)

// divisionPrecision is the number of fractional digits of a division.
const divisionPrecision = 16

// eval evaluates an expression by returning its value.
func (s *state) eval(expr ast.Expression) (value Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*RenderError); ok {
				err = e
			} else {
				panic(r)
			}
		}
	}()
	return s.evalExpression(expr), nil
}

// evalExpression evaluates an expression and returns its value.
// In the event of an error, calls panic with the error as parameter.
func (s *state) evalExpression(expr ast.Expression) Value {
	switch e := expr.(type) {
	case *ast.String:
		return Text(e.Text)
	case *ast.Number:
		return Number(e.Value)
	case *ast.Boolean:
		return Bool(e.Value)
	case *ast.Null:
		return Null
	case *ast.List:
		elements := make([]Value, len(e.Elements))
		for i, element := range e.Elements {
			elements[i] = s.evalExpression(element)
		}
		return List(elements)
	case *ast.Map:
		m := NewMap(len(e.KeyValues))
		for _, kv := range e.KeyValues {
			m.Set(s.evalExpression(kv.Key).String(), s.evalExpression(kv.Value))
		}
		return MapOf(m)
	case *ast.Identifier:
		return s.evalIdentifier(e)
	case *ast.Selector:
		return s.evalSelector(e)
	case *ast.Index:
		return s.evalIndex(e)
	case *ast.Call:
		return s.evalCall(e)
	case *ast.UnaryOperator:
		return s.evalUnaryOperator(e)
	case *ast.BinaryOperator:
		return s.evalBinaryOperator(e)
	case *ast.Conditional:
		if s.evalExpression(e.Cond).Truthy() {
			return s.evalExpression(e.Then)
		}
		return s.evalExpression(e.Else)
	}
	panic(s.errorf(expr, "unexpected node type %T", expr))
}

// evalIdentifier evaluates an identifier. In strict mode it panics if the
// identifier is not defined.
func (s *state) evalIdentifier(node *ast.Identifier) Value {
	if v, ok := s.scopes.lookup(node.Name); ok {
		return v
	}
	if s.undefined == Strict {
		panic(s.wrap(node, &UndefinedVariableError{Name: node.Name}))
	}
	return Null
}

// nullAccess returns Null or, in strict mode, panics with a NullAccessError.
func (s *state) nullAccess(node ast.Expression) Value {
	if s.undefined == Strict {
		panic(s.wrap(node, &NullAccessError{Expr: node.String()}))
	}
	return Null
}

// evalSelector evaluates a property access.
func (s *state) evalSelector(node *ast.Selector) Value {
	v := s.evalExpression(node.Expr)
	switch v.kind {
	case KindMap:
		e, _ := v.m.Get(node.Ident)
		return e
	case KindNull:
		return s.nullAccess(node)
	}
	panic(s.errorf(node, "cannot access property %s of %s %s", node.Ident, v.kind, node.Expr))
}

// evalIndex evaluates an index expression.
func (s *state) evalIndex(node *ast.Index) Value {
	v := s.evalExpression(node.Expr)
	if v.kind == KindNull {
		return s.nullAccess(node)
	}
	index := s.evalExpression(node.Index)
	switch v.kind {
	case KindList:
		i, ok := s.intIndex(node, index, len(v.l))
		if !ok {
			return Null
		}
		return v.l[i]
	case KindText:
		runes := []rune(v.s)
		i, ok := s.intIndex(node, index, len(runes))
		if !ok {
			return Null
		}
		return Text(string(runes[i]))
	case KindMap:
		e, _ := v.m.Get(index.String())
		return e
	}
	panic(s.errorf(node, "invalid operation: cannot index %s (%s)", node.Expr, v.kind))
}

// intIndex returns the integer of the index value of node. It returns false
// if the index is out of range [0, length) in lenient mode and panics in
// strict mode.
func (s *state) intIndex(node *ast.Index, index Value, length int) (int, bool) {
	if index.kind != KindNumber || !isInteger(index.n) {
		panic(s.errorf(node.Index, "invalid index %s (%s)", node.Index, index.kind))
	}
	if index.n.IsNegative() || index.n.Cmp(decimalInt(length)) >= 0 {
		if s.undefined == Strict {
			panic(s.errorf(node, "index %s out of range [0:%d]", index.n, length))
		}
		return 0, false
	}
	return int(index.n.IntPart()), true
}

// evalCall evaluates a function or a method call.
func (s *state) evalCall(node *ast.Call) Value {
	if sel, ok := node.Func.(*ast.Selector); ok {
		recv := s.evalExpression(sel.Expr)
		if recv.kind == KindNull {
			return s.nullAccess(node)
		}
		if recv.kind == KindMap {
			if f, ok := recv.m.Get(sel.Ident); ok && f.kind == KindCallable {
				return s.call(node, f.f, s.evalArgs(node.Args))
			}
		}
		m := lookupMethod(recv.kind, sel.Ident)
		if m == nil {
			panic(s.errorf(node, "%s %s has no method %s", recv.kind, sel.Expr, sel.Ident))
		}
		v, err := m(recv, s.evalArgs(node.Args))
		if err != nil {
			panic(s.errorf(node, "%s: %w", sel.Ident, err))
		}
		return v
	}
	f := s.evalExpression(node.Func)
	switch f.kind {
	case KindCallable:
		return s.call(node, f.f, s.evalArgs(node.Args))
	case KindNull:
		return s.nullAccess(node)
	}
	panic(s.errorf(node, "cannot call non-callable %s (%s)", node.Func, f.kind))
}

// call calls f with arguments args.
func (s *state) call(node *ast.Call, f Func, args []Value) (v Value) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*RenderError); ok {
				panic(e)
			}
			panic(s.errorf(node, "call of %s panicked: %v", node.Func, r))
		}
	}()
	v, err := f(args)
	if err != nil {
		panic(s.errorf(node, "%s: %w", node.Func, err))
	}
	return v
}

// evalArgs evaluates the arguments of a call.
func (s *state) evalArgs(args []ast.Expression) []Value {
	values := make([]Value, len(args))
	for i, arg := range args {
		values[i] = s.evalExpression(arg)
	}
	return values
}

// evalUnaryOperator evaluates a unary operator and returns its value.
// On error it calls panic with the error as parameter.
func (s *state) evalUnaryOperator(node *ast.UnaryOperator) Value {
	v := s.evalExpression(node.Expr)
	switch node.Op {
	case ast.OperatorNot:
		return Bool(!v.Truthy())
	case ast.OperatorSubtraction:
		if v.kind == KindNumber {
			return Number(v.n.Neg())
		}
		panic(s.errorf(node, "invalid operation: %s (operator - not defined on %s)", node, v.kind))
	}
	panic("unknown unary operator")
}

// evalBinaryOperator evaluates a binary operator and returns its value.
// On error it calls panic with the error as parameter.
func (s *state) evalBinaryOperator(node *ast.BinaryOperator) Value {

	switch node.Op {
	case ast.OperatorAnd:
		if !s.evalExpression(node.Expr1).Truthy() {
			return falseValue
		}
		return Bool(s.evalExpression(node.Expr2).Truthy())
	case ast.OperatorOr:
		if s.evalExpression(node.Expr1).Truthy() {
			return trueValue
		}
		return Bool(s.evalExpression(node.Expr2).Truthy())
	}

	e1 := s.evalExpression(node.Expr1)
	e2 := s.evalExpression(node.Expr2)

	switch node.Op {

	case ast.OperatorEqual:
		return Bool(e1.Equal(e2))

	case ast.OperatorNotEqual:
		return Bool(!e1.Equal(e2))

	case ast.OperatorAddition:
		if e1.kind == KindText || e2.kind == KindText {
			return Text(e1.String() + e2.String())
		}
		if e1.kind == KindNumber && e2.kind == KindNumber {
			return Number(e1.n.Add(e2.n))
		}

	case ast.OperatorSubtraction:
		if e1.kind == KindNumber && e2.kind == KindNumber {
			return Number(e1.n.Sub(e2.n))
		}

	case ast.OperatorMultiplication:
		if e1.kind == KindNumber && e2.kind == KindNumber {
			return Number(e1.n.Mul(e2.n))
		}

	case ast.OperatorDivision:
		if e1.kind == KindNumber && e2.kind == KindNumber {
			if e2.n.IsZero() {
				panic(s.errorf(node, "division by zero"))
			}
			return Number(e1.n.DivRound(e2.n, divisionPrecision))
		}

	case ast.OperatorModulo:
		if e1.kind == KindNumber && e2.kind == KindNumber {
			if e2.n.IsZero() {
				panic(s.errorf(node, "division by zero"))
			}
			return Number(e1.n.Mod(e2.n))
		}

	case ast.OperatorLess, ast.OperatorLessEqual, ast.OperatorGreater, ast.OperatorGreaterEqual:
		var c int
		switch {
		case e1.kind == KindNumber && e2.kind == KindNumber:
			c = e1.n.Cmp(e2.n)
		case e1.kind == KindText && e2.kind == KindText:
			c = strings.Compare(e1.s, e2.s)
		default:
			panic(s.errorf(node, "invalid operation: %s (cannot compare %s and %s)", node, e1.kind, e2.kind))
		}
		switch node.Op {
		case ast.OperatorLess:
			return Bool(c < 0)
		case ast.OperatorLessEqual:
			return Bool(c <= 0)
		case ast.OperatorGreater:
			return Bool(c > 0)
		}
		return Bool(c >= 0)

	}

	if e1.kind == e2.kind {
		panic(s.errorf(node, "invalid operation: %s (operator %s not defined on %s)", node, node.Op, e1.kind))
	}
	panic(s.errorf(node, "invalid operation: %s (mismatched kinds %s and %s)", node, e1.kind, e2.kind))
}

// errorf builds and returns a rendering error.
func (s *state) errorf(node ast.Node, format string, args ...interface{}) *RenderError {
	return s.wrap(node, fmt.Errorf(format, args...))
}

// wrap wraps err in a rendering error with the position of node.
func (s *state) wrap(node ast.Node, err error) *RenderError {
	e := &RenderError{Path: s.path, Err: err}
	if pos := node.Pos(); pos != nil {
		e.Pos = *pos
	}
	return e
}
