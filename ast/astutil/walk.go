// Copyright (c) 2026 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package astutil

import (
	"fmt"

	"github.com/open2b/enjoy/ast"
)

// Visitor's visit method is invoked for every node encountered by Walk.
type Visitor interface {
	Visit(node ast.Node) (w Visitor)
}

// Walk visits a tree in depth. Initially it calls v.Visit(node), where node
// must not be nil. If the value w returned by v.Visit(node) is different
// from nil, Walk is called recursively using w as the Visitor on all
// children other than nil of the tree. Finally, it calls w.Visit(nil).
//
// The body of a Comment node is not visited.
func Walk(v Visitor, node ast.Node) {

	if v == nil {
		panic("v can't be nil")
	}

	if node == nil {
		panic("node can't be nil")
	}

	v = v.Visit(node)

	if v == nil {
		return
	}

	switch n := node.(type) {

	case *ast.Tree:
		walkNodes(v, n.Nodes)

	case *ast.Show:
		Walk(v, n.Expr)

	case *ast.If:
		for _, branch := range n.Branches {
			Walk(v, branch)
		}
		walkNodes(v, n.Else)

	case *ast.Branch:
		Walk(v, n.Cond)
		walkNodes(v, n.Body)

	case *ast.For:
		Walk(v, n.Ident)
		if n.Second != nil {
			Walk(v, n.Second)
		}
		Walk(v, n.Expr)
		walkNodes(v, n.Body)
		walkNodes(v, n.Else)

	case *ast.Switch:
		Walk(v, n.Expr)
		for _, c := range n.Cases {
			Walk(v, c)
		}
		walkNodes(v, n.Default)

	case *ast.Case:
		for _, expr := range n.Expressions {
			Walk(v, expr)
		}
		walkNodes(v, n.Body)

	case *ast.Define:
		Walk(v, n.Ident)
		for _, p := range n.Parameters {
			Walk(v, p)
		}
		walkNodes(v, n.Body)

	case *ast.ShowMacro:
		Walk(v, n.Macro)
		for _, arg := range n.Args {
			Walk(v, arg)
		}

	case *ast.Include:
		Walk(v, n.Path)

	case *ast.Set:
		for _, a := range n.Assignments {
			Walk(v, a)
		}

	case *ast.Assignment:
		Walk(v, n.Ident)
		Walk(v, n.Expr)

	case *ast.Custom:
		for _, arg := range n.Args {
			Walk(v, arg)
		}
		walkNodes(v, n.Body)

	case *ast.UnaryOperator:
		Walk(v, n.Expr)

	case *ast.BinaryOperator:
		Walk(v, n.Expr1)
		Walk(v, n.Expr2)

	case *ast.Conditional:
		Walk(v, n.Cond)
		Walk(v, n.Then)
		Walk(v, n.Else)

	case *ast.List:
		for _, e := range n.Elements {
			Walk(v, e)
		}

	case *ast.Map:
		for _, kv := range n.KeyValues {
			Walk(v, kv.Key)
			Walk(v, kv.Value)
		}

	case *ast.Call:
		Walk(v, n.Func)
		for _, arg := range n.Args {
			Walk(v, arg)
		}

	case *ast.Index:
		Walk(v, n.Expr)
		Walk(v, n.Index)

	case *ast.Selector:
		Walk(v, n.Expr)

	case *ast.Comment:
	case *ast.Break:
	case *ast.Continue:
	case *ast.Text:
	case *ast.Identifier:
	case *ast.String:
	case *ast.Number:
	case *ast.Boolean:
	case *ast.Null:
		// Nothing to do

	default:
		panic(fmt.Sprintf("No cases were defined for type %T on function Walk", n))
	}

	v.Visit(nil)

}

func walkNodes(v Visitor, nodes []ast.Node) {
	for _, n := range nodes {
		Walk(v, n)
	}
}

// Visit implements the Visitor interface for the f function.
func (f inspector) Visit(node ast.Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

type inspector func(ast.Node) bool

// Inspect visits the tree by calling the function f on every node.
// For more information, see the documentation of the Walk function.
func Inspect(node ast.Node, f func(ast.Node) bool) {
	Walk(inspector(f), node)
}
