// Copyright (c) 2026 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package astutil implements methods to walk and dump a tree.
package astutil

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/open2b/enjoy/ast"
)

type dumper struct {
	output      io.Writer
	indentLevel int
}

type errVisitor struct {
	err error
}

func (e errVisitor) Error() string {
	return e.err.Error()
}

// Visit elaborates a node of a tree, writing on a Writer the representation
// of the same node correctly indented. The Visit method is called by the Walk
// function.
func (d *dumper) Visit(node ast.Node) Visitor {

	// Management of the v.Visit(nil) call made by Walk.
	if node == nil {
		d.indentLevel--
		return nil
	}

	d.indentLevel++

	// If the node is of type Tree, it writes it and returns without doing anything else.
	if n, ok := node.(*ast.Tree); ok {
		_, err := fmt.Fprintf(d.output, "Tree: %v:%v\n", strconv.Quote(n.Path), n.Position)
		if err != nil {
			panic(errVisitor{err})
		}
		return d
	}

	// Inserts the right level of indentation.
	for i := 0; i < d.indentLevel; i++ {
		_, err := fmt.Fprint(d.output, "│    ")
		if err != nil {
			panic(errVisitor{err})
		}
	}

	// Determines the type by removing the prefix "*ast."
	typeStr := fmt.Sprintf("%T", node)[5:]

	_, err := fmt.Fprintf(d.output, "%v (%v) %v\n", typeStr, node.Pos(), nodeString(node))
	if err != nil {
		panic(errVisitor{err})
	}

	return d
}

// Dump writes the dump of node on w.
func Dump(w io.Writer, node ast.Node) (err error) {

	defer func() {
		if r := recover(); r != nil {
			if t, ok := r.(errVisitor); ok {
				err = t.err
			} else {
				panic(r)
			}
		}
	}()

	if node == nil {
		return errors.New("can't dump a nil tree")
	}

	d := dumper{w, -1}
	Walk(&d, node)

	return nil
}

// nodeString returns the representation of node in a dump.
func nodeString(node ast.Node) string {
	switch n := node.(type) {
	case *ast.Text:
		text := n.Text
		if len(text) > 30 {
			text = truncate(text, 30) + "..."
		}
		return strconv.Quote(text)
	case *ast.If:
		return "#if"
	case *ast.Branch:
		return n.Cond.String()
	case *ast.For:
		s := "#for(" + n.Ident.Name
		if n.Second != nil {
			s += ", " + n.Second.Name
		}
		return s + " : " + n.Expr.String() + ")"
	case *ast.Break:
		return "#break"
	case *ast.Continue:
		return "#continue"
	case *ast.Switch:
		return "#switch(" + n.Expr.String() + ")"
	case *ast.Case:
		return "#case(" + joinExpressions(n.Expressions) + ")"
	case *ast.Define:
		names := make([]string, len(n.Parameters))
		for i, p := range n.Parameters {
			names[i] = p.Name
		}
		return "#define " + n.Ident.Name + "(" + strings.Join(names, ", ") + ")"
	case *ast.ShowMacro:
		return "#@" + n.Macro.Name + "(" + joinExpressions(n.Args) + ")"
	case *ast.Include:
		return "#include(" + n.Path.String() + ")"
	case *ast.Set:
		assignments := make([]string, len(n.Assignments))
		for i, a := range n.Assignments {
			assignments[i] = a.String()
		}
		return "#set(" + strings.Join(assignments, ", ") + ")"
	case *ast.Comment:
		return "#comment"
	case *ast.Custom:
		s := "#" + n.Name
		if n.Args != nil {
			s += "(" + joinExpressions(n.Args) + ")"
		}
		return s
	case fmt.Stringer:
		return n.String()
	}
	return ""
}

func joinExpressions(expressions []ast.Expression) string {
	var b strings.Builder
	for i, e := range expressions {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.String())
	}
	return b.String()
}

func truncate(s string, maxRunes int) string {
	n := 0
	for i := range s {
		if n == maxRunes {
			return s[:i]
		}
		n++
	}
	return s
}
