// Copyright (c) 2026 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runtime

import (
	"io"

	"github.com/open2b/enjoy/ast"
)

// Directive is a custom directive. A custom directive is used in a template
// as "#name(args){body}", where the arguments and the body are optional.
type Directive interface {

	// Parse is called when a template is parsed. It validates the shape of
	// node, returning an error if it is not valid, and can set node.Data.
	// node must not be retained.
	Parse(node *ast.Custom) error

	// Execute executes the directive node. node is the same node passed to
	// Parse, it is shared between renderings and must not be modified.
	Execute(env Env, node *ast.Custom) error
}

// Env is the environment of a custom directive execution. It is valid only
// during the call to Execute.
type Env interface {

	// Path returns the path of the template that contains the directive.
	Path() string

	// Eval evaluates an expression.
	Eval(expr ast.Expression) (Value, error)

	// Lookup returns the value of the variable name and reports whether it
	// is defined.
	Lookup(name string) (Value, bool)

	// Set sets the variable name as the "#set" directive does.
	Set(name string, v Value)

	// Writer returns the writer of the rendering.
	Writer() io.Writer

	// Show writes the textual form of v, escaped according to the engine
	// escape mode.
	Show(v Value) error

	// Execute renders nodes in a new frame. If w is not nil, the nodes are
	// written to w instead of the writer of the rendering.
	Execute(w io.Writer, nodes []ast.Node) error
}

// env implements Env.
type env struct {
	s    *state
	node *ast.Custom
}

func (e *env) Path() string {
	return e.s.path
}

func (e *env) Eval(expr ast.Expression) (Value, error) {
	v, err := e.s.eval(expr)
	if err != nil {
		return Null, withKind(err, e.node.Name)
	}
	return v, nil
}

func (e *env) Lookup(name string) (Value, bool) {
	return e.s.scopes.lookup(name)
}

func (e *env) Set(name string, v Value) {
	e.s.scopes.set(name, v)
}

func (e *env) Writer() io.Writer {
	return e.s.w
}

func (e *env) Show(v Value) error {
	return e.s.show(v, true)
}

func (e *env) Execute(w io.Writer, nodes []ast.Node) error {
	if w != nil {
		out := e.s.w
		e.s.w = newStringWriter(w)
		defer func() { e.s.w = out }()
	}
	e.s.scopes.pushChild()
	err := e.s.render(nodes)
	e.s.scopes.pop()
	return err
}
