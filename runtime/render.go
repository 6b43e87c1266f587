// Copyright (c) 2026 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runtime

import (
	"errors"
	"fmt"
	"io"

	"github.com/open2b/enjoy/ast"
)

// UndefinedPolicy is the policy applied when a variable is not defined or
// a null value is accessed.
type UndefinedPolicy int

const (
	Lenient UndefinedPolicy = iota // evaluate to null.
	Strict                         // fail the rendering.
)

// String returns the name of the policy, "lenient" or "strict".
func (p UndefinedPolicy) String() string {
	if p == Strict {
		return "strict"
	}
	return "lenient"
}

// Default limits of the nesting of includes and macro calls.
const (
	DefaultMaxIncludeDepth = 64
	DefaultMaxCallDepth    = 256
)

// Includer resolves the templates included by the "#include" directive.
type Includer interface {
	// Include returns the tree of the template name included by the
	// template with path from. If the template does not exist, the
	// returned error should wrap fs.ErrNotExist.
	Include(from, name string) (*ast.Tree, error)
}

// Macro is a macro defined in the template with path Path.
type Macro struct {
	Path string
	Node *ast.Define
}

// Macros returns the macros defined at the first level of tree.
func Macros(tree *ast.Tree) map[string]*Macro {
	macros := map[string]*Macro{}
	for _, n := range tree.Nodes {
		if d, ok := n.(*ast.Define); ok {
			macros[d.Ident.Name] = &Macro{Path: tree.Path, Node: d}
		}
	}
	return macros
}

// Options are the options of a rendering.
type Options struct {

	// Undefined is the policy for undefined variables and null accesses.
	Undefined UndefinedPolicy

	// Escape is the escaping of the "#(...)" directive.
	Escape EscapeMode

	// Globals are the values visible in every template, shadowed by the
	// rendering variables.
	Globals map[string]Value

	// Directives are the custom directives.
	Directives map[string]Directive

	// Includer resolves the included templates. If it is nil, the
	// "#include" directive fails.
	Includer Includer

	// Macros are the shared macros. They can be called if a macro with the
	// same name has not been defined by the rendered templates.
	Macros map[string]*Macro

	// MaxIncludeDepth and MaxCallDepth limit the nesting of includes and
	// macro calls. Zero means the default.
	MaxIncludeDepth int
	MaxCallDepth    int
}

// Render renders tree and writes the result to w. vars are the variables
// of the rendering, their values are converted with ValueOf.
func Render(w io.Writer, tree *ast.Tree, vars map[string]interface{}, opts Options) error {
	if w == nil {
		return errors.New("enjoy: w is nil")
	}
	if tree == nil {
		return errors.New("enjoy: tree is nil")
	}
	context := make(map[string]Value, len(vars))
	for name, v := range vars {
		value, err := ValueOf(v)
		if err != nil {
			return fmt.Errorf("enjoy: cannot use variable %q: %w", name, err)
		}
		context[name] = value
	}
	s := &state{
		w:           newStringWriter(w),
		path:        tree.Path,
		scopes:      newScopes(opts.Globals, context),
		undefined:   opts.Undefined,
		escape:      opts.Escape,
		directives:  opts.Directives,
		includer:    opts.Includer,
		shared:      opts.Macros,
		macros:      map[string]*Macro{},
		loop:        Null,
		maxIncludes: opts.MaxIncludeDepth,
		maxCalls:    opts.MaxCallDepth,
	}
	if s.maxIncludes <= 0 {
		s.maxIncludes = DefaultMaxIncludeDepth
	}
	if s.maxCalls <= 0 {
		s.maxCalls = DefaultMaxCallDepth
	}
	err := s.render(tree.Nodes)
	if err == errBreak || err == errContinue {
		// Can only be returned by a custom directive out of a loop.
		err = fmt.Errorf("enjoy: %w", err)
	}
	return err
}

// state represents the state of rendering of a tree.
type state struct {
	w           strWriter
	path        string
	scopes      *scopes
	undefined   UndefinedPolicy
	escape      EscapeMode
	directives  map[string]Directive
	includer    Includer
	shared      map[string]*Macro
	macros      map[string]*Macro
	loop        Value // status of the innermost loop, or Null.
	includes    int
	calls       int
	maxIncludes int
	maxCalls    int
}

// render renders nodes.
func (s *state) render(nodes []ast.Node) error {

	for _, n := range nodes {

		switch node := n.(type) {

		case *ast.Text:

			if _, err := s.w.WriteString(node.Text); err != nil {
				return err
			}

		case *ast.Show:

			kind := "output"
			if !node.Escape {
				kind = "raw"
			}
			v, err := s.eval(node.Expr)
			if err != nil {
				return withKind(err, kind)
			}
			if err = s.show(v, node.Escape); err != nil {
				return withKind(err, kind)
			}

		case *ast.If:

			body := node.Else
			for _, branch := range node.Branches {
				c, err := s.eval(branch.Cond)
				if err != nil {
					return withKind(err, "if")
				}
				if c.Truthy() {
					body = branch.Body
					break
				}
			}
			if err := s.render(body); err != nil {
				return err
			}

		case *ast.For:

			if err := s.renderFor(node); err != nil {
				return err
			}

		case *ast.Break:

			return errBreak

		case *ast.Continue:

			return errContinue

		case *ast.Switch:

			subject, err := s.eval(node.Expr)
			if err != nil {
				return withKind(err, "switch")
			}
			body := node.Default
		Cases:
			for _, c := range node.Cases {
				for _, expr := range c.Expressions {
					v, err := s.eval(expr)
					if err != nil {
						return withKind(err, "case")
					}
					if subject.Equal(v) {
						body = c.Body
						break Cases
					}
				}
			}
			if err = s.render(body); err != nil {
				return err
			}

		case *ast.Define:

			s.macros[node.Ident.Name] = &Macro{Path: s.path, Node: node}

		case *ast.ShowMacro:

			if err := s.renderMacro(node); err != nil {
				return err
			}

		case *ast.Include:

			if err := s.renderInclude(node); err != nil {
				return err
			}

		case *ast.Set:

			for _, a := range node.Assignments {
				v, err := s.eval(a.Expr)
				if err != nil {
					return withKind(err, "set")
				}
				s.scopes.set(a.Ident.Name, v)
			}

		case *ast.Comment:

		case *ast.Custom:

			if err := s.renderCustom(node); err != nil {
				return err
			}

		default:

			return s.errorf(n, "unexpected node %s", n)

		}

	}

	return nil
}

// show writes the textual form of v. Null writes nothing.
func (s *state) show(v Value, escape bool) error {
	if v.kind == KindNull {
		return nil
	}
	if escape && s.escape == EscapeHTML {
		return htmlEscape(s.w, v.String())
	}
	_, err := s.w.WriteString(v.String())
	return err
}

// renderFor renders a "for" directive. Every iteration is rendered in a new
// frame where the loop variables and the "for" status are defined.
func (s *state) renderFor(node *ast.For) error {

	expr, err := s.eval(node.Expr)
	if err != nil {
		return withKind(err, "for")
	}

	var size int
	switch expr.kind {
	case KindList:
		size = len(expr.l)
	case KindMap:
		size = expr.m.Len()
	}
	if size == 0 {
		return s.render(node.Else)
	}

	outer := s.loop
	defer func() { s.loop = outer }()

	iterate := func(i int, first, second Value) (bool, error) {
		status := loopStatus(i, size, outer)
		s.loop = status
		s.scopes.pushChild()
		s.scopes.define("for", status)
		s.scopes.define(node.Ident.Name, first)
		if node.Second != nil {
			if expr.kind == KindList {
				second = status
			}
			s.scopes.define(node.Second.Name, second)
		}
		err := s.render(node.Body)
		s.scopes.pop()
		switch err {
		case nil, errContinue:
			return true, nil
		case errBreak:
			return false, nil
		}
		return false, err
	}

	if expr.kind == KindList {
		for i, e := range expr.l {
			if more, err := iterate(i, e, Null); !more {
				return err
			}
		}
		return nil
	}

	i := 0
	for _, k := range expr.m.keys {
		v := expr.m.values[k]
		var more bool
		if node.Second == nil {
			entry := NewMap(2)
			entry.Set("key", Text(k))
			entry.Set("value", v)
			more, err = iterate(i, MapOf(entry), Null)
		} else {
			more, err = iterate(i, Text(k), v)
		}
		if !more {
			return err
		}
		i++
	}

	return nil
}

// loopStatus returns the status of the iteration i of a loop with size
// iterations. outer is the status of the enclosing loop.
func loopStatus(i, size int, outer Value) Value {
	count := i + 1
	status := NewMap(8)
	status.Set("index", Int(i))
	status.Set("count", Int(count))
	status.Set("first", Bool(i == 0))
	status.Set("last", Bool(count == size))
	status.Set("size", Int(size))
	status.Set("odd", Bool(count%2 == 1))
	status.Set("even", Bool(count%2 == 0))
	status.Set("outer", outer)
	return MapOf(status)
}

// renderMacro renders a macro call. The body of the macro is rendered in a
// new frame, enclosed by the context frame, where the parameters are bound
// to the arguments.
func (s *state) renderMacro(node *ast.ShowMacro) error {

	name := node.Macro.Name
	m, ok := s.macros[name]
	if !ok {
		m, ok = s.shared[name]
	}
	if !ok {
		return withKind(s.errorf(node, "undefined macro %s", name), "call")
	}
	params := m.Node.Parameters
	if len(node.Args) != len(params) {
		err := &MacroArityError{Macro: name, Have: len(node.Args), Want: len(params)}
		return withKind(s.wrap(node, err), "call")
	}
	if s.calls >= s.maxCalls {
		return withKind(s.errorf(node, "maximum macro call depth %d exceeded", s.maxCalls), "call")
	}

	args := make([]Value, len(node.Args))
	for i, arg := range node.Args {
		v, err := s.eval(arg)
		if err != nil {
			return withKind(err, "call")
		}
		args[i] = v
	}

	path, loop := s.path, s.loop
	s.path, s.loop = m.Path, Null
	s.calls++
	s.scopes.push(contextFrame)
	for i, p := range params {
		s.scopes.define(p.Name, args[i])
	}
	err := s.render(m.Node.Body)
	s.scopes.pop()
	s.calls--
	s.path, s.loop = path, loop

	return err
}

// renderInclude renders an "include" directive. The included tree is
// rendered in the current scope.
func (s *state) renderInclude(node *ast.Include) error {

	v, err := s.eval(node.Path)
	if err != nil {
		return withKind(err, "include")
	}
	if v.kind != KindText {
		return withKind(s.errorf(node, "invalid path %s (%s), expecting text", node.Path, v.kind), "include")
	}
	name := v.s
	if s.includer == nil {
		err := &IncludeResolutionError{Name: name, Err: errNoIncluder}
		return withKind(s.wrap(node, err), "include")
	}
	if s.includes >= s.maxIncludes {
		return withKind(s.errorf(node, "maximum include depth %d exceeded", s.maxIncludes), "include")
	}
	tree, err := s.includer.Include(s.path, name)
	if err != nil {
		if _, ok := err.(*IncludeResolutionError); !ok {
			err = &IncludeResolutionError{Name: name, Err: err}
		}
		return withKind(s.wrap(node, err), "include")
	}

	path := s.path
	s.path = tree.Path
	s.includes++
	err = s.render(tree.Nodes)
	s.includes--
	s.path = path

	return err
}

// renderCustom renders a custom directive.
func (s *state) renderCustom(node *ast.Custom) error {
	d, ok := s.directives[node.Name]
	if !ok {
		return withKind(s.errorf(node, "directive is not registered"), node.Name)
	}
	err := d.Execute(&env{s: s, node: node}, node)
	switch err.(type) {
	case nil:
		return nil
	case *RenderError:
		return err
	}
	if err == errBreak || err == errContinue {
		return err
	}
	return withKind(s.wrap(node, err), node.Name)
}

// withKind sets the kind of err, if it is a rendering error without kind,
// and returns err.
func withKind(err error, kind string) error {
	if e, ok := err.(*RenderError); ok && e.Kind == "" {
		e.Kind = kind
	}
	return err
}
