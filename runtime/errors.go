// Copyright (c) 2026 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runtime

import (
	"errors"
	"fmt"

	"github.com/open2b/enjoy/ast"
)

// RenderError records an error occurred rendering a template, with the path
// of the template, the position and the kind of the directive.
type RenderError struct {
	Path    string       // path of the template.
	Pos     ast.Position // position of the directive or expression.
	Kind    string       // kind of the directive, as "output", "for" or "include".
	Err     error        // error.
	Snippet string       // source snippet, set only in development mode.
}

// Error returns a string representation of the error. The kind is not
// reported for the output directive "#(...)", which has no name.
func (e *RenderError) Error() string {
	s := fmt.Sprintf("%s:%s: ", e.Path, e.Pos)
	if e.Kind != "" && e.Kind != "output" {
		s += "#" + e.Kind + ": "
	}
	s += e.Err.Error()
	if e.Snippet != "" {
		s += "\n" + e.Snippet
	}
	return s
}

// Unwrap returns the wrapped error.
func (e *RenderError) Unwrap() error {
	return e.Err
}

// UndefinedVariableError is the error returned, wrapped in a RenderError, in
// strict mode when a variable is not defined.
type UndefinedVariableError struct {
	Name string
}

func (e *UndefinedVariableError) Error() string {
	return "undefined variable " + e.Name
}

// NullAccessError is the error returned, wrapped in a RenderError, in strict
// mode when a property, an index or a method of a null value is accessed.
type NullAccessError struct {
	Expr string // accessed expression, as "a.b".
}

func (e *NullAccessError) Error() string {
	return "access to null value in " + e.Expr
}

// MacroArityError is the error returned, wrapped in a RenderError, when a
// macro is called with a wrong number of arguments.
type MacroArityError struct {
	Macro string // macro name.
	Have  int    // number of arguments of the call.
	Want  int    // number of parameters of the macro.
}

func (e *MacroArityError) Error() string {
	if e.Have < e.Want {
		return fmt.Sprintf("not enough arguments in call to macro %s, have %d, want %d", e.Macro, e.Have, e.Want)
	}
	return fmt.Sprintf("too many arguments in call to macro %s, have %d, want %d", e.Macro, e.Have, e.Want)
}

// IncludeResolutionError is the error returned, wrapped in a RenderError,
// when the template of an include directive cannot be resolved.
type IncludeResolutionError struct {
	Name string // name of the included template.
	Err  error  // error returned by the includer.
}

func (e *IncludeResolutionError) Error() string {
	return fmt.Sprintf("cannot include %q: %s", e.Name, e.Err)
}

// Unwrap returns the wrapped error.
func (e *IncludeResolutionError) Unwrap() error {
	return e.Err
}

// errBreak is returned from rendering the "break" directive.
// It is managed by the innermost "for" directive.
var errBreak = errors.New("break is not in a loop")

// errContinue is returned from rendering the "continue" directive.
// It is managed by the innermost "for" directive.
var errContinue = errors.New("continue is not in a loop")

// errNoIncluder is returned by an include directive when the rendering has
// no includer.
var errNoIncluder = errors.New("templates cannot be included")
