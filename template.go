// Copyright (c) 2026 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package enjoy

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/open2b/enjoy/ast"
	"github.com/open2b/enjoy/runtime"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// Template is a compiled template. A template is never modified after it
// has been compiled and it can be rendered concurrently by multiple
// goroutines.
type Template struct {
	name       string
	src        []byte
	compiledAt time.Time
	tree       *ast.Tree
	vars       []string
	engine     *Engine
}

// Name returns the name of the template.
func (t *Template) Name() string {
	return t.name
}

// Source returns the source of the template.
func (t *Template) Source() string {
	return string(t.src)
}

// CompiledAt returns the time when the template has been compiled.
func (t *Template) CompiledAt() time.Time {
	return t.compiledAt
}

// Tree returns the tree of the template. It must not be modified.
func (t *Template) Tree() *ast.Tree {
	return t.tree
}

// Vars returns the names of the variables used by the template, but not
// defined in it, in sorted order. They include the globals and the
// variables defined by the included templates.
func (t *Template) Vars() []string {
	vars := make([]string, len(t.vars))
	copy(vars, t.vars)
	return vars
}

// Render renders the template and writes the result to w. vars are the
// variables of the rendering.
//
// If the engine has an encoding, the output is encoded with it. Characters
// that cannot be encoded are replaced by HTML character references if the
// escape mode is EscapeHTML, otherwise they are replaced by a substitute
// character.
//
// The output is written to w while rendering. If Render returns an error, the
// output before the failing directive has already been written to w, callers
// that need all or nothing should render to a buffer or use RenderString.
func (t *Template) Render(w io.Writer, vars map[string]interface{}) error {
	e := t.engine
	if e.encoding == nil {
		return t.decorate(runtime.Render(w, t.tree, vars, e.options()))
	}
	var enc transform.Transformer
	if e.escape == EscapeHTML {
		enc = encoding.HTMLEscapeUnsupported(e.encoding.NewEncoder())
	} else {
		enc = encoding.ReplaceUnsupported(e.encoding.NewEncoder())
	}
	ew := transform.NewWriter(w, enc)
	err := runtime.Render(ew, t.tree, vars, e.options())
	if err2 := ew.Close(); err == nil {
		err = err2
	}
	return t.decorate(err)
}

// RenderString renders the template and returns the result. vars are the
// variables of the rendering. The result is not encoded.
func (t *Template) RenderString(vars map[string]interface{}) (string, error) {
	var b strings.Builder
	err := runtime.Render(&b, t.tree, vars, t.engine.options())
	if err != nil {
		return "", t.decorate(err)
	}
	return b.String(), nil
}

// decorate adds, in development mode, the source snippet to a rendering
// error.
func (t *Template) decorate(err error) error {
	if err == nil || !t.engine.devMode {
		return err
	}
	var re *runtime.RenderError
	if errors.As(err, &re) && re.Snippet == "" {
		src := t.src
		if re.Path != t.name {
			src, _ = t.engine.readSource(re.Path)
		}
		re.Snippet = snippet(src, re.Pos.Line, re.Pos.Column)
	}
	return err
}
