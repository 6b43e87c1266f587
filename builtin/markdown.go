// Copyright (c) 2026 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package builtin

import (
	"bytes"
	"errors"

	"github.com/open2b/enjoy/ast"
	"github.com/open2b/enjoy/runtime"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Markdown is the "markdown" directive. It renders its body and converts
// the result from Markdown, with the GitHub Flavored Markdown extensions,
// to HTML.
//
//	#markdown{
//	# #(title)
//	#(description)
//	}
//
// Values shown in the body are escaped as in the rest of the template.
type Markdown struct {
	md goldmark.Markdown
}

// NewMarkdown returns a new markdown directive.
func NewMarkdown() *Markdown {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	return &Markdown{md: md}
}

// Parse implements the runtime.Directive interface.
func (m *Markdown) Parse(node *ast.Custom) error {
	if node.Args != nil {
		return errors.New("unexpected arguments, expecting {")
	}
	if !node.HasBody {
		return errors.New("missing body")
	}
	return nil
}

// Execute implements the runtime.Directive interface.
func (m *Markdown) Execute(env runtime.Env, node *ast.Custom) error {
	var src bytes.Buffer
	err := env.Execute(&src, node.Body)
	if err != nil {
		return err
	}
	return m.md.Convert(src.Bytes(), env.Writer())
}
