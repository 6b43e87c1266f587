// Copyright (c) 2026 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package enjoy

import (
	"bytes"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/open2b/enjoy/internal/compiler"
	"github.com/open2b/enjoy/runtime"
)

var (
	// ErrInvalidPath is returned from the Template method when the name of
	// a template is not a valid path.
	ErrInvalidPath = errors.New("enjoy: invalid path")

	// ErrNotExist is returned from the Template method when the template
	// does not exist.
	ErrNotExist = errors.New("enjoy: template does not exist")

	// ErrNoSources is returned from the Template method when the engine
	// has no sources.
	ErrNoSources = errors.New("enjoy: no sources")
)

// SyntaxError records a compilation error with the path and the position
// where the error occurred.
type SyntaxError = compiler.SyntaxError

// Re-exported errors of the runtime package, so that the most common cases
// can be handled without importing it.
type (
	RenderError            = runtime.RenderError
	UndefinedVariableError = runtime.UndefinedVariableError
	NullAccessError        = runtime.NullAccessError
	MacroArityError        = runtime.MacroArityError
	IncludeResolutionError = runtime.IncludeResolutionError
)

// snippet returns the line of src at the given line number followed by a
// line with a caret under the given column. It returns an empty string if
// src has no such line.
func snippet(src []byte, line, column int) string {
	if line < 1 || len(src) == 0 {
		return ""
	}
	for i := 1; i < line; i++ {
		p := bytes.IndexByte(src, '\n')
		if p < 0 {
			return ""
		}
		src = src[p+1:]
	}
	if p := bytes.IndexByte(src, '\n'); p >= 0 {
		src = src[:p]
	}
	text := strings.TrimSuffix(string(src), "\r")
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "�")
	}
	var b strings.Builder
	b.WriteString("\t")
	b.WriteString(text)
	b.WriteString("\n\t")
	for i, r := range []rune(text) {
		if i == column-1 {
			break
		}
		if r == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	b.WriteByte('^')
	return b.String()
}
