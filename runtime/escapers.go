// Copyright (c) 2026 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runtime

import "io"

// EscapeMode is the escaping applied to the values shown by the "#(...)"
// directive.
type EscapeMode int

const (
	EscapeHTML EscapeMode = iota // escape the HTML reserved characters.
	EscapeNone                   // do not escape.
)

// String returns the name of the escape mode, "html" or "none".
func (m EscapeMode) String() string {
	if m == EscapeNone {
		return "none"
	}
	return "html"
}

type strWriter interface {
	Write(b []byte) (int, error)
	WriteString(s string) (int, error)
}

type strWriterWrapper struct {
	w io.Writer
}

func (wr strWriterWrapper) Write(b []byte) (int, error) {
	return wr.w.Write(b)
}

func (wr strWriterWrapper) WriteString(s string) (int, error) {
	return wr.w.Write([]byte(s))
}

func newStringWriter(wr io.Writer) strWriter {
	if sw, ok := wr.(strWriter); ok {
		return sw
	}
	return strWriterWrapper{wr}
}

// htmlEscape escapes the string s, so it can be placed inside HTML, and
// writes it on w.
func htmlEscape(w strWriter, s string) error {
	last := 0
	for i := 0; i < len(s); i++ {
		var esc string
		switch s[i] {
		case '"':
			esc = "&#34;"
		case '\'':
			esc = "&#39;"
		case '&':
			esc = "&amp;"
		case '<':
			esc = "&lt;"
		case '>':
			esc = "&gt;"
		default:
			continue
		}
		if last != i {
			if _, err := w.WriteString(s[last:i]); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(esc); err != nil {
			return err
		}
		last = i + 1
	}
	if last != len(s) {
		_, err := w.WriteString(s[last:])
		return err
	}
	return nil
}
