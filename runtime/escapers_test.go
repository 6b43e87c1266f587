// Copyright (c) 2026 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runtime

import (
	"bytes"
	"strings"
	"testing"
)

var htmlEscapeCases = []struct {
	src      string
	expected string
}{
	{``, ``},
	{`a`, `a`},
	{`<a>`, `&lt;a&gt;`},
	{`"`, `&#34;`},
	{`'`, `&#39;`},
	{`&amp;`, `&amp;amp;`},
	{`a < b && c > d`, `a &lt; b &amp;&amp; c &gt; d`},
	{`è<è>è`, `è&lt;è&gt;è`},
}

func TestHTMLEscape(t *testing.T) {
	for _, cas := range htmlEscapeCases {
		out := &strings.Builder{}
		err := htmlEscape(out, cas.src)
		if err != nil {
			t.Fatalf("escape error: %s", err)
		}
		if out.String() != cas.expected {
			t.Errorf("source: %q, unexpected %q, expecting %q\n", cas.src, out.String(), cas.expected)
		}
	}
}

// onlyWriter is a writer without the WriteString method.
type onlyWriter struct {
	b bytes.Buffer
}

func (w *onlyWriter) Write(p []byte) (int, error) {
	return w.b.Write(p)
}

func TestNewStringWriter(t *testing.T) {
	w := &onlyWriter{}
	sw := newStringWriter(w)
	if _, ok := sw.(strWriterWrapper); !ok {
		t.Fatalf("unexpected type %T, expecting strWriterWrapper", sw)
	}
	if err := htmlEscape(sw, "<x>"); err != nil {
		t.Fatal(err)
	}
	if w.b.String() != "&lt;x&gt;" {
		t.Errorf("unexpected %q, expecting %q", w.b.String(), "&lt;x&gt;")
	}
	b := &strings.Builder{}
	if sw := newStringWriter(b); sw != strWriter(b) {
		t.Errorf("unexpected wrapped writer %T", sw)
	}
}
