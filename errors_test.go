// Copyright (c) 2026 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package enjoy

import (
	"testing"
)

var snippetTests = []struct {
	src      string
	line     int
	column   int
	expected string
}{
	{"#(a b)", 1, 5, "\t#(a b)\n\t    ^"},
	{"a\nbc #(x\nd", 2, 4, "\tbc #(x\n\t   ^"},
	{"a\r\nb", 1, 1, "\ta\n\t^"},
	{"\tx", 1, 2, "\t\tx\n\t\t^"},
	{"èé #(", 1, 4, "\tèé #(\n\t   ^"},
	{"a", 2, 1, ""},
	{"", 1, 1, ""},
	{"a", 0, 1, ""},
}

func TestSnippet(t *testing.T) {
	for _, test := range snippetTests {
		got := snippet([]byte(test.src), test.line, test.column)
		if got != test.expected {
			t.Errorf("source: %q, unexpected %q, expecting %q\n", test.src, got, test.expected)
		}
	}
}
