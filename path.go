// Copyright (c) 2026 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package enjoy

import (
	"strings"
	"unicode/utf8"
)

// resolvePath resolves the template path name, included by the template
// with path from, and returns its name in the sources. A path starting with
// a slash is relative to the root of the sources, otherwise it is relative
// to the directory of from. An empty from is the root.
//
// It returns ErrInvalidPath if name is not valid or it refers to a file
// outside the root.
func resolvePath(from, name string) (string, error) {
	if name == "" || !utf8.ValidString(name) || name[len(name)-1] == '/' || strings.Contains(name, "//") {
		return "", ErrInvalidPath
	}
	var dir string
	if name[0] == '/' {
		name = name[1:]
	} else if i := strings.LastIndexByte(from, '/'); i >= 0 {
		dir = from[:i+1]
	}
	var elems []string
	for _, elem := range strings.Split(dir+name, "/") {
		switch elem {
		case "", ".":
		case "..":
			if len(elems) == 0 {
				return "", ErrInvalidPath
			}
			elems = elems[:len(elems)-1]
		default:
			elems = append(elems, elem)
		}
	}
	if len(elems) == 0 {
		return "", ErrInvalidPath
	}
	return strings.Join(elems, "/"), nil
}
