// Copyright (c) 2026 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package runtime implements the rendering of the template trees.
//
// The values of a rendering are represented by Value, a tagged union of
// null, boolean, number, text, list, map and callable. Go values passed as
// variables are converted by ValueOf.
//
// Variables are resolved through a chain of frames: the globals, the
// variables of the rendering, the variables set by the template and a frame
// for every loop iteration and macro call. A macro body does not see the
// variables set by the template, only its parameters, the variables of the
// rendering and the globals.
//
// Custom directives implement the Directive interface and are executed with
// an Env that gives access to the evaluation and to the output.
package runtime
