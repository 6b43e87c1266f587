// Copyright (c) 2026 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package enjoy implements a template engine where directives are written
// as "#name(arguments){body}" inside the text.
//
// For example
//
//	engine, err := enjoy.New(enjoy.Config{Sources: enjoy.DirFS("templates")})
//	if err != nil {
//		log.Fatal(err)
//	}
//	err = engine.Render(os.Stdout, "index.html", map[string]interface{}{
//		"title": "Products",
//		"items": items,
//	})
//
// renders the template "templates/index.html"
//
//	<h1>#(title)</h1>
//	#for(item : items){
//	  <p>#(for.count). #(item.name)#if(item.price > 100){ (premium)}</p>
//	}#else{
//	  <p>No products.</p>
//	}
//
// Templates are compiled once and cached by the engine. A compiled template
// can be rendered concurrently by multiple goroutines.
//
// # Directives
//
//	#(expr)                       shows the value of expr, escaped
//	#raw(expr)                    shows the value of expr, not escaped
//	#if(c){...}#elseif(c){...}#else{...}
//	#for(x : list){...}#else{...} x is the element, "for" the loop status
//	#for(x, s : list){...}        s is the loop status
//	#for(k, v : map){...}         k is the key and v the value
//	#break #continue
//	#switch(x){#case(1, 2){...}#default{...}}
//	#define name(a, b){...}       defines a macro
//	#@name(1, 2) #call(name, 1, 2)
//	#include("header.html")
//	#set(a = 1, b = a + 1)
//	#comment{...} ## line comment #-- block comment --#
//	#[[ literal text ]]#
//
// A loop status has the fields index, count, first, last, size, odd, even
// and outer.
//
// # Expressions
//
// Expressions have the values null, booleans, numbers, texts, lists, maps
// and functions with the operators, from the lowest precedence
//
//	c ? a : b
//	||
//	&&
//	== !=
//	< <= > >=
//	+ -
//	* / %
//	! - (unary)
//
// Numbers are decimal numbers with arbitrary precision. The + operator with
// a text operand converts the other operand to text and concatenates them.
//
// # Errors
//
// Compiling a template returns a *SyntaxError, rendering returns a
// *RenderError, with the position in the source. In development mode the
// error messages include a snippet of the source.
package enjoy
