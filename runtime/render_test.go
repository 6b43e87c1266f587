// Copyright (c) 2026 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runtime

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"
	"testing"

	"github.com/open2b/enjoy/ast"
	"github.com/open2b/enjoy/internal/compiler"
)

type user struct {
	Name   string
	Email  string `enjoy:"mail"`
	secret string
}

var rendererExprTests = []struct {
	src  string
	res  string
	vars map[string]interface{}
}{
	{`"a"`, "a", nil},
	{`'a'`, "a", nil},
	{`"a\"b"`, "a&#34;b", nil},
	{`'a\nb'`, `a\nb`, nil},
	{"3", "3", nil},
	{"-3", "-3", nil},
	{"3.50", "3.5", nil},
	{"3.0", "3", nil},
	{"true", "true", nil},
	{"false", "false", nil},
	{"null", "", nil},
	{"2 - 3", "-1", nil},
	{"2 * 3.1", "6.2", nil},
	{"1 / 4", "0.25", nil},
	{"2 / 3", "0.6666666666666667", nil},
	{"6 / 3", "2", nil},
	{"7 % 3", "1", nil},
	{"7.5 % 2", "1.5", nil},
	{"1 + 2 * 3", "7", nil},
	{"(1 + 2) * 3", "9", nil},
	{"10 - 2 - 3", "5", nil},
	{"-2 * -3", "6", nil},
	{`"a" + "b"`, "ab", nil},
	{`"a" + 1`, "a1", nil},
	{`1 + "a"`, "1a", nil},
	{`1 + 2 + "a"`, "3a", nil},
	{`"a" + 1 + 2`, "a12", nil},
	{`"a" + true`, "atrue", nil},
	{`"a" + null`, "a", nil},
	{`"a" + [1, null]`, "a[1, null]", nil},
	{"1 == 1.0", "true", nil},
	{`1 == "1"`, "false", nil},
	{`"a" != "b"`, "true", nil},
	{"null == null", "true", nil},
	{"[1, 2] == [1, 2]", "true", nil},
	{"2 < 10", "true", nil},
	{"2 >= 2", "true", nil},
	{`"b" > "a"`, "true", nil},
	{"!0", "true", nil},
	{`!""`, "true", nil},
	{"![]", "true", nil},
	{"!{}", "true", nil},
	{`!"a"`, "false", nil},
	{`true && "x"`, "true", nil},
	{"null || 0", "false", nil},
	{"1 || x.y", "true", nil},
	{"0 && x.y", "false", nil},
	{`a ? "y" : "n"`, "y", map[string]interface{}{"a": true}},
	{`a ? "y" : "n"`, "n", nil},
	{"false ? 1 : true ? 2 : 3", "2", nil},
	{"[1, 2, 3]", "[1, 2, 3]", nil},
	{`{a: 1, "b": "x", c: [true]}`, "{a: 1, b: x, c: [true]}", nil},
	{"[1, 2][1]", "2", nil},
	{"l[0]", "a", map[string]interface{}{"l": []string{"a", "b"}}},
	{"l[5]", "", map[string]interface{}{"l": []string{"a", "b"}}},
	{`"héllo"[1]`, "é", nil},
	{"m.a", "1", map[string]interface{}{"m": map[string]int{"a": 1}}},
	{`m["a"]`, "1", map[string]interface{}{"m": map[string]int{"a": 1}}},
	{"m.b", "", map[string]interface{}{"m": map[string]int{"a": 1}}},
	{"m", "{a: 1, b: 2}", map[string]interface{}{"m": map[string]int{"b": 2, "a": 1}}},
	{"u.Name", "Alice", map[string]interface{}{"u": user{Name: "Alice"}}},
	{"u.mail", "a@example.com", map[string]interface{}{"u": &user{Email: "a@example.com"}}},
	{"u.secret", "", map[string]interface{}{"u": user{secret: "s"}}},
	{"missing", "", nil},
	{"missing.a", "", nil},
	{"missing[0]", "", nil},
	{"missing.a()", "", nil},
	{`s.length()`, "5", map[string]interface{}{"s": "héllo"}},
	{`"Abc".upper()`, "ABC", nil},
	{`"Abc".lower()`, "abc", nil},
	{`" x ".trim()`, "x", nil},
	{`"abc".contains("b")`, "true", nil},
	{`"abc".startsWith("ab")`, "true", nil},
	{`"abc".endsWith("ab")`, "false", nil},
	{`"a-b-c".replace("-", "+")`, "a+b+c", nil},
	{`"a,b".split(",")`, "[a, b]", nil},
	{`"héllo".substring(1, 3)`, "él", nil},
	{`"héllo".substring(3)`, "lo", nil},
	{`"héllo".indexOf("l")`, "2", nil},
	{`"héllo".indexOf("x")`, "-1", nil},
	{"[1, 2].size()", "2", nil},
	{"[].isEmpty()", "true", nil},
	{"[1, 2].contains(2)", "true", nil},
	{`[1, "a"].contains("1")`, "false", nil},
	{`[1, 2].join("-")`, "1-2", nil},
	{"[1, 2].first()", "1", nil},
	{"[1, 2].last()", "2", nil},
	{"[].first()", "", nil},
	{"{a: 1}.size()", "1", nil},
	{"{a: 1}.isEmpty()", "false", nil},
	{`{a: 1}.containsKey("a")`, "true", nil},
	{`{a: 1}.get("a")`, "1", nil},
	{"{a: 1, b: 2}.keys()", "[a, b]", nil},
	{"{a: 1, b: 2}.values()", "[1, 2]", nil},
	{"f(2, 3)", "5", map[string]interface{}{"f": func(a, b int) int { return a + b }}},
	{`f("a", "b", "c")`, "a.b.c", map[string]interface{}{"f": func(s ...string) string { return strings.Join(s, ".") }}},
	{"f()", "<func>", map[string]interface{}{"f": func() func() {
		return func() {}
	}}},
	{"m.size()", "custom", map[string]interface{}{"m": map[string]interface{}{"size": func() string { return "custom" }}}},
	{`"<b>"`, "&lt;b&gt;", nil},
	{`"a'&"`, "a&#39;&amp;", nil},
	{"x", "5", map[string]interface{}{"x": Int(5)}},
}

func TestRenderExpressions(t *testing.T) {
	for _, expr := range rendererExprTests {
		src := "#(" + expr.src + ")"
		res, err := renderSource(src, expr.vars, Options{})
		if err != nil {
			t.Errorf("source: %q, %s\n", src, err)
			continue
		}
		if res != expr.res {
			t.Errorf("source: %q, unexpected %q, expecting %q\n", src, res, expr.res)
		}
	}
}

var rendererDirectiveTests = []struct {
	src  string
	res  string
	vars map[string]interface{}
}{
	{"", "", nil},
	{"plain text { } #fff", "plain text { } #fff", nil},
	{"Hello #(name)!", "Hello World!", map[string]interface{}{"name": "World"}},
	{"Hello #(name)!", "Hello &lt;b&gt;X&lt;/b&gt;!", map[string]interface{}{"name": "<b>X</b>"}},
	{"Hello #raw(name)!", "Hello <b>X</b>!", map[string]interface{}{"name": "<b>X</b>"}},
	{"#if(a){yes}", "yes", map[string]interface{}{"a": 1}},
	{"#if(a){yes}", "", nil},
	{"#if(a){a}#elseif(b){b}#else{c}", "b", map[string]interface{}{"b": true}},
	{"#if(a){a}#elseif(b){b}#else{c}", "c", nil},
	{"#if(a){a} #else{c}", "c", nil},
	{"#if(a){a}#elseif(b){b}", "a", map[string]interface{}{"a": true, "b": true}},
	{"#for(item : items){#(item) }", "1 2 3 ", map[string]interface{}{"items": []int{1, 2, 3}}},
	{"#for(item : items){#(item)}", "", map[string]interface{}{"items": []int{}}},
	{"#for(item : items){#(item)}#else{empty}", "empty", map[string]interface{}{"items": []int{}}},
	{"#for(item : items){#(item)}#else{empty}", "empty", nil},
	{"#for(item : 5){#(item)}", "", nil},
	{"#for(x, s : l){#(s.index)#(s.count)#(s.first)#(s.last) }", "01truefalse 12falsetrue ", map[string]interface{}{"l": []string{"a", "b"}}},
	{"#for(x : l){#(for.index):#(x)#if(!for.last){,}}", "0:a,1:b,2:c", map[string]interface{}{"l": []string{"a", "b", "c"}}},
	{"#for(x : l){#(for.size)#(for.odd)#(for.even) }", "3truefalse 3falsetrue 3truefalse ", map[string]interface{}{"l": []int{1, 2, 3}}},
	{"#for(k, v : m){#(k)=#(v);}", "a=1;b=2;", map[string]interface{}{"m": map[string]int{"b": 2, "a": 1}}},
	{"#for(e : m){#(e.key)=#(e.value);}", "a=1;", map[string]interface{}{"m": map[string]int{"a": 1}}},
	{"#for(x : {z: 1, a: 2}){#(x.key)}", "za", nil},
	{"#for(x : [1, 2]){#for(y : [3, 4]){#(for.outer.index)#(for.index) }}", "00 01 10 11 ", nil},
	{"#for(x : [1, 2]){#(for.outer)}", "", nil},
	{"#for(x : [1, 2, 3, 4]){#if(x == 3){#break}#(x)}", "12", nil},
	{"#for(x : [1, 2, 3, 4]){#if(x % 2 == 0){#continue}#(x)}", "13", nil},
	{"#(x)#for(x : [1, 2]){#(x)}#(x)", "a12a", map[string]interface{}{"x": "a"}},
	{"#switch(x){#case(1){A}#case(2){B}#default{C}}", "B", map[string]interface{}{"x": 2}},
	{"#switch(x){#case(1){A}#case(2){B}#default{C}}", "C", map[string]interface{}{"x": "2"}},
	{"#switch(x){\n  #case(1, 2){A}\n  #case(3){B}\n}", "A", map[string]interface{}{"x": 2}},
	{"#switch(x){#case(1){A}}", "", nil},
	{"#define m(a){<#(a)>}#@m(1)#call(m, 2)#call(\"m\", 3)", "<1><2><3>", nil},
	{"#define m(){#(x)}#@m()", "g", map[string]interface{}{"x": "g"}},
	{"#set(x = 1)#define m(){#(x)}#@m()", "", nil},
	{"#define m(x){#(x)}#set(x = 1)#@m(2)#(x)", "21", nil},
	{"#define m(){a}#define m(){b}#@m()", "b", nil},
	{"#define m(n){#(n)#if(n > 0){#@m(n - 1)}}#@m(3)", "3210", nil},
	{"#set(a = 1, b = a + 1)#(a)#(b)", "12", nil},
	{"#set(a = 1)#for(x : [1, 2]){#set(a = a + x)}#(a)", "4", nil},
	{"#for(x : [1, 2]){#set(b = x)}#(b)", "", nil},
	{"#set(x = \"t\")#(x)", "t", map[string]interface{}{"x": "c"}},
	{"#comment{#(a.b.c())}ok", "ok", nil},
	{"a## comment\nb", "ab", nil},
	{"a#-- comment\n --#b", "ab", nil},
	{"#[[#(a)]]#", "#(a)", nil},
	{"#(m.f(2))", "4", map[string]interface{}{"m": map[string]interface{}{"f": func(n int) int { return n * 2 }}}},
}

func TestRenderDirectives(t *testing.T) {
	for _, dir := range rendererDirectiveTests {
		res, err := renderSource(dir.src, dir.vars, Options{})
		if err != nil {
			t.Errorf("source: %q, %s\n", dir.src, err)
			continue
		}
		if res != dir.res {
			t.Errorf("source: %q, unexpected %q, expecting %q\n", dir.src, res, dir.res)
		}
	}
}

var rendererErrorTests = []struct {
	src  string
	err  string
	vars map[string]interface{}
}{
	{"#(1 / 0)", "t.html:1:5: division by zero", nil},
	{"#(1 % 0)", "t.html:1:5: division by zero", nil},
	{`#(1 - "a")`, `t.html:1:5: invalid operation: 1 - "a" (mismatched kinds number and text)`, nil},
	{"#(true * true)", "t.html:1:8: invalid operation: true * true (operator * not defined on boolean)", nil},
	{`#(1 < "a")`, `t.html:1:5: invalid operation: 1 < "a" (cannot compare number and text)`, nil},
	{`#(-"a")`, `t.html:1:3: invalid operation: -"a" (operator - not defined on text)`, nil},
	{"#if(1 / 0){}", "t.html:1:7: #if: division by zero", nil},
	{"#for(x : 1 / 0){}", "t.html:1:12: #for: division by zero", nil},
	{"#raw(1 / 0)", "t.html:1:8: #raw: division by zero", nil},
	{"#(x.y)", "t.html:1:3: cannot access property y of number x", map[string]interface{}{"x": 1}},
	{"#(x.foo())", "t.html:1:3: text x has no method foo", map[string]interface{}{"x": "a"}},
	{"#(x())", "t.html:1:3: cannot call non-callable x (number)", map[string]interface{}{"x": 1}},
	{"#(x[1.5])", "t.html:1:5: invalid index 1.5 (number)", map[string]interface{}{"x": []int{1}}},
	{"#(f())", "t.html:1:3: f: boom", map[string]interface{}{"f": func() error { return errors.New("boom") }}},
	{"#(f())", "t.html:1:3: call of f panicked: boom", map[string]interface{}{"f": func() string { panic("boom") }}},
	{`#("a".substring(5))`, "t.html:1:3: substring: range [5:1] out of bounds with length 1", nil},
	{`#("hello".substring(18446744073709551617))`, "t.html:1:3: substring: integer 18446744073709551617 out of range in argument 1", nil},
	{`#("hello".substring(0, -18446744073709551615))`, "t.html:1:3: substring: integer -18446744073709551615 out of range in argument 2", nil},
	{"#@m()", "t.html:1:1: #call: undefined macro m", nil},
	{"#@m()#define m(){}", "t.html:1:1: #call: undefined macro m", nil},
	{"#define m(a){}#@m()", "t.html:1:15: #call: not enough arguments in call to macro m, have 0, want 1", nil},
	{"#define m(a){}#call(m, 1, 2)", "t.html:1:15: #call: too many arguments in call to macro m, have 2, want 1", nil},
	{"#define m(){#@m()}#@m()", "t.html:1:13: #call: maximum macro call depth 256 exceeded", nil},
	{"#include(\"a.html\")", `t.html:1:1: #include: cannot include "a.html": templates cannot be included`, nil},
	{"#include(5)", "t.html:1:1: #include: invalid path 5 (number), expecting text", nil},
}

func TestRenderErrors(t *testing.T) {
	for _, e := range rendererErrorTests {
		_, err := renderSource(e.src, e.vars, Options{})
		if err == nil {
			t.Errorf("source: %q, expecting error %q, got no error\n", e.src, e.err)
			continue
		}
		var re *RenderError
		if !errors.As(err, &re) {
			t.Errorf("source: %q, unexpected error type %T\n", e.src, err)
			continue
		}
		if err.Error() != e.err {
			t.Errorf("source: %q, unexpected error %q, expecting %q\n", e.src, err, e.err)
		}
	}
}

var rendererErrorKindTests = []struct {
	src  string
	kind string
}{
	{"#(1 / 0)", "output"},
	{"#raw(1 / 0)", "raw"},
	{"#if(1 / 0){}", "if"},
	{"#if(false){}#elseif(1 / 0){}", "if"},
	{"#for(x : 1 / 0){}", "for"},
	{"#switch(1 / 0){}", "switch"},
	{"#set(a = 1 / 0)", "set"},
	{"#define m(a){}#@m(1 / 0)", "call"},
	{"#@m()", "call"},
	{"#include(1 / 0)", "include"},
	{"#include(\"a.html\")", "include"},
	{"#for(x : [1]){#(x / 0)}", "output"},
}

func TestRenderErrorKind(t *testing.T) {
	for _, e := range rendererErrorKindTests {
		_, err := renderSource(e.src, nil, Options{})
		var re *RenderError
		if !errors.As(err, &re) {
			t.Errorf("source: %q, expecting RenderError, got %v\n", e.src, err)
			continue
		}
		if re.Kind != e.kind {
			t.Errorf("source: %q, unexpected kind %q, expecting %q\n", e.src, re.Kind, e.kind)
		}
	}
}

func TestMaxCallDepth(t *testing.T) {
	for _, depth := range []int{1, 3} {
		_, err := renderSource("#define m(){#@m()}#@m()", nil, Options{MaxCallDepth: depth})
		expected := fmt.Sprintf("t.html:1:13: #call: maximum macro call depth %d exceeded", depth)
		if err == nil || err.Error() != expected {
			t.Errorf("depth %d, unexpected error %v, expecting %q", depth, err, expected)
		}
	}
}

func TestStrictMode(t *testing.T) {
	strict := Options{Undefined: Strict}

	_, err := renderSource("#(missing)", nil, strict)
	var uv *UndefinedVariableError
	if !errors.As(err, &uv) {
		t.Fatalf("expecting UndefinedVariableError, got %v", err)
	}
	if uv.Name != "missing" {
		t.Errorf("unexpected name %q, expecting %q", uv.Name, "missing")
	}
	if err.Error() != "t.html:1:3: undefined variable missing" {
		t.Errorf("unexpected error %q", err)
	}

	_, err = renderSource("#if(x.a){}", map[string]interface{}{"x": nil}, strict)
	var na *NullAccessError
	if !errors.As(err, &na) {
		t.Fatalf("expecting NullAccessError, got %v", err)
	}
	if na.Expr != "x.a" {
		t.Errorf("unexpected expression %q, expecting %q", na.Expr, "x.a")
	}
	if err.Error() != "t.html:1:5: #if: access to null value in x.a" {
		t.Errorf("unexpected error %q", err)
	}

	_, err = renderSource("#(l[2])", map[string]interface{}{"l": []int{1}}, strict)
	if err == nil || err.Error() != "t.html:1:3: index 2 out of range [0:1]" {
		t.Errorf("unexpected error %v", err)
	}

	res, err := renderSource("#(m.b)#(x)", map[string]interface{}{"m": map[string]int{}, "x": nil}, strict)
	if err != nil {
		t.Fatalf("unexpected error %q", err)
	}
	if res != "" {
		t.Errorf("unexpected %q, expecting %q", res, "")
	}

	var me *MacroArityError
	_, err = renderSource("#define m(a, b){}#@m(1)", nil, Options{})
	if !errors.As(err, &me) {
		t.Fatalf("expecting MacroArityError, got %v", err)
	}
	if me.Have != 1 || me.Want != 2 {
		t.Errorf("unexpected have %d and want %d, expecting 1 and 2", me.Have, me.Want)
	}
}

func TestEscapeNone(t *testing.T) {
	res, err := renderSource("#(s)", map[string]interface{}{"s": "<a>"}, Options{Escape: EscapeNone})
	if err != nil {
		t.Fatal(err)
	}
	if res != "<a>" {
		t.Errorf("unexpected %q, expecting %q", res, "<a>")
	}
}

func TestGlobals(t *testing.T) {
	opts := Options{
		Globals: map[string]Value{
			"site":  Text("example"),
			"title": Text("global"),
		},
	}
	res, err := renderSource("#(site) #(title)", map[string]interface{}{"title": "local"}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if res != "example local" {
		t.Errorf("unexpected %q, expecting %q", res, "example local")
	}
}

// mapIncluder resolves the included templates from a map of sources.
type mapIncluder map[string]string

func (inc mapIncluder) Include(from, name string) (*ast.Tree, error) {
	src, ok := inc[name]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return compiler.ParseTemplateSource([]byte(src), name, compiler.Options{})
}

func TestInclude(t *testing.T) {
	inc := mapIncluder{
		"header.html": "<h1>#(title)</h1>#set(seen = true)",
		"macros.html": "#define b(s){<b>#(s)</b>}",
		"loop.html":   "#include(\"loop.html\")",
		"error.html":  "\n  #(1 / 0)",
	}
	opts := Options{Includer: inc}

	res, err := renderSource(`#include("header.html")#(seen)`, map[string]interface{}{"title": "T"}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if res != "<h1>T</h1>true" {
		t.Errorf("unexpected %q, expecting %q", res, "<h1>T</h1>true")
	}

	res, err = renderSource(`#include("macros.html")#@b("x")`, nil, opts)
	if err != nil {
		t.Fatal(err)
	}
	if res != "<b>x</b>" {
		t.Errorf("unexpected %q, expecting %q", res, "<b>x</b>")
	}

	_, err = renderSource(`#include("missing.html")`, nil, opts)
	var ie *IncludeResolutionError
	if !errors.As(err, &ie) {
		t.Fatalf("expecting IncludeResolutionError, got %v", err)
	}
	if ie.Name != "missing.html" || !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("unexpected error %v", err)
	}

	_, err = renderSource(`#include("loop.html")`, nil, opts)
	if err == nil || err.Error() != "loop.html:1:1: #include: maximum include depth 64 exceeded" {
		t.Errorf("unexpected error %v", err)
	}

	_, err = renderSource(`#include("error.html")`, nil, opts)
	if err == nil || err.Error() != "error.html:2:7: division by zero" {
		t.Errorf("unexpected error %v", err)
	}
}

func TestSharedMacros(t *testing.T) {
	shared, err := compiler.ParseTemplateSource([]byte("#define hello(n){Hello #(n)}#define m(){shared}"), "shared.html", compiler.Options{})
	if err != nil {
		t.Fatal(err)
	}
	opts := Options{Macros: Macros(shared)}
	res, err := renderSource(`#@hello("World") #@m()#define m(){local}#@m()`, nil, opts)
	if err != nil {
		t.Fatal(err)
	}
	if res != "Hello World sharedlocal" {
		t.Errorf("unexpected %q, expecting %q", res, "Hello World sharedlocal")
	}
}

// upper is a custom directive that renders its body in upper case.
type upper struct{}

func (upper) Parse(node *ast.Custom) error {
	if node.Args != nil || !node.HasBody {
		return errors.New("#up requires a body and no arguments")
	}
	return nil
}

func (upper) Execute(env Env, node *ast.Custom) error {
	var b strings.Builder
	if err := env.Execute(&b, node.Body); err != nil {
		return err
	}
	_, err := io.WriteString(env.Writer(), strings.ToUpper(b.String()))
	return err
}

// repeat is a custom directive that shows its argument n times.
type repeat struct{}

func (repeat) Parse(node *ast.Custom) error {
	if len(node.Args) != 2 {
		return errors.New("#repeat requires two arguments")
	}
	return nil
}

func (repeat) Execute(env Env, node *ast.Custom) error {
	v, err := env.Eval(node.Args[0])
	if err != nil {
		return err
	}
	n, err := env.Eval(node.Args[1])
	if err != nil {
		return err
	}
	if n.Kind() != KindNumber {
		return fmt.Errorf("invalid count %s", n)
	}
	for i := int64(0); i < n.Number().IntPart(); i++ {
		if err := env.Show(v); err != nil {
			return err
		}
	}
	return nil
}

func TestCustomDirectives(t *testing.T) {
	directives := map[string]Directive{"up": upper{}, "repeat": repeat{}}
	opts := Options{Directives: directives}
	tests := []struct {
		src string
		res string
		err string
	}{
		{"#up{a#(x)b}", "A&AMP;B", ""},
		{"#repeat(x, 3)", "&amp;&amp;&amp;", ""},
		{"#for(i : [1, 2, 3]){#up{#if(i == 2){#break}#(i)}}", "1", ""},
		{`#repeat(x, "a")`, "", "t.html:1:1: #repeat: invalid count a"},
		{"#repeat(1 / 0, 1)", "", "t.html:1:11: #repeat: division by zero"},
	}
	for _, test := range tests {
		res, err := renderSource(test.src, map[string]interface{}{"x": "&"}, opts)
		if test.err != "" {
			if err == nil || err.Error() != test.err {
				t.Errorf("source: %q, unexpected error %v, expecting %q\n", test.src, err, test.err)
			}
			continue
		}
		if err != nil {
			t.Errorf("source: %q, %s\n", test.src, err)
			continue
		}
		if res != test.res {
			t.Errorf("source: %q, unexpected %q, expecting %q\n", test.src, res, test.res)
		}
	}
}

func TestConcurrentRender(t *testing.T) {
	tree, err := parse("#for(x : l){#(x * n) }")
	if err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	for n := 1; n <= 10; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			var b strings.Builder
			err := Render(&b, tree, map[string]interface{}{"l": []int{1, 2, 3}, "n": n}, Options{})
			if err != nil {
				t.Error(err)
				return
			}
			expected := fmt.Sprintf("%d %d %d ", n, 2*n, 3*n)
			if b.String() != expected {
				t.Errorf("unexpected %q, expecting %q", b.String(), expected)
			}
		}(n)
	}
	wg.Wait()
}

func TestRenderInvalidVariable(t *testing.T) {
	_, err := renderSource("", map[string]interface{}{"c": make(chan int)}, Options{})
	if err == nil {
		t.Fatal("expecting error, got nil")
	}
	if err.Error() != `enjoy: cannot use variable "c": cannot convert value of type chan int` {
		t.Errorf("unexpected error %q", err)
	}
}

// parse parses src as the template "t.html".
func parse(src string, directives ...map[string]Directive) (*ast.Tree, error) {
	var opts compiler.Options
	if len(directives) > 0 {
		opts.Directives = map[string]func(*ast.Custom) error{}
		for name, d := range directives[0] {
			opts.Directives[name] = d.Parse
		}
	}
	return compiler.ParseTemplateSource([]byte(src), "t.html", opts)
}

// renderSource parses and renders src.
func renderSource(src string, vars map[string]interface{}, opts Options) (string, error) {
	tree, err := parse(src, opts.Directives)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	err = Render(&b, tree, vars, opts)
	return b.String(), err
}
