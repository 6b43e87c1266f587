// Copyright (c) 2026 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compiler

import (
	"testing"
)

var typeTests = map[string][]tokenTyp{
	``:                     {},
	`a`:                    {tokenText},
	`{`:                    {tokenText},
	`}`:                    {tokenText},
	`#`:                    {tokenText},
	`#fff`:                 {tokenText},
	`a # b`:                {tokenText},
	`#else`:                {tokenText},
	`#if (a)`:              {tokenText},
	`#(a)`:                 {tokenShow, tokenIdentifier, tokenEndArgs},
	`#( a )`:               {tokenShow, tokenIdentifier, tokenEndArgs},
	"#(\ta\n)":             {tokenShow, tokenIdentifier, tokenEndArgs},
	`#(a.b)`:               {tokenShow, tokenIdentifier, tokenPeriod, tokenIdentifier, tokenEndArgs},
	`#(a[0])`:              {tokenShow, tokenIdentifier, tokenLeftBracket, tokenNumber, tokenRightBracket, tokenEndArgs},
	`#(f(1, 2))`:           {tokenShow, tokenIdentifier, tokenLeftParenthesis, tokenNumber, tokenComma, tokenNumber, tokenRightParenthesis, tokenEndArgs},
	`#("a" + 'b')`:         {tokenShow, tokenString, tokenAddition, tokenString, tokenEndArgs},
	`#(a == b && !c)`:      {tokenShow, tokenIdentifier, tokenEqual, tokenIdentifier, tokenAnd, tokenNot, tokenIdentifier, tokenEndArgs},
	`#(a || b != c)`:       {tokenShow, tokenIdentifier, tokenOr, tokenIdentifier, tokenNotEqual, tokenIdentifier, tokenEndArgs},
	`#(a < b)`:             {tokenShow, tokenIdentifier, tokenLess, tokenIdentifier, tokenEndArgs},
	`#(a <= b)`:            {tokenShow, tokenIdentifier, tokenLessOrEqual, tokenIdentifier, tokenEndArgs},
	`#(a > b)`:             {tokenShow, tokenIdentifier, tokenGreater, tokenIdentifier, tokenEndArgs},
	`#(a >= b)`:            {tokenShow, tokenIdentifier, tokenGreaterOrEqual, tokenIdentifier, tokenEndArgs},
	`#(a ? b : c)`:         {tokenShow, tokenIdentifier, tokenQuestion, tokenIdentifier, tokenColon, tokenIdentifier, tokenEndArgs},
	`#(true)`:              {tokenShow, tokenTrue, tokenEndArgs},
	`#(false)`:             {tokenShow, tokenFalse, tokenEndArgs},
	`#(null)`:              {tokenShow, tokenNull, tokenEndArgs},
	`#(3.5 * 2 / 1 % 4)`:   {tokenShow, tokenNumber, tokenMultiplication, tokenNumber, tokenDivision, tokenNumber, tokenModulo, tokenNumber, tokenEndArgs},
	`#(a - 1)`:             {tokenShow, tokenIdentifier, tokenSubtraction, tokenNumber, tokenEndArgs},
	`#([1, 2])`:            {tokenShow, tokenLeftBracket, tokenNumber, tokenComma, tokenNumber, tokenRightBracket, tokenEndArgs},
	`#({a: 1})`:            {tokenShow, tokenLeftBrace, tokenIdentifier, tokenColon, tokenNumber, tokenRightBrace, tokenEndArgs},
	`#(è)`:                 {tokenShow, tokenIdentifier, tokenEndArgs},
	`#if(a){b}`:            {tokenDirective, tokenStartArgs, tokenIdentifier, tokenEndArgs, tokenStartBody, tokenText, tokenEndBody},
	`#if(a){{b}}`:          {tokenDirective, tokenStartArgs, tokenIdentifier, tokenEndArgs, tokenStartBody, tokenText, tokenEndBody},
	`#if(a){}#else{}`:      {tokenDirective, tokenStartArgs, tokenIdentifier, tokenEndArgs, tokenStartBody, tokenEndBody, tokenDirective, tokenStartBody, tokenEndBody},
	`#if(a){}}`:            {tokenDirective, tokenStartArgs, tokenIdentifier, tokenEndArgs, tokenStartBody, tokenEndBody, tokenText},
	`#for(x : l){#(x)}`:    {tokenDirective, tokenStartArgs, tokenIdentifier, tokenColon, tokenIdentifier, tokenEndArgs, tokenStartBody, tokenShow, tokenIdentifier, tokenEndArgs, tokenEndBody},
	`#for(x, s : l){#break}`: {tokenDirective, tokenStartArgs, tokenIdentifier, tokenComma, tokenIdentifier, tokenColon, tokenIdentifier, tokenEndArgs, tokenStartBody, tokenDirective, tokenEndBody},
	`#define m(a, b){x}`:   {tokenDirective, tokenIdentifier, tokenStartArgs, tokenIdentifier, tokenComma, tokenIdentifier, tokenEndArgs, tokenStartBody, tokenText, tokenEndBody},
	`#define m(){}`:        {tokenDirective, tokenIdentifier, tokenStartArgs, tokenEndArgs, tokenStartBody, tokenEndBody},
	`#@m(1)`:               {tokenMacro, tokenStartArgs, tokenNumber, tokenEndArgs},
	`#call(m, 1)`:          {tokenDirective, tokenStartArgs, tokenIdentifier, tokenComma, tokenNumber, tokenEndArgs},
	`#set(a = 1, b = a)`:   {tokenDirective, tokenStartArgs, tokenIdentifier, tokenAssignment, tokenNumber, tokenComma, tokenIdentifier, tokenAssignment, tokenIdentifier, tokenEndArgs},
	`#raw(a)`:              {tokenDirective, tokenStartArgs, tokenIdentifier, tokenEndArgs},
	`#include("a.html")`:   {tokenDirective, tokenStartArgs, tokenString, tokenEndArgs},
	`#switch(a){#case(1){b}#default{c}}`: {tokenDirective, tokenStartArgs, tokenIdentifier, tokenEndArgs, tokenStartBody,
		tokenDirective, tokenStartArgs, tokenNumber, tokenEndArgs, tokenStartBody, tokenText, tokenEndBody,
		tokenDirective, tokenStartBody, tokenText, tokenEndBody, tokenEndBody},
	`#comment{a}`:          {tokenDirective, tokenStartBody, tokenText, tokenEndBody},
	"## comment\na":        {tokenText},
	"a## comment":          {tokenText},
	"a## comment\nb":       {tokenText, tokenText},
	`#-- comment --#b`:     {tokenText},
	"#--\n#(a)\n--#":       {},
	`#[[#(a)]]#`:           {tokenText},
	`#[[]]#`:               {},
	`#up(1)`:               {tokenDirective, tokenStartArgs, tokenNumber, tokenEndArgs},
	`#box{a}`:              {tokenDirective, tokenStartBody, tokenText, tokenEndBody},
	`#box(1){a}`:           {tokenDirective, tokenStartArgs, tokenNumber, tokenEndArgs, tokenStartBody, tokenText, tokenEndBody},
	`#box`:                 {tokenText},
}

// isTestDirective reports whether name is a custom directive in the tests.
func isTestDirective(name string) bool {
	return name == "up" || name == "box"
}

func TestLexerTypes(t *testing.T) {
TYPES:
	for source, types := range typeTests {
		var lex = scanTemplate([]byte(source), isTestDirective)
		var i int
		for tok := range lex.Tokens() {
			if tok.typ == tokenEOF {
				break
			}
			if i >= len(types) {
				t.Errorf("source: %q, unexpected %s\n", source, tok)
				lex.drain()
				continue TYPES
			}
			if tok.typ != types[i] {
				t.Errorf("source: %q, unexpected %s, expecting %s\n", source, tok, types[i])
				lex.drain()
				continue TYPES
			}
			i++
		}
		lex.drain()
		if lex.err != nil {
			t.Errorf("source: %q, error %s\n", source, lex.err)
		}
		if i < len(types) {
			t.Errorf("source: %q, less types\n", source)
		}
	}
}

var textTests = []struct {
	src  string
	text []string
}{
	{"a", []string{"a"}},
	{"#fff", []string{"#fff"}},
	{"a## comment\nb", []string{"a", "b"}},
	{"a#-- x --#b", []string{"a", "b"}},
	{"#[[#(a){b}]]#", []string{"#(a){b}"}},
	{"#if(a){{b}}", []string{"{b}"}},
	{`#("a\'b\n")`, []string{`"a\'b\n"`}},
}

func TestLexerText(t *testing.T) {
	for _, test := range textTests {
		var lex = scanTemplate([]byte(test.src), nil)
		var text []string
		for tok := range lex.Tokens() {
			if tok.typ == tokenText || tok.typ == tokenString {
				text = append(text, string(tok.txt))
			}
		}
		if lex.err != nil {
			t.Errorf("source: %q, error %s\n", test.src, lex.err)
			continue
		}
		if len(text) != len(test.text) {
			t.Errorf("source: %q, unexpected %q, expecting %q\n", test.src, text, test.text)
			continue
		}
		for i, txt := range text {
			if txt != test.text[i] {
				t.Errorf("source: %q, unexpected %q, expecting %q\n", test.src, txt, test.text[i])
			}
		}
	}
}

var positionTests = []struct {
	src string
	pos []struct{ Line, Column, Start, End int }
}{
	{"a#(b)c", []struct{ Line, Column, Start, End int }{
		{1, 1, 0, 0}, {1, 2, 1, 2}, {1, 4, 3, 3}, {1, 5, 4, 4}, {1, 6, 5, 5}}},
	{"a\n#if(x){\nb}", []struct{ Line, Column, Start, End int }{
		{1, 1, 0, 1}, {2, 1, 2, 4}, {2, 4, 5, 5}, {2, 5, 6, 6}, {2, 6, 7, 7},
		{2, 7, 8, 8}, {2, 8, 9, 10}, {3, 2, 11, 11}}},
	{"è#(a)", []struct{ Line, Column, Start, End int }{
		{1, 1, 0, 1}, {1, 2, 2, 3}, {1, 4, 4, 4}, {1, 5, 5, 5}}},
	{"#( 'è' + 10 )", []struct{ Line, Column, Start, End int }{
		{1, 1, 0, 1}, {1, 4, 3, 6}, {1, 8, 8, 8}, {1, 10, 10, 11}, {1, 13, 13, 13}}},
	{"## x\n#-- y\n--# #(a)", []struct{ Line, Column, Start, End int }{
		{3, 4, 14, 14}, {3, 5, 15, 16}, {3, 7, 17, 17}, {3, 8, 18, 18}}},
}

func TestPositions(t *testing.T) {
	for _, test := range positionTests {
		var lex = scanTemplate([]byte(test.src), nil)
		var i int
		for tok := range lex.Tokens() {
			if tok.typ == tokenEOF {
				break
			}
			if i >= len(test.pos) {
				t.Errorf("source: %q, unexpected token %s\n", test.src, tok)
				break
			}
			pos := test.pos[i]
			if tok.pos.Line != pos.Line {
				t.Errorf("source: %q, token: %s, unexpected line %d, expecting %d\n",
					test.src, tok.String(), tok.pos.Line, pos.Line)
			}
			if tok.pos.Column != pos.Column {
				t.Errorf("source: %q, token: %s, unexpected column %d, expecting %d\n",
					test.src, tok.String(), tok.pos.Column, pos.Column)
			}
			if tok.pos.Start != pos.Start {
				t.Errorf("source: %q, token: %s, unexpected start %d, expecting %d\n",
					test.src, tok.String(), tok.pos.Start, pos.Start)
			}
			if tok.pos.End != pos.End {
				t.Errorf("source: %q, token: %s, unexpected end %d, expecting %d\n",
					test.src, tok.String(), tok.pos.End, pos.End)
			}
			i++
		}
		lex.drain()
		if lex.err != nil {
			t.Errorf("source: %q, error %s\n", test.src, lex.err)
		}
		if i < len(test.pos) {
			t.Errorf("source: %q, less tokens\n", test.src)
		}
	}
}

var lexerErrorTests = []struct {
	src    string
	msg    string
	line   int
	column int
}{
	{"#foo(a)", "unknown directive #foo", 1, 1},
	{"ab#foo(a)", "unknown directive #foo", 1, 3},
	{"#if(a){", "unexpected EOF, expecting } to close the body opened at 1:7", 1, 8},
	{"#(a", "unexpected EOF, expecting )", 1, 4},
	{"#(a & b)", "unexpected &, expecting &&", 1, 5},
	{"#(a | b)", "unexpected |, expecting ||", 1, 5},
	{"#('a)", "string literal not terminated", 1, 3},
	{"#(\"a\nb\")", "newline in string", 1, 3},
	{"#(a $ b)", "unexpected character $", 1, 5},
	{"#-- a", "comment not terminated", 1, 1},
	{"#[[ a", "literal block not terminated", 1, 1},
	{"#@m", "unexpected EOF, expecting ( after macro name", 1, 4},
	{"#else(a)", "unexpected ( after #else, expecting {", 1, 1},
	{"#if{a}", "unexpected { after #if, expecting (", 1, 1},
	{"#define (a){}", "unexpected (, expecting macro name after #define", 1, 9},
	{"#define(m){x}", "unexpected (, expecting macro name after #define", 1, 1},
	{"ab #define(m)", "unexpected (, expecting macro name after #define", 1, 4},
	{"#define m(a)b", "unexpected b, expecting { after #define", 1, 13},
}

func TestLexerErrors(t *testing.T) {
	for _, test := range lexerErrorTests {
		var lex = scanTemplate([]byte(test.src), nil)
		lex.drain()
		if lex.err == nil {
			t.Errorf("source: %q, unexpected no error, expecting %q\n", test.src, test.msg)
			continue
		}
		err, ok := lex.err.(*SyntaxError)
		if !ok {
			t.Errorf("source: %q, unexpected error type %T, expecting *SyntaxError\n", test.src, lex.err)
			continue
		}
		if err.Message() != test.msg {
			t.Errorf("source: %q, unexpected error %q, expecting %q\n", test.src, err.Message(), test.msg)
		}
		if err.Pos.Line != test.line || err.Pos.Column != test.column {
			t.Errorf("source: %q, unexpected position %s, expecting %d:%d\n", test.src, err.Pos, test.line, test.column)
		}
	}
}

func TestValidDirectiveName(t *testing.T) {
	tests := map[string]bool{
		"markdown": true,
		"up_2":     true,
		"èx":       true,
		"":         false,
		"2up":      false,
		"a-b":      false,
		"if":       false,
		"raw":      false,
		"continue": false,
	}
	for name, expected := range tests {
		if got := ValidDirectiveName(name); got != expected {
			t.Errorf("name: %q, unexpected %t, expecting %t\n", name, got, expected)
		}
	}
}
