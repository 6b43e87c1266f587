// Copyright (c) 2026 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package compiler implements the lexer and the parser of the templates.
package compiler

import (
	"errors"
	"fmt"

	"github.com/open2b/enjoy/ast"
)

// SyntaxError records a parsing error with the path and the position where
// the error occurred.
type SyntaxError struct {
	Path    string
	Pos     ast.Position
	Err     error
	Snippet string // source snippet, set only in development mode.
}

// Error returns a string representation of the syntax error.
func (e *SyntaxError) Error() string {
	s := fmt.Sprintf("%s:%s: syntax error: %s", e.Path, e.Pos, e.Err)
	if e.Snippet != "" {
		s += "\n" + e.Snippet
	}
	return s
}

// Message returns the message of the syntax error, without the path and the
// position.
func (e *SyntaxError) Message() string {
	return e.Err.Error()
}

// syntaxError returns a SyntaxError error with position pos.
func syntaxError(pos *ast.Position, format string, a ...interface{}) *SyntaxError {
	return &SyntaxError{"", *pos, fmt.Errorf(format, a...), ""}
}

// Options contains the parsing options.
type Options struct {

	// Directives contains the custom directives. For each directive name the
	// map contains a function, that can be nil, called after the directive
	// is parsed to validate it.
	Directives map[string]func(*ast.Custom) error
}

// parsing is a parsing state.
type parsing struct {

	// Lexer.
	lex *lexer

	// Tokens read and put back with the unread method.
	unread []token

	// Custom directives.
	directives map[string]func(*ast.Custom) error

	// Number of enclosing "for" bodies.
	loops int
}

// ParseTemplateSource parses a template with source src and returns its tree.
// path is the path of the template and it is used in the returned tree and
// errors.
func ParseTemplateSource(src []byte, path string, opts Options) (tree *ast.Tree, err error) {

	var custom func(string) bool
	if opts.Directives != nil {
		custom = func(name string) bool {
			_, ok := opts.Directives[name]
			return ok
		}
	}

	p := &parsing{
		lex:        scanTemplate(src, custom),
		directives: opts.Directives,
	}

	defer func() {
		p.lex.drain()
		if r := recover(); r != nil {
			if e, ok := r.(*SyntaxError); ok {
				e.Path = path
				tree = nil
				err = e
			} else {
				panic(r)
			}
		}
	}()

	nodes, _ := p.parseNodes(tokenEOF)

	tree = ast.NewTree(path, nodes)
	if len(src) > 0 {
		tree.Position.End = len(src) - 1
	}

	return tree, nil
}

// next returns the next token. It panics with the lexer error if the lexer
// has terminated with an error.
func (p *parsing) next() token {
	if n := len(p.unread); n > 0 {
		tok := p.unread[n-1]
		p.unread = p.unread[:n-1]
		return tok
	}
	tok, ok := <-p.lex.Tokens()
	if !ok {
		if p.lex.err == nil {
			panic("next called after EOF")
		}
		panic(p.lex.err)
	}
	return tok
}

// back puts back tok so that the next call to next returns it.
func (p *parsing) back(tok token) {
	p.unread = append(p.unread, tok)
}

// parseNodes parses the nodes up to a token of type end, that can be
// tokenEndBody or tokenEOF. It returns the nodes and the end token.
func (p *parsing) parseNodes(end tokenTyp) ([]ast.Node, token) {
	var nodes []ast.Node
	for {
		tok := p.next()
		if tok.typ == end {
			return nodes, tok
		}
		switch tok.typ {
		case tokenText:
			nodes = append(nodes, ast.NewText(tok.pos, string(tok.txt)))
		case tokenShow:
			args, last := p.parseExprList(p.next(), tokenEndArgs)
			if len(args) != 1 {
				panic(syntaxError(tok.pos, "#( requires one expression"))
			}
			nodes = append(nodes, ast.NewShow(tok.pos.WithEnd(last.pos.End), args[0], true))
		case tokenMacro:
			pos := tok.pos
			ident := ast.NewIdentifier(pos.WithEnd(pos.Start+len(tok.txt)-1), string(tok.txt[2:]))
			args, last := p.parseArgs()
			nodes = append(nodes, ast.NewShowMacro(pos.WithEnd(last.pos.End), ident, args))
		case tokenDirective:
			nodes = append(nodes, p.parseDirective(tok))
		default:
			panic(syntaxError(tok.pos, "unexpected %s", tok))
		}
	}
}

// parseDirective parses a directive. tok is the directive token.
func (p *parsing) parseDirective(tok token) ast.Node {

	pos := tok.pos
	name := string(tok.txt[1:])

	switch name {

	case "if":
		cond, _ := p.parseSingleArg(name)
		body, end := p.parseBody(name)
		branches := []*ast.Branch{ast.NewBranch(pos.WithEnd(end.pos.End), cond, body)}
		var els []ast.Node
		for {
			next, ok := p.peekDirective("elseif", "else")
			if !ok {
				break
			}
			if string(next.txt) == "#elseif" {
				cond, _ = p.parseSingleArg("elseif")
				body, end = p.parseBody("elseif")
				branches = append(branches, ast.NewBranch(next.pos.WithEnd(end.pos.End), cond, body))
				continue
			}
			els, end = p.parseBody("else")
			if els == nil {
				els = []ast.Node{}
			}
			break
		}
		return ast.NewIf(pos.WithEnd(end.pos.End), branches, els)

	case "elseif", "else":
		panic(syntaxError(pos, "#%s without #if", name))

	case "for":
		ident, second, expr := p.parseForArgs()
		p.loops++
		body, end := p.parseBody(name)
		p.loops--
		var els []ast.Node
		if _, ok := p.peekDirective("else"); ok {
			els, end = p.parseBody("else")
			if els == nil {
				els = []ast.Node{}
			}
		}
		return ast.NewFor(pos.WithEnd(end.pos.End), ident, second, expr, body, els)

	case "break", "continue":
		if p.loops == 0 {
			panic(syntaxError(pos, "#%s is not in a loop", name))
		}
		if name == "break" {
			return ast.NewBreak(pos)
		}
		return ast.NewContinue(pos)

	case "switch":
		expr, _ := p.parseSingleArg(name)
		return p.parseSwitch(pos, expr)

	case "case", "default":
		panic(syntaxError(pos, "#%s is not in a switch", name))

	case "define":
		return p.parseDefine(pos)

	case "call":
		args, last := p.parseArgs()
		if len(args) == 0 {
			panic(syntaxError(last.pos, "#call requires the macro name"))
		}
		var macro *ast.Identifier
		switch m := args[0].(type) {
		case *ast.Identifier:
			macro = m
		case *ast.String:
			macro = ast.NewIdentifier(m.Pos(), m.Text)
		default:
			panic(syntaxError(m.Pos(), "invalid macro name %s", m))
		}
		return ast.NewShowMacro(pos.WithEnd(last.pos.End), macro, args[1:])

	case "include":
		expr, last := p.parseSingleArg(name)
		return ast.NewInclude(pos.WithEnd(last.pos.End), expr)

	case "raw":
		expr, last := p.parseSingleArg(name)
		return ast.NewShow(pos.WithEnd(last.pos.End), expr, false)

	case "set":
		return p.parseSet(pos)

	case "comment":
		body, end := p.parseBody(name)
		return ast.NewComment(pos.WithEnd(end.pos.End), body)

	}

	return p.parseCustom(pos, name)
}

// parseArgs parses the arguments of a directive. The next token must be
// tokenStartArgs. It returns the arguments and the tokenEndArgs token.
func (p *parsing) parseArgs() ([]ast.Expression, token) {
	tok := p.next()
	if tok.typ != tokenStartArgs {
		panic(syntaxError(tok.pos, "unexpected %s, expecting (", tok))
	}
	return p.parseExprList(p.next(), tokenEndArgs)
}

// parseSingleArg parses the arguments of the directive with the given name
// that requires exactly one argument.
func (p *parsing) parseSingleArg(name string) (ast.Expression, token) {
	tok := p.next()
	if tok.typ != tokenStartArgs {
		panic(syntaxError(tok.pos, "unexpected %s, expecting ( after #%s", tok, name))
	}
	expr, tok := p.parseExpr(p.next())
	if expr == nil {
		panic(syntaxError(tok.pos, "unexpected %s, expecting expression", tok))
	}
	if tok.typ != tokenEndArgs {
		panic(syntaxError(tok.pos, "unexpected %s, expecting )", tok))
	}
	return expr, tok
}

// parseBody parses the body of the directive with the given name. It returns
// the nodes of the body and the tokenEndBody token.
func (p *parsing) parseBody(name string) ([]ast.Node, token) {
	tok := p.next()
	if tok.typ != tokenStartBody {
		panic(syntaxError(tok.pos, "unexpected %s, expecting { after #%s", tok, name))
	}
	return p.parseNodes(tokenEndBody)
}

// peekDirective returns the next directive token if its name is one of names
// and it is preceded only by blank text. The blank text is discarded. If the
// next directive is not one of names, the read tokens are put back and
// peekDirective returns false.
func (p *parsing) peekDirective(names ...string) (token, bool) {
	tok := p.next()
	var blank *token
	if tok.typ == tokenText && isBlank(tok.txt) {
		t := tok
		blank = &t
		tok = p.next()
	}
	if tok.typ == tokenDirective {
		for _, name := range names {
			if string(tok.txt[1:]) == name {
				return tok, true
			}
		}
	}
	p.back(tok)
	if blank != nil {
		p.back(*blank)
	}
	return token{}, false
}

// parseForArgs parses the arguments of a "for" directive.
func (p *parsing) parseForArgs() (ident, second *ast.Identifier, expr ast.Expression) {
	tok := p.next()
	if tok.typ != tokenStartArgs {
		panic(syntaxError(tok.pos, "unexpected %s, expecting ( after #for", tok))
	}
	tok = p.next()
	if tok.typ != tokenIdentifier {
		panic(syntaxError(tok.pos, "unexpected %s, expecting name", tok))
	}
	ident = ast.NewIdentifier(tok.pos, string(tok.txt))
	tok = p.next()
	if tok.typ == tokenComma {
		tok = p.next()
		if tok.typ != tokenIdentifier {
			panic(syntaxError(tok.pos, "unexpected %s, expecting name", tok))
		}
		second = ast.NewIdentifier(tok.pos, string(tok.txt))
		if second.Name == ident.Name {
			panic(syntaxError(tok.pos, "%s repeated in #for", second.Name))
		}
		tok = p.next()
	}
	if tok.typ != tokenColon {
		panic(syntaxError(tok.pos, "unexpected %s, expecting :", tok))
	}
	expr, tok = p.parseExpr(p.next())
	if expr == nil {
		panic(syntaxError(tok.pos, "unexpected %s, expecting expression", tok))
	}
	if tok.typ != tokenEndArgs {
		panic(syntaxError(tok.pos, "unexpected %s, expecting )", tok))
	}
	return ident, second, expr
}

// parseSwitch parses the body of a "switch" directive.
func (p *parsing) parseSwitch(pos *ast.Position, expr ast.Expression) *ast.Switch {
	tok := p.next()
	if tok.typ != tokenStartBody {
		panic(syntaxError(tok.pos, "unexpected %s, expecting { after #switch", tok))
	}
	var cases []*ast.Case
	var def []ast.Node
	hasDefault := false
	for {
		tok = p.next()
		switch tok.typ {
		case tokenEndBody:
			return ast.NewSwitch(pos.WithEnd(tok.pos.End), expr, cases, def)
		case tokenText:
			if !isBlank(tok.txt) {
				panic(syntaxError(tok.pos, "unexpected text in #switch, expecting #case or #default"))
			}
			continue
		case tokenDirective:
			switch string(tok.txt) {
			case "#case":
				args, _ := p.parseArgs()
				if len(args) == 0 {
					panic(syntaxError(tok.pos, "#case requires at least one value"))
				}
				body, end := p.parseBody("case")
				cases = append(cases, ast.NewCase(tok.pos.WithEnd(end.pos.End), args, body))
				continue
			case "#default":
				if hasDefault {
					panic(syntaxError(tok.pos, "multiple #default in #switch"))
				}
				hasDefault = true
				def, _ = p.parseBody("default")
				if def == nil {
					def = []ast.Node{}
				}
				continue
			}
		}
		panic(syntaxError(tok.pos, "unexpected %s in #switch, expecting #case or #default", tok))
	}
}

// parseDefine parses a "define" directive.
func (p *parsing) parseDefine(pos *ast.Position) *ast.Define {
	tok := p.next()
	if tok.typ != tokenIdentifier {
		panic(syntaxError(tok.pos, "unexpected %s, expecting macro name", tok))
	}
	ident := ast.NewIdentifier(tok.pos, string(tok.txt))
	tok = p.next()
	if tok.typ != tokenStartArgs {
		panic(syntaxError(tok.pos, "unexpected %s, expecting (", tok))
	}
	var params []*ast.Identifier
	for {
		tok = p.next()
		if tok.typ == tokenEndArgs && len(params) == 0 {
			break
		}
		if tok.typ != tokenIdentifier {
			panic(syntaxError(tok.pos, "unexpected %s, expecting parameter name", tok))
		}
		param := ast.NewIdentifier(tok.pos, string(tok.txt))
		for _, pa := range params {
			if pa.Name == param.Name {
				panic(syntaxError(tok.pos, "duplicate parameter %s in macro %s", param.Name, ident.Name))
			}
		}
		params = append(params, param)
		tok = p.next()
		if tok.typ == tokenEndArgs {
			break
		}
		if tok.typ != tokenComma {
			panic(syntaxError(tok.pos, "unexpected %s, expecting comma or )", tok))
		}
	}
	// A macro body is not in the loops that enclose the definition.
	loops := p.loops
	p.loops = 0
	body, end := p.parseBody("define")
	p.loops = loops
	return ast.NewDefine(pos.WithEnd(end.pos.End), ident, params, body)
}

// parseSet parses a "set" directive.
func (p *parsing) parseSet(pos *ast.Position) *ast.Set {
	tok := p.next()
	if tok.typ != tokenStartArgs {
		panic(syntaxError(tok.pos, "unexpected %s, expecting ( after #set", tok))
	}
	var assignments []*ast.Assignment
	for {
		tok = p.next()
		if tok.typ != tokenIdentifier {
			panic(syntaxError(tok.pos, "unexpected %s, expecting name", tok))
		}
		ident := ast.NewIdentifier(tok.pos, string(tok.txt))
		tok = p.next()
		if tok.typ != tokenAssignment {
			panic(syntaxError(tok.pos, "unexpected %s, expecting =", tok))
		}
		var expr ast.Expression
		expr, tok = p.parseExpr(p.next())
		if expr == nil {
			panic(syntaxError(tok.pos, "unexpected %s, expecting expression", tok))
		}
		assignments = append(assignments, ast.NewAssignment(ident.Pos().WithEnd(expr.Pos().End), ident, expr))
		if tok.typ == tokenEndArgs {
			return ast.NewSet(pos.WithEnd(tok.pos.End), assignments)
		}
		if tok.typ != tokenComma {
			panic(syntaxError(tok.pos, "unexpected %s, expecting comma or )", tok))
		}
	}
}

// parseCustom parses a custom directive.
func (p *parsing) parseCustom(pos *ast.Position, name string) *ast.Custom {
	parse, ok := p.directives[name]
	if !ok {
		panic(syntaxError(pos, "unknown directive #%s", name))
	}
	end := pos.Start + len(name)
	var args []ast.Expression
	tok := p.next()
	if tok.typ == tokenStartArgs {
		var last token
		args, last = p.parseExprList(p.next(), tokenEndArgs)
		if args == nil {
			args = []ast.Expression{}
		}
		end = last.pos.End
		tok = p.next()
	}
	var body []ast.Node
	hasBody := false
	if tok.typ == tokenStartBody {
		var last token
		body, last = p.parseNodes(tokenEndBody)
		hasBody = true
		end = last.pos.End
	} else {
		p.back(tok)
	}
	node := ast.NewCustom(pos.WithEnd(end), name, args, body, hasBody)
	if parse != nil {
		if err := parse(node); err != nil {
			var e *SyntaxError
			if errors.As(err, &e) {
				panic(e)
			}
			panic(&SyntaxError{"", *pos, err, ""})
		}
	}
	return node
}

// isBlank reports whether s contains only white space characters.
func isBlank(s []byte) bool {
	for _, c := range s {
		if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			return false
		}
	}
	return true
}
