// Copyright (c) 2026 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compiler

import (
	"bytes"
	"unicode"
	"unicode/utf8"

	"github.com/open2b/enjoy/ast"
)

// form describes the syntactic shape of a directive.
type form uint8

const (
	formArgs form = 1 << iota // arguments in parenthesis
	formBody                  // body in braces
)

// forms contains the shapes of the built-in directives. Directives with a
// zero form, as break, have neither arguments nor body.
var forms = map[string]form{
	"if":       formArgs | formBody,
	"elseif":   formArgs | formBody,
	"else":     formBody,
	"for":      formArgs | formBody,
	"switch":   formArgs | formBody,
	"case":     formArgs | formBody,
	"default":  formBody,
	"define":   formArgs | formBody,
	"call":     formArgs,
	"include":  formArgs,
	"set":      formArgs,
	"raw":      formArgs,
	"comment":  formBody,
	"break":    0,
	"continue": 0,
}

// ValidDirectiveName reports whether name can be used as the name of a
// custom directive. It must be an identifier and cannot be the name of a
// built-in directive.
func ValidDirectiveName(name string) bool {
	if _, ok := forms[name]; ok {
		return false
	}
	n, _ := identifierLen([]byte(name))
	return n > 0 && n == len(name)
}

var (
	commentEnd = []byte("--#")
	literalEnd = []byte("]]#")
)

// scanTemplate scans a template source and returns a lexer. custom reports
// whether a name is a custom directive, it can be nil.
func scanTemplate(text []byte, custom func(name string) bool) *lexer {
	tokens := make(chan token, 20)
	lex := &lexer{
		text:   text,
		src:    text,
		line:   1,
		column: 1,
		custom: custom,
		tokens: tokens,
	}
	go lex.scan()
	return lex
}

// lexer maintains the scanner status.
type lexer struct {
	text   []byte            // text on which the scans are performed
	src    []byte            // slice of the text used during the scan
	line   int               // current line starting from 1
	column int               // current column starting from 1
	bodies []int             // for each open body, the number of unbalanced left braces in its text
	opened []*ast.Position   // positions of the open bodies
	custom func(string) bool // reports whether a name is a custom directive
	tokens chan token        // tokens, is closed at the end of the scan
	err    error             // error, reports whether there was an error
}

// Tokens returns a channel to read the scanned tokens.
func (l *lexer) Tokens() <-chan token {
	return l.tokens
}

// drain drains the tokens channel so that the scan goroutine can terminate.
func (l *lexer) drain() {
	for range l.tokens {
	}
}

func (l *lexer) newline() {
	l.line++
	l.column = 1
}

func (l *lexer) errorf(format string, a ...interface{}) *SyntaxError {
	pos := ast.Position{
		Line:   l.line,
		Column: l.column,
		Start:  len(l.text) - len(l.src),
		End:    len(l.text) - len(l.src),
	}
	return syntaxError(&pos, format, a...)
}

// emit emits a token of type typ and length length at the current line and
// column.
func (l *lexer) emit(typ tokenTyp, length int) {
	l.emitAtLineColumn(l.line, l.column, typ, length)
}

// emitAtLineColumn emits a token of type typ and length length at a specific
// line and column.
func (l *lexer) emitAtLineColumn(line, column int, typ tokenTyp, length int) {
	var txt []byte
	if length > 0 {
		txt = l.src[0:length]
	}
	start := len(l.text) - len(l.src)
	end := start + length - 1
	if length == 0 {
		end = start
	}
	l.tokens <- token{
		typ: typ,
		pos: &ast.Position{
			Line:   line,
			Column: column,
			Start:  start,
			End:    end,
		},
		txt: txt,
	}
	l.src = l.src[length:]
}

// scan scans the text by placing the tokens on the tokens channel. If an
// error occurs, it puts the error in err, closes the channel and returns.
func (l *lexer) scan() {

	p := 0 // token length in bytes

	lin := l.line   // token line
	col := l.column // token column

	// flush emits the text read so far, if any.
	flush := func() {
		if p > 0 {
			l.emitAtLineColumn(lin, col, tokenText, p)
			p = 0
		}
	}

LOOP:
	for p < len(l.src) {

		c := l.src[p]

		switch c {

		case '#':
			if p+1 == len(l.src) {
				break
			}
			switch l.src[p+1] {
			case '#':
				// Line comment.
				flush()
				if i := bytes.IndexByte(l.src, '\n'); i < 0 {
					l.src = l.src[len(l.src):]
				} else {
					l.src = l.src[i+1:]
					l.newline()
				}
				lin, col = l.line, l.column
				continue LOOP
			case '-':
				if p+2 < len(l.src) && l.src[p+2] == '-' {
					flush()
					if err := l.skipComment(); err != nil {
						l.err = err
						break LOOP
					}
					lin, col = l.line, l.column
					continue LOOP
				}
			case '[':
				if p+2 < len(l.src) && l.src[p+2] == '[' {
					flush()
					if err := l.lexLiteral(); err != nil {
						l.err = err
						break LOOP
					}
					lin, col = l.line, l.column
					continue LOOP
				}
			case '(':
				flush()
				l.emit(tokenShow, 2)
				l.column += 2
				if err := l.lexArgs(); err != nil {
					l.err = err
					break LOOP
				}
				lin, col = l.line, l.column
				continue LOOP
			case '@':
				n, cols := identifierLen(l.src[p+2:])
				if n == 0 {
					break
				}
				flush()
				l.emit(tokenMacro, 2+n)
				l.column += 2 + cols
				if len(l.src) == 0 || l.src[0] != '(' {
					l.err = l.errorf("unexpected %s, expecting ( after macro name", l.next())
					break LOOP
				}
				if err := l.lexStartArgs(); err != nil {
					l.err = err
					break LOOP
				}
				lin, col = l.line, l.column
				continue LOOP
			default:
				n, cols := identifierLen(l.src[p+1:])
				if n == 0 {
					break
				}
				emitted, err := l.lexDirective(p, n, cols, flush)
				if err != nil {
					l.err = err
					break LOOP
				}
				if emitted {
					lin, col = l.line, l.column
					continue LOOP
				}
			}

		case '{':
			if n := len(l.bodies); n > 0 {
				l.bodies[n-1]++
			}

		case '}':
			if n := len(l.bodies); n > 0 {
				if l.bodies[n-1] > 0 {
					l.bodies[n-1]--
					break
				}
				flush()
				l.emit(tokenEndBody, 1)
				l.column++
				l.bodies = l.bodies[:n-1]
				l.opened = l.opened[:n-1]
				lin, col = l.line, l.column
				continue LOOP
			}

		case '\n':
			p++
			l.newline()
			continue LOOP

		}

		p++
		if isStartChar(c) {
			l.column++
		}

	}

	if l.err == nil {
		if p > 0 {
			l.emitAtLineColumn(lin, col, tokenText, p)
		}
		if n := len(l.opened); n > 0 {
			l.err = l.errorf("unexpected EOF, expecting } to close the body opened at %s", l.opened[n-1])
		} else {
			l.emit(tokenEOF, 0)
		}
	}

	close(l.tokens)
}

// lexDirective lexes a directive whose name, of n bytes and cols columns,
// starts at src[p+1]. It returns false if the source at p is text and not a
// directive. flush is called before the first token of the directive is
// emitted.
func (l *lexer) lexDirective(p, n, cols int, flush func()) (bool, error) {

	name := string(l.src[p+1 : p+1+n])
	var next byte
	if i := p + 1 + n; i < len(l.src) {
		next = l.src[i]
	}

	f, builtin := forms[name]
	custom := !builtin && l.custom != nil && l.custom(name)

	if !builtin && !custom {
		if next == '(' {
			flush()
			return false, l.errorf("unknown directive #%s", name)
		}
		return false, nil
	}

	if name == "define" {
		if next == '(' {
			flush()
			return false, l.errorf("unexpected (, expecting macro name after #define")
		}
		if next != ' ' && next != '\t' {
			return false, nil
		}
		flush()
		l.emit(tokenDirective, 1+n)
		l.column += 1 + cols
		return true, l.lexDefine()
	}

	switch {
	case builtin && f == 0:
		flush()
		l.emit(tokenDirective, 1+n)
		l.column += 1 + cols
		return true, nil
	case next == '(':
		if builtin && f&formArgs == 0 {
			flush()
			return false, l.errorf("unexpected ( after #%s, expecting {", name)
		}
	case next == '{':
		if builtin && f&formArgs != 0 {
			flush()
			return false, l.errorf("unexpected { after #%s, expecting (", name)
		}
	default:
		return false, nil
	}

	flush()
	l.emit(tokenDirective, 1+n)
	l.column += 1 + cols

	if next == '(' {
		err := l.lexStartArgs()
		if err != nil {
			return false, err
		}
	}
	if (custom || f&formBody != 0) && len(l.src) > 0 && l.src[0] == '{' {
		l.openBody()
	}

	return true, nil
}

// lexDefine lexes the name and the parameters of a define directive, up to
// the left brace of its body.
func (l *lexer) lexDefine() error {
	for len(l.src) > 0 && (l.src[0] == ' ' || l.src[0] == '\t') {
		l.src = l.src[1:]
		l.column++
	}
	n, cols := identifierLen(l.src)
	if n == 0 {
		return l.errorf("unexpected %s, expecting macro name after #define", l.next())
	}
	l.emit(tokenIdentifier, n)
	l.column += cols
	if len(l.src) == 0 || l.src[0] != '(' {
		return l.errorf("unexpected %s, expecting ( after macro name", l.next())
	}
	if err := l.lexStartArgs(); err != nil {
		return err
	}
	if len(l.src) == 0 || l.src[0] != '{' {
		return l.errorf("unexpected %s, expecting { after #define", l.next())
	}
	l.openBody()
	return nil
}

// openBody emits the token that opens a body.
func (l *lexer) openBody() {
	pos := &ast.Position{
		Line:   l.line,
		Column: l.column,
		Start:  len(l.text) - len(l.src),
		End:    len(l.text) - len(l.src),
	}
	l.emit(tokenStartBody, 1)
	l.column++
	l.bodies = append(l.bodies, 0)
	l.opened = append(l.opened, pos)
}

// lexStartArgs emits the token that starts the arguments and lexes the
// arguments.
func (l *lexer) lexStartArgs() error {
	l.emit(tokenStartArgs, 1)
	l.column++
	return l.lexArgs()
}

// skipComment skips a comment "#-- ... --#".
func (l *lexer) skipComment() error {
	i := bytes.Index(l.src[3:], commentEnd)
	if i < 0 {
		return l.errorf("comment not terminated")
	}
	l.advance(3 + i + len(commentEnd))
	return nil
}

// lexLiteral lexes a literal block "#[[ ... ]]#" emitting its content as text.
func (l *lexer) lexLiteral() error {
	i := bytes.Index(l.src[3:], literalEnd)
	if i < 0 {
		return l.errorf("literal block not terminated")
	}
	l.advance(3)
	if i > 0 {
		line, column := l.line, l.column
		l.count(l.src[:i])
		l.emitAtLineColumn(line, column, tokenText, i)
	}
	l.advance(len(literalEnd))
	return nil
}

// advance skips the next n bytes of the source.
func (l *lexer) advance(n int) {
	l.count(l.src[:n])
	l.src = l.src[n:]
}

// count updates line and column as if b has been read.
func (l *lexer) count(b []byte) {
	for _, c := range b {
		if c == '\n' {
			l.newline()
		} else if isStartChar(c) {
			l.column++
		}
	}
}

// next returns a description of the next character of the source, used in
// error messages.
func (l *lexer) next() string {
	if len(l.src) == 0 {
		return "EOF"
	}
	r, _ := utf8.DecodeRune(l.src)
	if r == '\n' {
		return "newline"
	}
	return string(r)
}

// lexArgs lexes the arguments of a directive up to the closing parenthesis.
func (l *lexer) lexArgs() error {
	// depth is the number of open parenthesis inside the arguments.
	depth := 0
	for len(l.src) > 0 {
		switch c := l.src[0]; c {
		case ' ', '\t', '\r':
			l.src = l.src[1:]
			l.column++
			continue
		case '\n':
			l.src = l.src[1:]
			l.newline()
			continue
		case '(':
			depth++
			l.emit(tokenLeftParenthesis, 1)
		case ')':
			if depth == 0 {
				l.emit(tokenEndArgs, 1)
				l.column++
				return nil
			}
			depth--
			l.emit(tokenRightParenthesis, 1)
		case '[':
			l.emit(tokenLeftBracket, 1)
		case ']':
			l.emit(tokenRightBracket, 1)
		case '{':
			l.emit(tokenLeftBrace, 1)
		case '}':
			l.emit(tokenRightBrace, 1)
		case ',':
			l.emit(tokenComma, 1)
		case ':':
			l.emit(tokenColon, 1)
		case '?':
			l.emit(tokenQuestion, 1)
		case '.':
			l.emit(tokenPeriod, 1)
		case '+':
			l.emit(tokenAddition, 1)
		case '-':
			l.emit(tokenSubtraction, 1)
		case '*':
			l.emit(tokenMultiplication, 1)
		case '/':
			l.emit(tokenDivision, 1)
		case '%':
			l.emit(tokenModulo, 1)
		case '=':
			if len(l.src) > 1 && l.src[1] == '=' {
				l.emit(tokenEqual, 2)
				l.column += 2
				continue
			}
			l.emit(tokenAssignment, 1)
		case '!':
			if len(l.src) > 1 && l.src[1] == '=' {
				l.emit(tokenNotEqual, 2)
				l.column += 2
				continue
			}
			l.emit(tokenNot, 1)
		case '<':
			if len(l.src) > 1 && l.src[1] == '=' {
				l.emit(tokenLessOrEqual, 2)
				l.column += 2
				continue
			}
			l.emit(tokenLess, 1)
		case '>':
			if len(l.src) > 1 && l.src[1] == '=' {
				l.emit(tokenGreaterOrEqual, 2)
				l.column += 2
				continue
			}
			l.emit(tokenGreater, 1)
		case '&':
			if len(l.src) == 1 || l.src[1] != '&' {
				return l.errorf("unexpected &, expecting &&")
			}
			l.emit(tokenAnd, 2)
			l.column += 2
			continue
		case '|':
			if len(l.src) == 1 || l.src[1] != '|' {
				return l.errorf("unexpected |, expecting ||")
			}
			l.emit(tokenOr, 2)
			l.column += 2
			continue
		case '"', '\'':
			if err := l.lexString(); err != nil {
				return err
			}
			continue
		case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			l.lexNumber()
			continue
		default:
			n, cols := identifierLen(l.src)
			if n == 0 {
				return l.errorf("unexpected character %s", l.next())
			}
			l.lexIdentifierOrKeyword(n, cols)
			continue
		}
		l.column++
	}
	return l.errorf("unexpected EOF, expecting )")
}

// lexIdentifierOrKeyword emits an identifier or a keyword of n bytes and
// cols columns.
func (l *lexer) lexIdentifierOrKeyword(n, cols int) {
	typ := tokenIdentifier
	switch string(l.src[:n]) {
	case "true":
		typ = tokenTrue
	case "false":
		typ = tokenFalse
	case "null":
		typ = tokenNull
	}
	l.emit(typ, n)
	l.column += cols
}

// lexNumber emits a decimal number.
func (l *lexer) lexNumber() {
	p := 0
	for p < len(l.src) && isDecDigit(l.src[p]) {
		p++
	}
	if p+1 < len(l.src) && l.src[p] == '.' && isDecDigit(l.src[p+1]) {
		p++
		for p < len(l.src) && isDecDigit(l.src[p]) {
			p++
		}
	}
	l.emit(tokenNumber, p)
	l.column += p
}

// lexString emits a string literal quoted with single or double quotes.
func (l *lexer) lexString() error {
	quote := l.src[0]
	p := 1
	cols := 1
	for {
		if p == len(l.src) {
			return l.errorf("string literal not terminated")
		}
		c := l.src[p]
		if c == quote {
			break
		}
		switch c {
		case '\n':
			return l.errorf("newline in string")
		case '\\':
			if p+1 < len(l.src) && isEscapable(l.src[p+1]) {
				p += 2
				cols += 2
				continue
			}
		}
		p++
		if isStartChar(c) {
			cols++
		}
	}
	l.emit(tokenString, p+1)
	l.column += cols + 1
	return nil
}

// identifierLen returns the length in bytes and in columns of the
// identifier at the beginning of s. It returns zero if s does not start with
// an identifier.
func identifierLen(s []byte) (int, int) {
	p := 0
	cols := 0
	for p < len(s) {
		r, size := utf8.DecodeRune(s[p:])
		if r != '_' && !unicode.IsLetter(r) && (p == 0 || !unicode.IsDigit(r)) {
			break
		}
		p += size
		cols++
	}
	return p, cols
}

// isDecDigit reports whether c is a decimal digit.
func isDecDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

// isEscapable reports whether c can follow a backslash in a string literal.
func isEscapable(c byte) bool {
	return c == '\\' || c == '\'' || c == '"'
}

// isStartChar reports whether c is the first byte of an UTF-8 encoded
// character.
func isStartChar(c byte) bool {
	return c < 128 || c >= 192
}
