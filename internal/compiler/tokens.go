// Copyright (c) 2026 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compiler

import (
	"fmt"

	"github.com/open2b/enjoy/ast"
)

// Token type.
type tokenTyp int

const (
	tokenText              tokenTyp = iota
	tokenDirective                  // #name
	tokenShow                       // #(
	tokenMacro                      // #@name
	tokenStartArgs                  // ( after a directive name
	tokenEndArgs                    // ) that closes the arguments
	tokenStartBody                  // { that opens a body
	tokenEndBody                    // } that closes a body
	tokenIdentifier                 // customerName
	tokenNumber                     // 12.895
	tokenString                     // "abc"
	tokenTrue                       // true
	tokenFalse                      // false
	tokenNull                       // null
	tokenPeriod                     // .
	tokenComma                      // ,
	tokenColon                      // :
	tokenQuestion                   // ?
	tokenLeftParenthesis            // (
	tokenRightParenthesis           // )
	tokenLeftBracket                // [
	tokenRightBracket               // ]
	tokenLeftBrace                  // {
	tokenRightBrace                 // }
	tokenAssignment                 // =
	tokenEqual                      // ==
	tokenNotEqual                   // !=
	tokenNot                        // !
	tokenLess                       // <
	tokenLessOrEqual                // <=
	tokenGreater                    // >
	tokenGreaterOrEqual             // >=
	tokenAnd                        // &&
	tokenOr                         // ||
	tokenAddition                   // +
	tokenSubtraction                // -
	tokenMultiplication             // *
	tokenDivision                   // /
	tokenModulo                     // %
	tokenEOF                        // eof
)

var tokenTypString = map[tokenTyp]string{
	tokenText:             "text",
	tokenDirective:        "directive",
	tokenShow:             "#(",
	tokenMacro:            "macro call",
	tokenStartArgs:        "(",
	tokenEndArgs:          ")",
	tokenStartBody:        "{",
	tokenEndBody:          "}",
	tokenIdentifier:       "identifier",
	tokenNumber:           "number",
	tokenString:           "string",
	tokenTrue:             "true",
	tokenFalse:            "false",
	tokenNull:             "null",
	tokenPeriod:           ".",
	tokenComma:            ",",
	tokenColon:            ":",
	tokenQuestion:         "?",
	tokenLeftParenthesis:  "(",
	tokenRightParenthesis: ")",
	tokenLeftBracket:      "[",
	tokenRightBracket:     "]",
	tokenLeftBrace:        "{",
	tokenRightBrace:       "}",
	tokenAssignment:       "=",
	tokenEqual:            "==",
	tokenNotEqual:         "!=",
	tokenNot:              "!",
	tokenLess:             "<",
	tokenLessOrEqual:      "<=",
	tokenGreater:          ">",
	tokenGreaterOrEqual:   ">=",
	tokenAnd:              "&&",
	tokenOr:               "||",
	tokenAddition:         "+",
	tokenSubtraction:      "-",
	tokenMultiplication:   "*",
	tokenDivision:         "/",
	tokenModulo:           "%",
	tokenEOF:              "EOF",
}

func (tt tokenTyp) String() string {
	if s, ok := tokenTypString[tt]; ok {
		return s
	}
	panic("invalid token type")
}

// token is a lexical token.
type token struct {
	typ tokenTyp      // type
	pos *ast.Position // position in the buffer
	txt []byte        // token text
}

// String returns the string that represents the token.
func (tok token) String() string {
	switch tok.typ {
	case tokenText:
		return fmt.Sprintf("%q", tok.txt)
	case tokenDirective, tokenMacro:
		return string(tok.txt)
	case tokenIdentifier:
		return "name " + string(tok.txt)
	case tokenNumber, tokenString:
		return "literal " + string(tok.txt)
	}
	return tok.typ.String()
}
