// Copyright (c) 2026 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compiler

import (
	"strings"

	"github.com/open2b/enjoy/ast"

	"github.com/shopspring/decimal"
)

// parseExpr parses an expression and returns its tree and the last read token
// that does not belong to the expression. It panics on error.
//
// tok is the first token of the expression. If there is no expression,
// parseExpr returns nil and tok.
func (p *parsing) parseExpr(tok token) (ast.Expression, token) {
	expr, tok := p.parseOperators(tok)
	if expr == nil || tok.typ != tokenQuestion {
		return expr, tok
	}
	// cond ? then : else
	pos := &ast.Position{Line: expr.Pos().Line, Column: expr.Pos().Column, Start: expr.Pos().Start}
	var then, els ast.Expression
	then, tok = p.parseExpr(p.next())
	if then == nil {
		panic(syntaxError(tok.pos, "unexpected %s, expecting expression", tok))
	}
	if tok.typ != tokenColon {
		panic(syntaxError(tok.pos, "unexpected %s, expecting :", tok))
	}
	els, tok = p.parseExpr(p.next())
	if els == nil {
		panic(syntaxError(tok.pos, "unexpected %s, expecting expression", tok))
	}
	pos.End = els.Pos().End
	return ast.NewConditional(pos, expr, then, els), tok
}

// parseOperators parses an expression without the conditional operator.
func (p *parsing) parseOperators(tok token) (ast.Expression, token) {

	// path is the tree path that starts from the root operator and ends with
	// the leaf operator.
	var path []ast.Operator

	for {

		var operand ast.Expression
		var operator ast.Operator

		switch tok.typ {
		case tokenLeftParenthesis: // ( e )
			// Call parseExpr recursively to parse the expression in
			// parenthesis and then handle it as a single operand.
			pos := tok.pos
			var expr ast.Expression
			expr, tok = p.parseExpr(p.next())
			if expr == nil {
				panic(syntaxError(tok.pos, "unexpected %s, expecting expression", tok))
			}
			if tok.typ != tokenRightParenthesis {
				panic(syntaxError(tok.pos, "unexpected %s, expecting )", tok))
			}
			expr.SetParenthesis(expr.Parenthesis() + 1)
			operand = expr
			operand.Pos().Start = pos.Start
			operand.Pos().End = tok.pos.End
			tok = p.next()
		case tokenLeftBracket: // [ e1, e2 ]
			pos := tok.pos
			var elements []ast.Expression
			elements, tok = p.parseExprList(p.next(), tokenRightBracket)
			operand = ast.NewList(pos.WithEnd(tok.pos.End), elements)
			tok = p.next()
		case tokenLeftBrace: // { k1: v1, k2: v2 }
			operand, tok = p.parseMap(tok)
		case tokenNot, tokenSubtraction: // !e, -e
			op := ast.OperatorNot
			if tok.typ == tokenSubtraction {
				op = ast.OperatorSubtraction
			}
			operator = ast.NewUnaryOperator(tok.pos, op, nil)
			tok = p.next()
		case tokenNumber: // 5.8
			n, err := decimal.NewFromString(string(tok.txt))
			if err != nil {
				panic(syntaxError(tok.pos, "invalid number %s", tok.txt))
			}
			operand = ast.NewNumber(tok.pos, n)
			tok = p.next()
		case tokenString: // "abc", 'abc'
			operand = ast.NewString(tok.pos, unquoteString(tok.txt))
			tok = p.next()
		case tokenTrue, tokenFalse: // true, false
			operand = ast.NewBoolean(tok.pos, tok.typ == tokenTrue)
			tok = p.next()
		case tokenNull: // null
			operand = ast.NewNull(tok.pos)
			tok = p.next()
		case tokenIdentifier: // a
			operand = ast.NewIdentifier(tok.pos, string(tok.txt))
			tok = p.next()
		default:
			if len(path) > 0 {
				panic(syntaxError(tok.pos, "unexpected %s, expecting expression", tok))
			}
			return nil, tok
		}

		if operand != nil {

			// Postfix operators.
			for operator == nil {
				switch tok.typ {
				case tokenPeriod: // e.name
					next := p.next()
					if next.typ != tokenIdentifier {
						panic(syntaxError(next.pos, "unexpected %s, expecting name", next))
					}
					pos := operand.Pos().WithEnd(next.pos.End)
					operand = ast.NewSelector(pos, operand, string(next.txt))
					tok = p.next()
				case tokenLeftBracket: // e[i]
					var index ast.Expression
					index, tok = p.parseExpr(p.next())
					if index == nil {
						panic(syntaxError(tok.pos, "unexpected %s, expecting expression", tok))
					}
					if tok.typ != tokenRightBracket {
						panic(syntaxError(tok.pos, "unexpected %s, expecting ]", tok))
					}
					pos := operand.Pos().WithEnd(tok.pos.End)
					operand = ast.NewIndex(pos, operand, index)
					tok = p.next()
				case tokenLeftParenthesis: // e(...)
					var args []ast.Expression
					args, tok = p.parseExprList(p.next(), tokenRightParenthesis)
					pos := operand.Pos().WithEnd(tok.pos.End)
					operand = ast.NewCall(pos, operand, args)
					tok = p.next()
				case
					tokenEqual,          // e ==
					tokenNotEqual,       // e !=
					tokenLess,           // e <
					tokenLessOrEqual,    // e <=
					tokenGreater,        // e >
					tokenGreaterOrEqual, // e >=
					tokenAnd,            // e &&
					tokenOr,             // e ||
					tokenAddition,       // e +
					tokenSubtraction,    // e -
					tokenMultiplication, // e *
					tokenDivision,       // e /
					tokenModulo:         // e %
					operator = ast.NewBinaryOperator(tok.pos, operatorFromTokenType(tok.typ), nil, nil)
					tok = p.next()
				default:
					if len(path) > 0 {
						operand = addLastOperand(operand, path)
					}
					return operand, tok
				}
			}

		}

		// Add the operator to the expression tree.

		switch op := operator.(type) {

		case *ast.UnaryOperator:
			// An unary operator becomes the new leaf operator as it has an
			// higher precedence than all the other operators.
			if len(path) > 0 {
				switch leaf := path[len(path)-1].(type) {
				case *ast.UnaryOperator:
					leaf.Expr = op
				case *ast.BinaryOperator:
					leaf.Expr2 = op
				}
			}
			path = append(path, op)

		case *ast.BinaryOperator:
			// Start from the leaf operator and go up to the root, stopping
			// if an operator with lower precedence is found.

			// For all unary operators, set the start at the end of the path.
			start := operand.Pos().Start
			for i := len(path) - 1; i >= 0; i-- {
				if o, ok := path[i].(*ast.UnaryOperator); ok {
					o.Position.Start = start
				} else {
					break
				}
			}

			// i is the position in the path where to add the operator.
			var i = len(path)
			for i > 0 && op.Precedence() <= path[i-1].Precedence() {
				i--
			}
			if i > 0 {
				// operator becomes the child of the operator with lower
				// precedence found going up the path.
				switch o := path[i-1].(type) {
				case *ast.UnaryOperator:
					o.Expr = op
				case *ast.BinaryOperator:
					o.Expr2 = op
				}
			}
			if i < len(path) {
				// operand becomes the child of the leaf operator.
				switch o := path[len(path)-1].(type) {
				case *ast.UnaryOperator:
					o.Expr = operand
				case *ast.BinaryOperator:
					o.Expr2 = operand
				}
				for j := i; j < len(path); j++ {
					switch o := path[j].(type) {
					case *ast.UnaryOperator:
						o.Position.End = operand.Pos().End
					case *ast.BinaryOperator:
						o.Position.End = operand.Pos().End
					}
				}
				op.Expr1 = path[i]
				op.Position.Start = path[i].Pos().Start
				path[i] = op
				path = path[0 : i+1]
			} else {
				op.Expr1 = operand
				op.Position.Start = operand.Pos().Start
				path = append(path, op)
			}

		}

	}

}

// addLastOperand adds the last operand to the expression parsing path and
// returns the operand resulting from the parsing of the entire expression.
func addLastOperand(op ast.Expression, path []ast.Operator) ast.Expression {
	// Add the operand as a child of the leaf operator.
	switch leaf := path[len(path)-1].(type) {
	case *ast.UnaryOperator:
		leaf.Expr = op
	case *ast.BinaryOperator:
		leaf.Expr2 = op
	}
	// Set the end for all the operators in path.
	end := op.Pos().End
	for _, op := range path {
		switch o := op.(type) {
		case *ast.UnaryOperator:
			o.Position.End = end
		case *ast.BinaryOperator:
			o.Position.End = end
		}
	}
	return path[0]
}

// parseExprList parses a list of expressions separated by a comma and
// terminated by a token of type end. It returns the list and the end token.
// It panics on error.
func (p *parsing) parseExprList(tok token, end tokenTyp) ([]ast.Expression, token) {
	var elements []ast.Expression
	for {
		if tok.typ == end && len(elements) == 0 {
			return elements, tok
		}
		var expr ast.Expression
		expr, tok = p.parseExpr(tok)
		if expr == nil {
			panic(syntaxError(tok.pos, "unexpected %s, expecting expression", tok))
		}
		elements = append(elements, expr)
		switch tok.typ {
		case tokenComma:
			tok = p.next()
		case end:
			return elements, tok
		default:
			panic(syntaxError(tok.pos, "unexpected %s, expecting comma or %s", tok, end))
		}
	}
}

// parseMap parses a map literal. tok is the left brace token.
func (p *parsing) parseMap(tok token) (ast.Expression, token) {
	pos := tok.pos
	var keyValues []ast.KeyValue
	tok = p.next()
	for tok.typ != tokenRightBrace {
		var key ast.Expression
		switch tok.typ {
		case tokenIdentifier, tokenTrue, tokenFalse, tokenNull:
			key = ast.NewString(tok.pos, string(tok.txt))
		case tokenString:
			key = ast.NewString(tok.pos, unquoteString(tok.txt))
		case tokenNumber:
			key = ast.NewString(tok.pos, string(tok.txt))
		default:
			panic(syntaxError(tok.pos, "unexpected %s, expecting map key", tok))
		}
		tok = p.next()
		if tok.typ != tokenColon {
			panic(syntaxError(tok.pos, "unexpected %s, expecting :", tok))
		}
		var value ast.Expression
		value, tok = p.parseExpr(p.next())
		if value == nil {
			panic(syntaxError(tok.pos, "unexpected %s, expecting expression", tok))
		}
		keyValues = append(keyValues, ast.KeyValue{Key: key, Value: value})
		switch tok.typ {
		case tokenComma:
			tok = p.next()
		case tokenRightBrace:
		default:
			panic(syntaxError(tok.pos, "unexpected %s, expecting comma or }", tok))
		}
	}
	return ast.NewMap(pos.WithEnd(tok.pos.End), keyValues), p.next()
}

// operatorFromTokenType returns the binary operator of a token type.
func operatorFromTokenType(typ tokenTyp) ast.OperatorType {
	switch typ {
	case tokenEqual:
		return ast.OperatorEqual
	case tokenNotEqual:
		return ast.OperatorNotEqual
	case tokenLess:
		return ast.OperatorLess
	case tokenLessOrEqual:
		return ast.OperatorLessEqual
	case tokenGreater:
		return ast.OperatorGreater
	case tokenGreaterOrEqual:
		return ast.OperatorGreaterEqual
	case tokenAnd:
		return ast.OperatorAnd
	case tokenOr:
		return ast.OperatorOr
	case tokenAddition:
		return ast.OperatorAddition
	case tokenSubtraction:
		return ast.OperatorSubtraction
	case tokenMultiplication:
		return ast.OperatorMultiplication
	case tokenDivision:
		return ast.OperatorDivision
	case tokenModulo:
		return ast.OperatorModulo
	}
	panic("invalid token type")
}

// unquoteString returns the content of a quoted string literal. Only the
// escapes \\, \' and \" are interpreted, other backslashes are kept.
func unquoteString(s []byte) string {
	s = s[1 : len(s)-1]
	if !strings.ContainsRune(string(s), '\\') {
		return string(s)
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) && isEscapable(s[i+1]) {
			i++
			c = s[i]
		}
		b.WriteByte(c)
	}
	return b.String()
}
