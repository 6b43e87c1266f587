// Copyright (c) 2026 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ast declares the types used to define template trees.
//
// For example, the source in a template file named "articles.html":
//
//	#for(article : articles){<div>#(article.title)</div>}
//
// is represented with the tree:
//
//	ast.NewTree("articles.html", []ast.Node{
//		ast.NewFor(
//			&ast.Position{Line: 1, Column: 1, Start: 0, End: 52},
//			ast.NewIdentifier(&ast.Position{Line: 1, Column: 6, Start: 5, End: 11}, "article"),
//			nil,
//			ast.NewIdentifier(&ast.Position{Line: 1, Column: 16, Start: 15, End: 22}, "articles"),
//			[]ast.Node{
//				ast.NewText(&ast.Position{Line: 1, Column: 26, Start: 25, End: 29}, "<div>"),
//				ast.NewShow(
//					&ast.Position{Line: 1, Column: 31, Start: 30, End: 45},
//					ast.NewSelector(
//						&ast.Position{Line: 1, Column: 33, Start: 32, End: 44},
//						ast.NewIdentifier(&ast.Position{Line: 1, Column: 33, Start: 32, End: 38}, "article"),
//						"title"),
//					true),
//				ast.NewText(&ast.Position{Line: 1, Column: 46, Start: 46, End: 51}, "</div>"),
//			},
//			nil,
//		),
//	})
//
// Trees are never modified after the parsing, so they can be shared by
// concurrent renderings.
package ast

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// OperatorType represents an operator type in a unary and binary expression.
type OperatorType int

const (
	OperatorEqual          OperatorType = iota // ==
	OperatorNotEqual                           // !=
	OperatorLess                               // <
	OperatorLessEqual                          // <=
	OperatorGreater                            // >
	OperatorGreaterEqual                       // >=
	OperatorNot                                // !
	OperatorAnd                                // &&
	OperatorOr                                 // ||
	OperatorAddition                           // +
	OperatorSubtraction                        // -
	OperatorMultiplication                     // *
	OperatorDivision                           // /
	OperatorModulo                             // %
)

// String returns the string representation of the operator type.
func (op OperatorType) String() string {
	return []string{"==", "!=", "<", "<=", ">", ">=", "!", "&&", "||",
		"+", "-", "*", "/", "%"}[op]
}

// Node is a node of the tree.
type Node interface {
	Pos() *Position // position in the original source
}

// Position is a position of a node in the source.
type Position struct {
	Line   int // line starting from 1
	Column int // column in characters starting from 1
	Start  int // index of the first byte
	End    int // index of the last byte
}

// Pos returns the position p.
func (p *Position) Pos() *Position {
	return p
}

// String returns the line and column separated by a colon, for example "37:18".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// WithEnd returns a copy of the position but with the given end index.
func (p *Position) WithEnd(end int) *Position {
	pp := *p
	pp.End = end
	return &pp
}

// Operator represents an operator expression. It is implemented by the
// UnaryOperator, BinaryOperator and Conditional nodes.
type Operator interface {
	Expression
	Precedence() int
}

// Expression node represents an expression.
type Expression interface {
	Parenthesis() int
	SetParenthesis(int)
	Node
	String() string
}

// expression represents an expression.
type expression struct {
	parenthesis int
}

// Parenthesis returns the number of parenthesis around the expression.
func (e *expression) Parenthesis() int {
	return e.parenthesis
}

// SetParenthesis sets the number of parenthesis around the expression.
func (e *expression) SetParenthesis(n int) {
	e.parenthesis = n
}

// Assignment node represents an assignment in a "set" directive.
type Assignment struct {
	*Position             // position in the source.
	Ident     *Identifier // assigned variable.
	Expr      Expression  // assigned value.
}

// NewAssignment returns a new Assignment node.
func NewAssignment(pos *Position, ident *Identifier, expr Expression) *Assignment {
	return &Assignment{pos, ident, expr}
}

// String returns the string representation of n.
func (n *Assignment) String() string {
	return n.Ident.Name + " = " + n.Expr.String()
}

// BinaryOperator node represents a binary operator expression.
type BinaryOperator struct {
	*expression
	*Position              // position in the source.
	Op        OperatorType // operator.
	Expr1     Expression   // first expression.
	Expr2     Expression   // second expression.
}

// NewBinaryOperator returns a new binary operator.
func NewBinaryOperator(pos *Position, op OperatorType, expr1, expr2 Expression) *BinaryOperator {
	return &BinaryOperator{&expression{}, pos, op, expr1, expr2}
}

// String returns the string representation of n.
func (n *BinaryOperator) String() string {
	var s string
	if e, ok := n.Expr1.(Operator); ok && e.Precedence() < n.Precedence() {
		s += "(" + n.Expr1.String() + ")"
	} else {
		s += n.Expr1.String()
	}
	s += " " + n.Op.String() + " "
	if e, ok := n.Expr2.(Operator); ok && e.Precedence() <= n.Precedence() {
		s += "(" + n.Expr2.String() + ")"
	} else {
		s += n.Expr2.String()
	}
	return s
}

// Precedence returns a number that represents the precedence of the
// expression.
func (n *BinaryOperator) Precedence() int {
	switch n.Op {
	case OperatorMultiplication, OperatorDivision, OperatorModulo:
		return 6
	case OperatorAddition, OperatorSubtraction:
		return 5
	case OperatorLess, OperatorLessEqual, OperatorGreater, OperatorGreaterEqual:
		return 4
	case OperatorEqual, OperatorNotEqual:
		return 3
	case OperatorAnd:
		return 2
	case OperatorOr:
		return 1
	}
	panic("invalid operator type")
}

// Boolean node represents the literals true and false.
type Boolean struct {
	*expression
	*Position      // position in the source.
	Value     bool // value.
}

// NewBoolean returns a new Boolean node.
func NewBoolean(pos *Position, value bool) *Boolean {
	return &Boolean{&expression{}, pos, value}
}

// String returns the string representation of n.
func (n *Boolean) String() string {
	if n.Value {
		return "true"
	}
	return "false"
}

// Break node represents a "break" directive.
type Break struct {
	*Position // position in the source.
}

// NewBreak returns a new Break node.
func NewBreak(pos *Position) *Break {
	return &Break{pos}
}

// Call node represents a function or method call expression.
type Call struct {
	*expression
	*Position              // position in the source.
	Func      Expression   // function. It is a Selector for method calls.
	Args      []Expression // arguments.
}

// NewCall returns a new Call node.
func NewCall(pos *Position, fun Expression, args []Expression) *Call {
	return &Call{&expression{}, pos, fun, args}
}

// String returns the string representation of n.
func (n *Call) String() string {
	s := n.Func.String() + "("
	for i, arg := range n.Args {
		if i > 0 {
			s += ", "
		}
		s += arg.String()
	}
	s += ")"
	return s
}

// Case node represents a "case" directive in a switch.
type Case struct {
	*Position                // position in the source.
	Expressions []Expression // values compared with the switch subject.
	Body        []Node       // nodes executed when the case matches.
}

// NewCase returns a new Case node.
func NewCase(pos *Position, expressions []Expression, body []Node) *Case {
	return &Case{pos, expressions, body}
}

// Comment node represents a "comment" directive. Its body is never executed.
type Comment struct {
	*Position        // position in the source.
	Body      []Node // parsed body.
}

// NewComment returns a new Comment node.
func NewComment(pos *Position, body []Node) *Comment {
	return &Comment{pos, body}
}

// Conditional node represents the ternary expression "cond ? a : b".
type Conditional struct {
	*expression
	*Position            // position in the source.
	Cond      Expression // condition.
	Then      Expression // value if the condition is true.
	Else      Expression // value if the condition is false.
}

// NewConditional returns a new Conditional node.
func NewConditional(pos *Position, cond, then, els Expression) *Conditional {
	return &Conditional{&expression{}, pos, cond, then, els}
}

// String returns the string representation of n.
func (n *Conditional) String() string {
	return n.Cond.String() + " ? " + n.Then.String() + " : " + n.Else.String()
}

// Precedence returns the precedence of the expression, that is lower than
// the precedence of all the binary operators.
func (n *Conditional) Precedence() int {
	return 0
}

// Continue node represents a "continue" directive.
type Continue struct {
	*Position // position in the source.
}

// NewContinue returns a new Continue node.
func NewContinue(pos *Position) *Continue {
	return &Continue{pos}
}

// Custom node represents a directive registered by the application.
type Custom struct {
	*Position              // position in the source.
	Name      string       // directive name, without the leading '#'.
	Args      []Expression // arguments; nil if the directive has no parenthesis.
	Body      []Node       // body; nil if the directive has no body.
	HasBody   bool         // reports whether the directive has a body, also if empty.
	Data      interface{}  // value set by the directive during the parsing.
}

// NewCustom returns a new Custom node.
func NewCustom(pos *Position, name string, args []Expression, body []Node, hasBody bool) *Custom {
	return &Custom{Position: pos, Name: name, Args: args, Body: body, HasBody: hasBody}
}

// Define node represents a "define" directive that declares a macro.
type Define struct {
	*Position                // position in the source.
	Ident      *Identifier   // name.
	Parameters []*Identifier // formal parameters.
	Body       []Node        // body.
}

// NewDefine returns a new Define node.
func NewDefine(pos *Position, ident *Identifier, parameters []*Identifier, body []Node) *Define {
	return &Define{pos, ident, parameters, body}
}

// For node represents a "for" directive.
//
// Ident is the element of a list, or the entry of a map. Second, if not nil,
// is the loop status for lists and the value for maps.
type For struct {
	*Position             // position in the source.
	Ident     *Identifier // first loop variable.
	Second    *Identifier // second loop variable, can be nil.
	Expr      Expression  // iterated expression.
	Body      []Node      // nodes of the body.
	Else      []Node      // nodes executed if there are no iterations, can be nil.
}

// NewFor returns a new For node.
func NewFor(pos *Position, ident, second *Identifier, expr Expression, body, els []Node) *For {
	return &For{pos, ident, second, expr, body, els}
}

// Identifier node represents an identifier expression.
type Identifier struct {
	*expression
	*Position        // position in the source.
	Name      string // name.
}

// NewIdentifier returns a new Identifier node.
func NewIdentifier(pos *Position, name string) *Identifier {
	return &Identifier{&expression{}, pos, name}
}

// String returns the string representation of n.
func (n *Identifier) String() string {
	return n.Name
}

// If node represents an "if" directive with its "elseif" and "else"
// branches.
type If struct {
	*Position           // position in the source.
	Branches  []*Branch // "if" and "elseif" branches in source order.
	Else      []Node    // nodes of the "else" branch, nil if there is no "else".
}

// Branch is a conditional branch of an If node.
type Branch struct {
	*Position            // position in the source.
	Cond      Expression // condition.
	Body      []Node     // nodes executed if the condition is true.
}

// NewIf returns a new If node.
func NewIf(pos *Position, branches []*Branch, els []Node) *If {
	return &If{pos, branches, els}
}

// NewBranch returns a new branch of an If node.
func NewBranch(pos *Position, cond Expression, body []Node) *Branch {
	return &Branch{pos, cond, body}
}

// Include node represents an "include" directive.
type Include struct {
	*Position            // position in the source.
	Path      Expression // path, evaluated at rendering time.
}

// NewInclude returns a new Include node.
func NewInclude(pos *Position, path Expression) *Include {
	return &Include{pos, path}
}

// Index node represents an index expression.
type Index struct {
	*expression
	*Position            // position in the source.
	Expr      Expression // expression.
	Index     Expression // index.
}

// NewIndex returns a new Index node.
func NewIndex(pos *Position, expr Expression, index Expression) *Index {
	return &Index{&expression{}, pos, expr, index}
}

// String returns the string representation of n.
func (n *Index) String() string {
	return n.Expr.String() + "[" + n.Index.String() + "]"
}

// KeyValue represents a key value pair in a map literal.
type KeyValue struct {
	Key   Expression
	Value Expression
}

// List node represents a list literal.
type List struct {
	*expression
	*Position              // position in the source.
	Elements  []Expression // elements.
}

// NewList returns a new List node.
func NewList(pos *Position, elements []Expression) *List {
	return &List{&expression{}, pos, elements}
}

// String returns the string representation of n.
func (n *List) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, e := range n.Elements {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.String())
	}
	b.WriteByte(']')
	return b.String()
}

// Map node represents a map literal.
type Map struct {
	*expression
	*Position            // position in the source.
	KeyValues []KeyValue // key value pairs in source order.
}

// NewMap returns a new Map node.
func NewMap(pos *Position, keyValues []KeyValue) *Map {
	return &Map{&expression{}, pos, keyValues}
}

// String returns the string representation of n.
func (n *Map) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, kv := range n.KeyValues {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(kv.Key.String())
		b.WriteString(": ")
		b.WriteString(kv.Value.String())
	}
	b.WriteByte('}')
	return b.String()
}

// Null node represents the literal null.
type Null struct {
	*expression
	*Position // position in the source.
}

// NewNull returns a new Null node.
func NewNull(pos *Position) *Null {
	return &Null{&expression{}, pos}
}

// String returns the string representation of n.
func (n *Null) String() string {
	return "null"
}

// Number node represents a decimal number literal.
type Number struct {
	*expression
	*Position                 // position in the source.
	Value     decimal.Decimal // value.
}

// NewNumber returns a new Number node.
func NewNumber(pos *Position, value decimal.Decimal) *Number {
	return &Number{&expression{}, pos, value}
}

// String returns the string representation of n.
func (n *Number) String() string {
	return n.Value.String()
}

// Selector node represents a property access expression.
type Selector struct {
	*expression
	*Position            // position in the source.
	Expr      Expression // expression.
	Ident     string     // property name.
}

// NewSelector returns a new Selector node.
func NewSelector(pos *Position, expr Expression, ident string) *Selector {
	return &Selector{&expression{}, pos, expr, ident}
}

// String returns the string representation of n.
func (n *Selector) String() string {
	return n.Expr.String() + "." + n.Ident
}

// Set node represents a "set" directive.
type Set struct {
	*Position                 // position in the source.
	Assignments []*Assignment // assignments in source order.
}

// NewSet returns a new Set node.
func NewSet(pos *Position, assignments []*Assignment) *Set {
	return &Set{pos, assignments}
}

// Show node represents an output directive, "#(expr)" or "#raw(expr)".
type Show struct {
	*Position            // position in the source.
	Expr      Expression // expression that once evaluated returns the value to show.
	Escape    bool       // reports whether the value is escaped.
}

// NewShow returns a new Show node.
func NewShow(pos *Position, expr Expression, escape bool) *Show {
	return &Show{pos, expr, escape}
}

// String returns the string representation of n.
func (n *Show) String() string {
	if n.Escape {
		return "#(" + n.Expr.String() + ")"
	}
	return "#raw(" + n.Expr.String() + ")"
}

// ShowMacro node represents a macro invocation, "#call(name, ...)" or
// "#@name(...)".
type ShowMacro struct {
	*Position              // position in the source.
	Macro     *Identifier  // macro name.
	Args      []Expression // arguments.
}

// NewShowMacro returns a new ShowMacro node.
func NewShowMacro(pos *Position, macro *Identifier, args []Expression) *ShowMacro {
	return &ShowMacro{pos, macro, args}
}

// String node represents a string literal.
type String struct {
	*expression
	*Position        // position in the source.
	Text      string // unquoted text.
}

// NewString returns a new String node.
func NewString(pos *Position, text string) *String {
	return &String{&expression{}, pos, text}
}

// String returns the string representation of n.
func (n *String) String() string {
	return strconv.Quote(n.Text)
}

// Switch node represents a "switch" directive.
type Switch struct {
	*Position            // position in the source.
	Expr      Expression // subject, evaluated once.
	Cases     []*Case    // cases in source order.
	Default   []Node     // nodes of the "default" case, nil if there is no default.
}

// NewSwitch returns a new Switch node.
func NewSwitch(pos *Position, expr Expression, cases []*Case, def []Node) *Switch {
	return &Switch{pos, expr, cases, def}
}

// Text node represents a text in the source.
type Text struct {
	*Position        // position in the source.
	Text      string // text.
}

// NewText returns a new Text node.
func NewText(pos *Position, text string) *Text {
	return &Text{pos, text}
}

// String returns the string representation of n.
func (n *Text) String() string {
	return n.Text
}

// Tree node represents the tree of a template. It is the root of a compiled
// template.
type Tree struct {
	*Position
	Path  string // path of the tree.
	Nodes []Node // nodes of the first level of the tree.
}

// NewTree returns a new Tree node.
func NewTree(path string, nodes []Node) *Tree {
	if nodes == nil {
		nodes = []Node{}
	}
	tree := &Tree{
		Position: &Position{1, 1, 0, 0},
		Path:     path,
		Nodes:    nodes,
	}
	return tree
}

// UnaryOperator node represents an unary operator expression.
type UnaryOperator struct {
	*expression
	*Position              // position in the source.
	Op        OperatorType // operator.
	Expr      Expression   // expression.
}

// NewUnaryOperator returns a new unary operator.
func NewUnaryOperator(pos *Position, op OperatorType, expr Expression) *UnaryOperator {
	return &UnaryOperator{&expression{}, pos, op, expr}
}

// String returns the string representation of n.
func (n *UnaryOperator) String() string {
	s := n.Op.String()
	if e, ok := n.Expr.(Operator); ok {
		s += "(" + e.String() + ")"
	} else {
		s += n.Expr.String()
	}
	return s
}

// Precedence returns a number that represents the precedence of the
// expression.
func (n *UnaryOperator) Precedence() int {
	return 7
}
