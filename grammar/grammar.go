// Package grammar implements the textual XADD format: a
// whitespace-insensitive S-expression-like grammar of decisions and
// branches, with leaves and inequality bounds carrying arithmetic
// expressions.
package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Diagram is the root of a parsed .xadd file: exactly one Node.
type Diagram struct {
	Pos  lexer.Position
	Root *Node `@@`
}

// Node is either a leaf ("(" "[" expr "]" ")") or an internal decision
// node ("(" decision true-branch false-branch ")") — the branch taken
// when the decision holds is written first. Both alternatives start with
// "(" so the two are told apart by the single token that follows it: "["
// starts a bracketed leaf/inequality head; a bare identifier starts an
// unbracketed Boolean-atom decision.
type Node struct {
	Pos     lexer.Position
	Bracket *BracketNode `  @@`
	Bool    *BoolNode    `| @@`
}

// BracketNode covers both leaves and inequality-decision internal nodes,
// since both begin "(" "[" head "]" — they differ only in what follows the
// closing "]": nothing (leaf) or two child nodes (internal). Head itself
// parses an expression that may or may not carry a relational tail, so the
// two shapes never compete for the same tokens during the bracket body.
type BracketNode struct {
	Pos   lexer.Position
	Head  *Bracket `"(" "[" @@ "]"`
	High  *Node    `[ @@`
	Low   *Node    `  @@ ]`
	Close string   `")"`
}

// BoolNode is the unbracketed form of a Boolean-atom decision node:
// "(" ident true-branch false-branch ")".
type BoolNode struct {
	Pos   lexer.Position
	Name  string `"(" @Ident`
	High  *Node  `@@`
	Low   *Node  `@@`
	Close string `")"`
}

// Bracket is the content of a "[ ... ]" pair: either a bare expression (a
// leaf, or, when Left is a single identifier and two children follow, a
// bracketed Boolean atom) or a linear inequality (Left Rel Right).
type Bracket struct {
	Pos   lexer.Position
	Left  *Expr  `@@`
	Rel   string `[ @("<=" | ">=" | "==" | "!=" | "<" | ">")`
	Right *Expr  `  @@ ]`
}

// HasRel reports whether b carries a relational tail, i.e. is an
// inequality rather than a bare expression.
func (b *Bracket) HasRel() bool { return b.Rel != "" }

// Expr is additive-precedence arithmetic: a Term chain joined by + or -.
type Expr struct {
	Pos  lexer.Position
	Left *Term    `@@`
	Ops  []*AddOp `{ @@ }`
}

type AddOp struct {
	Pos   lexer.Position
	Op    string `@("+" | "-")`
	Right *Term  `@@`
}

// Term is multiplicative-precedence arithmetic: a Factor chain joined by
// * or /.
type Term struct {
	Pos  lexer.Position
	Left *Factor  `@@`
	Ops  []*MulOp `{ @@ }`
}

type MulOp struct {
	Pos   lexer.Position
	Op    string  `@("*" | "/")`
	Right *Factor `@@`
}

// Factor is an optionally-negated Atom.
type Factor struct {
	Pos  lexer.Position
	Neg  bool  `[ @"-" ]`
	Atom *Atom `@@`
}

// Atom is the leaf of the expression grammar: a function call, a numeric
// literal, an identifier, or a parenthesized sub-expression. Call and
// Ident share the Ident token as their first token, so the parser is
// built with extra lookahead (grammar/parser.go).
type Atom struct {
	Pos    lexer.Position
	Call   *Call   `  @@`
	Number *string `| @Number`
	Ident  *string `| @Ident`
	Paren  *Expr   `| "(" @@ ")"`
}

// Call is a function application from the closed unary function set plus
// "pow", e.g. "sin(x)" or "pow(x, 2)".
type Call struct {
	Pos  lexer.Position
	Func string  `@Ident "("`
	Args []*Expr `[ @@ { "," @@ } ] ")"`
}
