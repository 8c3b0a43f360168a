// Package importer builds XADD diagrams from the textual format by
// recursive descent over the grammar package's parsed AST. Every produced
// internal node goes through xadd.Engine.MakeNode and thereby reduction;
// this package never calls store.InternInternal directly.
package importer

import (
	"fmt"
	"math/big"

	"github.com/xadd-go/xadd/grammar"
	"github.com/xadd-go/xadd/internal/decision"
	"github.com/xadd-go/xadd/internal/store"
	"github.com/xadd-go/xadd/internal/symbexpr"
	"github.com/xadd-go/xadd/internal/xadd"
)

// Import parses src (named filename for error positions) and builds it
// into eng, returning the resulting Diagram.
func Import(eng *xadd.Engine, filename, src string) (xadd.Diagram, error) {
	ast, err := grammar.ParseString(filename, src)
	if err != nil {
		return xadd.Diagram{}, fmt.Errorf("importer: parse: %w", err)
	}
	return ImportAST(eng, ast)
}

// ImportFile reads path and imports its contents.
func ImportFile(eng *xadd.Engine, path string) (xadd.Diagram, error) {
	ast, err := grammar.ParseFile(path)
	if err != nil {
		return xadd.Diagram{}, fmt.Errorf("importer: parse: %w", err)
	}
	return ImportAST(eng, ast)
}

// ImportAST builds an already-parsed Diagram AST into eng.
func ImportAST(eng *xadd.Engine, ast *grammar.Diagram) (xadd.Diagram, error) {
	if ast == nil || ast.Root == nil {
		return xadd.Diagram{}, fmt.Errorf("importer: empty diagram")
	}
	id, err := importNode(eng, ast.Root)
	if err != nil {
		return xadd.Diagram{}, err
	}
	return xadd.D(eng, id), nil
}

func importNode(eng *xadd.Engine, n *grammar.Node) (store.NodeID, error) {
	switch {
	case n.Bool != nil:
		return importBoolNode(eng, n.Bool)
	case n.Bracket != nil:
		return importBracketNode(eng, n.Bracket)
	default:
		return 0, fmt.Errorf("importer: empty node")
	}
}

func importBoolNode(eng *xadd.Engine, n *grammar.BoolNode) (store.NodeID, error) {
	id, reversed, err := eng.Registry.Register(decision.Input{BoolVar: n.Name}, true)
	if err != nil {
		return 0, err
	}
	return importChildren(eng, id, reversed, n.Low, n.High)
}

func importBracketNode(eng *xadd.Engine, n *grammar.BracketNode) (store.NodeID, error) {
	head := n.Head
	isLeaf := n.Low == nil || n.High == nil

	if isLeaf {
		if head.HasRel() {
			return 0, fmt.Errorf("%w: a leaf cannot carry a relational operator", xadd.ErrMalformedDecision)
		}
		expr := exprFromGrammar(head.Left)
		return eng.Store.InternLeaf(expr), nil
	}

	if !head.HasRel() {
		// A bracketed bare identifier in decision position is the
		// bracketed spelling of a Boolean atom; accept it alongside the
		// unbracketed form.
		name, ok := asBareIdent(head.Left)
		if !ok {
			return 0, fmt.Errorf("%w: a bracketed decision with no relation must be a single Boolean identifier", xadd.ErrMalformedDecision)
		}
		id, reversed, err := eng.Registry.Register(decision.Input{BoolVar: name}, true)
		if err != nil {
			return 0, err
		}
		return importChildren(eng, id, reversed, n.Low, n.High)
	}

	left := exprFromGrammar(head.Left)
	right := exprFromGrammar(head.Right)
	id, reversed, err := eng.Registry.Register(decision.Input{Rel: head.Rel, Left: left, Right: right}, true)
	if err != nil {
		return 0, err
	}
	return importChildren(eng, id, reversed, n.Low, n.High)
}

func importChildren(eng *xadd.Engine, decID int64, reversed bool, lowN, highN *grammar.Node) (store.NodeID, error) {
	low, err := importNode(eng, lowN)
	if err != nil {
		return 0, err
	}
	high, err := importNode(eng, highN)
	if err != nil {
		return 0, err
	}
	if reversed {
		low, high = high, low
	}
	return eng.MakeNode(decID, low, high)
}

// asBareIdent reports whether e is nothing but a single identifier, with no
// operators or function calls, returning that identifier's name.
func asBareIdent(e *grammar.Expr) (string, bool) {
	if len(e.Ops) != 0 {
		return "", false
	}
	t := e.Left
	if len(t.Ops) != 0 {
		return "", false
	}
	f := t.Left
	if f.Neg {
		return "", false
	}
	if f.Atom.Ident == nil {
		return "", false
	}
	return *f.Atom.Ident, true
}

// exprFromGrammar lowers a parsed grammar.Expr into the Expression
// Oracle's symbexpr.Expr tree.
func exprFromGrammar(e *grammar.Expr) *symbexpr.Expr {
	result := termFromGrammar(e.Left)
	for _, op := range e.Ops {
		rhs := termFromGrammar(op.Right)
		switch op.Op {
		case "+":
			result = symbexpr.Add(result, rhs)
		case "-":
			result = symbexpr.Sub(result, rhs)
		}
	}
	return result
}

func termFromGrammar(t *grammar.Term) *symbexpr.Expr {
	result := factorFromGrammar(t.Left)
	for _, op := range t.Ops {
		rhs := factorFromGrammar(op.Right)
		switch op.Op {
		case "*":
			result = symbexpr.Mul(result, rhs)
		case "/":
			result = symbexpr.Div(result, rhs)
		}
	}
	return result
}

func factorFromGrammar(f *grammar.Factor) *symbexpr.Expr {
	atom := atomFromGrammar(f.Atom)
	if f.Neg {
		return symbexpr.Neg(atom)
	}
	return atom
}

func atomFromGrammar(a *grammar.Atom) *symbexpr.Expr {
	switch {
	case a.Call != nil:
		return callFromGrammar(a.Call)
	case a.Number != nil:
		return symbexpr.NumRat(parseNumber(*a.Number))
	case a.Ident != nil:
		return symbexpr.Variable(*a.Ident)
	case a.Paren != nil:
		return exprFromGrammar(a.Paren)
	default:
		return symbexpr.Number(0)
	}
}

func callFromGrammar(c *grammar.Call) *symbexpr.Expr {
	fn := symbexpr.Func(c.Func)
	if len(c.Args) == 0 {
		return symbexpr.Call(fn, symbexpr.Number(0), nil)
	}
	x := exprFromGrammar(c.Args[0])
	var arg *symbexpr.Expr
	if len(c.Args) > 1 {
		arg = exprFromGrammar(c.Args[1])
	}
	return symbexpr.Call(fn, x, arg)
}

// parseNumber reads a decimal literal as an exact rational, so "0.1"
// stays 1/10 instead of picking up float64 rounding.
func parseNumber(s string) *big.Rat {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return big.NewRat(0, 1)
	}
	return r
}
