package xadd

import (
	"fmt"

	"github.com/xadd-go/xadd/internal/decision"
	"github.com/xadd-go/xadd/internal/store"
	"github.com/xadd-go/xadd/internal/symbexpr"
)

// applyLeaf is the Apply Engine's base case: both operands are already
// leaves.
func (e *Engine) applyLeaf(l, r *symbexpr.Expr, op Op) (store.NodeID, error) {
	switch op {
	case OpAdd:
		return e.internArith(symbexpr.Add(l, r))
	case OpSubtract:
		return e.internArith(symbexpr.Sub(l, r))
	case OpProd:
		return e.internArith(symbexpr.Mul(l, r))
	case OpDiv:
		canonR := symbexpr.Canonical(r)
		if canonR.IsZero() {
			return 0, fmt.Errorf("%w: division by the zero leaf", ErrLeafEvaluation)
		}
		return e.internArith(symbexpr.Div(l, r))
	case OpAnd:
		return e.boolLeaf(l, r, func(a, b bool) bool { return a && b })
	case OpOr:
		return e.boolLeaf(l, r, func(a, b bool) bool { return a || b })
	case OpMin:
		return e.iteNumeric("<=", l, r, e.Store.InternLeaf(l), e.Store.InternLeaf(r))
	case OpMax:
		return e.iteNumeric("<=", l, r, e.Store.InternLeaf(r), e.Store.InternLeaf(l))
	case OpEq:
		return e.itePredicate("==", l, r)
	case OpNeq:
		return e.itePredicate("!=", l, r)
	case OpLt:
		return e.itePredicate("<", l, r)
	case OpLe:
		return e.itePredicate("<=", l, r)
	case OpGt:
		return e.itePredicate(">", l, r)
	case OpGe:
		return e.itePredicate(">=", l, r)
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownOperator, op)
	}
}

func (e *Engine) internArith(result *symbexpr.Expr) (store.NodeID, error) {
	return e.Store.InternLeaf(result), nil
}

// boolLeaf folds and/or over two leaves, treating nonzero values as true.
// It requires both leaves to be constant-foldable: a non-constant
// boolean-valued leaf reaching here would mean a decision higher in the
// diagram failed to fully resolve truthiness, which this engine treats as
// a malformed use rather than guessing.
func (e *Engine) boolLeaf(l, r *symbexpr.Expr, combine func(a, b bool) bool) (store.NodeID, error) {
	lc, lok := symbexpr.Canonical(l).AsConst()
	rc, rok := symbexpr.Canonical(r).AsConst()
	if !lok || !rok {
		return 0, fmt.Errorf("%w: and/or requires constant-valued leaves, got %q, %q", ErrLeafEvaluation, l, r)
	}
	result := combine(lc.Sign() != 0, rc.Sign() != 0)
	if result {
		return store.TrueLeaf, nil
	}
	return store.FalseLeaf, nil
}

// itePredicate evaluates a relational operator between two leaf
// expressions. When both sides fold to constants the result is a direct
// 0/1 leaf. When either side carries a free variable, comparing them has
// no single truth value without a decision, so a fresh decision is
// registered and the result is a two-branch diagram of the 0/1 leaves,
// the same shape min/max produce for symbolic operands.
func (e *Engine) itePredicate(rel string, l, r *symbexpr.Expr) (store.NodeID, error) {
	return e.iteNumeric(rel, l, r, store.TrueLeaf, store.FalseLeaf)
}

// iteNumeric builds the diagram for "if l `rel` r then ifTrue else
// ifFalse", folding to a constant branch when l-r is constant and
// otherwise registering a fresh decision, canonicalized by the Registry.
func (e *Engine) iteNumeric(rel string, l, r *symbexpr.Expr, ifTrue, ifFalse store.NodeID) (store.NodeID, error) {
	diff := symbexpr.Canonical(symbexpr.Sub(l, r))
	if lf, ok := symbexpr.AsLinear(diff); ok && len(lf.Coeffs) == 0 {
		holds, err := relHolds(rel, lf.Const)
		if err != nil {
			return 0, err
		}
		if holds {
			return ifTrue, nil
		}
		return ifFalse, nil
	}

	id, reversed, err := e.Registry.Register(decision.Input{Rel: rel, Left: l, Right: r}, true)
	if err != nil {
		return 0, err
	}
	low, high := ifFalse, ifTrue
	if reversed {
		low, high = ifTrue, ifFalse
	}
	return e.MakeNode(id, low, high)
}
