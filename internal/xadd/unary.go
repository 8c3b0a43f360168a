package xadd

import (
	"fmt"

	"github.com/xadd-go/xadd/internal/store"
	"github.com/xadd-go/xadd/internal/symbexpr"
)

// UnaryOp is the closed set of leaf-wise operators the Unary Engine
// accepts.
type UnaryOp string

const (
	UnarySin   UnaryOp = "sin"
	UnaryCos   UnaryOp = "cos"
	UnaryTan   UnaryOp = "tan"
	UnarySinh  UnaryOp = "sinh"
	UnaryCosh  UnaryOp = "cosh"
	UnaryTanh  UnaryOp = "tanh"
	UnaryExp   UnaryOp = "exp"
	UnaryLog   UnaryOp = "log"
	UnaryLog2  UnaryOp = "log2"
	UnaryLog10 UnaryOp = "log10"
	UnaryLog1p UnaryOp = "log1p"
	UnaryFloor UnaryOp = "floor"
	UnaryCeil  UnaryOp = "ceil"
	UnarySqrt  UnaryOp = "sqrt"
	UnaryPow   UnaryOp = "pow"
	UnaryNeg   UnaryOp = "neg"
	UnaryPos   UnaryOp = "pos"
	UnarySgn   UnaryOp = "sgn"
	UnaryNot   UnaryOp = "not"
)

// Arg is the optional exponent argument pow takes (integer or symbolic;
// both are just symbexpr.Expr values here). It is nil for every other op.
type Arg = *symbexpr.Expr

var validUnaryOps = map[UnaryOp]bool{
	UnarySin: true, UnaryCos: true, UnaryTan: true,
	UnarySinh: true, UnaryCosh: true, UnaryTanh: true,
	UnaryExp: true, UnaryLog: true, UnaryLog2: true, UnaryLog10: true, UnaryLog1p: true,
	UnaryFloor: true, UnaryCeil: true, UnarySqrt: true, UnaryPow: true,
	UnaryNeg: true, UnaryPos: true, UnarySgn: true, UnaryNot: true,
}

// funcFor maps the subset of UnaryOps that are plain symbexpr.Call wrappers
// to their symbexpr.Func. sgn and not build their own diagram shape below
// and are handled separately; neg/pos are arithmetic, not calls.
var funcFor = map[UnaryOp]symbexpr.Func{
	UnarySin: symbexpr.FuncSin, UnaryCos: symbexpr.FuncCos, UnaryTan: symbexpr.FuncTan,
	UnarySinh: symbexpr.FuncSinh, UnaryCosh: symbexpr.FuncCosh, UnaryTanh: symbexpr.FuncTanh,
	UnaryExp: symbexpr.FuncExp, UnaryLog: symbexpr.FuncLog, UnaryLog2: symbexpr.FuncLog2,
	UnaryLog10: symbexpr.FuncLog10, UnaryLog1p: symbexpr.FuncLog1p,
	UnaryFloor: symbexpr.FuncFloor, UnaryCeil: symbexpr.FuncCeil, UnarySqrt: symbexpr.FuncSqrt,
	UnaryPow: symbexpr.FuncPow,
}

// ParseUnaryOp validates s against the closed unary operator set.
func ParseUnaryOp(s string) (UnaryOp, error) {
	op := UnaryOp(s)
	if !validUnaryOps[op] {
		return "", fmt.Errorf("%w: %q", ErrUnknownOperator, s)
	}
	return op, nil
}

type unaryKey struct {
	op  UnaryOp
	id  store.NodeID
	arg string
}

func argKey(arg Arg) string {
	if arg == nil {
		return ""
	}
	return arg.String()
}

// Unary is the Unary Engine's single entry point: a leaf-wise transform,
// rebuilt bottom-up via MakeNode and memoized by (op, id, arg). sgn
// introduces new decisions (via iteNumeric) and so triggers a
// MakeCanonical pass once the top-level call returns, exactly like
// Apply's canonicalize-after list.
func (e *Engine) Unary(id store.NodeID, op UnaryOp, arg Arg) (store.NodeID, error) {
	if !validUnaryOps[op] {
		return 0, fmt.Errorf("%w: %q", ErrUnknownOperator, op)
	}
	result, err := e.unaryRec(id, op, arg)
	if err != nil {
		return 0, err
	}
	if op == UnarySgn {
		return e.MakeCanonical(result)
	}
	return result, nil
}

func (e *Engine) unaryRec(id store.NodeID, op UnaryOp, arg Arg) (store.NodeID, error) {
	key := unaryKey{op: op, id: id, arg: argKey(arg)}
	if cached, ok := e.unaryMemo[key]; ok {
		return cached, nil
	}

	node, err := e.Store.Get(id)
	if err != nil {
		return 0, err
	}

	var result store.NodeID
	if node.Kind == store.KindLeaf {
		result, err = e.unaryLeaf(node.Expr, op, arg)
	} else {
		lo, err2 := e.unaryRec(node.Low, op, arg)
		if err2 != nil {
			return 0, err2
		}
		hi, err2 := e.unaryRec(node.High, op, arg)
		if err2 != nil {
			return 0, err2
		}
		// Decisions pass through untouched for every op, including not:
		// inverting the 0/1 leaves alone complements a boolean diagram.
		result, err = e.MakeNode(node.Dec, lo, hi)
	}
	if err != nil {
		return 0, err
	}
	e.unaryMemo[key] = result
	return result, nil
}

func (e *Engine) unaryLeaf(expr *symbexpr.Expr, op UnaryOp, arg Arg) (store.NodeID, error) {
	switch op {
	case UnaryNeg:
		return e.Store.InternLeaf(symbexpr.Neg(expr)), nil
	case UnaryPos:
		return e.Store.InternLeaf(expr), nil
	case UnaryNot:
		c, ok := symbexpr.Canonical(expr).AsConst()
		if !ok {
			return 0, fmt.Errorf("%w: not requires a boolean-valued (constant 0/1) leaf, got %q", ErrLeafEvaluation, expr)
		}
		if c.Sign() == 0 {
			return store.TrueLeaf, nil
		}
		return store.FalseLeaf, nil
	case UnarySgn:
		return e.sgnLeaf(expr)
	case UnaryPow:
		if arg == nil {
			return 0, fmt.Errorf("%w: pow requires an exponent argument", ErrLeafEvaluation)
		}
		return e.Store.InternLeaf(symbexpr.Call(symbexpr.FuncPow, expr, arg)), nil
	default:
		fn, ok := funcFor[op]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownOperator, op)
		}
		return e.Store.InternLeaf(symbexpr.Call(fn, expr, nil)), nil
	}
}

// sgnLeaf builds "if e==0 then 0 else (if e<0 then -1 else 1)", collapsing
// to a direct constant leaf when e folds to a number. The equality test sits
// on top because "<" folds into the non-strict RelLE decision.
func (e *Engine) sgnLeaf(expr *symbexpr.Expr) (store.NodeID, error) {
	if c, ok := symbexpr.Canonical(expr).AsConst(); ok {
		switch c.Sign() {
		case -1:
			return e.Store.InternLeaf(symbexpr.Number(-1)), nil
		case 0:
			return store.FalseLeaf, nil
		default:
			return store.TrueLeaf, nil
		}
	}

	zero := symbexpr.Number(0)
	neg := e.Store.InternLeaf(symbexpr.Number(-1))
	pos := e.Store.InternLeaf(symbexpr.Number(1))

	signBranch, err := e.iteNumeric("<", expr, zero, neg, pos)
	if err != nil {
		return 0, err
	}
	return e.iteNumeric("==", expr, zero, store.FalseLeaf, signBranch)
}
