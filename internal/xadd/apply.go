package xadd

import (
	"fmt"

	"github.com/xadd-go/xadd/internal/store"
)

// Op is the closed set of binary operators the Apply Engine accepts,
// represented as a string enum and validated at the boundary by ParseOp.
type Op string

const (
	OpAdd      Op = "add"
	OpSubtract Op = "subtract"
	OpProd     Op = "prod"
	OpDiv      Op = "div"
	OpMin      Op = "min"
	OpMax      Op = "max"
	OpAnd      Op = "and"
	OpOr       Op = "or"
	OpEq       Op = "=="
	OpNeq      Op = "!="
	OpLt       Op = "<"
	OpLe       Op = "<="
	OpGt       Op = ">"
	OpGe       Op = ">="
)

var validOps = map[Op]bool{
	OpAdd: true, OpSubtract: true, OpProd: true, OpDiv: true,
	OpMin: true, OpMax: true, OpAnd: true, OpOr: true,
	OpEq: true, OpNeq: true, OpLt: true, OpLe: true, OpGt: true, OpGe: true,
}

// commutativeOps additionally canonicalize operand order before the memo
// lookup, halving the memo footprint for symmetric compositions.
var commutativeOps = map[Op]bool{
	OpAdd: true, OpProd: true, OpMin: true, OpMax: true,
	OpAnd: true, OpOr: true, OpEq: true, OpNeq: true,
}

// canonicalizeAfter lists the operators that may introduce new decisions
// via leaf comparisons or boolean coercions; their results get a
// MakeCanonical pass once the top-level apply returns.
var canonicalizeAfter = map[Op]bool{
	OpMin: true, OpMax: true, OpEq: true, OpNeq: true,
	OpLt: true, OpLe: true, OpGt: true, OpGe: true, OpAnd: true, OpOr: true,
}

// ParseOp validates s against the closed operator set.
func ParseOp(s string) (Op, error) {
	op := Op(s)
	if !validOps[op] {
		return "", fmt.Errorf("%w: %q", ErrUnknownOperator, s)
	}
	return op, nil
}

type applyKey struct {
	op       Op
	lhs, rhs store.NodeID
}

// Apply is the Apply Engine's single entry point: binary composition of
// two diagrams under op. It is the only caller of applyRec that may
// trigger the post-recursion MakeCanonical pass.
func (e *Engine) Apply(lhs, rhs store.NodeID, op Op) (store.NodeID, error) {
	if !validOps[op] {
		return 0, fmt.Errorf("%w: %q", ErrUnknownOperator, op)
	}
	result, err := e.applyRec(lhs, rhs, op)
	if err != nil {
		return 0, err
	}
	if canonicalizeAfter[op] {
		return e.MakeCanonical(result)
	}
	return result, nil
}

func (e *Engine) applyRec(lhs, rhs store.NodeID, op Op) (store.NodeID, error) {
	if commutativeOps[op] && lhs > rhs {
		lhs, rhs = rhs, lhs
	}
	key := applyKey{op: op, lhs: lhs, rhs: rhs}
	if cached, ok := e.applyMemo[key]; ok {
		return cached, nil
	}

	lhsNode, err := e.Store.Get(lhs)
	if err != nil {
		return 0, err
	}
	rhsNode, err := e.Store.Get(rhs)
	if err != nil {
		return 0, err
	}

	var result store.NodeID
	if lhsNode.Kind == store.KindLeaf && rhsNode.Kind == store.KindLeaf {
		result, err = e.applyLeaf(lhsNode.Expr, rhsNode.Expr, op)
	} else {
		result, err = e.applyRecurse(lhs, lhsNode, rhs, rhsNode, op)
	}
	if err != nil {
		return 0, err
	}
	e.applyMemo[key] = result
	return result, nil
}

// applyRecurse splits on the minimum root decision id of the two
// operands, recurses into cofactors, and re-emits through MakeNode.
func (e *Engine) applyRecurse(lhs store.NodeID, lhsNode store.Node, rhs store.NodeID, rhsNode store.Node, op Op) (store.NodeID, error) {
	d, lhsHasD := minDecision(lhsNode)
	if rd, rhsHasD := minDecision(rhsNode); rhsHasD && (!lhsHasD || rd < d) {
		d = rd
	}

	lhsLow, lhsHigh := cofactor(lhs, lhsNode, d)
	rhsLow, rhsHigh := cofactor(rhs, rhsNode, d)

	lo, err := e.applyRec(lhsLow, rhsLow, op)
	if err != nil {
		return 0, err
	}
	hi, err := e.applyRec(lhsHigh, rhsHigh, op)
	if err != nil {
		return 0, err
	}
	return e.MakeNode(d, lo, hi)
}

// minDecision returns node's root decision id, or ok=false if node is a
// leaf (leaves contribute no decision to the split).
func minDecision(node store.Node) (int64, bool) {
	if node.Kind == store.KindLeaf {
		return 0, false
	}
	return node.Dec, true
}

// cofactor splits (id, node) on decision d: if node's own root is d, its
// actual children are returned; otherwise node passes through unchanged on
// both branches.
func cofactor(id store.NodeID, node store.Node, d int64) (low, high store.NodeID) {
	if node.Kind == store.KindInternal && node.Dec == d {
		return node.Low, node.High
	}
	return id, id
}
