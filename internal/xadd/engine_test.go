package xadd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xadd-go/xadd/internal/decision"
	"github.com/xadd-go/xadd/internal/lpsolver"
	"github.com/xadd-go/xadd/internal/store"
	"github.com/xadd-go/xadd/internal/symbexpr"
)

// leaf interns a numeric constant leaf.
func leaf(e *Engine, v float64) store.NodeID {
	return e.Store.InternLeaf(symbexpr.Number(v))
}

// varLeaf interns a variable leaf.
func varLeaf(e *Engine, name string) store.NodeID {
	return e.Store.InternLeaf(symbexpr.Variable(name))
}

// leqNode builds "if x <= c then hi else lo" directly against the registry,
// bypassing Apply, so tests can construct fixtures independent of the code
// under test.
func leqNode(t *testing.T, e *Engine, x string, c float64, lo, hi store.NodeID) store.NodeID {
	t.Helper()
	form := symbexpr.Sub(symbexpr.Variable(x), symbexpr.Number(c))
	id, reversed, err := e.Registry.Register(decision.Input{Rel: "<=", Left: form, Right: symbexpr.Number(0)}, true)
	require.NoError(t, err)
	if reversed {
		lo, hi = hi, lo
	}
	n, err := e.MakeNode(id, lo, hi)
	require.NoError(t, err)
	return n
}

func TestMakeNodeCollapsesEqualBranches(t *testing.T) {
	e := NewEngine()
	l := leaf(e, 5)
	id, err := e.MakeNode(10000, l, l)
	require.NoError(t, err)
	assert.Equal(t, l, id)
}

func TestMakeNodeHashConses(t *testing.T) {
	e := NewEngine()
	lo, hi := leaf(e, 1), leaf(e, 2)
	a := leqNode(t, e, "x", 0, lo, hi)
	b := leqNode(t, e, "x", 0, lo, hi)
	assert.Equal(t, a, b)
}

// --- Apply: algebraic laws ---

func TestApplySubtractSelfIsZeroLeaf(t *testing.T) {
	e := NewEngine()
	d := leqNode(t, e, "x", 0, leaf(e, 1), leaf(e, 2))
	result, err := e.Apply(d, d, OpSubtract)
	require.NoError(t, err)
	assert.Equal(t, store.FalseLeaf, result, "x - x must reduce to the canonical zero leaf")
}

func TestApplyAddIsCommutative(t *testing.T) {
	e := NewEngine()
	a := leqNode(t, e, "x", 0, leaf(e, 1), leaf(e, 2))
	b := varLeaf(e, "y")
	ab, err := e.Apply(a, b, OpAdd)
	require.NoError(t, err)
	ba, err := e.Apply(b, a, OpAdd)
	require.NoError(t, err)
	assert.Equal(t, ab, ba)
}

func TestApplyProdIsCommutative(t *testing.T) {
	e := NewEngine()
	a := leqNode(t, e, "x", 0, leaf(e, 3), leaf(e, 4))
	b := leqNode(t, e, "y", 0, leaf(e, 5), leaf(e, 6))
	ab, err := e.Apply(a, b, OpProd)
	require.NoError(t, err)
	ba, err := e.Apply(b, a, OpProd)
	require.NoError(t, err)
	assert.Equal(t, ab, ba)
}

func TestApplyAddZeroIsIdentity(t *testing.T) {
	e := NewEngine()
	d := leqNode(t, e, "x", 0, leaf(e, 1), leaf(e, 2))
	result, err := e.Apply(d, store.FalseLeaf, OpAdd)
	require.NoError(t, err)
	assert.Equal(t, d, result)
}

func TestApplyProdOneIsIdentity(t *testing.T) {
	e := NewEngine()
	d := leqNode(t, e, "x", 0, leaf(e, 1), leaf(e, 2))
	result, err := e.Apply(d, store.TrueLeaf, OpProd)
	require.NoError(t, err)
	assert.Equal(t, d, result)
}

func TestApplyAddLeafOnLeaf(t *testing.T) {
	e := NewEngine()
	a := leaf(e, 2)
	b := leaf(e, 3)
	id, err := e.Apply(a, b, OpAdd)
	require.NoError(t, err)
	node, err := e.Store.Get(id)
	require.NoError(t, err)
	c, ok := node.Expr.AsConst()
	require.True(t, ok)
	f, _ := c.Float64()
	assert.Equal(t, 5.0, f)
}

func TestApplyDivByZeroLeafErrors(t *testing.T) {
	e := NewEngine()
	a := leaf(e, 1)
	z := leaf(e, 0)
	_, err := e.Apply(a, z, OpDiv)
	assert.ErrorIs(t, err, ErrLeafEvaluation)
}

func TestApplyUnknownOperatorErrors(t *testing.T) {
	e := NewEngine()
	a, b := leaf(e, 1), leaf(e, 2)
	_, err := e.Apply(a, b, Op("frobnicate"))
	assert.ErrorIs(t, err, ErrUnknownOperator)
}

func TestApplyMinPicksSmaller(t *testing.T) {
	e := NewEngine()
	a := leaf(e, 3)
	b := leaf(e, 7)
	id, err := e.Apply(a, b, OpMin)
	require.NoError(t, err)
	assert.Equal(t, a, id)
}

func TestApplyMaxPicksLarger(t *testing.T) {
	e := NewEngine()
	a := leaf(e, 3)
	b := leaf(e, 7)
	id, err := e.Apply(a, b, OpMax)
	require.NoError(t, err)
	assert.Equal(t, b, id)
}

func TestApplyMinOnSymbolicLeavesRegistersDecision(t *testing.T) {
	e := NewEngine()
	x := varLeaf(e, "x")
	y := varLeaf(e, "y")
	id, err := e.Apply(x, y, OpMin)
	require.NoError(t, err)
	node, err := e.Store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, store.KindInternal, node.Kind)
}

func TestApplyRelationalFoldsToConstLeaf(t *testing.T) {
	e := NewEngine()
	a, b := leaf(e, 1), leaf(e, 2)
	id, err := e.Apply(a, b, OpLt)
	require.NoError(t, err)
	assert.Equal(t, store.TrueLeaf, id)

	id, err = e.Apply(b, a, OpLt)
	require.NoError(t, err)
	assert.Equal(t, store.FalseLeaf, id)
}

func TestApplyAndOrOnBooleanLeaves(t *testing.T) {
	e := NewEngine()
	id, err := e.Apply(store.TrueLeaf, store.FalseLeaf, OpAnd)
	require.NoError(t, err)
	assert.Equal(t, store.FalseLeaf, id)

	id, err = e.Apply(store.TrueLeaf, store.FalseLeaf, OpOr)
	require.NoError(t, err)
	assert.Equal(t, store.TrueLeaf, id)
}

// --- Reduce / MakeCanonical ---

func TestMakeCanonicalIsIdempotent(t *testing.T) {
	e := NewEngine()
	d := leqNode(t, e, "x", 0, leaf(e, 1), leaf(e, 2))
	once, err := e.MakeCanonical(d)
	require.NoError(t, err)
	twice, err := e.MakeCanonical(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestMakeCanonicalOrdersDecisionsByID(t *testing.T) {
	e := NewEngine()
	// Register y's decision first so it gets the lower id, then build a
	// tree with x (higher id) above y (lower id) and canonicalize it: the
	// result must have the lower-id decision at the root.
	yID, _, err := e.Registry.Register(decision.Input{Rel: "<=", Left: symbexpr.Variable("y"), Right: symbexpr.Number(0)}, true)
	require.NoError(t, err)
	xID, _, err := e.Registry.Register(decision.Input{Rel: "<=", Left: symbexpr.Variable("x"), Right: symbexpr.Number(0)}, true)
	require.NoError(t, err)
	require.Less(t, yID, xID)

	inner, err := e.MakeNode(yID, leaf(e, 1), leaf(e, 2))
	require.NoError(t, err)
	outOfOrder, err := e.MakeNode(xID, inner, leaf(e, 3))
	require.NoError(t, err)

	result, err := e.MakeCanonical(outOfOrder)
	require.NoError(t, err)
	node, err := e.Store.Get(result)
	require.NoError(t, err)
	assert.Equal(t, yID, node.Dec, "canonical form must have the lower decision id at the root")
}

func TestReduceIsIdempotentAndPreservesSharedStructure(t *testing.T) {
	e := NewEngine()
	d := leqNode(t, e, "x", 0, leaf(e, 1), leaf(e, 2))
	once, err := e.Reduce(d)
	require.NoError(t, err)
	assert.Equal(t, d, once, "an already-reduced diagram must reduce to itself")

	twice, err := e.Reduce(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

// --- Unary ---

func TestUnaryNotInvertsBooleanDiagram(t *testing.T) {
	e := NewEngine()
	d := leqNode(t, e, "x", 0, store.FalseLeaf, store.TrueLeaf)
	result, err := e.Unary(d, UnaryNot, nil)
	require.NoError(t, err)

	node, err := e.Store.Get(result)
	require.NoError(t, err)
	assert.Equal(t, store.TrueLeaf, node.Low)
	assert.Equal(t, store.FalseLeaf, node.High)
}

func TestUnaryNegOnLeaf(t *testing.T) {
	e := NewEngine()
	l := leaf(e, 4)
	id, err := e.Unary(l, UnaryNeg, nil)
	require.NoError(t, err)
	node, err := e.Store.Get(id)
	require.NoError(t, err)
	c, _ := node.Expr.AsConst()
	f, _ := c.Float64()
	assert.Equal(t, -4.0, f)
}

func TestUnarySgnOnConstantLeafFoldsDirectly(t *testing.T) {
	e := NewEngine()
	id, err := e.Unary(leaf(e, -3), UnarySgn, nil)
	require.NoError(t, err)
	node, err := e.Store.Get(id)
	require.NoError(t, err)
	c, ok := node.Expr.AsConst()
	require.True(t, ok)
	f, _ := c.Float64()
	assert.Equal(t, -1.0, f)
}

func TestUnarySgnOnSymbolicLeafBuildsThreeWayBranch(t *testing.T) {
	e := NewEngine()
	id, err := e.Unary(varLeaf(e, "x"), UnarySgn, nil)
	require.NoError(t, err)
	node, err := e.Store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, store.KindInternal, node.Kind)
}

func TestUnaryPowRequiresArg(t *testing.T) {
	e := NewEngine()
	_, err := e.Unary(varLeaf(e, "x"), UnaryPow, nil)
	assert.ErrorIs(t, err, ErrLeafEvaluation)
}

func TestUnaryUnknownOpErrors(t *testing.T) {
	e := NewEngine()
	_, err := e.Unary(leaf(e, 1), UnaryOp("bogus"), nil)
	assert.ErrorIs(t, err, ErrUnknownOperator)
}

// --- Substitute / Evaluate / CollectVars ---

func TestSubstituteConstantCollapsesBranch(t *testing.T) {
	e := NewEngine()
	d := leqNode(t, e, "x", 0, leaf(e, 1), leaf(e, 2))
	result, err := e.Substitute(d, map[string]*symbexpr.Expr{"x": symbexpr.Number(-5)})
	require.NoError(t, err)
	node, err := e.Store.Get(result)
	require.NoError(t, err)
	c, ok := node.Expr.AsConst()
	require.True(t, ok)
	f, _ := c.Float64()
	assert.Equal(t, 2.0, f, "x<=0 holds for x=-5, so the diagram must collapse to the high leaf")
}

func TestSubstituteEmptyBindingsIsNoOp(t *testing.T) {
	e := NewEngine()
	d := leqNode(t, e, "x", 0, leaf(e, 1), leaf(e, 2))
	result, err := e.Substitute(d, nil)
	require.NoError(t, err)
	assert.Equal(t, d, result)
}

func TestEvaluateAgreesWithApply(t *testing.T) {
	e := NewEngine()
	x := varLeaf(e, "x")
	y := varLeaf(e, "y")
	sum, err := e.Apply(x, y, OpAdd)
	require.NoError(t, err)

	got, err := e.Evaluate(sum, nil, map[string]float64{"x": 2, "y": 3}, true)
	require.NoError(t, err)
	assert.Equal(t, 5.0, got)
}

func TestEvaluateStrictRequiresFullAssignment(t *testing.T) {
	e := NewEngine()
	d := leqNode(t, e, "x", 0, leaf(e, 1), leaf(e, 2))
	_, err := e.Evaluate(d, nil, map[string]float64{}, true)
	assert.ErrorIs(t, err, ErrPartialAssignment)
}

func TestEvaluateNonStrictReturnsPartialSentinel(t *testing.T) {
	e := NewEngine()
	d := leqNode(t, e, "x", 0, leaf(e, 1), leaf(e, 2))
	_, err := e.Evaluate(d, nil, map[string]float64{}, false)
	require.Error(t, err)
	assert.True(t, IsPartial(err))
}

func TestCollectVarsUnionsAcrossBranches(t *testing.T) {
	e := NewEngine()
	d := leqNode(t, e, "x", 0, varLeaf(e, "y"), varLeaf(e, "z"))
	vars, err := e.CollectVars(d)
	require.NoError(t, err)
	assert.True(t, vars["x"])
	assert.True(t, vars["y"])
	assert.True(t, vars["z"])
}

// --- LP Reducer ---

func TestReduceLPPrunesInfeasibleBranch(t *testing.T) {
	e := NewEngine()
	// x <= 0 nested under the true branch of x >= 1 can never hold there,
	// so the LP reducer must collapse the inner node to its false branch.
	inner := leqNode(t, e, "x", 0, leaf(e, 10), leaf(e, 20))

	gtOneID, reversed, err := e.Registry.Register(decision.Input{Rel: ">=", Left: symbexpr.Variable("x"), Right: symbexpr.Number(1)}, true)
	require.NoError(t, err)
	lo, hi := leaf(e, 99), inner
	if reversed {
		lo, hi = hi, lo
	}
	root, err := e.MakeNode(gtOneID, lo, hi)
	require.NoError(t, err)

	result, err := e.ReduceLP(root, nil)
	require.NoError(t, err)
	// The x >= 1 test survives (registered as its canonical complement
	// x - 1 <= 0); on the x >= 1 side only leaf(10) remains.
	require.True(t, reversed)
	node, err := e.Store.Get(result)
	require.NoError(t, err)
	require.Equal(t, store.KindInternal, node.Kind)
	assert.Equal(t, gtOneID, node.Dec)
	assert.Equal(t, leaf(e, 10), node.Low)
	assert.Equal(t, leaf(e, 99), node.High)
}

func TestReduceLPWithNullSolverKeepsEveryBranch(t *testing.T) {
	e := NewEngine(WithLPSolver(lpsolver.NullSolver{}))
	d := leqNode(t, e, "x", 0, leaf(e, 1), leaf(e, 2))
	result, err := e.ReduceLP(d, nil)
	require.NoError(t, err)
	node, err := e.Store.Get(result)
	require.NoError(t, err)
	assert.Equal(t, store.KindInternal, node.Kind, "a failing solver must never prune a branch")
}
