package importer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xadd-go/xadd/internal/exporter"
	"github.com/xadd-go/xadd/internal/importer"
	"github.com/xadd-go/xadd/internal/lpsolver"
	"github.com/xadd-go/xadd/internal/symbexpr"
	"github.com/xadd-go/xadd/internal/xadd"
)

// TestBuildAndPrint builds a mixed boolean/inequality diagram from its
// textual form and checks the ids for the constant leaves are stable
// across re-creation.
func TestBuildAndPrint(t *testing.T) {
	eng := xadd.NewEngine()
	d, err := importer.Import(eng, "s1.xadd", "([b] ([1]) ([x + y <= 0] ([0]) ([2])))")
	require.NoError(t, err)

	zero := eng.Store.InternLeaf(symbexpr.Number(0))
	one := eng.Store.InternLeaf(symbexpr.Number(1))
	two := eng.Store.InternLeaf(symbexpr.Number(2))
	assert.Equal(t, zero, eng.Store.InternLeaf(symbexpr.Number(0)))
	assert.Equal(t, one, eng.Store.InternLeaf(symbexpr.Number(1)))
	assert.Equal(t, two, eng.Store.InternLeaf(symbexpr.Number(2)))

	out, err := exporter.Format(d)
	require.NoError(t, err)
	assert.Equal(t, "([b] ([1]) ([x + y <= 0] ([0]) ([2])))", out)
}

func TestRoundTrip(t *testing.T) {
	eng := xadd.NewEngine()
	src := "([x <= 0] ([2]) ([1]))"
	d, err := importer.Import(eng, "t.xadd", src)
	require.NoError(t, err)

	out, err := exporter.Format(d)
	require.NoError(t, err)

	eng2 := xadd.NewEngine()
	d2, err := importer.Import(eng2, "t.xadd", out)
	require.NoError(t, err)

	out2, err := exporter.Format(d2)
	require.NoError(t, err)
	assert.Equal(t, out, out2)
}

func TestReversedDecisionImportsEquivalently(t *testing.T) {
	eng := xadd.NewEngine()
	// Canonical form: x+y<=0 with branches high=leaf(2), low=leaf(0).
	canonical, err := importer.Import(eng, "canon.xadd", "([x + y <= 0] ([2]) ([0]))")
	require.NoError(t, err)

	// Registering the algebraically-negated relation directly and letting
	// the registry/importer handle any reversal must land on the same id.
	reversedInput, err := importer.Import(eng, "rev.xadd", "([0 - x - y >= 0] ([2]) ([0]))")
	require.NoError(t, err)

	assert.Equal(t, canonical.Root, reversedInput.Root)
}

// TestEvaluateTakesTrueBranchFirst checks that the branch written first
// in the textual form is the one taken when its decision holds.
func TestEvaluateTakesTrueBranchFirst(t *testing.T) {
	eng := xadd.NewEngine()
	d, err := importer.Import(eng, "s4.xadd", "([b] ([1]) ([x + y <= 0] ([0]) ([2])))")
	require.NoError(t, err)

	got, err := d.Evaluate(map[string]bool{"b": true}, map[string]float64{"x": 2, "y": -1}, true)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	got, err = d.Evaluate(map[string]bool{"b": false}, map[string]float64{"x": 2, "y": -1}, true)
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)

	_, err = d.Evaluate(map[string]bool{"b": false}, map[string]float64{"x": 2}, true)
	assert.ErrorIs(t, err, xadd.ErrPartialAssignment)
}

// TestSubstituteRewritesDecisions binds x in a diagram whose inner
// decision mentions x, collapsing nothing but rewriting the guard.
func TestSubstituteRewritesDecisions(t *testing.T) {
	eng := xadd.NewEngine()
	d, err := importer.Import(eng, "s3.xadd", "([b] ([1]) ([x + y <= 0] ([0]) ([2])))")
	require.NoError(t, err)

	sub, err := d.Substitute(map[string]*symbexpr.Expr{"x": symbexpr.Number(1)})
	require.NoError(t, err)

	out, err := exporter.Format(sub)
	require.NoError(t, err)
	assert.Equal(t, "([b] ([1]) ([y + 1 <= 0] ([0]) ([2])))", out)
}

// TestReduceLPWithPreconditionPrunes supplies the precondition x >= 0
// over a diagram guarded by x <= 0. The guard is satisfiable only on the
// boundary x = 0, which the interior-point feasibility check treats as
// unreachable, so only the false branch survives.
func TestReduceLPWithPreconditionPrunes(t *testing.T) {
	eng := xadd.NewEngine()
	d, err := importer.Import(eng, "s5.xadd", "([x <= 0] ([x <= -1] ([5]) ([6])) ([7]))")
	require.NoError(t, err)

	// Precondition x >= 0, expressed as -x <= 0.
	form, ok := symbexpr.AsLinear(symbexpr.Neg(symbexpr.Variable("x")))
	require.True(t, ok)
	pre := lpsolver.NewContext().With(lpsolver.Constraint{Form: form})

	pruned, err := eng.ReduceLP(d.Root, pre)
	require.NoError(t, err)

	out, err := exporter.Format(xadd.D(eng, pruned))
	require.NoError(t, err)
	assert.Equal(t, "([7])", out)
}

// TestReduceLPMemoDistinguishesPreconditions prunes the same node twice,
// first without and then with a precondition: the second result must not
// be served from the first call's memo slot.
func TestReduceLPMemoDistinguishesPreconditions(t *testing.T) {
	eng := xadd.NewEngine()
	d, err := importer.Import(eng, "memo.xadd", "([x <= 0] ([1]) ([2]))")
	require.NoError(t, err)

	unpruned, err := eng.ReduceLP(d.Root, nil)
	require.NoError(t, err)
	assert.Equal(t, d.Root, unpruned)

	form, ok := symbexpr.AsLinear(symbexpr.Neg(symbexpr.Variable("x")))
	require.True(t, ok)
	pre := lpsolver.NewContext().With(lpsolver.Constraint{Form: form})

	pruned, err := eng.ReduceLP(d.Root, pre)
	require.NoError(t, err)

	out, err := exporter.Format(xadd.D(eng, pruned))
	require.NoError(t, err)
	assert.Equal(t, "([2])", out)
}

func TestMalformedDecisionRejected(t *testing.T) {
	eng := xadd.NewEngine()
	_, err := importer.Import(eng, "bad.xadd", "([x * y <= 0] ([0]) ([1]))")
	assert.Error(t, err)
}
