package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xadd-go/xadd/internal/symbexpr"
)

func leq(left, right *symbexpr.Expr) Input { return Input{Rel: "<=", Left: left, Right: right} }

func TestRegisterInequalityCanonicalizesSign(t *testing.T) {
	r := NewRegistry()

	// x + y <= 0
	id1, rev1, err := r.Register(leq(symbexpr.Add(symbexpr.Variable("x"), symbexpr.Variable("y")), symbexpr.Number(0)), true)
	require.NoError(t, err)
	assert.False(t, rev1)

	// -x - y >= 0  <=>  x+y <= 0, same proposition, no swap required.
	negated := Input{
		Rel:   ">=",
		Left:  symbexpr.Neg(symbexpr.Add(symbexpr.Variable("x"), symbexpr.Variable("y"))),
		Right: symbexpr.Number(0),
	}
	id2, rev2, err := r.Register(negated, true)
	require.NoError(t, err)
	assert.Equal(t, id1, id2, "x+y<=0 and -x-y>=0 denote the same decision")
	assert.False(t, rev2, "relation-direction flip is absorbed algebraically; no branch swap is required")
}

func TestRegisterInequalityLeadingNegativeCoefficientReverses(t *testing.T) {
	r := NewRegistry()

	// -x <= 0  normalizes to x >= 0 i.e. canonical form "x" with a sign flip,
	// which *does* require branch swap to preserve meaning.
	id, reversed, err := r.Register(leq(symbexpr.Neg(symbexpr.Variable("x")), symbexpr.Number(0)), true)
	require.NoError(t, err)
	assert.True(t, reversed)

	canonicalID, canonicalReversed, err := r.Register(leq(symbexpr.Variable("x"), symbexpr.Number(0)), true)
	require.NoError(t, err)
	assert.False(t, canonicalReversed)
	assert.Equal(t, canonicalID, id, "both inputs collapse to the same canonical decision")
}

func TestRegisterNotEqualIsLogicalNegation(t *testing.T) {
	r := NewRegistry()
	eqID, eqRev, err := r.Register(Input{Rel: "==", Left: symbexpr.Variable("x"), Right: symbexpr.Number(0)}, true)
	require.NoError(t, err)
	assert.False(t, eqRev)

	neID, neRev, err := r.Register(Input{Rel: "!=", Left: symbexpr.Variable("x"), Right: symbexpr.Number(0)}, true)
	require.NoError(t, err)
	assert.True(t, neRev)
	assert.Equal(t, eqID, neID, "== and != over the same expression share an id, distinguished by reversed")
}

func TestRegisterBooleanAtomNeverReverses(t *testing.T) {
	r := NewRegistry()
	id1, rev1, err := r.Register(Input{BoolVar: "b"}, true)
	require.NoError(t, err)
	assert.False(t, rev1)

	id2, rev2, err := r.Register(Input{BoolVar: "b"}, true)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
	assert.False(t, rev2)
}

func TestRegisterRejectsNonlinearExpression(t *testing.T) {
	r := NewRegistry()
	_, _, err := r.Register(leq(symbexpr.Mul(symbexpr.Variable("x"), symbexpr.Variable("y")), symbexpr.Number(0)), true)
	assert.ErrorIs(t, err, ErrMalformedDecision)
}

func TestRegisterWithoutCreateReturnsNotFound(t *testing.T) {
	r := NewRegistry()
	_, _, err := r.Register(leq(symbexpr.Variable("x"), symbexpr.Number(0)), false)
	assert.ErrorIs(t, err, ErrDecisionNotFound)
}

func TestDecisionIdsStartAtReservedOffset(t *testing.T) {
	r := NewRegistry()
	id, _, err := r.Register(leq(symbexpr.Variable("x"), symbexpr.Number(0)), true)
	require.NoError(t, err)
	assert.Equal(t, FirstDecisionID, id)
}
