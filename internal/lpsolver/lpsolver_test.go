package lpsolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xadd-go/xadd/internal/decision"
	"github.com/xadd-go/xadd/internal/symbexpr"
)

// linear extracts the LinearForm of e, failing the test if e is nonlinear.
func linear(t *testing.T, e *symbexpr.Expr) *symbexpr.LinearForm {
	t.Helper()
	lf, ok := symbexpr.AsLinear(e)
	require.True(t, ok)
	return lf
}

func TestEmptyContextIsFeasible(t *testing.T) {
	s := NewSolver()
	feasible, err := s.Feasible(NewContext())
	require.NoError(t, err)
	assert.True(t, feasible)
}

func TestSingleConstraintIsFeasible(t *testing.T) {
	s := NewSolver()
	// x <= 0 alone is satisfiable.
	ctx := NewContext().With(Constraint{
		Form: linear(t, symbexpr.Variable("x")),
		Kind: decision.RelLE,
	})
	feasible, err := s.Feasible(ctx)
	require.NoError(t, err)
	assert.True(t, feasible)
}

func TestContradictoryConstraintsAreInfeasible(t *testing.T) {
	s := NewSolver()
	// x <= 0 together with not(x - 1 <= 0), i.e. x >= 1.
	ctx := NewContext().
		With(Constraint{
			Form: linear(t, symbexpr.Variable("x")),
			Kind: decision.RelLE,
		}).
		With(Constraint{
			Form:    linear(t, symbexpr.Sub(symbexpr.Variable("x"), symbexpr.Number(1))),
			Kind:    decision.RelLE,
			Negated: true,
		})
	feasible, err := s.Feasible(ctx)
	require.NoError(t, err)
	assert.False(t, feasible)
}

func TestBoundaryOnlyRegionIsInfeasible(t *testing.T) {
	s := NewSolver()
	// x <= 0 together with -x <= 0 is satisfiable only at x = 0; the
	// interior-point check reports that as infeasible.
	ctx := NewContext().
		With(Constraint{
			Form: linear(t, symbexpr.Variable("x")),
			Kind: decision.RelLE,
		}).
		With(Constraint{
			Form: linear(t, symbexpr.Neg(symbexpr.Variable("x"))),
			Kind: decision.RelLE,
		})
	feasible, err := s.Feasible(ctx)
	require.NoError(t, err)
	assert.False(t, feasible)
}

func TestConstantOnlyConstraints(t *testing.T) {
	s := NewSolver()

	// 1 <= 0 is false regardless of any variable assignment.
	ctx := NewContext().With(Constraint{
		Form: linear(t, symbexpr.Number(1)),
		Kind: decision.RelLE,
	})
	feasible, err := s.Feasible(ctx)
	require.NoError(t, err)
	assert.False(t, feasible)

	// -1 <= 0 always holds.
	ctx = NewContext().With(Constraint{
		Form: linear(t, symbexpr.Number(-1)),
		Kind: decision.RelLE,
	})
	feasible, err = s.Feasible(ctx)
	require.NoError(t, err)
	assert.True(t, feasible)
}

func TestContextWithDoesNotMutateReceiver(t *testing.T) {
	base := NewContext().With(Constraint{
		Form: linear(t, symbexpr.Variable("x")),
		Kind: decision.RelLE,
	})
	extended := base.With(Constraint{
		Form: linear(t, symbexpr.Variable("y")),
		Kind: decision.RelLE,
	})
	assert.Len(t, base.Constraints(), 1)
	assert.Len(t, extended.Constraints(), 2)
}

func TestNullSolverReportsUnavailable(t *testing.T) {
	_, err := NullSolver{}.Feasible(NewContext())
	assert.ErrorIs(t, err, ErrSolverUnavailable)
}
