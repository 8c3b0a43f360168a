// Package lpsolver supplies the LP Reducer's external collaborator: a
// feasibility oracle for a conjunction of linear (in)equalities.
package lpsolver

import (
	"errors"

	"github.com/xadd-go/xadd/internal/decision"
	"github.com/xadd-go/xadd/internal/symbexpr"
)

// ErrSolverUnavailable is returned by a solver that cannot discharge a
// feasibility query (missing backend, numerical failure). Callers must
// degrade to "keep the branch" on this error, not treat it as infeasible.
var ErrSolverUnavailable = errors.New("lpsolver: solver unavailable")

// Constraint is one signed decision contributed to a feasibility query:
// Negated true means the constraint asserts the decision is false.
type Constraint struct {
	Form    *symbexpr.LinearForm
	Kind    decision.RelKind
	Negated bool
}

// Context is an accumulated conjunction of Constraints, the path condition
// the LP Reducer threads through the DAG. Context is immutable; With
// returns a new Context rather than mutating the receiver, so sibling
// branches never observe each other's constraints.
type Context struct {
	constraints []Constraint
}

// NewContext returns the empty (trivially true) context.
func NewContext() *Context { return &Context{} }

// With returns a new Context extending c with one more constraint.
func (c *Context) With(con Constraint) *Context {
	next := make([]Constraint, len(c.constraints), len(c.constraints)+1)
	copy(next, c.constraints)
	next = append(next, con)
	return &Context{constraints: next}
}

// Constraints returns the accumulated constraint list, for fingerprinting.
func (c *Context) Constraints() []Constraint { return c.constraints }

// LPSolver discharges the feasibility of a Context: does there exist a real
// assignment to the context's free variables satisfying every constraint.
type LPSolver interface {
	Feasible(ctx *Context) (bool, error)
}

// NullSolver always fails with ErrSolverUnavailable. It exists so the LP
// Reducer's degrade-to-keep-the-branch path can be exercised in tests
// without a working numeric backend.
type NullSolver struct{}

func (NullSolver) Feasible(*Context) (bool, error) {
	return false, ErrSolverUnavailable
}
