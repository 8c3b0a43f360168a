package lpsolver

import (
	"errors"
	"fmt"
	"math/big"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// Solver answers Feasible queries with gonum's simplex solver. Each
// continuous variable x is split into nonnegative parts x = p - q, and each
// <= row gets its own nonnegative slack, turning "does a point satisfying
// every constraint exist" into gonum's native "minimize 0 subject to
// A·v = b, v >= 0" feasibility form: lp.Simplex reports ErrInfeasible
// exactly when no such point exists.
//
// Every inequality row is tightened by Eps, so Feasible asks for an
// interior point rather than mere satisfiability: a region satisfiable
// only on a constraint boundary (e.g. x >= 0 conjoined with x <= 0)
// reports infeasible. That is the pruning criterion the engine wants —
// a branch reachable only on a measure-zero boundary set carries no
// value — and it is what makes negated non-strict constraints behave as
// the strict inequalities they denote.
// Solver is the default LPSolver backend.
type Solver struct {
	Tol float64
	Eps float64
}

// NewSolver returns a Solver with practical default tolerances.
func NewSolver() *Solver {
	return &Solver{Tol: 1e-9, Eps: 1e-7}
}

func (s *Solver) Feasible(ctx *Context) (bool, error) {
	constraints := ctx.Constraints()
	if len(constraints) == 0 {
		return true, nil
	}

	vars := collectVarNames(constraints)
	n := len(vars)
	if n == 0 {
		// All constraints are over constants only; evaluate directly.
		return evalConstantConstraints(constraints)
	}

	type row struct {
		coeffs []float64 // length n, in vars order
		rhs    float64
		isEq   bool
	}
	var rows []row
	for _, c := range constraints {
		coeffs := make([]float64, n)
		for i, v := range vars {
			if coeff, ok := c.Form.Coeffs[v]; ok {
				f, _ := coeff.Float64()
				coeffs[i] = f
			}
		}
		constF, _ := c.Form.Const.Float64()

		switch {
		case c.Kind.String() == "<=" && !c.Negated:
			rows = append(rows, row{coeffs: coeffs, rhs: -constF, isEq: false})
		case c.Kind.String() == "<=" && c.Negated:
			// not(Form<=0) relaxed (non-strict) to Form>=0, i.e. -Form<=0.
			neg := make([]float64, n)
			for i := range coeffs {
				neg[i] = -coeffs[i]
			}
			rows = append(rows, row{coeffs: neg, rhs: constF, isEq: false})
		case c.Kind.String() == "==" && !c.Negated:
			rows = append(rows, row{coeffs: coeffs, rhs: -constF, isEq: true})
		default:
			// Negated equality ("!="): a disjunctive constraint no plain LP
			// feasibility query can express. Adding nothing only ever
			// under-constrains, so a branch is never wrongly pruned.
		}
	}
	if len(rows) == 0 {
		return true, nil
	}

	numSlack := 0
	for _, r := range rows {
		if !r.isEq {
			numSlack++
		}
	}
	numCols := 2*n + numSlack // p_i, q_i, slacks

	A := mat.NewDense(len(rows), numCols, nil)
	b := make([]float64, len(rows))
	c := make([]float64, numCols) // zero objective: any feasible point is optimal

	slackIdx := 2 * n
	for ri, r := range rows {
		for i, coeff := range r.coeffs {
			A.Set(ri, i, coeff)    // p_i
			A.Set(ri, n+i, -coeff) // q_i
		}
		b[ri] = r.rhs
		if !r.isEq {
			b[ri] -= s.Eps // require an interior point, not a boundary touch
			A.Set(ri, slackIdx, 1)
			slackIdx++
		}
	}

	_, _, err := lp.Simplex(c, A, b, s.Tol, nil)
	if err != nil {
		if errors.Is(err, lp.ErrInfeasible) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrSolverUnavailable, err)
	}
	return true, nil
}

func collectVarNames(constraints []Constraint) []string {
	set := map[string]bool{}
	for _, c := range constraints {
		for v := range c.Form.Coeffs {
			set[v] = true
		}
	}
	names := make([]string, 0, len(set))
	for v := range set {
		names = append(names, v)
	}
	sort.Strings(names)
	return names
}

func evalConstantConstraints(constraints []Constraint) (bool, error) {
	for _, c := range constraints {
		zero := big.NewRat(0, 1)
		sign := c.Form.Const.Cmp(zero)
		holds := false
		switch c.Kind.String() {
		case "<=":
			holds = sign <= 0
		case "==":
			holds = sign == 0
		}
		if c.Negated {
			holds = !holds
		}
		if !holds {
			return false, nil
		}
	}
	return true, nil
}
