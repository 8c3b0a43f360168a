package xadd

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/xadd-go/xadd/internal/decision"
	"github.com/xadd-go/xadd/internal/lpsolver"
	"github.com/xadd-go/xadd/internal/store"
	"github.com/xadd-go/xadd/internal/symbexpr"
)

// pathContext is the LP Reducer's path condition: an immutable,
// append-only conjunction of signed decisions. It wraps
// lpsolver.Context (the linear constraints proper) with a full signed
// decision-id record so boolean atoms — which contribute no linear
// constraint — still participate in memoization, and so the fingerprint
// can be computed without re-deriving it from the LP constraints.
type pathContext struct {
	lp     *lpsolver.Context
	signed []int64 // positive id = decision asserted true, negative = asserted false
}

func newPathContext() *pathContext {
	return &pathContext{lp: lpsolver.NewContext()}
}

func (c *pathContext) withBool(decID int64, truth bool) *pathContext {
	id := decID
	if !truth {
		id = -decID
	}
	next := make([]int64, len(c.signed), len(c.signed)+1)
	copy(next, c.signed)
	next = append(next, id)
	return &pathContext{lp: c.lp, signed: next}
}

func (c *pathContext) withLinear(decID int64, form *symbexpr.LinearForm, kind decision.RelKind, truth bool) *pathContext {
	id := decID
	if !truth {
		id = -decID
	}
	next := make([]int64, len(c.signed), len(c.signed)+1)
	copy(next, c.signed)
	next = append(next, id)
	return &pathContext{
		lp:     c.lp.With(lpsolver.Constraint{Form: form, Kind: kind, Negated: !truth}),
		signed: next,
	}
}

func (c *pathContext) fingerprint() string {
	sorted := append([]int64(nil), c.signed...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	parts := make([]string, len(sorted))
	for i, v := range sorted {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, ",")
}

type lpKey struct {
	id store.NodeID
	fp string
}

// ReduceLP prunes branches of id whose guard, conjoined with pre (any
// externally supplied preconditions) and the accumulated path context, is
// infeasible. pre may be nil. It never invents new decisions and never
// reorders existing ones.
func (e *Engine) ReduceLP(id store.NodeID, pre *lpsolver.Context) (store.NodeID, error) {
	ctx := newPathContext()
	if pre != nil {
		signed, err := e.signPreconditions(pre)
		if err != nil {
			return 0, err
		}
		ctx.lp = pre
		ctx.signed = signed
	}
	return e.reduceLPRec(id, ctx)
}

// signPreconditions interns every externally supplied constraint with the
// Decision Registry and returns its signed-id form, so preconditions are
// part of the memo fingerprint exactly like path decisions: two prunes of
// the same node under different preconditions must never share a memo
// slot.
func (e *Engine) signPreconditions(pre *lpsolver.Context) ([]int64, error) {
	constraints := pre.Constraints()
	signed := make([]int64, 0, len(constraints))
	for _, c := range constraints {
		id, reversed, err := e.Registry.Register(decision.Input{
			Rel:   c.Kind.String(),
			Left:  c.Form.ToExpr(),
			Right: symbexpr.Number(0),
		}, true)
		if err != nil {
			return nil, err
		}
		// The constraint asserts "Form Kind 0" unless Negated; reversed
		// means that proposition is the canonical decision's complement.
		truth := !c.Negated != reversed
		if truth {
			signed = append(signed, id)
		} else {
			signed = append(signed, -id)
		}
	}
	return signed, nil
}

func (e *Engine) reduceLPRec(id store.NodeID, ctx *pathContext) (store.NodeID, error) {
	key := lpKey{id: id, fp: ctx.fingerprint()}
	if cached, ok := e.lpMemo[key]; ok {
		return cached, nil
	}

	node, err := e.Store.Get(id)
	if err != nil {
		return 0, err
	}
	if node.Kind == store.KindLeaf {
		e.lpMemo[key] = id
		return id, nil
	}

	dec, err := e.Registry.Get(node.Dec)
	if err != nil {
		return 0, err
	}

	var result store.NodeID
	if dec.IsBool() {
		result, err = e.reduceLPBool(node, dec, ctx)
	} else {
		result, err = e.reduceLPLinear(node, dec, ctx)
	}
	if err != nil {
		return 0, err
	}
	e.lpMemo[key] = result
	return result, nil
}

// reduceLPBool handles Boolean-atom decisions structurally: they add no
// linear constraint, so neither branch can be pruned by the LP solver, but
// the path context (and therefore memoization) still distinguishes them.
func (e *Engine) reduceLPBool(node store.Node, dec decision.Decision, ctx *pathContext) (store.NodeID, error) {
	lo, err := e.reduceLPRec(node.Low, ctx.withBool(dec.ID, false))
	if err != nil {
		return 0, err
	}
	hi, err := e.reduceLPRec(node.High, ctx.withBool(dec.ID, true))
	if err != nil {
		return 0, err
	}
	return e.MakeNode(node.Dec, lo, hi)
}

func (e *Engine) reduceLPLinear(node store.Node, dec decision.Decision, ctx *pathContext) (store.NodeID, error) {
	trueCtx := ctx.withLinear(dec.ID, dec.Form, dec.Kind, true)
	falseCtx := ctx.withLinear(dec.ID, dec.Form, dec.Kind, false)

	trueFeasible := e.checkFeasible(trueCtx.lp)
	falseFeasible := e.checkFeasible(falseCtx.lp)

	switch {
	case !trueFeasible:
		// context ∧ g is infeasible: the high branch is unreachable.
		return e.reduceLPRec(node.Low, falseCtx)
	case !falseFeasible:
		// context ∧ ¬g is infeasible: the low branch is unreachable.
		return e.reduceLPRec(node.High, trueCtx)
	default:
		lo, err := e.reduceLPRec(node.Low, falseCtx)
		if err != nil {
			return 0, err
		}
		hi, err := e.reduceLPRec(node.High, trueCtx)
		if err != nil {
			return 0, err
		}
		return e.MakeNode(node.Dec, lo, hi)
	}
}

// checkFeasible discharges a feasibility query, degrading to "keep the
// branch" (report feasible) on any solver error: a flaky or missing LP
// backend must never cause the engine to prune a branch that a working
// solver would have kept.
func (e *Engine) checkFeasible(ctx *lpsolver.Context) bool {
	feasible, err := e.Solver.Feasible(ctx)
	if err == nil {
		return feasible
	}
	if errors.Is(err, lpsolver.ErrSolverUnavailable) {
		e.Logger.Printf("reduce_lp: LP solver unavailable, keeping branch: %v", err)
	} else {
		e.Logger.Printf("reduce_lp: LP solver error, keeping branch: %v", err)
	}
	return true
}
