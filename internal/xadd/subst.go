package xadd

import (
	"fmt"

	"github.com/xadd-go/xadd/internal/decision"
	"github.com/xadd-go/xadd/internal/store"
	"github.com/xadd-go/xadd/internal/symbexpr"
)

// Substitute rewrites every leaf and decision reachable from id under
// bindings, returning a new diagram. Values are themselves
// symbolic expressions (possibly concrete numbers). The result is passed
// through MakeCanonical once, at the top level, since a substituted
// decision may no longer respect the global order.
func (e *Engine) Substitute(id store.NodeID, bindings map[string]*symbexpr.Expr) (store.NodeID, error) {
	if len(bindings) == 0 {
		return id, nil
	}
	result, err := e.substRec(id, bindings)
	if err != nil {
		return 0, err
	}
	return e.MakeCanonical(result)
}

func (e *Engine) substRec(id store.NodeID, bindings map[string]*symbexpr.Expr) (store.NodeID, error) {
	node, err := e.Store.Get(id)
	if err != nil {
		return 0, err
	}
	if node.Kind == store.KindLeaf {
		newExpr := symbexpr.Canonical(symbexpr.Substitute(node.Expr, bindings))
		return e.Store.InternLeaf(newExpr), nil
	}

	dec, err := e.Registry.Get(node.Dec)
	if err != nil {
		return 0, err
	}

	if dec.IsBool() {
		return e.substBoolDecision(dec, node, bindings)
	}
	return e.substInequality(dec, node, bindings)
}

func (e *Engine) substBoolDecision(dec decision.Decision, node store.Node, bindings map[string]*symbexpr.Expr) (store.NodeID, error) {
	bound, ok := bindings[dec.BoolVar]
	if !ok {
		lo, err := e.substRec(node.Low, bindings)
		if err != nil {
			return 0, err
		}
		hi, err := e.substRec(node.High, bindings)
		if err != nil {
			return 0, err
		}
		return e.MakeNode(node.Dec, lo, hi)
	}
	canon := symbexpr.Canonical(bound)
	if canon.Kind != symbexpr.KindBool && !canon.IsZero() && !canon.IsOne() {
		return 0, fmt.Errorf("%w: boolean variable %q bound to a non-boolean expression %q", ErrMalformedDecision, dec.BoolVar, bound)
	}
	truth := canon.Kind == symbexpr.KindBool && canon.Bool || canon.IsOne()
	if truth {
		return e.substRec(node.High, bindings)
	}
	return e.substRec(node.Low, bindings)
}

func (e *Engine) substInequality(dec decision.Decision, node store.Node, bindings map[string]*symbexpr.Expr) (store.NodeID, error) {
	newFormExpr := symbexpr.Canonical(symbexpr.Substitute(dec.Form.ToExpr(), bindings))
	lf, ok := symbexpr.AsLinear(newFormExpr)
	if !ok {
		return 0, fmt.Errorf("%w: substitution made decision %q nonlinear", ErrMalformedDecision, newFormExpr)
	}

	if len(lf.Coeffs) == 0 {
		holds := decisionConstHolds(dec.Kind, lf.Const)
		if holds {
			return e.substRec(node.High, bindings)
		}
		return e.substRec(node.Low, bindings)
	}

	lo, err := e.substRec(node.Low, bindings)
	if err != nil {
		return 0, err
	}
	hi, err := e.substRec(node.High, bindings)
	if err != nil {
		return 0, err
	}

	newID, reversed, err := e.Registry.Register(decision.Input{
		Rel:   dec.Kind.String(),
		Left:  lf.ToExpr(),
		Right: symbexpr.Number(0),
	}, true)
	if err != nil {
		return 0, err
	}
	if reversed {
		lo, hi = hi, lo
	}
	return e.MakeNode(newID, lo, hi)
}

func decisionConstHolds(kind decision.RelKind, c interface{ Sign() int }) bool {
	sign := c.Sign()
	if kind == decision.RelEQ {
		return sign == 0
	}
	return sign <= 0
}

// Evaluate fully evaluates id under the given assignment. Every free
// variable CollectVars returns for id must be bound; if strict
// is true a missing binding fails with ErrPartialAssignment, otherwise it
// returns the non-strict sentinel error that IsPartial recognizes.
func (e *Engine) Evaluate(id store.NodeID, boolAssign map[string]bool, contAssign map[string]float64, strict bool) (float64, error) {
	vars, err := e.CollectVars(id)
	if err != nil {
		return 0, err
	}
	for v := range vars {
		_, inBool := boolAssign[v]
		_, inCont := contAssign[v]
		if !inBool && !inCont {
			if strict {
				return 0, fmt.Errorf("%w: variable %q is unbound", ErrPartialAssignment, v)
			}
			return 0, errPartialNonStrict
		}
	}
	return e.evalRec(id, boolAssign, contAssign)
}

var errPartialNonStrict = fmt.Errorf("xadd: evaluate: %w (non-strict)", ErrPartialAssignment)

// IsPartial reports whether err is the non-strict "not fully assigned"
// sentinel Evaluate returns when strict is false.
func IsPartial(err error) bool { return err == errPartialNonStrict }

func (e *Engine) evalRec(id store.NodeID, boolAssign map[string]bool, contAssign map[string]float64) (float64, error) {
	node, err := e.Store.Get(id)
	if err != nil {
		return 0, err
	}
	if node.Kind == store.KindLeaf {
		return symbexpr.EvalNum(node.Expr, contAssign)
	}
	dec, err := e.Registry.Get(node.Dec)
	if err != nil {
		return 0, err
	}

	var holds bool
	if dec.IsBool() {
		holds = boolAssign[dec.BoolVar]
	} else {
		val, err := evalLinearForm(dec.Form, contAssign)
		if err != nil {
			return 0, err
		}
		if dec.Kind == decision.RelEQ {
			holds = val == 0
		} else {
			holds = val <= 0
		}
	}
	if holds {
		return e.evalRec(node.High, boolAssign, contAssign)
	}
	return e.evalRec(node.Low, boolAssign, contAssign)
}

func evalLinearForm(lf *symbexpr.LinearForm, assign map[string]float64) (float64, error) {
	total, _ := lf.Const.Float64()
	for name, coeff := range lf.Coeffs {
		v, ok := assign[name]
		if !ok {
			return 0, &symbexpr.ErrUnboundVariable{Name: name}
		}
		cf, _ := coeff.Float64()
		total += cf * v
	}
	return total, nil
}

// CollectVars returns the union of free variables occurring in every
// decision and leaf reachable from id, memoized per id.
func (e *Engine) CollectVars(id store.NodeID) (map[string]bool, error) {
	if cached, ok := e.varsMemo[id]; ok {
		return cached, nil
	}
	node, err := e.Store.Get(id)
	if err != nil {
		return nil, err
	}
	out := map[string]bool{}
	if node.Kind == store.KindLeaf {
		for v := range symbexpr.FreeVars(node.Expr) {
			out[v] = true
		}
	} else {
		dec, err := e.Registry.Get(node.Dec)
		if err != nil {
			return nil, err
		}
		if dec.IsBool() {
			out[dec.BoolVar] = true
		} else {
			for v := range dec.Form.Coeffs {
				out[v] = true
			}
		}
		lo, err := e.CollectVars(node.Low)
		if err != nil {
			return nil, err
		}
		hi, err := e.CollectVars(node.High)
		if err != nil {
			return nil, err
		}
		for v := range lo {
			out[v] = true
		}
		for v := range hi {
			out[v] = true
		}
	}
	e.varsMemo[id] = out
	return out, nil
}
