// Package decision implements the Decision Registry: interning of linear
// inequality and Boolean-atom decisions behind stable, canonically-formed
// decision identities.
package decision

import (
	"errors"
	"fmt"
	"sync"

	"github.com/xadd-go/xadd/internal/symbexpr"
)

// ErrMalformedDecision is returned when an Input is neither a declared
// Boolean atom nor a linear inequality (e.g. it is nonlinear, or a relation
// operator outside the closed set).
var ErrMalformedDecision = errors.New("decision: malformed decision")

// ErrDecisionNotFound is returned by Register when create is false and no
// matching decision has been registered yet.
var ErrDecisionNotFound = errors.New("decision: not present")

// FirstDecisionID is the first identity handed out by a fresh Registry.
// Decision ids live in a separate numeric space above node ids purely so
// printed/debugged ids are visually distinguishable; the boundary carries
// no semantic weight.
const FirstDecisionID int64 = 10000

// RelKind is the canonical relation a Decision's linear form is tested
// against zero with. Strict/non-strict variants of <= and >= both fold
// into RelLE; this engine does not model boundary strictness.
type RelKind int

const (
	// RelLE means the decision holds when Form <= 0.
	RelLE RelKind = iota
	// RelEQ means the decision holds when Form == 0.
	RelEQ
)

func (k RelKind) String() string {
	if k == RelEQ {
		return "=="
	}
	return "<="
}

// Decision is either a canonicalized linear inequality (Form, Kind) or a
// Boolean atom (BoolVar non-empty).
type Decision struct {
	ID int64

	BoolVar string // non-empty for Boolean atoms

	Kind RelKind
	Form *symbexpr.LinearForm // nil for Boolean atoms
}

// IsBool reports whether d is a Boolean atom rather than an inequality.
func (d Decision) IsBool() bool { return d.BoolVar != "" }

// Input is the raw, uncanonicalized material a caller registers: either a
// declared Boolean variable name, or a relational expression Left Rel Right.
type Input struct {
	BoolVar string

	Rel         string // one of "<=", "<", ">=", ">", "==", "!="
	Left, Right *symbexpr.Expr
}

// Registry interns Decisions. Two Inputs that denote the same proposition
// modulo algebraic rewriting (sign flip, relation-direction flip, strict vs
// non-strict) always resolve to the same decision id.
type Registry struct {
	mu sync.RWMutex

	decisions []Decision
	byKey     map[string]int64
	next      int64
}

// NewRegistry returns an empty Registry whose first assigned id is
// FirstDecisionID.
func NewRegistry() *Registry {
	return &Registry{
		byKey: make(map[string]int64),
		next:  FirstDecisionID,
	}
}

// Register classifies and canonicalizes in, returning its decision id and
// whether the caller must swap low/high branches before calling
// xadd.MakeNode to preserve in's original meaning.
//
// With create=false, Register never allocates: if the canonical form of in
// has not been seen before, it returns ErrDecisionNotFound.
func (r *Registry) Register(in Input, create bool) (id int64, reversed bool, err error) {
	if in.BoolVar != "" {
		return r.registerBool(in.BoolVar, create)
	}
	return r.registerInequality(in, create)
}

func (r *Registry) registerBool(name string, create bool) (int64, bool, error) {
	key := "bool:" + name

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byKey[key]; ok {
		return id, false, nil
	}
	if !create {
		return 0, false, ErrDecisionNotFound
	}
	id := r.next
	r.next++
	r.decisions = append(r.decisions, Decision{ID: id, BoolVar: name})
	r.byKey[key] = id
	return id, false, nil
}

func (r *Registry) registerInequality(in Input, create bool) (int64, bool, error) {
	if in.Left == nil || in.Right == nil {
		return 0, false, fmt.Errorf("%w: inequality missing an operand", ErrMalformedDecision)
	}
	diff := symbexpr.Sub(in.Left, in.Right)
	lf, ok := symbexpr.AsLinear(diff)
	if !ok {
		return 0, false, fmt.Errorf("%w: %q is not a linear inequality", ErrMalformedDecision, diff.String())
	}

	form, kind, reversed, err := canonicalizeRelation(in.Rel, lf)
	if err != nil {
		return 0, false, err
	}

	key := fmt.Sprintf("%s:%s", kind, form.String())

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byKey[key]; ok {
		return id, reversed, nil
	}
	if !create {
		return 0, false, ErrDecisionNotFound
	}
	id := r.next
	r.next++
	r.decisions = append(r.decisions, Decision{ID: id, Kind: kind, Form: form})
	r.byKey[key] = id
	return id, reversed, nil
}

// canonicalizeRelation folds rel/lf into the registry's canonical (kind,
// form) pair plus the reversed flag. Relation-direction flips (">=", ">")
// are absorbed as pure algebraic rewrites and never set reversed; only a
// genuine logical negation ("!=") or a leading-coefficient sign flip
// needed to keep the LE form's leading term positive toggles it.
func canonicalizeRelation(rel string, lf *symbexpr.LinearForm) (*symbexpr.LinearForm, RelKind, bool, error) {
	var form *symbexpr.LinearForm
	var kind RelKind
	var reversed bool

	switch rel {
	case "<=", "<":
		form, kind, reversed = lf, RelLE, false
	case ">=", ">":
		form, kind, reversed = lf.Negate(), RelLE, false
	case "==":
		form, kind, reversed = lf, RelEQ, false
	case "!=":
		form, kind, reversed = lf, RelEQ, true
	default:
		return nil, 0, false, fmt.Errorf("%w: unsupported relation %q", ErrMalformedDecision, rel)
	}

	if kind == RelLE && form.LeadingSign() < 0 {
		form = form.Negate()
		reversed = !reversed
	}
	return form, kind, reversed, nil
}

// Get returns the Decision registered under id.
func (r *Registry) Get(id int64) (Decision, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx := id - FirstDecisionID
	if idx < 0 || int(idx) >= len(r.decisions) {
		return Decision{}, fmt.Errorf("decision: invalid decision id %d", id)
	}
	return r.decisions[idx], nil
}

// Size returns the number of distinct decisions registered so far.
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.decisions)
}
