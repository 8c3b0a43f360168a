// Package xadd implements the XADD engine's core: reduction, binary
// apply, leaf-wise unary transforms, substitution/evaluation,
// canonicalization, and LP-backed branch pruning. Everything here
// operates on node identities minted by internal/store and decision
// identities minted by internal/decision; the DAG itself lives in those
// two packages.
package xadd

import (
	"log"
	"os"

	"github.com/xadd-go/xadd/internal/decision"
	"github.com/xadd-go/xadd/internal/lpsolver"
	"github.com/xadd-go/xadd/internal/store"
	"github.com/xadd-go/xadd/internal/symbexpr"
)

// Engine owns one Node Store, one Decision Registry, the memo tables for
// every recursive operation, and the LP backend used by ReduceLP. An
// Engine is single-threaded cooperative: one goroutine drives one Engine
// at a time. The Store and Registry guard their own hash-consing tables
// with a mutex (so concurrent *reads*, e.g. from an LSP diagnostics pass,
// are safe); Engine's memo tables carry no lock of their own, and callers
// that share an Engine across goroutines must serialize access
// themselves.
type Engine struct {
	Store    *store.Store
	Registry *decision.Registry
	Solver   lpsolver.LPSolver
	Logger   *log.Logger

	applyMemo  map[applyKey]store.NodeID
	unaryMemo  map[unaryKey]store.NodeID
	reduceMemo map[store.NodeID]store.NodeID
	canonMemo  map[store.NodeID]store.NodeID
	insertMemo map[insertKey]store.NodeID
	varsMemo   map[store.NodeID]map[string]bool
	lpMemo     map[lpKey]store.NodeID
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithLPSolver overrides the default gonum-backed LP feasibility oracle.
func WithLPSolver(s lpsolver.LPSolver) Option {
	return func(e *Engine) { e.Solver = s }
}

// WithLogger overrides the default stderr logger used for the
// solver-unavailable degrade warning.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.Logger = l }
}

// NewEngine returns a fresh Engine with an empty Store and Registry, the
// default gonum LP solver, and a stderr logger, customized by opts.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		Store:    store.New(),
		Registry: decision.NewRegistry(),
		Solver:   lpsolver.NewSolver(),
		Logger:   log.New(os.Stderr, "xadd: ", log.LstdFlags),

		applyMemo:  make(map[applyKey]store.NodeID),
		unaryMemo:  make(map[unaryKey]store.NodeID),
		reduceMemo: make(map[store.NodeID]store.NodeID),
		canonMemo:  make(map[store.NodeID]store.NodeID),
		insertMemo: make(map[insertKey]store.NodeID),
		varsMemo:   make(map[store.NodeID]map[string]bool),
		lpMemo:     make(map[lpKey]store.NodeID),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ClearMemo drops every memo table. Correctness never depends on memo
// persistence; this exists so long-lived Engines (the LSP server, the
// REPL) can bound memory between top-level requests.
func (e *Engine) ClearMemo() {
	e.applyMemo = make(map[applyKey]store.NodeID)
	e.unaryMemo = make(map[unaryKey]store.NodeID)
	e.reduceMemo = make(map[store.NodeID]store.NodeID)
	e.canonMemo = make(map[store.NodeID]store.NodeID)
	e.insertMemo = make(map[insertKey]store.NodeID)
	e.varsMemo = make(map[store.NodeID]map[string]bool)
	e.lpMemo = make(map[lpKey]store.NodeID)
}

// Diagram is a thin (engine, root) handle so callers don't have to thread
// store.NodeID values through every call themselves.
type Diagram struct {
	Engine *Engine
	Root   store.NodeID
}

// D wraps a NodeID produced against eng into a Diagram handle.
func D(eng *Engine, root store.NodeID) Diagram {
	return Diagram{Engine: eng, Root: root}
}

// Apply composes d and other under op, returning the result as a Diagram.
func (d Diagram) Apply(other Diagram, op Op) (Diagram, error) {
	id, err := d.Engine.Apply(d.Root, other.Root, op)
	if err != nil {
		return Diagram{}, err
	}
	return D(d.Engine, id), nil
}

// Unary applies a leaf-wise unary transform to d.
func (d Diagram) Unary(op UnaryOp, arg Arg) (Diagram, error) {
	id, err := d.Engine.Unary(d.Root, op, arg)
	if err != nil {
		return Diagram{}, err
	}
	return D(d.Engine, id), nil
}

// Substitute partially substitutes d and returns the resulting Diagram.
// Bound values are themselves symbolic expressions (possibly concrete
// numbers via symbexpr.Number).
func (d Diagram) Substitute(bindings map[string]*symbexpr.Expr) (Diagram, error) {
	id, err := d.Engine.Substitute(d.Root, bindings)
	if err != nil {
		return Diagram{}, err
	}
	return D(d.Engine, id), nil
}

// Evaluate fully evaluates d under the given assignment.
func (d Diagram) Evaluate(boolAssign map[string]bool, contAssign map[string]float64, strict bool) (float64, error) {
	return d.Engine.Evaluate(d.Root, boolAssign, contAssign, strict)
}

// Canonical rebuilds d under the current decision order.
func (d Diagram) Canonical() (Diagram, error) {
	id, err := d.Engine.MakeCanonical(d.Root)
	if err != nil {
		return Diagram{}, err
	}
	return D(d.Engine, id), nil
}

// Prune runs the LP Reducer over d with no external preconditions.
func (d Diagram) Prune() (Diagram, error) {
	id, err := d.Engine.ReduceLP(d.Root, nil)
	if err != nil {
		return Diagram{}, err
	}
	return D(d.Engine, id), nil
}
