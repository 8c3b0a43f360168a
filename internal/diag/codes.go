// Package diag renders engine errors and grammar parse failures as
// Rust-style caret diagnostics. The engine package itself (internal/xadd)
// returns plain wrapped errors with no dependency on this package; diag
// is a presentation layer used only by cmd/xadd-cli, repl, and
// cmd/xadd-lsp.
package diag

import (
	"errors"

	"github.com/xadd-go/xadd/internal/xadd"
)

// Error codes for the XADD engine, one per engine error kind plus a
// catch-all for parse failures.
const (
	CodeMalformedDecision  = "X0001"
	CodeUnknownOperator    = "X0002"
	CodeLeafEvaluation     = "X0003"
	CodePartialAssignment  = "X0004"
	CodeSolverUnavailable  = "X0005"
	CodeInvariantViolation = "X0006"
	CodeParseError         = "X0100"
)

// CodeFor maps an xadd package error to its taxonomy code via errors.Is,
// or CodeParseError's sibling "" when err matches none of them (a plain
// unclassified error, e.g. a store lookup failure).
func CodeFor(err error) string {
	switch {
	case errors.Is(err, xadd.ErrMalformedDecision):
		return CodeMalformedDecision
	case errors.Is(err, xadd.ErrUnknownOperator):
		return CodeUnknownOperator
	case errors.Is(err, xadd.ErrLeafEvaluation):
		return CodeLeafEvaluation
	case errors.Is(err, xadd.ErrPartialAssignment):
		return CodePartialAssignment
	case errors.Is(err, xadd.ErrSolverUnavailable):
		return CodeSolverUnavailable
	case errors.Is(err, xadd.ErrInvariantViolation):
		return CodeInvariantViolation
	default:
		return ""
	}
}

// Description returns a short human-readable description of an error
// code.
func Description(code string) string {
	switch code {
	case CodeMalformedDecision:
		return "decision is not a linear inequality or Boolean atom"
	case CodeUnknownOperator:
		return "operator is not in the closed apply/unary set"
	case CodeLeafEvaluation:
		return "leaf arithmetic failed (e.g. division by zero)"
	case CodePartialAssignment:
		return "evaluate was called without binding every free variable"
	case CodeSolverUnavailable:
		return "LP backend missing or errored; pruning degraded to identity"
	case CodeInvariantViolation:
		return "internal invariant violated"
	case CodeParseError:
		return "textual XADD source did not parse"
	default:
		return "unclassified error"
	}
}
