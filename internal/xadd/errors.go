package xadd

import (
	"errors"

	"github.com/xadd-go/xadd/internal/decision"
	"github.com/xadd-go/xadd/internal/lpsolver"
)

// Engine error taxonomy. MalformedDecision and SolverUnavailable
// originate in internal/decision and internal/lpsolver respectively; they
// are re-exported here so callers of this package can errors.Is against a
// single xadd.Err* set without reaching into those packages directly.
var (
	ErrMalformedDecision  = decision.ErrMalformedDecision
	ErrSolverUnavailable  = lpsolver.ErrSolverUnavailable
	ErrUnknownOperator    = errors.New("xadd: unknown operator")
	ErrLeafEvaluation     = errors.New("xadd: leaf evaluation error")
	ErrPartialAssignment  = errors.New("xadd: evaluate called without a full assignment")
	ErrInvariantViolation = errors.New("xadd: invariant violation")
)
