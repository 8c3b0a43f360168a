package xadd

import (
	"fmt"
	"math/big"
)

// relHolds evaluates a relational operator against a constant difference
// c = l - r, i.e. whether "l rel r" holds. Strictness (< vs <=, > vs >=)
// is not modeled separately from its non-strict sibling anywhere in this
// engine, matching internal/decision's RelLE.
func relHolds(rel string, c *big.Rat) (bool, error) {
	sign := c.Sign()
	switch rel {
	case "<=", "<":
		return sign <= 0, nil
	case ">=", ">":
		return sign >= 0, nil
	case "==":
		return sign == 0, nil
	case "!=":
		return sign != 0, nil
	default:
		return false, fmt.Errorf("%w: unsupported relation %q", ErrMalformedDecision, rel)
	}
}
