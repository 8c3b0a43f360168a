package symbexpr

import (
	"fmt"
	"math/big"
	"sort"
	"strings"
)

// LinearForm is a real-valued expression of the restricted shape the
// Decision Registry accepts: a rational-weighted sum of distinct variables
// plus a rational constant. Every linear-inequality decision stores one.
type LinearForm struct {
	Coeffs map[string]*big.Rat
	Const  *big.Rat
}

// AsLinear attempts to view e as a LinearForm. It returns ok=false for any
// expression containing a product of two non-constant subexpressions, a
// division by a non-constant, or a function call — i.e. anything genuinely
// nonlinear.
func AsLinear(e *Expr) (*LinearForm, bool) {
	coeffs := map[string]*big.Rat{}
	constAcc := big.NewRat(0, 1)
	if !collectLinear(Canonical(e), big.NewRat(1, 1), coeffs, constAcc) {
		return nil, false
	}
	for name, c := range coeffs {
		if c.Sign() == 0 {
			delete(coeffs, name)
		}
	}
	return &LinearForm{Coeffs: coeffs, Const: constAcc}, true
}

func collectLinear(e *Expr, scale *big.Rat, coeffs map[string]*big.Rat, constAcc *big.Rat) bool {
	switch e.Kind {
	case KindNum:
		constAcc.Add(constAcc, new(big.Rat).Mul(scale, e.Num))
		return true
	case KindVar:
		cur, ok := coeffs[e.Var]
		if !ok {
			cur = big.NewRat(0, 1)
		}
		coeffs[e.Var] = new(big.Rat).Add(cur, scale)
		return true
	case KindAdd:
		return collectLinear(e.X, scale, coeffs, constAcc) && collectLinear(e.Y, scale, coeffs, constAcc)
	case KindSub:
		return collectLinear(e.X, scale, coeffs, constAcc) &&
			collectLinear(e.Y, new(big.Rat).Neg(scale), coeffs, constAcc)
	case KindNeg:
		return collectLinear(e.X, new(big.Rat).Neg(scale), coeffs, constAcc)
	case KindMul:
		if c, ok := e.X.AsConst(); ok {
			return collectLinear(e.Y, new(big.Rat).Mul(scale, c), coeffs, constAcc)
		}
		if c, ok := e.Y.AsConst(); ok {
			return collectLinear(e.X, new(big.Rat).Mul(scale, c), coeffs, constAcc)
		}
		return false
	case KindDiv:
		if c, ok := e.Y.AsConst(); ok && c.Sign() != 0 {
			return collectLinear(e.X, new(big.Rat).Quo(scale, c), coeffs, constAcc)
		}
		return false
	default:
		return false
	}
}

// ToExpr rebuilds a canonical Expr from a LinearForm.
func (lf *LinearForm) ToExpr() *Expr {
	names := lf.varNames()
	var result *Expr
	for _, name := range names {
		c := lf.Coeffs[name]
		var term *Expr
		switch {
		case c.Cmp(big.NewRat(1, 1)) == 0:
			term = Variable(name)
		case c.Cmp(big.NewRat(-1, 1)) == 0:
			term = Neg(Variable(name))
		default:
			term = Mul(NumRat(c), Variable(name))
		}
		if result == nil {
			result = term
		} else if term.Kind == KindNeg {
			result = Sub(result, term.X)
		} else {
			result = Add(result, term)
		}
	}
	if result == nil || lf.Const.Sign() != 0 {
		if result == nil {
			return NumRat(lf.Const)
		}
		result = Add(result, NumRat(lf.Const))
	}
	return Canonical(result)
}

// Negate returns -lf (every coefficient and the constant are negated),
// equivalent to multiplying both sides of a `D <relop> 0` decision by -1.
func (lf *LinearForm) Negate() *LinearForm {
	out := &LinearForm{Coeffs: map[string]*big.Rat{}, Const: new(big.Rat).Neg(lf.Const)}
	for name, c := range lf.Coeffs {
		out.Coeffs[name] = new(big.Rat).Neg(c)
	}
	return out
}

// LeadingSign returns the sign of the coefficient of the alphabetically
// first variable in lf, or the sign of the constant if lf has no variables.
func (lf *LinearForm) LeadingSign() int {
	names := lf.varNames()
	if len(names) == 0 {
		return lf.Const.Sign()
	}
	return lf.Coeffs[names[0]].Sign()
}

// Equal reports whether lf and other denote the same linear form exactly.
func (lf *LinearForm) Equal(other *LinearForm) bool {
	return lf.String() == other.String()
}

func (lf *LinearForm) varNames() []string {
	names := make([]string, 0, len(lf.Coeffs))
	for name := range lf.Coeffs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (lf *LinearForm) String() string {
	var b strings.Builder
	for _, name := range lf.varNames() {
		fmt.Fprintf(&b, "(%s)*%s+", lf.Coeffs[name].RatString(), name)
	}
	fmt.Fprintf(&b, "%s", lf.Const.RatString())
	return b.String()
}
