package symbexpr

import (
	"math/big"
	"sort"
)

// Canonical rewrites e into this package's canonical form: additive chains
// are flattened, like terms combined, constant subexpressions folded, and
// commutative operands ordered deterministically. Hash-consing and
// decision dedup both key on the canonical form's rendered string.
func Canonical(e *Expr) *Expr {
	switch e.Kind {
	case KindNum, KindVar, KindBool:
		return e
	case KindNeg:
		x := Canonical(e.X)
		if c, ok := x.AsConst(); ok {
			return NumRat(new(big.Rat).Neg(c))
		}
		if x.Kind == KindNeg {
			return x.X
		}
		return Neg(x)
	case KindAdd, KindSub:
		return canonicalSum(e)
	case KindMul:
		return canonicalMul(Canonical(e.X), Canonical(e.Y))
	case KindDiv:
		return canonicalDiv(Canonical(e.X), Canonical(e.Y))
	case KindCall:
		return canonicalCall(e)
	default:
		return e
	}
}

type term struct {
	coeff *big.Rat
	base  *Expr
}

// canonicalSum flattens nested Add/Sub/Neg chains into a sorted sum of
// coeff*base terms plus a single folded constant.
func canonicalSum(e *Expr) *Expr {
	constAcc := big.NewRat(0, 1)
	byKey := map[string]*term{}
	var order []string

	var flatten func(x *Expr, scale *big.Rat)
	flatten = func(x *Expr, scale *big.Rat) {
		switch x.Kind {
		case KindAdd:
			flatten(x.X, scale)
			flatten(x.Y, scale)
		case KindSub:
			flatten(x.X, scale)
			flatten(x.Y, new(big.Rat).Neg(scale))
		case KindNeg:
			flatten(x.X, new(big.Rat).Neg(scale))
		case KindNum:
			constAcc.Add(constAcc, new(big.Rat).Mul(scale, x.Num))
		default:
			cx := Canonical(x)
			coeff := new(big.Rat).Set(scale)
			base := cx
			if cx.Kind == KindNum {
				constAcc.Add(constAcc, new(big.Rat).Mul(scale, cx.Num))
				return
			}
			if cx.Kind == KindMul {
				if c, ok := cx.X.AsConst(); ok {
					coeff.Mul(coeff, c)
					base = cx.Y
				} else if c, ok := cx.Y.AsConst(); ok {
					coeff.Mul(coeff, c)
					base = cx.X
				}
			} else if cx.Kind == KindNeg {
				coeff.Neg(coeff)
				base = cx.X
			}
			key := base.String()
			if t, ok := byKey[key]; ok {
				t.coeff.Add(t.coeff, coeff)
			} else {
				byKey[key] = &term{coeff: coeff, base: base}
				order = append(order, key)
			}
		}
	}
	flatten(e.X, big.NewRat(1, 1))
	if e.Kind == KindSub {
		flatten(e.Y, big.NewRat(-1, 1))
	} else {
		flatten(e.Y, big.NewRat(1, 1))
	}

	sort.Strings(order)
	var parts []*Expr
	for _, key := range order {
		t := byKey[key]
		if t.coeff.Sign() == 0 {
			continue
		}
		switch {
		case t.coeff.Cmp(big.NewRat(1, 1)) == 0:
			parts = append(parts, t.base)
		case t.coeff.Cmp(big.NewRat(-1, 1)) == 0:
			parts = append(parts, Neg(t.base))
		case t.coeff.Sign() < 0:
			parts = append(parts, Neg(Mul(NumRat(new(big.Rat).Neg(t.coeff)), t.base)))
		default:
			parts = append(parts, Mul(NumRat(t.coeff), t.base))
		}
	}
	if constAcc.Sign() != 0 || len(parts) == 0 {
		if constAcc.Sign() < 0 && len(parts) > 0 {
			parts = append(parts, Neg(NumRat(new(big.Rat).Neg(constAcc))))
		} else {
			parts = append(parts, NumRat(constAcc))
		}
	}

	result := parts[0]
	for _, p := range parts[1:] {
		if p.Kind == KindNeg {
			result = Sub(result, p.X)
		} else {
			result = Add(result, p)
		}
	}
	return result
}

func canonicalMul(x, y *Expr) *Expr {
	if cx, ok := x.AsConst(); ok {
		if cy, ok := y.AsConst(); ok {
			return NumRat(new(big.Rat).Mul(cx, cy))
		}
		if cx.Sign() == 0 {
			return NumRat(big.NewRat(0, 1))
		}
		if cx.Cmp(big.NewRat(1, 1)) == 0 {
			return y
		}
		return Mul(x, y)
	}
	if cy, ok := y.AsConst(); ok {
		if cy.Sign() == 0 {
			return NumRat(big.NewRat(0, 1))
		}
		if cy.Cmp(big.NewRat(1, 1)) == 0 {
			return x
		}
		return Mul(NumRat(cy), x)
	}
	// Neither side constant: order commutatively for a deterministic key.
	if x.String() > y.String() {
		x, y = y, x
	}
	return Mul(x, y)
}

func canonicalDiv(x, y *Expr) *Expr {
	if cy, ok := y.AsConst(); ok && cy.Sign() != 0 {
		if cx, ok := x.AsConst(); ok {
			return NumRat(new(big.Rat).Quo(cx, cy))
		}
		if cy.Cmp(big.NewRat(1, 1)) == 0 {
			return x
		}
	}
	return Div(x, y)
}

func canonicalCall(e *Expr) *Expr {
	x := Canonical(e.X)
	var arg *Expr
	if e.Arg != nil {
		arg = Canonical(e.Arg)
	}
	if cx, ok := x.AsConst(); ok {
		if v, err := evalFunc(e.Fn, cx, arg); err == nil {
			return NumRat(v)
		}
	}
	return Call(e.Fn, x, arg)
}

// Equal reports whether a and b denote the same canonical expression.
func Equal(a, b *Expr) bool {
	return Canonical(a).String() == Canonical(b).String()
}
