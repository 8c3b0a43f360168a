package symbexpr

// Substitute returns a copy of e with every Var node named in bindings
// replaced by its bound expression. It performs a pure syntactic
// replacement; callers that want a simplified result should pass it through
// Canonical afterwards.
func Substitute(e *Expr, bindings map[string]*Expr) *Expr {
	if e == nil || len(bindings) == 0 {
		return e
	}
	switch e.Kind {
	case KindNum, KindBool:
		return e
	case KindVar:
		if repl, ok := bindings[e.Var]; ok {
			return repl
		}
		return e
	case KindNeg:
		return Neg(Substitute(e.X, bindings))
	case KindCall:
		var arg *Expr
		if e.Arg != nil {
			arg = Substitute(e.Arg, bindings)
		}
		return Call(e.Fn, Substitute(e.X, bindings), arg)
	case KindAdd:
		return Add(Substitute(e.X, bindings), Substitute(e.Y, bindings))
	case KindSub:
		return Sub(Substitute(e.X, bindings), Substitute(e.Y, bindings))
	case KindMul:
		return Mul(Substitute(e.X, bindings), Substitute(e.Y, bindings))
	case KindDiv:
		return Div(Substitute(e.X, bindings), Substitute(e.Y, bindings))
	default:
		return e
	}
}
