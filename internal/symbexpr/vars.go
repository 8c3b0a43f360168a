package symbexpr

// FreeVars returns the set of variable names referenced anywhere in e.
func FreeVars(e *Expr) map[string]bool {
	out := map[string]bool{}
	collectVars(e, out)
	return out
}

func collectVars(e *Expr, out map[string]bool) {
	if e == nil {
		return
	}
	switch e.Kind {
	case KindVar:
		out[e.Var] = true
	case KindNum, KindBool:
	case KindNeg:
		collectVars(e.X, out)
	case KindCall:
		collectVars(e.X, out)
		collectVars(e.Arg, out)
	default:
		collectVars(e.X, out)
		collectVars(e.Y, out)
	}
}
