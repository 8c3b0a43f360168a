package symbexpr

import (
	"fmt"
	"math"
	"math/big"
)

// ErrUnboundVariable is returned by EvalNum when e mentions a variable with
// no entry in the assignment map.
type ErrUnboundVariable struct{ Name string }

func (e *ErrUnboundVariable) Error() string {
	return fmt.Sprintf("symbexpr: unbound variable %q", e.Name)
}

// ErrDivisionByZero is returned by EvalNum for a Div whose divisor evaluates
// to exactly zero.
var ErrDivisionByZero = fmt.Errorf("symbexpr: division by zero")

// ErrDomainError is returned by EvalNum when a function argument falls
// outside the function's real domain (log of a non-positive number, sqrt of
// a negative number, and so on).
type ErrDomainError struct {
	Fn  Func
	Arg float64
}

func (e *ErrDomainError) Error() string {
	return fmt.Sprintf("symbexpr: %s(%g) is outside the real domain", e.Fn, e.Arg)
}

// EvalNum fully evaluates e to a float64 under assign. Every free variable
// in e must have an entry in assign; Bool leaves are not valid targets for
// numeric evaluation and produce an error.
func EvalNum(e *Expr, assign map[string]float64) (float64, error) {
	switch e.Kind {
	case KindNum:
		f, _ := e.Num.Float64()
		return f, nil
	case KindVar:
		v, ok := assign[e.Var]
		if !ok {
			return 0, &ErrUnboundVariable{Name: e.Var}
		}
		return v, nil
	case KindBool:
		return 0, fmt.Errorf("symbexpr: cannot evaluate boolean leaf %v numerically", e.Bool)
	case KindAdd:
		x, err := EvalNum(e.X, assign)
		if err != nil {
			return 0, err
		}
		y, err := EvalNum(e.Y, assign)
		if err != nil {
			return 0, err
		}
		return x + y, nil
	case KindSub:
		x, err := EvalNum(e.X, assign)
		if err != nil {
			return 0, err
		}
		y, err := EvalNum(e.Y, assign)
		if err != nil {
			return 0, err
		}
		return x - y, nil
	case KindMul:
		x, err := EvalNum(e.X, assign)
		if err != nil {
			return 0, err
		}
		y, err := EvalNum(e.Y, assign)
		if err != nil {
			return 0, err
		}
		return x * y, nil
	case KindDiv:
		x, err := EvalNum(e.X, assign)
		if err != nil {
			return 0, err
		}
		y, err := EvalNum(e.Y, assign)
		if err != nil {
			return 0, err
		}
		if y == 0 {
			return 0, ErrDivisionByZero
		}
		return x / y, nil
	case KindNeg:
		x, err := EvalNum(e.X, assign)
		if err != nil {
			return 0, err
		}
		return -x, nil
	case KindCall:
		x, err := EvalNum(e.X, assign)
		if err != nil {
			return 0, err
		}
		var arg *float64
		if e.Arg != nil {
			a, err := EvalNum(e.Arg, assign)
			if err != nil {
				return 0, err
			}
			arg = &a
		}
		return evalFuncFloat(e.Fn, x, arg)
	default:
		return 0, fmt.Errorf("symbexpr: unknown expr kind %d", e.Kind)
	}
}

// evalFunc is the constant-folding entry point used by Canonical: it
// succeeds whenever the float64 result is finite, converting it to the
// rational of that float64 (so trig and transcendental results fold as
// inexact rationals); a domain error or non-constant argument leaves the
// call symbolic.
func evalFunc(fn Func, x *big.Rat, arg *Expr) (*big.Rat, error) {
	xf, _ := x.Float64()
	var argf *float64
	if arg != nil {
		ar, ok := arg.AsConst()
		if !ok {
			return nil, fmt.Errorf("symbexpr: %s argument is not constant", fn)
		}
		af, _ := ar.Float64()
		argf = &af
	}
	r, err := evalFuncFloat(fn, xf, argf)
	if err != nil {
		return nil, err
	}
	rat := new(big.Rat).SetFloat64(r)
	if rat == nil {
		return nil, fmt.Errorf("symbexpr: %s produced a non-finite result", fn)
	}
	return rat, nil
}

func evalFuncFloat(fn Func, x float64, arg *float64) (float64, error) {
	switch fn {
	case FuncSin:
		return math.Sin(x), nil
	case FuncCos:
		return math.Cos(x), nil
	case FuncTan:
		return math.Tan(x), nil
	case FuncSinh:
		return math.Sinh(x), nil
	case FuncCosh:
		return math.Cosh(x), nil
	case FuncTanh:
		return math.Tanh(x), nil
	case FuncExp:
		return math.Exp(x), nil
	case FuncLog:
		if x <= 0 {
			return 0, &ErrDomainError{Fn: fn, Arg: x}
		}
		return math.Log(x), nil
	case FuncLog2:
		if x <= 0 {
			return 0, &ErrDomainError{Fn: fn, Arg: x}
		}
		return math.Log2(x), nil
	case FuncLog10:
		if x <= 0 {
			return 0, &ErrDomainError{Fn: fn, Arg: x}
		}
		return math.Log10(x), nil
	case FuncLog1p:
		if x <= -1 {
			return 0, &ErrDomainError{Fn: fn, Arg: x}
		}
		return math.Log1p(x), nil
	case FuncFloor:
		return math.Floor(x), nil
	case FuncCeil:
		return math.Ceil(x), nil
	case FuncSqrt:
		if x < 0 {
			return 0, &ErrDomainError{Fn: fn, Arg: x}
		}
		return math.Sqrt(x), nil
	case FuncPow:
		if arg == nil {
			return 0, fmt.Errorf("symbexpr: pow requires an exponent argument")
		}
		return math.Pow(x, *arg), nil
	case FuncSgnRaw:
		switch {
		case x > 0:
			return 1, nil
		case x < 0:
			return -1, nil
		default:
			return 0, nil
		}
	default:
		return 0, fmt.Errorf("symbexpr: unknown function %q", fn)
	}
}
