package decicalc

import (
	"math"
	"strconv"

	"github.com/cockroachdb/apd/v3"
)

// Func is a function from reals to reals.
type Func int8

const (
	FuncNone Func = iota
	FuncSin
	FuncCos
	FuncTan
	FuncSqrt
	FuncLog
	FuncLog10
	FuncExp
	FuncAbs
	FuncFloor
	FuncCeil
	FuncRound
)

var funcNames = [...]string{
	FuncNone:  "",
	FuncSin:   "sin",
	FuncCos:   "cos",
	FuncTan:   "tan",
	FuncSqrt:  "sqrt",
	FuncLog:   "log",
	FuncLog10: "log10",
	FuncExp:   "exp",
	FuncAbs:   "abs",
	FuncFloor: "floor",
	FuncCeil:  "ceil",
	FuncRound: "round",
}

func (f Func) String() string {
	if f <= FuncNone || int(f) >= len(funcNames) {
		return "Func(" + strconv.Itoa(int(f)) + ")"
	}
	return funcNames[f]
}

// FuncNamed returns the function with the given name.
func FuncNamed(name string) (Func, bool) {
	for f := FuncNone + 1; int(f) < len(funcNames); f++ {
		if funcNames[f] == name {
			return f, true
		}
	}
	return FuncNone, false
}

// Funcs returns the names of all functions in their canonical order.
func Funcs() []string {
	return append([]string(nil), funcNames[1:]...)
}

// maxTrigExponent is the largest adjusted exponent of a trigonometric
// argument that can be reduced modulo 2π.
const maxTrigExponent = 1000

// Call evaluates f at x and stores the result in r. r and x may be the same.
//
// sqrt is computed at the full precision of the context, and log, log10, and
// exp at its function precision. Trigonometric functions reduce their
// argument modulo 2π with decimal arithmetic, then evaluate in float64, so
// their results have ordinary floating-point accuracy.
func (f Func) Call(ctx *Context, r, x *number) error {
	switch f {
	case FuncSin, FuncCos, FuncTan:
		return f.trig(ctx, r, x)
	case FuncSqrt:
		if x.Sign() < 0 {
			return DomainError{X: x.String(), Func: f.String()}
		}
		// Halve an even scale so the root of the mantissa needs no correction.
		var m, s apd.Decimal
		m.Set(&x.m)
		e := x.exp
		if e%2 != 0 {
			m.Exponent++
			e--
		}
		c, err := ctx.dc.Sqrt(&s, &m)
		return ctx.result(f.String(), r, &s, e/2, false, c, err)
	case FuncLog, FuncLog10:
		if x.Sign() <= 0 {
			return DomainError{X: x.String(), Func: f.String()}
		}
		if f == FuncLog10 {
			if p, ok := tenPower(x); ok {
				r.SetDecimal(apd.New(p, 0))
				return nil
			}
		}
		return f.log(ctx, r, x)
	case FuncExp:
		if cmpAbs(x, &maxExpArg) > 0 {
			return &ExponentError{X: x.String()}
		}
		xd, ok := x.decimal()
		if !ok {
			// Too small to change the result from one.
			xd = new(apd.Decimal)
		}
		var e apd.Decimal
		c, err := ctx.fc.Exp(&e, xd)
		return ctx.result(f.String(), r, &e, 0, false, c, err)
	case FuncAbs:
		var a apd.Decimal
		exp := x.exp
		c, err := ctx.dc.Abs(&a, &x.m)
		return ctx.result(f.String(), r, &a, exp, false, c, err)
	case FuncFloor, FuncCeil, FuncRound:
		return f.integral(ctx, r, x)
	default:
		panic("decicalc: call of invalid function " + f.String())
	}
}

// log evaluates log or log10 at a positive x. The logarithm of the mantissa
// and the scale of x are combined at a working precision above the function
// precision before rounding.
func (f Func) log(ctx *Context, r, x *number) error {
	lf := ctx.fc.Ln
	if f == FuncLog10 {
		lf = ctx.fc.Log10
	}
	var l apd.Decimal
	if x.exp == 0 || !x.finite() {
		c, err := lf(&l, &x.m)
		return ctx.result(f.String(), r, &l, 0, false, c, err)
	}
	wc := decimalContext(ctx.fprec + 10)
	ed := apd.MakeErrDecimal(wc)
	var s apd.Decimal
	s.SetInt64(x.exp)
	if f == FuncLog10 {
		ed.Log10(&l, &x.m)
	} else {
		var ln10 apd.Decimal
		ed.Ln(&l, &x.m)
		ed.Ln(&ln10, apd.New(10, 0))
		ed.Mul(&s, &s, &ln10)
	}
	ed.Add(&l, &l, &s)
	if err := ed.Err(); err != nil {
		return &OverflowError{Op: f.String(), Err: err}
	}
	c, err := ctx.fc.Round(&l, &l)
	return ctx.result(f.String(), r, &l, 0, false, c, err)
}

// integral evaluates floor, ceil, or round.
func (f Func) integral(ctx *Context, r, x *number) error {
	var d apd.Decimal
	if x.isInt() {
		exp := x.exp
		c, err := ctx.dc.Round(&d, &x.m)
		return ctx.result(f.String(), r, &d, exp, x.m.Negative, c, err)
	}
	xd, ok := x.decimal()
	if !ok {
		// Nonzero, and too small for apd. Only the sign matters.
		switch {
		case f == FuncFloor && x.m.Negative:
			r.SetDecimal(apd.New(-1, 0))
		case f == FuncCeil && !x.m.Negative:
			r.SetDecimal(decimalOne)
		default:
			r.setZero()
		}
		return nil
	}
	var c apd.Condition
	var err error
	switch f {
	case FuncFloor:
		c, err = ctx.dc.Floor(&d, xd)
	case FuncCeil:
		c, err = ctx.dc.Ceil(&d, xd)
	default:
		rc := *ctx.dc
		rc.Rounding = apd.RoundHalfUp
		c, err = rc.RoundToIntegralValue(&d, xd)
	}
	return ctx.result(f.String(), r, &d, 0, x.m.Negative, c, err)
}

// trig evaluates a trigonometric function.
func (f Func) trig(ctx *Context, r, x *number) error {
	if !x.finite() || x.exp > maxTrigExponent {
		return DomainError{X: x.String(), Func: f.String()}
	}
	xd, ok := x.decimal()
	if !ok {
		// Below the smallest float64.
		xd = new(apd.Decimal)
	}
	// Reducing needs every integer digit of x plus enough fraction digits to
	// survive the trip through float64.
	prec := ctx.fprec
	if x.exp > 0 {
		prec += uint32(x.exp)
	}
	var red apd.Decimal
	rc := apd.BaseContext.WithPrecision(prec)
	rc.Traps = ctx.dc.Traps
	if _, err := rc.Rem(&red, xd, twoPi(prec)); err != nil {
		return &OverflowError{Op: f.String(), Err: err}
	}
	v, err := red.Float64()
	if err != nil {
		return &OverflowError{Op: f.String(), Err: err}
	}
	switch f {
	case FuncSin:
		v = math.Sin(v)
	case FuncCos:
		v = math.Cos(v)
	case FuncTan:
		v = math.Tan(v)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return DomainError{X: x.String(), Func: f.String()}
	}
	// The shortest representation of the float64 result is the decimal value,
	// rather than its exact binary expansion.
	var d apd.Decimal
	if _, _, err := d.SetString(strconv.FormatFloat(v, 'g', -1, 64)); err != nil {
		return &OverflowError{Op: f.String(), Err: err}
	}
	r.SetDecimal(&d)
	return nil
}

// tenPower returns p if x is exactly 10^p.
func tenPower(x *number) (int64, bool) {
	if !x.finite() || x.Sign() <= 0 {
		return 0, false
	}
	var red apd.Decimal
	red.Reduce(&x.m)
	if red.Coeff.Cmp(apd.NewBigInt(1)) != 0 {
		return 0, false
	}
	return x.exp + int64(red.Exponent), true
}

// DomainError is an error returned when a function is called on arguments
// outside its domain.
type DomainError struct {
	// X is the out-of-domain argument.
	X string
	// Func is a name identifying the function.
	Func string
}

func (err DomainError) Error() string {
	r := err.X + " outside domain"
	if err.Func != "" {
		r += " of " + err.Func
	}
	return r
}

// ExponentError is an error returned when exp is called on an argument of
// magnitude too large to compute.
type ExponentError struct {
	// X is the argument.
	X string
}

func (err *ExponentError) Error() string {
	return "exponent too large: exp(" + err.X + ")"
}
