package decicalc

import (
	"errors"

	"github.com/cockroachdb/apd/v3"
)

var decimalOne = apd.New(1, 0)

// binary computes d = x op y. d may alias x or y.
func (ctx *Context) binary(op nodeKind, d, x, y *number) error {
	switch op {
	case nodeAdd:
		return ctx.add("+", d, x, y, false)
	case nodeSub:
		return ctx.add("-", d, x, y, true)
	case nodeMul:
		var r apd.Decimal
		exp := x.exp + y.exp
		c, err := ctx.dc.Mul(&r, &x.m, &y.m)
		return ctx.result("*", d, &r, exp, x.m.Negative != y.m.Negative, c, err)
	case nodeDiv:
		if y.IsZero() {
			return ErrDivisionByZero
		}
		var r apd.Decimal
		exp := x.exp - y.exp
		c, err := ctx.dc.Quo(&r, &x.m, &y.m)
		return ctx.result("/", d, &r, exp, x.m.Negative != y.m.Negative, c, err)
	case nodePow:
		return ctx.pow(d, x, y)
	default:
		panic("decicalc: binary operation on " + op.String())
	}
}

// add computes d = x + y, or d = x - y if sub is true. The mantissas are
// aligned to the larger scale. An operand too small to reach the last digit
// of the other does not take part.
func (ctx *Context) add(op string, d, x, y *number, sub bool) error {
	var xm, ym, r apd.Decimal
	xm.Set(&x.m)
	ym.Set(&y.m)
	if sub {
		ym.Neg(&ym)
	}
	var base int64
	switch {
	case !x.finite() || !y.finite():
		// Infinities have no scale, and a finite operand cannot change them.
	case x.IsZero():
		base = y.exp
	case y.IsZero():
		base = x.exp
	default:
		base = max(x.exp, y.exp)
		gap := max(x.m.NumDigits(), y.m.NumDigits()) + int64(ctx.prec) + 2
		if base-x.exp > gap {
			xm.SetInt64(0)
		} else {
			xm.Exponent += int32(x.exp - base)
		}
		if base-y.exp > gap {
			ym.SetInt64(0)
		} else {
			ym.Exponent += int32(y.exp - base)
		}
	}
	c, err := ctx.dc.Add(&r, &xm, &ym)
	return ctx.result(op, d, &r, base, x.m.Negative, c, err)
}

// pow computes d = x^y. Integral exponents are computed at full precision,
// fractional ones at function precision.
//
// Apart from zero to a negative power, a negative base with a fractional
// exponent is checked first. Otherwise, a base of magnitude greater than one raised to an
// exponent of magnitude greater than powLimit saturates to infinity without
// computing anything.
func (ctx *Context) pow(d, x, y *number) error {
	if x.IsZero() && y.Sign() < 0 {
		return ErrDivisionByZero
	}
	large := cmpAbs(x, &numberOne) > 0
	if x.m.Negative && !y.isInt() && !(large && y.m.Form == apd.Infinite) {
		return &ComplexError{Base: x.String(), Exp: y.String()}
	}
	neg := x.m.Negative && y.oddInt()
	switch {
	case large && cmpAbs(y, &powLimit) > 0:
		d.setInf(neg)
		return nil
	case y.m.Form == apd.Infinite:
		// |x| <= 1 here, and x is not negative.
		switch {
		case x.IsZero():
			d.setZero()
		case cmpAbs(x, &numberOne) == 0:
			d.SetDecimal(decimalOne)
		case y.m.Negative:
			d.setInf(false)
		default:
			d.setZero()
		}
		return nil
	case y.isInt() && cmpAbs(y, &powLimit) <= 0:
		return ctx.intPow(d, x, y, neg)
	}
	return ctx.fracPow(d, x, y, neg)
}

// intPow computes d = x^y for an integer y no larger in magnitude than
// powLimit. Only the mantissa of x goes through apd.
func (ctx *Context) intPow(d, x, y *number, neg bool) error {
	yd, _ := y.decimal()
	k, err := yd.Int64()
	if err != nil {
		return &OverflowError{Op: "^", Err: err}
	}
	var r apd.Decimal
	exp := x.exp * k
	c, err := ctx.dc.Pow(&r, &x.m, yd)
	return ctx.result("^", d, &r, exp, neg, c, err)
}

// fracPow computes d = x^y for a fractional y, or for an integer y larger in
// magnitude than powLimit when |x| <= 1. When the operands or the result are
// beyond the range of apd, it goes through logPow.
func (ctx *Context) fracPow(d, x, y *number, neg bool) error {
	if x.IsZero() {
		d.setZero()
		return nil
	}
	xd, xok := x.decimal()
	yd, yok := y.decimal()
	if xok && yok {
		pc := ctx.fc
		if y.isInt() {
			pc = ctx.dc
		}
		var r apd.Decimal
		c, err := pc.Pow(&r, xd, yd)
		if !c.Overflow() && !c.SystemOverflow() && !c.Underflow() && !c.SystemUnderflow() {
			return ctx.result("^", d, &r, 0, neg, c, err)
		}
	}
	if !x.finite() {
		// Only a positive infinity reaches here, with a finite y.
		if y.Sign() < 0 {
			d.setZero()
		} else {
			d.setInf(false)
		}
		return nil
	}
	return ctx.logPow(d, x, y, neg)
}

// logPow computes d = |x|^y through the decimal logarithm, then applies the
// sign neg. x must be finite and nonzero, and y finite.
func (ctx *Context) logPow(d, x, y *number, neg bool) error {
	// The logarithm needs its integer digits on top of the digits that become
	// the result.
	wc := decimalContext(ctx.fprec + 20)
	ed := apd.MakeErrDecimal(wc)
	var ax, lx, scale apd.Decimal
	ax.Abs(&x.m)
	ed.Log10(&lx, &ax)
	ed.Add(&lx, &lx, scale.SetInt64(x.exp))
	var l number
	l.SetDecimal(&lx)
	var lm apd.Decimal
	ed.Mul(&lm, &l.m, &y.m)
	if err := ed.Err(); err != nil {
		return &OverflowError{Op: "^", Err: err}
	}
	l.setScaled(&lm, l.exp+y.exp)
	// |x^y| = 10^l, and l out of range for an int64 is far out of range for
	// the result.
	if !l.finite() || l.exp > 8 {
		if l.m.Negative {
			d.setZero()
		} else {
			d.setInf(neg)
		}
		return nil
	}
	ld, ok := l.decimal()
	if !ok {
		// l is so small that the result is one.
		ld = new(apd.Decimal)
	}
	var n, f, r apd.Decimal
	ed.Floor(&n, ld)
	ed.Sub(&f, ld, &n)
	ed.Pow(&r, apd.New(10, 0), &f)
	if err := ed.Err(); err != nil {
		return &OverflowError{Op: "^", Err: err}
	}
	k, err := n.Int64()
	if err != nil {
		return &OverflowError{Op: "^", Err: err}
	}
	r.Negative = neg
	c, err := ctx.fc.Round(&r, &r)
	return ctx.result("^", d, &r, k, neg, c, err)
}

// result checks the outcome of an operation that produced r, then stores
// r × 10^exp in d.
func (ctx *Context) result(op string, d *number, r *apd.Decimal, exp int64, neg bool, c apd.Condition, err error) error {
	if err := ctx.check(op, r, neg, c, err); err != nil {
		return err
	}
	d.setScaled(r, exp)
	return nil
}

// check interprets the outcome of a decimal operation that stored its result
// in d. Overflow saturates d to an infinity, with the sign neg unless the
// operation already produced one, and underflow flushes d to zero.
func (ctx *Context) check(op string, d *apd.Decimal, neg bool, c apd.Condition, err error) error {
	switch {
	case c.Overflow(), c.SystemOverflow():
		if d.Form == apd.Infinite {
			neg = d.Negative
		}
		setInf(d, neg)
		return nil
	case c.Underflow(), c.SystemUnderflow():
		d.SetInt64(0)
		return nil
	case err != nil:
		if c.DivisionByZero() {
			return ErrDivisionByZero
		}
		return &OverflowError{Op: op, Err: err}
	case d.Form == apd.NaN:
		return &OverflowError{Op: op, Err: errors.New("not a number")}
	}
	return nil
}

// setInf sets d to an infinity.
func setInf(d *apd.Decimal, neg bool) {
	d.SetInt64(0)
	d.Form = apd.Infinite
	d.Negative = neg
}

// isInt reports whether y is a finite integer.
func isInt(y *apd.Decimal) bool {
	if y.Form != apd.Finite {
		return false
	}
	var frac apd.Decimal
	y.Modf(nil, &frac)
	return frac.IsZero()
}

// oddInt reports whether y is an odd integer.
func oddInt(y *apd.Decimal) bool {
	if y.Form != apd.Finite {
		return false
	}
	var integ, frac apd.Decimal
	y.Modf(&integ, &frac)
	return frac.IsZero() && integ.Exponent == 0 && integ.Coeff.Bit(0) == 1
}

// ErrDivisionByZero is the error from dividing by zero, including raising
// zero to a negative power.
var ErrDivisionByZero = errors.New("division by zero")

// ComplexError is an error from raising a negative number to a fractional
// power.
type ComplexError struct {
	// Base and Exp are the operands.
	Base, Exp string
}

func (err *ComplexError) Error() string {
	return "negative base raised to fractional exponent results in complex number: (" + err.Base + ")^(" + err.Exp + ")"
}

// OverflowError is an error from an operation the decimal arithmetic could
// not complete, such as subtracting infinities or exhausting its exponent
// range in an intermediate step.
type OverflowError struct {
	// Op is the operator or function that failed.
	Op string
	// Err is the underlying error.
	Err error
}

func (err *OverflowError) Error() string {
	s := "number too large or invalid operation"
	if err.Op != "" {
		s += " in " + err.Op
	}
	if err.Err != nil {
		s += ": " + err.Err.Error()
	}
	return s
}

func (err *OverflowError) Unwrap() error {
	return err.Err
}
