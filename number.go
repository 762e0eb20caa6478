package decicalc

import (
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// Range of evaluated values. Magnitudes above 10^maxExponent saturate to
// infinity, and magnitudes with an adjusted exponent below minExponent flush
// to zero.
const (
	maxExponent = 1000000
	minExponent = -1000000
)

// MaxPrec is the largest precision a context uses. Larger Prec and FuncPrec
// options are reduced to it.
const MaxPrec = 10000

// materialLimit is the largest scale a number can have and still be handed to
// apd as a single decimal. apd bounds exponents to ±100000, and the mantissa
// carries up to MaxPrec digits of its own.
const materialLimit = 80000

// number is a decimal value m × 10^exp. apd alone cannot represent the full
// range of values, so the scale beyond the mantissa lives in exp.
//
// A finite nonzero number is normalized so that m has an adjusted exponent of
// zero, i.e. 1 <= |m| < 10. Zeros and infinities have exp zero.
type number struct {
	m   apd.Decimal
	exp int64
}

var (
	numberOne = number{m: *apd.New(1, 0)}
	// powLimit bounds the exponents computed directly for bases of magnitude
	// greater than one.
	powLimit = number{m: *apd.New(1, 0), exp: 4}
	// maxExpArg is the largest magnitude exp accepts.
	maxExpArg = number{m: *apd.New(1, 0), exp: 3}
)

// Set sets n to x and returns n.
func (n *number) Set(x *number) *number {
	n.m.Set(&x.m)
	n.exp = x.exp
	return n
}

// SetDecimal sets n to the value of d and returns n.
func (n *number) SetDecimal(d *apd.Decimal) *number {
	return n.setScaled(d, 0)
}

// setScaled sets n to d × 10^exp and returns n.
func (n *number) setScaled(d *apd.Decimal, exp int64) *number {
	n.m.Set(d)
	n.exp = exp
	return n.norm()
}

// Neg sets n to -x and returns n.
func (n *number) Neg(x *number) *number {
	n.m.Neg(&x.m)
	n.exp = x.exp
	return n
}

func (n *number) setInf(neg bool) {
	setInf(&n.m, neg)
	n.exp = 0
}

func (n *number) setZero() {
	n.m.SetInt64(0)
	n.exp = 0
}

// norm normalizes n and applies the range of evaluated values.
func (n *number) norm() *number {
	if n.m.Form != apd.Finite || n.m.IsZero() {
		n.exp = 0
		return n
	}
	adj := int64(n.m.Exponent) + n.m.NumDigits() - 1
	n.m.Exponent -= int32(adj)
	n.exp += adj
	switch {
	case n.exp > maxExponent:
		n.setInf(n.m.Negative)
	case n.exp == maxExponent:
		var a apd.Decimal
		if a.Abs(&n.m).Cmp(decimalOne) > 0 {
			n.setInf(n.m.Negative)
		}
	case n.exp < minExponent:
		n.setZero()
	}
	return n
}

// Sign returns -1, 0, or 1 according to the sign of n.
func (n *number) Sign() int {
	return n.m.Sign()
}

// IsZero reports whether n is zero.
func (n *number) IsZero() bool {
	return n.m.IsZero()
}

// finite reports whether n is neither infinite nor NaN.
func (n *number) finite() bool {
	return n.m.Form == apd.Finite
}

// decimal returns n as a single decimal. It returns false if the scale of n
// is beyond what apd can hold.
func (n *number) decimal() (*apd.Decimal, bool) {
	if n.exp > materialLimit || n.exp < -materialLimit {
		return nil, false
	}
	d := new(apd.Decimal).Set(&n.m)
	d.Exponent += int32(n.exp)
	return d, true
}

// isInt reports whether n is a finite integer.
func (n *number) isInt() bool {
	switch {
	case !n.finite():
		return false
	case n.IsZero():
		return true
	case n.exp < 0:
		return false
	case n.exp >= n.m.NumDigits():
		return true
	}
	d, _ := n.decimal()
	return isInt(d)
}

// oddInt reports whether n is an odd integer.
func (n *number) oddInt() bool {
	if !n.finite() || n.IsZero() || n.exp < 0 || n.exp >= n.m.NumDigits() {
		return false
	}
	d, _ := n.decimal()
	return oddInt(d)
}

// cmpAbs compares the magnitudes of x and y.
func cmpAbs(x, y *number) int {
	xi, yi := x.m.Form == apd.Infinite, y.m.Form == apd.Infinite
	xz, yz := !xi && x.IsZero(), !yi && y.IsZero()
	switch {
	case xi && yi, xz && yz:
		return 0
	case xi, yz:
		return 1
	case yi, xz:
		return -1
	case x.exp < y.exp:
		return -1
	case x.exp > y.exp:
		return 1
	}
	var a, b apd.Decimal
	a.Abs(&x.m)
	b.Abs(&y.m)
	return a.Cmp(&b)
}

// bigNumber converts n to its BigNumber form. NaN has no BigNumber form;
// callers must not pass one.
func (n *number) bigNumber() BigNumber {
	switch n.m.Form {
	case apd.Infinite:
		return BigNumber{Inf: true, Negative: n.m.Negative}
	case apd.NaN:
		panic("decicalc: BigNumber of NaN")
	}
	if n.IsZero() {
		return BigNumber{Chunks: []string{"0"}, DecimalPos: 1}
	}
	digits := n.m.Coeff.String()
	pos := int64(len(digits)) + int64(n.m.Exponent) + n.exp
	return BigNumber{
		Negative:   n.m.Negative,
		Chunks:     chunk(strings.TrimRight(digits, "0")),
		DecimalPos: int(pos),
	}
}

// String is the canonical text of n.
func (n *number) String() string {
	return n.bigNumber().String()
}

// fromBigNumber converts b to a number rounded to the context's precision.
func (ctx *Context) fromBigNumber(b BigNumber) *number {
	r := new(number)
	switch {
	case b.Inf:
		r.setInf(b.Negative)
		return r
	case b.IsZero():
		return r
	}
	digits := b.Digits()
	// Keep one digit past the precision and a sticky digit for the rest, so
	// that rounding sees the same thing as it would for the whole literal.
	if keep := int(ctx.prec) + 1; len(digits) > keep+1 {
		rest := strings.TrimRight(digits[keep:], "0")
		digits = digits[:keep]
		if rest != "" {
			digits += "1"
		}
	}
	var m apd.Decimal
	if _, ok := m.Coeff.SetString(digits, 10); !ok {
		panic("decicalc: invalid digits " + digits)
	}
	m.Exponent = -int32(len(digits) - 1)
	m.Negative = b.Negative
	if _, err := ctx.dc.Round(&r.m, &m); err != nil {
		panic("decicalc: rounding literal: " + err.Error())
	}
	r.exp = int64(b.DecimalPos) - 1
	return r.norm()
}
