package decicalc

import (
	"strings"
	"testing"

	"github.com/cockroachdb/apd/v3"
)

// text is the canonical text of a decimal.
func text(d *apd.Decimal) string {
	return new(number).SetDecimal(d).String()
}

const piDigits = "3.14159265358979323846264338327950288419716939937510582097494459230781640628620899862803482534211706798214808651328230664709384460955058223172535940812848111745028410270193852110555964462294895493038196"

func TestConstantDigits(t *testing.T) {
	for _, prec := range []uint32{5, 50, 100} {
		p := text(constant("pi", prec))
		// The last digit may round up.
		n := int(prec)
		if !strings.HasPrefix(piDigits, p[:n]) {
			t.Errorf("pi to %d digits is %s", prec, p)
		}
		if len(p) != n+1 {
			t.Errorf("pi to %d digits has length %d", prec, len(p))
		}
	}
	if e := text(constant("e", 30)); e != "2.71828182845904523536028747135" {
		t.Errorf("e to 30 digits is %s", e)
	}
	if tau := text(twoPi(20)); tau != "6.2831853071795864769" {
		t.Errorf("2pi to 20 digits is %s", tau)
	}
}

func TestConstantCached(t *testing.T) {
	a := constant("e", 40)
	b := constant("e", 40)
	if a != b {
		t.Error("constant recomputed at the same precision")
	}
	if c := constant("e", 41); c == a {
		t.Error("constant shared across precisions")
	}
}

func TestIsConstant(t *testing.T) {
	for _, name := range Constants() {
		if !IsConstant(name) {
			t.Errorf("%q is listed but not a constant", name)
		}
	}
	for _, name := range []string{"tau", "x", "E", "Pi", "inf"} {
		if IsConstant(name) {
			t.Errorf("%q is a constant", name)
		}
	}
}
