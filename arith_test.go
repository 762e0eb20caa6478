package decicalc

import (
	"errors"
	"strings"
	"testing"

	"github.com/cockroachdb/apd/v3"
)

func dec(t *testing.T, s string) *apd.Decimal {
	t.Helper()
	d, _, err := apd.NewFromString(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func zeros(n int) string {
	return strings.Repeat("0", n)
}

func TestBinary(t *testing.T) {
	cases := []struct {
		op   nodeKind
		x, y string
		want string
	}{
		{nodeAdd, "1", "2", "3"},
		{nodeAdd, "0.1", "0.2", "0.3"},
		{nodeAdd, "1e19", "1", "10000000000000000001"},
		{nodeAdd, "1e500000", "1", "1" + zeros(500000)},
		{nodeAdd, "1.5e500000", "-1e500000", "5" + zeros(499999)},
		{nodeAdd, "0", "1e-500000", "0." + zeros(499999) + "1"},
		{nodeSub, "1", "2", "-1"},
		{nodeSub, "1e-500000", "1e-500001", "0." + zeros(499999) + "09"},
		{nodeMul, "-3", "4", "-12"},
		{nodeMul, "9e99999", "9e99999", "81" + zeros(199998)},
		{nodeMul, "-9e99999", "9e99999", "-81" + zeros(199998)},
		{nodeMul, "1e99999", "100", "1" + zeros(100001)},
		{nodeMul, "1e600000", "1e400000", "1" + zeros(1000000)},
		{nodeMul, "1e600000", "1.1e400000", "inf"},
		{nodeMul, "1e600000", "1e400001", "inf"},
		{nodeMul, "1e-600000", "1e-400000", "0." + zeros(999999) + "1"},
		{nodeMul, "1e-600000", "1e-400001", "0"},
		{nodeDiv, "1", "8", "0.125"},
		{nodeDiv, "-1", "inf", "0"},
		{nodeDiv, "1e-99999", "1e99999", "0." + zeros(199997) + "1"},
		{nodeDiv, "1e600000", "1e-400001", "inf"},
		{nodePow, "2", "10", "1024"},
		{nodePow, "-2", "3", "-8"},
		{nodePow, "-2", "2", "4"},
		{nodePow, "4", "0.5", "2"},
		{nodePow, "10", "-2", "0.01"},
		{nodePow, "1", "1e9", "1"},
		{nodePow, "0.5", "1e9", "0"},
		{nodePow, "0.1", "200000", "0." + zeros(199999) + "1"},
		{nodePow, "1e50000", "3", "1" + zeros(150000)},
		{nodePow, "1e50000", "2.5", "1" + zeros(125000)},
		{nodePow, "1e-300000", "3", "0." + zeros(899999) + "1"},
		{nodePow, "1e-300000", "4", "0"},
		{nodePow, "1e300000", "4", "inf"},
		{nodePow, "2", "10001", "inf"},
		{nodePow, "-2", "10001", "inf"},
		{nodePow, "2", "-10001", "inf"},
		{nodePow, "-2", "inf", "inf"},
		{nodePow, "0.5", "inf", "0"},
		{nodePow, "0.5", "-inf", "inf"},
		{nodePow, "1", "inf", "1"},
		{nodeAdd, "inf", "-5", "inf"},
	}
	ctx := NewContext(Prec(20), FuncPrec(20))
	for _, c := range cases {
		x, y := ctx.literal(c.x), ctx.literal(c.y)
		var d number
		if err := ctx.binary(c.op, &d, x, y); err != nil {
			t.Errorf("%s %s %s: %v", c.x, c.op.symbol(), c.y, err)
			continue
		}
		if got := d.String(); got != c.want {
			t.Errorf("%s %s %s: want %.40s (%d bytes), got %.40s (%d bytes)", c.x, c.op.symbol(), c.y, c.want, len(c.want), got, len(got))
		}
	}
}

func TestBinaryAliased(t *testing.T) {
	ctx := NewContext(Prec(20), FuncPrec(20))
	x := ctx.literal("3e499999")
	d := new(number).Set(x)
	if err := ctx.binary(nodeMul, d, d, d); err != nil {
		t.Fatal(err)
	}
	if got, want := d.String(), "9"+zeros(999998); got != want {
		t.Errorf("want 9e999998, got %.40s (%d bytes)", got, len(got))
	}
	if got := x.String(); got != "3"+zeros(499999) {
		t.Errorf("operand changed to %.40s", got)
	}
}

func TestOverflowSign(t *testing.T) {
	ctx := NewContext(Prec(20))
	var d number
	if err := ctx.binary(nodeMul, &d, ctx.literal("-9e999999"), ctx.literal("9e999999")); err != nil {
		t.Fatal(err)
	}
	if d.m.Form != apd.Infinite || !d.m.Negative {
		t.Errorf("want -inf, got %v", &d.m)
	}
	if err := ctx.binary(nodePow, &d, ctx.literal("-3"), ctx.literal("20001")); err != nil {
		t.Fatal(err)
	}
	if d.m.Form != apd.Infinite || !d.m.Negative {
		t.Errorf("want -inf for odd power, got %v", &d.m)
	}
	if err := ctx.binary(nodePow, &d, ctx.literal("-3"), ctx.literal("20000")); err != nil {
		t.Fatal(err)
	}
	if d.m.Form != apd.Infinite || d.m.Negative {
		t.Errorf("want +inf for even power, got %v", &d.m)
	}
}

func TestBinaryErrors(t *testing.T) {
	cases := []struct {
		op   nodeKind
		x, y string
		err  interface{}
	}{
		{nodeDiv, "1", "0", nil},
		{nodeDiv, "0", "0", nil},
		{nodeDiv, "1e600000", "0", nil},
		{nodePow, "0", "-2", nil},
		{nodePow, "0", "-inf", nil},
		{nodePow, "-8", "0.5", new(*ComplexError)},
		{nodePow, "-0.5", "inf", new(*ComplexError)},
		{nodePow, "-2", "10000.5", new(*ComplexError)},
		{nodePow, "-2", "-10000.5", new(*ComplexError)},
		{nodePow, "-1e500000", "0.5", new(*ComplexError)},
		{nodeSub, "inf", "inf", new(*OverflowError)},
		{nodeMul, "0", "inf", new(*OverflowError)},
		{nodePow, "0", "0", new(*OverflowError)},
	}
	ctx := NewContext(Prec(20))
	for _, c := range cases {
		var d number
		err := ctx.binary(c.op, &d, ctx.literal(c.x), ctx.literal(c.y))
		if c.err == nil {
			if !errors.Is(err, ErrDivisionByZero) {
				t.Errorf("%s %s %s: want ErrDivisionByZero, got %v", c.x, c.op.symbol(), c.y, err)
			}
			continue
		}
		if !errors.As(err, c.err) {
			t.Errorf("%s %s %s: want %T, got %#v", c.x, c.op.symbol(), c.y, c.err, err)
		}
	}
}

func TestIntegers(t *testing.T) {
	cases := []struct {
		x        string
		int, odd bool
	}{
		{"0", true, false},
		{"1", true, true},
		{"-3", true, true},
		{"4.000", true, false},
		{"1e3", true, false},
		{"2.5", false, false},
		{"-0.1", false, false},
		{"inf", false, false},
	}
	for _, c := range cases {
		x := dec(t, c.x)
		if got := isInt(x); got != c.int {
			t.Errorf("isInt(%s): want %t, got %t", c.x, c.int, got)
		}
		if got := oddInt(x); got != c.odd {
			t.Errorf("oddInt(%s): want %t, got %t", c.x, c.odd, got)
		}
	}
}

func TestOverflowErrorMessage(t *testing.T) {
	err := &OverflowError{Op: "-", Err: errors.New("invalid operation")}
	if msg := err.Error(); msg != "number too large or invalid operation in -: invalid operation" {
		t.Errorf("wrong message %q", msg)
	}
	if !errors.Is(err, err.Err) {
		t.Error("OverflowError does not unwrap")
	}
	cerr := &ComplexError{Base: "-8", Exp: "0.5"}
	if msg := cerr.Error(); msg != "negative base raised to fractional exponent results in complex number: (-8)^(0.5)" {
		t.Errorf("wrong message %q", msg)
	}
}
