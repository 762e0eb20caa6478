//go:build go1.18

package decicalc_test

import (
	"testing"

	"github.com/zephyrtronium/decicalc"
)

func FuzzEval(f *testing.F) {
	f.Add("x")
	f.Add("y")
	f.Add("1×2")
	f.Add("2(3+4)^-x")
	f.Add("sqrt(x)/log10(1e5)")
	f.Fuzz(func(t *testing.T, s string) {
		ctx := decicalc.NewContext(decicalc.Prec(30), decicalc.FuncPrec(10), decicalc.SetVar("x", "0"))
		r := ctx.Evaluate(s, true)
		if r.Err != nil {
			if decicalc.ClassOf(r.Err) == decicalc.ClassUnknown {
				t.Errorf("unclassified error from %q: %v", s, r.Err)
			}
			if r.Steps != nil {
				t.Errorf("steps with error from %q", s)
			}
			return
		}
		b, err := decicalc.ParseBigNumber(r.Value)
		if err != nil {
			t.Fatalf("%q gave unparseable result %q: %v", s, r.Value, err)
		}
		if b.String() != r.Value {
			t.Errorf("%q gave non-canonical result %q, canonically %q", s, r.Value, b.String())
		}
	})
}
