package decicalc

import (
	"math"
	"math/big"
	"sync"

	"github.com/cockroachdb/apd/v3"
	"github.com/zephyrtronium/bigfloat"
)

// Constants returns the names of the predefined constants.
func Constants() []string {
	return []string{"e", "pi"}
}

// IsConstant reports whether name is a predefined constant. Constants cannot
// be assigned.
func IsConstant(name string) bool {
	return name == "e" || name == "pi"
}

type constkey struct {
	name string
	prec uint32
}

// consts caches constants by precision. Entries are never modified.
var consts struct {
	mu sync.Mutex
	m  map[constkey]*apd.Decimal
}

// constant computes a constant to prec significant digits. The result is
// shared and must not be modified.
func constant(name string, prec uint32) *apd.Decimal {
	k := constkey{name, prec}
	consts.mu.Lock()
	defer consts.mu.Unlock()
	if d := consts.m[k]; d != nil {
		return d
	}
	bits := uint(math.Ceil(float64(prec)*math.Log2(10))) + 64
	f := new(big.Float).SetPrec(bits)
	switch name {
	case "pi":
		bigfloat.Pi(f)
	case "e":
		one := new(big.Float).SetPrec(bits).SetInt64(1)
		bigfloat.Exp(f, one)
	case "tau":
		bigfloat.Pi(f)
		f.SetMantExp(f, 1)
	default:
		panic("decicalc: unknown constant " + name)
	}
	d, _, err := apd.BaseContext.WithPrecision(prec).SetString(new(apd.Decimal), f.Text('g', int(prec)+5))
	if err != nil {
		panic("decicalc: constant " + name + " did not convert: " + err.Error())
	}
	if consts.m == nil {
		consts.m = make(map[constkey]*apd.Decimal)
	}
	consts.m[k] = d
	return d
}

// twoPi is 2π to prec digits.
func twoPi(prec uint32) *apd.Decimal {
	return constant("tau", prec)
}
