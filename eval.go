package decicalc

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

const (
	// DefaultPrec is the number of significant digits to which arithmetic is
	// computed when no Prec option is given.
	DefaultPrec = 1000
	// DefaultFuncPrec is the number of significant digits to which log,
	// log10, exp, and fractional powers are computed when no FuncPrec option
	// is given.
	DefaultFuncPrec = 50
)

// Context is a context for evaluating expressions. It holds variables and the
// step log of the last evaluation. It is not safe to use a Context
// concurrently; use Clone to give each goroutine its own.
type Context struct {
	stack []*number
	nums  map[string]*number
	names map[string]*number
	// prec and fprec are the arithmetic and function precisions, and dc and
	// fc the decimal contexts using them.
	prec, fprec uint32
	dc, fc      *apd.Context
	// depth is the nesting limit for expressions parsed through Evaluate.
	depth int
	trace tracer
}

// ContextOption is an option used when creating a context.
type ContextOption interface {
	ctxOption()
}

type (
	varopt struct {
		name string
		val  string
	}
	varsopt  map[string]string
	precopt  uint32
	fprecopt uint32
)

func (varopt) ctxOption()   {}
func (varsopt) ctxOption()  {}
func (precopt) ctxOption()  {}
func (fprecopt) ctxOption() {}
func (depthopt) ctxOption() {}

// SetVar sets the value of a variable in the context. The value is a decimal
// literal. Creating a context with an invalid name or value panics; use Set to
// handle those as errors.
func SetVar(name, val string) ContextOption {
	return varopt{name, val}
}

// SetVars sets the values of any number of variables in the context.
func SetVars(vars map[string]string) ContextOption {
	return varsopt(vars)
}

// Prec sets the number of significant digits to which arithmetic is computed.
// Precisions above MaxPrec are reduced to it.
func Prec(prec uint32) ContextOption {
	return precopt(prec)
}

// FuncPrec sets the number of significant digits to which log, log10, exp,
// and fractional powers are computed.
func FuncPrec(prec uint32) ContextOption {
	return fprecopt(prec)
}

// NewContext creates a new evaluation context. If no precisions are given,
// the defaults are DefaultPrec and DefaultFuncPrec.
func NewContext(opts ...ContextOption) *Context {
	ctx := Context{
		nums:  make(map[string]*number),
		prec:  DefaultPrec,
		fprec: DefaultFuncPrec,
		depth: DefaultMaxDepth,
	}
	return ctx.Clone(opts...)
}

// decimalContext creates an arithmetic context. Overflow and underflow are
// not errors; the operations saturate or flush instead.
func decimalContext(prec uint32) *apd.Context {
	c := apd.BaseContext.WithPrecision(prec)
	c.Traps = apd.DefaultTraps &^ (apd.Overflow | apd.SystemOverflow | apd.Underflow | apd.SystemUnderflow | apd.Subnormal)
	c.Rounding = apd.RoundHalfEven
	return c
}

// Clone creates a copy of a context and applies options to it. The clone
// shares nothing mutable with ctx.
func (ctx *Context) Clone(opts ...ContextOption) *Context {
	n := Context{
		stack: make([]*number, 0, cap(ctx.stack)),
		nums:  make(map[string]*number, len(ctx.nums)),
		names: make(map[string]*number, len(ctx.names)),
		prec:  ctx.prec,
		fprec: ctx.fprec,
		depth: ctx.depth,
	}
	// First, check for precision settings. Loop backward so we apply the last
	// of each.
	var sawp, sawf bool
	for i := len(opts) - 1; i >= 0; i-- {
		switch p := opts[i].(type) {
		case precopt:
			if !sawp && p > 0 {
				n.prec, sawp = min(uint32(p), MaxPrec), true
			}
		case fprecopt:
			if !sawf && p > 0 {
				n.fprec, sawf = min(uint32(p), MaxPrec), true
			}
		}
	}
	n.dc = decimalContext(n.prec)
	n.fc = decimalContext(n.fprec)
	// Literals round to the precision, so they can only be reused at the
	// same precision.
	if n.prec == ctx.prec {
		for k, v := range ctx.nums {
			n.nums[k] = v
		}
	}
	// Variables are never modified in place, so the new context can share
	// them.
	for name, val := range ctx.names {
		n.names[name] = val
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt := opt.(type) {
		case varopt:
			if err := n.Set(opt.name, opt.val); err != nil {
				panic("decicalc: " + err.Error())
			}
		case varsopt:
			for k, v := range opt {
				if err := n.Set(k, v); err != nil {
					panic("decicalc: " + err.Error())
				}
			}
		case depthopt:
			n.depth = int(opt)
			if n.depth <= 0 {
				n.depth = DefaultMaxDepth
			}
		case precopt, fprecopt:
			// Already done. Do nothing.
		default:
			panic("decicalc: unknown option type")
		}
	}
	return &n
}

// Prec returns the number of significant digits to which arithmetic is
// computed in the context.
func (ctx *Context) Prec() uint32 {
	return ctx.prec
}

// FuncPrec returns the number of significant digits to which log, log10, exp,
// and fractional powers are computed in the context.
func (ctx *Context) FuncPrec() uint32 {
	return ctx.fprec
}

// Eval evaluates an expression and returns its value in canonical decimal
// form. Eval records no steps.
func (ctx *Context) Eval(e *Expr) (string, error) {
	ctx.trace.reset(false)
	return ctx.run(e)
}

// run evaluates an expression, converting any panic from the arithmetic into
// an OverflowError.
func (ctx *Context) run(e *Expr) (r string, err error) {
	if len(ctx.stack) != 0 {
		panic("decicalc: Eval during Eval")
	}
	defer func() {
		ctx.stack = ctx.stack[:0]
		p := recover()
		if p == nil {
			return
		}
		perr, ok := p.(error)
		if !ok {
			perr = fmt.Errorf("%v", p)
		}
		r, err = "", &OverflowError{Err: perr}
	}()
	ctx.trace.add("Evaluating: ", e.Text())
	if err := e.n.eval(ctx); err != nil {
		return "", err
	}
	if len(ctx.stack) != 1 {
		panic("decicalc: inconsistent stack: " + strconv.Itoa(len(ctx.stack)) + " items (bad AST?)")
	}
	v := ctx.top()
	if v.m.Form == apd.NaN {
		return "", &OverflowError{Err: fmt.Errorf("result is not a number")}
	}
	return v.String(), nil
}

// push ensures a settable value on the stack.
func (ctx *Context) push() *number {
	if len(ctx.stack) < cap(ctx.stack) {
		ctx.stack = ctx.stack[:len(ctx.stack)+1]
		if ctx.stack[len(ctx.stack)-1] == nil {
			ctx.stack[len(ctx.stack)-1] = new(number)
		}
	} else {
		ctx.stack = append(ctx.stack, new(number))
	}
	return ctx.stack[len(ctx.stack)-1]
}

// pop removes the top from the stack and returns it. The returned value may be
// modified by future node evaluations.
func (ctx *Context) pop() *number {
	r := ctx.stack[len(ctx.stack)-1]
	ctx.stack = ctx.stack[:len(ctx.stack)-1]
	return r
}

// top is a shortcut to get the top element of the stack.
func (ctx *Context) top() *number {
	return ctx.stack[len(ctx.stack)-1]
}

// num gets a possibly cached number from its literal text. The result must not
// be modified.
func (ctx *Context) num(s string) *number {
	if r := ctx.nums[s]; r != nil {
		return r
	}
	r := ctx.literal(s)
	ctx.nums[s] = r
	return r
}

// literal converts a decimal literal, rounded to the context's precision.
// Literals beyond the range of evaluated values saturate to infinity or flush
// to zero.
func (ctx *Context) literal(s string) *number {
	b, err := ParseBigNumber(s)
	if err != nil {
		// The lexer and Set only pass valid literals.
		panic("decicalc: " + err.Error())
	}
	return ctx.fromBigNumber(b)
}

// eval pushes the node's value to the context's stack.
func (n *node) eval(ctx *Context) error {
	switch n.kind {
	case nodeNum:
		ctx.push().Set(ctx.num(n.name))
	case nodeName:
		if IsConstant(n.name) {
			ctx.push().SetDecimal(constant(n.name, ctx.prec))
			return nil
		}
		v := ctx.names[n.name]
		if v == nil {
			return &NameError{Name: n.name}
		}
		ctx.push().Set(v)
		if ctx.trace.on {
			ctx.trace.add("Variable ", n.name, " = ", v.String())
		}
	case nodeCall:
		if err := n.left.eval(ctx); err != nil {
			return err
		}
		v := ctx.top()
		if ctx.trace.on {
			ctx.trace.add("Applying ", n.name, "(", v.String(), ")")
		}
		if err := n.fn.Call(ctx, v, v); err != nil {
			return err
		}
		if ctx.trace.on {
			ctx.trace.add("Result: ", v.String())
		}
	case nodeGroup:
		if ctx.trace.on {
			ctx.trace.add("Evaluating parentheses: ", n.left.infix())
		}
		if err := n.left.eval(ctx); err != nil {
			return err
		}
	case nodeNeg:
		if err := n.left.eval(ctx); err != nil {
			return err
		}
		v := ctx.top()
		if ctx.trace.on {
			ctx.trace.add("Evaluating: -", v.String())
		}
		v.Neg(v)
		if ctx.trace.on {
			ctx.trace.add("Result: ", v.String())
		}
	case nodeAdd, nodeSub, nodeMul, nodeDiv, nodePow:
		if err := n.left.eval(ctx); err != nil {
			return err
		}
		if err := n.right.eval(ctx); err != nil {
			return err
		}
		r := ctx.pop()
		l := ctx.top()
		if ctx.trace.on {
			ctx.trace.add("Evaluating: ", l.String(), " ", n.kind.symbol(), " ", r.String())
		}
		if err := ctx.binary(n.kind, l, l, r); err != nil {
			return err
		}
		if ctx.trace.on {
			ctx.trace.add("Result: ", l.String())
		}
	default:
		panic("decicalc: invalid AST node " + n.kind.String())
	}
	return nil
}

// Eval is a shortcut to parse an expression and return its result in a new
// context.
func Eval(src io.RuneScanner, opts ...ContextOption) (string, error) {
	ctx := NewContext(opts...)
	a, err := Parse(src, MaxDepth(ctx.depth))
	if err != nil {
		return "", err
	}
	return ctx.Eval(a)
}

// EvalString is a shortcut to parse and evaluate a string expression.
func EvalString(src string, opts ...ContextOption) (string, error) {
	return Eval(strings.NewReader(src), opts...)
}

// NameError is an error from a lookup for a variable that is missing from the
// evaluation context.
type NameError struct {
	// Name is the name that was missing.
	Name string
}

func (err *NameError) Error() string {
	return "undefined variable: " + strconv.Quote(err.Name)
}
