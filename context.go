package decicalc

import (
	"strings"
	"unicode"
)

// Result is the outcome of evaluating an expression.
type Result struct {
	// Value is the canonical decimal result, or "inf". It is empty when Err
	// is not nil.
	Value string
	// Steps is the step log, if steps were requested and evaluation
	// succeeded.
	Steps []string
	// Err is the error that stopped evaluation, if any.
	Err error
}

// String returns the value or, if evaluation failed, "Error: " followed by
// the error message.
func (r Result) String() string {
	if r.Err != nil {
		return "Error: " + r.Err.Error()
	}
	return r.Value
}

// Evaluate parses and evaluates an expression. If showSteps is true, the
// result includes the log of each step taken. Every failure is reported
// through the Err field of the result, and a failure never changes the
// context's variables.
func (ctx *Context) Evaluate(src string, showSteps bool) Result {
	ctx.trace.reset(showSteps)
	e, err := ParseString(src, MaxDepth(ctx.depth))
	if err != nil {
		return Result{Err: err}
	}
	v, err := ctx.run(e)
	if err != nil {
		return Result{Err: err}
	}
	return Result{Value: v, Steps: ctx.trace.take()}
}

// Steps returns a copy of the step log of the last call to Evaluate.
func (ctx *Context) Steps() []string {
	return ctx.trace.take()
}

// Set sets the value of a variable from a decimal literal. If the name cannot
// be a variable or the value is not a decimal literal, the result is a
// *ValueError and the context is unchanged.
func (ctx *Context) Set(name, value string) error {
	if reason := checkName(name); reason != "" {
		return &ValueError{Name: name, Value: value, Reason: reason}
	}
	value = strings.TrimSpace(value)
	b, err := ParseBigNumber(value)
	if err != nil {
		return &ValueError{Name: name, Value: value, Reason: "not a decimal number"}
	}
	if ctx.names == nil {
		ctx.names = make(map[string]*number)
	}
	ctx.names[name] = ctx.fromBigNumber(b)
	return nil
}

// SetVariable sets a variable and returns a message describing the outcome:
// the confirmation from SetMessage, or "Error: " followed by the error.
func (ctx *Context) SetVariable(name, value string) string {
	if err := ctx.Set(name, value); err != nil {
		return "Error: " + err.Error()
	}
	v, _ := ctx.Lookup(name)
	return SetMessage(name, v)
}

// SetMessage formats the confirmation of setting a variable.
func SetMessage(name, value string) string {
	return "Variable '" + name + "' set to " + value
}

// checkName returns the reason name cannot be a variable, or the empty string
// if it can.
func checkName(name string) string {
	if name == "" {
		return "empty name"
	}
	for _, r := range name {
		if !unicode.IsLetter(r) {
			return "name must contain only letters"
		}
	}
	if _, ok := FuncNamed(name); ok {
		return "cannot assign to function " + name
	}
	if IsConstant(name) {
		return "cannot assign to constant " + name
	}
	if name == "inf" {
		return "cannot assign to inf"
	}
	return ""
}

// Lookup returns the canonical value of a variable or constant.
func (ctx *Context) Lookup(name string) (string, bool) {
	if IsConstant(name) {
		return new(number).SetDecimal(constant(name, ctx.prec)).String(), true
	}
	v := ctx.names[name]
	if v == nil {
		return "", false
	}
	return v.String(), true
}

// Vars returns the names of the variables set in the context in sorted order.
func (ctx *Context) Vars() []string {
	r := make([]string, 0, len(ctx.names))
	for k := range ctx.names {
		r = append(r, k)
	}
	sortstrs(r)
	return r
}

// ValueError is an error from setting a variable to an invalid value or
// setting a name that cannot be a variable.
type ValueError struct {
	// Name is the variable name.
	Name string
	// Value is the rejected value.
	Value string
	// Reason describes the problem.
	Reason string
}

func (err *ValueError) Error() string {
	return "invalid value for variable '" + err.Name + "': " + err.Reason
}
