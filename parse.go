package decicalc

import (
	"io"
	"strings"
)

// Expr = num | name | Call | Neg | Add | Sub | Mul | Div | Pow | '(' Expr ')'
// Call = funcname '(' Expr ')'
// Neg = '-' Primary
// Primary = num | name | Call | Neg | '(' Expr ')'
// Add = Expr '+' Expr
// Sub = Expr '-' Expr
// Mul = Expr '*' Expr | Expr Expr (implicit, see implies)
// Div = Expr '/' Expr
// Pow = Expr '^' Expr
//
// Every binary operator is left-associative. Negation applies to a single
// primary and so binds more tightly than exponentiation: -2^2 is (-2)^2.

// Expr is a parsed expression that can be evaluated with a context.
type Expr struct {
	// n is the root node of the expression.
	n *node
	// names is the list of variable names used in the expression.
	names []string
}

// ParseOption is an option for parsing.
type ParseOption interface {
	parseOption(parsectx) parsectx
}

// DepthOption is an option that applies both to parsing and to contexts,
// which use it when parsing through Evaluate.
type DepthOption interface {
	ParseOption
	ContextOption
}

type depthopt int

// DefaultMaxDepth is the nesting depth of parentheses, function calls, and
// negations allowed when no MaxDepth option is given.
const DefaultMaxDepth = 256

// MaxDepth sets the deepest nesting of parentheses, function calls, and
// negations that the parser accepts. Deeper expressions fail with a
// NestingError. A non-positive depth selects DefaultMaxDepth.
func MaxDepth(n int) DepthOption {
	return depthopt(n)
}

func (o depthopt) parseOption(p parsectx) parsectx {
	p.maxdepth = int(o)
	if p.maxdepth <= 0 {
		p.maxdepth = DefaultMaxDepth
	}
	return p
}

// parsectx holds general data for parsing.
type parsectx struct {
	// toks is the preprocessed token stream, ending in an EOF token.
	toks []lexToken
	// i is the index of the next token.
	i int
	// names is the set of variable names that have been seen this parse.
	names map[string]bool
	// depth is the current nesting depth, and maxdepth its limit.
	depth, maxdepth int
}

// next scans the next token. Past the end, it keeps returning EOF.
func (p *parsectx) next() lexToken {
	tok := p.toks[p.i]
	if p.i < len(p.toks)-1 {
		p.i++
	}
	return tok
}

// peek returns the next token without scanning it.
func (p *parsectx) peek() lexToken {
	return p.toks[p.i]
}

// enter increases the nesting depth.
func (p *parsectx) enter(tok lexToken) error {
	p.depth++
	if p.depth > p.maxdepth {
		return &NestingError{Col: tok.pos, Max: p.maxdepth}
	}
	return nil
}

func (p *parsectx) leave() {
	p.depth--
}

// Parse parses an expression so it can be evaluated with a context. The given
// options are applied in order.
func Parse(src io.RuneScanner, opts ...ParseOption) (*Expr, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := parsectx{
		toks:     toks,
		names:    make(map[string]bool),
		maxdepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		p = opt.parseOption(p)
	}
	n, err := parseterm(&p, exprprec)
	if err != nil {
		return nil, err
	}
	tok := p.next()
	if tok.kind != tokenEOF {
		return nil, itShouldNotHaveEndedThisWay(tok, false)
	}
	if n == nil {
		return nil, &EmptyExpressionError{Col: tok.pos}
	}
	ex := Expr{
		n:     n,
		names: make([]string, 0, len(p.names)),
	}
	for k := range p.names {
		ex.names = append(ex.names, k)
	}
	sortstrs(ex.names)
	return &ex, nil
}

// ParseString is a shortcut to parse a string expression.
func ParseString(src string, opts ...ParseOption) (*Expr, error) {
	return Parse(strings.NewReader(src), opts...)
}

// sortstrs sorts a string slice without using package sort because that has
// reflection and allocation problems.
func sortstrs(names []string) {
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j] < names[j-1]; j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
}

// parseterm parses operands joined by operators more binding than until. If
// the input is an empty subexpression, the result is nil with no error;
// callers must create an error in contexts where empty subexpressions are
// illegal.
func parseterm(p *parsectx, until operator) (*node, error) {
	n, err := parselhs(p)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, nil
	}
	for {
		tok := p.peek()
		switch tok.kind {
		case tokenOp:
			prec := binop(tok.text)
			if prec.op == nodeNone {
				return nil, &OperatorError{Col: tok.pos, Operator: tok.text}
			}
			if !prec.moreBinding(until) {
				return n, nil
			}
			p.next()
			rhs, err := parseterm(p, prec)
			if err != nil {
				return nil, err
			}
			if rhs == nil {
				return nil, &OperatorError{Col: tok.pos, Operator: tok.text}
			}
			n = &node{kind: prec.op, left: n, right: rhs}
		case tokenClose, tokenEOF:
			return n, nil
		default:
			// Two operands with nothing between them that implies
			// multiplication, e.g. a function name after a number's exponent.
			return nil, &OperatorError{Col: tok.pos, Operand: tok.text}
		}
	}
}

// parselhs parses a primary: a number, a name, a function call, a negation,
// or a parenthesized subexpression. At a close parenthesis or the end of the
// input, it scans nothing and returns nil.
func parselhs(p *parsectx) (*node, error) {
	tok := p.peek()
	switch tok.kind {
	case tokenClose, tokenEOF:
		return nil, nil
	}
	p.next()
	switch tok.kind {
	case tokenNum:
		return &node{kind: nodeNum, name: tok.text}, nil
	case tokenIdent:
		fn, ok := FuncNamed(tok.text)
		if !ok {
			p.names[tok.text] = true
			return &node{kind: nodeName, name: tok.text}, nil
		}
		return parsecall(p, tok, fn)
	case tokenNeg:
		if err := p.enter(tok); err != nil {
			return nil, err
		}
		defer p.leave()
		rhs, err := parselhs(p)
		if err != nil {
			return nil, err
		}
		if rhs == nil {
			return nil, &OperatorError{Col: tok.pos, Operator: tok.text, Unary: true}
		}
		return &node{kind: nodeNeg, left: rhs}, nil
	case tokenOpen:
		if err := p.enter(tok); err != nil {
			return nil, err
		}
		defer p.leave()
		rhs, err := parsegroup(p, tok)
		if err != nil {
			return nil, err
		}
		return &node{kind: nodeGroup, left: rhs}, nil
	case tokenOp:
		// Binary operator where an operand belongs, e.g. *2 or 2+*3.
		return nil, &OperatorError{Col: tok.pos, Operator: tok.text, Unary: true}
	default:
		panic("decicalc: unknown token: " + tok.String())
	}
}

// parsecall parses the parenthesized argument of a call to fn.
func parsecall(p *parsectx, name lexToken, fn Func) (*node, error) {
	open := p.next()
	if open.kind != tokenOpen {
		return nil, &CallError{Col: name.pos, Func: name.text}
	}
	if err := p.enter(open); err != nil {
		return nil, err
	}
	defer p.leave()
	arg, err := parsegroup(p, open)
	if err != nil {
		return nil, err
	}
	return &node{kind: nodeCall, name: name.text, fn: fn, left: arg}, nil
}

// parsegroup parses a subexpression after its open parenthesis through the
// matching close parenthesis.
func parsegroup(p *parsectx, open lexToken) (*node, error) {
	rhs, err := parseterm(p, exprprec)
	if err != nil {
		return nil, err
	}
	end := p.next()
	if end.kind != tokenClose {
		return nil, itShouldNotHaveEndedThisWay(end, true)
	}
	if rhs == nil {
		return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
	}
	return rhs, nil
}

// itShouldNotHaveEndedThisWay returns an error appropriate for an unexpected
// token at the end of a subexpression. open is whether the subexpression
// began with an open parenthesis.
func itShouldNotHaveEndedThisWay(tok lexToken, open bool) error {
	switch tok.kind {
	case tokenEOF:
		// Unexpected EOF implies an open bracket that was not closed.
		return &BracketError{Col: tok.pos, Left: "("}
	case tokenClose:
		if open {
			panic("decicalc: close parenthesis ended a parenthesized term badly")
		}
		return &BracketError{Col: tok.pos, Right: tok.text}
	default:
		panic("decicalc: it really should not have ended this way: " + tok.String())
	}
}

// Vars returns the variable names used when evaluating the expression.
func (e *Expr) Vars() []string {
	return append(([]string)(nil), e.names...)
}

// String creates a string representation of the parsed expression, with
// alternating round and square brackets grouping each term.
func (e *Expr) String() string {
	var b strings.Builder
	e.n.fmt(&b, false)
	return b.String()
}

// Text formats the expression the way it reads after preprocessing: no
// whitespace, explicit multiplications, and no unary plus.
func (e *Expr) Text() string {
	return e.n.infix()
}

type operator struct {
	// prec is the precedence tier. Higher is more binding.
	prec int8
	// right indicates right-associativity.
	right bool
	// op is the node kind to use when this operator is selected.
	op nodeKind
}

func (p operator) moreBinding(than operator) bool {
	if p.prec != than.prec {
		return p.prec > than.prec
	}
	return p.right
}

// binop gets a binary operator for a token string. If there is no such binary
// operator, then the result has an op of nodeNone.
func binop(text string) operator {
	switch text {
	case "+":
		return operator{2, false, nodeAdd}
	case "-":
		return operator{2, false, nodeSub}
	case "*":
		return operator{3, false, nodeMul}
	case "/":
		return operator{3, false, nodeDiv}
	case "^":
		return operator{4, false, nodePow}
	default:
		return operator{}
	}
}

// exprprec is the precedence required to parse an entire subexpression.
var exprprec = operator{-128, true, nodeNone}

