package decicalc

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"testing"
)

// ungroup skips parenthesized groups.
func (n *node) ungroup() *node {
	for n != nil && n.kind == nodeGroup {
		n = n.left
	}
	return n
}

// diff finds the first in-order node of n that differs from m, or nil, nil if
// the two ASTs are equal, ignoring parentheses. If any node is nodeNone, it
// is returned.
func (n *node) diff(m *node) (*node, *node) {
	n, m = n.ungroup(), m.ungroup()
	if n == nil {
		if m != nil {
			return n, m
		}
		return nil, nil
	}
	if m == nil {
		return n, m
	}
	if n.kind == nodeNone || m.kind == nodeNone {
		return n, m
	}
	if n.kind != m.kind {
		return n, m
	}
	switch n.kind {
	case nodeNum, nodeName:
		if n.name != m.name {
			return n, m
		}
	case nodeCall:
		if n.name != m.name || n.fn != m.fn {
			return n, m
		}
		if d, e := n.left.diff(m.left); d != nil || e != nil {
			return d, e
		}
	case nodeNeg:
		if d, e := n.left.diff(m.left); d != nil || e != nil {
			return d, e
		}
	case nodeAdd, nodeSub, nodeMul, nodeDiv, nodePow:
		if d, e := n.left.diff(m.left); d != nil || e != nil {
			return d, e
		}
		if d, e := n.right.diff(m.right); d != nil || e != nil {
			return d, e
		}
	default:
		panic(fmt.Errorf("invalid node kind: n=%+v m=%+v", n, m))
	}
	return nil, nil
}

// haskind checks whether a parse tree contains a node of the given type.
func (n *node) haskind(k nodeKind) bool {
	if n == nil {
		return false
	}
	if n.kind == k {
		return true
	}
	if n.left.haskind(k) {
		return true
	}
	return n.right.haskind(k)
}

func TestOpPrecsExist(t *testing.T) {
	for _, r := range Operators {
		if b := binop(string(r)); b.op == nodeNone {
			t.Errorf("no operator for %c", r)
		}
	}
}

func TestOpPrecTiers(t *testing.T) {
	if !(binop("^").prec > binop("*").prec && binop("*").prec == binop("/").prec) {
		t.Error("^ should bind more tightly than * and /")
	}
	if !(binop("*").prec > binop("+").prec && binop("+").prec == binop("-").prec) {
		t.Error("* and / should bind more tightly than + and -")
	}
	for _, r := range Operators {
		if binop(string(r)).right {
			t.Errorf("%c should be left-associative", r)
		}
	}
}

func TestParseTrees(t *testing.T) {
	cases := []struct {
		name string
		a, b string
	}{
		{"paren", "(x)", "x"},
		{"multi", "((((x))))", "x"},

		{"plus", "+x", "x"},
		{"neg", "-x", "(-(x))"},
		{"negnum", "-1", "(-(1))"},
		{"add", "x+y", "((x)+(y))"},
		{"sub", "x-y", "((x)-(y))"},
		{"mul", "x*y", "((x)*(y))"},
		{"div", "x/y", "((x)/(y))"},
		{"pow", "x^y", "((x)^(y))"},
		{"altmul", "x×y", "x*y"},
		{"dotmul", "x·y", "x*y"},
		{"spaces", " x  *\ty ", "x*y"},
		{"numterms", "2x", "2*x"},
		{"termsnum", "x2", "x*2"},
		{"parenterms", "x(y)", "x*y"},
		{"parens", "(x)(y)", "x*y"},
		{"parennum", "(x)2", "x*2"},
		{"parenname", "(x)y", "x*y"},
		{"sciterms", "2e3x", "2e3*x"},
		{"chain", "2(3)(4)", "(2*3)*4"},

		{"add4", "w+x+y+z", "((w+x)+y)+z"},
		{"sub4", "w-x-y-z", "((w-x)-y)-z"},
		{"mul4", "w*x*y*z", "((w*x)*y)*z"},
		{"div4", "w/x/y/z", "((w/x)/y)/z"},
		{"pow4", "w^x^y^z", "((w^x)^y)^z"},
		{"subadd", "w-x+y", "(w-x)+y"},
		{"divmul", "w/x*y", "(w/x)*y"},

		{"negpow", "-x^y", "(-x)^y"},
		{"desc", "w^x*y+z", "((w^x)*y)+z"},
		{"asc", "w+x*y^z", "w+(x*(y^z))"},
		{"descasc", "w^x*y+z+a*b^c", "(((w^x)*y)+z)+(a*(b^c))"},
		{"negneg", "--x", "-(-x)"},
		{"negsub", "-x-x", "(-x)-x"},
		{"powparen", "x^y(z)", "(x^y)*z"},
		{"powneg", "x^-1", "x^(-1)"},
		{"pownegpow", "x^-y^-z", "(x^(-y))^(-z)"},
		{"pownegneg", "x^--y", "x^(-(-y))"},

		{"call", "sqrt(x)+1", "(sqrt(x))+1"},
		{"callmul", "2sqrt(x)", "2*sqrt(x)"},
		{"callpow", "sqrt(x)^2", "(sqrt(x))^2"},
		{"callneg", "-sqrt(x)", "-(sqrt(x))"},
		{"callcall", "abs(floor(x))", "abs((floor((x))))"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := ParseString(c.a)
			if err != nil {
				t.Fatalf("failed to parse %q: %v", c.a, err)
			}
			b, err := ParseString(c.b)
			if err != nil {
				t.Fatalf("failed to parse %q: %v", c.b, err)
			}
			d, e := a.n.diff(b.n)
			if d != nil || e != nil {
				t.Errorf("mismatched AST:\n\t%q parses %v has %v\n\t%q parses %v has %v", c.a, a.n, d, c.b, b.n, e)
			}
		})
	}
}

func TestParseExact(t *testing.T) {
	cases := []struct {
		name string
		src  string
		n    *node
	}{
		{
			name: "call",
			src:  "sqrt(x)",
			n: &node{
				kind: nodeCall,
				name: "sqrt",
				fn:   FuncSqrt,
				left: &node{
					kind: nodeName,
					name: "x",
				},
			},
		},
		{
			name: "log10",
			src:  "log10(100)",
			n: &node{
				kind: nodeCall,
				name: "log10",
				fn:   FuncLog10,
				left: &node{
					kind: nodeNum,
					name: "100",
				},
			},
		},
		{
			name: "negpow",
			src:  "-2^2",
			n: &node{
				kind: nodePow,
				left: &node{
					kind: nodeNeg,
					left: &node{
						kind: nodeNum,
						name: "2",
					},
				},
				right: &node{
					kind: nodeNum,
					name: "2",
				},
			},
		},
		{
			name: "inf",
			src:  "inf",
			n: &node{
				kind: nodeNum,
				name: "inf",
			},
		},
		{
			name: "sci",
			src:  "1.5E-3",
			n: &node{
				kind: nodeNum,
				name: "1.5E-3",
			},
		},
		{
			name: "joined",
			src:  "1 2",
			n: &node{
				kind: nodeNum,
				name: "12",
			},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := ParseString(c.src)
			if err != nil {
				t.Fatalf("%q failed to parse: %v", c.src, err)
			}
			d, e := a.n.diff(c.n)
			if d != nil || e != nil {
				t.Errorf("mismatched AST:\n\twant %v which has %v\n\tgot  %v which has %v from %q", c.n, e, a.n, d, c.src)
			}
		})
	}
}

func TestParseGroups(t *testing.T) {
	a, err := ParseString("2*(3+4)")
	if err != nil {
		t.Fatal(err)
	}
	if !a.n.haskind(nodeGroup) {
		t.Errorf("no group in %v", a.n)
	}
	a, err = ParseString("sqrt(3+4)")
	if err != nil {
		t.Fatal(err)
	}
	if a.n.haskind(nodeGroup) {
		t.Errorf("call argument parsed as a group in %v", a.n)
	}
}

func TestExprString(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"x", "(x)"},
		{"-x", "(-[x])"},
		{"x+y", "([x] + [y])"},
		{"(x)", "([x])"},
		{"sqrt(x)", "(sqrt[x])"},
		{"2*(3+4)", "([2] * [([3] + [4])])"},
		{"2^3^2", "([(2) ^ (3)] ^ [2])"},
	}
	for _, c := range cases {
		a, err := ParseString(c.src)
		if err != nil {
			t.Errorf("%q failed to parse: %v", c.src, err)
			continue
		}
		if got := a.String(); got != c.want {
			t.Errorf("%q formats as %q, want %q", c.src, got, c.want)
		}
	}
}

func TestExprText(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"2 * (3 + 4)", "2*(3+4)"},
		{"2x", "2*x"},
		{"+x", "x"},
		{"- x", "-x"},
		{"sin (x)", "sin(x)"},
		{"2×3·4", "2*3*4"},
		{"2--3", "2--3"},
		{"(1)(2)", "(1)*(2)"},
		{"1.5e3", "1.5e3"},
	}
	for _, c := range cases {
		a, err := ParseString(c.src)
		if err != nil {
			t.Errorf("%q failed to parse: %v", c.src, err)
			continue
		}
		if got := a.Text(); got != c.want {
			t.Errorf("%q has text %q, want %q", c.src, got, c.want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		err  InputError
		res  []string
		excl []string
	}{
		{"empty", "", new(EmptyExpressionError), []string{`(?i)\b(no|empty)\b.*\bexpression\b`}, []string{`(?i)\bend\b`}},
		{"spaces", "  \t", new(EmptyExpressionError), []string{`(?i)\b(no|empty)\b.*\bexpression\b`}, nil},
		{"emptyparen", "()", new(EmptyExpressionError), []string{`(?i)\b(no|empty)\b.*\bexpression\b`, `\)`}, nil},
		{"emptyterm", "x()", new(EmptyExpressionError), []string{`(?i)\b(no|empty)\b.*\bexpression\b`, `\)`}, nil},
		{"haskell", "(+)", new(EmptyExpressionError), []string{`\)`}, nil},
		{"emptyoperand", "x*", new(OperatorError), []string{`(?i)\bno right operand\b`, `\*`}, nil},
		{"trailing", "2+", new(OperatorError), []string{`(?i)\bno right operand\b`, `\+`}, nil},
		{"op-paren", "(b*)", new(OperatorError), []string{`(?i)\bno right operand\b`}, nil},
		{"double", "2*/3", new(OperatorError), []string{`(?i)\bunexpected operator\b`, `/`}, nil},
		{"leading", "*2", new(OperatorError), []string{`(?i)\bunexpected operator\b`, `\*`}, nil},
		{"powpow", "2^^3", new(OperatorError), []string{`(?i)\bunexpected operator\b`, `\^`}, nil},
		{"emptyunary", "x*-", new(OperatorError), []string{`(?i)\bunary minus\b`}, nil},
		{"minus", "-", new(OperatorError), []string{`(?i)\bunary minus\b`}, nil},
		{"left", "(x", new(BracketError), []string{`(?i)\bparenthes`, `\(`}, nil},
		{"right", "x)", new(BracketError), []string{`(?i)\bparenthes`, `\)`}, nil},
		{"backward", ")(", new(BracketError), []string{`(?i)\bparenthes`, `\)`}, nil},
		{"call-eof", "sin", new(CallError), []string{`\bsin\b`, `(?i)\bparenthesized\b`}, nil},
		{"call-bare", "sqrt 4", new(CallError), []string{`\bsqrt\b`}, nil},
		{"call-op", "log+1", new(CallError), []string{`\blog\b`}, nil},
		{"call-empty", "sqrt()", new(EmptyExpressionError), []string{`\)`}, nil},
		{"lexer", "2^exp(-$)", new(LexError), []string{`\$`}, nil},
		{"number", "1.2.3", new(LexError), []string{`1\.2\.`}, nil},
		{"nesting", strings.Repeat("(", DefaultMaxDepth+1) + "1" + strings.Repeat(")", DefaultMaxDepth+1), new(NestingError), []string{`(?i)\bnested\b`}, nil},
		{"nesting-neg", strings.Repeat("-", DefaultMaxDepth+1) + "1", new(NestingError), []string{`(?i)\bnested\b`}, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := ParseString(c.src)
			if a != nil {
				t.Errorf("%q parsed non-nil to %v", c.src, a.n)
			}
			if reflect.TypeOf(err) != reflect.TypeOf(c.err) {
				t.Errorf("wrong error type from %q: want %T, got %T", c.src, c.err, err)
			}
			if err == nil {
				return
			}
			msg := err.Error()
			for _, re := range c.res {
				if !regexp.MustCompile(re).MatchString(msg) {
					t.Errorf("error message %q does not match %s", msg, re)
				}
			}
			for _, re := range c.excl {
				if regexp.MustCompile(re).MatchString(msg) {
					t.Errorf("error message %q matches %s", msg, re)
				}
			}
		})
	}
}

func TestParseErrorPos(t *testing.T) {
	cases := []struct {
		src string
		pos int
	}{
		{"2 + $", 5},
		{"2*/3", 3},
		{"2 +", 3},
		{"1 + sin 2", 5},
		{"(()", 1},
	}
	for _, c := range cases {
		_, err := ParseString(c.src)
		ierr, ok := err.(InputError)
		if !ok {
			t.Errorf("%q: want InputError, got %#v", c.src, err)
			continue
		}
		if ierr.Pos() != c.pos {
			t.Errorf("%q: error at %d, want %d: %v", c.src, ierr.Pos(), c.pos, err)
		}
	}
}

func TestMaxDepth(t *testing.T) {
	if _, err := ParseString("((1))", MaxDepth(2)); err != nil {
		t.Errorf("depth 2 rejected at limit 2: %v", err)
	}
	_, err := ParseString("((1))", MaxDepth(1))
	nerr, ok := err.(*NestingError)
	if !ok {
		t.Fatalf("depth 2 at limit 1 gave %#v, not *NestingError", err)
	}
	if nerr.Col != 2 || nerr.Max != 1 {
		t.Errorf("wrong nesting error %+v", *nerr)
	}
	if _, err := ParseString("sqrt(-(1))", MaxDepth(2)); err == nil {
		t.Error("call, negation, and group should nest three deep")
	}
	if _, err := ParseString(strings.Repeat("(", 100)+"1"+strings.Repeat(")", 100), MaxDepth(0)); err != nil {
		t.Errorf("non-positive limit should use the default: %v", err)
	}
}

func TestVarsSorted(t *testing.T) {
	a, err := ParseString("z+y+x+w+v+u+t+s+r+q+p+o+n+m+l+k+j+i+h+g+f+d+c+b+a")
	if err != nil {
		t.Fatal(err)
	}
	want := strings.Fields("a b c d f g h i j k l m n o p q r s t u v w x y z")
	if got := a.Vars(); !reflect.DeepEqual(got, want) {
		t.Errorf("wrong variable names:\n\twant %q\n\tgot  %q", want, got)
	}
}
