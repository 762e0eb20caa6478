package decicalc

import (
	"strconv"
	"strings"
)

// node is a node in the abstract syntax tree of an expression.
type node struct {
	kind nodeKind

	name string
	fn   Func

	left  *node
	right *node
}

type nodeKind int8

const (
	nodeNone nodeKind = iota

	nodeNum  // push num
	nodeName // push lookup(name)

	nodeCall  // name is the function name, fn is the Func, left is its argument
	nodeGroup // evaluate left, which was parenthesized

	nodeNeg // evaluate left, then negate
	nodeAdd // evaluate left, add right
	nodeSub // evaluate left, sub right
	nodeMul // evaluate left, mul right
	nodeDiv // evaluate left, div by right
	nodePow // evaluate left, exp by right
)

var nodeKindNames = [...]string{
	nodeNone:  "None",
	nodeNum:   "Num",
	nodeName:  "Name",
	nodeCall:  "Call",
	nodeGroup: "Group",
	nodeNeg:   "Neg",
	nodeAdd:   "Add",
	nodeSub:   "Sub",
	nodeMul:   "Mul",
	nodeDiv:   "Div",
	nodePow:   "Pow",
}

func (k nodeKind) String() string {
	if k < 0 || int(k) >= len(nodeKindNames) {
		return "nodeKind(" + strconv.Itoa(int(k)) + ")"
	}
	return nodeKindNames[k]
}

// symbol is the operator text of a binary node kind.
func (k nodeKind) symbol() string {
	switch k {
	case nodeAdd:
		return "+"
	case nodeSub:
		return "-"
	case nodeMul:
		return "*"
	case nodeDiv:
		return "/"
	case nodePow:
		return "^"
	default:
		return ""
	}
}

func (n *node) String() string {
	var b strings.Builder
	n.fmt(&b, false)
	return b.String()
}

func (n *node) fmt(b *strings.Builder, square bool) {
	var l, r byte = '(', ')'
	if square {
		l, r = '[', ']'
	}
	b.WriteByte(l)
	defer b.WriteByte(r)
	switch n.kind {
	case nodeNone:
		// Invalid nodes use invalid characters.
		b.WriteByte('$')
		if n.left != nil {
			n.left.fmt(b, square)
		}
		b.WriteByte('#')
		if n.right != nil {
			n.right.fmt(b, square)
		}
		b.WriteByte('$')
	case nodeNum, nodeName:
		b.WriteString(n.name)
	case nodeCall:
		b.WriteString(n.name)
		n.left.fmt(b, !square)
	case nodeGroup:
		// The brackets already group.
		n.left.fmt(b, !square)
	case nodeNeg:
		b.WriteByte('-')
		n.left.fmt(b, !square)
	case nodeAdd, nodeSub, nodeMul, nodeDiv, nodePow:
		n.left.fmt(b, !square)
		b.WriteByte(' ')
		b.WriteString(n.kind.symbol())
		b.WriteByte(' ')
		n.right.fmt(b, !square)
	default:
		panic("decicalc: invalid node kind " + n.kind.String() + " after writing " + b.String())
	}
}

// infix formats the subtree as compact infix text, parenthesized only where
// the source had parentheses.
func (n *node) infix() string {
	var b strings.Builder
	n.writeInfix(&b)
	return b.String()
}

func (n *node) writeInfix(b *strings.Builder) {
	switch n.kind {
	case nodeNum, nodeName:
		b.WriteString(n.name)
	case nodeCall:
		b.WriteString(n.name)
		b.WriteByte('(')
		n.left.writeInfix(b)
		b.WriteByte(')')
	case nodeGroup:
		b.WriteByte('(')
		n.left.writeInfix(b)
		b.WriteByte(')')
	case nodeNeg:
		b.WriteByte('-')
		n.left.writeInfix(b)
	case nodeAdd, nodeSub, nodeMul, nodeDiv, nodePow:
		n.left.writeInfix(b)
		b.WriteString(n.kind.symbol())
		n.right.writeInfix(b)
	default:
		panic("decicalc: invalid node kind " + n.kind.String())
	}
}
