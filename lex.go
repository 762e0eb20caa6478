package decicalc

import (
	"strconv"
	"strings"
	"unicode"
)

type lexToken struct {
	text string
	kind tokenKind
	pos  int
}

func (t lexToken) String() string {
	return t.kind.String() + ":" + t.text + "@" + strconv.Itoa(t.pos)
}

type tokenKind int

const (
	tokenNone tokenKind = iota
	// tokenEOF indicates the end of the input.
	tokenEOF
	// tokenNum is a decimal literal, possibly with an exponent, or inf.
	tokenNum
	// tokenIdent is a variable, constant, or function name.
	tokenIdent
	// tokenOp is a binary operator.
	tokenOp
	// tokenNeg is a unary minus. The lexer never produces it; the unary
	// tagging pass rewrites operator tokens to it.
	tokenNeg
	// tokenOpen is an open parenthesis.
	tokenOpen
	// tokenClose is a close parenthesis.
	tokenClose
)

var tokenKindNames = [...]string{
	tokenNone:  "None",
	tokenEOF:   "EOF",
	tokenNum:   "Num",
	tokenIdent: "Ident",
	tokenOp:    "Op",
	tokenNeg:   "Neg",
	tokenOpen:  "Open",
	tokenClose: "Close",
}

func (k tokenKind) String() string {
	if k < 0 || int(k) >= len(tokenKindNames) {
		return "tokenKind(" + strconv.Itoa(int(k)) + ")"
	}
	return tokenKindNames[k]
}

// Operators contains the runes which are considered to be operators.
const Operators = "+-*/^"

// MulAliases contains the runes which are read as the * operator.
const MulAliases = "×·"

// lexer scans a normalized expression. cols maps each rune index of src to
// its column in the text the caller originally gave.
type lexer struct {
	src  []rune
	cols []int
	i    int
}

func lex(src []rune, cols []int) *lexer {
	return &lexer{src: src, cols: cols}
}

// col gives the source column of rune index i.
func (l *lexer) col(i int) int {
	if i < len(l.cols) {
		return l.cols[i]
	}
	if len(l.cols) == 0 {
		return 1
	}
	return l.cols[len(l.cols)-1] + 1
}

func (l *lexer) peekRune(k int) rune {
	if l.i+k >= len(l.src) {
		return -1
	}
	return l.src[l.i+k]
}

// next scans the next token. At the end of input, the result is an EOF
// token.
func (l *lexer) next() (lexToken, error) {
	tok := lexToken{pos: l.col(l.i)}
	if l.i >= len(l.src) {
		tok.kind = tokenEOF
		return tok, nil
	}
	r := l.src[l.i]
	switch {
	case isDigit(r), r == '.':
		start := l.i
		if err := l.scanNum(); err != nil {
			return tok, err
		}
		tok.text = string(l.src[start:l.i])
		tok.kind = tokenNum
	case unicode.IsLetter(r):
		tok.text = l.scanIdent()
		// inf looks like an identifier, so check for it here.
		if tok.text == "inf" {
			tok.kind = tokenNum
		} else {
			tok.kind = tokenIdent
		}
	case strings.ContainsRune(Operators, r):
		l.i++
		tok.text = string(r)
		tok.kind = tokenOp
	case r == '(':
		l.i++
		tok.text = "("
		tok.kind = tokenOpen
	case r == ')':
		l.i++
		tok.text = ")"
		tok.kind = tokenClose
	default:
		return tok, &LexError{Text: string(r), Col: tok.pos}
	}
	return tok, nil
}

// scanNum scans a decimal literal with an optional exponent. An e or E only
// begins an exponent when digits follow it, optionally after a sign, so 2e
// is 2 followed by the name e.
func (l *lexer) scanNum() error {
	start := l.i
	var dig, dot bool
scan:
	for l.i < len(l.src) {
		r := l.src[l.i]
		switch {
		case isDigit(r):
			dig = true
		case r == '.':
			if dot {
				l.i++
				return l.error(start, "number")
			}
			dot = true
		default:
			break scan
		}
		l.i++
	}
	if !dig {
		return l.error(start, "number")
	}
	if r := l.peekRune(0); r != 'e' && r != 'E' {
		return nil
	}
	k := 1
	if r := l.peekRune(1); r == '+' || r == '-' {
		k = 2
	}
	if !isDigit(l.peekRune(k)) {
		return nil
	}
	l.i += k
	for l.i < len(l.src) && isDigit(l.src[l.i]) {
		l.i++
	}
	return nil
}

// scanIdent scans a run of letters. Digits following the letters belong to
// the identifier only if together they name a function, as in log10.
func (l *lexer) scanIdent() string {
	start := l.i
	for l.i < len(l.src) && unicode.IsLetter(l.src[l.i]) {
		l.i++
	}
	end := l.i
	for end < len(l.src) && isDigit(l.src[end]) {
		end++
	}
	if end > l.i {
		if _, ok := FuncNamed(string(l.src[start:end])); ok {
			l.i = end
		}
	}
	return string(l.src[start:l.i])
}

func (l *lexer) error(start int, kind string) error {
	return &LexError{
		Text: string(l.src[start:l.i]),
		Kind: kind,
		Col:  l.col(start),
	}
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

// LexError indicates an invalid character or malformed number. It
// implements InputError.
type LexError struct {
	// Text is the invalid character, or the malformed token up to and
	// including the rune that made it invalid.
	Text string
	// Kind is the type of token the lexer was scanning. This is "number" or
	// the empty string if the rune could not begin any token.
	Kind string
	// Col is the column at which the token begins.
	Col int
}

func (err *LexError) Error() string {
	pos := "column " + strconv.Itoa(err.Col)
	if err.Kind == "" {
		return "invalid character " + strconv.Quote(err.Text) + " at " + pos
	}
	return "invalid " + err.Kind + " token at " + pos + ": " + err.Text
}

func (err *LexError) Pos() int {
	return err.Col
}
