package decicalc

import (
	"errors"
	"io"
	"strings"
)

// normalize reads an expression, dropping ASCII whitespace and reading the
// multiplication aliases as *. cols gives, for each rune of the result, its
// 1-based column in src.
func normalize(src io.RuneScanner) (text []rune, cols []int, err error) {
	col := 0
	for {
		r, _, err := src.ReadRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return text, cols, nil
			}
			return nil, nil, err
		}
		col++
		switch {
		case r == ' ', r == '\t', r == '\n', r == '\r', r == '\v', r == '\f':
			continue
		case strings.ContainsRune(MulAliases, r):
			r = '*'
		}
		text = append(text, r)
		cols = append(cols, col)
	}
}

// tokenize runs the preprocessing passes in order: normalization, lexing,
// implicit multiplication, unary tagging, and the parenthesis balance check.
func tokenize(src io.RuneScanner) ([]lexToken, error) {
	text, cols, err := normalize(src)
	if err != nil {
		return nil, err
	}
	scan := lex(text, cols)
	var toks []lexToken
	for {
		tok, err := scan.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.kind == tokenEOF {
			break
		}
	}
	toks = implicitMul(toks)
	toks = tagUnary(toks)
	if err := balanced(toks); err != nil {
		return nil, err
	}
	return toks, nil
}

// implies reports whether juxtaposing a and b means multiplying them.
func implies(a, b lexToken) bool {
	switch a.kind {
	case tokenNum:
		return b.kind == tokenOpen || b.kind == tokenIdent
	case tokenClose:
		return b.kind == tokenNum || b.kind == tokenIdent || b.kind == tokenOpen
	case tokenIdent:
		if _, ok := FuncNamed(a.text); ok {
			// A function name followed by ( is a call. Anything else after a
			// function name is an error the parser reports.
			return false
		}
		return b.kind == tokenOpen || b.kind == tokenNum
	}
	return false
}

// implicitMul inserts an explicit * between each adjacent pair of tokens
// that implies multiplication. The inserted operator takes the position of
// the token after it.
func implicitMul(toks []lexToken) []lexToken {
	r := make([]lexToken, 0, len(toks))
	for i, tok := range toks {
		if i > 0 && implies(toks[i-1], tok) {
			r = append(r, lexToken{text: "*", kind: tokenOp, pos: tok.pos})
		}
		r = append(r, tok)
	}
	return r
}

// tagUnary marks each + or - that begins the expression, follows an open
// parenthesis, or follows another operator as unary. Unary + is dropped;
// unary - becomes a tokenNeg.
func tagUnary(toks []lexToken) []lexToken {
	r := make([]lexToken, 0, len(toks))
	for _, tok := range toks {
		if tok.kind == tokenOp && (tok.text == "+" || tok.text == "-") {
			unary := len(r) == 0
			if !unary {
				switch r[len(r)-1].kind {
				case tokenOpen, tokenOp, tokenNeg:
					unary = true
				}
			}
			if unary {
				if tok.text == "-" {
					r = append(r, lexToken{text: "-", kind: tokenNeg, pos: tok.pos})
				}
				continue
			}
		}
		r = append(r, tok)
	}
	return r
}

// balanced checks that open and close parentheses are equal in number.
func balanced(toks []lexToken) error {
	var open []lexToken
	extra := 0
	var first lexToken
	for _, tok := range toks {
		switch tok.kind {
		case tokenOpen:
			open = append(open, tok)
		case tokenClose:
			if len(open) == 0 {
				if extra == 0 {
					first = tok
				}
				extra++
				continue
			}
			open = open[:len(open)-1]
		}
	}
	switch {
	case len(open) > extra:
		return &BracketError{Col: open[len(open)-1].pos, Left: "("}
	case extra > len(open):
		return &BracketError{Col: first.pos, Right: ")"}
	}
	return nil
}
