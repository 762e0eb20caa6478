package decicalc

import (
	"errors"
	"strconv"
	"strings"
)

// ChunkSize is the maximum number of digits held by one BigNumber chunk.
const ChunkSize = 50

// BigNumber is a decimal number held as groups of digits. The digits of all
// chunks concatenated have no leading or trailing zeros, except that zero is
// the single digit "0".
type BigNumber struct {
	// Negative is the sign. Zero is never negative.
	Negative bool
	// Inf marks the saturated infinity value. Chunks and DecimalPos are
	// meaningless when it is set.
	Inf bool
	// Chunks are the digits, most significant first, at most ChunkSize
	// digits each.
	Chunks []string
	// DecimalPos is the number of digits that precede the decimal point.
	// A DecimalPos larger than the digit count means implied zeros before
	// the point; a DecimalPos of zero or less means -DecimalPos implied zeros
	// between the point and the first digit.
	DecimalPos int
}

// ParseBigNumber parses a decimal literal. The literal may have a sign, a
// fractional part, and an exponent introduced by e or E, e.g. "-1.5E-3".
// The words inf and infinity, in any case and with an optional sign, parse
// as the infinity value.
//
// An exponent beyond the range of an int32 saturates: a nonzero literal with
// such a positive exponent parses as the infinity value, and any literal with
// such a negative exponent parses as zero.
func ParseBigNumber(text string) (BigNumber, error) {
	var b BigNumber
	s := text
	if s != "" && (s[0] == '+' || s[0] == '-') {
		b.Negative = s[0] == '-'
		s = s[1:]
	}
	switch strings.ToLower(s) {
	case "inf", "infinity":
		b.Inf = true
		return b, nil
	}
	mant, exp, sat := s, 0, false
	if k := strings.IndexAny(s, "eE"); k >= 0 {
		mant = s[:k]
		x, err := parseExponent(s[k+1:])
		switch {
		case errors.Is(err, strconv.ErrRange):
			sat = true
		case err != nil:
			return BigNumber{}, &NumberError{Text: text}
		}
		exp = x
	}
	ip, fp := mant, ""
	if k := strings.IndexByte(mant, '.'); k >= 0 {
		ip, fp = mant[:k], mant[k+1:]
	}
	if ip == "" && fp == "" || !alldigits(ip) || !alldigits(fp) {
		return BigNumber{}, &NumberError{Text: text}
	}
	digits := ip + fp
	pos := len(ip) + exp
	trimmed := strings.TrimLeft(digits, "0")
	pos -= len(digits) - len(trimmed)
	digits = strings.TrimRight(trimmed, "0")
	if digits == "" || sat && exp < 0 {
		return BigNumber{Chunks: []string{"0"}, DecimalPos: 1}, nil
	}
	if sat {
		return BigNumber{Negative: b.Negative, Inf: true}, nil
	}
	b.Chunks = chunk(digits)
	b.DecimalPos = pos
	return b, nil
}

// parseExponent parses an optionally signed run of digits. If the value is
// outside the range of an int32, the error is strconv.ErrRange and the result
// is the nearest bound.
func parseExponent(s string) (int, error) {
	u := s
	if u != "" && (u[0] == '+' || u[0] == '-') {
		u = u[1:]
	}
	if u == "" || !alldigits(u) {
		return 0, strconv.ErrSyntax
	}
	x, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return int(x), strconv.ErrRange
	}
	return int(x), nil
}

func alldigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func chunk(digits string) []string {
	v := make([]string, 0, (len(digits)+ChunkSize-1)/ChunkSize)
	for len(digits) > ChunkSize {
		v = append(v, digits[:ChunkSize])
		digits = digits[ChunkSize:]
	}
	return append(v, digits)
}

// Digits returns the significant digits of b without a decimal point.
func (b BigNumber) Digits() string {
	return strings.Join(b.Chunks, "")
}

// IsZero reports whether b is zero.
func (b BigNumber) IsZero() bool {
	return !b.Inf && len(b.Chunks) == 1 && b.Chunks[0] == "0"
}

// String formats b canonically. The result never has an exponent. The
// infinity value formats as "inf" regardless of its sign.
func (b BigNumber) String() string {
	if b.Inf {
		return "inf"
	}
	digits := b.Digits()
	if digits == "" {
		return "0"
	}
	var s strings.Builder
	if b.Negative && !b.IsZero() {
		s.WriteByte('-')
	}
	switch {
	case b.DecimalPos >= len(digits):
		s.Grow(b.DecimalPos)
		s.WriteString(digits)
		s.WriteString(strings.Repeat("0", b.DecimalPos-len(digits)))
	case b.DecimalPos <= 0:
		s.Grow(2 - b.DecimalPos + len(digits))
		s.WriteString("0.")
		s.WriteString(strings.Repeat("0", -b.DecimalPos))
		s.WriteString(digits)
	default:
		s.WriteString(digits[:b.DecimalPos])
		s.WriteByte('.')
		s.WriteString(digits[b.DecimalPos:])
	}
	return s.String()
}

// NumberError is an error parsing a decimal literal.
type NumberError struct {
	// Text is the literal that failed to parse.
	Text string
}

func (err *NumberError) Error() string {
	return "invalid decimal literal " + strconv.Quote(err.Text)
}
