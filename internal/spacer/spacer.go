// Package spacer implements the letter-spacing text filter.
package spacer

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ErrEmpty is returned when transforming empty text.
var ErrEmpty = errors.New("text field is required")

// Result is the outcome of a transformation.
type Result struct {
	Original    string `json:"original"`
	Transformed string `json:"transformed"`
	// Length is the number of runes in Transformed.
	Length int `json:"length"`
}

// Transform spaces out text. Each space becomes five spaces, and every other
// rune becomes its upper case followed by two spaces.
func Transform(text string) (Result, error) {
	if text == "" {
		return Result{}, ErrEmpty
	}
	var b strings.Builder
	b.Grow(3 * len(text))
	for _, r := range text {
		if r == ' ' {
			b.WriteString("     ")
			continue
		}
		b.WriteString(strings.ToUpper(string(r)))
		b.WriteString("  ")
	}
	s := b.String()
	return Result{Original: text, Transformed: s, Length: utf8.RuneCountInString(s)}, nil
}
