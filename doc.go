// Package decicalc implements an arbitrary-precision decimal calculator.
//
// Expressions are written the way you'd write them in your notes. Spaces are
// ignored, so "1 000" is a thousand. "2x", "2(x)", and "(2)(x)" all multiply,
// as do "×" and "·". Letters always join into one name, so "x y" is the
// variable xy rather than a product. Every binary operator is
// left-associative: "2^3^2" is 64. Negation binds more tightly than any
// binary operator: "-2^2" is 4.
//
// Arithmetic is decimal, to DefaultPrec significant digits unless the Prec
// option says otherwise, so "0.1+0.2" is exactly 0.3. Results of magnitude
// above 10^1000000 saturate to "inf" rather than failing, and results below
// 10^-1000000 flush to zero. A base of magnitude above one raised to a power
// of magnitude above 10000 saturates without being computed. Results are
// always written in positional notation without an exponent or trailing
// zeros.
//
// The functions sin, cos, tan, sqrt, log (natural), log10, exp, abs, floor,
// ceil, and round take one parenthesized argument. The constants pi and e are
// computed to the working precision.
//
// A Context holds variables and the step log of its last evaluation.
// Evaluate is the usual entry point; Parse and Eval separate parsing from
// evaluation for expressions evaluated many times.
package decicalc
