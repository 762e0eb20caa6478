package decicalc

import (
	"errors"
	"strconv"
)

// OperatorError is an error indicating an operator in a position where it
// cannot apply, or two operands with no operator between them. It implements
// InputError.
type OperatorError struct {
	// Col is the position of the operator or operand.
	Col int
	// Operator is the operator token, if the error is about an operator.
	Operator string
	// Operand is the operand token, if the error is about a missing operator.
	Operand string
	// Unary is whether the parser expected an operand at the time.
	Unary bool
}

func (err *OperatorError) Error() string {
	switch {
	case err.Operand != "":
		return errpos(err.Col, "missing operator before "+strconv.Quote(err.Operand))
	case err.Unary && err.Operator == "-":
		return errpos(err.Col, "incomplete unary minus operation")
	case err.Unary:
		return errpos(err.Col, "unexpected operator "+strconv.Quote(err.Operator))
	default:
		return errpos(err.Col, "operator "+strconv.Quote(err.Operator)+" has no right operand")
	}
}

func (err *OperatorError) Pos() int {
	return err.Col
}

// BracketError is an error indicating mismatched parentheses in the
// input. It implements InputError.
type BracketError struct {
	// Col is the position of the unmatched parenthesis, or of the end of the
	// input if an open parenthesis was never closed.
	Col int
	// Left is the open parenthesis with no match.
	Left string
	// Right is the close parenthesis with no match.
	Right string
}

func (err *BracketError) Error() string {
	if err.Left == "" {
		return errpos(err.Col, "mismatched parentheses: close "+err.Right+" with no open")
	}
	return errpos(err.Col, "mismatched parentheses: open "+err.Left+" with no close")
}

func (err *BracketError) Pos() int {
	return err.Col
}

// CallError is an error indicating a function name that is not followed by
// a parenthesized argument. It implements InputError.
type CallError struct {
	// Col is the position of the function name.
	Col int
	// Func is the function name.
	Func string
}

func (err *CallError) Error() string {
	return errpos(err.Col, "function "+err.Func+" requires a parenthesized argument")
}

func (err *CallError) Pos() int {
	return err.Col
}

// EmptyExpressionError is an error indicating an empty subexpression.
type EmptyExpressionError struct {
	// Col is the position of the token that ended the subexpression.
	Col int
	// End is the token that ended the subexpression.
	End string
}

func (err *EmptyExpressionError) Error() string {
	if err.End == "" {
		if err.Col <= 1 {
			return errpos(err.Col, "no expression")
		}
		return errpos(err.Col, "no expression at end")
	}
	return errpos(err.Col, "no expression up to "+strconv.Quote(err.End))
}

func (err *EmptyExpressionError) Pos() int {
	return err.Col
}

// NestingError is an error indicating parentheses, calls, or negations
// nested too deeply. It implements InputError.
type NestingError struct {
	// Col is the position of the token that exceeded the limit.
	Col int
	// Max is the limit.
	Max int
}

func (err *NestingError) Error() string {
	return errpos(err.Col, "expression nested deeper than "+strconv.Itoa(err.Max))
}

func (err *NestingError) Pos() int {
	return err.Col
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

// InputError is an error with position information. Every error resulting from
// invalid input syntax implements InputError.
type InputError interface {
	error
	// Pos returns the 1-based column of the rune that starts the token that
	// caused the error.
	Pos() int
}

var (
	_ InputError = (*OperatorError)(nil)
	_ InputError = (*BracketError)(nil)
	_ InputError = (*CallError)(nil)
	_ InputError = (*EmptyExpressionError)(nil)
	_ InputError = (*NestingError)(nil)
	_ InputError = (*LexError)(nil)
)

// Class is a category of evaluation error.
type Class int8

const (
	ClassNone Class = iota
	ClassInvalidCharacter
	ClassInvalidOperatorSequence
	ClassMismatchedParentheses
	ClassDivisionByZero
	ClassComplexResult
	ClassDomain
	ClassExponentTooLarge
	ClassInvalidVariableValue
	ClassInternalOverflow
	ClassEmptyExpression
	ClassUndefinedName
	ClassCall
	ClassNesting
	ClassUnknown
)

var classNames = [...]string{
	ClassNone:                    "None",
	ClassInvalidCharacter:        "InvalidCharacter",
	ClassInvalidOperatorSequence: "InvalidOperatorSequence",
	ClassMismatchedParentheses:   "MismatchedParentheses",
	ClassDivisionByZero:          "DivisionByZero",
	ClassComplexResult:           "ComplexResult",
	ClassDomain:                  "DomainError",
	ClassExponentTooLarge:        "ExponentTooLarge",
	ClassInvalidVariableValue:    "InvalidVariableValue",
	ClassInternalOverflow:        "InternalOverflow",
	ClassEmptyExpression:         "EmptyExpression",
	ClassUndefinedName:           "UndefinedName",
	ClassCall:                    "Call",
	ClassNesting:                 "Nesting",
	ClassUnknown:                 "Unknown",
}

func (c Class) String() string {
	if c < 0 || int(c) >= len(classNames) {
		return "Class(" + strconv.Itoa(int(c)) + ")"
	}
	return classNames[c]
}

// ClassOf categorizes an error returned from parsing or evaluation. A nil
// error has ClassNone.
func ClassOf(err error) Class {
	if err == nil {
		return ClassNone
	}
	var (
		lex     *LexError
		op      *OperatorError
		bracket *BracketError
		empty   *EmptyExpressionError
		call    *CallError
		nest    *NestingError
		name    *NameError
		domain  DomainError
		expo    *ExponentError
		complx  *ComplexError
		value   *ValueError
		num     *NumberError
		over    *OverflowError
	)
	switch {
	case errors.Is(err, ErrDivisionByZero):
		return ClassDivisionByZero
	case errors.As(err, &lex):
		return ClassInvalidCharacter
	case errors.As(err, &op):
		return ClassInvalidOperatorSequence
	case errors.As(err, &bracket):
		return ClassMismatchedParentheses
	case errors.As(err, &empty):
		return ClassEmptyExpression
	case errors.As(err, &call):
		return ClassCall
	case errors.As(err, &nest):
		return ClassNesting
	case errors.As(err, &name):
		return ClassUndefinedName
	case errors.As(err, &domain):
		return ClassDomain
	case errors.As(err, &expo):
		return ClassExponentTooLarge
	case errors.As(err, &complx):
		return ClassComplexResult
	case errors.As(err, &value), errors.As(err, &num):
		return ClassInvalidVariableValue
	case errors.As(err, &over):
		return ClassInternalOverflow
	default:
		return ClassUnknown
	}
}
