package specparse

import "fmt"

// Kind represents the category of a spec token.
type Kind uint8

const (
	// Invalid indicates a fragment the lexer could not classify.
	Invalid Kind = iota
	// EOF marks the end of the input.
	EOF

	// Marker is the `//test` prefix of per-file spec lines.
	Marker

	// KwError is the 'error' behavior.
	KwError
	// KwRuns is the 'runs' behavior.
	KwRuns
	// KwInfloop is the 'infloop' behavior.
	KwInfloop
	// KwAbort is the 'abort' behavior.
	KwAbort
	// KwFailure is the 'failure' behavior.
	KwFailure
	// KwSegfault is the 'segfault' behavior.
	KwSegfault
	// KwDivByZero is the 'div-by-zero' behavior.
	KwDivByZero
	// KwReturn is the 'return' behavior, followed by Star or Number.
	KwReturn

	// KwLib is the 'lib' predicate.
	KwLib
	// KwTypecheck is the 'typecheck' predicate.
	KwTypecheck
	// KwGC is the 'gc' predicate.
	KwGC
	// KwSafe is the 'safe' predicate.
	KwSafe
	// KwFalse is the 'false' predicate.
	KwFalse
	// KwOr is the 'or' operator.
	KwOr

	// Ident is an implementation name.
	Ident
	// Number is a 32-bit signed integer literal.
	Number

	Star      // *
	Bang      // !
	Comma     // ,
	Semicolon // ;
	FatArrow  // =>
)

var kindNames = [...]string{
	Invalid:     "invalid",
	EOF:         "end of input",
	Marker:      "//test",
	KwError:     "error",
	KwRuns:      "runs",
	KwInfloop:   "infloop",
	KwAbort:     "abort",
	KwFailure:   "failure",
	KwSegfault:  "segfault",
	KwDivByZero: "div-by-zero",
	KwReturn:    "return",
	KwLib:       "lib",
	KwTypecheck: "typecheck",
	KwGC:        "gc",
	KwSafe:      "safe",
	KwFalse:     "false",
	KwOr:        "or",
	Ident:       "identifier",
	Number:      "number",
	Star:        "*",
	Bang:        "!",
	Comma:       ",",
	Semicolon:   ";",
	FatArrow:    "=>",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsBehavior reports whether a spec starting with this token is a behavior.
func (k Kind) IsBehavior() bool {
	switch k {
	case KwError, KwRuns, KwInfloop, KwAbort, KwFailure, KwSegfault, KwDivByZero, KwReturn:
		return true
	default:
		return false
	}
}

var keywords = map[string]Kind{
	"error":       KwError,
	"runs":        KwRuns,
	"infloop":     KwInfloop,
	"abort":       KwAbort,
	"failure":     KwFailure,
	"segfault":    KwSegfault,
	"div-by-zero": KwDivByZero,
	"return":      KwReturn,
	"lib":         KwLib,
	"typecheck":   KwTypecheck,
	"gc":          KwGC,
	"safe":        KwSafe,
	"false":       KwFalse,
	"or":          KwOr,
}

// Span is a half-open byte range into the parsed input.
type Span struct {
	Start int
	End   int
}

// String renders the span as 1-based columns.
func (s Span) String() string {
	if s.End <= s.Start+1 {
		return fmt.Sprintf("column %d", s.Start+1)
	}
	return fmt.Sprintf("columns %d-%d", s.Start+1, s.End)
}

// Token is a single lexed fragment of a spec string.
type Token struct {
	Kind  Kind
	Span  Span
	Text  string
	Value int32 // valid for Number
}
