// Package specparse parses the spec language attached to test programs.
//
//	specs     ::= spec (';' spec)*
//	spec      ::= predicate '=>' spec | behavior
//	predicate ::= lib | typecheck | gc | safe | false | <ident>
//	            | '!' predicate | predicate ',' predicate | predicate 'or' predicate
//	behavior  ::= error | runs | infloop | abort | failure | segfault
//	            | div-by-zero | return '*' | return <int>
//
// Predicates are parsed with binding powers: '!' binds tightest, then ','
// (and), then 'or'.
package specparse

import (
	"strings"

	"c0check/internal/spec"
)

// Options controls how a spec string is parsed.
type Options struct {
	// RequireMarker demands `//test` at the start of the input. When unset a
	// leading marker is still accepted and ignored.
	RequireMarker bool
}

// Parse parses a complete spec string.
// It returns ErrNotSpec for empty input or input without a required marker,
// and a *ParseError for malformed specs.
func Parse(input string, opts Options) (spec.Specs, error) {
	p := newParser(input)
	return p.parse(opts)
}

// ParseManifestLine splits a manifest line of the form `<spec>~<command>`
// and parses the spec part. The command is returned untrimmed.
func ParseManifestLine(line string) (spec.Specs, string, error) {
	idx := strings.IndexByte(line, '~')
	if idx < 0 {
		if strings.TrimSpace(line) == "" {
			return nil, "", ErrNotSpec
		}
		return nil, "", &ParseError{
			Fragment: "",
			Span:     Span{Start: len(line), End: len(line)},
			Expected: "'~' between the spec and the command line",
		}
	}
	specs, err := Parse(line[:idx], Options{})
	if err != nil {
		return nil, "", err
	}
	return specs, line[idx+1:], nil
}

type parser struct {
	input string
	toks  []Token
	pos   int
}

func newParser(input string) *parser {
	return &parser{input: input, toks: NewLexer(input).All()}
}

func (p *parser) peek() Token { return p.toks[p.pos] }

func (p *parser) next() Token {
	tok := p.toks[p.pos]
	if tok.Kind != EOF {
		p.pos++
	}
	return tok
}

func (p *parser) parse(opts Options) (spec.Specs, error) {
	first := p.peek()
	if first.Kind == EOF {
		return nil, ErrNotSpec
	}
	if first.Kind == Marker {
		p.next()
	} else if opts.RequireMarker {
		return nil, ErrNotSpec
	}

	var specs spec.Specs
	for {
		s, err := p.parseSpec()
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)

		tok := p.next()
		switch tok.Kind {
		case Semicolon:
		case EOF:
			return specs, nil
		default:
			return nil, p.unexpected(tok, "';' to separate tests")
		}
	}
}

func (p *parser) parseSpec() (spec.Spec, error) {
	if p.peek().Kind.IsBehavior() {
		return p.parseBehavior()
	}

	pred, err := p.parsePredicate(0)
	if err != nil {
		return nil, err
	}
	if tok := p.next(); tok.Kind != FatArrow {
		return nil, p.unexpected(tok, "'=>' between implementation and behavior")
	}
	then, err := p.parseSpec()
	if err != nil {
		return nil, err
	}
	return spec.Implication{Predicate: pred, Then: then}, nil
}

func infixBindingPower(kind Kind) (left, right int, ok bool) {
	switch kind {
	case KwOr:
		return 1, 2, true
	case Comma:
		return 3, 4, true
	default:
		return 0, 0, false
	}
}

const prefixNotPower = 5

func (p *parser) parsePredicate(minBP int) (spec.Predicate, error) {
	tok := p.next()
	var lhs spec.Predicate
	switch tok.Kind {
	case KwLib:
		lhs = spec.Library
	case KwTypecheck:
		lhs = spec.Typechecked
	case KwGC:
		lhs = spec.GarbageCollected
	case KwSafe:
		lhs = spec.Safe
	case KwFalse:
		lhs = spec.False
	case Ident:
		lhs = spec.Name(tok.Text)
	case Bang:
		operand, err := p.parsePredicate(prefixNotPower)
		if err != nil {
			return nil, err
		}
		lhs = spec.Not{P: operand}
	default:
		return nil, p.unexpected(tok, "implementation predicate or '!'")
	}

	for {
		op := p.peek()
		left, right, ok := infixBindingPower(op.Kind)
		if !ok || left < minBP {
			return lhs, nil
		}
		p.next()
		rhs, err := p.parsePredicate(right)
		if err != nil {
			return nil, err
		}
		if op.Kind == Comma {
			lhs = spec.And{L: lhs, R: rhs}
		} else {
			lhs = spec.Or{L: lhs, R: rhs}
		}
	}
}

func (p *parser) parseBehavior() (spec.Behavior, error) {
	tok := p.next()
	switch tok.Kind {
	case KwError:
		return spec.Of(spec.CompileError), nil
	case KwRuns:
		return spec.Of(spec.Runs), nil
	case KwInfloop:
		return spec.Of(spec.InfiniteLoop), nil
	case KwAbort:
		return spec.Of(spec.Abort), nil
	case KwFailure:
		return spec.Of(spec.Failure), nil
	case KwSegfault:
		return spec.Of(spec.Segfault), nil
	case KwDivByZero:
		return spec.Of(spec.DivZero), nil
	case KwReturn:
		arg := p.next()
		switch arg.Kind {
		case Star:
			return spec.ReturnAny(), nil
		case Number:
			return spec.ReturnOf(arg.Value), nil
		default:
			return spec.Behavior{}, p.unexpected(arg, "'*' or a 32-bit integer after 'return'")
		}
	default:
		return spec.Behavior{}, p.unexpected(tok, "behavior")
	}
}

func (p *parser) unexpected(tok Token, expected string) error {
	return &ParseError{
		Fragment: p.input[tok.Span.Start:tok.Span.End],
		Span:     tok.Span,
		Expected: expected,
	}
}
