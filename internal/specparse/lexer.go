package specparse

import (
	"strconv"
	"strings"
)

const markerText = "//test"

// Lexer splits a spec string into tokens. After EOF it keeps returning EOF.
type Lexer struct {
	src string
	off int
}

// NewLexer creates a lexer over src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src}
}

// Next returns the next significant token.
func (lx *Lexer) Next() Token {
	lx.skipSpace()
	if lx.off >= len(lx.src) {
		return Token{Kind: EOF, Span: Span{Start: lx.off, End: lx.off}}
	}

	start := lx.off
	ch := lx.src[lx.off]
	switch {
	case isIdentStart(ch):
		return lx.scanWord()
	case isDigit(ch), ch == '+', ch == '-':
		return lx.scanNumber()
	}

	switch ch {
	case '*':
		return lx.single(Star)
	case '!':
		return lx.single(Bang)
	case ',':
		return lx.single(Comma)
	case ';':
		return lx.single(Semicolon)
	case '=':
		if strings.HasPrefix(lx.src[lx.off:], "=>") {
			lx.off += 2
			return lx.token(FatArrow, start)
		}
	case '/':
		if strings.HasPrefix(lx.src[lx.off:], markerText) {
			lx.off += len(markerText)
			return lx.token(Marker, start)
		}
	}
	return lx.single(Invalid)
}

// All lexes the remaining input, including the trailing EOF token.
func (lx *Lexer) All() []Token {
	var toks []Token
	for {
		tok := lx.Next()
		toks = append(toks, tok)
		if tok.Kind == EOF {
			return toks
		}
	}
}

func (lx *Lexer) skipSpace() {
	for lx.off < len(lx.src) {
		switch lx.src[lx.off] {
		case ' ', '\t', '\r', '\n':
			lx.off++
		default:
			return
		}
	}
}

func (lx *Lexer) single(kind Kind) Token {
	start := lx.off
	lx.off++
	return lx.token(kind, start)
}

func (lx *Lexer) token(kind Kind, start int) Token {
	return Token{Kind: kind, Span: Span{Start: start, End: lx.off}, Text: lx.src[start:lx.off]}
}

// scanWord lexes [a-zA-Z_][-a-zA-Z0-9_]*; keywords win on an exact match.
func (lx *Lexer) scanWord() Token {
	start := lx.off
	lx.off++
	for lx.off < len(lx.src) && isIdentContinue(lx.src[lx.off]) {
		lx.off++
	}
	tok := lx.token(Ident, start)
	if kw, ok := keywords[tok.Text]; ok {
		tok.Kind = kw
	}
	return tok
}

// scanNumber lexes [+-]?(0|[1-9][0-9]*) and 0x-prefixed hex. Literals that
// do not fit in 32 bits are Invalid.
func (lx *Lexer) scanNumber() Token {
	start := lx.off
	if c := lx.src[lx.off]; c == '+' || c == '-' {
		lx.off++
	}
	digitsStart := lx.off
	hex := false
	if strings.HasPrefix(lx.src[lx.off:], "0x") || strings.HasPrefix(lx.src[lx.off:], "0X") {
		hex = true
		lx.off += 2
		for lx.off < len(lx.src) && isHexDigit(lx.src[lx.off]) {
			lx.off++
		}
	} else {
		for lx.off < len(lx.src) && isDigit(lx.src[lx.off]) {
			lx.off++
		}
	}
	tok := lx.token(Number, start)
	digits := lx.src[digitsStart:lx.off]

	var (
		value int64
		err   error
	)
	switch {
	case hex && len(digits) > 2 && digitsStart == start:
		value, err = strconv.ParseInt(digits[2:], 16, 32)
	case hex:
		tok.Kind = Invalid
		return tok
	case digits == "" || (len(digits) > 1 && digits[0] == '0'):
		tok.Kind = Invalid
		return tok
	default:
		value, err = strconv.ParseInt(tok.Text, 10, 32)
	}
	if err != nil {
		tok.Kind = Invalid
		return tok
	}
	tok.Value = int32(value)
	return tok
}

func isIdentStart(b byte) bool {
	return b == '_' || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

func isIdentContinue(b byte) bool {
	return isIdentStart(b) || isDigit(b) || b == '-'
}

func isDigit(b byte) bool { return '0' <= b && b <= '9' }

func isHexDigit(b byte) bool {
	return isDigit(b) || ('a' <= b && b <= 'f') || ('A' <= b && b <= 'F')
}
