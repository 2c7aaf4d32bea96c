package dsl

import (
	"errors"
	"strconv"
	"strings"
)

// TokenType classifies a lexeme of the line-oriented simulation language.
type TokenType int

const (
	Ident TokenType = iota
	Number
	Keyword
	Plus
	Arrow
	Semicolon
	Equals
	Hash
)

func (t TokenType) String() string {
	switch t {
	case Ident:
		return "identifier"
	case Number:
		return "number"
	case Keyword:
		return "keyword"
	case Plus:
		return "'+'"
	case Arrow:
		return "'->'"
	case Semicolon:
		return "';'"
	case Equals:
		return "'='"
	case Hash:
		return "'#'"
	default:
		return "unknown"
	}
}

// Token is one lexeme. Value is set for numbers; Integer and Int are set
// for numbers written as plain base-10 integers.
type Token struct {
	Type    TokenType
	Text    string
	Value   float64
	Integer bool
	Int     int
}

const (
	kwKfwd = "Kfwd"
	kwKequ = "Kequ"
	kwTime = "t"
)

// Lex splits a line into tokens. Fields are separated by whitespace, and
// ';' and '=' always stand alone. '+', '->' and '#' are operators only as
// whole fields, so names such as "Na+" or "OH-" remain identifiers. Fields
// matching one of keywords become Keyword tokens.
func Lex(line string, keywords ...string) []Token {
	var toks []Token
	for _, field := range strings.Fields(line) {
		for _, lexeme := range splitPunct(field) {
			toks = append(toks, classify(lexeme, keywords))
		}
	}
	return toks
}

func splitPunct(field string) []string {
	if !strings.ContainsAny(field, ";=") {
		return []string{field}
	}
	var parts []string
	start := 0
	for i := 0; i < len(field); i++ {
		if field[i] != ';' && field[i] != '=' {
			continue
		}
		if i > start {
			parts = append(parts, field[start:i])
		}
		parts = append(parts, field[i:i+1])
		start = i + 1
	}
	if start < len(field) {
		parts = append(parts, field[start:])
	}
	return parts
}

func classify(lexeme string, keywords []string) Token {
	switch lexeme {
	case "+":
		return Token{Type: Plus, Text: lexeme}
	case "->":
		return Token{Type: Arrow, Text: lexeme}
	case ";":
		return Token{Type: Semicolon, Text: lexeme}
	case "=":
		return Token{Type: Equals, Text: lexeme}
	case "#":
		return Token{Type: Hash, Text: lexeme}
	}

	if tok, ok := lexNumber(lexeme); ok {
		return tok
	}

	for _, kw := range keywords {
		if lexeme == kw {
			return Token{Type: Keyword, Text: lexeme}
		}
	}
	return Token{Type: Ident, Text: lexeme}
}

// lexNumber accepts what strconv.ParseFloat accepts, provided the lexeme
// starts like a number; "inf" and "nan" stay identifiers. Out-of-range
// literals are still numbers and carry an infinite value.
func lexNumber(lexeme string) (Token, bool) {
	if !startsNumeric(lexeme) {
		return Token{}, false
	}
	v, err := strconv.ParseFloat(lexeme, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return Token{}, false
	}

	tok := Token{Type: Number, Text: lexeme, Value: v}
	if isDecimalInteger(lexeme) {
		if n, err := strconv.Atoi(lexeme); err == nil {
			tok.Integer = true
			tok.Int = n
		}
	}
	return tok, true
}

func startsNumeric(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '+' || s[0] == '-' {
		s = s[1:]
	}
	return s != "" && (isDigit(s[0]) || (s[0] == '.' && len(s) > 1 && isDigit(s[1])))
}

func isDecimalInteger(s string) bool {
	if s != "" && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// cursor walks a token slice with one token of lookahead.
type cursor struct {
	toks []Token
	pos  int
}

func newCursor(toks []Token) *cursor { return &cursor{toks: toks} }

func (c *cursor) peek() (Token, bool) {
	if c.pos >= len(c.toks) {
		return Token{}, false
	}
	return c.toks[c.pos], true
}

func (c *cursor) next() (Token, bool) {
	tok, ok := c.peek()
	if ok {
		c.pos++
	}
	return tok, ok
}

// accept consumes the next token if it has type tt.
func (c *cursor) accept(tt TokenType) (Token, bool) {
	tok, ok := c.peek()
	if !ok || tok.Type != tt {
		return Token{}, false
	}
	c.pos++
	return tok, true
}
