// Package lexer implements the Lox tokenizer.
package lexer

import (
	"fmt"
	"strconv"
)

// TokenType identifies the type of a lexer token.
type TokenType int

const (
	// Keywords
	TokAnd TokenType = iota
	TokClass
	TokElse
	TokFalse
	TokFor
	TokFun
	TokIf
	TokNil
	TokOr
	TokPrint
	TokReturn
	TokSuper
	TokThis
	TokTrue
	TokVar
	TokWhile

	// Literals
	TokNumber
	TokString

	// Identifiers
	TokIdent

	// Punctuation
	TokLParen    // (
	TokRParen    // )
	TokLBrace    // {
	TokRBrace    // }
	TokComma     // ,
	TokDot       // .
	TokSemicolon // ;

	// Operators
	TokPlus    // +
	TokMinus   // -
	TokStar    // *
	TokSlash   // /
	TokBang    // !
	TokBangEq  // !=
	TokEq      // =
	TokEqEq    // ==
	TokGt      // >
	TokGtEq    // >=
	TokLt      // <
	TokLtEq    // <=

	TokEOF
)

// Token is a single lexical token. Number carries the parsed value for
// TokNumber tokens.
type Token struct {
	Type   TokenType
	Text   string
	Number float64
	Line   int
}

var keywords = map[string]TokenType{
	"and":    TokAnd,
	"class":  TokClass,
	"else":   TokElse,
	"false":  TokFalse,
	"for":    TokFor,
	"fun":    TokFun,
	"if":     TokIf,
	"nil":    TokNil,
	"or":     TokOr,
	"print":  TokPrint,
	"return": TokReturn,
	"super":  TokSuper,
	"this":   TokThis,
	"true":   TokTrue,
	"var":    TokVar,
	"while":  TokWhile,
}

// Error is a tokenization failure.
type Error struct {
	Line    int
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

type scanner struct {
	source string
	pos    int
	line   int
}

// Scan tokenizes the whole source, appending a TokEOF token.
func Scan(source string) ([]Token, error) {
	s := &scanner{source: source, line: 1}

	var tokens []Token
	for {
		tok, err := s.next()
		if err != nil {
			return nil, err
		}

		tokens = append(tokens, tok)
		if tok.Type == TokEOF {
			return tokens, nil
		}
	}
}

func (s *scanner) atEnd() bool {
	return s.pos >= len(s.source)
}

func (s *scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.source[s.pos]
}

func (s *scanner) peekNext() byte {
	if s.pos+1 >= len(s.source) {
		return 0
	}
	return s.source[s.pos+1]
}

func (s *scanner) advance() byte {
	c := s.source[s.pos]
	s.pos++
	if c == '\n' {
		s.line++
	}
	return c
}

func (s *scanner) match(expected byte) bool {
	if s.atEnd() || s.source[s.pos] != expected {
		return false
	}
	s.pos++
	return true
}

func (s *scanner) skipWhitespace() {
	for !s.atEnd() {
		switch s.peek() {
		case ' ', '\t', '\r', '\n':
			s.advance()
		case '/':
			if s.peekNext() != '/' {
				return
			}
			for !s.atEnd() && s.peek() != '\n' {
				s.advance()
			}
		default:
			return
		}
	}
}

func (s *scanner) next() (Token, error) {
	s.skipWhitespace()

	if s.atEnd() {
		return Token{Type: TokEOF, Line: s.line}, nil
	}

	line := s.line
	start := s.pos
	c := s.advance()

	simple := func(t TokenType) (Token, error) {
		return Token{Type: t, Text: s.source[start:s.pos], Line: line}, nil
	}

	switch {
	case isDigit(c):
		return s.number(start, line)
	case isAlpha(c):
		return s.identifier(start, line)
	}

	switch c {
	case '(':
		return simple(TokLParen)
	case ')':
		return simple(TokRParen)
	case '{':
		return simple(TokLBrace)
	case '}':
		return simple(TokRBrace)
	case ',':
		return simple(TokComma)
	case '.':
		return simple(TokDot)
	case ';':
		return simple(TokSemicolon)
	case '+':
		return simple(TokPlus)
	case '-':
		return simple(TokMinus)
	case '*':
		return simple(TokStar)
	case '/':
		return simple(TokSlash)
	case '!':
		if s.match('=') {
			return simple(TokBangEq)
		}
		return simple(TokBang)
	case '=':
		if s.match('=') {
			return simple(TokEqEq)
		}
		return simple(TokEq)
	case '>':
		if s.match('=') {
			return simple(TokGtEq)
		}
		return simple(TokGt)
	case '<':
		if s.match('=') {
			return simple(TokLtEq)
		}
		return simple(TokLt)
	case '"':
		return s.str(start, line)
	}

	return Token{}, Error{Line: line, Message: fmt.Sprintf("unexpected character %q", c)}
}

func (s *scanner) number(start, line int) (Token, error) {
	for isDigit(s.peek()) {
		s.advance()
	}

	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}

	text := s.source[start:s.pos]
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Token{}, Error{Line: line, Message: fmt.Sprintf("invalid number %q", text)}
	}

	return Token{Type: TokNumber, Text: text, Number: value, Line: line}, nil
}

func (s *scanner) str(start, line int) (Token, error) {
	for !s.atEnd() && s.peek() != '"' {
		s.advance()
	}

	if s.atEnd() {
		return Token{}, Error{Line: line, Message: "unterminated string"}
	}

	s.advance() // closing quote

	// Text excludes the surrounding quotes.
	return Token{Type: TokString, Text: s.source[start+1 : s.pos-1], Line: line}, nil
}

func (s *scanner) identifier(start, line int) (Token, error) {
	for isAlpha(s.peek()) || isDigit(s.peek()) {
		s.advance()
	}

	text := s.source[start:s.pos]
	if t, ok := keywords[text]; ok {
		return Token{Type: t, Text: text, Line: line}, nil
	}

	return Token{Type: TokIdent, Text: text, Line: line}, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}
