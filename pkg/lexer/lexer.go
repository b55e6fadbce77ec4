// Package lexer implements the pseudocode tokenizer.
package lexer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cielang/cie/pkg/ast"
	"github.com/cielang/cie/pkg/diagnostics"
)

// TokenType identifies the type of a lexer token.
type TokenType int

const (
	// Keywords
	TokDeclare TokenType = iota
	TokConstant
	TokInput
	TokOutput
	TokIf
	TokThen
	TokElse
	TokEndif
	TokWhile
	TokDo
	TokEndwhile
	TokFor
	TokTo
	TokStep
	TokNext
	TokEndfor
	TokAnd
	TokOr
	TokNot
	TokDiv
	TokMod
	TokTrue
	TokFalse

	// Literals
	TokIntLit
	TokRealLit
	TokStringLit
	TokCharLit
	TokDateLit

	// Identifiers
	TokIdent

	// Punctuation and operators
	TokColon  // :
	TokComma  // ,
	TokLParen // (
	TokRParen // )
	TokAssign // <- or the left-arrow character
	TokEq     // =
	TokNeq    // <>
	TokLt     // <
	TokGt     // >
	TokLtEq   // <=
	TokGtEq   // >=
	TokPlus   // +
	TokMinus  // -
	TokStar   // *
	TokSlash  // /

	// Special
	TokEOF
)

// Token represents a single lexer token.
type Token struct {
	Type  TokenType
	Value string
	Span  ast.Span
}

// Keywords are matched case-insensitively; the map is keyed by the
// upper-cased spelling.
var keywords = map[string]TokenType{
	"DECLARE":  TokDeclare,
	"CONSTANT": TokConstant,
	"INPUT":    TokInput,
	"OUTPUT":   TokOutput,
	"IF":       TokIf,
	"THEN":     TokThen,
	"ELSE":     TokElse,
	"ENDIF":    TokEndif,
	"WHILE":    TokWhile,
	"DO":       TokDo,
	"ENDWHILE": TokEndwhile,
	"FOR":      TokFor,
	"TO":       TokTo,
	"STEP":     TokStep,
	"NEXT":     TokNext,
	"ENDFOR":   TokEndfor,
	"AND":      TokAnd,
	"OR":       TokOr,
	"NOT":      TokNot,
	"DIV":      TokDiv,
	"MOD":      TokMod,
	"TRUE":     TokTrue,
	"FALSE":    TokFalse,
}

type scanner struct {
	source   string
	filename string
	pos      int
	line     int
	col      int
}

func newScanner(source, filename string) *scanner {
	return &scanner{
		source:   source,
		filename: filename,
		pos:      0,
		line:     1,
		col:      1,
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

func (s *scanner) peekAt(offset int) byte {
	p := s.pos + offset
	if p >= len(s.source) {
		return 0
	}
	return s.source[p]
}

// advanceRune consumes a decoded rune of the given byte size as a
// single column, keeping spans rune-accurate after non-ASCII text.
func (s *scanner) advanceRune(size int) {
	s.pos += size
	s.col++
}

func (s *scanner) advance() byte {
	ch := s.source[s.pos]
	s.pos++
	if ch == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return ch
}

func (s *scanner) span(startLine, startCol int) ast.Span {
	return ast.Span{
		File:      s.filename,
		StartLine: startLine,
		StartCol:  startCol,
		EndLine:   s.line,
		EndCol:    s.col,
	}
}

func (s *scanner) skipWhitespaceAndComments() {
	for !s.atEnd() {
		ch := s.peek()
		if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' {
			s.advance()
		} else if ch == '/' && s.peekAt(1) == '/' {
			for !s.atEnd() && s.peek() != '\n' {
				s.advance()
			}
		} else {
			break
		}
	}
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isAlphaNumeric(ch byte) bool {
	return isAlpha(ch) || isDigit(ch)
}

func (s *scanner) scanString() (Token, error) {
	startLine, startCol := s.line, s.col
	s.advance() // consume opening "

	var buf strings.Builder
	for !s.atEnd() {
		ch := s.peek()
		if ch == '"' {
			s.advance() // consume closing "
			return Token{
				Type:  TokStringLit,
				Value: buf.String(),
				Span:  s.span(startLine, startCol),
			}, nil
		}
		if ch == '\\' {
			s.advance() // consume backslash
			if s.atEnd() {
				return Token{}, s.lexError(startLine, startCol, "unterminated string escape")
			}
			esc := s.advance()
			switch esc {
			case '"':
				buf.WriteByte('"')
			case '\\':
				buf.WriteByte('\\')
			case 'n':
				buf.WriteByte('\n')
			case 'r':
				buf.WriteByte('\r')
			case 't':
				buf.WriteByte('\t')
			case '\'':
				buf.WriteByte('\'')
			default:
				return Token{}, s.lexError(startLine, startCol, fmt.Sprintf("invalid escape character: \\%c", esc))
			}
		} else if ch == '\n' {
			return Token{}, s.lexError(startLine, startCol, "unterminated string literal")
		} else {
			r, size := utf8.DecodeRuneInString(s.source[s.pos:])
			if r == utf8.RuneError && size == 1 {
				return Token{}, s.lexError(startLine, startCol, "invalid UTF-8 character in string")
			}
			buf.WriteRune(r)
			s.advanceRune(size)
		}
	}
	return Token{}, s.lexError(startLine, startCol, "unterminated string literal")
}

func (s *scanner) scanChar() (Token, error) {
	startLine, startCol := s.line, s.col
	s.advance() // consume opening '

	if s.atEnd() || s.peek() == '\n' {
		return Token{}, s.lexError(startLine, startCol, "unterminated character literal")
	}

	var value rune
	if s.peek() == '\\' {
		s.advance()
		if s.atEnd() {
			return Token{}, s.lexError(startLine, startCol, "unterminated character escape")
		}
		esc := s.advance()
		switch esc {
		case '\'':
			value = '\''
		case '\\':
			value = '\\'
		case 'n':
			value = '\n'
		case 't':
			value = '\t'
		default:
			return Token{}, s.lexError(startLine, startCol, fmt.Sprintf("invalid escape character: \\%c", esc))
		}
	} else if s.peek() == '\'' {
		return Token{}, s.lexError(startLine, startCol, "empty character literal")
	} else {
		r, size := utf8.DecodeRuneInString(s.source[s.pos:])
		if r == utf8.RuneError && size == 1 {
			return Token{}, s.lexError(startLine, startCol, "invalid UTF-8 character in character literal")
		}
		value = r
		s.advanceRune(size)
	}

	if s.atEnd() || s.peek() != '\'' {
		return Token{}, s.lexError(startLine, startCol, "character literal must contain exactly one character")
	}
	s.advance() // consume closing '

	return Token{
		Type:  TokCharLit,
		Value: string(value),
		Span:  s.span(startLine, startCol),
	}, nil
}

// dateLength reports the byte length of a dd/mm/yyyy literal starting at
// pos, or 0 when the text there is not one. Dates are recognized before
// numbers so that `OUTPUT 25/12/2024` stays a single opaque literal.
func (s *scanner) dateLength() int {
	p := s.pos
	n := len(s.source)

	digits := func() int {
		start := p
		for p < n && isDigit(s.source[p]) {
			p++
		}
		return p - start
	}

	if d := digits(); d < 1 || d > 2 {
		return 0
	}
	if p >= n || s.source[p] != '/' {
		return 0
	}
	p++
	if d := digits(); d < 1 || d > 2 {
		return 0
	}
	if p >= n || s.source[p] != '/' {
		return 0
	}
	p++
	if d := digits(); d != 4 {
		return 0
	}
	if p < n && (isAlphaNumeric(s.source[p]) || s.source[p] == '/') {
		return 0
	}
	return p - s.pos
}

func (s *scanner) scanDate(length int) Token {
	startLine, startCol := s.line, s.col
	startPos := s.pos
	for i := 0; i < length; i++ {
		s.advance()
	}
	return Token{
		Type:  TokDateLit,
		Value: s.source[startPos:s.pos],
		Span:  s.span(startLine, startCol),
	}
}

func (s *scanner) scanNumber() Token {
	startLine, startCol := s.line, s.col
	startPos := s.pos
	isReal := false

	for !s.atEnd() && isDigit(s.peek()) {
		s.advance()
	}

	if !s.atEnd() && s.peek() == '.' && isDigit(s.peekAt(1)) {
		isReal = true
		s.advance() // consume '.'
		for !s.atEnd() && isDigit(s.peek()) {
			s.advance()
		}
	}

	text := s.source[startPos:s.pos]
	tokType := TokIntLit
	if isReal {
		tokType = TokRealLit
	}

	return Token{
		Type:  tokType,
		Value: text,
		Span:  s.span(startLine, startCol),
	}
}

func (s *scanner) scanIdentOrKeyword() Token {
	startLine, startCol := s.line, s.col
	startPos := s.pos

	for !s.atEnd() && isAlphaNumeric(s.peek()) {
		s.advance()
	}

	text := s.source[startPos:s.pos]

	if tokType, ok := keywords[strings.ToUpper(text)]; ok {
		return Token{
			Type:  tokType,
			Value: text,
			Span:  s.span(startLine, startCol),
		}
	}

	return Token{
		Type:  TokIdent,
		Value: text,
		Span:  s.span(startLine, startCol),
	}
}

func (s *scanner) lexError(line, col int, msg string) error {
	diag := diagnostics.MakeDiag(
		diagnostics.ELex,
		msg,
		&ast.Span{File: s.filename, StartLine: line, StartCol: col, EndLine: line, EndCol: col + 1},
		"",
	)
	return &LexError{Diag: diag}
}

// LexError wraps a diagnostic for lex errors.
type LexError struct {
	Diag diagnostics.Diagnostic
}

func (e *LexError) Error() string {
	return e.Diag.Message
}

func (s *scanner) nextToken() (Token, error) {
	s.skipWhitespaceAndComments()

	if s.atEnd() {
		return Token{
			Type:  TokEOF,
			Value: "",
			Span:  s.span(s.line, s.col),
		}, nil
	}

	ch := s.peek()
	startLine, startCol := s.line, s.col

	switch ch {
	case ':':
		s.advance()
		return Token{Type: TokColon, Value: ":", Span: s.span(startLine, startCol)}, nil
	case ',':
		s.advance()
		return Token{Type: TokComma, Value: ",", Span: s.span(startLine, startCol)}, nil
	case '(':
		s.advance()
		return Token{Type: TokLParen, Value: "(", Span: s.span(startLine, startCol)}, nil
	case ')':
		s.advance()
		return Token{Type: TokRParen, Value: ")", Span: s.span(startLine, startCol)}, nil
	case '+':
		s.advance()
		return Token{Type: TokPlus, Value: "+", Span: s.span(startLine, startCol)}, nil
	case '-':
		s.advance()
		return Token{Type: TokMinus, Value: "-", Span: s.span(startLine, startCol)}, nil
	case '*':
		s.advance()
		return Token{Type: TokStar, Value: "*", Span: s.span(startLine, startCol)}, nil
	case '/':
		s.advance()
		return Token{Type: TokSlash, Value: "/", Span: s.span(startLine, startCol)}, nil
	case '=':
		s.advance()
		return Token{Type: TokEq, Value: "=", Span: s.span(startLine, startCol)}, nil

	case '<':
		s.advance()
		if !s.atEnd() {
			switch s.peek() {
			case '-':
				s.advance()
				return Token{Type: TokAssign, Value: "<-", Span: s.span(startLine, startCol)}, nil
			case '>':
				s.advance()
				return Token{Type: TokNeq, Value: "<>", Span: s.span(startLine, startCol)}, nil
			case '=':
				s.advance()
				return Token{Type: TokLtEq, Value: "<=", Span: s.span(startLine, startCol)}, nil
			}
		}
		return Token{Type: TokLt, Value: "<", Span: s.span(startLine, startCol)}, nil

	case '>':
		s.advance()
		if !s.atEnd() && s.peek() == '=' {
			s.advance()
			return Token{Type: TokGtEq, Value: ">=", Span: s.span(startLine, startCol)}, nil
		}
		return Token{Type: TokGt, Value: ">", Span: s.span(startLine, startCol)}, nil
	}

	// Dates before numbers: both start with a digit.
	if isDigit(ch) {
		if n := s.dateLength(); n > 0 {
			return s.scanDate(n), nil
		}
		return s.scanNumber(), nil
	}

	if ch == '"' {
		return s.scanString()
	}

	if ch == '\'' {
		return s.scanChar()
	}

	if isAlpha(ch) {
		return s.scanIdentOrKeyword(), nil
	}

	// The assignment arrow may be written as a single left-arrow rune.
	r, size := utf8.DecodeRuneInString(s.source[s.pos:])
	if r == '←' {
		s.advanceRune(size)
		return Token{Type: TokAssign, Value: "<-", Span: s.span(startLine, startCol)}, nil
	}

	s.advanceRune(size)
	return Token{}, s.lexError(startLine, startCol, fmt.Sprintf("unexpected character %q", r))
}

// Tokenize breaks source code into a slice of tokens.
func Tokenize(source, filename string) ([]Token, error) {
	s := newScanner(source, filename)
	var tokens []Token

	for {
		tok, err := s.nextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokEOF {
			break
		}
	}

	return tokens, nil
}
