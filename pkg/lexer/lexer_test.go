package lexer

import (
	"errors"
	"testing"
)

// helper to tokenize and fail on error
func mustTokenize(t *testing.T, source string) []Token {
	t.Helper()
	tokens, err := Tokenize(source, "test.cie")
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	return tokens
}

// helper that strips the trailing EOF for easier assertions
func mustTokenizeNoEOF(t *testing.T, source string) []Token {
	t.Helper()
	tokens := mustTokenize(t, source)
	if len(tokens) == 0 {
		t.Fatal("expected at least one token (EOF)")
	}
	if tokens[len(tokens)-1].Type != TokEOF {
		t.Fatal("last token is not EOF")
	}
	return tokens[:len(tokens)-1]
}

func expectTypes(t *testing.T, tokens []Token, want ...TokenType) {
	t.Helper()
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d (%v)", len(tokens), len(want), tokens)
	}
	for i, w := range want {
		if tokens[i].Type != w {
			t.Errorf("token[%d] = %v (%q), want %v", i, tokens[i].Type, tokens[i].Value, w)
		}
	}
}

func expectLexError(t *testing.T, source string) {
	t.Helper()
	_, err := Tokenize(source, "test.cie")
	if err == nil {
		t.Fatalf("expected lex error for %q", source)
	}
	var lexErr *LexError
	if !errors.As(err, &lexErr) {
		t.Fatalf("expected *LexError, got %T: %v", err, err)
	}
}

func TestEmptyInput(t *testing.T) {
	tokens := mustTokenize(t, "")
	if len(tokens) != 1 || tokens[0].Type != TokEOF {
		t.Fatalf("expected single EOF token, got %v", tokens)
	}
}

func TestKeywords(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "DECLARE CONSTANT INPUT OUTPUT IF THEN ELSE ENDIF WHILE DO ENDWHILE FOR TO STEP NEXT ENDFOR AND OR NOT DIV MOD TRUE FALSE")
	expectTypes(t, tokens,
		TokDeclare, TokConstant, TokInput, TokOutput, TokIf, TokThen, TokElse,
		TokEndif, TokWhile, TokDo, TokEndwhile, TokFor, TokTo, TokStep, TokNext,
		TokEndfor, TokAnd, TokOr, TokNot, TokDiv, TokMod, TokTrue, TokFalse)
}

func TestKeywordsAreCaseInsensitive(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "declare While endif")
	expectTypes(t, tokens, TokDeclare, TokWhile, TokEndif)
}

func TestIdentifiersKeepSpelling(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "Counter total_2")
	expectTypes(t, tokens, TokIdent, TokIdent)
	if tokens[0].Value != "Counter" || tokens[1].Value != "total_2" {
		t.Errorf("identifier spellings not preserved: %v", tokens)
	}
}

func TestNumbers(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "42 3.14 0.5")
	expectTypes(t, tokens, TokIntLit, TokRealLit, TokRealLit)
	if tokens[0].Value != "42" || tokens[1].Value != "3.14" {
		t.Errorf("number lexemes wrong: %v", tokens)
	}
}

func TestStringLiteral(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, `"hello\nworld"`)
	expectTypes(t, tokens, TokStringLit)
	if tokens[0].Value != "hello\nworld" {
		t.Errorf("escape not decoded: %q", tokens[0].Value)
	}
}

func TestUnterminatedString(t *testing.T) {
	expectLexError(t, `"abc`)
}

func TestCharLiteral(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, `'x' '\n'`)
	expectTypes(t, tokens, TokCharLit, TokCharLit)
	if tokens[0].Value != "x" || tokens[1].Value != "\n" {
		t.Errorf("char lexemes wrong: %v", tokens)
	}
}

func TestCharLiteralMustBeSingle(t *testing.T) {
	expectLexError(t, `'xy'`)
}

func TestDateLiteral(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "25/12/2024")
	expectTypes(t, tokens, TokDateLit)
	if tokens[0].Value != "25/12/2024" {
		t.Errorf("date lexeme = %q", tokens[0].Value)
	}
}

func TestDateDoesNotSwallowDivision(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "10 / 5")
	expectTypes(t, tokens, TokIntLit, TokSlash, TokIntLit)
}

func TestOperators(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "<- = <> < > <= >= + - * / : , ( )")
	expectTypes(t, tokens,
		TokAssign, TokEq, TokNeq, TokLt, TokGt, TokLtEq, TokGtEq,
		TokPlus, TokMinus, TokStar, TokSlash, TokColon, TokComma,
		TokLParen, TokRParen)
}

func TestArrowCharacter(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "x ← 1")
	expectTypes(t, tokens, TokIdent, TokAssign, TokIntLit)
}

func TestLineComments(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "1 // the rest is ignored\n2")
	expectTypes(t, tokens, TokIntLit, TokIntLit)
}

func TestSpans(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "DECLARE X")
	if tokens[0].Span.StartLine != 1 || tokens[0].Span.StartCol != 1 {
		t.Errorf("first span = %+v", tokens[0].Span)
	}
	if tokens[1].Span.StartCol != 9 {
		t.Errorf("ident span = %+v", tokens[1].Span)
	}
}

func TestSpansAfterMultiByteRunes(t *testing.T) {
	// The arrow and the string body are multi-byte; columns still
	// count runes, so the literal after each lands where it reads.
	tokens := mustTokenizeNoEOF(t, "x ← 1")
	if tokens[2].Span.StartCol != 5 {
		t.Errorf("int span after arrow = %+v", tokens[2].Span)
	}

	tokens = mustTokenizeNoEOF(t, `"ü" 1`)
	if tokens[1].Span.StartCol != 5 {
		t.Errorf("int span after string = %+v", tokens[1].Span)
	}
}

func TestUnexpectedCharacter(t *testing.T) {
	expectLexError(t, "1 @ 2")
}
