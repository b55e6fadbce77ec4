// Package parser implements the pseudocode parser.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cielang/cie/pkg/ast"
	"github.com/cielang/cie/pkg/diagnostics"
	"github.com/cielang/cie/pkg/lexer"
)

type parser struct {
	tokens []lexer.Token
	pos    int
	diags  []diagnostics.Diagnostic
}

// Parse tokenizes source and parses it into a syntax tree.
func Parse(source, filename string) (*ast.Program, []diagnostics.Diagnostic) {
	tokens, err := lexer.Tokenize(source, filename)
	if err != nil {
		if le, ok := err.(*lexer.LexError); ok {
			return nil, []diagnostics.Diagnostic{le.Diag}
		}
		return nil, []diagnostics.Diagnostic{diagnostics.MakeDiag(diagnostics.ELex, err.Error(), nil, "")}
	}

	p := &parser{tokens: tokens, pos: 0}
	prog := p.parseProgram(filename)
	if len(p.diags) > 0 {
		return nil, p.diags
	}
	return prog, nil
}

func (p *parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.pos]
}

func (p *parser) peek() lexer.TokenType {
	return p.current().Type
}

func (p *parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) expect(typ lexer.TokenType) (lexer.Token, bool) {
	tok := p.current()
	if tok.Type != typ {
		p.addError(fmt.Sprintf("expected %s, got '%s'", tokenName(typ), tok.Value), &tok.Span)
		return tok, false
	}
	return p.advance(), true
}

func (p *parser) addError(msg string, span *ast.Span) {
	p.diags = append(p.diags, diagnostics.MakeDiag(diagnostics.EParse, msg, span, ""))
}

func (p *parser) spanFrom(start ast.Span) ast.Span {
	cur := p.current().Span
	return ast.Span{
		File:      start.File,
		StartLine: start.StartLine,
		StartCol:  start.StartCol,
		EndLine:   cur.StartLine,
		EndCol:    cur.StartCol,
	}
}

func (p *parser) spanFromTo(start, end ast.Span) ast.Span {
	return ast.Span{
		File:      start.File,
		StartLine: start.StartLine,
		StartCol:  start.StartCol,
		EndLine:   end.EndLine,
		EndCol:    end.EndCol,
	}
}

func tokenName(t lexer.TokenType) string {
	switch t {
	case lexer.TokColon:
		return "':'"
	case lexer.TokComma:
		return "','"
	case lexer.TokLParen:
		return "'('"
	case lexer.TokRParen:
		return "')'"
	case lexer.TokAssign:
		return "'<-'"
	case lexer.TokIdent:
		return "identifier"
	case lexer.TokThen:
		return "THEN"
	case lexer.TokEndif:
		return "ENDIF"
	case lexer.TokEndwhile:
		return "ENDWHILE"
	case lexer.TokTo:
		return "TO"
	case lexer.TokNext:
		return "NEXT"
	case lexer.TokEOF:
		return "end of file"
	default:
		return fmt.Sprintf("token(%d)", t)
	}
}

// --- Program ---

func (p *parser) parseProgram(filename string) *ast.Program {
	startSpan := p.current().Span

	var stmts []ast.Stmt
	for p.peek() != lexer.TokEOF {
		stmt := p.parseStmt()
		if stmt == nil {
			return nil
		}
		stmts = append(stmts, stmt)
	}

	return &ast.Program{
		Span:       p.spanFrom(startSpan),
		Statements: stmts,
	}
}

// parseBlock consumes statements until one of the terminator tokens
// appears; the terminator itself is left for the caller. This is what
// keeps then/else and loop bodies structurally explicit in the tree.
func (p *parser) parseBlock(terminators ...lexer.TokenType) ([]ast.Stmt, bool) {
	stmts := []ast.Stmt{}
	for {
		t := p.peek()
		if t == lexer.TokEOF {
			tok := p.current()
			p.addError("unexpected end of file inside block", &tok.Span)
			return nil, false
		}
		for _, term := range terminators {
			if t == term {
				return stmts, true
			}
		}
		stmt := p.parseStmt()
		if stmt == nil {
			return nil, false
		}
		stmts = append(stmts, stmt)
	}
}

// --- Statements ---

func (p *parser) parseStmt() ast.Stmt {
	switch p.peek() {
	case lexer.TokDeclare:
		return p.parseDeclare()
	case lexer.TokConstant:
		return p.parseConstant()
	case lexer.TokInput:
		return p.parseInput()
	case lexer.TokOutput:
		return p.parseOutput()
	case lexer.TokIf:
		return p.parseIf()
	case lexer.TokWhile:
		return p.parseWhile()
	case lexer.TokFor:
		return p.parseFor()
	case lexer.TokIdent:
		return p.parseAssign()
	default:
		tok := p.current()
		p.addError(fmt.Sprintf("unexpected token '%s' at start of statement", tok.Value), &tok.Span)
		return nil
	}
}

func (p *parser) parseDeclare() ast.Stmt {
	start := p.advance() // consume DECLARE
	name, ok := p.expect(lexer.TokIdent)
	if !ok {
		return nil
	}
	if _, ok := p.expect(lexer.TokColon); !ok {
		return nil
	}
	typeName, ok := p.expect(lexer.TokIdent)
	if !ok {
		return nil
	}
	return &ast.DeclareStmt{
		Span:     p.spanFromTo(start.Span, typeName.Span),
		Name:     name.Value,
		TypeName: typeName.Value,
	}
}

func (p *parser) parseConstant() ast.Stmt {
	start := p.advance() // consume CONSTANT
	name, ok := p.expect(lexer.TokIdent)
	if !ok {
		return nil
	}
	// Published material writes `CONSTANT Pi = 3.14`; the arrow form is
	// accepted as well.
	if p.peek() == lexer.TokEq || p.peek() == lexer.TokAssign {
		p.advance()
	} else {
		tok := p.current()
		p.addError(fmt.Sprintf("expected '=' or '<-' after constant name, got '%s'", tok.Value), &tok.Span)
		return nil
	}
	value := p.parseExpr()
	if value == nil {
		return nil
	}
	return &ast.ConstantStmt{
		Span:  p.spanFromTo(start.Span, value.NodeSpan()),
		Name:  name.Value,
		Value: value,
	}
}

func (p *parser) parseInput() ast.Stmt {
	start := p.advance() // consume INPUT
	name, ok := p.expect(lexer.TokIdent)
	if !ok {
		return nil
	}
	return &ast.InputStmt{
		Span: p.spanFromTo(start.Span, name.Span),
		Name: name.Value,
	}
}

func (p *parser) parseOutput() ast.Stmt {
	start := p.advance() // consume OUTPUT
	var values []ast.Expr
	for {
		expr := p.parseExpr()
		if expr == nil {
			return nil
		}
		values = append(values, expr)
		if p.peek() != lexer.TokComma {
			break
		}
		p.advance()
	}
	return &ast.OutputStmt{
		Span:   p.spanFromTo(start.Span, values[len(values)-1].NodeSpan()),
		Values: values,
	}
}

func (p *parser) parseAssign() ast.Stmt {
	name := p.advance() // identifier
	if _, ok := p.expect(lexer.TokAssign); !ok {
		return nil
	}
	value := p.parseExpr()
	if value == nil {
		return nil
	}
	return &ast.AssignStmt{
		Span:  p.spanFromTo(name.Span, value.NodeSpan()),
		Name:  name.Value,
		Value: value,
	}
}

func (p *parser) parseIf() ast.Stmt {
	start := p.advance() // consume IF
	cond := p.parseExpr()
	if cond == nil {
		return nil
	}
	if _, ok := p.expect(lexer.TokThen); !ok {
		return nil
	}
	thenBody, ok := p.parseBlock(lexer.TokElse, lexer.TokEndif)
	if !ok {
		return nil
	}
	var elseBody []ast.Stmt
	if p.peek() == lexer.TokElse {
		p.advance()
		elseBody, ok = p.parseBlock(lexer.TokEndif)
		if !ok {
			return nil
		}
	}
	end, ok := p.expect(lexer.TokEndif)
	if !ok {
		return nil
	}
	return &ast.IfStmt{
		Span:     p.spanFromTo(start.Span, end.Span),
		Cond:     cond,
		ThenBody: thenBody,
		ElseBody: elseBody,
	}
}

func (p *parser) parseWhile() ast.Stmt {
	start := p.advance() // consume WHILE
	cond := p.parseExpr()
	if cond == nil {
		return nil
	}
	if p.peek() == lexer.TokDo {
		p.advance() // DO is optional
	}
	body, ok := p.parseBlock(lexer.TokEndwhile)
	if !ok {
		return nil
	}
	end, ok := p.expect(lexer.TokEndwhile)
	if !ok {
		return nil
	}
	return &ast.WhileStmt{
		Span: p.spanFromTo(start.Span, end.Span),
		Cond: cond,
		Body: body,
	}
}

func (p *parser) parseFor() ast.Stmt {
	start := p.advance() // consume FOR
	name, ok := p.expect(lexer.TokIdent)
	if !ok {
		return nil
	}
	if _, ok := p.expect(lexer.TokAssign); !ok {
		return nil
	}
	startExpr := p.parseExpr()
	if startExpr == nil {
		return nil
	}
	if _, ok := p.expect(lexer.TokTo); !ok {
		return nil
	}
	endExpr := p.parseExpr()
	if endExpr == nil {
		return nil
	}
	var stepExpr ast.Expr
	if p.peek() == lexer.TokStep {
		p.advance()
		stepExpr = p.parseExpr()
		if stepExpr == nil {
			return nil
		}
	}
	body, ok := p.parseBlock(lexer.TokNext, lexer.TokEndfor)
	if !ok {
		return nil
	}
	end := p.advance() // NEXT or ENDFOR
	if end.Type == lexer.TokNext && p.peek() == lexer.TokIdent {
		nameTok := p.advance()
		if !strings.EqualFold(nameTok.Value, name.Value) {
			p.addError(fmt.Sprintf("NEXT %s does not match FOR %s", nameTok.Value, name.Value), &nameTok.Span)
			return nil
		}
		end = nameTok
	}
	return &ast.ForStmt{
		Span:  p.spanFromTo(start.Span, end.Span),
		Name:  name.Value,
		Start: startExpr,
		End:   endExpr,
		Step:  stepExpr,
		Body:  body,
	}
}

// --- Expressions ---
//
// Precedence, loosest first: OR, AND, NOT, comparison, additive,
// multiplicative (including DIV and MOD), unary minus.

func (p *parser) parseExpr() ast.Expr {
	return p.parseOr()
}

func (p *parser) parseOr() ast.Expr {
	left := p.parseAnd()
	if left == nil {
		return nil
	}
	for p.peek() == lexer.TokOr {
		p.advance()
		right := p.parseAnd()
		if right == nil {
			return nil
		}
		left = &ast.BinaryExpr{
			Span:  p.spanFromTo(left.NodeSpan(), right.NodeSpan()),
			Op:    ast.OpOr,
			Left:  left,
			Right: right,
		}
	}
	return left
}

func (p *parser) parseAnd() ast.Expr {
	left := p.parseNot()
	if left == nil {
		return nil
	}
	for p.peek() == lexer.TokAnd {
		p.advance()
		right := p.parseNot()
		if right == nil {
			return nil
		}
		left = &ast.BinaryExpr{
			Span:  p.spanFromTo(left.NodeSpan(), right.NodeSpan()),
			Op:    ast.OpAnd,
			Left:  left,
			Right: right,
		}
	}
	return left
}

func (p *parser) parseNot() ast.Expr {
	if p.peek() == lexer.TokNot {
		start := p.advance()
		operand := p.parseNot()
		if operand == nil {
			return nil
		}
		return &ast.UnaryExpr{
			Span:    p.spanFromTo(start.Span, operand.NodeSpan()),
			Op:      ast.OpNot,
			Operand: operand,
		}
	}
	return p.parseComparison()
}

var comparisonOps = map[lexer.TokenType]ast.BinaryOp{
	lexer.TokEq:   ast.OpEq,
	lexer.TokNeq:  ast.OpNeq,
	lexer.TokLt:   ast.OpLt,
	lexer.TokGt:   ast.OpGt,
	lexer.TokLtEq: ast.OpLtEq,
	lexer.TokGtEq: ast.OpGtEq,
}

func (p *parser) parseComparison() ast.Expr {
	left := p.parseAdditive()
	if left == nil {
		return nil
	}
	if op, ok := comparisonOps[p.peek()]; ok {
		p.advance()
		right := p.parseAdditive()
		if right == nil {
			return nil
		}
		return &ast.BinaryExpr{
			Span:  p.spanFromTo(left.NodeSpan(), right.NodeSpan()),
			Op:    op,
			Left:  left,
			Right: right,
		}
	}
	return left
}

func (p *parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	if left == nil {
		return nil
	}
	for p.peek() == lexer.TokPlus || p.peek() == lexer.TokMinus {
		op := ast.OpAdd
		if p.peek() == lexer.TokMinus {
			op = ast.OpSub
		}
		p.advance()
		right := p.parseMultiplicative()
		if right == nil {
			return nil
		}
		left = &ast.BinaryExpr{
			Span:  p.spanFromTo(left.NodeSpan(), right.NodeSpan()),
			Op:    op,
			Left:  left,
			Right: right,
		}
	}
	return left
}

func (p *parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	if left == nil {
		return nil
	}
	for {
		var op ast.BinaryOp
		switch p.peek() {
		case lexer.TokStar:
			op = ast.OpMul
		case lexer.TokSlash:
			op = ast.OpDiv
		case lexer.TokDiv:
			op = ast.OpIntDiv
		case lexer.TokMod:
			op = ast.OpMod
		default:
			return left
		}
		p.advance()
		right := p.parseUnary()
		if right == nil {
			return nil
		}
		left = &ast.BinaryExpr{
			Span:  p.spanFromTo(left.NodeSpan(), right.NodeSpan()),
			Op:    op,
			Left:  left,
			Right: right,
		}
	}
}

func (p *parser) parseUnary() ast.Expr {
	if p.peek() == lexer.TokMinus {
		start := p.advance()
		operand := p.parseUnary()
		if operand == nil {
			return nil
		}
		return &ast.UnaryExpr{
			Span:    p.spanFromTo(start.Span, operand.NodeSpan()),
			Op:      ast.OpNeg,
			Operand: operand,
		}
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() ast.Expr {
	tok := p.current()
	switch tok.Type {
	case lexer.TokIntLit:
		p.advance()
		v, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			p.addError(fmt.Sprintf("invalid integer literal '%s'", tok.Value), &tok.Span)
			return nil
		}
		return &ast.IntLiteral{Span: tok.Span, Value: v}

	case lexer.TokRealLit:
		p.advance()
		v, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			p.addError(fmt.Sprintf("invalid real literal '%s'", tok.Value), &tok.Span)
			return nil
		}
		return &ast.RealLiteral{Span: tok.Span, Value: v}

	case lexer.TokStringLit:
		p.advance()
		return &ast.StrLiteral{Span: tok.Span, Value: tok.Value}

	case lexer.TokCharLit:
		p.advance()
		r := []rune(tok.Value)
		if len(r) != 1 {
			p.addError(fmt.Sprintf("invalid character literal '%s'", tok.Value), &tok.Span)
			return nil
		}
		return &ast.CharLiteral{Span: tok.Span, Value: r[0]}

	case lexer.TokDateLit:
		p.advance()
		return &ast.DateLiteral{Span: tok.Span, Value: tok.Value}

	case lexer.TokTrue:
		p.advance()
		return &ast.BoolLiteral{Span: tok.Span, Value: true}

	case lexer.TokFalse:
		p.advance()
		return &ast.BoolLiteral{Span: tok.Span, Value: false}

	case lexer.TokIdent:
		p.advance()
		return &ast.Ident{Span: tok.Span, Name: tok.Value}

	case lexer.TokLParen:
		p.advance()
		expr := p.parseExpr()
		if expr == nil {
			return nil
		}
		if _, ok := p.expect(lexer.TokRParen); !ok {
			return nil
		}
		return expr

	default:
		p.addError(fmt.Sprintf("unexpected token '%s' in expression", tok.Value), &tok.Span)
		return nil
	}
}
