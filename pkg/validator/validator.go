// Package validator implements semantic validation of pseudocode programs.
//
// Validation is a pre-execution pass: it walks the whole program and
// collects every diagnostic it can find without evaluating anything, so
// `cie check` can report all problems in one run. The scope discipline
// mirrors the runtime environment, including case-insensitive names.
package validator

import (
	"fmt"
	"strings"

	"github.com/cielang/cie/pkg/ast"
	"github.com/cielang/cie/pkg/diagnostics"
	"github.com/cielang/cie/pkg/interp"
)

type bindingKind int

const (
	kindVariable bindingKind = iota
	kindConstant
)

type scope struct {
	bindings map[string]bindingKind
	parent   *scope
}

func newScope(parent *scope) *scope {
	return &scope{bindings: make(map[string]bindingKind), parent: parent}
}

func canon(name string) string {
	return strings.ToUpper(name)
}

func (s *scope) lookup(name string) (bindingKind, bool) {
	if k, ok := s.bindings[canon(name)]; ok {
		return k, true
	}
	if s.parent != nil {
		return s.parent.lookup(name)
	}
	return 0, false
}

func (s *scope) hasLocal(name string) bool {
	_, ok := s.bindings[canon(name)]
	return ok
}

func (s *scope) add(name string, kind bindingKind) {
	s.bindings[canon(name)] = kind
}

type validator struct {
	diags []diagnostics.Diagnostic
}

// Validate performs semantic analysis on a program and returns diagnostics.
func Validate(program *ast.Program) []diagnostics.Diagnostic {
	v := &validator{}
	v.validateStatements(program.Statements, newScope(nil))
	return v.diags
}

func (v *validator) addDiag(code, msg string, span *ast.Span) {
	v.diags = append(v.diags, diagnostics.MakeDiag(code, msg, span, ""))
}

func (v *validator) validateStatements(stmts []ast.Stmt, sc *scope) {
	for _, stmt := range stmts {
		v.validateStmt(stmt, sc)
	}
}

func (v *validator) validateStmt(stmt ast.Stmt, sc *scope) {
	switch s := stmt.(type) {
	case *ast.DeclareStmt:
		if _, ok := interp.ParseType(s.TypeName); !ok {
			span := s.Span
			v.addDiag(diagnostics.EUnknownType, fmt.Sprintf("unknown type '%s' for variable '%s'", s.TypeName, s.Name), &span)
		}
		if sc.hasLocal(s.Name) {
			span := s.Span
			v.addDiag(diagnostics.EDupDecl, fmt.Sprintf("'%s' is already declared in this scope", s.Name), &span)
			return
		}
		sc.add(s.Name, kindVariable)

	case *ast.ConstantStmt:
		v.validateExpr(s.Value, sc)
		if sc.hasLocal(s.Name) {
			span := s.Span
			v.addDiag(diagnostics.EDupDecl, fmt.Sprintf("'%s' is already declared in this scope", s.Name), &span)
			return
		}
		sc.add(s.Name, kindConstant)

	case *ast.AssignStmt:
		v.validateExpr(s.Value, sc)
		v.validateTarget(s.Name, sc, s.Span)

	case *ast.InputStmt:
		v.validateTarget(s.Name, sc, s.Span)

	case *ast.OutputStmt:
		for _, expr := range s.Values {
			v.validateExpr(expr, sc)
		}

	case *ast.IfStmt:
		v.validateExpr(s.Cond, sc)
		v.validateStatements(s.ThenBody, newScope(sc))
		if s.ElseBody != nil {
			v.validateStatements(s.ElseBody, newScope(sc))
		}

	case *ast.WhileStmt:
		v.validateExpr(s.Cond, sc)
		v.validateStatements(s.Body, newScope(sc))

	case *ast.ForStmt:
		v.validateExpr(s.Start, sc)
		v.validateExpr(s.End, sc)
		if s.Step != nil {
			v.validateExpr(s.Step, sc)
			if isZeroLiteral(s.Step) {
				span := s.Span
				v.addDiag(diagnostics.EUnsupportedOp, "FOR STEP must not be zero", &span)
			}
		}
		if kind, ok := sc.lookup(s.Name); ok {
			if kind == kindConstant {
				span := s.Span
				v.addDiag(diagnostics.EConstAssign, fmt.Sprintf("cannot use constant '%s' as a loop variable", s.Name), &span)
			}
		} else {
			// The loop declares its control variable in the enclosing scope.
			sc.add(s.Name, kindVariable)
		}
		v.validateStatements(s.Body, newScope(sc))
	}
}

func (v *validator) validateTarget(name string, sc *scope, span ast.Span) {
	kind, ok := sc.lookup(name)
	if !ok {
		v.addDiag(diagnostics.EUndeclared, fmt.Sprintf("'%s' has not been declared", name), &span)
		return
	}
	if kind == kindConstant {
		v.addDiag(diagnostics.EConstAssign, fmt.Sprintf("cannot assign to constant '%s'", name), &span)
	}
}

func (v *validator) validateExpr(expr ast.Expr, sc *scope) {
	switch e := expr.(type) {
	case *ast.Ident:
		if _, ok := sc.lookup(e.Name); !ok {
			span := e.Span
			v.addDiag(diagnostics.EUndeclared, fmt.Sprintf("'%s' has not been declared", e.Name), &span)
		}
	case *ast.UnaryExpr:
		v.validateExpr(e.Operand, sc)
	case *ast.BinaryExpr:
		v.validateExpr(e.Left, sc)
		v.validateExpr(e.Right, sc)
	}
}

func isZeroLiteral(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		return e.Value == 0
	case *ast.RealLiteral:
		return e.Value == 0
	case *ast.UnaryExpr:
		if e.Op == ast.OpNeg {
			return isZeroLiteral(e.Operand)
		}
	}
	return false
}
