package ast

import (
	"fmt"
	"strings"
)

// Print renders the tree as an indented outline, one node per line.
// The output backs the CLI's --tree and --dump-tree flags.
func Print(p *Program) string {
	var b strings.Builder
	b.WriteString("program\n")
	for _, s := range p.Statements {
		printStmt(&b, s, 1)
	}
	return b.String()
}

func indent(b *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString("  ")
	}
}

func printStmt(b *strings.Builder, stmt Stmt, depth int) {
	indent(b, depth)
	switch s := stmt.(type) {
	case *DeclareStmt:
		fmt.Fprintf(b, "declare %s : %s\n", s.Name, s.TypeName)
	case *ConstantStmt:
		fmt.Fprintf(b, "constant %s\n", s.Name)
		printExpr(b, s.Value, depth+1)
	case *AssignStmt:
		fmt.Fprintf(b, "assign %s\n", s.Name)
		printExpr(b, s.Value, depth+1)
	case *InputStmt:
		fmt.Fprintf(b, "input %s\n", s.Name)
	case *OutputStmt:
		b.WriteString("output\n")
		for _, v := range s.Values {
			printExpr(b, v, depth+1)
		}
	case *IfStmt:
		b.WriteString("if\n")
		printExpr(b, s.Cond, depth+1)
		indent(b, depth+1)
		b.WriteString("then\n")
		for _, st := range s.ThenBody {
			printStmt(b, st, depth+2)
		}
		if s.ElseBody != nil {
			indent(b, depth+1)
			b.WriteString("else\n")
			for _, st := range s.ElseBody {
				printStmt(b, st, depth+2)
			}
		}
	case *WhileStmt:
		b.WriteString("while\n")
		printExpr(b, s.Cond, depth+1)
		indent(b, depth+1)
		b.WriteString("body\n")
		for _, st := range s.Body {
			printStmt(b, st, depth+2)
		}
	case *ForStmt:
		fmt.Fprintf(b, "for %s\n", s.Name)
		printExpr(b, s.Start, depth+1)
		printExpr(b, s.End, depth+1)
		if s.Step != nil {
			printExpr(b, s.Step, depth+1)
		}
		indent(b, depth+1)
		b.WriteString("body\n")
		for _, st := range s.Body {
			printStmt(b, st, depth+2)
		}
	}
}

func printExpr(b *strings.Builder, expr Expr, depth int) {
	indent(b, depth)
	switch e := expr.(type) {
	case *IntLiteral:
		fmt.Fprintf(b, "int %d\n", e.Value)
	case *RealLiteral:
		fmt.Fprintf(b, "real %v\n", e.Value)
	case *BoolLiteral:
		fmt.Fprintf(b, "bool %v\n", e.Value)
	case *StrLiteral:
		fmt.Fprintf(b, "string %q\n", e.Value)
	case *CharLiteral:
		fmt.Fprintf(b, "char %q\n", e.Value)
	case *DateLiteral:
		fmt.Fprintf(b, "date %s\n", e.Value)
	case *Ident:
		fmt.Fprintf(b, "ident %s\n", e.Name)
	case *UnaryExpr:
		fmt.Fprintf(b, "unary %s\n", e.Op)
		printExpr(b, e.Operand, depth+1)
	case *BinaryExpr:
		fmt.Fprintf(b, "binary %s\n", e.Op)
		printExpr(b, e.Left, depth+1)
		printExpr(b, e.Right, depth+1)
	}
}
