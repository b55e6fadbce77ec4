// Package ast defines the pseudocode syntax tree node types.
package ast

// Span represents a source location range.
type Span struct {
	File      string `json:"file"`
	StartLine int    `json:"startLine"`
	StartCol  int    `json:"startCol"`
	EndLine   int    `json:"endLine"`
	EndCol    int    `json:"endCol"`
}

// Node is the interface implemented by all syntax tree nodes.
type Node interface {
	Kind() string
	NodeSpan() Span
}

// BinaryOp represents a binary operator.
type BinaryOp string

const (
	OpAdd    BinaryOp = "+"
	OpSub    BinaryOp = "-"
	OpMul    BinaryOp = "*"
	OpDiv    BinaryOp = "/"
	OpIntDiv BinaryOp = "DIV"
	OpMod    BinaryOp = "MOD"
	OpAnd    BinaryOp = "AND"
	OpOr     BinaryOp = "OR"
	OpEq     BinaryOp = "="
	OpNeq    BinaryOp = "<>"
	OpLt     BinaryOp = "<"
	OpGt     BinaryOp = ">"
	OpLtEq   BinaryOp = "<="
	OpGtEq   BinaryOp = ">="
)

// UnaryOp represents a unary operator.
type UnaryOp string

const (
	OpNeg UnaryOp = "-"
	OpNot UnaryOp = "NOT"
)

// --- Expr is the interface for all expression nodes ---

type Expr interface {
	Node
	exprNode() // sealed marker
}

// --- Stmt is the interface for all statement nodes ---

type Stmt interface {
	Node
	stmtNode() // sealed marker
}

// --- Literal Expressions ---

type IntLiteral struct {
	Span  Span
	Value int64
}

func (n *IntLiteral) Kind() string   { return "IntLiteral" }
func (n *IntLiteral) NodeSpan() Span { return n.Span }
func (n *IntLiteral) exprNode()      {}

type RealLiteral struct {
	Span  Span
	Value float64
}

func (n *RealLiteral) Kind() string   { return "RealLiteral" }
func (n *RealLiteral) NodeSpan() Span { return n.Span }
func (n *RealLiteral) exprNode()      {}

type BoolLiteral struct {
	Span  Span
	Value bool
}

func (n *BoolLiteral) Kind() string   { return "BoolLiteral" }
func (n *BoolLiteral) NodeSpan() Span { return n.Span }
func (n *BoolLiteral) exprNode()      {}

// StrLiteral holds the decoded text of a double-quoted literal.
// Escape sequences are resolved once, by the lexer.
type StrLiteral struct {
	Span  Span
	Value string
}

func (n *StrLiteral) Kind() string   { return "StrLiteral" }
func (n *StrLiteral) NodeSpan() Span { return n.Span }
func (n *StrLiteral) exprNode()      {}

type CharLiteral struct {
	Span  Span
	Value rune
}

func (n *CharLiteral) Kind() string   { return "CharLiteral" }
func (n *CharLiteral) NodeSpan() Span { return n.Span }
func (n *CharLiteral) exprNode()      {}

// DateLiteral keeps its text form; dates have no calendar semantics.
type DateLiteral struct {
	Span  Span
	Value string
}

func (n *DateLiteral) Kind() string   { return "DateLiteral" }
func (n *DateLiteral) NodeSpan() Span { return n.Span }
func (n *DateLiteral) exprNode()      {}

// --- Identifiers ---

type Ident struct {
	Span Span
	Name string
}

func (n *Ident) Kind() string   { return "Ident" }
func (n *Ident) NodeSpan() Span { return n.Span }
func (n *Ident) exprNode()      {}

// --- Binary & Unary Expressions ---

type BinaryExpr struct {
	Span  Span
	Op    BinaryOp
	Left  Expr
	Right Expr
}

func (n *BinaryExpr) Kind() string   { return "BinaryExpr" }
func (n *BinaryExpr) NodeSpan() Span { return n.Span }
func (n *BinaryExpr) exprNode()      {}

type UnaryExpr struct {
	Span    Span
	Op      UnaryOp
	Operand Expr
}

func (n *UnaryExpr) Kind() string   { return "UnaryExpr" }
func (n *UnaryExpr) NodeSpan() Span { return n.Span }
func (n *UnaryExpr) exprNode()      {}

// --- Statements ---

// DeclareStmt is `DECLARE Name : TypeName`. The type name is kept as
// written; the interpreter resolves it against the type enumeration.
type DeclareStmt struct {
	Span     Span
	Name     string
	TypeName string
}

func (n *DeclareStmt) Kind() string   { return "DeclareStmt" }
func (n *DeclareStmt) NodeSpan() Span { return n.Span }
func (n *DeclareStmt) stmtNode()      {}

// ConstantStmt is `CONSTANT Name = Expr`. The initializer is evaluated
// eagerly at declaration time.
type ConstantStmt struct {
	Span  Span
	Name  string
	Value Expr
}

func (n *ConstantStmt) Kind() string   { return "ConstantStmt" }
func (n *ConstantStmt) NodeSpan() Span { return n.Span }
func (n *ConstantStmt) stmtNode()      {}

type AssignStmt struct {
	Span  Span
	Name  string
	Value Expr
}

func (n *AssignStmt) Kind() string   { return "AssignStmt" }
func (n *AssignStmt) NodeSpan() Span { return n.Span }
func (n *AssignStmt) stmtNode()      {}

type InputStmt struct {
	Span Span
	Name string
}

func (n *InputStmt) Kind() string   { return "InputStmt" }
func (n *InputStmt) NodeSpan() Span { return n.Span }
func (n *InputStmt) stmtNode()      {}

type OutputStmt struct {
	Span   Span
	Values []Expr
}

func (n *OutputStmt) Kind() string   { return "OutputStmt" }
func (n *OutputStmt) NodeSpan() Span { return n.Span }
func (n *OutputStmt) stmtNode()      {}

// IfStmt carries distinct then/else bodies. ElseBody is nil when the
// program has no ELSE block; the interpreter never infers the boundary
// from statement positions.
type IfStmt struct {
	Span     Span
	Cond     Expr
	ThenBody []Stmt
	ElseBody []Stmt
}

func (n *IfStmt) Kind() string   { return "IfStmt" }
func (n *IfStmt) NodeSpan() Span { return n.Span }
func (n *IfStmt) stmtNode()      {}

type WhileStmt struct {
	Span Span
	Cond Expr
	Body []Stmt
}

func (n *WhileStmt) Kind() string   { return "WhileStmt" }
func (n *WhileStmt) NodeSpan() Span { return n.Span }
func (n *WhileStmt) stmtNode()      {}

// ForStmt is `FOR Name <- Start TO End [STEP Step] ... NEXT`.
// Step is nil when absent; the interpreter defaults it to 1.
type ForStmt struct {
	Span  Span
	Name  string
	Start Expr
	End   Expr
	Step  Expr
	Body  []Stmt
}

func (n *ForStmt) Kind() string   { return "ForStmt" }
func (n *ForStmt) NodeSpan() Span { return n.Span }
func (n *ForStmt) stmtNode()      {}

// --- Program ---

type Program struct {
	Span       Span
	Statements []Stmt
}

func (n *Program) Kind() string   { return "Program" }
func (n *Program) NodeSpan() Span { return n.Span }
