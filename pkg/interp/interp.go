package interp

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/cielang/cie/pkg/ast"
	"github.com/cielang/cie/pkg/diagnostics"
)

// TraceEventType identifies the type of a trace event.
type TraceEventType string

const (
	TraceRunStart  TraceEventType = "run_start"
	TraceRunEnd    TraceEventType = "run_end"
	TraceStmt      TraceEventType = "stmt"
	TraceInput     TraceEventType = "input"
	TraceOutput    TraceEventType = "output"
	TraceLoopStart TraceEventType = "loop_start"
	TraceLoopEnd   TraceEventType = "loop_end"
)

// TraceEvent represents a single trace event emitted during execution.
type TraceEvent struct {
	Event  TraceEventType `json:"event"`
	Detail string         `json:"detail,omitempty"`
	Span   *ast.Span      `json:"span,omitempty"`
}

// Options configures program execution. Input and Output are the I/O
// collaborators: Input blocks for one line of raw text, Output writes its
// arguments as one space-joined line. Both have console defaults.
type Options struct {
	Input  func(prompt string) (string, error)
	Output func(values ...string)
	Trace  func(event TraceEvent)
	Env    *Env // existing environment to mutate; a fresh one is created when nil
}

// RuntimeError represents a runtime error during execution.
type RuntimeError struct {
	Code    string
	Message string
	Span    *ast.Span
}

func (e *RuntimeError) Error() string {
	return e.Message
}

type interpreter struct {
	opts Options
	env  *Env
}

func (it *interpreter) emit(event TraceEventType, detail string, span *ast.Span) {
	if it.opts.Trace != nil {
		it.opts.Trace(TraceEvent{Event: event, Detail: detail, Span: span})
	}
}

// Run executes a program against one environment and returns that
// environment, which makes final state easy to inspect in tests and the
// REPL. Execution is a single depth-first walk in document order.
func Run(program *ast.Program, opts Options) (*Env, error) {
	if opts.Input == nil {
		reader := bufio.NewReader(os.Stdin)
		opts.Input = func(prompt string) (string, error) {
			fmt.Print(prompt)
			line, err := reader.ReadString('\n')
			if err != nil {
				return "", err
			}
			return strings.TrimRight(line, "\r\n"), nil
		}
	}
	if opts.Output == nil {
		opts.Output = func(values ...string) {
			fmt.Println(strings.Join(values, " "))
		}
	}

	env := opts.Env
	if env == nil {
		env = NewEnv(nil)
	}

	it := &interpreter{opts: opts, env: env}

	span := program.Span
	it.emit(TraceRunStart, "", &span)
	err := it.executeBlock(program.Statements, env)
	it.emit(TraceRunEnd, "", &span)

	return env, err
}

func (it *interpreter) executeBlock(stmts []ast.Stmt, env *Env) error {
	for _, stmt := range stmts {
		if err := it.executeStmt(stmt, env); err != nil {
			return err
		}
	}
	return nil
}

func (it *interpreter) executeStmt(stmt ast.Stmt, env *Env) error {
	span := stmt.NodeSpan()
	it.emit(TraceStmt, stmt.Kind(), &span)

	switch s := stmt.(type) {
	case *ast.DeclareStmt:
		typ, ok := ParseType(s.TypeName)
		if !ok {
			return &RuntimeError{
				Code:    diagnostics.EUnknownType,
				Message: fmt.Sprintf("unknown type '%s' for variable '%s'", s.TypeName, s.Name),
				Span:    &span,
			}
		}
		return withSpan(env.DeclareVariable(s.Name, typ), span)

	case *ast.ConstantStmt:
		// The initializer must be fully evaluable here; no forward
		// references.
		val, err := it.evalExpr(s.Value, env)
		if err != nil {
			return err
		}
		return withSpan(env.DeclareConstant(s.Name, val), span)

	case *ast.AssignStmt:
		// The right-hand side is evaluated first; if it fails, no
		// assignment occurs.
		val, err := it.evalExpr(s.Value, env)
		if err != nil {
			return err
		}
		return withSpan(env.Assign(s.Name, val), span)

	case *ast.InputStmt:
		return it.executeInput(s, env)

	case *ast.OutputStmt:
		parts := make([]string, 0, len(s.Values))
		for _, expr := range s.Values {
			val, err := it.evalExpr(expr, env)
			if err != nil {
				return err
			}
			parts = append(parts, FormatValue(val))
		}
		it.emit(TraceOutput, strings.Join(parts, " "), &span)
		it.opts.Output(parts...)
		return nil

	case *ast.IfStmt:
		cond, err := it.evalCondition(s.Cond, env, "IF")
		if err != nil {
			return err
		}
		if cond {
			return it.executeBlock(s.ThenBody, env.Child())
		}
		if s.ElseBody != nil {
			return it.executeBlock(s.ElseBody, env.Child())
		}
		return nil

	case *ast.WhileStmt:
		it.emit(TraceLoopStart, "while", &span)
		for {
			cond, err := it.evalCondition(s.Cond, env, "WHILE")
			if err != nil {
				return err
			}
			if !cond {
				break
			}
			if err := it.executeBlock(s.Body, env.Child()); err != nil {
				return err
			}
		}
		it.emit(TraceLoopEnd, "while", &span)
		return nil

	case *ast.ForStmt:
		return it.executeFor(s, env)

	default:
		return &RuntimeError{
			Code:    diagnostics.EUnsupportedOp,
			Message: fmt.Sprintf("unsupported statement type: %T", stmt),
			Span:    &span,
		}
	}
}

// executeInput reads one raw line and performs type-directed coercion
// against the target's declared type. A coercion failure is reported
// through the output collaborator and the statement is skipped, leaving
// the binding unchanged; every other failure aborts as usual.
func (it *interpreter) executeInput(s *ast.InputStmt, env *Env) error {
	span := s.Span

	typ, err := env.TypeOf(s.Name)
	if err != nil {
		return withSpan(err, span)
	}

	raw, rerr := it.opts.Input(fmt.Sprintf("INPUT %s: ", strings.ToUpper(s.Name)))
	if rerr != nil {
		return &RuntimeError{
			Code:    diagnostics.EIO,
			Message: fmt.Sprintf("reading input for '%s': %s", s.Name, rerr),
			Span:    &span,
		}
	}
	it.emit(TraceInput, raw, &span)

	val, cerr := CoerceInput(typ, raw)
	if cerr != nil {
		it.opts.Output(fmt.Sprintf("Input error: %s, %s keeps its previous value.", cerr, strings.ToUpper(s.Name)))
		return nil
	}

	return withSpan(env.Assign(s.Name, val), span)
}

// executeFor runs a counted loop. Start, end and step are evaluated once,
// at entry; the control variable is declared in the enclosing scope when
// missing and keeps its first out-of-range value after the loop.
func (it *interpreter) executeFor(s *ast.ForStmt, env *Env) error {
	span := s.Span

	startVal, err := it.evalExpr(s.Start, env)
	if err != nil {
		return err
	}
	endVal, err := it.evalExpr(s.End, env)
	if err != nil {
		return err
	}
	var stepVal Value = NewInt(1)
	if s.Step != nil {
		stepVal, err = it.evalExpr(s.Step, env)
		if err != nil {
			return err
		}
	}

	start, ok1 := asNumber(startVal)
	end, ok2 := asNumber(endVal)
	step, ok3 := asNumber(stepVal)
	if !ok1 || !ok2 || !ok3 {
		return &RuntimeError{
			Code:    diagnostics.EUnsupportedOp,
			Message: "FOR bounds and STEP must be numeric",
			Span:    &span,
		}
	}
	if step.isZero() {
		return &RuntimeError{
			Code:    diagnostics.EUnsupportedOp,
			Message: "FOR STEP must not be zero",
			Span:    &span,
		}
	}

	// Declare the control variable on first use so it survives the loop.
	if _, terr := env.TypeOf(s.Name); terr != nil {
		typ := TypeInteger
		if !start.isInt || !end.isInt || !step.isInt {
			typ = TypeReal
		}
		if derr := env.DeclareVariable(s.Name, typ); derr != nil {
			return withSpan(derr, span)
		}
	}

	it.emit(TraceLoopStart, "for "+s.Name, &span)

	current := start
	if err := withSpan(env.Assign(s.Name, current.value()), span); err != nil {
		return err
	}
	for current.inRange(end, step) {
		if err := it.executeBlock(s.Body, env.Child()); err != nil {
			return err
		}
		current = current.plus(step)
		if err := withSpan(env.Assign(s.Name, current.value()), span); err != nil {
			return err
		}
	}

	it.emit(TraceLoopEnd, "for "+s.Name, &span)
	return nil
}

func (it *interpreter) evalCondition(expr ast.Expr, env *Env, keyword string) (bool, error) {
	val, err := it.evalExpr(expr, env)
	if err != nil {
		return false, err
	}
	b, ok := val.(BoolValue)
	if !ok {
		span := expr.NodeSpan()
		return false, &RuntimeError{
			Code:    diagnostics.ETypeMismatch,
			Message: fmt.Sprintf("%s condition must be BOOLEAN, got %s", keyword, TagOf(val)),
			Span:    &span,
		}
	}
	return b.Value, nil
}

func (it *interpreter) evalExpr(expr ast.Expr, env *Env) (Value, error) {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		return NewInt(e.Value), nil

	case *ast.RealLiteral:
		return NewReal(e.Value), nil

	case *ast.BoolLiteral:
		return NewBool(e.Value), nil

	case *ast.StrLiteral:
		return NewStr(e.Value), nil

	case *ast.CharLiteral:
		return NewChar(e.Value), nil

	case *ast.DateLiteral:
		return NewDate(e.Value), nil

	case *ast.Ident:
		val, err := env.Lookup(e.Name)
		return val, withSpan(err, e.Span)

	case *ast.UnaryExpr:
		return it.evalUnary(e, env)

	case *ast.BinaryExpr:
		return it.evalBinary(e, env)

	default:
		span := expr.NodeSpan()
		return nil, &RuntimeError{
			Code:    diagnostics.EUnsupportedOp,
			Message: fmt.Sprintf("unsupported expression type: %T", expr),
			Span:    &span,
		}
	}
}

func (it *interpreter) evalUnary(e *ast.UnaryExpr, env *Env) (Value, error) {
	operand, err := it.evalExpr(e.Operand, env)
	if err != nil {
		return nil, err
	}
	span := e.Span

	switch e.Op {
	case ast.OpNeg:
		switch v := operand.(type) {
		case IntValue:
			return NewInt(-v.Value), nil
		case RealValue:
			return NewReal(-v.Value), nil
		}
		return nil, &RuntimeError{
			Code:    diagnostics.EUnsupportedOp,
			Message: fmt.Sprintf("unary '-' requires a number, got %s", TagOf(operand)),
			Span:    &span,
		}

	case ast.OpNot:
		if v, ok := operand.(BoolValue); ok {
			return NewBool(!v.Value), nil
		}
		return nil, &RuntimeError{
			Code:    diagnostics.EUnsupportedOp,
			Message: fmt.Sprintf("NOT requires a BOOLEAN, got %s", TagOf(operand)),
			Span:    &span,
		}
	}

	return nil, &RuntimeError{
		Code:    diagnostics.EUnsupportedOp,
		Message: fmt.Sprintf("unsupported unary operator '%s'", e.Op),
		Span:    &span,
	}
}

// evalBinary evaluates both operands before dispatching; AND and OR do
// not short-circuit.
func (it *interpreter) evalBinary(e *ast.BinaryExpr, env *Env) (Value, error) {
	left, err := it.evalExpr(e.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := it.evalExpr(e.Right, env)
	if err != nil {
		return nil, err
	}

	span := e.Span

	switch e.Op {
	case ast.OpAnd, ast.OpOr:
		lb, lOk := left.(BoolValue)
		rb, rOk := right.(BoolValue)
		if !lOk || !rOk {
			return nil, &RuntimeError{
				Code:    diagnostics.EUnsupportedOp,
				Message: fmt.Sprintf("%s requires two BOOLEAN operands, got %s and %s", e.Op, TagOf(left), TagOf(right)),
				Span:    &span,
			}
		}
		if e.Op == ast.OpAnd {
			return NewBool(lb.Value && rb.Value), nil
		}
		return NewBool(lb.Value || rb.Value), nil

	case ast.OpAdd:
		if lt, lOk := asText(left); lOk {
			if rt, rOk := asText(right); rOk {
				return NewStr(lt + rt), nil
			}
		}
		return it.evalArith(e.Op, left, right, span)

	case ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpIntDiv, ast.OpMod:
		return it.evalArith(e.Op, left, right, span)

	case ast.OpEq, ast.OpNeq, ast.OpLt, ast.OpGt, ast.OpLtEq, ast.OpGtEq:
		return it.evalComparison(e.Op, left, right, span)
	}

	return nil, &RuntimeError{
		Code:    diagnostics.EUnsupportedOp,
		Message: fmt.Sprintf("unsupported operator '%s'", e.Op),
		Span:    &span,
	}
}

func (it *interpreter) evalArith(op ast.BinaryOp, left, right Value, span ast.Span) (Value, error) {
	l, lOk := asNumber(left)
	r, rOk := asNumber(right)
	if !lOk || !rOk {
		return nil, &RuntimeError{
			Code:    diagnostics.EUnsupportedOp,
			Message: fmt.Sprintf("'%s' requires two numbers, got %s and %s", op, TagOf(left), TagOf(right)),
			Span:    &span,
		}
	}

	switch op {
	case ast.OpAdd:
		if l.isInt && r.isInt {
			return NewInt(l.i + r.i), nil
		}
		return NewReal(l.float() + r.float()), nil

	case ast.OpSub:
		if l.isInt && r.isInt {
			return NewInt(l.i - r.i), nil
		}
		return NewReal(l.float() - r.float()), nil

	case ast.OpMul:
		if l.isInt && r.isInt {
			return NewInt(l.i * r.i), nil
		}
		return NewReal(l.float() * r.float()), nil

	case ast.OpDiv:
		// Ordinary division never truncates: 7 / 2 is 3.5.
		if r.isZero() {
			return nil, &RuntimeError{Code: diagnostics.EUnsupportedOp, Message: "division by zero", Span: &span}
		}
		return NewReal(l.float() / r.float()), nil

	case ast.OpIntDiv:
		if r.isZero() {
			return nil, &RuntimeError{Code: diagnostics.EUnsupportedOp, Message: "division by zero", Span: &span}
		}
		if l.isInt && r.isInt {
			return NewInt(floorDiv(l.i, r.i)), nil
		}
		return NewReal(math.Floor(l.float() / r.float())), nil

	case ast.OpMod:
		// Floor-division convention: -7 MOD 2 is 1.
		if r.isZero() {
			return nil, &RuntimeError{Code: diagnostics.EUnsupportedOp, Message: "modulo by zero", Span: &span}
		}
		if l.isInt && r.isInt {
			return NewInt(l.i - floorDiv(l.i, r.i)*r.i), nil
		}
		lf, rf := l.float(), r.float()
		return NewReal(lf - math.Floor(lf/rf)*rf), nil
	}

	return nil, &RuntimeError{
		Code:    diagnostics.EUnsupportedOp,
		Message: fmt.Sprintf("unsupported arithmetic operator '%s'", op),
		Span:    &span,
	}
}

func (it *interpreter) evalComparison(op ast.BinaryOp, left, right Value, span ast.Span) (Value, error) {
	// Numbers compare across INTEGER and REAL.
	if l, lOk := asNumber(left); lOk {
		if r, rOk := asNumber(right); rOk {
			if l.isInt && r.isInt {
				return applyOrdering(op, compareInt(l.i, r.i)), nil
			}
			return applyOrdering(op, compareFloat(l.float(), r.float())), nil
		}
	}

	// STRING, CHAR and DATE compare as text. Dates join only here: `+`
	// never concatenates them.
	if l, lOk := asOrderedText(left); lOk {
		if r, rOk := asOrderedText(right); rOk {
			return applyOrdering(op, strings.Compare(l, r)), nil
		}
	}

	// BOOLEAN supports equality only.
	if lb, lOk := left.(BoolValue); lOk {
		if rb, rOk := right.(BoolValue); rOk {
			switch op {
			case ast.OpEq:
				return NewBool(lb.Value == rb.Value), nil
			case ast.OpNeq:
				return NewBool(lb.Value != rb.Value), nil
			}
			return nil, &RuntimeError{
				Code:    diagnostics.EUnsupportedOp,
				Message: fmt.Sprintf("'%s' is not defined for BOOLEAN operands", op),
				Span:    &span,
			}
		}
	}

	return nil, &RuntimeError{
		Code:    diagnostics.EUnsupportedOp,
		Message: fmt.Sprintf("cannot compare %s with %s", TagOf(left), TagOf(right)),
		Span:    &span,
	}
}

func applyOrdering(op ast.BinaryOp, cmp int) Value {
	switch op {
	case ast.OpEq:
		return NewBool(cmp == 0)
	case ast.OpNeq:
		return NewBool(cmp != 0)
	case ast.OpLt:
		return NewBool(cmp < 0)
	case ast.OpGt:
		return NewBool(cmp > 0)
	case ast.OpLtEq:
		return NewBool(cmp <= 0)
	case ast.OpGtEq:
		return NewBool(cmp >= 0)
	}
	return NewBool(false)
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// number keeps INTEGER arithmetic exact while letting REAL operands widen
// the whole operation.
type number struct {
	isInt bool
	i     int64
	f     float64
}

func asNumber(v Value) (number, bool) {
	switch val := v.(type) {
	case IntValue:
		return number{isInt: true, i: val.Value}, true
	case RealValue:
		return number{f: val.Value}, true
	}
	return number{}, false
}

func asText(v Value) (string, bool) {
	switch val := v.(type) {
	case StrValue:
		return val.Value, true
	case CharValue:
		return string(val.Value), true
	}
	return "", false
}

// asOrderedText widens asText with DATE, whose dd/mm/yyyy text is
// comparable but not concatenable.
func asOrderedText(v Value) (string, bool) {
	if d, ok := v.(DateValue); ok {
		return d.Value, true
	}
	return asText(v)
}

func (n number) float() float64 {
	if n.isInt {
		return float64(n.i)
	}
	return n.f
}

func (n number) isZero() bool {
	if n.isInt {
		return n.i == 0
	}
	return n.f == 0
}

func (n number) value() Value {
	if n.isInt {
		return NewInt(n.i)
	}
	return NewReal(n.f)
}

func (n number) plus(o number) number {
	if n.isInt && o.isInt {
		return number{isInt: true, i: n.i + o.i}
	}
	return number{f: n.float() + o.float()}
}

func (n number) inRange(end, step number) bool {
	if step.float() > 0 {
		return n.float() <= end.float()
	}
	return n.float() >= end.float()
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// withSpan attaches a statement span to environment errors, which carry
// no position of their own.
func withSpan(err error, span ast.Span) error {
	if err == nil {
		return nil
	}
	if re, ok := err.(*RuntimeError); ok && re.Span == nil {
		s := span
		re.Span = &s
	}
	return err
}
