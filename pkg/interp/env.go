package interp

import (
	"fmt"
	"strings"

	"github.com/cielang/cie/pkg/diagnostics"
)

// BindingKind distinguishes variables from constants.
type BindingKind int

const (
	KindVariable BindingKind = iota
	KindConstant
)

// binding is one named storage slot. Variables carry a declared type and
// may be unset until first assignment; constants are created with their
// value and never change.
type binding struct {
	kind  BindingKind
	typ   Type
	value Value
	set   bool
}

// Env is a scoped environment for typed bindings. It supports
// parent-chained lookup: resolution walks from the innermost scope
// outward, declaration always targets the innermost scope.
type Env struct {
	bindings map[string]*binding
	order    []string
	parent   *Env
}

// NewEnv creates a new environment with an optional parent scope.
func NewEnv(parent *Env) *Env {
	return &Env{
		bindings: make(map[string]*binding),
		parent:   parent,
	}
}

// Child creates a new child scope whose parent is this environment.
func (e *Env) Child() *Env {
	return NewEnv(e)
}

// canon is the single normalization point for identifier keys.
// Identifiers are case-insensitive; every public Env operation passes
// through here before touching the maps.
func canon(name string) string {
	return strings.ToUpper(name)
}

// resolve walks the scope chain for a binding, innermost first.
func (e *Env) resolve(key string) *binding {
	for env := e; env != nil; env = env.parent {
		if b, ok := env.bindings[key]; ok {
			return b
		}
	}
	return nil
}

// DeclareVariable creates an unset variable binding in this scope.
// Redeclaring a name already bound in this scope fails; shadowing an
// outer-scope binding is legal.
func (e *Env) DeclareVariable(name string, typ Type) error {
	key := canon(name)
	if _, ok := e.bindings[key]; ok {
		return &RuntimeError{
			Code:    diagnostics.EDupDecl,
			Message: fmt.Sprintf("identifier '%s' already declared", name),
		}
	}
	if _, ok := typeNames[typ]; !ok {
		return &RuntimeError{
			Code:    diagnostics.EUnknownType,
			Message: fmt.Sprintf("unknown type for variable '%s'", name),
		}
	}
	e.bindings[key] = &binding{kind: KindVariable, typ: typ}
	e.order = append(e.order, key)
	return nil
}

// DeclareConstant creates an immutable constant binding holding value.
// The same same-scope redeclaration rule as DeclareVariable applies.
func (e *Env) DeclareConstant(name string, value Value) error {
	key := canon(name)
	if _, ok := e.bindings[key]; ok {
		return &RuntimeError{
			Code:    diagnostics.EDupDecl,
			Message: fmt.Sprintf("identifier '%s' already declared", name),
		}
	}
	e.bindings[key] = &binding{kind: KindConstant, typ: TagOf(value), value: value, set: true}
	e.order = append(e.order, key)
	return nil
}

// Assign resolves name through the scope chain and overwrites the owning
// binding in place. The value must match the binding's declared type;
// integers widen to REAL, single-character strings narrow to CHAR, and
// text passes through to DATE, but nothing else coerces.
func (e *Env) Assign(name string, value Value) error {
	key := canon(name)
	b := e.resolve(key)
	if b == nil {
		return &RuntimeError{
			Code:    diagnostics.EUndeclared,
			Message: fmt.Sprintf("variable '%s' has not been declared", name),
		}
	}
	if b.kind == KindConstant {
		return &RuntimeError{
			Code:    diagnostics.EConstAssign,
			Message: fmt.Sprintf("cannot re-assign to constant '%s'", name),
		}
	}
	converted, ok := convertAssignable(b.typ, value)
	if !ok {
		return &RuntimeError{
			Code:    diagnostics.ETypeMismatch,
			Message: fmt.Sprintf("cannot assign %s value to %s variable '%s'", TagOf(value), b.typ, name),
		}
	}
	b.value = converted
	b.set = true
	return nil
}

// Lookup resolves name through the scope chain and returns its current
// value. Reading a declared but never-assigned variable is an error, not
// a zero default.
func (e *Env) Lookup(name string) (Value, error) {
	key := canon(name)
	b := e.resolve(key)
	if b == nil {
		return nil, &RuntimeError{
			Code:    diagnostics.EUndeclared,
			Message: fmt.Sprintf("identifier '%s' has not been declared", name),
		}
	}
	if !b.set {
		return nil, &RuntimeError{
			Code:    diagnostics.EUninitialized,
			Message: fmt.Sprintf("variable '%s' used before assignment", name),
		}
	}
	return b.value, nil
}

// TypeOf resolves name and returns its declared type. Constants report
// their inferred tag; it is display-only and never drives mismatch checks.
func (e *Env) TypeOf(name string) (Type, error) {
	key := canon(name)
	b := e.resolve(key)
	if b == nil {
		return TypeInvalid, &RuntimeError{
			Code:    diagnostics.EUndeclared,
			Message: fmt.Sprintf("identifier '%s' has not been declared", name),
		}
	}
	return b.typ, nil
}

// convertAssignable applies the type-matching rule for assignment and
// returns the stored representation.
func convertAssignable(typ Type, value Value) (Value, bool) {
	switch typ {
	case TypeInteger:
		if v, ok := value.(IntValue); ok {
			return v, true
		}
	case TypeReal:
		switch v := value.(type) {
		case IntValue:
			return NewReal(float64(v.Value)), true
		case RealValue:
			return v, true
		}
	case TypeString:
		switch v := value.(type) {
		case StrValue:
			return v, true
		case CharValue:
			return NewStr(string(v.Value)), true
		}
	case TypeBoolean:
		if v, ok := value.(BoolValue); ok {
			return v, true
		}
	case TypeChar:
		switch v := value.(type) {
		case CharValue:
			return v, true
		case StrValue:
			r := []rune(v.Value)
			if len(r) == 1 {
				return NewChar(r[0]), true
			}
		}
	case TypeDate:
		switch v := value.(type) {
		case DateValue:
			return v, true
		case StrValue:
			return NewDate(v.Value), true
		case CharValue:
			return NewDate(string(v.Value)), true
		}
	}
	return nil, false
}

// Dump renders the bindings of this scope for the --env flag and the
// REPL's :env command, in declaration order.
func (e *Env) Dump() string {
	var vars, consts []string
	for _, key := range e.order {
		b := e.bindings[key]
		if b.kind == KindConstant {
			consts = append(consts, fmt.Sprintf("  %s = %s", key, FormatValue(b.value)))
			continue
		}
		if b.set {
			vars = append(vars, fmt.Sprintf("  %s : %s = %s", key, b.typ, FormatValue(b.value)))
		} else {
			vars = append(vars, fmt.Sprintf("  %s : %s = <unset>", key, b.typ))
		}
	}

	var out strings.Builder
	if len(vars) == 0 {
		out.WriteString("No variables.\n")
	} else {
		out.WriteString("Variables:\n")
		out.WriteString(strings.Join(vars, "\n"))
		out.WriteString("\n")
	}
	if len(consts) == 0 {
		out.WriteString("No constants.\n")
	} else {
		out.WriteString("Constants:\n")
		out.WriteString(strings.Join(consts, "\n"))
		out.WriteString("\n")
	}
	return out.String()
}
