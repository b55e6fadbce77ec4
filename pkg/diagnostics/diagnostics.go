// Package diagnostics defines diagnostic types for lex/parse/check/runtime errors.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cielang/cie/pkg/ast"
)

// Diagnostic code constants.
const (
	ELex           = "E_LEX"
	EParse         = "E_PARSE"
	EDupDecl       = "E_DUP_DECL"
	EUndeclared    = "E_UNDECLARED"
	EConstAssign   = "E_CONST_ASSIGN"
	EUnknownType   = "E_UNKNOWN_TYPE"
	ETypeMismatch  = "E_TYPE_MISMATCH"
	EUninitialized = "E_UNINITIALIZED"
	EUnsupportedOp = "E_UNSUPPORTED_OP"
	EInput         = "E_INPUT"
	EIO            = "E_IO"
)

// Diagnostic represents a lex, parse, check, or runtime diagnostic.
type Diagnostic struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Span    *ast.Span `json:"span,omitempty"`
	Hint    string    `json:"hint,omitempty"`
}

// MakeDiag creates a new Diagnostic.
func MakeDiag(code, message string, span *ast.Span, hint string) Diagnostic {
	return Diagnostic{
		Code:    code,
		Message: message,
		Span:    span,
		Hint:    hint,
	}
}

// FormatDiagnostic formats a single diagnostic for display.
func FormatDiagnostic(d Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(d)
		return string(b)
	}
	loc := "<unknown>"
	if d.Span != nil {
		loc = fmt.Sprintf("%s:%d:%d", d.Span.File, d.Span.StartLine, d.Span.StartCol)
	}
	out := fmt.Sprintf("error[%s]: %s\n  --> %s", d.Code, d.Message, loc)
	if d.Hint != "" {
		out += fmt.Sprintf("\n  hint: %s", d.Hint)
	}
	return out
}

// FormatDiagnostics formats a slice of diagnostics for display.
func FormatDiagnostics(diags []Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(diags)
		return string(b)
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = FormatDiagnostic(d, true)
	}
	return strings.Join(parts, "\n\n")
}
