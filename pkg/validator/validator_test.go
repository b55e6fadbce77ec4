package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cielang/cie/pkg/diagnostics"
	"github.com/cielang/cie/pkg/parser"
	"github.com/cielang/cie/pkg/validator"
)

func check(t *testing.T, src string) []diagnostics.Diagnostic {
	t.Helper()
	prog, diags := parser.Parse(src, "test.cie")
	if len(diags) > 0 {
		t.Fatalf("parse errors: %s", diagnostics.FormatDiagnostics(diags, true))
	}
	return validator.Validate(prog)
}

func expectCodes(t *testing.T, diags []diagnostics.Diagnostic, want ...string) {
	t.Helper()
	got := make([]string, 0, len(diags))
	for _, d := range diags {
		got = append(got, d.Code)
	}
	assert.Equal(t, want, got)
}

func TestValidate_CleanProgram(t *testing.T) {
	diags := check(t, `
DECLARE X : INTEGER
X <- 5
IF X > 3 THEN
  OUTPUT X
ENDIF`)
	assert.Empty(t, diags)
}

func TestValidate_UnknownType(t *testing.T) {
	diags := check(t, `DECLARE X : NUMBER`)
	expectCodes(t, diags, diagnostics.EUnknownType)
}

func TestValidate_DuplicateDeclaration(t *testing.T) {
	diags := check(t, "DECLARE X : INTEGER\nDECLARE x : STRING")
	expectCodes(t, diags, diagnostics.EDupDecl)
}

func TestValidate_ShadowingInBlockIsAllowed(t *testing.T) {
	diags := check(t, `
DECLARE X : INTEGER
IF TRUE THEN
  DECLARE X : STRING
ENDIF`)
	assert.Empty(t, diags)
}

func TestValidate_UndeclaredAssignment(t *testing.T) {
	diags := check(t, `X <- 5`)
	expectCodes(t, diags, diagnostics.EUndeclared)
}

func TestValidate_UndeclaredInExpression(t *testing.T) {
	diags := check(t, `OUTPUT Y + 1`)
	expectCodes(t, diags, diagnostics.EUndeclared)
}

func TestValidate_ConstantAssignment(t *testing.T) {
	diags := check(t, "CONSTANT Max = 10\nMax <- 20")
	expectCodes(t, diags, diagnostics.EConstAssign)
}

func TestValidate_InputIntoConstant(t *testing.T) {
	diags := check(t, "CONSTANT Max = 10\nINPUT Max")
	expectCodes(t, diags, diagnostics.EConstAssign)
}

func TestValidate_ZeroStep(t *testing.T) {
	diags := check(t, "FOR I <- 1 TO 3 STEP 0\nNEXT I")
	expectCodes(t, diags, diagnostics.EUnsupportedOp)
}

func TestValidate_NegatedZeroStep(t *testing.T) {
	diags := check(t, "FOR I <- 1 TO 3 STEP -0\nNEXT I")
	expectCodes(t, diags, diagnostics.EUnsupportedOp)
}

func TestValidate_ForDeclaresControlVariable(t *testing.T) {
	diags := check(t, "FOR I <- 1 TO 3\nNEXT I\nOUTPUT I")
	assert.Empty(t, diags)
}

func TestValidate_ForOverConstant(t *testing.T) {
	diags := check(t, "CONSTANT I = 1\nFOR I <- 1 TO 3\nNEXT I")
	expectCodes(t, diags, diagnostics.EConstAssign)
}

func TestValidate_CollectsMultipleDiagnostics(t *testing.T) {
	diags := check(t, "X <- 1\nDECLARE Y : WIDGET\nOUTPUT Z")
	expectCodes(t, diags, diagnostics.EUndeclared, diagnostics.EUnknownType, diagnostics.EUndeclared)
}
