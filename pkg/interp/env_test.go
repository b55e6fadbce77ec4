package interp_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cielang/cie/pkg/diagnostics"
	"github.com/cielang/cie/pkg/interp"
)

func TestEnv_DeclareLookupRoundTrip(t *testing.T) {
	env := interp.NewEnv(nil)
	require.NoError(t, env.DeclareVariable("Count", interp.TypeInteger))
	require.NoError(t, env.Assign("count", interp.NewInt(9)))

	val, err := env.Lookup("COUNT")
	require.NoError(t, err)
	assert.Equal(t, interp.NewInt(9), val)
}

func TestEnv_ShadowingWritesInnerOnly(t *testing.T) {
	outer := interp.NewEnv(nil)
	require.NoError(t, outer.DeclareVariable("X", interp.TypeInteger))
	require.NoError(t, outer.Assign("X", interp.NewInt(1)))

	inner := outer.Child()
	require.NoError(t, inner.DeclareVariable("X", interp.TypeInteger))
	require.NoError(t, inner.Assign("X", interp.NewInt(2)))

	innerVal, err := inner.Lookup("X")
	require.NoError(t, err)
	assert.Equal(t, interp.NewInt(2), innerVal)

	outerVal, err := outer.Lookup("X")
	require.NoError(t, err)
	assert.Equal(t, interp.NewInt(1), outerVal)
}

func TestEnv_ChildAssignReachesOuterBinding(t *testing.T) {
	outer := interp.NewEnv(nil)
	require.NoError(t, outer.DeclareVariable("X", interp.TypeInteger))

	inner := outer.Child()
	require.NoError(t, inner.Assign("X", interp.NewInt(5)))

	val, err := outer.Lookup("X")
	require.NoError(t, err)
	assert.Equal(t, interp.NewInt(5), val)
}

func TestEnv_ShadowingAcrossKinds(t *testing.T) {
	outer := interp.NewEnv(nil)
	require.NoError(t, outer.DeclareConstant("Max", interp.NewInt(10)))

	inner := outer.Child()
	require.NoError(t, inner.DeclareVariable("Max", interp.TypeInteger))
	require.NoError(t, inner.Assign("Max", interp.NewInt(99)))

	outerVal, err := outer.Lookup("Max")
	require.NoError(t, err)
	assert.Equal(t, interp.NewInt(10), outerVal)
}

func TestEnv_TypeOf(t *testing.T) {
	env := interp.NewEnv(nil)
	require.NoError(t, env.DeclareVariable("S", interp.TypeString))

	typ, err := env.TypeOf("s")
	require.NoError(t, err)
	assert.Equal(t, interp.TypeString, typ)
}

func TestEnv_DumpShowsDeclarationOrder(t *testing.T) {
	env := interp.NewEnv(nil)
	require.NoError(t, env.DeclareVariable("B", interp.TypeInteger))
	require.NoError(t, env.DeclareVariable("A", interp.TypeReal))
	require.NoError(t, env.Assign("B", interp.NewInt(1)))
	require.NoError(t, env.DeclareConstant("Pi", interp.NewReal(3.14)))

	dump := env.Dump()
	assert.Contains(t, dump, "B : INTEGER = 1")
	assert.Contains(t, dump, "A : REAL = <unset>")
	assert.Contains(t, dump, "PI = 3.14")
	assert.Less(t, strings.Index(dump, "B :"), strings.Index(dump, "A :"), "declaration order not preserved")
}

func TestCoerceInput_Integer(t *testing.T) {
	val, err := interp.CoerceInput(interp.TypeInteger, " 42 ")
	require.NoError(t, err)
	assert.Equal(t, interp.NewInt(42), val)

	_, err = interp.CoerceInput(interp.TypeInteger, "4.5")
	expectRuntimeError(t, err, diagnostics.EInput)
}

func TestCoerceInput_Real(t *testing.T) {
	val, err := interp.CoerceInput(interp.TypeReal, "2.5")
	require.NoError(t, err)
	assert.Equal(t, interp.NewReal(2.5), val)

	val, err = interp.CoerceInput(interp.TypeReal, "3")
	require.NoError(t, err)
	assert.Equal(t, interp.NewReal(3), val)
}

func TestCoerceInput_Boolean(t *testing.T) {
	val, err := interp.CoerceInput(interp.TypeBoolean, "TrUe")
	require.NoError(t, err)
	assert.Equal(t, interp.NewBool(true), val)

	_, err = interp.CoerceInput(interp.TypeBoolean, "yes")
	expectRuntimeError(t, err, diagnostics.EInput)
}

func TestCoerceInput_Char(t *testing.T) {
	val, err := interp.CoerceInput(interp.TypeChar, "x")
	require.NoError(t, err)
	assert.Equal(t, interp.NewChar('x'), val)

	_, err = interp.CoerceInput(interp.TypeChar, "xy")
	expectRuntimeError(t, err, diagnostics.EInput)
}

func TestCoerceInput_StringPassesThrough(t *testing.T) {
	val, err := interp.CoerceInput(interp.TypeString, "  raw text ")
	require.NoError(t, err)
	assert.Equal(t, interp.NewStr("  raw text "), val)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "42", interp.FormatValue(interp.NewInt(42)))
	assert.Equal(t, "4.0", interp.FormatValue(interp.NewReal(4)))
	assert.Equal(t, "3.5", interp.FormatValue(interp.NewReal(3.5)))
	assert.Equal(t, "TRUE", interp.FormatValue(interp.NewBool(true)))
	assert.Equal(t, "FALSE", interp.FormatValue(interp.NewBool(false)))
	assert.Equal(t, "x", interp.FormatValue(interp.NewChar('x')))
	assert.Equal(t, "hi", interp.FormatValue(interp.NewStr("hi")))
	assert.Equal(t, "25/12/2024", interp.FormatValue(interp.NewDate("25/12/2024")))
}

func TestParseType(t *testing.T) {
	typ, ok := interp.ParseType("integer")
	assert.True(t, ok)
	assert.Equal(t, interp.TypeInteger, typ)

	_, ok = interp.ParseType("NUMBER")
	assert.False(t, ok)
}
