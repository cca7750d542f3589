package ztype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrimitiveDisplay(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{TI32, "i32"},
		{TU64, "u64"},
		{TBool, "bool"},
		{TVoid, "void"},
		{TF64, "f64"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.typ.String())
	}
}

func TestGenericDisplayNested(t *testing.T) {
	opt := &Generic{Name: "Option", TypeArgs: []Type{TI32}}
	res := &Generic{Name: "Result", TypeArgs: []Type{opt, &StringType{StaticString}}}
	assert.Equal(t, "Result<Option<i32>, StaticString>", res.String())
}

func TestStringCoercionDirectionality(t *testing.T) {
	lit := &StringType{StaticLiteral}
	static := &StringType{StaticString}
	dyn := &StringType{DynamicString}

	assert.True(t, CanCoerceString(lit, static))
	assert.True(t, CanCoerceString(static, lit))
	assert.True(t, CanCoerceString(static, dyn))
	assert.False(t, CanCoerceString(dyn, static), "String -> StaticString must be rejected")
	assert.False(t, CanCoerceString(dyn, lit), "String -> StaticLiteral must be rejected")
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsInteger(TI32))
	assert.True(t, IsUnsignedInteger(TU8))
	assert.False(t, IsSignedInteger(TU8))
	assert.True(t, IsNumeric(TF32))
	assert.True(t, IsStringType(&StringType{StaticLiteral}))
	assert.Equal(t, 32, BitSize(TI32))
	assert.Equal(t, 64, BitSize(TUsize))
	assert.Equal(t, 1, BitSize(TBool))

	ptr := &Ptr{Inner: TI64}
	assert.True(t, IsPtrType(ptr))
	assert.True(t, TI64.Equals(PtrInner(ptr)))
}

func TestPromoteNumericFloatDominates(t *testing.T) {
	assert.True(t, PromoteNumeric(TI32, TF64).Equals(TF64))
	assert.True(t, PromoteNumeric(TF32, TI64).Equals(TF32))
}

func TestPromoteNumericWidthAndSign(t *testing.T) {
	assert.True(t, PromoteNumeric(TI8, TI32).Equals(TI32))
	assert.True(t, PromoteNumeric(TU8, TU32).Equals(TU32), "both unsigned stays unsigned")
	assert.True(t, PromoteNumeric(TU32, TI32).Equals(TI32), "mixed sign widens to signed")
}

func TestEnumDiscriminant(t *testing.T) {
	e := &Enum{Name: "Option", Variants: []Variant{
		{Name: "Some", Payload: TI32},
		{Name: "None"},
	}}
	d, ok := e.Discriminant("None")
	assert.True(t, ok)
	assert.Equal(t, int64(1), d)
}

func TestFunctionFunctionPointerInterconversion(t *testing.T) {
	f := &Function{Args: []Type{TI32, TI32}, Return: TI32}
	fp := f.AsFunctionPointer()
	assert.True(t, fp.AsFunction().Equals(f))
}
