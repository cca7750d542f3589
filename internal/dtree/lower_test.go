package dtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenlang/zen/internal/zast"
	"github.com/zenlang/zen/internal/zerrors"
	"github.com/zenlang/zen/internal/ztype"
)

func TestLowerWildcardAlwaysTrue(t *testing.T) {
	p, err := Lower(&zast.WildcardPattern{}, ztype.TI32, nil, NewContext())
	require.NoError(t, err)
	assert.Equal(t, StepAlwaysTrue, p.Kind)
}

func TestLowerIdentifierBindsWholeValue(t *testing.T) {
	p, err := Lower(&zast.Identifier{Name: "x"}, ztype.TI32, nil, NewContext())
	require.NoError(t, err)
	assert.Equal(t, StepBindValue, p.Kind)
	assert.Equal(t, "x", p.BindName)
}

func TestLowerOrPatternRejectsBindings(t *testing.T) {
	or := &zast.OrPattern{Alternatives: []zast.Pattern{
		&zast.Literal{Kind: zast.IntLit, Value: int64(1)},
		&zast.Identifier{Name: "x"},
	}}
	_, err := Lower(or, ztype.TI32, nil, NewContext())
	require.Error(t, err)
	rep, ok := zerrors.As(err)
	require.True(t, ok)
	assert.Equal(t, zerrors.OrPatternBindingDisallowed, rep.Code)
}

func TestLowerOptionSomePopulatesPayloadType(t *testing.T) {
	optionI32 := &ztype.Generic{Name: "Option", TypeArgs: []ztype.Type{ztype.TI32}}
	pat := &zast.EnumLiteralPattern{Variant: "Some", Payload: &zast.Identifier{Name: "x"}}
	p, err := Lower(pat, optionI32, nil, NewContext())
	require.NoError(t, err)
	assert.Equal(t, StepEnumTag, p.Kind)
	assert.True(t, ztype.TI32.Equals(p.PayloadType))
	assert.Equal(t, int64(0), p.Tag)
	require.NotNil(t, p.Payload)
	assert.Equal(t, StepBindValue, p.Payload.Kind)
}

func TestLowerOptionNoneHasNoPayloadAndTagOne(t *testing.T) {
	optionI32 := &ztype.Generic{Name: "Option", TypeArgs: []ztype.Type{ztype.TI32}}
	pat := &zast.EnumLiteralPattern{Variant: "None"}
	p, err := Lower(pat, optionI32, nil, NewContext())
	require.NoError(t, err)
	assert.Nil(t, p.Payload)
	assert.Equal(t, int64(1), p.Tag)
}

// Result<Option<i32>, StaticString> matched as Ok(Some(n)) — the
// nested-key tracking must carry i32 down two levels deep (§8 scenario
// 1 / P4).
func TestLowerNestedResultOkSomeTracksInnerPrimitive(t *testing.T) {
	nested := &ztype.Generic{
		Name: "Result",
		TypeArgs: []ztype.Type{
			&ztype.Generic{Name: "Option", TypeArgs: []ztype.Type{ztype.TI32}},
			&ztype.StringType{Kind: ztype.StaticString},
		},
	}
	inner := &zast.EnumLiteralPattern{Variant: "Some", Payload: &zast.Identifier{Name: "n"}}
	outer := &zast.EnumLiteralPattern{Variant: "Ok", Payload: inner}

	ctx := NewContext()
	p, err := Lower(outer, nested, nil, ctx)
	require.NoError(t, err)

	optionType := p.PayloadType
	require.True(t, ztype.IsOption(optionType))

	innerPlan := p.Payload
	require.NotNil(t, innerPlan)
	assert.True(t, ztype.TI32.Equals(innerPlan.PayloadType))
}

func TestLowerUserEnumResolvesTagFromRegistry(t *testing.T) {
	shape := &ztype.Enum{Name: "Shape", Variants: []ztype.Variant{
		{Name: "Circle", Payload: ztype.TF64},
		{Name: "Square", Payload: ztype.TF64},
	}}
	enums := map[string]*ztype.Enum{"Shape": shape}
	pat := &zast.EnumVariantPattern{Enum: "Shape", Variant: "Square", Payload: &zast.Identifier{Name: "side"}}
	p, err := Lower(pat, shape, enums, NewContext())
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.Tag)
	assert.True(t, ztype.TF64.Equals(p.PayloadType))
}

func TestLowerStructPatternUnsupported(t *testing.T) {
	_, err := Lower(&zast.StructPattern{TypeName: "Point"}, nil, nil, NewContext())
	require.Error(t, err)
	rep, _ := zerrors.As(err)
	assert.Equal(t, zerrors.StructPatternUnsupported, rep.Code)
}

func TestBindingsCollectsNestedPayloadBindings(t *testing.T) {
	optionI32 := &ztype.Generic{Name: "Option", TypeArgs: []ztype.Type{ztype.TI32}}
	pat := &zast.EnumLiteralPattern{Variant: "Some", Payload: &zast.Identifier{Name: "x"}}
	p, err := Lower(pat, optionI32, nil, NewContext())
	require.NoError(t, err)

	bindings := Bindings(p)
	require.Len(t, bindings, 1)
	assert.Equal(t, "x", bindings[0].Name)
	assert.True(t, ztype.TI32.Equals(bindings[0].Type))
}

func TestCompileGroupsEnumTagArmsIntoSwitch(t *testing.T) {
	optionI32 := &ztype.Generic{Name: "Option", TypeArgs: []ztype.Type{ztype.TI32}}
	ctx := NewContext()

	somePlan, err := Lower(&zast.EnumLiteralPattern{Variant: "Some", Payload: &zast.Identifier{Name: "x"}}, optionI32, nil, ctx)
	require.NoError(t, err)
	nonePlan, err := Lower(&zast.EnumLiteralPattern{Variant: "None"}, optionI32, nil, ctx)
	require.NoError(t, err)

	leaves := []*Leaf{
		{ArmIndex: 0, Plan: somePlan},
		{ArmIndex: 1, Plan: nonePlan},
	}
	require.True(t, CanCompileToSwitch(leaves))

	tree := Compile(leaves)
	sw, ok := tree.(*Switch)
	require.True(t, ok)
	assert.Len(t, sw.Cases, 2)
	assert.Contains(t, sw.Cases, int64(0))
	assert.Contains(t, sw.Cases, int64(1))
}

func TestCompileFallsBackToFirstArmWithNoDiscriminant(t *testing.T) {
	plan, err := Lower(&zast.Identifier{Name: "x"}, ztype.TI32, nil, NewContext())
	require.NoError(t, err)
	leaves := []*Leaf{{ArmIndex: 0, Plan: plan}}
	tree := Compile(leaves)
	leaf, ok := tree.(*Leaf)
	require.True(t, ok)
	assert.Equal(t, 0, leaf.ArmIndex)
}
