package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenlang/zen/internal/zast"
	"github.com/zenlang/zen/internal/zerrors"
	"github.com/zenlang/zen/internal/ztype"
)

func TestLiteralDefaulting(t *testing.T) {
	prog := &zast.Program{Decls: []zast.Decl{
		&zast.FuncDecl{Name: "f", Return: ztype.TI32, Body: &zast.Literal{Kind: zast.IntLit, Value: int64(1)}},
	}}
	_, err := New().Run(prog)
	require.NoError(t, err)
}

func TestMutabilityRejectsReassignOfImmutable(t *testing.T) {
	prog := &zast.Program{Decls: []zast.Decl{
		&zast.FuncDecl{Name: "f", Return: ztype.TVoid, Body: &zast.Block{
			Stmts: []zast.Stmt{
				&zast.LetStmt{Name: "x", Value: &zast.Literal{Kind: zast.IntLit, Value: int64(1)}},
				&zast.AssignStmt{Target: &zast.Identifier{Name: "x"}, Value: &zast.Literal{Kind: zast.IntLit, Value: int64(2)}},
			},
		}},
	}}
	_, err := New().Run(prog)
	require.Error(t, err)
	rep, ok := zerrors.As(err)
	require.True(t, ok)
	assert.Equal(t, zerrors.ImmutabilityViolation, rep.Code)
}

func TestMutableReassignAccepted(t *testing.T) {
	prog := &zast.Program{Decls: []zast.Decl{
		&zast.FuncDecl{Name: "f", Return: ztype.TVoid, Body: &zast.Block{
			Stmts: []zast.Stmt{
				&zast.LetStmt{Name: "x", Mutable: true, Value: &zast.Literal{Kind: zast.IntLit, Value: int64(1)}},
				&zast.AssignStmt{Target: &zast.Identifier{Name: "x"}, Value: &zast.Literal{Kind: zast.IntLit, Value: int64(2)}},
			},
		}},
	}}
	_, err := New().Run(prog)
	require.NoError(t, err)
}

func TestStringCoercionDirectionRejectsDynamicIntoStatic(t *testing.T) {
	c := New()
	dynamic := &ztype.StringType{Kind: ztype.DynamicString}
	static := &ztype.StringType{Kind: ztype.StaticString}
	assert.False(t, c.typesCompatible(static, dynamic))
	assert.True(t, c.typesCompatible(dynamic, static))
}

func TestUndeclaredVariable(t *testing.T) {
	prog := &zast.Program{Decls: []zast.Decl{
		&zast.FuncDecl{Name: "f", Return: ztype.TI32, Body: &zast.Identifier{Name: "nope"}},
	}}
	_, err := New().Run(prog)
	require.Error(t, err)
	rep, _ := zerrors.As(err)
	assert.Equal(t, zerrors.UndeclaredVariable, rep.Code)
}

func TestMatchArmBindsPayloadType(t *testing.T) {
	optionI32 := &ztype.Generic{Name: "Option", TypeArgs: []ztype.Type{ztype.TI32}}
	prog := &zast.Program{Decls: []zast.Decl{
		&zast.FuncDecl{Name: "f", Params: []zast.Param{{Name: "o", Type: optionI32}}, Return: ztype.TI32, Body: &zast.Match{
			Scrutinee: &zast.Identifier{Name: "o"},
			Cases: []zast.Case{
				{Pattern: &zast.EnumLiteralPattern{Variant: "Some", Payload: &zast.Identifier{Name: "x"}}, Body: &zast.Identifier{Name: "x"}},
				{Pattern: &zast.EnumLiteralPattern{Variant: "None"}, Body: &zast.Literal{Kind: zast.IntLit, Value: int64(7)}},
			},
		}},
	}}
	_, err := New().Run(prog)
	require.NoError(t, err)
}

func TestStructFieldAccess(t *testing.T) {
	pointStruct := &zast.StructDecl{Name: "Point", Fields: []ztype.Field{{Name: "x", Type: ztype.TI32}}}
	prog := &zast.Program{Decls: []zast.Decl{
		pointStruct,
		&zast.FuncDecl{
			Name:   "getX",
			Params: []zast.Param{{Name: "p", Type: &ztype.Struct{Name: "Point"}}},
			Return: ztype.TI32,
			Body:   &zast.MemberAccess{Receiver: &zast.Identifier{Name: "p"}, Field: "x"},
		},
	}}
	_, err := New().Run(prog)
	require.NoError(t, err)
}
