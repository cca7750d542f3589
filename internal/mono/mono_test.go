package mono

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenlang/zen/internal/check"
	"github.com/zenlang/zen/internal/zast"
	"github.com/zenlang/zen/internal/ztype"
)

func program(decls ...zast.Decl) *zast.Program {
	return &zast.Program{Decls: decls}
}

// identity<T>(x: T) -> T { x }; fn main() -> i32 { identity(1) }
func TestMonomorphizeInstantiatesGenericFunctionCallSite(t *testing.T) {
	identity := &zast.FuncDecl{
		Name:       "identity",
		TypeParams: []string{"T"},
		Params:     []zast.Param{{Name: "x", Type: &ztype.Generic{Name: "T"}}},
		Return:     &ztype.Generic{Name: "T"},
		Body:       &zast.Identifier{Name: "x"},
	}
	main := &zast.FuncDecl{
		Name:   "main",
		Return: ztype.TI32,
		Body: &zast.Call{
			Func: &zast.Identifier{Name: "identity"},
			Args: []zast.Expr{&zast.Literal{Kind: zast.IntLit, Value: int64(1)}},
		},
	}
	prog := program(identity, main)

	m := New(check.New())
	out, err := m.Run(prog)
	require.NoError(t, err)

	var names []string
	for _, d := range out.Decls {
		names = append(names, d.DeclName())
	}
	assert.Contains(t, names, "main")
	assert.Contains(t, names, "identity_i32")
	assert.NotContains(t, names, "identity")
}

func TestMangledNameJoinsTypeArgs(t *testing.T) {
	assert.Equal(t, "identity_i32", MangledName("identity", []ztype.Type{ztype.TI32}))
	assert.Equal(t, "Box", MangledName("Box", nil))
}

func TestMonomorphizeRewritesCallSiteToMangledName(t *testing.T) {
	identity := &zast.FuncDecl{
		Name:       "identity",
		TypeParams: []string{"T"},
		Params:     []zast.Param{{Name: "x", Type: &ztype.Generic{Name: "T"}}},
		Return:     &ztype.Generic{Name: "T"},
		Body:       &zast.Identifier{Name: "x"},
	}
	call := &zast.Call{
		Func: &zast.Identifier{Name: "identity"},
		Args: []zast.Expr{&zast.Literal{Kind: zast.IntLit, Value: int64(1)}},
	}
	main := &zast.FuncDecl{Name: "main", Return: ztype.TI32, Body: call}
	prog := program(identity, main)

	m := New(check.New())
	out, err := m.Run(prog)
	require.NoError(t, err)

	var rewritten *zast.FuncDecl
	for _, d := range out.Decls {
		if f, ok := d.(*zast.FuncDecl); ok && f.Name == "main" {
			rewritten = f
		}
	}
	require.NotNil(t, rewritten)
	rewrittenCall, ok := rewritten.Body.(*zast.Call)
	require.True(t, ok)
	id, ok := rewrittenCall.Func.(*zast.Identifier)
	require.True(t, ok)
	assert.Equal(t, "identity_i32", id.Name)
}

// struct Box<T> { value: T }; Box { value: 1 } binds T from field order.
func TestMonomorphizeStructLiteralFieldOrderBindsTypeParam(t *testing.T) {
	box := &zast.StructDecl{
		Name:       "Box",
		TypeParams: []string{"T"},
		Fields:     []ztype.Field{{Name: "value", Type: &ztype.Generic{Name: "T"}}},
	}
	lit := &zast.StructLiteral{
		Name:   "Box",
		Fields: []zast.FieldInit{{Name: "value", Value: &zast.Literal{Kind: zast.IntLit, Value: int64(1)}}},
	}
	main := &zast.FuncDecl{Name: "main", Return: ztype.TVoid, Body: &zast.Block{Trailing: lit}}
	prog := program(box, main)

	m := New(check.New())
	out, err := m.Run(prog)
	require.NoError(t, err)

	var names []string
	for _, d := range out.Decls {
		names = append(names, d.DeclName())
	}
	assert.Contains(t, names, "Box_i32")
}

// zero<T>() -> T { 0 } called with no argument to pin T falls back to i32.
func TestMonomorphizeFallsBackToI32ForUnpinnedTypeParam(t *testing.T) {
	generic := &zast.FuncDecl{
		Name:       "zero",
		TypeParams: []string{"T"},
		Params:     nil,
		Return:     &ztype.Generic{Name: "T"},
		Body:       &zast.Literal{Kind: zast.IntLit, Value: int64(0)},
	}
	main := &zast.FuncDecl{
		Name: "main", Return: ztype.TI32,
		Body: &zast.Call{Func: &zast.Identifier{Name: "zero"}},
	}
	prog := program(generic, main)

	m := New(check.New())
	out, err := m.Run(prog)
	require.NoError(t, err)

	var names []string
	for _, d := range out.Decls {
		names = append(names, d.DeclName())
	}
	assert.Contains(t, names, "zero_i32")
}
