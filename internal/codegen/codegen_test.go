package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenlang/zen/internal/check"
	"github.com/zenlang/zen/internal/zast"
	"github.com/zenlang/zen/internal/ztype"
)

func checkedProgram(t *testing.T, prog *zast.Program) *check.Checker {
	t.Helper()
	c := check.New()
	_, err := c.Run(prog)
	require.NoError(t, err)
	return c
}

func TestGenFuncReturnsLiteral(t *testing.T) {
	prog := &zast.Program{Decls: []zast.Decl{
		&zast.FuncDecl{Name: "answer", Return: ztype.TI32, Body: &zast.Literal{Kind: zast.IntLit, Value: int64(42)}},
	}}
	c := checkedProgram(t, prog)

	mod, err := New(c.Behavior, c).Run(prog)
	require.NoError(t, err)
	require.NoError(t, mod.Verify())
	assert.Contains(t, mod.Render(), "define i32 @answer()")
	assert.Contains(t, mod.Render(), "ret i32 42")
}

func TestGenBinaryOpEmitsArithmetic(t *testing.T) {
	prog := &zast.Program{Decls: []zast.Decl{
		&zast.FuncDecl{
			Name:   "add",
			Params: []zast.Param{{Name: "a", Type: ztype.TI32}, {Name: "b", Type: ztype.TI32}},
			Return: ztype.TI32,
			Body: &zast.BinaryOp{
				Left: &zast.Identifier{Name: "a"}, Op: "+", Right: &zast.Identifier{Name: "b"},
			},
		},
	}}
	c := checkedProgram(t, prog)

	mod, err := New(c.Behavior, c).Run(prog)
	require.NoError(t, err)
	require.NoError(t, mod.Verify())
	assert.Contains(t, mod.Render(), "= add i32")
}

func TestGenIfElseMergesViaPhi(t *testing.T) {
	prog := &zast.Program{Decls: []zast.Decl{
		&zast.FuncDecl{
			Name:   "pick",
			Params: []zast.Param{{Name: "c", Type: ztype.TBool}},
			Return: ztype.TI32,
			Body: &zast.If{
				Cond: &zast.Identifier{Name: "c"},
				Then: &zast.Literal{Kind: zast.IntLit, Value: int64(1)},
				Else: &zast.Literal{Kind: zast.IntLit, Value: int64(2)},
			},
		},
	}}
	c := checkedProgram(t, prog)

	mod, err := New(c.Behavior, c).Run(prog)
	require.NoError(t, err)
	require.NoError(t, mod.Verify())
	assert.Contains(t, mod.Render(), "= phi i32")
}

func TestGenMatchOnOptionLowersEnumTagSwitch(t *testing.T) {
	optionI32 := &ztype.Generic{Name: "Option", TypeArgs: []ztype.Type{ztype.TI32}}
	prog := &zast.Program{Decls: []zast.Decl{
		&zast.FuncDecl{
			Name:   "unwrapOr",
			Params: []zast.Param{{Name: "o", Type: optionI32}},
			Return: ztype.TI32,
			Body: &zast.Match{
				Scrutinee: &zast.Identifier{Name: "o"},
				Cases: []zast.Case{
					{Pattern: &zast.EnumLiteralPattern{Variant: "Some", Payload: &zast.Identifier{Name: "x"}}, Body: &zast.Identifier{Name: "x"}},
					{Pattern: &zast.EnumLiteralPattern{Variant: "None"}, Body: &zast.Literal{Kind: zast.IntLit, Value: int64(0)}},
				},
			},
		},
	}}
	c := checkedProgram(t, prog)

	mod, err := New(c.Behavior, c).Run(prog)
	require.NoError(t, err)
	require.NoError(t, mod.Verify())
	ir := mod.Render()
	assert.Contains(t, ir, "icmp eq i64")
	assert.Contains(t, ir, "zen_panic_nonexhaustive_match")
}

func TestGenMatchOnSomeGuardsNullPayload(t *testing.T) {
	optionI32 := &ztype.Generic{Name: "Option", TypeArgs: []ztype.Type{ztype.TI32}}
	prog := &zast.Program{Decls: []zast.Decl{
		&zast.FuncDecl{
			Name:   "unwrapOr",
			Params: []zast.Param{{Name: "o", Type: optionI32}},
			Return: ztype.TI32,
			Body: &zast.Match{
				Scrutinee: &zast.Identifier{Name: "o"},
				Cases: []zast.Case{
					{Pattern: &zast.EnumLiteralPattern{Variant: "Some", Payload: &zast.Identifier{Name: "x"}}, Body: &zast.Identifier{Name: "x"}},
					{Pattern: &zast.EnumLiteralPattern{Variant: "None"}, Body: &zast.Literal{Kind: zast.IntLit, Value: int64(0)}},
				},
			},
		},
	}}
	c := checkedProgram(t, prog)

	mod, err := New(c.Behavior, c).Run(prog)
	require.NoError(t, err)
	require.NoError(t, mod.Verify())
	ir := mod.Render()

	// P3: a None-constructed enum stores a null payload pointer; the
	// Some(x) arm must guard the load behind an is-null test rather
	// than loading through it unconditionally.
	assert.Contains(t, ir, "icmp eq ptr")
	assert.Contains(t, ir, "payload.notnull")
	assert.Contains(t, ir, "payload.null")
	assert.Contains(t, ir, "payload.merge")
	assert.Contains(t, ir, "= phi i32")
}

func TestGenStructFieldAccessEmitsGEP(t *testing.T) {
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
	c := checkedProgram(t, prog)

	mod, err := New(c.Behavior, c).Run(prog)
	require.NoError(t, err)
	require.NoError(t, mod.Verify())
	assert.True(t, strings.Contains(mod.Render(), "getelementptr"))
}

func TestGenExternalDeclaresNoBody(t *testing.T) {
	prog := &zast.Program{Decls: []zast.Decl{
		&zast.ExternalFuncDecl{Name: "puts", Params: []zast.Param{{Name: "s", Type: &ztype.StringType{Kind: ztype.StaticString}}}, Return: ztype.TI32},
	}}
	c := checkedProgram(t, prog)

	mod, err := New(c.Behavior, c).Run(prog)
	require.NoError(t, err)
	require.NoError(t, mod.Verify())
	assert.Contains(t, mod.Render(), "declare i32 @puts(ptr %s)")
}
