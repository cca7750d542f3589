package comptime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenlang/zen/internal/zast"
	"github.com/zenlang/zen/internal/zerrors"
)

func TestComptimeExprFoldsArithmetic(t *testing.T) {
	prog := &zast.Program{Decls: []zast.Decl{
		&zast.FuncDecl{Name: "f", Body: &zast.ComptimeExpr{Inner: &zast.BinaryOp{
			Left:  &zast.Literal{Kind: zast.IntLit, Value: int64(2)},
			Op:    "+",
			Right: &zast.Literal{Kind: zast.IntLit, Value: int64(40)},
		}}},
	}}

	out, err := New().Run(prog)
	require.NoError(t, err)
	fn := out.Decls[0].(*zast.FuncDecl)
	lit, ok := fn.Body.(*zast.Literal)
	require.True(t, ok)
	assert.Equal(t, int64(42), lit.Value)
}

func TestComptimeBlockEmitsConstDecl(t *testing.T) {
	prog := &zast.Program{Decls: []zast.Decl{
		&zast.ComptimeBlockDecl{Stmts: []zast.Stmt{
			&zast.LetStmt{Name: "ANSWER", Value: &zast.Literal{Kind: zast.IntLit, Value: int64(42)}},
		}},
	}}

	out, err := New().Run(prog)
	require.NoError(t, err)
	require.Len(t, out.Decls, 1)
	cd := out.Decls[0].(*zast.ConstDecl)
	assert.Equal(t, "ANSWER", cd.Name)
	assert.Equal(t, int64(42), cd.Value.(*zast.Literal).Value)
}

func TestComptimeRejectsImportLike(t *testing.T) {
	prog := &zast.Program{Decls: []zast.Decl{
		&zast.ComptimeBlockDecl{Stmts: []zast.Stmt{
			&zast.ExprStmt{Expr: &zast.Identifier{Name: "std"}},
		}},
	}}

	_, err := New().Run(prog)
	require.Error(t, err)
	rep, ok := zerrors.As(err)
	require.True(t, ok)
	assert.Equal(t, zerrors.ComptimeImportForbidden, rep.Code)
}

func TestComptimeDivisionByZeroIsNotConst(t *testing.T) {
	prog := &zast.Program{Decls: []zast.Decl{
		&zast.FuncDecl{Name: "f", Body: &zast.ComptimeExpr{Inner: &zast.BinaryOp{
			Left:  &zast.Literal{Kind: zast.IntLit, Value: int64(1)},
			Op:    "/",
			Right: &zast.Literal{Kind: zast.IntLit, Value: int64(0)},
		}}},
	}}

	_, err := New().Run(prog)
	require.Error(t, err)
}
