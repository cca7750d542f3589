package selfres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenlang/zen/internal/zast"
	"github.com/zenlang/zen/internal/ztype"
)

func TestResolveRewritesBareSelf(t *testing.T) {
	prog := &zast.Program{Decls: []zast.Decl{
		&zast.TraitImplDecl{
			TraitName: "Shape",
			ForType:   &ztype.Struct{Name: "Circle"},
			Methods: []*zast.FuncDecl{{
				Name:   "area",
				Params: []zast.Param{{Name: "self", Type: &ztype.Ref{Inner: &ztype.Generic{Name: "Self"}}}},
				Return: ztype.TF64,
			}},
		},
	}}

	out := Resolve(prog)
	ti := out.Decls[0].(*zast.TraitImplDecl)
	selfParam := ti.Methods[0].Params[0].Type.(*ztype.Ref).Inner.(*ztype.Generic)
	assert.Equal(t, "Self_Circle", selfParam.Name)
}

func TestResolveLeavesNonImplDeclsAlone(t *testing.T) {
	prog := &zast.Program{Decls: []zast.Decl{
		&zast.FuncDecl{Name: "main"},
	}}
	out := Resolve(prog)
	require.Len(t, out.Decls, 1)
	assert.Equal(t, "main", out.Decls[0].DeclName())
}
