package behavior

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenlang/zen/internal/zast"
	"github.com/zenlang/zen/internal/zerrors"
	"github.com/zenlang/zen/internal/ztype"
)

func shapeTrait() []zast.MethodSig {
	return []zast.MethodSig{{Name: "area", Return: ztype.TF64}}
}

func TestRegisterTraitImplementationVerifiesRequiredMethods(t *testing.T) {
	r := New()
	r.RegisterTrait("Shape", shapeTrait())

	circle := &ztype.Struct{Name: "Circle"}
	err := r.RegisterTraitImplementation(&zast.TraitImplDecl{
		TraitName: "Shape",
		ForType:   circle,
		Methods:   []*zast.FuncDecl{{Name: "area", Return: ztype.TF64}},
	})
	require.NoError(t, err)
	assert.True(t, r.TypeImplements(circle, "Shape"))
}

func TestRegisterTraitImplementationMissingMethod(t *testing.T) {
	r := New()
	r.RegisterTrait("Shape", shapeTrait())

	err := r.RegisterTraitImplementation(&zast.TraitImplDecl{
		TraitName: "Shape",
		ForType:   &ztype.Struct{Name: "Square"},
		Methods:   nil,
	})
	require.Error(t, err)
	rep, ok := zerrors.As(err)
	require.True(t, ok)
	assert.Equal(t, zerrors.MissingRequiredMethod, rep.Code)
}

func TestRegisterTraitImplementationUnknownTrait(t *testing.T) {
	r := New()
	err := r.RegisterTraitImplementation(&zast.TraitImplDecl{
		TraitName: "Nope",
		ForType:   &ztype.Struct{Name: "X"},
	})
	require.Error(t, err)
	rep, _ := zerrors.As(err)
	assert.Equal(t, zerrors.UnknownTrait, rep.Code)
}

func TestRegisterTraitImplementationDuplicate(t *testing.T) {
	r := New()
	r.RegisterTrait("Shape", shapeTrait())
	circle := &ztype.Struct{Name: "Circle"}
	impl := &zast.TraitImplDecl{TraitName: "Shape", ForType: circle, Methods: []*zast.FuncDecl{{Name: "area"}}}
	require.NoError(t, r.RegisterTraitImplementation(impl))
	err := r.RegisterTraitImplementation(impl)
	require.Error(t, err)
	rep, _ := zerrors.As(err)
	assert.Equal(t, zerrors.DuplicateImplementation, rep.Code)
}

func TestResolveMethodPrefersInherentOverTrait(t *testing.T) {
	r := New()
	r.RegisterTrait("Shape", shapeTrait())
	circle := &ztype.Struct{Name: "Circle"}
	traitArea := &zast.FuncDecl{Name: "area", Return: ztype.TF64}
	require.NoError(t, r.RegisterTraitImplementation(&zast.TraitImplDecl{
		TraitName: "Shape", ForType: circle, Methods: []*zast.FuncDecl{traitArea},
	}))
	inherentArea := &zast.FuncDecl{Name: "area", Return: ztype.TF64}
	r.RegisterInherentImpl(&zast.ImplBlockDecl{ForType: circle, Methods: []*zast.FuncDecl{inherentArea}})

	got, ok := r.ResolveMethod(circle, "area")
	require.True(t, ok)
	assert.Same(t, inherentArea, got)
}

func TestResolveMethodFallsBackToTraitInRegistrationOrder(t *testing.T) {
	r := New()
	r.RegisterTrait("Shape", shapeTrait())
	r.RegisterTrait("Drawable", shapeTrait())
	circle := &ztype.Struct{Name: "Circle"}
	first := &zast.FuncDecl{Name: "area", Return: ztype.TF64}
	second := &zast.FuncDecl{Name: "area", Return: ztype.TF64}
	require.NoError(t, r.RegisterTraitImplementation(&zast.TraitImplDecl{TraitName: "Shape", ForType: circle, Methods: []*zast.FuncDecl{first}}))
	require.NoError(t, r.RegisterTraitImplementation(&zast.TraitImplDecl{TraitName: "Drawable", ForType: circle, Methods: []*zast.FuncDecl{second}}))

	got, ok := r.ResolveMethod(circle, "area")
	require.True(t, ok)
	assert.Same(t, first, got, "registration order must be deterministic: first-registered implementation wins")
}

func TestUnsatisfiedRequirements(t *testing.T) {
	r := New()
	r.RegisterTrait("Shape", shapeTrait())
	sq := &ztype.Struct{Name: "Square"}
	r.RegisterTraitRequirement(sq, "Shape")
	assert.Len(t, r.UnsatisfiedRequirements(), 1)

	require.NoError(t, r.RegisterTraitImplementation(&zast.TraitImplDecl{
		TraitName: "Shape", ForType: sq, Methods: []*zast.FuncDecl{{Name: "area"}},
	}))
	assert.Empty(t, r.UnsatisfiedRequirements())
}
