// Package check implements the two-pass type checker (C5): Pass A
// collects declarations (signatures, struct/enum registries, traits,
// impls, constants, imports, aliases); Pass B checks function bodies
// against a scoped symbol table, inferring expression types kind-by-kind
// per §4.5. Grounded on the teacher's internal/types/typechecker_core.go
// two-pass structure and internal/types/unification.go's compatibility
// rules, generalized from Hindley-Milner inference to Zen's simpler
// structural/nominal type-compatibility model.
package check

import (
	"fmt"

	"github.com/zenlang/zen/internal/behavior"
	"github.com/zenlang/zen/internal/zast"
	"github.com/zenlang/zen/internal/zerrors"
	"github.com/zenlang/zen/internal/ztype"
)

// Checker holds the registries Pass A builds and Pass B consults. One
// Checker is scoped to a single compilation (§5); the LSP's concurrent
// analyses each construct their own.
type Checker struct {
	functions map[string]*ztype.Function
	structs   map[string]*ztype.Struct
	enums     map[string]*ztype.Enum
	consts    map[string]ztype.Type
	aliases   map[string]ztype.Type
	imports   map[string]string // alias -> module path, from ModuleImportDecl

	Behavior *behavior.Resolver

	scopes *scopeStack
}

// New builds an empty Checker.
func New() *Checker {
	return &Checker{
		functions: map[string]*ztype.Function{},
		structs:   map[string]*ztype.Struct{},
		enums:     map[string]*ztype.Enum{},
		consts:    map[string]ztype.Type{},
		aliases:   map[string]ztype.Type{},
		imports:   map[string]string{},
		Behavior:  behavior.New(),
	}
}

// Run performs Pass A then Pass B over prog. It returns prog unchanged
// on success (C5 validates; it does not restructure the AST) or the
// first error encountered (errors propagate eagerly, §7).
func (c *Checker) Run(prog *zast.Program) (*zast.Program, error) {
	if err := c.passA(prog); err != nil {
		return nil, err
	}
	if err := c.passB(prog); err != nil {
		return nil, err
	}
	return prog, nil
}

// ---------------------------------------------------------------------
// Pass A — collect
// ---------------------------------------------------------------------

func (c *Checker) passA(prog *zast.Program) error {
	seen := map[string]bool{}
	for _, d := range prog.Decls {
		key := d.DeclName()
		if _, dup := seen[key]; dup {
			if !isImplLike(d) { // impls key on (trait,type) / type, not plain name collisions
				return zerrors.Wrap(zerrors.New(zerrors.DuplicateDeclaration,
					fmt.Sprintf("duplicate declaration %q", key), nil))
			}
		}
		seen[key] = true

		switch decl := d.(type) {
		case *zast.FuncDecl:
			c.functions[decl.Name] = funcType(decl)
		case *zast.ExternalFuncDecl:
			c.functions[decl.Name] = &ztype.Function{Args: paramTypes(decl.Params), Return: decl.Return}
		case *zast.StructDecl:
			fields := make([]ztype.Field, len(decl.Fields))
			copy(fields, decl.Fields)
			c.structs[decl.Name] = &ztype.Struct{Name: decl.Name, Fields: fields}
			for _, m := range decl.Methods {
				c.Behavior.RegisterInherentImpl(&zast.ImplBlockDecl{
					ForType: c.structs[decl.Name], Methods: []*zast.FuncDecl{m},
				})
			}
		case *zast.EnumDecl:
			variants := make([]ztype.Variant, len(decl.Variants))
			copy(variants, decl.Variants)
			enumType := &ztype.Enum{Name: decl.Name, Variants: variants}
			c.enums[decl.Name] = enumType
			for _, m := range decl.Methods {
				c.Behavior.RegisterInherentImpl(&zast.ImplBlockDecl{ForType: enumType, Methods: []*zast.FuncDecl{m}})
			}
			for _, tr := range decl.RequiredTraits {
				c.Behavior.RegisterTraitRequirement(enumType, tr)
			}
		case *zast.TraitDecl:
			c.Behavior.RegisterTrait(decl.Name, decl.Methods)
		case *zast.ImplBlockDecl:
			c.Behavior.RegisterInherentImpl(decl)
		case *zast.TraitImplDecl:
			if err := c.Behavior.RegisterTraitImplementation(decl); err != nil {
				return err
			}
		case *zast.TraitRequirementDecl:
			c.Behavior.RegisterTraitRequirement(decl.ForType, decl.TraitName)
		case *zast.ConstDecl:
			t, err := c.inferExpr(decl.Value)
			if err != nil {
				return err
			}
			if decl.Type != nil && !c.typesCompatible(decl.Type, t) {
				return typeMismatch(decl.Type, t, decl.Pos)
			}
			if decl.Type != nil {
				t = decl.Type
			}
			c.consts[decl.Name] = t
		case *zast.ModuleImportDecl:
			c.imports[decl.Alias] = decl.Path
		case *zast.TypeAliasDecl:
			c.aliases[decl.Name] = decl.Target
			if st, ok := decl.Target.(*ztype.Struct); ok {
				c.structs[decl.Name] = st
			}
		}
	}
	return nil
}

func isImplLike(d zast.Decl) bool {
	switch d.(type) {
	case *zast.TraitImplDecl, *zast.ImplBlockDecl, *zast.TraitRequirementDecl:
		return true
	}
	return false
}

func funcType(f *zast.FuncDecl) *ztype.Function {
	return &ztype.Function{Args: paramTypes(f.Params), Return: f.Return}
}

func paramTypes(params []zast.Param) []ztype.Type {
	out := make([]ztype.Type, len(params))
	for i, p := range params {
		out[i] = p.Type
	}
	return out
}

// ---------------------------------------------------------------------
// Pass B — check bodies
// ---------------------------------------------------------------------

func (c *Checker) passB(prog *zast.Program) error {
	for _, d := range prog.Decls {
		switch decl := d.(type) {
		case *zast.FuncDecl:
			if err := c.checkFunc(decl, nil); err != nil {
				return err
			}
		case *zast.StructDecl:
			for _, m := range decl.Methods {
				if err := c.checkFunc(m, c.structs[decl.Name]); err != nil {
					return err
				}
			}
		case *zast.EnumDecl:
			for _, m := range decl.Methods {
				if err := c.checkFunc(m, c.enums[decl.Name]); err != nil {
					return err
				}
			}
		case *zast.TraitImplDecl:
			for _, m := range decl.Methods {
				if err := c.checkFunc(m, decl.ForType); err != nil {
					return err
				}
			}
		case *zast.ImplBlockDecl:
			for _, m := range decl.Methods {
				if err := c.checkFunc(m, decl.ForType); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// checkFunc pushes a function scope, inserts parameters (self resolved
// to selfType when inside a struct/enum/impl method), and checks the
// body. Non-mutable by default per §4.5.
func (c *Checker) checkFunc(f *zast.FuncDecl, selfType ztype.Type) error {
	c.scopes = newScopeStack()
	for _, p := range f.Params {
		t := p.Type
		if p.Name == "self" && selfType != nil {
			t = selfType
		}
		c.scopes.declare(p.Name, &VarInfo{Type: t, Mutable: false, Initialized: true})
	}
	if f.Body == nil {
		return nil // signature-only (trait method, external decl)
	}
	bodyType, err := c.inferExpr(f.Body)
	if err != nil {
		return err
	}
	if f.Return != nil && !c.typesCompatible(f.Return, bodyType) {
		return typeMismatch(f.Return, bodyType, f.Pos)
	}
	return nil
}

// NewScopeForParams seeds a fresh scope stack with params (self resolved
// to selfType), for reuse by later passes that need C5's own expression-
// type-inference rules applied to an already-checked body: the
// monomorphizer (§4.7) and codegen's genFunc.
func (c *Checker) NewScopeForParams(params []zast.Param, selfType ztype.Type) {
	c.scopes = newScopeStack()
	for _, p := range params {
		t := p.Type
		if p.Name == "self" && selfType != nil {
			t = selfType
		}
		c.scopes.declare(p.Name, &VarInfo{Type: t, Mutable: false, Initialized: true})
	}
}

// InferType exposes Pass B's expression type inference to C7, which
// "uses the same rules as C5 but runs on already-checked bodies" (§4.7.6).
func (c *Checker) InferType(e zast.Expr) (ztype.Type, error) {
	return c.inferExpr(e)
}

// DeclareLocal adds a binding to the current scope so a later reuse of
// InferType (C7's monomorphizer, C9's codegen) can resolve names a
// statement it is replaying already introduced.
func (c *Checker) DeclareLocal(name string, t ztype.Type, mutable bool) {
	c.scopes.declare(name, &VarInfo{Type: t, Mutable: mutable, Initialized: true})
}

// StructOf/EnumOf expose Pass A's struct and enum registries read-only,
// so later passes can look up declared field and variant types without
// re-parsing the program.
func (c *Checker) StructOf(name string) (*ztype.Struct, bool) {
	s, ok := c.structs[name]
	return s, ok
}
func (c *Checker) EnumOf(name string) (*ztype.Enum, bool) {
	e, ok := c.enums[name]
	return e, ok
}

func typeMismatch(expected, actual ztype.Type, pos zast.Pos) error {
	return zerrors.Wrap(zerrors.New(zerrors.TypeMismatch,
		fmt.Sprintf("expected %s, got %s", expected, actual), &zast.Span{Start: pos, End: pos}))
}
