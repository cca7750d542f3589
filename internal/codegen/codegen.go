// Package codegen implements the LLVM code generator (C9): it owns the
// module, the current function's builder, a loop stack, a LIFO defer
// stack, a variables map, a symbol table (enum/struct registries), and
// the generic-type context shared with the pattern-match lowerer
// (internal/dtree). Grounded on the teacher's internal/runtime/runtime.go
// "owns its stacks" object idiom (loader/evaluator/visiting/pathStack),
// generalized from module-evaluation bookkeeping to LLVM-emission
// bookkeeping.
package codegen

import (
	"fmt"

	"github.com/zenlang/zen/internal/behavior"
	"github.com/zenlang/zen/internal/check"
	"github.com/zenlang/zen/internal/dtree"
	"github.com/zenlang/zen/internal/llvmir"
	"github.com/zenlang/zen/internal/zast"
	"github.com/zenlang/zen/internal/zerrors"
	"github.com/zenlang/zen/internal/ztype"
)

type loopFrame struct {
	continueBlk *llvmir.Block
	breakBlk    *llvmir.Block
}

// varSlot is one local binding's stack slot plus the bookkeeping C5
// uses for mutability/initialization, mirrored here because C9 must
// re-derive the same facts while emitting loads/stores.
type varSlot struct {
	ptr     llvmir.Value
	typ     ztype.Type
	mutable bool
}

// Generator lowers one already-checked, already-monomorphized Program
// to an llvmir.Module. One Generator is scoped to a single compilation
// (§5: no process-global state); the LSP surface constructs its own per
// analysis.
type Generator struct {
	module *llvmir.Module

	fn      *llvmir.Function
	builder *llvmir.Builder

	loopStack  []loopFrame
	deferStack []zast.Expr
	vars       map[string]*varSlot

	enums     map[string]*ztype.Enum
	structs   map[string]*ztype.Struct
	functions map[string]*zast.FuncDecl
	behavior  *behavior.Resolver

	// checker is the same Checker instance that already validated this
	// program; codegen replays its InferType/DeclareLocal hooks rather
	// than re-deriving expression types from scratch (§4.7.6's "same
	// rules" principle extended from C7 to C9).
	checker *check.Checker

	genericCtx *dtree.Context
}

// New builds a Generator that resolves trait/inherent method calls
// through behaviorResolver and expression types through checker (both
// already populated by a completed C5 run over this program).
func New(behaviorResolver *behavior.Resolver, checker *check.Checker) *Generator {
	return &Generator{
		enums:      map[string]*ztype.Enum{},
		structs:    map[string]*ztype.Struct{},
		functions:  map[string]*zast.FuncDecl{},
		behavior:   behaviorResolver,
		checker:    checker,
		genericCtx: dtree.NewContext(),
	}
}

// Run lowers prog to a verified module. Every declaration carrying type
// parameters must already have been removed by C7; Run does not
// special-case generics.
func (g *Generator) Run(prog *zast.Program) (*llvmir.Module, error) {
	g.module = llvmir.NewModule("zen")
	g.collectSymbols(prog)

	for _, d := range prog.Decls {
		switch decl := d.(type) {
		case *zast.FuncDecl:
			if err := g.genFunc(decl, nil, decl.Name); err != nil {
				return nil, err
			}
		case *zast.ExternalFuncDecl:
			g.genExternal(decl)
		case *zast.StructDecl:
			for _, m := range decl.Methods {
				if err := g.genFunc(m, g.structs[decl.Name], methodSymbol(decl.Name, m.Name)); err != nil {
					return nil, err
				}
			}
		case *zast.EnumDecl:
			for _, m := range decl.Methods {
				if err := g.genFunc(m, g.enums[decl.Name], methodSymbol(decl.Name, m.Name)); err != nil {
					return nil, err
				}
			}
		case *zast.TraitImplDecl:
			for _, m := range decl.Methods {
				if err := g.genFunc(m, decl.ForType, methodSymbol(decl.ForType.String(), m.Name)); err != nil {
					return nil, err
				}
			}
		case *zast.ImplBlockDecl:
			for _, m := range decl.Methods {
				if err := g.genFunc(m, decl.ForType, methodSymbol(decl.ForType.String(), m.Name)); err != nil {
					return nil, err
				}
			}
		}
	}

	if err := g.module.Verify(); err != nil {
		return nil, zerrors.Wrap(zerrors.New(zerrors.InternalError, err.Error(), nil))
	}
	return g.module, nil
}

func methodSymbol(owner, method string) string { return owner + "." + method }

func (g *Generator) collectSymbols(prog *zast.Program) {
	for _, d := range prog.Decls {
		switch decl := d.(type) {
		case *zast.FuncDecl:
			g.functions[decl.Name] = decl
		case *zast.StructDecl:
			g.structs[decl.Name] = &ztype.Struct{Name: decl.Name, Fields: decl.Fields}
		case *zast.EnumDecl:
			g.enums[decl.Name] = &ztype.Enum{Name: decl.Name, Variants: decl.Variants}
		}
	}
}

func (g *Generator) genExternal(decl *zast.ExternalFuncDecl) {
	params := make([]llvmir.Param, len(decl.Params))
	for i, p := range decl.Params {
		params[i] = llvmir.Param{Name: p.Name, Type: llvmType(p.Type)}
	}
	g.module.DeclareExternal(decl.Name, llvmType(decl.Return), params, decl.Varargs)
}

// genFunc lowers one function/method body. selfType is nil for a
// top-level function.
func (g *Generator) genFunc(f *zast.FuncDecl, selfType ztype.Type, symbol string) error {
	if f.Body == nil {
		return nil // signature-only (trait method never given a body, external decl)
	}

	params := make([]llvmir.Param, len(f.Params))
	for i, p := range f.Params {
		t := p.Type
		if p.Name == "self" && selfType != nil {
			t = selfType
		}
		params[i] = llvmir.Param{Name: p.Name, Type: llvmType(t)}
	}

	fn := g.module.DeclareFunction(symbol, llvmType(f.Return), params)
	g.fn = fn
	g.builder = llvmir.NewBuilder(fn)
	g.vars = map[string]*varSlot{}
	g.loopStack = nil
	g.deferStack = nil
	g.checker.NewScopeForParams(f.Params, selfType)

	for i, p := range f.Params {
		t := p.Type
		if p.Name == "self" && selfType != nil {
			t = selfType
		}
		slotType := llvmType(t)
		slot := g.builder.Alloca(slotType)
		g.builder.Store(llvmir.Value{Text: "%" + p.Name, Type: slotType}, slot)
		g.vars[p.Name] = &varSlot{ptr: slot, typ: t, mutable: false}
	}

	val, _, err := g.genExpr(f.Body)
	if err != nil {
		return err
	}
	if !g.builder.Current().Terminated() {
		g.runDefers()
		if isVoid(f.Return) {
			g.builder.RetVoid()
		} else {
			g.builder.Ret(val)
		}
	}
	return nil
}

func isVoid(t ztype.Type) bool {
	p, ok := t.(*ztype.Primitive)
	return ok && p.Kind == ztype.Void
}

// runDefers emits the LIFO defer stack before a return (§4.9, P9).
func (g *Generator) runDefers() {
	for i := len(g.deferStack) - 1; i >= 0; i-- {
		g.genExpr(g.deferStack[i]) //nolint:errcheck // defer bodies are checked by C5 before codegen runs
	}
}

func internalErrf(format string, args ...any) error {
	return zerrors.Wrap(zerrors.New(zerrors.InternalError, fmt.Sprintf(format, args...), nil))
}

func unsupported(msg string) error {
	return zerrors.Wrap(zerrors.New(zerrors.UnsupportedFeature, msg, nil))
}
