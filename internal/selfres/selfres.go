// Package selfres implements the Self resolver (C4): before type
// checking, every trait implementation's methods have their `Self` type
// (and Ref<Self>, Ptr<Self>, ... recursively) rewritten to the tagged
// form Generic{Name: "Self_<ConcreteType>"} so the checker can later look
// the concrete struct's fields up from the registry (§4.4, §9). Grounded
// on the teacher's substitution-style rewrite in internal/elaborate/core.go.
package selfres

import (
	"fmt"

	"github.com/zenlang/zen/internal/zast"
	"github.com/zenlang/zen/internal/ztype"
)

// selfTag is the name used for the unapplied Self type parameter before
// resolution; the parser/C1 emits this for any `Self` occurrence.
const selfTag = "Self"

// Resolve walks every TraitImplDecl in prog and rewrites Self (and
// Ref<Self>/Ptr<Self>/etc., recursively) in method parameter types and
// return types to Generic{Name: "Self_<ConcreteType>"}. Method bodies'
// expressions are left untouched; only type annotations on local
// declarations inside bodies are rewritten, since Self can appear there
// too (e.g. `x: Ptr<Self> = ...`).
func Resolve(prog *zast.Program) *zast.Program {
	out := &zast.Program{Pos: prog.Pos, Decls: make([]zast.Decl, len(prog.Decls))}
	for i, d := range prog.Decls {
		ti, ok := d.(*zast.TraitImplDecl)
		if !ok {
			out.Decls[i] = d
			continue
		}
		tagged := tagName(ti.ForType)
		resolved := &zast.TraitImplDecl{
			TraitName: ti.TraitName,
			ForType:   ti.ForType,
			Pos:       ti.Pos,
		}
		for _, m := range ti.Methods {
			resolved.Methods = append(resolved.Methods, rewriteMethod(m, tagged))
		}
		out.Decls[i] = resolved
	}
	return out
}

func tagName(forType ztype.Type) string {
	return fmt.Sprintf("Self_%s", forType.String())
}

func rewriteMethod(m *zast.FuncDecl, tagged string) *zast.FuncDecl {
	params := make([]zast.Param, len(m.Params))
	for i, p := range m.Params {
		params[i] = zast.Param{Name: p.Name, Type: rewriteType(p.Type, tagged), Pos: p.Pos}
	}
	return &zast.FuncDecl{
		Name:       m.Name,
		TypeParams: m.TypeParams,
		Params:     params,
		Return:     rewriteType(m.Return, tagged),
		Body:       rewriteBody(m.Body, tagged),
		Pos:        m.Pos,
	}
}

// rewriteType recursively replaces any Generic{Name: "Self"} occurrence
// (bare or nested inside Ptr/MutPtr/RawPtr/Ref/Array/etc.) with the
// tagged Self_<ConcreteType> generic.
func rewriteType(t ztype.Type, tagged string) ztype.Type {
	if t == nil {
		return nil
	}
	switch tt := t.(type) {
	case *ztype.Generic:
		if tt.Name == selfTag && len(tt.TypeArgs) == 0 {
			return &ztype.Generic{Name: tagged}
		}
		args := make([]ztype.Type, len(tt.TypeArgs))
		for i, a := range tt.TypeArgs {
			args[i] = rewriteType(a, tagged)
		}
		return &ztype.Generic{Name: tt.Name, TypeArgs: args}
	case *ztype.Ptr:
		return &ztype.Ptr{Mut: tt.Mut, Unsafe: tt.Unsafe, Inner: rewriteType(tt.Inner, tagged)}
	case *ztype.Ref:
		return &ztype.Ref{Inner: rewriteType(tt.Inner, tagged)}
	case *ztype.Array:
		return &ztype.Array{Elem: rewriteType(tt.Elem, tagged)}
	case *ztype.FixedArray:
		return &ztype.FixedArray{Elem: rewriteType(tt.Elem, tagged), N: tt.N}
	case *ztype.Vec:
		return &ztype.Vec{Elem: rewriteType(tt.Elem, tagged), N: tt.N}
	case *ztype.Function:
		args := make([]ztype.Type, len(tt.Args))
		for i, a := range tt.Args {
			args[i] = rewriteType(a, tagged)
		}
		return &ztype.Function{Args: args, Return: rewriteType(tt.Return, tagged)}
	case *ztype.FunctionPointer:
		params := make([]ztype.Type, len(tt.Params))
		for i, a := range tt.Params {
			params[i] = rewriteType(a, tagged)
		}
		return &ztype.FunctionPointer{Params: params, Return: rewriteType(tt.Return, tagged)}
	default:
		return t
	}
}

// rewriteBody rewrites Self type annotations on LetStmts inside a method
// body; block/if/match structure is walked but expressions themselves
// are left untouched per §4.4.
func rewriteBody(e zast.Expr, tagged string) zast.Expr {
	switch ex := e.(type) {
	case *zast.Block:
		stmts := make([]zast.Stmt, len(ex.Stmts))
		for i, s := range ex.Stmts {
			stmts[i] = rewriteStmt(s, tagged)
		}
		var trailing zast.Expr
		if ex.Trailing != nil {
			trailing = rewriteBody(ex.Trailing, tagged)
		}
		return &zast.Block{Stmts: stmts, Trailing: trailing, Pos: ex.Pos}
	case *zast.If:
		then := rewriteBody(ex.Then, tagged)
		var els zast.Expr
		if ex.Else != nil {
			els = rewriteBody(ex.Else, tagged)
		}
		return &zast.If{Cond: ex.Cond, Then: then, Else: els, Pos: ex.Pos}
	case *zast.Match:
		cases := make([]zast.Case, len(ex.Cases))
		for i, c := range ex.Cases {
			cases[i] = zast.Case{Pattern: c.Pattern, Body: rewriteBody(c.Body, tagged), Pos: c.Pos}
		}
		return &zast.Match{Scrutinee: ex.Scrutinee, Cases: cases, Pos: ex.Pos}
	default:
		return e
	}
}

func rewriteStmt(s zast.Stmt, tagged string) zast.Stmt {
	if let, ok := s.(*zast.LetStmt); ok && let.Type != nil {
		return &zast.LetStmt{
			Name:    let.Name,
			Type:    rewriteType(let.Type, tagged),
			Mutable: let.Mutable,
			Value:   let.Value,
			Pos:     let.Pos,
		}
	}
	return s
}
