package mono

import (
	"github.com/zenlang/zen/internal/zast"
	"github.com/zenlang/zen/internal/ztype"
)

// substituteType recursively replaces every unapplied Generic type
// parameter named in subst with its bound concrete type, descending
// through every compound form C4's selfres.rewriteType also descends
// through (Ptr/Ref/Array/FixedArray/Vec/Function/FunctionPointer), plus
// Generic.TypeArgs for nested applied generics (Box<T> inside a
// template referencing Option<Box<T>>).
func substituteType(t ztype.Type, subst map[string]ztype.Type) ztype.Type {
	if t == nil {
		return nil
	}
	switch typ := t.(type) {
	case *ztype.Generic:
		if typ.IsUnapplied() {
			if bound, ok := subst[typ.Name]; ok {
				return bound
			}
			return typ
		}
		args := make([]ztype.Type, len(typ.TypeArgs))
		for i, a := range typ.TypeArgs {
			args[i] = substituteType(a, subst)
		}
		return &ztype.Generic{Name: typ.Name, TypeArgs: args}
	case *ztype.Ptr:
		return &ztype.Ptr{Mut: typ.Mut, Unsafe: typ.Unsafe, Inner: substituteType(typ.Inner, subst)}
	case *ztype.Ref:
		return &ztype.Ref{Inner: substituteType(typ.Inner, subst)}
	case *ztype.Array:
		return &ztype.Array{Elem: substituteType(typ.Elem, subst)}
	case *ztype.FixedArray:
		return &ztype.FixedArray{Elem: substituteType(typ.Elem, subst), N: typ.N}
	case *ztype.Vec:
		return &ztype.Vec{Elem: substituteType(typ.Elem, subst), N: typ.N}
	case *ztype.DynVec:
		elems := make([]ztype.Type, len(typ.Elems))
		for i, e := range typ.Elems {
			elems[i] = substituteType(e, subst)
		}
		return &ztype.DynVec{Elems: elems}
	case *ztype.Function:
		args := make([]ztype.Type, len(typ.Args))
		for i, a := range typ.Args {
			args[i] = substituteType(a, subst)
		}
		return &ztype.Function{Args: args, Return: substituteType(typ.Return, subst)}
	case *ztype.FunctionPointer:
		params := make([]ztype.Type, len(typ.Params))
		for i, a := range typ.Params {
			params[i] = substituteType(a, subst)
		}
		return &ztype.FunctionPointer{Params: params, Return: substituteType(typ.Return, subst)}
	case *ztype.Range:
		return &ztype.Range{Start: substituteType(typ.Start, subst), End: substituteType(typ.End, subst), Inclusive: typ.Inclusive}
	default:
		return t // Primitive, StringType, Struct, Enum, StdModule carry no type parameters
	}
}

// substituteFunc produces a specialized copy of tmpl with every
// parameter/return type substituted and the name replaced with mangled.
// It does not rewrite the body's internal call sites to other mangled
// names: that happens in a later pass once the whole worklist has
// drained (rewriteDecl/rewriteExpr), since a callee's final mangled
// name may not be known while still seeding.
func substituteFunc(tmpl *zast.FuncDecl, subst map[string]ztype.Type, mangled string) *zast.FuncDecl {
	params := make([]zast.Param, len(tmpl.Params))
	for i, p := range tmpl.Params {
		params[i] = zast.Param{Name: p.Name, Type: substituteType(p.Type, subst), Pos: p.Pos}
	}
	return &zast.FuncDecl{
		Name:   mangled,
		Params: params,
		Return: substituteType(tmpl.Return, subst),
		Body:   substituteExpr(tmpl.Body, subst),
		Pos:    tmpl.Pos,
	}
}

func substituteStruct(tmpl *zast.StructDecl, subst map[string]ztype.Type, mangled string) *zast.StructDecl {
	fields := make([]ztype.Field, len(tmpl.Fields))
	for i, f := range tmpl.Fields {
		fields[i] = ztype.Field{Name: f.Name, Type: substituteType(f.Type, subst)}
	}
	methods := make([]*zast.FuncDecl, len(tmpl.Methods))
	for i, m := range tmpl.Methods {
		methods[i] = substituteMethodKeepName(m, subst)
	}
	return &zast.StructDecl{Name: mangled, Fields: fields, Methods: methods, Pos: tmpl.Pos}
}

func substituteEnum(tmpl *zast.EnumDecl, subst map[string]ztype.Type, mangled string) *zast.EnumDecl {
	variants := make([]ztype.Variant, len(tmpl.Variants))
	for i, v := range tmpl.Variants {
		variants[i] = ztype.Variant{Name: v.Name, Payload: substituteType(v.Payload, subst)}
	}
	methods := make([]*zast.FuncDecl, len(tmpl.Methods))
	for i, m := range tmpl.Methods {
		methods[i] = substituteMethodKeepName(m, subst)
	}
	return &zast.EnumDecl{
		Name: mangled, Variants: variants, Methods: methods,
		RequiredTraits: tmpl.RequiredTraits, Pos: tmpl.Pos,
	}
}

// substituteMethodKeepName specializes a method's signature/body without
// mangling its own name — the receiving struct/enum's mangled name is
// what disambiguates it, matching §4.7's "methods follow their owner".
func substituteMethodKeepName(m *zast.FuncDecl, subst map[string]ztype.Type) *zast.FuncDecl {
	params := make([]zast.Param, len(m.Params))
	for i, p := range m.Params {
		params[i] = zast.Param{Name: p.Name, Type: substituteType(p.Type, subst), Pos: p.Pos}
	}
	return &zast.FuncDecl{
		Name:   m.Name,
		Params: params,
		Return: substituteType(m.Return, subst),
		Body:   substituteExpr(m.Body, subst),
		Pos:    m.Pos,
	}
}

// substituteExpr rewrites type annotations embedded in an expression
// tree (struct-literal and call explicit type arguments, let-statement
// annotations) while leaving identifiers/calls/structure otherwise
// intact; recursion mirrors selfres.rewriteBody's traversal shape.
func substituteExpr(e zast.Expr, subst map[string]ztype.Type) zast.Expr {
	if e == nil {
		return nil
	}
	switch ex := e.(type) {
	case *zast.Block:
		stmts := make([]zast.Stmt, len(ex.Stmts))
		for i, s := range ex.Stmts {
			stmts[i] = substituteStmt(s, subst)
		}
		return &zast.Block{Stmts: stmts, Trailing: substituteExpr(ex.Trailing, subst), Pos: ex.Pos}
	case *zast.If:
		return &zast.If{
			Cond: substituteExpr(ex.Cond, subst),
			Then: substituteExpr(ex.Then, subst),
			Else: substituteExpr(ex.Else, subst),
			Pos:  ex.Pos,
		}
	case *zast.Match:
		cases := make([]zast.Case, len(ex.Cases))
		for i, c := range ex.Cases {
			cases[i] = zast.Case{Pattern: c.Pattern, Body: substituteExpr(c.Body, subst), Pos: c.Pos}
		}
		return &zast.Match{Scrutinee: substituteExpr(ex.Scrutinee, subst), Cases: cases, Pos: ex.Pos}
	case *zast.BinaryOp:
		return &zast.BinaryOp{Left: substituteExpr(ex.Left, subst), Op: ex.Op, Right: substituteExpr(ex.Right, subst), Pos: ex.Pos}
	case *zast.UnaryOp:
		return &zast.UnaryOp{Op: ex.Op, Expr: substituteExpr(ex.Expr, subst), Pos: ex.Pos}
	case *zast.Call:
		args := make([]zast.Expr, len(ex.Args))
		for i, a := range ex.Args {
			args[i] = substituteExpr(a, subst)
		}
		tyArgs := ex.ExplicitTyArgs
		if len(tyArgs) > 0 {
			tyArgs = make([]ztype.Type, len(ex.ExplicitTyArgs))
			for i, t := range ex.ExplicitTyArgs {
				tyArgs[i] = substituteType(t, subst)
			}
		}
		return &zast.Call{Func: substituteExpr(ex.Func, subst), Args: args, ExplicitTyArgs: tyArgs, Pos: ex.Pos}
	case *zast.MethodCall:
		args := make([]zast.Expr, len(ex.Args))
		for i, a := range ex.Args {
			args[i] = substituteExpr(a, subst)
		}
		return &zast.MethodCall{Receiver: substituteExpr(ex.Receiver, subst), Method: ex.Method, Args: args, Pos: ex.Pos}
	case *zast.MemberAccess:
		return &zast.MemberAccess{Receiver: substituteExpr(ex.Receiver, subst), Field: ex.Field, Pos: ex.Pos}
	case *zast.StructLiteral:
		fields := make([]zast.FieldInit, len(ex.Fields))
		for i, f := range ex.Fields {
			fields[i] = zast.FieldInit{Name: f.Name, Value: substituteExpr(f.Value, subst)}
		}
		return &zast.StructLiteral{Name: ex.Name, Fields: fields, Pos: ex.Pos}
	case *zast.EnumLiteral:
		return &zast.EnumLiteral{Variant: ex.Variant, Payload: substituteExpr(ex.Payload, subst), Pos: ex.Pos}
	case *zast.RangeExpr:
		return &zast.RangeExpr{Start: substituteExpr(ex.Start, subst), End: substituteExpr(ex.End, subst), Inclusive: ex.Inclusive, Pos: ex.Pos}
	case *zast.ComptimeExpr:
		return &zast.ComptimeExpr{Inner: substituteExpr(ex.Inner, subst), Pos: ex.Pos}
	default:
		return e // Identifier, Literal, SelfExpr carry no type annotation
	}
}

func substituteStmt(s zast.Stmt, subst map[string]ztype.Type) zast.Stmt {
	switch st := s.(type) {
	case *zast.ExprStmt:
		return &zast.ExprStmt{Expr: substituteExpr(st.Expr, subst), Pos: st.Pos}
	case *zast.LetStmt:
		return &zast.LetStmt{
			Name: st.Name, Type: substituteType(st.Type, subst), Mutable: st.Mutable,
			Value: substituteExpr(st.Value, subst), Pos: st.Pos,
		}
	case *zast.AssignStmt:
		return &zast.AssignStmt{Target: substituteExpr(st.Target, subst), Value: substituteExpr(st.Value, subst), Pos: st.Pos}
	case *zast.ReturnStmt:
		return &zast.ReturnStmt{Value: substituteExpr(st.Value, subst), Pos: st.Pos}
	case *zast.DeferStmt:
		return &zast.DeferStmt{Expr: substituteExpr(st.Expr, subst), Pos: st.Pos}
	default:
		return s // Break/Continue carry nothing to substitute
	}
}

// rewriteDecl rewrites call-sites and struct-literal constructors inside
// a retained non-generic declaration or a specialized function so they
// reference the mangled
// specializations instead of the (now-removed) generic templates. It is
// intentionally identity for declaration kinds that cannot contain a
// generic call (imports, type aliases).
func (m *Monomorphizer) rewriteDecl(d zast.Decl) zast.Decl {
	switch decl := d.(type) {
	case *zast.FuncDecl:
		cp := *decl
		cp.Body = m.rewriteExpr(decl.Body)
		return &cp
	case *zast.StructDecl:
		cp := *decl
		cp.Methods = m.rewriteMethods(decl.Methods)
		return &cp
	case *zast.EnumDecl:
		cp := *decl
		cp.Methods = m.rewriteMethods(decl.Methods)
		return &cp
	case *zast.TraitImplDecl:
		cp := *decl
		cp.Methods = m.rewriteMethods(decl.Methods)
		return &cp
	case *zast.ImplBlockDecl:
		cp := *decl
		cp.Methods = m.rewriteMethods(decl.Methods)
		return &cp
	default:
		return d
	}
}

func (m *Monomorphizer) rewriteMethods(methods []*zast.FuncDecl) []*zast.FuncDecl {
	out := make([]*zast.FuncDecl, len(methods))
	for i, meth := range methods {
		cp := *meth
		cp.Body = m.rewriteExpr(meth.Body)
		out[i] = &cp
	}
	return out
}

// rewriteExpr walks e, replacing every call to a generic template name
// with a call to its resolved mangled specialization (looked up by
// re-deriving the instantiation the same way seedExpr did) and every
// struct literal of a generic template with its mangled name.
func (m *Monomorphizer) rewriteExpr(e zast.Expr) zast.Expr {
	if e == nil {
		return nil
	}
	switch ex := e.(type) {
	case *zast.Call:
		args := make([]zast.Expr, len(ex.Args))
		for i, a := range ex.Args {
			args[i] = m.rewriteExpr(a)
		}
		fn := ex.Func
		if id, ok := ex.Func.(*zast.Identifier); ok {
			if tmpl, ok := m.genericFuncs[id.Name]; ok {
				if resolvedArgs, err := m.resolveCallArgs(tmpl, ex); err == nil {
					fn = &zast.Identifier{Name: MangledName(id.Name, resolvedArgs), Pos: id.Pos}
				}
			}
		}
		return &zast.Call{Func: fn, Args: args, Pos: ex.Pos}
	case *zast.MethodCall:
		args := make([]zast.Expr, len(ex.Args))
		for i, a := range ex.Args {
			args[i] = m.rewriteExpr(a)
		}
		return &zast.MethodCall{Receiver: m.rewriteExpr(ex.Receiver), Method: ex.Method, Args: args, Pos: ex.Pos}
	case *zast.StructLiteral:
		fields := make([]zast.FieldInit, len(ex.Fields))
		for i, f := range ex.Fields {
			fields[i] = zast.FieldInit{Name: f.Name, Value: m.rewriteExpr(f.Value)}
		}
		name := ex.Name
		if tmpl, ok := m.genericStructs[ex.Name]; ok {
			name = MangledName(ex.Name, m.inferStructTypeArgs(tmpl, ex))
		}
		return &zast.StructLiteral{Name: name, Fields: fields, Pos: ex.Pos}
	case *zast.BinaryOp:
		return &zast.BinaryOp{Left: m.rewriteExpr(ex.Left), Op: ex.Op, Right: m.rewriteExpr(ex.Right), Pos: ex.Pos}
	case *zast.UnaryOp:
		return &zast.UnaryOp{Op: ex.Op, Expr: m.rewriteExpr(ex.Expr), Pos: ex.Pos}
	case *zast.Block:
		stmts := make([]zast.Stmt, len(ex.Stmts))
		for i, s := range ex.Stmts {
			stmts[i] = m.rewriteStmt(s)
		}
		return &zast.Block{Stmts: stmts, Trailing: m.rewriteExpr(ex.Trailing), Pos: ex.Pos}
	case *zast.If:
		return &zast.If{Cond: m.rewriteExpr(ex.Cond), Then: m.rewriteExpr(ex.Then), Else: m.rewriteExpr(ex.Else), Pos: ex.Pos}
	case *zast.Match:
		cases := make([]zast.Case, len(ex.Cases))
		for i, c := range ex.Cases {
			cases[i] = zast.Case{Pattern: c.Pattern, Body: m.rewriteExpr(c.Body), Pos: c.Pos}
		}
		return &zast.Match{Scrutinee: m.rewriteExpr(ex.Scrutinee), Cases: cases, Pos: ex.Pos}
	case *zast.MemberAccess:
		return &zast.MemberAccess{Receiver: m.rewriteExpr(ex.Receiver), Field: ex.Field, Pos: ex.Pos}
	case *zast.EnumLiteral:
		return &zast.EnumLiteral{Variant: ex.Variant, Payload: m.rewriteExpr(ex.Payload), Pos: ex.Pos}
	case *zast.RangeExpr:
		return &zast.RangeExpr{Start: m.rewriteExpr(ex.Start), End: m.rewriteExpr(ex.End), Inclusive: ex.Inclusive, Pos: ex.Pos}
	default:
		return e
	}
}

func (m *Monomorphizer) rewriteStmt(s zast.Stmt) zast.Stmt {
	switch st := s.(type) {
	case *zast.ExprStmt:
		return &zast.ExprStmt{Expr: m.rewriteExpr(st.Expr), Pos: st.Pos}
	case *zast.LetStmt:
		return &zast.LetStmt{Name: st.Name, Type: st.Type, Mutable: st.Mutable, Value: m.rewriteExpr(st.Value), Pos: st.Pos}
	case *zast.AssignStmt:
		return &zast.AssignStmt{Target: m.rewriteExpr(st.Target), Value: m.rewriteExpr(st.Value), Pos: st.Pos}
	case *zast.ReturnStmt:
		return &zast.ReturnStmt{Value: m.rewriteExpr(st.Value), Pos: st.Pos}
	case *zast.DeferStmt:
		return &zast.DeferStmt{Expr: m.rewriteExpr(st.Expr), Pos: st.Pos}
	default:
		return s
	}
}
