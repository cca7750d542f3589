package zmodule

import "github.com/zenlang/zen/internal/zast"

// RewriteQualifiedRefs rewrites every `alias.name` member access where
// `alias` is a known module alias into the bare canonical `name`
// reference the merged program now carries (declarations keep their
// original unqualified names once merged into one flat program).
func RewriteQualifiedRefs(prog *zast.Program, aliasToModule map[string]string) {
	if len(aliasToModule) == 0 {
		return
	}
	for _, d := range prog.Decls {
		rewriteDecl(d, aliasToModule)
	}
}

func rewriteDecl(d zast.Decl, aliases map[string]string) {
	switch decl := d.(type) {
	case *zast.FuncDecl:
		decl.Body = rewriteExpr(decl.Body, aliases)
	case *zast.StructDecl:
		for _, m := range decl.Methods {
			m.Body = rewriteExpr(m.Body, aliases)
		}
	case *zast.EnumDecl:
		for _, m := range decl.Methods {
			m.Body = rewriteExpr(m.Body, aliases)
		}
	case *zast.TraitImplDecl:
		for _, m := range decl.Methods {
			m.Body = rewriteExpr(m.Body, aliases)
		}
	case *zast.ImplBlockDecl:
		for _, m := range decl.Methods {
			m.Body = rewriteExpr(m.Body, aliases)
		}
	case *zast.ConstDecl:
		decl.Value = rewriteExpr(decl.Value, aliases)
	case *zast.ComptimeBlockDecl:
		for i, s := range decl.Stmts {
			decl.Stmts[i] = rewriteStmt(s, aliases)
		}
	}
}

func rewriteStmt(s zast.Stmt, aliases map[string]string) zast.Stmt {
	switch st := s.(type) {
	case *zast.ExprStmt:
		st.Expr = rewriteExpr(st.Expr, aliases)
	case *zast.LetStmt:
		if st.Value != nil {
			st.Value = rewriteExpr(st.Value, aliases)
		}
	case *zast.AssignStmt:
		st.Target = rewriteExpr(st.Target, aliases)
		st.Value = rewriteExpr(st.Value, aliases)
	case *zast.ReturnStmt:
		if st.Value != nil {
			st.Value = rewriteExpr(st.Value, aliases)
		}
	case *zast.DeferStmt:
		st.Expr = rewriteExpr(st.Expr, aliases)
	}
	return s
}

// rewriteExpr walks e, replacing any `Identifier(alias).field` shaped
// MemberAccess with a bare `Identifier(field)` when alias names a known
// module. It returns e (mutated in place on the owned copy the
// resolver holds; earlier passes' ASTs are discardable per §3).
func rewriteExpr(e zast.Expr, aliases map[string]string) zast.Expr {
	if e == nil {
		return nil
	}
	switch ex := e.(type) {
	case *zast.MemberAccess:
		if id, ok := ex.Receiver.(*zast.Identifier); ok {
			if _, isAlias := aliases[id.Name]; isAlias {
				return &zast.Identifier{Name: ex.Field, Pos: ex.Pos}
			}
		}
		ex.Receiver = rewriteExpr(ex.Receiver, aliases)
	case *zast.BinaryOp:
		ex.Left = rewriteExpr(ex.Left, aliases)
		ex.Right = rewriteExpr(ex.Right, aliases)
	case *zast.UnaryOp:
		ex.Expr = rewriteExpr(ex.Expr, aliases)
	case *zast.Call:
		ex.Func = rewriteExpr(ex.Func, aliases)
		for i, a := range ex.Args {
			ex.Args[i] = rewriteExpr(a, aliases)
		}
	case *zast.MethodCall:
		ex.Receiver = rewriteExpr(ex.Receiver, aliases)
		for i, a := range ex.Args {
			ex.Args[i] = rewriteExpr(a, aliases)
		}
	case *zast.Block:
		for i, s := range ex.Stmts {
			ex.Stmts[i] = rewriteStmt(s, aliases)
		}
		if ex.Trailing != nil {
			ex.Trailing = rewriteExpr(ex.Trailing, aliases)
		}
	case *zast.If:
		ex.Cond = rewriteExpr(ex.Cond, aliases)
		ex.Then = rewriteExpr(ex.Then, aliases)
		if ex.Else != nil {
			ex.Else = rewriteExpr(ex.Else, aliases)
		}
	case *zast.Match:
		ex.Scrutinee = rewriteExpr(ex.Scrutinee, aliases)
		for i := range ex.Cases {
			ex.Cases[i].Body = rewriteExpr(ex.Cases[i].Body, aliases)
		}
	case *zast.EnumLiteral:
		if ex.Payload != nil {
			ex.Payload = rewriteExpr(ex.Payload, aliases)
		}
	case *zast.StructLiteral:
		for i := range ex.Fields {
			ex.Fields[i].Value = rewriteExpr(ex.Fields[i].Value, aliases)
		}
	case *zast.RangeExpr:
		ex.Start = rewriteExpr(ex.Start, aliases)
		ex.End = rewriteExpr(ex.End, aliases)
	case *zast.ComptimeExpr:
		ex.Inner = rewriteExpr(ex.Inner, aliases)
	}
	return e
}
