// Package comptime implements the compile-time evaluator (C3): it walks
// the program bottom-up, evaluates every comptime(expr) to a literal AST
// node, and expands top-level comptime { ... } blocks into generated
// declarations. Evaluation is restricted to pure, terminating operations
// over literals and const-resolved identifiers (§4.3), mirroring the
// teacher's bottom-up elaboration walk in internal/elaborate/elaborate.go.
package comptime

import (
	"fmt"

	"github.com/zenlang/zen/internal/zast"
	"github.com/zenlang/zen/internal/zerrors"
)

// Evaluator holds the const environment comptime evaluation runs against:
// top-level ConstDecls plus anything a comptime block itself defines.
type Evaluator struct {
	consts map[string]*zast.Literal
}

// New builds an Evaluator with no consts registered yet.
func New() *Evaluator {
	return &Evaluator{consts: map[string]*zast.Literal{}}
}

// Run evaluates every comptime(expr) site and expands top-level comptime
// blocks, returning a new Program with its own Decls slice. The
// declarations and expression nodes it rewrites are updated in place,
// so the input Program's nodes carry the evaluated literals as well.
func (e *Evaluator) Run(prog *zast.Program) (*zast.Program, error) {
	// First pass: register constants so comptime expressions elsewhere
	// in the program may reference them.
	for _, d := range prog.Decls {
		if c, ok := d.(*zast.ConstDecl); ok {
			if lit, ok := c.Value.(*zast.Literal); ok {
				e.consts[c.Name] = lit
			}
		}
	}

	out := &zast.Program{Pos: prog.Pos}
	for _, d := range prog.Decls {
		if cb, ok := d.(*zast.ComptimeBlockDecl); ok {
			generated, err := e.expandBlock(cb)
			if err != nil {
				return nil, err
			}
			out.Decls = append(out.Decls, generated...)
			continue
		}
		rewritten, err := e.rewriteDecl(d)
		if err != nil {
			return nil, err
		}
		out.Decls = append(out.Decls, rewritten)
	}
	return out, nil
}

// expandBlock evaluates a top-level comptime block's statements; any
// LetStmt that resolves to a constant literal is emitted as a ConstDecl,
// satisfying "may emit generated declarations which are appended to the
// program" (§4.3). An import-like construct inside the block is rejected
// per P8.
func (e *Evaluator) expandBlock(cb *zast.ComptimeBlockDecl) ([]zast.Decl, error) {
	var out []zast.Decl
	for _, s := range cb.Stmts {
		if err := e.rejectImportLike(s); err != nil {
			return nil, err
		}
		let, ok := s.(*zast.LetStmt)
		if !ok || let.Value == nil {
			continue
		}
		lit, err := e.evalConst(let.Value)
		if err != nil {
			return nil, err
		}
		e.consts[let.Name] = lit
		out = append(out, &zast.ConstDecl{Name: let.Name, Type: let.Type, Value: lit, Pos: let.Pos})
	}
	return out, nil
}

// rejectImportLike enforces P8 for statements inside a comptime block:
// an expression statement that is a bare `std` or `@std` identifier is
// a ComptimeImportForbidden error naming the alias, because comptime
// must never affect module resolution (§4.3). Other module references
// (such as a `std.io` member access) are not detected here.
func (e *Evaluator) rejectImportLike(s zast.Stmt) error {
	es, ok := s.(*zast.ExprStmt)
	if !ok {
		return nil
	}
	if id, ok := es.Expr.(*zast.Identifier); ok && looksLikeModuleAlias(id.Name) {
		return zerrors.Wrap(zerrors.New(zerrors.ComptimeImportForbidden,
			fmt.Sprintf("import-like reference to %q is forbidden inside comptime", id.Name), nil).
			WithData("alias", id.Name))
	}
	return nil
}

func looksLikeModuleAlias(name string) bool {
	return name == "std" || name == "@std"
}

// rewriteDecl recursively replaces ComptimeExpr nodes inside a
// declaration's bodies/values with their evaluated literal form.
func (e *Evaluator) rewriteDecl(d zast.Decl) (zast.Decl, error) {
	var err error
	switch decl := d.(type) {
	case *zast.FuncDecl:
		decl.Body, err = e.rewriteExpr(decl.Body)
	case *zast.StructDecl:
		for _, m := range decl.Methods {
			m.Body, err = e.rewriteExpr(m.Body)
			if err != nil {
				return nil, err
			}
		}
	case *zast.EnumDecl:
		for _, m := range decl.Methods {
			m.Body, err = e.rewriteExpr(m.Body)
			if err != nil {
				return nil, err
			}
		}
	case *zast.TraitImplDecl:
		for _, m := range decl.Methods {
			m.Body, err = e.rewriteExpr(m.Body)
			if err != nil {
				return nil, err
			}
		}
	case *zast.ImplBlockDecl:
		for _, m := range decl.Methods {
			m.Body, err = e.rewriteExpr(m.Body)
			if err != nil {
				return nil, err
			}
		}
	case *zast.ConstDecl:
		decl.Value, err = e.rewriteExpr(decl.Value)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// rewriteExpr walks e bottom-up, evaluating any ComptimeExpr it finds.
func (e *Evaluator) rewriteExpr(expr zast.Expr) (zast.Expr, error) {
	if expr == nil {
		return nil, nil
	}
	var err error
	switch ex := expr.(type) {
	case *zast.ComptimeExpr:
		inner, ierr := e.rewriteExpr(ex.Inner)
		if ierr != nil {
			return nil, ierr
		}
		return e.evalConst(inner)
	case *zast.BinaryOp:
		ex.Left, err = e.rewriteExpr(ex.Left)
		if err != nil {
			return nil, err
		}
		ex.Right, err = e.rewriteExpr(ex.Right)
		return ex, err
	case *zast.UnaryOp:
		ex.Expr, err = e.rewriteExpr(ex.Expr)
		return ex, err
	case *zast.Call:
		ex.Func, err = e.rewriteExpr(ex.Func)
		if err != nil {
			return nil, err
		}
		for i, a := range ex.Args {
			ex.Args[i], err = e.rewriteExpr(a)
			if err != nil {
				return nil, err
			}
		}
		return ex, nil
	case *zast.MethodCall:
		ex.Receiver, err = e.rewriteExpr(ex.Receiver)
		if err != nil {
			return nil, err
		}
		for i, a := range ex.Args {
			ex.Args[i], err = e.rewriteExpr(a)
			if err != nil {
				return nil, err
			}
		}
		return ex, nil
	case *zast.Block:
		for i, s := range ex.Stmts {
			ex.Stmts[i], err = e.rewriteStmt(s)
			if err != nil {
				return nil, err
			}
		}
		if ex.Trailing != nil {
			ex.Trailing, err = e.rewriteExpr(ex.Trailing)
		}
		return ex, err
	case *zast.If:
		ex.Cond, err = e.rewriteExpr(ex.Cond)
		if err != nil {
			return nil, err
		}
		ex.Then, err = e.rewriteExpr(ex.Then)
		if err != nil {
			return nil, err
		}
		if ex.Else != nil {
			ex.Else, err = e.rewriteExpr(ex.Else)
		}
		return ex, err
	case *zast.Match:
		ex.Scrutinee, err = e.rewriteExpr(ex.Scrutinee)
		if err != nil {
			return nil, err
		}
		for i := range ex.Cases {
			ex.Cases[i].Body, err = e.rewriteExpr(ex.Cases[i].Body)
			if err != nil {
				return nil, err
			}
		}
		return ex, nil
	case *zast.EnumLiteral:
		if ex.Payload != nil {
			ex.Payload, err = e.rewriteExpr(ex.Payload)
		}
		return ex, err
	case *zast.StructLiteral:
		for i := range ex.Fields {
			ex.Fields[i].Value, err = e.rewriteExpr(ex.Fields[i].Value)
			if err != nil {
				return nil, err
			}
		}
		return ex, nil
	case *zast.RangeExpr:
		ex.Start, err = e.rewriteExpr(ex.Start)
		if err != nil {
			return nil, err
		}
		ex.End, err = e.rewriteExpr(ex.End)
		return ex, err
	default:
		return expr, nil
	}
}

func (e *Evaluator) rewriteStmt(s zast.Stmt) (zast.Stmt, error) {
	var err error
	switch st := s.(type) {
	case *zast.ExprStmt:
		st.Expr, err = e.rewriteExpr(st.Expr)
	case *zast.LetStmt:
		if st.Value != nil {
			st.Value, err = e.rewriteExpr(st.Value)
		}
	case *zast.AssignStmt:
		st.Target, err = e.rewriteExpr(st.Target)
		if err != nil {
			return nil, err
		}
		st.Value, err = e.rewriteExpr(st.Value)
	case *zast.ReturnStmt:
		if st.Value != nil {
			st.Value, err = e.rewriteExpr(st.Value)
		}
	case *zast.DeferStmt:
		st.Expr, err = e.rewriteExpr(st.Expr)
	}
	return s, err
}

// evalConst evaluates expr to a Literal. Supported forms: literals
// themselves, const-resolved identifiers, unary -/!, and the binary
// arithmetic/comparison/logical operators of §3 applied to two already-
// evaluated operands. Anything else (calls to non-const functions, I/O,
// non-terminating constructs) is rejected as ComptimeNotConst.
func (e *Evaluator) evalConst(expr zast.Expr) (*zast.Literal, error) {
	switch ex := expr.(type) {
	case *zast.Literal:
		return ex, nil
	case *zast.Identifier:
		if lit, ok := e.consts[ex.Name]; ok {
			return lit, nil
		}
		return nil, zerrors.Wrap(zerrors.New(zerrors.ComptimeNotConst,
			fmt.Sprintf("%q is not a compile-time constant", ex.Name), nil))
	case *zast.UnaryOp:
		v, err := e.evalConst(ex.Expr)
		if err != nil {
			return nil, err
		}
		return evalUnary(ex.Op, v)
	case *zast.BinaryOp:
		l, err := e.evalConst(ex.Left)
		if err != nil {
			return nil, err
		}
		r, err := e.evalConst(ex.Right)
		if err != nil {
			return nil, err
		}
		return evalBinary(ex.Op, l, r)
	default:
		return nil, zerrors.Wrap(zerrors.New(zerrors.ComptimeNotConst,
			"expression is not compile-time constant", nil))
	}
}

func evalUnary(op string, v *zast.Literal) (*zast.Literal, error) {
	switch op {
	case "-":
		switch v.Kind {
		case zast.IntLit:
			return &zast.Literal{Kind: zast.IntLit, Value: -v.Value.(int64), Pos: v.Pos}, nil
		case zast.FloatLit:
			return &zast.Literal{Kind: zast.FloatLit, Value: -v.Value.(float64), Pos: v.Pos}, nil
		}
	case "!":
		if v.Kind == zast.BoolLit {
			return &zast.Literal{Kind: zast.BoolLit, Value: !v.Value.(bool), Pos: v.Pos}, nil
		}
	}
	return nil, zerrors.Wrap(zerrors.New(zerrors.ComptimeTypeUnsupported,
		fmt.Sprintf("unsupported comptime unary operator %q", op), nil))
}

func evalBinary(op string, l, r *zast.Literal) (*zast.Literal, error) {
	if l.Kind == zast.IntLit && r.Kind == zast.IntLit {
		a, b := l.Value.(int64), r.Value.(int64)
		switch op {
		case "+":
			return &zast.Literal{Kind: zast.IntLit, Value: a + b}, nil
		case "-":
			return &zast.Literal{Kind: zast.IntLit, Value: a - b}, nil
		case "*":
			return &zast.Literal{Kind: zast.IntLit, Value: a * b}, nil
		case "/":
			if b == 0 {
				return nil, zerrors.Wrap(zerrors.New(zerrors.ComptimeNotConst, "division by zero in comptime", nil))
			}
			return &zast.Literal{Kind: zast.IntLit, Value: a / b}, nil
		case "%":
			if b == 0 {
				return nil, zerrors.Wrap(zerrors.New(zerrors.ComptimeNotConst, "modulo by zero in comptime", nil))
			}
			return &zast.Literal{Kind: zast.IntLit, Value: a % b}, nil
		case "==":
			return &zast.Literal{Kind: zast.BoolLit, Value: a == b}, nil
		case "!=":
			return &zast.Literal{Kind: zast.BoolLit, Value: a != b}, nil
		case "<":
			return &zast.Literal{Kind: zast.BoolLit, Value: a < b}, nil
		case "<=":
			return &zast.Literal{Kind: zast.BoolLit, Value: a <= b}, nil
		case ">":
			return &zast.Literal{Kind: zast.BoolLit, Value: a > b}, nil
		case ">=":
			return &zast.Literal{Kind: zast.BoolLit, Value: a >= b}, nil
		}
	}
	if l.Kind == zast.BoolLit && r.Kind == zast.BoolLit {
		a, b := l.Value.(bool), r.Value.(bool)
		switch op {
		case "&&":
			return &zast.Literal{Kind: zast.BoolLit, Value: a && b}, nil
		case "||":
			return &zast.Literal{Kind: zast.BoolLit, Value: a || b}, nil
		}
	}
	if l.Kind == zast.StringLit && r.Kind == zast.StringLit && op == "++" {
		return &zast.Literal{Kind: zast.StringLit, Value: l.Value.(string) + r.Value.(string)}, nil
	}
	return nil, zerrors.Wrap(zerrors.New(zerrors.ComptimeTypeUnsupported,
		fmt.Sprintf("unsupported comptime operator %q for operand kinds", op), nil))
}
