package codegen

import (
	"github.com/zenlang/zen/internal/llvmir"
	"github.com/zenlang/zen/internal/zast"
	"github.com/zenlang/zen/internal/ztype"
)

// genStmt lowers one statement, mirroring check.checkStmt's dispatch
// (§4.5) but emitting instructions instead of validating types.
func (g *Generator) genStmt(s zast.Stmt) error {
	switch st := s.(type) {
	case *zast.ExprStmt:
		_, _, err := g.genExpr(st.Expr)
		return err

	case *zast.LetStmt:
		return g.genLet(st)

	case *zast.AssignStmt:
		return g.genAssign(st)

	case *zast.ReturnStmt:
		return g.genReturn(st)

	case *zast.DeferStmt:
		g.deferStack = append(g.deferStack, st.Expr)
		return nil

	case *zast.BreakStmt:
		if len(g.loopStack) == 0 {
			return internalErrf("codegen: break outside a loop reached codegen")
		}
		frame := g.loopStack[len(g.loopStack)-1]
		g.builder.Br(frame.breakBlk)
		return nil

	case *zast.ContinueStmt:
		if len(g.loopStack) == 0 {
			return internalErrf("codegen: continue outside a loop reached codegen")
		}
		frame := g.loopStack[len(g.loopStack)-1]
		g.builder.Br(frame.continueBlk)
		return nil

	default:
		return internalErrf("codegen: unhandled statement kind %T", s)
	}
}

func (g *Generator) genLet(st *zast.LetStmt) error {
	if st.Value == nil {
		t := st.Type
		slot := g.builder.Alloca(llvmType(t))
		g.vars[st.Name] = &varSlot{ptr: slot, typ: t, mutable: st.Mutable}
		g.checker.DeclareLocal(st.Name, t, st.Mutable)
		return nil
	}
	val, valType, err := g.genExpr(st.Value)
	if err != nil {
		return err
	}
	declaredType := valType
	if st.Type != nil {
		declaredType = st.Type
	}
	slot := g.builder.Alloca(llvmType(declaredType))
	g.builder.Store(val, slot)
	g.vars[st.Name] = &varSlot{ptr: slot, typ: declaredType, mutable: st.Mutable}
	g.checker.DeclareLocal(st.Name, declaredType, st.Mutable)
	return nil
}

func (g *Generator) genAssign(st *zast.AssignStmt) error {
	val, _, err := g.genExpr(st.Value)
	if err != nil {
		return err
	}
	id, ok := st.Target.(*zast.Identifier)
	if !ok {
		// Member-access / index targets: resolve the address the same
		// way genMemberAccess locates the field, then store into it.
		return g.genAssignMember(st.Target, val)
	}
	slot, ok := g.vars[id.Name]
	if !ok {
		return internalErrf("codegen: assignment to undeclared variable %q reached codegen", id.Name)
	}
	g.builder.Store(val, slot.ptr)
	return nil
}

func (g *Generator) genAssignMember(target zast.Expr, val llvmir.Value) error {
	m, ok := target.(*zast.MemberAccess)
	if !ok {
		return internalErrf("codegen: unsupported assignment target %T", target)
	}
	recvVal, recvType, err := g.genExpr(m.Receiver)
	if err != nil {
		return err
	}
	if p, ok := recvType.(*ztype.Ptr); ok {
		recvType = p.Inner
	}
	st, ok := recvType.(*ztype.Struct)
	if !ok {
		return internalErrf("codegen: member assignment on non-struct type %s", recvType)
	}
	full := st
	if registered, ok := g.structs[st.Name]; ok {
		full = registered
	}
	idx := fieldIndex(full, m.Field)
	if idx < 0 {
		return internalErrf("codegen: struct %s has no field %q", st.Name, m.Field)
	}
	fieldPtr := g.builder.GEPField("ptr", recvVal, idx)
	g.builder.Store(val, fieldPtr)
	return nil
}

func (g *Generator) genReturn(st *zast.ReturnStmt) error {
	if st.Value == nil {
		g.runDefers()
		g.builder.RetVoid()
		return nil
	}
	val, _, err := g.genExpr(st.Value)
	if err != nil {
		return err
	}
	g.runDefers()
	g.builder.Ret(val)
	return nil
}
