package codegen

import (
	"fmt"

	"github.com/zenlang/zen/internal/llvmir"
	"github.com/zenlang/zen/internal/zast"
	"github.com/zenlang/zen/internal/ztype"
)

// genExpr lowers e, returning its value and static type. The dispatch
// shape mirrors check/infer.go's inferExpr kind-by-kind switch, since
// §4.7.6 grounds C9's own type bookkeeping in the same rules C5 uses.
func (g *Generator) genExpr(e zast.Expr) (llvmir.Value, ztype.Type, error) {
	switch ex := e.(type) {
	case *zast.Literal:
		return g.genLiteral(ex)

	case *zast.Identifier:
		if slot, ok := g.vars[ex.Name]; ok {
			return g.builder.Load(llvmType(slot.typ), slot.ptr), slot.typ, nil
		}
		if fn, ok := g.functions[ex.Name]; ok {
			args := make([]ztype.Type, len(fn.Params))
			for i, p := range fn.Params {
				args[i] = p.Type
			}
			ft := &ztype.Function{Args: args, Return: fn.Return}
			return llvmir.Value{Text: "@" + fn.Name, Type: "ptr"}, ft.AsFunctionPointer(), nil
		}
		return llvmir.Value{}, nil, internalErrf("codegen: undeclared identifier %q reached codegen", ex.Name)

	case *zast.UnaryOp:
		return g.genUnary(ex)

	case *zast.BinaryOp:
		return g.genBinary(ex)

	case *zast.Call:
		return g.genCall(ex)

	case *zast.MethodCall:
		return g.genMethodCall(ex)

	case *zast.MemberAccess:
		return g.genMemberAccess(ex)

	case *zast.Block:
		return g.genBlock(ex)

	case *zast.If:
		return g.genIf(ex)

	case *zast.Match:
		return g.genMatch(ex)

	case *zast.EnumLiteral:
		return g.genEnumLiteral(ex)

	case *zast.StructLiteral:
		return g.genStructLiteral(ex)

	case *zast.SelfExpr:
		if slot, ok := g.vars["self"]; ok {
			return g.builder.Load(llvmType(slot.typ), slot.ptr), slot.typ, nil
		}
		return llvmir.Value{}, nil, internalErrf("codegen: Self used outside a method")

	default:
		return llvmir.Value{}, nil, unsupported(fmt.Sprintf("codegen: unhandled expression kind %T", e))
	}
}

func (g *Generator) genLiteral(l *zast.Literal) (llvmir.Value, ztype.Type, error) {
	switch l.Kind {
	case zast.IntLit:
		return llvmir.ConstInt("i32", l.Value.(int64)), ztype.TI32, nil
	case zast.FloatLit:
		return llvmir.ConstFloat("double", l.Value.(float64)), ztype.TF64, nil
	case zast.BoolLit:
		return llvmir.ConstBool(l.Value.(bool)), ztype.TBool, nil
	case zast.StringLit:
		g.module.Globals = append(g.module.Globals, fmt.Sprintf("; string literal %q emitted inline at use sites", l.Value))
		return llvmir.Value{Text: fmt.Sprintf("%q", l.Value), Type: "ptr"}, &ztype.StringType{Kind: ztype.StaticString}, nil
	default:
		return llvmir.Value{}, nil, internalErrf("codegen: unknown literal kind %v", l.Kind)
	}
}

func (g *Generator) genUnary(u *zast.UnaryOp) (llvmir.Value, ztype.Type, error) {
	val, typ, err := g.genExpr(u.Expr)
	if err != nil {
		return llvmir.Value{}, nil, err
	}
	lt := llvmType(typ)
	switch u.Op {
	case "-":
		if ztype.IsFloat(typ) {
			return g.builder.BinOp("fsub", lt, llvmir.ConstFloat(lt, 0), val), typ, nil
		}
		return g.builder.BinOp("sub", lt, llvmir.ConstInt(lt, 0), val), typ, nil
	case "!":
		return g.builder.BinOp("xor", "i1", val, llvmir.ConstBool(true)), ztype.TBool, nil
	case "~":
		return g.builder.BinOp("xor", lt, val, llvmir.ConstInt(lt, -1)), typ, nil
	default:
		return llvmir.Value{}, nil, unsupported("codegen: unknown unary operator " + u.Op)
	}
}

// binOpTable maps a surface operator to (int instruction, float
// instruction, unsigned-int instruction); an empty entry means the
// operator has no form of that kind and the first (int) column is used.
var binOpTable = map[string][3]string{
	"+": {"add", "fadd", "add"},
	"-": {"sub", "fsub", "sub"},
	"*": {"mul", "fmul", "mul"},
	"/": {"sdiv", "fdiv", "udiv"},
	"%": {"srem", "frem", "urem"},
	"&": {"and", "", "and"},
	"|": {"or", "", "or"},
	"^": {"xor", "", "xor"},
	"<<": {"shl", "", "shl"},
	">>": {"ashr", "", "lshr"},
}

var cmpOpTable = map[string][3]string{
	"==": {"eq", "oeq", "eq"},
	"!=": {"ne", "one", "ne"},
	"<":  {"slt", "olt", "ult"},
	"<=": {"sle", "ole", "ule"},
	">":  {"sgt", "ogt", "ugt"},
	">=": {"sge", "oge", "uge"},
}

func (g *Generator) genBinary(b *zast.BinaryOp) (llvmir.Value, ztype.Type, error) {
	lval, lt, err := g.genExpr(b.Left)
	if err != nil {
		return llvmir.Value{}, nil, err
	}
	rval, rt, err := g.genExpr(b.Right)
	if err != nil {
		return llvmir.Value{}, nil, err
	}

	switch b.Op {
	case "&&":
		return g.builder.BinOp("and", "i1", lval, rval), ztype.TBool, nil
	case "||":
		return g.builder.BinOp("or", "i1", lval, rval), ztype.TBool, nil
	case "++":
		res := g.builder.Call("zen_string_concat", "ptr", []llvmir.Value{lval, rval})
		return res, &ztype.StringType{Kind: ztype.DynamicString}, nil
	}

	if codes, ok := cmpOpTable[b.Op]; ok {
		llt := llvmType(lt)
		if ztype.IsFloat(lt) || ztype.IsFloat(rt) {
			return g.builder.FCmp(codes[1], llt, lval, rval), ztype.TBool, nil
		}
		cond := codes[0]
		if ztype.IsUnsignedInteger(lt) && ztype.IsUnsignedInteger(rt) {
			cond = codes[2]
		}
		return g.builder.ICmp(cond, llt, lval, rval), ztype.TBool, nil
	}

	if codes, ok := binOpTable[b.Op]; ok {
		resultType := ztype.PromoteNumeric(lt, rt)
		llt := llvmType(resultType)
		op := codes[0]
		if ztype.IsFloat(resultType) && codes[1] != "" {
			op = codes[1]
		} else if ztype.IsUnsignedInteger(resultType) && codes[2] != "" {
			op = codes[2]
		}
		return g.builder.BinOp(op, llt, lval, rval), resultType, nil
	}

	return llvmir.Value{}, nil, unsupported("codegen: unknown binary operator " + b.Op)
}

func (g *Generator) genCall(call *zast.Call) (llvmir.Value, ztype.Type, error) {
	args := make([]llvmir.Value, len(call.Args))
	for i, a := range call.Args {
		v, _, err := g.genExpr(a)
		if err != nil {
			return llvmir.Value{}, nil, err
		}
		args[i] = v
	}

	if id, ok := call.Func.(*zast.Identifier); ok {
		if fn, ok := g.functions[id.Name]; ok {
			return g.builder.Call(id.Name, llvmType(fn.Return), args), fn.Return, nil
		}
	}

	fnVal, fnType, err := g.genExpr(call.Func)
	if err != nil {
		return llvmir.Value{}, nil, err
	}
	switch ft := fnType.(type) {
	case *ztype.FunctionPointer:
		return g.builder.CallValue(fnVal, llvmType(ft.Return), args), ft.Return, nil
	case *ztype.Function:
		return g.builder.CallValue(fnVal, llvmType(ft.Return), args), ft.Return, nil
	default:
		return llvmir.Value{}, nil, internalErrf("codegen: %s is not callable", fnType)
	}
}

// genMethodCall resolves recv.method(args) the same way C5/C6 do: UFC
// over a matching free function first, then the behavior resolver's
// trait/inherent registry, then the fixed set of built-in methods
// (§4.5/§4.6). The symbol name mirrors genFunc's methodSymbol scheme.
func (g *Generator) genMethodCall(mc *zast.MethodCall) (llvmir.Value, ztype.Type, error) {
	recvVal, recvType, err := g.genExpr(mc.Receiver)
	if err != nil {
		return llvmir.Value{}, nil, err
	}
	args := make([]llvmir.Value, 0, len(mc.Args)+1)
	args = append(args, recvVal)
	for _, a := range mc.Args {
		v, _, err := g.genExpr(a)
		if err != nil {
			return llvmir.Value{}, nil, err
		}
		args = append(args, v)
	}

	if fn, ok := g.functions[mc.Method]; ok && len(fn.Params) > 0 {
		return g.builder.Call(mc.Method, llvmType(fn.Return), args), fn.Return, nil
	}
	if m, ok := g.behavior.ResolveMethod(recvType, mc.Method); ok {
		symbol := methodSymbol(typeName(recvType), mc.Method)
		return g.builder.Call(symbol, llvmType(m.Return), args), m.Return, nil
	}
	return g.genBuiltinMethod(mc, recvVal, recvType)
}

func typeName(t ztype.Type) string {
	switch v := t.(type) {
	case *ztype.Struct:
		return v.Name
	case *ztype.Enum:
		return v.Name
	case *ztype.Generic:
		return v.Name
	default:
		return t.String()
	}
}

// genBuiltinMethod lowers the fixed built-in methods (len/get/val/addr/
// ref/mut_ref/raise/loop, §4.5) to direct instructions or runtime calls
// rather than a user-defined symbol.
func (g *Generator) genBuiltinMethod(mc *zast.MethodCall, recvVal llvmir.Value, recvType ztype.Type) (llvmir.Value, ztype.Type, error) {
	switch mc.Method {
	case "len":
		if ztype.IsStringType(recvType) {
			return g.builder.Call("zen_string_len", "i64", []llvmir.Value{recvVal}), ztype.TU64, nil
		}
	case "ref":
		slot := g.builder.Alloca(llvmType(recvType))
		g.builder.Store(recvVal, slot)
		return slot, &ztype.Ptr{Inner: recvType}, nil
	case "mut_ref":
		slot := g.builder.Alloca(llvmType(recvType))
		g.builder.Store(recvVal, slot)
		return slot, &ztype.Ptr{Mut: true, Inner: recvType}, nil
	case "val":
		if p, ok := recvType.(*ztype.Ptr); ok {
			return g.builder.Load(llvmType(p.Inner), recvVal), p.Inner, nil
		}
	case "addr":
		if ztype.IsPtrType(recvType) {
			return g.builder.Call("zen_ptr_addr", "i64", []llvmir.Value{recvVal}), ztype.TUsize, nil
		}
	case "raise":
		return g.genRaise(recvVal, recvType)
	}
	return llvmir.Value{}, nil, unsupported(fmt.Sprintf("codegen: no lowering for built-in method %q on %s", mc.Method, recvType))
}

// genRaise lowers `expr.raise()` (§4.6's early-return-on-Err sugar): it
// tests the Result's discriminant and, on Err, returns the current
// function with that Err value re-wrapped, otherwise continues with
// the unwrapped Ok payload.
func (g *Generator) genRaise(recvVal llvmir.Value, recvType ztype.Type) (llvmir.Value, ztype.Type, error) {
	okType := ztype.ResultOkType(recvType)

	aggType := enumAggregateType
	slot := g.builder.Alloca(aggType)
	g.builder.Store(llvmir.Value{Text: recvVal.Text, Type: aggType}, slot)
	tagPtr := g.builder.GEPField(aggType, slot, 0)
	tag := g.builder.Load("i64", tagPtr)
	isErr := g.builder.ICmp("eq", "i64", tag, llvmir.ConstInt("i64", 1))

	errBlock := g.builder.NewBlock("raise.err")
	okBlock := g.builder.NewBlock("raise.ok")
	g.builder.CondBr(isErr, errBlock, okBlock)

	g.builder.SetBlock(errBlock)
	g.runDefers()
	g.builder.Ret(llvmir.Value{Text: recvVal.Text, Type: aggType})

	g.builder.SetBlock(okBlock)
	payloadPtrField := g.builder.GEPField(aggType, slot, 1)
	payloadPtr := g.builder.Load("ptr", payloadPtrField)
	okVal, _, err := g.loadPayload(payloadPtr, okType)
	if err != nil {
		return llvmir.Value{}, nil, err
	}
	return okVal, okType, nil
}

func (g *Generator) genMemberAccess(m *zast.MemberAccess) (llvmir.Value, ztype.Type, error) {
	recvVal, recvType, err := g.genExpr(m.Receiver)
	if err != nil {
		return llvmir.Value{}, nil, err
	}
	ptrVal := recvVal
	if p, ok := recvType.(*ztype.Ptr); ok {
		recvType = p.Inner
	}
	st, ok := recvType.(*ztype.Struct)
	if !ok {
		return llvmir.Value{}, nil, internalErrf("codegen: member access on non-struct type %s", recvType)
	}
	full := st
	if registered, ok := g.structs[st.Name]; ok {
		full = registered
	}
	for i, f := range full.Fields {
		if f.Name == m.Field {
			fieldPtr := g.builder.GEPField("ptr", ptrVal, i)
			return g.builder.Load(llvmType(f.Type), fieldPtr), f.Type, nil
		}
	}
	return llvmir.Value{}, nil, internalErrf("codegen: struct %s has no field %q", st.Name, m.Field)
}

func (g *Generator) genBlock(b *zast.Block) (llvmir.Value, ztype.Type, error) {
	for _, s := range b.Stmts {
		if err := g.genStmt(s); err != nil {
			return llvmir.Value{}, nil, err
		}
	}
	if b.Trailing == nil {
		return llvmir.Value{}, ztype.TVoid, nil
	}
	return g.genExpr(b.Trailing)
}

func (g *Generator) genIf(i *zast.If) (llvmir.Value, ztype.Type, error) {
	condVal, _, err := g.genExpr(i.Cond)
	if err != nil {
		return llvmir.Value{}, nil, err
	}

	thenBlock := g.builder.NewBlock("if.then")
	if i.Else == nil {
		afterBlock := g.builder.NewBlock("if.after")
		g.builder.CondBr(condVal, thenBlock, afterBlock)
		g.builder.SetBlock(thenBlock)
		if _, _, err := g.genExpr(i.Then); err != nil {
			return llvmir.Value{}, nil, err
		}
		if !g.builder.Current().Terminated() {
			g.builder.Br(afterBlock)
		}
		g.builder.SetBlock(afterBlock)
		return llvmir.Value{}, ztype.TVoid, nil
	}

	elseBlock := g.builder.NewBlock("if.else")
	afterBlock := g.builder.NewBlock("if.after")
	g.builder.CondBr(condVal, thenBlock, elseBlock)

	g.builder.SetBlock(thenBlock)
	thenVal, thenType, err := g.genExpr(i.Then)
	if err != nil {
		return llvmir.Value{}, nil, err
	}
	thenEnd := g.builder.Current()
	if !thenEnd.Terminated() {
		g.builder.Br(afterBlock)
	}

	g.builder.SetBlock(elseBlock)
	elseVal, _, err := g.genExpr(i.Else)
	if err != nil {
		return llvmir.Value{}, nil, err
	}
	elseEnd := g.builder.Current()
	if !elseEnd.Terminated() {
		g.builder.Br(afterBlock)
	}

	g.builder.SetBlock(afterBlock)
	var incoming []llvmir.PhiIncoming
	if !thenEnd.Terminated() {
		incoming = append(incoming, llvmir.PhiIncoming{Value: thenVal, Block: thenEnd})
	}
	if !elseEnd.Terminated() {
		incoming = append(incoming, llvmir.PhiIncoming{Value: elseVal, Block: elseEnd})
	}
	if len(incoming) == 0 {
		return llvmir.Value{}, ztype.TVoid, nil
	}
	if len(incoming) == 1 {
		return incoming[0].Value, thenType, nil
	}
	return g.builder.Phi(llvmType(thenType), incoming), thenType, nil
}

// genEnumLiteral lowers `.Variant(payload?)` via resolveEnumLiteral:
// Some/None map to Option (None as Option<i32>), any other name is
// looked up in the enum registry, and a name found in neither becomes
// Result<payload, i32> for Ok or Result<i32, payload> otherwise. The
// generic context is not consulted.
func (g *Generator) genEnumLiteral(e *zast.EnumLiteral) (llvmir.Value, ztype.Type, error) {
	var payloadVal llvmir.Value
	var payloadType ztype.Type
	havePayload := e.Payload != nil
	if havePayload {
		v, t, err := g.genExpr(e.Payload)
		if err != nil {
			return llvmir.Value{}, nil, err
		}
		payloadVal, payloadType = v, t
	}

	enumType, tag := g.resolveEnumLiteral(e.Variant, payloadType)

	aggType := enumAggregateType
	slot := g.builder.Alloca(aggType)
	tagPtr := g.builder.GEPField(aggType, slot, 0)
	g.builder.Store(llvmir.ConstInt("i64", tag), tagPtr)

	payloadField := g.builder.GEPField(aggType, slot, 1)
	if !havePayload {
		g.builder.Store(llvmir.ConstNull(), payloadField)
	} else {
		boxed := g.boxPayload(payloadVal, payloadType)
		g.builder.Store(boxed, payloadField)
	}

	return g.builder.Load(aggType, slot), enumType, nil
}

// boxPayload returns a ptr value suitable for the enum aggregate's
// payload field: pointer-shaped values are stored as-is, primitives and
// other value types are spilled to a fresh stack slot first.
func (g *Generator) boxPayload(val llvmir.Value, typ ztype.Type) llvmir.Value {
	if llvmType(typ) == "ptr" {
		return llvmir.Value{Text: val.Text, Type: "ptr"}
	}
	slot := g.builder.Alloca(llvmType(typ))
	g.builder.Store(val, slot)
	return slot
}

func (g *Generator) resolveEnumLiteral(variant string, payloadType ztype.Type) (ztype.Type, int64) {
	switch variant {
	case "Some":
		if payloadType == nil {
			payloadType = ztype.TI32
		}
		return &ztype.Generic{Name: "Option", TypeArgs: []ztype.Type{payloadType}}, 0
	case "None":
		return &ztype.Generic{Name: "Option", TypeArgs: []ztype.Type{ztype.TI32}}, 1
	}
	for _, en := range g.enums {
		if _, ok := en.VariantByName(variant); ok {
			tag, _ := en.Discriminant(variant)
			return en, tag
		}
	}
	if variant == "Ok" {
		if payloadType == nil {
			payloadType = ztype.TI32
		}
		return &ztype.Generic{Name: "Result", TypeArgs: []ztype.Type{payloadType, ztype.TI32}}, 0
	}
	return &ztype.Generic{Name: "Result", TypeArgs: []ztype.Type{ztype.TI32, payloadType}}, 1
}

func (g *Generator) genStructLiteral(sl *zast.StructLiteral) (llvmir.Value, ztype.Type, error) {
	st, ok := g.structs[sl.Name]
	if !ok {
		return llvmir.Value{}, nil, internalErrf("codegen: undeclared struct %q", sl.Name)
	}
	slot := g.builder.Alloca("ptr") // struct values are always accessed through a pointer (§4.9)
	basePtr := g.builder.Call("zen_alloc_struct", "ptr", []llvmir.Value{llvmir.ConstInt("i64", int64(len(st.Fields)*8))})
	g.builder.Store(basePtr, slot)

	for _, fi := range sl.Fields {
		idx := fieldIndex(st, fi.Name)
		if idx < 0 {
			return llvmir.Value{}, nil, internalErrf("codegen: struct %s has no field %q", sl.Name, fi.Name)
		}
		val, _, err := g.genExpr(fi.Value)
		if err != nil {
			return llvmir.Value{}, nil, err
		}
		fieldPtr := g.builder.GEPField("ptr", basePtr, idx)
		g.builder.Store(val, fieldPtr)
	}
	return basePtr, st, nil
}

func fieldIndex(st *ztype.Struct, name string) int {
	for i, f := range st.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}
