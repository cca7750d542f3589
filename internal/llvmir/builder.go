package llvmir

import "fmt"

// Builder emits instructions into one Function's "current" block,
// advancing as the caller switches blocks (loops/branches/match arms).
// It owns no state beyond which function/block is current — matching
// the teacher's single-owner-object idiom; codegen owns one Builder
// per function being lowered, never shared across functions.
type Builder struct {
	Fn      *Function
	current *Block
}

// NewBuilder returns a Builder positioned at fn's entry block (created
// fresh, labeled "entry").
func NewBuilder(fn *Function) *Builder {
	entry := &Block{Label: "entry"}
	fn.Blocks = append(fn.Blocks, entry)
	return &Builder{Fn: fn, current: entry}
}

// SetBlock switches emission to blk.
func (b *Builder) SetBlock(blk *Block) { b.current = blk }

// Current returns the block currently receiving instructions.
func (b *Builder) Current() *Block { return b.current }

// NewBlock creates and returns a new block without switching to it.
func (b *Builder) NewBlock(hint string) *Block { return b.Fn.NewBlock(hint) }

func (b *Builder) reg(typ string) Value {
	return Value{Text: b.Fn.newReg(), Type: typ}
}

// Alloca reserves a stack slot of typ, returning a ptr value.
func (b *Builder) Alloca(typ string) Value {
	v := b.reg("ptr")
	b.current.emit(fmt.Sprintf("%s = alloca %s", v.Text, typ))
	return v
}

// Store writes val into the slot at ptr.
func (b *Builder) Store(val Value, ptr Value) {
	b.current.emit(fmt.Sprintf("store %s %s, ptr %s", val.Type, val.Text, ptr.Text))
}

// Load reads typ from the slot at ptr.
func (b *Builder) Load(typ string, ptr Value) Value {
	v := b.reg(typ)
	b.current.emit(fmt.Sprintf("%s = load %s, ptr %s", v.Text, typ, ptr.Text))
	return v
}

// GEPField computes the address of field index idx of a struct value
// typed structType, for the two-field enum aggregate {i64, ptr} and for
// ordinary struct lowering alike.
func (b *Builder) GEPField(structType string, ptr Value, idx int) Value {
	v := b.reg("ptr")
	b.current.emit(fmt.Sprintf("%s = getelementptr inbounds %s, ptr %s, i32 0, i32 %d", v.Text, structType, ptr.Text, idx))
	return v
}

// ICmp emits an integer comparison (`cond` is one of eq/ne/slt/sle/
// sgt/sge/ult/ule/ugt/uge).
func (b *Builder) ICmp(cond string, typ string, lhs, rhs Value) Value {
	v := b.reg("i1")
	b.current.emit(fmt.Sprintf("%s = icmp %s %s %s, %s", v.Text, cond, typ, lhs.Text, rhs.Text))
	return v
}

// FCmp emits a floating-point comparison (`cond` is one of oeq/one/
// olt/ole/ogt/oge).
func (b *Builder) FCmp(cond string, typ string, lhs, rhs Value) Value {
	v := b.reg("i1")
	b.current.emit(fmt.Sprintf("%s = fcmp %s %s %s, %s", v.Text, cond, typ, lhs.Text, rhs.Text))
	return v
}

// BinOp emits a binary arithmetic/bitwise instruction (add/sub/mul/
// sdiv/udiv/srem/urem/and/or/xor/shl/lshr/ashr/fadd/fsub/fmul/fdiv).
func (b *Builder) BinOp(op string, typ string, lhs, rhs Value) Value {
	v := b.reg(typ)
	b.current.emit(fmt.Sprintf("%s = %s %s %s, %s", v.Text, op, typ, lhs.Text, rhs.Text))
	return v
}

// Br emits an unconditional branch and terminates the current block.
func (b *Builder) Br(target *Block) {
	b.current.emit(fmt.Sprintf("br label %%%s", target.Label))
	b.current.terminated = true
}

// CondBr emits a conditional branch and terminates the current block.
func (b *Builder) CondBr(cond Value, then, els *Block) {
	b.current.emit(fmt.Sprintf("br i1 %s, label %%%s, label %%%s", cond.Text, then.Label, els.Label))
	b.current.terminated = true
}

// PhiIncoming is one (value, predecessor block) pair for a Phi node.
type PhiIncoming struct {
	Value Value
	Block *Block
}

// Phi emits a phi instruction merging incoming values of type typ.
func (b *Builder) Phi(typ string, incoming []PhiIncoming) Value {
	v := b.reg(typ)
	pairs := make([]string, len(incoming))
	for i, in := range incoming {
		pairs[i] = fmt.Sprintf("[ %s, %%%s ]", in.Value.Text, in.Block.Label)
	}
	instr := fmt.Sprintf("%s = phi %s ", v.Text, typ)
	for i, p := range pairs {
		if i > 0 {
			instr += ", "
		}
		instr += p
	}
	b.current.emit(instr)
	return v
}

// Call emits a call to a function named name with args, returning a
// value of retType ("void" produces a Value with empty Text).
func (b *Builder) Call(name string, retType string, args []Value) Value {
	argParts := make([]string, len(args))
	for i, a := range args {
		argParts[i] = fmt.Sprintf("%s %s", a.Type, a.Text)
	}
	joined := ""
	for i, p := range argParts {
		if i > 0 {
			joined += ", "
		}
		joined += p
	}
	if retType == "void" {
		b.current.emit(fmt.Sprintf("call void @%s(%s)", name, joined))
		return Value{Type: "void"}
	}
	v := b.reg(retType)
	b.current.emit(fmt.Sprintf("%s = call %s @%s(%s)", v.Text, retType, name, joined))
	return v
}

// CallValue emits a call through an already-resolved callee value (a
// "@name" global or a "%reg" function pointer), for call sites codegen
// reaches via a value rather than a bare symbol name.
func (b *Builder) CallValue(fn Value, retType string, args []Value) Value {
	argParts := make([]string, len(args))
	for i, a := range args {
		argParts[i] = fmt.Sprintf("%s %s", a.Type, a.Text)
	}
	joined := ""
	for i, p := range argParts {
		if i > 0 {
			joined += ", "
		}
		joined += p
	}
	if retType == "void" {
		b.current.emit(fmt.Sprintf("call void %s(%s)", fn.Text, joined))
		return Value{Type: "void"}
	}
	v := b.reg(retType)
	b.current.emit(fmt.Sprintf("%s = call %s %s(%s)", v.Text, retType, fn.Text, joined))
	return v
}

// Ret terminates the current block with a return of val.
func (b *Builder) Ret(val Value) {
	b.current.emit(fmt.Sprintf("ret %s %s", val.Type, val.Text))
	b.current.terminated = true
}

// RetVoid terminates the current block with a void return.
func (b *Builder) RetVoid() {
	b.current.emit("ret void")
	b.current.terminated = true
}

// ConstInt returns an integer constant value of LLVM type typ.
func ConstInt(typ string, v int64) Value { return Value{Text: fmt.Sprintf("%d", v), Type: typ} }

// ConstFloat returns a float constant value of LLVM type typ.
func ConstFloat(typ string, v float64) Value { return Value{Text: fmt.Sprintf("%g", v), Type: typ} }

// ConstNull returns the null pointer constant.
func ConstNull() Value { return Value{Text: "null", Type: "ptr"} }

// ConstBool returns an i1 constant.
func ConstBool(v bool) Value {
	if v {
		return Value{Text: "true", Type: "i1"}
	}
	return Value{Text: "false", Type: "i1"}
}
