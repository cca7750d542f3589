package codegen

import (
	"fmt"
	"strings"

	"github.com/zenlang/zen/internal/dtree"
	"github.com/zenlang/zen/internal/llvmir"
	"github.com/zenlang/zen/internal/zast"
	"github.com/zenlang/zen/internal/ztype"
)

// planBinding is one name a lowered dtree.Plan contributes, with the
// value already computed against the scrutinee (or a loaded payload).
type planBinding struct {
	name string
	val  llvmir.Value
	typ  ztype.Type
}

// genMatch lowers `scrutinee ? arms...` (§4.8): each arm's pattern is
// lowered to a dtree.Plan against a fresh generic-context scope, tested
// in program order (first arm whose Plan is true wins, matching
// dtree.Compile's documented fallback semantics), and its body's result
// merged through a phi at the join block.
func (g *Generator) genMatch(m *zast.Match) (llvmir.Value, ztype.Type, error) {
	scrutVal, scrutType, err := g.genExpr(m.Scrutinee)
	if err != nil {
		return llvmir.Value{}, nil, err
	}

	resultType, err := g.checker.InferType(m)
	if err != nil {
		return llvmir.Value{}, nil, err
	}
	resultLLVMType := llvmType(resultType)

	mergeBlock := g.builder.NewBlock("match.end")
	var incoming []llvmir.PhiIncoming

	for i, arm := range m.Cases {
		g.genericCtx.Push()
		plan, err := dtree.Lower(arm.Pattern, scrutType, g.enums, g.genericCtx)
		if err != nil {
			g.genericCtx.Pop()
			return llvmir.Value{}, nil, err
		}
		matched, binds, err := g.genPlanValue(plan, scrutVal, scrutType)
		g.genericCtx.Pop()
		if err != nil {
			return llvmir.Value{}, nil, err
		}

		bodyBlock := g.builder.NewBlock(fmt.Sprintf("match.arm%d", i))
		isLast := i == len(m.Cases)-1
		var nextBlock *llvmir.Block
		if isLast {
			nextBlock = g.builder.NewBlock("match.nomatch")
		} else {
			nextBlock = g.builder.NewBlock(fmt.Sprintf("match.test%d", i+1))
		}
		g.builder.CondBr(matched, bodyBlock, nextBlock)

		g.builder.SetBlock(bodyBlock)
		saved := g.commitBindings(binds)
		armVal, _, err := g.genExpr(arm.Body)
		g.restoreBindings(saved)
		if err != nil {
			return llvmir.Value{}, nil, err
		}
		armEnd := g.builder.Current()
		if !armEnd.Terminated() {
			incoming = append(incoming, llvmir.PhiIncoming{Value: armVal, Block: armEnd})
			g.builder.Br(mergeBlock)
		}

		g.builder.SetBlock(nextBlock)
		if isLast {
			// No earlier pass checks exhaustiveness, so a value that
			// matches no arm reaches this block: it calls the runtime
			// trap and returns a placeholder so the block is terminated.
			g.builder.Call("zen_panic_nonexhaustive_match", "void", nil)
			if isVoid(resultType) {
				g.builder.RetVoid()
			} else {
				g.builder.Ret(zeroValueOf(resultLLVMType))
			}
		}
	}

	g.builder.SetBlock(mergeBlock)
	if len(incoming) == 0 {
		return llvmir.Value{}, resultType, nil
	}
	if len(incoming) == 1 {
		return incoming[0].Value, resultType, nil
	}
	return g.builder.Phi(resultLLVMType, incoming), resultType, nil
}

// genPlanValue walks plan, emitting the instructions that compute its
// single i1 "matched" verdict, and returns the bindings it contributes
// (collected bottom-up, per §4.8). Values are computed unconditionally
// along the way; only the top-level match arm branches on the result.
func (g *Generator) genPlanValue(plan *dtree.Plan, val llvmir.Value, typ ztype.Type) (llvmir.Value, []planBinding, error) {
	switch plan.Kind {
	case dtree.StepAlwaysTrue:
		return llvmir.ConstBool(true), nil, nil

	case dtree.StepBindValue:
		return llvmir.ConstBool(true), []planBinding{{name: plan.BindName, val: val, typ: typ}}, nil

	case dtree.StepLiteralEq:
		litVal, litType, err := g.genLiteral(plan.Literal)
		if err != nil {
			return llvmir.Value{}, nil, err
		}
		if ztype.IsFloat(typ) || ztype.IsFloat(litType) {
			return g.builder.FCmp("oeq", llvmType(typ), val, litVal), nil, nil
		}
		return g.builder.ICmp("eq", llvmType(typ), val, litVal), nil, nil

	case dtree.StepRange:
		lo, _, err := g.genExpr(plan.RangeLo)
		if err != nil {
			return llvmir.Value{}, nil, err
		}
		hi, _, err := g.genExpr(plan.RangeHi)
		if err != nil {
			return llvmir.Value{}, nil, err
		}
		lt := llvmType(typ)
		geLo := g.builder.ICmp("sge", lt, val, lo)
		hiCond := "sle"
		if !plan.Inclusive {
			hiCond = "slt"
		}
		leHi := g.builder.ICmp(hiCond, lt, val, hi)
		return g.builder.BinOp("and", "i1", geLo, leHi), nil, nil

	case dtree.StepOr:
		var acc llvmir.Value
		for i, alt := range plan.Alternatives {
			altMatched, _, err := g.genPlanValue(alt, val, typ)
			if err != nil {
				return llvmir.Value{}, nil, err
			}
			if i == 0 {
				acc = altMatched
			} else {
				acc = g.builder.BinOp("or", "i1", acc, altMatched)
			}
		}
		return acc, nil, nil

	case dtree.StepEnumTag:
		return g.genEnumTagPlan(plan, val, typ)

	case dtree.StepGuard:
		return g.genGuardPlan(plan, val, typ)

	case dtree.StepType:
		var binds []planBinding
		if plan.Binding != "" {
			binds = append(binds, planBinding{name: plan.Binding, val: val, typ: typ})
		}
		return llvmir.ConstBool(true), binds, nil

	default:
		return llvmir.Value{}, nil, unsupported(fmt.Sprintf("codegen: unhandled pattern-plan step %v", plan.Kind))
	}
}

func (g *Generator) genGuardPlan(plan *dtree.Plan, val llvmir.Value, typ ztype.Type) (llvmir.Value, []planBinding, error) {
	inner, binds, err := g.genPlanValue(plan.Inner, val, typ)
	if err != nil {
		return llvmir.Value{}, nil, err
	}
	if plan.BindName != "" {
		binds = append(binds, planBinding{name: plan.BindName, val: val, typ: typ})
	}
	if plan.Cond == nil {
		return inner, binds, nil
	}
	saved := g.commitBindings(binds)
	condVal, _, err := g.genExpr(plan.Cond)
	g.restoreBindings(saved)
	if err != nil {
		return llvmir.Value{}, nil, err
	}
	return g.builder.BinOp("and", "i1", inner, condVal), binds, nil
}

// genEnumTagPlan spills the scrutinee aggregate to the stack so its
// discriminant and payload fields are addressable, compares the
// discriminant, and (when the arm also destructures a payload) loads
// it per the boxing convention and recurses into the payload's plan.
func (g *Generator) genEnumTagPlan(plan *dtree.Plan, val llvmir.Value, typ ztype.Type) (llvmir.Value, []planBinding, error) {
	aggType := enumAggregateType
	slot := g.builder.Alloca(aggType)
	g.builder.Store(llvmir.Value{Text: val.Text, Type: aggType}, slot)

	tagPtr := g.builder.GEPField(aggType, slot, 0)
	tag := g.builder.Load("i64", tagPtr)
	matched := g.builder.ICmp("eq", "i64", tag, llvmir.ConstInt("i64", plan.Tag))

	if plan.Payload == nil {
		return matched, nil, nil
	}

	payloadPtrField := g.builder.GEPField(aggType, slot, 1)
	payloadPtr := g.builder.Load("ptr", payloadPtrField)

	payloadVal, notNull, err := g.loadPayload(payloadPtr, plan.PayloadType)
	if err != nil {
		return llvmir.Value{}, nil, err
	}

	inner, binds, err := g.genPlanValue(plan.Payload, payloadVal, plan.PayloadType)
	if err != nil {
		return llvmir.Value{}, nil, err
	}
	allMatched := g.builder.BinOp("and", "i1", matched, notNull)
	allMatched = g.builder.BinOp("and", "i1", allMatched, inner)
	return allMatched, binds, nil
}

// loadPayload reinterprets payloadPtr (the enum aggregate's payload
// field) as a value of payloadType, guarding against §4.8 step 2's
// null case first (P3: a None-constructed enum stores a null payload
// pointer; loading through it unconditionally would segfault).
// Splits into is_null/not_null blocks, loads only on the not_null
// path, and merges the loaded value — or an inert zero value on the
// null path — through a phi, alongside a second phi carrying whether
// the pointer was actually non-null. The caller ANDs that second phi
// into its overall "matched" verdict, so a None scrutinee tested
// against a payload-carrying pattern never matches, regardless of
// what genPlanValue's recursive test over the merged (possibly inert)
// value computes.
func (g *Generator) loadPayload(payloadPtr llvmir.Value, payloadType ztype.Type) (llvmir.Value, llvmir.Value, error) {
	if payloadType == nil {
		return llvmir.Value{}, llvmir.ConstBool(true), nil
	}
	lt := llvmType(payloadType)

	isNull := g.builder.ICmp("eq", "ptr", payloadPtr, llvmir.ConstNull())

	notNullBlock := g.builder.NewBlock("payload.notnull")
	nullBlock := g.builder.NewBlock("payload.null")
	mergeBlock := g.builder.NewBlock("payload.merge")
	g.builder.CondBr(isNull, nullBlock, notNullBlock)

	g.builder.SetBlock(notNullBlock)
	loaded := g.builder.Load(lt, payloadPtr)
	notNullEnd := g.builder.Current()
	g.builder.Br(mergeBlock)

	g.builder.SetBlock(nullBlock)
	zero := zeroValueOf(lt)
	nullEnd := g.builder.Current()
	g.builder.Br(mergeBlock)

	g.builder.SetBlock(mergeBlock)
	merged := g.builder.Phi(lt, []llvmir.PhiIncoming{
		{Value: loaded, Block: notNullEnd},
		{Value: zero, Block: nullEnd},
	})
	notNull := g.builder.Phi("i1", []llvmir.PhiIncoming{
		{Value: llvmir.ConstBool(true), Block: notNullEnd},
		{Value: llvmir.ConstBool(false), Block: nullEnd},
	})
	return merged, notNull, nil
}

type savedSlot struct {
	name    string
	prev    *varSlot
	hadPrev bool
}

// commitBindings materializes each planBinding as a real stack slot
// registered in g.vars and in the checker's scope (so a guard
// expression or the arm body can resolve the name through genExpr's
// Identifier case and g.checker.InferType alike), shadowing any
// existing binding of the same name.
func (g *Generator) commitBindings(binds []planBinding) []savedSlot {
	saved := make([]savedSlot, 0, len(binds))
	for _, b := range binds {
		prev, had := g.vars[b.name]
		saved = append(saved, savedSlot{name: b.name, prev: prev, hadPrev: had})

		lt := llvmType(b.typ)
		slot := g.builder.Alloca(lt)
		g.builder.Store(llvmir.Value{Text: b.val.Text, Type: lt}, slot)
		g.vars[b.name] = &varSlot{ptr: slot, typ: b.typ, mutable: false}
		g.checker.DeclareLocal(b.name, b.typ, false)
	}
	return saved
}

// restoreBindings undoes commitBindings once a guard condition or an
// arm body has been emitted, so a later arm's test doesn't see a
// previous arm's bindings.
func (g *Generator) restoreBindings(saved []savedSlot) {
	for _, s := range saved {
		if s.hadPrev {
			g.vars[s.name] = s.prev
		} else {
			delete(g.vars, s.name)
		}
	}
}

// zeroValueOf returns a placeholder constant of LLVM type llt, used by
// the non-exhaustive-match trap block and by loadPayload's null path.
func zeroValueOf(llt string) llvmir.Value {
	switch llt {
	case "i1":
		return llvmir.ConstBool(false)
	case "ptr":
		return llvmir.ConstNull()
	case "float", "double":
		return llvmir.ConstFloat(llt, 0)
	default:
		if strings.HasPrefix(llt, "{") {
			return llvmir.Value{Text: "zeroinitializer", Type: llt}
		}
		return llvmir.ConstInt(llt, 0)
	}
}
