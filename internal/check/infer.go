package check

import (
	"fmt"

	"github.com/zenlang/zen/internal/zast"
	"github.com/zenlang/zen/internal/zerrors"
	"github.com/zenlang/zen/internal/ztype"
)

// inferExpr implements the kind-by-kind expression type inference of
// §4.5.
func (c *Checker) inferExpr(e zast.Expr) (ztype.Type, error) {
	switch ex := e.(type) {
	case *zast.Literal:
		return c.inferLiteral(ex), nil

	case *zast.Identifier:
		if v, ok := c.scopes.lookup(ex.Name); ok {
			return v.Type, nil
		}
		if fn, ok := c.functions[ex.Name]; ok {
			return fn.AsFunctionPointer(), nil
		}
		if st, ok := c.structs[ex.Name]; ok {
			return &ztype.Struct{Name: st.Name}, nil
		}
		if en, ok := c.enums[ex.Name]; ok {
			return &ztype.Generic{Name: en.Name}, nil
		}
		if t, ok := c.consts[ex.Name]; ok {
			return t, nil
		}
		if _, ok := c.imports[ex.Name]; ok {
			return &ztype.StdModule{Path: c.imports[ex.Name]}, nil
		}
		return nil, zerrors.Wrap(zerrors.New(zerrors.UndeclaredVariable,
			fmt.Sprintf("undeclared variable %q", ex.Name), &zast.Span{Start: ex.Pos, End: ex.Pos}))

	case *zast.BinaryOp:
		return c.inferBinary(ex)

	case *zast.UnaryOp:
		return c.inferExpr(ex.Expr)

	case *zast.Call:
		return c.inferCall(ex)

	case *zast.MethodCall:
		return c.inferMethodCall(ex)

	case *zast.MemberAccess:
		return c.inferMemberAccess(ex)

	case *zast.Block:
		return c.inferBlock(ex)

	case *zast.If:
		return c.inferIf(ex)

	case *zast.Match:
		return c.inferMatch(ex)

	case *zast.EnumLiteral:
		return c.inferEnumLiteral(ex, nil)

	case *zast.StructLiteral:
		st, ok := c.structs[ex.Name]
		if !ok {
			return nil, zerrors.Wrap(zerrors.New(zerrors.UndeclaredVariable,
				fmt.Sprintf("undeclared struct %q", ex.Name), &zast.Span{Start: ex.Pos, End: ex.Pos}))
		}
		for _, f := range ex.Fields {
			if _, err := c.inferExpr(f.Value); err != nil {
				return nil, err
			}
		}
		return st, nil

	case *zast.RangeExpr:
		startT, err := c.inferExpr(ex.Start)
		if err != nil {
			return nil, err
		}
		endT, err := c.inferExpr(ex.End)
		if err != nil {
			return nil, err
		}
		return &ztype.Range{Start: startT, End: endT, Inclusive: ex.Inclusive}, nil

	case *zast.ComptimeExpr:
		return c.inferExpr(ex.Inner)

	case *zast.SelfExpr:
		if v, ok := c.scopes.lookup("self"); ok {
			return v.Type, nil
		}
		return nil, zerrors.Wrap(zerrors.New(zerrors.UndeclaredVariable, "Self used outside a method", nil))

	default:
		return nil, zerrors.Wrap(zerrors.New(zerrors.InternalError,
			fmt.Sprintf("check: unhandled expression kind %T", e), nil))
	}
}

func (c *Checker) inferLiteral(l *zast.Literal) ztype.Type {
	switch l.Kind {
	case zast.IntLit:
		return ztype.TI32
	case zast.FloatLit:
		return ztype.TF64
	case zast.StringLit:
		return &ztype.StringType{Kind: ztype.StaticString}
	case zast.BoolLit:
		return ztype.TBool
	default:
		return ztype.TVoid
	}
}

func (c *Checker) inferBinary(b *zast.BinaryOp) (ztype.Type, error) {
	lt, err := c.inferExpr(b.Left)
	if err != nil {
		return nil, err
	}
	rt, err := c.inferExpr(b.Right)
	if err != nil {
		return nil, err
	}
	switch b.Op {
	case "&&", "||":
		if !isBool(lt) || !isBool(rt) {
			return nil, typeMismatch(ztype.TBool, lt, b.Pos)
		}
		return ztype.TBool, nil
	case "==", "!=", "<", "<=", ">", ">=":
		if !ztype.TypesComparable(lt, rt) {
			return nil, zerrors.Wrap(zerrors.New(zerrors.TypeMismatch,
				fmt.Sprintf("%s and %s are not comparable", lt, rt), &zast.Span{Start: b.Pos, End: b.Pos}))
		}
		return ztype.TBool, nil
	case "++":
		if !ztype.IsStringType(lt) || !ztype.IsStringType(rt) {
			return nil, zerrors.Wrap(zerrors.New(zerrors.TypeMismatch,
				"++ requires string operands", &zast.Span{Start: b.Pos, End: b.Pos}))
		}
		return &ztype.StringType{Kind: ztype.DynamicString}, nil
	case "&", "|", "^", "<<", ">>":
		if !ztype.IsInteger(lt) || !ztype.IsInteger(rt) {
			return nil, zerrors.Wrap(zerrors.New(zerrors.TypeMismatch,
				"bitwise operators require integer operands", &zast.Span{Start: b.Pos, End: b.Pos}))
		}
		return ztype.PromoteNumeric(lt, rt), nil
	default: // + - * / %
		if !ztype.IsNumeric(lt) || !ztype.IsNumeric(rt) {
			return nil, zerrors.Wrap(zerrors.New(zerrors.TypeMismatch,
				fmt.Sprintf("%s requires numeric operands, got %s and %s", b.Op, lt, rt),
				&zast.Span{Start: b.Pos, End: b.Pos}))
		}
		return ztype.PromoteNumeric(lt, rt), nil
	}
}

func isBool(t ztype.Type) bool {
	p, ok := t.(*ztype.Primitive)
	return ok && p.Kind == ztype.Bool
}

func (c *Checker) inferCall(call *zast.Call) (ztype.Type, error) {
	if id, ok := call.Func.(*zast.Identifier); ok {
		if fn, ok := c.functions[id.Name]; ok {
			for _, a := range call.Args {
				if _, err := c.inferExpr(a); err != nil {
					return nil, err
				}
			}
			if len(call.ExplicitTyArgs) > 0 {
				return &ztype.Generic{Name: id.Name, TypeArgs: call.ExplicitTyArgs}, nil
			}
			return fn.Return, nil
		}
	}
	ft, err := c.inferExpr(call.Func)
	if err != nil {
		return nil, err
	}
	for _, a := range call.Args {
		if _, err := c.inferExpr(a); err != nil {
			return nil, err
		}
	}
	switch f := ft.(type) {
	case *ztype.FunctionPointer:
		return f.Return, nil
	case *ztype.Function:
		return f.Return, nil
	default:
		return nil, zerrors.Wrap(zerrors.New(zerrors.UndeclaredFunction,
			fmt.Sprintf("%s is not callable", ft), &zast.Span{Start: call.Pos, End: call.Pos}))
	}
}

// builtinMethodReturn returns the fixed return types of built-in methods
// (§4.5: "built-in methods ... have fixed return types").
func (c *Checker) builtinMethodReturn(recv ztype.Type, method string) (ztype.Type, bool) {
	switch method {
	case "len":
		if ztype.IsStringType(recv) {
			return ztype.TU64, true
		}
	case "get":
		if v, ok := recv.(*ztype.Vec); ok {
			return &ztype.Generic{Name: "Option", TypeArgs: []ztype.Type{v.Elem}}, true
		}
	case "val":
		if p, ok := recv.(*ztype.Ptr); ok {
			return p.Inner, true
		}
	case "addr":
		if ztype.IsPtrType(recv) {
			return ztype.TUsize, true
		}
	case "ref":
		return &ztype.Ptr{Inner: recv}, true
	case "mut_ref":
		return &ztype.Ptr{Mut: true, Inner: recv}, true
	case "raise":
		if t := okOf(recv); t != nil {
			return t, true
		}
	case "loop":
		return ztype.TVoid, true
	}
	return nil, false
}

func okOf(t ztype.Type) ztype.Type {
	if g, ok := t.(*ztype.Generic); ok && g.Name == "Result" && len(g.TypeArgs) == 2 {
		return g.TypeArgs[0]
	}
	return nil
}

func (c *Checker) inferMethodCall(mc *zast.MethodCall) (ztype.Type, error) {
	recvType, err := c.inferExpr(mc.Receiver)
	if err != nil {
		return nil, err
	}
	for _, a := range mc.Args {
		if _, err := c.inferExpr(a); err != nil {
			return nil, err
		}
	}

	// UFC: a free function whose first parameter type matches the
	// receiver's type.
	if fn, ok := c.functions[mc.Method]; ok && len(fn.Args) > 0 && c.typesCompatible(fn.Args[0], recvType) {
		return fn.Return, nil
	}
	if m, ok := c.Behavior.ResolveMethod(recvType, mc.Method); ok {
		return m.Return, nil
	}
	if ret, ok := c.builtinMethodReturn(recvType, mc.Method); ok {
		return ret, nil
	}
	return nil, zerrors.Wrap(zerrors.New(zerrors.UnknownTraitMethod,
		fmt.Sprintf("no method %q resolves for receiver type %s", mc.Method, recvType), &zast.Span{Start: mc.Pos, End: mc.Pos}))
}

func (c *Checker) inferMemberAccess(m *zast.MemberAccess) (ztype.Type, error) {
	recvType, err := c.inferExpr(m.Receiver)
	if err != nil {
		return nil, err
	}
	if p, ok := recvType.(*ztype.Ptr); ok {
		recvType = p.Inner // auto-deref one step
	}
	if st, ok := recvType.(*ztype.Struct); ok {
		full := c.structs[st.Name]
		if full == nil {
			full = st
		}
		for _, f := range full.Fields {
			if f.Name == m.Field {
				return f.Type, nil
			}
		}
		return nil, zerrors.Wrap(zerrors.New(zerrors.TypeMismatch,
			fmt.Sprintf("struct %s has no field %q", st.Name, m.Field), &zast.Span{Start: m.Pos, End: m.Pos}))
	}
	if g, ok := recvType.(*ztype.Generic); ok {
		if en, ok := c.enums[g.Name]; ok {
			if _, ok := en.VariantByName(m.Field); ok {
				return g, nil
			}
		}
	}
	if sm, ok := recvType.(*ztype.StdModule); ok {
		if sm.Path == "std.math" && m.Field == "pi" {
			return ztype.TF64, nil
		}
		return nil, zerrors.Wrap(zerrors.New(zerrors.UndeclaredVariable,
			fmt.Sprintf("unknown member %q of module %s", m.Field, sm.Path), &zast.Span{Start: m.Pos, End: m.Pos}))
	}
	return nil, zerrors.Wrap(zerrors.New(zerrors.TypeMismatch,
		fmt.Sprintf("%s has no member %q", recvType, m.Field), &zast.Span{Start: m.Pos, End: m.Pos}))
}

func (c *Checker) inferBlock(b *zast.Block) (ztype.Type, error) {
	c.scopes.push()
	defer c.scopes.pop()
	for _, s := range b.Stmts {
		if err := c.checkStmt(s); err != nil {
			return nil, err
		}
	}
	if b.Trailing == nil {
		return ztype.TVoid, nil
	}
	return c.inferExpr(b.Trailing)
}

func (c *Checker) inferIf(i *zast.If) (ztype.Type, error) {
	condT, err := c.inferExpr(i.Cond)
	if err != nil {
		return nil, err
	}
	if !isBool(condT) {
		return nil, typeMismatch(ztype.TBool, condT, i.Pos)
	}
	thenT, err := c.inferExpr(i.Then)
	if err != nil {
		return nil, err
	}
	if i.Else == nil {
		return ztype.TVoid, nil
	}
	elseT, err := c.inferExpr(i.Else)
	if err != nil {
		return nil, err
	}
	if !c.typesCompatible(thenT, elseT) {
		return nil, typeMismatch(thenT, elseT, i.Pos)
	}
	return thenT, nil
}

// inferMatch type-checks each arm with an isolated scope in which the
// pattern's bindings are declared using the payload type computed from
// the scrutinee's type; the expression's type is the first arm's type
// (§4.5).
func (c *Checker) inferMatch(m *zast.Match) (ztype.Type, error) {
	scrutType, err := c.inferExpr(m.Scrutinee)
	if err != nil {
		return nil, err
	}
	var result ztype.Type
	for i, arm := range m.Cases {
		c.scopes.push()
		if err := c.declarePatternBindings(arm.Pattern, scrutType); err != nil {
			c.scopes.pop()
			return nil, err
		}
		armT, err := c.inferExpr(arm.Body)
		c.scopes.pop()
		if err != nil {
			return nil, err
		}
		if i == 0 {
			result = armT
		} else if !c.typesCompatible(result, armT) {
			return nil, typeMismatch(result, armT, arm.Pos)
		}
	}
	return result, nil
}

// declarePatternBindings declares the names a pattern binds, given the
// type of the value it matches against (Option: type_args[0] for Some;
// Result: type_args[0] for Ok, type_args[1] for Err, per §4.5).
func (c *Checker) declarePatternBindings(p zast.Pattern, scrutType ztype.Type) error {
	switch pat := p.(type) {
	case *zast.Identifier:
		c.scopes.declare(pat.Name, &VarInfo{Type: scrutType, Mutable: false, Initialized: true})
	case *zast.BindingPattern:
		c.scopes.declare(pat.Name, &VarInfo{Type: scrutType, Mutable: false, Initialized: true})
		return c.declarePatternBindings(pat.Inner, scrutType)
	case *zast.TypePattern:
		if pat.Binding != "" {
			c.scopes.declare(pat.Binding, &VarInfo{Type: scrutType, Mutable: false, Initialized: true})
		}
	case *zast.GuardPattern:
		if err := c.declarePatternBindings(pat.Inner, scrutType); err != nil {
			return err
		}
		condT, err := c.inferExpr(pat.Cond)
		if err != nil {
			return err
		}
		if !isBool(condT) {
			return typeMismatch(ztype.TBool, condT, pat.Pos)
		}
	case *zast.OrPattern:
		for _, alt := range pat.Alternatives {
			if bindsNames(alt) {
				return zerrors.Wrap(zerrors.New(zerrors.UnknownTraitMethod,
					"or-patterns may not bind names", &zast.Span{Start: pat.Pos, End: pat.Pos}))
			}
		}
	case *zast.EnumVariantPattern:
		payloadT := c.payloadTypeFor(pat.Enum, pat.Variant, scrutType)
		if pat.Payload != nil && payloadT != nil {
			return c.declarePatternBindings(pat.Payload, payloadT)
		}
	case *zast.EnumLiteralPattern:
		payloadT := c.payloadTypeFromContext(pat.Variant, scrutType)
		if pat.Payload != nil && payloadT != nil {
			return c.declarePatternBindings(pat.Payload, payloadT)
		}
	case *zast.StructPattern:
		return zerrors.Wrap(zerrors.New(zerrors.StructPatternUnsupported,
			"struct patterns are not yet implemented", &zast.Span{Start: pat.Pos, End: pat.Pos}))
	}
	return nil
}

func bindsNames(p zast.Pattern) bool {
	switch pat := p.(type) {
	case *zast.Identifier:
		return true
	case *zast.BindingPattern:
		return true
	case *zast.TypePattern:
		return pat.Binding != ""
	case *zast.GuardPattern:
		return bindsNames(pat.Inner)
	case *zast.EnumVariantPattern:
		return pat.Payload != nil && bindsNames(pat.Payload)
	case *zast.EnumLiteralPattern:
		return pat.Payload != nil && bindsNames(pat.Payload)
	default:
		return false
	}
}

// payloadTypeFor resolves the payload type for Enum::Variant(pattern)
// against either Option/Result well-known generics or a user enum
// registered by name.
func (c *Checker) payloadTypeFor(enumName, variant string, scrutType ztype.Type) ztype.Type {
	if g, ok := scrutType.(*ztype.Generic); ok {
		switch {
		case g.Name == "Option" && variant == "Some":
			return ztype.OptionSomeType(g)
		case g.Name == "Result" && variant == "Ok":
			return ztype.ResultOkType(g)
		case g.Name == "Result" && variant == "Err":
			return ztype.ResultErrType(g)
		}
	}
	if en, ok := c.enums[enumName]; ok {
		if v, ok := en.VariantByName(variant); ok {
			return v.Payload
		}
	}
	return nil
}

// payloadTypeFromContext resolves EnumLiteralPattern{Variant}, searching
// the well-known Option/Result generics first, then the enum registry
// for the first enum containing a variant of that name (§4.5).
func (c *Checker) payloadTypeFromContext(variant string, scrutType ztype.Type) ztype.Type {
	if g, ok := scrutType.(*ztype.Generic); ok {
		switch {
		case g.Name == "Option" && variant == "Some":
			return ztype.OptionSomeType(g)
		case g.Name == "Result" && variant == "Ok":
			return ztype.ResultOkType(g)
		case g.Name == "Result" && variant == "Err":
			return ztype.ResultErrType(g)
		}
	}
	for _, en := range c.enums {
		if v, ok := en.VariantByName(variant); ok {
			return v.Payload
		}
	}
	return nil
}

// inferEnumLiteral implements §4.5's `.Variant(payload?)` rule: when
// expected is Option or Result, produce the matching generic; otherwise
// search the enum registry for any enum with a variant of that name.
func (c *Checker) inferEnumLiteral(e *zast.EnumLiteral, expected ztype.Type) (ztype.Type, error) {
	var payloadT ztype.Type
	if e.Payload != nil {
		var err error
		payloadT, err = c.inferExpr(e.Payload)
		if err != nil {
			return nil, err
		}
	}
	if g, ok := expected.(*ztype.Generic); ok {
		switch {
		case g.Name == "Option" && (e.Variant == "Some" || e.Variant == "None"):
			return g, nil
		case g.Name == "Result" && (e.Variant == "Ok" || e.Variant == "Err"):
			return g, nil
		}
	}
	for _, en := range c.enums {
		if _, ok := en.VariantByName(e.Variant); ok {
			return &ztype.Generic{Name: en.Name}, nil
		}
	}
	if e.Variant == "Some" || e.Variant == "None" {
		if payloadT == nil {
			payloadT = ztype.TI32
		}
		return &ztype.Generic{Name: "Option", TypeArgs: []ztype.Type{payloadT}}, nil
	}
	return nil, zerrors.Wrap(zerrors.New(zerrors.TypeMismatch,
		fmt.Sprintf("no enum registered with variant %q", e.Variant), &zast.Span{Start: e.Pos, End: e.Pos}))
}

// ---------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------

func (c *Checker) checkStmt(s zast.Stmt) error {
	switch st := s.(type) {
	case *zast.ExprStmt:
		_, err := c.inferExpr(st.Expr)
		return err

	case *zast.LetStmt:
		if st.Value == nil {
			// Forward declaration: registered uninitialized.
			c.scopes.declare(st.Name, &VarInfo{Type: st.Type, Mutable: st.Mutable, Initialized: false})
			return nil
		}
		vt, err := c.inferExpr(st.Value)
		if err != nil {
			return err
		}
		if st.Type != nil && !c.typesCompatible(st.Type, vt) {
			return typeMismatch(st.Type, vt, st.Pos)
		}
		declaredType := vt
		if st.Type != nil {
			declaredType = st.Type
		}
		c.scopes.declare(st.Name, &VarInfo{Type: declaredType, Mutable: st.Mutable, Initialized: true})
		return nil

	case *zast.AssignStmt:
		vt, err := c.inferExpr(st.Value)
		if err != nil {
			return err
		}
		id, ok := st.Target.(*zast.Identifier)
		if !ok {
			_, err := c.inferExpr(st.Target)
			return err
		}
		v, ok := c.scopes.lookup(id.Name)
		if !ok {
			return zerrors.Wrap(zerrors.New(zerrors.UndeclaredVariable,
				fmt.Sprintf("undeclared variable %q", id.Name), &zast.Span{Start: st.Pos, End: st.Pos}))
		}
		if v.Initialized && !v.Mutable {
			return zerrors.Wrap(zerrors.New(zerrors.ImmutabilityViolation,
				fmt.Sprintf("cannot reassign immutable binding %q", id.Name), &zast.Span{Start: st.Pos, End: st.Pos}))
		}
		if v.Initialized && v.Mutable {
			if !c.typesCompatible(v.Type, vt) {
				return typeMismatch(v.Type, vt, st.Pos)
			}
		} else {
			// First initialization of a forward-declared binding.
			if v.Type != nil && !c.typesCompatible(v.Type, vt) {
				return typeMismatch(v.Type, vt, st.Pos)
			}
			if v.Type == nil {
				v.Type = vt
			}
			v.Initialized = true
		}
		return nil

	case *zast.ReturnStmt:
		if st.Value == nil {
			return nil
		}
		_, err := c.inferExpr(st.Value)
		return err

	case *zast.DeferStmt:
		_, err := c.inferExpr(st.Expr)
		return err

	case *zast.BreakStmt, *zast.ContinueStmt:
		return nil

	default:
		return zerrors.Wrap(zerrors.New(zerrors.InternalError,
			fmt.Sprintf("check: unhandled statement kind %T", s), nil))
	}
}

// typesCompatible implements §4.5's types_compatible: exact structural
// equality; numeric widening where actual.bit_size <= expected.bit_size
// with sign compatibility; pointer compatibility by recursive pointee;
// struct/enum by name; Option/Result by name and pointwise args; string
// rules per §3.
func (c *Checker) typesCompatible(expected, actual ztype.Type) bool {
	if expected == nil || actual == nil {
		return true
	}
	if expected.Equals(actual) {
		return true
	}
	if es, ok := expected.(*ztype.StringType); ok {
		if as, ok := actual.(*ztype.StringType); ok {
			return ztype.CanCoerceString(as, es)
		}
	}
	if ztype.IsNumeric(expected) && ztype.IsNumeric(actual) {
		sameSign := ztype.IsSignedInteger(expected) == ztype.IsSignedInteger(actual) &&
			ztype.IsUnsignedInteger(expected) == ztype.IsUnsignedInteger(actual)
		if ztype.IsFloat(expected) || ztype.IsFloat(actual) {
			sameSign = ztype.IsFloat(expected) == ztype.IsFloat(actual)
		}
		return sameSign && ztype.BitSize(actual) <= ztype.BitSize(expected)
	}
	if ep, ok := expected.(*ztype.Ptr); ok {
		if ap, ok := actual.(*ztype.Ptr); ok {
			return c.typesCompatible(ep.Inner, ap.Inner)
		}
	}
	if eg, ok := expected.(*ztype.Generic); ok {
		if ag, ok := actual.(*ztype.Generic); ok {
			if eg.Name != ag.Name || len(eg.TypeArgs) != len(ag.TypeArgs) {
				return false
			}
			for i := range eg.TypeArgs {
				if !c.typesCompatible(eg.TypeArgs[i], ag.TypeArgs[i]) {
					return false
				}
			}
			return true
		}
	}
	if es, ok := expected.(*ztype.Struct); ok {
		if as, ok := actual.(*ztype.Struct); ok {
			return es.Name == as.Name
		}
	}
	if ee, ok := expected.(*ztype.Enum); ok {
		if ae, ok := actual.(*ztype.Enum); ok {
			return ee.Name == ae.Name
		}
	}
	return false
}
