package dtree

import (
	"fmt"

	"github.com/zenlang/zen/internal/zast"
	"github.com/zenlang/zen/internal/zerrors"
	"github.com/zenlang/zen/internal/ztype"
)

// Binding is one (name, type) a matched pattern contributes to its
// arm's body scope; codegen turns each into a stack slot store plus a
// check.VarInfo with Mutable=false, Initialized=true (§4.8).
type Binding struct {
	Name string
	Type ztype.Type
}

// StepKind enumerates the predicate/extraction operations a Plan node
// performs against its scrutinee value, in the vocabulary codegen reads
// to decide which LLVM instructions to emit.
type StepKind int

const (
	StepAlwaysTrue StepKind = iota
	StepBindValue            // bind the whole scrutinee to Name
	StepLiteralEq             // scrutinee == Literal
	StepRange                 // Start <= scrutinee <= End (or < End)
	StepOr                    // any Alternatives[i] matches
	StepEnumTag                // load discriminant, compare to Tag; then extract payload per PayloadType
	StepGuard                  // Inner matches, then Cond (an Expr, evaluated by codegen) must be true
	StepType                   // nominal type test, always true today (§9)
)

// Plan is the lowered form of one Pattern: a predicate step plus,
// recursively, the sub-plan for any payload/inner pattern. Bindings are
// NOT pre-flattened here — codegen walks Plan bottom-up as it commits
// each step's binding and the Inner/Payload plan's bindings, per the
// "collected bottom-up" rule of §4.8.
type Plan struct {
	Kind StepKind

	// StepBindValue
	BindName string

	// StepLiteralEq / StepRange
	Literal   *zast.Literal
	RangeLo   zast.Expr
	RangeHi   zast.Expr
	Inclusive bool

	// StepOr
	Alternatives []*Plan

	// StepEnumTag
	EnumName    string // "" when resolved via EnumLiteralPattern search
	Variant     string
	Tag         int64
	PayloadType ztype.Type // nil for a unit variant or a pattern with no payload
	Payload     *Plan      // the sub-pattern's plan, evaluated against the loaded payload

	// StepGuard
	Inner *Plan
	Cond  zast.Expr

	// StepType
	TypeName string
	Binding  string
}

// Lower compiles pattern p against a scrutinee of static type scrutType
// into a Plan, consulting enums for user enum variant/payload lookup
// and ctx for the Option/Result generic-type context (§4.8). Lower
// itself does not push a scope for the arm; lowerEnumPattern pushes
// and pops one around each payload descent, and callers push a scope
// per arm, so Nested_* keys populated while descending into one arm's
// payload don't leak into the next.
func Lower(p zast.Pattern, scrutType ztype.Type, enums map[string]*ztype.Enum, ctx *Context) (*Plan, error) {
	switch pat := p.(type) {
	case *zast.WildcardPattern:
		return &Plan{Kind: StepAlwaysTrue}, nil

	case *zast.Identifier:
		return &Plan{Kind: StepBindValue, BindName: pat.Name}, nil

	case *zast.Literal:
		return &Plan{Kind: StepLiteralEq, Literal: pat}, nil

	case *zast.RangePattern:
		return &Plan{Kind: StepRange, RangeLo: pat.Start, RangeHi: pat.End, Inclusive: pat.Inclusive}, nil

	case *zast.OrPattern:
		for _, alt := range pat.Alternatives {
			if bindsNames(alt) {
				return nil, zerrors.Wrap(zerrors.New(zerrors.OrPatternBindingDisallowed,
					"or-patterns may not bind names", nil))
			}
		}
		alts := make([]*Plan, len(pat.Alternatives))
		for i, alt := range pat.Alternatives {
			sub, err := Lower(alt, scrutType, enums, ctx)
			if err != nil {
				return nil, err
			}
			alts[i] = sub
		}
		return &Plan{Kind: StepOr, Alternatives: alts}, nil

	case *zast.BindingPattern:
		inner, err := Lower(pat.Inner, scrutType, enums, ctx)
		if err != nil {
			return nil, err
		}
		return &Plan{Kind: StepGuard, Inner: inner, BindName: pat.Name}, nil

	case *zast.TypePattern:
		return &Plan{Kind: StepType, TypeName: pat.TypeName, Binding: pat.Binding}, nil

	case *zast.GuardPattern:
		inner, err := Lower(pat.Inner, scrutType, enums, ctx)
		if err != nil {
			return nil, err
		}
		return &Plan{Kind: StepGuard, Inner: inner, Cond: pat.Cond}, nil

	case *zast.EnumVariantPattern:
		return lowerEnumPattern(pat.Enum, pat.Variant, pat.Payload, scrutType, enums, ctx)

	case *zast.EnumLiteralPattern:
		return lowerEnumPattern("", pat.Variant, pat.Payload, scrutType, enums, ctx)

	case *zast.StructPattern:
		return nil, zerrors.Wrap(zerrors.New(zerrors.StructPatternUnsupported,
			"struct patterns are not yet implemented", nil))

	default:
		return nil, zerrors.Wrap(zerrors.New(zerrors.InternalError,
			fmt.Sprintf("dtree: unhandled pattern kind %T", p), nil))
	}
}

// lowerEnumPattern resolves the payload type for Enum::Variant(payload)
// / .Variant(payload), computes the tag, populates nested generic-
// context keys when the payload itself is Option/Result, and lowers
// the payload sub-pattern against that type.
func lowerEnumPattern(enumName, variant string, payload zast.Pattern, scrutType ztype.Type, enums map[string]*ztype.Enum, ctx *Context) (*Plan, error) {
	plan := &Plan{Kind: StepEnumTag, EnumName: enumName, Variant: variant}

	payloadT, tag := resolvePayloadAndTag(enumName, variant, scrutType, enums, ctx)
	plan.PayloadType = payloadT
	plan.Tag = tag

	if payload == nil {
		return plan, nil
	}
	if payloadT != nil {
		ctx.Push()
		PopulateNested(ctx, payloadT, "")
		switch {
		case ztype.IsOption(payloadT):
			if t := ztype.OptionSomeType(payloadT); t != nil {
				ctx.Set(OptionSomeKey, t)
			}
		case ztype.IsResult(payloadT):
			if t := ztype.ResultOkType(payloadT); t != nil {
				ctx.Set(ResultOkKey, t)
			}
			if t := ztype.ResultErrType(payloadT); t != nil {
				ctx.Set(ResultErrKey, t)
			}
		}
		defer ctx.Pop()
	}
	sub, err := Lower(payload, payloadT, enums, ctx)
	if err != nil {
		return nil, err
	}
	plan.Payload = sub
	return plan, nil
}

// resolvePayloadAndTag mirrors check.payloadTypeFor/payloadTypeFromContext
// (C5 uses the identical rule, per §4.5) but also returns the
// variant's discriminant tag for the switch/compare codegen emits.
func resolvePayloadAndTag(enumName, variant string, scrutType ztype.Type, enums map[string]*ztype.Enum, ctx *Context) (ztype.Type, int64) {
	if g, ok := scrutType.(*ztype.Generic); ok {
		switch {
		case g.Name == "Option" && variant == "Some":
			return ztype.OptionSomeType(g), 0
		case g.Name == "Option" && variant == "None":
			return nil, 1
		case g.Name == "Result" && variant == "Ok":
			return ztype.ResultOkType(g), 0
		case g.Name == "Result" && variant == "Err":
			return ztype.ResultErrType(g), 1
		}
	}
	if enumName != "" {
		if en, ok := enums[enumName]; ok {
			if v, ok := en.VariantByName(variant); ok {
				tag, _ := en.Discriminant(variant)
				return v.Payload, tag
			}
		}
		return nil, 0
	}
	for _, en := range enums {
		if v, ok := en.VariantByName(variant); ok {
			tag, _ := en.Discriminant(variant)
			return v.Payload, tag
		}
	}
	return nil, 0
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

// Bindings collects every name a lowered Plan binds, in evaluation
// order (root to leaf), for callers that need the flat binding set
// without walking codegen's own predicate-emission recursion.
func Bindings(p *Plan) []Binding {
	if p == nil {
		return nil
	}
	var out []Binding
	collectBindings(p, nil, &out)
	return out
}

func collectBindings(p *Plan, scrutType ztype.Type, out *[]Binding) {
	switch p.Kind {
	case StepBindValue:
		*out = append(*out, Binding{Name: p.BindName, Type: scrutType})
	case StepOr:
		// Bindings are disallowed inside Or (rejected at Lower time);
		// nothing to collect.
	case StepGuard:
		if p.BindName != "" {
			*out = append(*out, Binding{Name: p.BindName, Type: scrutType})
		}
		if p.Inner != nil {
			collectBindings(p.Inner, scrutType, out)
		}
	case StepType:
		if p.Binding != "" {
			*out = append(*out, Binding{Name: p.Binding, Type: scrutType})
		}
	case StepEnumTag:
		if p.Payload != nil {
			collectBindings(p.Payload, p.PayloadType, out)
		}
	}
}
