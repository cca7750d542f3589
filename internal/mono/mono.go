// Package mono implements the monomorphizer (C7): it moves every
// generic declaration into a template registry, seeds a worklist of
// concrete instantiations from the type-checked program, drains the
// worklist to fixed point producing mangled specialized declarations,
// and rewrites call/construction sites to the mangled names (§4.7).
//
// Grounded on the teacher's call-graph worklist style
// (internal/elaborate/scc.go) generalized from dictionary-passing
// resolution to type-parameter substitution, and on
// internal/elaborate/dictionaries.go's instantiation-key bookkeeping.
package mono

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/samber/lo"

	"github.com/zenlang/zen/internal/check"
	"github.com/zenlang/zen/internal/zast"
	"github.com/zenlang/zen/internal/zerrors"
	"github.com/zenlang/zen/internal/ztype"
)

// Instantiation is one (template name, concrete type arguments) pair
// waiting to be materialized.
type Instantiation struct {
	Name string
	Args []ztype.Type
}

// Key returns the mangled name this instantiation produces.
func (i Instantiation) Key() string { return MangledName(i.Name, i.Args) }

// MangledName implements §4.7's naming rule: base name plus
// underscore-joined canonical Display forms of the type arguments,
// e.g. identity<i32> -> identity_i32, Box<Option<i32>> -> Box_Option_i32.
func MangledName(base string, args []ztype.Type) string {
	if len(args) == 0 {
		return base
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = sanitize(a.String())
	}
	return base + "_" + strings.Join(parts, "_")
}

func sanitize(s string) string {
	r := strings.NewReplacer("<", "_", ">", "", ", ", "_", ",", "_", " ", "")
	return r.Replace(s)
}

// Monomorphizer holds the generic registry, worklist, and processed set
// for one compilation (§5: no process-global state).
type Monomorphizer struct {
	genericFuncs   map[string]*zast.FuncDecl
	genericStructs map[string]*zast.StructDecl
	genericEnums   map[string]*zast.EnumDecl

	checker *check.Checker // reused to infer call-argument types (§4.7.6)

	worklist  []Instantiation
	processed map[string]bool

	// seenArgs guards against a mangled-name collision: two
	// structurally different type-argument lists that happen to
	// produce the same Key(). Checked via go-cmp's structural
	// equality (internal/ztype.Type's Equals is wired in as a
	// cmp.Comparer) rather than relying on string equality alone.
	seenArgs map[string][]ztype.Type

	specializedFuncs   []*zast.FuncDecl
	specializedStructs []*zast.StructDecl
	specializedEnums   []*zast.EnumDecl
}

// New builds a Monomorphizer that reuses checker (already run over the
// program) for its own type inference.
func New(checker *check.Checker) *Monomorphizer {
	return &Monomorphizer{
		genericFuncs:   map[string]*zast.FuncDecl{},
		genericStructs: map[string]*zast.StructDecl{},
		genericEnums:   map[string]*zast.EnumDecl{},
		checker:        checker,
		processed:      map[string]bool{},
		seenArgs:       map[string][]ztype.Type{},
	}
}

// Run performs the full §4.7 algorithm, returning a program with zero
// declarations carrying type parameters (P1: monomorph closure).
func (m *Monomorphizer) Run(prog *zast.Program) (*zast.Program, error) {
	nonGeneric := m.partition(prog)

	if err := m.seedProgram(nonGeneric); err != nil {
		return nil, err
	}
	if err := m.drain(); err != nil {
		return nil, err
	}

	out := &zast.Program{Pos: prog.Pos}
	for _, d := range nonGeneric {
		out.Decls = append(out.Decls, m.rewriteDecl(d))
	}
	for _, f := range m.specializedFuncs {
		m.checker.NewScopeForParams(f.Params, nil)
		out.Decls = append(out.Decls, m.rewriteDecl(f))
	}
	for _, s := range m.specializedStructs {
		out.Decls = append(out.Decls, s)
	}
	for _, e := range m.specializedEnums {
		out.Decls = append(out.Decls, e)
	}
	return out, nil
}

// partition moves every declaration with non-empty type parameters into
// the generic registry and returns the rest.
func (m *Monomorphizer) partition(prog *zast.Program) []zast.Decl {
	var rest []zast.Decl
	for _, d := range prog.Decls {
		switch decl := d.(type) {
		case *zast.FuncDecl:
			if len(decl.TypeParams) > 0 {
				m.genericFuncs[decl.Name] = decl
				continue
			}
		case *zast.StructDecl:
			if len(decl.TypeParams) > 0 {
				m.genericStructs[decl.Name] = decl
				continue
			}
		case *zast.EnumDecl:
			if len(decl.TypeParams) > 0 {
				m.genericEnums[decl.Name] = decl
				continue
			}
		}
		rest = append(rest, d)
	}
	return rest
}

// seedProgram walks every non-generic declaration's body, recording
// each call / struct literal / type annotation that references a
// generic template with concrete arguments (§4.7 step 1).
func (m *Monomorphizer) seedProgram(decls []zast.Decl) error {
	for _, d := range decls {
		switch decl := d.(type) {
		case *zast.FuncDecl:
			if decl.Body == nil {
				continue
			}
			m.checker.NewScopeForParams(decl.Params, nil)
			if err := m.seedExpr(decl.Body); err != nil {
				return err
			}
		case *zast.StructDecl:
			for _, meth := range decl.Methods {
				if meth.Body == nil {
					continue
				}
				m.checker.NewScopeForParams(meth.Params, nil)
				if err := m.seedExpr(meth.Body); err != nil {
					return err
				}
			}
		case *zast.EnumDecl:
			for _, meth := range decl.Methods {
				if meth.Body == nil {
					continue
				}
				m.checker.NewScopeForParams(meth.Params, nil)
				if err := m.seedExpr(meth.Body); err != nil {
					return err
				}
			}
		case *zast.TraitImplDecl:
			for _, meth := range decl.Methods {
				if meth.Body == nil {
					continue
				}
				m.checker.NewScopeForParams(meth.Params, decl.ForType)
				if err := m.seedExpr(meth.Body); err != nil {
					return err
				}
			}
		case *zast.ImplBlockDecl:
			for _, meth := range decl.Methods {
				if meth.Body == nil {
					continue
				}
				m.checker.NewScopeForParams(meth.Params, decl.ForType)
				if err := m.seedExpr(meth.Body); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// seedExpr recursively scans e for generic call sites / struct literals,
// pushing any new instantiation onto the worklist.
func (m *Monomorphizer) seedExpr(e zast.Expr) error {
	if e == nil {
		return nil
	}
	switch ex := e.(type) {
	case *zast.Call:
		if id, ok := ex.Func.(*zast.Identifier); ok {
			if tmpl, ok := m.genericFuncs[id.Name]; ok {
				args, err := m.resolveCallArgs(tmpl, ex)
				if err != nil {
					return err
				}
				if err := m.push(Instantiation{Name: id.Name, Args: args}); err != nil {
					return err
				}
			}
		}
		for _, a := range ex.Args {
			if err := m.seedExpr(a); err != nil {
				return err
			}
		}
	case *zast.MethodCall:
		if err := m.seedExpr(ex.Receiver); err != nil {
			return err
		}
		for _, a := range ex.Args {
			if err := m.seedExpr(a); err != nil {
				return err
			}
		}
	case *zast.StructLiteral:
		if tmpl, ok := m.genericStructs[ex.Name]; ok {
			args := m.inferStructTypeArgs(tmpl, ex)
			if err := m.push(Instantiation{Name: ex.Name, Args: args}); err != nil {
				return err
			}
		}
		for _, f := range ex.Fields {
			if err := m.seedExpr(f.Value); err != nil {
				return err
			}
		}
	case *zast.BinaryOp:
		if err := m.seedExpr(ex.Left); err != nil {
			return err
		}
		return m.seedExpr(ex.Right)
	case *zast.UnaryOp:
		return m.seedExpr(ex.Expr)
	case *zast.Block:
		for _, s := range ex.Stmts {
			if err := m.seedStmt(s); err != nil {
				return err
			}
		}
		return m.seedExpr(ex.Trailing)
	case *zast.If:
		if err := m.seedExpr(ex.Cond); err != nil {
			return err
		}
		if err := m.seedExpr(ex.Then); err != nil {
			return err
		}
		return m.seedExpr(ex.Else)
	case *zast.Match:
		if err := m.seedExpr(ex.Scrutinee); err != nil {
			return err
		}
		for _, c := range ex.Cases {
			if err := m.seedExpr(c.Body); err != nil {
				return err
			}
		}
	case *zast.MemberAccess:
		return m.seedExpr(ex.Receiver)
	case *zast.EnumLiteral:
		return m.seedExpr(ex.Payload)
	case *zast.RangeExpr:
		if err := m.seedExpr(ex.Start); err != nil {
			return err
		}
		return m.seedExpr(ex.End)
	}
	return nil
}

func (m *Monomorphizer) seedStmt(s zast.Stmt) error {
	switch st := s.(type) {
	case *zast.ExprStmt:
		return m.seedExpr(st.Expr)
	case *zast.LetStmt:
		return m.seedExpr(st.Value)
	case *zast.AssignStmt:
		if err := m.seedExpr(st.Target); err != nil {
			return err
		}
		return m.seedExpr(st.Value)
	case *zast.ReturnStmt:
		return m.seedExpr(st.Value)
	case *zast.DeferStmt:
		return m.seedExpr(st.Expr)
	}
	return nil
}

// resolveCallArgs infers each type parameter of tmpl by matching it to
// the first argument position in which it appears, using the type of
// the corresponding actual argument (§4.7 step 5); explicit type
// arguments at the call site take precedence. A parameter never pinned
// defaults to I32 (documented §9 open question); no MONO001 report is
// raised for it.
func (m *Monomorphizer) resolveCallArgs(tmpl *zast.FuncDecl, call *zast.Call) ([]ztype.Type, error) {
	if len(call.ExplicitTyArgs) > 0 {
		return call.ExplicitTyArgs, nil
	}
	bound := map[string]ztype.Type{}
	for i, p := range tmpl.Params {
		paramName, ok := unappliedParamName(p.Type)
		if !ok || bound[paramName] != nil {
			continue
		}
		if i >= len(call.Args) {
			continue
		}
		argT, err := m.checker.InferType(call.Args[i])
		if err != nil {
			return nil, err
		}
		bound[paramName] = argT
	}
	args := make([]ztype.Type, len(tmpl.TypeParams))
	for i, tp := range tmpl.TypeParams {
		if t, ok := bound[tp]; ok {
			args[i] = t
		} else {
			args[i] = ztype.TI32 // §9: unresolved type parameter falls back to I32
		}
	}
	return args, nil
}

func unappliedParamName(t ztype.Type) (string, bool) {
	g, ok := t.(*ztype.Generic)
	if !ok || !g.IsUnapplied() {
		return "", false
	}
	return g.Name, true
}

// inferStructTypeArgs implements the struct-literal tie-break of §4.7 /
// SPEC_FULL.md §D: bind type parameters from field-value types,
// preferring the first concrete numeric type encountered, walked in the
// struct's declared field order (not Go map order, which would be
// nondeterministic).
func (m *Monomorphizer) inferStructTypeArgs(tmpl *zast.StructDecl, lit *zast.StructLiteral) []ztype.Type {
	values := map[string]zast.Expr{}
	for _, f := range lit.Fields {
		values[f.Name] = f.Value
	}
	bound := map[string]ztype.Type{}
	for _, field := range tmpl.Fields {
		paramName, ok := unappliedParamName(field.Type)
		if !ok {
			continue
		}
		val, ok := values[field.Name]
		if !ok {
			continue
		}
		t, err := m.checker.InferType(val)
		if err != nil {
			continue
		}
		if existing, already := bound[paramName]; already && (ztype.IsNumeric(existing) || !ztype.IsNumeric(t)) {
			continue // keep the first numeric type, or the first type while none is numeric
		}
		bound[paramName] = t
	}
	args := make([]ztype.Type, len(tmpl.TypeParams))
	for i, tp := range tmpl.TypeParams {
		if t, ok := bound[tp]; ok {
			args[i] = t
		} else {
			args[i] = ztype.TI32
		}
	}
	return args
}

// typeArgsComparer lets cmp.Equal compare []ztype.Type slices via
// ztype.Type's own Equals method, since Type is an interface over
// unexported-field-free structs that cmp can't structurally compare
// without being told how to treat the leaf values.
var typeArgsComparer = cmp.Comparer(func(a, b ztype.Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equals(b)
})

func (m *Monomorphizer) push(inst Instantiation) error {
	key := inst.Key()
	if existing, ok := m.seenArgs[key]; ok {
		if !cmp.Equal(existing, inst.Args, typeArgsComparer) {
			return zerrors.Wrap(zerrors.New(zerrors.InternalError,
				fmt.Sprintf("mangled name %q collides for structurally different instantiations", key), nil))
		}
		return nil
	}
	m.seenArgs[key] = inst.Args
	if m.processed[key] {
		return nil
	}
	m.worklist = append(m.worklist, inst)
	return nil
}

// drain processes the worklist to a fixed point (§4.7 steps 2-4): each
// batch's mangled keys are deduplicated with lo.Uniq, and keys already
// in the processed set are skipped.
func (m *Monomorphizer) drain() error {
	for len(m.worklist) > 0 {
		batch := m.worklist
		m.worklist = nil

		keys := lo.Map(batch, func(i Instantiation, _ int) string { return i.Key() })
		keys = lo.Uniq(keys)
		byKey := map[string]Instantiation{}
		for _, inst := range batch {
			byKey[inst.Key()] = inst
		}
		sort.Strings(keys) // deterministic processing order (P10 idempotence)

		for _, key := range keys {
			inst := byKey[key]
			if m.processed[key] {
				continue
			}
			m.processed[key] = true
			if err := m.specialize(inst); err != nil {
				return err
			}
		}
	}
	return nil
}

// specialize materializes one instantiation: build the substitution,
// produce a specialized copy via substituteFunc/Struct/Enum, and seed
// the worklist with any new instantiations discovered inside the
// specialized body (generic templates may call other generics, §4.7
// step 3). Only generic functions, structs and enums are specialized;
// trait implementations registered for a generic template are not
// replicated per instantiation.
func (m *Monomorphizer) specialize(inst Instantiation) error {
	mangled := inst.Key()
	if tmpl, ok := m.genericFuncs[inst.Name]; ok {
		subst := substitution(tmpl.TypeParams, inst.Args)
		spec := substituteFunc(tmpl, subst, mangled)
		m.specializedFuncs = append(m.specializedFuncs, spec)
		if spec.Body != nil {
			m.checker.NewScopeForParams(spec.Params, nil)
			return m.seedExpr(spec.Body)
		}
		return nil
	}
	if tmpl, ok := m.genericStructs[inst.Name]; ok {
		subst := substitution(tmpl.TypeParams, inst.Args)
		spec := substituteStruct(tmpl, subst, mangled)
		m.specializedStructs = append(m.specializedStructs, spec)
		return nil
	}
	if tmpl, ok := m.genericEnums[inst.Name]; ok {
		subst := substitution(tmpl.TypeParams, inst.Args)
		spec := substituteEnum(tmpl, subst, mangled)
		m.specializedEnums = append(m.specializedEnums, spec)
		return nil
	}
	return zerrors.Wrap(zerrors.New(zerrors.UnknownGenericTarget,
		fmt.Sprintf("unregistered generic target %q", inst.Name), nil))
}

func substitution(params []string, args []ztype.Type) map[string]ztype.Type {
	subst := map[string]ztype.Type{}
	for i, p := range params {
		if i < len(args) {
			subst[p] = args[i]
		}
	}
	return subst
}
