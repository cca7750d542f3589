// Package ztype implements the canonical Zen type model (C1): a closed,
// tagged sum of type forms plus the structural predicates the checker,
// monomorphizer and pattern lowerer all share.
package ztype

import (
	"fmt"
	"strings"
)

// Type is the canonical tagged-union type representation. It is
// interior-by-reference: compound forms hold other Types directly
// rather than by name, except where §9 requires breaking a cycle.
type Type interface {
	// String renders canonical surface syntax; also used for mangled
	// names (§4.7) and diagnostics, so it must be stable and unique
	// per distinct type.
	String() string
	Equals(other Type) bool
}

// Primitive is one of the fixed-width numeric/bool/void kinds.
type Primitive struct {
	Kind PrimKind
}

type PrimKind int

const (
	I8 PrimKind = iota
	I16
	I32
	I64
	U8
	U16
	U32
	U64
	Usize
	F32
	F64
	Bool
	Void
)

var primNames = map[PrimKind]string{
	I8: "i8", I16: "i16", I32: "i32", I64: "i64",
	U8: "u8", U16: "u16", U32: "u32", U64: "u64",
	Usize: "usize", F32: "f32", F64: "f64", Bool: "bool", Void: "void",
}

func (p *Primitive) String() string { return primNames[p.Kind] }
func (p *Primitive) Equals(o Type) bool {
	op, ok := o.(*Primitive)
	return ok && op.Kind == p.Kind
}

// Convenience singletons, mirroring the teacher's predefined TInt/TFloat/...
var (
	TI8    = &Primitive{I8}
	TI16   = &Primitive{I16}
	TI32   = &Primitive{I32}
	TI64   = &Primitive{I64}
	TU8    = &Primitive{U8}
	TU16   = &Primitive{U16}
	TU32   = &Primitive{U32}
	TU64   = &Primitive{U64}
	TUsize = &Primitive{Usize}
	TF32   = &Primitive{F32}
	TF64   = &Primitive{F64}
	TBool  = &Primitive{Bool}
	TVoid  = &Primitive{Void}
)

// StringKind distinguishes the three string flavors of §3.
type StringKind int

const (
	StaticLiteral StringKind = iota // compiler-internal, immutable, no allocator
	StaticString                   // user-facing static
	DynamicString                  // the allocator-backed String struct
)

// StringType represents one of the three string flavors. The dynamic
// form is additionally described by the struct fields below so that
// codegen can lower it as the concrete {ptr,len,cap,allocator} struct.
type StringType struct {
	Kind StringKind
}

func (s *StringType) String() string {
	switch s.Kind {
	case StaticLiteral:
		return "StaticLiteral"
	case StaticString:
		return "StaticString"
	default:
		return "String"
	}
}
func (s *StringType) Equals(o Type) bool {
	os, ok := o.(*StringType)
	return ok && os.Kind == s.Kind
}

// DynamicStringStruct returns the canonical struct form of the dynamic
// String type: {data: Ptr<U8>, len: U64, capacity: U64, allocator: Allocator}.
func DynamicStringStruct() *Struct {
	return &Struct{
		Name: "String",
		Fields: []Field{
			{Name: "data", Type: &Ptr{Mut: false, Unsafe: false, Inner: TU8}},
			{Name: "len", Type: TU64},
			{Name: "capacity", Type: TU64},
			{Name: "allocator", Type: &Generic{Name: "Allocator"}},
		},
	}
}

// CanCoerceString reports whether a value of `from` may be used where
// `to` is expected, per §3's one-directional string coercion rule:
// StaticLiteral<->StaticString is free; StaticString->String is
// permitted (acquires an allocator at runtime); the reverse is
// forbidden.
func CanCoerceString(from, to *StringType) bool {
	if from.Kind == to.Kind {
		return true
	}
	switch {
	case from.Kind == StaticLiteral && to.Kind == StaticString:
		return true
	case from.Kind == StaticString && to.Kind == StaticLiteral:
		return true
	case from.Kind == StaticString && to.Kind == DynamicString:
		return true
	default:
		return false
	}
}

// Ptr family: Ptr<T> immutable, MutPtr<T> mutable, RawPtr<T> unsafe/FFI.
type Ptr struct {
	Mut    bool
	Unsafe bool
	Inner  Type
}

func (p *Ptr) String() string {
	switch {
	case p.Unsafe:
		return fmt.Sprintf("RawPtr<%s>", p.Inner)
	case p.Mut:
		return fmt.Sprintf("MutPtr<%s>", p.Inner)
	default:
		return fmt.Sprintf("Ptr<%s>", p.Inner)
	}
}
func (p *Ptr) Equals(o Type) bool {
	op, ok := o.(*Ptr)
	return ok && op.Mut == p.Mut && op.Unsafe == p.Unsafe && p.Inner.Equals(op.Inner)
}

// Ref represents a managed reference Ref<T>.
type Ref struct{ Inner Type }

func (r *Ref) String() string { return fmt.Sprintf("Ref<%s>", r.Inner) }
func (r *Ref) Equals(o Type) bool {
	or, ok := o.(*Ref)
	return ok && r.Inner.Equals(or.Inner)
}

// Array is a dynamically-sized, allocator-less view: Array<T>.
type Array struct{ Elem Type }

func (a *Array) String() string { return fmt.Sprintf("Array<%s>", a.Elem) }
func (a *Array) Equals(o Type) bool {
	oa, ok := o.(*Array)
	return ok && a.Elem.Equals(oa.Elem)
}

// FixedArray is a compile-time-sized array: FixedArray<T; N>.
type FixedArray struct {
	Elem Type
	N    int64
}

func (f *FixedArray) String() string { return fmt.Sprintf("FixedArray<%s; %d>", f.Elem, f.N) }
func (f *FixedArray) Equals(o Type) bool {
	of, ok := o.(*FixedArray)
	return ok && f.N == of.N && f.Elem.Equals(of.Elem)
}

// Vec is a compile-time-sized, allocator-less vector: Vec<T, N>.
type Vec struct {
	Elem Type
	N    int64
}

func (v *Vec) String() string { return fmt.Sprintf("Vec<%s, %d>", v.Elem, v.N) }
func (v *Vec) Equals(o Type) bool {
	ov, ok := o.(*Vec)
	return ok && v.N == ov.N && v.Elem.Equals(ov.Elem)
}

// DynVec is an allocator-backed, possibly heterogeneous vector.
type DynVec struct{ Elems []Type }

func (d *DynVec) String() string {
	parts := make([]string, len(d.Elems))
	for i, e := range d.Elems {
		parts[i] = e.String()
	}
	return fmt.Sprintf("DynVec<%s>", strings.Join(parts, ", "))
}
func (d *DynVec) Equals(o Type) bool {
	od, ok := o.(*DynVec)
	if !ok || len(d.Elems) != len(od.Elems) {
		return false
	}
	for i := range d.Elems {
		if !d.Elems[i].Equals(od.Elems[i]) {
			return false
		}
	}
	return true
}

// Field is a named, typed struct member.
type Field struct {
	Name string
	Type Type
}

// Struct is a named aggregate. Per §9, cyclic struct references are
// broken when materializing by re-entering an already-visited name
// with a shallow copy (empty Fields); downstream code must look the
// real fields up from the registry by name, never trust an embedded
// copy that might be shallow.
type Struct struct {
	Name   string
	Fields []Field
}

func (s *Struct) String() string { return s.Name }
func (s *Struct) Equals(o Type) bool {
	os, ok := o.(*Struct)
	return ok && s.Name == os.Name
}

// Variant is one arm of an Enum.
type Variant struct {
	Name    string
	Payload Type // nil for a unit variant
}

// Enum is a named sum type.
type Enum struct {
	Name     string
	Variants []Variant
}

func (e *Enum) String() string { return e.Name }
func (e *Enum) Equals(o Type) bool {
	oe, ok := o.(*Enum)
	return ok && e.Name == oe.Name
}

// VariantByName looks up a variant by name, returning ok=false if absent.
func (e *Enum) VariantByName(name string) (Variant, bool) {
	for _, v := range e.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return Variant{}, false
}

// Discriminant returns the i64 tag value of a named variant, which is
// simply its declaration-order index (§4.8's two-field aggregate
// convention: {i64 discriminant, ptr payload}).
func (e *Enum) Discriminant(name string) (int64, bool) {
	for i, v := range e.Variants {
		if v.Name == name {
			return int64(i), true
		}
	}
	return 0, false
}

// Generic represents both unapplied type parameters (empty TypeArgs)
// and applied generics such as Option<I32> or Result<Option<I32>, String>.
type Generic struct {
	Name     string
	TypeArgs []Type
}

func (g *Generic) String() string {
	if len(g.TypeArgs) == 0 {
		return g.Name
	}
	parts := make([]string, len(g.TypeArgs))
	for i, a := range g.TypeArgs {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s<%s>", g.Name, strings.Join(parts, ", "))
}
func (g *Generic) Equals(o Type) bool {
	og, ok := o.(*Generic)
	if !ok || g.Name != og.Name || len(g.TypeArgs) != len(og.TypeArgs) {
		return false
	}
	for i := range g.TypeArgs {
		if !g.TypeArgs[i].Equals(og.TypeArgs[i]) {
			return false
		}
	}
	return true
}

// IsUnapplied reports whether this Generic is a bare type parameter
// (no type arguments) as opposed to an applied generic instantiation.
func (g *Generic) IsUnapplied() bool { return len(g.TypeArgs) == 0 }

// Function is the declaration form of a function type: args + return.
type Function struct {
	Args   []Type
	Return Type
}

func (f *Function) String() string {
	parts := make([]string, len(f.Args))
	for i, a := range f.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("fn(%s) %s", strings.Join(parts, ", "), f.Return)
}
func (f *Function) Equals(o Type) bool {
	of, ok := o.(*Function)
	if !ok || len(f.Args) != len(of.Args) || !f.Return.Equals(of.Return) {
		return false
	}
	for i := range f.Args {
		if !f.Args[i].Equals(of.Args[i]) {
			return false
		}
	}
	return true
}

// FunctionPointer is the value form of a function type; interconvertible
// with Function per §7.
type FunctionPointer struct {
	Params []Type
	Return Type
}

func (f *FunctionPointer) String() string {
	parts := make([]string, len(f.Params))
	for i, a := range f.Params {
		parts[i] = a.String()
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), f.Return)
}
func (f *FunctionPointer) Equals(o Type) bool {
	of, ok := o.(*FunctionPointer)
	if !ok || len(f.Params) != len(of.Params) || !f.Return.Equals(of.Return) {
		return false
	}
	for i := range f.Params {
		if !f.Params[i].Equals(of.Params[i]) {
			return false
		}
	}
	return true
}

// AsFunction / AsFunctionPointer perform the §7 inter-conversion.
func (f *Function) AsFunctionPointer() *FunctionPointer {
	return &FunctionPointer{Params: f.Args, Return: f.Return}
}
func (f *FunctionPointer) AsFunction() *Function {
	return &Function{Args: f.Params, Return: f.Return}
}

// Range represents a.Range{start,end,inclusive}.
type Range struct {
	Start, End Type
	Inclusive  bool
}

func (r *Range) String() string {
	op := "..<"
	if r.Inclusive {
		op = "..="
	}
	return fmt.Sprintf("Range<%s%s%s>", r.Start, op, r.End)
}
func (r *Range) Equals(o Type) bool {
	or, ok := o.(*Range)
	return ok && r.Inclusive == or.Inclusive && r.Start.Equals(or.Start) && r.End.Equals(or.End)
}

// StdModule is the sentinel type for names bound to imported modules.
type StdModule struct{ Path string }

func (s *StdModule) String() string  { return fmt.Sprintf("module(%s)", s.Path) }
func (s *StdModule) Equals(o Type) bool {
	os, ok := o.(*StdModule)
	return ok && os.Path == s.Path
}

// WellKnown is the table of structurally-recognized stdlib names (§3):
// there are no built-in enum types, but the checker interprets generics
// with these names specially.
var WellKnown = map[string]bool{
	"Option": true, "Some": true, "None": true,
	"Result": true, "Ok": true, "Err": true,
	"Ptr": true, "MutPtr": true, "RawPtr": true,
}

// IsOption / IsResult test a Generic's name against the well-known table.
func IsOption(t Type) bool {
	g, ok := t.(*Generic)
	return ok && g.Name == "Option"
}
func IsResult(t Type) bool {
	g, ok := t.(*Generic)
	return ok && g.Name == "Result"
}

// OptionSomeType returns Option<T>'s T, or nil if t is not Option<T>.
func OptionSomeType(t Type) Type {
	g, ok := t.(*Generic)
	if !ok || g.Name != "Option" || len(g.TypeArgs) != 1 {
		return nil
	}
	return g.TypeArgs[0]
}

// ResultOkType / ResultErrType return Result<T,E>'s T/E, or nil.
func ResultOkType(t Type) Type {
	g, ok := t.(*Generic)
	if !ok || g.Name != "Result" || len(g.TypeArgs) != 2 {
		return nil
	}
	return g.TypeArgs[0]
}
func ResultErrType(t Type) Type {
	g, ok := t.(*Generic)
	if !ok || g.Name != "Result" || len(g.TypeArgs) != 2 {
		return nil
	}
	return g.TypeArgs[1]
}
