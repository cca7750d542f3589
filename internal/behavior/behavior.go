// Package behavior implements the behavior/trait resolver (C6): it
// registers traits (a.k.a. behaviors), implementations, inherent impls
// and trait requirements; verifies that every implementation satisfies
// its trait; and resolves method calls to the first matching inherent or
// trait-provided method, in implementation-registration order.
//
// Grounded on the teacher's internal/types/instances.go InstanceEnv, but
// restructured from map-backed to slice-backed storage for
// implementations: the Rust lynlang source this spec was distilled from
// stores impls in a Vec, and method resolution order is load-bearing
// (§4.6, SPEC_FULL.md §D) — a Go map would make iteration order
// nondeterministic and silently change which method wins a tie.
package behavior

import (
	"fmt"

	"github.com/zenlang/zen/internal/zast"
	"github.com/zenlang/zen/internal/zerrors"
	"github.com/zenlang/zen/internal/ztype"
)

// Trait is the registered form of a behavior declaration: a name plus
// its required method signatures.
type Trait struct {
	Name    string
	Methods map[string]zast.MethodSig
}

// Implementation is one registered (type, trait) pair with method
// bodies, kept in a slice (not a map) to preserve registration order.
type Implementation struct {
	TraitName string
	ForType   ztype.Type
	Methods   map[string]*zast.FuncDecl
}

// Resolver is the C6 state container: one per compilation (§5 — no
// process-global state; a fresh Resolver is built per analysis).
type Resolver struct {
	traits          map[string]*Trait
	implementations []*Implementation // registration order, load-bearing
	inherentMethods map[string][]*zast.FuncDecl
	requirements    []requirement
}

type requirement struct {
	ForType   ztype.Type
	TraitName string
}

// New builds an empty Resolver.
func New() *Resolver {
	return &Resolver{
		traits:          map[string]*Trait{},
		inherentMethods: map[string][]*zast.FuncDecl{},
	}
}

// RegisterBehavior / RegisterTrait are synonyms (§GLOSSARY: Behavior is
// Zen's surface name for what the checker internally calls a trait).
func (r *Resolver) RegisterBehavior(name string, methods []zast.MethodSig) {
	r.RegisterTrait(name, methods)
}

func (r *Resolver) RegisterTrait(name string, methods []zast.MethodSig) {
	m := map[string]zast.MethodSig{}
	for _, sig := range methods {
		m[sig.Name] = sig
	}
	r.traits[name] = &Trait{Name: name, Methods: m}
}

// RegisterTraitImplementation appends a new (type, trait) implementation
// to the registration-ordered slice and verifies it satisfies the trait.
func (r *Resolver) RegisterTraitImplementation(decl *zast.TraitImplDecl) error {
	trait, ok := r.traits[decl.TraitName]
	if !ok {
		return zerrors.Wrap(zerrors.New(zerrors.UnknownTrait,
			fmt.Sprintf("implementation references unknown trait %q", decl.TraitName), nil))
	}
	for _, impl := range r.implementations {
		if impl.TraitName == decl.TraitName && impl.ForType.Equals(decl.ForType) {
			return zerrors.Wrap(zerrors.New(zerrors.DuplicateImplementation,
				fmt.Sprintf("duplicate implementation of %q for %s", decl.TraitName, decl.ForType), nil))
		}
	}
	methods := map[string]*zast.FuncDecl{}
	for _, m := range decl.Methods {
		methods[m.Name] = m
	}
	impl := &Implementation{TraitName: decl.TraitName, ForType: decl.ForType, Methods: methods}
	if err := r.verifyTraitImplementation(trait, impl); err != nil {
		return err
	}
	r.implementations = append(r.implementations, impl)
	return nil
}

// RegisterTraitRequirement records that ForType must (eventually)
// implement TraitName, e.g. an EnumDecl's RequiredTraits list.
func (r *Resolver) RegisterTraitRequirement(forType ztype.Type, traitName string) {
	r.requirements = append(r.requirements, requirement{ForType: forType, TraitName: traitName})
}

// RegisterInherentImpl appends an inherent (non-trait) impl's methods.
func (r *Resolver) RegisterInherentImpl(decl *zast.ImplBlockDecl) {
	key := decl.ForType.String()
	r.inherentMethods[key] = append(r.inherentMethods[key], decl.Methods...)
}

// verifyTraitImplementation ensures impl provides bodies for every
// signature trait declares, with compatible signatures after Self
// substitution (the substitution itself already happened in C4; here we
// check arity and that every required name is present).
func (r *Resolver) verifyTraitImplementation(trait *Trait, impl *Implementation) error {
	for name, sig := range trait.Methods {
		m, ok := impl.Methods[name]
		if !ok {
			return zerrors.Wrap(zerrors.New(zerrors.MissingRequiredMethod,
				fmt.Sprintf("implementation of %q for %s is missing required method %q", trait.Name, impl.ForType, name), nil))
		}
		if len(m.Params) != len(sig.Params) {
			return zerrors.Wrap(zerrors.New(zerrors.IncompatibleMethodSig,
				fmt.Sprintf("method %q of %q for %s has %d parameters, trait declares %d",
					name, trait.Name, impl.ForType, len(m.Params), len(sig.Params)), nil))
		}
	}
	return nil
}

// ResolveMethod searches (1) inherent methods on typ, then (2) each
// trait typ implements, in implementation-registration order, returning
// the first match (§4.6).
func (r *Resolver) ResolveMethod(typ ztype.Type, name string) (*zast.FuncDecl, bool) {
	for _, m := range r.inherentMethods[typ.String()] {
		if m.Name == name {
			return m, true
		}
	}
	for _, impl := range r.implementations {
		if !impl.ForType.Equals(typ) {
			continue
		}
		if m, ok := impl.Methods[name]; ok {
			return m, true
		}
	}
	return nil, false
}

// TypeImplements reports whether typ has a registered implementation of
// traitName.
func (r *Resolver) TypeImplements(typ ztype.Type, traitName string) bool {
	for _, impl := range r.implementations {
		if impl.TraitName == traitName && impl.ForType.Equals(typ) {
			return true
		}
	}
	return false
}

// UnsatisfiedRequirements returns every registered TraitRequirement whose
// ForType does not (yet) implement TraitName; used by the checker to
// enforce EnumDecl.RequiredTraits.
func (r *Resolver) UnsatisfiedRequirements() []string {
	var out []string
	for _, req := range r.requirements {
		if !r.TypeImplements(req.ForType, req.TraitName) {
			out = append(out, fmt.Sprintf("%s requires %s", req.ForType, req.TraitName))
		}
	}
	return out
}
