// Package ziface describes one compiled module's interface: its typed
// exports, its exported enum variants, and a deterministic digest of
// both. Grounded on the teacher's internal/iface/iface.go module
// surface and internal/iface/builder.go's digest computation,
// generalized from the teacher's HM type schemes to Zen's ztype.Type
// and from ADT constructors to zast.EnumDecl variants.
package ziface

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/zenlang/zen/internal/ztype"
)

// Export is one exported function or constant.
type Export struct {
	Name   string
	Type   ztype.Type
	Public bool
}

// VariantExport is one exported enum variant, constructor-shaped for
// callers that only need arity/field types (§C4, §C6 consumers).
type VariantExport struct {
	EnumName string
	Variant  string
	Fields   []ztype.Type
}

// Iface is one module's compiled interface: its exports, enum variants
// and exported type arities, plus a digest over them. No other package
// in this repository builds or reads an Iface; C2's resolver merges
// parsed declarations directly.
type Iface struct {
	Module   string
	Exports  map[string]*Export
	Variants map[string]*VariantExport
	Types    map[string]int // exported type name -> generic arity
	Schema   string
	Digest   string
}

// New returns an empty interface for module.
func New(module string) *Iface {
	return &Iface{
		Module:   module,
		Exports:  make(map[string]*Export),
		Variants: make(map[string]*VariantExport),
		Types:    make(map[string]int),
		Schema:   "zen.iface/v1",
	}
}

// AddExport records a public function/constant.
func (i *Iface) AddExport(name string, typ ztype.Type, public bool) {
	i.Exports[name] = &Export{Name: name, Type: typ, Public: public}
}

// AddVariant records one enum variant's exported constructor shape.
func (i *Iface) AddVariant(enumName, variant string, fields []ztype.Type) {
	i.Variants[variant] = &VariantExport{EnumName: enumName, Variant: variant, Fields: fields}
}

// AddType records an exported type name's generic arity.
func (i *Iface) AddType(name string, arity int) { i.Types[name] = arity }

// Finalize computes and stores the interface's deterministic digest,
// sorting every map before hashing so two builds of identical source
// produce byte-identical interfaces regardless of map iteration order.
func (i *Iface) Finalize() {
	i.Digest = computeDigest(i)
}

func computeDigest(i *Iface) string {
	var b strings.Builder
	fmt.Fprintf(&b, "module=%s\n", i.Module)

	names := make([]string, 0, len(i.Exports))
	for n := range i.Exports {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		e := i.Exports[n]
		fmt.Fprintf(&b, "export %s:%s:%v\n", e.Name, e.Type, e.Public)
	}

	variants := make([]string, 0, len(i.Variants))
	for v := range i.Variants {
		variants = append(variants, v)
	}
	sort.Strings(variants)
	for _, v := range variants {
		ve := i.Variants[v]
		fmt.Fprintf(&b, "variant %s.%s:%v\n", ve.EnumName, ve.Variant, ve.Fields)
	}

	types := make([]string, 0, len(i.Types))
	for t := range i.Types {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Fprintf(&b, "type %s:%d\n", t, i.Types[t])
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
