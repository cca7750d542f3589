// Package llvmir is a small, self-contained textual LLVM-IR builder.
// It stands in for a real LLVM binding: constructing actual `.ll` text
// covers the contract C9 (§4.9) must honor — structured block/phi
// emission, the two-field enum aggregate layout, a verifier pass —
// without requiring a cgo-linked LLVM library. No example in this
// module's retrieval pack imports a working pure-Go LLVM binding (one
// reference manifest lists github.com/llir/llvm as an indirect
// dependency of an unrelated tool, never as a complete repo's own
// code), so this package is hand-rolled on top of the standard
// library's strings/fmt rather than grounded on a third-party
// dependency; see DESIGN.md.
//
// Grounded in shape on the teacher's internal/runtime/runtime.go
// "owns stacks" object idiom: each Function owns its block list and
// monotonic register/block counters, and a Builder holds the current
// function and block, mirroring how ModuleRuntime owns its
// loader/evaluator/visiting stacks.
package llvmir

import (
	"fmt"
	"strings"
)

// Value is a reference to an SSA register or constant, tagged with its
// LLVM type string.
type Value struct {
	Text string // "%7", "@main", "42", "null", ...
	Type string // "i32", "ptr", "{i64, ptr}", ...
}

func (v Value) String() string { return v.Text }

// Block is one basic block: a label and its ordered instructions.
type Block struct {
	Label        string
	Instructions []string
	terminated   bool
}

func (b *Block) emit(instr string) { b.Instructions = append(b.Instructions, "  "+instr) }

// Terminated reports whether this block already ends in a br/ret, so
// callers (codegen's fallthrough-return logic) know whether emitting
// another terminator would produce two in one block.
func (b *Block) Terminated() bool { return b.terminated }

// Render produces this block's `.ll` text, including its label line.
func (b *Block) Render() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s:\n", b.Label)
	for _, ins := range b.Instructions {
		sb.WriteString(ins)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Param is one function parameter's name and LLVM type.
type Param struct {
	Name string
	Type string
}

// Function owns its blocks and the counters that name new blocks and
// registers; one Function exists per Zen function being lowered.
type Function struct {
	Name       string
	Params     []Param
	ReturnType string
	Blocks     []*Block
	External   bool
	Varargs    bool

	regCount   int
	blockCount int
}

func (f *Function) newReg() string {
	f.regCount++
	return fmt.Sprintf("%%r%d", f.regCount)
}

// NewBlock appends and returns a fresh block with a unique label.
func (f *Function) NewBlock(hint string) *Block {
	f.blockCount++
	b := &Block{Label: fmt.Sprintf("%s.%d", hint, f.blockCount)}
	f.Blocks = append(f.Blocks, b)
	return b
}

// Render produces the function's `.ll` definition (or declaration for
// an External function).
func (f *Function) Render() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = fmt.Sprintf("%s %%%s", p.Type, p.Name)
	}
	sig := strings.Join(params, ", ")
	if f.Varargs {
		if sig != "" {
			sig += ", "
		}
		sig += "..."
	}
	if f.External {
		return fmt.Sprintf("declare %s @%s(%s)\n", f.ReturnType, f.Name, sig)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "define %s @%s(%s) {\n", f.ReturnType, f.Name, sig)
	for _, b := range f.Blocks {
		sb.WriteString(b.Render())
	}
	sb.WriteString("}\n")
	return sb.String()
}

// Module owns every function and global this compilation unit emits.
type Module struct {
	Name      string
	Functions []*Function
	Globals   []string
}

// NewModule returns an empty module named name.
func NewModule(name string) *Module { return &Module{Name: name} }

// DeclareFunction adds and returns a new (definable) Function.
func (m *Module) DeclareFunction(name, retType string, params []Param) *Function {
	f := &Function{Name: name, ReturnType: retType, Params: params}
	m.Functions = append(m.Functions, f)
	return f
}

// DeclareExternal registers an FFI declaration, no body.
func (m *Module) DeclareExternal(name, retType string, params []Param, varargs bool) *Function {
	f := &Function{Name: name, ReturnType: retType, Params: params, External: true, Varargs: varargs}
	m.Functions = append(m.Functions, f)
	return f
}

// Render produces the full module's `.ll` text.
func (m *Module) Render() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "; ModuleID = '%s'\n\n", m.Name)
	for _, g := range m.Globals {
		sb.WriteString(g)
		sb.WriteByte('\n')
	}
	if len(m.Globals) > 0 {
		sb.WriteByte('\n')
	}
	for _, f := range m.Functions {
		sb.WriteString(f.Render())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Verify performs the structural checks a real LLVM verifier pass would
// reject a miscompiled module on (§4.9's "runs LLVM's verifier after
// emission"): every non-external function has at least one block, and
// every block's last instruction is a terminator (ret/br).
func (m *Module) Verify() error {
	for _, f := range m.Functions {
		if f.External {
			continue
		}
		if len(f.Blocks) == 0 {
			return fmt.Errorf("llvmir: function %q has no basic blocks", f.Name)
		}
		for _, b := range f.Blocks {
			if !b.terminated {
				return fmt.Errorf("llvmir: function %q block %q has no terminator", f.Name, b.Label)
			}
		}
	}
	return nil
}
