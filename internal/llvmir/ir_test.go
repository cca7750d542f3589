package llvmir

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderEmitsTerminatedBlockAndRetValidates(t *testing.T) {
	m := NewModule("test")
	fn := m.DeclareFunction("main", "i32", nil)
	b := NewBuilder(fn)
	b.Ret(ConstInt("i32", 42))

	require.NoError(t, m.Verify())
	ir := m.Render()
	assert.Contains(t, ir, "define i32 @main()")
	assert.Contains(t, ir, "ret i32 42")
}

func TestVerifyRejectsUnterminatedBlock(t *testing.T) {
	m := NewModule("test")
	fn := m.DeclareFunction("f", "void", nil)
	NewBuilder(fn) // entry block created, never terminated

	err := m.Verify()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "no terminator"))
}

func TestCondBrAndPhiMergeTwoBranches(t *testing.T) {
	m := NewModule("test")
	fn := m.DeclareFunction("pick", "i32", []Param{{Name: "cond", Type: "i1"}})
	b := NewBuilder(fn)

	thenBlk := b.NewBlock("then")
	elseBlk := b.NewBlock("else")
	mergeBlk := b.NewBlock("merge")

	b.CondBr(Value{Text: "%cond", Type: "i1"}, thenBlk, elseBlk)

	b.SetBlock(thenBlk)
	b.Br(mergeBlk)

	b.SetBlock(elseBlk)
	b.Br(mergeBlk)

	b.SetBlock(mergeBlk)
	phi := b.Phi("i32", []PhiIncoming{
		{Value: ConstInt("i32", 1), Block: thenBlk},
		{Value: ConstInt("i32", 0), Block: elseBlk},
	})
	b.Ret(phi)

	require.NoError(t, m.Verify())
	ir := m.Render()
	assert.Contains(t, ir, "phi i32")
}

func TestDeclareExternalRendersDeclaration(t *testing.T) {
	m := NewModule("test")
	m.DeclareExternal("printf", "i32", []Param{{Name: "fmt", Type: "ptr"}}, true)
	ir := m.Render()
	assert.Contains(t, ir, "declare i32 @printf(ptr %fmt, ...)")
}
