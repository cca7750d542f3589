package zmodule

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenlang/zen/internal/zast"
)

// fakeParser maps file paths to pre-built Programs, standing in for the
// out-of-scope surface parser (§1).
type fakeParser struct {
	byPath map[string]*zast.Program
}

func (f *fakeParser) ParseFile(path string) (*zast.Program, error) {
	if p, ok := f.byPath[path]; ok {
		return p, nil
	}
	return &zast.Program{}, nil
}

func writeZen(t *testing.T, dir, rel string) {
	t.Helper()
	full := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte("// stub"), 0o644))
}

func TestResolveMergesSingleModule(t *testing.T) {
	dir := t.TempDir()
	writeZen(t, dir, "greet.zen")
	greetPath := filepath.Join(dir, "greet.zen")

	greetDecl := &zast.FuncDecl{Name: "hello", Body: &zast.Literal{Kind: zast.IntLit, Value: 1}}
	parser := &fakeParser{byPath: map[string]*zast.Program{
		greetPath: {Decls: []zast.Decl{greetDecl}},
	}}

	r := NewResolver(parser)
	r.searchPaths = []string{dir}

	root := &zast.Program{Decls: []zast.Decl{
		&zast.ModuleImportDecl{Alias: "greet", Path: "greet"},
		&zast.FuncDecl{Name: "main", Body: &zast.MemberAccess{
			Receiver: &zast.Identifier{Name: "greet"},
			Field:    "hello",
		}},
	}}

	merged, err := r.Resolve(root)
	require.NoError(t, err)
	require.Len(t, merged.Decls, 2)

	main := merged.Decls[1].(*zast.FuncDecl)
	ident, ok := main.Body.(*zast.Identifier)
	require.True(t, ok, "qualified reference should be rewritten to a bare identifier")
	assert.Equal(t, "hello", ident.Name)
}

func TestResolveBuiltinStdPathIsEmpty(t *testing.T) {
	dir := t.TempDir()
	parser := &fakeParser{byPath: map[string]*zast.Program{}}
	r := NewResolver(parser)
	r.searchPaths = []string{dir}

	root := &zast.Program{Decls: []zast.Decl{
		&zast.ModuleImportDecl{Alias: "std", Path: "std.io"},
		&zast.FuncDecl{Name: "main"},
	}}

	merged, err := r.Resolve(root)
	require.NoError(t, err)
	assert.Len(t, merged.Decls, 1, "std.* imports contribute no declarations")
}

func TestResolveModuleNotFound(t *testing.T) {
	dir := t.TempDir()
	parser := &fakeParser{byPath: map[string]*zast.Program{}}
	r := NewResolver(parser)
	r.searchPaths = []string{dir}

	root := &zast.Program{Decls: []zast.Decl{
		&zast.ModuleImportDecl{Alias: "missing", Path: "does.not.exist"},
	}}

	_, err := r.Resolve(root)
	require.Error(t, err)
}

func TestResolveCyclicImportNonFatal(t *testing.T) {
	dir := t.TempDir()
	writeZen(t, dir, "a.zen")
	writeZen(t, dir, "b.zen")
	aPath := filepath.Join(dir, "a.zen")
	bPath := filepath.Join(dir, "b.zen")

	parser := &fakeParser{byPath: map[string]*zast.Program{
		aPath: {Decls: []zast.Decl{
			&zast.ModuleImportDecl{Alias: "b", Path: "b"},
			&zast.FuncDecl{Name: "fromA"},
		}},
		bPath: {Decls: []zast.Decl{
			&zast.ModuleImportDecl{Alias: "a", Path: "a"},
			&zast.FuncDecl{Name: "fromB"},
		}},
	}}

	r := NewResolver(parser)
	r.searchPaths = []string{dir}

	root := &zast.Program{Decls: []zast.Decl{
		&zast.ModuleImportDecl{Alias: "a", Path: "a"},
	}}

	merged, err := r.Resolve(root)
	require.NoError(t, err, "cycles must be non-fatal, guarded by the loaded set")
	names := map[string]bool{}
	for _, d := range merged.Decls {
		names[d.DeclName()] = true
	}
	assert.True(t, names["fromA"])
	assert.True(t, names["fromB"])
}
