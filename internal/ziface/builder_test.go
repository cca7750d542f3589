package ziface

import (
	"testing"

	"github.com/zenlang/zen/internal/zast"
	"github.com/zenlang/zen/internal/ztype"
)

func TestBuildExportsEverything(t *testing.T) {
	prog := &zast.Program{
		Decls: []zast.Decl{
			&zast.FuncDecl{
				Name:   "add",
				Params: []zast.Param{{Name: "a", Type: ztype.TI32}, {Name: "b", Type: ztype.TI32}},
				Return: ztype.TI32,
			},
			&zast.ExternalFuncDecl{
				Name:   "puts",
				Params: []zast.Param{{Name: "s", Type: ztype.TI32}},
				Return: ztype.TI32,
			},
			&zast.StructDecl{
				Name:   "Point",
				Fields: []ztype.Field{{Name: "x", Type: ztype.TI32}, {Name: "y", Type: ztype.TI32}},
			},
			&zast.EnumDecl{
				Name: "Option",
				TypeParams: []string{"T"},
				Variants: []ztype.Variant{
					{Name: "Some", Payload: ztype.TI32},
					{Name: "None"},
				},
			},
		},
	}

	iface := Build("example", prog)

	if _, ok := iface.Exports["add"]; !ok {
		t.Error(`Exports["add"] missing`)
	}
	if _, ok := iface.Exports["puts"]; !ok {
		t.Error(`Exports["puts"] missing — ExternalFuncDecl should be exported too`)
	}
	if arity, ok := iface.Types["Point"]; !ok || arity != 0 {
		t.Errorf("Types[Point] = (%d, %v), want (0, true)", arity, ok)
	}
	if arity, ok := iface.Types["Option"]; !ok || arity != 1 {
		t.Errorf("Types[Option] = (%d, %v), want (1, true)", arity, ok)
	}
	some, ok := iface.Variants["Some"]
	if !ok || len(some.Fields) != 1 {
		t.Fatalf("Variants[Some] = %+v, ok=%v, want 1 field", some, ok)
	}
	none, ok := iface.Variants["None"]
	if !ok || len(none.Fields) != 0 {
		t.Fatalf("Variants[None] = %+v, ok=%v, want 0 fields", none, ok)
	}
	if iface.Digest == "" {
		t.Error("Build() did not finalize a digest")
	}
	if iface.Module != "example" {
		t.Errorf("Module = %q, want %q", iface.Module, "example")
	}
}

func TestBuildEmptyProgram(t *testing.T) {
	iface := Build("empty", &zast.Program{})
	if len(iface.Exports) != 0 || len(iface.Types) != 0 || len(iface.Variants) != 0 {
		t.Errorf("expected empty iface, got %+v", iface)
	}
	if iface.Digest == "" {
		t.Error("Build() did not finalize a digest even for an empty program")
	}
}
