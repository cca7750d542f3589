package ziface

import (
	"testing"

	"github.com/zenlang/zen/internal/ztype"
)

func TestAddExportAndFinalize(t *testing.T) {
	i := New("math")
	i.AddExport("square", &ztype.Function{Args: []ztype.Type{ztype.TI32}, Return: ztype.TI32}, true)
	i.Finalize()

	exp, ok := i.Exports["square"]
	if !ok {
		t.Fatal(`Exports["square"] missing`)
	}
	if exp.Name != "square" || !exp.Public {
		t.Errorf("export = %+v, want Name=square Public=true", exp)
	}
	if i.Digest == "" {
		t.Error("Finalize() left Digest empty")
	}
}

func TestAddVariant(t *testing.T) {
	i := New("option")
	i.AddVariant("Option", "Some", []ztype.Type{ztype.TI32})
	i.AddVariant("Option", "None", nil)

	some, ok := i.Variants["Some"]
	if !ok {
		t.Fatal(`Variants["Some"] missing`)
	}
	if some.EnumName != "Option" || len(some.Fields) != 1 {
		t.Errorf("Some = %+v, want EnumName=Option, 1 field", some)
	}

	none, ok := i.Variants["None"]
	if !ok {
		t.Fatal(`Variants["None"] missing`)
	}
	if len(none.Fields) != 0 {
		t.Errorf("None.Fields = %v, want empty", none.Fields)
	}
}

func TestDigestDeterministic(t *testing.T) {
	build := func() *Iface {
		i := New("mod")
		i.AddExport("a", ztype.TI32, true)
		i.AddExport("b", ztype.TBool, true)
		i.AddVariant("E", "X", nil)
		i.AddVariant("E", "Y", []ztype.Type{ztype.TI64})
		i.AddType("T", 1)
		i.Finalize()
		return i
	}

	d1 := build().Digest
	d2 := build().Digest
	if d1 != d2 {
		t.Errorf("digests differ across identical builds: %s != %s", d1, d2)
	}
}

func TestDigestDiffersOnContent(t *testing.T) {
	i1 := New("mod")
	i1.AddExport("a", ztype.TI32, true)
	i1.Finalize()

	i2 := New("mod")
	i2.AddExport("a", ztype.TI64, true)
	i2.Finalize()

	if i1.Digest == i2.Digest {
		t.Error("digests should differ when export types differ")
	}
}

func TestAddType(t *testing.T) {
	i := New("mod")
	i.AddType("Box", 1)
	if arity, ok := i.Types["Box"]; !ok || arity != 1 {
		t.Errorf("Types[Box] = (%d, %v), want (1, true)", arity, ok)
	}
}
