package ziface

import (
	"github.com/zenlang/zen/internal/zast"
	"github.com/zenlang/zen/internal/ztype"
)

// Build walks a resolved, checked program's top-level declarations and
// produces its Iface. Zen's AST carries no visibility modifier (§1:
// parsing/surface syntax for `pub`-style keywords is out of scope), so
// every top-level declaration is treated as exported, mirroring how C2
// already merges whole modules rather than filtering by visibility.
func Build(module string, prog *zast.Program) *Iface {
	i := New(module)
	for _, d := range prog.Decls {
		switch decl := d.(type) {
		case *zast.FuncDecl:
			i.AddExport(decl.Name, funcType(decl), true)
		case *zast.ExternalFuncDecl:
			i.AddExport(decl.Name, funcType(&zast.FuncDecl{Params: decl.Params, Return: decl.Return}), true)
		case *zast.StructDecl:
			i.AddType(decl.Name, len(decl.TypeParams))
		case *zast.EnumDecl:
			i.AddType(decl.Name, len(decl.TypeParams))
			for _, v := range decl.Variants {
				var fields []ztype.Type
				if v.Payload != nil {
					fields = []ztype.Type{v.Payload}
				}
				i.AddVariant(decl.Name, v.Name, fields)
			}
		}
	}
	i.Finalize()
	return i
}

func funcType(f *zast.FuncDecl) ztype.Type {
	args := make([]ztype.Type, len(f.Params))
	for idx, p := range f.Params {
		args[idx] = p.Type
	}
	return &ztype.Function{Args: args, Return: f.Return}
}
