package codegen

import "github.com/zenlang/zen/internal/ztype"

// llvmType renders t's LLVM lowering per the §4.9/§6 IR contract: every
// enum value (Option/Result/custom) is the two-field aggregate
// `{i64, ptr}`; everything indirect (structs, strings, pointers,
// function values) is `ptr` at the value level, with the pointee shape
// tracked separately by the caller when it needs to GEP into it.
func llvmType(t ztype.Type) string {
	switch typ := t.(type) {
	case *ztype.Primitive:
		return primitiveLLVMType(typ)
	case *ztype.StringType:
		return "ptr"
	case *ztype.Ptr, *ztype.Ref, *ztype.Array, *ztype.FixedArray, *ztype.Vec, *ztype.DynVec:
		return "ptr"
	case *ztype.Struct:
		return "ptr"
	case *ztype.Enum:
		return enumAggregateType
	case *ztype.Generic:
		if ztype.IsOption(typ) || ztype.IsResult(typ) {
			return enumAggregateType
		}
		return enumAggregateType // a bare type parameter never reaches codegen post-C7; treat as the enum shape it most likely resolves to for user enums
	case *ztype.Function, *ztype.FunctionPointer:
		return "ptr"
	default:
		return "ptr"
	}
}

func primitiveLLVMType(p *ztype.Primitive) string {
	switch p.Kind {
	case ztype.I8, ztype.U8:
		return "i8"
	case ztype.I16, ztype.U16:
		return "i16"
	case ztype.I32, ztype.U32:
		return "i32"
	case ztype.I64, ztype.U64, ztype.Usize:
		return "i64"
	case ztype.F32:
		return "float"
	case ztype.F64:
		return "double"
	case ztype.Bool:
		return "i1"
	default:
		return "void"
	}
}

// enumAggregateType is the literal anonymous LLVM struct type every
// enum value lowers to (§4.8's representation convention): a tag plus
// an opaque payload pointer, null for unit variants.
const enumAggregateType = "{i64, ptr}"
