// Package zerrors defines the Zen compiler's structured error taxonomy
// (§7) and the Report type every stage returns on first failure.
package zerrors

// Error codes grouped by the pipeline phase that raises them (§7).
const (
	// Syntax / parse (out of scope to emit, but the taxonomy still
	// reserves the range for the external parser's FileNotFound/
	// ParseError reports to round-trip through this package).
	ParseError   = "PAR001"
	FileNotFound = "PAR002"

	// C2 module resolver
	ModuleNotFound    = "MOD001"
	ModuleCyclic      = "MOD002" // non-fatal, guarded by the loaded set
	ModuleDuplicate   = "MOD003"
	ModuleBadImport   = "MOD004"

	// C3 comptime evaluator
	ComptimeImportForbidden = "CMT001" // P8
	ComptimeNotConst        = "CMT002"
	ComptimeTypeUnsupported = "CMT003"

	// C5 type checker
	TypeMismatch           = "TC001"
	UndeclaredVariable     = "TC002"
	UndeclaredFunction     = "TC003"
	ImmutabilityViolation  = "TC004" // P5
	DuplicateDeclaration   = "TC005"
	ReinitializedBinding   = "TC006"
	UnknownTraitMethod     = "TC007"
	NonExhaustiveMatch     = "TC008" // advisory at LSP layer, P7

	// C6 behavior/trait resolver
	UnknownTrait            = "BEH001"
	DuplicateImplementation = "BEH002"
	MissingRequiredMethod   = "BEH003"
	IncompatibleMethodSig   = "BEH004"

	// C7 monomorphizer
	UnresolvedTypeParam  = "MONO001" // falls back to I32 (§9 open question)
	UnknownGenericTarget = "MONO002"

	// C8 pattern-match lowerer
	StructPatternUnsupported = "PAT001" // §9 open TODO
	OrPatternBindingDisallowed = "PAT002"
	NonExhaustiveLowering    = "PAT003"

	// C9 codegen / internal
	InternalError     = "INT001" // LLVM verifier rejection, invariant violation
	UnsupportedFeature = "UNS001"
)

// ErrorInfo documents one error code for tooling (mirrors the teacher's
// ErrorRegistry so external diagnostics consumers can render a
// consistent taxonomy).
type ErrorInfo struct {
	Code        string
	Phase       string
	Description string
}

// Registry maps every code above to descriptive metadata.
var Registry = map[string]ErrorInfo{
	ParseError:   {ParseError, "parser", "Parse error propagated from the surface parser"},
	FileNotFound: {FileNotFound, "parser", "Input or module file missing"},

	ModuleNotFound:  {ModuleNotFound, "module", "Module not found on any search path"},
	ModuleCyclic:    {ModuleCyclic, "module", "Cyclic import detected (non-fatal)"},
	ModuleDuplicate: {ModuleDuplicate, "module", "Declaration name collides across merged modules"},
	ModuleBadImport: {ModuleBadImport, "module", "Malformed import path"},

	ComptimeImportForbidden: {ComptimeImportForbidden, "comptime", "Import-like construct inside comptime block"},
	ComptimeNotConst:        {ComptimeNotConst, "comptime", "Expression is not compile-time constant"},
	ComptimeTypeUnsupported: {ComptimeTypeUnsupported, "comptime", "Unsupported type in comptime evaluation"},

	TypeMismatch:          {TypeMismatch, "typecheck", "Type mismatch"},
	UndeclaredVariable:    {UndeclaredVariable, "typecheck", "Undeclared variable"},
	UndeclaredFunction:    {UndeclaredFunction, "typecheck", "Undeclared function"},
	ImmutabilityViolation: {ImmutabilityViolation, "typecheck", "Assignment to immutable binding"},
	DuplicateDeclaration:  {DuplicateDeclaration, "typecheck", "Duplicate declaration at module scope"},
	ReinitializedBinding:  {ReinitializedBinding, "typecheck", "Forward-declared immutable binding initialized twice"},
	UnknownTraitMethod:    {UnknownTraitMethod, "typecheck", "No method resolves for receiver type"},
	NonExhaustiveMatch:    {NonExhaustiveMatch, "typecheck", "Match is not exhaustive (advisory)"},

	UnknownTrait:            {UnknownTrait, "behavior", "Implementation references an unknown trait"},
	DuplicateImplementation: {DuplicateImplementation, "behavior", "Duplicate (type, trait) implementation"},
	MissingRequiredMethod:   {MissingRequiredMethod, "behavior", "Trait implementation missing a required method"},
	IncompatibleMethodSig:   {IncompatibleMethodSig, "behavior", "Implementation method signature incompatible with trait"},

	UnresolvedTypeParam:  {UnresolvedTypeParam, "monomorphize", "Type parameter never pinned by an argument, defaulted to i32"},
	UnknownGenericTarget: {UnknownGenericTarget, "monomorphize", "Instantiation references an unregistered generic template"},

	StructPatternUnsupported:   {StructPatternUnsupported, "pattern", "Struct patterns are not yet implemented"},
	OrPatternBindingDisallowed: {OrPatternBindingDisallowed, "pattern", "Or-patterns may not bind names"},
	NonExhaustiveLowering:      {NonExhaustiveLowering, "pattern", "No arm matched at runtime"},

	InternalError:      {InternalError, "codegen", "Internal compiler invariant violated"},
	UnsupportedFeature: {UnsupportedFeature, "codegen", "Syntactically valid construct not yet implemented"},
}

// Lookup returns the registered info for a code, or ok=false.
func Lookup(code string) (ErrorInfo, bool) {
	info, ok := Registry[code]
	return info, ok
}
