// Package zast defines the Zen AST and declaration model (C1). Every
// later pass (C2-C7) consumes one Program and returns a new one. C2's
// qualified-reference rewrite and C3's comptime evaluation update the
// nodes of the tree they are given in place, so their input tree is
// modified as well.
package zast

import (
	"fmt"
	"strings"

	"github.com/zenlang/zen/internal/ztype"
)

// Pos is a source position. It carries no behavior of its own; it exists
// so diagnostics (§7) can point at a precise location.
type Pos struct {
	File   string
	Line   int
	Column int
}

func (p Pos) String() string { return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column) }

// Span is a start/end range, used for multi-line diagnostic underlines.
type Span struct {
	Start Pos
	End   Pos
}

// Node is the base of every AST node.
type Node interface {
	Position() Pos
}

// Expr is any expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is any statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Decl is any top-level declaration.
type Decl interface {
	Node
	declNode()
	DeclName() string
}

// Pattern is any pattern-matching node (§4.8).
type Pattern interface {
	Node
	patternNode()
}

// Program is a whole compilation unit after C2 has merged all imported
// modules' declarations into one flat list.
type Program struct {
	Decls []Decl
	Pos   Pos
}

func (p *Program) Position() Pos { return p.Pos }

// ---------------------------------------------------------------------
// Declarations
// ---------------------------------------------------------------------

// Param is a function/method parameter.
type Param struct {
	Name string
	Type ztype.Type
	Pos  Pos
}

// FuncDecl is a top-level or inherent/trait-impl function.
type FuncDecl struct {
	Name       string
	TypeParams []string
	Params     []Param
	Return     ztype.Type
	Body       Expr
	Pos        Pos
}

func (f *FuncDecl) Position() Pos  { return f.Pos }
func (f *FuncDecl) declNode()      {}
func (f *FuncDecl) DeclName() string { return f.Name }

// ExternalFuncDecl is an FFI declaration, possibly varargs.
type ExternalFuncDecl struct {
	Name    string
	Params  []Param
	Return  ztype.Type
	Varargs bool
	Pos     Pos
}

func (f *ExternalFuncDecl) Position() Pos    { return f.Pos }
func (f *ExternalFuncDecl) declNode()        {}
func (f *ExternalFuncDecl) DeclName() string { return f.Name }

// StructDecl declares a struct and its methods.
type StructDecl struct {
	Name       string
	TypeParams []string
	Fields     []ztype.Field
	Methods    []*FuncDecl
	Pos        Pos
}

func (s *StructDecl) Position() Pos    { return s.Pos }
func (s *StructDecl) declNode()        {}
func (s *StructDecl) DeclName() string { return s.Name }

// EnumDecl declares an enum, its methods, and any required traits it
// must implement (compile error if not satisfied, resolved via C6).
type EnumDecl struct {
	Name           string
	TypeParams     []string
	Variants       []ztype.Variant
	Methods        []*FuncDecl
	RequiredTraits []string
	Pos            Pos
}

func (e *EnumDecl) Position() Pos    { return e.Pos }
func (e *EnumDecl) declNode()        {}
func (e *EnumDecl) DeclName() string { return e.Name }

// MethodSig is a signature-only method, as declared inside a trait.
type MethodSig struct {
	Name   string
	Params []Param
	Return ztype.Type
	Pos    Pos
}

// TraitDecl (a.k.a. Behavior) declares a named set of method signatures.
type TraitDecl struct {
	Name       string
	TypeParams []string
	Methods    []MethodSig
	Pos        Pos
}

func (t *TraitDecl) Position() Pos    { return t.Pos }
func (t *TraitDecl) declNode()        {}
func (t *TraitDecl) DeclName() string { return t.Name }

// TraitImplDecl provides bodies for a specific (type, trait) pair.
type TraitImplDecl struct {
	TraitName string
	ForType   ztype.Type
	Methods   []*FuncDecl
	Pos       Pos
}

func (t *TraitImplDecl) Position() Pos { return t.Pos }
func (t *TraitImplDecl) declNode()     {}
func (t *TraitImplDecl) DeclName() string {
	return fmt.Sprintf("impl %s for %s", t.TraitName, t.ForType)
}

// TraitRequirementDecl records that ForType must implement TraitName
// (used by EnumDecl.RequiredTraits and standalone `requires` forms).
type TraitRequirementDecl struct {
	ForType   ztype.Type
	TraitName string
	Pos       Pos
}

func (t *TraitRequirementDecl) Position() Pos { return t.Pos }
func (t *TraitRequirementDecl) declNode()     {}
func (t *TraitRequirementDecl) DeclName() string {
	return fmt.Sprintf("requires %s: %s", t.ForType, t.TraitName)
}

// ImplBlockDecl is an inherent (non-trait) impl.
type ImplBlockDecl struct {
	ForType ztype.Type
	Methods []*FuncDecl
	Pos     Pos
}

func (i *ImplBlockDecl) Position() Pos    { return i.Pos }
func (i *ImplBlockDecl) declNode()        {}
func (i *ImplBlockDecl) DeclName() string { return fmt.Sprintf("impl %s", i.ForType) }

// ConstDecl is a top-level constant.
type ConstDecl struct {
	Name  string
	Type  ztype.Type // optional annotation; nil means infer
	Value Expr
	Pos   Pos
}

func (c *ConstDecl) Position() Pos    { return c.Pos }
func (c *ConstDecl) declNode()        {}
func (c *ConstDecl) DeclName() string { return c.Name }

// ModuleImportDecl is `import path as alias` (§4.2).
type ModuleImportDecl struct {
	Alias string
	Path  string
	Pos   Pos
}

func (m *ModuleImportDecl) Position() Pos    { return m.Pos }
func (m *ModuleImportDecl) declNode()        {}
func (m *ModuleImportDecl) DeclName() string { return m.Alias }

// TypeAliasDecl declares `type Name<Params> = Target`.
type TypeAliasDecl struct {
	Name       string
	TypeParams []string
	Target     ztype.Type
	Pos        Pos
}

func (t *TypeAliasDecl) Position() Pos    { return t.Pos }
func (t *TypeAliasDecl) declNode()        {}
func (t *TypeAliasDecl) DeclName() string { return t.Name }

// ComptimeBlockDecl is a top-level `comptime { stmts }` that may emit
// generated declarations (appended to the program by C3).
type ComptimeBlockDecl struct {
	Stmts []Stmt
	Pos   Pos
}

func (c *ComptimeBlockDecl) Position() Pos    { return c.Pos }
func (c *ComptimeBlockDecl) declNode()        {}
func (c *ComptimeBlockDecl) DeclName() string { return "comptime" }

// ---------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------

// Identifier is a variable, function, struct/enum constructor, or
// module-alias reference, disambiguated by C5 at check time.
type Identifier struct {
	Name string
	Pos  Pos
}

func (i *Identifier) Position() Pos { return i.Pos }
func (i *Identifier) exprNode()     {}
func (i *Identifier) patternNode()  {}

// LiteralKind enumerates literal forms; untyped until C5 assigns a
// default type (integer->I32, float->F64, string->StaticString,
// bool->Bool) or an annotation pins one explicitly.
type LiteralKind int

const (
	IntLit LiteralKind = iota
	FloatLit
	StringLit
	BoolLit
)

type Literal struct {
	Kind  LiteralKind
	Value interface{}
	Pos   Pos
}

func (l *Literal) Position() Pos { return l.Pos }
func (l *Literal) exprNode()     {}
func (l *Literal) patternNode()  {}
func (l *Literal) String() string {
	return fmt.Sprintf("%v", l.Value)
}

// BinaryOp is a binary expression; Op is one of the surface operators
// (+ - * / % == != < <= > >= && || ++ & | ^ << >>).
type BinaryOp struct {
	Left  Expr
	Op    string
	Right Expr
	Pos   Pos
}

func (b *BinaryOp) Position() Pos { return b.Pos }
func (b *BinaryOp) exprNode()     {}

// UnaryOp is a unary expression (- ! ~).
type UnaryOp struct {
	Op   string
	Expr Expr
	Pos  Pos
}

func (u *UnaryOp) Position() Pos { return u.Pos }
func (u *UnaryOp) exprNode()     {}

// Call is a function call `f(args)`, possibly with explicit type
// arguments (`HashMap.new<K,V>()`).
type Call struct {
	Func           Expr
	Args           []Expr
	ExplicitTyArgs []ztype.Type
	Pos            Pos
}

func (c *Call) Position() Pos { return c.Pos }
func (c *Call) exprNode()     {}

// MethodCall is `obj.m(args)`, resolved by C5/C6 to UFC, inherent, or
// trait-provided method per §4.5.
type MethodCall struct {
	Receiver Expr
	Method   string
	Args     []Expr
	Pos      Pos
}

func (m *MethodCall) Position() Pos { return m.Pos }
func (m *MethodCall) exprNode()     {}

// MemberAccess is `recv.field`.
type MemberAccess struct {
	Receiver Expr
	Field    string
	Pos      Pos
}

func (m *MemberAccess) Position() Pos { return m.Pos }
func (m *MemberAccess) exprNode()     {}

// Block is `{ stmts; trailing }`. Its type is the trailing expression's
// type, or Void if there is none.
type Block struct {
	Stmts    []Stmt
	Trailing Expr // nil => Void
	Pos      Pos
}

func (b *Block) Position() Pos { return b.Pos }
func (b *Block) exprNode()     {}

// If is a conditional expression.
type If struct {
	Cond Expr
	Then Expr
	Else Expr // nil for a statement-only if
	Pos  Pos
}

func (i *If) Position() Pos { return i.Pos }
func (i *If) exprNode()     {}

// Case is one arm of a Match.
type Case struct {
	Pattern Pattern
	Body    Expr
	Pos     Pos
}

// Match is `scrutinee ? arm1, arm2, ...` pattern matching.
type Match struct {
	Scrutinee Expr
	Cases     []Case
	Pos       Pos
}

func (m *Match) Position() Pos { return m.Pos }
func (m *Match) exprNode()     {}

// EnumLiteral is `.Variant(payload?)`; when context expects Option or
// Result it produces the matching generic, else the enum registry is
// searched for a matching variant name (§4.5).
type EnumLiteral struct {
	Variant string
	Payload Expr // nil for a unit variant
	Pos     Pos
}

func (e *EnumLiteral) Position() Pos { return e.Pos }
func (e *EnumLiteral) exprNode()     {}

// StructLiteral constructs a struct value.
type StructLiteral struct {
	Name   string
	Fields []FieldInit
	Pos    Pos
}

type FieldInit struct {
	Name  string
	Value Expr
}

func (s *StructLiteral) Position() Pos { return s.Pos }
func (s *StructLiteral) exprNode()     {}

// RangeExpr is `start..end` or `start..=end`.
type RangeExpr struct {
	Start, End Expr
	Inclusive  bool
	Pos        Pos
}

func (r *RangeExpr) Position() Pos { return r.Pos }
func (r *RangeExpr) exprNode()     {}

// ComptimeExpr wraps `comptime(expr)`, replaced with a literal AST node
// by C3 once evaluated.
type ComptimeExpr struct {
	Inner Expr
	Pos   Pos
}

func (c *ComptimeExpr) Position() Pos { return c.Pos }
func (c *ComptimeExpr) exprNode()     {}

// SelfExpr is the `Self` type reference used inside trait-impl method
// signatures prior to C4 rewriting it to a tagged Generic.
type SelfExpr struct {
	Pos Pos
}

func (s *SelfExpr) Position() Pos { return s.Pos }
func (s *SelfExpr) exprNode()     {}

// ---------------------------------------------------------------------
// Patterns (§4.8)
// ---------------------------------------------------------------------

// WildcardPattern matches anything and binds nothing (`_`).
type WildcardPattern struct{ Pos Pos }

func (w *WildcardPattern) Position() Pos { return w.Pos }
func (w *WildcardPattern) patternNode()  {}

// RangePattern matches `a..b` or `a..=b`.
type RangePattern struct {
	Start, End Expr
	Inclusive  bool
	Pos        Pos
}

func (r *RangePattern) Position() Pos { return r.Pos }
func (r *RangePattern) patternNode()  {}

// OrPattern matches if any sub-pattern matches; bindings are disallowed
// inside an Or per §4.8 and rejected by the checker/lowerer.
type OrPattern struct {
	Alternatives []Pattern
	Pos          Pos
}

func (o *OrPattern) Position() Pos { return o.Pos }
func (o *OrPattern) patternNode()  {}

// BindingPattern binds `name` to the whole matched value in addition to
// matching `Inner`.
type BindingPattern struct {
	Name  string
	Inner Pattern
	Pos   Pos
}

func (b *BindingPattern) Position() Pos { return b.Pos }
func (b *BindingPattern) patternNode()  {}

// TypePattern matches a nominal type, optionally binding the value.
// §4.8/§9: matching is currently always true (open TODO); only the
// binding half is load-bearing today.
type TypePattern struct {
	TypeName string
	Binding  string // "" if no binding
	Pos      Pos
}

func (t *TypePattern) Position() Pos { return t.Pos }
func (t *TypePattern) patternNode()  {}

// GuardPattern matches `Inner` and requires `Cond` to evaluate true with
// Inner's bindings in scope.
type GuardPattern struct {
	Inner Pattern
	Cond  Expr
	Pos   Pos
}

func (g *GuardPattern) Position() Pos { return g.Pos }
func (g *GuardPattern) patternNode()  {}

// EnumVariantPattern matches `Enum::Variant(payload?)` against a known
// enum type.
type EnumVariantPattern struct {
	Enum    string
	Variant string
	Payload Pattern // nil for a unit variant
	Pos     Pos
}

func (e *EnumVariantPattern) Position() Pos { return e.Pos }
func (e *EnumVariantPattern) patternNode()  {}

// EnumLiteralPattern matches `.Variant(payload?)` against whichever
// registered enum contains that variant name (resolved at check time).
type EnumLiteralPattern struct {
	Variant string
	Payload Pattern
	Pos     Pos
}

func (e *EnumLiteralPattern) Position() Pos { return e.Pos }
func (e *EnumLiteralPattern) patternNode()  {}

// StructPattern is recognized syntactically but not lowered (§4.8, §9):
// the checker and lowerer reject it with StructPatternUnsupported.
type StructPattern struct {
	TypeName string
	Fields   []FieldPattern
	Pos      Pos
}

type FieldPattern struct {
	Name    string
	Pattern Pattern
}

func (s *StructPattern) Position() Pos { return s.Pos }
func (s *StructPattern) patternNode()  {}

// ---------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------

// ExprStmt is a bare expression used for its side effect.
type ExprStmt struct {
	Expr Expr
	Pos  Pos
}

func (e *ExprStmt) Position() Pos { return e.Pos }
func (e *ExprStmt) stmtNode()     {}

// LetStmt introduces a binding. Mutable reflects `::=`/`::T=` syntax;
// Value may be nil for a forward declaration (`x: T` with no `=`),
// which may be initialized exactly once later via an AssignStmt.
type LetStmt struct {
	Name    string
	Type    ztype.Type // nil => infer from Value
	Mutable bool
	Value   Expr // nil => forward declaration
	Pos     Pos
}

func (l *LetStmt) Position() Pos { return l.Pos }
func (l *LetStmt) stmtNode()     {}

// AssignStmt is `target = value`, either the one-time initialization of
// an immutable forward-decl or a reassignment of a mutable binding.
type AssignStmt struct {
	Target Expr
	Value  Expr
	Pos    Pos
}

func (a *AssignStmt) Position() Pos { return a.Pos }
func (a *AssignStmt) stmtNode()     {}

// ReturnStmt returns from the enclosing function.
type ReturnStmt struct {
	Value Expr // nil => void return
	Pos   Pos
}

func (r *ReturnStmt) Position() Pos { return r.Pos }
func (r *ReturnStmt) stmtNode()     {}

// DeferStmt is `@this.defer(expr)`; codegen pushes Expr onto the LIFO
// defer stack (§4.9) to be run before every `return` in the enclosing
// function.
type DeferStmt struct {
	Expr Expr
	Pos  Pos
}

func (d *DeferStmt) Position() Pos { return d.Pos }
func (d *DeferStmt) stmtNode()     {}

// BreakStmt / ContinueStmt target the innermost enclosing loop.
type BreakStmt struct{ Pos Pos }

func (b *BreakStmt) Position() Pos { return b.Pos }
func (b *BreakStmt) stmtNode()     {}

type ContinueStmt struct{ Pos Pos }

func (c *ContinueStmt) Position() Pos { return c.Pos }
func (c *ContinueStmt) stmtNode()     {}

// Display renders canonical surface syntax for a Param list; shared by
// diagnostics and name-mangling helpers elsewhere.
func ParamsString(params []Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		if p.Type != nil {
			parts[i] = fmt.Sprintf("%s: %s", p.Name, p.Type)
		} else {
			parts[i] = p.Name
		}
	}
	return strings.Join(parts, ", ")
}
