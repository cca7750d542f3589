// Package dtree implements the pattern-match lowerer's decision-tree
// compilation (C8). It has no LLVM dependency of its own: it reduces a
// set of match arms to a Tree of Switch/Leaf/Fail nodes plus, per leaf,
// a Plan describing exactly which payload types must be loaded and
// which names get bound. Codegen (C9) walks each arm's Plan in order to
// emit the actual loads/phis; it does not consume the Tree.
//
// Grounded on the teacher's internal/dtree/decision_tree.go matrix
// compiler (column-based specialization over core.CorePattern),
// generalized from the teacher's Core IR constructor patterns to Zen's
// surface Pattern forms and enriched with the generic-type context the
// teacher's algorithm never needed (its Core IR has no Option/Result
// nesting to track).
package dtree

import "github.com/zenlang/zen/internal/ztype"

// Context is the generic-type context: a scope-stacked map from
// symbolic key to Type, used to carry an enclosing Option/Result's
// concrete type arguments down into nested payload extraction.
type Context struct {
	scopes []map[string]ztype.Type
}

// NewContext returns a context with one (root) scope.
func NewContext() *Context {
	return &Context{scopes: []map[string]ztype.Type{{}}}
}

// Push enters a nested scope (one per descent into a payload pattern),
// so nested matches don't leak tracked keys into sibling arms.
func (c *Context) Push() { c.scopes = append(c.scopes, map[string]ztype.Type{}) }

// Pop leaves the current nested scope.
func (c *Context) Pop() { c.scopes = c.scopes[:len(c.scopes)-1] }

// Set records key -> t in the current scope.
func (c *Context) Set(key string, t ztype.Type) {
	c.scopes[len(c.scopes)-1][key] = t
}

// Get looks up key, walking outward from the innermost scope.
func (c *Context) Get(key string) (ztype.Type, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if t, ok := c.scopes[i][key]; ok {
			return t, true
		}
	}
	return nil, false
}

// Immediate key names (§4.8): the binding used by the innermost load.
const (
	OptionSomeKey = "Option_Some_Type"
	ResultOkKey   = "Result_Ok_Type"
	ResultErrKey  = "Result_Err_Type"
)

// NestedKey builds the pre-descent key for one level of nesting, e.g.
// NestedKey("Option_Some") = "Nested_Option_Some_Type", and repeated
// nesting concatenates the path: NestedKey("Result_Ok_Result_Ok") =
// "Nested_Result_Ok_Result_Ok_Type" for the Ok payload of an Ok payload.
func NestedKey(base string) string { return "Nested_" + base + "_Type" }

// PopulateNested walks t's Option/Result structure (as deep as it
// statically nests) and records every Nested_* key a descent through
// it will need, per §4.8's "pre-populated before descending" rule.
func PopulateNested(ctx *Context, t ztype.Type, prefix string) {
	g, ok := t.(*ztype.Generic)
	if !ok {
		return
	}
	switch g.Name {
	case "Option":
		if len(g.TypeArgs) != 1 {
			return
		}
		key := joinKey(prefix, "Option_Some")
		ctx.Set(NestedKey(key), g.TypeArgs[0])
		PopulateNested(ctx, g.TypeArgs[0], key)
	case "Result":
		if len(g.TypeArgs) != 2 {
			return
		}
		okKey := joinKey(prefix, "Result_Ok")
		errKey := joinKey(prefix, "Result_Err")
		ctx.Set(NestedKey(okKey), g.TypeArgs[0])
		ctx.Set(NestedKey(errKey), g.TypeArgs[1])
		PopulateNested(ctx, g.TypeArgs[0], okKey)
		PopulateNested(ctx, g.TypeArgs[1], errKey)
	}
}

func joinKey(prefix, part string) string {
	if prefix == "" {
		return part
	}
	return prefix + "_" + part
}
