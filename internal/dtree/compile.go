package dtree

import "github.com/zenlang/zen/internal/zast"

// Tree is a compiled multi-arm decision tree: a Switch dispatches on
// one arm's discriminant/literal value, falling through to Default for
// every row whose pattern in this position didn't test anything
// (wildcard/identifier). Grounded directly on the teacher's
// SwitchNode/LeafNode/FailNode shape (internal/dtree/decision_tree.go),
// generalized from the teacher's single-column core.CorePattern matrix
// to arm-level Plans, since Zen's match arms test one pattern each
// rather than a tuple of columns.
type Tree interface{ isTree() }

// Leaf is one matched arm: its Plan (already computed by Lower) and
// original Case for the body/guard.
type Leaf struct {
	ArmIndex int
	Case     zast.Case
	Plan     *Plan
}

func (*Leaf) isTree() {}

// Fail means no arm matched (non-exhaustive at runtime, §4.8/§9 P7).
type Fail struct{}

func (*Fail) isTree() {}

// Switch dispatches on the enum discriminant tag at this arm's scrutinee
// position. Cases maps tag -> subtree (always a Leaf at one level of
// dispatch since Zen's flat match doesn't nest column specialization
// the way a tuple-pattern matrix would); Default handles wildcard/
// identifier/unmatched-tag rows.
type Switch struct {
	Cases   map[int64]Tree
	Default Tree
}

func (*Switch) isTree() {}

// Compile groups arms whose Plan is a StepEnumTag testing the same
// scrutinee into one Switch (codegen does not consume this form; it
// tests each arm's Plan in order), and
// falls through any literal/wildcard/identifier/guard arm into
// Default. This mirrors the teacher's "group by constructor name, rest
// to default" rule, simplified to one dispatch level since Zen match
// arms do not carry multi-column tuple patterns.
func Compile(leaves []*Leaf) Tree {
	if len(leaves) == 0 {
		return &Fail{}
	}
	cases := map[int64]Tree{}
	var defaultLeaf Tree
	sawEnumTag := false
	for _, leaf := range leaves {
		if leaf.Plan.Kind == StepEnumTag {
			sawEnumTag = true
			if _, exists := cases[leaf.Plan.Tag]; !exists {
				cases[leaf.Plan.Tag] = leaf
			}
			continue
		}
		if defaultLeaf == nil {
			defaultLeaf = leaf
		}
	}
	if !sawEnumTag {
		// No arm tests a discriminant; first arm wins (a bare
		// wildcard/identifier catches everything after it anyway).
		return leaves[0]
	}
	if defaultLeaf == nil {
		defaultLeaf = &Fail{}
	}
	return &Switch{Cases: cases, Default: defaultLeaf}
}

// CanCompileToSwitch reports whether at least two arms test a
// discriminant, mirroring the teacher's CanCompileToTree heuristic
// ("worth compiling if there are multiple testable patterns").
func CanCompileToSwitch(leaves []*Leaf) bool {
	count := 0
	for _, leaf := range leaves {
		if leaf.Plan.Kind == StepEnumTag {
			count++
		}
	}
	return count >= 2
}
