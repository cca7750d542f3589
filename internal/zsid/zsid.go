// Package zsid provides stable identifiers for AST nodes, used by
// diagnostics (§7) to refer to a node across passes and by callers that
// cache analysis results keyed on a node rather than its pointer (a
// node's address isn't stable once C2-C8 each produce a new tree).
// Grounded on the teacher's internal/sid/sid.go hash-of-(path, span,
// kind, child-path) formula, generalized from a surface/core SID split
// (the teacher has two ASTs) to Zen's single post-C1 tree.
package zsid

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// ID is a stable identifier for one AST node.
type ID string

// New computes a stable ID from a node's file, its span, its syntactic
// kind (e.g. "BinaryOp", "Match"), and its path of child indices from
// the enclosing declaration.
func New(file string, start, end int, kind string, childPath []int) ID {
	parts := make([]string, 0, 4+len(childPath))
	parts = append(parts, canonicalizePath(file), fmt.Sprintf("%d", start), fmt.Sprintf("%d", end), kind)
	for _, idx := range childPath {
		parts = append(parts, fmt.Sprintf("%d", idx))
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return ID(hex.EncodeToString(sum[:])[:16])
}

func canonicalizePath(path string) string {
	path = filepath.Clean(path)
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		path = strings.ToLower(path)
	}
	return filepath.ToSlash(path)
}

// Map tracks how a node's ID in one pass's tree relates to the IDs its
// rewrite produced in the next pass's tree (e.g. C7 monomorphizing one
// generic function into several concrete ones), so a diagnostic raised
// against a monomorphized node can still be reported against the
// original source location.
type Map struct {
	derived map[ID][]ID
	origin  map[ID]ID
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{derived: make(map[ID][]ID), origin: make(map[ID]ID)}
}

// Record notes that `from` (a node in an earlier pass's tree) produced
// `to` (a node in a later pass's tree).
func (m *Map) Record(from, to ID) {
	m.derived[from] = append(m.derived[from], to)
	m.origin[to] = from
}

// DerivedFrom returns every later-pass ID produced from id.
func (m *Map) DerivedFrom(id ID) []ID { return m.derived[id] }

// OriginOf returns the earlier-pass ID that produced id, if any.
func (m *Map) OriginOf(id ID) (ID, bool) {
	v, ok := m.origin[id]
	return v, ok
}
