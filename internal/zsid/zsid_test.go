package zsid

import (
	"path/filepath"
	"testing"
)

func TestNewIsDeterministic(t *testing.T) {
	a := New("foo.zen", 10, 20, "BinaryOp", []int{0, 1})
	b := New("foo.zen", 10, 20, "BinaryOp", []int{0, 1})
	if a != b {
		t.Errorf("New() not deterministic: %q != %q", a, b)
	}
}

func TestNewDiffersOnSpan(t *testing.T) {
	a := New("foo.zen", 10, 20, "BinaryOp", nil)
	b := New("foo.zen", 11, 20, "BinaryOp", nil)
	if a == b {
		t.Error("IDs for different spans should differ")
	}
}

func TestNewDiffersOnKind(t *testing.T) {
	a := New("foo.zen", 10, 20, "BinaryOp", nil)
	b := New("foo.zen", 10, 20, "Match", nil)
	if a == b {
		t.Error("IDs for different kinds should differ")
	}
}

func TestNewDiffersOnChildPath(t *testing.T) {
	a := New("foo.zen", 10, 20, "Match", []int{0})
	b := New("foo.zen", 10, 20, "Match", []int{1})
	if a == b {
		t.Error("IDs for different child paths should differ")
	}
}

func TestNewRelativeVsAbsolutePath(t *testing.T) {
	rel := New("foo.zen", 0, 5, "Ident", nil)
	if rel == "" {
		t.Fatal("expected non-empty ID")
	}
	if len(rel) != 16 {
		t.Errorf("len(ID) = %d, want 16", len(rel))
	}
	abs, err := filepath.Abs("foo.zen")
	if err != nil {
		t.Fatal(err)
	}
	if got := New(abs, 0, 5, "Ident", nil); got != rel {
		t.Errorf("New(%q) = %q, want %q (same as the relative path)", abs, got, rel)
	}
}

func TestMapRecordAndLookup(t *testing.T) {
	m := NewMap()
	from := ID("aaaa")
	to1 := ID("bbbb")
	to2 := ID("cccc")

	m.Record(from, to1)
	m.Record(from, to2)

	derived := m.DerivedFrom(from)
	if len(derived) != 2 {
		t.Fatalf("DerivedFrom(from) = %v, want 2 entries", derived)
	}
	if derived[0] != to1 || derived[1] != to2 {
		t.Errorf("DerivedFrom(from) = %v, want [%s %s]", derived, to1, to2)
	}

	origin, ok := m.OriginOf(to1)
	if !ok || origin != from {
		t.Errorf("OriginOf(to1) = (%s, %v), want (%s, true)", origin, ok, from)
	}
}

func TestMapOriginOfUnknown(t *testing.T) {
	m := NewMap()
	if _, ok := m.OriginOf(ID("nope")); ok {
		t.Error("OriginOf on an unrecorded ID should return false")
	}
}

func TestMapDerivedFromUnknown(t *testing.T) {
	m := NewMap()
	if derived := m.DerivedFrom(ID("nope")); derived != nil {
		t.Errorf("DerivedFrom on an unrecorded ID = %v, want nil", derived)
	}
}
