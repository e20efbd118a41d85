package store

import (
	"encoding/json"
	"testing"

	"github.com/flywave/flywave-style/pkg/expr"
)

func putExpr(t *testing.T, s *Store, name, src string) *Expression {
	t.Helper()
	e, err := expr.Parse([]byte(src))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return s.Put(name, json.RawMessage(src), e)
}

func TestPutGet(t *testing.T) {
	s := New()
	entry := putExpr(t, s, "opacity", `["get", "opacity"]`)

	if entry.Name != "opacity" {
		t.Errorf("expected name opacity, got %q", entry.Name)
	}
	if entry.CreateTime.IsZero() || entry.UpdateTime.IsZero() {
		t.Error("expected timestamps to be set")
	}

	got, ok := s.Get("opacity")
	if !ok {
		t.Fatal("expected expression to exist")
	}
	if got != entry {
		t.Error("Get returned a different entry")
	}

	if _, ok := s.Get("missing"); ok {
		t.Error("expected missing to be absent")
	}
}

func TestPutReplaceKeepsCreateTime(t *testing.T) {
	s := New()
	first := putExpr(t, s, "width", `1`)
	second := putExpr(t, s, "width", `2`)

	if !second.CreateTime.Equal(first.CreateTime) {
		t.Error("replacing an expression must keep its create time")
	}
	if second.RevisionID == first.RevisionID {
		t.Error("replacing an expression must bump the revision")
	}
}

func TestListSorted(t *testing.T) {
	s := New()
	putExpr(t, s, "b", `1`)
	putExpr(t, s, "a", `2`)
	putExpr(t, s, "c", `3`)

	entries := s.List()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Name != "a" || entries[1].Name != "b" || entries[2].Name != "c" {
		t.Errorf("expected sorted order [a b c], got [%s %s %s]",
			entries[0].Name, entries[1].Name, entries[2].Name)
	}
}

func TestDelete(t *testing.T) {
	s := New()
	putExpr(t, s, "x", `1`)

	if !s.Delete("x") {
		t.Error("expected delete to succeed")
	}
	if s.Delete("x") {
		t.Error("expected second delete to fail")
	}
	if _, ok := s.Get("x"); ok {
		t.Error("expected x to be gone")
	}
}
