package docstoretest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/marcus/storefront/internal/docstore"
)

// RunStoreTests exercises the docstore.Store contract against the store
// returned by newStore. Each subtest gets a fresh store.
func RunStoreTests(t *testing.T, newStore func(t *testing.T) docstore.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("ListEmpty", func(t *testing.T) {
		s := newStore(t)
		docs, err := s.List(ctx, "menuItems")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(docs) != 0 {
			t.Fatalf("expected empty collection, got %d", len(docs))
		}
	})

	t.Run("AddListOrder", func(t *testing.T) {
		s := newStore(t)
		var ids []string
		for _, name := range []string{"a", "b", "c"} {
			id, err := s.Add(ctx, "menuItems", docstore.Document{"name": name})
			if err != nil {
				t.Fatalf("add %s: %v", name, err)
			}
			if id == "" {
				t.Fatal("add returned empty id")
			}
			ids = append(ids, id)
		}
		docs, err := s.List(ctx, "menuItems")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(docs) != 3 {
			t.Fatalf("got %d docs, want 3", len(docs))
		}
		for i, d := range docs {
			if d.ID != ids[i] {
				t.Errorf("doc %d id = %s, want %s", i, d.ID, ids[i])
			}
		}
		if docs[1].Data["name"] != "b" {
			t.Errorf("doc 1 name = %v", docs[1].Data["name"])
		}
	})

	t.Run("CollectionsAreIsolated", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.Add(ctx, "menuItems", docstore.Document{"name": "x"}); err != nil {
			t.Fatal(err)
		}
		docs, err := s.List(ctx, "reservations")
		if err != nil {
			t.Fatal(err)
		}
		if len(docs) != 0 {
			t.Fatalf("reservations sees %d menu docs", len(docs))
		}
	})

	t.Run("UpdateMergesTopLevel", func(t *testing.T) {
		s := newStore(t)
		id, err := s.Add(ctx, "menuItems", docstore.Document{"name": "tea", "price": 2.0, "available": true})
		if err != nil {
			t.Fatal(err)
		}
		if err := s.Update(ctx, "menuItems", id, docstore.Document{"price": 3.5}); err != nil {
			t.Fatalf("update: %v", err)
		}
		doc, err := s.Get(ctx, "menuItems", id)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if doc["price"] != 3.5 || doc["name"] != "tea" || doc["available"] != true {
			t.Fatalf("merged doc = %v", doc)
		}
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		s := newStore(t)
		err := s.Update(ctx, "menuItems", "nope", docstore.Document{"x": 1})
		if !errors.Is(err, docstore.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("DeleteIdempotent", func(t *testing.T) {
		s := newStore(t)
		id, err := s.Add(ctx, "reservations", docstore.Document{"name": "ana"})
		if err != nil {
			t.Fatal(err)
		}
		if err := s.Delete(ctx, "reservations", id); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if err := s.Delete(ctx, "reservations", id); err != nil {
			t.Fatalf("second delete: %v", err)
		}
		if _, err := s.Get(ctx, "reservations", id); !errors.Is(err, docstore.ErrNotFound) {
			t.Fatalf("get after delete: err = %v", err)
		}
		docs, _ := s.List(ctx, "reservations")
		if len(docs) != 0 {
			t.Fatalf("list after delete has %d docs", len(docs))
		}
	})

	t.Run("SetReplacesAndCreates", func(t *testing.T) {
		s := newStore(t)
		if err := s.Set(ctx, "config", "business", docstore.Document{"name": "A", "slogan": "s"}); err != nil {
			t.Fatalf("set: %v", err)
		}
		if err := s.Set(ctx, "config", "business", docstore.Document{"name": "B"}); err != nil {
			t.Fatalf("set again: %v", err)
		}
		doc, err := s.Get(ctx, "config", "business")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if doc["name"] != "B" {
			t.Errorf("name = %v", doc["name"])
		}
		if _, ok := doc["slogan"]; ok {
			t.Errorf("set did not replace, slogan survived")
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.Get(ctx, "_test", "ping"); !errors.Is(err, docstore.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("NestedValues", func(t *testing.T) {
		s := newStore(t)
		list := []any{map[string]any{"id": "cafe", "name": "Café", "icon": "☕"}}
		if err := s.Set(ctx, "config", "categories", docstore.Document{"list": list}); err != nil {
			t.Fatal(err)
		}
		doc, err := s.Get(ctx, "config", "categories")
		if err != nil {
			t.Fatal(err)
		}
		got, ok := doc["list"].([]any)
		if !ok || len(got) != 1 {
			t.Fatalf("list = %#v", doc["list"])
		}
		if got[0].(map[string]any)["icon"] != "☕" {
			t.Fatalf("icon lost: %#v", got[0])
		}
	})

	t.Run("TooLarge", func(t *testing.T) {
		s := newStore(t)
		big := strings.Repeat("x", docstore.MaxDocumentSize)
		_, err := s.Add(ctx, "menuItems", docstore.Document{"image": big})
		if !errors.Is(err, docstore.ErrTooLarge) {
			t.Fatalf("add: err = %v, want ErrTooLarge", err)
		}
		err = s.Set(ctx, "config", "images", docstore.Document{"heroImage": big})
		if !errors.Is(err, docstore.ErrTooLarge) {
			t.Fatalf("set: err = %v, want ErrTooLarge", err)
		}
	})

	t.Run("BadCollection", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.List(ctx, "../etc"); err == nil {
			t.Fatal("expected error for invalid collection name")
		}
	})
}
