package serverdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/marcus/storefront/internal/docstore"
	"github.com/marcus/storefront/internal/docstore/docstoretest"
)

func newTestDB(t *testing.T) *ServerDB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDocumentStore(t *testing.T) {
	docstoretest.RunStoreTests(t, func(t *testing.T) docstore.Store {
		return newTestDB(t)
	})
}

func TestSchemaVersion(t *testing.T) {
	db := newTestDB(t)
	if v := db.SchemaVersion(); v != ServerSchemaVersion {
		t.Fatalf("schema version = %d, want %d", v, ServerSchemaVersion)
	}
	n, err := db.RunMigrations()
	if err != nil {
		t.Fatalf("rerun migrations: %v", err)
	}
	if n != 0 {
		t.Fatalf("migrations rerun = %d, want 0", n)
	}
}

func TestReopenKeepsDocuments(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "docstore.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	id, err := db.Add(ctx, "menuItems", docstore.Document{"name": "tea"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	doc, err := db.Get(ctx, "menuItems", id)
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if doc["name"] != "tea" {
		t.Fatalf("name = %v", doc["name"])
	}
}

func TestSetKeepsCreationOrder(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	first, _ := db.Add(ctx, "menuItems", docstore.Document{"n": 1.0})
	second, _ := db.Add(ctx, "menuItems", docstore.Document{"n": 2.0})

	if err := db.Set(ctx, "menuItems", first, docstore.Document{"n": 10.0}); err != nil {
		t.Fatalf("set: %v", err)
	}
	docs, err := db.List(ctx, "menuItems")
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 || docs[0].ID != first || docs[1].ID != second {
		t.Fatalf("order changed after set: %+v", docs)
	}
	if docs[0].Data["n"] != 10.0 {
		t.Fatalf("set not applied: %v", docs[0].Data)
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	db.Add(ctx, "menuItems", docstore.Document{})
	db.Add(ctx, "menuItems", docstore.Document{})
	db.Set(ctx, "config", "business", docstore.Document{})

	stats, err := db.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	want := []docstore.CollectionStat{{Name: "config", Documents: 1}, {Name: "menuItems", Documents: 2}}
	if len(stats) != len(want) {
		t.Fatalf("stats = %+v", stats)
	}
	for i := range want {
		if stats[i] != want[i] {
			t.Errorf("stats[%d] = %+v, want %+v", i, stats[i], want[i])
		}
	}
}

func TestPing(t *testing.T) {
	db := newTestDB(t)
	if err := db.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if db.Driver() != DefaultDriver {
		t.Fatalf("driver = %s", db.Driver())
	}
}
