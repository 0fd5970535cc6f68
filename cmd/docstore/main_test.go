package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/marcus/storefront/internal/docserver"
)

func TestNewLoggerLevel(t *testing.T) {
	ctx := context.Background()
	tests := map[string]slog.Level{
		"":       slog.LevelInfo,
		"debug":  slog.LevelDebug,
		"WARN":   slog.LevelWarn,
		"error":  slog.LevelError,
		"chatty": slog.LevelInfo,
	}
	for in, want := range tests {
		l := newLogger(docserver.Config{LogLevel: in, LogFormat: "text"})
		if !l.Enabled(ctx, want) {
			t.Errorf("%q: level %v disabled", in, want)
		}
		if want > slog.LevelDebug && l.Enabled(ctx, want-4) {
			t.Errorf("%q: level below %v enabled", in, want)
		}
	}
}

func TestOpenBackend(t *testing.T) {
	ctx := context.Background()

	store, err := openBackend(ctx, docserver.Config{
		Backend: docserver.BackendSQLite,
		DBPath:  filepath.Join(t.TempDir(), "docs.db"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Ping(ctx); err != nil {
		t.Fatal(err)
	}
	store.Close()

	if _, err := openBackend(ctx, docserver.Config{Backend: docserver.BackendPostgres}); err == nil {
		t.Error("postgres backend opened without a url")
	}
	if _, err := openBackend(ctx, docserver.Config{Backend: "redis"}); err == nil {
		t.Error("unknown backend accepted")
	}
}
