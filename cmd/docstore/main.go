package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/marcus/storefront/internal/docserver"
	"github.com/marcus/storefront/internal/pgstore"
	"github.com/marcus/storefront/internal/serverdb"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "admin" {
		runAdmin(os.Args[2:])
		return
	}
	if err := serve(docserver.LoadConfig()); err != nil {
		slog.Error("docstore exited", "err", err)
		os.Exit(1)
	}
}

// serve runs the document service until SIGINT or SIGTERM, then drains
// in-flight requests for up to cfg.ShutdownTimeout.
func serve(cfg docserver.Config) error {
	slog.SetDefault(newLogger(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openBackend(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s backend: %w", cfg.Backend, err)
	}
	defer store.Close()

	srv, err := docserver.NewServer(cfg, store)
	if err != nil {
		return err
	}
	if err := srv.Start(); err != nil {
		return err
	}
	slog.Info("docstore listening", "addr", cfg.ListenAddr, "backend", cfg.Backend, "keys", len(cfg.APIKeys))

	<-ctx.Done()
	slog.Info("draining", "timeout", cfg.ShutdownTimeout.String())
	drainCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(drainCtx)
}

// newLogger builds a JSON logger (text with DOCSTORE_LOG_FORMAT=text) at the
// configured level, defaulting to info.
func newLogger(cfg docserver.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.LogLevel != "" {
		if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
			level = slog.LevelInfo
		}
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.LogFormat, "text") {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

// backend is a docserver.Backend that owns a connection.
type backend interface {
	docserver.Backend
	Close() error
}

func openBackend(ctx context.Context, cfg docserver.Config) (backend, error) {
	switch cfg.Backend {
	case docserver.BackendSQLite, "":
		return serverdb.OpenWithDriver(cfg.SQLiteDriver, cfg.DBPath)
	case docserver.BackendPostgres:
		if cfg.PostgresURL == "" {
			return nil, fmt.Errorf("DOCSTORE_PG_URL is required for the postgres backend")
		}
		return pgstore.Open(ctx, cfg.PostgresURL)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
