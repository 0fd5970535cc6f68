package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/marcus/storefront/internal/config"
	"github.com/marcus/storefront/internal/docclient"
	"github.com/marcus/storefront/internal/docstore"
	"github.com/marcus/storefront/internal/gate"
	"github.com/marcus/storefront/internal/storefront"
)

// flushTimeout bounds how long a command waits for background writes.
const flushTimeout = 30 * time.Second

// session is one loaded storefront: config, orchestrator and access gate.
type session struct {
	cfg   *config.Config
	store *storefront.Store
	gate  *gate.Gate
}

// openSession loads client config, connects the remote (if configured) and
// runs the startup protocol.
func openSession(ctx context.Context) (*session, error) {
	dir, err := resolveConfigDir()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return newSession(ctx, cfg, remoteFor(cfg))
}

func remoteFor(cfg *config.Config) docstore.Store {
	if !cfg.HasRemote() {
		return docstore.Offline{}
	}
	return docclient.New(cfg.RemoteURL, cfg.APIKey, cfg.RequestTimeout())
}

func newSession(ctx context.Context, cfg *config.Config, remote docstore.Store) (*session, error) {
	policy, err := storefront.PolicyByName(cfg.WritePolicy)
	if err != nil {
		return nil, err
	}
	verifier, err := gate.NewVerifier(cfg.CredentialMode)
	if err != nil {
		return nil, err
	}

	store := storefront.New(storefront.Options{
		Remote: remote,
		Policy: policy,
		Logger: slog.Default(),
	})
	st := store.Load(ctx)
	slog.Debug("session loaded", "connected", st.Connected, "policy", policy.Name())

	return &session{
		cfg:   cfg,
		store: store,
		gate:  gate.New(verifier, func() string { return store.Config().AdminPassword }),
	}, nil
}

// close waits for pending remote writes so they land before exit.
func (s *session) close() {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := s.store.WaitContext(ctx); err != nil {
		slog.Warn("pending remote writes abandoned", "err", err)
	}
}
