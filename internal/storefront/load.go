package storefront

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/marcus/storefront/internal/models"
)

// fetched holds the four startup reads. Each has its own error.
type fetched struct {
	items       []models.MenuItem
	itemsErr    error
	reservs     []models.Reservation
	reservsErr  error
	config      models.ConfigFields
	configErr   error
	categories  []models.Category
	categoryErr error
}

// Load probes the remote and, when it answers, pulls every entity into the
// caches. An empty remote menu is seeded from the defaults first.
//
// Load does not fail: problems are recorded in State.LastError and the
// affected caches keep what they held. Loading is cleared on return.
func (s *Store) Load(ctx context.Context) (st State) {
	s.mu.Lock()
	s.state.Loading = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.state.Loading = false
		s.changed()
		st = s.state
		s.mu.Unlock()
	}()

	res := s.prober.Probe(ctx)
	if !res.Connected {
		s.mu.Lock()
		s.state.Connected = false
		s.state.LastError = res.Message()
		s.mu.Unlock()
		s.log.Info("remote store unreachable, running local-only", "err", res.Err)
		return
	}

	s.mu.Lock()
	s.state.Connected = true
	s.state.LastError = ""
	s.mu.Unlock()
	s.log.Info("remote store connected", "latency", res.Latency)

	f := s.fetchAll(ctx)
	errs := []error{f.itemsErr, f.reservsErr, f.configErr, f.categoryErr}

	switch {
	case f.itemsErr == nil && len(f.items) == 0:
		items, err := s.seed(ctx)
		errs = append(errs, err)
		s.mu.Lock()
		s.items = items
		s.config = models.DefaultConfig()
		s.adoptRest(f)
		s.mu.Unlock()
	default:
		var mergeErr error
		s.mu.Lock()
		if f.itemsErr == nil {
			s.items = f.items
		}
		if f.configErr == nil {
			s.config, mergeErr = models.MergeConfig(models.DefaultConfig(), f.config)
		}
		s.adoptRest(f)
		s.mu.Unlock()
		errs = append(errs, mergeErr)
	}

	if err := errors.Join(errs...); err != nil {
		s.mu.Lock()
		s.state.LastError = err.Error()
		s.mu.Unlock()
		s.log.Warn("load incomplete", "err", err)
	}
	return
}

// Refresh re-runs Load. It is the manual retry for an offline session.
func (s *Store) Refresh(ctx context.Context) State {
	return s.Load(ctx)
}

// adoptRest takes fetched reservations and categories when non-empty.
// Callers hold mu.
func (s *Store) adoptRest(f fetched) {
	if f.reservsErr == nil && len(f.reservs) > 0 {
		s.reservations = f.reservs
	}
	if f.categoryErr == nil && len(f.categories) > 0 {
		s.categories = f.categories
	}
}

func (s *Store) fetchAll(ctx context.Context) fetched {
	var f fetched
	var g errgroup.Group
	g.Go(func() error {
		f.items, f.itemsErr = s.remote.ListMenuItems(ctx)
		return nil
	})
	g.Go(func() error {
		f.reservs, f.reservsErr = s.remote.ListReservations(ctx)
		return nil
	})
	g.Go(func() error {
		f.config, f.configErr = s.remote.GetConfig(ctx)
		return nil
	})
	g.Go(func() error {
		f.categories, f.categoryErr = s.remote.GetCategories(ctx)
		return nil
	})
	_ = g.Wait()
	return f
}

// seed writes the default menu one item at a time, then the default config,
// and reads the menu back so cached ids are the remote ones. If anything
// fails the defaults are returned with the error.
func (s *Store) seed(ctx context.Context) ([]models.MenuItem, error) {
	defaults := models.DefaultMenuItems()
	s.log.Info("remote menu empty, seeding defaults", "items", len(defaults))
	for i, it := range defaults {
		if _, err := s.remote.AddMenuItem(ctx, it); err != nil {
			return defaults, fmt.Errorf("seed item %d of %d: %w", i+1, len(defaults), err)
		}
	}
	if err := s.remote.SaveConfig(ctx, models.DefaultConfig()); err != nil {
		return defaults, fmt.Errorf("seed config: %w", err)
	}
	items, err := s.remote.ListMenuItems(ctx)
	if err != nil {
		return defaults, fmt.Errorf("reload seeded menu: %w", err)
	}
	if len(items) == 0 {
		return defaults, nil
	}
	s.log.Info("seeded remote store", "items", len(items))
	return items, nil
}
