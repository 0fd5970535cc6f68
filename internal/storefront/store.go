// Package storefront holds the session's menu items, reservations, business
// config and categories, and keeps them in step with a remote document store.
//
// Every mutation is applied to the in-memory caches before the call returns.
// When the session is connected the matching remote write runs in the
// background; what happens when it fails is decided by the WritePolicy.
// Only Store methods write to the caches; everything else reads copies.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/marcus/storefront/internal/docstore"
	"github.com/marcus/storefront/internal/models"
	"github.com/marcus/storefront/internal/probe"
	"github.com/marcus/storefront/internal/remote"
)

var (
	// ErrNotFound is returned when a mutation names an id that is not cached.
	ErrNotFound = errors.New("not found")
	// ErrCategoryInUse is returned when deleting a category menu items still reference.
	ErrCategoryInUse = errors.New("category in use")
)

// TempIDPrefix marks ids assigned locally while a remote create is pending.
const TempIDPrefix = "temp_"

// IsTempID reports whether id was assigned locally.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}

// State is the connection status of the session.
type State struct {
	Connected bool   `json:"connected"`
	Loading   bool   `json:"loading"`
	LastError string `json:"lastError,omitempty"`
}

// Options configures a Store.
type Options struct {
	// Remote is the document store to mirror. Nil means docstore.Offline.
	Remote docstore.Store
	// Policy handles failed background writes. Nil means Optimistic.
	Policy WritePolicy
	Logger *slog.Logger
	Now    func() time.Time
}

// Store is the session state and its sync logic.
type Store struct {
	remote *remote.Adapter
	prober *probe.Prober
	policy WritePolicy
	log    *slog.Logger
	now    func() time.Time

	mu           sync.RWMutex
	items        []models.MenuItem
	reservations []models.Reservation
	config       models.BusinessConfig
	categories   []models.Category
	state        State
	// deletedTemp holds temp ids deleted while their create was in flight.
	deletedTemp  map[string]struct{}

	tempSeq atomic.Uint64
	version atomic.Uint64
	pending sync.WaitGroup
}

// New returns a Store whose caches hold the compiled-in defaults. Nothing is
// read from the remote until Load.
func New(opts Options) *Store {
	rs := opts.Remote
	if rs == nil {
		rs = docstore.Offline{}
	}
	policy := opts.Policy
	if policy == nil {
		policy = Optimistic{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		remote:       remote.New(rs),
		prober:       probe.New(rs),
		policy:       policy,
		log:          logger,
		now:          now,
		items:        models.DefaultMenuItems(),
		reservations: []models.Reservation{},
		config:       models.DefaultConfig(),
		categories:   models.DefaultCategories(),
		deletedTemp:  make(map[string]struct{}),
	}
}

// State returns the current connection status.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Connected reports whether the last probe succeeded.
func (s *Store) Connected() bool {
	return s.State().Connected
}

// Policy returns the active write policy.
func (s *Store) Policy() WritePolicy {
	return s.policy
}

// Version increases on every cache change. Views poll it to know when to redraw.
func (s *Store) Version() uint64 {
	return s.version.Load()
}

// MenuItems returns a copy of the cached menu items in display order.
func (s *Store) MenuItems() []models.MenuItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// MenuItem returns the cached item with id.
func (s *Store) MenuItem(id string) (models.MenuItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.itemIndex(id)
	if i < 0 {
		return models.MenuItem{}, false
	}
	return s.items[i], true
}

// Reservations returns a copy of the cached reservations.
func (s *Store) Reservations() []models.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.reservations)
}

// Reservation returns the cached reservation with id.
func (s *Store) Reservation(id string) (models.Reservation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.reservationIndex(id)
	if i < 0 {
		return models.Reservation{}, false
	}
	return s.reservations[i], true
}

// Config returns the cached business config.
func (s *Store) Config() models.BusinessConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// Categories returns a copy of the cached categories.
func (s *Store) Categories() []models.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.categories)
}

// Wait blocks until every background remote write has finished.
func (s *Store) Wait() {
	s.pending.Wait()
}

// WaitContext is Wait bounded by ctx.
func (s *Store) WaitContext(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// takeDeletedTemp reports whether tempID was deleted locally before its
// create confirmed, forgetting it either way.
func (s *Store) takeDeletedTemp(tempID string) bool {
	_, ok := s.deletedTemp[tempID]
	delete(s.deletedTemp, tempID)
	return ok
}

func (s *Store) nextTempID() string {
	return fmt.Sprintf("%s%d_%d", TempIDPrefix, s.now().UnixMilli(), s.tempSeq.Add(1))
}

// changed must be called with mu held for writing.
func (s *Store) changed() {
	s.version.Add(1)
}

func (s *Store) itemIndex(id string) int {
	return slices.IndexFunc(s.items, func(it models.MenuItem) bool { return it.ID == id })
}

func (s *Store) reservationIndex(id string) int {
	return slices.IndexFunc(s.reservations, func(r models.Reservation) bool { return r.ID == id })
}

func (s *Store) hasCategory(id string) bool {
	return slices.ContainsFunc(s.categories, func(c models.Category) bool { return c.ID == id })
}

// background runs fn against the remote when the session is connected.
// It never blocks the caller; a failure goes to the write policy.
func (s *Store) background(ctx context.Context, w Write, fn func(ctx context.Context) error) {
	if !s.Connected() {
		return
	}
	ctx = context.WithoutCancel(ctx)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := fn(ctx); err != nil {
			w.Err = err
			s.log.Warn("remote write failed",
				"op", w.Op, "entity", w.Entity, "id", w.ID,
				"policy", s.policy.Name(), "err", err)
			s.policy.Failed(w)
		}
	}()
}
