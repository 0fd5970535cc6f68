// Package remote maps storefront entities onto documents in a docstore.Store.
//
// Layout:
//
//	menuItems/<id>        one document per menu item
//	reservations/<id>     one document per reservation
//	config/business       text fields of the business config, admin credential included
//	config/images         logoUrl, heroImage, aboutUsImage
//	config/categories     {"list": [...]}
//	_test/ping            connectivity probe sentinel
//
// The business config is split in two so that three encoded images and the
// text fields never share one document and hit docstore.MaxDocumentSize.
package remote

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/marcus/storefront/internal/docstore"
	"github.com/marcus/storefront/internal/models"
)

// Collection and document names.
const (
	CollMenuItems    = "menuItems"
	CollReservations = "reservations"
	CollConfig       = "config"

	DocBusiness   = "business"
	DocImages     = "images"
	DocCategories = "categories"
)

// imageFields are the config keys stored in config/images.
var imageFields = []string{"logoUrl", "heroImage", "aboutUsImage"}

// Adapter performs entity-level CRUD against a document store.
type Adapter struct {
	store docstore.Store
}

// New returns an Adapter over store.
func New(store docstore.Store) *Adapter {
	return &Adapter{store: store}
}

// Store returns the underlying document store.
func (a *Adapter) Store() docstore.Store {
	return a.store
}

// --- Menu items ---

// ListMenuItems returns every stored menu item, ids taken from the documents.
func (a *Adapter) ListMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	snaps, err := a.store.List(ctx, CollMenuItems)
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}
	items := make([]models.MenuItem, 0, len(snaps))
	for _, s := range snaps {
		var it models.MenuItem
		if err := docstore.ToValue(s.Data, &it); err != nil {
			return nil, fmt.Errorf("menu item %s: %w", s.ID, err)
		}
		it.ID = s.ID
		items = append(items, it)
	}
	return items, nil
}

// AddMenuItem stores item without its id and returns the assigned id.
func (a *Adapter) AddMenuItem(ctx context.Context, item models.MenuItem) (string, error) {
	item.ID = ""
	doc, err := docstore.FromValue(item)
	if err != nil {
		return "", err
	}
	id, err := a.store.Add(ctx, CollMenuItems, doc)
	if err != nil {
		return "", fmt.Errorf("add menu item: %w", err)
	}
	return id, nil
}

// UpdateMenuItem merges the non-nil patch fields into the stored item.
func (a *Adapter) UpdateMenuItem(ctx context.Context, id string, patch models.MenuItemPatch) error {
	doc, err := docstore.FromValue(patch)
	if err != nil {
		return err
	}
	if err := a.store.Update(ctx, CollMenuItems, id, doc); err != nil {
		return fmt.Errorf("update menu item %s: %w", id, err)
	}
	return nil
}

// DeleteMenuItem removes a menu item.
func (a *Adapter) DeleteMenuItem(ctx context.Context, id string) error {
	if err := a.store.Delete(ctx, CollMenuItems, id); err != nil {
		return fmt.Errorf("delete menu item %s: %w", id, err)
	}
	return nil
}

// --- Reservations ---

// ListReservations returns every stored reservation.
func (a *Adapter) ListReservations(ctx context.Context) ([]models.Reservation, error) {
	snaps, err := a.store.List(ctx, CollReservations)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	out := make([]models.Reservation, 0, len(snaps))
	for _, s := range snaps {
		var r models.Reservation
		if err := docstore.ToValue(s.Data, &r); err != nil {
			return nil, fmt.Errorf("reservation %s: %w", s.ID, err)
		}
		r.ID = s.ID
		out = append(out, r)
	}
	return out, nil
}

// AddReservation stores r without its id and returns the assigned id.
func (a *Adapter) AddReservation(ctx context.Context, r models.Reservation) (string, error) {
	r.ID = ""
	doc, err := docstore.FromValue(r)
	if err != nil {
		return "", err
	}
	id, err := a.store.Add(ctx, CollReservations, doc)
	if err != nil {
		return "", fmt.Errorf("add reservation: %w", err)
	}
	return id, nil
}

// UpdateReservation merges the non-nil patch fields into the stored reservation.
func (a *Adapter) UpdateReservation(ctx context.Context, id string, patch models.ReservationPatch) error {
	doc, err := docstore.FromValue(patch)
	if err != nil {
		return err
	}
	if err := a.store.Update(ctx, CollReservations, id, doc); err != nil {
		return fmt.Errorf("update reservation %s: %w", id, err)
	}
	return nil
}

// DeleteReservation removes a reservation.
func (a *Adapter) DeleteReservation(ctx context.Context, id string) error {
	if err := a.store.Delete(ctx, CollReservations, id); err != nil {
		return fmt.Errorf("delete reservation %s: %w", id, err)
	}
	return nil
}

// --- Config ---

// GetConfig reads config/business and config/images concurrently and
// returns their fields combined, image fields winning. A missing document
// contributes nothing; nil is returned when neither exists.
func (a *Adapter) GetConfig(ctx context.Context) (models.ConfigFields, error) {
	var business, images docstore.Document
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		business, err = a.getOptional(gctx, CollConfig, DocBusiness)
		return err
	})
	g.Go(func() error {
		var err error
		images, err = a.getOptional(gctx, CollConfig, DocImages)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("get config: %w", err)
	}
	if business == nil && images == nil {
		return nil, nil
	}
	fields := models.ConfigFields{}
	for k, v := range business {
		fields[k] = v
	}
	for k, v := range images {
		fields[k] = v
	}
	return fields, nil
}

// SaveConfig replaces both config documents. An empty admin credential is
// stored as the default so a later load never sees it missing.
func (a *Adapter) SaveConfig(ctx context.Context, cfg models.BusinessConfig) error {
	if cfg.AdminPassword == "" {
		cfg.AdminPassword = models.DefaultAdminPassword
	}
	fields, err := models.ToFields(cfg)
	if err != nil {
		return err
	}
	images := docstore.Document{}
	for _, k := range imageFields {
		v, _ := fields[k].(string)
		images[k] = v
		delete(fields, k)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.store.Set(gctx, CollConfig, DocBusiness, docstore.Document(fields))
	})
	g.Go(func() error {
		return a.store.Set(gctx, CollConfig, DocImages, images)
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// --- Categories ---

// GetCategories returns the stored category list, or nil when none is stored.
func (a *Adapter) GetCategories(ctx context.Context) ([]models.Category, error) {
	doc, err := a.getOptional(ctx, CollConfig, DocCategories)
	if err != nil {
		return nil, fmt.Errorf("get categories: %w", err)
	}
	if doc == nil {
		return nil, nil
	}
	var wrapper struct {
		List []models.Category `json:"list"`
	}
	if err := docstore.ToValue(doc, &wrapper); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return wrapper.List, nil
}

// SaveCategories replaces the stored category list.
func (a *Adapter) SaveCategories(ctx context.Context, cats []models.Category) error {
	if cats == nil {
		cats = []models.Category{}
	}
	doc, err := docstore.FromValue(struct {
		List []models.Category `json:"list"`
	}{cats})
	if err != nil {
		return err
	}
	if err := a.store.Set(ctx, CollConfig, DocCategories, doc); err != nil {
		return fmt.Errorf("save categories: %w", err)
	}
	return nil
}

// getOptional returns nil, nil for a missing document.
func (a *Adapter) getOptional(ctx context.Context, collection, id string) (docstore.Document, error) {
	doc, err := a.store.Get(ctx, collection, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, nil
	}
	return doc, err
}
