package storefront

import (
	"context"
	"fmt"
	"slices"

	"github.com/marcus/storefront/internal/models"
)

// AddMenuItem validates item, caches it under a temporary id and returns that
// id. When connected the remote create runs in the background and, on
// success, the cached entry takes the remote id in place.
func (s *Store) AddMenuItem(ctx context.Context, item models.MenuItem) (string, error) {
	if err := models.ValidateMenuItem(item); err != nil {
		return "", err
	}

	s.mu.Lock()
	if !s.hasCategory(item.Category) {
		s.mu.Unlock()
		return "", fmt.Errorf("%w: unknown category %q", models.ErrValidation, item.Category)
	}
	item.ID = s.nextTempID()
	s.items = append(s.items, item)
	s.changed()
	s.mu.Unlock()

	tempID := item.ID
	s.background(ctx, Write{
		Op: OpCreate, Entity: EntityMenuItem, ID: tempID,
		Undo: func() { s.removeItem(tempID) },
	}, func(ctx context.Context) error {
		id, err := s.remote.AddMenuItem(ctx, item)
		if err != nil {
			s.mu.Lock()
			delete(s.deletedTemp, tempID)
			s.mu.Unlock()
			return err
		}
		s.confirmItem(ctx, tempID, id, item)
		return nil
	})
	return tempID, nil
}

// confirmItem swaps tempID for the remote id. If the entry was deleted while
// the create was in flight the remote copy is deleted too; if it was edited,
// the edits are pushed. An entry that a reload dropped is re-cached under
// the remote id.
func (s *Store) confirmItem(ctx context.Context, tempID, id string, sent models.MenuItem) {
	s.mu.Lock()
	i := s.itemIndex(tempID)
	if i < 0 {
		deleted := s.takeDeletedTemp(tempID)
		s.mu.Unlock()
		if !deleted {
			// Dropped by a reload; the remote copy is the one to keep.
			s.log.Debug("created entry no longer cached", "entity", EntityMenuItem, "temp", tempID, "id", id)
			s.adoptMenuItem(id, sent)
			return
		}
		if err := s.remote.DeleteMenuItem(ctx, id); err != nil {
			s.log.Warn("remote write failed", "op", OpDelete, "entity", EntityMenuItem, "id", id, "err", err)
		}
		return
	}
	s.items[i].ID = id
	current := s.items[i]
	s.changed()
	s.mu.Unlock()

	sent.ID = id
	if current != sent {
		if err := s.remote.UpdateMenuItem(ctx, id, fullItemPatch(current)); err != nil {
			s.log.Warn("remote write failed", "op", OpUpdate, "entity", EntityMenuItem, "id", id, "err", err)
		}
	}
}

// UpdateMenuItem merges patch into the cached item. Updates to an item whose
// create is still pending stay local and are pushed when it confirms.
func (s *Store) UpdateMenuItem(ctx context.Context, id string, patch models.MenuItemPatch) error {
	s.mu.Lock()
	i := s.itemIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("menu item %s: %w", id, ErrNotFound)
	}
	prev := s.items[i]
	next := patch.Apply(prev)
	next.ID = id
	if err := models.ValidateMenuItem(next); err != nil {
		s.mu.Unlock()
		return err
	}
	if patch.Category != nil && !s.hasCategory(next.Category) {
		s.mu.Unlock()
		return fmt.Errorf("%w: unknown category %q", models.ErrValidation, next.Category)
	}
	s.items[i] = next
	s.changed()
	s.mu.Unlock()

	if IsTempID(id) {
		return nil
	}
	s.background(ctx, Write{
		Op: OpUpdate, Entity: EntityMenuItem, ID: id,
		Undo: func() { s.restoreItem(next, prev) },
	}, func(ctx context.Context) error {
		return s.remote.UpdateMenuItem(ctx, id, patch)
	})
	return nil
}

// ToggleAvailable flips an item's availability.
func (s *Store) ToggleAvailable(ctx context.Context, id string) error {
	it, ok := s.MenuItem(id)
	if !ok {
		return fmt.Errorf("menu item %s: %w", id, ErrNotFound)
	}
	v := !it.Available
	return s.UpdateMenuItem(ctx, id, models.MenuItemPatch{Available: &v})
}

// ToggleFeatured flips whether an item is featured.
func (s *Store) ToggleFeatured(ctx context.Context, id string) error {
	it, ok := s.MenuItem(id)
	if !ok {
		return fmt.Errorf("menu item %s: %w", id, ErrNotFound)
	}
	v := !it.Featured
	return s.UpdateMenuItem(ctx, id, models.MenuItemPatch{Featured: &v})
}

// DeleteMenuItem removes an item from the cache and, when connected, from
// the remote in the background.
func (s *Store) DeleteMenuItem(ctx context.Context, id string) error {
	s.mu.Lock()
	i := s.itemIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("menu item %s: %w", id, ErrNotFound)
	}
	prev := s.items[i]
	s.items = slices.Delete(s.items, i, i+1)
	if IsTempID(id) {
		s.deletedTemp[id] = struct{}{}
	}
	s.changed()
	s.mu.Unlock()

	if IsTempID(id) {
		return nil
	}
	s.background(ctx, Write{
		Op: OpDelete, Entity: EntityMenuItem, ID: id,
		Undo: func() { s.reinsertItem(i, prev) },
	}, func(ctx context.Context) error {
		return s.remote.DeleteMenuItem(ctx, id)
	})
	return nil
}

func (s *Store) removeItem(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.itemIndex(id); i >= 0 {
		s.items = slices.Delete(s.items, i, i+1)
		s.changed()
	}
}

func (s *Store) restoreItem(applied, prev models.MenuItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.itemIndex(prev.ID); i >= 0 && s.items[i] == applied {
		s.items[i] = prev
		s.changed()
	}
}

func (s *Store) reinsertItem(at int, prev models.MenuItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.itemIndex(prev.ID) >= 0 {
		return
	}
	s.items = slices.Insert(s.items, min(at, len(s.items)), prev)
	s.changed()
}

func fullItemPatch(it models.MenuItem) models.MenuItemPatch {
	return models.MenuItemPatch{
		Name:        &it.Name,
		Description: &it.Description,
		Price:       &it.Price,
		Category:    &it.Category,
		Image:       &it.Image,
		Available:   &it.Available,
		Featured:    &it.Featured,
	}
}

// adoptMenuItem caches a confirmed create that a reload dropped, unless the
// reload already fetched it.
func (s *Store) adoptMenuItem(id string, it models.MenuItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.itemIndex(id) >= 0 {
		return
	}
	it.ID = id
	s.items = append(s.items, it)
	s.changed()
}
