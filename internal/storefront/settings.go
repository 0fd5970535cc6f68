package storefront

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/marcus/storefront/internal/models"
)

// SaveConfig replaces the cached business config. An empty credential keeps
// the current one.
func (s *Store) SaveConfig(ctx context.Context, cfg models.BusinessConfig) error {
	if err := models.ValidateConfig(cfg); err != nil {
		return err
	}

	s.mu.Lock()
	prev := s.config
	if cfg.AdminPassword == "" {
		cfg.AdminPassword = prev.Credential()
	}
	s.config = cfg
	s.changed()
	s.mu.Unlock()

	s.background(ctx, Write{
		Op: OpReplace, Entity: EntityConfig,
		Undo: func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.config == cfg {
				s.config = prev
				s.changed()
			}
		},
	}, func(ctx context.Context) error {
		return s.remote.SaveConfig(ctx, cfg)
	})
	return nil
}

// UpdateConfig merges fields over the cached config and saves the result.
func (s *Store) UpdateConfig(ctx context.Context, fields models.ConfigFields) error {
	merged, err := models.MergeConfig(s.Config(), fields)
	if err != nil {
		return err
	}
	return s.SaveConfig(ctx, merged)
}

// SaveCategories replaces the cached category list.
func (s *Store) SaveCategories(ctx context.Context, cats []models.Category) error {
	if err := models.ValidateCategories(cats); err != nil {
		return err
	}
	cats = slices.Clone(cats)

	s.mu.Lock()
	prev := s.categories
	s.categories = cats
	s.changed()
	s.mu.Unlock()

	s.replaceCategories(ctx, cats, prev)
	return nil
}

// AddCategory appends a category whose id is derived from name.
func (s *Store) AddCategory(ctx context.Context, name, icon string) (models.Category, error) {
	c := models.Category{
		ID:   models.Slugify(name),
		Name: strings.TrimSpace(name),
		Icon: strings.TrimSpace(icon),
	}
	if c.ID == "" {
		return c, fmt.Errorf("%w: category name %q has no usable characters", models.ErrValidation, name)
	}

	s.mu.Lock()
	next := append(slices.Clone(s.categories), c)
	if err := models.ValidateCategories(next); err != nil {
		s.mu.Unlock()
		return c, err
	}
	prev := s.categories
	s.categories = next
	s.changed()
	s.mu.Unlock()

	s.replaceCategories(ctx, next, prev)
	return c, nil
}

// DeleteCategory removes a category no menu item references.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	i := slices.IndexFunc(s.categories, func(c models.Category) bool { return c.ID == id })
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	if n := models.CountByCategory(s.items)[id]; n > 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d menu items use %s", ErrCategoryInUse, n, id)
	}
	prev := s.categories
	next := slices.Delete(slices.Clone(prev), i, i+1)
	s.categories = next
	s.changed()
	s.mu.Unlock()

	s.replaceCategories(ctx, next, prev)
	return nil
}

func (s *Store) replaceCategories(ctx context.Context, next, prev []models.Category) {
	s.background(ctx, Write{
		Op: OpReplace, Entity: EntityCategories,
		Undo: func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if slices.Equal(s.categories, next) {
				s.categories = prev
				s.changed()
			}
		},
	}, func(ctx context.Context) error {
		return s.remote.SaveCategories(ctx, next)
	})
}
