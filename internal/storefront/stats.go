package storefront

import (
	"github.com/marcus/storefront/internal/models"
)

// MenuFilter selects menu items. Zero value matches everything.
type MenuFilter struct {
	Category      string
	FeaturedOnly  bool
	AvailableOnly bool
}

func (f MenuFilter) match(it models.MenuItem) bool {
	if f.Category != "" && it.Category != f.Category {
		return false
	}
	if f.FeaturedOnly && !it.Featured {
		return false
	}
	if f.AvailableOnly && !it.Available {
		return false
	}
	return true
}

// Menu returns the cached items matching f, in display order.
func (s *Store) Menu(f MenuFilter) []models.MenuItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.MenuItem
	for _, it := range s.items {
		if f.match(it) {
			out = append(out, it)
		}
	}
	return out
}

// Featured returns the available featured items shown on the home page.
func (s *Store) Featured() []models.MenuItem {
	return s.Menu(MenuFilter{FeaturedOnly: true, AvailableOnly: true})
}

// Stats summarizes the caches for the admin overview.
type Stats struct {
	Items        int                              `json:"items"`
	Available    int                              `json:"available"`
	Featured     int                              `json:"featured"`
	Categories   int                              `json:"categories"`
	PerCategory  map[string]int                   `json:"perCategory"`
	Reservations int                              `json:"reservations"`
	Pending      int                              `json:"pending"`
	ByStatus     map[models.ReservationStatus]int `json:"byStatus"`
}

// Stats computes counts over the current caches.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Stats{
		Items:        len(s.items),
		Categories:   len(s.categories),
		PerCategory:  models.CountByCategory(s.items),
		Reservations: len(s.reservations),
		ByStatus:     make(map[models.ReservationStatus]int),
	}
	for _, it := range s.items {
		if it.Available {
			st.Available++
		}
		if it.Featured {
			st.Featured++
		}
	}
	for _, r := range s.reservations {
		status := r.Status
		if status == "" {
			status = models.StatusPending
		}
		st.ByStatus[status]++
	}
	st.Pending = st.ByStatus[models.StatusPending]
	return st
}
