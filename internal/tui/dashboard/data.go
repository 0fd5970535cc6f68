package dashboard

import (
	"cmp"
	"slices"
	"time"

	"github.com/marcus/storefront/internal/models"
	"github.com/marcus/storefront/internal/storefront"
)

// RefreshDataMsg carries a snapshot of the store.
type RefreshDataMsg struct {
	State        storefront.State
	Config       models.BusinessConfig
	Items        []models.MenuItem
	Reservations []models.Reservation
	Categories   []models.Category
	Stats        storefront.Stats
	Version      uint64
	Timestamp    time.Time
}

// FetchData snapshots everything the dashboard shows. Reservations are
// ordered by date and time.
func FetchData(s *storefront.Store) RefreshDataMsg {
	msg := RefreshDataMsg{
		Version:      s.Version(),
		State:        s.State(),
		Config:       s.Config(),
		Items:        s.MenuItems(),
		Reservations: s.Reservations(),
		Categories:   s.Categories(),
		Stats:        s.Stats(),
		Timestamp:    time.Now(),
	}
	slices.SortStableFunc(msg.Reservations, func(a, b models.Reservation) int {
		return cmp.Or(cmp.Compare(a.Date, b.Date), cmp.Compare(a.Time, b.Time))
	})
	return msg
}
