package dashboard

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/storefront/internal/gate"
	"github.com/marcus/storefront/internal/models"
	"github.com/marcus/storefront/internal/storefront"
)

func newModel(t *testing.T) (Model, *storefront.Store, *gate.Gate) {
	t.Helper()
	ctx := context.Background()
	store := storefront.New(storefront.Options{})
	store.Load(ctx)
	g := gate.New(nil, func() string { return store.Config().AdminPassword })
	if !g.Authenticate(models.DefaultAdminPassword) {
		t.Fatal("default credential rejected")
	}
	return NewModel(ctx, store, g, time.Second), store, g
}

func press(m Model, k string) (Model, tea.Cmd) {
	var msg tea.KeyMsg
	switch k {
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		msg = tea.KeyMsg{Type: tea.KeyShiftTab}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestTabSwitching(t *testing.T) {
	m, _, _ := newModel(t)
	if m.Tab != TabOverview {
		t.Fatalf("initial tab = %v", m.Tab)
	}
	m, _ = press(m, "tab")
	if m.Tab != TabMenu {
		t.Fatalf("after tab = %v", m.Tab)
	}
	m, _ = press(m, "shift+tab")
	m, _ = press(m, "shift+tab")
	if m.Tab != TabCategories {
		t.Fatalf("shift+tab wrap = %v", m.Tab)
	}
	m, _ = press(m, "3")
	if m.Tab != TabReservations {
		t.Fatalf("3 = %v", m.Tab)
	}
}

func TestToggleAvailable(t *testing.T) {
	m, store, _ := newModel(t)
	m, _ = press(m, "2")
	m, _ = press(m, "down")
	if m.Cursor[TabMenu] != 1 {
		t.Fatalf("cursor = %d", m.Cursor[TabMenu])
	}
	id := m.Data.Items[1].ID
	m, _ = press(m, "t")
	if m.Err != nil {
		t.Fatal(m.Err)
	}
	it, _ := store.MenuItem(id)
	if it.Available {
		t.Error("item still available")
	}
	if m.Data.Items[1].Available {
		t.Error("snapshot not refreshed")
	}

	m, _ = press(m, "f")
	it, _ = store.MenuItem(id)
	if it.Featured {
		t.Error("featured not toggled off")
	}
	if !strings.Contains(m.Flash, "featured") {
		t.Errorf("flash = %q", m.Flash)
	}
}

func TestDeleteMenuItem(t *testing.T) {
	m, store, _ := newModel(t)
	before := len(store.MenuItems())
	m, _ = press(m, "2")
	id := m.Data.Items[0].ID
	m, _ = press(m, "d")
	if _, ok := store.MenuItem(id); ok {
		t.Fatal("item not deleted")
	}
	if len(m.Data.Items) != before-1 {
		t.Errorf("snapshot items = %d, want %d", len(m.Data.Items), before-1)
	}
}

func TestDeleteCategoryInUse(t *testing.T) {
	m, store, _ := newModel(t)
	m, _ = press(m, "4")
	m, _ = press(m, "d")
	if m.Err == nil || !strings.Contains(m.Err.Error(), "still has 3 items") {
		t.Fatalf("err = %v", m.Err)
	}
	if len(store.Categories()) != len(models.DefaultCategories()) {
		t.Error("category removed")
	}
	if !strings.Contains(m.View(), "still has 3 items") {
		t.Error("error not rendered")
	}
}

func TestReservationActions(t *testing.T) {
	m, store, _ := newModel(t)
	ctx := context.Background()
	for _, d := range []string{"2026-03-21", "2026-03-20"} {
		_, err := store.AddReservation(ctx, models.ReservationRequest{
			Name: "Ana Ruiz", Phone: "555-0101", Date: d, Time: "19:30", Guests: 2,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	// Picked up on the next tick because the store version moved.
	next, _ := m.Update(TickMsg(time.Now()))
	m = next.(Model)
	if len(m.Data.Reservations) != 2 {
		t.Fatalf("reservations = %d", len(m.Data.Reservations))
	}
	if m.Data.Reservations[0].Date != "2026-03-20" {
		t.Errorf("not sorted by date: %+v", m.Data.Reservations)
	}

	m, _ = press(m, "3")
	m, _ = press(m, "c")
	r, _ := store.Reservation(m.Data.Reservations[0].ID)
	if r.Status != models.StatusConfirmed {
		t.Errorf("status = %q", r.Status)
	}
	m, _ = press(m, "down")
	m, _ = press(m, "x")
	r, _ = store.Reservation(m.Data.Reservations[1].ID)
	if r.Status != models.StatusCancelled {
		t.Errorf("status = %q", r.Status)
	}

	// cancelled cannot be confirmed again
	m, _ = press(m, "c")
	if m.Err == nil {
		t.Error("expected transition error")
	}

	m, _ = press(m, "d")
	if len(store.Reservations()) != 1 {
		t.Errorf("reservations after delete = %d", len(store.Reservations()))
	}
	if m.Cursor[TabReservations] != 0 {
		t.Errorf("cursor not clamped: %d", m.Cursor[TabReservations])
	}
}

func TestLogoutDeauthenticates(t *testing.T) {
	m, _, g := newModel(t)
	_, cmd := press(m, "L")
	if g.IsAdmin() {
		t.Error("still admin after logout")
	}
	if g.Page() != gate.PageHome {
		t.Errorf("page = %q", g.Page())
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("logout did not quit")
	}
}

func TestRetryConnection(t *testing.T) {
	m, _, _ := newModel(t)
	m, cmd := press(m, "r")
	if !m.Loading || cmd == nil {
		t.Fatalf("loading=%v cmd=%v", m.Loading, cmd != nil)
	}
	if !strings.Contains(m.View(), "Connecting") {
		t.Error("spinner not shown while loading")
	}

	next, _ := m.Update(loadDoneMsg(m.Store.Refresh(context.Background())))
	m = next.(Model)
	if m.Loading {
		t.Error("still loading")
	}
	if m.Err == nil || !strings.Contains(m.Err.Error(), "offline") {
		t.Errorf("err = %v", m.Err)
	}
}

func TestViewShowsOfflineBanner(t *testing.T) {
	m, _, _ := newModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = next.(Model)
	view := m.View()
	for _, want := range []string{"Offline", "Overview", "Reservations", "items"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestViewTooSmall(t *testing.T) {
	m, _, _ := newModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 20, Height: 5})
	if v := next.(Model).View(); !strings.Contains(v, "too small") {
		t.Errorf("view = %q", v)
	}
}
