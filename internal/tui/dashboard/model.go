// Package dashboard is the admin terminal UI over a storefront session.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/storefront/internal/gate"
	"github.com/marcus/storefront/internal/storefront"
)

// Tab is a dashboard section.
type Tab int

const (
	TabOverview Tab = iota
	TabMenu
	TabReservations
	TabCategories
	tabCount
)

var tabNames = [...]string{"Overview", "Menu", "Reservations", "Categories"}

func (t Tab) String() string {
	if t < 0 || t >= tabCount {
		return "?"
	}
	return tabNames[t]
}

// MinWidth is the minimum terminal width for proper display
const MinWidth = 40

// MinHeight is the minimum terminal height for proper display
const MinHeight = 12

// TickMsg triggers a snapshot check
type TickMsg time.Time

// loadDoneMsg reports the end of a connection retry.
type loadDoneMsg storefront.State

// Model is the Bubble Tea model for the admin dashboard
type Model struct {
	Store *storefront.Store
	Gate  *gate.Gate
	Ctx   context.Context

	// Window dimensions
	Width  int
	Height int

	Data RefreshDataMsg

	// UI state
	Tab      Tab
	Cursor   map[Tab]int
	ShowHelp bool
	Loading  bool
	Flash    string
	Err      error

	RefreshInterval time.Duration

	spinner spinner.Model
	keys    keyMap
	help    help.Model
}

// NewModel creates a dashboard over an already loaded store.
func NewModel(ctx context.Context, store *storefront.Store, g *gate.Gate, interval time.Duration) Model {
	if interval <= 0 {
		interval = time.Second
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = titleStyle
	return Model{
		Store:           store,
		Gate:            g,
		Ctx:             ctx,
		Data:            FetchData(store),
		Cursor:          make(map[Tab]int),
		RefreshInterval: interval,
		spinner:         sp,
		keys:            defaultKeys(),
		help:            help.New(),
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return m.scheduleTick()
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		if m.Store.Version() != m.Data.Version {
			m.refresh()
		}
		return m, m.scheduleTick()

	case RefreshDataMsg:
		m.Data = msg
		m.clampCursors()
		return m, nil

	case loadDoneMsg:
		m.Loading = false
		m.refresh()
		if msg.Connected {
			m.flash("Connected")
		} else {
			m.fail(errors.New("still offline"))
		}
		return m, nil

	case spinner.TickMsg:
		if !m.Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// handleKey processes key input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Logout):
		m.Gate.Deauthenticate()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.ShowHelp = !m.ShowHelp
		m.help.ShowAll = m.ShowHelp
		return m, nil

	case key.Matches(msg, m.keys.NextTab):
		m.Tab = (m.Tab + 1) % tabCount
		return m, nil

	case key.Matches(msg, m.keys.PrevTab):
		m.Tab = (m.Tab + tabCount - 1) % tabCount
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.Cursor[m.Tab] < m.rowCount()-1 {
			m.Cursor[m.Tab]++
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.Cursor[m.Tab] > 0 {
			m.Cursor[m.Tab]--
		}
		return m, nil

	case key.Matches(msg, m.keys.Retry):
		if m.Loading {
			return m, nil
		}
		m.Loading = true
		m.Flash, m.Err = "", nil
		return m, tea.Batch(m.spinner.Tick, m.reload())
	}

	for i, b := range m.keys.TabByNumb {
		if key.Matches(msg, b) {
			m.Tab = Tab(i)
			return m, nil
		}
	}

	switch m.Tab {
	case TabMenu:
		m.handleMenuKey(msg)
	case TabReservations:
		m.handleReservationKey(msg)
	case TabCategories:
		m.handleCategoryKey(msg)
	}
	return m, nil
}

func (m *Model) handleMenuKey(msg tea.KeyMsg) {
	if len(m.Data.Items) == 0 {
		return
	}
	it := m.Data.Items[m.Cursor[TabMenu]]
	switch {
	case key.Matches(msg, m.keys.Toggle):
		m.apply(m.Store.ToggleAvailable(m.Ctx, it.ID), fmt.Sprintf("Toggled availability of %s", it.Name))
	case key.Matches(msg, m.keys.Feature):
		m.apply(m.Store.ToggleFeatured(m.Ctx, it.ID), fmt.Sprintf("Toggled featured for %s", it.Name))
	case key.Matches(msg, m.keys.Delete):
		m.apply(m.Store.DeleteMenuItem(m.Ctx, it.ID), fmt.Sprintf("Deleted %s", it.Name))
	}
}

func (m *Model) handleReservationKey(msg tea.KeyMsg) {
	if len(m.Data.Reservations) == 0 {
		return
	}
	r := m.Data.Reservations[m.Cursor[TabReservations]]
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.apply(m.Store.ConfirmReservation(m.Ctx, r.ID), fmt.Sprintf("Confirmed reservation for %s", r.Name))
	case key.Matches(msg, m.keys.Cancel):
		m.apply(m.Store.CancelReservation(m.Ctx, r.ID), fmt.Sprintf("Cancelled reservation for %s", r.Name))
	case key.Matches(msg, m.keys.Delete):
		m.apply(m.Store.DeleteReservation(m.Ctx, r.ID), fmt.Sprintf("Deleted reservation for %s", r.Name))
	}
}

func (m *Model) handleCategoryKey(msg tea.KeyMsg) {
	if len(m.Data.Categories) == 0 || !key.Matches(msg, m.keys.Delete) {
		return
	}
	c := m.Data.Categories[m.Cursor[TabCategories]]
	err := m.Store.DeleteCategory(m.Ctx, c.ID)
	if errors.Is(err, storefront.ErrCategoryInUse) {
		err = fmt.Errorf("%s still has %d items", c.Name, m.Data.Stats.PerCategory[c.ID])
	}
	m.apply(err, fmt.Sprintf("Deleted category %s", c.Name))
}

func (m *Model) apply(err error, ok string) {
	if err != nil {
		m.fail(err)
		return
	}
	m.flash(ok)
	m.refresh()
}

func (m *Model) flash(s string) {
	m.Flash, m.Err = s, nil
}

func (m *Model) fail(err error) {
	m.Flash, m.Err = "", err
}

func (m *Model) refresh() {
	m.Data = FetchData(m.Store)
	m.clampCursors()
}

func (m *Model) clampCursors() {
	for t := TabMenu; t < tabCount; t++ {
		n := m.rowCountFor(t)
		switch {
		case n == 0:
			m.Cursor[t] = 0
		case m.Cursor[t] >= n:
			m.Cursor[t] = n - 1
		}
	}
}

func (m Model) rowCount() int {
	return m.rowCountFor(m.Tab)
}

func (m Model) rowCountFor(t Tab) int {
	switch t {
	case TabMenu:
		return len(m.Data.Items)
	case TabReservations:
		return len(m.Data.Reservations)
	case TabCategories:
		return len(m.Data.Categories)
	}
	return 0
}

// View implements tea.Model
func (m Model) View() string {
	return m.renderView()
}

// scheduleTick returns a command that sends a TickMsg after the refresh interval
func (m Model) scheduleTick() tea.Cmd {
	return tea.Tick(m.RefreshInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// reload retries the remote connection and reports the resulting state.
func (m Model) reload() tea.Cmd {
	store, ctx := m.Store, m.Ctx
	return func() tea.Msg {
		return loadDoneMsg(store.Refresh(ctx))
	}
}
