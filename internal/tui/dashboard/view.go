package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/marcus/storefront/internal/models"
	"github.com/marcus/storefront/internal/output"
)

func (m Model) renderView() string {
	if m.Width > 0 && (m.Width < MinWidth || m.Height < MinHeight) {
		return fmt.Sprintf("Terminal too small (%dx%d). Need at least %dx%d.",
			m.Width, m.Height, MinWidth, MinHeight)
	}

	var sections []string
	sections = append(sections, m.renderHeader())
	if banner := output.OfflineBanner(m.Data.State); banner != "" {
		sections = append(sections, banner)
	}
	if m.Loading {
		sections = append(sections, m.spinner.View()+" Connecting...")
	}

	body := m.renderBody()
	sections = append(sections, m.wrapPanel(m.Tab.String(), body))

	if line := m.renderStatusLine(); line != "" {
		sections = append(sections, line)
	}
	sections = append(sections, m.help.View(m.keys))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	name := m.Data.Config.Name
	if name == "" {
		name = "Storefront"
	}
	tabs := make([]string, 0, tabCount)
	for t := TabOverview; t < tabCount; t++ {
		label := fmt.Sprintf("%d %s", t+1, t)
		if t == m.Tab {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	return titleStyle.Render(name+" admin") + "  " + strings.Join(tabs, "")
}

func (m Model) renderBody() string {
	switch m.Tab {
	case TabMenu:
		return m.renderMenu()
	case TabReservations:
		return m.renderReservations()
	case TabCategories:
		return m.renderCategories()
	}
	return m.renderOverview()
}

func (m Model) renderOverview() string {
	st := m.Data.Stats
	var sb strings.Builder
	sb.WriteString(sectionHeader.Render("Menu"))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "  %d items, %d available, %d featured\n", st.Items, st.Available, st.Featured)
	sb.WriteString(sectionHeader.Render("Reservations"))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "  %d total  ", st.Reservations)
	for _, s := range []models.ReservationStatus{models.StatusPending, models.StatusConfirmed, models.StatusCancelled} {
		fmt.Fprintf(&sb, "%s %d  ", formatStatus(s), st.ByStatus[s])
	}
	sb.WriteString("\n")
	sb.WriteString(sectionHeader.Render("Categories"))
	sb.WriteString("\n")
	for _, c := range m.Data.Categories {
		fmt.Fprintf(&sb, "  %s %s %d\n", c.Icon, c.Name, st.PerCategory[c.ID])
	}
	sync := "connected"
	if !m.Data.State.Connected {
		sync = "local only"
	}
	sb.WriteString(subtleStyle.Render(fmt.Sprintf("sync: %s  policy: %s  updated %s",
		sync, m.Store.Policy().Name(), m.Data.Timestamp.Format("15:04:05"))))
	return sb.String()
}

func (m Model) renderMenu() string {
	if len(m.Data.Items) == 0 {
		return subtleStyle.Render("No menu items")
	}
	lines := make([]string, len(m.Data.Items))
	for i, it := range m.Data.Items {
		lines[i] = m.row(TabMenu, i, output.FormatMenuItemShort(it, m.contentWidth()-2))
	}
	return m.window(TabMenu, lines)
}

func (m Model) renderReservations() string {
	if len(m.Data.Reservations) == 0 {
		return subtleStyle.Render("No reservations")
	}
	lines := make([]string, len(m.Data.Reservations))
	for i, r := range m.Data.Reservations {
		lines[i] = m.row(TabReservations, i, output.FormatReservationShort(r, m.contentWidth()-2))
	}
	return m.window(TabReservations, lines)
}

func (m Model) renderCategories() string {
	if len(m.Data.Categories) == 0 {
		return subtleStyle.Render("No categories")
	}
	lines := make([]string, len(m.Data.Categories))
	for i, c := range m.Data.Categories {
		lines[i] = m.row(TabCategories, i, output.FormatCategory(c, m.Data.Stats.PerCategory[c.ID]))
	}
	return m.window(TabCategories, lines)
}

func (m Model) row(t Tab, i int, line string) string {
	if m.Cursor[t] == i {
		return selectedRowStyle.Render("> " + line)
	}
	return "  " + line
}

// window keeps the cursor row visible within the panel height.
func (m Model) window(t Tab, lines []string) string {
	h := m.bodyHeight()
	if h <= 0 || len(lines) <= h {
		return strings.Join(lines, "\n")
	}
	start := m.Cursor[t] - h + 1
	if start < 0 {
		start = 0
	}
	return strings.Join(lines[start:start+h], "\n")
}

func (m Model) renderStatusLine() string {
	switch {
	case m.Err != nil:
		return errorStyle.Render("Error: " + m.Err.Error())
	case m.Flash != "":
		return flashStyle.Render(m.Flash)
	}
	return ""
}

func (m Model) contentWidth() int {
	if m.Width <= 0 {
		return 0
	}
	return m.Width - 4
}

// bodyHeight is the number of rows available inside the panel; 0 means
// unbounded (no window size received yet).
func (m Model) bodyHeight() int {
	if m.Height <= 0 {
		return 0
	}
	h := m.Height - 8
	if !m.Data.State.Connected {
		h--
	}
	if m.ShowHelp {
		h -= 4
	}
	return max(h, 1)
}

// wrapPanel wraps content in a bordered panel with a title.
func (m Model) wrapPanel(title, content string) string {
	lines := strings.Split(content, "\n")
	if w := m.contentWidth(); w > 0 {
		for i, line := range lines {
			if lipgloss.Width(line) > w {
				lines[i] = ansi.Truncate(line, w, "…")
			}
		}
	}
	inner := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), strings.Join(lines, "\n"))
	style := panelStyle
	if m.Width > 0 {
		style = style.Width(m.Width - 2)
	}
	return style.Render(inner)
}
