package dashboard

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/marcus/storefront/internal/models"
)

var (
	primaryColor = lipgloss.Color("212")
	mutedColor   = lipgloss.Color("241")
	successColor = lipgloss.Color("42")
	warningColor = lipgloss.Color("214")
	errorColor   = lipgloss.Color("196")

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Background(lipgloss.Color("237")).
			Foreground(lipgloss.Color("255")).
			Padding(0, 1)

	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(warningColor).
			Padding(0, 1)

	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	subtleStyle      = lipgloss.NewStyle().Foreground(mutedColor)
	selectedRowStyle = lipgloss.NewStyle().Bold(true).Background(lipgloss.Color("237"))
	flashStyle       = lipgloss.NewStyle().Foreground(successColor)
	errorStyle       = lipgloss.NewStyle().Foreground(errorColor)
	sectionHeader    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255"))

	statusStyles = map[models.ReservationStatus]lipgloss.Style{
		models.StatusPending:   lipgloss.NewStyle().Foreground(warningColor),
		models.StatusConfirmed: lipgloss.NewStyle().Foreground(successColor),
		models.StatusCancelled: lipgloss.NewStyle().Foreground(mutedColor),
	}
)

func formatStatus(s models.ReservationStatus) string {
	if s == "" {
		s = models.StatusPending
	}
	style, ok := statusStyles[s]
	if !ok {
		return string(s)
	}
	return style.Render(string(s))
}
