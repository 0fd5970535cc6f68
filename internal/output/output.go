// Package output provides styled terminal output helpers (success, error,
// warning, menu and reservation formatting) using lipgloss.
package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/marcus/storefront/internal/models"
	"github.com/marcus/storefront/internal/storefront"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	priceStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	bannerStyle  = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("214")).
			Padding(0, 1)
	statusStyles = map[models.ReservationStatus]lipgloss.Style{
		models.StatusPending:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		models.StatusConfirmed: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		models.StatusCancelled: lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	}
)

// Success prints a success message
func Success(format string, args ...interface{}) {
	fmt.Println(successStyle.Render(fmt.Sprintf(format, args...)))
}

// Error prints an error message
func Error(format string, args ...interface{}) {
	fmt.Println(errorStyle.Render("ERROR: " + fmt.Sprintf(format, args...)))
}

// Warning prints a warning message
func Warning(format string, args ...interface{}) {
	fmt.Println(warningStyle.Render("Warning: " + fmt.Sprintf(format, args...)))
}

// Info prints an info message
func Info(format string, args ...interface{}) {
	fmt.Println(fmt.Sprintf(format, args...))
}

// JSON outputs data as JSON
func JSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// Error codes for structured JSON output
const (
	ErrCodeNotFound      = "not_found"
	ErrCodeInvalidInput  = "invalid_input"
	ErrCodeInUse         = "in_use"
	ErrCodeUnauthorized  = "unauthorized"
	ErrCodeRemoteOffline = "remote_offline"
)

// JSONError outputs an error as JSON
func JSONError(code, message string) {
	data, _ := json.Marshal(map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
	fmt.Println(string(data))
}

// FormatPrice formats a price with two decimals.
func FormatPrice(p float64) string {
	return fmt.Sprintf("$%.2f", p)
}

// FormatStatus formats a reservation status with color
func FormatStatus(s models.ReservationStatus) string {
	if s == "" {
		s = models.StatusPending
	}
	style, ok := statusStyles[s]
	if !ok {
		return string(s)
	}
	return style.Render(fmt.Sprintf("[%s]", s))
}

// StatusBadge returns a status indicator with symbol
// e.g., "○ pending", "✓ confirmed", "✗ cancelled"
func StatusBadge(s models.ReservationStatus) string {
	if s == "" {
		s = models.StatusPending
	}
	symbols := map[models.ReservationStatus]string{
		models.StatusPending:   "○",
		models.StatusConfirmed: "✓",
		models.StatusCancelled: "✗",
	}
	symbol, ok := symbols[s]
	if !ok {
		symbol = "?"
	}
	if style, ok := statusStyles[s]; ok {
		return style.Render(symbol + " " + string(s))
	}
	return symbol + " " + string(s)
}

// FormatMenuItemShort formats a menu item on one line, truncated to width
// when width > 0.
func FormatMenuItemShort(it models.MenuItem, width int) string {
	parts := []string{
		subtleStyle.Render(it.ID),
		titleStyle.Render(it.Name),
		priceStyle.Render(FormatPrice(it.Price)),
		subtleStyle.Render(it.Category),
	}
	if it.Featured {
		parts = append(parts, warningStyle.Render("★"))
	}
	if !it.Available {
		parts = append(parts, errorStyle.Render("[unavailable]"))
	}
	if storefront.IsTempID(it.ID) {
		parts = append(parts, subtleStyle.Render("(unsynced)"))
	}
	line := strings.Join(parts, "  ")
	if width > 0 {
		line = ansi.Truncate(line, width, "…")
	}
	return line
}

// FormatMenuItemLong formats a menu item with its description.
func FormatMenuItemLong(it models.MenuItem) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("%s: %s", it.ID, it.Name)))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Price: %s | Category: %s | Available: %t | Featured: %t\n",
		FormatPrice(it.Price), it.Category, it.Available, it.Featured))
	if it.Description != "" {
		sb.WriteString("\n")
		sb.WriteString(it.Description)
		sb.WriteString("\n")
	}
	if it.Image != "" {
		sb.WriteString(subtleStyle.Render(fmt.Sprintf("image: %d bytes encoded", len(it.Image))))
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatReservationShort formats a reservation on one line.
func FormatReservationShort(r models.Reservation, width int) string {
	parts := []string{
		subtleStyle.Render(r.ID),
		fmt.Sprintf("%s %s", r.Date, r.Time),
		titleStyle.Render(r.Name),
		fmt.Sprintf("%d guests", r.Guests),
		r.Phone,
		FormatStatus(r.Status),
	}
	line := strings.Join(parts, "  ")
	if width > 0 {
		line = ansi.Truncate(line, width, "…")
	}
	return line
}

// FormatReservationLong formats every field of a reservation.
func FormatReservationLong(r models.Reservation) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("%s: %s", r.ID, r.Name)))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Status: %s\n", StatusBadge(r.Status)))
	sb.WriteString(fmt.Sprintf("When: %s %s | Guests: %d\n", r.Date, r.Time, r.Guests))
	sb.WriteString(fmt.Sprintf("Phone: %s", r.Phone))
	if r.Email != "" {
		sb.WriteString(fmt.Sprintf(" | Email: %s", r.Email))
	}
	sb.WriteString("\n")
	if r.Notes != "" {
		sb.WriteString(subtleStyle.Render("Notes:"))
		sb.WriteString("\n")
		sb.WriteString(r.Notes)
		sb.WriteString("\n")
	}
	if t, err := time.Parse(time.RFC3339, r.CreatedAt); err == nil {
		sb.WriteString(subtleStyle.Render("booked " + FormatTimeAgo(t)))
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatCategory formats a category with its item count.
func FormatCategory(c models.Category, items int) string {
	return fmt.Sprintf("%s %s  %s  %s", c.Icon, titleStyle.Render(c.Name),
		subtleStyle.Render(c.ID), subtleStyle.Render(fmt.Sprintf("%d items", items)))
}

// OfflineBanner returns a one-line notice for a session that could not
// reach its remote store, or "" when connected.
func OfflineBanner(st storefront.State) string {
	if st.Connected {
		return ""
	}
	msg := "Offline: changes are kept locally only"
	if st.LastError != "" {
		msg += " (" + st.LastError + ")"
	}
	return bannerStyle.Render(msg)
}

// FormatTimeAgo formats a time as a human-readable "ago" string
func FormatTimeAgo(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}

// SectionHeader returns a formatted section header for CLI output
// e.g., "\nRESERVATIONS:\n"
func SectionHeader(title string) string {
	return fmt.Sprintf("\n%s:\n", strings.ToUpper(title))
}

// IndentString indents each line in a string by the specified number of spaces
func IndentString(s string, spaces int) string {
	if s == "" {
		return ""
	}
	indent := strings.Repeat(" ", spaces)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = indent + line
	}
	return strings.Join(lines, "\n")
}
