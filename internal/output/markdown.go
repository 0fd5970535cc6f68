package output

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

const (
	defaultWidth  = 80
	minProseWidth = 20
)

// TerminalWidth reports the width of stdout, then $COLUMNS, then fallback
// (80 when fallback is not positive).
func TerminalWidth(fallback int) int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	if n, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && n > 0 {
		return n
	}
	if fallback > 0 {
		return fallback
	}
	return defaultWidth
}

var (
	renderersMu sync.Mutex
	renderers   = map[int]*glamour.TermRenderer{}
)

// proseRenderer returns a cached glamour renderer wrapping at width. Output
// that is not a terminal gets the plain style so piped text stays readable.
// Callers hold renderersMu.
func proseRenderer(width int) (*glamour.TermRenderer, error) {
	if r, ok := renderers[width]; ok {
		return r, nil
	}
	style := glamour.WithAutoStyle()
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		style = glamour.WithStandardStyle("notty")
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return nil, err
	}
	renderers[width] = r
	return r, nil
}

// RenderMarkdownWithWidth renders the free-text business copy (description,
// about us) for the terminal.
func RenderMarkdownWithWidth(text string, width int) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	renderersMu.Lock()
	defer renderersMu.Unlock()
	r, err := proseRenderer(max(width, minProseWidth))
	if err != nil {
		return "", err
	}
	out, err := r.Render(text)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n"), nil
}

// Prose renders text at terminal width, returning it unchanged if glamour
// fails.
func Prose(text string) string {
	out, err := RenderMarkdownWithWidth(text, TerminalWidth(0))
	if err != nil {
		return strings.TrimSpace(text)
	}
	return out
}

// RenderSection renders body as prose under a section header, or nothing for
// an empty body.
func RenderSection(title, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return SectionHeader(title) + Prose(body) + "\n"
}
