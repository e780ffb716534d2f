package component

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/MeepoTu/rooch/internal/logger"
	"github.com/MeepoTu/rooch/internal/ui/style"
)

// ActivityPane shows the most recent log entries kept by a logger.Ring.
type ActivityPane struct {
	ring     *logger.Ring
	viewport viewport.Model
	limit    int
	title    string
	width    int
	height   int

	container lipgloss.Style
	titleSt   lipgloss.Style
	timestamp lipgloss.Style
	errorSt   lipgloss.Style
	warning   lipgloss.Style
	info      lipgloss.Style
	debug     lipgloss.Style
}

// NewActivityPane creates a pane reading from ring.
func NewActivityPane(ring *logger.Ring) *ActivityPane {
	palette := style.DefaultPalette()

	return &ActivityPane{
		ring:     ring,
		limit:    50,
		title:    "Activity",
		viewport: viewport.New(50, 4),

		container: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Info).
			Padding(0, 1),
		titleSt: lipgloss.NewStyle().
			Foreground(palette.Info).
			Bold(true),
		timestamp: lipgloss.NewStyle().
			Foreground(palette.TextMuted),
		errorSt: lipgloss.NewStyle().
			Foreground(palette.Error).
			Bold(true),
		warning: lipgloss.NewStyle().
			Foreground(palette.Warning),
		info: lipgloss.NewStyle().
			Foreground(palette.Text),
		debug: lipgloss.NewStyle().
			Foreground(palette.TextMuted),
	}
}

// SetSize sets the component dimensions
func (a *ActivityPane) SetSize(width, height int) {
	a.width = width
	a.height = height

	// Border, padding and title
	w := width - 4
	h := height - 3
	if w < 10 {
		w = 10
	}
	if h < 2 {
		h = 2
	}
	a.viewport.Width = w
	a.viewport.Height = h
}

// View renders the pane
func (a *ActivityPane) View() string {
	a.refresh()

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		a.titleSt.Render(a.title),
		a.viewport.View(),
	)
	return a.container.Render(content)
}

// refresh reloads the viewport from the ring and scrolls to the newest entry
func (a *ActivityPane) refresh() {
	if a.ring == nil {
		a.viewport.SetContent("No activity")
		return
	}

	entries := a.ring.Recent(a.limit)
	if len(entries) == 0 {
		a.viewport.SetContent("No activity")
		return
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, a.format(e))
	}
	a.viewport.SetContent(strings.Join(lines, "\n"))
	a.viewport.GotoBottom()
}

func (a *ActivityPane) format(e logger.Entry) string {
	ts := a.timestamp.Render(e.Time.Format("15:04:05"))

	var msg string
	switch strings.ToLower(e.Level) {
	case "error", "dpanic", "panic", "fatal":
		msg = a.errorSt.Render(e.Message)
	case "warn", "warning":
		msg = a.warning.Render(e.Message)
	case "debug":
		msg = a.debug.Render(e.Message)
	default:
		msg = a.info.Render(e.Message)
	}

	if e.Logger != "" {
		return fmt.Sprintf("%s %s %s", ts, a.timestamp.Render("["+e.Logger+"]"), msg)
	}
	return fmt.Sprintf("%s %s", ts, msg)
}
