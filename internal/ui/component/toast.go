package component

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MeepoTu/rooch/internal/ui/style"
)

// DefaultToastDuration is how long a toast stays visible.
const DefaultToastDuration = 4 * time.Second

// ToastKind selects the toast color.
type ToastKind int

const (
	ToastSuccess ToastKind = iota
	ToastError
)

// ToastExpiredMsg hides the toast shown with the same sequence number.
type ToastExpiredMsg struct {
	Seq int
}

// Toast shows one transient notification at a time. A newer toast replaces the old one.
type Toast struct {
	kind     ToastKind
	title    string
	text     string
	seq      int
	visible  bool
	duration time.Duration

	successStyle lipgloss.Style
	errorStyle   lipgloss.Style
}

// NewToast creates a hidden toast.
func NewToast() *Toast {
	palette := style.DefaultPalette()

	return &Toast{
		duration: DefaultToastDuration,
		successStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Success).
			Foreground(palette.Success).
			Padding(0, 1),
		errorStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Error).
			Foreground(palette.Error).
			Padding(0, 1),
	}
}

// Show displays text and returns the command that hides it later.
func (t *Toast) Show(kind ToastKind, title, text string) tea.Cmd {
	t.seq++
	t.kind = kind
	t.title = title
	t.text = text
	t.visible = true

	seq := t.seq
	return tea.Tick(t.duration, func(time.Time) tea.Msg {
		return ToastExpiredMsg{Seq: seq}
	})
}

// Update hides the toast when its timer fires.
func (t *Toast) Update(msg tea.Msg) {
	if m, ok := msg.(ToastExpiredMsg); ok && m.Seq == t.seq {
		t.visible = false
	}
}

// Visible reports whether a toast is showing.
func (t *Toast) Visible() bool {
	return t.visible
}

// Text returns the current toast text.
func (t *Toast) Text() string {
	return t.text
}

// View renders the toast or an empty string.
func (t *Toast) View() string {
	if !t.visible {
		return ""
	}

	content := t.text
	if t.title != "" {
		content = t.title + ": " + t.text
	}
	if t.kind == ToastError {
		return t.errorStyle.Render("✗ " + content)
	}
	return t.successStyle.Render("✓ " + content)
}
