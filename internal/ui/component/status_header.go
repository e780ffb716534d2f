package component

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/MeepoTu/rooch/internal/logger"
	"github.com/MeepoTu/rooch/internal/session"
	"github.com/MeepoTu/rooch/internal/ui/style"
)

// RPCStatus represents the outcome of the last balance fetch
type RPCStatus struct {
	Connected bool
	LastCheck time.Time
	Err       error
}

// StatusHeader shows the owner, RPC status and session state
type StatusHeader struct {
	owner     string
	rpcStatus RPCStatus
	session   *session.Session
	now       time.Time
	width     int

	container lipgloss.Style
	title     lipgloss.Style
	muted     lipgloss.Style
	good      lipgloss.Style
	bad       lipgloss.Style
}

// NewStatusHeader creates a new status header component
func NewStatusHeader() *StatusHeader {
	palette := style.DefaultPalette()

	return &StatusHeader{
		container: lipgloss.NewStyle().
			Foreground(palette.Text).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Primary).
			Padding(0, 2),
		title: lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true),
		muted: lipgloss.NewStyle().
			Foreground(palette.TextSecondary),
		good: lipgloss.NewStyle().
			Foreground(palette.Success).
			Bold(true),
		bad: lipgloss.NewStyle().
			Foreground(palette.Error).
			Bold(true),
	}
}

// SetOwner updates the owner address display
func (sh *StatusHeader) SetOwner(owner string) {
	sh.owner = logger.ShortenAddress(owner)
}

// SetRPCStatus updates the RPC connection status
func (sh *StatusHeader) SetRPCStatus(status RPCStatus) {
	sh.rpcStatus = status
}

// SetSession updates the session display. A nil session means none is authorized.
func (sh *StatusHeader) SetSession(s *session.Session, now time.Time) {
	sh.session = s
	sh.now = now
}

// SetWidth sets the component width for responsive layout
func (sh *StatusHeader) SetWidth(width int) {
	sh.width = width
}

// View renders the status header
func (sh *StatusHeader) View() string {
	content := lipgloss.JoinHorizontal(
		lipgloss.Left,
		sh.title.Render("Rooch Portal"),
		" | ",
		sh.muted.Render(fmt.Sprintf("Owner: %s", sh.owner)),
		" | ",
		sh.renderRPCStatus(),
		" | ",
		sh.renderSession(),
	)

	container := sh.container
	if sh.width > 4 {
		container = container.Width(sh.width - 2)
	}
	return container.Render(content)
}

func (sh *StatusHeader) renderRPCStatus() string {
	switch {
	case sh.rpcStatus.Err != nil:
		return sh.bad.Render("RPC: error")
	case sh.rpcStatus.Connected:
		return sh.good.Render(fmt.Sprintf("RPC: OK (%s)", sh.rpcStatus.LastCheck.Format("15:04:05")))
	default:
		return sh.muted.Render("RPC: loading")
	}
}

func (sh *StatusHeader) renderSession() string {
	if sh.session == nil || !sh.session.Active(sh.now) {
		return sh.bad.Render("Session: none")
	}
	if sh.session.MaxInactiveInterval <= 0 {
		return sh.good.Render("Session: active")
	}
	left := sh.session.ExpiresAt().Sub(sh.now).Round(time.Second)
	return sh.good.Render(fmt.Sprintf("Session: active (%s left)", left))
}
