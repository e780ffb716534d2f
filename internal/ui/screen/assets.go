package screen

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MeepoTu/rooch/internal/transfer"
	"github.com/MeepoTu/rooch/internal/ui"
	"github.com/MeepoTu/rooch/internal/ui/component"
	"github.com/MeepoTu/rooch/internal/ui/router"
	"github.com/MeepoTu/rooch/internal/ui/style"
)

// AssetsScreen lists the owner's coin balances
type AssetsScreen struct {
	ctx      context.Context
	services *ui.Services
	width    int
	height   int
	keyMap   ui.KeyMap

	// UI components
	header  *component.StatusHeader
	table   *component.Table
	helpBar *component.HelpBar

	// State
	balances  []transfer.TokenBalance
	loaded    bool
	loading   bool
	lastErr   error
	fetchedAt time.Time
}

// NewAssetsScreen creates the balance list screen
func NewAssetsScreen(ctx context.Context, services *ui.Services) *AssetsScreen {
	keyMap := ui.DefaultKeyMap()

	s := &AssetsScreen{
		ctx:      ctx,
		services: services,
		keyMap:   keyMap,
		header:   component.NewStatusHeader(),
		table: component.NewTable().
			AddColumn("Symbol", 10, lipgloss.Left).
			AddColumn("Name", 20, lipgloss.Left).
			AddColumn("Balance", 24, lipgloss.Right).
			AddColumn("Coin Type", 0, lipgloss.Left),
		helpBar: component.NewHelpBar().SetKeyBindings(keyMap.AssetsHelp()),
	}
	s.header.SetOwner(services.Owner)
	return s
}

// Init loads cached balances and fetches fresh ones the first time
func (s *AssetsScreen) Init() tea.Cmd {
	if s.services.Cache != nil {
		snap := s.services.Cache.Snapshot()
		if !snap.UpdatedAt.IsZero() || snap.Err != nil {
			s.apply(ui.BalancesMsg{Balances: snap.Balances, Err: snap.Err, FetchedAt: snap.UpdatedAt})
		}
	}
	if s.loaded || s.loading {
		return nil
	}
	s.loading = true
	return s.services.FetchBalancesCmd(s.ctx)
}

// Update handles screen updates
func (s *AssetsScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.BalancesMsg:
		s.apply(msg)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.keyMap.Quit):
			return s, tea.Quit

		case key.Matches(msg, s.keyMap.Up):
			s.table.MoveUp()

		case key.Matches(msg, s.keyMap.Down):
			s.table.MoveDown()

		case key.Matches(msg, s.keyMap.Transfer):
			if token, ok := s.Selected(); ok {
				return s, func() tea.Msg {
					return ui.RouterMsg{To: ui.RouteTransfer, Token: &token}
				}
			}

		case key.Matches(msg, s.keyMap.Refresh):
			if !s.loading {
				s.loading = true
				return s, s.services.FetchBalancesCmd(s.ctx)
			}

		case key.Matches(msg, s.keyMap.Authorize):
			return s, s.authorize()

		case key.Matches(msg, s.keyMap.Revoke):
			s.services.RevokeSession()
			return s, func() tea.Msg {
				return ui.SuccessMsg{Title: "Session", Message: "Session revoked"}
			}
		}
	}

	return s, nil
}

func (s *AssetsScreen) authorize() tea.Cmd {
	sess, err := s.services.AuthorizeSession()
	if err != nil {
		return func() tea.Msg {
			return ui.ErrorMsg{Title: "Session", Error: err}
		}
	}

	text := "Session authorized"
	if sess.MaxInactiveInterval > 0 {
		text = fmt.Sprintf("Session authorized for %s of inactivity", sess.MaxInactiveInterval)
	}
	return func() tea.Msg {
		return ui.SuccessMsg{Title: "Session", Message: text}
	}
}

// apply stores a fetch result. A failed fetch keeps the previous rows.
func (s *AssetsScreen) apply(msg ui.BalancesMsg) {
	s.loading = false
	s.lastErr = msg.Err
	if msg.Err == nil {
		s.balances = msg.Balances
		s.fetchedAt = msg.FetchedAt
		s.loaded = true
	}

	rows := make([][]string, 0, len(s.balances))
	for _, b := range s.balances {
		rows = append(rows, []string{
			b.Symbol,
			b.Name,
			b.DisplayBalance(s.services.DisplayPrecision),
			b.CoinType,
		})
	}
	s.table.SetRows(rows)
	s.header.SetRPCStatus(component.RPCStatus{
		Connected: s.loaded,
		LastCheck: s.fetchedAt,
		Err:       s.lastErr,
	})
}

// Selected returns the balance under the cursor
func (s *AssetsScreen) Selected() (transfer.TokenBalance, bool) {
	i := s.table.GetSelectedRow()
	if i < 0 || i >= len(s.balances) {
		return transfer.TokenBalance{}, false
	}
	return s.balances[i], true
}

// View renders the screen
func (s *AssetsScreen) View() string {
	now := time.Now()
	if sess, ok := s.services.CurrentSession(); ok {
		s.header.SetSession(&sess, now)
	} else {
		s.header.SetSession(nil, now)
	}

	var body string
	switch {
	case s.loading && !s.loaded:
		body = style.PanelStyle.Render(style.MutedStyle.Render("Loading balances..."))
	case s.loaded && len(s.balances) == 0:
		body = style.PanelStyle.Render(style.MutedStyle.Render("No coins found for this account"))
	case s.loaded:
		body = s.table.View()
	}

	status := ""
	if s.lastErr != nil {
		status = style.ErrorStyle.Render("Failed to load balances: " + s.lastErr.Error())
	} else if s.loading {
		status = style.MutedStyle.Render("Refreshing...")
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		s.header.View(),
		style.TitleStyle.Render("Assets"),
		body,
		status,
		s.helpBar.View(),
	)
}

// SetSize sets the screen dimensions
func (s *AssetsScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.header.SetWidth(width)
	s.table.SetWidth(width)
	s.helpBar.SetWidth(width)
}
