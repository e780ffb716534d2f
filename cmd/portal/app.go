package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/MeepoTu/rooch/internal/ui"
	"github.com/MeepoTu/rooch/internal/ui/component"
	"github.com/MeepoTu/rooch/internal/ui/router"
	"github.com/MeepoTu/rooch/internal/ui/screen"
)

// activityHeight is the number of rows kept for the activity pane.
const activityHeight = 8

// AppModel represents the main TUI application model
type AppModel struct {
	ctx      context.Context
	router   *router.Router
	services *ui.Services
	toast    *component.Toast
	activity *component.ActivityPane
	logger   *zap.Logger

	nextDialogID int
	width        int
	height       int
}

// NewAppModel creates a new application model
func NewAppModel(ctx context.Context, services *ui.Services, logger *zap.Logger) *AppModel {
	return &AppModel{
		ctx:      ctx,
		router:   router.New(screen.NewAssetsScreen(ctx, services)),
		services: services,
		toast:    component.NewToast(),
		activity: component.NewActivityPane(services.Activity),
		logger:   logger.Named("app"),
	}
}

// Init initializes the application
func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(
		m.router.Init(),
		ui.ListenBus(), // Start listening to the event bus
	)
}

// Update handles application-level updates
func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if env, ok := msg.(ui.BusMsg); ok {
		// Continue listening for events
		return m, tea.Batch(m.handle(env.Msg), ui.ListenBus())
	}
	return m, m.handle(msg)
}

func (m *AppModel) handle(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.activity.SetSize(msg.Width, activityHeight)
		m.router.SetSize(msg.Width, m.contentHeight())
		return nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return tea.Quit
		}
		return m.router.Update(msg)

	case ui.RouterMsg:
		return m.handleNavigation(msg)

	case ui.CloseDialogMsg:
		// Only the dialog that asked is closed; a stale request is ignored.
		if d, ok := m.router.Current().(*screen.TransferDialog); ok && d.ID() == msg.DialogID {
			return m.router.Pop()
		}
		return nil

	case ui.SuccessMsg:
		return m.toast.Show(component.ToastSuccess, msg.Title, msg.Message)

	case ui.ErrorMsg:
		text := "unknown error"
		if msg.Error != nil {
			text = msg.Error.Error()
		}
		return m.toast.Show(component.ToastError, msg.Title, text)

	case component.ToastExpiredMsg:
		m.toast.Update(msg)
		return nil

	default:
		return m.router.Update(msg)
	}
}

// handleNavigation handles navigation to different screens
func (m *AppModel) handleNavigation(msg ui.RouterMsg) tea.Cmd {
	switch msg.To {
	case ui.RouteTransfer:
		// One dialog at a time over the assets screen.
		if msg.Token == nil || m.router.Depth() > 1 {
			return nil
		}
		m.nextDialogID++
		m.logger.Debug("Opening transfer dialog",
			zap.Stringer("route", msg.To),
			zap.String("coin_type", msg.Token.CoinType),
			zap.Int("dialog_id", m.nextDialogID))
		return m.router.Push(screen.NewTransferDialog(m.ctx, m.nextDialogID, *msg.Token, m.services))

	default:
		// Unknown route, stay on current screen
		return nil
	}
}

func (m *AppModel) contentHeight() int {
	h := m.height - activityHeight - 3 // toast row
	if h < 10 {
		h = m.height
	}
	return h
}

// View renders the application
func (m *AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.router.View(),
		m.toast.View(),
		m.activity.View(),
	)
}
