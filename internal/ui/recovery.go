package ui

import (
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// SafeModel wraps a model with panic recovery so one bad message does not take down the terminal
type SafeModel struct {
	model  tea.Model
	logger *zap.Logger
	panics int
}

// NewSafeModel creates a new safe UI wrapper
func NewSafeModel(model tea.Model, logger *zap.Logger) *SafeModel {
	return &SafeModel{
		model:  model,
		logger: logger.Named("ui_recovery"),
	}
}

// Init wraps the Init method with panic recovery
func (sm *SafeModel) Init() (cmd tea.Cmd) {
	defer sm.recoverFromPanic("Init", true, &cmd)
	return sm.model.Init()
}

// Update wraps the Update method with panic recovery
func (sm *SafeModel) Update(msg tea.Msg) (model tea.Model, cmd tea.Cmd) {
	model = sm
	_, fromBus := msg.(BusMsg)
	defer sm.recoverFromPanic("Update", fromBus, &cmd)

	next, cmd := sm.model.Update(msg)
	if next != nil {
		sm.model = next
	}
	return sm, cmd
}

// View wraps the View method with panic recovery
func (sm *SafeModel) View() (view string) {
	defer func() {
		if r := recover(); r != nil {
			sm.logger.Error("View panic recovered",
				zap.Any("panic", r),
				zap.String("stack", string(debug.Stack())))
			view = "UI Error: View crashed. Press Ctrl+C to exit."
		}
	}()
	return sm.model.View()
}

// Panics returns how many panics were recovered
func (sm *SafeModel) Panics() int {
	return sm.panics
}

// recoverFromPanic recovers from panics in UI methods. When the panicking call
// owned the bus listener it is re-armed.
func (sm *SafeModel) recoverFromPanic(method string, relisten bool, cmd *tea.Cmd) {
	if r := recover(); r != nil {
		sm.panics++
		sm.logger.Error("UI method panic recovered",
			zap.String("method", method),
			zap.Any("panic", r),
			zap.String("stack", string(debug.Stack())))
		*cmd = nil
		if relisten {
			*cmd = ListenBus()
		}
	}
}
