package ui

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MeepoTu/rooch/internal/transfer"
)

// Tea message types for UI communication

// RouterMsg represents navigation between screens
type RouterMsg struct {
	To Route
	// Token is the balance row a transfer dialog is opened for.
	Token *transfer.TokenBalance
}

// ErrorMsg represents error conditions
type ErrorMsg struct {
	Error error
	Title string
}

// SuccessMsg represents success conditions
type SuccessMsg struct {
	Message string
	Title   string
}

// CloseDialogMsg asks the app to close the transfer dialog with the given ID.
type CloseDialogMsg struct {
	DialogID int
}

// BalancesMsg carries the result of a balance fetch.
type BalancesMsg struct {
	Balances  []transfer.TokenBalance
	Err       error
	FetchedAt time.Time
}

// BusMsg wraps a message delivered through the bus so the app knows to keep listening.
type BusMsg struct {
	Msg tea.Msg
}

// Event Bus for UI communication
var (
	// Bus is the global event bus for UI communication
	Bus = make(chan tea.Msg, 1024)

	sentUpdates    uint64
	droppedUpdates uint64
)

// Publish sends msg to the bus without blocking. When the bus is full the message is dropped.
func Publish(msg tea.Msg) bool {
	select {
	case Bus <- msg:
		atomic.AddUint64(&sentUpdates, 1)
		return true
	default:
		atomic.AddUint64(&droppedUpdates, 1)
		return false
	}
}

// PublishError publishes an error message to the UI bus
func PublishError(err error, title string) {
	Publish(ErrorMsg{Error: err, Title: title})
}

// PublishSuccess publishes a success message to the UI bus
func PublishSuccess(message, title string) {
	Publish(SuccessMsg{Message: message, Title: title})
}

// BusStats returns how many messages were delivered to and dropped by the bus.
func BusStats() (sent, dropped uint64) {
	return atomic.LoadUint64(&sentUpdates), atomic.LoadUint64(&droppedUpdates)
}

// ListenBus returns a tea.Cmd that waits for the next bus message.
// The receiver must call it again after handling the BusMsg.
func ListenBus() tea.Cmd {
	return func() tea.Msg {
		return BusMsg{Msg: <-Bus}
	}
}

// Route represents different screens in the application
type Route int

// The zero Route is not a destination.
const (
	RouteTransfer Route = iota + 1
)

// String returns the string representation of the route
func (r Route) String() string {
	switch r {
	case RouteTransfer:
		return "transfer"
	default:
		return "unknown"
	}
}
