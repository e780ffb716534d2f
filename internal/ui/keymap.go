package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines keyboard shortcuts for the application
type KeyMap struct {
	// Global navigation
	Quit key.Binding
	Back key.Binding

	// Navigation
	Up       key.Binding
	Down     key.Binding
	Enter    key.Binding
	Tab      key.Binding
	ShiftTab key.Binding

	// Assets
	Transfer  key.Binding
	Refresh   key.Binding
	Authorize key.Binding
	Revoke    key.Binding

	// Transfer dialog
	Half    key.Binding
	Max     key.Binding
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),

		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev field"),
		),

		Transfer: key.NewBinding(
			key.WithKeys("enter", "t"),
			key.WithHelp("t", "transfer"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Authorize: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "authorize session"),
		),
		Revoke: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "revoke session"),
		),

		Half: key.NewBinding(
			key.WithKeys("alt+h"),
			key.WithHelp("alt+h", "half"),
		),
		Max: key.NewBinding(
			key.WithKeys("alt+m"),
			key.WithHelp("alt+m", "max"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// AssetsHelp returns the bindings shown on the assets screen.
func (k KeyMap) AssetsHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Transfer, k.Refresh, k.Authorize, k.Revoke, k.Quit}
}

// TransferHelp returns the bindings shown in the transfer dialog.
func (k KeyMap) TransferHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Half, k.Max, k.Confirm, k.Cancel}
}
