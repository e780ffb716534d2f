package router

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

type fakeScreen struct {
	name          string
	width, height int
	closed        int
	updates       int
}

func (s *fakeScreen) Init() tea.Cmd { return nil }

func (s *fakeScreen) Update(tea.Msg) (Screen, tea.Cmd) {
	s.updates++
	return s, nil
}

func (s *fakeScreen) View() string { return s.name }

func (s *fakeScreen) SetSize(w, h int) { s.width, s.height = w, h }

func (s *fakeScreen) Close() { s.closed++ }

func TestRouter_PushPopClosesScreen(t *testing.T) {
	root := &fakeScreen{name: "assets"}
	dialog := &fakeScreen{name: "dialog"}
	r := New(root)
	r.SetSize(80, 24)

	r.Push(dialog)
	assert.Equal(t, 2, r.Depth())
	assert.Equal(t, "dialog", r.View())
	assert.Equal(t, 80, dialog.width)

	r.Pop()
	assert.Equal(t, 1, r.Depth())
	assert.Equal(t, 1, dialog.closed)
	assert.Equal(t, "assets", r.View())

	// The root screen is never popped.
	r.Pop()
	assert.Equal(t, 1, r.Depth())
	assert.Zero(t, root.closed)
}

func TestRouter_EscPopsTop(t *testing.T) {
	root := &fakeScreen{name: "assets"}
	dialog := &fakeScreen{name: "dialog"}
	r := New(root)
	r.Push(dialog)

	r.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, 1, r.Depth())
	assert.Equal(t, 1, dialog.closed)
	assert.Zero(t, dialog.updates)

	// On the root screen esc is forwarded.
	r.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, 1, root.updates)
}

func TestRouter_WindowSizeReachesCurrent(t *testing.T) {
	root := &fakeScreen{name: "assets"}
	r := New(root)

	r.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 120, root.width)
	assert.Equal(t, 40, root.height)
}

func TestRouter_CurrentTracksTop(t *testing.T) {
	root := &fakeScreen{name: "assets"}
	dialog := &fakeScreen{name: "dialog"}
	r := New(root)
	assert.Same(t, root, r.Current())

	r.Push(dialog)
	assert.Same(t, dialog, r.Current())

	r.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.Equal(t, 1, dialog.updates)
	assert.Zero(t, root.updates)
}
