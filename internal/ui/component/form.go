package component

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MeepoTu/rooch/internal/ui/style"
)

// FormField represents a single text field of a form
type FormField struct {
	Name        string
	Label       string
	Value       string
	Placeholder string
	Hint        string
	Required    bool
	Validation  func(string) error
	Error       string

	// Internal state
	textInput textinput.Model
}

// Form represents a form component with multiple text fields
type Form struct {
	fields     []FormField
	focusIndex int
	width      int
	height     int

	// Styling
	labelStyle   lipgloss.Style
	hintStyle    lipgloss.Style
	inputStyle   lipgloss.Style
	focusedStyle lipgloss.Style
	errorStyle   lipgloss.Style
}

// NewForm creates a new form component
func NewForm() *Form {
	palette := style.DefaultPalette()

	return &Form{
		fields: make([]FormField, 0),

		labelStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Bold(true).
			MarginRight(1),

		hintStyle: lipgloss.NewStyle().
			Foreground(palette.TextMuted),

		inputStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Background(palette.BackgroundAlt).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.TextMuted),

		focusedStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Background(palette.BackgroundAlt).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Primary),

		errorStyle: lipgloss.NewStyle().
			Foreground(palette.Error),
	}
}

// AddField adds a text field to the form
func (f *Form) AddField(name, label string, required bool, placeholder string) *Form {
	ti := textinput.New()
	ti.Width = 40
	ti.Placeholder = placeholder

	f.fields = append(f.fields, FormField{
		Name:        name,
		Label:       label,
		Placeholder: placeholder,
		Required:    required,
		textInput:   ti,
	})

	// Focus first field
	if len(f.fields) == 1 {
		f.fields[0].textInput.Focus()
	}

	return f
}

func (f *Form) field(name string) *FormField {
	for i := range f.fields {
		if f.fields[i].Name == name {
			return &f.fields[i]
		}
	}
	return nil
}

// SetFieldValue sets the value of a field
func (f *Form) SetFieldValue(name, value string) *Form {
	if field := f.field(name); field != nil {
		field.Value = value
		field.textInput.SetValue(value)
		field.textInput.CursorEnd()
	}
	return f
}

// SetFieldHint sets the muted text shown next to a field's label
func (f *Form) SetFieldHint(name, hint string) *Form {
	if field := f.field(name); field != nil {
		field.Hint = hint
	}
	return f
}

// SetFieldValidation sets a validation function for a field
func (f *Form) SetFieldValidation(name string, validation func(string) error) *Form {
	if field := f.field(name); field != nil {
		field.Validation = validation
	}
	return f
}

// SetFieldError shows err under the field. A nil err clears it.
func (f *Form) SetFieldError(name string, err error) *Form {
	if field := f.field(name); field != nil {
		field.Error = ""
		if err != nil {
			field.Error = err.Error()
		}
	}
	return f
}

// GetValue returns the value of a specific field
func (f *Form) GetValue(name string) string {
	if field := f.field(name); field != nil {
		return field.Value
	}
	return ""
}

// FieldError returns the error shown under a field
func (f *Form) FieldError(name string) string {
	if field := f.field(name); field != nil {
		return field.Error
	}
	return ""
}

// Focused returns the name of the focused field
func (f *Form) Focused() string {
	if len(f.fields) == 0 {
		return ""
	}
	return f.fields[f.focusIndex].Name
}

// Init initializes the form
func (f *Form) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles form input and updates
func (f *Form) Update(msg tea.Msg) (*Form, tea.Cmd) {
	if len(f.fields) == 0 {
		return f, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "tab", "down":
			f.moveFocus(1)
			return f, nil
		case "shift+tab", "up":
			f.moveFocus(-1)
			return f, nil
		case "enter":
			f.moveFocus(1)
			return f, nil
		}
	}

	// Update the focused field
	field := &f.fields[f.focusIndex]
	var cmd tea.Cmd
	field.textInput, cmd = field.textInput.Update(msg)
	if field.textInput.Value() != field.Value {
		field.Value = field.textInput.Value()
		f.validateField(field)
	}

	return f, cmd
}

// View renders the form
func (f *Form) View() string {
	if len(f.fields) == 0 {
		return "No fields defined"
	}

	var content strings.Builder

	for i, field := range f.fields {
		label := field.Label
		if field.Required {
			label += " *"
		}
		content.WriteString(f.labelStyle.Render(label))
		if field.Hint != "" {
			content.WriteString(f.hintStyle.Render(field.Hint))
		}
		content.WriteString("\n")

		fieldStyle := f.inputStyle
		if i == f.focusIndex {
			fieldStyle = f.focusedStyle
		}
		content.WriteString(fieldStyle.Render(field.textInput.View()))
		content.WriteString("\n")

		if field.Error != "" {
			content.WriteString(f.errorStyle.Render("⚠ " + field.Error))
			content.WriteString("\n")
		}

		// Add spacing between fields
		if i < len(f.fields)-1 {
			content.WriteString("\n")
		}
	}

	return content.String()
}

// moveFocus moves focus by delta fields, wrapping around
func (f *Form) moveFocus(delta int) {
	f.fields[f.focusIndex].textInput.Blur()
	f.focusIndex = (f.focusIndex + delta + len(f.fields)) % len(f.fields)
	f.fields[f.focusIndex].textInput.Focus()
}

func (f *Form) validateField(field *FormField) bool {
	field.Error = ""

	if strings.TrimSpace(field.Value) == "" {
		if field.Required {
			field.Error = "This field is required"
			return false
		}
		return true
	}

	if field.Validation != nil {
		if err := field.Validation(field.Value); err != nil {
			field.Error = err.Error()
			return false
		}
	}
	return true
}

// Validate validates all form fields
func (f *Form) Validate() bool {
	valid := true
	for i := range f.fields {
		if !f.validateField(&f.fields[i]) {
			valid = false
		}
	}
	return valid
}

// SetSize sets the form dimensions
func (f *Form) SetSize(width, height int) *Form {
	f.width = width
	f.height = height

	// Update input width
	inputWidth := width - 4 // Account for padding and borders
	if inputWidth > 10 {
		for i := range f.fields {
			f.fields[i].textInput.Width = inputWidth
		}
	}

	return f
}
