package component

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/MeepoTu/rooch/internal/ui/style"
)

// TableColumn represents a column configuration
type TableColumn struct {
	Header string
	Width  int
	Align  lipgloss.Position
}

// Table represents a selectable data table component
type Table struct {
	columns     []TableColumn
	rows        [][]string
	width       int
	selectedRow int

	// Styling
	headerStyle      lipgloss.Style
	rowStyle         lipgloss.Style
	selectedRowStyle lipgloss.Style
	borderStyle      lipgloss.Style
}

// NewTable creates a new table component
func NewTable() *Table {
	palette := style.DefaultPalette()

	return &Table{
		headerStyle: lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true).
			Padding(0, 1),

		rowStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 1),

		selectedRowStyle: lipgloss.NewStyle().
			Foreground(palette.Background).
			Background(palette.Primary).
			Padding(0, 1),

		borderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.TextMuted),
	}
}

// AddColumn adds a column to the table. A zero width shares the remaining space.
func (t *Table) AddColumn(header string, width int, align lipgloss.Position) *Table {
	t.columns = append(t.columns, TableColumn{
		Header: header,
		Width:  width,
		Align:  align,
	})
	return t
}

// SetRows sets all table rows and keeps the selection in range
func (t *Table) SetRows(rows [][]string) *Table {
	t.rows = rows
	if t.selectedRow >= len(t.rows) {
		t.selectedRow = len(t.rows) - 1
	}
	if t.selectedRow < 0 {
		t.selectedRow = 0
	}
	return t
}

// SetWidth sets the table width
func (t *Table) SetWidth(width int) *Table {
	t.width = width
	return t
}

// GetSelectedRow returns the currently selected row index
func (t *Table) GetSelectedRow() int {
	return t.selectedRow
}

// GetRowCount returns the number of rows
func (t *Table) GetRowCount() int {
	return len(t.rows)
}

// MoveUp moves selection up
func (t *Table) MoveUp() *Table {
	if t.selectedRow > 0 {
		t.selectedRow--
	}
	return t
}

// MoveDown moves selection down
func (t *Table) MoveDown() *Table {
	if t.selectedRow < len(t.rows)-1 {
		t.selectedRow++
	}
	return t
}

// View renders the table
func (t *Table) View() string {
	if len(t.columns) == 0 {
		return "No columns defined"
	}

	widths := t.columnWidths()
	var content strings.Builder

	for i, col := range t.columns {
		content.WriteString(t.renderCell(col.Header, widths[i], col.Align, t.headerStyle))
		if i < len(t.columns)-1 {
			content.WriteString("│")
		}
	}
	content.WriteString("\n")

	for i := range t.columns {
		content.WriteString(strings.Repeat("─", widths[i]))
		if i < len(t.columns)-1 {
			content.WriteString("┼")
		}
	}

	for rowIndex, row := range t.rows {
		content.WriteString("\n")

		rowStyle := t.rowStyle
		if rowIndex == t.selectedRow {
			rowStyle = t.selectedRowStyle
		}

		for i, col := range t.columns {
			cellData := ""
			if i < len(row) {
				cellData = row[i]
			}
			content.WriteString(t.renderCell(cellData, widths[i], col.Align, rowStyle))
			if i < len(t.columns)-1 {
				content.WriteString("│")
			}
		}
	}

	return t.borderStyle.Render(content.String())
}

// renderCell renders a single table cell
func (t *Table) renderCell(content string, width int, align lipgloss.Position, style lipgloss.Style) string {
	// Cell padding takes two columns
	inner := width - 2
	if inner > 0 && lipgloss.Width(content) > inner {
		runes := []rune(content)
		if inner > 3 && len(runes) > inner-3 {
			content = string(runes[:inner-3]) + "..."
		} else if len(runes) > inner {
			content = string(runes[:inner])
		}
	}

	return style.Width(width).Align(align).Render(content)
}

// columnWidths returns explicit widths and spreads the remaining space over auto columns
func (t *Table) columnWidths() []int {
	widths := make([]int, len(t.columns))
	explicit, auto := 0, 0
	for i, col := range t.columns {
		widths[i] = col.Width
		if col.Width > 0 {
			explicit += col.Width
		} else {
			auto++
		}
	}
	if auto == 0 {
		return widths
	}

	available := t.width - explicit - (len(t.columns) - 1) - 2 // separators and border
	autoWidth := 12
	if available/auto > autoWidth {
		autoWidth = available / auto
	}
	for i := range widths {
		if widths[i] <= 0 {
			widths[i] = autoWidth
		}
	}
	return widths
}
