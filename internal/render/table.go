package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/rebeliceyang/lazyseg/internal/models"
)

const (
	minColumnWidth = 4
	maxColumnWidth = 40
)

// Table renders records as an aligned text grid
type Table struct {
	Columns []string
	Rows    []models.Record
	// Total is the size of the set Rows was drawn from, for the status line
	Total   int
	Theme   Theme
}

// Render draws the header, a separator, every row and a status line
func (t Table) Render() string {
	if len(t.Columns) == 0 {
		return lipgloss.NewStyle().Foreground(t.Theme.Muted).Render("No data")
	}

	cells := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		cells[i] = make([]string, len(t.Columns))
		for j, col := range t.Columns {
			cells[i][j] = singleLine(models.DisplayValue(row[col]))
		}
	}
	widths := columnWidths(t.Columns, cells)

	var b strings.Builder

	var header []string
	for i, col := range t.Columns {
		header = append(header, pad(col, widths[i]))
	}
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(t.Theme.Header)
	b.WriteString(headerStyle.Render(" " + strings.Join(header, " │ ") + " "))
	b.WriteString("\n")

	var sep []string
	for _, w := range widths {
		sep = append(sep, strings.Repeat("─", w))
	}
	b.WriteString(lipgloss.NewStyle().Foreground(t.Theme.Border).Render("─" + strings.Join(sep, "─┼─") + "─"))
	b.WriteString("\n")

	for i, row := range t.Rows {
		parts := make([]string, len(t.Columns))
		for j, col := range t.Columns {
			parts[j] = t.styleValue(row[col]).Render(pad(cells[i][j], widths[j]))
		}
		b.WriteString(" " + strings.Join(parts, " │ ") + " \n")
	}

	total := t.Total
	if total < len(t.Rows) {
		total = len(t.Rows)
	}
	status := fmt.Sprintf(" %d of %d rows", len(t.Rows), total)
	b.WriteString(lipgloss.NewStyle().Foreground(t.Theme.Muted).Italic(true).Render(status))

	return b.String()
}

func (t Table) styleValue(v any) lipgloss.Style {
	style := lipgloss.NewStyle()
	switch v.(type) {
	case nil:
		return style.Foreground(t.Theme.Null)
	case bool:
		return style.Foreground(t.Theme.Boolean)
	case string:
		return style.Foreground(t.Theme.String)
	default:
		return style.Foreground(t.Theme.Number)
	}
}

func columnWidths(columns []string, cells [][]string) []int {
	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = runewidth.StringWidth(col)
	}
	for _, row := range cells {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i := range widths {
		if widths[i] > maxColumnWidth {
			widths[i] = maxColumnWidth
		}
		if widths[i] < minColumnWidth {
			widths[i] = minColumnWidth
		}
	}
	return widths
}

// pad truncates or right-pads s to exactly width display cells
func pad(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
