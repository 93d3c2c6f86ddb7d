package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazyseg/internal/filter"
	"github.com/rebeliceyang/lazyseg/internal/models"
)

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline draws bucket counts as block characters scaled to the largest count
func Sparkline(counts []int) string {
	peak := 0
	for _, c := range counts {
		if c > peak {
			peak = c
		}
	}
	if peak == 0 {
		return strings.Repeat(string(sparkBlocks[0]), len(counts))
	}

	var b strings.Builder
	for _, c := range counts {
		idx := c * (len(sparkBlocks) - 1) / peak
		b.WriteRune(sparkBlocks[idx])
	}
	return b.String()
}

// Columns renders one line per analyzed column with its type and a summary
// of its values
func Columns(columns []models.ColumnMetadata, theme Theme) string {
	rows := make([]models.Record, len(columns))
	for i, c := range columns {
		rows[i] = models.Record{
			"column":  c.Name,
			"type":    string(c.Type),
			"summary": columnSummary(c),
		}
	}
	return Table{
		Columns: []string{"column", "type", "summary"},
		Rows:    rows,
		Total:   len(rows),
		Theme:   theme,
	}.Render()
}

func columnSummary(c models.ColumnMetadata) string {
	switch {
	case c.Numeric != nil:
		counts := make([]int, len(c.Numeric.Histogram))
		for i, b := range c.Numeric.Histogram {
			counts[i] = b.Count
		}
		return fmt.Sprintf("%s..%s %s",
			models.DisplayValue(c.Numeric.Min), models.DisplayValue(c.Numeric.Max), Sparkline(counts))
	case c.Date != nil:
		counts := make([]int, len(c.Date.Histogram))
		for i, b := range c.Date.Histogram {
			counts[i] = b.Count
		}
		return fmt.Sprintf("%s..%s %s", c.Date.Min, c.Date.Max, Sparkline(counts))
	case c.Categorical != nil:
		return fmt.Sprintf("%d values: %s", len(c.Categorical.Unique), strings.Join(c.Categorical.Unique, ", "))
	}
	return ""
}

// Configs renders the filter widget chosen for each column
func Configs(configs []models.FilterConfig, theme Theme) string {
	rows := make([]models.Record, len(configs))
	for i, cfg := range configs {
		ops := make([]string, len(cfg.Operators))
		for j, op := range cfg.Operators {
			ops[j] = string(op)
		}
		options := make([]string, len(cfg.Options))
		for j, o := range cfg.Options {
			options[j] = models.DisplayValue(o)
		}
		rows[i] = models.Record{
			"field":     cfg.Field,
			"component": string(cfg.Component),
			"default":   string(cfg.DefaultOperator),
			"operators": strings.Join(ops, " "),
			"options":   strings.Join(options, ", "),
		}
	}
	return Table{
		Columns: []string{"field", "component", "default", "operators", "options"},
		Rows:    rows,
		Total:   len(rows),
		Theme:   theme,
	}.Render()
}

// State renders the filter expression and the match count
func State(state models.FilterState, matched, total int, theme Theme) string {
	expr := filter.Describe(&state.Root)
	if expr == "" {
		expr = lipgloss.NewStyle().Foreground(theme.Muted).Render("(no filters)")
	}

	countStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.Success)
	if matched == 0 {
		countStyle = countStyle.Foreground(theme.Warning)
	}
	return fmt.Sprintf("%s\n%s of %d records match", expr, countStyle.Render(fmt.Sprintf("%d", matched)), total)
}

// Segments renders a segment listing
func Segments(segments []models.Segment, theme Theme) string {
	rows := make([]models.Record, len(segments))
	for i, s := range segments {
		rows[i] = models.Record{
			"id":      s.ID,
			"name":    s.Name,
			"table":   s.Table,
			"matched": s.MatchedCount,
			"filters": filter.Describe(&s.Filters.Root),
			"updated": s.UpdatedAt.Local().Format("2006-01-02 15:04"),
		}
	}
	return Table{
		Columns: []string{"id", "name", "table", "matched", "filters", "updated"},
		Rows:    rows,
		Total:   len(rows),
		Theme:   theme,
	}.Render()
}

// Error renders an error message in the theme's error color
func Error(err error, theme Theme) string {
	return lipgloss.NewStyle().Foreground(theme.Error).Render("Error: " + err.Error())
}
