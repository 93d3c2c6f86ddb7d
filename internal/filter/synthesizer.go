package filter

import (
	"sort"

	"github.com/rebeliceyang/lazyseg/internal/models"
)

// CheckboxLimit is the largest option count rendered as checkboxes rather than a multi-select
const CheckboxLimit = 5

// SynthesizeAll derives a FilterConfig for each column, in column order
func SynthesizeAll(columns []models.ColumnMetadata) []models.FilterConfig {
	configs := make([]models.FilterConfig, 0, len(columns))
	for _, col := range columns {
		configs = append(configs, Synthesize(col))
	}
	return configs
}

// Synthesize maps classified column metadata to a filter descriptor
func Synthesize(meta models.ColumnMetadata) models.FilterConfig {
	cfg := models.FilterConfig{
		Field:     meta.Name,
		Type:      meta.Type,
		Operators: AvailableOperators(meta.Type),
	}

	switch meta.Type {
	case models.ColumnNumeric:
		cfg.Component = models.ComponentSlider
		cfg.DefaultOperator = models.OpBetween
		if meta.Numeric != nil {
			spec := &models.RangeSpec{Min: meta.Numeric.Min, Max: meta.Numeric.Max}
			for _, b := range meta.Numeric.Histogram {
				spec.Buckets = append(spec.Buckets, models.RangeBucket{Start: b.Start, End: b.End, Count: b.Count})
			}
			cfg.Range = spec
		}

	case models.ColumnCategorical:
		cfg.DefaultOperator = models.OpIn
		cfg.Component = models.ComponentMultiSelect
		if meta.Categorical != nil {
			if len(meta.Categorical.Unique) <= CheckboxLimit {
				cfg.Component = models.ComponentCheckbox
			}
			options := make([]string, len(meta.Categorical.Unique))
			copy(options, meta.Categorical.Unique)
			sort.Strings(options)
			for _, o := range options {
				cfg.Options = append(cfg.Options, o)
			}
		}

	case models.ColumnBoolean:
		cfg.Component = models.ComponentSwitch
		cfg.DefaultOperator = models.OpEqual
		cfg.Options = []any{true, false}

	case models.ColumnDate:
		cfg.Component = models.ComponentDateRange
		cfg.DefaultOperator = models.OpBetween
		if meta.Date != nil {
			spec := &models.RangeSpec{Min: meta.Date.Min, Max: meta.Date.Max}
			for _, b := range meta.Date.Histogram {
				spec.Buckets = append(spec.Buckets, models.RangeBucket{Start: b.Start, End: b.End, Count: b.Count})
			}
			cfg.Range = spec
		}

	default:
		cfg.Component = models.ComponentInput
		cfg.DefaultOperator = models.OpEqual
	}

	return cfg
}

// AvailableOperators returns the operators offered for a column type
func AvailableOperators(columnType models.ColumnType) []models.Operator {
	switch columnType {
	case models.ColumnNumeric, models.ColumnDate:
		return []models.Operator{
			models.OpEqual, models.OpNotEqual,
			models.OpGreaterThan, models.OpGreaterOrEqual,
			models.OpLessThan, models.OpLessOrEqual,
			models.OpBetween,
		}
	case models.ColumnCategorical:
		return []models.Operator{
			models.OpIn, models.OpNotIn,
		}
	case models.ColumnBoolean:
		return []models.Operator{
			models.OpEqual, models.OpNotEqual,
		}
	default:
		return []models.Operator{
			models.OpEqual, models.OpNotEqual,
			models.OpContains, models.OpNotContains,
		}
	}
}
