package models

// Component is the widget hint attached to a FilterConfig
type Component string

const (
	ComponentSlider      Component = "slider"
	ComponentCheckbox    Component = "checkbox"
	ComponentMultiSelect Component = "multi-select"
	ComponentSwitch      Component = "switch"
	ComponentDateRange   Component = "date-range"
	ComponentInput       Component = "input"
)

// FilterConfig is a UI-agnostic description of how a column can be filtered
type FilterConfig struct {
	Field           string     `json:"field" yaml:"field"`
	Type            ColumnType `json:"type" yaml:"type"`
	Component       Component  `json:"component" yaml:"component"`
	Options         []any      `json:"options,omitempty" yaml:"options,omitempty"`
	Range           *RangeSpec `json:"range,omitempty" yaml:"range,omitempty"`
	DefaultOperator Operator   `json:"defaultOperator" yaml:"default_operator"`
	Operators       []Operator `json:"operators" yaml:"operators"`
}

// RangeSpec is the value domain of slider and date-range widgets.
// Min and Max are float64 for numeric columns and date strings for date columns.
type RangeSpec struct {
	Min     any           `json:"min" yaml:"min"`
	Max     any           `json:"max" yaml:"max"`
	Buckets []RangeBucket `json:"buckets" yaml:"buckets"`
}

// RangeBucket mirrors a histogram bucket in widget terms
type RangeBucket struct {
	Start any `json:"start" yaml:"start"`
	End   any `json:"end" yaml:"end"`
	Count int `json:"count" yaml:"count"`
}
