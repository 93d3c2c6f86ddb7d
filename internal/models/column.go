package models

// ColumnType is the semantic type inferred for a dataset column
type ColumnType string

const (
	ColumnNumeric     ColumnType = "NUMERIC"
	ColumnCategorical ColumnType = "CATEGORICAL"
	ColumnBoolean     ColumnType = "BOOLEAN"
	ColumnDate        ColumnType = "DATE"
	ColumnFreeText    ColumnType = "FREETEXT"
)

// ColumnMetadata describes a classified column and its distribution.
// Exactly one of the stats pointers is set for NUMERIC, DATE, CATEGORICAL and
// BOOLEAN columns; FREETEXT columns carry no stats.
type ColumnMetadata struct {
	Name        string            `json:"name" yaml:"name"`
	Type        ColumnType        `json:"type" yaml:"type"`
	Numeric     *NumericStats     `json:"numeric,omitempty" yaml:"numeric,omitempty"`
	Date        *DateStats        `json:"date,omitempty" yaml:"date,omitempty"`
	Categorical *CategoricalStats `json:"categorical,omitempty" yaml:"categorical,omitempty"`
}

// NumericStats summarizes a numeric column
type NumericStats struct {
	Min       float64         `json:"min" yaml:"min"`
	Max       float64         `json:"max" yaml:"max"`
	Histogram []NumericBucket `json:"histogram" yaml:"histogram"`
}

// NumericBucket is one equal-width histogram bucket, [Start, End)
type NumericBucket struct {
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"end" yaml:"end"`
	Count int     `json:"count" yaml:"count"`
}

// DateStats summarizes a date column. Dates are YYYY-MM-DD strings.
type DateStats struct {
	Min       string       `json:"min" yaml:"min"`
	Max       string       `json:"max" yaml:"max"`
	Histogram []DateBucket `json:"histogram" yaml:"histogram"`
}

// DateBucket is one day-granularity histogram bucket
type DateBucket struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
	Count int    `json:"count" yaml:"count"`
}

// CategoricalStats summarizes categorical and boolean columns
type CategoricalStats struct {
	Unique      []string     `json:"unique" yaml:"unique"`
	Frequencies []ValueCount `json:"frequencies" yaml:"frequencies"`
}

// ValueCount is a frequency entry keyed by stringified value
type ValueCount struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

// Count returns the frequency of value, or 0 if it never occurs
func (s *CategoricalStats) Count(value string) int {
	for _, vc := range s.Frequencies {
		if vc.Value == value {
			return vc.Count
		}
	}
	return 0
}
