package models

import (
	"fmt"
	"sort"
	"strconv"
)

// Record is a single row: field name to scalar value (string, number, bool or nil)
type Record map[string]any

// Dataset is an immutable snapshot of a table's rows
type Dataset struct {
	Table   string   `json:"table" yaml:"table"`
	Columns []string `json:"columns" yaml:"columns"`
	Records []Record `json:"records" yaml:"records"`
}

// NewDataset builds a dataset, deriving the column list from the records when
// columns is empty
func NewDataset(table string, columns []string, records []Record) *Dataset {
	if len(columns) == 0 {
		columns = ColumnsOf(records)
	}
	if records == nil {
		records = []Record{}
	}
	return &Dataset{
		Table:   table,
		Columns: columns,
		Records: records,
	}
}

// Values returns the raw values of column in row order
func (d *Dataset) Values(column string) []any {
	values := make([]any, len(d.Records))
	for i, r := range d.Records {
		values[i] = r[column]
	}
	return values
}

// Len returns the number of records
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// ColumnsOf returns the sorted union of keys across records
func ColumnsOf(records []Record) []string {
	seen := make(map[string]struct{})
	var columns []string
	for _, r := range records {
		for k := range r {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			columns = append(columns, k)
		}
	}
	sort.Strings(columns)
	return columns
}

// DisplayValue stringifies a value for display; nil becomes the empty string
func DisplayValue(v any) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
