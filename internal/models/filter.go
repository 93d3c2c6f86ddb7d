package models

// Operator represents a filter comparison operator
type Operator string

const (
	OpEqual          Operator = "="
	OpNotEqual       Operator = "!="
	OpGreaterThan    Operator = ">"
	OpGreaterOrEqual Operator = ">="
	OpLessThan       Operator = "<"
	OpLessOrEqual    Operator = "<="
	OpBetween        Operator = "between"
	OpIn             Operator = "in"
	OpNotIn          Operator = "not_in"
	OpContains       Operator = "contains"
	OpNotContains    Operator = "not_contains"
)

// Logic combines the children of a FilterGroup
type Logic string

const (
	LogicAnd Logic = "AND"
	LogicOr  Logic = "OR"
)

// FilterNode is either a *FilterCondition or a *FilterGroup
type FilterNode interface {
	filterNode()
}

// FilterCondition represents a single leaf condition
type FilterCondition struct {
	Field    string
	Type     ColumnType
	Operator Operator
	Value    FilterValue
}

func (*FilterCondition) filterNode() {}

// FilterGroup represents a group of conditions with AND/OR logic
type FilterGroup struct {
	Operator   Logic
	Conditions []FilterNode
}

func (*FilterGroup) filterNode() {}

// ActiveFilter is the per-field filter selection driven by the UI
type ActiveFilter struct {
	Field    string
	Type     ColumnType
	Operator Operator
	Value    FilterValue
}

// ActiveFilters keeps per-field selections in field order
type ActiveFilters []ActiveFilter

// Index returns the position of field, or -1
func (a ActiveFilters) Index(field string) int {
	for i, f := range a {
		if f.Field == field {
			return i
		}
	}
	return -1
}

// Get returns the active filter for field
func (a ActiveFilters) Get(field string) (ActiveFilter, bool) {
	if i := a.Index(field); i >= 0 {
		return a[i], true
	}
	return ActiveFilter{}, false
}

// FilterState represents the complete filter state
type FilterState struct {
	Root          FilterGroup   `json:"root" yaml:"root"`
	ActiveFilters ActiveFilters `json:"activeFilters" yaml:"activeFilters"`
}

// Clone returns a copy that shares no slices with s
func (s FilterState) Clone() FilterState {
	out := FilterState{
		Root: FilterGroup{Operator: s.Root.Operator},
	}
	if s.Root.Conditions != nil {
		out.Root.Conditions = make([]FilterNode, len(s.Root.Conditions))
		copy(out.Root.Conditions, s.Root.Conditions)
	}
	if s.ActiveFilters != nil {
		out.ActiveFilters = make(ActiveFilters, len(s.ActiveFilters))
		copy(out.ActiveFilters, s.ActiveFilters)
	}
	return out
}
