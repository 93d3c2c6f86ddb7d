package filter

import (
	"errors"
	"fmt"

	"github.com/rebeliceyang/lazyseg/internal/models"
)

// ErrUnknownLogic is returned for a group operator other than AND or OR
var ErrUnknownLogic = errors.New("unknown group operator")

// NewState returns the initial filter state for a set of columns: one unset
// entry per column and an empty AND root
func NewState(configs []models.FilterConfig) models.FilterState {
	return Reset(configs)
}

// Reset clears every field back to an unset value. The operator always resets
// to "=", even where the column's default operator differs.
func Reset(configs []models.FilterConfig) models.FilterState {
	active := make(models.ActiveFilters, 0, len(configs))
	for _, cfg := range configs {
		active = append(active, models.ActiveFilter{
			Field:    cfg.Field,
			Type:     cfg.Type,
			Operator: models.OpEqual,
			Value:    models.Unset(),
		})
	}

	return models.FilterState{
		Root: models.FilterGroup{
			Operator:   models.LogicAnd,
			Conditions: []models.FilterNode{},
		},
		ActiveFilters: active,
	}
}

// ApplyChange updates one field and rebuilds the root conditions.
// Switching operator discards the value; otherwise the value is replaced.
// An empty operator keeps the field's current operator.
func ApplyChange(state models.FilterState, field string, value models.FilterValue, op models.Operator) models.FilterState {
	next := state.Clone()

	i := next.ActiveFilters.Index(field)
	if i < 0 {
		next.ActiveFilters = append(next.ActiveFilters, models.ActiveFilter{Field: field})
		i = len(next.ActiveFilters) - 1
	}

	current := next.ActiveFilters[i]
	if op == "" {
		op = current.Operator
	}

	if op != current.Operator {
		current.Operator = op
		current.Value = models.Unset()
	} else {
		current.Value = value
	}
	next.ActiveFilters[i] = current

	next.Root.Conditions = BuildConditions(next.ActiveFilters)
	return next
}

// SetFilter selects op for field and then sets raw as its value, the two-step
// sequence a widget performs when the user picks an operator and a value together
func SetFilter(state models.FilterState, field string, op models.Operator, raw any) models.FilterState {
	if current, ok := state.ActiveFilters.Get(field); !ok || current.Operator != op {
		state = ApplyChange(state, field, models.Unset(), op)
	}
	return ApplyChange(state, field, models.ValueFor(op, raw), op)
}

// ClearFilter unsets the value of field, keeping its operator
func ClearFilter(state models.FilterState, field string) models.FilterState {
	return ApplyChange(state, field, models.Unset(), "")
}

// SetRootOperator replaces only the root combinator
func SetRootOperator(state models.FilterState, logic models.Logic) models.FilterState {
	next := state.Clone()
	next.Root.Operator = logic
	return next
}

// BuildConditions folds active filters with a non-empty value into leaf
// conditions, in field order
func BuildConditions(active models.ActiveFilters) []models.FilterNode {
	conditions := make([]models.FilterNode, 0, len(active))
	for _, f := range active {
		if f.Value.IsEmpty() {
			continue
		}
		conditions = append(conditions, &models.FilterCondition{
			Field:    f.Field,
			Type:     f.Type,
			Operator: f.Operator,
			Value:    f.Value,
		})
	}
	return conditions
}

// Normalize makes a decoded state self-consistent before it is evaluated.
// A missing root operator becomes AND. A flat root, one with no nested
// groups, is rebuilt from the active filters; when the active filters are
// missing they are first recovered from the root's conditions. Nested trees
// are kept as given.
func Normalize(state models.FilterState) (models.FilterState, error) {
	next := state.Clone()
	if next.Root.Operator == "" {
		next.Root.Operator = models.LogicAnd
	}
	if err := checkLogic(&next.Root); err != nil {
		return models.FilterState{}, err
	}

	if !isFlat(&next.Root) {
		return next, nil
	}
	if len(next.ActiveFilters) == 0 {
		next.ActiveFilters = activeFromConditions(next.Root.Conditions)
	}
	next.Root.Conditions = BuildConditions(next.ActiveFilters)
	return next, nil
}

func checkLogic(group *models.FilterGroup) error {
	switch group.Operator {
	case models.LogicAnd, models.LogicOr:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownLogic, group.Operator)
	}
	for _, child := range group.Conditions {
		if g, ok := child.(*models.FilterGroup); ok && g != nil {
			if err := checkLogic(g); err != nil {
				return err
			}
		}
	}
	return nil
}

func isFlat(group *models.FilterGroup) bool {
	for _, child := range group.Conditions {
		if _, ok := child.(*models.FilterGroup); ok {
			return false
		}
	}
	return true
}

func activeFromConditions(conditions []models.FilterNode) models.ActiveFilters {
	active := make(models.ActiveFilters, 0, len(conditions))
	for _, node := range conditions {
		c, ok := node.(*models.FilterCondition)
		if !ok || c == nil {
			continue
		}
		f := models.ActiveFilter{Field: c.Field, Type: c.Type, Operator: c.Operator, Value: c.Value}
		if i := active.Index(c.Field); i >= 0 {
			active[i] = f
			continue
		}
		active = append(active, f)
	}
	return active
}
