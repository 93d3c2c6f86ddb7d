package filter

import (
	"strings"
	"time"

	"github.com/rebeliceyang/lazyseg/internal/models"
	"github.com/rebeliceyang/lazyseg/internal/values"
)

// Evaluate reports whether row satisfies node. Groups short-circuit: an empty
// AND group matches everything and an empty OR group matches nothing.
func Evaluate(row models.Record, node models.FilterNode) bool {
	switch n := node.(type) {
	case *models.FilterGroup:
		return evaluateGroup(row, n)
	case *models.FilterCondition:
		return EvaluateCondition(row, *n)
	default:
		return false
	}
}

func evaluateGroup(row models.Record, group *models.FilterGroup) bool {
	if group == nil {
		return false
	}

	if group.Operator == models.LogicOr {
		for _, child := range group.Conditions {
			if Evaluate(row, child) {
				return true
			}
		}
		return false
	}

	for _, child := range group.Conditions {
		if !Evaluate(row, child) {
			return false
		}
	}
	return true
}

// EvaluateCondition tests a single leaf against row. A row value that is a
// YYYY-MM-DD string always gets date semantics, whatever the condition type.
func EvaluateCondition(row models.Record, cond models.FilterCondition) bool {
	raw := row[cond.Field]
	if d, ok := values.ParseDate(raw); ok {
		return compareDate(d, cond)
	}
	return compareGeneric(raw, cond)
}

// compareDate never matches on an unknown operator. between is exclusive on both ends.
func compareDate(d time.Time, cond models.FilterCondition) bool {
	if cond.Operator == models.OpBetween {
		if cond.Value.Kind != models.ValueRange {
			return false
		}
		lo, okLo := dateOperand(cond.Value.Range[0])
		hi, okHi := dateOperand(cond.Value.Range[1])
		return okLo && okHi && d.After(lo) && d.Before(hi)
	}

	t, ok := dateOperand(scalarOperand(cond.Value))

	switch cond.Operator {
	case models.OpEqual:
		return ok && sameDay(d, t)
	case models.OpNotEqual:
		return !(ok && sameDay(d, t))
	case models.OpGreaterThan:
		return ok && d.After(t)
	case models.OpGreaterOrEqual:
		return ok && !d.Before(t)
	case models.OpLessThan:
		return ok && d.Before(t)
	case models.OpLessOrEqual:
		return ok && !d.After(t)
	default:
		return false
	}
}

// compareGeneric passes unknown operators through as matches
func compareGeneric(raw any, cond models.FilterCondition) bool {
	operand := scalarOperand(cond.Value)

	switch cond.Operator {
	case models.OpEqual:
		return strictEqual(raw, operand)
	case models.OpNotEqual:
		return !strictEqual(raw, operand)
	case models.OpGreaterThan:
		c, ok := order(raw, operand)
		return ok && c > 0
	case models.OpGreaterOrEqual:
		c, ok := order(raw, operand)
		return ok && c >= 0
	case models.OpLessThan:
		c, ok := order(raw, operand)
		return ok && c < 0
	case models.OpLessOrEqual:
		c, ok := order(raw, operand)
		return ok && c <= 0
	case models.OpBetween:
		if cond.Value.Kind != models.ValueRange {
			return false
		}
		lo, okLo := order(raw, cond.Value.Range[0])
		hi, okHi := order(raw, cond.Value.Range[1])
		return okLo && okHi && lo >= 0 && hi <= 0
	case models.OpContains:
		return strings.Contains(models.DisplayValue(raw), models.DisplayValue(operand))
	case models.OpNotContains:
		return !strings.Contains(models.DisplayValue(raw), models.DisplayValue(operand))
	case models.OpIn:
		return cond.Value.Kind == models.ValueList && member(raw, cond.Value.List)
	case models.OpNotIn:
		return cond.Value.Kind != models.ValueList || !member(raw, cond.Value.List)
	default:
		return true
	}
}

// scalarOperand returns the operand of a scalar comparison. Lists and ranges
// never equal a scalar, so they are returned as a slice.
func scalarOperand(v models.FilterValue) any {
	return v.Raw()
}

func member(raw any, list []any) bool {
	for _, item := range list {
		if strictEqual(raw, item) {
			return true
		}
	}
	return false
}

// strictEqual compares without coercion between kinds. Numbers compare by value
// regardless of their Go representation.
func strictEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if values.IsNumberKind(a) && values.IsNumberKind(b) {
		x, okA := values.Number(a)
		y, okB := values.Number(b)
		return okA && okB && x == y
	}
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	default:
		return false
	}
}

// order compares a to b: lexically when both are strings, numerically otherwise.
// ok is false when the values are not comparable.
func order(a, b any) (int, bool) {
	if a == nil || b == nil {
		return 0, false
	}
	if x, ok := a.(string); ok {
		if y, ok := b.(string); ok {
			return strings.Compare(x, y), true
		}
	}
	x, okA := ordinal(a)
	y, okB := ordinal(b)
	if !okA || !okB {
		return 0, false
	}
	switch {
	case x < y:
		return -1, true
	case x > y:
		return 1, true
	default:
		return 0, true
	}
}

func ordinal(v any) (float64, bool) {
	if b, ok := v.(bool); ok {
		if b {
			return 1, true
		}
		return 0, true
	}
	return values.Number(v)
}

// dateOperand accepts YYYY-MM-DD strings, RFC 3339 timestamps and time.Time
func dateOperand(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case string:
		if d, ok := values.ParseDate(t); ok {
			return d, true
		}
		ts, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return time.Time{}, false
		}
		return ts, true
	default:
		return time.Time{}, false
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
