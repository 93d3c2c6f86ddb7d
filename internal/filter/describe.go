package filter

import (
	"fmt"
	"strings"

	"github.com/rebeliceyang/lazyseg/internal/models"
)

// Describe renders a filter tree as a one-line expression, for example
// `region = North AND (age between 30..40 OR tier in [gold, silver])`
func Describe(node models.FilterNode) string {
	switch n := node.(type) {
	case *models.FilterCondition:
		return describeCondition(n)
	case *models.FilterGroup:
		if len(n.Conditions) == 0 {
			return ""
		}
		logic := n.Operator
		if logic != models.LogicOr {
			logic = models.LogicAnd
		}
		parts := make([]string, 0, len(n.Conditions))
		for _, child := range n.Conditions {
			s := Describe(child)
			if s == "" {
				continue
			}
			if g, ok := child.(*models.FilterGroup); ok && len(g.Conditions) > 1 {
				s = "(" + s + ")"
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, " "+string(logic)+" ")
	default:
		return ""
	}
}

func describeCondition(c *models.FilterCondition) string {
	var value string
	switch c.Value.Kind {
	case models.ValueRange:
		value = fmt.Sprintf("%s..%s", models.DisplayValue(c.Value.Range[0]), models.DisplayValue(c.Value.Range[1]))
	case models.ValueList:
		items := make([]string, len(c.Value.List))
		for i, v := range c.Value.List {
			items[i] = models.DisplayValue(v)
		}
		value = "[" + strings.Join(items, ", ") + "]"
	case models.ValueScalar:
		value = models.DisplayValue(c.Value.Scalar)
	default:
		value = "?"
	}
	return fmt.Sprintf("%s %s %s", c.Field, c.Operator, value)
}
