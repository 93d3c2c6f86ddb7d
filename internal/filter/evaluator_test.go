package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rebeliceyang/lazyseg/internal/models"
)

func cond(field string, op models.Operator, v models.FilterValue) *models.FilterCondition {
	return &models.FilterCondition{Field: field, Operator: op, Value: v}
}

func TestEvaluate_EmptyGroups(t *testing.T) {
	row := models.Record{"a": 1}
	assert.True(t, Evaluate(row, &models.FilterGroup{Operator: models.LogicAnd}))
	assert.False(t, Evaluate(row, &models.FilterGroup{Operator: models.LogicOr}))
}

func TestEvaluate_GroupLogic(t *testing.T) {
	row := models.Record{"age": 30, "region": "A"}
	match := cond("age", models.OpEqual, models.Scalar(30))
	miss := cond("region", models.OpEqual, models.Scalar("B"))

	and := &models.FilterGroup{Operator: models.LogicAnd, Conditions: []models.FilterNode{match, miss}}
	or := &models.FilterGroup{Operator: models.LogicOr, Conditions: []models.FilterNode{miss, match}}
	assert.False(t, Evaluate(row, and))
	assert.True(t, Evaluate(row, or))

	nested := &models.FilterGroup{
		Operator:   models.LogicAnd,
		Conditions: []models.FilterNode{match, or},
	}
	assert.True(t, Evaluate(row, nested))
}

func TestEvaluate_NilNode(t *testing.T) {
	assert.False(t, Evaluate(models.Record{}, nil))
}

func TestEvaluateCondition_Generic(t *testing.T) {
	row := models.Record{"age": 30, "score": 7.5, "name": "Alice Smith", "vip": true, "code": "B"}

	tests := []struct {
		name string
		cond *models.FilterCondition
		want bool
	}{
		{"eq int float", cond("age", models.OpEqual, models.Scalar(30.0)), true},
		{"eq strict kinds", cond("age", models.OpEqual, models.Scalar("30")), false},
		{"neq", cond("age", models.OpNotEqual, models.Scalar(31)), true},
		{"gt", cond("age", models.OpGreaterThan, models.Scalar(29)), true},
		{"gt equal", cond("age", models.OpGreaterThan, models.Scalar(30)), false},
		{"gte", cond("age", models.OpGreaterOrEqual, models.Scalar(30)), true},
		{"lt", cond("score", models.OpLessThan, models.Scalar(8)), true},
		{"lte", cond("score", models.OpLessOrEqual, models.Scalar(7.5)), true},
		{"gt numeric string operand", cond("age", models.OpGreaterThan, models.Scalar("25")), true},
		{"lexical", cond("code", models.OpLessThan, models.Scalar("C")), true},
		{"between inclusive low", cond("age", models.OpBetween, models.Between(30, 40)), true},
		{"between inclusive high", cond("age", models.OpBetween, models.Between(20, 30)), true},
		{"between outside", cond("age", models.OpBetween, models.Between(31, 40)), false},
		{"between malformed", cond("age", models.OpBetween, models.List(20, 30, 40)), false},
		{"between scalar", cond("age", models.OpBetween, models.Scalar(30)), false},
		{"contains", cond("name", models.OpContains, models.Scalar("ice")), true},
		{"contains number", cond("age", models.OpContains, models.Scalar("3")), true},
		{"not contains", cond("name", models.OpNotContains, models.Scalar("Bob")), true},
		{"in", cond("code", models.OpIn, models.List("A", "B")), true},
		{"in miss", cond("code", models.OpIn, models.List("A", "C")), false},
		{"in scalar never matches", cond("code", models.OpIn, models.Scalar("B")), false},
		{"not in", cond("code", models.OpNotIn, models.List("A", "C")), true},
		{"not in hit", cond("code", models.OpNotIn, models.List("B")), false},
		{"not in scalar passes", cond("code", models.OpNotIn, models.Scalar("B")), true},
		{"bool eq", cond("vip", models.OpEqual, models.Scalar(true)), true},
		{"bool eq string", cond("vip", models.OpEqual, models.Scalar("true")), false},
		{"unknown operator passes", cond("age", models.Operator("~"), models.Scalar(1)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EvaluateCondition(row, *tt.cond))
		})
	}
}

func TestEvaluateCondition_MissingField(t *testing.T) {
	row := models.Record{"other": 1}

	assert.False(t, EvaluateCondition(row, *cond("age", models.OpEqual, models.Scalar(30))))
	assert.True(t, EvaluateCondition(row, *cond("age", models.OpNotEqual, models.Scalar(30))))
	assert.False(t, EvaluateCondition(row, *cond("age", models.OpGreaterThan, models.Scalar(0))))
	assert.False(t, EvaluateCondition(row, *cond("age", models.OpLessThan, models.Scalar(0))))
	assert.False(t, EvaluateCondition(row, *cond("age", models.OpBetween, models.Between(0, 100))))
	assert.False(t, EvaluateCondition(row, *cond("age", models.OpIn, models.List(30))))
	assert.True(t, EvaluateCondition(row, *cond("age", models.OpNotIn, models.List(30))))
	assert.True(t, EvaluateCondition(row, *cond("age", models.OpContains, models.Scalar(""))))
	assert.False(t, EvaluateCondition(row, *cond("age", models.OpContains, models.Scalar("x"))))
	assert.True(t, EvaluateCondition(row, *cond("age", models.OpNotContains, models.Scalar("x"))))
	assert.False(t, EvaluateCondition(row, *cond("age", models.OpNotContains, models.Scalar(""))))
}

func TestEvaluateCondition_DateBetweenIsExclusive(t *testing.T) {
	between := cond("date", models.OpBetween, models.Between("2025-01-01", "2025-01-31"))

	assert.False(t, EvaluateCondition(models.Record{"date": "2025-01-01"}, *between))
	assert.False(t, EvaluateCondition(models.Record{"date": "2025-01-31"}, *between))
	assert.True(t, EvaluateCondition(models.Record{"date": "2025-01-02"}, *between))
	assert.False(t, EvaluateCondition(models.Record{"date": "2025-02-01"}, *between))

	// numeric between on the same bounds shape is inclusive
	numeric := cond("n", models.OpBetween, models.Between(1, 31))
	assert.True(t, EvaluateCondition(models.Record{"n": 1}, *numeric))
	assert.True(t, EvaluateCondition(models.Record{"n": 31}, *numeric))
}

func TestEvaluateCondition_DateComparisons(t *testing.T) {
	row := models.Record{"date": "2025-03-15"}

	tests := []struct {
		op   models.Operator
		v    any
		want bool
	}{
		{models.OpEqual, "2025-03-15", true},
		{models.OpEqual, "2025-03-15T18:30:00Z", true},
		{models.OpEqual, "2025-03-16", false},
		{models.OpNotEqual, "2025-03-16", true},
		{models.OpGreaterThan, "2025-03-14", true},
		{models.OpGreaterThan, "2025-03-15", false},
		{models.OpGreaterOrEqual, "2025-03-15", true},
		{models.OpLessThan, "2025-03-16", true},
		{models.OpLessOrEqual, "2025-03-15", true},
		{models.OpLessOrEqual, "2025-03-14", false},
		{models.OpEqual, "not a date", false},
		{models.OpNotEqual, "not a date", true},
	}
	for _, tt := range tests {
		t.Run(string(tt.op)+" "+tt.v.(string), func(t *testing.T) {
			assert.Equal(t, tt.want, EvaluateCondition(row, *cond("date", tt.op, models.Scalar(tt.v))))
		})
	}
}

func TestEvaluateCondition_DateOverridesDeclaredType(t *testing.T) {
	row := models.Record{"code": "2025-01-05"}
	c := models.FilterCondition{
		Field:    "code",
		Type:     models.ColumnCategorical,
		Operator: models.OpIn,
		Value:    models.List("2025-01-05"),
	}
	// date path has no membership operators, so the in test fails
	assert.False(t, EvaluateCondition(row, c))

	c.Operator = models.OpContains
	c.Value = models.Scalar("2025")
	assert.False(t, EvaluateCondition(row, c))
}

func TestEvaluateCondition_UnknownOperatorDiffersByPath(t *testing.T) {
	unknown := models.Operator("matches")
	assert.True(t, EvaluateCondition(models.Record{"v": "x"}, *cond("v", unknown, models.Scalar("y"))))
	assert.False(t, EvaluateCondition(models.Record{"v": "2025-01-01"}, *cond("v", unknown, models.Scalar("y"))))
}

func TestEvaluateCondition_NotEqualNegatesEqual(t *testing.T) {
	rows := []models.Record{
		{"v": 10}, {"v": "10"}, {"v": "hello"}, {"v": true}, {"v": nil}, {},
		{"v": "2025-01-01"}, {"v": 2.5},
	}
	operands := []models.FilterValue{
		models.Scalar(10), models.Scalar("10"), models.Scalar("hello"), models.Scalar(true),
		models.Scalar("2025-01-01"), models.Unset(), models.List(10), models.Between(1, 2),
	}
	for _, row := range rows {
		for _, v := range operands {
			eq := EvaluateCondition(row, *cond("v", models.OpEqual, v))
			neq := EvaluateCondition(row, *cond("v", models.OpNotEqual, v))
			assert.Equal(t, !eq, neq, "row=%v value=%v", row, v)
		}
	}
}
