package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/lazyseg/internal/models"
)

func testConfigs() []models.FilterConfig {
	return []models.FilterConfig{
		{Field: "age", Type: models.ColumnNumeric, DefaultOperator: models.OpBetween},
		{Field: "region", Type: models.ColumnCategorical, DefaultOperator: models.OpIn},
		{Field: "active", Type: models.ColumnBoolean, DefaultOperator: models.OpEqual},
	}
}

func TestNewState_InitialShape(t *testing.T) {
	s := NewState(testConfigs())

	assert.Equal(t, models.LogicAnd, s.Root.Operator)
	assert.Empty(t, s.Root.Conditions)
	require.Len(t, s.ActiveFilters, 3)
	for i, f := range s.ActiveFilters {
		assert.Equal(t, testConfigs()[i].Field, f.Field)
		assert.Equal(t, testConfigs()[i].Type, f.Type)
		assert.Equal(t, models.ValueUnset, f.Value.Kind)
	}
}

func TestReset_AlwaysUsesEqualOperator(t *testing.T) {
	s := Reset(testConfigs())
	for _, f := range s.ActiveFilters {
		assert.Equal(t, models.OpEqual, f.Operator, f.Field)
	}
}

func TestApplyChange_OperatorSwitchNullsValue(t *testing.T) {
	s := NewState(testConfigs())
	s = ApplyChange(s, "age", models.Scalar(30), models.OpEqual)
	f, _ := s.ActiveFilters.Get("age")
	require.Equal(t, models.ValueScalar, f.Value.Kind)

	s = ApplyChange(s, "age", models.Scalar(40), models.OpGreaterThan)
	f, _ = s.ActiveFilters.Get("age")
	assert.Equal(t, models.OpGreaterThan, f.Operator)
	assert.Equal(t, models.ValueUnset, f.Value.Kind)
	assert.Empty(t, s.Root.Conditions)
}

func TestApplyChange_SameOperatorReplacesValue(t *testing.T) {
	s := NewState(testConfigs())
	s = ApplyChange(s, "age", models.Scalar(30), models.OpEqual)
	s = ApplyChange(s, "age", models.Scalar(35), models.OpEqual)

	f, _ := s.ActiveFilters.Get("age")
	assert.Equal(t, 35, f.Value.Scalar)
	require.Len(t, s.Root.Conditions, 1)
	c := s.Root.Conditions[0].(*models.FilterCondition)
	assert.Equal(t, "age", c.Field)
	assert.Equal(t, models.ColumnNumeric, c.Type)
	assert.Equal(t, models.OpEqual, c.Operator)
	assert.Equal(t, 35, c.Value.Scalar)
}

func TestApplyChange_EmptyOperatorKeepsCurrent(t *testing.T) {
	s := NewState(testConfigs())
	s = ApplyChange(s, "active", models.Scalar(true), "")
	f, _ := s.ActiveFilters.Get("active")
	assert.Equal(t, models.OpEqual, f.Operator)
	assert.Equal(t, true, f.Value.Scalar)
}

func TestApplyChange_DoesNotMutateInput(t *testing.T) {
	s := NewState(testConfigs())
	next := ApplyChange(s, "age", models.Scalar(30), models.OpEqual)

	f, _ := s.ActiveFilters.Get("age")
	assert.Equal(t, models.ValueUnset, f.Value.Kind)
	assert.Empty(t, s.Root.Conditions)
	assert.Len(t, next.Root.Conditions, 1)
}

func TestApplyChange_ConditionsFollowFieldOrder(t *testing.T) {
	s := NewState(testConfigs())
	s = ApplyChange(s, "active", models.Scalar(true), models.OpEqual)
	s = ApplyChange(s, "age", models.Scalar(30), models.OpEqual)

	require.Len(t, s.Root.Conditions, 2)
	assert.Equal(t, "age", s.Root.Conditions[0].(*models.FilterCondition).Field)
	assert.Equal(t, "active", s.Root.Conditions[1].(*models.FilterCondition).Field)
}

func TestApplyChange_EmptyListIsDropped(t *testing.T) {
	s := NewState(testConfigs())
	s = ApplyChange(s, "region", models.Unset(), models.OpIn)
	s = ApplyChange(s, "region", models.List("A"), models.OpIn)
	require.Len(t, s.Root.Conditions, 1)

	s = ApplyChange(s, "region", models.List(), models.OpIn)
	assert.Empty(t, s.Root.Conditions)
}

func TestApplyChange_UnknownFieldStartsUnset(t *testing.T) {
	s := NewState(testConfigs())
	s = ApplyChange(s, "extra", models.Scalar("x"), models.OpEqual)

	require.Len(t, s.ActiveFilters, 4)
	f, ok := s.ActiveFilters.Get("extra")
	require.True(t, ok)
	assert.Equal(t, models.ValueUnset, f.Value.Kind)
	assert.Equal(t, models.ColumnType(""), f.Type)
}

func TestSetFilter_SwitchesThenSets(t *testing.T) {
	s := NewState(testConfigs())
	s = SetFilter(s, "region", models.OpIn, []string{"A", "B"})

	f, _ := s.ActiveFilters.Get("region")
	assert.Equal(t, models.OpIn, f.Operator)
	assert.Equal(t, models.ValueList, f.Value.Kind)
	assert.Equal(t, []any{"A", "B"}, f.Value.List)

	s = SetFilter(s, "age", models.OpBetween, []any{18, 65})
	f, _ = s.ActiveFilters.Get("age")
	assert.Equal(t, models.ValueRange, f.Value.Kind)
	assert.Len(t, s.Root.Conditions, 2)

	s = ClearFilter(s, "age")
	assert.Len(t, s.Root.Conditions, 1)
}

func TestSetRootOperator_KeepsConditions(t *testing.T) {
	s := NewState(testConfigs())
	s = SetFilter(s, "age", models.OpGreaterThan, 30)
	or := SetRootOperator(s, models.LogicOr)

	assert.Equal(t, models.LogicOr, or.Root.Operator)
	assert.Equal(t, models.LogicAnd, s.Root.Operator)
	assert.Equal(t, s.Root.Conditions, or.Root.Conditions)
}

func TestNormalize_RebuildsFlatRootFromActiveFilters(t *testing.T) {
	active := SetFilter(NewState(testConfigs()), "region", models.OpIn, []string{"North"})

	stale := active.Clone()
	stale.Root = models.FilterGroup{}

	got, err := Normalize(stale)
	require.NoError(t, err)
	assert.Equal(t, models.LogicAnd, got.Root.Operator)
	assert.Equal(t, active.Root.Conditions, got.Root.Conditions)

	stale.Root = models.FilterGroup{
		Operator: models.LogicOr,
		Conditions: []models.FilterNode{
			&models.FilterCondition{Field: "age", Operator: models.OpGreaterThan, Value: models.Scalar(90)},
		},
	}
	got, err = Normalize(stale)
	require.NoError(t, err)
	assert.Equal(t, models.LogicOr, got.Root.Operator)
	require.Len(t, got.Root.Conditions, 1)
	assert.Equal(t, "region", got.Root.Conditions[0].(*models.FilterCondition).Field)
}

func TestNormalize_RecoversActiveFiltersFromRoot(t *testing.T) {
	cond := &models.FilterCondition{Field: "age", Type: models.ColumnNumeric, Operator: models.OpGreaterThan, Value: models.Scalar(30)}
	got, err := Normalize(models.FilterState{
		Root: models.FilterGroup{Operator: models.LogicAnd, Conditions: []models.FilterNode{cond}},
	})
	require.NoError(t, err)

	require.Len(t, got.ActiveFilters, 1)
	assert.Equal(t, "age", got.ActiveFilters[0].Field)
	assert.Equal(t, models.OpGreaterThan, got.ActiveFilters[0].Operator)
	assert.Equal(t, []models.FilterNode{cond}, got.Root.Conditions)
}

func TestNormalize_KeepsNestedTrees(t *testing.T) {
	nested := models.FilterState{
		Root: models.FilterGroup{
			Operator: models.LogicAnd,
			Conditions: []models.FilterNode{
				&models.FilterGroup{Operator: models.LogicOr, Conditions: []models.FilterNode{
					&models.FilterCondition{Field: "region", Operator: models.OpEqual, Value: models.Scalar("North")},
				}},
			},
		},
	}

	got, err := Normalize(nested)
	require.NoError(t, err)
	assert.Equal(t, nested.Root.Conditions, got.Root.Conditions)
	assert.Empty(t, got.ActiveFilters)
}

func TestNormalize_RejectsUnknownLogic(t *testing.T) {
	_, err := Normalize(models.FilterState{Root: models.FilterGroup{Operator: "or"}})
	assert.ErrorIs(t, err, ErrUnknownLogic)

	_, err = Normalize(models.FilterState{Root: models.FilterGroup{
		Operator:   models.LogicAnd,
		Conditions: []models.FilterNode{&models.FilterGroup{Operator: "XOR"}},
	}})
	assert.ErrorIs(t, err, ErrUnknownLogic)
}
