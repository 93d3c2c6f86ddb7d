package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const stateJSON = `{
  "root": {
    "operator": "OR",
    "conditions": [
      {"field": "zeta", "type": "NUMERIC", "operator": "between", "value": [1, 5]},
      {"field": "region", "type": "CATEGORICAL", "operator": "in", "value": ["A", "B"]},
      {"operator": "AND", "conditions": [
        {"field": "name", "type": "FREETEXT", "operator": "contains", "value": "li"}
      ]}
    ]
  },
  "activeFilters": {
    "zeta": {"type": "NUMERIC", "value": [1, 5], "operator": "between"},
    "region": {"type": "CATEGORICAL", "value": ["A", "B"], "operator": "in"},
    "alpha": {"type": "BOOLEAN", "value": null, "operator": "="}
  }
}`

func TestFilterState_DecodeJSON(t *testing.T) {
	var s FilterState
	require.NoError(t, json.Unmarshal([]byte(stateJSON), &s))

	assert.Equal(t, LogicOr, s.Root.Operator)
	require.Len(t, s.Root.Conditions, 3)

	between := s.Root.Conditions[0].(*FilterCondition)
	assert.Equal(t, ValueRange, between.Value.Kind)
	assert.Equal(t, [2]any{1.0, 5.0}, between.Value.Range)

	in := s.Root.Conditions[1].(*FilterCondition)
	assert.Equal(t, ValueList, in.Value.Kind)
	assert.Equal(t, []any{"A", "B"}, in.Value.List)

	group := s.Root.Conditions[2].(*FilterGroup)
	assert.Equal(t, LogicAnd, group.Operator)
	require.Len(t, group.Conditions, 1)
	assert.Equal(t, ValueScalar, group.Conditions[0].(*FilterCondition).Value.Kind)

	// keys keep document order, not sorted order
	require.Len(t, s.ActiveFilters, 3)
	assert.Equal(t, "zeta", s.ActiveFilters[0].Field)
	assert.Equal(t, "region", s.ActiveFilters[1].Field)
	assert.Equal(t, "alpha", s.ActiveFilters[2].Field)
	assert.True(t, s.ActiveFilters[2].Value.IsEmpty())
}

func TestFilterState_JSONRoundTripKeepsOrder(t *testing.T) {
	var s FilterState
	require.NoError(t, json.Unmarshal([]byte(stateJSON), &s))

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var again FilterState
	require.NoError(t, json.Unmarshal(data, &again))
	assert.Equal(t, s, again)
}

func TestFilterState_YAMLRoundTrip(t *testing.T) {
	var s FilterState
	require.NoError(t, json.Unmarshal([]byte(stateJSON), &s))

	data, err := yaml.Marshal(s)
	require.NoError(t, err)

	var again FilterState
	require.NoError(t, yaml.Unmarshal(data, &again))

	require.Len(t, again.ActiveFilters, 3)
	assert.Equal(t, "zeta", again.ActiveFilters[0].Field)
	assert.Equal(t, "alpha", again.ActiveFilters[2].Field)
	require.Len(t, again.Root.Conditions, 3)
	assert.Equal(t, ValueRange, again.Root.Conditions[0].(*FilterCondition).Value.Kind)
	assert.IsType(t, &FilterGroup{}, again.Root.Conditions[2])
}

func TestFilterCondition_MalformedBetweenStaysList(t *testing.T) {
	var c FilterCondition
	require.NoError(t, json.Unmarshal([]byte(`{"field":"a","operator":"between","value":[1,2,3]}`), &c))
	assert.Equal(t, ValueList, c.Value.Kind)

	require.NoError(t, json.Unmarshal([]byte(`{"field":"a","operator":"between","value":7}`), &c))
	assert.Equal(t, ValueScalar, c.Value.Kind)
}

func TestFilterCondition_TwoElementInIsList(t *testing.T) {
	var c FilterCondition
	require.NoError(t, json.Unmarshal([]byte(`{"field":"a","operator":"in","value":["x","y"]}`), &c))
	assert.Equal(t, ValueList, c.Value.Kind)
}

func TestFilterGroup_EmptyConditionsEncodeAsArray(t *testing.T) {
	data, err := json.Marshal(FilterGroup{Operator: LogicAnd})
	require.NoError(t, err)
	assert.JSONEq(t, `{"operator":"AND","conditions":[]}`, string(data))
}

func TestValueFor(t *testing.T) {
	assert.Equal(t, Unset(), ValueFor(OpEqual, nil))
	assert.Equal(t, Scalar("x"), ValueFor(OpEqual, "x"))
	assert.Equal(t, Between(1, 2), ValueFor(OpBetween, []int{1, 2}))
	assert.Equal(t, List("a", "b"), ValueFor(OpIn, []string{"a", "b"}))
	assert.Equal(t, Scalar([]byte("raw")), ValueFor(OpEqual, []byte("raw")))
	assert.True(t, List().IsEmpty())
	assert.False(t, Scalar("").IsEmpty())
}
