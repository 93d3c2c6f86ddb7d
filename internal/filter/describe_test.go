package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rebeliceyang/lazyseg/internal/models"
)

func TestDescribe(t *testing.T) {
	root := &models.FilterGroup{
		Operator: models.LogicAnd,
		Conditions: []models.FilterNode{
			&models.FilterCondition{Field: "region", Operator: models.OpEqual, Value: models.Scalar("North")},
			&models.FilterGroup{
				Operator: models.LogicOr,
				Conditions: []models.FilterNode{
					&models.FilterCondition{Field: "age", Operator: models.OpBetween, Value: models.Between(30, 40)},
					&models.FilterCondition{Field: "tier", Operator: models.OpIn, Value: models.List("gold", "silver")},
				},
			},
		},
	}

	assert.Equal(t, "region = North AND (age between 30..40 OR tier in [gold, silver])", Describe(root))
}

func TestDescribe_Empty(t *testing.T) {
	assert.Equal(t, "", Describe(&models.FilterGroup{Operator: models.LogicOr}))
	assert.Equal(t, "", Describe(nil))
}
