package dataset

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/lazyseg/internal/values"
)

func TestSampleProvider_Tables(t *testing.T) {
	tables, err := NewSampleProvider().Tables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"campaign_responses", "customers", "transactions"}, tables)
}

func TestSampleProvider_Deterministic(t *testing.T) {
	a := NewSampleProvider().Fetch(context.Background(), "customers", 0)
	b := NewSampleProvider().Fetch(context.Background(), "customers", 0)
	require.True(t, a.Success)
	assert.Len(t, a.Data, 200)
	assert.Equal(t, a.Data, b.Data)
}

func TestSampleProvider_FetchCopiesRows(t *testing.T) {
	p := NewSampleProvider()
	first := p.Fetch(context.Background(), "transactions", 5)
	require.Len(t, first.Data, 5)
	first.Data[0]["amount"] = "tampered"

	again := p.Fetch(context.Background(), "transactions", 5)
	assert.NotEqual(t, "tampered", again.Data[0]["amount"])
}

func TestSampleProvider_ColumnShapes(t *testing.T) {
	res := NewSampleProvider().Fetch(context.Background(), "customers", 0)
	require.True(t, res.Success)

	for _, row := range res.Data {
		_, ok := values.ParseDate(row["signup_date"])
		assert.True(t, ok, "signup_date %v", row["signup_date"])
		assert.IsType(t, true, row["is_subscribed"])
	}
}

func TestSampleProvider_UnknownTable(t *testing.T) {
	res := NewSampleProvider().Fetch(context.Background(), "nope", 10)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "unknown table")
	assert.NotNil(t, res.Data)
}
