package segment

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/lazyseg/internal/models"
	"github.com/rebeliceyang/lazyseg/internal/view"
)

type staticSource struct {
	data *models.Dataset
	err  error
}

func (s staticSource) Load(ctx context.Context, table string) (*models.Dataset, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.data, nil
}

func newService(t *testing.T, src view.Source) *Service {
	t.Helper()
	repo, err := NewYAMLStore(filepath.Join(t.TempDir(), "segments.yaml"))
	require.NoError(t, err)
	svc := NewService(repo, src, nil)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) }
	return svc
}

func regionData() *models.Dataset {
	return models.NewDataset("people", []string{"region", "n"}, []models.Record{
		{"region": "A", "n": 1.0},
		{"region": "B", "n": 2.0},
		{"region": "A", "n": 3.0},
	})
}

func TestService_SubmitFromView(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil)

	v := view.New(nil)
	v.SetDataset(regionData())
	v.SetFilter("region", models.OpEqual, "A")

	seg, err := v.Submit(ctx, svc, "  Region A ", "all of A")
	require.NoError(t, err)
	assert.NotEmpty(t, seg.ID)
	assert.Equal(t, "Region A", seg.Name)
	assert.Equal(t, "people", seg.Table)
	assert.Equal(t, 2, seg.MatchedCount)
	assert.Len(t, seg.Records, 2)

	stored, err := svc.Get(ctx, seg.ID)
	require.NoError(t, err)
	assert.Equal(t, seg.Filters.ActiveFilters, stored.Filters.ActiveFilters)
	assert.Equal(t, time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC), stored.CreatedAt)
}

func TestService_SubmitWithoutRecords(t *testing.T) {
	svc := newService(t, nil)
	svc.KeepRecords = false

	seg, err := svc.Submit(context.Background(), "people", models.FilterState{}, regionData().Records, "Everyone", "")
	require.NoError(t, err)
	assert.Equal(t, 3, seg.MatchedCount)
	assert.Nil(t, seg.Records)
}

func TestService_SubmitRejectsBlankName(t *testing.T) {
	svc := newService(t, nil)
	_, err := svc.Submit(context.Background(), "people", models.FilterState{}, nil, "   ", "")
	assert.ErrorIs(t, err, ErrInvalidSegment)
}

func TestService_UpdateRecountsOnFilterChange(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, staticSource{data: regionData()})

	seg, err := svc.Submit(ctx, "people", models.FilterState{}, regionData().Records, "All", "")
	require.NoError(t, err)

	v := view.New(nil)
	v.SetDataset(regionData())
	state := v.SetFilter("region", models.OpEqual, "B")

	name := "Only B"
	updated, err := svc.Update(ctx, seg.ID, Update{Name: &name, Filters: &state})
	require.NoError(t, err)
	assert.Equal(t, "Only B", updated.Name)
	assert.Equal(t, 1, updated.MatchedCount)
	assert.Equal(t, []models.Record{{"region": "B", "n": 2.0}}, updated.Records)

	desc := "renamed only"
	updated, err = svc.Update(ctx, seg.ID, Update{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.MatchedCount)
	assert.Equal(t, "renamed only", updated.Description)
}

func TestService_UpdateRebuildsRootFromActiveFilters(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, staticSource{data: regionData()})

	seg, err := svc.Submit(ctx, "people", models.FilterState{}, regionData().Records, "All", "")
	require.NoError(t, err)

	state := models.FilterState{
		ActiveFilters: models.ActiveFilters{
			{Field: "region", Type: models.ColumnCategorical, Operator: models.OpIn, Value: models.List("A")},
		},
	}
	updated, err := svc.Update(ctx, seg.ID, Update{Filters: &state})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.MatchedCount)
	assert.Len(t, updated.Filters.Root.Conditions, 1)
	assert.Equal(t, models.LogicAnd, updated.Filters.Root.Operator)

	bad := models.FilterState{Root: models.FilterGroup{Operator: "either"}}
	_, err = svc.Update(ctx, seg.ID, Update{Filters: &bad})
	assert.ErrorIs(t, err, ErrInvalidSegment)

	stored, err := svc.Get(ctx, seg.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.MatchedCount)
}

func TestService_UpdateReloadFailure(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, staticSource{err: errors.New("db down")})

	seg, err := svc.Submit(ctx, "people", models.FilterState{}, nil, "All", "")
	require.NoError(t, err)

	state := models.FilterState{Root: models.FilterGroup{Operator: models.LogicOr}}
	_, err = svc.Update(ctx, seg.ID, Update{Filters: &state})
	assert.ErrorContains(t, err, "db down")
}

func TestService_UpdateAndDeleteMissing(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil)

	_, err := svc.Update(ctx, "nope", Update{})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "nope"), ErrNotFound)
}
