package view

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/rebeliceyang/lazyseg/internal/analyzer"
	"github.com/rebeliceyang/lazyseg/internal/filter"
	"github.com/rebeliceyang/lazyseg/internal/logging"
	"github.com/rebeliceyang/lazyseg/internal/models"
)

// ErrStaleLoad is returned by LoadTable when a newer load started before this one finished
var ErrStaleLoad = errors.New("dataset load superseded by a newer request")

// ErrNoDataset is returned by Submit before any dataset has been loaded or
// after the last load failed
var ErrNoDataset = errors.New("no dataset loaded")

// Source supplies dataset snapshots by table name
type Source interface {
	Load(ctx context.Context, table string) (*models.Dataset, error)
}

// Consumer receives a submitted segment
type Consumer interface {
	Submit(ctx context.Context, table string, state models.FilterState, rows []models.Record, name, description string) (*models.Segment, error)
}

// ComputeFilteredRows returns the rows matching state's root group, in their
// original order
func ComputeFilteredRows(data []models.Record, state models.FilterState) []models.Record {
	out := make([]models.Record, 0, len(data))
	for _, row := range data {
		if filter.Evaluate(row, &state.Root) {
			out = append(out, row)
		}
	}
	return out
}

// Match returns the indices of rows matching state's root group
func Match(data []models.Record, state models.FilterState) *roaring.Bitmap {
	matched := roaring.New()
	for i, row := range data {
		if filter.Evaluate(row, &state.Root) {
			matched.Add(uint32(i))
		}
	}
	return matched
}

// View owns a dataset and its filter state and keeps the matching records
// current. Every transition is applied in full before the next is accepted.
type View struct {
	mu         sync.Mutex
	logger     *logging.Logger
	dataset    *models.Dataset
	columns    []models.ColumnMetadata
	configs    []models.FilterConfig
	state      models.FilterState
	matched    *roaring.Bitmap
	lastErr    error
	generation uint64
}

// New creates an empty view
func New(logger *logging.Logger) *View {
	if logger == nil {
		logger = logging.Noop()
	}
	v := &View{logger: logger}
	v.setDatasetLocked(models.NewDataset("", nil, nil))
	return v
}

// SetDataset replaces the dataset, rebuilds column metadata and filter configs,
// and resets the filter state
func (v *View) SetDataset(ds *models.Dataset) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.generation++
	v.lastErr = nil
	v.setDatasetLocked(ds)
}

func (v *View) setDatasetLocked(ds *models.Dataset) {
	if ds == nil {
		ds = models.NewDataset("", nil, nil)
	}
	v.dataset = ds
	v.columns = analyzer.AnalyzeDataset(ds)
	v.configs = filter.SynthesizeAll(v.columns)
	v.state = filter.NewState(v.configs)
	v.recomputeLocked()
}

// LoadTable fetches table from src and installs it. A failed load leaves an
// empty dataset for the table and returns the error. If another load or
// SetDataset happens while this fetch is in flight, the result is dropped and
// ErrStaleLoad is returned.
func (v *View) LoadTable(ctx context.Context, src Source, table string) error {
	v.mu.Lock()
	v.generation++
	gen := v.generation
	v.mu.Unlock()

	ds, err := src.Load(ctx, table)
	v.logger.LogLoad(ctx, table, ds.Len(), err)

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.generation {
		return ErrStaleLoad
	}

	if err != nil {
		v.lastErr = err
		v.setDatasetLocked(models.NewDataset(table, nil, nil))
		return err
	}
	v.lastErr = nil
	v.setDatasetLocked(ds)
	return nil
}

// ApplyChange updates a field's value or operator
func (v *View) ApplyChange(field string, value models.FilterValue, op models.Operator) models.FilterState {
	return v.transition(func(s models.FilterState) models.FilterState {
		return filter.ApplyChange(s, field, value, op)
	})
}

// SetFilter selects an operator and value for field in one step
func (v *View) SetFilter(field string, op models.Operator, raw any) models.FilterState {
	return v.transition(func(s models.FilterState) models.FilterState {
		return filter.SetFilter(s, field, op, raw)
	})
}

// SetRootOperator switches between AND and OR combination
func (v *View) SetRootOperator(logic models.Logic) models.FilterState {
	return v.transition(func(s models.FilterState) models.FilterState {
		return filter.SetRootOperator(s, logic)
	})
}

// SetState installs a previously saved or decoded filter state. The state is
// normalized first so its root agrees with its active filters; an unknown
// group operator is rejected and the current state is kept.
func (v *View) SetState(state models.FilterState) (models.FilterState, error) {
	next, err := filter.Normalize(state)
	if err != nil {
		return v.State(), err
	}
	return v.transition(func(models.FilterState) models.FilterState {
		return next
	}), nil
}

// Reset returns every field to its unset value
func (v *View) Reset() models.FilterState {
	return v.transition(func(models.FilterState) models.FilterState {
		return filter.Reset(v.configs)
	})
}

func (v *View) transition(fn func(models.FilterState) models.FilterState) models.FilterState {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state = fn(v.state)
	v.recomputeLocked()
	return v.state.Clone()
}

func (v *View) recomputeLocked() {
	v.matched = Match(v.dataset.Records, v.state)
	v.logger.LogFilter(context.Background(), v.dataset.Table, len(v.state.Root.Conditions),
		len(v.dataset.Records), int(v.matched.GetCardinality()))
}

// State returns a copy of the current filter state
func (v *View) State() models.FilterState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state.Clone()
}

// Dataset returns the current dataset snapshot
func (v *View) Dataset() *models.Dataset {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.dataset
}

// Columns returns the column metadata of the current dataset
func (v *View) Columns() []models.ColumnMetadata {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.columns
}

// Configs returns the filter configs of the current dataset
func (v *View) Configs() []models.FilterConfig {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.configs
}

// Err returns the error of the last failed load, if the view is in that state
func (v *View) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastErr
}

// Count returns the number of matching records
func (v *View) Count() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return int(v.matched.GetCardinality())
}

// Total returns the number of records in the dataset
func (v *View) Total() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.dataset.Records)
}

// Matches reports whether the record at index i currently matches
func (v *View) Matches(i int) bool {
	if i < 0 {
		return false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.matched.Contains(uint32(i))
}

// Rows materializes the matching records in dataset order
func (v *View) Rows() []models.Record {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.rowsLocked()
}

func (v *View) rowsLocked() []models.Record {
	rows := make([]models.Record, 0, v.matched.GetCardinality())
	it := v.matched.Iterator()
	for it.HasNext() {
		rows = append(rows, v.dataset.Records[it.Next()])
	}
	return rows
}

// Submit hands the current filter state and matching records to consumer
func (v *View) Submit(ctx context.Context, consumer Consumer, name, description string) (*models.Segment, error) {
	v.mu.Lock()
	table := v.dataset.Table
	state := v.state.Clone()
	rows := v.rowsLocked()
	loadErr := v.lastErr
	v.mu.Unlock()

	if loadErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoDataset, loadErr)
	}
	if table == "" {
		return nil, ErrNoDataset
	}

	seg, err := consumer.Submit(ctx, table, state, rows, name, description)
	if err != nil {
		return nil, fmt.Errorf("failed to submit segment: %w", err)
	}
	return seg, nil
}
