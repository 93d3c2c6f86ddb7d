package dataset

import (
	"context"
	"errors"
	"fmt"

	"github.com/rebeliceyang/lazyseg/internal/logging"
	"github.com/rebeliceyang/lazyseg/internal/models"
)

// DefaultRowLimit caps every fetch
const DefaultRowLimit = 1000

// ErrUnknownTable is reported when a provider has no table by that name
var ErrUnknownTable = errors.New("unknown table")

// Result is what a provider returns for a named table. Failures are carried in
// Error rather than returned, so callers can show them without aborting.
type Result struct {
	Success bool            `json:"success"`
	Columns []string        `json:"columns,omitempty"`
	Data    []models.Record `json:"data"`
	Error   string          `json:"error,omitempty"`
}

// Failure builds an unsuccessful result from err
func Failure(err error) Result {
	return Result{Success: false, Data: []models.Record{}, Error: err.Error()}
}

// Provider fetches up to limit rows of a table
type Provider interface {
	Fetch(ctx context.Context, table string, limit int) Result
}

// Lister is implemented by providers that can enumerate their tables
type Lister interface {
	Tables(ctx context.Context) ([]string, error)
}

// FetchError is a non-fatal load failure surfaced to the user
type FetchError struct {
	Table   string
	Message string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to load table %s: %s", e.Table, e.Message)
}

// Loader turns provider results into dataset snapshots. When the provider
// fails for one of the built-in sample tables, the sample copy is used and
// the failure is not reported.
type Loader struct {
	provider Provider
	samples  *SampleProvider
	limit    int
	logger   *logging.Logger
}

// NewLoader creates a loader. samples may be nil to disable the fallback.
func NewLoader(provider Provider, samples *SampleProvider, limit int, logger *logging.Logger) *Loader {
	if limit <= 0 {
		limit = DefaultRowLimit
	}
	if logger == nil {
		logger = logging.Noop()
	}
	return &Loader{
		provider: provider,
		samples:  samples,
		limit:    limit,
		logger:   logger,
	}
}

// Load fetches table and returns it as an immutable snapshot
func (l *Loader) Load(ctx context.Context, table string) (*models.Dataset, error) {
	res := l.provider.Fetch(ctx, table, l.limit)
	if res.Success {
		return models.NewDataset(table, res.Columns, res.Data), nil
	}

	if l.samples != nil && l.samples.Has(table) && l.samples != l.provider {
		l.logger.DebugContext(ctx, "falling back to sample table",
			"table", table,
			"error", res.Error,
		)
		fallback := l.samples.Fetch(ctx, table, l.limit)
		return models.NewDataset(table, fallback.Columns, fallback.Data), nil
	}

	return nil, &FetchError{Table: table, Message: res.Error}
}

// Tables lists the tables available from the provider, plus sample tables
// when the fallback is enabled
func (l *Loader) Tables(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var tables []string
	add := func(names []string) {
		for _, n := range names {
			if !seen[n] {
				seen[n] = true
				tables = append(tables, n)
			}
		}
	}

	if lister, ok := l.provider.(Lister); ok {
		names, err := lister.Tables(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list tables: %w", err)
		}
		add(names)
	}
	if l.samples != nil {
		names, _ := l.samples.Tables(ctx)
		add(names)
	}
	return tables, nil
}
