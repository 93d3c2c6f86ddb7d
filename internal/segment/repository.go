package segment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rebeliceyang/lazyseg/internal/config"
	"github.com/rebeliceyang/lazyseg/internal/models"
)

var (
	// ErrNotFound is returned when no segment has the requested ID
	ErrNotFound = errors.New("segment not found")
	// ErrDuplicateName is returned when another segment already uses the name.
	// Names are compared case-insensitively.
	ErrDuplicateName = errors.New("segment name already exists")
	// ErrInvalidSegment is returned for segments missing required fields
	ErrInvalidSegment = errors.New("invalid segment")
)

// Repository persists segments
type Repository interface {
	Create(ctx context.Context, seg *models.Segment) error
	Get(ctx context.Context, id string) (*models.Segment, error)
	// List returns segments oldest first. An empty table lists every table.
	List(ctx context.Context, table string) ([]models.Segment, error)
	Update(ctx context.Context, seg *models.Segment) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// Open creates the repository configured by cfg
func Open(cfg config.StoreConfig) (Repository, error) {
	switch cfg.Driver {
	case config.StoreSQLite:
		return NewSQLiteStore(cfg.Path)
	case config.StoreYAML:
		return NewYAMLStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func validate(seg *models.Segment) error {
	switch {
	case seg == nil:
		return fmt.Errorf("%w: nil segment", ErrInvalidSegment)
	case seg.ID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidSegment)
	case strings.TrimSpace(seg.Name) == "":
		return fmt.Errorf("%w: segment name cannot be empty", ErrInvalidSegment)
	case seg.Table == "":
		return fmt.Errorf("%w: missing table", ErrInvalidSegment)
	}
	return nil
}
