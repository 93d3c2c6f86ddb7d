package segment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rebeliceyang/lazyseg/internal/filter"
	"github.com/rebeliceyang/lazyseg/internal/logging"
	"github.com/rebeliceyang/lazyseg/internal/models"
	"github.com/rebeliceyang/lazyseg/internal/view"
)

// Service creates and maintains segments on top of a Repository. It is the
// view.Consumer a View submits to.
type Service struct {
	repo   Repository
	source view.Source
	logger *logging.Logger
	now    func() time.Time

	// KeepRecords stores the matched records with each segment. Otherwise
	// only the count is kept.
	KeepRecords bool
}

// Update is a partial change to a segment; nil fields are left alone
type Update struct {
	Name        *string             `json:"name,omitempty"`
	Description *string             `json:"description,omitempty"`
	Filters     *models.FilterState `json:"filters,omitempty"`
}

var _ view.Consumer = (*Service)(nil)

// NewService creates a service. source is used to recount matches when a
// segment's filters change and may be nil.
func NewService(repo Repository, source view.Source, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Noop()
	}
	return &Service{
		repo:        repo,
		source:      source,
		logger:      logger,
		now:         time.Now,
		KeepRecords: true,
	}
}

// Submit saves rows matched by state over table as a new segment
func (s *Service) Submit(ctx context.Context, table string, state models.FilterState, rows []models.Record, name, description string) (*models.Segment, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: segment name cannot be empty", ErrInvalidSegment)
	}

	now := s.now().UTC()
	seg := &models.Segment{
		ID:           uuid.New().String(),
		Name:         name,
		Description:  strings.TrimSpace(description),
		Table:        table,
		Filters:      state.Clone(),
		MatchedCount: len(rows),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if s.KeepRecords {
		seg.Records = rows
	}

	err := s.repo.Create(ctx, seg)
	s.logger.LogSegment(ctx, "create", seg.ID, err)
	if err != nil {
		return nil, err
	}
	return seg, nil
}

// Get returns a segment by ID
func (s *Service) Get(ctx context.Context, id string) (*models.Segment, error) {
	return s.repo.Get(ctx, id)
}

// List returns the segments of table, or all segments when table is empty
func (s *Service) List(ctx context.Context, table string) ([]models.Segment, error) {
	return s.repo.List(ctx, table)
}

// Update applies u to the segment with the given ID. Changed filters are
// re-evaluated against a fresh load of the segment's table.
func (s *Service) Update(ctx context.Context, id string, u Update) (*models.Segment, error) {
	seg, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: segment name cannot be empty", ErrInvalidSegment)
		}
		seg.Name = name
	}
	if u.Description != nil {
		seg.Description = strings.TrimSpace(*u.Description)
	}
	if u.Filters != nil {
		filters, err := filter.Normalize(*u.Filters)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSegment, err)
		}
		seg.Filters = filters
		if err := s.recount(ctx, seg); err != nil {
			return nil, err
		}
	}
	seg.UpdatedAt = s.now().UTC()

	err = s.repo.Update(ctx, seg)
	s.logger.LogSegment(ctx, "update", id, err)
	if err != nil {
		return nil, err
	}
	return seg, nil
}

// Delete removes a segment by ID
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	s.logger.LogSegment(ctx, "delete", id, err)
	return err
}

func (s *Service) recount(ctx context.Context, seg *models.Segment) error {
	if s.source == nil {
		seg.MatchedCount = 0
		seg.Records = nil
		return nil
	}

	data, err := s.source.Load(ctx, seg.Table)
	if err != nil {
		return fmt.Errorf("failed to reload table %s: %w", seg.Table, err)
	}
	rows := view.ComputeFilteredRows(data.Records, seg.Filters)
	seg.MatchedCount = len(rows)
	seg.Records = nil
	if s.KeepRecords {
		seg.Records = rows
	}
	return nil
}
