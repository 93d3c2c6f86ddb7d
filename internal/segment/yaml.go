package segment

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/rebeliceyang/lazyseg/internal/models"
)

// YAMLStore keeps all segments in a single YAML file, rewritten on every change
type YAMLStore struct {
	mu       sync.Mutex
	path     string
	segments []models.Segment
}

// NewYAMLStore creates a store backed by path, loading it if it exists
func NewYAMLStore(path string) (*YAMLStore, error) {
	s := &YAMLStore{
		path:     path,
		segments: []models.Segment{},
	}

	// Load existing segments if file exists
	if _, err := os.Stat(path); err == nil {
		if err := s.load(); err != nil {
			return nil, fmt.Errorf("failed to load segments: %w", err)
		}
	}

	return s, nil
}

func (s *YAMLStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read segments file: %w", err)
	}

	var segments []models.Segment
	if err := yaml.Unmarshal(data, &segments); err != nil {
		return fmt.Errorf("failed to parse segments: %w", err)
	}
	if segments != nil {
		s.segments = segments
	}
	return nil
}

func (s *YAMLStore) save() error {
	data, err := yaml.Marshal(s.segments)
	if err != nil {
		return fmt.Errorf("failed to marshal segments: %w", err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	// write then rename so a crash never leaves a truncated file
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write segments file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace segments file: %w", err)
	}
	return nil
}

// Create appends a new segment and saves the file
func (s *YAMLStore) Create(ctx context.Context, seg *models.Segment) error {
	if err := validate(seg); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.segments {
		if existing.ID == seg.ID {
			return fmt.Errorf("%w: duplicate id %s", ErrInvalidSegment, seg.ID)
		}
		if strings.EqualFold(existing.Name, seg.Name) {
			return ErrDuplicateName
		}
	}

	s.segments = append(s.segments, *seg)
	if err := s.save(); err != nil {
		s.segments = s.segments[:len(s.segments)-1]
		return err
	}
	return nil
}

// Get returns a segment by ID
func (s *YAMLStore) Get(ctx context.Context, id string) (*models.Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	seg := s.segments[i]
	return &seg, nil
}

// List returns segments oldest first, optionally for one table
func (s *YAMLStore) List(ctx context.Context, table string) ([]models.Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Segment{}
	for _, seg := range s.segments {
		if table == "" || seg.Table == table {
			out = append(out, seg)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Update replaces an existing segment
func (s *YAMLStore) Update(ctx context.Context, seg *models.Segment) error {
	if err := validate(seg); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Check for duplicate names, excluding the segment itself
	for _, existing := range s.segments {
		if existing.ID != seg.ID && strings.EqualFold(existing.Name, seg.Name) {
			return ErrDuplicateName
		}
	}

	i := s.index(seg.ID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, seg.ID)
	}
	prev := s.segments[i]
	s.segments[i] = *seg
	if err := s.save(); err != nil {
		s.segments[i] = prev
		return err
	}
	return nil
}

// Delete removes a segment by ID
func (s *YAMLStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	prev := s.segments
	s.segments = append(append([]models.Segment{}, s.segments[:i]...), s.segments[i+1:]...)
	if err := s.save(); err != nil {
		s.segments = prev
		return fmt.Errorf("failed to save segments after deletion: %w", err)
	}
	return nil
}

// Close is a no-op; every change is already on disk
func (s *YAMLStore) Close() error {
	return nil
}

func (s *YAMLStore) index(id string) int {
	for i, seg := range s.segments {
		if seg.ID == id {
			return i
		}
	}
	return -1
}
