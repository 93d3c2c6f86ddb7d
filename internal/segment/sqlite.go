package segment

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/rebeliceyang/lazyseg/internal/models"
)

//go:embed schema.sql
var schemaSQL string

const timeLayout = time.RFC3339Nano

// SQLiteStore keeps segments in a SQLite database
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	// Create schema
	_, err = db.Exec(schemaSQL)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

// Create inserts a new segment
func (s *SQLiteStore) Create(ctx context.Context, seg *models.Segment) error {
	if err := validate(seg); err != nil {
		return err
	}
	filters, records, err := encodeColumns(seg)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO segments
		(id, name, description, table_name, filters, matched_count, records, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seg.ID,
		seg.Name,
		seg.Description,
		seg.Table,
		filters,
		seg.MatchedCount,
		records,
		seg.CreatedAt.UTC().Format(timeLayout),
		seg.UpdatedAt.UTC().Format(timeLayout),
	)
	return translate(err)
}

// Get retrieves a segment by ID
func (s *SQLiteStore) Get(ctx context.Context, id string) (*models.Segment, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, table_name, filters, matched_count,
		       records, created_at, updated_at
		FROM segments
		WHERE id = ?`, id)

	seg, err := scanSegment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return seg, nil
}

// List retrieves segments oldest first, optionally for one table
func (s *SQLiteStore) List(ctx context.Context, table string) ([]models.Segment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, table_name, filters, matched_count,
		       records, created_at, updated_at
		FROM segments
		WHERE ? = '' OR table_name = ?
		ORDER BY created_at, name`, table, table)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	segments := []models.Segment{}
	for rows.Next() {
		seg, err := scanSegment(rows)
		if err != nil {
			return nil, err
		}
		segments = append(segments, *seg)
	}
	return segments, rows.Err()
}

// Update overwrites every mutable field of an existing segment
func (s *SQLiteStore) Update(ctx context.Context, seg *models.Segment) error {
	if err := validate(seg); err != nil {
		return err
	}
	filters, records, err := encodeColumns(seg)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE segments
		SET name = ?, description = ?, table_name = ?, filters = ?,
		    matched_count = ?, records = ?, updated_at = ?
		WHERE id = ?`,
		seg.Name,
		seg.Description,
		seg.Table,
		filters,
		seg.MatchedCount,
		records,
		seg.UpdatedAt.UTC().Format(timeLayout),
		seg.ID,
	)
	if err != nil {
		return translate(err)
	}
	return requireAffected(res, seg.ID)
}

// Delete removes a segment by ID
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM segments WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res, id)
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSegment(row scanner) (*models.Segment, error) {
	var seg models.Segment
	var filters, records, createdAt, updatedAt string

	err := row.Scan(
		&seg.ID,
		&seg.Name,
		&seg.Description,
		&seg.Table,
		&filters,
		&seg.MatchedCount,
		&records,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(filters), &seg.Filters); err != nil {
		return nil, fmt.Errorf("failed to decode filters of segment %s: %w", seg.ID, err)
	}
	if err := json.Unmarshal([]byte(records), &seg.Records); err != nil {
		return nil, fmt.Errorf("failed to decode records of segment %s: %w", seg.ID, err)
	}
	seg.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	seg.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)

	return &seg, nil
}

func encodeColumns(seg *models.Segment) (string, string, error) {
	filters, err := json.Marshal(seg.Filters)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode filters: %w", err)
	}
	recs := seg.Records
	if recs == nil {
		recs = []models.Record{}
	}
	records, err := json.Marshal(recs)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode records: %w", err)
	}
	return string(filters), string(records), nil
}

func translate(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return ErrDuplicateName
	}
	return err
}

func requireAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
