package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rebeliceyang/lazyseg/internal/filter"
	"github.com/rebeliceyang/lazyseg/internal/models"
)

// Format is an output file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks a format from the file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", filepath.Ext(path))
	}
}

// WriteRowsCSV writes records as CSV with one column per entry of columns, in
// that order
func WriteRowsCSV(w io.Writer, columns []string, rows []models.Record) error {
	writer := csv.NewWriter(w)

	// Write header
	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	line := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			line[i] = models.DisplayValue(row[col])
		}
		if err := writer.Write(line); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteRowsJSON writes records as an indented JSON array
func WriteRowsJSON(w io.Writer, rows []models.Record) error {
	if rows == nil {
		rows = []models.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("failed to marshal rows to JSON: %w", err)
	}
	return nil
}

// ExportRows writes records to path in the format its extension names
func ExportRows(columns []string, rows []models.Record, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	return writeFile(path, func(w io.Writer) error {
		switch format {
		case FormatCSV:
			return WriteRowsCSV(w, columns, rows)
		case FormatJSON:
			return WriteRowsJSON(w, rows)
		default:
			enc := yaml.NewEncoder(w)
			enc.SetIndent(2)
			if err := enc.Encode(rows); err != nil {
				return err
			}
			return enc.Close()
		}
	})
}

// WriteSegmentsCSV writes a summary line per segment
func WriteSegmentsCSV(w io.Writer, segments []models.Segment) error {
	writer := csv.NewWriter(w)

	header := []string{"ID", "Name", "Description", "Table", "Filters", "Matched", "Created", "Updated"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, seg := range segments {
		row := []string{
			seg.ID,
			seg.Name,
			seg.Description,
			seg.Table,
			filter.Describe(&seg.Filters.Root),
			fmt.Sprintf("%d", seg.MatchedCount),
			seg.CreatedAt.Format("2006-01-02 15:04:05"),
			seg.UpdatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ExportSegments writes segments to path. JSON and YAML carry the full filter
// state so the file can be loaded back.
func ExportSegments(segments []models.Segment, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if segments == nil {
		segments = []models.Segment{}
	}
	return writeFile(path, func(w io.Writer) error {
		switch format {
		case FormatCSV:
			return WriteSegmentsCSV(w, segments)
		case FormatJSON:
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(segments)
		default:
			enc := yaml.NewEncoder(w)
			enc.SetIndent(2)
			if err := enc.Encode(segments); err != nil {
				return err
			}
			return enc.Close()
		}
	})
}

func writeFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := write(file); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}
