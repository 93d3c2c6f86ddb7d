package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rebeliceyang/lazyseg/internal/models"
)

// CSVProvider serves <dir>/<table>.csv files. The first line is the header.
type CSVProvider struct {
	dir string
}

// NewCSVProvider creates a provider rooted at dir
func NewCSVProvider(dir string) *CSVProvider {
	return &CSVProvider{dir: dir}
}

// Tables lists the .csv files in the directory, without extension
func (p *CSVProvider) Tables(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv directory: %w", err)
	}
	var tables []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		tables = append(tables, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	}
	sort.Strings(tables)
	return tables, nil
}

// Fetch reads up to limit data rows of table
func (p *CSVProvider) Fetch(ctx context.Context, table string, limit int) Result {
	if table == "" || strings.ContainsAny(table, `/\`) || strings.Contains(table, "..") {
		return Failure(fmt.Errorf("%w: %q", ErrUnknownTable, table))
	}

	file, err := os.Open(filepath.Join(p.dir, table+".csv"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Failure(fmt.Errorf("%w: %s", ErrUnknownTable, table))
		}
		return Failure(fmt.Errorf("failed to open CSV file: %w", err))
	}
	defer func() { _ = file.Close() }()

	columns, rows, err := ReadCSV(ctx, file, limit)
	if err != nil {
		return Failure(err)
	}
	return Result{Success: true, Columns: columns, Data: rows}
}

// ReadCSV parses a header line followed by up to limit rows. Cells are typed
// with ParseCell.
func ReadCSV(ctx context.Context, r io.Reader, limit int) ([]string, []models.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return []string{}, []models.Record{}, nil
		}
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	rows := []models.Record{}
	for limit <= 0 || len(rows) < limit {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		line, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read CSV row %d: %w", len(rows)+1, err)
		}

		rec := make(models.Record, len(header))
		for i, col := range header {
			if i < len(line) {
				rec[col] = ParseCell(line[i])
			} else {
				rec[col] = ""
			}
		}
		rows = append(rows, rec)
	}

	return header, rows, nil
}

// ParseCell types a CSV cell: finite numbers become float64, "true"/"false"
// become bool, everything else stays a string. Numbers written with a leading
// zero, like postal codes, stay strings.
func ParseCell(s string) any {
	trimmed := strings.TrimSpace(s)
	switch trimmed {
	case "":
		return s
	case "true":
		return true
	case "false":
		return false
	}
	if hasLeadingZero(trimmed) {
		return s
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || strings.ContainsAny(trimmed, "xX_") {
		return s
	}
	return f
}

func hasLeadingZero(s string) bool {
	s = strings.TrimPrefix(s, "-")
	return len(s) > 1 && s[0] == '0' && s[1] != '.'
}
