package dataset

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rebeliceyang/lazyseg/internal/config"
	"github.com/rebeliceyang/lazyseg/internal/models"
	"github.com/rebeliceyang/lazyseg/internal/values"
)

// PostgresProvider reads tables from one schema through a pgx pool
type PostgresProvider struct {
	pool   *pgxpool.Pool
	schema string
}

// NewPostgresProvider creates a pool from cfg, with PG* environment variables
// filling unset fields, and checks connectivity
func NewPostgresProvider(ctx context.Context, cfg config.PostgresConfig) (*PostgresProvider, error) {
	cfg = ApplyEnvironment(cfg)

	poolConfig, err := pgxpool.ParseConfig(BuildConnectionString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	schema := cfg.Schema
	if schema == "" {
		schema = "public"
	}
	return &PostgresProvider{pool: pool, schema: schema}, nil
}

// Close closes the connection pool
func (p *PostgresProvider) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

// Tables lists base tables and views in the schema
func (p *PostgresProvider) Tables(ctx context.Context) ([]string, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1
		ORDER BY table_name
	`, p.schema)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	tables, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan tables: %w", err)
	}
	return tables, nil
}

// Fetch selects up to limit rows from schema.table
func (p *PostgresProvider) Fetch(ctx context.Context, table string, limit int) Result {
	if limit <= 0 {
		limit = DefaultRowLimit
	}

	query := fmt.Sprintf("SELECT * FROM %s LIMIT %d", pgx.Identifier{p.schema, table}.Sanitize(), limit)
	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return Failure(fmt.Errorf("failed to query table data: %w", err))
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, fd := range fields {
		columns[i] = fd.Name
	}

	data := []models.Record{}
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return Failure(fmt.Errorf("failed to read row: %w", err))
		}
		rec := make(models.Record, len(columns))
		for i, col := range columns {
			rec[col] = NormalizeValue(vals[i])
		}
		data = append(data, rec)
	}
	if err := rows.Err(); err != nil {
		return Failure(fmt.Errorf("failed to query table data: %w", err))
	}

	return Result{Success: true, Columns: columns, Data: data}
}

// NormalizeValue converts driver values to the scalar kinds records hold:
// string, float64/int64, bool or nil. Dates at midnight become YYYY-MM-DD so
// they get date semantics.
func NormalizeValue(v any) any {
	switch t := v.(type) {
	case nil, string, bool, float64, float32, int64, int32, int16, int8, int:
		return t
	case []byte:
		return string(t)
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return values.FormatDate(t)
		}
		return t.Format(time.RFC3339)
	case pgtype.Numeric:
		if !t.Valid {
			return nil
		}
		f, err := t.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case [16]byte:
		return uuid.UUID(t).String()
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}

// ApplyEnvironment fills unset connection fields from PGHOST, PGPORT,
// PGDATABASE, PGUSER, PGPASSWORD and PGSSLMODE
func ApplyEnvironment(cfg config.PostgresConfig) config.PostgresConfig {
	if cfg.Host == "" {
		cfg.Host = os.Getenv("PGHOST")
	}
	if cfg.Database == "" {
		cfg.Database = os.Getenv("PGDATABASE")
	}
	if cfg.User == "" {
		cfg.User = os.Getenv("PGUSER")
	}
	if cfg.Password == "" {
		cfg.Password = os.Getenv("PGPASSWORD")
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = os.Getenv("PGSSLMODE")
	}
	if portStr := os.Getenv("PGPORT"); portStr != "" && cfg.Port == 0 {
		if p, err := strconv.Atoi(portStr); err == nil && p > 0 && p <= 65535 {
			cfg.Port = p
		}
	}

	// Set defaults
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 5432
	}
	if cfg.User == "" {
		cfg.User = os.Getenv("USER")
	}
	if cfg.Database == "" {
		cfg.Database = cfg.User
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "prefer"
	}
	return cfg
}

// BuildConnectionString creates a PostgreSQL keyword/value connection string.
// Without a password, pgx falls back to ~/.pgpass.
func BuildConnectionString(cfg config.PostgresConfig) string {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s dbname=%s sslmode=%s",
		quoteConnValue(cfg.Host),
		cfg.Port,
		quoteConnValue(cfg.User),
		quoteConnValue(cfg.Database),
		quoteConnValue(cfg.SSLMode),
	)
	if cfg.Password != "" {
		connStr += " password=" + quoteConnValue(cfg.Password)
	}
	return connStr
}

func quoteConnValue(s string) string {
	if s == "" {
		return "''"
	}
	needsQuote := false
	for _, r := range s {
		if r == ' ' || r == '\'' || r == '\\' {
			needsQuote = true
			break
		}
	}
	if !needsQuote {
		return s
	}
	out := make([]rune, 0, len(s)+2)
	out = append(out, '\'')
	for _, r := range s {
		if r == '\'' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(append(out, '\''))
}
