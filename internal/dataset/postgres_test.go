package dataset

import (
	"math/big"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"

	"github.com/rebeliceyang/lazyseg/internal/config"
)

func TestNormalizeValue(t *testing.T) {
	assert.Nil(t, NormalizeValue(nil))
	assert.Equal(t, "abc", NormalizeValue([]byte("abc")))
	assert.Equal(t, int64(7), NormalizeValue(int64(7)))
	assert.Equal(t, "2024-03-01", NormalizeValue(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-03-01T10:30:00Z", NormalizeValue(time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)))
	assert.Equal(t, 12.5, NormalizeValue(pgtype.Numeric{Int: big.NewInt(125), Exp: -1, Valid: true}))
	assert.Nil(t, NormalizeValue(pgtype.Numeric{}))
	assert.Equal(t, "00000000-0000-0000-0000-000000000001",
		NormalizeValue([16]byte{15: 1}))
}

func TestApplyEnvironment(t *testing.T) {
	t.Setenv("PGHOST", "db.internal")
	t.Setenv("PGPORT", "6543")
	t.Setenv("PGUSER", "analyst")
	t.Setenv("PGDATABASE", "")
	t.Setenv("PGPASSWORD", "")
	t.Setenv("PGSSLMODE", "")

	cfg := ApplyEnvironment(config.PostgresConfig{User: "explicit"})
	assert.Equal(t, "db.internal", cfg.Host)
	assert.Equal(t, 6543, cfg.Port)
	assert.Equal(t, "explicit", cfg.User)
	assert.Equal(t, "explicit", cfg.Database)
	assert.Equal(t, "prefer", cfg.SSLMode)

	cfg = ApplyEnvironment(config.PostgresConfig{Port: 5433})
	assert.Equal(t, 5433, cfg.Port)
}

func TestBuildConnectionString(t *testing.T) {
	got := BuildConnectionString(config.PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "seg",
		Database: "crm",
		SSLMode:  "disable",
		Password: "it's secret",
	})
	assert.Equal(t, `host=localhost port=5432 user=seg dbname=crm sslmode=disable password='it\'s secret'`, got)

	noPass := BuildConnectionString(config.PostgresConfig{Host: "h", Port: 1, User: "u", Database: "", SSLMode: "prefer"})
	assert.Equal(t, "host=h port=1 user=u dbname='' sslmode=prefer", noPass)
}
