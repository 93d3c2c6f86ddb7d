package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Data     DataConfig     `mapstructure:"data"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Store    StoreConfig    `mapstructure:"store"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
}

type DataConfig struct {
	Provider     string `mapstructure:"provider"`
	RowLimit     int    `mapstructure:"row_limit"`
	SampleTables bool   `mapstructure:"sample_tables"`
	CSVDir       string `mapstructure:"csv_dir"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"` // 0 means PGPORT or 5432
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"ssl_mode"`
	Schema   string `mapstructure:"schema"`
	MaxConns int    `mapstructure:"max_conns"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Provider names
const (
	ProviderSample   = "sample"
	ProviderPostgres = "postgres"
	ProviderCSV      = "csv"
)

// Store drivers
const (
	StoreSQLite = "sqlite"
	StoreYAML   = "yaml"
)

// GetDefaults returns a Config with all default values
func GetDefaults() *Config {
	return &Config{
		Data: DataConfig{
			Provider:     ProviderSample,
			RowLimit:     1000,
			SampleTables: true,
			CSVDir:       "",
		},
		Postgres: PostgresConfig{
			Host:     "",
			Port:     0,
			SSLMode:  "prefer",
			Schema:   "public",
			MaxConns: 5,
		},
		Store: StoreConfig{
			Driver: StoreSQLite,
			Path:   defaultStorePath(StoreSQLite),
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from the standard search paths
func Load() (*Config, error) {
	return load("")
}

// LoadFile loads configuration from an explicit file
func LoadFile(path string) (*Config, error) {
	return load(path)
}

func load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Add config paths in priority order
		if configDir, err := GetConfigPath(); err == nil {
			v.AddConfigPath(configDir)
		}
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	defaults := GetDefaults()
	v.SetDefault("data.provider", defaults.Data.Provider)
	v.SetDefault("data.row_limit", defaults.Data.RowLimit)
	v.SetDefault("data.sample_tables", defaults.Data.SampleTables)
	v.SetDefault("data.csv_dir", defaults.Data.CSVDir)
	v.SetDefault("postgres.host", defaults.Postgres.Host)
	v.SetDefault("postgres.port", defaults.Postgres.Port)
	v.SetDefault("postgres.database", defaults.Postgres.Database)
	v.SetDefault("postgres.user", defaults.Postgres.User)
	v.SetDefault("postgres.password", defaults.Postgres.Password)
	v.SetDefault("postgres.ssl_mode", defaults.Postgres.SSLMode)
	v.SetDefault("postgres.schema", defaults.Postgres.Schema)
	v.SetDefault("postgres.max_conns", defaults.Postgres.MaxConns)
	v.SetDefault("store.driver", defaults.Store.Driver)
	v.SetDefault("store.path", "")
	v.SetDefault("server.addr", defaults.Server.Addr)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)

	// LAZYSEG_DATA_PROVIDER, LAZYSEG_LOG_LEVEL, ...
	v.SetEnvPrefix("lazyseg")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config (it's okay if file doesn't exist, we have defaults)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if cfg.Store.Path == "" {
		cfg.Store.Path = defaultStorePath(cfg.Store.Driver)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated settings
func (c *Config) Validate() error {
	switch c.Data.Provider {
	case ProviderSample, ProviderPostgres, ProviderCSV:
	default:
		return fmt.Errorf("unknown data provider %q", c.Data.Provider)
	}
	switch c.Store.Driver {
	case StoreSQLite, StoreYAML:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Data.RowLimit <= 0 {
		return fmt.Errorf("data.row_limit must be positive, got %d", c.Data.RowLimit)
	}
	return nil
}

// GetConfigPath returns the user config directory path
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "lazyseg"), nil
}

func defaultStorePath(driver string) string {
	name := "segments.db"
	if driver == StoreYAML {
		name = "segments.yaml"
	}
	dir, err := GetConfigPath()
	if err != nil {
		return name
	}
	return filepath.Join(dir, name)
}
