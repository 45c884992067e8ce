// Package config handles configuration for the server component:
// defaults, environment variables and command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"
)

// Поддерживаемые драйверы хранилища
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Переменные окружения
const (
	EnvJWTSecret   = "FITSYNC_JWT_SECRET"
	EnvDB          = "FITSYNC_DB"
	EnvDatabaseDSN = "FITSYNC_DATABASE_DSN"
)

// Config holds runtime settings for the fitsync server.
//
// Fields:
//   - Addr: bind address of the HTTP API.
//   - Driver: storage backend, "sqlite" or "postgres".
//   - DBPath: SQLite database file (Driver = sqlite).
//   - DatabaseDSN: PostgreSQL DSN for pgx (Driver = postgres).
//   - JWTSecret: HMAC secret for HS256 tokens.
//   - TokenTTL: lifetime of tokens issued with -issue-token.
//   - RateLimit / RateWindow: requests allowed per owner within the window.
type Config struct {
	Addr        string
	Driver      string
	DBPath      string
	DatabaseDSN string
	JWTSecret   string
	IssueToken  string
	LogLevel    string
	LogJSON     bool
	Version     bool
	TokenTTL    time.Duration
	RateLimit   int
	RateWindow  time.Duration
}

// Default returns development defaults
func Default() *Config {
	return &Config{
		Addr:       ":8080",
		Driver:     DriverSQLite,
		DBPath:     "fitsync.db",
		LogLevel:   "info",
		TokenTTL:   30 * 24 * time.Hour,
		RateLimit:  600,
		RateWindow: time.Minute,
	}
}

// Load builds a Config from defaults, then environment, then flags.
// getenv is usually os.Getenv.
func Load(args []string, getenv func(string) string, output io.Writer) (*Config, error) {
	cfg := Default()
	cfg.applyEnv(getenv)

	fs := flag.NewFlagSet("fitsync-server", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	fs.StringVar(&cfg.Driver, "driver", cfg.Driver, "storage driver: sqlite or postgres")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path (env "+EnvDB+")")
	fs.StringVar(&cfg.DatabaseDSN, "dsn", cfg.DatabaseDSN, "PostgreSQL DSN (env "+EnvDatabaseDSN+")")
	fs.DurationVar(&cfg.TokenTTL, "token-ttl", cfg.TokenTTL, "lifetime of issued tokens")
	fs.IntVar(&cfg.RateLimit, "rate-limit", cfg.RateLimit, "requests per owner per rate window")
	fs.DurationVar(&cfg.RateWindow, "rate-window", cfg.RateWindow, "rate limit window")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	fs.BoolVar(&cfg.LogJSON, "log-json", cfg.LogJSON, "log in JSON format")
	fs.StringVar(&cfg.IssueToken, "issue-token", "", "print a token for the owner id and exit")
	fs.BoolVar(&cfg.Version, "version", false, "show version information")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// DSN из окружения или флага включает postgres, если драйвер не задан явно
	driverSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "driver" {
			driverSet = true
		}
	})
	if !driverSet && cfg.DatabaseDSN != "" {
		cfg.Driver = DriverPostgres
	}

	if cfg.Version {
		return cfg, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv(EnvJWTSecret); v != "" {
		c.JWTSecret = v
	}
	if v := getenv(EnvDB); v != "" {
		c.DBPath = v
	}
	if v := getenv(EnvDatabaseDSN); v != "" {
		c.DatabaseDSN = v
	}
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required: set %s", EnvJWTSecret)
	}

	switch c.Driver {
	case DriverSQLite:
		if c.DBPath == "" {
			return errors.New("database path is required for sqlite driver")
		}
	case DriverPostgres:
		if c.DatabaseDSN == "" {
			return fmt.Errorf("database DSN is required for postgres driver: set %s or -dsn", EnvDatabaseDSN)
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Driver)
	}

	if c.RateLimit <= 0 || c.RateWindow <= 0 {
		return errors.New("rate limit and window must be positive")
	}
	if c.IssueToken != "" && c.TokenTTL <= 0 {
		return errors.New("token ttl must be positive")
	}
	return nil
}
