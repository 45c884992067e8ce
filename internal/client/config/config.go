// Package config загружает настройки клиента из TOML файла и переменных окружения.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/iudanet/fitsync/internal/timex"
	"github.com/iudanet/fitsync/pkg/api"
)

// Переменные окружения
const (
	EnvConfig = "FITSYNC_CONFIG"
	EnvServer = "FITSYNC_SERVER"
	EnvToken  = "FITSYNC_TOKEN"
)

// Значения по умолчанию
const (
	DefaultDBPath       = "fitsync.db"
	DefaultLogLevel     = "info"
	DefaultHealthAddr   = "127.0.0.1:8787"
	DefaultProbeTimeout = 5 * time.Second
	DefaultInterval     = 5 * time.Minute
	DefaultBackoffBase  = 2 * time.Second
	DefaultBackoffMax   = 5 * time.Minute
)

// ErrNoOwner владелец не задан ни в конфигурации, ни в токене
var ErrNoOwner = errors.New("owner id is not configured")

// Config represents the client configuration.
type Config struct {
	Server  string       `toml:"server"`
	Token   string       `toml:"token"`
	OwnerID string       `toml:"owner_id,omitempty"` // по умолчанию берется из токена
	DBPath  string       `toml:"db_path"`
	Log     LogConfig    `toml:"log"`
	Sync    SyncConfig   `toml:"sync"`
	Daemon  DaemonConfig `toml:"daemon"`
}

// LogConfig настройки журналирования
type LogConfig struct {
	File       string `toml:"file,omitempty"` // пусто = stderr
	Level      string `toml:"level"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

// SyncConfig настройки синхронизации
type SyncConfig struct {
	ProbeTimeout timex.Duration `toml:"probe_timeout"`
	Interval     timex.Duration `toml:"interval"`
	BackoffBase  timex.Duration `toml:"backoff_base"`
	BackoffMax   timex.Duration `toml:"backoff_max"`
}

// DaemonConfig настройки фонового режима
type DaemonConfig struct {
	HealthAddr string `toml:"health_addr"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		DBPath: DefaultDBPath,
		Log: LogConfig{
			Level:      DefaultLogLevel,
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Sync: SyncConfig{
			ProbeTimeout: timex.Duration{Duration: DefaultProbeTimeout},
			Interval:     timex.Duration{Duration: DefaultInterval},
			BackoffBase:  timex.Duration{Duration: DefaultBackoffBase},
			BackoffMax:   timex.Duration{Duration: DefaultBackoffMax},
		},
		Daemon: DaemonConfig{HealthAddr: DefaultHealthAddr},
	}
}

// DefaultPath возвращает путь к файлу конфигурации:
// FITSYNC_CONFIG или ~/.config/fitsync.toml
func DefaultPath() string {
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "fitsync.toml"
	}
	return filepath.Join(home, ".config", "fitsync.toml")
}

// Read decodes a Config from the provided reader on top of defaults.
func Read(r io.Reader) (*Config, error) {
	cfg := Default()
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Write encodes a Config to the provided writer.
func Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// Load читает файл конфигурации и применяет переменные окружения.
// Отсутствующий файл не является ошибкой: используются значения по умолчанию.
func Load(path string) (*Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to open config file: %w", err)
	default:
		defer f.Close()
		cfg, err = Read(f)
		if err != nil {
			return nil, fmt.Errorf("reading config from %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.fillDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save записывает конфигурацию в файл, создавая каталог при необходимости.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvServer); v != "" {
		c.Server = v
	}
	if v := os.Getenv(EnvToken); v != "" {
		c.Token = v
	}
}

func (c *Config) fillDefaults() {
	d := Default()
	if c.DBPath == "" {
		c.DBPath = d.DBPath
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Daemon.HealthAddr == "" {
		c.Daemon.HealthAddr = d.Daemon.HealthAddr
	}
	for _, pair := range []struct {
		dst *timex.Duration
		def timex.Duration
	}{
		{&c.Sync.ProbeTimeout, d.Sync.ProbeTimeout},
		{&c.Sync.Interval, d.Sync.Interval},
		{&c.Sync.BackoffBase, d.Sync.BackoffBase},
		{&c.Sync.BackoffMax, d.Sync.BackoffMax},
	} {
		if pair.dst.Duration <= 0 {
			*pair.dst = pair.def
		}
	}
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	if c.Sync.BackoffMax.Duration < c.Sync.BackoffBase.Duration {
		return fmt.Errorf("sync.backoff_max (%s) is less than sync.backoff_base (%s)",
			c.Sync.BackoffMax.Duration, c.Sync.BackoffBase.Duration)
	}
	return nil
}

// SyncConfigured reports whether both server and token are set.
func (c *Config) SyncConfigured() bool {
	return c.Server != "" && c.Token != ""
}

// Owner возвращает владельца данных: явно заданный или из токена.
func (c *Config) Owner() (string, error) {
	if c.OwnerID != "" {
		return c.OwnerID, nil
	}
	if c.Token == "" {
		return "", ErrNoOwner
	}
	owner, err := api.OwnerFromToken(c.Token)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoOwner, err)
	}
	return owner, nil
}
