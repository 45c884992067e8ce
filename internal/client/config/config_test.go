package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/fitsync/pkg/api"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvServer, "")
	t.Setenv(EnvToken, "")
	t.Setenv(EnvConfig, "")
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultDBPath, cfg.DBPath)
	assert.Equal(t, DefaultProbeTimeout, cfg.Sync.ProbeTimeout.Duration)
	assert.Equal(t, DefaultInterval, cfg.Sync.Interval.Duration)
	assert.Equal(t, DefaultHealthAddr, cfg.Daemon.HealthAddr)
	assert.False(t, cfg.SyncConfigured())
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "fitsync.toml")
	content := `
server = "https://sync.example.com"
token = "abc"
db_path = "/var/lib/fitsync/client.db"

[log]
file = "/var/log/fitsync.log"
level = "debug"

[sync]
probe_timeout = "3s"
interval = "1m"
backoff_base = "500ms"
backoff_max = "2m"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://sync.example.com", cfg.Server)
	assert.Equal(t, "abc", cfg.Token)
	assert.Equal(t, "/var/lib/fitsync/client.db", cfg.DBPath)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 10, cfg.Log.MaxSizeMB, "unset keys keep defaults")
	assert.Equal(t, 3*time.Second, cfg.Sync.ProbeTimeout.Duration)
	assert.Equal(t, time.Minute, cfg.Sync.Interval.Duration)
	assert.Equal(t, 500*time.Millisecond, cfg.Sync.BackoffBase.Duration)
	assert.Equal(t, 2*time.Minute, cfg.Sync.BackoffMax.Duration)
	assert.True(t, cfg.SyncConfigured())
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "fitsync.toml")
	require.NoError(t, os.WriteFile(path, []byte(`server = "http://file"`+"\n"+`token = "file-token"`), 0o600))

	t.Setenv(EnvServer, "http://env")
	t.Setenv(EnvToken, "env-token")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://env", cfg.Server)
	assert.Equal(t, "env-token", cfg.Token)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "invalid toml",
			content: "server = ",
			wantErr: "failed to decode config",
		},
		{
			name:    "invalid duration",
			content: "[sync]\ninterval = \"soon\"",
			wantErr: "invalid duration",
		},
		{
			name:    "backoff max below base",
			content: "[sync]\nbackoff_base = \"1m\"\nbackoff_max = \"10s\"",
			wantErr: "backoff_max",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			path := filepath.Join(t.TempDir(), "fitsync.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "fitsync.toml")

	cfg := Default()
	cfg.Server = "http://localhost:8080"
	cfg.Sync.Interval.Duration = 90 * time.Second
	require.NoError(t, Save(path, cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestWrite_DurationsAsText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Default()))
	assert.True(t, strings.Contains(buf.String(), `probe_timeout = "5s"`), buf.String())
}

func TestDefaultPath(t *testing.T) {
	t.Setenv(EnvConfig, "/etc/fitsync.toml")
	assert.Equal(t, "/etc/fitsync.toml", DefaultPath())

	t.Setenv(EnvConfig, "")
	assert.True(t, strings.HasSuffix(DefaultPath(), filepath.Join(".config", "fitsync.toml")))
}

func signedToken(t *testing.T, claims api.TokenClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return token
}

func TestConfig_Owner(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		want    string
		wantErr bool
	}{
		{
			name: "explicit owner",
			cfg:  Config{OwnerID: "user-1", Token: "garbage"},
			want: "user-1",
		},
		{
			name: "owner claim",
			cfg:  Config{Token: signedToken(t, api.TokenClaims{OwnerID: "user-2"})},
			want: "user-2",
		},
		{
			name: "subject claim",
			cfg: Config{Token: signedToken(t, api.TokenClaims{
				RegisteredClaims: jwt.RegisteredClaims{Subject: "user-3"},
			})},
			want: "user-3",
		},
		{
			name:    "no token",
			cfg:     Config{},
			wantErr: true,
		},
		{
			name:    "malformed token",
			cfg:     Config{Token: "not-a-jwt"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.Owner()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoOwner)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
