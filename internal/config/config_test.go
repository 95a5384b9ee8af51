package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	base := t.TempDir()
	return &Config{
		App:      AppConfig{Environment: "development"},
		Logger:   LoggerConfig{Level: "info"},
		Metadata: MetadataConfig{BasePath: base},
		Database: DatabaseConfig{Path: filepath.Join(base, "driftpix.db")},
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		RateLimit: RateLimitConfig{Times: 20, Seconds: 60, EscalateAfter: 3, EscalateSeconds: 3600},
		Recency:   RecencyConfig{MaxSize: 30},
		Gallery:   GalleryConfig{BatchLimit: 30},
		KV:        KVConfig{Backend: "badger", Path: filepath.Join(base, "kv")},
	}
}

func TestValidate_Environments(t *testing.T) {
	tests := []struct {
		env     string
		wantErr bool
	}{
		{"development", false},
		{"staging", false},
		{"production", false},
		{"prod", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig(t)
			cfg.App.Environment = tt.env
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_LogLevels(t *testing.T) {
	tests := []struct {
		level   string
		wantErr bool
	}{
		{"debug", false},
		{"info", false},
		{"WARN", false},
		{"error", false},
		{"verbose", true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := validConfig(t)
			cfg.Logger.Level = tt.level
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_RateLimit(t *testing.T) {
	cfg := validConfig(t)
	cfg.RateLimit.Times = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig(t)
	cfg.RateLimit.Seconds = -1
	assert.Error(t, cfg.Validate())
}

func TestValidate_KVBackend(t *testing.T) {
	cfg := validConfig(t)
	cfg.KV.Backend = "memcached"
	assert.Error(t, cfg.Validate())

	cfg = validConfig(t)
	cfg.KV.Backend = "redis"
	assert.Error(t, cfg.Validate(), "redis backend without an address should fail")

	cfg.KV.RedisAddr = "localhost:6379"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_Limits(t *testing.T) {
	cfg := validConfig(t)
	cfg.Gallery.BatchLimit = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig(t)
	cfg.Recency.MaxSize = 0
	assert.Error(t, cfg.Validate())
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("", "/default/path")
	require.NoError(t, err)
	assert.Equal(t, "/default/path", got)

	got, err = expandPath("~/data", "/default")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "data"), got)

	got, err = expandPath("/abs/path", "/default")
	require.NoError(t, err)
	assert.Equal(t, "/abs/path", got)
}

func TestExpandPaths_Defaults(t *testing.T) {
	cfg := validConfig(t)
	cfg.Database.Path = ""
	cfg.KV.Path = ""
	require.NoError(t, cfg.expandPaths())

	assert.Equal(t, filepath.Join(cfg.Metadata.BasePath, "driftpix.db"), cfg.Database.Path)
	assert.Equal(t, filepath.Join(cfg.Metadata.BasePath, "kv"), cfg.KV.Path)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "# comment\nDRIFTPIX_TEST_KEY=hello\nDRIFTPIX_QUOTED=\"world\"\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	t.Setenv("DRIFTPIX_TEST_KEY", "")
	t.Setenv("DRIFTPIX_QUOTED", "")
	os.Unsetenv("DRIFTPIX_TEST_KEY")
	os.Unsetenv("DRIFTPIX_QUOTED")

	require.NoError(t, loadEnvFile(envFile))
	assert.Equal(t, "hello", os.Getenv("DRIFTPIX_TEST_KEY"))
	assert.Equal(t, "world", os.Getenv("DRIFTPIX_QUOTED"))
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("DRIFTPIX_PRECEDENCE", "from-env")

	assert.Equal(t, "from-flag", getConfigValue("from-flag", "DRIFTPIX_PRECEDENCE", "default"))
	assert.Equal(t, "from-env", getConfigValue("", "DRIFTPIX_PRECEDENCE", "default"))
	assert.Equal(t, "default", getConfigValue("", "DRIFTPIX_UNSET", "default"))
}

func TestGetIntConfigValue(t *testing.T) {
	t.Setenv("DRIFTPIX_INT", "42")
	assert.Equal(t, 42, getIntConfigValue("", "DRIFTPIX_INT", 7))
	assert.Equal(t, 7, getIntConfigValue("", "DRIFTPIX_INT_UNSET", 7))

	t.Setenv("DRIFTPIX_BAD_INT", "nope")
	assert.Equal(t, 7, getIntConfigValue("", "DRIFTPIX_BAD_INT", 7))
}
