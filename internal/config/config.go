// Package config provides application configuration management with support
// for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Metadata  MetadataConfig
	Database  DatabaseConfig
	Server    ServerConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Recency   RecencyConfig
	Gallery   GalleryConfig
	KV        KVConfig
	Edge      EdgeConfig
	IPC       IPCConfig
	CDN       CDNConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// MetadataConfig holds metadata storage configuration (auth key, embedded stores).
type MetadataConfig struct {
	BasePath string
}

// DatabaseConfig holds the relational image store configuration.
type DatabaseConfig struct {
	// Path to the SQLite database file (default: {metadata}/driftpix.db).
	Path string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// PASETO v4 symmetric key for bearer tokens (32 bytes).
	// Set by auth.LoadOrGenerateKey during bootstrap.
	TokenKey []byte
}

// RateLimitConfig holds the inbound rate limiter configuration.
type RateLimitConfig struct {
	// Times is the maximum number of requests per window.
	Times int
	// Seconds is the window length.
	Seconds int
	// EscalateAfter is the number of limiter violations inside the
	// escalation window before the client is pushed to the deny list.
	EscalateAfter int
	// EscalateSeconds is the escalation window length.
	EscalateSeconds int
}

// RecencyConfig holds the recency queue configuration.
type RecencyConfig struct {
	// MaxSize bounds the queue; 0 falls back to the gallery batch limit.
	MaxSize int
}

// GalleryConfig holds gallery and batch configuration.
type GalleryConfig struct {
	// BatchLimit is the "many" constant: the number of images returned by
	// a many draw and the cap on batch favorite mutations.
	BatchLimit int
}

// KVConfig selects and configures the shared key-value store.
type KVConfig struct {
	// Backend is "badger" (embedded, default) or "redis".
	Backend string
	// Path is the Badger data directory (default: {metadata}/kv).
	Path string
	// Redis connection settings, used when Backend is "redis".
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// EdgeConfig holds network edge control configuration.
type EdgeConfig struct {
	// DenyListPath is the deny-list file appended to on abuse escalation.
	// Empty disables escalation entirely.
	DenyListPath string
	// ReloadCommand is run after the deny list changes, e.g.
	// "nginx -s reload". Empty skips the reload step.
	ReloadCommand string
}

// CDNConfig holds the public file delivery configuration.
type CDNConfig struct {
	// BaseURL is prepended to image file names in API responses.
	BaseURL string
}

// IPCConfig holds the identity-provider bridge configuration.
type IPCConfig struct {
	// BaseURL of the identity provider. Empty disables cross-user
	// gallery management.
	BaseURL string
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	metadataPath := flag.String("metadata-path", "", "Base path for metadata storage")
	databasePath := flag.String("database-path", "", "Path to the SQLite image database")

	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")

	rateTimes := flag.String("rate-limit-times", "", "Max requests per rate limit window (default: 20)")
	rateSeconds := flag.String("rate-limit-seconds", "", "Rate limit window in seconds (default: 60)")

	recencyMax := flag.String("recency-max-size", "", "Recency queue size (default: gallery batch limit)")
	batchLimit := flag.String("gallery-batch-limit", "", "Batch size for many draws and gallery mutations (default: 30)")

	kvBackend := flag.String("kv-backend", "", "Shared KV backend: badger or redis (default: badger)")
	redisAddr := flag.String("redis-addr", "", "Redis address (host:port)")

	denyListPath := flag.String("denylist-path", "", "Deny-list file for abuse escalation")
	ipcURL := flag.String("ipc-url", "", "Identity provider base URL")
	cdnURL := flag.String("cdn-url", "", "CDN base URL for image files")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Metadata: MetadataConfig{
			BasePath: getConfigValue(*metadataPath, "METADATA_PATH", ""),
		},
		Database: DatabaseConfig{
			Path: getConfigValue(*databasePath, "DATABASE_PATH", ""),
		},
		Server: ServerConfig{
			Port: getConfigValue(*serverPort, "SERVER_PORT", "8080"),
		},
		RateLimit: RateLimitConfig{
			Times:           getIntConfigValue(*rateTimes, "RATE_LIMIT_TIMES", 20),
			Seconds:         getIntConfigValue(*rateSeconds, "RATE_LIMIT_SECONDS", 60),
			EscalateAfter:   getIntConfigValue("", "RATE_LIMIT_ESCALATE_AFTER", 3),
			EscalateSeconds: getIntConfigValue("", "RATE_LIMIT_ESCALATE_SECONDS", 3600),
		},
		Recency: RecencyConfig{
			MaxSize: getIntConfigValue(*recencyMax, "RECENCY_QUEUE_MAX_SIZE", 0),
		},
		Gallery: GalleryConfig{
			BatchLimit: getIntConfigValue(*batchLimit, "GALLERY_BATCH_LIMIT", 30),
		},
		KV: KVConfig{
			Backend:       getConfigValue(*kvBackend, "KV_BACKEND", "badger"),
			Path:          getConfigValue("", "KV_PATH", ""),
			RedisAddr:     getConfigValue(*redisAddr, "REDIS_ADDR", ""),
			RedisPassword: getConfigValue("", "REDIS_PASSWORD", ""),
			RedisDB:       getIntConfigValue("", "REDIS_DB", 0),
		},
		Edge: EdgeConfig{
			DenyListPath:  getConfigValue(*denyListPath, "DENYLIST_PATH", ""),
			ReloadCommand: getConfigValue("", "DENYLIST_RELOAD_CMD", ""),
		},
		IPC: IPCConfig{
			BaseURL: getConfigValue(*ipcURL, "IPC_URL", ""),
		},
		CDN: CDNConfig{
			BaseURL: getConfigValue(*cdnURL, "CDN_BASE_URL", "https://cdn.driftpix.example"),
		},
	}

	// Parse server timeouts.
	var err error
	if cfg.Server.ReadTimeout, err = parseDurationOption(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = parseDurationOption(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = parseDurationOption(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}

	// The recency queue bound defaults to the many batch size, so a full
	// many draw exactly replaces the queue contents.
	if cfg.Recency.MaxSize == 0 {
		cfg.Recency.MaxSize = cfg.Gallery.BatchLimit
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Metadata.BasePath == "" {
		return errors.New("metadata base path cannot be empty after expansion")
	}

	if c.RateLimit.Times <= 0 || c.RateLimit.Seconds <= 0 {
		return errors.New("rate limit times and seconds must be positive")
	}

	if c.Gallery.BatchLimit <= 0 {
		return errors.New("gallery batch limit must be positive")
	}

	if c.Recency.MaxSize <= 0 {
		return errors.New("recency queue max size must be positive")
	}

	switch c.KV.Backend {
	case "badger":
	case "redis":
		if c.KV.RedisAddr == "" {
			return errors.New("REDIS_ADDR is required when KV_BACKEND is redis")
		}
	default:
		return fmt.Errorf("invalid kv backend: %s (must be badger or redis)", c.KV.Backend)
	}

	return nil
}

// expandPaths expands ~ and fills in path defaults derived from the
// metadata base path.
func (c *Config) expandPaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	c.Metadata.BasePath, err = expandPath(c.Metadata.BasePath, filepath.Join(homeDir, "DriftPix", "metadata"))
	if err != nil {
		return fmt.Errorf("invalid metadata path: %w", err)
	}

	c.Database.Path, err = expandPath(c.Database.Path, filepath.Join(c.Metadata.BasePath, "driftpix.db"))
	if err != nil {
		return fmt.Errorf("invalid database path: %w", err)
	}

	c.KV.Path, err = expandPath(c.KV.Path, filepath.Join(c.Metadata.BasePath, "kv"))
	if err != nil {
		return fmt.Errorf("invalid kv path: %w", err)
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// parseDurationOption resolves a duration option from flag, env, or default.
func parseDurationOption(flagValue, envKey, defaultValue string) (time.Duration, error) {
	raw := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(envKey), raw, err)
	}
	return d, nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strValue)
	if err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)

		// Env vars take precedence over the .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
