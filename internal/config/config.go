package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const DefaultPort = 5000

// Config contains all runtime settings for the todo API server.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	DatabaseURL string

	CORSOrigins []string
	LogLevel    string
	AccessLog   bool

	// ConfigFile is the TOML file the values were layered from, if any.
	ConfigFile string
}

// fileConfig mirrors Config for the optional TOML file. AccessLog is a
// pointer so an absent key does not read as false.
type fileConfig struct {
	BindAddr         string   `toml:"bind_addr"`
	Port             int      `toml:"port"`
	ShutdownTimeout  string   `toml:"shutdown_timeout"`
	MetricsNamespace string   `toml:"metrics_namespace"`
	DatabaseURL      string   `toml:"database_url"`
	CORSOrigins      []string `toml:"cors_origins"`
	LogLevel         string   `toml:"log_level"`
	AccessLog        *bool    `toml:"access_log"`
}

// Load applies defaults, then the TOML file named by APP_CONFIG_FILE, then
// environment variables.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:         fmt.Sprintf(":%d", DefaultPort),
		ShutdownTimeout:  15 * time.Second,
		MetricsNamespace: "todolist",
		CORSOrigins:      []string{"*"},
		LogLevel:         "info",
		AccessLog:        true,
	}

	if path := stringsTrimSpace("APP_CONFIG_FILE"); path != "" {
		if err := loadFile(&cfg, path); err != nil {
			return Config{}, fmt.Errorf("loading config file %s: %w", path, err)
		}
		cfg.ConfigFile = path
	}

	if port := stringsTrimSpace("PORT"); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return Config{}, fmt.Errorf("PORT parse error: %w", err)
		}
		if err := validPort(n); err != nil {
			return Config{}, fmt.Errorf("PORT %w", err)
		}
		cfg.BindAddr = fmt.Sprintf(":%d", n)
	}
	cfg.BindAddr = envOrDefault("APP_BIND_ADDR", cfg.BindAddr)
	cfg.MetricsNamespace = envOrDefault("APP_METRICS_NAMESPACE", cfg.MetricsNamespace)
	cfg.LogLevel = strings.ToLower(envOrDefault("APP_LOG_LEVEL", cfg.LogLevel))
	// MONGO_URI is the legacy name; DATABASE_URL wins when both are set.
	if v := stringsTrimSpace("MONGO_URI"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := stringsTrimSpace("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := stringsTrimSpace("APP_CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitList(v)
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.AccessLog, err = boolFromEnv("APP_ACCESS_LOG", cfg.AccessLog)
	if err != nil {
		return Config{}, err
	}

	if strings.TrimSpace(cfg.BindAddr) == "" {
		return Config{}, fmt.Errorf("APP_BIND_ADDR must not be empty")
	}
	if cfg.ShutdownTimeout <= 0 {
		return Config{}, fmt.Errorf("APP_SHUTDOWN_TIMEOUT must be positive")
	}
	if len(cfg.CORSOrigins) == 0 {
		return Config{}, fmt.Errorf("APP_CORS_ORIGINS must list at least one origin")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return Config{}, fmt.Errorf("APP_LOG_LEVEL must be one of debug|info|warn|error, got %q", cfg.LogLevel)
	}

	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return err
	}
	if fc.Port != 0 {
		if err := validPort(fc.Port); err != nil {
			return fmt.Errorf("port %w", err)
		}
		cfg.BindAddr = fmt.Sprintf(":%d", fc.Port)
	}
	if strings.TrimSpace(fc.BindAddr) != "" {
		cfg.BindAddr = strings.TrimSpace(fc.BindAddr)
	}
	if strings.TrimSpace(fc.ShutdownTimeout) != "" {
		d, err := time.ParseDuration(strings.TrimSpace(fc.ShutdownTimeout))
		if err != nil {
			return fmt.Errorf("shutdown_timeout parse error: %w", err)
		}
		cfg.ShutdownTimeout = d
	}
	if strings.TrimSpace(fc.MetricsNamespace) != "" {
		cfg.MetricsNamespace = strings.TrimSpace(fc.MetricsNamespace)
	}
	if strings.TrimSpace(fc.DatabaseURL) != "" {
		cfg.DatabaseURL = strings.TrimSpace(fc.DatabaseURL)
	}
	if len(fc.CORSOrigins) > 0 {
		cfg.CORSOrigins = splitList(strings.Join(fc.CORSOrigins, ","))
	}
	if strings.TrimSpace(fc.LogLevel) != "" {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(fc.LogLevel))
	}
	if fc.AccessLog != nil {
		cfg.AccessLog = *fc.AccessLog
	}
	return nil
}

func validPort(n int) error {
	if n <= 0 || n > 65535 {
		return fmt.Errorf("must be in [1,65535], got %d", n)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envOrDefault(key, fallback string) string {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(stringsTrimSpace(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
