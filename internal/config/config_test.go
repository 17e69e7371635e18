package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	setCoreEnvEmpty(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":5000" {
		t.Fatalf("BindAddr = %q, want %q", cfg.BindAddr, ":5000")
	}
	if cfg.DatabaseURL != "" {
		t.Fatalf("DatabaseURL = %q, want empty default", cfg.DatabaseURL)
	}
	if cfg.ShutdownTimeout != 15*time.Second {
		t.Fatalf("ShutdownTimeout = %v, want 15s", cfg.ShutdownTimeout)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("CORSOrigins = %v, want [*]", cfg.CORSOrigins)
	}
	if !cfg.AccessLog {
		t.Fatalf("AccessLog = false, want true")
	}
}

func TestLoadPortAndDatabaseFromEnv(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("PORT", "7001")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017/todoapp")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":7001" {
		t.Fatalf("BindAddr = %q, want %q", cfg.BindAddr, ":7001")
	}
	if cfg.DatabaseURL != "mongodb://localhost:27017/todoapp" {
		t.Fatalf("DatabaseURL = %q, want MONGO_URI value", cfg.DatabaseURL)
	}

	t.Setenv("DATABASE_URL", "postgres://localhost/todos")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DatabaseURL != "postgres://localhost/todos" {
		t.Fatalf("DatabaseURL = %q, want DATABASE_URL to win over MONGO_URI", cfg.DatabaseURL)
	}
}

func TestLoadBindAddrOverridesPort(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("PORT", "7001")
	t.Setenv("APP_BIND_ADDR", "127.0.0.1:9000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != "127.0.0.1:9000" {
		t.Fatalf("BindAddr = %q, want explicit bind addr", cfg.BindAddr)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"PORT", "abc"},
		{"PORT", "70000"},
		{"APP_SHUTDOWN_TIMEOUT", "soon"},
		{"APP_SHUTDOWN_TIMEOUT", "-1s"},
		{"APP_ACCESS_LOG", "maybe"},
		{"APP_LOG_LEVEL", "loud"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			setCoreEnvEmpty(t)
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Fatalf("Load() error = nil, want error for %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestLoadLayersFileUnderEnv(t *testing.T) {
	setCoreEnvEmpty(t)
	path := filepath.Join(t.TempDir(), "todolist.toml")
	body := `
port = 6100
database_url = "mongodb://db:27017/todos"
shutdown_timeout = "3s"
cors_origins = ["http://localhost:3000", " http://127.0.0.1:3000 "]
log_level = "debug"
access_log = false
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("APP_CONFIG_FILE", path)
	t.Setenv("APP_LOG_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":6100" {
		t.Fatalf("BindAddr = %q, want %q", cfg.BindAddr, ":6100")
	}
	if cfg.DatabaseURL != "mongodb://db:27017/todos" {
		t.Fatalf("DatabaseURL = %q, want file value", cfg.DatabaseURL)
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Fatalf("ShutdownTimeout = %v, want 3s", cfg.ShutdownTimeout)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://127.0.0.1:3000" {
		t.Fatalf("CORSOrigins = %v, want trimmed file origins", cfg.CORSOrigins)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("LogLevel = %q, want env to override file", cfg.LogLevel)
	}
	if cfg.AccessLog {
		t.Fatalf("AccessLog = true, want file value false")
	}
	if cfg.ConfigFile != path {
		t.Fatalf("ConfigFile = %q, want %q", cfg.ConfigFile, path)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("APP_CONFIG_FILE", filepath.Join(t.TempDir(), "nope.toml"))
	if _, err := Load(); err == nil {
		t.Fatalf("Load() error = nil, want missing file error")
	}
}

func setCoreEnvEmpty(t *testing.T) {
	t.Helper()
	keys := []string{
		"PORT",
		"APP_BIND_ADDR",
		"APP_SHUTDOWN_TIMEOUT",
		"APP_METRICS_NAMESPACE",
		"APP_CORS_ORIGINS",
		"APP_LOG_LEVEL",
		"APP_ACCESS_LOG",
		"APP_CONFIG_FILE",
		"DATABASE_URL",
		"MONGO_URI",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}
