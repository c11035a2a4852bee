package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poolhttpd/server/internal/infrastructure/config"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func TestFromLookup_Defaults(t *testing.T) {
	cfg, err := config.FromLookup(lookupFrom(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.ServerAddress != "127.0.0.1:7878" {
		t.Errorf("expected default address, got %q", cfg.ServerAddress)
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.WorkerCount)
	}
	if cfg.SleepDelay != 5*time.Second {
		t.Errorf("expected 5s sleep delay, got %s", cfg.SleepDelay)
	}
	if cfg.AccessLogDB != "" {
		t.Errorf("expected access log disabled, got %q", cfg.AccessLogDB)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("expected info level, got %s", cfg.LogLevel)
	}
}

func TestFromLookup_Env(t *testing.T) {
	cfg, err := config.FromLookup(lookupFrom(map[string]string{
		"SERVER_ADDRESS": "0.0.0.0:9000",
		"WORKER_COUNT":   "8",
		"SLEEP_DELAY":    "250ms",
		"LOG_LEVEL":      "debug",
		"ACCESS_LOG_DB":  "access.db",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.ServerAddress != "0.0.0.0:9000" {
		t.Errorf("expected env address, got %q", cfg.ServerAddress)
	}
	if cfg.WorkerCount != 8 {
		t.Errorf("expected 8 workers, got %d", cfg.WorkerCount)
	}
	if cfg.SleepDelay != 250*time.Millisecond {
		t.Errorf("expected 250ms, got %s", cfg.SleepDelay)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("expected debug level, got %s", cfg.LogLevel)
	}
	if cfg.AccessLogDB != "access.db" {
		t.Errorf("expected access.db, got %q", cfg.AccessLogDB)
	}
}

func TestFromLookup_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yml")
	yml := "worker_count: 2\nsleep_delay: 1s\nroot_document: www/index.html\n"
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.FromLookup(lookupFrom(map[string]string{
		"CONFIG_FILE":  path,
		"WORKER_COUNT": "6",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.WorkerCount != 6 {
		t.Errorf("expected env to override file, got %d workers", cfg.WorkerCount)
	}
	if cfg.SleepDelay != time.Second {
		t.Errorf("expected 1s from file, got %s", cfg.SleepDelay)
	}
	if cfg.RootDocument != "www/index.html" {
		t.Errorf("expected root document from file, got %q", cfg.RootDocument)
	}
	if cfg.NotFoundDocument != "static/404.html" {
		t.Errorf("expected default not-found document, got %q", cfg.NotFoundDocument)
	}
}

func TestFromLookup_EmptyEnvClearsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yml")
	if err := os.WriteFile(path, []byte("access_log_db: access.db\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.FromLookup(lookupFrom(map[string]string{"CONFIG_FILE": path}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.AccessLogDB != "access.db" {
		t.Fatalf("expected access log from file, got %q", cfg.AccessLogDB)
	}

	cfg, err = config.FromLookup(lookupFrom(map[string]string{
		"CONFIG_FILE":   path,
		"ACCESS_LOG_DB": "",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.AccessLogDB != "" {
		t.Errorf("expected empty ACCESS_LOG_DB to disable the access log, got %q", cfg.AccessLogDB)
	}
}

func TestFromLookup_Invalid(t *testing.T) {
	cases := []map[string]string{
		{"WORKER_COUNT": "0"},
		{"WORKER_COUNT": ""},
		{"SERVER_ADDRESS": ""},
		{"WORKER_COUNT": "-1"},
		{"WORKER_COUNT": "four"},
		{"SLEEP_DELAY": "soon"},
		{"SHUTDOWN_TIMEOUT": "-1s"},
		{"LOG_LEVEL": "loud"},
		{"MAX_HEADER_BYTES": "0"},
		{"CONFIG_FILE": "/does/not/exist.yml"},
	}

	for _, env := range cases {
		if _, err := config.FromLookup(lookupFrom(env)); err == nil {
			t.Errorf("expected error for %v", env)
		}
	}
}
