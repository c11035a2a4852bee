package config

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ServerAddress   string
	WorkerCount     int
	ShutdownTimeout time.Duration
	MaxHeaderBytes  int64

	// Routing
	SleepDelay       time.Duration // artificial delay of GET /sleep
	RootDocument     string        // body of GET /
	NotFoundDocument string        // body of unmatched paths

	AccessLogDB string // sqlite path; empty disables the access log
	LogLevel    slog.Level
}

// file mirrors the optional YAML file named by CONFIG_FILE.
type file struct {
	ServerAddress    string `yaml:"server_address"`
	WorkerCount      int    `yaml:"worker_count"`
	ShutdownTimeout  string `yaml:"shutdown_timeout"`
	MaxHeaderBytes   int64  `yaml:"max_header_bytes"`
	SleepDelay       string `yaml:"sleep_delay"`
	RootDocument     string `yaml:"root_document"`
	NotFoundDocument string `yaml:"not_found_document"`
	AccessLogDB      string `yaml:"access_log_db"`
	LogLevel         string `yaml:"log_level"`
}

func defaults() file {
	return file{
		ServerAddress:    "127.0.0.1:7878",
		WorkerCount:      4,
		ShutdownTimeout:  "30s",
		MaxHeaderBytes:   1 << 20,
		SleepDelay:       "5s",
		RootDocument:     "static/hello.html",
		NotFoundDocument: "static/404.html",
		LogLevel:         "info",
	}
}

// Load reads .env (if present), the optional CONFIG_FILE and the
// environment. Any invalid value is fatal.
func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := FromLookup(os.LookupEnv)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

// FromLookup builds a Config from defaults, then the YAML file named by
// CONFIG_FILE, then environment values returned by lookup. A variable that
// is set always wins, even when empty: ACCESS_LOG_DB= disables an access
// log named in the file, and an empty numeric or duration value is an error.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	f := defaults()

	if path, ok := lookup("CONFIG_FILE"); ok && path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	overlay := func(k string, dst *string) {
		if v, ok := lookup(k); ok {
			*dst = v
		}
	}

	overlay("SERVER_ADDRESS", &f.ServerAddress)
	overlay("SHUTDOWN_TIMEOUT", &f.ShutdownTimeout)
	overlay("SLEEP_DELAY", &f.SleepDelay)
	overlay("ROOT_DOCUMENT", &f.RootDocument)
	overlay("NOT_FOUND_DOCUMENT", &f.NotFoundDocument)
	overlay("ACCESS_LOG_DB", &f.AccessLogDB)
	overlay("LOG_LEVEL", &f.LogLevel)

	if v, ok := lookup("WORKER_COUNT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("WORKER_COUNT=%q is not an integer: %w", v, err)
		}
		f.WorkerCount = n
	}
	if v, ok := lookup("MAX_HEADER_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("MAX_HEADER_BYTES=%q is not an integer: %w", v, err)
		}
		f.MaxHeaderBytes = n
	}

	return f.resolve()
}

func (f file) resolve() (*Config, error) {
	if f.ServerAddress == "" {
		return nil, errors.New("server address is empty")
	}
	if f.WorkerCount <= 0 {
		return nil, fmt.Errorf("worker count must be positive, got %d", f.WorkerCount)
	}
	if f.MaxHeaderBytes <= 0 {
		return nil, fmt.Errorf("max header bytes must be positive, got %d", f.MaxHeaderBytes)
	}

	shutdown, err := parseDuration("shutdown timeout", f.ShutdownTimeout)
	if err != nil {
		return nil, err
	}
	sleep, err := parseDuration("sleep delay", f.SleepDelay)
	if err != nil {
		return nil, err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(f.LogLevel))); err != nil {
		return nil, fmt.Errorf("log level %q: %w", f.LogLevel, err)
	}

	return &Config{
		ServerAddress:    f.ServerAddress,
		WorkerCount:      f.WorkerCount,
		ShutdownTimeout:  shutdown,
		MaxHeaderBytes:   f.MaxHeaderBytes,
		SleepDelay:       sleep,
		RootDocument:     f.RootDocument,
		NotFoundDocument: f.NotFoundDocument,
		AccessLogDB:      f.AccessLogDB,
		LogLevel:         level,
	}, nil
}

func parseDuration(name, v string) (time.Duration, error) {
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s %q is not a valid duration: %w", name, v, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %s", name, d)
	}
	return d, nil
}
