// Package config resolves server settings from defaults, an optional YAML
// file, environment variables and CLI flags, in that order.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultDatabaseURL points at the bundled SQLite flights database.
const DefaultDatabaseURL = "sqlite:///data/flights.sqlite3"

type Config struct {
	// Database connection.
	DatabaseURL  string
	StrictErrors bool // return lookup failures instead of logging them
	QueryTimeout time.Duration

	// Logging.
	LogLevel slog.Level

	// Transport.
	Transport       string // "stdio" (default) or "http"
	HTTPAddr        string
	HTTPBearerToken string // required when transport=http

	// Connection pool.
	PoolMaxConns        int32
	PoolMinConns        int32
	PoolMaxConnLifetime time.Duration

	// Observability.
	OTelEnabled bool
	AuditLog    string // NDJSON audit file, "-" for stderr, empty to disable
}

// Overrides holds CLI flag values. Nil fields were not set on the command line.
type Overrides struct {
	ConfigFile      *string
	DatabaseURL     *string
	StrictErrors    *bool
	LogLevel        *string
	QueryTimeout    *time.Duration
	Transport       *string
	HTTPAddr        *string
	HTTPBearerToken *string
	OTelEnabled     *bool
	AuditLog        *string

	PoolMaxConns        *int32
	PoolMinConns        *int32
	PoolMaxConnLifetime *time.Duration
}

// fileConfig is the YAML layout. Durations use time.ParseDuration syntax.
type fileConfig struct {
	DatabaseURL  *string `yaml:"database_url"`
	StrictErrors *bool   `yaml:"strict_errors"`
	QueryTimeout *string `yaml:"query_timeout"`
	LogLevel     *string `yaml:"log_level"`
	Transport    *string `yaml:"transport"`
	HTTP         struct {
		Addr        *string `yaml:"addr"`
		BearerToken *string `yaml:"bearer_token"`
	} `yaml:"http"`
	Pool struct {
		MaxConns        *int32  `yaml:"max_conns"`
		MinConns        *int32  `yaml:"min_conns"`
		MaxConnLifetime *string `yaml:"max_conn_lifetime"`
	} `yaml:"pool"`
	OTelEnabled *bool   `yaml:"otel_enabled"`
	AuditLog    *string `yaml:"audit_log"`
}

// Load builds a Config from defaults, the config file named by --config or
// CONFIG_FILE, environment variables and CLI overrides, then validates it.
func Load(overrides Overrides) (*Config, error) {
	cfg := defaults()

	path := os.Getenv("CONFIG_FILE")
	if overrides.ConfigFile != nil {
		path = *overrides.ConfigFile
	}
	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := loadEnvVars(cfg); err != nil {
		return nil, err
	}
	if err := applyOverrides(cfg, overrides); err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		DatabaseURL:         DefaultDatabaseURL,
		QueryTimeout:        10 * time.Second,
		LogLevel:            slog.LevelInfo,
		Transport:           "stdio",
		HTTPAddr:            ":8080",
		PoolMaxConns:        5,
		PoolMinConns:        1,
		PoolMaxConnLifetime: 30 * time.Minute,
	}
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	setString(&cfg.DatabaseURL, fc.DatabaseURL)
	setBool(&cfg.StrictErrors, fc.StrictErrors)
	setString(&cfg.Transport, fc.Transport)
	setString(&cfg.HTTPAddr, fc.HTTP.Addr)
	setString(&cfg.HTTPBearerToken, fc.HTTP.BearerToken)
	setBool(&cfg.OTelEnabled, fc.OTelEnabled)
	setString(&cfg.AuditLog, fc.AuditLog)

	if fc.QueryTimeout != nil {
		d, err := time.ParseDuration(*fc.QueryTimeout)
		if err != nil {
			return fmt.Errorf("invalid query_timeout %q in %s: %w", *fc.QueryTimeout, path, err)
		}
		cfg.QueryTimeout = d
	}
	if fc.LogLevel != nil {
		level, err := parseLogLevel(*fc.LogLevel)
		if err != nil {
			return err
		}
		cfg.LogLevel = level
	}
	if fc.Pool.MaxConns != nil {
		cfg.PoolMaxConns = *fc.Pool.MaxConns
	}
	if fc.Pool.MinConns != nil {
		cfg.PoolMinConns = *fc.Pool.MinConns
	}
	if fc.Pool.MaxConnLifetime != nil {
		d, err := time.ParseDuration(*fc.Pool.MaxConnLifetime)
		if err != nil {
			return fmt.Errorf("invalid pool.max_conn_lifetime %q in %s: %w", *fc.Pool.MaxConnLifetime, path, err)
		}
		cfg.PoolMaxConnLifetime = d
	}
	return nil
}

func loadEnvVars(cfg *Config) error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}

	if v := os.Getenv("STRICT_ERRORS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid STRICT_ERRORS value %q: %w", v, err)
		}
		cfg.StrictErrors = b
	}

	if v := os.Getenv("QUERY_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid QUERY_TIMEOUT value %q: %w", v, err)
		}
		cfg.QueryTimeout = d
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level, err := parseLogLevel(v)
		if err != nil {
			return err
		}
		cfg.LogLevel = level
	}

	if v := os.Getenv("TRANSPORT"); v != "" {
		cfg.Transport = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("HTTP_BEARER_TOKEN"); v != "" {
		cfg.HTTPBearerToken = v
	}

	if v := os.Getenv("OTEL_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid OTEL_ENABLED value %q: %w", v, err)
		}
		cfg.OTelEnabled = b
	}
	if v := os.Getenv("AUDIT_LOG"); v != "" {
		cfg.AuditLog = v
	}

	return loadPoolEnvVars(cfg)
}

func loadPoolEnvVars(cfg *Config) error {
	if v := os.Getenv("POOL_MAX_CONNS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid POOL_MAX_CONNS value %q: must be a positive integer", v)
		}
		cfg.PoolMaxConns = int32(n)
	}
	if v := os.Getenv("POOL_MIN_CONNS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid POOL_MIN_CONNS value %q: must be a non-negative integer", v)
		}
		cfg.PoolMinConns = int32(n)
	}
	if v := os.Getenv("POOL_MAX_CONN_LIFETIME"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid POOL_MAX_CONN_LIFETIME value %q: %w", v, err)
		}
		cfg.PoolMaxConnLifetime = d
	}
	return nil
}

func applyOverrides(cfg *Config, o Overrides) error {
	setString(&cfg.DatabaseURL, o.DatabaseURL)
	setBool(&cfg.StrictErrors, o.StrictErrors)
	if o.LogLevel != nil {
		level, err := parseLogLevel(*o.LogLevel)
		if err != nil {
			return err
		}
		cfg.LogLevel = level
	}
	if o.QueryTimeout != nil {
		cfg.QueryTimeout = *o.QueryTimeout
	}
	setString(&cfg.Transport, o.Transport)
	setString(&cfg.HTTPAddr, o.HTTPAddr)
	setString(&cfg.HTTPBearerToken, o.HTTPBearerToken)
	setBool(&cfg.OTelEnabled, o.OTelEnabled)
	setString(&cfg.AuditLog, o.AuditLog)

	if o.PoolMaxConns != nil {
		cfg.PoolMaxConns = *o.PoolMaxConns
	}
	if o.PoolMinConns != nil {
		cfg.PoolMinConns = *o.PoolMinConns
	}
	if o.PoolMaxConnLifetime != nil {
		cfg.PoolMaxConnLifetime = *o.PoolMaxConnLifetime
	}
	return nil
}

// validate checks field ranges and cross-field constraints on the final config.
func validate(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	u, err := url.Parse(cfg.DatabaseURL)
	if err != nil || u.Scheme == "" {
		return fmt.Errorf("invalid DATABASE_URL: expected scheme://... (postgres, sqlite or mysql)")
	}

	if cfg.QueryTimeout <= 0 {
		return fmt.Errorf("QUERY_TIMEOUT must be positive, got %s", cfg.QueryTimeout)
	}

	switch cfg.Transport {
	case "stdio", "http":
	default:
		return fmt.Errorf("invalid TRANSPORT value %q: must be \"stdio\" or \"http\"", cfg.Transport)
	}
	if cfg.Transport == "http" && cfg.HTTPBearerToken == "" {
		return fmt.Errorf("HTTP_BEARER_TOKEN is required when transport is \"http\" (set via env var or --http-bearer-token flag)")
	}

	if cfg.PoolMaxConns <= 0 {
		return fmt.Errorf("POOL_MAX_CONNS must be a positive integer, got %d", cfg.PoolMaxConns)
	}
	if cfg.PoolMinConns < 0 {
		return fmt.Errorf("POOL_MIN_CONNS must be a non-negative integer, got %d", cfg.PoolMinConns)
	}
	if cfg.PoolMinConns > cfg.PoolMaxConns {
		return fmt.Errorf("POOL_MIN_CONNS (%d) must not exceed POOL_MAX_CONNS (%d)", cfg.PoolMinConns, cfg.PoolMaxConns)
	}
	return nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL value %q: must be debug, info, warn, or error", s)
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
