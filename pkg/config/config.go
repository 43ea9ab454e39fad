package config

import (
	"time"

	"github.com/ajitpratap0/uniunit/pkg/errors"
	"github.com/ajitpratap0/uniunit/pkg/logger"
)

// Config is the top-level configuration of the uniunit service.
type Config struct {
	// Server configures the HTTP API
	Server ServerConfig `yaml:"server" json:"server"`

	// Logging configures the global zap logger
	Logging logger.Config `yaml:"logging" json:"logging"`

	// Metrics configures Prometheus exposition
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`

	// Tracing configures OpenTelemetry
	Tracing TracingConfig `yaml:"tracing" json:"tracing"`

	// Units configures the unit registry and presets
	Units UnitsConfig `yaml:"units" json:"units"`
}

// ServerConfig contains the HTTP server settings.
type ServerConfig struct {
	// Address is the listen address, e.g. ":8000"
	Address string `yaml:"address" json:"address"`
	// ReadTimeout bounds reading a whole request
	ReadTimeout time.Duration `yaml:"read_timeout" json:"read_timeout"`
	// WriteTimeout bounds writing a response
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout"`
	// IdleTimeout closes idle keep-alive connections
	IdleTimeout time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	// ShutdownTimeout bounds graceful shutdown
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
	// MaxConnections caps concurrent connections (0 = unlimited)
	MaxConnections int `yaml:"max_connections" json:"max_connections"`
	// MaxBodyBytes caps request bodies
	MaxBodyBytes int64 `yaml:"max_body_bytes" json:"max_body_bytes"`
	// EnableGzip compresses responses for clients that accept it
	EnableGzip bool `yaml:"enable_gzip" json:"enable_gzip"`
	// RateLimit limits requests per client IP
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`
}

// RateLimitConfig configures the per-client token bucket.
type RateLimitConfig struct {
	Enabled           bool          `yaml:"enabled" json:"enabled"`
	RequestsPerSecond float64       `yaml:"requests_per_second" json:"requests_per_second"`
	Burst             int           `yaml:"burst" json:"burst"`
	// ClientTTL evicts limiters of clients idle for longer than this
	ClientTTL time.Duration `yaml:"client_ttl" json:"client_ttl"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	Enabled     bool   `yaml:"enabled" json:"enabled"`
	ServiceName string `yaml:"service_name" json:"service_name"`
	// SampleRate is the fraction of traces kept (0.0-1.0)
	SampleRate float64 `yaml:"sample_rate" json:"sample_rate"`
	// Exporter selects the span exporter: "stdout" or "none"
	Exporter string `yaml:"exporter" json:"exporter"`
}

// UnitsConfig configures the unit registry and the preset catalogue.
type UnitsConfig struct {
	// Definitions are extra registry definitions, e.g. "furlong = 220 * yard"
	Definitions []string `yaml:"definitions" json:"definitions"`
	// ChineseAliases registers the Chinese unit names
	ChineseAliases bool `yaml:"chinese_aliases" json:"chinese_aliases"`
	// Presets are registered after the built-in presets
	Presets []PresetConfig `yaml:"presets" json:"presets"`
	// PresetsFile is an optional YAML file with more presets
	PresetsFile string `yaml:"presets_file" json:"presets_file"`
	// WatchPresetsFile reloads PresetsFile when it changes
	WatchPresetsFile bool `yaml:"watch_presets_file" json:"watch_presets_file"`
}

// PresetConfig is a named conversion specification.
type PresetConfig struct {
	Name        string            `yaml:"name" json:"name"`
	Description string            `yaml:"description" json:"description"`
	Units       map[string]string `yaml:"units" json:"units"`
}

// Default returns a configuration with production-ready defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:         ":8000",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     2 * time.Minute,
			ShutdownTimeout: 15 * time.Second,
			MaxConnections:  1024,
			MaxBodyBytes:    1 << 20, // 1MB
			EnableGzip:      true,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerSecond: 50,
				Burst:             100,
				ClientTTL:         10 * time.Minute,
			},
		},
		Logging: logger.Config{
			Level:    "info",
			Encoding: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			ServiceName: "uniunit",
			SampleRate:  0.1,
			Exporter:    "stdout",
		},
		Units: UnitsConfig{
			ChineseAliases: true,
		},
	}
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return errors.New(errors.ErrorTypeConfig, "server.address is required")
	}
	if c.Server.MaxConnections < 0 {
		return errors.New(errors.ErrorTypeConfig, "server.max_connections cannot be negative")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.New(errors.ErrorTypeConfig, "server.max_body_bytes must be positive")
	}
	if c.Server.RateLimit.Enabled {
		if c.Server.RateLimit.RequestsPerSecond <= 0 {
			return errors.New(errors.ErrorTypeConfig, "server.rate_limit.requests_per_second must be positive")
		}
		if c.Server.RateLimit.Burst <= 0 {
			return errors.New(errors.ErrorTypeConfig, "server.rate_limit.burst must be positive")
		}
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error", "dpanic", "panic", "fatal":
	default:
		return errors.Newf(errors.ErrorTypeConfig, "logging.level %q is not a valid level", c.Logging.Level)
	}
	if c.Metrics.Enabled && c.Metrics.Path == "" {
		return errors.New(errors.ErrorTypeConfig, "metrics.path is required when metrics are enabled")
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return errors.New(errors.ErrorTypeConfig, "tracing.sample_rate must be between 0 and 1")
	}
	switch c.Tracing.Exporter {
	case "", "stdout", "none":
	default:
		return errors.Newf(errors.ErrorTypeConfig, "tracing.exporter %q is not supported", c.Tracing.Exporter)
	}
	seen := make(map[string]bool, len(c.Units.Presets))
	for i, p := range c.Units.Presets {
		if err := p.Validate(); err != nil {
			return errors.Wrap(err, errors.ErrorTypeConfig, "invalid preset").WithDetail("index", i)
		}
		if seen[p.Name] {
			return errors.Newf(errors.ErrorTypeConfig, "preset %q is configured twice", p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

// Validate checks that the preset has a name and at least one mapping.
func (p PresetConfig) Validate() error {
	if p.Name == "" {
		return errors.New(errors.ErrorTypeValidation, "preset name is required")
	}
	if len(p.Units) == 0 {
		return errors.Newf(errors.ErrorTypeValidation, "preset %q has no units", p.Name)
	}
	return nil
}
