package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the environment driven configuration for the chat gateway.
// It is resolved once at process start and injected into constructors; no
// component reads the environment directly.
type Config struct {
	// Service Configuration
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"chat-gateway"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8080"`
	MetricsPort     int           `env:"METRICS_PORT" envDefault:"9091"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Upstream inference service (required, no default)
	InferenceBaseURL string        `env:"INFERENCE_BASE_URL,notEmpty"`
	InferenceTimeout time.Duration `env:"INFERENCE_TIMEOUT" envDefault:"120s"`

	// PostgreSQL
	DatabaseURL    string        `env:"DATABASE_URL,notEmpty"`
	DBMaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBMaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"15"`
	DBConnLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`

	// SDK generation (third-party completion API)
	SDKGenAPIKey  string        `env:"SDKGEN_API_KEY"`
	SDKGenBaseURL string        `env:"SDKGEN_BASE_URL"`
	SDKGenModel   string        `env:"SDKGEN_MODEL" envDefault:"llama-3.3-70b-versatile"`
	SDKGenTimeout time.Duration `env:"SDKGEN_TIMEOUT" envDefault:"60s"`

	// Observability
	EnableTracing bool   `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint  string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load parses environment variables into Config and fails fast on missing or
// malformed required fields.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.InferenceBaseURL = strings.TrimRight(strings.TrimSpace(cfg.InferenceBaseURL), "/")
	if _, err := url.ParseRequestURI(cfg.InferenceBaseURL); err != nil {
		return nil, fmt.Errorf("invalid INFERENCE_BASE_URL: %w", err)
	}

	cfg.SDKGenBaseURL = strings.TrimRight(strings.TrimSpace(cfg.SDKGenBaseURL), "/")
	if cfg.SDKGenBaseURL != "" {
		if _, err := url.ParseRequestURI(cfg.SDKGenBaseURL); err != nil {
			return nil, fmt.Errorf("invalid SDKGEN_BASE_URL: %w", err)
		}
	}

	if cfg.EnableTracing && strings.TrimSpace(cfg.OTLPEndpoint) == "" {
		return nil, fmt.Errorf("OTEL_EXPORTER_OTLP_ENDPOINT is required when ENABLE_TRACING is true")
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	return cfg, nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// MetricsAddr returns the metrics listen address.
func (c *Config) MetricsAddr() string {
	return fmt.Sprintf(":%d", c.MetricsPort)
}
