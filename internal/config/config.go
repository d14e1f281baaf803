// Package config provides configuration loading for pestid.
//
// Configuration is assembled from built-in defaults, an optional YAML file,
// and PESTID_-prefixed environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Supported AI providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Supported tracking store drivers.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Config holds the complete pestid configuration.
type Config struct {
	Server        ServerConfig        `koanf:"server"`
	AI            AIConfig            `koanf:"ai"`
	Store         StoreConfig         `koanf:"store"`
	Tracking      TrackingConfig      `koanf:"tracking"`
	Location      LocationConfig      `koanf:"location"`
	Events        EventsConfig        `koanf:"events"`
	Logging       LoggingConfig       `koanf:"logging"`
	Observability ObservabilityConfig `koanf:"observability"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string   `koanf:"http_host"`
	Port            int      `koanf:"http_port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
	// BodyLimit caps request bodies (echo size syntax, e.g. "10M").
	BodyLimit string `koanf:"body_limit"`
}

// AIConfig selects and tunes the generative model backend.
type AIConfig struct {
	Provider  string   `koanf:"provider"`
	APIKey    Secret   `koanf:"api_key"`
	Model     string   `koanf:"model"`
	BaseURL   string   `koanf:"base_url"`
	Timeout   Duration `koanf:"timeout"`
	RateLimit float64  `koanf:"rate_limit"` // requests per second
	Burst     int      `koanf:"burst"`
}

// StoreConfig selects the tracking store.
type StoreConfig struct {
	Driver string `koanf:"driver"`
	Path   string `koanf:"path"`
}

// TrackingConfig controls tracking service behavior.
type TrackingConfig struct {
	// FallbackToSamples serves built-in sample entries when the store fails.
	FallbackToSamples bool `koanf:"fallback_to_samples"`
}

// LocationConfig configures the IP geolocation lookup.
type LocationConfig struct {
	Endpoint string   `koanf:"endpoint"`
	Timeout  Duration `koanf:"timeout"`
}

// EventsConfig configures the optional NATS event publisher.
// An empty URL disables publishing.
type EventsConfig struct {
	URL           string `koanf:"url"`
	SubjectPrefix string `koanf:"subject_prefix"`
}

// LoggingConfig holds the subset of logging settings exposed through config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// ObservabilityConfig holds OpenTelemetry configuration.
type ObservabilityConfig struct {
	EnableTelemetry bool     `koanf:"enable_telemetry"`
	ServiceName     string   `koanf:"service_name"`
	Endpoint        string   `koanf:"endpoint"`
	Protocol        string   `koanf:"protocol"`
	Insecure        bool     `koanf:"insecure"`
	SampleRate      float64  `koanf:"sample_rate"`
	ExportInterval  Duration `koanf:"export_interval"`
}

// DefaultGeminiModel is used when the gemini provider has no model configured.
const DefaultGeminiModel = "gemini-2.0-flash-exp"

// Default returns the built-in configuration. AI.Model is left empty so that
// the provider-specific default is applied after loading.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8088,
			ShutdownTimeout: Duration(10 * time.Second),
			BodyLimit:       "10M",
		},
		AI: AIConfig{
			Provider:  ProviderGemini,
			Timeout:   Duration(60 * time.Second),
			RateLimit: 2,
			Burst:     4,
		},
		Store: StoreConfig{
			Driver: DriverSQLite,
			Path:   "~/.config/pestid/tracking.db",
		},
		Location: LocationConfig{
			Endpoint: "https://ipapi.co/json/",
			Timeout:  Duration(5 * time.Second),
		},
		Events: EventsConfig{
			SubjectPrefix: "pestid",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Observability: ObservabilityConfig{
			ServiceName:    "pestid",
			Endpoint:       "localhost:4317",
			Protocol:       "grpc",
			Insecure:       true,
			SampleRate:     1.0,
			ExportInterval: Duration(15 * time.Second),
		},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}

	switch c.AI.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown ai provider %q (want %s or %s)", c.AI.Provider, ProviderGemini, ProviderOpenAI)
	}
	if c.AI.Provider == ProviderOpenAI && c.AI.Model == "" {
		return errors.New("ai model is required for the openai provider")
	}
	if c.AI.RateLimit < 0 {
		return errors.New("ai rate limit cannot be negative")
	}

	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.Path == "" {
			return errors.New("store path is required for the sqlite driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	if u, err := url.Parse(c.Location.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid location endpoint %q", c.Location.Endpoint)
	}

	if c.Events.URL != "" && !strings.HasPrefix(c.Events.URL, "nats://") && !strings.HasPrefix(c.Events.URL, "tls://") {
		return fmt.Errorf("events url must use nats:// or tls://, got %q", c.Events.URL)
	}

	if c.Observability.EnableTelemetry && c.Observability.ServiceName == "" {
		return errors.New("service name required when telemetry is enabled")
	}

	return nil
}

// ResolvedStorePath returns the store path with a leading ~ expanded.
func (c *Config) ResolvedStorePath() (string, error) {
	return expandHome(c.Store.Path)
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
