// Package config loads the Toggl MCP server configuration through the
// layered provider chain: defaults, then an optional JSON config file, then
// TOGGL-prefixed environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/localrivet/configurator"

	"github.com/wolkwork/toggl-mcp/internal/errortypes"
)

// Config holds the process-wide configuration. It is constructed once at
// startup and passed explicitly into the components that need it; lower
// layers never reach for ambient globals.
type Config struct {
	// Toggl contains the upstream API credential and endpoint bases.
	Toggl struct {
		// APIToken is the Toggl Track API token. Required; its absence is
		// a fatal startup condition, never a per-request failure.
		APIToken string `json:"api_token" env:"API_TOKEN" validate:"required"`

		// BaseURL is the Track API v9 base.
		BaseURL string `json:"base_url" env:"BASE_URL"`

		// ReportsURL is the Reports API v2 base.
		ReportsURL string `json:"reports_url" env:"REPORTS_URL"`

		// WebhooksURL is the Webhooks API base.
		WebhooksURL string `json:"webhooks_url" env:"WEBHOOKS_URL"`

		// UserAgent is sent as the user_agent parameter the Reports API
		// requires.
		UserAgent string `json:"user_agent" env:"USER_AGENT"`
	} `json:"toggl"`

	// Insights contains aggregation parameters.
	Insights struct {
		// CostRate is the hourly cost rate used for profitability margins,
		// in the workspace currency. Zero means cost is not modeled and
		// margin equals revenue.
		CostRate float64 `json:"cost_rate" env:"COST_RATE"`
	} `json:"insights"`

	// Upstream contains pacing and retry settings for the API client.
	Upstream struct {
		// RequestsPerSecond paces calls to the provider's documented limit
		// of one request per second per credential.
		RequestsPerSecond float64 `json:"requests_per_second" env:"REQUESTS_PER_SECOND" validate:"min:0"`

		// MaxRetries bounds retry attempts for upstream failures. Zero
		// disables retries entirely.
		MaxRetries int `json:"max_retries" env:"MAX_RETRIES" validate:"min:0"`
	} `json:"upstream"`

	// Logging contains logging configuration.
	Logging struct {
		// Level is the minimum log level ("debug", "info", "warn", "error").
		Level string `json:"level" env:"LOG_LEVEL" validate:"required"`

		// Format is the log format ("text", "json").
		Format string `json:"format" env:"LOG_FORMAT"`
	} `json:"logging"`
}

// Defaults.
const (
	DefaultConfigFilename = ".togglmcp.json"
	DefaultBaseURL        = "https://api.track.toggl.com/api/v9"
	DefaultReportsURL     = "https://api.track.toggl.com/reports/api/v2"
	DefaultWebhooksURL    = "https://track.toggl.com/webhooks/api/v1"
	DefaultUserAgent      = "toggl-mcp"
	DefaultRPS            = 1.0
	DefaultMaxRetries     = 3
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
)

// New returns a Config populated with default values. The API token has no
// default; it must come from the file or the environment.
func New() *Config {
	cfg := &Config{}
	cfg.Toggl.BaseURL = DefaultBaseURL
	cfg.Toggl.ReportsURL = DefaultReportsURL
	cfg.Toggl.WebhooksURL = DefaultWebhooksURL
	cfg.Toggl.UserAgent = DefaultUserAgent
	cfg.Upstream.RequestsPerSecond = DefaultRPS
	cfg.Upstream.MaxRetries = DefaultMaxRetries
	cfg.Logging.Level = DefaultLogLevel
	cfg.Logging.Format = DefaultLogFormat
	return cfg
}

// Load loads the configuration from the default path.
func Load() (*Config, error) {
	return LoadWithPath(DefaultConfigFilename)
}

// LoadWithPath loads the configuration, layering the file at configPath
// (when it exists) and the TOGGL environment over the defaults.
func LoadWithPath(configPath string) (*Config, error) {
	stdLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg := New()

	if configPath == DefaultConfigFilename {
		if foundPath, err := configurator.FindConfigFile(configPath); err == nil {
			configPath = foundPath
			stdLogger.Debug("Found config file", "path", foundPath)
		}
	}

	loader := configurator.New(stdLogger).
		WithProvider(configurator.NewDefaultProvider()).
		WithValidator(configurator.NewDefaultValidator())

	if _, err := os.Stat(configPath); err == nil {
		stdLogger.Info("Loading configuration", "path", configPath)
		loader = loader.WithProvider(configurator.NewFileProvider(configPath))
	} else {
		stdLogger.Info("Config file not found, using environment and defaults", "path", configPath)
	}

	loader = loader.WithProvider(configurator.NewEnvProvider("TOGGL"))

	if err := loader.Load(context.Background(), cfg); err != nil {
		return nil, errortypes.ConfigError(err, "failed to load configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the loaded configuration for startup-fatal problems.
func (c *Config) Validate() error {
	if c.Toggl.APIToken == "" {
		return errortypes.ConfigError(
			errors.New("TOGGL_API_TOKEN is not set"),
			"missing Toggl API token")
	}
	if c.Upstream.RequestsPerSecond < 0 {
		return errortypes.ConfigError(
			fmt.Errorf("requests_per_second %v is negative", c.Upstream.RequestsPerSecond),
			"invalid upstream pacing")
	}
	if c.Upstream.MaxRetries < 0 {
		return errortypes.ConfigError(
			fmt.Errorf("max_retries %d is negative", c.Upstream.MaxRetries),
			"invalid upstream retry bound")
	}
	return nil
}

// LogLevel maps the configured level string onto a slog.Level.
func (c *Config) LogLevel() slog.Level {
	switch c.Logging.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
