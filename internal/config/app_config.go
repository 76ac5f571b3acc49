package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/shaharia-lab/oxo/internal/devproxy"
)

// AppConfig holds all application-level configuration loaded from environment variables.
type AppConfig struct {
	// Mode selects the build-tool mode. The dev proxy is only active in "development".
	Mode string `envconfig:"OXO_MODE" default:"development"`

	// APIBaseURL is the dev proxy target. No default: an unset value is rejected
	// when the proxy is built.
	APIBaseURL string `envconfig:"VITE_API_BASE_URL"`

	// Port is the web (dev server) port. Defaults to 5173.
	Port int `envconfig:"PORT" default:"5173"`

	// APIPort is the game API server port. Defaults to 8080.
	APIPort int `envconfig:"OXO_API_PORT" default:"8080"`

	// ViteURL is where a running Vite dev server is reached in builds without
	// embedded assets.
	ViteURL string `envconfig:"OXO_VITE_URL" default:"http://localhost:5174"`

	// Theme is the stylesheet name under assets/theme.
	Theme string `envconfig:"OXO_THEME" default:"classic"`

	// DataDir is the root data directory. Defaults to ~/.oxo.
	DataDir string `envconfig:"OXO_DATA_DIR"`

	// LogLevel sets the minimum log level (debug, info, warn, error). Defaults to info.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// CORSOrigins are the browser origins allowed to call the API directly.
	CORSOrigins []string `envconfig:"OXO_CORS_ORIGINS" default:"http://localhost:5173"`

	// StateCache enables the game state document cache.
	StateCache bool `envconfig:"OXO_STATE_CACHE" default:"true"`

	// StatsInterval is how often the scheduler logs statistics and prunes matches.
	StatsInterval time.Duration `envconfig:"OXO_STATS_INTERVAL" default:"5m"`

	// MatchRetention is the number of newest match records kept by pruning.
	MatchRetention int `envconfig:"OXO_MATCH_RETENTION" default:"500"`

	// OTLPEndpoint enables trace export over OTLP/gRPC when set.
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load reads AppConfig from environment variables using envconfig.
// DataDir defaults to ~/.oxo if not set.
func Load() (*AppConfig, error) {
	var c AppConfig
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		c.DataDir = filepath.Join(home, ".oxo")
	}
	if c.StatsInterval <= 0 {
		return nil, fmt.Errorf("loading config: OXO_STATS_INTERVAL must be positive, got %s", c.StatsInterval)
	}
	if c.MatchRetention < 0 {
		return nil, fmt.Errorf("loading config: OXO_MATCH_RETENTION must not be negative, got %d", c.MatchRetention)
	}
	return &c, nil
}

// SlogLevel converts the LogLevel string to a slog.Level.
// Unknown values default to slog.LevelInfo.
func (c *AppConfig) SlogLevel() slog.Level {
	switch c.LogLevel {
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

// ProxyMode returns Mode as a dev proxy mode.
func (c *AppConfig) ProxyMode() devproxy.Mode {
	return devproxy.Mode(c.Mode)
}

// ProxyOptions returns the options injected into the dev proxy configurator.
func (c *AppConfig) ProxyOptions() devproxy.Options {
	return devproxy.Options{APIBaseURL: c.APIBaseURL}
}

// LogDir returns the path to the log directory (~/.oxo/logs).
func (c *AppConfig) LogDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// DBPath returns the path to the SQLite database holding match records.
func (c *AppConfig) DBPath() string {
	return filepath.Join(c.DataDir, "oxo.db")
}
