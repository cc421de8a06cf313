package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// TimeRangePolicy values accepted in agenda.time_range_policy.
const (
	TimeRangePolicyReject = "reject"
	TimeRangePolicyAccept = "accept"
)

type Config struct {
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Client   ClientConfig   `toml:"client"`
	Agenda   AgendaConfig   `toml:"agenda"`
	Session  SessionConfig  `toml:"session"`
	UI       UIConfig       `toml:"ui"`
	Logging  LoggingConfig  `toml:"logging"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type ServerConfig struct {
	HTTPBind        string `toml:"http_bind"`
	APIEndpoint     string `toml:"api_endpoint"`
	MCPEndpoint     string `toml:"mcp_endpoint"`
	MetricsEndpoint string `toml:"metrics_endpoint"`
}

type ClientConfig struct {
	BaseURL string `toml:"base_url"`
	// Timeout is a Go duration string. Empty keeps the transport default.
	Timeout string `toml:"timeout"`
}

type AgendaConfig struct {
	DefaultWorkshopID string `toml:"default_workshop_id"`
	CompactOnDelete   bool   `toml:"compact_on_delete"`
	TimeRangePolicy   string `toml:"time_range_policy"` // reject | accept
}

type SessionConfig struct {
	UserID      string `toml:"user_id"`
	DisplayName string `toml:"display_name"`
	Role        string `toml:"role"`
	BrandName   string `toml:"brand_name"`
	AccentColor string `toml:"accent_color"`
}

type UIConfig struct {
	ShowDescription bool `toml:"show_description"`
}

type LoggingConfig struct {
	Level   string               `toml:"level"`
	DevFile LoggingDevFileConfig `toml:"dev_file"`
}

type LoggingDevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"` // relative to the app data dir
}

// Default returns the built-in configuration rooted at dbPath.
func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Server: ServerConfig{
			HTTPBind:        "127.0.0.1:8080",
			APIEndpoint:     "/api",
			MCPEndpoint:     "/mcp",
			MetricsEndpoint: "/metrics",
		},
		Client: ClientConfig{
			BaseURL: "http://127.0.0.1:8080/api",
		},
		Agenda: AgendaConfig{
			CompactOnDelete: true,
			TimeRangePolicy: TimeRangePolicyReject,
		},
		Session: SessionConfig{
			Role: "trainer",
		},
		UI: UIConfig{
			ShowDescription: true,
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: LoggingDevFileConfig{
				Dir: "log",
			},
		},
	}
}

// Load decodes the TOML file at path over defaults. A missing or empty file yields defaults.
func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate rejects values the runtime cannot act on.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}

	if strings.TrimSpace(c.Server.HTTPBind) == "" {
		return errors.New("server.http_bind is required")
	}
	endpoints := map[string]string{
		"server.api_endpoint":     c.Server.APIEndpoint,
		"server.mcp_endpoint":     c.Server.MCPEndpoint,
		"server.metrics_endpoint": c.Server.MetricsEndpoint,
	}
	seen := map[string]string{}
	for key, endpoint := range endpoints {
		endpoint = "/" + strings.Trim(strings.TrimSpace(endpoint), "/")
		if endpoint == "/" {
			return fmt.Errorf("%s is required", key)
		}
		if other, ok := seen[endpoint]; ok {
			return fmt.Errorf("%s collides with %s: %q", key, other, endpoint)
		}
		seen[endpoint] = key
	}

	parsed, err := url.Parse(strings.TrimSpace(c.Client.BaseURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid client.base_url: %q", c.Client.BaseURL)
	}
	if _, err := c.ClientTimeout(); err != nil {
		return err
	}

	switch strings.TrimSpace(strings.ToLower(c.Agenda.TimeRangePolicy)) {
	case "", TimeRangePolicyReject, TimeRangePolicyAccept:
	default:
		return fmt.Errorf("invalid agenda.time_range_policy: %q", c.Agenda.TimeRangePolicy)
	}

	switch strings.TrimSpace(strings.ToLower(c.Session.Role)) {
	case "", "administrator", "trainer", "participant", "client":
	default:
		return fmt.Errorf("invalid session.role: %q", c.Session.Role)
	}

	switch strings.TrimSpace(strings.ToLower(c.Logging.Level)) {
	case "", "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}
	if c.Logging.DevFile.Enabled && strings.TrimSpace(c.Logging.DevFile.Dir) == "" {
		return errors.New("logging.dev_file.dir is required when dev_file is enabled")
	}

	return nil
}

// ClientTimeout parses client.timeout. Zero means no explicit timeout.
func (c Config) ClientTimeout() (time.Duration, error) {
	raw := strings.TrimSpace(c.Client.Timeout)
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid client.timeout: %q", c.Client.Timeout)
	}
	return d, nil
}

// AcceptsInvertedTimeRanges reports whether the editor may save end <= start.
func (c Config) AcceptsInvertedTimeRanges() bool {
	return strings.EqualFold(strings.TrimSpace(c.Agenda.TimeRangePolicy), TimeRangePolicyAccept)
}

// EnsureConfigDir creates the directory holding path.
func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
