package config

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Backend  BackendConfig
	Tunnel   TunnelConfig
	Apps     AppsConfig
	Launcher LauncherConfig
	Security SecurityConfig
	Apply    ApplyConfig
	Log      LogConfig
}

// ServerConfig holds the loopback control API configuration.
type ServerConfig struct {
	Host   string `env:"CONTROL_HOST" envDefault:"127.0.0.1"`
	Port   int    `env:"CONTROL_PORT" envDefault:"7840"`
	APIKey string `env:"CONTROL_API_KEY"`
}

// DatabaseConfig holds the persisted settings store configuration.
type DatabaseConfig struct {
	Driver string `env:"DB_DRIVER" envDefault:"sqlite3"`
	DSN    string `env:"DB_DSN" envDefault:"data/netguard.db"`
}

// BackendConfig holds the invite code redemption backend configuration.
type BackendConfig struct {
	BaseURL    string        `env:"REDEEM_BASE_URL"`
	Timeout    time.Duration `env:"REDEEM_TIMEOUT" envDefault:"30s"`
	AppVersion string        `env:"APP_VERSION"`
	UserAgent  string        `env:"USER_AGENT" envDefault:"netguard"`
}

// TunnelConfig holds OS VPN configuration lookup settings.
type TunnelConfig struct {
	ExtensionBundleID string        `env:"TUNNEL_EXTENSION_BUNDLE_ID"`
	ServiceName       string        `env:"TUNNEL_SERVICE_NAME"`
	PollInterval      time.Duration `env:"TUNNEL_POLL_INTERVAL" envDefault:"2s"`
	ScutilPath        string        `env:"SCUTIL_PATH" envDefault:"/usr/sbin/scutil"`
}

// AppsConfig holds where installed applications are looked up.
type AppsConfig struct {
	SearchPaths string `env:"APP_SEARCH_PATHS" envDefault:"/Applications,/System/Applications"`
}

// Roots returns the search paths as a slice, dropping empty entries.
func (c *AppsConfig) Roots() []string {
	var roots []string
	for _, p := range strings.Split(c.SearchPaths, ",") {
		if p = strings.TrimSpace(p); p != "" {
			roots = append(roots, p)
		}
	}
	return roots
}

// LauncherConfig holds the companion app launcher settings.
type LauncherConfig struct {
	AppPath  string `env:"LAUNCHER_APP_PATH"`
	OpenPath string `env:"LAUNCHER_OPEN_PATH" envDefault:"/usr/bin/open"`
}

// SecurityConfig holds secrets protecting data at rest.
type SecurityConfig struct {
	TokenEncryptionKey string `env:"TOKEN_ENCRYPTION_KEY"`
}

// KeyBytes decodes the token encryption key (64 hex characters).
func (c *SecurityConfig) KeyBytes() (*[32]byte, error) {
	if c.TokenEncryptionKey == "" {
		return nil, fmt.Errorf("TOKEN_ENCRYPTION_KEY is required")
	}
	decoded, err := hex.DecodeString(c.TokenEncryptionKey)
	if err != nil || len(decoded) != 32 {
		return nil, fmt.Errorf("TOKEN_ENCRYPTION_KEY must be 64 hex characters")
	}
	var key [32]byte
	copy(key[:], decoded)
	return &key, nil
}

// ApplyConfig holds how expanded rules are pushed to the proxy extension.
type ApplyConfig struct {
	AutoApply    bool          `env:"AUTO_APPLY" envDefault:"true"`
	Debounce     time.Duration `env:"APPLY_DEBOUNCE" envDefault:"2s"`
	SnapshotPath string        `env:"PROXY_SNAPSHOT_PATH" envDefault:"data/proxy-settings.json"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(&cfg.Server); err != nil {
		return nil, fmt.Errorf("parsing server config: %w", err)
	}
	if err := env.Parse(&cfg.Database); err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	if err := env.Parse(&cfg.Backend); err != nil {
		return nil, fmt.Errorf("parsing backend config: %w", err)
	}
	if err := env.Parse(&cfg.Tunnel); err != nil {
		return nil, fmt.Errorf("parsing tunnel config: %w", err)
	}
	if err := env.Parse(&cfg.Apps); err != nil {
		return nil, fmt.Errorf("parsing apps config: %w", err)
	}
	if err := env.Parse(&cfg.Launcher); err != nil {
		return nil, fmt.Errorf("parsing launcher config: %w", err)
	}
	if err := env.Parse(&cfg.Security); err != nil {
		return nil, fmt.Errorf("parsing security config: %w", err)
	}
	if err := env.Parse(&cfg.Apply); err != nil {
		return nil, fmt.Errorf("parsing apply config: %w", err)
	}
	if err := env.Parse(&cfg.Log); err != nil {
		return nil, fmt.Errorf("parsing log config: %w", err)
	}

	return cfg, nil
}

// Addr returns the server address in host:port format.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.APIKey == "" {
		return fmt.Errorf("CONTROL_API_KEY is required")
	}
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("REDEEM_BASE_URL is required")
	}
	if c.Backend.AppVersion == "" {
		return fmt.Errorf("APP_VERSION is required")
	}
	if _, err := c.Security.KeyBytes(); err != nil {
		return err
	}

	switch c.Database.Driver {
	case "sqlite3", "postgres", "memory":
	default:
		return fmt.Errorf("DB_DRIVER must be one of sqlite3, postgres, memory")
	}

	if c.Apply.AutoApply && c.Apply.Debounce <= 0 {
		return fmt.Errorf("APPLY_DEBOUNCE must be positive when AUTO_APPLY is enabled")
	}
	if c.Tunnel.PollInterval <= 0 {
		return fmt.Errorf("TUNNEL_POLL_INTERVAL must be positive")
	}

	return nil
}
