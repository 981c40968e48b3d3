// Package config loads and validates the panel configuration: the listen
// port, the node daemon endpoint, and the managed server record whose limits
// and allocations the panel displays.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"

	"srvpanel/internal/models"
)

var validate = validator.New()

const (
	// Environment overrides, applied after the file is read.
	EnvListenPort = "SRVPANEL_PORT"
	EnvDaemonURL  = "SRVPANEL_DAEMON_URL"

	defaultListenPort = 8080
	defaultDaemonURL  = "ws://127.0.0.1:8081/ws"
)

// Config is the full panel configuration.
type Config struct {
	ListenPort int           `json:"listen_port" validate:"min=1,max=65535"`
	DaemonURL  string        `json:"daemon_url" validate:"required,uri"`
	LogFile    string        `json:"log_file,omitempty"`
	Server     models.Server `json:"server"`
}

// Default returns a runnable configuration for local development.
func Default() *Config {
	return &Config{
		ListenPort: defaultListenPort,
		DaemonURL:  defaultDaemonURL,
		Server: models.Server{
			Name: "local",
		},
	}
}

// Load reads the JSON config at path, applies environment overrides, and
// validates the result. An empty path yields the defaults (still subject to
// overrides and validation).
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := json.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if raw := os.Getenv(EnvListenPort); raw != "" {
		if port, err := strconv.Atoi(raw); err == nil {
			cfg.ListenPort = port
		}
	}
	if raw := os.Getenv(EnvDaemonURL); raw != "" {
		cfg.DaemonURL = raw
	}
}

// Validate checks field constraints plus the cross-field rules the struct
// tags cannot express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Server.Name == "" {
		return fmt.Errorf("invalid config: server name is required")
	}
	defaults := 0
	for _, alloc := range c.Server.Allocations {
		if alloc.Port == 0 {
			return fmt.Errorf("invalid config: allocation %s has no port", alloc.IP)
		}
		if alloc.IsDefault {
			defaults++
		}
	}
	// Zero defaults is legal: the panel renders the address placeholder.
	if defaults > 1 {
		return fmt.Errorf("invalid config: %d allocations flagged default, want at most one", defaults)
	}
	return nil
}
