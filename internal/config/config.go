// ABOUTME: Configuration loading and parsing for bsky-mcp
// ABOUTME: Supports YAML files with environment variable expansion; credentials are env-only

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Environment variables holding the Bluesky credentials. These are never read
// from the config file: app passwords don't belong on disk next to defaults.
const (
	EnvIdentifier  = "BLUESKY_IDENTIFIER"
	EnvAppPassword = "BLUESKY_APP_PASSWORD"
)

// DefaultHost is the PDS entry point used when no service host is configured.
const DefaultHost = "https://bsky.social"

// ErrMissingCredentials is returned when a required credential environment
// variable is unset or empty.
var ErrMissingCredentials = errors.New("missing credentials")

// Config represents the complete bsky-mcp configuration.
type Config struct {
	Service Service `yaml:"service"`
	Logging Logging `yaml:"logging"`
	Limits  Limits  `yaml:"limits"`
}

// Service holds upstream service configuration.
type Service struct {
	// Host is the base URL of the PDS / AppView entry point.
	Host string `yaml:"host"`
}

// Logging holds logging configuration. Logs are written to stderr; stdout
// belongs to the MCP transport.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Limits holds pagination bounds applied to tool parameters.
type Limits struct {
	DefaultPageSize int64 `yaml:"default_page_size"`
	MaxPageSize     int64 `yaml:"max_page_size"`
}

// Credentials holds the identifier / app-password pair read from the
// environment at startup.
type Credentials struct {
	Identifier  string
	AppPassword string
}

// Default returns a Config populated with default values.
func Default() *Config {
	return &Config{
		Service: Service{Host: DefaultHost},
		Logging: Logging{Level: "info", Format: "text"},
		Limits:  Limits{DefaultPageSize: 10, MaxPageSize: 100},
	}
}

// Path returns the path to the config file.
// Priority: BSKY_MCP_CONFIG env var > XDG_CONFIG_HOME/bsky-mcp/config.yaml > ~/.config/bsky-mcp/config.yaml
func Path() string {
	if envPath := os.Getenv("BSKY_MCP_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "bsky-mcp", "config.yaml")
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded. A missing file is
// not an error: every field has a default and the file is optional.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	if err := yaml.Unmarshal([]byte(expandedData), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyDefaults fills fields the file left empty back in with their defaults.
func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Service.Host == "" {
		cfg.Service.Host = def.Service.Host
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = def.Logging.Format
	}
	if cfg.Limits.DefaultPageSize == 0 {
		cfg.Limits.DefaultPageSize = def.Limits.DefaultPageSize
	}
	if cfg.Limits.MaxPageSize == 0 {
		cfg.Limits.MaxPageSize = def.Limits.MaxPageSize
	}
}

// Validate checks that all configuration fields are consistent.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Service.Host == "" {
		return fmt.Errorf("service.host must not be empty")
	}
	if c.Limits.DefaultPageSize < 1 {
		return fmt.Errorf("limits.default_page_size must be at least 1")
	}
	if c.Limits.MaxPageSize < c.Limits.DefaultPageSize {
		return fmt.Errorf("limits.max_page_size must be >= limits.default_page_size")
	}
	return nil
}

// LoadCredentials reads the Bluesky credentials from the environment.
// Both variables are required; a missing one is a fatal startup condition
// for callers, reported before any stdio protocol interaction begins.
func LoadCredentials() (*Credentials, error) {
	identifier := os.Getenv(EnvIdentifier)
	if identifier == "" {
		return nil, fmt.Errorf("%w: %s is not set", ErrMissingCredentials, EnvIdentifier)
	}

	password := os.Getenv(EnvAppPassword)
	if password == "" {
		return nil, fmt.Errorf("%w: %s is not set", ErrMissingCredentials, EnvAppPassword)
	}

	return &Credentials{Identifier: identifier, AppPassword: password}, nil
}
