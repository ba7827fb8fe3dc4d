package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tiovikram/valyu-mcp/internal"
)

// EnvAPIKey is the environment variable holding the Valyu API credential
const EnvAPIKey = "VALYU_API_KEY"

// ErrMissingAPIKey is returned when no credential is configured
var ErrMissingAPIKey = errors.New(EnvAPIKey + " environment variable is required")

// Config represents the configuration for the valyu-mcp server
type Config struct {
	// BaseURL overrides the upstream host. Empty means the API default.
	BaseURL string `yaml:"baseURL"`

	// Timeout bounds each upstream request. Zero disables the timeout.
	Timeout time.Duration `yaml:"timeout"`

	// Retries is the number of additional attempts after a failed request.
	Retries int `yaml:"retries"`
}

// DefaultConfig returns a configuration with a single attempt per call and no timeout
func DefaultConfig() *Config {
	return &Config{}
}

// LoadFile loads configuration from a YAML file.
// An empty path or a missing file yields the default configuration.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("error opening config file: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Load loads configuration from an io.Reader
func Load(r io.Reader) (*Config, error) {
	config := DefaultConfig()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading config data: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks that the configuration values are usable
func (c *Config) Validate() error {
	if c.Retries < 0 {
		return fmt.Errorf("retries must not be negative, got %d", c.Retries)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil {
			return fmt.Errorf("invalid base URL: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("base URL must use http or https: %s", c.BaseURL)
		}
		if u.Host == "" {
			return fmt.Errorf("base URL has no host: %s", c.BaseURL)
		}
	}
	return nil
}

// APIKey reads the credential through lookup (usually os.LookupEnv),
// resolving 1Password references.
func APIKey(ctx context.Context, lookup func(string) (string, bool)) (string, error) {
	value, ok := lookup(EnvAPIKey)
	value = strings.TrimSpace(value)
	if !ok || value == "" {
		return "", ErrMissingAPIKey
	}

	key, _, err := internal.ResolveSecret(ctx, value)
	if err != nil {
		return "", fmt.Errorf("error resolving %s: %w", EnvAPIKey, err)
	}
	return key, nil
}
