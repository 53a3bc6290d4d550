// Package config provides configuration management for the sync tooling.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrMissingListURL      = errors.New("public.list_url is required")
	ErrInvalidStartPage    = errors.New("public.start_page must be at least 1")
	ErrInvalidPageRange    = errors.New("public.start_page cannot exceed public.end_page")
	ErrInvalidLimitPerPage = errors.New("public.limit_per_page must be non-negative")
	ErrInvalidTimeout      = errors.New("network.timeout_sec must be at least 1")
	ErrInvalidMaxBody      = errors.New("network.max_body_kb must be at least 1")
	ErrMissingStoragePath  = errors.New("cms.storage_state is required")
	ErrMissingOutputPath   = errors.New("output.path is required")
	ErrInvalidLogLevel     = errors.New("logging.level must be one of: debug, info, warn, error")
)

// Defaults for a typical run against the public media-releases listing.
const (
	DefaultListURL      = "https://mfa.gov.lk/en/category/media-releases/"
	DefaultStorageState = "cms_storage_state.json"
	DefaultOutputPath   = "missing_articles.csv"
	DefaultUserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// Config represents the complete sync configuration.
type Config struct {
	Public  PublicConfig  `yaml:"public"`
	Network NetworkConfig `yaml:"network"`
	CMS     CMSConfig     `yaml:"cms"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// PublicConfig describes the public listing to scan.
type PublicConfig struct {
	ListURL      string `yaml:"list_url"`
	StartPage    int    `yaml:"start_page"`
	EndPage      int    `yaml:"end_page"`
	LimitPerPage int    `yaml:"limit_per_page"`
}

// NetworkConfig contains HTTP settings shared by the crawler and the verifier.
type NetworkConfig struct {
	TimeoutSec int    `yaml:"timeout_sec"`
	MaxBodyKb  int    `yaml:"max_body_kb"`
	UserAgent  string `yaml:"user_agent"`
}

// CMSConfig describes the backend content listing to verify against.
// BaseURL may be left empty here and supplied via CMS_BASE_URL or a flag.
type CMSConfig struct {
	BaseURL      string `yaml:"base_url"`
	StorageState string `yaml:"storage_state"`
}

// OutputConfig defines where missing-article records are written.
type OutputConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Public: PublicConfig{
			ListURL:      DefaultListURL,
			StartPage:    1,
			EndPage:      3,
			LimitPerPage: 0,
		},
		Network: NetworkConfig{
			TimeoutSec: 30,
			MaxBodyKb:  4096,
			UserAgent:  DefaultUserAgent,
		},
		CMS: CMSConfig{
			StorageState: DefaultStorageState,
		},
		Output: OutputConfig{
			Path: DefaultOutputPath,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from YAML file. Fields absent from the file
// keep their default values.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration. The CMS base URL is checked at the
// command level after environment and flag overrides are applied.
func (c *Config) Validate() error {
	if c.Public.ListURL == "" {
		return ErrMissingListURL
	}

	if c.Public.StartPage < 1 {
		return ErrInvalidStartPage
	}

	if c.Public.StartPage > c.Public.EndPage {
		return ErrInvalidPageRange
	}

	if c.Public.LimitPerPage < 0 {
		return ErrInvalidLimitPerPage
	}

	if c.Network.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	if c.Network.MaxBodyKb < 1 {
		return ErrInvalidMaxBody
	}

	if c.CMS.StorageState == "" {
		return ErrMissingStoragePath
	}

	if c.Output.Path == "" {
		return ErrMissingOutputPath
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	return nil
}

// GetTimeout returns the HTTP timeout duration.
func (n *NetworkConfig) GetTimeout() time.Duration {
	return time.Duration(n.TimeoutSec) * time.Second
}

// MaxBodyBytes returns the response body size cap in bytes.
func (n *NetworkConfig) MaxBodyBytes() int64 {
	return int64(n.MaxBodyKb) * 1024
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{ListURL: %s, Pages: %d-%d, Output: %s}",
		c.Public.ListURL,
		c.Public.StartPage,
		c.Public.EndPage,
		c.Output.Path,
	)
}
