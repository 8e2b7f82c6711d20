package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the resptag configuration
type Config struct {
	Database         string            `json:"database,omitempty" yaml:"database,omitempty"`
	Timeout          int               `json:"timeout,omitempty" yaml:"timeout,omitempty"`       // milliseconds
	Retries          int               `json:"retries,omitempty" yaml:"retries,omitempty"`
	RetryDelay       int               `json:"retryDelay,omitempty" yaml:"retryDelay,omitempty"` // milliseconds
	FollowRedirects  *bool             `json:"followRedirects,omitempty" yaml:"followRedirects,omitempty"`
	MaxRedirects     int               `json:"maxRedirects,omitempty" yaml:"maxRedirects,omitempty"`
	ValidateSSL      *bool             `json:"validateSSL,omitempty" yaml:"validateSSL,omitempty"`
	Proxy            string            `json:"proxy,omitempty" yaml:"proxy,omitempty"`
	Headers          map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"` // Default headers for sent requests
	QueryMode        string            `json:"queryMode,omitempty" yaml:"queryMode,omitempty"`
	MarkupParser     string            `json:"markupParser,omitempty" yaml:"markupParser,omitempty"`
	StrictTransforms *bool             `json:"strictTransforms,omitempty" yaml:"strictTransforms,omitempty"`
	LogLevel         string            `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`
	LogFile          string            `json:"logFile,omitempty" yaml:"logFile,omitempty"`
	Verbose          *bool             `json:"verbose,omitempty" yaml:"verbose,omitempty"`
	NoColor          *bool             `json:"noColor,omitempty" yaml:"noColor,omitempty"`
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetFollowRedirects returns the follow redirects setting, defaulting to true
func (c *Config) GetFollowRedirects() bool {
	return getBool(c.FollowRedirects, true)
}

// GetValidateSSL returns the validate SSL setting, defaulting to true
func (c *Config) GetValidateSSL() bool {
	return getBool(c.ValidateSSL, true)
}

// GetStrictTransforms returns the strict transforms setting, defaulting to false
func (c *Config) GetStrictTransforms() bool {
	return getBool(c.StrictTransforms, false)
}

// GetVerbose returns the verbose setting, defaulting to false
func (c *Config) GetVerbose() bool {
	return getBool(c.Verbose, false)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// TimeoutDuration returns Timeout as a duration.
func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Millisecond
}

// RetryDelayDuration returns RetryDelay as a duration.
func (c *Config) RetryDelayDuration() time.Duration {
	return time.Duration(c.RetryDelay) * time.Millisecond
}

// ConfigFilenames contains the possible config file names, in search order
var ConfigFilenames = []string{
	".resptag.json",
	"resptag.json",
	".resptag.yaml",
	".resptag.yml",
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}

	// Search for config file in current directory
	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	// Return defaults if no config file found
	return DefaultConfig(), nil
}

// loadConfigFromFile loads configuration from a specific file. YAML is
// chosen by extension, everything else is read as JSON.
func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	default:
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return config, nil
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c // Copy

	if other.Database != "" {
		result.Database = other.Database
	}
	if other.Timeout > 0 {
		result.Timeout = other.Timeout
	}
	if other.Retries > 0 {
		result.Retries = other.Retries
	}
	if other.RetryDelay > 0 {
		result.RetryDelay = other.RetryDelay
	}
	if other.MaxRedirects > 0 {
		result.MaxRedirects = other.MaxRedirects
	}
	if other.Proxy != "" {
		result.Proxy = other.Proxy
	}
	if other.QueryMode != "" {
		result.QueryMode = other.QueryMode
	}
	if other.MarkupParser != "" {
		result.MarkupParser = other.MarkupParser
	}
	if other.LogLevel != "" {
		result.LogLevel = other.LogLevel
	}
	if other.LogFile != "" {
		result.LogFile = other.LogFile
	}

	// Boolean flags - only override if explicitly set in other config
	if other.FollowRedirects != nil {
		result.FollowRedirects = other.FollowRedirects
	}
	if other.ValidateSSL != nil {
		result.ValidateSSL = other.ValidateSSL
	}
	if other.StrictTransforms != nil {
		result.StrictTransforms = other.StrictTransforms
	}
	if other.Verbose != nil {
		result.Verbose = other.Verbose
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}

	// Merge headers
	if len(other.Headers) > 0 {
		headers := make(map[string]string, len(result.Headers)+len(other.Headers))
		for k, v := range result.Headers {
			headers[k] = v
		}
		for k, v := range other.Headers {
			headers[k] = v
		}
		result.Headers = headers
	}

	return &result
}

// SaveConfig saves the configuration to a file, as YAML or JSON by extension
func (c *Config) SaveConfig(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
