// Package config handles configuration loading and management for resptag.
//
// It provides functionality for:
//   - Loading configuration from .resptag.json or .resptag.yaml files
//   - Default configuration values
//   - Merging file settings with command-line overrides
package config
