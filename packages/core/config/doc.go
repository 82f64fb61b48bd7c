// Package config handles configuration loading and management for httpcall.
//
// It provides functionality for:
//   - Loading configuration from .httpcall.config.json or .httpcallrc files
//   - Default configuration values
//   - Merging CLI overrides on top of file values
package config
