// Package config loads service configuration from an optional YAML file
// with environment variable overrides.
package config
