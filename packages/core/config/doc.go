// Package config handles configuration loading and management for testlang.
//
// It provides functionality for:
//   - Loading configuration from .testlang.yaml or .testlang.json files
//   - Validating config documents against an embedded JSON Schema
//   - Default configuration values and merging of overrides
package config
