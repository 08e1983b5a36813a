// Package config loads and validates the alarm node settings from YAML.
//
// Defaults are declared on the struct tags and applied with creasty/defaults
// before the file is decoded, so a settings file only lists overrides.
package config
