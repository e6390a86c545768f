// Package config loads, validates, and normalizes reclaim's TOML
// configuration. Load applies defaults first, then the config file, then
// normalization (path expansion, environment fallbacks) and validation, so
// callers always receive a complete, usable Config.
package config
