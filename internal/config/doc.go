// Package config loads, normalizes, and validates the revoice configuration.
//
// Configuration lives in a TOML file (default ~/.config/revoice/config.toml,
// with a project-local revoice.toml fallback). Load applies defaults first,
// then file values, then normalization (path expansion, trimming, bounds)
// and validation, so callers always receive a usable Config or an error.
package config
