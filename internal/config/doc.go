// Package config loads, normalizes, and validates rigconvert configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// RIGCONVERT_STORE. The Config type centralizes the asset store location, the
// conversion policy (target shader, approved shaders, texture limits,
// per-material overrides), the animation denylist and override entries, and
// logging settings.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical shader names, and clear validation errors.
package config
