// Package config loads, normalizes, and validates Lumen configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// LUMEN_TRACKING_URL. The Config type centralizes every knob the daemon and
// CLI need: the tracking server endpoint, the startup scene script, socket
// and log locations, and timing for video resolution.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
