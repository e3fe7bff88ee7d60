// Package config loads, normalizes, and validates mediaprobe configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours environment overrides such as MEDIAPROBE_LOG_LEVEL
// and MEDIAPROBE_FFPROBE. Normalization also applies the option implications
// of the probe section, so a config that shows frames always reads them.
//
// Command-line flags are layered on top by the CLI after Load returns; call
// Normalize and Validate again after changing fields by hand.
package config
