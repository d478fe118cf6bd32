// Package config loads, normalizes, and validates hroxgen configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// HROXGEN_FFPROBE. The Config type centralizes every knob the CLI needs:
// ffprobe location and timeout, probe worker count, the duration cache, the
// serializer backend, and logging.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
