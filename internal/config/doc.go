// Package config loads, normalizes, and validates Racecarr configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// daemon and CLI need: data/log directories, the calendar source, search
// preferences, scheduler intervals, and notification targets.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical tokens, and clear validation errors. Search
// preferences are read from the config at the start of each loop iteration or
// request rather than cached, so edits take effect on the next pass.
package config
