// Package config loads, normalizes, and validates sheetslug configuration.
//
// It supplies defaults (including the published sheet URL and the six hour
// session cache window), expands user paths with tilde shortcuts, reads TOML
// files, and honours SHEETSLUG_* environment overrides. The CLI, the loader,
// and the HTTP API all receive their settings through the Config type.
package config
