// Package main hosts the sheetslug CLI entrypoint and command graph.
//
// The Cobra-based command tree loads the published sheet through the session
// cache, renders records as tables, JSON, or YAML, inspects and clears the
// cache, scaffolds configuration, and starts the read-only HTTP API.
// Configuration is resolved lazily once per invocation so commands that do
// not need it (config init, slug) work without a valid file.
//
// Keep this package lean: behaviour lives in the internal packages and is
// surfaced here through commands and flags.
package main
