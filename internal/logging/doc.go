// Package logging assembles structured slog loggers and attribute helpers used
// across sheetslug.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and provides a no-op logger for tests and wiring code that cannot
// fail. Warnings go through WarnWithContext so every one carries an event
// type, a hint, and the user-facing impact.
package logging
