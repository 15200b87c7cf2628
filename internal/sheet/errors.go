package sheet

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFetch marks a failed or non-2xx request for the export.
	ErrFetch = errors.New("fetch failed")
	// ErrCache marks a session cache read or write failure. Loaders log it and
	// carry on; it is only returned by helpers that operate on the cache alone.
	ErrCache = errors.New("cache failure")
	// ErrConfiguration marks a loader that cannot be built from its inputs.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error carrying operation context while tagging it with
// marker for errors.Is classification.
func Wrap(marker error, operation, message string, err error) error {
	detail := buildDetail(operation, message)
	if marker == nil {
		marker = ErrFetch
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(operation, message string) string {
	parts := make([]string, 0, 2)
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "sheet failure"
	}
	return strings.Join(parts, ": ")
}
