// Package output handles formatting CLI output as table, JSON, or an
// id-per-line list.
package output

import (
	"os"

	"github.com/muesli/termenv"
)

// Format represents an output format.
type Format int

const (
	// FormatAuto uses the default format (table).
	FormatAuto Format = iota
	// FormatJSON outputs JSON.
	FormatJSON
	// FormatTable outputs a human-readable table.
	FormatTable
	// FormatIDs outputs one task id per line, for piping.
	FormatIDs
)

// Detect returns the appropriate format based on flags and environment.
// Default is table when no explicit format is set.
func Detect(jsonFlag, idsFlag bool) Format {
	if jsonFlag {
		return FormatJSON
	}
	if idsFlag {
		return FormatIDs
	}

	switch os.Getenv("SPOOL_OUTPUT") {
	case "json":
		return FormatJSON
	case "ids":
		return FormatIDs
	case "table":
		return FormatTable
	}

	return FormatTable
}

// ColorDisabled reports whether styled output should be suppressed based
// on the environment (NO_COLOR and friends).
func ColorDisabled() bool {
	return termenv.EnvNoColor()
}
