// Package output renders planner data as tables, compact lines or JSON.
package output

import (
	"os"
	"strings"
)

// Format selects how command results are written.
type Format int

const (
	// FormatAuto means no format was chosen.
	FormatAuto Format = iota
	// FormatJSON writes indented JSON.
	FormatJSON
	// FormatTable writes styled tables.
	FormatTable
	// FormatCompact writes one line per record.
	FormatCompact
)

// EnvFormat is consulted when no format flag is given. It holds json,
// table, compact or oneline.
const EnvFormat = "LIFERESET_OUTPUT"

var formatNames = map[string]Format{
	"json":    FormatJSON,
	"table":   FormatTable,
	"compact": FormatCompact,
	"oneline": FormatCompact,
}

// ParseFormat maps a format name to a Format. Unknown names give FormatAuto.
func ParseFormat(name string) Format {
	return formatNames[strings.ToLower(strings.TrimSpace(name))]
}

// FromEnv returns the format named by EnvFormat, or FormatAuto.
func FromEnv() Format {
	return ParseFormat(os.Getenv(EnvFormat))
}

// Detect picks the format from the flags, then the environment. Tables are
// the default.
func Detect(jsonFlag, tableFlag, compactFlag bool) Format {
	switch {
	case jsonFlag:
		return FormatJSON
	case compactFlag:
		return FormatCompact
	case tableFlag:
		return FormatTable
	}
	if f := FromEnv(); f != FormatAuto {
		return f
	}
	return FormatTable
}
