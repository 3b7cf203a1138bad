package output

import "strings"

// OutputFormat specifies how records are written to stdout.
type OutputFormat string

const (
	// FormatJSON writes one JSON document per line.
	FormatJSON OutputFormat = "json"

	// FormatYAML writes a YAML document stream separated by "---".
	FormatYAML OutputFormat = "yaml"

	// FormatTable renders a table once all records are collected.
	FormatTable OutputFormat = "table"
)

// String returns the string representation of the output format.
func (f OutputFormat) String() string {
	return string(f)
}

// Valid checks if the output format is valid.
func (f OutputFormat) Valid() bool {
	switch f {
	case FormatJSON, FormatYAML, FormatTable:
		return true
	default:
		return false
	}
}

// ParseOutputFormat parses a string into an OutputFormat.
// The second return is false when the string names no known format.
func ParseOutputFormat(s string) (OutputFormat, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "ndjson":
		return FormatJSON, true
	case "yaml", "yml":
		return FormatYAML, true
	case "table":
		return FormatTable, true
	default:
		return OutputFormat(s), false
	}
}

// ValidFormats returns a slice of valid output format strings.
func ValidFormats() []string {
	return []string{"json", "yaml", "table"}
}
