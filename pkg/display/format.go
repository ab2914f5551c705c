package display

import (
	"strings"

	"github.com/arthur-debert/gamelink/pkg/errors"
)

// Format selects how reports are written
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatTOML     Format = "toml"
	FormatJUnit    Format = "junit"
	FormatMarkdown Format = "markdown"
)

// Formats lists every supported format in help order
var Formats = []Format{FormatText, FormatJSON, FormatYAML, FormatTOML, FormatJUnit, FormatMarkdown}

// ParseFormat parses a format name. The empty string means text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "plain", "table":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	case "junit", "xml":
		return FormatJUnit, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return "", errors.Newf(errors.ErrInvalidInput, "unknown output format %q", s).
		WithDetail("format", s)
}

// FormatNames returns the supported format names joined for help text
func FormatNames() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
