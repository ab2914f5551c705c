// Package display writes run reports and scan inventories in the
// supported output formats.
package display

import (
	"encoding/json"
	"io"

	"github.com/arthur-debert/gamelink/pkg/errors"
	"github.com/arthur-debert/gamelink/pkg/logging"
	"github.com/arthur-debert/gamelink/pkg/types"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Options tune the human oriented formats
type Options struct {
	// Color enables terminal styling for text and markdown
	Color bool
	// Width wraps markdown output. Zero keeps the renderer default.
	Width int
	// Title heads the text and markdown output, e.g. "link" or "verify"
	Title string
}

// InventoryItem is one scanned item as shown by the scan command
type InventoryItem struct {
	ID          string           `json:"id" yaml:"id" toml:"id"`
	Name        string           `json:"name" yaml:"name" toml:"name"`
	NameSource  types.NameSource `json:"nameSource" yaml:"nameSource" toml:"nameSource"`
	InstallDirs []string         `json:"installDirs,omitempty" yaml:"installDirs,omitempty" toml:"installDirs,omitempty"`
	Roots       []string         `json:"roots" yaml:"roots" toml:"roots"`
}

// Inventory is the scan command result
type Inventory struct {
	RootsUsed []string        `json:"rootsUsed" yaml:"rootsUsed" toml:"rootsUsed"`
	Items     []InventoryItem `json:"items" yaml:"items" toml:"items"`
}

// RenderReport writes a run report in the given format
func RenderReport(w io.Writer, format Format, report *types.RunReport, opts Options) error {
	logger := logging.GetLogger("display")
	logger.Debug().Str("format", string(format)).Int("items", len(report.Items)).Msg("Rendering report")

	switch format {
	case FormatText:
		return renderReportText(w, report, opts)
	case FormatMarkdown:
		return writeMarkdown(w, reportMarkdown(report, opts.Title), opts)
	case FormatJUnit:
		return renderJUnit(w, report, opts.Title)
	default:
		return encode(w, format, report)
	}
}

// RenderInventory writes a scan inventory in the given format
func RenderInventory(w io.Writer, format Format, inv *Inventory, opts Options) error {
	switch format {
	case FormatText:
		return renderInventoryText(w, inv, opts)
	case FormatMarkdown:
		return writeMarkdown(w, inventoryMarkdown(inv), opts)
	case FormatJUnit:
		return errors.New(errors.ErrInvalidInput, "junit output is only available for link and verify reports")
	default:
		return encode(w, format, inv)
	}
}

// encode handles the structured formats
func encode(w io.Writer, format Format, v interface{}) error {
	var err error
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err = enc.Encode(v); err == nil {
			err = enc.Close()
		}
	case FormatTOML:
		enc := toml.NewEncoder(w)
		enc.SetIndentTables(true)
		err = enc.Encode(v)
	default:
		return errors.Newf(errors.ErrInvalidInput, "unknown output format %q", format)
	}
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s output", format)
	}
	return nil
}
