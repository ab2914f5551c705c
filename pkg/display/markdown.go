package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/gamelink/pkg/logging"
	"github.com/arthur-debert/gamelink/pkg/types"
	"github.com/charmbracelet/glamour"
)

// writeMarkdown writes md raw, or rendered through glamour when color is on.
// Rendering errors fall back to the raw markdown.
func writeMarkdown(w io.Writer, md string, opts Options) error {
	if !opts.Color {
		_, err := io.WriteString(w, md)
		return wrapWrite(err)
	}

	options := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if opts.Width > 0 {
		options = append(options, glamour.WithWordWrap(opts.Width))
	}
	out := md
	renderer, err := glamour.NewTermRenderer(options...)
	if err == nil {
		out, err = renderer.Render(md)
	}
	if err != nil {
		logger := logging.GetLogger("display")
		logger.Debug().Err(err).Msg("Markdown rendering failed, writing raw")
		out = md
	}
	_, err = io.WriteString(w, out)
	return wrapWrite(err)
}

func reportMarkdown(report *types.RunReport, title string) string {
	if title == "" {
		title = "link"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# gamelink %s", title)
	if report.DryRun {
		b.WriteString(" (dry run)")
	}
	b.WriteString("\n\n")
	if report.TargetDir != "" {
		fmt.Fprintf(&b, "Target: `%s`\n\n", report.TargetDir)
	}

	if len(report.Items) == 0 {
		b.WriteString("No items selected.\n")
		return b.String()
	}

	b.WriteString("| ID | Name | Status | Strategy | Detail |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, it := range report.Items {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			cell(it.ID), cell(it.Name), it.Status, cell(strategyCell(it)), cell(detailCell(it)))
	}

	if ops := operationLines(report); len(ops) > 0 {
		b.WriteString("\n## Operations\n\n")
		for _, l := range ops {
			fmt.Fprintf(&b, "- %s\n", l)
		}
	}
	if warnings := warningLines(report); len(warnings) > 0 {
		b.WriteString("\n## Warnings\n\n")
		for _, l := range warnings {
			fmt.Fprintf(&b, "- %s\n", l)
		}
	}
	if report.BackupArchive != "" {
		fmt.Fprintf(&b, "\nBackup: `%s`\n", report.BackupArchive)
	}

	fmt.Fprintf(&b, "\n**%s**\n", summaryLine(report.Summary))
	return b.String()
}

func inventoryMarkdown(inv *Inventory) string {
	var b strings.Builder
	b.WriteString("# gamelink scan\n\n")
	for _, r := range inv.RootsUsed {
		fmt.Fprintf(&b, "- `%s`\n", r)
	}
	if len(inv.Items) == 0 {
		b.WriteString("\nNo items found.\n")
		return b.String()
	}
	b.WriteString("\n| ID | Name | Source | Install dir |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, it := range inv.Items {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			cell(it.ID), cell(it.Name), it.NameSource, cell(strings.Join(it.InstallDirs, ", ")))
	}
	return b.String()
}

// cell escapes characters that would break a markdown table row
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
