package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/gamelink/pkg/errors"
	"github.com/arthur-debert/gamelink/pkg/style"
	"github.com/arthur-debert/gamelink/pkg/types"
	"github.com/pterm/pterm"
)

func applyColor(enabled bool) {
	style.SetColor(enabled)
	if enabled {
		pterm.EnableStyling()
	} else {
		pterm.DisableStyling()
	}
}

func renderReportText(w io.Writer, report *types.RunReport, opts Options) error {
	applyColor(opts.Color)
	var out strings.Builder

	title := opts.Title
	if title == "" {
		title = "link"
	}
	title = strings.ToUpper(title[:1]) + title[1:]
	if report.DryRun {
		title += " (dry run)"
	}
	out.WriteString(style.TitleStyle.Render(title) + "\n")
	if report.TargetDir != "" {
		out.WriteString("Target: " + style.PathStyle.Render(report.TargetDir) + "\n")
	}

	if len(report.Items) == 0 {
		out.WriteString(style.MutedStyle.Render("No items selected") + "\n")
		_, err := io.WriteString(w, out.String())
		return wrapWrite(err)
	}

	data := pterm.TableData{{"ID", "Name", "Status", "Strategy", "Directory", "Detail"}}
	for _, it := range report.Items {
		data = append(data, []string{
			it.ID,
			it.Name,
			style.Status(it.Status),
			strategyCell(it),
			directoryCell(it),
			detailCell(it),
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "failed to render table")
	}
	out.WriteString("\n" + table + "\n")

	if ops := operationLines(report); len(ops) > 0 {
		if report.DryRun {
			out.WriteString("\nPlanned operations:\n")
		} else {
			out.WriteString("\nOperations:\n")
		}
		for _, l := range ops {
			out.WriteString("  " + l + "\n")
		}
	}

	if warnings := warningLines(report); len(warnings) > 0 {
		out.WriteString("\n" + style.WarningStyle.Render("Warnings:") + "\n")
		for _, l := range warnings {
			out.WriteString("  " + l + "\n")
		}
	}

	switch {
	case report.BackupArchive != "":
		out.WriteString("\nBackup: " + style.PathStyle.Render(report.BackupArchive) + "\n")
	case report.DryRun && len(report.BackupPaths) > 0:
		out.WriteString("\nWould back up:\n")
		for _, p := range report.BackupPaths {
			out.WriteString("  " + p + "\n")
		}
	}

	out.WriteString("\n" + summaryLine(report.Summary) + "\n")
	_, err = io.WriteString(w, out.String())
	return wrapWrite(err)
}

func renderInventoryText(w io.Writer, inv *Inventory, opts Options) error {
	applyColor(opts.Color)
	var out strings.Builder

	out.WriteString(style.TitleStyle.Render("Libraries") + "\n")
	for _, r := range inv.RootsUsed {
		out.WriteString("  " + style.PathStyle.Render(r) + "\n")
	}

	if len(inv.Items) == 0 {
		out.WriteString(style.MutedStyle.Render("No items found") + "\n")
		_, err := io.WriteString(w, out.String())
		return wrapWrite(err)
	}

	data := pterm.TableData{{"ID", "Name", "Source", "Install dir", "Roots"}}
	for _, it := range inv.Items {
		data = append(data, []string{
			it.ID,
			it.Name,
			string(it.NameSource),
			strings.Join(it.InstallDirs, ", "),
			fmt.Sprint(len(it.Roots)),
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "failed to render table")
	}
	out.WriteString("\n" + table + "\n")
	out.WriteString(fmt.Sprintf("\n%d items in %d libraries\n", len(inv.Items), len(inv.RootsUsed)))

	_, err = io.WriteString(w, out.String())
	return wrapWrite(err)
}

func strategyCell(it types.ItemReport) string {
	if it.Link == nil || it.Link.Strategy == types.StrategyNone {
		return ""
	}
	s := string(it.Link.Strategy)
	if it.Link.Degraded {
		s += " (degraded)"
	}
	return s
}

func directoryCell(it types.ItemReport) string {
	if it.Directory == nil {
		return ""
	}
	return fmt.Sprintf("%s [%s]", it.Directory.Path, it.Directory.Strategy)
}

func detailCell(it types.ItemReport) string {
	if it.Detail != "" {
		return it.Detail
	}
	if it.Link != nil {
		return it.Link.Detail
	}
	return ""
}

// operationLines lists every operation of every item, item order first
func operationLines(report *types.RunReport) []string {
	var lines []string
	for _, it := range report.Items {
		if it.Link == nil {
			continue
		}
		for _, op := range it.Link.Operations {
			lines = append(lines, it.ID+"  "+op.Describe())
		}
		for _, aux := range it.Link.Aux {
			for _, op := range aux.Operations {
				lines = append(lines, it.ID+"  "+op.Describe())
			}
		}
	}
	return lines
}

func warningLines(report *types.RunReport) []string {
	var lines []string
	for _, it := range report.Items {
		if it.Link == nil {
			continue
		}
		for _, aux := range it.Link.Aux {
			if aux.Warning != "" {
				lines = append(lines, fmt.Sprintf("%s  %s: %s", it.ID, aux.Kind, aux.Warning))
			}
		}
		if v := it.Link.Verification; v != nil {
			for _, p := range v.Problems {
				lines = append(lines, it.ID+"  "+p)
			}
		}
	}
	return lines
}

func summaryLine(s types.Summary) string {
	parts := []string{}
	add := func(n int, status types.ItemStatus) {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, status))
		}
	}
	add(s.Linked, types.StatusLinked)
	add(s.Planned, types.StatusPlanned)
	add(s.Degraded, types.StatusDegraded)
	add(s.Skipped, types.StatusSkipped)
	add(s.Failed, types.StatusFailed)
	if len(parts) == 0 {
		return fmt.Sprintf("%d items", s.Total)
	}
	return fmt.Sprintf("%d items: %s", s.Total, strings.Join(parts, ", "))
}

func wrapWrite(err error) error {
	if err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "failed to write output")
	}
	return nil
}
