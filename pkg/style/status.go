package style

import (
	"github.com/arthur-debert/gamelink/pkg/types"
	"github.com/charmbracelet/lipgloss"
)

var statusColors = map[types.ItemStatus]lipgloss.AdaptiveColor{
	types.StatusLinked:   LinkedColor,
	types.StatusPlanned:  PlannedColor,
	types.StatusDegraded: DegradedColor,
	types.StatusSkipped:  SkippedColor,
	types.StatusFailed:   FailedColor,
}

var statusIndicators = map[types.ItemStatus]string{
	types.StatusLinked:   "✓",
	types.StatusPlanned:  "○",
	types.StatusDegraded: "!",
	types.StatusSkipped:  "-",
	types.StatusFailed:   "✗",
}

// StatusStyle returns the style used for an item status
func StatusStyle(status types.ItemStatus) lipgloss.Style {
	c, ok := statusColors[status]
	if !ok {
		return NormalStyle
	}
	return lipgloss.NewStyle().Foreground(c).Bold(status != types.StatusSkipped)
}

// Indicator returns the one-character marker for a status
func Indicator(status types.ItemStatus) string {
	if s, ok := statusIndicators[status]; ok {
		return s
	}
	return "?"
}

// Status renders "<indicator> <status>" in the status color
func Status(status types.ItemStatus) string {
	return StatusStyle(status).Render(Indicator(status) + " " + string(status))
}
