// Package theme holds the terminal styles used by the CLI.
package theme

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/fedrill/internal/spacedrep"
)

// Color palette
var (
	Primary   = lipgloss.Color("#6366F1") // Indigo
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F59E0B") // Amber
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Category = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)
)

// Answer feedback
var (
	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)

	TableHeader = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true).
			Padding(0, 1)

	TableCell = lipgloss.NewStyle().
			Padding(0, 1)
)

var (
	barFilled = lipgloss.NewStyle().Foreground(Secondary)
	barEmpty  = lipgloss.NewStyle().Foreground(Border)
)

// AccuracyBar renders accuracy in [0, 1] as a bar of width cells.
func AccuracyBar(accuracy float64, width int) string {
	if width <= 0 {
		return ""
	}
	accuracy = min(max(accuracy, 0), 1)
	filled := int(accuracy*float64(width) + 0.5)
	return barFilled.Render(strings.Repeat("█", filled)) +
		barEmpty.Render(strings.Repeat("░", width-filled))
}

// Percent formats accuracy in [0, 1] as a whole percentage.
func Percent(accuracy float64) string {
	return fmt.Sprintf("%3.0f%%", accuracy*100)
}

// StatusStyle returns the style for a review status.
func StatusStyle(s spacedrep.ReviewStatus) lipgloss.Style {
	switch s {
	case spacedrep.StatusOverdue:
		return Incorrect
	case spacedrep.StatusDue:
		return lipgloss.NewStyle().Foreground(Accent).Bold(true)
	case spacedrep.StatusNew:
		return lipgloss.NewStyle().Foreground(Secondary)
	default:
		return Hint
	}
}

// Interval describes an interval in days for display.
func Interval(days int64) string {
	switch {
	case days == 0:
		return "now"
	case days == 1:
		return "1 day"
	case days == spacedrep.MaxIntervalDays:
		return "never"
	default:
		return fmt.Sprintf("%d days", days)
	}
}
