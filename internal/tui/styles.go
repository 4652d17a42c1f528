package tui

import "github.com/charmbracelet/lipgloss"

// Palette
var (
	colorBrand  = lipgloss.Color("#22D3EE")
	colorText   = lipgloss.Color("#E2E8F0")
	colorDim    = lipgloss.Color("#64748B")
	colorBorder = lipgloss.Color("#334155")
	colorFocus  = lipgloss.Color("#38BDF8")

	colorCoding = lipgloss.Color("#4ADE80")
	colorPaused = lipgloss.Color("#FBBF24")
	colorDanger = lipgloss.Color("#F87171")

	colorBreakShort = lipgloss.Color("#5EEAD4")
	colorBreakLong  = lipgloss.Color("#C084FC")

	colorGoalBar   = lipgloss.Color("#818CF8")
	colorGoalTrack = lipgloss.Color("#1E293B")

	colorCritical = lipgloss.Color("#EF4444")
	colorHigh     = lipgloss.Color("#FB923C")
)

var (
	brandStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBrand)

	tabOnStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBrand).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorBrand).
			Padding(0, 2)

	tabOffStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Padding(0, 2)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 2)

	// focusPanelStyle marks the panel that owns the keyboard.
	focusPanelStyle = panelStyle.
			BorderForeground(colorFocus)

	// Session clock
	clockStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorDim).
			Align(lipgloss.Center)

	clockCodingStyle = clockStyle.
				Foreground(colorCoding)

	clockPausedStyle = clockStyle.
				Foreground(colorPaused)

	// Goals
	goalBarStyle   = lipgloss.NewStyle().Foreground(colorGoalBar)
	goalTrackStyle = lipgloss.NewStyle().Foreground(colorGoalTrack)
	goalMetStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorCoding)

	codingBarStyle = lipgloss.NewStyle().Foreground(colorBrand)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorText)

	mutedStyle     = lipgloss.NewStyle().Foreground(colorDim)
	successStyle   = lipgloss.NewStyle().Foreground(colorCoding)
	warningStyle   = lipgloss.NewStyle().Foreground(colorPaused)
	errorStyle     = lipgloss.NewStyle().Foreground(colorDanger)
	highlightStyle = lipgloss.NewStyle().Foreground(colorFocus)

	headerStyle = lipgloss.NewStyle().
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Padding(0, 1)

	rowStyle       = lipgloss.NewStyle().Foreground(colorText)
	cursorRowStyle = lipgloss.NewStyle().Bold(true).Foreground(colorBrand)
)

// breakStyle colours a break countdown by break type.
func breakStyle(kind string) lipgloss.Style {
	if kind == "long" {
		return lipgloss.NewStyle().Foreground(colorBreakLong)
	}
	return lipgloss.NewStyle().Foreground(colorBreakShort)
}

// priorityStyle colours an issue priority. Low and medium stay muted.
func priorityStyle(priority string) lipgloss.Style {
	switch priority {
	case "critical":
		return lipgloss.NewStyle().Bold(true).Foreground(colorCritical)
	case "high":
		return lipgloss.NewStyle().Foreground(colorHigh)
	}
	return mutedStyle
}

// scoreStyle colours a 0-100 score.
func scoreStyle(v int) lipgloss.Style {
	switch {
	case v >= 80:
		return successStyle
	case v >= 60:
		return warningStyle
	}
	return errorStyle
}
