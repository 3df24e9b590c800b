package tui

import "github.com/charmbracelet/lipgloss"

// Color constants.
var (
	colorYellow = lipgloss.Color("#f59e0b")
	colorRed    = lipgloss.Color("#ef4444")
	colorGray   = lipgloss.Color("#6b7280")
	colorWhite  = lipgloss.Color("#f8fafc")
	colorAlt    = lipgloss.Color("#cbd5e1")
)

// Header block styles.
var (
	StyleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	StyleRule    = lipgloss.NewStyle().Foreground(colorGray)
)

// Table styles.
var (
	StyleTableHeader = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorGray)

	StyleTableRow = lipgloss.NewStyle().
			Foreground(colorWhite)

	StyleTableRowAlt = lipgloss.NewStyle().
				Foreground(colorAlt)
)

// Utility styles.
var (
	StyleError = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	StyleDim   = lipgloss.NewStyle().Foreground(colorGray)
)

// rowStyle picks the style for the i-th data row. Rows reporting more
// allocated than installed resources are flagged in the error style.
func rowStyle(i int, inconsistent bool) lipgloss.Style {
	switch {
	case inconsistent:
		return StyleError
	case i%2 == 1:
		return StyleTableRowAlt
	default:
		return StyleTableRow
	}
}
