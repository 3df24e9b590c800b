package tui

import (
	"fmt"
	"strings"

	"github.com/dm/gpuavail/internal/format"
)

const (
	titleText   = "Node Resource Availability (Live View - Sorted by GPU Model) - Press 'q' to quit"
	warningText = "Warning: Extend the terminal window size to view all information properly."
)

// headerLines is the number of screen lines above the first data row.
const headerLines = 5

// columnHeader returns the column titles aligned with formatRow.
func columnHeader() string {
	return fmt.Sprintf("%s | %s | %s | %s | %s",
		format.PadRight("Node", 20),
		format.PadRight("Available CPUs", 15),
		format.PadRight("Available Memory (GB)", 20),
		format.PadRight("Available GPUs", 15),
		format.PadRight("GPU Model", 15),
	)
}

// renderHeader renders the fixed header block:
//
//	0: title
//	1: terminal size warning
//	2: rule
//	3: column titles
//	4: rule
//
// Every line is clipped to width-1 cells so nothing is written into the
// last column of the terminal.
func renderHeader(width int) []string {
	rule := strings.Repeat("-", max(width-1, 0))
	return []string{
		StyleTitle.Render(clip(titleText, width)),
		StyleWarning.Render(clip(warningText, width)),
		StyleRule.Render(rule),
		StyleTableHeader.Render(clip(columnHeader(), width)),
		StyleRule.Render(rule),
	}
}

func clip(s string, width int) string {
	return format.Truncate(s, width-1)
}
