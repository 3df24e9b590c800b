package tui

import (
	"fmt"

	"github.com/dm/gpuavail/internal/format"
	"github.com/dm/gpuavail/internal/model"
)

// formatRow renders one node as a fixed-width line. Memory always shows two
// decimals; negative availabilities are printed as reported.
func formatRow(n model.NodeStatus) string {
	return fmt.Sprintf("%s | %-15d | %-20.2f | %-15d | %s",
		format.PadRight(n.Node, 20),
		n.AvailableCPUs,
		n.AvailableMemoryGB,
		n.AvailableGPUs,
		format.PadRight(n.GPUModel, 15),
	)
}

// renderRows renders rows from screen line headerLines onward, stopping
// before line height-1 which is reserved for the status line. Rows that do
// not fit are dropped.
func renderRows(rows []model.NodeStatus, width, height int) []string {
	var out []string
	for i, r := range rows {
		if headerLines+i >= height-1 {
			break
		}
		out = append(out, rowStyle(i, r.Inconsistent()).Render(clip(formatRow(r), width)))
	}
	return out
}
