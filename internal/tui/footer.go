package tui

import (
	"fmt"
	"strings"

	"github.com/dm/gpuavail/internal/format"
)

// statusText builds the plain status line shown on the last screen line.
func statusText(app *App) string {
	if app.showHelp {
		return helpText
	}

	var parts []string
	switch {
	case app.snapshot == nil && app.fetching:
		parts = append(parts, "Collecting node status...")
	case app.snapshot == nil && app.lastErr != nil:
		parts = append(parts, "Sweep interrupted: "+app.lastErr.Error())
	case app.snapshot != nil:
		t := app.totals
		parts = append(parts,
			fmt.Sprintf("Last sweep %s (%s)", app.lastUpdated.Format("15:04:05"), format.FormatDuration(app.snapshot.Duration())),
			fmt.Sprintf("Nodes %d", t.Nodes),
			fmt.Sprintf("GPUs free %d/%d (%s)", t.AvailableGPUs, t.TotalGPUs, format.FormatPercent(t.AvailableGPUs, t.TotalGPUs)),
		)
		if n := len(app.snapshot.Failures); n > 0 {
			parts = append(parts, fmt.Sprintf("Unreachable %d", n))
		}
		if t.Inconsistent > 0 {
			parts = append(parts, fmt.Sprintf("Inconsistent %d", t.Inconsistent))
		}
	}

	if app.fetching && app.snapshot != nil {
		parts = append(parts, "Sweeping...")
	}
	if app.fetching && app.progress.Total > 0 {
		parts = append(parts, fmt.Sprintf("%d/%d ranges", app.progress.Done, app.progress.Total))
	}
	if !app.fetching && app.snapshot != nil {
		parts = append(parts, "Every "+format.FormatDuration(app.cfg.Interval))
	}
	parts = append(parts, "? for help")
	return strings.Join(parts, "  ")
}

// renderStatus renders the status line clipped to the terminal width.
func renderStatus(app *App, width int) string {
	text := clip(statusText(app), width)
	if app.snapshot == nil && app.lastErr != nil && !app.showHelp {
		return StyleError.Render(text)
	}
	return StyleDim.Render(text)
}
