package tui

import (
	"time"

	"github.com/dm/gpuavail/internal/model"
)

// SweepMsg delivers a completed sweep to the TUI.
type SweepMsg struct {
	Snapshot *model.Snapshot
	Rows     []model.NodeStatus // sorted by GPU model
	Totals   model.ClusterTotals
}

// SweepErrorMsg signals that a sweep was interrupted before it finished.
type SweepErrorMsg struct {
	Err      error
	Snapshot *model.Snapshot // partial results, may be nil
}

// RangeDoneMsg reports progress after each node range of a sweep.
type RangeDoneMsg struct {
	Prefix string
	Done   int
	Total  int
}

// TickMsg triggers the next scheduled sweep. Gen is the sweep generation the
// tick was scheduled for; a tick from an older generation is dropped.
type TickMsg struct {
	Time time.Time
	Gen  int
}
