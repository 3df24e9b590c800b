package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/dm/gpuavail/internal/client"
	"github.com/dm/gpuavail/internal/model"
	"github.com/dm/gpuavail/internal/nodeset"
)

// FetchFunc returns the raw status report for one node.
type FetchFunc func(ctx context.Context, node string) (string, error)

// RangeStats summarises one range of a sweep, passed to OnRangeDone.
type RangeStats struct {
	// Index is the range's position in the sweep, counting from zero.
	// Ranges is the number of ranges in the sweep.
	Index     int
	Ranges    int
	Nodes     int
	Succeeded int
	Failed    int
	Elapsed   time.Duration
}

// Sweeper gathers one snapshot across all configured node ranges. Nodes are
// queried one at a time, in declaration order; the resource manager never
// sees more than one outstanding query from us.
type Sweeper struct {
	Fetch  FetchFunc
	Logger *slog.Logger

	// OnRangeDone is called after the last node of each range. When nil the
	// sweeper logs "<prefix> done".
	OnRangeDone func(spec nodeset.Spec, stats RangeStats)

	now func() time.Time
}

// NewSweeper returns a Sweeper that queries r.
func NewSweeper(r client.NodeReporter, logger *slog.Logger) *Sweeper {
	return &Sweeper{Fetch: r.ShowNode, Logger: logger}
}

func (s *Sweeper) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s *Sweeper) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

// Sweep queries every node of every spec and returns the records of the
// nodes that answered, in traversal order. A node whose fetch fails is
// logged, listed in Snapshot.Failures and left out of Snapshot.Nodes. The
// only error returned is the context's, together with the partial snapshot.
func (s *Sweeper) Sweep(ctx context.Context, specs []nodeset.Spec) (*model.Snapshot, error) {
	log := s.logger()
	snap := &model.Snapshot{
		Nodes:     make([]model.NodeStatus, 0, TotalNodes(specs)),
		StartedAt: s.clock(),
	}

	for i, spec := range specs {
		rangeStart := s.clock()
		stats := RangeStats{Index: i, Ranges: len(specs)}
		for _, node := range spec.Expand() {
			if err := ctx.Err(); err != nil {
				snap.FinishedAt = s.clock()
				return snap, err
			}
			stats.Nodes++

			raw, fetchErr := s.Fetch(ctx, node)
			status, err := NewNodeStatus(node, raw, fetchErr)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					snap.FinishedAt = s.clock()
					return snap, ctxErr
				}
				stats.Failed++
				log.Warn("unable to retrieve node status", "node", node, "err", err)
				snap.Failures = append(snap.Failures, model.NodeFailure{Node: node, Error: err.Error()})
				continue
			}
			stats.Succeeded++
			snap.Nodes = append(snap.Nodes, status)
		}
		stats.Elapsed = s.clock().Sub(rangeStart)

		if s.OnRangeDone != nil {
			s.OnRangeDone(spec, stats)
		} else {
			log.Info(spec.Prefix+" done", "range", spec.Expr, "nodes", stats.Nodes, "failed", stats.Failed, "elapsed", stats.Elapsed)
		}
	}

	snap.FinishedAt = s.clock()
	log.Debug("sweep finished", "nodes", len(snap.Nodes), "failed", len(snap.Failures), "elapsed", snap.Duration())
	return snap, nil
}

// TotalNodes returns the number of node names across specs.
func TotalNodes(specs []nodeset.Spec) int {
	n := 0
	for _, s := range specs {
		n += s.Len()
	}
	return n
}
