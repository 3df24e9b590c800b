package model

import "time"

// NodeFailure records a node whose status could not be fetched during a sweep.
type NodeFailure struct {
	Node  string `json:"node" yaml:"node"`
	Error string `json:"error" yaml:"error"`
}

// Snapshot holds the results of one sweep over every configured node range.
// Nodes keeps range-then-node traversal order; display code sorts a copy.
type Snapshot struct {
	Nodes      []NodeStatus  `json:"nodes" yaml:"nodes"`
	Failures   []NodeFailure `json:"failures,omitempty" yaml:"failures,omitempty"`
	StartedAt  time.Time     `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time     `json:"finished_at" yaml:"finished_at"`
}

// Duration returns how long the sweep took.
func (s *Snapshot) Duration() time.Duration {
	if s == nil || s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
