package types

import (
	"fmt"
	"time"
)

// RunMeta is the run identity attached to log lines, history frames, and
// archive partition keys.
type RunMeta struct {
	// RunID uniquely identifies this invocation.
	RunID string
	// StartedAt is the process start time, consumed once and never mutated.
	StartedAt time.Time
}

// Validate checks run metadata invariants.
func (m *RunMeta) Validate() error {
	if m == nil {
		return fmt.Errorf("run metadata is nil")
	}
	if m.RunID == "" {
		return fmt.Errorf("run_id must not be empty")
	}
	if m.StartedAt.IsZero() {
		return fmt.Errorf("started_at must be set")
	}
	return nil
}

// NewRunMeta builds run metadata for a run starting now.
// When runID is empty a UTC-timestamp-derived ID is assigned, so unattended
// invocations still get a usable identity.
func NewRunMeta(runID string, startedAt time.Time) *RunMeta {
	if runID == "" {
		runID = "run-" + startedAt.UTC().Format("20060102T150405.000000000Z")
	}
	return &RunMeta{RunID: runID, StartedAt: startedAt}
}
