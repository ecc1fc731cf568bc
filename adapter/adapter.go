// Package adapter defines the event-bus adapter boundary.
//
// Adapters publish job completion notifications to downstream systems
// (CI gates, dashboards). The runtime owns adapter lifecycle; users provide
// configuration only. Publish failures are logged and counted but never
// change the run's terminal status or exit code.
package adapter

import "context"

// EventType is the type tag carried by every published event.
const EventType = "job_completed"

// JobCompletedEvent is the payload published when a run finishes.
type JobCompletedEvent struct {
	ContractVersion string   `json:"contract_version"`
	EventType       string   `json:"event_type"` // always "job_completed"
	RunID           string   `json:"run_id"`
	Metric          string   `json:"metric"`
	Value           *float64 `json:"value,omitempty"`
	Status          string   `json:"status"` // success, failure
	RowsProcessed   int      `json:"rows_processed"`
	LatencyMs       int64    `json:"latency_ms"`
	Seed            int64    `json:"seed"`
	Version         string   `json:"version"` // config-supplied version tag
	OutputPath      string   `json:"output_path"`
	Timestamp       string   `json:"timestamp"` // ISO 8601
}

// Adapter publishes job completion events to a downstream system.
// Implementations must be safe for single-use per run.
type Adapter interface {
	// Publish sends a job completion event to the downstream system.
	// Must respect context cancellation and deadlines.
	Publish(ctx context.Context, event *JobCompletedEvent) error

	// Close releases adapter resources.
	Close() error
}
