// Package types defines core domain types for the assay job runner.
//
//nolint:revive // types is a common Go package naming convention
package types

// Status is the terminal status of a job run.
type Status string

const (
	// StatusSuccess indicates the metric engine completed without error.
	StatusSuccess Status = "success"
	// StatusFailure indicates the metric engine failed.
	StatusFailure Status = "failure"
)

// ResultRecord is the structured output object summarizing one run.
// Created once per run, immutable after creation, written exactly once
// to the output path. Field order is the serialization key order.
//
// Consumers must treat unknown additional fields as ignorable: Error is
// such a field, populated only for failure records.
type ResultRecord struct {
	// Version is the configuration-supplied version tag.
	Version string `json:"version" msgpack:"version"`
	// RowsProcessed is the exact row count of the input table.
	RowsProcessed int `json:"rows_processed" msgpack:"rows_processed"`
	// Metric is the computed metric name. Omitted on failure.
	Metric *string `json:"metric,omitempty" msgpack:"metric,omitempty"`
	// Value is the computed metric value. Omitted on failure.
	Value *float64 `json:"value,omitempty" msgpack:"value,omitempty"`
	// LatencyMS is wall-clock time spent strictly inside metric
	// computation, rounded to the nearest millisecond.
	LatencyMS int64 `json:"latency_ms" msgpack:"latency_ms"`
	// Seed is the configuration-supplied deterministic seed.
	Seed int64 `json:"seed" msgpack:"seed"`
	// Status is "success" or "failure".
	Status Status `json:"status" msgpack:"status"`
	// Error is a human-readable failure description. Omitted on success.
	Error *string `json:"error,omitempty" msgpack:"error,omitempty"`
}

// SuccessRecord builds a success result record.
func SuccessRecord(version string, rows int, metric string, value float64, latencyMS, seed int64) *ResultRecord {
	return &ResultRecord{
		Version:       version,
		RowsProcessed: rows,
		Metric:        &metric,
		Value:         &value,
		LatencyMS:     latencyMS,
		Seed:          seed,
		Status:        StatusSuccess,
	}
}

// FailureRecord builds a failure result record with best-effort counters.
// Metric and Value are left unset per the output contract.
func FailureRecord(version string, rows int, latencyMS, seed int64, message string) *ResultRecord {
	return &ResultRecord{
		Version:       version,
		RowsProcessed: rows,
		LatencyMS:     latencyMS,
		Seed:          seed,
		Status:        StatusFailure,
		Error:         &message,
	}
}
