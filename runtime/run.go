// Package runtime orchestrates a single pipeline run:
// Loader → Metric Engine → Reporter, strictly sequential.
package runtime

import (
	"context"
	"fmt"

	"github.com/pithecene-io/assay/adapter"
	"github.com/pithecene-io/assay/archive"
	"github.com/pithecene-io/assay/config"
	"github.com/pithecene-io/assay/fault"
	"github.com/pithecene-io/assay/history"
	"github.com/pithecene-io/assay/log"
	"github.com/pithecene-io/assay/metric"
	"github.com/pithecene-io/assay/metrics"
	"github.com/pithecene-io/assay/table"
	"github.com/pithecene-io/assay/types"
)

// RunConfig configures a single run.
type RunConfig struct {
	// InputPath is the CSV input table.
	InputPath string
	// ConfigPath is the YAML job configuration.
	ConfigPath string
	// OutputPath is where the result record JSON is written.
	OutputPath string
	// RunMeta is the run identity.
	RunMeta *types.RunMeta
	// Logger is the run log stream (required).
	Logger *log.Logger
	// History is the optional local result spool.
	History *history.Spool
	// Archive is the optional Lode-backed result archive.
	Archive archive.Client
	// Adapter is the optional downstream event publisher.
	Adapter adapter.Adapter
	// Collector is the per-run counters collector.
	// If nil, no counters are recorded (all Collector methods are nil-safe).
	Collector *metrics.Collector
}

// RunResult represents the terminal state of a run.
type RunResult struct {
	// Record is the assembled result record.
	// Nil when the loader stage failed: no record is produced and the
	// output path is left untouched.
	Record *types.ResultRecord
	// Err is the terminal pipeline error, nil on success.
	// A compute failure stays the terminal error even when later sink
	// writes also fail; sink failures never mask it.
	Err error
}

// Succeeded reports whether the run completed without error.
func (r *RunResult) Succeeded() bool {
	return r.Err == nil
}

// Orchestrator executes one run end-to-end.
type Orchestrator struct {
	config *RunConfig
	logger *log.Logger
}

// NewOrchestrator creates a run orchestrator.
// Returns an error if run metadata is invalid.
func NewOrchestrator(cfg *RunConfig) (*Orchestrator, error) {
	if err := cfg.RunMeta.Validate(); err != nil {
		return nil, fmt.Errorf("invalid run metadata: %w", err)
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Orchestrator{config: cfg, logger: cfg.Logger}, nil
}

// Execute runs the pipeline to completion.
//
// Execution flow:
//  1. Load and validate the job configuration; resolve the metric kind
//  2. Load the input table; enforce the target-column schema requirement
//  3. Compute the metric
//  4. Write the result record; feed optional sinks
//
// Loader-stage failures (steps 1–2) produce no output file. A compute
// failure still writes a failure record. The returned error is also carried
// on RunResult.Err; the error return exists for callers that do not
// inspect the result.
func (o *Orchestrator) Execute(ctx context.Context) (*RunResult, error) {
	o.logger.Info("job started", map[string]any{
		"input":  o.config.InputPath,
		"config": o.config.ConfigPath,
	})

	cfg, params, err := o.loadConfig()
	if err != nil {
		return o.failBeforeReport(err)
	}

	tbl, err := o.loadTable(cfg)
	if err != nil {
		return o.failBeforeReport(err)
	}

	record, computeErr := o.compute(tbl, cfg, params)

	if err := o.report(ctx, record, cfg); err != nil {
		// A compute failure is the terminal error; a report failure on top
		// of it is logged but must not replace it.
		if computeErr == nil {
			return &RunResult{Record: record, Err: err}, err
		}
	}

	o.finish(record)
	return &RunResult{Record: record, Err: computeErr}, computeErr
}

// loadConfig parses and validates the job configuration and eagerly
// resolves the metric name, before any table data is read.
func (o *Orchestrator) loadConfig() (*config.Config, metric.Params, error) {
	cfg, err := config.Load(o.config.ConfigPath)
	if err != nil {
		o.logger.Error("config load failed", map[string]any{"error": err.Error()})
		return nil, metric.Params{}, err
	}

	params, err := metric.FromConfig(cfg)
	if err != nil {
		o.logger.Error("config validation failed", map[string]any{"error": err.Error()})
		return nil, metric.Params{}, err
	}

	o.logger.Info("config validated", map[string]any{
		"version":       cfg.Version,
		"seed":          cfg.SeedValue(),
		"metric":        cfg.Metric,
		"target_column": cfg.TargetColumn,
	})
	return cfg, params, nil
}

// loadTable materializes the input table and enforces the target-column
// schema requirement.
func (o *Orchestrator) loadTable(cfg *config.Config) (*table.Table, error) {
	tbl, err := table.Load(o.config.InputPath)
	if err != nil {
		o.logger.Error("input load failed", map[string]any{"error": err.Error()})
		return nil, err
	}

	if !tbl.HasColumn(cfg.TargetColumn) {
		err := fault.New(fault.ErrSchema, fault.StageLoad, cfg.TargetColumn,
			fmt.Errorf("column not found; columns present: %v", tbl.Columns()))
		o.logger.Error("schema check failed", map[string]any{"error": err.Error()})
		return nil, err
	}

	o.config.Collector.AddRowsLoaded(int64(tbl.Len()))
	o.logger.Info("rows loaded", map[string]any{"rows": tbl.Len()})
	return tbl, nil
}

// compute runs the metric engine and assembles the result record.
// On ComputationError a failure record with best-effort counters is
// returned together with the error.
func (o *Orchestrator) compute(tbl *table.Table, cfg *config.Config, params metric.Params) (*types.ResultRecord, error) {
	res, err := metric.Compute(tbl, params)
	if err != nil {
		o.config.Collector.IncComputeFailure()
		o.logger.Error("metric computation failed", map[string]any{"error": err.Error()})
		return types.FailureRecord(cfg.Version, res.RowsProcessed, res.LatencyMS, params.Seed, err.Error()), err
	}

	o.config.Collector.IncMetricComputed()
	o.logger.Info("metric computed", map[string]any{
		"metric":         res.Name,
		"value":          res.Value,
		"rows_processed": res.RowsProcessed,
		"latency_ms":     res.LatencyMS,
	})
	return types.SuccessRecord(cfg.Version, res.RowsProcessed, res.Name, res.Value, res.LatencyMS, params.Seed), nil
}

// failBeforeReport terminates a run whose loader stage failed.
// No result record is produced and the output path is left untouched.
func (o *Orchestrator) failBeforeReport(err error) (*RunResult, error) {
	o.logger.Error("job failed", map[string]any{
		"stage": fault.Stage(err),
		"error": err.Error(),
	})
	return &RunResult{Err: err}, err
}

// finish emits the end-of-run log line with counter snapshot.
func (o *Orchestrator) finish(record *types.ResultRecord) {
	snap := o.config.Collector.Snapshot()
	o.logger.Info("job completed", map[string]any{
		"status":           string(record.Status),
		"rows_loaded":      snap.RowsLoaded,
		"history_failures": snap.HistoryWriteFailure,
		"archive_failures": snap.ArchiveWriteFailure,
		"publish_failures": snap.AdapterPublishFailure,
	})
}
