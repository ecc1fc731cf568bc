package runtime

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/pithecene-io/assay/adapter"
	"github.com/pithecene-io/assay/config"
	"github.com/pithecene-io/assay/fault"
	"github.com/pithecene-io/assay/types"
)

// report writes the result record to the output path and feeds the optional
// sinks. Only the output write is part of the run contract: sink and adapter
// failures are logged and counted but never returned.
func (o *Orchestrator) report(ctx context.Context, record *types.ResultRecord, cfg *config.Config) error {
	if err := WriteResult(record, o.config.OutputPath); err != nil {
		o.config.Collector.IncOutputWriteFailure()
		o.logger.Error("result write failed", map[string]any{"error": err.Error()})
		return err
	}
	o.config.Collector.IncOutputWriteSuccess()
	o.logger.Info("result written", map[string]any{"path": o.config.OutputPath})

	o.appendHistory(record)
	o.writeArchive(ctx, record)
	o.publish(ctx, record)
	return nil
}

// WriteResult serializes a result record as indented JSON with stable key
// ordering and fully overwrites the output path.
func WriteResult(record *types.ResultRecord, path string) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fault.New(fault.ErrOutputWrite, fault.StageReport, path, err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fault.New(fault.ErrOutputWrite, fault.StageReport, path, err)
	}
	return nil
}

func (o *Orchestrator) appendHistory(record *types.ResultRecord) {
	if o.config.History == nil {
		return
	}
	if err := o.config.History.Append(o.config.RunMeta, record); err != nil {
		o.config.Collector.IncHistoryWriteFailure()
		o.logger.Warn("history append failed", map[string]any{
			"path":  o.config.History.Path(),
			"error": err.Error(),
		})
		return
	}
	o.config.Collector.IncHistoryWriteSuccess()
}

func (o *Orchestrator) writeArchive(ctx context.Context, record *types.ResultRecord) {
	if o.config.Archive == nil {
		return
	}
	if err := o.config.Archive.WriteResult(ctx, record); err != nil {
		o.config.Collector.IncArchiveWriteFailure()
		o.logger.Warn("archive write failed", map[string]any{"error": err.Error()})
		return
	}
	o.config.Collector.IncArchiveWriteSuccess()
}

func (o *Orchestrator) publish(ctx context.Context, record *types.ResultRecord) {
	if o.config.Adapter == nil {
		return
	}

	event := o.buildEvent(record)
	if err := o.config.Adapter.Publish(ctx, event); err != nil {
		o.config.Collector.IncAdapterPublishFailure()
		o.logger.Warn("adapter publish failed", map[string]any{"error": err.Error()})
		return
	}
	o.config.Collector.IncAdapterPublishSuccess()
}

// buildEvent assembles the downstream notification payload.
func (o *Orchestrator) buildEvent(record *types.ResultRecord) *adapter.JobCompletedEvent {
	event := &adapter.JobCompletedEvent{
		ContractVersion: types.Version,
		EventType:       adapter.EventType,
		RunID:           o.config.RunMeta.RunID,
		Status:          string(record.Status),
		RowsProcessed:   record.RowsProcessed,
		LatencyMs:       record.LatencyMS,
		Seed:            record.Seed,
		Version:         record.Version,
		OutputPath:      o.config.OutputPath,
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
		Value:           record.Value,
	}
	if record.Metric != nil {
		event.Metric = *record.Metric
	}
	return event
}
