package archive

import "github.com/pithecene-io/assay/types"

// toResultRecordMap converts a ResultRecord to a map for Lode storage.
// Lode HiveLayout requires records as map[string]any; partition keys
// (metric, day, run_id) are carried inside each record.
func toResultRecordMap(r *types.ResultRecord, cfg Config) map[string]any {
	m := map[string]any{
		"record_kind":      RecordKind,
		"contract_version": types.Version,
		"version":          r.Version,
		"rows_processed":   r.RowsProcessed,
		"latency_ms":       r.LatencyMS,
		"seed":             r.Seed,
		"status":           string(r.Status),
		"metric":           cfg.Metric, // partition key
		"day":              cfg.Day,
		"run_id":           cfg.RunID,
	}
	if r.Value != nil {
		m["value"] = *r.Value
	}
	if r.Error != nil {
		m["error"] = *r.Error
	}
	return m
}
