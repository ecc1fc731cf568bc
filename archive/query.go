package archive

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/justapithecus/lode/lode"
)

// ErrNoResultsFound is returned when no result records exist in the dataset.
var ErrNoResultsFound = errors.New("no result records found")

// OpenReadDataset creates a read Dataset with filesystem storage.
// Uses the same codec and layout as the write path to ensure compatibility.
func OpenReadDataset(dataset, rootPath string) (lode.Dataset, error) {
	ds, err := newDataset(dataset, lode.NewFSFactory(rootPath))
	if err != nil {
		return nil, WrapInitError(err, dataset)
	}
	return ds, nil
}

// OpenReadDatasetS3 creates a read Dataset with S3 storage.
func OpenReadDatasetS3(dataset string, s3cfg S3Config) (lode.Dataset, error) {
	factory, err := newS3Factory(s3cfg)
	if err != nil {
		return nil, err
	}
	ds, err := newDataset(dataset, factory)
	if err != nil {
		return nil, WrapInitError(err, dataset)
	}
	return ds, nil
}

// QueryLatestResult finds and reads the most recent result record in the
// dataset. Filters by runID and metric if non-empty.
// Returns the raw record map or ErrNoResultsFound if none exist.
func QueryLatestResult(ctx context.Context, ds lode.Dataset, runID, metric string) (map[string]any, error) {
	snapshots, err := ds.Snapshots(ctx)
	if err != nil {
		return nil, WrapReadError(err, Dataset+"/snapshots")
	}

	// Iterate in reverse (latest first); snapshots are ordered by creation time
	for i := len(snapshots) - 1; i >= 0; i-- {
		snap := snapshots[i]

		if !snapshotMatchesFilter(snap, "run_id", runID) {
			continue
		}
		if !snapshotMatchesFilter(snap, "metric", metric) {
			continue
		}

		data, err := ds.Read(ctx, snap.ID)
		if err != nil {
			return nil, WrapReadError(err, fmt.Sprintf("%s/snapshot/%s", Dataset, snap.ID))
		}

		// Manifest path filtering is a coarse pre-filter; record fields
		// are authoritative (handles multi-record snapshots).
		for _, item := range data {
			record, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if record["record_kind"] != RecordKind {
				continue
			}
			if runID != "" && toString(record["run_id"]) != runID {
				continue
			}
			if metric != "" && toString(record["metric"]) != metric {
				continue
			}
			return record, nil
		}
	}

	return nil, ErrNoResultsFound
}

// snapshotMatchesFilter checks if a snapshot's file paths match
// the given partition key=value filter.
func snapshotMatchesFilter(snap *lode.DatasetSnapshot, key, value string) bool {
	if value == "" {
		return true
	}
	for _, f := range snap.Manifest.Files {
		if matchesPartitionValue(f.Path, key, value) {
			return true
		}
	}
	return false
}

// matchesPartitionValue checks if a Hive-partitioned path contains an exact
// key=value segment. Segments are delimited by "/" in paths. This avoids
// substring false positives (e.g. run_id=run-1 matching run_id=run-10).
func matchesPartitionValue(path, key, value string) bool {
	segment := key + "=" + value
	for _, part := range strings.Split(path, "/") {
		if part == segment {
			return true
		}
	}
	return false
}

// toString converts a value to string, returning empty string for nil/non-string.
func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
