// Package archive persists result records to a Hive-partitioned Lode
// dataset for downstream consumption (dashboards, CI gates).
//
// Records are written as JSONL under metric/day/run_id partitions. The
// archive is an optional sink: failures are reported to the caller and
// counted, but never change the run's already-determined status.
package archive

import (
	"context"
	"time"

	"github.com/pithecene-io/assay/types"
)

// Dataset is the fixed Lode dataset ID for assay archives.
const Dataset = "assay"

// RecordKind is the record_kind discriminator for archived results.
const RecordKind = "result"

// DeriveDay computes the partition day from run start time.
// Format: YYYY-MM-DD in UTC.
func DeriveDay(startTime time.Time) string {
	return startTime.UTC().Format("2006-01-02")
}

// Config holds archive partition keys. All keys are required.
type Config struct {
	// Dataset is the Lode dataset ID (fixed to "assay").
	Dataset string
	// Metric is the partition key for the computed metric name.
	Metric string
	// Day is the partition key derived from run start time (YYYY-MM-DD UTC).
	Day string
	// RunID is the partition key for run identifier.
	RunID string
}

// Client abstracts the archive storage client.
// Real implementations connect to Lode storage; stubs are used for testing.
type Client interface {
	// WriteResult archives one result record.
	WriteResult(ctx context.Context, record *types.ResultRecord) error

	// Close releases client resources.
	Close() error
}

// StubClient is a test client that accepts writes without persisting.
type StubClient struct {
	Records []*types.ResultRecord
	Closed  bool
}

// NewStubClient creates a new stub client.
func NewStubClient() *StubClient {
	return &StubClient{}
}

// WriteResult implements Client by recording the write.
func (c *StubClient) WriteResult(_ context.Context, record *types.ResultRecord) error {
	c.Records = append(c.Records, record)
	return nil
}

// Close implements Client.
func (c *StubClient) Close() error {
	c.Closed = true
	return nil
}

// Verify StubClient implements Client.
var _ Client = (*StubClient)(nil)
