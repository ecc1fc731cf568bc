package archive

import (
	"context"
	"fmt"

	"github.com/justapithecus/lode/lode"

	"github.com/pithecene-io/assay/types"
)

// hiveKeys is the partition layout for assay archives.
var hiveKeys = []string{"metric", "day", "run_id"}

// LodeClient is a Lode-backed implementation of Client.
type LodeClient struct {
	dataset lode.Dataset
	config  Config
}

// NewFSClient creates an archive client with filesystem storage.
// The root parameter is the base directory for Hive-partitioned storage.
func NewFSClient(cfg Config, root string) (*LodeClient, error) {
	return NewClientWithFactory(cfg, lode.NewFSFactory(root))
}

// NewClientWithFactory creates an archive client with a custom store factory.
// Use lode.NewMemoryFactory() for testing.
func NewClientWithFactory(cfg Config, factory lode.StoreFactory) (*LodeClient, error) {
	ds, err := newDataset(cfg.Dataset, factory)
	if err != nil {
		return nil, WrapInitError(err, cfg.Dataset)
	}
	return &LodeClient{dataset: ds, config: cfg}, nil
}

// newDataset builds a Dataset with the shared layout and codec.
// Read and write paths must agree on both for compatibility.
func newDataset(dataset string, factory lode.StoreFactory) (lode.Dataset, error) {
	return lode.NewDataset(
		lode.DatasetID(dataset),
		factory,
		lode.WithHiveLayout(hiveKeys...),
		lode.WithCodec(lode.NewJSONLCodec()),
	)
}

// WriteResult archives one result record under the configured partition keys.
func (c *LodeClient) WriteResult(ctx context.Context, record *types.ResultRecord) error {
	records := []any{toResultRecordMap(record, c.config)}
	if _, err := c.dataset.Write(ctx, records, lode.Metadata{}); err != nil {
		return WrapWriteError(err, fmt.Sprintf("%s/run_id=%s", c.config.Dataset, c.config.RunID))
	}
	return nil
}

// Close releases client resources.
func (c *LodeClient) Close() error {
	// Dataset doesn't require explicit close in current Lode API
	return nil
}

// Verify LodeClient implements Client.
var _ Client = (*LodeClient)(nil)
