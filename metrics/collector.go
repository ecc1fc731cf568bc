// Package metrics provides per-run counters.
//
// The Collector accumulates counters during a single invocation and is a
// leaf package with no internal dependencies. Counters are informational:
// they feed the end-of-run log line, never the result record.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all run counters.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	RowsLoaded      int64
	MetricsComputed int64
	ComputeFailures int64

	OutputWriteSuccess int64
	OutputWriteFailure int64
	LogWriteFailure    int64

	HistoryWriteSuccess int64
	HistoryWriteFailure int64
	ArchiveWriteSuccess int64
	ArchiveWriteFailure int64

	AdapterPublishSuccess int64
	AdapterPublishFailure int64

	// Dimensions (informational, set at construction)
	Metric string
	RunID  string
}

// Collector accumulates counters during a single run.
// Thread-safe via sync.Mutex. All increment methods are nil-receiver safe,
// so optional call sites never need a guard.
type Collector struct {
	mu sync.Mutex

	rowsLoaded      int64
	metricsComputed int64
	computeFailures int64

	outputWriteSuccess int64
	outputWriteFailure int64
	logWriteFailure    int64

	historyWriteSuccess int64
	historyWriteFailure int64
	archiveWriteSuccess int64
	archiveWriteFailure int64

	adapterPublishSuccess int64
	adapterPublishFailure int64

	metric string
	runID  string
}

// NewCollector creates a Collector with dimension labels.
func NewCollector(metric, runID string) *Collector {
	return &Collector{metric: metric, runID: runID}
}

// AddRowsLoaded records the loaded row count.
func (c *Collector) AddRowsLoaded(n int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.rowsLoaded += n
	c.mu.Unlock()
}

// IncMetricComputed records a successful metric computation.
func (c *Collector) IncMetricComputed() {
	if c == nil {
		return
	}
	c.inc(&c.metricsComputed)
}

// IncComputeFailure records a failed metric computation.
func (c *Collector) IncComputeFailure() {
	if c == nil {
		return
	}
	c.inc(&c.computeFailures)
}

// IncOutputWriteSuccess records a successful result write.
func (c *Collector) IncOutputWriteSuccess() {
	if c == nil {
		return
	}
	c.inc(&c.outputWriteSuccess)
}

// IncOutputWriteFailure records a failed result write.
func (c *Collector) IncOutputWriteFailure() {
	if c == nil {
		return
	}
	c.inc(&c.outputWriteFailure)
}

// IncLogWriteFailure records a log stream failure.
func (c *Collector) IncLogWriteFailure() {
	if c == nil {
		return
	}
	c.inc(&c.logWriteFailure)
}

// IncHistoryWriteSuccess records a successful history spool append.
func (c *Collector) IncHistoryWriteSuccess() {
	if c == nil {
		return
	}
	c.inc(&c.historyWriteSuccess)
}

// IncHistoryWriteFailure records a failed history spool append.
func (c *Collector) IncHistoryWriteFailure() {
	if c == nil {
		return
	}
	c.inc(&c.historyWriteFailure)
}

// IncArchiveWriteSuccess records a successful archive write.
func (c *Collector) IncArchiveWriteSuccess() {
	if c == nil {
		return
	}
	c.inc(&c.archiveWriteSuccess)
}

// IncArchiveWriteFailure records a failed archive write.
func (c *Collector) IncArchiveWriteFailure() {
	if c == nil {
		return
	}
	c.inc(&c.archiveWriteFailure)
}

// IncAdapterPublishSuccess records a successful adapter publish.
func (c *Collector) IncAdapterPublishSuccess() {
	if c == nil {
		return
	}
	c.inc(&c.adapterPublishSuccess)
}

// IncAdapterPublishFailure records a failed adapter publish.
func (c *Collector) IncAdapterPublishFailure() {
	if c == nil {
		return
	}
	c.inc(&c.adapterPublishFailure)
}

func (c *Collector) inc(counter *int64) {
	c.mu.Lock()
	*counter++
	c.mu.Unlock()
}

// Snapshot returns an immutable view of all counters.
// Nil-receiver safe: a nil Collector yields a zero Snapshot.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		RowsLoaded:            c.rowsLoaded,
		MetricsComputed:       c.metricsComputed,
		ComputeFailures:       c.computeFailures,
		OutputWriteSuccess:    c.outputWriteSuccess,
		OutputWriteFailure:    c.outputWriteFailure,
		LogWriteFailure:       c.logWriteFailure,
		HistoryWriteSuccess:   c.historyWriteSuccess,
		HistoryWriteFailure:   c.historyWriteFailure,
		ArchiveWriteSuccess:   c.archiveWriteSuccess,
		ArchiveWriteFailure:   c.archiveWriteFailure,
		AdapterPublishSuccess: c.adapterPublishSuccess,
		AdapterPublishFailure: c.adapterPublishFailure,
		Metric:                c.metric,
		RunID:                 c.runID,
	}
}
