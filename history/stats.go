package history

import (
	"sort"

	"github.com/pithecene-io/assay/types"
)

// Stats is an aggregated view of a history spool.
type Stats struct {
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Metrics   []MetricStats `json:"metrics"`
}

// MetricStats aggregates the runs of one metric.
type MetricStats struct {
	Metric        string  `json:"metric"`
	Runs          int     `json:"runs"`
	MeanValue     float64 `json:"mean_value"`
	LastValue     float64 `json:"last_value"`
	MeanLatencyMS float64 `json:"mean_latency_ms"`
}

// Aggregate derives spool statistics, oldest-first input assumed.
// Failure records carry no metric name and only count toward the totals.
func Aggregate(entries []*Entry) *Stats {
	stats := &Stats{Total: len(entries)}

	type acc struct {
		runs       int
		valueSum   float64
		latencySum int64
		lastValue  float64
	}
	byMetric := make(map[string]*acc)

	for _, e := range entries {
		rec := e.Record
		if rec.Status == types.StatusSuccess {
			stats.Succeeded++
		} else {
			stats.Failed++
		}
		if rec.Metric == nil || rec.Value == nil {
			continue
		}

		a := byMetric[*rec.Metric]
		if a == nil {
			a = &acc{}
			byMetric[*rec.Metric] = a
		}
		a.runs++
		a.valueSum += *rec.Value
		a.latencySum += rec.LatencyMS
		a.lastValue = *rec.Value
	}

	names := make([]string, 0, len(byMetric))
	for name := range byMetric {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		a := byMetric[name]
		stats.Metrics = append(stats.Metrics, MetricStats{
			Metric:        name,
			Runs:          a.runs,
			MeanValue:     a.valueSum / float64(a.runs),
			LastValue:     a.lastValue,
			MeanLatencyMS: float64(a.latencySum) / float64(a.runs),
		})
	}
	return stats
}
