// Package metric implements the deterministic metric engine.
//
// The supported metric set is a closed tagged variant: names resolve to a
// Kind once at configuration-validation time, so unsupported metrics surface
// before any data is processed. Each variant is a pure function from
// (column values, seed) to a scalar; the per-run PRNG is the only source of
// randomness and is constructed fresh from the configured seed.
package metric

import (
	"fmt"
	"sort"

	"github.com/pithecene-io/assay/fault"
)

// Kind identifies a supported metric computation.
type Kind int

const (
	// KindSignalRate is the fraction of rows whose target value is nonzero.
	KindSignalRate Kind = iota
	// KindMean is the arithmetic mean of the target column.
	KindMean
	// KindStdDev is the population standard deviation of the target column.
	KindStdDev
	// KindSampledMean is the mean over seeded random draws from the target
	// column. The only metric that consumes pseudo-randomness.
	KindSampledMean
	// KindRollingSignalRate is the fraction of rows whose value exceeds the
	// trailing rolling mean, over rows with a full window.
	KindRollingSignalRate
)

// kindStrings holds the wire name of each kind, indexed by Kind.
var kindStrings = [...]string{
	KindSignalRate:        "signal_rate",
	KindMean:              "mean",
	KindStdDev:            "stddev",
	KindSampledMean:       "sampled_mean",
	KindRollingSignalRate: "rolling_signal_rate",
}

// kindNames maps wire names to kinds. This is the entire supported set;
// there is no fallback and no default.
var kindNames = func() map[string]Kind {
	m := make(map[string]Kind, len(kindStrings))
	for k, name := range kindStrings {
		m[name] = Kind(k)
	}
	return m
}()

// ParseKind resolves a metric name to its Kind.
// Unknown names fail with fault.ErrUnsupportedMetric.
func ParseKind(name string) (Kind, error) {
	k, ok := kindNames[name]
	if !ok {
		return 0, fault.New(fault.ErrUnsupportedMetric, fault.StageLoad, name,
			fmt.Errorf("must be one of %v", Names()))
	}
	return k, nil
}

// String returns the wire name of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindStrings) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindStrings[k]
}

// Names returns the supported metric names, sorted for stable messages.
func Names() []string {
	names := make([]string, 0, len(kindNames))
	for name := range kindNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
