package metric

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/pithecene-io/assay/config"
	"github.com/pithecene-io/assay/fault"
	"github.com/pithecene-io/assay/table"
)

// defaultSampleSize caps the derived draw count for sampled metrics when the
// config does not set one.
const defaultSampleSize = 1000

// Params are the resolved compute parameters for one run.
// Build with FromConfig so the metric name is validated eagerly.
type Params struct {
	Kind         Kind
	TargetColumn string
	Seed         int64
	Window       int
	SampleSize   int
}

// FromConfig resolves a validated config into compute parameters.
// Fails with fault.ErrUnsupportedMetric for names outside the supported set,
// before any table data is touched.
func FromConfig(cfg *config.Config) (Params, error) {
	kind, err := ParseKind(cfg.Metric)
	if err != nil {
		return Params{}, err
	}
	return Params{
		Kind:         kind,
		TargetColumn: cfg.TargetColumn,
		Seed:         cfg.SeedValue(),
		Window:       cfg.Window,
		SampleSize:   cfg.SampleSize,
	}, nil
}

// Result is the engine output for one run.
type Result struct {
	// RowsProcessed is the exact row count of the input table.
	RowsProcessed int
	// Name is the computed metric's wire name.
	Name string
	// Value is the computed scalar, rounded to 4 decimals.
	Value float64
	// LatencyMS is wall-clock time spent inside Compute, rounded to the
	// nearest millisecond.
	LatencyMS int64
}

// Compute runs the configured metric over the table.
//
// Deterministic: identical (table, seed, kind) inputs produce bit-identical
// values across invocations. The PRNG is seeded fresh per call and no
// external entropy is consulted.
//
// On failure the returned error classifies as fault.ErrComputation and the
// returned Result still carries best-effort RowsProcessed and LatencyMS for
// the failure record.
func Compute(tbl *table.Table, p Params) (*Result, error) {
	start := time.Now()
	res := &Result{
		RowsProcessed: tbl.Len(),
		Name:          p.Kind.String(),
	}

	fail := func(err error) (*Result, error) {
		res.LatencyMS = elapsedMS(start)
		return res, fault.New(fault.ErrComputation, fault.StageCompute, p.TargetColumn, err)
	}

	values, err := tbl.FloatColumn(p.TargetColumn)
	if err != nil {
		return fail(err)
	}
	if len(values) == 0 {
		return fail(fmt.Errorf("no rows to compute over"))
	}

	rng := rand.New(rand.NewSource(p.Seed))

	var value float64
	switch p.Kind {
	case KindSignalRate:
		value = signalRate(values)
	case KindMean:
		value = mean(values)
	case KindStdDev:
		value = stddev(values)
	case KindSampledMean:
		value, err = sampledMean(values, rng, p.SampleSize)
	case KindRollingSignalRate:
		value, err = rollingSignalRate(values, p.Window)
	default:
		err = fmt.Errorf("kind %d has no computation", int(p.Kind))
	}
	if err != nil {
		return fail(err)
	}

	res.Value = round4(value)
	res.LatencyMS = elapsedMS(start)
	return res, nil
}

// signalRate is the fraction of nonzero values.
// For a 0/1 signal column this equals the column mean.
func signalRate(values []float64) float64 {
	fired := 0
	for _, v := range values {
		if v != 0 {
			fired++
		}
	}
	return float64(fired) / float64(len(values))
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stddev is the population standard deviation.
func stddev(values []float64) float64 {
	m := mean(values)
	sq := 0.0
	for _, v := range values {
		d := v - m
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)))
}

// sampledMean draws n values with replacement and averages them.
// n defaults to min(len(values), defaultSampleSize) when unset.
func sampledMean(values []float64, rng *rand.Rand, n int) (float64, error) {
	if n == 0 {
		n = min(len(values), defaultSampleSize)
	}
	if n < 1 {
		return 0, fmt.Errorf("sample_size must be >= 1, got %d", n)
	}
	sum := 0.0
	for range n {
		sum += values[rng.Intn(len(values))]
	}
	return sum / float64(n), nil
}

// rollingSignalRate is the fraction of rows whose value exceeds the trailing
// window-row rolling mean, among rows with a full window.
func rollingSignalRate(values []float64, window int) (float64, error) {
	if window < 1 {
		return 0, fmt.Errorf("window must be >= 1, got %d", window)
	}
	if window > len(values) {
		return 0, fmt.Errorf("window %d exceeds row count %d", window, len(values))
	}

	// Trailing sum over the current window, advanced incrementally.
	windowSum := 0.0
	for _, v := range values[:window] {
		windowSum += v
	}

	fired := 0
	considered := len(values) - window + 1
	for i := window - 1; ; i++ {
		if values[i] > windowSum/float64(window) {
			fired++
		}
		if i+1 >= len(values) {
			break
		}
		windowSum += values[i+1] - values[i+1-window]
	}
	return float64(fired) / float64(considered), nil
}

// round4 rounds to 4 decimal places, the output precision of the result
// record's value field.
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// elapsedMS returns wall-clock time since start, rounded to the nearest
// millisecond, never negative.
func elapsedMS(start time.Time) int64 {
	ms := time.Since(start).Round(time.Millisecond).Milliseconds()
	if ms < 0 {
		return 0
	}
	return ms
}
