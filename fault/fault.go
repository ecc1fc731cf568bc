// Package fault defines the error taxonomy for the assay pipeline.
//
// Sentinel errors classify failures by kind; StageError wraps an underlying
// error with the pipeline stage and the offending path or value. Callers use
// errors.Is/errors.As for typed assertions rather than string matching.
package fault

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Pipeline stages, used in error messages and exit-code mapping.
const (
	StageLoad    = "load"
	StageCompute = "compute"
	StageReport  = "report"
)

// Sentinel errors for pipeline failure classification.
// Use errors.Is(err, ErrXxx) for typed assertions.
var (
	// ErrInputNotFound indicates the input path does not resolve to a
	// readable file.
	ErrInputNotFound = errors.New("input not found")

	// ErrParse indicates the input could not be parsed as tabular data or
	// the configuration could not be parsed as a structured document.
	ErrParse = errors.New("parse error")

	// ErrSchema indicates the configuration references a target column
	// absent from the table.
	ErrSchema = errors.New("schema error")

	// ErrUnsupportedMetric indicates a metric name outside the supported set.
	ErrUnsupportedMetric = errors.New("unsupported metric")

	// ErrComputation indicates an unrecoverable failure inside the metric
	// engine (degenerate input, arithmetic failure).
	ErrComputation = errors.New("computation error")

	// ErrOutputWrite indicates the result record could not be written.
	ErrOutputWrite = errors.New("output write error")

	// ErrLogWrite indicates the log stream could not be opened or written.
	// Must never override a status already determined by an earlier stage.
	ErrLogWrite = errors.New("log write error")
)

// StageError wraps an underlying error with pipeline classification.
// It preserves the original error in the chain for inspection via errors.As.
type StageError struct {
	// Kind is the sentinel error for classification (e.g. ErrParse).
	Kind error
	// Stage is the pipeline stage that failed (load, compute, report).
	Stage string
	// Path is the file path or offending value involved, if any.
	Path string
	// Err is the underlying error.
	Err error
}

func (e *StageError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v: %v", e.Stage, e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v: %v", e.Stage, e.Kind, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As chain traversal.
func (e *StageError) Unwrap() error {
	return e.Err
}

// Is reports whether the error matches the target sentinel.
func (e *StageError) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

// New creates a classified stage error.
func New(kind error, stage, path string, err error) *StageError {
	return &StageError{
		Kind:  kind,
		Stage: stage,
		Path:  path,
		Err:   err,
	}
}

// WrapRead classifies a loader-stage read error: missing files become
// ErrInputNotFound, everything else ErrParse. Returns nil if err is nil.
func WrapRead(err error, path string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) || os.IsNotExist(err) {
		return New(ErrInputNotFound, StageLoad, path, err)
	}
	return New(ErrParse, StageLoad, path, err)
}

// Stage returns the pipeline stage recorded on err, or "" when err carries
// no stage classification.
func Stage(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
