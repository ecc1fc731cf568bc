// Package log provides the run log stream: plain-text, timestamped,
// one line per lifecycle event.
//
// The logger tees every entry to stdout and, when a log path is configured,
// to the log file. The log stream is owned by the runtime: opened at process
// start, closed at process end, never shared. A log file that cannot be
// opened degrades to stdout-only logging; log-write failures are reported
// to the caller but never change an already-determined run status.
package log

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pithecene-io/assay/fault"
	"github.com/pithecene-io/assay/types"
)

// Logger writes timestamped plain-text log lines with run context.
type Logger struct {
	zap  *zap.Logger
	file *os.File
}

// Open creates a logger teeing to stdout and to logPath (append mode).
//
// The returned Logger is always usable. When the log file cannot be opened
// the error classifies as fault.ErrLogWrite and the logger falls back to
// stdout only; callers report the error and continue.
func Open(runMeta *types.RunMeta, logPath string) (*Logger, error) {
	cores := []zapcore.Core{newCore(zapcore.Lock(os.Stdout))}

	var file *os.File
	var openErr error
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			openErr = fault.New(fault.ErrLogWrite, fault.StageReport, logPath, err)
		} else {
			file = f
			cores = append(cores, newCore(zapcore.AddSync(f)))
		}
	}

	return &Logger{
		zap:  newZap(zapcore.NewTee(cores...), runMeta),
		file: file,
	}, openErr
}

// NewWithWriter creates a logger writing only to w. Used by tests to capture
// the log stream.
func NewWithWriter(runMeta *types.RunMeta, w io.Writer) *Logger {
	return &Logger{zap: newZap(newCore(zapcore.AddSync(w)), runMeta)}
}

// Close flushes buffered entries and releases the log file.
func (l *Logger) Close() error {
	_ = l.zap.Sync()
	if l.file == nil {
		return nil
	}
	if err := l.file.Close(); err != nil {
		return fault.New(fault.ErrLogWrite, fault.StageReport, l.file.Name(), err)
	}
	return nil
}

func newCore(ws zapcore.WriteSyncer) zapcore.Core {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		MessageKey:     "message",
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
	}
	return zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		ws,
		zapcore.DebugLevel,
	)
}

func newZap(core zapcore.Core, runMeta *types.RunMeta) *zap.Logger {
	contextFields := []zap.Field{
		zap.String("run_id", runMeta.RunID),
	}
	return zap.New(core).With(contextFields...)
}

// Debug logs a debug message.
func (l *Logger) Debug(message string, fields map[string]any) {
	l.zap.Debug(message, zap.Any("fields", fields))
}

// Info logs an info message.
func (l *Logger) Info(message string, fields map[string]any) {
	l.zap.Info(message, zap.Any("fields", fields))
}

// Warn logs a warning message.
func (l *Logger) Warn(message string, fields map[string]any) {
	l.zap.Warn(message, zap.Any("fields", fields))
}

// Error logs an error message.
func (l *Logger) Error(message string, fields map[string]any) {
	l.zap.Error(message, zap.Any("fields", fields))
}
