package cmd

import (
	"errors"
	"flag"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/assay/adapter/redis"
	"github.com/pithecene-io/assay/adapter/webhook"
	"github.com/pithecene-io/assay/config"
	"github.com/pithecene-io/assay/fault"
	"github.com/pithecene-io/assay/types"
)

// newSinkTestContext builds a *cli.Context with the run command's sink flags
// registered. flags maps flag names to explicitly set string values.
func newSinkTestContext(t *testing.T, flags map[string]string) *cli.Context {
	t.Helper()
	app := cli.NewApp()
	app.Flags = []cli.Flag{
		&cli.StringFlag{Name: "history"},
		&cli.StringFlag{Name: "archive-backend"},
		&cli.StringFlag{Name: "archive-path"},
		&cli.StringFlag{Name: "archive-s3-region"},
		&cli.StringFlag{Name: "adapter"},
		&cli.StringFlag{Name: "adapter-url"},
		&cli.StringFlag{Name: "adapter-channel"},
		&cli.DurationFlag{Name: "adapter-timeout"},
		&cli.IntFlag{Name: "adapter-retries", Value: -1},
	}

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.String("history", "", "")
	fs.String("archive-backend", "", "")
	fs.String("archive-path", "", "")
	fs.String("archive-s3-region", "", "")
	fs.String("adapter", "", "")
	fs.String("adapter-url", "", "")
	fs.String("adapter-channel", "", "")
	fs.Duration("adapter-timeout", 0, "")
	fs.Int("adapter-retries", -1, "")

	for name, val := range flags {
		if err := fs.Set(name, val); err != nil {
			t.Fatalf("failed to set flag %s: %v", name, err)
		}
	}
	return cli.NewContext(app, fs, nil)
}

// --- exit code mapping ---

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, exitSuccess},
		{"computation failure", fault.New(fault.ErrComputation, fault.StageCompute, "value", errors.New("boom")), exitComputeFailure},
		{"output write failure", fault.New(fault.ErrOutputWrite, fault.StageReport, "/out.json", errors.New("denied")), exitReportFailure},
		{"input not found", fault.New(fault.ErrInputNotFound, fault.StageLoad, "/in.csv", errors.New("no such file")), exitLoadFailure},
		{"parse failure", fault.New(fault.ErrParse, fault.StageLoad, "/in.csv", errors.New("bad csv")), exitLoadFailure},
		{"schema failure", fault.New(fault.ErrSchema, fault.StageLoad, "value", errors.New("column missing")), exitLoadFailure},
		{"unsupported metric", fault.New(fault.ErrUnsupportedMetric, fault.StageLoad, "median", errors.New("unknown")), exitLoadFailure},
		{"plain error", errors.New("something else"), exitLoadFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitCodeContractValues(t *testing.T) {
	if exitSuccess != 0 {
		t.Errorf("exitSuccess should be 0, got %d", exitSuccess)
	}
	if exitComputeFailure != 1 {
		t.Errorf("exitComputeFailure should be 1, got %d", exitComputeFailure)
	}
	if exitLoadFailure != 2 {
		t.Errorf("exitLoadFailure should be 2, got %d", exitLoadFailure)
	}
	if exitReportFailure != 3 {
		t.Errorf("exitReportFailure should be 3, got %d", exitReportFailure)
	}
}

func TestFailedStage(t *testing.T) {
	staged := fault.New(fault.ErrComputation, fault.StageCompute, "value", errors.New("boom"))
	if got := failedStage(staged); got != fault.StageCompute {
		t.Errorf("failedStage = %q, want %q", got, fault.StageCompute)
	}
	if got := failedStage(errors.New("plain")); got != "run" {
		t.Errorf("failedStage(plain) = %q, want run", got)
	}
}

// --- sink resolution ---

func TestResolveSinks_NilConfig(t *testing.T) {
	c := newSinkTestContext(t, nil)

	choice := resolveSinks(c, nil)
	if choice.historyPath != "" || choice.archiveBackend != "" || choice.adapterType != "" {
		t.Errorf("empty flags and nil config should yield zero choice, got %+v", choice)
	}
	if choice.adapterRetries != -1 {
		t.Errorf("adapterRetries = %d, want -1 (use default)", choice.adapterRetries)
	}
}

func TestResolveSinks_ConfigDefaults(t *testing.T) {
	c := newSinkTestContext(t, nil)
	retries := 5
	cfg := &config.Config{
		History: config.HistoryConfig{Path: "/var/assay/history.spool"},
		Archive: config.ArchiveConfig{Backend: "s3", Path: "my-bucket/assay", Region: "eu-west-1"},
		Adapter: config.AdapterConfig{
			Type:    "webhook",
			URL:     "https://hooks.example.com/assay",
			Headers: map[string]string{"X-Api-Key": "secret"},
			Timeout: config.Duration{Duration: 15 * time.Second},
			Retries: &retries,
		},
	}

	choice := resolveSinks(c, cfg)
	if choice.historyPath != "/var/assay/history.spool" {
		t.Errorf("historyPath = %q", choice.historyPath)
	}
	if choice.archiveBackend != "s3" || choice.archivePath != "my-bucket/assay" || choice.archiveRegion != "eu-west-1" {
		t.Errorf("archive choice = %+v", choice)
	}
	if choice.adapterType != "webhook" || choice.adapterURL != "https://hooks.example.com/assay" {
		t.Errorf("adapter choice = %+v", choice)
	}
	if choice.adapterHeaders["X-Api-Key"] != "secret" {
		t.Errorf("adapterHeaders = %v", choice.adapterHeaders)
	}
	if choice.adapterTimeout != 15*time.Second {
		t.Errorf("adapterTimeout = %v, want 15s", choice.adapterTimeout)
	}
	if choice.adapterRetries != 5 {
		t.Errorf("adapterRetries = %d, want 5", choice.adapterRetries)
	}
}

func TestResolveSinks_FlagsOverrideConfig(t *testing.T) {
	c := newSinkTestContext(t, map[string]string{
		"history":         "/cli/history.spool",
		"archive-backend": "fs",
		"archive-path":    "/cli/archive",
		"adapter":         "redis",
		"adapter-url":     "redis://localhost:6379",
		"adapter-channel": "ci:results",
		"adapter-timeout": "30s",
		"adapter-retries": "1",
	})
	retries := 5
	cfg := &config.Config{
		History: config.HistoryConfig{Path: "/cfg/history.spool"},
		Archive: config.ArchiveConfig{Backend: "s3", Path: "bucket/prefix", Region: "us-east-1"},
		Adapter: config.AdapterConfig{
			Type:    "webhook",
			URL:     "https://cfg.example.com",
			Timeout: config.Duration{Duration: 15 * time.Second},
			Retries: &retries,
		},
	}

	choice := resolveSinks(c, cfg)
	if choice.historyPath != "/cli/history.spool" {
		t.Errorf("historyPath = %q, CLI should win", choice.historyPath)
	}
	if choice.archiveBackend != "fs" || choice.archivePath != "/cli/archive" {
		t.Errorf("archive choice = %+v, CLI should win", choice)
	}
	if choice.adapterType != "redis" || choice.adapterURL != "redis://localhost:6379" {
		t.Errorf("adapter choice = %+v, CLI should win", choice)
	}
	if choice.adapterChannel != "ci:results" {
		t.Errorf("adapterChannel = %q", choice.adapterChannel)
	}
	if choice.adapterTimeout != 30*time.Second {
		t.Errorf("adapterTimeout = %v, want 30s", choice.adapterTimeout)
	}
	if choice.adapterRetries != 1 {
		t.Errorf("adapterRetries = %d, want 1", choice.adapterRetries)
	}
}

func TestResolveSinks_ZeroRetriesFlagWins(t *testing.T) {
	c := newSinkTestContext(t, map[string]string{"adapter-retries": "0"})
	retries := 5
	cfg := &config.Config{Adapter: config.AdapterConfig{Retries: &retries}}

	choice := resolveSinks(c, cfg)
	if choice.adapterRetries != 0 {
		t.Errorf("adapterRetries = %d, want 0 (explicit flag wins)", choice.adapterRetries)
	}
}

// --- collector ---

func TestNewCollector_NilConfig(t *testing.T) {
	runMeta := &types.RunMeta{RunID: "run-x", StartedAt: time.Now()}
	collector := newCollector(nil, runMeta)
	if collector == nil {
		t.Fatal("collector should be usable even without a config")
	}
	collector.IncMetricComputed()
	if snap := collector.Snapshot(); snap.MetricsComputed != 1 {
		t.Errorf("MetricsComputed = %d, want 1", snap.MetricsComputed)
	}
}

// --- archive construction ---

func TestBuildArchive_NoneConfigured(t *testing.T) {
	client, err := buildArchive(sinkChoice{}, nil, &types.RunMeta{RunID: "r"}, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client != nil {
		t.Error("no archive path should yield nil client")
	}
}

func TestBuildArchive_FS(t *testing.T) {
	choice := sinkChoice{archiveBackend: "fs", archivePath: t.TempDir()}
	cfg := &config.Config{Metric: "signal_rate"}

	client, err := buildArchive(choice, cfg, &types.RunMeta{RunID: "run-1"}, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client == nil {
		t.Fatal("expected a client")
	}
	if err := client.Close(); err != nil {
		t.Errorf("close failed: %v", err)
	}
}

func TestBuildArchive_EmptyBackendDefaultsToFS(t *testing.T) {
	choice := sinkChoice{archivePath: t.TempDir()}

	client, err := buildArchive(choice, nil, &types.RunMeta{RunID: "run-1"}, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client == nil {
		t.Fatal("expected a client")
	}
	_ = client.Close()
}

func TestBuildArchive_UnknownBackend(t *testing.T) {
	choice := sinkChoice{archiveBackend: "gcs", archivePath: "/tmp"}

	_, err := buildArchive(choice, nil, &types.RunMeta{RunID: "r"}, time.Now())
	if err == nil {
		t.Fatal("expected error for unknown backend")
	}
	if !strings.Contains(err.Error(), "gcs") || !strings.Contains(err.Error(), "fs or s3") {
		t.Errorf("error should name the bad backend and valid options, got: %v", err)
	}
}

// --- adapter construction ---

func TestBuildAdapter_NoneConfigured(t *testing.T) {
	adapterImpl, err := buildAdapter(sinkChoice{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if adapterImpl != nil {
		t.Error("no adapter type should yield nil adapter")
	}
}

func TestBuildAdapter_Webhook(t *testing.T) {
	choice := sinkChoice{
		adapterType: "webhook",
		adapterURL:  "https://hooks.example.com/assay",
	}

	adapterImpl, err := buildAdapter(choice)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := adapterImpl.(*webhook.Adapter); !ok {
		t.Errorf("adapter type = %T, want *webhook.Adapter", adapterImpl)
	}
	_ = adapterImpl.Close()
}

func TestBuildAdapter_WebhookMissingURL(t *testing.T) {
	_, err := buildAdapter(sinkChoice{adapterType: "webhook"})
	if err == nil {
		t.Fatal("expected error for missing URL")
	}
	if !strings.Contains(err.Error(), "URL") {
		t.Errorf("error should mention the missing URL, got: %v", err)
	}
}

func TestBuildAdapter_Redis(t *testing.T) {
	choice := sinkChoice{
		adapterType: "redis",
		adapterURL:  "redis://localhost:6379",
	}

	adapterImpl, err := buildAdapter(choice)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := adapterImpl.(*redis.Adapter); !ok {
		t.Errorf("adapter type = %T, want *redis.Adapter", adapterImpl)
	}
	_ = adapterImpl.Close()
}

func TestBuildAdapter_RedisInvalidURL(t *testing.T) {
	_, err := buildAdapter(sinkChoice{adapterType: "redis", adapterURL: "://not-a-url"})
	if err == nil {
		t.Fatal("expected error for invalid redis URL")
	}
}

func TestBuildAdapter_UnknownType(t *testing.T) {
	_, err := buildAdapter(sinkChoice{adapterType: "kafka", adapterURL: "x"})
	if err == nil {
		t.Fatal("expected error for unknown adapter type")
	}
	if !strings.Contains(err.Error(), "kafka") || !strings.Contains(err.Error(), "webhook or redis") {
		t.Errorf("error should name the bad type and valid options, got: %v", err)
	}
}

func TestBuildAdapter_RetriesOverride(t *testing.T) {
	choice := sinkChoice{
		adapterType:    "webhook",
		adapterURL:     "https://hooks.example.com/assay",
		adapterRetries: 0,
	}

	adapterImpl, err := buildAdapter(choice)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = adapterImpl.Close()
}

// --- required flags ---

func TestRunCommand_RequiredFlags(t *testing.T) {
	app := cli.NewApp()
	app.Commands = []*cli.Command{RunCommand()}
	app.ExitErrHandler = func(*cli.Context, error) {}

	err := app.Run([]string{"assay", "run"})
	if err == nil {
		t.Fatal("expected error for missing required flags")
	}
	if !strings.Contains(err.Error(), "input") {
		t.Errorf("error should mention the missing input flag, got: %v", err)
	}
}
