package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/assay/adapter"
	"github.com/pithecene-io/assay/adapter/redis"
	"github.com/pithecene-io/assay/adapter/webhook"
	"github.com/pithecene-io/assay/archive"
	"github.com/pithecene-io/assay/config"
	"github.com/pithecene-io/assay/fault"
	"github.com/pithecene-io/assay/history"
	"github.com/pithecene-io/assay/iox"
	"github.com/pithecene-io/assay/log"
	"github.com/pithecene-io/assay/metrics"
	"github.com/pithecene-io/assay/runtime"
	"github.com/pithecene-io/assay/types"
)

// Exit codes for assay run.
const (
	exitSuccess        = 0
	exitComputeFailure = 1
	exitLoadFailure    = 2
	exitReportFailure  = 3
)

// RunCommand returns the run command, the only command that executes work.
func RunCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Execute a single metric job (the only execution entrypoint)",
		Flags: []cli.Flag{
			// Core pipeline flags
			&cli.StringFlag{
				Name:     "input",
				Usage:    "Path to input CSV file",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "config",
				Usage:    "Path to YAML config file",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "output",
				Usage:    "Path to output metrics JSON",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "log-file",
				Usage:    "Path to log file",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "run-id",
				Usage: "Run ID (default: derived from start time)",
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "Suppress result output on stdout",
			},
			// History spool flags
			&cli.StringFlag{
				Name:  "history",
				Usage: "Path to run history spool file (optional)",
			},
			// Archive storage flags
			&cli.StringFlag{
				Name:  "archive-backend",
				Usage: "Archive storage backend: fs or s3",
			},
			&cli.StringFlag{
				Name:  "archive-path",
				Usage: "Archive storage path (fs: directory, s3: bucket/prefix)",
			},
			&cli.StringFlag{
				Name:  "archive-s3-region",
				Usage: "AWS region for S3 backend (optional, uses default chain)",
			},
			// Adapter flags
			&cli.StringFlag{
				Name:  "adapter",
				Usage: "Completion event adapter: webhook or redis",
			},
			&cli.StringFlag{
				Name:  "adapter-url",
				Usage: "Adapter endpoint URL",
			},
			&cli.StringFlag{
				Name:  "adapter-channel",
				Usage: "Redis pub/sub channel (redis adapter only)",
			},
			&cli.DurationFlag{
				Name:  "adapter-timeout",
				Usage: "Per-publish timeout",
			},
			&cli.IntFlag{
				Name:  "adapter-retries",
				Usage: "Adapter retry attempts",
				Value: -1, // -1 means "use config/default"
			},
		},
		Action: runAction,
	}
}

// sinkChoice holds the resolved optional-sink configuration after merging
// config-file defaults with CLI flags (flags win).
type sinkChoice struct {
	historyPath    string
	archiveBackend string
	archivePath    string
	archiveRegion  string
	adapterType    string
	adapterURL     string
	adapterHeaders map[string]string
	adapterChannel string
	adapterTimeout time.Duration
	adapterRetries int
}

func runAction(c *cli.Context) error {
	startTime := time.Now()
	runMeta := types.NewRunMeta(c.String("run-id"), startTime)

	// Pre-read the job config for sink defaults only. Parse failures are
	// deliberately ignored here: the orchestrator loads the config again
	// and classifies the failure properly.
	var preCfg *config.Config
	if cfg, err := config.Load(c.String("config")); err == nil {
		preCfg = cfg
	}
	choice := resolveSinks(c, preCfg)

	collector := newCollector(preCfg, runMeta)

	logger, logErr := log.Open(runMeta, c.String("log-file"))
	defer iox.DiscardErr(logger.Close)
	if logErr != nil {
		// A dead log stream never fails the run; report and continue.
		collector.IncLogWriteFailure()
		fmt.Fprintf(os.Stderr, "warning: %v\n", logErr)
	}

	runConfig := &runtime.RunConfig{
		InputPath:  c.String("input"),
		ConfigPath: c.String("config"),
		OutputPath: c.String("output"),
		RunMeta:    runMeta,
		Logger:     logger,
		Collector:  collector,
	}

	if choice.historyPath != "" {
		runConfig.History = history.NewSpool(choice.historyPath)
	}

	if archiveClient, err := buildArchive(choice, preCfg, runMeta, startTime); err != nil {
		logger.Warn("archive disabled", map[string]any{"error": err.Error()})
	} else if archiveClient != nil {
		defer iox.DiscardErr(archiveClient.Close)
		runConfig.Archive = archiveClient
	}

	if adapterImpl, err := buildAdapter(choice); err != nil {
		logger.Warn("adapter disabled", map[string]any{"error": err.Error()})
	} else if adapterImpl != nil {
		defer iox.DiscardErr(adapterImpl.Close)
		runConfig.Adapter = adapterImpl
	}

	orchestrator, err := runtime.NewOrchestrator(runConfig)
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid run config: %v", err), exitLoadFailure)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, runErr := orchestrator.Execute(ctx)

	if !c.Bool("quiet") && result.Record != nil {
		printRecord(result.Record)
	}

	if runErr != nil {
		return cli.Exit(fmt.Sprintf("%s failed: %v", failedStage(runErr), runErr), exitCode(runErr))
	}
	return nil
}

// resolveSinks merges config-file sink defaults with CLI flags.
// CLI flags always override config values.
func resolveSinks(c *cli.Context, cfg *config.Config) sinkChoice {
	choice := sinkChoice{adapterRetries: -1}

	if cfg != nil {
		choice.historyPath = cfg.History.Path
		choice.archiveBackend = cfg.Archive.Backend
		choice.archivePath = cfg.Archive.Path
		choice.archiveRegion = cfg.Archive.Region
		choice.adapterType = cfg.Adapter.Type
		choice.adapterURL = cfg.Adapter.URL
		choice.adapterHeaders = cfg.Adapter.Headers
		choice.adapterChannel = cfg.Adapter.Channel
		choice.adapterTimeout = cfg.Adapter.Timeout.Duration
		if cfg.Adapter.Retries != nil {
			choice.adapterRetries = *cfg.Adapter.Retries
		}
	}

	if v := c.String("history"); v != "" {
		choice.historyPath = v
	}
	if v := c.String("archive-backend"); v != "" {
		choice.archiveBackend = v
	}
	if v := c.String("archive-path"); v != "" {
		choice.archivePath = v
	}
	if v := c.String("archive-s3-region"); v != "" {
		choice.archiveRegion = v
	}
	if v := c.String("adapter"); v != "" {
		choice.adapterType = v
	}
	if v := c.String("adapter-url"); v != "" {
		choice.adapterURL = v
	}
	if v := c.String("adapter-channel"); v != "" {
		choice.adapterChannel = v
	}
	if v := c.Duration("adapter-timeout"); v > 0 {
		choice.adapterTimeout = v
	}
	if v := c.Int("adapter-retries"); v >= 0 {
		choice.adapterRetries = v
	}
	return choice
}

func newCollector(cfg *config.Config, runMeta *types.RunMeta) *metrics.Collector {
	metricName := ""
	if cfg != nil {
		metricName = cfg.Metric
	}
	return metrics.NewCollector(metricName, runMeta.RunID)
}

// buildArchive creates the archive client from the merged sink choice.
// Returns (nil, nil) when no archive is configured.
func buildArchive(choice sinkChoice, cfg *config.Config, runMeta *types.RunMeta, startTime time.Time) (archive.Client, error) {
	if choice.archivePath == "" {
		return nil, nil
	}

	metricName := ""
	if cfg != nil {
		metricName = cfg.Metric
	}
	archiveCfg := archive.Config{
		Dataset: archive.Dataset,
		Metric:  metricName,
		Day:     archive.DeriveDay(startTime),
		RunID:   runMeta.RunID,
	}

	switch choice.archiveBackend {
	case "fs", "":
		return archive.NewFSClient(archiveCfg, choice.archivePath)
	case "s3":
		bucket, prefix := archive.ParseS3Path(choice.archivePath)
		return archive.NewS3Client(archiveCfg, archive.S3Config{
			Bucket: bucket,
			Prefix: prefix,
			Region: choice.archiveRegion,
		})
	default:
		return nil, fmt.Errorf("unknown archive-backend: %s (must be fs or s3)", choice.archiveBackend)
	}
}

// buildAdapter creates the completion event adapter from the merged sink
// choice. Returns (nil, nil) when no adapter is configured.
func buildAdapter(choice sinkChoice) (adapter.Adapter, error) {
	if choice.adapterType == "" {
		return nil, nil
	}

	switch choice.adapterType {
	case "webhook":
		cfg := webhook.Config{
			URL:     choice.adapterURL,
			Headers: choice.adapterHeaders,
			Timeout: choice.adapterTimeout,
			Retries: webhook.DefaultRetries,
		}
		if choice.adapterRetries >= 0 {
			cfg.Retries = choice.adapterRetries
		}
		return webhook.New(cfg)
	case "redis":
		cfg := redis.Config{
			URL:     choice.adapterURL,
			Channel: choice.adapterChannel,
			Timeout: choice.adapterTimeout,
			Retries: redis.DefaultRetries,
		}
		if choice.adapterRetries >= 0 {
			cfg.Retries = choice.adapterRetries
		}
		return redis.New(cfg)
	default:
		return nil, fmt.Errorf("unknown adapter: %s (must be webhook or redis)", choice.adapterType)
	}
}

// exitCode maps a terminal pipeline error to the process exit code.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, fault.ErrComputation):
		return exitComputeFailure
	case errors.Is(err, fault.ErrOutputWrite):
		return exitReportFailure
	default:
		// Loader-stage failures: input, parse, schema, unsupported metric.
		return exitLoadFailure
	}
}

// failedStage names the failing stage for the terminal error message.
func failedStage(err error) string {
	if stage := fault.Stage(err); stage != "" {
		return stage
	}
	return "run"
}

// printRecord mirrors the result record to stdout as indented JSON.
func printRecord(record *types.ResultRecord) {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return
	}
	fmt.Println(string(data))
}
