package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/justapithecus/lode/lode"
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/assay/archive"
	"github.com/pithecene-io/assay/cli/render"
	"github.com/pithecene-io/assay/cli/tui"
	"github.com/pithecene-io/assay/history"
	"github.com/pithecene-io/assay/types"
)

// InspectCommand returns the inspect command.
// Inspect returns a deep view of a single run result, read from the
// history spool or from archive storage.
func InspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Inspect a single run result by ID (default: most recent)",
		ArgsUsage: "[run-id]",
		Flags: append(ReadOnlyFlags(),
			SpoolFlag,
			&cli.StringFlag{Name: "storage-backend", Usage: "Archive backend: fs or s3"},
			&cli.StringFlag{Name: "storage-path", Usage: "Archive path (fs: directory, s3: bucket/prefix)"},
			&cli.StringFlag{Name: "storage-region", Usage: "AWS region for S3 backend"},
			&cli.StringFlag{Name: "metric", Usage: "Filter archive reads by metric partition"},
		),
		Action: inspectAction,
	}
}

func inspectAction(c *cli.Context) error {
	runID := c.Args().First()

	backend := c.String("storage-backend")
	path := c.String("storage-path")

	if backend != "" || path != "" {
		if backend == "" || path == "" {
			return fmt.Errorf("both --storage-backend and --storage-path are required for archive reads")
		}
		return inspectFromArchive(c, backend, path, runID)
	}

	spoolPath := c.String("spool")
	if spoolPath == "" {
		return cli.Exit("--spool or --storage-backend/--storage-path required", 1)
	}

	record, err := findSpoolRecord(spoolPath, runID)
	if err != nil {
		return err
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	if c.Bool("tui") {
		return r.RenderTUI(tui.ViewInspectResult, record)
	}

	return r.Render(record)
}

// findSpoolRecord returns the result record for runID, or the most recent
// record when runID is empty.
func findSpoolRecord(spoolPath, runID string) (*types.ResultRecord, error) {
	entries, err := history.NewSpool(spoolPath).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read history spool: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("history spool is empty: %s", spoolPath)
	}

	if runID == "" {
		return &entries[len(entries)-1].Record, nil
	}
	// Newest entry wins when a run ID was reused.
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].RunID == runID {
			return &entries[i].Record, nil
		}
	}
	return nil, fmt.Errorf("run not found in spool: %s", runID)
}

// openReadDataset creates an archive dataset for reading based on CLI flags.
func openReadDataset(backend, path, region string) (lode.Dataset, error) {
	switch backend {
	case "fs":
		return archive.OpenReadDataset(archive.Dataset, path)
	case "s3":
		bucket, prefix := archive.ParseS3Path(path)
		return archive.OpenReadDatasetS3(archive.Dataset, archive.S3Config{Bucket: bucket, Prefix: prefix, Region: region})
	default:
		return nil, fmt.Errorf("unsupported storage-backend: %s (must be fs or s3)", backend)
	}
}

func inspectFromArchive(c *cli.Context, backend, path, runID string) error {
	ds, err := openReadDataset(backend, path, c.String("storage-region"))
	if err != nil {
		return fmt.Errorf("failed to initialize archive reader: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	record, err := archive.QueryLatestResult(ctx, ds, runID, c.String("metric"))
	if err != nil {
		return fmt.Errorf("failed to read result from archive: %w", err)
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	if c.Bool("tui") {
		return fmt.Errorf("--tui is not supported for archive reads")
	}

	return r.Render(record)
}
