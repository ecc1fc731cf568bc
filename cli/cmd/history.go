package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/assay/cli/render"
	"github.com/pithecene-io/assay/history"
)

// HistoryCommand returns the history command.
// History lists past run records from the local spool file.
func HistoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List past runs from the history spool",
		Flags: append(ReadOnlyFlags(),
			SpoolFlag,
			&cli.IntFlag{
				Name:  "last",
				Usage: "Show only the last N runs (0 = all)",
			},
			&cli.StringFlag{
				Name:  "metric",
				Usage: "Filter by metric name",
			},
		),
		Action: historyAction,
	}
}

// historyRow is the flattened list view of a spool entry.
type historyRow struct {
	RunID      string   `json:"run_id"`
	RecordedAt string   `json:"recorded_at"`
	Metric     string   `json:"metric"`
	Value      *float64 `json:"value,omitempty"`
	Rows       int      `json:"rows_processed"`
	LatencyMS  int64    `json:"latency_ms"`
	Status     string   `json:"status"`
}

func historyAction(c *cli.Context) error {
	spoolPath := c.String("spool")
	if spoolPath == "" {
		return cli.Exit("--spool is required", 1)
	}

	entries, err := history.NewSpool(spoolPath).ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read history spool: %w", err)
	}

	rows := make([]historyRow, 0, len(entries))
	metricFilter := c.String("metric")
	for _, entry := range entries {
		metric := ""
		if entry.Record.Metric != nil {
			metric = *entry.Record.Metric
		}
		if metricFilter != "" && metric != metricFilter {
			continue
		}
		rows = append(rows, historyRow{
			RunID:      entry.RunID,
			RecordedAt: entry.RecordedAt,
			Metric:     metric,
			Value:      entry.Record.Value,
			Rows:       entry.Record.RowsProcessed,
			LatencyMS:  entry.Record.LatencyMS,
			Status:     string(entry.Record.Status),
		})
	}

	if last := c.Int("last"); last > 0 && len(rows) > last {
		rows = rows[len(rows)-last:]
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	if c.Bool("tui") {
		return fmt.Errorf("--tui is not supported for history (use stats --tui)")
	}

	return r.Render(rows)
}
