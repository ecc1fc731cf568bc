package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/assay/cli/render"
	"github.com/pithecene-io/assay/cli/tui"
	"github.com/pithecene-io/assay/history"
)

// StatsCommand returns the stats command.
// Stats returns aggregated, derived facts from the history spool.
func StatsCommand() *cli.Command {
	return &cli.Command{
		Name:   "stats",
		Usage:  "Show aggregated run statistics from the history spool",
		Flags:  append(ReadOnlyFlags(), SpoolFlag),
		Action: statsAction,
	}
}

func statsAction(c *cli.Context) error {
	spoolPath := c.String("spool")
	if spoolPath == "" {
		return cli.Exit("--spool is required", 1)
	}

	entries, err := history.NewSpool(spoolPath).ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read history spool: %w", err)
	}
	stats := history.Aggregate(entries)

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	if c.Bool("tui") {
		return r.RenderTUI(tui.ViewStatsHistory, stats)
	}

	return r.Render(stats)
}
