package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/plsort/internal/formatter"
)

func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recorded playlist rewrites, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to show (0 for all)",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "csv",
				Usage: "Print CSV, including each run's original track IDs",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the CSV export to this file instead of printing",
			},
		},
		Action: r.History,
	}
}

// History prints the rewrite journal as a table, as CSV, or writes the CSV export to a file.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	journal, err := r.openJournal()
	if err != nil {
		return err
	}

	runs, err := journal.Recent(int(cmd.Int("limit")))
	if err != nil {
		return fmt.Errorf("failed to read rewrite journal: %w", err)
	}
	r.logger.Debug("loaded rewrite runs", "count", len(runs))

	if path := cmd.String("output"); path != "" {
		written, err := formatter.WriteRunsCSV(runs, path)
		if err != nil {
			return err
		}
		return r.writePlain("%s\n", r.palette.OK(fmt.Sprintf("Exported %d runs to %s", len(runs), written)))
	}

	if cmd.Bool("csv") {
		data, err := formatter.ExportRunsToCSV(runs)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	}

	return r.writePlain("%s", formatter.FormatRunsText(runs))
}
