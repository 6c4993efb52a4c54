package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show task counts by status and overdue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := ctx.apiClient().Stats(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, stats)
			}

			colorize := ctx.colorize(cmd.OutOrStdout())
			overdue := strconv.Itoa(stats.Overdue)
			if stats.Overdue > 0 {
				overdue = paint(overdue, ansiRed, colorize)
			}
			rows := [][]string{
				{"Total", strconv.Itoa(stats.Total)},
				{"Open", strconv.Itoa(stats.Open)},
				{"In progress", strconv.Itoa(stats.InProgress)},
				{"Completed", strconv.Itoa(stats.Completed)},
				{"Overdue", overdue},
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable(
				[]string{"Metric", "Count"},
				rows,
				[]columnAlignment{alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}
