package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and feed polling status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			status, err := client.Status()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			running := "stopped"
			if status.Running {
				running = fmt.Sprintf("running (pid %d)", status.PID)
			}
			fmt.Fprintf(out, "Daemon:       %s\n", running)
			if status.BotUsername != "" {
				fmt.Fprintf(out, "Feed bot:     @%s\n", status.BotUsername)
			}
			if status.FeedChannel != "" {
				fmt.Fprintf(out, "Feed channel: @%s\n", status.FeedChannel)
			}
			fmt.Fprintf(out, "Catalog DB:   %s\n", status.CatalogDBPath)
			fmt.Fprintf(out, "Feed cursor:  %d\n", status.Poller.Cursor)
			fmt.Fprintf(out, "Ingested:     %d (duplicates %d, skipped %d, failures %d)\n",
				status.Poller.Processed, status.Poller.Duplicates, status.Poller.Skipped, status.Poller.Failures)
			fmt.Fprintf(out, "Recordings:   %d\n", status.Catalog.Total)

			if len(status.Catalog.ByCategory) > 0 {
				categories := make([]string, 0, len(status.Catalog.ByCategory))
				for cat := range status.Catalog.ByCategory {
					categories = append(categories, cat)
				}
				sort.Strings(categories)

				rows := make([][]string, 0, len(categories))
				for _, cat := range categories {
					rows = append(rows, []string{cat, fmt.Sprintf("%d", status.Catalog.ByCategory[cat])})
				}
				fmt.Fprintln(out, renderTable([]string{"CATEGORY", "COUNT"}, rows))
			}
			return nil
		},
	}
}
