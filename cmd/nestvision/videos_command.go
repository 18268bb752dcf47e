package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVideosCommand(ctx *commandContext) *cobra.Command {
	var categoryFlag string

	cmd := &cobra.Command{
		Use:   "videos",
		Short: "List catalogued recordings",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			videos, err := client.Videos(categoryFlag)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(videos) == 0 {
				fmt.Fprintln(out, "No recordings catalogued.")
				return nil
			}

			rows := make([][]string, 0, len(videos))
			for _, video := range videos {
				rows = append(rows, []string{
					fmt.Sprintf("%d", video.ID),
					video.FileName,
					video.Category,
					video.RecordedAt,
					formatSize(video.SizeBytes),
				})
			}
			fmt.Fprintln(out, renderTable([]string{"ID", "FILE", "CATEGORY", "RECORDED", "SIZE"}, rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&categoryFlag, "category", "", "Filter by category (e.g. SUDDEN_EVENT)")
	return cmd
}

func formatSize(size *int64) string {
	if size == nil {
		return "-"
	}
	value := float64(*size)
	for _, unit := range []string{"B", "KiB", "MiB", "GiB"} {
		if value < 1024 || unit == "GiB" {
			if unit == "B" {
				return fmt.Sprintf("%d %s", *size, unit)
			}
			return fmt.Sprintf("%.1f %s", value, unit)
		}
		value /= 1024
	}
	return "-"
}
