package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeldaryernazarov/NestVision/internal/api"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var (
		fileNameFlag  string
		messageIDFlag int64
		categoryFlag  string
		recordedFlag  string
	)

	cmd := &cobra.Command{
		Use:   "process <file-id>",
		Short: "Ingest a feed recording by its file id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			resp, err := client.Process(api.ProcessRequest{
				FileID:           args[0],
				FileName:         fileNameFlag,
				MessageID:        messageIDFlag,
				Category:         categoryFlag,
				RecordedDateTime: recordedFlag,
			})
			if err != nil {
				return err
			}
			if !resp.Success {
				return fmt.Errorf("processing failed: %s", resp.Message)
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
			return nil
		},
	}

	cmd.Flags().StringVar(&fileNameFlag, "file-name", "", "Recording file name")
	cmd.Flags().Int64Var(&messageIDFlag, "message-id", 0, "Feed message id")
	cmd.Flags().StringVar(&categoryFlag, "category", "", "Category label, classified when omitted")
	cmd.Flags().StringVar(&recordedFlag, "recorded", "", "Recorded time hint (DD-MM-YYYY_HH-MM-SS)")
	return cmd
}
