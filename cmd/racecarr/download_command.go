package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// newDownloadCommand dispatches a user-supplied NZB URL straight to a
// download client, bypassing search and scoring.
func newDownloadCommand(ctx *commandContext) *cobra.Command {
	var title string
	var downloaderID int64

	cmd := &cobra.Command{
		Use:   "download <nzb-url>",
		Short: "Send an NZB URL directly to a download client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nzbURL := strings.TrimSpace(args[0])
			if nzbURL == "" {
				return fmt.Errorf("nzb url is required")
			}
			body := map[string]any{"nzb_url": nzbURL}
			if trimmed := strings.TrimSpace(title); trimmed != "" {
				body["title"] = trimmed
			}
			if downloaderID > 0 {
				body["downloader_id"] = downloaderID
			}

			var result struct {
				Tag string `json:"tag"`
			}
			if err := ctx.client().post(cmd.Context(), "/api/downloads", body, &result); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Download dispatched, tag %s\n", result.Tag)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Display title for the download")
	cmd.Flags().Int64Var(&downloaderID, "downloader", 0, "Downloader ID to use")
	return cmd
}

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification to all configured targets",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result struct {
				OK     bool     `json:"ok"`
				Errors []string `json:"errors"`
			}
			if err := ctx.client().post(cmd.Context(), "/api/notifications/test", nil, &result); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if result.OK {
				fmt.Fprintln(out, "Test notification sent")
				return nil
			}
			for _, failure := range result.Errors {
				fmt.Fprintf(out, "Failed: %s\n", failure)
			}
			return fmt.Errorf("test notification failed")
		},
	}
}
