package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"racecarr/internal/store"
)

func newDownloaderCommand(ctx *commandContext) *cobra.Command {
	downloaderCmd := &cobra.Command{
		Use:   "downloader",
		Short: "Manage download clients",
	}

	downloaderCmd.AddCommand(newDownloaderListCommand(ctx))
	downloaderCmd.AddCommand(newDownloaderAddCommand(ctx))
	downloaderCmd.AddCommand(newDownloaderRemoveCommand(ctx))
	downloaderCmd.AddCommand(newDownloaderTestCommand(ctx))

	return downloaderCmd
}

func newDownloaderListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configured download clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			var downloaders []store.Downloader
			if err := ctx.client().get(cmd.Context(), "/api/downloaders", nil, &downloaders); err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, downloaders)
			}

			out := cmd.OutOrStdout()
			if len(downloaders) == 0 {
				fmt.Fprintln(out, "No download clients configured")
				return nil
			}
			rows := make([][]string, 0, len(downloaders))
			for _, dl := range downloaders {
				rows = append(rows, []string{
					strconv.FormatInt(dl.ID, 10),
					dl.Name,
					dl.Type,
					dl.APIURL,
					dl.Category,
					yesNo(dl.Enabled),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Name", "Type", "API URL", "Category", "Enabled"}, rows, 0))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newDownloaderAddCommand(ctx *commandContext) *cobra.Command {
	var apiKey string
	var category string
	var priority int

	cmd := &cobra.Command{
		Use:   "add <name> <type> <api-url>",
		Short: "Add a download client (type sabnzbd or nzbget)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{
				"name":    strings.TrimSpace(args[0]),
				"type":    strings.ToLower(strings.TrimSpace(args[1])),
				"api_url": strings.TrimSpace(args[2]),
			}
			if apiKey != "" {
				body["api_key"] = apiKey
			}
			if category != "" {
				body["category"] = category
			}
			if priority != 0 {
				body["priority"] = priority
			}
			var created store.Downloader
			if err := ctx.client().post(cmd.Context(), "/api/downloaders", body, &created); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Downloader %d (%s) added\n", created.ID, created.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "Download client API key")
	cmd.Flags().StringVar(&category, "category", "", "Download category")
	cmd.Flags().IntVar(&priority, "priority", 0, "Queue priority")
	return cmd
}

func newDownloaderRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a download client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid downloader id %q", args[0])
			}
			if err := ctx.client().delete(cmd.Context(),
				fmt.Sprintf("/api/downloaders/%d", id)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Downloader %d removed\n", id)
			return nil
		},
	}
}

func newDownloaderTestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test <id>",
		Short: "Probe download client connectivity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid downloader id %q", args[0])
			}
			var result struct {
				OK      bool   `json:"ok"`
				Message string `json:"message"`
			}
			if err := ctx.client().post(cmd.Context(),
				fmt.Sprintf("/api/downloaders/%d/test", id), nil, &result); err != nil {
				return err
			}
			if result.OK {
				fmt.Fprintf(cmd.OutOrStdout(), "OK: %s\n", result.Message)
				return nil
			}
			return fmt.Errorf("downloader test failed: %s", result.Message)
		},
	}
}
