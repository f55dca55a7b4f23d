package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"racecarr/internal/store"
)

func newIndexerCommand(ctx *commandContext) *cobra.Command {
	indexerCmd := &cobra.Command{
		Use:   "indexer",
		Short: "Manage newznab indexers",
	}

	indexerCmd.AddCommand(newIndexerListCommand(ctx))
	indexerCmd.AddCommand(newIndexerAddCommand(ctx))
	indexerCmd.AddCommand(newIndexerRemoveCommand(ctx))
	indexerCmd.AddCommand(newIndexerTestCommand(ctx))

	return indexerCmd
}

func newIndexerListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configured indexers",
		RunE: func(cmd *cobra.Command, args []string) error {
			var indexers []store.Indexer
			if err := ctx.client().get(cmd.Context(), "/api/indexers", nil, &indexers); err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, indexers)
			}

			out := cmd.OutOrStdout()
			if len(indexers) == 0 {
				fmt.Fprintln(out, "No indexers configured")
				return nil
			}
			rows := make([][]string, 0, len(indexers))
			for _, idx := range indexers {
				rows = append(rows, []string{
					strconv.FormatInt(idx.ID, 10),
					idx.Name,
					idx.APIURL,
					idx.Category,
					yesNo(idx.Enabled),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Name", "API URL", "Category", "Enabled"}, rows, 0))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newIndexerAddCommand(ctx *commandContext) *cobra.Command {
	var apiKey string
	var category string

	cmd := &cobra.Command{
		Use:   "add <name> <api-url>",
		Short: "Add an indexer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{
				"name":    strings.TrimSpace(args[0]),
				"api_url": strings.TrimSpace(args[1]),
			}
			if apiKey != "" {
				body["api_key"] = apiKey
			}
			if category != "" {
				body["category"] = category
			}
			var created store.Indexer
			if err := ctx.client().post(cmd.Context(), "/api/indexers", body, &created); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Indexer %d (%s) added\n", created.ID, created.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "Indexer API key")
	cmd.Flags().StringVar(&category, "category", "", "Newznab category filter")
	return cmd
}

func newIndexerRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove an indexer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid indexer id %q", args[0])
			}
			if err := ctx.client().delete(cmd.Context(),
				fmt.Sprintf("/api/indexers/%d", id)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Indexer %d removed\n", id)
			return nil
		},
	}
}

func newIndexerTestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test <id>",
		Short: "Probe indexer connectivity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid indexer id %q", args[0])
			}
			var result struct {
				OK      bool   `json:"ok"`
				Message string `json:"message"`
			}
			if err := ctx.client().post(cmd.Context(),
				fmt.Sprintf("/api/indexers/%d/test", id), nil, &result); err != nil {
				return err
			}
			if result.OK {
				fmt.Fprintf(cmd.OutOrStdout(), "OK: %s\n", result.Message)
				return nil
			}
			return fmt.Errorf("indexer test failed: %s", result.Message)
		},
	}
}
