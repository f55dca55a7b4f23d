package main

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"racecarr/internal/media"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var types string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search enabled indexers for a release",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			query.Set("q", strings.Join(args, " "))
			if limit > 0 {
				query.Set("limit", strconv.Itoa(limit))
			}
			if trimmed := strings.TrimSpace(types); trimmed != "" {
				query.Set("types", trimmed)
			}

			var results []media.Candidate
			if err := ctx.client().get(cmd.Context(), "/api/search", query, &results); err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, results)
			}

			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(out, "No results")
				return nil
			}
			rows := make([][]string, 0, len(results))
			for _, candidate := range results {
				score := "-"
				if candidate.Score != nil {
					score = strconv.Itoa(*candidate.Score)
				}
				rows = append(rows, []string{
					candidate.Title,
					candidate.Indexer,
					sessionLabel(candidate.EventType),
					candidate.Quality,
					formatSize(candidate.SizeMB),
					score,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Title", "Indexer", "Session", "Quality", "Size", "Score"}, rows, 4, 5))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum results per indexer")
	cmd.Flags().StringVar(&types, "types", "", "Comma-separated session types to keep")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
