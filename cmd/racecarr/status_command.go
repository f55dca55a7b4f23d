package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

type daemonStatus struct {
	Status    string         `json:"status"`
	Database  string         `json:"database"`
	Schedules map[string]int `json:"schedules"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status and schedule counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			var status daemonStatus
			if err := ctx.client().get(cmd.Context(), "/api/status", nil, &status); err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, status)
			}

			out := cmd.OutOrStdout()
			daemonLine := status.Status
			if isTerminal(out) {
				daemonLine = "\x1b[32m" + daemonLine + "\x1b[0m"
			}
			fmt.Fprintf(out, "Daemon:   %s\n", daemonLine)
			fmt.Fprintf(out, "Database: %s\n", status.Database)

			keys := make([]string, 0, len(status.Schedules))
			for key := range status.Schedules {
				keys = append(keys, key)
			}
			sort.Strings(keys)

			rows := make([][]string, 0, len(keys))
			for _, key := range keys {
				rows = append(rows, []string{formatStatusLabel(key), fmt.Sprintf("%d", status.Schedules[key])})
			}
			fmt.Fprintln(out, renderTable([]string{"Status", "Count"}, rows, 1))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
