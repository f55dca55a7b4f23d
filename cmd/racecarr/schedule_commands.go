package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"racecarr/internal/store"
)

func newScheduleCommand(ctx *commandContext) *cobra.Command {
	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Manage scheduled searches",
	}

	scheduleCmd.AddCommand(newScheduleListCommand(ctx))
	scheduleCmd.AddCommand(newScheduleAddCommand(ctx))
	scheduleCmd.AddCommand(newSchedulePauseCommand(ctx, true))
	scheduleCmd.AddCommand(newSchedulePauseCommand(ctx, false))
	scheduleCmd.AddCommand(newScheduleRemoveCommand(ctx))
	scheduleCmd.AddCommand(newScheduleRunCommand(ctx))

	return scheduleCmd
}

func parseScheduleID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid schedule id %q", arg)
	}
	return id, nil
}

func newScheduleListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List scheduled searches",
		RunE: func(cmd *cobra.Command, args []string) error {
			var schedules []store.ScheduledSearch
			if err := ctx.client().get(cmd.Context(), "/api/schedules", nil, &schedules); err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, schedules)
			}

			out := cmd.OutOrStdout()
			if len(schedules) == 0 {
				fmt.Fprintln(out, "No scheduled searches")
				return nil
			}
			rows := make([][]string, 0, len(schedules))
			for _, item := range schedules {
				detail := item.LastError
				if detail == "" && item.NZBTitle != "" {
					detail = item.NZBTitle
				}
				rows = append(rows, []string{
					strconv.FormatInt(item.ID, 10),
					strconv.FormatInt(item.RoundID, 10),
					sessionLabel(item.EventType),
					formatStatusLabel(string(item.Status)),
					formatTime(item.NextRunAt),
					detail,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Round", "Session", "Status", "Next Run", "Detail"}, rows, 0, 1))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newScheduleAddCommand(ctx *commandContext) *cobra.Command {
	var downloaderID int64

	cmd := &cobra.Command{
		Use:   "add <round-id> <session>",
		Short: "Schedule a session for automatic download",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			roundID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || roundID <= 0 {
				return fmt.Errorf("invalid round id %q", args[0])
			}
			body := map[string]any{
				"round_id":   roundID,
				"event_type": strings.ToLower(strings.TrimSpace(args[1])),
			}
			if downloaderID > 0 {
				body["downloader_id"] = downloaderID
			}
			var item store.ScheduledSearch
			if err := ctx.client().post(cmd.Context(), "/api/schedules", body, &item); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schedule %d created for round %d %s (next run %s)\n",
				item.ID, item.RoundID, sessionLabel(item.EventType), formatTime(item.NextRunAt))
			return nil
		},
	}

	cmd.Flags().Int64Var(&downloaderID, "downloader", 0, "Downloader ID to use for this schedule")
	return cmd
}

func newSchedulePauseCommand(ctx *commandContext, pause bool) *cobra.Command {
	use, short, status := "pause <id>", "Pause a scheduled search", "paused"
	if !pause {
		use, short, status = "resume <id>", "Resume a paused scheduled search", "pending"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseScheduleID(args[0])
			if err != nil {
				return err
			}
			var item store.ScheduledSearch
			if err := ctx.client().patch(cmd.Context(),
				fmt.Sprintf("/api/schedules/%d", id),
				map[string]string{"status": status}, &item); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schedule %d is now %s\n", item.ID, item.Status)
			return nil
		},
	}
}

func newScheduleRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a scheduled search",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseScheduleID(args[0])
			if err != nil {
				return err
			}
			if err := ctx.client().delete(cmd.Context(),
				fmt.Sprintf("/api/schedules/%d", id)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schedule %d removed\n", id)
			return nil
		},
	}
}

func newScheduleRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run <id>",
		Short: "Run a scheduled search immediately",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseScheduleID(args[0])
			if err != nil {
				return err
			}
			var item store.ScheduledSearch
			if err := ctx.client().post(cmd.Context(),
				fmt.Sprintf("/api/schedules/%d/run", id), nil, &item); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Schedule %d ran, status %s\n", item.ID, formatStatusLabel(string(item.Status)))
			if item.LastError != "" {
				fmt.Fprintf(out, "Detail: %s\n", item.LastError)
			}
			return nil
		},
	}
}
