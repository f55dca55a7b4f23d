package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"racecarr/internal/media"
)

func newSeasonCommand(ctx *commandContext) *cobra.Command {
	seasonCmd := &cobra.Command{
		Use:   "season",
		Short: "Manage tracked seasons",
	}

	seasonCmd.AddCommand(newSeasonListCommand(ctx))
	seasonCmd.AddCommand(newSeasonAddCommand(ctx))
	seasonCmd.AddCommand(newSeasonRefreshCommand(ctx))
	seasonCmd.AddCommand(newSeasonRoundsCommand(ctx))
	seasonCmd.AddCommand(newSeasonHideCommand(ctx, true))
	seasonCmd.AddCommand(newSeasonHideCommand(ctx, false))

	return seasonCmd
}

func parseYearArg(arg string) (int, error) {
	year, err := strconv.Atoi(arg)
	if err != nil || year < 1950 || year > 2100 {
		return 0, fmt.Errorf("invalid year %q", arg)
	}
	return year, nil
}

func newSeasonListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tracked seasons",
		RunE: func(cmd *cobra.Command, args []string) error {
			var seasons []media.Season
			if err := ctx.client().get(cmd.Context(), "/api/seasons", nil, &seasons); err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, seasons)
			}

			out := cmd.OutOrStdout()
			if len(seasons) == 0 {
				fmt.Fprintln(out, "No seasons tracked")
				return nil
			}
			rows := make([][]string, 0, len(seasons))
			for _, season := range seasons {
				rows = append(rows, []string{
					strconv.Itoa(season.Year),
					yesNo(season.Hidden),
					formatTime(season.LastRefreshed),
				})
			}
			fmt.Fprintln(out, renderTable([]string{"Year", "Hidden", "Last Refreshed"}, rows, 0))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newSeasonAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <year>",
		Short: "Track a season and fetch its calendar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := parseYearArg(args[0])
			if err != nil {
				return err
			}
			var season media.Season
			if err := ctx.client().post(cmd.Context(), "/api/seasons",
				map[string]int{"year": year}, &season); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Season %d added with %d rounds\n", season.Year, len(season.Rounds))
			return nil
		},
	}
}

func newSeasonRefreshCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh <year>",
		Short: "Refresh a season's calendar from the schedule source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := parseYearArg(args[0])
			if err != nil {
				return err
			}
			var season media.Season
			if err := ctx.client().post(cmd.Context(),
				fmt.Sprintf("/api/seasons/%d/refresh", year), nil, &season); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Season %d refreshed, %d rounds\n", season.Year, len(season.Rounds))
			return nil
		},
	}
}

func newSeasonRoundsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "rounds <year>",
		Short: "List the rounds of a season",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := parseYearArg(args[0])
			if err != nil {
				return err
			}
			var rounds []media.Round
			if err := ctx.client().get(cmd.Context(),
				fmt.Sprintf("/api/seasons/%d/rounds", year), nil, &rounds); err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, rounds)
			}

			out := cmd.OutOrStdout()
			if len(rounds) == 0 {
				fmt.Fprintln(out, "No rounds")
				return nil
			}
			rows := make([][]string, 0, len(rounds))
			for _, round := range rounds {
				race := round.EventStart("race")
				rows = append(rows, []string{
					strconv.FormatInt(round.ID, 10),
					strconv.Itoa(round.RoundNumber),
					round.Name,
					round.Circuit,
					formatTime(race),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Round", "Name", "Circuit", "Race Start"}, rows, 0, 1))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newSeasonHideCommand(ctx *commandContext, hide bool) *cobra.Command {
	use, short := "hide <year>", "Hide a season from scheduling"
	if !hide {
		use, short = "unhide <year>", "Unhide a season"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := parseYearArg(args[0])
			if err != nil {
				return err
			}
			if err := ctx.client().post(cmd.Context(),
				fmt.Sprintf("/api/seasons/%d/hidden", year),
				map[string]bool{"hidden": hide}, nil); err != nil {
				return err
			}
			state := "hidden"
			if !hide {
				state = "visible"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Season %d is now %s\n", year, state)
			return nil
		},
	}
}
