package calendar

import (
	"context"
	"fmt"

	"racecarr/internal/media"
	"racecarr/internal/store"
)

// RefreshSeason fetches the year's schedule and replaces the stored season
// rounds with it, returning the refreshed season including its rounds.
func (c *Client) RefreshSeason(ctx context.Context, st *store.Store, year int) (*media.Season, error) {
	rounds, err := c.FetchSeason(ctx, year)
	if err != nil {
		return nil, err
	}

	season, err := st.UpsertSeason(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("upsert season: %w", err)
	}

	if err := st.ReplaceSeasonRounds(ctx, season.ID, rounds); err != nil {
		return nil, fmt.Errorf("replace season rounds: %w", err)
	}

	season, err = st.GetSeasonByYear(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("reload season: %w", err)
	}
	stored, err := st.RoundsForSeason(ctx, season.ID)
	if err != nil {
		return nil, fmt.Errorf("reload season rounds: %w", err)
	}
	season.Rounds = stored
	return season, nil
}
