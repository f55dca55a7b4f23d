package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"racecarr/internal/media"
)

// UpsertSeason creates a season row for the year if one does not exist and
// returns it.
func (s *Store) UpsertSeason(ctx context.Context, year int) (*media.Season, error) {
	ctx = ensureContext(ctx)
	if _, err := s.execWithRetry(ctx,
		`INSERT INTO seasons (year) VALUES (?) ON CONFLICT(year) DO NOTHING`, year); err != nil {
		return nil, fmt.Errorf("insert season: %w", err)
	}
	return s.GetSeasonByYear(ctx, year)
}

// GetSeasonByYear fetches a season by year, without rounds.
func (s *Store) GetSeasonByYear(ctx context.Context, year int) (*media.Season, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT id, year, hidden, last_refreshed FROM seasons WHERE year = ?`, year)
	season, err := scanSeason(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get season: %w", err)
	}
	return season, nil
}

// ListSeasons returns all seasons ordered by year descending.
func (s *Store) ListSeasons(ctx context.Context) ([]media.Season, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT id, year, hidden, last_refreshed FROM seasons ORDER BY year DESC`)
	if err != nil {
		return nil, fmt.Errorf("list seasons: %w", err)
	}
	defer rows.Close()

	var seasons []media.Season
	for rows.Next() {
		season, err := scanSeason(rows)
		if err != nil {
			return nil, err
		}
		seasons = append(seasons, *season)
	}
	return seasons, rows.Err()
}

// SetSeasonHidden toggles a season's hidden flag and reports whether the
// season exists.
func (s *Store) SetSeasonHidden(ctx context.Context, year int, hidden bool) (bool, error) {
	res, err := s.execWithRetry(ensureContext(ctx),
		`UPDATE seasons SET hidden = ? WHERE year = ?`, boolToInt(hidden), year)
	if err != nil {
		return false, fmt.Errorf("set season hidden: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// SeasonHiddenForRound reports whether the season owning the round is hidden.
func (s *Store) SeasonHiddenForRound(ctx context.Context, roundID int64) (bool, error) {
	var hidden int
	err := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT s.hidden FROM seasons s JOIN rounds r ON r.season_id = s.id WHERE r.id = ?`,
		roundID).Scan(&hidden)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("season hidden for round: %w", err)
	}
	return hidden != 0, nil
}

// ReplaceSeasonRounds atomically replaces the season's rounds and events with
// the provided set and stamps last_refreshed. Scheduled searches referencing
// removed rounds are dropped via foreign keys.
func (s *Store) ReplaceSeasonRounds(ctx context.Context, seasonID int64, rounds []media.Round) error {
	ctx = ensureContext(ctx)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace rounds: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM rounds WHERE season_id = ?`, seasonID); err != nil {
		return fmt.Errorf("clear season rounds: %w", err)
	}

	for _, round := range rounds {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO rounds (season_id, round_number, name, circuit, country)
             VALUES (?, ?, ?, ?, ?)`,
			seasonID, round.RoundNumber, round.Name,
			nullableString(round.Circuit), nullableString(round.Country))
		if err != nil {
			return fmt.Errorf("insert round %d: %w", round.RoundNumber, err)
		}
		roundID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("round insert id: %w", err)
		}
		for _, event := range round.Events {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO events (round_id, type, start_time_utc, end_time_utc)
                 VALUES (?, ?, ?, ?)`,
				roundID, event.Type, nullableTime(event.StartUTC), nullableTime(event.EndUTC)); err != nil {
				return fmt.Errorf("insert event %s: %w", event.Type, err)
			}
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE seasons SET last_refreshed = ? WHERE id = ?`,
		timestamp(time.Now()), seasonID); err != nil {
		return fmt.Errorf("stamp season refresh: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace rounds: %w", err)
	}
	return nil
}

// GetRound fetches a round with its events and the owning season's year.
func (s *Store) GetRound(ctx context.Context, id int64) (*media.Round, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT r.id, r.season_id, s.year, r.round_number, r.name, r.circuit, r.country
         FROM rounds r JOIN seasons s ON s.id = r.season_id WHERE r.id = ?`, id)
	round, err := scanRound(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get round: %w", err)
	}

	events, err := s.roundEvents(ctx, round.ID)
	if err != nil {
		return nil, err
	}
	round.Events = events
	return round, nil
}

// RoundsForSeason returns the season's rounds with events, ordered by round
// number.
func (s *Store) RoundsForSeason(ctx context.Context, seasonID int64) ([]media.Round, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.season_id, s.year, r.round_number, r.name, r.circuit, r.country
         FROM rounds r JOIN seasons s ON s.id = r.season_id
         WHERE r.season_id = ? ORDER BY r.round_number`, seasonID)
	if err != nil {
		return nil, fmt.Errorf("list season rounds: %w", err)
	}
	defer rows.Close()

	var rounds []media.Round
	for rows.Next() {
		round, err := scanRound(rows)
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, *round)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range rounds {
		events, err := s.roundEvents(ctx, rounds[i].ID)
		if err != nil {
			return nil, err
		}
		rounds[i].Events = events
	}
	return rounds, nil
}

func (s *Store) roundEvents(ctx context.Context, roundID int64) ([]media.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, round_id, type, start_time_utc, end_time_utc
         FROM events WHERE round_id = ? ORDER BY start_time_utc`, roundID)
	if err != nil {
		return nil, fmt.Errorf("list round events: %w", err)
	}
	defer rows.Close()

	var events []media.Event
	for rows.Next() {
		var (
			event    media.Event
			startRaw sql.NullString
			endRaw   sql.NullString
		)
		if err := rows.Scan(&event.ID, &event.RoundID, &event.Type, &startRaw, &endRaw); err != nil {
			return nil, err
		}
		event.StartUTC = parseOptionalTime(startRaw.String, startRaw.Valid)
		event.EndUTC = parseOptionalTime(endRaw.String, endRaw.Valid)
		events = append(events, event)
	}
	return events, rows.Err()
}

func scanSeason(scanner interface{ Scan(dest ...any) error }) (*media.Season, error) {
	var (
		season       media.Season
		hidden       int
		refreshedRaw sql.NullString
	)
	if err := scanner.Scan(&season.ID, &season.Year, &hidden, &refreshedRaw); err != nil {
		return nil, err
	}
	season.Hidden = hidden != 0
	season.LastRefreshed = parseOptionalTime(refreshedRaw.String, refreshedRaw.Valid)
	return &season, nil
}

func scanRound(scanner interface{ Scan(dest ...any) error }) (*media.Round, error) {
	var (
		round   media.Round
		circuit sql.NullString
		country sql.NullString
	)
	if err := scanner.Scan(&round.ID, &round.SeasonID, &round.Year,
		&round.RoundNumber, &round.Name, &circuit, &country); err != nil {
		return nil, err
	}
	round.Circuit = circuit.String
	round.Country = country.String
	return &round, nil
}
