package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const scheduleColumns = `id, round_id, event_type, status, added_at, last_searched_at,
    next_run_at, last_error, tag, nzb_title, nzb_url, downloader_id,
    event_start_utc, attempts, min_resolution, max_resolution, allow_hdr, score_threshold`

// AddScheduledSearch inserts a new scheduled search. The (round, event type)
// pair is unique; a duplicate insert returns an error.
func (s *Store) AddScheduledSearch(ctx context.Context, item ScheduledSearch) (*ScheduledSearch, error) {
	if item.Status == "" {
		item.Status = StatusPending
	}
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now().UTC()
	}
	res, err := s.execWithRetry(ensureContext(ctx),
		`INSERT INTO scheduled_searches (
            round_id, event_type, status, added_at, next_run_at, event_start_utc,
            min_resolution, max_resolution, allow_hdr, score_threshold
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.RoundID, item.EventType, item.Status, timestamp(item.AddedAt),
		nullableTime(item.NextRunAt), nullableTime(item.EventStartUTC),
		nullableStringPtr(item.MinResolution), nullableStringPtr(item.MaxResolution),
		nullableBool(item.AllowHDR), nullableInt(item.ScoreThreshold))
	if err != nil {
		return nil, fmt.Errorf("insert scheduled search: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("schedule insert id: %w", err)
	}
	return s.GetScheduledSearch(ctx, id)
}

// GetScheduledSearch fetches a scheduled search by identifier.
func (s *Store) GetScheduledSearch(ctx context.Context, id int64) (*ScheduledSearch, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT `+scheduleColumns+` FROM scheduled_searches WHERE id = ?`, id)
	item, err := scanSchedule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get scheduled search: %w", err)
	}
	return item, nil
}

// GetScheduledByRoundEvent fetches the unique schedule for a round and event
// type, or nil.
func (s *Store) GetScheduledByRoundEvent(ctx context.Context, roundID int64, eventType string) (*ScheduledSearch, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT `+scheduleColumns+` FROM scheduled_searches
         WHERE round_id = ? AND event_type = ?`, roundID, eventType)
	item, err := scanSchedule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get schedule by round/event: %w", err)
	}
	return item, nil
}

// ListScheduledSearches returns schedules filtered by status set, or all when
// no status is provided, ordered by creation time.
func (s *Store) ListScheduledSearches(ctx context.Context, statuses ...Status) ([]*ScheduledSearch, error) {
	baseQuery := `SELECT ` + scheduleColumns + ` FROM scheduled_searches`
	orderClause := ` ORDER BY added_at, id`

	var (
		rows *sql.Rows
		err  error
	)
	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ensureContext(ctx), baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		rows, err = s.db.QueryContext(ensureContext(ctx),
			baseQuery+` WHERE status IN (`+placeholders+`)`+orderClause, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list scheduled searches: %w", err)
	}
	defer rows.Close()
	return collectSchedules(rows)
}

// DueScheduled returns pending and failed schedules whose next run is unset
// or at or before now, oldest first. Failed items with a due time are
// retryable.
func (s *Store) DueScheduled(ctx context.Context, now time.Time) ([]*ScheduledSearch, error) {
	now = now.UTC()
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT `+scheduleColumns+` FROM scheduled_searches
         WHERE (status = ? AND (next_run_at IS NULL OR next_run_at <= ?))
            OR (status = ? AND next_run_at IS NOT NULL AND next_run_at <= ?)
         ORDER BY added_at, id`,
		StatusPending, timestamp(now), StatusFailed, timestamp(now))
	if err != nil {
		return nil, fmt.Errorf("due schedules: %w", err)
	}
	defer rows.Close()
	return collectSchedules(rows)
}

// WaitingScheduled returns schedules awaiting download completion.
func (s *Store) WaitingScheduled(ctx context.Context) ([]*ScheduledSearch, error) {
	return s.ListScheduledSearches(ctx, StatusWaitingDownload)
}

// UpdateScheduledSearch persists changes to an existing schedule.
func (s *Store) UpdateScheduledSearch(ctx context.Context, item *ScheduledSearch) error {
	if item == nil {
		return errors.New("scheduled search is nil")
	}
	_, err := s.execWithRetry(ensureContext(ctx),
		`UPDATE scheduled_searches
         SET status = ?, last_searched_at = ?, next_run_at = ?, last_error = ?,
             tag = ?, nzb_title = ?, nzb_url = ?, downloader_id = ?,
             event_start_utc = ?, attempts = ?, min_resolution = ?,
             max_resolution = ?, allow_hdr = ?, score_threshold = ?
         WHERE id = ?`,
		item.Status, nullableTime(item.LastSearchedAt), nullableTime(item.NextRunAt),
		nullableString(item.LastError), nullableString(item.Tag),
		nullableString(item.NZBTitle), nullableString(item.NZBURL),
		nullableInt64(item.DownloaderID), nullableTime(item.EventStartUTC),
		item.Attempts, nullableStringPtr(item.MinResolution),
		nullableStringPtr(item.MaxResolution), nullableBool(item.AllowHDR),
		nullableInt(item.ScoreThreshold), item.ID)
	if err != nil {
		return fmt.Errorf("update scheduled search: %w", err)
	}
	return nil
}

// RemoveScheduledSearch deletes a schedule and reports whether it existed.
func (s *Store) RemoveScheduledSearch(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ensureContext(ctx),
		`DELETE FROM scheduled_searches WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete scheduled search: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// ResetRunning moves schedules stuck in running back to pending. Called once
// at daemon startup so a crash mid-run self-heals.
func (s *Store) ResetRunning(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ensureContext(ctx),
		`UPDATE scheduled_searches SET status = ?, next_run_at = NULL WHERE status = ?`,
		StatusPending, StatusRunning)
	if err != nil {
		return 0, fmt.Errorf("reset running schedules: %w", err)
	}
	return res.RowsAffected()
}

// ScheduleStats returns a count of schedules grouped by status.
func (s *Store) ScheduleStats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT status, COUNT(1) FROM scheduled_searches GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("schedule stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

func collectSchedules(rows *sql.Rows) ([]*ScheduledSearch, error) {
	var items []*ScheduledSearch
	for rows.Next() {
		item, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanSchedule(scanner interface{ Scan(dest ...any) error }) (*ScheduledSearch, error) {
	var (
		item          ScheduledSearch
		statusStr     string
		addedRaw      string
		searchedRaw   sql.NullString
		nextRunRaw    sql.NullString
		lastError     sql.NullString
		tag           sql.NullString
		nzbTitle      sql.NullString
		nzbURL        sql.NullString
		downloaderID  sql.NullInt64
		eventStartRaw sql.NullString
		minRes        sql.NullString
		maxRes        sql.NullString
		allowHDR      sql.NullInt64
		threshold     sql.NullInt64
	)

	if err := scanner.Scan(
		&item.ID, &item.RoundID, &item.EventType, &statusStr, &addedRaw,
		&searchedRaw, &nextRunRaw, &lastError, &tag, &nzbTitle, &nzbURL,
		&downloaderID, &eventStartRaw, &item.Attempts, &minRes, &maxRes,
		&allowHDR, &threshold,
	); err != nil {
		return nil, err
	}

	item.Status = Status(statusStr)
	if added, err := parseTimeString(addedRaw); err == nil {
		item.AddedAt = added
	}
	item.LastSearchedAt = parseOptionalTime(searchedRaw.String, searchedRaw.Valid)
	item.NextRunAt = parseOptionalTime(nextRunRaw.String, nextRunRaw.Valid)
	item.EventStartUTC = parseOptionalTime(eventStartRaw.String, eventStartRaw.Valid)
	item.LastError = lastError.String
	item.Tag = tag.String
	item.NZBTitle = nzbTitle.String
	item.NZBURL = nzbURL.String
	if downloaderID.Valid {
		id := downloaderID.Int64
		item.DownloaderID = &id
	}
	if minRes.Valid {
		v := minRes.String
		item.MinResolution = &v
	}
	if maxRes.Valid {
		v := maxRes.String
		item.MaxResolution = &v
	}
	if allowHDR.Valid {
		v := allowHDR.Int64 != 0
		item.AllowHDR = &v
	}
	if threshold.Valid {
		v := int(threshold.Int64)
		item.ScoreThreshold = &v
	}
	return &item, nil
}

func nullableStringPtr(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}
