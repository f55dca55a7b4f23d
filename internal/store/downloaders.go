package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const downloaderColumns = "id, name, type, api_url, api_key, category, priority, enabled"

// AddDownloader inserts a new downloader definition.
func (s *Store) AddDownloader(ctx context.Context, downloader Downloader) (*Downloader, error) {
	res, err := s.execWithRetry(ensureContext(ctx),
		`INSERT INTO downloaders (name, type, api_url, api_key, category, priority, enabled)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		downloader.Name, downloader.Type, downloader.APIURL,
		nullableString(downloader.APIKey), nullableString(downloader.Category),
		downloader.Priority, boolToInt(downloader.Enabled))
	if err != nil {
		return nil, fmt.Errorf("insert downloader: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("downloader insert id: %w", err)
	}
	return s.GetDownloader(ctx, id)
}

// GetDownloader fetches a downloader by identifier.
func (s *Store) GetDownloader(ctx context.Context, id int64) (*Downloader, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT `+downloaderColumns+` FROM downloaders WHERE id = ?`, id)
	downloader, err := scanDownloader(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get downloader: %w", err)
	}
	return downloader, nil
}

// ListDownloaders returns all downloaders ordered by name.
func (s *Store) ListDownloaders(ctx context.Context) ([]Downloader, error) {
	return s.queryDownloaders(ctx, `SELECT `+downloaderColumns+` FROM downloaders ORDER BY name`)
}

// EnabledDownloaders returns downloaders eligible for dispatch, ordered by
// identifier so the first enabled entry is stable.
func (s *Store) EnabledDownloaders(ctx context.Context) ([]Downloader, error) {
	return s.queryDownloaders(ctx, `SELECT `+downloaderColumns+` FROM downloaders WHERE enabled = 1 ORDER BY id`)
}

// FirstEnabledDownloader returns the lowest-id enabled downloader, or nil.
func (s *Store) FirstEnabledDownloader(ctx context.Context) (*Downloader, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT `+downloaderColumns+` FROM downloaders WHERE enabled = 1 ORDER BY id LIMIT 1`)
	downloader, err := scanDownloader(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("first enabled downloader: %w", err)
	}
	return downloader, nil
}

// UpdateDownloader persists changes to an existing downloader.
func (s *Store) UpdateDownloader(ctx context.Context, downloader Downloader) error {
	_, err := s.execWithRetry(ensureContext(ctx),
		`UPDATE downloaders SET name = ?, type = ?, api_url = ?, api_key = ?,
             category = ?, priority = ?, enabled = ?
         WHERE id = ?`,
		downloader.Name, downloader.Type, downloader.APIURL,
		nullableString(downloader.APIKey), nullableString(downloader.Category),
		downloader.Priority, boolToInt(downloader.Enabled), downloader.ID)
	if err != nil {
		return fmt.Errorf("update downloader: %w", err)
	}
	return nil
}

// RemoveDownloader deletes a downloader and reports whether it existed.
func (s *Store) RemoveDownloader(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ensureContext(ctx), `DELETE FROM downloaders WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete downloader: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func (s *Store) queryDownloaders(ctx context.Context, query string, args ...any) ([]Downloader, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query downloaders: %w", err)
	}
	defer rows.Close()

	var downloaders []Downloader
	for rows.Next() {
		downloader, err := scanDownloader(rows)
		if err != nil {
			return nil, err
		}
		downloaders = append(downloaders, *downloader)
	}
	return downloaders, rows.Err()
}

func scanDownloader(scanner interface{ Scan(dest ...any) error }) (*Downloader, error) {
	var (
		downloader Downloader
		apiKey     sql.NullString
		category   sql.NullString
		enabled    int
	)
	if err := scanner.Scan(&downloader.ID, &downloader.Name, &downloader.Type,
		&downloader.APIURL, &apiKey, &category, &downloader.Priority, &enabled); err != nil {
		return nil, err
	}
	downloader.APIKey = apiKey.String
	downloader.Category = category.String
	downloader.Enabled = enabled != 0
	return &downloader, nil
}
