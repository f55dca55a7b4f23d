package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Manual download statuses. Sent entries are still in flight; the poll loop
// promotes them to completed or failed based on downloader history.
const (
	ManualStatusSent      = "sent"
	ManualStatusCompleted = "completed"
	ManualStatusFailed    = "failed"
)

// AddManualDownload records an ad-hoc dispatch keyed by its dedup tag.
func (s *Store) AddManualDownload(ctx context.Context, entry ManualDownload) error {
	if entry.Status == "" {
		entry.Status = ManualStatusSent
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.execWithRetry(ensureContext(ctx),
		`INSERT INTO manual_downloads (tag, title, downloader_id, status, created_at, last_error)
         VALUES (?, ?, ?, ?, ?, ?)`,
		entry.Tag, entry.Title, nullableInt64(entry.DownloaderID),
		entry.Status, timestamp(entry.CreatedAt), nullableString(entry.LastError))
	if err != nil {
		return fmt.Errorf("insert manual download: %w", err)
	}
	return nil
}

// GetManualDownload fetches a manual download by tag, or nil.
func (s *Store) GetManualDownload(ctx context.Context, tag string) (*ManualDownload, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT tag, title, downloader_id, status, created_at, last_error
         FROM manual_downloads WHERE tag = ?`, tag)
	entry, err := scanManualDownload(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get manual download: %w", err)
	}
	return entry, nil
}

// PendingManualDownloads returns entries still awaiting reconciliation.
func (s *Store) PendingManualDownloads(ctx context.Context) ([]*ManualDownload, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT tag, title, downloader_id, status, created_at, last_error
         FROM manual_downloads WHERE status = ? ORDER BY created_at`, ManualStatusSent)
	if err != nil {
		return nil, fmt.Errorf("pending manual downloads: %w", err)
	}
	defer rows.Close()

	var entries []*ManualDownload
	for rows.Next() {
		entry, err := scanManualDownload(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// UpdateManualDownloadStatus records the reconciliation outcome for a tag.
func (s *Store) UpdateManualDownloadStatus(ctx context.Context, tag, status, lastError string) error {
	_, err := s.execWithRetry(ensureContext(ctx),
		`UPDATE manual_downloads SET status = ?, last_error = ? WHERE tag = ?`,
		status, nullableString(lastError), tag)
	if err != nil {
		return fmt.Errorf("update manual download: %w", err)
	}
	return nil
}

func scanManualDownload(scanner interface{ Scan(dest ...any) error }) (*ManualDownload, error) {
	var (
		entry        ManualDownload
		downloaderID sql.NullInt64
		createdRaw   string
		lastError    sql.NullString
	)
	if err := scanner.Scan(&entry.Tag, &entry.Title, &downloaderID,
		&entry.Status, &createdRaw, &lastError); err != nil {
		return nil, err
	}
	if downloaderID.Valid {
		id := downloaderID.Int64
		entry.DownloaderID = &id
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		entry.CreatedAt = created
	}
	entry.LastError = lastError.String
	return &entry, nil
}
