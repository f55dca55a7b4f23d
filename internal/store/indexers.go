package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const indexerColumns = "id, name, api_url, api_key, category, enabled"

// AddIndexer inserts a new indexer definition.
func (s *Store) AddIndexer(ctx context.Context, indexer Indexer) (*Indexer, error) {
	res, err := s.execWithRetry(ensureContext(ctx),
		`INSERT INTO indexers (name, api_url, api_key, category, enabled)
         VALUES (?, ?, ?, ?, ?)`,
		indexer.Name, indexer.APIURL,
		nullableString(indexer.APIKey), nullableString(indexer.Category),
		boolToInt(indexer.Enabled))
	if err != nil {
		return nil, fmt.Errorf("insert indexer: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("indexer insert id: %w", err)
	}
	return s.GetIndexer(ctx, id)
}

// GetIndexer fetches an indexer by identifier.
func (s *Store) GetIndexer(ctx context.Context, id int64) (*Indexer, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT `+indexerColumns+` FROM indexers WHERE id = ?`, id)
	indexer, err := scanIndexer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get indexer: %w", err)
	}
	return indexer, nil
}

// ListIndexers returns all indexers ordered by name.
func (s *Store) ListIndexers(ctx context.Context) ([]Indexer, error) {
	return s.queryIndexers(ctx, `SELECT `+indexerColumns+` FROM indexers ORDER BY name`)
}

// EnabledIndexers returns indexers eligible for searching.
func (s *Store) EnabledIndexers(ctx context.Context) ([]Indexer, error) {
	return s.queryIndexers(ctx, `SELECT `+indexerColumns+` FROM indexers WHERE enabled = 1 ORDER BY name`)
}

// UpdateIndexer persists changes to an existing indexer.
func (s *Store) UpdateIndexer(ctx context.Context, indexer Indexer) error {
	_, err := s.execWithRetry(ensureContext(ctx),
		`UPDATE indexers SET name = ?, api_url = ?, api_key = ?, category = ?, enabled = ?
         WHERE id = ?`,
		indexer.Name, indexer.APIURL,
		nullableString(indexer.APIKey), nullableString(indexer.Category),
		boolToInt(indexer.Enabled), indexer.ID)
	if err != nil {
		return fmt.Errorf("update indexer: %w", err)
	}
	return nil
}

// RemoveIndexer deletes an indexer and reports whether it existed.
func (s *Store) RemoveIndexer(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ensureContext(ctx), `DELETE FROM indexers WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete indexer: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func (s *Store) queryIndexers(ctx context.Context, query string, args ...any) ([]Indexer, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query indexers: %w", err)
	}
	defer rows.Close()

	var indexers []Indexer
	for rows.Next() {
		indexer, err := scanIndexer(rows)
		if err != nil {
			return nil, err
		}
		indexers = append(indexers, *indexer)
	}
	return indexers, rows.Err()
}

func scanIndexer(scanner interface{ Scan(dest ...any) error }) (*Indexer, error) {
	var (
		indexer  Indexer
		apiKey   sql.NullString
		category sql.NullString
		enabled  int
	)
	if err := scanner.Scan(&indexer.ID, &indexer.Name, &indexer.APIURL,
		&apiKey, &category, &enabled); err != nil {
		return nil, err
	}
	indexer.APIKey = apiKey.String
	indexer.Category = category.String
	indexer.Enabled = enabled != 0
	return &indexer, nil
}
