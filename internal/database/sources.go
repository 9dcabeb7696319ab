package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gif-player/internal/mediatypes"
)

// UpsertSource records (or refreshes) a processed source.
func (d *Database) UpsertSource(ctx context.Context, rec SourceRecord) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("upsert_source", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO sources (id, location, mime_type, strategy, updated_at)
		VALUES (?, ?, ?, ?, strftime('%s', 'now'))
		ON CONFLICT(id) DO UPDATE SET
			location = excluded.location,
			mime_type = excluded.mime_type,
			strategy = excluded.strategy,
			updated_at = strftime('%s', 'now')
	`, rec.ID, rec.Location, rec.MimeType, string(rec.Strategy))
	if err != nil {
		return fmt.Errorf("failed to upsert source: %w", err)
	}
	return nil
}

// GetSource returns a processed source by id, or (nil, nil) when unknown.
func (d *Database) GetSource(ctx context.Context, sourceID string) (*SourceRecord, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_source", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rec SourceRecord
	var strategy string
	var updatedAt int64
	err = d.db.QueryRowContext(ctx, `
		SELECT id, location, mime_type, strategy, updated_at
		FROM sources WHERE id = ?
	`, sourceID).Scan(&rec.ID, &rec.Location, &rec.MimeType, &strategy, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get source: %w", err)
	}
	rec.Strategy = mediatypes.Strategy(strategy)
	rec.UpdatedAt = time.Unix(updatedAt, 0)
	return &rec, nil
}

// ListSources returns every processed source, oldest first.
func (d *Database) ListSources(ctx context.Context) ([]SourceRecord, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("list_sources", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `
		SELECT id, location, mime_type, strategy, updated_at
		FROM sources ORDER BY updated_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer rows.Close()

	var records []SourceRecord
	for rows.Next() {
		var rec SourceRecord
		var strategy string
		var updatedAt int64
		if scanErr := rows.Scan(&rec.ID, &rec.Location, &rec.MimeType, &strategy, &updatedAt); scanErr != nil {
			err = scanErr
			return nil, fmt.Errorf("failed to scan source: %w", scanErr)
		}
		rec.Strategy = mediatypes.Strategy(strategy)
		rec.UpdatedAt = time.Unix(updatedAt, 0)
		records = append(records, rec)
	}
	err = rows.Err()
	if err != nil {
		return nil, err
	}
	return records, nil
}

// DeleteSource removes the source record. Derived-asset records are
// deleted separately via DeleteRecordsForSource.
func (d *Database) DeleteSource(ctx context.Context, sourceID string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("delete_source", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx, "DELETE FROM sources WHERE id = ?", sourceID)
	if err != nil {
		return fmt.Errorf("failed to delete source: %w", err)
	}
	return nil
}
