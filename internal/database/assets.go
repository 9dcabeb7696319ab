package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gif-player/internal/mediatypes"
)

// Register persists a derived asset with parent linkage to its source.
// Registering the same (source, kind) again overwrites the existing
// record: the resolver computes deterministic locations, so regeneration
// replaces rather than duplicates.
func (d *Database) Register(ctx context.Context, sourceID string, kind mediatypes.VariantKind, location, contentType string) (*DerivedAsset, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("register_asset", start, err) }()

	if !kind.Valid() {
		err = fmt.Errorf("invalid variant kind %q", kind)
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now()
	_, err = d.db.ExecContext(ctx, `
		INSERT INTO derived_assets (source_id, variant_kind, location, content_type, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(source_id, variant_kind) DO UPDATE SET
			location = excluded.location,
			content_type = excluded.content_type,
			created_at = excluded.created_at
	`, sourceID, string(kind), location, contentType, now.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to register derived asset: %w", err)
	}

	var id int64
	err = d.db.QueryRowContext(ctx,
		"SELECT id FROM derived_assets WHERE source_id = ? AND variant_kind = ?",
		sourceID, string(kind),
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to read back derived asset id: %w", err)
	}

	return &DerivedAsset{
		ID:          id,
		SourceID:    sourceID,
		VariantKind: kind,
		Location:    location,
		ContentType: contentType,
		CreatedAt:   now,
	}, nil
}

// Lookup returns the derived asset of the given kind for a source, or
// (nil, nil) when none is registered.
func (d *Database) Lookup(ctx context.Context, sourceID string, kind mediatypes.VariantKind) (*DerivedAsset, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("lookup_asset", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	asset, err := scanAsset(d.db.QueryRowContext(ctx, `
		SELECT id, source_id, variant_kind, location, content_type, created_at
		FROM derived_assets WHERE source_id = ? AND variant_kind = ?
	`, sourceID, string(kind)))
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up derived asset: %w", err)
	}
	return asset, nil
}

// ListForSource returns every derived asset registered for a source,
// ordered by insertion (the order the presentation layer emits them in).
func (d *Database) ListForSource(ctx context.Context, sourceID string) ([]DerivedAsset, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("list_assets", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `
		SELECT id, source_id, variant_kind, location, content_type, created_at
		FROM derived_assets WHERE source_id = ? ORDER BY id ASC
	`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list derived assets: %w", err)
	}
	defer rows.Close()

	var assets []DerivedAsset
	for rows.Next() {
		asset, scanErr := scanAsset(rows)
		if scanErr != nil {
			err = scanErr
			return nil, fmt.Errorf("failed to scan derived asset: %w", scanErr)
		}
		assets = append(assets, *asset)
	}
	err = rows.Err()
	if err != nil {
		return nil, err
	}
	return assets, nil
}

// DeleteRecordsForSource removes every derived-asset record owned by the
// source. Backing files are the caller's concern (the orchestrator
// removes them through the store before dropping the records).
func (d *Database) DeleteRecordsForSource(ctx context.Context, sourceID string) (int64, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("delete_assets", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(ctx,
		"DELETE FROM derived_assets WHERE source_id = ?", sourceID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete derived assets: %w", err)
	}
	return result.RowsAffected()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanAsset(s scanner) (*DerivedAsset, error) {
	var asset DerivedAsset
	var kind string
	var createdAt int64

	if err := s.Scan(&asset.ID, &asset.SourceID, &kind, &asset.Location, &asset.ContentType, &createdAt); err != nil {
		return nil, err
	}
	asset.VariantKind = mediatypes.VariantKind(kind)
	asset.CreatedAt = time.Unix(createdAt, 0)
	return &asset, nil
}
