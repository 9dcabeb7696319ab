package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gif-player/internal/mediatypes"
)

// Setting keys. The capability verdict key is owned by the probe
// package; only the strategy key is interpreted here.
const (
	settingStrategy = "gif_method"
)

// GetSetting retrieves a settings value. The second return is false when
// the key has never been set.
func (d *Database) GetSetting(ctx context.Context, key string) (string, bool, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_setting", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var value string
	err = d.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, true, nil
}

// SetSetting stores a settings key-value pair.
func (d *Database) SetSetting(ctx context.Context, key, value string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("set_setting", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}

// DeleteSetting removes a settings key. Deleting a missing key is a no-op.
func (d *Database) DeleteSetting(ctx context.Context, key string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("delete_setting", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx, "DELETE FROM settings WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	return nil
}

// DefaultStrategy returns the configured default rendering strategy,
// falling back to the given default when unset or invalid.
func (d *Database) DefaultStrategy(ctx context.Context, fallback mediatypes.Strategy) mediatypes.Strategy {
	value, ok, err := d.GetSetting(ctx, settingStrategy)
	if err != nil || !ok {
		return fallback
	}
	strategy := mediatypes.Strategy(value)
	if !strategy.Valid() {
		return fallback
	}
	return strategy
}

// SetDefaultStrategy persists the default rendering strategy.
func (d *Database) SetDefaultStrategy(ctx context.Context, strategy mediatypes.Strategy) error {
	if !strategy.Valid() {
		return fmt.Errorf("invalid strategy %q", strategy)
	}
	return d.SetSetting(ctx, settingStrategy, string(strategy))
}
