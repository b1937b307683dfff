package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/runger/tubedash/internal/credential"
)

// ErrSettingNotFound is returned when a setting has never been written or
// was deleted.
var ErrSettingNotFound = errors.New("setting not found")

// APIKeySetting is the settings row that holds the Data API key.
const APIKeySetting = "api_key"

// GetSetting returns the stored value for name.
func (s *SQLiteStore) GetSetting(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", errors.New("setting name is required")
	}
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE name = ?`, name).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrSettingNotFound
		}
		return "", fmt.Errorf("failed to get setting %s: %w", name, err)
	}
	return value, nil
}

// SetSetting inserts or replaces name's value.
func (s *SQLiteStore) SetSetting(ctx context.Context, name, value string) error {
	if name == "" {
		return errors.New("setting name is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (name, value, updated_at_unix_ms) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at_unix_ms = excluded.updated_at_unix_ms
	`, name, value, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", name, err)
	}
	return nil
}

// DeleteSetting removes name. Deleting a missing setting is not an error.
func (s *SQLiteStore) DeleteSetting(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", name, err)
	}
	return nil
}

// Credential returns a credential.Store backed by the named setting row.
func (s *SQLiteStore) Credential(name string) credential.Store {
	return &settingSlot{store: s, name: name}
}

type settingSlot struct {
	store *SQLiteStore
	name  string
}

func (c *settingSlot) Get(ctx context.Context) (string, error) {
	v, err := c.store.GetSetting(ctx, c.name)
	if errors.Is(err, ErrSettingNotFound) {
		return "", credential.ErrNotFound
	}
	return v, err
}

func (c *settingSlot) Set(ctx context.Context, value string) error {
	return c.store.SetSetting(ctx, c.name, value)
}

func (c *settingSlot) Clear(ctx context.Context) error {
	return c.store.DeleteSetting(ctx, c.name)
}
