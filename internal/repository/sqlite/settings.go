package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/promptmaster/internal/repository"
)

// compile-time check that *DB implements repository.SettingsRepository
var _ repository.SettingsRepository = (*DB)(nil)

const allowRegistrationKey = "allow_registration"

// AllowRegistration reports whether self-service registration is open.
// A missing row means closed — registration is opt-in by an admin.
func (db *DB) AllowRegistration(ctx context.Context) (bool, error) {
	var value string
	err := db.conn.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, allowRegistrationKey,
	).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("sqlite: reading setting %s: %w", allowRegistrationKey, err)
	}
	return value == "true", nil
}

func (db *DB) SetAllowRegistration(ctx context.Context, allowed bool) error {
	value := "false"
	if allowed {
		value = "true"
	}
	if _, err := db.conn.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		allowRegistrationKey, value,
	); err != nil {
		return fmt.Errorf("sqlite: writing setting %s: %w", allowRegistrationKey, err)
	}
	return nil
}
