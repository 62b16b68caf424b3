package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/lib/pq"
)

// PostgresSettingsRepository stores settings in the flat key/value table.
type PostgresSettingsRepository struct {
	db *sql.DB
}

func NewPostgresSettingsRepository(db *sql.DB) *PostgresSettingsRepository {
	return &PostgresSettingsRepository{db: db}
}

func (r *PostgresSettingsRepository) Get(ctx context.Context, keys []string) (map[string]string, error) {
	query := `SELECT key, value FROM settings WHERE key = ANY($1)`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(keys))
	if err != nil {
		return nil, fmt.Errorf("error reading settings: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string, len(keys))
	for rows.Next() {
		var key string
		var value sql.NullString
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("error scanning setting: %w", err)
		}
		values[key] = value.String
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating settings: %w", err)
	}
	return values, nil
}

func (r *PostgresSettingsRepository) Upsert(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}

	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for settings upsert: %w", err)
	}
	defer txn.Rollback() // Rollback if not committed

	stmt, err := txn.PrepareContext(ctx, `INSERT INTO settings (key, value, updated_at)
                                         VALUES ($1, $2, NOW())
                                         ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for settings upsert: %w", err)
	}
	defer stmt.Close()

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := stmt.ExecContext(ctx, k, values[k]); err != nil {
			return fmt.Errorf("failed to upsert setting %s: %w", k, err)
		}
	}
	return txn.Commit()
}
