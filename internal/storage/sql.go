package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"reviewhub/pkg/database"
)

// SQL persists ports in the kv table (see pkg/database/schema.sql).
type SQL struct {
	DB *sql.DB

	getSQL string
	setSQL string
}

func NewSQL(db *sql.DB, driver string) *SQL {
	s := &SQL{DB: db}
	if driver == database.DriverPostgres {
		s.getSQL = `SELECT value FROM kv WHERE profile = $1 AND key = $2`
		s.setSQL = `
			INSERT INTO kv (profile, key, value, updated_at)
			VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
			ON CONFLICT (profile, key) DO UPDATE SET
				value = excluded.value,
				updated_at = CURRENT_TIMESTAMP
		`
		return s
	}
	s.getSQL = `SELECT value FROM kv WHERE profile = ? AND key = ?`
	s.setSQL = `
		INSERT INTO kv (profile, key, value, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(profile, key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`
	return s
}

func (s *SQL) For(profile string) Port {
	return sqlPort{s: s, profile: profile}
}

type sqlPort struct {
	s       *SQL
	profile string
}

func (p sqlPort) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := p.s.DB.QueryRowContext(ctx, p.s.getSQL, p.profile, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (p sqlPort) Set(ctx context.Context, key, value string) error {
	if _, err := p.s.DB.ExecContext(ctx, p.s.setSQL, p.profile, key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
