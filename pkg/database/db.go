package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

type Config struct {
	Driver string
	// Path for sqlite3, connection string for pgx.
	DSN string
}

// DefaultConfig is the local sqlite file used when no DSN is configured.
// Environment overrides belong to utils.LoadConfig (REVIEWHUB_DB_DSN).
func DefaultConfig() Config {
	// local default: ~/.reviewhub/data.db
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return Config{
		Driver: DriverSQLite,
		DSN:    filepath.Join(home, ".reviewhub", "data.db"),
	}
}

func EnsureDataDir(cfg Config) error {
	if cfg.Driver != DriverSQLite {
		return nil
	}
	return os.MkdirAll(filepath.Dir(cfg.DSN), 0o755)
}

func Open(cfg Config) (*sql.DB, error) {
	if cfg.Driver == "" {
		cfg.Driver = DriverSQLite
	}
	if cfg.Driver == DriverSQLite && cfg.DSN == "" {
		cfg.DSN = DefaultConfig().DSN
	}
	if err := EnsureDataDir(cfg); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	if cfg.Driver == DriverSQLite {
		if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("pragma journal_mode: %w", err)
		}
		if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("pragma busy_timeout: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}

	return db, nil
}
