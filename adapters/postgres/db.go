// Package postgres persists property rosters and merged analysis results.
package postgres

import (
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"propmerge/internal/config"
	"propmerge/internal/errors"
)

// Connect opens and pings a PostgreSQL pool from configuration
func Connect(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	if cfg.URL == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	db, err := sqlx.Connect("postgres", cfg.URL)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to postgres")
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}
