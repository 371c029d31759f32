package postgres

import (
	"github.com/jmoiron/sqlx"

	"propmerge/internal/errors"
)

// Schema is the minimal DDL the adapters expect
const Schema = `
CREATE TABLE IF NOT EXISTS properties (
	id         BIGSERIAL PRIMARY KEY,
	fsa        TEXT,
	latitude   DOUBLE PRECISION NOT NULL,
	longitude  DOUBLE PRECISION NOT NULL,
	features   JSONB NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_properties_fsa ON properties (fsa);
`

// Migrate applies the schema. Statements are idempotent.
func Migrate(db *sqlx.DB) error {
	if _, err := db.Exec(Schema); err != nil {
		return errors.Wrap(err, "applying schema")
	}
	return nil
}
