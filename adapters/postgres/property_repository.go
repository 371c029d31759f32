package postgres

import (
	"context"
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"propmerge/domain/market"
	"propmerge/internal/errors"
	"propmerge/ports"
)

// propertyRepository reads the property roster from the properties table.
// Features are stored as a JSONB column keyed by feature name.
type propertyRepository struct {
	db *sqlx.DB
}

// NewPropertyRepository creates a database-backed property source
func NewPropertyRepository(db *sqlx.DB) ports.PropertySource {
	return &propertyRepository{db: db}
}

// ListProperties loads the full roster ordered by coordinates so repeated
// merges see the same property sequence.
func (r *propertyRepository) ListProperties(ctx context.Context) ([]market.PropertyRecord, error) {
	query := `SELECT
		COALESCE(fsa, '') AS fsa, latitude, longitude, COALESCE(features, '{}') AS features
	FROM properties
	ORDER BY latitude, longitude`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "querying properties")
	}
	defer rows.Close()

	var props []market.PropertyRecord
	for rows.Next() {
		var p market.PropertyRecord
		var featuresJSON []byte
		if err := rows.Scan(&p.FSA, &p.Latitude, &p.Longitude, &featuresJSON); err != nil {
			return nil, errors.Wrap(err, "scanning property row")
		}
		if len(featuresJSON) > 0 {
			if err := json.Unmarshal(featuresJSON, &p.Features); err != nil {
				return nil, errors.Wrap(err, "decoding property features")
			}
		}
		if p.Features == nil {
			p.Features = map[string]float64{}
		}
		props = append(props, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating properties")
	}
	return props, nil
}
