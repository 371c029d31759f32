package ports

import (
	"context"

	"propmerge/domain/market"
)

// PropertySource supplies the property records a merge runs against.
// Implementations: adapters/postgres (database), adapters/excel (workbook).
type PropertySource interface {
	ListProperties(ctx context.Context) ([]market.PropertyRecord, error)
}
