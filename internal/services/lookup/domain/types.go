// Package domain holds the lookup contract
package domain

import (
	"context"

	"pricepaid/internal/core/records"
)

// ServicePort answers point queries against the materialized artifact
type ServicePort interface {
	// GetByID returns the first deduplicated record whose id equals id
	// NotFound covers both a missing artifact and a missing id
	GetByID(ctx context.Context, id string) (records.Wire, error)
}
