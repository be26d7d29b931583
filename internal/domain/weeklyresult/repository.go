package weeklyresult

import "context"

type Repository interface {
	Get(ctx context.Context, poolID string, week int) (Result, bool, error)
	ListByPool(ctx context.Context, poolID string) ([]Result, error)

	// Upsert inserts or updates the single summary row keyed by (pool, week).
	Upsert(ctx context.Context, r Result) error
}
