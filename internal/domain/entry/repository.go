package entry

import "context"

type Repository interface {
	ListByPool(ctx context.Context, poolID string) ([]Entry, error)
	ListByUser(ctx context.Context, userID string) ([]Entry, error)
	GetByID(ctx context.Context, entryID string) (Entry, bool, error)
	Create(ctx context.Context, e Entry) error
	Update(ctx context.Context, e Entry) error
	SoftDelete(ctx context.Context, entryID string) error

	// UpdatePoints writes the recomputed point fields for one entry.
	UpdatePoints(ctx context.Context, entryID string, weekly, bonus, total int) error
}
