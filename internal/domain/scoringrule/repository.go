package scoringrule

import "context"

type Repository interface {
	ListByPool(ctx context.Context, poolID string) ([]Rule, error)
	ListActiveByPool(ctx context.Context, poolID string) ([]Rule, error)
	Create(ctx context.Context, r Rule) error
	Update(ctx context.Context, r Rule) error
}
