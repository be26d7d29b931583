package pool

import "context"

// Repository describes pool persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, poolID string) (Pool, bool, error)
	GetByInviteCode(ctx context.Context, inviteCode string) (Pool, bool, error)
	ListByUser(ctx context.Context, userID string) ([]Pool, error)
	Create(ctx context.Context, p Pool) error
	Update(ctx context.Context, p Pool) error
	SetCurrentWeek(ctx context.Context, poolID string, week int) error

	// SeedDefaults invokes the backend's seed_new_pool_defaults procedure to
	// populate default scoring rules and draft groups for a new pool.
	SeedDefaults(ctx context.Context, poolID string) error

	// JoinByInvite invokes the backend's join_pool_by_invite procedure, which
	// validates the code and creates the membership row.
	JoinByInvite(ctx context.Context, inviteCode, userID string) (Membership, error)

	ListMembershipsByPool(ctx context.Context, poolID string) ([]Membership, error)
	ListMembershipsByUser(ctx context.Context, userID string) ([]Membership, error)

	RecordWinners(ctx context.Context, winners []Winner) error
}
