package contestant

import "context"

type Repository interface {
	ListByPool(ctx context.Context, poolID string) ([]Contestant, error)
	GetByID(ctx context.Context, contestantID string) (Contestant, bool, error)
	Create(ctx context.Context, c Contestant) error
	Update(ctx context.Context, c Contestant) error
	Delete(ctx context.Context, contestantID string) error
	SetActive(ctx context.Context, contestantID string, active bool) error
	UpdateWinStreak(ctx context.Context, contestantID string, consecutiveWeeksNoWin, lastWinWeek int) error

	ListGroupsByPool(ctx context.Context, poolID string) ([]Group, error)
}
