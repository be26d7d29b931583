package event

import "context"

type Repository interface {
	ListByPool(ctx context.Context, poolID string) ([]WeeklyEvent, error)
	ListByWeek(ctx context.Context, poolID string, week int) ([]WeeklyEvent, error)

	// ReplaceWeek deletes every weekly event for (pool, week) and inserts the
	// given batch in one transaction. Resubmitting a week is therefore
	// idempotent: rows are regenerated, never patched.
	ReplaceWeek(ctx context.Context, poolID string, week int, events []WeeklyEvent) error

	ListSpecialByPool(ctx context.Context, poolID string) ([]SpecialEvent, error)
	InsertSpecial(ctx context.Context, e SpecialEvent) error

	// DeleteSpecialByWeek drops a week's special events so a resubmission
	// regenerates them instead of stacking duplicates.
	DeleteSpecialByWeek(ctx context.Context, poolID string, week int) error

	// HasSpecial reports whether a special event of the given kind already
	// exists for the contestant. Used to keep one-time milestones one-time.
	HasSpecial(ctx context.Context, poolID, contestantID string, kind Kind) (bool, error)
}
