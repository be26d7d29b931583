package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/poolhaus/fantasy-pool/internal/domain/event"
	qb "github.com/poolhaus/fantasy-pool/internal/platform/querybuilder"
)

type EventRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) ListByPool(ctx context.Context, poolID string) ([]event.WeeklyEvent, error) {
	return r.listWeekly(ctx, qb.Eq("pool_public_id", poolID))
}

func (r *EventRepository) ListByWeek(ctx context.Context, poolID string, week int) ([]event.WeeklyEvent, error) {
	return r.listWeekly(ctx,
		qb.Eq("pool_public_id", poolID),
		qb.Eq("week_number", week),
	)
}

func (r *EventRepository) listWeekly(ctx context.Context, conditions ...qb.Condition) ([]event.WeeklyEvent, error) {
	query, args, err := qb.Select("*").From("weekly_events").
		Where(conditions...).
		OrderBy("week_number", "eviction_round", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list weekly events query: %w", err)
	}

	var rows []weeklyEventTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list weekly events: %w", err)
	}

	out := make([]event.WeeklyEvent, 0, len(rows))
	for _, row := range rows {
		out = append(out, event.WeeklyEvent{
			ID:            row.PublicID,
			PoolID:        row.PoolPublicID,
			WeekNumber:    row.WeekNumber,
			ContestantID:  row.ContestantPublicID,
			Kind:          event.Kind(row.Kind),
			PointsAwarded: row.PointsAwarded,
			EvictionRound: row.EvictionRound,
			CreatedAt:     row.CreatedAt,
		})
	}
	return out, nil
}

// ReplaceWeek regenerates one week's event rows inside a transaction. Old
// rows are hard-deleted, never patched, so resubmitting a week converges to
// the same state.
func (r *EventRepository) ReplaceWeek(ctx context.Context, poolID string, week int, events []event.WeeklyEvent) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace week events: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	deleteQuery, deleteArgs, err := qb.DeleteFrom("weekly_events").
		Where(
			qb.Eq("pool_public_id", poolID),
			qb.Eq("week_number", week),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete week events query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("delete week events: %w", err)
	}

	if len(events) > 0 {
		builder := qb.InsertInto("weekly_events").
			Columns("public_id", "pool_public_id", "week_number", "contestant_public_id", "kind", "points_awarded", "eviction_round")
		for _, e := range events {
			builder = builder.Values(e.ID, e.PoolID, e.WeekNumber, e.ContestantID, string(e.Kind), e.PointsAwarded, e.EvictionRound)
		}
		insertQuery, insertArgs, err := builder.ToSQL()
		if err != nil {
			return fmt.Errorf("build insert week events query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
			return fmt.Errorf("insert week events: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace week events: %w", err)
	}
	return nil
}

func (r *EventRepository) ListSpecialByPool(ctx context.Context, poolID string) ([]event.SpecialEvent, error) {
	query, args, err := qb.Select("*").From("special_events").
		Where(qb.Eq("pool_public_id", poolID)).
		OrderBy("week_number", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list special events query: %w", err)
	}

	var rows []specialEventTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list special events: %w", err)
	}

	out := make([]event.SpecialEvent, 0, len(rows))
	for _, row := range rows {
		out = append(out, event.SpecialEvent{
			ID:            row.PublicID,
			PoolID:        row.PoolPublicID,
			ContestantID:  row.ContestantPublicID,
			Kind:          event.Kind(row.Kind),
			Description:   nullStringValue(row.Description),
			PointsAwarded: row.PointsAwarded,
			WeekNumber:    row.WeekNumber,
			CreatedAt:     row.CreatedAt,
		})
	}
	return out, nil
}

func (r *EventRepository) InsertSpecial(ctx context.Context, e event.SpecialEvent) error {
	insertModel := specialEventInsertModel{
		PublicID:           e.ID,
		PoolPublicID:       e.PoolID,
		ContestantPublicID: e.ContestantID,
		Kind:               string(e.Kind),
		Description:        nullString(e.Description),
		PointsAwarded:      e.PointsAwarded,
		WeekNumber:         e.WeekNumber,
	}
	query, args, err := qb.InsertModel("special_events", insertModel, "")
	if err != nil {
		return fmt.Errorf("build insert special event query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert special event: %w", err)
	}
	return nil
}

func (r *EventRepository) DeleteSpecialByWeek(ctx context.Context, poolID string, week int) error {
	query, args, err := qb.DeleteFrom("special_events").
		Where(
			qb.Eq("pool_public_id", poolID),
			qb.Eq("week_number", week),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete special events query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete special events: %w", err)
	}
	return nil
}

func (r *EventRepository) HasSpecial(ctx context.Context, poolID, contestantID string, kind event.Kind) (bool, error) {
	query, args, err := qb.Select("COUNT(1)").From("special_events").
		Where(
			qb.Eq("pool_public_id", poolID),
			qb.Eq("contestant_public_id", contestantID),
			qb.Eq("kind", string(kind)),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build has special event query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("has special event: %w", err)
	}
	return count > 0, nil
}
