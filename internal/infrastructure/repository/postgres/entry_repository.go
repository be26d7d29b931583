package postgres

import (
	"context"
	"fmt"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/poolhaus/fantasy-pool/internal/domain/bonus"
	"github.com/poolhaus/fantasy-pool/internal/domain/entry"
	qb "github.com/poolhaus/fantasy-pool/internal/platform/querybuilder"
)

type EntryRepository struct {
	db *sqlx.DB
}

func NewEntryRepository(db *sqlx.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

func (r *EntryRepository) ListByPool(ctx context.Context, poolID string) ([]entry.Entry, error) {
	return r.list(ctx, qb.Eq("pool_public_id", poolID), qb.IsNull("deleted_at"))
}

func (r *EntryRepository) ListByUser(ctx context.Context, userID string) ([]entry.Entry, error) {
	return r.list(ctx, qb.Eq("user_id", userID), qb.IsNull("deleted_at"))
}

func (r *EntryRepository) list(ctx context.Context, conditions ...qb.Condition) ([]entry.Entry, error) {
	query, args, err := qb.Select("*").From("entries").
		Where(conditions...).
		OrderBy("created_at").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list entries query: %w", err)
	}

	var rows []entryTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	out := make([]entry.Entry, 0, len(rows))
	for _, row := range rows {
		e, err := mapEntryRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *EntryRepository) GetByID(ctx context.Context, entryID string) (entry.Entry, bool, error) {
	query, args, err := qb.Select("*").From("entries").
		Where(
			qb.Eq("public_id", entryID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return entry.Entry{}, false, fmt.Errorf("build get entry query: %w", err)
	}

	var row entryTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return entry.Entry{}, false, nil
		}
		return entry.Entry{}, false, fmt.Errorf("get entry: %w", err)
	}

	e, err := mapEntryRow(row)
	if err != nil {
		return entry.Entry{}, false, err
	}
	return e, true, nil
}

func (r *EntryRepository) Create(ctx context.Context, e entry.Entry) error {
	answers, err := marshalBonusAnswers(e.BonusAnswers)
	if err != nil {
		return err
	}

	query, args, err := qb.InsertInto("entries").
		Columns("public_id", "pool_public_id", "user_id", "team_name", "player_ids", "bonus_answers", "payment_confirmed").
		Values(e.ID, e.PoolID, e.UserID, e.TeamName, pq.StringArray(e.PlayerIDs), answers, e.PaymentConfirmed).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build create entry query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create entry: %w", err)
	}
	return nil
}

func (r *EntryRepository) Update(ctx context.Context, e entry.Entry) error {
	answers, err := marshalBonusAnswers(e.BonusAnswers)
	if err != nil {
		return err
	}

	query, args, err := qb.Update("entries").
		Set("team_name", e.TeamName).
		Set("player_ids", pq.StringArray(e.PlayerIDs)).
		Set("bonus_answers", answers).
		Set("payment_confirmed", e.PaymentConfirmed).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", e.ID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update entry query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update entry: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected update entry: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update entry: not found")
	}
	return nil
}

func (r *EntryRepository) SoftDelete(ctx context.Context, entryID string) error {
	query, args, err := qb.Update("entries").
		SetExpr("deleted_at", "NOW()").
		Where(
			qb.Eq("public_id", entryID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build soft delete entry query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("soft delete entry: %w", err)
	}
	return nil
}

func (r *EntryRepository) UpdatePoints(ctx context.Context, entryID string, weekly, bonusPoints, total int) error {
	query, args, err := qb.Update("entries").
		Set("weekly_points", weekly).
		Set("bonus_points", bonusPoints).
		Set("total_points", total).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", entryID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update entry points query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update entry points: %w", err)
	}
	return nil
}

func marshalBonusAnswers(answers map[string]bonus.Answer) ([]byte, error) {
	if answers == nil {
		answers = map[string]bonus.Answer{}
	}
	encoded, err := sonic.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("encode bonus answers: %w", err)
	}
	return encoded, nil
}

func mapEntryRow(row entryTableModel) (entry.Entry, error) {
	answers := map[string]bonus.Answer{}
	if len(row.BonusAnswers) > 0 {
		if err := sonic.Unmarshal(row.BonusAnswers, &answers); err != nil {
			return entry.Entry{}, fmt.Errorf("decode bonus answers for entry %s: %w", row.PublicID, err)
		}
	}

	return entry.Entry{
		ID:               row.PublicID,
		PoolID:           row.PoolPublicID,
		UserID:           row.UserID,
		TeamName:         row.TeamName,
		PlayerIDs:        []string(row.PlayerIDs),
		BonusAnswers:     answers,
		WeeklyPoints:     row.WeeklyPoints,
		BonusPoints:      row.BonusPoints,
		TotalPoints:      row.TotalPoints,
		PaymentConfirmed: row.PaymentConfirmed,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
		DeletedAt:        row.DeletedAt,
	}, nil
}
