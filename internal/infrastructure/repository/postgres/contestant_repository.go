package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/poolhaus/fantasy-pool/internal/domain/contestant"
	qb "github.com/poolhaus/fantasy-pool/internal/platform/querybuilder"
)

type ContestantRepository struct {
	db *sqlx.DB
}

func NewContestantRepository(db *sqlx.DB) *ContestantRepository {
	return &ContestantRepository{db: db}
}

func (r *ContestantRepository) ListByPool(ctx context.Context, poolID string) ([]contestant.Contestant, error) {
	query, args, err := qb.Select("*").From("contestants").
		Where(
			qb.Eq("pool_public_id", poolID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("sort_order", "name").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list contestants query: %w", err)
	}

	var rows []contestantTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list contestants: %w", err)
	}

	out := make([]contestant.Contestant, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapContestantRow(row))
	}
	return out, nil
}

func (r *ContestantRepository) GetByID(ctx context.Context, contestantID string) (contestant.Contestant, bool, error) {
	query, args, err := qb.Select("*").From("contestants").
		Where(
			qb.Eq("public_id", contestantID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return contestant.Contestant{}, false, fmt.Errorf("build get contestant query: %w", err)
	}

	var row contestantTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return contestant.Contestant{}, false, nil
		}
		return contestant.Contestant{}, false, fmt.Errorf("get contestant: %w", err)
	}
	return mapContestantRow(row), true, nil
}

func (r *ContestantRepository) Create(ctx context.Context, c contestant.Contestant) error {
	insertModel := contestantInsertModel{
		PublicID:      c.ID,
		PoolPublicID:  c.PoolID,
		Name:          c.Name,
		IsActive:      c.IsActive,
		GroupPublicID: nullString(c.GroupID),
		SortOrder:     c.SortOrder,
		Age:           c.Age,
		Hometown:      nullString(c.Hometown),
		Occupation:    nullString(c.Occupation),
		Bio:           nullString(c.Bio),
		PhotoURL:      nullString(c.PhotoURL),
	}
	query, args, err := qb.InsertModel("contestants", insertModel, "")
	if err != nil {
		return fmt.Errorf("build create contestant query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create contestant: %w", err)
	}
	return nil
}

func (r *ContestantRepository) Update(ctx context.Context, c contestant.Contestant) error {
	query, args, err := qb.Update("contestants").
		Set("name", c.Name).
		Set("is_active", c.IsActive).
		Set("group_public_id", nullString(c.GroupID)).
		Set("sort_order", c.SortOrder).
		Set("age", c.Age).
		Set("hometown", nullString(c.Hometown)).
		Set("occupation", nullString(c.Occupation)).
		Set("bio", nullString(c.Bio)).
		Set("photo_url", nullString(c.PhotoURL)).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", c.ID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update contestant query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update contestant: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected update contestant: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update contestant: not found")
	}
	return nil
}

func (r *ContestantRepository) Delete(ctx context.Context, contestantID string) error {
	query, args, err := qb.Update("contestants").
		SetExpr("deleted_at", "NOW()").
		Where(
			qb.Eq("public_id", contestantID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete contestant query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete contestant: %w", err)
	}
	return nil
}

func (r *ContestantRepository) SetActive(ctx context.Context, contestantID string, active bool) error {
	query, args, err := qb.Update("contestants").
		Set("is_active", active).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", contestantID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set contestant active query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set contestant active: %w", err)
	}
	return nil
}

func (r *ContestantRepository) UpdateWinStreak(ctx context.Context, contestantID string, consecutiveWeeksNoWin, lastWinWeek int) error {
	query, args, err := qb.Update("contestants").
		Set("consecutive_weeks_no_win", consecutiveWeeksNoWin).
		Set("last_win_week", lastWinWeek).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", contestantID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update win streak query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update win streak: %w", err)
	}
	return nil
}

func (r *ContestantRepository) ListGroupsByPool(ctx context.Context, poolID string) ([]contestant.Group, error) {
	query, args, err := qb.Select("*").From("contestant_groups").
		Where(
			qb.Eq("pool_public_id", poolID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("sort_order", "name").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list contestant groups query: %w", err)
	}

	var rows []contestantGroupTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list contestant groups: %w", err)
	}

	out := make([]contestant.Group, 0, len(rows))
	for _, row := range rows {
		out = append(out, contestant.Group{
			ID:        row.PublicID,
			PoolID:    row.PoolPublicID,
			Name:      row.Name,
			SortOrder: row.SortOrder,
		})
	}
	return out, nil
}

func mapContestantRow(row contestantTableModel) contestant.Contestant {
	return contestant.Contestant{
		ID:                    row.PublicID,
		PoolID:                row.PoolPublicID,
		Name:                  row.Name,
		IsActive:              row.IsActive,
		GroupID:               nullStringValue(row.GroupPublicID),
		SortOrder:             row.SortOrder,
		Age:                   row.Age,
		Hometown:              nullStringValue(row.Hometown),
		Occupation:            nullStringValue(row.Occupation),
		Bio:                   nullStringValue(row.Bio),
		PhotoURL:              nullStringValue(row.PhotoURL),
		ConsecutiveWeeksNoWin: row.ConsecutiveWeeksNoWin,
		LastWinWeek:           row.LastWinWeek,
		CreatedAt:             row.CreatedAt,
		UpdatedAt:             row.UpdatedAt,
	}
}
