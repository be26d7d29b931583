package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/poolhaus/fantasy-pool/internal/domain/scoringrule"
	qb "github.com/poolhaus/fantasy-pool/internal/platform/querybuilder"
)

type ScoringRuleRepository struct {
	db *sqlx.DB
}

func NewScoringRuleRepository(db *sqlx.DB) *ScoringRuleRepository {
	return &ScoringRuleRepository{db: db}
}

func (r *ScoringRuleRepository) ListByPool(ctx context.Context, poolID string) ([]scoringrule.Rule, error) {
	return r.list(ctx, qb.Eq("pool_public_id", poolID), qb.IsNull("deleted_at"))
}

func (r *ScoringRuleRepository) ListActiveByPool(ctx context.Context, poolID string) ([]scoringrule.Rule, error) {
	return r.list(ctx,
		qb.Eq("pool_public_id", poolID),
		qb.Eq("is_active", true),
		qb.IsNull("deleted_at"),
	)
}

func (r *ScoringRuleRepository) list(ctx context.Context, conditions ...qb.Condition) ([]scoringrule.Rule, error) {
	query, args, err := qb.Select("*").From("scoring_rules").
		Where(conditions...).
		OrderBy("category", "subcategory").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list scoring rules query: %w", err)
	}

	var rows []scoringRuleTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list scoring rules: %w", err)
	}

	out := make([]scoringrule.Rule, 0, len(rows))
	for _, row := range rows {
		out = append(out, scoringrule.Rule{
			ID:          row.PublicID,
			PoolID:      row.PoolPublicID,
			Category:    row.Category,
			Subcategory: row.Subcategory,
			Points:      row.Points,
			IsActive:    row.IsActive,
			Description: nullStringValue(row.Description),
		})
	}
	return out, nil
}

func (r *ScoringRuleRepository) Create(ctx context.Context, rule scoringrule.Rule) error {
	insertModel := scoringRuleInsertModel{
		PublicID:     rule.ID,
		PoolPublicID: rule.PoolID,
		Category:     rule.Category,
		Subcategory:  rule.Subcategory,
		Points:       rule.Points,
		IsActive:     rule.IsActive,
		Description:  nullString(rule.Description),
	}
	query, args, err := qb.InsertModel("scoring_rules", insertModel, "")
	if err != nil {
		return fmt.Errorf("build create scoring rule query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create scoring rule: %w", err)
	}
	return nil
}

func (r *ScoringRuleRepository) Update(ctx context.Context, rule scoringrule.Rule) error {
	query, args, err := qb.Update("scoring_rules").
		Set("points", rule.Points).
		Set("is_active", rule.IsActive).
		Set("description", nullString(rule.Description)).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", rule.ID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update scoring rule query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update scoring rule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected update scoring rule: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update scoring rule: not found")
	}
	return nil
}
