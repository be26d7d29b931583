package postgres

import (
	"context"
	"fmt"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/poolhaus/fantasy-pool/internal/domain/bonus"
	qb "github.com/poolhaus/fantasy-pool/internal/platform/querybuilder"
)

type BonusRepository struct {
	db *sqlx.DB
}

func NewBonusRepository(db *sqlx.DB) *BonusRepository {
	return &BonusRepository{db: db}
}

func (r *BonusRepository) ListByPool(ctx context.Context, poolID string) ([]bonus.Question, error) {
	query, args, err := qb.Select("*").From("bonus_questions").
		Where(
			qb.Eq("pool_public_id", poolID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("sort_order", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list bonus questions query: %w", err)
	}

	var rows []bonusQuestionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list bonus questions: %w", err)
	}

	out := make([]bonus.Question, 0, len(rows))
	for _, row := range rows {
		q, err := mapBonusQuestionRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

func (r *BonusRepository) GetByID(ctx context.Context, questionID string) (bonus.Question, bool, error) {
	query, args, err := qb.Select("*").From("bonus_questions").
		Where(
			qb.Eq("public_id", questionID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return bonus.Question{}, false, fmt.Errorf("build get bonus question query: %w", err)
	}

	var row bonusQuestionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return bonus.Question{}, false, nil
		}
		return bonus.Question{}, false, fmt.Errorf("get bonus question: %w", err)
	}

	q, err := mapBonusQuestionRow(row)
	if err != nil {
		return bonus.Question{}, false, err
	}
	return q, true, nil
}

func (r *BonusRepository) Create(ctx context.Context, q bonus.Question) error {
	query, args, err := qb.InsertInto("bonus_questions").
		Columns("public_id", "pool_public_id", "question_text", "question_type", "points_value", "answer_revealed", "sort_order").
		Values(q.ID, q.PoolID, q.Text, string(q.Type), q.PointsValue, q.AnswerRevealed, q.SortOrder).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build create bonus question query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create bonus question: %w", err)
	}
	return nil
}

func (r *BonusRepository) Update(ctx context.Context, q bonus.Question) error {
	query, args, err := qb.Update("bonus_questions").
		Set("question_text", q.Text).
		Set("points_value", q.PointsValue).
		Set("sort_order", q.SortOrder).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", q.ID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update bonus question query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update bonus question: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected update bonus question: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update bonus question: not found")
	}
	return nil
}

func (r *BonusRepository) Reveal(ctx context.Context, questionID string, correct bonus.Answer) error {
	encoded, err := sonic.Marshal(correct)
	if err != nil {
		return fmt.Errorf("encode correct answer: %w", err)
	}

	query, args, err := qb.Update("bonus_questions").
		Set("correct_answer", encoded).
		Set("answer_revealed", true).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", questionID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build reveal bonus answer query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("reveal bonus answer: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected reveal bonus answer: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("reveal bonus answer: not found")
	}
	return nil
}

func mapBonusQuestionRow(row bonusQuestionTableModel) (bonus.Question, error) {
	q := bonus.Question{
		ID:             row.PublicID,
		PoolID:         row.PoolPublicID,
		Text:           row.QuestionText,
		Type:           bonus.QuestionType(row.QuestionType),
		PointsValue:    row.PointsValue,
		AnswerRevealed: row.AnswerRevealed,
		SortOrder:      row.SortOrder,
	}
	if len(row.CorrectAnswer) > 0 {
		var answer bonus.Answer
		if err := sonic.Unmarshal(row.CorrectAnswer, &answer); err != nil {
			return bonus.Question{}, fmt.Errorf("decode correct answer for question %s: %w", row.PublicID, err)
		}
		q.CorrectAnswer = &answer
	}
	return q, nil
}
