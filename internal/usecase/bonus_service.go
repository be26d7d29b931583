package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/poolhaus/fantasy-pool/internal/domain/bonus"
	idgen "github.com/poolhaus/fantasy-pool/internal/platform/id"
	"github.com/poolhaus/fantasy-pool/internal/platform/logging"
)

type CreateBonusQuestionInput struct {
	PoolID      string
	Text        string
	Type        string
	PointsValue int
	SortOrder   int
}

type UpdateBonusQuestionInput struct {
	QuestionID  string
	Text        *string
	PointsValue *int
	SortOrder   *int
}

type BonusService struct {
	bonuses bonus.Repository
	points  *PointsService
	ids     idgen.Generator
	logger  *logging.Logger
}

func NewBonusService(bonuses bonus.Repository, points *PointsService, ids idgen.Generator, logger *logging.Logger) *BonusService {
	if logger == nil {
		logger = logging.Default()
	}

	return &BonusService{
		bonuses: bonuses,
		points:  points,
		ids:     ids,
		logger:  logger,
	}
}

func (s *BonusService) Create(ctx context.Context, input CreateBonusQuestionInput) (bonus.Question, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BonusService.Create")
	defer span.End()

	questionType, err := bonus.ParseQuestionType(input.Type)
	if err != nil {
		return bonus.Question{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	questionID, err := s.ids.NewID()
	if err != nil {
		return bonus.Question{}, fmt.Errorf("generate question id: %w", err)
	}

	q := bonus.Question{
		ID:          questionID,
		PoolID:      input.PoolID,
		Text:        strings.TrimSpace(input.Text),
		Type:        questionType,
		PointsValue: input.PointsValue,
		SortOrder:   input.SortOrder,
	}
	if err := q.Validate(); err != nil {
		return bonus.Question{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.bonuses.Create(ctx, q); err != nil {
		return bonus.Question{}, fmt.Errorf("create bonus question: %w", err)
	}
	return q, nil
}

func (s *BonusService) Update(ctx context.Context, input UpdateBonusQuestionInput) (bonus.Question, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BonusService.Update")
	defer span.End()

	q, found, err := s.bonuses.GetByID(ctx, input.QuestionID)
	if err != nil {
		return bonus.Question{}, fmt.Errorf("get bonus question: %w", err)
	}
	if !found {
		return bonus.Question{}, fmt.Errorf("%w: bonus question %s", ErrNotFound, input.QuestionID)
	}

	if input.Text != nil {
		q.Text = strings.TrimSpace(*input.Text)
	}
	if input.PointsValue != nil {
		q.PointsValue = *input.PointsValue
	}
	if input.SortOrder != nil {
		q.SortOrder = *input.SortOrder
	}
	if err := q.Validate(); err != nil {
		return bonus.Question{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.bonuses.Update(ctx, q); err != nil {
		return bonus.Question{}, fmt.Errorf("update bonus question: %w", err)
	}

	// A points-value change moves already-scored answers, so recompute.
	if q.AnswerRevealed && s.points != nil {
		if _, err := s.points.RecalculatePool(ctx, q.PoolID); err != nil {
			s.logger.ErrorContext(ctx, "recompute after bonus question update failed",
				"pool_id", q.PoolID,
				"question_id", q.ID,
				"error", err,
			)
		}
	}
	return q, nil
}

func (s *BonusService) List(ctx context.Context, poolID string) ([]bonus.Question, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BonusService.List")
	defer span.End()

	questions, err := s.bonuses.ListByPool(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("list bonus questions: %w", err)
	}
	return questions, nil
}

// Reveal stores the correct answer, marks the question revealed and
// recomputes standings so the bonus points land immediately.
func (s *BonusService) Reveal(ctx context.Context, questionID string, correct bonus.Answer) (RecomputeSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BonusService.Reveal")
	defer span.End()

	q, found, err := s.bonuses.GetByID(ctx, questionID)
	if err != nil {
		return RecomputeSummary{}, fmt.Errorf("get bonus question: %w", err)
	}
	if !found {
		return RecomputeSummary{}, fmt.Errorf("%w: bonus question %s", ErrNotFound, questionID)
	}
	if err := correct.ValidateFor(q.Type); err != nil {
		return RecomputeSummary{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.bonuses.Reveal(ctx, questionID, correct); err != nil {
		return RecomputeSummary{}, fmt.Errorf("reveal bonus answer: %w", err)
	}

	summary, err := s.points.RecalculatePool(ctx, q.PoolID)
	if err != nil {
		return RecomputeSummary{}, fmt.Errorf("recompute after reveal: %w", err)
	}

	s.logger.InfoContext(ctx, "bonus answer revealed",
		"pool_id", q.PoolID,
		"question_id", questionID,
		"entries_recomputed", summary.Successful,
	)
	return summary, nil
}
