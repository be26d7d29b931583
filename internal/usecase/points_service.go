package usecase

import (
	"context"
	"fmt"

	"github.com/poolhaus/fantasy-pool/internal/domain/bonus"
	"github.com/poolhaus/fantasy-pool/internal/domain/entry"
	"github.com/poolhaus/fantasy-pool/internal/domain/event"
	"github.com/poolhaus/fantasy-pool/internal/platform/logging"
)

type RecomputeSummary struct {
	Successful int      `json:"successful"`
	Failed     []string `json:"failed,omitempty"`
}

// PointsService recomputes every entry's weekly, bonus and total points from
// scratch. Weekly points are the sum of the snapshotted point values of all
// weekly and special events belonging to the entry's drafted contestants;
// there is no incremental delta path.
type PointsService struct {
	entries entry.Repository
	events  event.Repository
	bonuses bonus.Repository
	logger  *logging.Logger
}

func NewPointsService(
	entries entry.Repository,
	events event.Repository,
	bonuses bonus.Repository,
	logger *logging.Logger,
) *PointsService {
	if logger == nil {
		logger = logging.Default()
	}

	return &PointsService{
		entries: entries,
		events:  events,
		bonuses: bonuses,
		logger:  logger,
	}
}

// RecalculatePool recomputes every entry in the pool. One entry failing to
// update never blocks the rest: failures are logged and collected in the
// summary.
func (s *PointsService) RecalculatePool(ctx context.Context, poolID string) (RecomputeSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PointsService.RecalculatePool")
	defer span.End()

	entries, err := s.entries.ListByPool(ctx, poolID)
	if err != nil {
		return RecomputeSummary{}, fmt.Errorf("list entries for recompute: %w", err)
	}
	if len(entries) == 0 {
		return RecomputeSummary{}, nil
	}

	weeklyEvents, err := s.events.ListByPool(ctx, poolID)
	if err != nil {
		return RecomputeSummary{}, fmt.Errorf("list weekly events for recompute: %w", err)
	}
	specialEvents, err := s.events.ListSpecialByPool(ctx, poolID)
	if err != nil {
		return RecomputeSummary{}, fmt.Errorf("list special events for recompute: %w", err)
	}
	questions, err := s.bonuses.ListByPool(ctx, poolID)
	if err != nil {
		return RecomputeSummary{}, fmt.Errorf("list bonus questions for recompute: %w", err)
	}

	pointsByContestant := make(map[string]int)
	for _, ev := range weeklyEvents {
		pointsByContestant[ev.ContestantID] += ev.PointsAwarded
	}
	for _, ev := range specialEvents {
		pointsByContestant[ev.ContestantID] += ev.PointsAwarded
	}

	summary := RecomputeSummary{}
	for _, e := range entries {
		weekly := 0
		for _, contestantID := range e.PlayerIDs {
			weekly += pointsByContestant[contestantID]
		}
		bonusPoints := scoreBonusAnswers(e, questions)
		total := weekly + bonusPoints

		if err := s.entries.UpdatePoints(ctx, e.ID, weekly, bonusPoints, total); err != nil {
			s.logger.ErrorContext(ctx, "entry points update failed",
				"pool_id", poolID,
				"entry_id", e.ID,
				"error", err,
			)
			summary.Failed = append(summary.Failed, e.ID)
			continue
		}
		summary.Successful++
	}

	return summary, nil
}

// scoreBonusAnswers sums the points of revealed questions whose stored
// answer deep-equals the correct one. Unrevealed questions never score,
// whatever the entry answered.
func scoreBonusAnswers(e entry.Entry, questions []bonus.Question) int {
	if len(e.BonusAnswers) == 0 {
		return 0
	}

	total := 0
	for _, q := range questions {
		if !q.AnswerRevealed || q.CorrectAnswer == nil {
			continue
		}
		answer, ok := e.BonusAnswers[q.ID]
		if !ok {
			continue
		}
		if answer.Matches(q.Type, *q.CorrectAnswer) {
			total += q.PointsValue
		}
	}
	return total
}
