package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/poolhaus/fantasy-pool/internal/domain/bonus"
	"github.com/poolhaus/fantasy-pool/internal/domain/entry"
	"github.com/poolhaus/fantasy-pool/internal/infrastructure/repository/memory"
	"github.com/poolhaus/fantasy-pool/internal/platform/logging"
)

type bonusFixture struct {
	bonuses *memory.BonusRepository
	entries *memory.EntryRepository
	svc     *BonusService
}

func newBonusFixture() *bonusFixture {
	bonuses := memory.NewBonusRepository()
	entries := memory.NewEntryRepository()
	events := memory.NewEventRepository()
	logger := logging.NewNop()
	points := NewPointsService(entries, events, bonuses, logger)

	return &bonusFixture{
		bonuses: bonuses,
		entries: entries,
		svc:     NewBonusService(bonuses, points, &seqIDGen{}, logger),
	}
}

func TestBonusCreate(t *testing.T) {
	f := newBonusFixture()

	q, err := f.svc.Create(context.Background(), CreateBonusQuestionInput{
		PoolID:      "pool-1",
		Text:        "  Who wins the first HOH?  ",
		Type:        "single_player_select",
		PointsValue: 5,
	})
	if err != nil {
		t.Fatalf("create question: %v", err)
	}
	if q.Text != "Who wins the first HOH?" {
		t.Fatalf("text not trimmed: got=%q", q.Text)
	}
	if q.AnswerRevealed {
		t.Fatal("new question marked revealed")
	}

	_, err = f.svc.Create(context.Background(), CreateBonusQuestionInput{
		PoolID:      "pool-1",
		Text:        "Bad type",
		Type:        "multiple_choice",
		PointsValue: 5,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for unknown type, got %v", err)
	}

	_, err = f.svc.Create(context.Background(), CreateBonusQuestionInput{
		PoolID:      "pool-1",
		Text:        "Zero points",
		Type:        "yes_no",
		PointsValue: 0,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for zero points, got %v", err)
	}
}

func TestBonusReveal_ScoresMatchingAnswers(t *testing.T) {
	f := newBonusFixture()

	q, err := f.svc.Create(context.Background(), CreateBonusQuestionInput{
		PoolID:      "pool-1",
		Text:        "Will the veto be used?",
		Type:        "yes_no",
		PointsValue: 3,
	})
	if err != nil {
		t.Fatalf("create question: %v", err)
	}

	err = f.entries.Create(context.Background(), entry.Entry{
		ID:           "e-1",
		PoolID:       "pool-1",
		UserID:       "user-1",
		TeamName:     "team",
		PlayerIDs:    []string{"c-a"},
		BonusAnswers: map[string]bonus.Answer{q.ID: {Value: "yes"}},
	})
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}

	summary, err := f.svc.Reveal(context.Background(), q.ID, bonus.Answer{Value: "yes"})
	if err != nil {
		t.Fatalf("reveal: %v", err)
	}
	if summary.Successful != 1 {
		t.Fatalf("unexpected recompute summary: %+v", summary)
	}

	e, _, err := f.entries.GetByID(context.Background(), "e-1")
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if e.BonusPoints != 3 || e.TotalPoints != 3 {
		t.Fatalf("reveal did not score: bonus=%d total=%d", e.BonusPoints, e.TotalPoints)
	}
}

func TestBonusReveal_ValidatesAnswerShape(t *testing.T) {
	f := newBonusFixture()

	q, err := f.svc.Create(context.Background(), CreateBonusQuestionInput{
		PoolID:      "pool-1",
		Text:        "Who are the final two?",
		Type:        "dual_player_select",
		PointsValue: 10,
	})
	if err != nil {
		t.Fatalf("create question: %v", err)
	}

	_, err = f.svc.Reveal(context.Background(), q.ID, bonus.Answer{Player1: "c-a"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for half an answer, got %v", err)
	}

	_, err = f.svc.Reveal(context.Background(), "missing", bonus.Answer{Value: "yes"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestBonusUpdate_RecomputesOnlyWhenRevealed(t *testing.T) {
	f := newBonusFixture()

	q, err := f.svc.Create(context.Background(), CreateBonusQuestionInput{
		PoolID:      "pool-1",
		Text:        "Will the veto be used?",
		Type:        "yes_no",
		PointsValue: 3,
	})
	if err != nil {
		t.Fatalf("create question: %v", err)
	}

	err = f.entries.Create(context.Background(), entry.Entry{
		ID:           "e-1",
		PoolID:       "pool-1",
		UserID:       "user-1",
		TeamName:     "team",
		PlayerIDs:    []string{"c-a"},
		BonusAnswers: map[string]bonus.Answer{q.ID: {Value: "yes"}},
	})
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}

	// Unrevealed: a points change must not touch entry totals.
	newPoints := 7
	if _, err := f.svc.Update(context.Background(), UpdateBonusQuestionInput{
		QuestionID:  q.ID,
		PointsValue: &newPoints,
	}); err != nil {
		t.Fatalf("update unrevealed question: %v", err)
	}
	e, _, _ := f.entries.GetByID(context.Background(), "e-1")
	if e.TotalPoints != 0 {
		t.Fatalf("unrevealed update recomputed points: got=%d", e.TotalPoints)
	}

	if _, err := f.svc.Reveal(context.Background(), q.ID, bonus.Answer{Value: "yes"}); err != nil {
		t.Fatalf("reveal: %v", err)
	}

	// Revealed: the new value lands through the recompute.
	bumped := 9
	if _, err := f.svc.Update(context.Background(), UpdateBonusQuestionInput{
		QuestionID:  q.ID,
		PointsValue: &bumped,
	}); err != nil {
		t.Fatalf("update revealed question: %v", err)
	}
	e, _, _ = f.entries.GetByID(context.Background(), "e-1")
	if e.TotalPoints != 9 {
		t.Fatalf("revealed update did not recompute: got=%d want=%d", e.TotalPoints, 9)
	}
}
