package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/poolhaus/fantasy-pool/internal/domain/bonus"
)

type BonusRepository struct {
	mu    sync.RWMutex
	items map[string]bonus.Question
}

func NewBonusRepository() *BonusRepository {
	return &BonusRepository{items: make(map[string]bonus.Question)}
}

func (r *BonusRepository) ListByPool(_ context.Context, poolID string) ([]bonus.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]bonus.Question, 0)
	for _, q := range r.items {
		if q.PoolID == poolID {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *BonusRepository) GetByID(_ context.Context, questionID string) (bonus.Question, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q, ok := r.items[questionID]
	return q, ok, nil
}

func (r *BonusRepository) Create(_ context.Context, q bonus.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[q.ID]; exists {
		return fmt.Errorf("bonus question %s already exists", q.ID)
	}
	r.items[q.ID] = q
	return nil
}

func (r *BonusRepository) Update(_ context.Context, q bonus.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[q.ID]; !exists {
		return fmt.Errorf("bonus question %s not found", q.ID)
	}
	r.items[q.ID] = q
	return nil
}

func (r *BonusRepository) Reveal(_ context.Context, questionID string, correct bonus.Answer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	q, exists := r.items[questionID]
	if !exists {
		return fmt.Errorf("bonus question %s not found", questionID)
	}
	answer := correct
	q.CorrectAnswer = &answer
	q.AnswerRevealed = true
	r.items[questionID] = q
	return nil
}
