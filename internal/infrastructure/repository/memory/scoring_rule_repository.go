package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/poolhaus/fantasy-pool/internal/domain/scoringrule"
)

type ScoringRuleRepository struct {
	mu    sync.RWMutex
	items map[string]scoringrule.Rule
}

func NewScoringRuleRepository(rules []scoringrule.Rule) *ScoringRuleRepository {
	items := make(map[string]scoringrule.Rule, len(rules))
	for _, r := range rules {
		items[r.ID] = r
	}
	return &ScoringRuleRepository{items: items}
}

func (r *ScoringRuleRepository) ListByPool(_ context.Context, poolID string) ([]scoringrule.Rule, error) {
	return r.list(poolID, false), nil
}

func (r *ScoringRuleRepository) ListActiveByPool(_ context.Context, poolID string) ([]scoringrule.Rule, error) {
	return r.list(poolID, true), nil
}

func (r *ScoringRuleRepository) list(poolID string, activeOnly bool) []scoringrule.Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]scoringrule.Rule, 0)
	for _, rule := range r.items {
		if rule.PoolID != poolID {
			continue
		}
		if activeOnly && !rule.IsActive {
			continue
		}
		out = append(out, rule)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Subcategory < out[j].Subcategory
	})
	return out
}

// seedDefaults installs the stock rule set for a pool, skipping rows that
// already exist. Idempotent, like the SQL seed function's ON CONFLICT DO
// NOTHING.
func (r *ScoringRuleRepository) seedDefaults(poolID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rule := range scoringrule.Defaults(poolID) {
		if _, exists := r.items[rule.ID]; exists {
			continue
		}
		r.items[rule.ID] = rule
	}
}

func (r *ScoringRuleRepository) Create(_ context.Context, rule scoringrule.Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[rule.ID]; exists {
		return fmt.Errorf("scoring rule %s already exists", rule.ID)
	}
	r.items[rule.ID] = rule
	return nil
}

func (r *ScoringRuleRepository) Update(_ context.Context, rule scoringrule.Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[rule.ID]; !exists {
		return fmt.Errorf("scoring rule %s not found", rule.ID)
	}
	r.items[rule.ID] = rule
	return nil
}
