package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/poolhaus/fantasy-pool/internal/domain/event"
	"github.com/poolhaus/fantasy-pool/internal/domain/scoringrule"
	"github.com/poolhaus/fantasy-pool/internal/platform/cache"
)

const defaultRuleCacheTTL = 5 * time.Minute

// RuleLookup resolves scoring-rule point values by (pool, subcategory) over
// a pool's active rules. The cache is owned here and invalidated explicitly
// on rule edits; nothing else holds rule state.
type RuleLookup struct {
	rules scoringrule.Repository
	store *cache.Store
}

func NewRuleLookup(rules scoringrule.Repository, ttl time.Duration) *RuleLookup {
	if ttl <= 0 {
		ttl = defaultRuleCacheTTL
	}
	return &RuleLookup{
		rules: rules,
		store: cache.NewStore(ttl),
	}
}

// PointsFor returns the active rule's point value for the kind's
// subcategory. The boolean reports whether an active rule exists.
func (l *RuleLookup) PointsFor(ctx context.Context, poolID string, kind event.Kind) (int, bool, error) {
	bySubcategory, err := l.activeBySubcategory(ctx, poolID)
	if err != nil {
		return 0, false, err
	}

	rule, ok := bySubcategory[kind.Subcategory()]
	if !ok {
		return 0, false, nil
	}
	return rule.Points, true, nil
}

// Invalidate drops the pool's cached rules. Called on every rule edit.
func (l *RuleLookup) Invalidate(ctx context.Context, poolID string) {
	l.store.DeletePrefix(ctx, ruleCacheKey(poolID))
}

func (l *RuleLookup) activeBySubcategory(ctx context.Context, poolID string) (map[string]scoringrule.Rule, error) {
	value, err := l.store.GetOrLoad(ctx, ruleCacheKey(poolID), func(ctx context.Context) (any, error) {
		rules, err := l.rules.ListActiveByPool(ctx, poolID)
		if err != nil {
			return nil, fmt.Errorf("list active scoring rules: %w", err)
		}

		bySubcategory := make(map[string]scoringrule.Rule, len(rules))
		for _, rule := range rules {
			bySubcategory[rule.Subcategory] = rule
		}
		return bySubcategory, nil
	})
	if err != nil {
		return nil, err
	}

	bySubcategory, ok := value.(map[string]scoringrule.Rule)
	if !ok {
		return nil, fmt.Errorf("unexpected rule cache value type %T", value)
	}
	return bySubcategory, nil
}

func ruleCacheKey(poolID string) string {
	return "rules:" + poolID
}
