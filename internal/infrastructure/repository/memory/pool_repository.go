// Package memory holds in-memory repository implementations backing local
// development mode and the test suites.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/poolhaus/fantasy-pool/internal/domain/pool"
)

type PoolRepository struct {
	mu          sync.RWMutex
	pools       map[string]pool.Pool
	memberships []pool.Membership
	winners     []pool.Winner
	rules       *ScoringRuleRepository

	// SeedDefaultsErr lets tests inject transient seed failures.
	SeedDefaultsErr  error
	seedDefaultCalls int
}

func NewPoolRepository() *PoolRepository {
	return &PoolRepository{pools: make(map[string]pool.Pool)}
}

func (r *PoolRepository) GetByID(_ context.Context, poolID string) (pool.Pool, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.pools[poolID]
	return p, ok, nil
}

func (r *PoolRepository) GetByInviteCode(_ context.Context, inviteCode string) (pool.Pool, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.pools {
		if p.InviteCode == inviteCode {
			return p, true, nil
		}
	}
	return pool.Pool{}, false, nil
}

func (r *PoolRepository) ListByUser(_ context.Context, userID string) ([]pool.Pool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pool.Pool, 0)
	for _, m := range r.memberships {
		if m.UserID != userID {
			continue
		}
		if p, ok := r.pools[m.PoolID]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *PoolRepository) Create(_ context.Context, p pool.Pool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pools[p.ID]; exists {
		return fmt.Errorf("pool %s already exists", p.ID)
	}
	r.pools[p.ID] = p
	r.memberships = append(r.memberships, pool.Membership{
		PoolID:   p.ID,
		UserID:   p.OwnerUserID,
		Role:     pool.RoleAdmin,
		JoinedAt: time.Now().UTC(),
	})
	return nil
}

func (r *PoolRepository) Update(_ context.Context, p pool.Pool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pools[p.ID]; !exists {
		return fmt.Errorf("pool %s not found", p.ID)
	}
	r.pools[p.ID] = p
	return nil
}

func (r *PoolRepository) SetCurrentWeek(_ context.Context, poolID string, week int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, exists := r.pools[poolID]
	if !exists {
		return fmt.Errorf("pool %s not found", poolID)
	}
	p.CurrentWeek = week
	r.pools[poolID] = p
	return nil
}

// SeedRulesInto points SeedDefaults at the rule store so a new pool gets the
// stock rule set, like the seed_new_pool_defaults SQL function in postgres
// mode.
func (r *PoolRepository) SeedRulesInto(rules *ScoringRuleRepository) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = rules
}

func (r *PoolRepository) SeedDefaults(_ context.Context, poolID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seedDefaultCalls++
	if r.SeedDefaultsErr != nil {
		return r.SeedDefaultsErr
	}
	if _, exists := r.pools[poolID]; !exists {
		return fmt.Errorf("pool %s not found", poolID)
	}
	if r.rules != nil {
		r.rules.seedDefaults(poolID)
	}
	return nil
}

// SeedDefaultsCalls reports how often SeedDefaults ran, for retry tests.
func (r *PoolRepository) SeedDefaultsCalls() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.seedDefaultCalls
}

func (r *PoolRepository) JoinByInvite(_ context.Context, inviteCode, userID string) (pool.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var target pool.Pool
	found := false
	for _, p := range r.pools {
		if p.InviteCode == inviteCode {
			target = p
			found = true
			break
		}
	}
	if !found {
		return pool.Membership{}, fmt.Errorf("join pool by invite: invalid invite code")
	}

	for _, m := range r.memberships {
		if m.PoolID == target.ID && m.UserID == userID {
			return m, nil
		}
	}

	membership := pool.Membership{
		PoolID:   target.ID,
		UserID:   userID,
		Role:     pool.RoleMember,
		JoinedAt: time.Now().UTC(),
	}
	r.memberships = append(r.memberships, membership)
	return membership, nil
}

func (r *PoolRepository) ListMembershipsByPool(_ context.Context, poolID string) ([]pool.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pool.Membership, 0)
	for _, m := range r.memberships {
		if m.PoolID == poolID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *PoolRepository) ListMembershipsByUser(_ context.Context, userID string) ([]pool.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pool.Membership, 0)
	for _, m := range r.memberships {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *PoolRepository) RecordWinners(_ context.Context, winners []pool.Winner) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Replace any previous record for the same (pool, place).
	for _, w := range winners {
		replaced := false
		for i, existing := range r.winners {
			if existing.PoolID == w.PoolID && existing.Place == w.Place {
				r.winners[i] = w
				replaced = true
				break
			}
		}
		if !replaced {
			r.winners = append(r.winners, w)
		}
	}
	return nil
}

// Winners returns recorded finale payouts for assertions.
func (r *PoolRepository) Winners(poolID string) []pool.Winner {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pool.Winner, 0)
	for _, w := range r.winners {
		if w.PoolID == poolID {
			out = append(out, w)
		}
	}
	return out
}
