package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/poolhaus/fantasy-pool/internal/domain/contestant"
)

type ContestantRepository struct {
	mu     sync.RWMutex
	items  map[string]contestant.Contestant
	groups map[string]contestant.Group
}

func NewContestantRepository() *ContestantRepository {
	return &ContestantRepository{
		items:  make(map[string]contestant.Contestant),
		groups: make(map[string]contestant.Group),
	}
}

func (r *ContestantRepository) ListByPool(_ context.Context, poolID string) ([]contestant.Contestant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]contestant.Contestant, 0)
	for _, c := range r.items {
		if c.PoolID == poolID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *ContestantRepository) GetByID(_ context.Context, contestantID string) (contestant.Contestant, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.items[contestantID]
	return c, ok, nil
}

func (r *ContestantRepository) Create(_ context.Context, c contestant.Contestant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[c.ID]; exists {
		return fmt.Errorf("contestant %s already exists", c.ID)
	}
	r.items[c.ID] = c
	return nil
}

func (r *ContestantRepository) Update(_ context.Context, c contestant.Contestant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[c.ID]; !exists {
		return fmt.Errorf("contestant %s not found", c.ID)
	}
	r.items[c.ID] = c
	return nil
}

func (r *ContestantRepository) Delete(_ context.Context, contestantID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[contestantID]; !exists {
		return fmt.Errorf("contestant %s not found", contestantID)
	}
	delete(r.items, contestantID)
	return nil
}

func (r *ContestantRepository) SetActive(_ context.Context, contestantID string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, exists := r.items[contestantID]
	if !exists {
		return fmt.Errorf("contestant %s not found", contestantID)
	}
	c.IsActive = active
	r.items[contestantID] = c
	return nil
}

func (r *ContestantRepository) UpdateWinStreak(_ context.Context, contestantID string, consecutiveWeeksNoWin, lastWinWeek int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, exists := r.items[contestantID]
	if !exists {
		return fmt.Errorf("contestant %s not found", contestantID)
	}
	c.ConsecutiveWeeksNoWin = consecutiveWeeksNoWin
	c.LastWinWeek = lastWinWeek
	r.items[contestantID] = c
	return nil
}

func (r *ContestantRepository) ListGroupsByPool(_ context.Context, poolID string) ([]contestant.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]contestant.Group, 0)
	for _, g := range r.groups {
		if g.PoolID == poolID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// AddGroup seeds a draft group directly, for dev mode and tests.
func (r *ContestantRepository) AddGroup(g contestant.Group) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups[g.ID] = g
}
