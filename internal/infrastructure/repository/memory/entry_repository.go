package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/poolhaus/fantasy-pool/internal/domain/entry"
)

type EntryRepository struct {
	mu    sync.RWMutex
	items map[string]entry.Entry
}

func NewEntryRepository() *EntryRepository {
	return &EntryRepository{items: make(map[string]entry.Entry)}
}

func (r *EntryRepository) ListByPool(_ context.Context, poolID string) ([]entry.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]entry.Entry, 0)
	for _, e := range r.items {
		if e.PoolID == poolID && e.DeletedAt == nil {
			out = append(out, e)
		}
	}
	sortEntries(out)
	return out, nil
}

func (r *EntryRepository) ListByUser(_ context.Context, userID string) ([]entry.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]entry.Entry, 0)
	for _, e := range r.items {
		if e.UserID == userID && e.DeletedAt == nil {
			out = append(out, e)
		}
	}
	sortEntries(out)
	return out, nil
}

func (r *EntryRepository) GetByID(_ context.Context, entryID string) (entry.Entry, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.items[entryID]
	if !ok || e.DeletedAt != nil {
		return entry.Entry{}, false, nil
	}
	return e, true, nil
}

func (r *EntryRepository) Create(_ context.Context, e entry.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[e.ID]; exists {
		return fmt.Errorf("entry %s already exists", e.ID)
	}
	r.items[e.ID] = e
	return nil
}

func (r *EntryRepository) Update(_ context.Context, e entry.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.items[e.ID]
	if !exists || existing.DeletedAt != nil {
		return fmt.Errorf("entry %s not found", e.ID)
	}
	r.items[e.ID] = e
	return nil
}

func (r *EntryRepository) SoftDelete(_ context.Context, entryID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.items[entryID]
	if !exists || e.DeletedAt != nil {
		return fmt.Errorf("entry %s not found", entryID)
	}
	now := time.Now().UTC()
	e.DeletedAt = &now
	r.items[entryID] = e
	return nil
}

func (r *EntryRepository) UpdatePoints(_ context.Context, entryID string, weekly, bonus, total int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.items[entryID]
	if !exists || e.DeletedAt != nil {
		return fmt.Errorf("entry %s not found", entryID)
	}
	e.WeeklyPoints = weekly
	e.BonusPoints = bonus
	e.TotalPoints = total
	r.items[entryID] = e
	return nil
}

func sortEntries(entries []entry.Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.Before(entries[j].CreatedAt)
		}
		return entries[i].ID < entries[j].ID
	})
}
