package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/poolhaus/fantasy-pool/internal/domain/event"
)

type EventRepository struct {
	mu       sync.RWMutex
	weekly   []event.WeeklyEvent
	specials []event.SpecialEvent
}

func NewEventRepository() *EventRepository {
	return &EventRepository{}
}

func (r *EventRepository) ListByPool(_ context.Context, poolID string) ([]event.WeeklyEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]event.WeeklyEvent, 0)
	for _, e := range r.weekly {
		if e.PoolID == poolID {
			out = append(out, e)
		}
	}
	sortWeekly(out)
	return out, nil
}

func (r *EventRepository) ListByWeek(_ context.Context, poolID string, week int) ([]event.WeeklyEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]event.WeeklyEvent, 0)
	for _, e := range r.weekly {
		if e.PoolID == poolID && e.WeekNumber == week {
			out = append(out, e)
		}
	}
	sortWeekly(out)
	return out, nil
}

func (r *EventRepository) ReplaceWeek(_ context.Context, poolID string, week int, events []event.WeeklyEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.weekly[:0]
	for _, e := range r.weekly {
		if e.PoolID == poolID && e.WeekNumber == week {
			continue
		}
		kept = append(kept, e)
	}
	r.weekly = append(kept, events...)
	return nil
}

func (r *EventRepository) ListSpecialByPool(_ context.Context, poolID string) ([]event.SpecialEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]event.SpecialEvent, 0)
	for _, e := range r.specials {
		if e.PoolID == poolID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].WeekNumber < out[j].WeekNumber
	})
	return out, nil
}

func (r *EventRepository) InsertSpecial(_ context.Context, e event.SpecialEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.specials = append(r.specials, e)
	return nil
}

func (r *EventRepository) DeleteSpecialByWeek(_ context.Context, poolID string, week int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.specials[:0]
	for _, e := range r.specials {
		if e.PoolID == poolID && e.WeekNumber == week {
			continue
		}
		kept = append(kept, e)
	}
	r.specials = kept
	return nil
}

func (r *EventRepository) HasSpecial(_ context.Context, poolID, contestantID string, kind event.Kind) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.specials {
		if e.PoolID == poolID && e.ContestantID == contestantID && e.Kind == kind {
			return true, nil
		}
	}
	return false, nil
}

func sortWeekly(events []event.WeeklyEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].WeekNumber != events[j].WeekNumber {
			return events[i].WeekNumber < events[j].WeekNumber
		}
		return events[i].EvictionRound < events[j].EvictionRound
	})
}
