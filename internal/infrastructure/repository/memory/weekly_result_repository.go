package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/poolhaus/fantasy-pool/internal/domain/weeklyresult"
)

type WeeklyResultRepository struct {
	mu    sync.RWMutex
	items map[string]weeklyresult.Result
}

func NewWeeklyResultRepository() *WeeklyResultRepository {
	return &WeeklyResultRepository{items: make(map[string]weeklyresult.Result)}
}

func (r *WeeklyResultRepository) Get(_ context.Context, poolID string, week int) (weeklyresult.Result, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result, ok := r.items[resultKey(poolID, week)]
	return result, ok, nil
}

func (r *WeeklyResultRepository) ListByPool(_ context.Context, poolID string) ([]weeklyresult.Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]weeklyresult.Result, 0)
	for _, result := range r.items {
		if result.PoolID == poolID {
			out = append(out, result)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].WeekNumber < out[j].WeekNumber
	})
	return out, nil
}

func (r *WeeklyResultRepository) Upsert(_ context.Context, result weeklyresult.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[resultKey(result.PoolID, result.WeekNumber)] = result
	return nil
}

func resultKey(poolID string, week int) string {
	return fmt.Sprintf("%s:%d", poolID, week)
}
