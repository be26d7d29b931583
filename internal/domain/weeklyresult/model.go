package weeklyresult

import (
	"fmt"
	"time"
)

// Result is the denormalized summary row for one week of one pool, kept for
// fast reads independently of the normalized event log. Exactly one row per
// (pool, week); empty selections are stored as empty strings, never as the
// admin form's sentinel values.
type Result struct {
	PoolID               string
	WeekNumber           int
	HOHWinnerID          string
	POVWinnerID          string
	POVUsedOnID          string
	Nominees             []string
	ReplacementNomineeID string
	// EvictedIDs is ordered by eviction round; up to three entries on
	// double/triple-eviction weeks.
	EvictedIDs         []string
	IsDoubleEviction   bool
	IsTripleEviction   bool
	JuryPhaseStarted   bool
	IsSeasonFinale     bool
	WinnerID           string
	RunnerUpID         string
	AmericasFavoriteID string
	RecordedAt         time.Time
}

func (r Result) Validate() error {
	if r.PoolID == "" {
		return fmt.Errorf("weekly result pool id is required")
	}
	if r.WeekNumber <= 0 {
		return fmt.Errorf("weekly result week number must be greater than zero")
	}

	return nil
}
