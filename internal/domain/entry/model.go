package entry

import (
	"fmt"
	"time"

	"github.com/poolhaus/fantasy-pool/internal/domain/bonus"
)

// Entry is one drafted team. WeeklyPoints, BonusPoints and TotalPoints are
// owned by the points recompute and never independently edited;
// TotalPoints is always WeeklyPoints + BonusPoints.
type Entry struct {
	ID               string
	PoolID           string
	UserID           string
	TeamName         string
	PlayerIDs        []string
	BonusAnswers     map[string]bonus.Answer
	WeeklyPoints     int
	BonusPoints      int
	TotalPoints      int
	PaymentConfirmed bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        *time.Time
}

func (e Entry) Validate() error {
	if e.PoolID == "" {
		return fmt.Errorf("entry pool id is required")
	}
	if e.UserID == "" {
		return fmt.Errorf("entry user id is required")
	}
	if e.TeamName == "" {
		return fmt.Errorf("entry team name is required")
	}
	if len(e.PlayerIDs) == 0 {
		return fmt.Errorf("entry picks are required")
	}

	return nil
}

// HasPlayer reports whether the entry drafted the given contestant.
func (e Entry) HasPlayer(contestantID string) bool {
	if contestantID == "" {
		return false
	}
	for _, id := range e.PlayerIDs {
		if id == contestantID {
			return true
		}
	}
	return false
}
