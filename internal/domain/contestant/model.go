package contestant

import (
	"fmt"
	"time"
)

// Contestant is one show participant inside a pool. IsActive stays true until
// an eviction or quit-type special event flips it, and may flip back on a
// came-back event.
type Contestant struct {
	ID         string
	PoolID     string
	Name       string
	IsActive   bool
	GroupID    string
	SortOrder  int
	Age        int
	Hometown   string
	Occupation string
	Bio        string
	PhotoURL   string

	// Floater-achievement bookkeeping, updated on every scoring pass.
	ConsecutiveWeeksNoWin int
	LastWinWeek           int

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c Contestant) Validate() error {
	if c.PoolID == "" {
		return fmt.Errorf("contestant pool id is required")
	}
	if c.Name == "" {
		return fmt.Errorf("contestant name is required")
	}

	return nil
}

// Group is a draft group: entries must pick a bounded number of contestants
// per group during the draft wizard.
type Group struct {
	ID        string
	PoolID    string
	Name      string
	SortOrder int
}
