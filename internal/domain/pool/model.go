package pool

import (
	"fmt"
	"time"
)

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Pool is one instance of the fantasy competition: its own contestants,
// scoring rules, entries and season state.
type Pool struct {
	ID                   string
	Name                 string
	InviteCode           string
	OwnerUserID          string
	TeamSize             int
	CurrentWeek          int
	FinalWeek            int
	JuryStartWeek        int
	AllowDuplicatePicks  bool
	RegistrationDeadline *time.Time
	DraftLocked          bool
	EntryFeeCents        int64
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (p Pool) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("pool id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("pool name is required")
	}
	if p.OwnerUserID == "" {
		return fmt.Errorf("pool owner is required")
	}
	if p.TeamSize <= 0 {
		return fmt.Errorf("pool team size must be greater than zero")
	}

	return nil
}

// RegistrationOpen reports whether new entries may still be drafted.
func (p Pool) RegistrationOpen(now time.Time) bool {
	if p.DraftLocked {
		return false
	}
	if p.RegistrationDeadline == nil {
		return true
	}
	return now.Before(*p.RegistrationDeadline)
}

type Membership struct {
	PoolID   string
	UserID   string
	Role     string
	JoinedAt time.Time
}

func (m Membership) IsAdmin() bool {
	return m.Role == RoleAdmin
}

// Winner records a finale payout position for a pool.
type Winner struct {
	PoolID      string
	EntryID     string
	UserID      string
	Place       int
	PrizeCents  int64
	RecordedAt  time.Time
}
