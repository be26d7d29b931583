package postgres

import (
	"database/sql"
	"time"
)

type poolTableModel struct {
	ID                   int64        `db:"id"`
	PublicID             string       `db:"public_id"`
	Name                 string       `db:"name"`
	InviteCode           string       `db:"invite_code"`
	OwnerUserID          string       `db:"owner_user_id"`
	TeamSize             int          `db:"team_size"`
	CurrentWeek          int          `db:"current_week"`
	FinalWeek            int          `db:"final_week"`
	JuryStartWeek        int          `db:"jury_start_week"`
	AllowDuplicatePicks  bool         `db:"allow_duplicate_picks"`
	RegistrationDeadline sql.NullTime `db:"registration_deadline"`
	DraftLocked          bool         `db:"draft_locked"`
	EntryFeeCents        int64        `db:"entry_fee_cents"`
	CreatedAt            time.Time    `db:"created_at"`
	UpdatedAt            time.Time    `db:"updated_at"`
	DeletedAt            *time.Time   `db:"deleted_at"`
}

type poolInsertModel struct {
	PublicID             string       `db:"public_id"`
	Name                 string       `db:"name"`
	InviteCode           string       `db:"invite_code"`
	OwnerUserID          string       `db:"owner_user_id"`
	TeamSize             int          `db:"team_size"`
	CurrentWeek          int          `db:"current_week"`
	FinalWeek            int          `db:"final_week"`
	JuryStartWeek        int          `db:"jury_start_week"`
	AllowDuplicatePicks  bool         `db:"allow_duplicate_picks"`
	RegistrationDeadline sql.NullTime `db:"registration_deadline"`
	DraftLocked          bool         `db:"draft_locked"`
	EntryFeeCents        int64        `db:"entry_fee_cents"`
}

type membershipTableModel struct {
	ID           int64     `db:"id"`
	PoolPublicID string    `db:"pool_public_id"`
	UserID       string    `db:"user_id"`
	Role         string    `db:"role"`
	JoinedAt     time.Time `db:"joined_at"`
}
