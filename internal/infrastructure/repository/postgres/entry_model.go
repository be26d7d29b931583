package postgres

import (
	"time"

	"github.com/lib/pq"
)

type entryTableModel struct {
	ID               int64          `db:"id"`
	PublicID         string         `db:"public_id"`
	PoolPublicID     string         `db:"pool_public_id"`
	UserID           string         `db:"user_id"`
	TeamName         string         `db:"team_name"`
	PlayerIDs        pq.StringArray `db:"player_ids"`
	BonusAnswers     []byte         `db:"bonus_answers"`
	WeeklyPoints     int            `db:"weekly_points"`
	BonusPoints      int            `db:"bonus_points"`
	TotalPoints      int            `db:"total_points"`
	PaymentConfirmed bool           `db:"payment_confirmed"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
	DeletedAt        *time.Time     `db:"deleted_at"`
}
