package postgres

import (
	"database/sql"
	"time"
)

type weeklyEventTableModel struct {
	ID                 int64     `db:"id"`
	PublicID           string    `db:"public_id"`
	PoolPublicID       string    `db:"pool_public_id"`
	WeekNumber         int       `db:"week_number"`
	ContestantPublicID string    `db:"contestant_public_id"`
	Kind               string    `db:"kind"`
	PointsAwarded      int       `db:"points_awarded"`
	EvictionRound      int       `db:"eviction_round"`
	CreatedAt          time.Time `db:"created_at"`
}

type specialEventTableModel struct {
	ID                 int64          `db:"id"`
	PublicID           string         `db:"public_id"`
	PoolPublicID       string         `db:"pool_public_id"`
	ContestantPublicID string         `db:"contestant_public_id"`
	Kind               string         `db:"kind"`
	Description        sql.NullString `db:"description"`
	PointsAwarded      int            `db:"points_awarded"`
	WeekNumber         int            `db:"week_number"`
	CreatedAt          time.Time      `db:"created_at"`
}

type specialEventInsertModel struct {
	PublicID           string         `db:"public_id"`
	PoolPublicID       string         `db:"pool_public_id"`
	ContestantPublicID string         `db:"contestant_public_id"`
	Kind               string         `db:"kind"`
	Description        sql.NullString `db:"description"`
	PointsAwarded      int            `db:"points_awarded"`
	WeekNumber         int            `db:"week_number"`
}
