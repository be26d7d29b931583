package postgres

import (
	"database/sql"
	"time"
)

type contestantTableModel struct {
	ID                    int64          `db:"id"`
	PublicID              string         `db:"public_id"`
	PoolPublicID          string         `db:"pool_public_id"`
	Name                  string         `db:"name"`
	IsActive              bool           `db:"is_active"`
	GroupPublicID         sql.NullString `db:"group_public_id"`
	SortOrder             int            `db:"sort_order"`
	Age                   int            `db:"age"`
	Hometown              sql.NullString `db:"hometown"`
	Occupation            sql.NullString `db:"occupation"`
	Bio                   sql.NullString `db:"bio"`
	PhotoURL              sql.NullString `db:"photo_url"`
	ConsecutiveWeeksNoWin int            `db:"consecutive_weeks_no_win"`
	LastWinWeek           int            `db:"last_win_week"`
	CreatedAt             time.Time      `db:"created_at"`
	UpdatedAt             time.Time      `db:"updated_at"`
	DeletedAt             *time.Time     `db:"deleted_at"`
}

type contestantInsertModel struct {
	PublicID      string         `db:"public_id"`
	PoolPublicID  string         `db:"pool_public_id"`
	Name          string         `db:"name"`
	IsActive      bool           `db:"is_active"`
	GroupPublicID sql.NullString `db:"group_public_id"`
	SortOrder     int            `db:"sort_order"`
	Age           int            `db:"age"`
	Hometown      sql.NullString `db:"hometown"`
	Occupation    sql.NullString `db:"occupation"`
	Bio           sql.NullString `db:"bio"`
	PhotoURL      sql.NullString `db:"photo_url"`
}

type contestantGroupTableModel struct {
	ID           int64      `db:"id"`
	PublicID     string     `db:"public_id"`
	PoolPublicID string     `db:"pool_public_id"`
	Name         string     `db:"name"`
	SortOrder    int        `db:"sort_order"`
	CreatedAt    time.Time  `db:"created_at"`
	DeletedAt    *time.Time `db:"deleted_at"`
}
