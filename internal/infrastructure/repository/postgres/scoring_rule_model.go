package postgres

import (
	"database/sql"
	"time"
)

type scoringRuleTableModel struct {
	ID           int64          `db:"id"`
	PublicID     string         `db:"public_id"`
	PoolPublicID string         `db:"pool_public_id"`
	Category     string         `db:"category"`
	Subcategory  string         `db:"subcategory"`
	Points       int            `db:"points"`
	IsActive     bool           `db:"is_active"`
	Description  sql.NullString `db:"description"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	DeletedAt    *time.Time     `db:"deleted_at"`
}

type scoringRuleInsertModel struct {
	PublicID     string         `db:"public_id"`
	PoolPublicID string         `db:"pool_public_id"`
	Category     string         `db:"category"`
	Subcategory  string         `db:"subcategory"`
	Points       int            `db:"points"`
	IsActive     bool           `db:"is_active"`
	Description  sql.NullString `db:"description"`
}
