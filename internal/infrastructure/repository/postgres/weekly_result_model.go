package postgres

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

type weeklyResultTableModel struct {
	ID                   int64          `db:"id"`
	PoolPublicID         string         `db:"pool_public_id"`
	WeekNumber           int            `db:"week_number"`
	HOHWinnerID          sql.NullString `db:"hoh_winner_id"`
	POVWinnerID          sql.NullString `db:"pov_winner_id"`
	POVUsedOnID          sql.NullString `db:"pov_used_on_id"`
	Nominees             pq.StringArray `db:"nominees"`
	ReplacementNomineeID sql.NullString `db:"replacement_nominee_id"`
	EvictedIDs           pq.StringArray `db:"evicted_ids"`
	IsDoubleEviction     bool           `db:"is_double_eviction"`
	IsTripleEviction     bool           `db:"is_triple_eviction"`
	JuryPhaseStarted     bool           `db:"jury_phase_started"`
	IsSeasonFinale       bool           `db:"is_season_finale"`
	WinnerID             sql.NullString `db:"winner_id"`
	RunnerUpID           sql.NullString `db:"runner_up_id"`
	AmericasFavoriteID   sql.NullString `db:"americas_favorite_id"`
	RecordedAt           time.Time      `db:"recorded_at"`
}
