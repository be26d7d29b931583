package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/poolhaus/fantasy-pool/internal/domain/weeklyresult"
	qb "github.com/poolhaus/fantasy-pool/internal/platform/querybuilder"
)

type WeeklyResultRepository struct {
	db *sqlx.DB
}

func NewWeeklyResultRepository(db *sqlx.DB) *WeeklyResultRepository {
	return &WeeklyResultRepository{db: db}
}

func (r *WeeklyResultRepository) Get(ctx context.Context, poolID string, week int) (weeklyresult.Result, bool, error) {
	query, args, err := qb.Select("*").From("weekly_results").
		Where(
			qb.Eq("pool_public_id", poolID),
			qb.Eq("week_number", week),
		).
		ToSQL()
	if err != nil {
		return weeklyresult.Result{}, false, fmt.Errorf("build get weekly result query: %w", err)
	}

	var row weeklyResultTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return weeklyresult.Result{}, false, nil
		}
		return weeklyresult.Result{}, false, fmt.Errorf("get weekly result: %w", err)
	}
	return mapWeeklyResultRow(row), true, nil
}

func (r *WeeklyResultRepository) ListByPool(ctx context.Context, poolID string) ([]weeklyresult.Result, error) {
	query, args, err := qb.Select("*").From("weekly_results").
		Where(qb.Eq("pool_public_id", poolID)).
		OrderBy("week_number").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list weekly results query: %w", err)
	}

	var rows []weeklyResultTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list weekly results: %w", err)
	}

	out := make([]weeklyresult.Result, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapWeeklyResultRow(row))
	}
	return out, nil
}

func (r *WeeklyResultRepository) Upsert(ctx context.Context, result weeklyresult.Result) error {
	query, args, err := qb.InsertInto("weekly_results").
		Columns(
			"pool_public_id", "week_number",
			"hoh_winner_id", "pov_winner_id", "pov_used_on_id",
			"nominees", "replacement_nominee_id", "evicted_ids",
			"is_double_eviction", "is_triple_eviction",
			"jury_phase_started", "is_season_finale",
			"winner_id", "runner_up_id", "americas_favorite_id",
			"recorded_at",
		).
		Values(
			result.PoolID, result.WeekNumber,
			nullString(result.HOHWinnerID), nullString(result.POVWinnerID), nullString(result.POVUsedOnID),
			pq.StringArray(result.Nominees), nullString(result.ReplacementNomineeID), pq.StringArray(result.EvictedIDs),
			result.IsDoubleEviction, result.IsTripleEviction,
			result.JuryPhaseStarted, result.IsSeasonFinale,
			nullString(result.WinnerID), nullString(result.RunnerUpID), nullString(result.AmericasFavoriteID),
			result.RecordedAt,
		).
		Suffix("ON CONFLICT (pool_public_id, week_number) DO UPDATE SET " +
			"hoh_winner_id = EXCLUDED.hoh_winner_id, " +
			"pov_winner_id = EXCLUDED.pov_winner_id, " +
			"pov_used_on_id = EXCLUDED.pov_used_on_id, " +
			"nominees = EXCLUDED.nominees, " +
			"replacement_nominee_id = EXCLUDED.replacement_nominee_id, " +
			"evicted_ids = EXCLUDED.evicted_ids, " +
			"is_double_eviction = EXCLUDED.is_double_eviction, " +
			"is_triple_eviction = EXCLUDED.is_triple_eviction, " +
			"jury_phase_started = EXCLUDED.jury_phase_started, " +
			"is_season_finale = EXCLUDED.is_season_finale, " +
			"winner_id = EXCLUDED.winner_id, " +
			"runner_up_id = EXCLUDED.runner_up_id, " +
			"americas_favorite_id = EXCLUDED.americas_favorite_id, " +
			"recorded_at = EXCLUDED.recorded_at").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert weekly result query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert weekly result: %w", err)
	}
	return nil
}

func mapWeeklyResultRow(row weeklyResultTableModel) weeklyresult.Result {
	return weeklyresult.Result{
		PoolID:               row.PoolPublicID,
		WeekNumber:           row.WeekNumber,
		HOHWinnerID:          nullStringValue(row.HOHWinnerID),
		POVWinnerID:          nullStringValue(row.POVWinnerID),
		POVUsedOnID:          nullStringValue(row.POVUsedOnID),
		Nominees:             []string(row.Nominees),
		ReplacementNomineeID: nullStringValue(row.ReplacementNomineeID),
		EvictedIDs:           []string(row.EvictedIDs),
		IsDoubleEviction:     row.IsDoubleEviction,
		IsTripleEviction:     row.IsTripleEviction,
		JuryPhaseStarted:     row.JuryPhaseStarted,
		IsSeasonFinale:       row.IsSeasonFinale,
		WinnerID:             nullStringValue(row.WinnerID),
		RunnerUpID:           nullStringValue(row.RunnerUpID),
		AmericasFavoriteID:   nullStringValue(row.AmericasFavoriteID),
		RecordedAt:           row.RecordedAt,
	}
}
