package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/poolhaus/fantasy-pool/internal/domain/pool"
	qb "github.com/poolhaus/fantasy-pool/internal/platform/querybuilder"
)

type PoolRepository struct {
	db *sqlx.DB
}

func NewPoolRepository(db *sqlx.DB) *PoolRepository {
	return &PoolRepository{db: db}
}

func (r *PoolRepository) GetByID(ctx context.Context, poolID string) (pool.Pool, bool, error) {
	return r.getOne(ctx, qb.Eq("public_id", poolID))
}

func (r *PoolRepository) GetByInviteCode(ctx context.Context, inviteCode string) (pool.Pool, bool, error) {
	return r.getOne(ctx, qb.Eq("invite_code", inviteCode))
}

func (r *PoolRepository) getOne(ctx context.Context, match qb.Condition) (pool.Pool, bool, error) {
	query, args, err := qb.Select("*").From("pools").
		Where(match, qb.IsNull("deleted_at")).
		ToSQL()
	if err != nil {
		return pool.Pool{}, false, fmt.Errorf("build get pool query: %w", err)
	}

	var row poolTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return pool.Pool{}, false, nil
		}
		return pool.Pool{}, false, fmt.Errorf("get pool: %w", err)
	}

	return mapPoolRow(row), true, nil
}

func (r *PoolRepository) ListByUser(ctx context.Context, userID string) ([]pool.Pool, error) {
	query, args, err := qb.Select("p.*").From("pools p").
		Where(
			qb.Expr("p.public_id IN (SELECT pool_public_id FROM pool_memberships WHERE user_id = ?)", userID),
			qb.IsNull("p.deleted_at"),
		).
		OrderBy("p.created_at").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list pools by user query: %w", err)
	}

	var rows []poolTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list pools by user: %w", err)
	}

	out := make([]pool.Pool, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapPoolRow(row))
	}
	return out, nil
}

func (r *PoolRepository) Create(ctx context.Context, p pool.Pool) error {
	registrationDeadline := sql.NullTime{}
	if p.RegistrationDeadline != nil {
		registrationDeadline = sql.NullTime{Time: *p.RegistrationDeadline, Valid: true}
	}

	insertModel := poolInsertModel{
		PublicID:             p.ID,
		Name:                 p.Name,
		InviteCode:           p.InviteCode,
		OwnerUserID:          p.OwnerUserID,
		TeamSize:             p.TeamSize,
		CurrentWeek:          p.CurrentWeek,
		FinalWeek:            p.FinalWeek,
		JuryStartWeek:        p.JuryStartWeek,
		AllowDuplicatePicks:  p.AllowDuplicatePicks,
		RegistrationDeadline: registrationDeadline,
		DraftLocked:          p.DraftLocked,
		EntryFeeCents:        p.EntryFeeCents,
	}
	query, args, err := qb.InsertModel("pools", insertModel, "")
	if err != nil {
		return fmt.Errorf("build create pool query: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx create pool: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create pool: %w", wrapTransient(err))
	}

	// The owner is always an admin member of their pool.
	memberQuery, memberArgs, err := qb.InsertInto("pool_memberships").
		Columns("pool_public_id", "user_id", "role").
		Values(p.ID, p.OwnerUserID, pool.RoleAdmin).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build create owner membership query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, memberQuery, memberArgs...); err != nil {
		return fmt.Errorf("create owner membership: %w", wrapTransient(err))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create pool: %w", err)
	}
	return nil
}

func (r *PoolRepository) Update(ctx context.Context, p pool.Pool) error {
	builder := qb.Update("pools").
		Set("name", p.Name).
		Set("team_size", p.TeamSize).
		Set("final_week", p.FinalWeek).
		Set("jury_start_week", p.JuryStartWeek).
		Set("allow_duplicate_picks", p.AllowDuplicatePicks).
		Set("draft_locked", p.DraftLocked).
		Set("entry_fee_cents", p.EntryFeeCents).
		SetExpr("updated_at", "NOW()")
	if p.RegistrationDeadline != nil {
		builder = builder.Set("registration_deadline", *p.RegistrationDeadline)
	} else {
		builder = builder.SetExpr("registration_deadline", "NULL")
	}

	query, args, err := builder.
		Where(
			qb.Eq("public_id", p.ID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update pool query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update pool: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected update pool: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update pool: not found")
	}
	return nil
}

func (r *PoolRepository) SetCurrentWeek(ctx context.Context, poolID string, week int) error {
	query, args, err := qb.Update("pools").
		Set("current_week", week).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", poolID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set current week query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set current week: %w", err)
	}
	return nil
}

func (r *PoolRepository) SeedDefaults(ctx context.Context, poolID string) error {
	if _, err := r.db.ExecContext(ctx, "SELECT seed_new_pool_defaults($1)", poolID); err != nil {
		return fmt.Errorf("seed pool defaults: %w", wrapTransient(err))
	}
	return nil
}

func (r *PoolRepository) JoinByInvite(ctx context.Context, inviteCode, userID string) (pool.Membership, error) {
	var row membershipTableModel
	err := r.db.GetContext(ctx, &row, "SELECT * FROM join_pool_by_invite($1, $2)", inviteCode, userID)
	if err != nil {
		if isNotFound(err) {
			return pool.Membership{}, fmt.Errorf("join pool by invite: invalid invite code")
		}
		return pool.Membership{}, fmt.Errorf("join pool by invite: %w", wrapTransient(err))
	}

	return mapMembershipRow(row), nil
}

func (r *PoolRepository) ListMembershipsByPool(ctx context.Context, poolID string) ([]pool.Membership, error) {
	return r.listMemberships(ctx, qb.Eq("pool_public_id", poolID))
}

func (r *PoolRepository) ListMembershipsByUser(ctx context.Context, userID string) ([]pool.Membership, error) {
	return r.listMemberships(ctx, qb.Eq("user_id", userID))
}

func (r *PoolRepository) listMemberships(ctx context.Context, match qb.Condition) ([]pool.Membership, error) {
	query, args, err := qb.Select("*").From("pool_memberships").
		Where(match).
		OrderBy("joined_at").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list memberships query: %w", err)
	}

	var rows []membershipTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}

	out := make([]pool.Membership, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapMembershipRow(row))
	}
	return out, nil
}

func (r *PoolRepository) RecordWinners(ctx context.Context, winners []pool.Winner) error {
	if len(winners) == 0 {
		return nil
	}

	builder := qb.InsertInto("pool_winners").
		Columns("pool_public_id", "entry_public_id", "user_id", "place", "prize_cents", "recorded_at")
	for _, w := range winners {
		builder = builder.Values(w.PoolID, w.EntryID, w.UserID, w.Place, w.PrizeCents, w.RecordedAt)
	}
	query, args, err := builder.
		Suffix("ON CONFLICT (pool_public_id, place) DO UPDATE SET entry_public_id = EXCLUDED.entry_public_id, user_id = EXCLUDED.user_id, prize_cents = EXCLUDED.prize_cents, recorded_at = EXCLUDED.recorded_at").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build record winners query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("record winners: %w", err)
	}
	return nil
}

func mapPoolRow(row poolTableModel) pool.Pool {
	p := pool.Pool{
		ID:                  row.PublicID,
		Name:                row.Name,
		InviteCode:          row.InviteCode,
		OwnerUserID:         row.OwnerUserID,
		TeamSize:            row.TeamSize,
		CurrentWeek:         row.CurrentWeek,
		FinalWeek:           row.FinalWeek,
		JuryStartWeek:       row.JuryStartWeek,
		AllowDuplicatePicks: row.AllowDuplicatePicks,
		DraftLocked:         row.DraftLocked,
		EntryFeeCents:       row.EntryFeeCents,
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
	}
	if row.RegistrationDeadline.Valid {
		deadline := row.RegistrationDeadline.Time
		p.RegistrationDeadline = &deadline
	}
	return p
}

func mapMembershipRow(row membershipTableModel) pool.Membership {
	return pool.Membership{
		PoolID:   row.PoolPublicID,
		UserID:   row.UserID,
		Role:     row.Role,
		JoinedAt: row.JoinedAt,
	}
}
