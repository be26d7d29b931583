package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/poolhaus/fantasy-pool/internal/domain/pool"
	"github.com/poolhaus/fantasy-pool/internal/usecase"
)

type createPoolRequest struct {
	Name                 string `json:"name" validate:"required,max=120"`
	TeamSize             int    `json:"team_size" validate:"omitempty,gt=0,lte=10"`
	FinalWeek            int    `json:"final_week" validate:"omitempty,gt=0"`
	JuryStartWeek        int    `json:"jury_start_week" validate:"omitempty,gt=0"`
	AllowDuplicatePicks  bool   `json:"allow_duplicate_picks"`
	RegistrationDeadline string `json:"registration_deadline" validate:"omitempty"`
	EntryFeeCents        int64  `json:"entry_fee_cents" validate:"gte=0"`
}

type updatePoolSettingsRequest struct {
	Name                 *string `json:"name" validate:"omitempty,max=120"`
	AllowDuplicatePicks  *bool   `json:"allow_duplicate_picks"`
	DraftLocked          *bool   `json:"draft_locked"`
	RegistrationDeadline *string `json:"registration_deadline"`
	JuryStartWeek        *int    `json:"jury_start_week" validate:"omitempty,gt=0"`
	FinalWeek            *int    `json:"final_week" validate:"omitempty,gt=0"`
}

type joinPoolRequest struct {
	InviteCode string `json:"invite_code" validate:"required,min=6,max=32"`
}

type poolDTO struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	InviteCode           string `json:"invite_code,omitempty"`
	OwnerUserID          string `json:"owner_user_id"`
	TeamSize             int    `json:"team_size"`
	CurrentWeek          int    `json:"current_week"`
	FinalWeek            int    `json:"final_week,omitempty"`
	JuryStartWeek        int    `json:"jury_start_week,omitempty"`
	AllowDuplicatePicks  bool   `json:"allow_duplicate_picks"`
	RegistrationDeadline string `json:"registration_deadline,omitempty"`
	DraftLocked          bool   `json:"draft_locked"`
	EntryFeeCents        int64  `json:"entry_fee_cents"`
	CreatedAtUTC         string `json:"created_at_utc,omitempty"`
	UpdatedAtUTC         string `json:"updated_at_utc,omitempty"`
}

type membershipDTO struct {
	PoolID      string `json:"pool_id"`
	UserID      string `json:"user_id"`
	Role        string `json:"role"`
	JoinedAtUTC string `json:"joined_at_utc,omitempty"`
}

func (h *Handler) CreatePool(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreatePool")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req createPoolRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	deadline, err := parseOptionalTime(req.RegistrationDeadline)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: registration_deadline: %v", usecase.ErrInvalidInput, err))
		return
	}

	created, err := h.poolService.Create(ctx, usecase.CreatePoolInput{
		Name:                 req.Name,
		OwnerUserID:          principal.UserID,
		TeamSize:             req.TeamSize,
		FinalWeek:            req.FinalWeek,
		JuryStartWeek:        req.JuryStartWeek,
		AllowDuplicatePicks:  req.AllowDuplicatePicks,
		RegistrationDeadline: deadline,
		EntryFeeCents:        req.EntryFeeCents,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create pool failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, poolToDTO(ctx, created))
}

func (h *Handler) GetPool(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPool")
	defer span.End()

	poolID := r.PathValue("poolID")
	p, err := h.poolService.Get(ctx, poolID)
	if err != nil {
		h.logger.WarnContext(ctx, "get pool failed", "pool_id", poolID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, poolToDTO(ctx, p))
}

func (h *Handler) UpdatePoolSettings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdatePoolSettings")
	defer span.End()

	poolID := r.PathValue("poolID")
	if _, err := h.requirePoolAdmin(ctx, poolID); err != nil {
		writeError(ctx, w, err)
		return
	}

	var req updatePoolSettingsRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	input := usecase.UpdatePoolSettingsInput{
		PoolID:              poolID,
		Name:                req.Name,
		AllowDuplicatePicks: req.AllowDuplicatePicks,
		DraftLocked:         req.DraftLocked,
		JuryStartWeek:       req.JuryStartWeek,
		FinalWeek:           req.FinalWeek,
	}
	if req.RegistrationDeadline != nil {
		deadline, err := parseOptionalTime(*req.RegistrationDeadline)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: registration_deadline: %v", usecase.ErrInvalidInput, err))
			return
		}
		input.RegistrationDeadline = deadline
	}

	updated, err := h.poolService.UpdateSettings(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "update pool settings failed", "pool_id", poolID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, poolToDTO(ctx, updated))
}

func (h *Handler) JoinPoolByInvite(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.JoinPoolByInvite")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req joinPoolRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	membership, err := h.poolService.JoinByInvite(ctx, req.InviteCode, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "join pool failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, membershipToDTO(ctx, membership))
}

func (h *Handler) ListMyPools(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyPools")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	memberships, err := h.poolService.ListMemberships(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list my pools failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]membershipDTO, 0, len(memberships))
	for _, m := range memberships {
		items = append(items, membershipToDTO(ctx, m))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func poolToDTO(ctx context.Context, v pool.Pool) poolDTO {
	ctx, span := startSpan(ctx, "httpapi.poolToDTO")
	defer span.End()

	dto := poolDTO{
		ID:                  v.ID,
		Name:                v.Name,
		InviteCode:          v.InviteCode,
		OwnerUserID:         v.OwnerUserID,
		TeamSize:            v.TeamSize,
		CurrentWeek:         v.CurrentWeek,
		FinalWeek:           v.FinalWeek,
		JuryStartWeek:       v.JuryStartWeek,
		AllowDuplicatePicks: v.AllowDuplicatePicks,
		DraftLocked:         v.DraftLocked,
		EntryFeeCents:       v.EntryFeeCents,
	}
	if v.RegistrationDeadline != nil && !v.RegistrationDeadline.IsZero() {
		dto.RegistrationDeadline = v.RegistrationDeadline.UTC().Format(time.RFC3339)
	}
	if !v.CreatedAt.IsZero() {
		dto.CreatedAtUTC = v.CreatedAt.UTC().Format(time.RFC3339)
	}
	if !v.UpdatedAt.IsZero() {
		dto.UpdatedAtUTC = v.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

func membershipToDTO(ctx context.Context, v pool.Membership) membershipDTO {
	ctx, span := startSpan(ctx, "httpapi.membershipToDTO")
	defer span.End()

	dto := membershipDTO{
		PoolID: v.PoolID,
		UserID: v.UserID,
		Role:   v.Role,
	}
	if !v.JoinedAt.IsZero() {
		dto.JoinedAtUTC = v.JoinedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

func parseOptionalTime(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	utc := parsed.UTC()
	return &utc, nil
}
