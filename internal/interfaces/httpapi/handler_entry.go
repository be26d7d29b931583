package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/poolhaus/fantasy-pool/internal/domain/bonus"
	"github.com/poolhaus/fantasy-pool/internal/domain/entry"
	"github.com/poolhaus/fantasy-pool/internal/usecase"
)

type bonusAnswerPayload struct {
	Player1 string `json:"player1,omitempty"`
	Player2 string `json:"player2,omitempty"`
	Value   string `json:"value,omitempty"`
}

type submitEntryRequest struct {
	TeamName     string                        `json:"team_name" validate:"required,max=120"`
	PlayerIDs    []string                      `json:"player_ids" validate:"required,min=1,dive,required"`
	BonusAnswers map[string]bonusAnswerPayload `json:"bonus_answers"`
}

type updateEntryRequest struct {
	TeamName     *string                       `json:"team_name" validate:"omitempty,max=120"`
	PlayerIDs    []string                      `json:"player_ids" validate:"omitempty,min=1,dive,required"`
	BonusAnswers map[string]bonusAnswerPayload `json:"bonus_answers"`
}

type confirmPaymentRequest struct {
	Confirmed bool `json:"confirmed"`
}

type entryDTO struct {
	ID               string                        `json:"id"`
	PoolID           string                        `json:"pool_id"`
	UserID           string                        `json:"user_id"`
	TeamName         string                        `json:"team_name"`
	PlayerIDs        []string                      `json:"player_ids"`
	BonusAnswers     map[string]bonusAnswerPayload `json:"bonus_answers,omitempty"`
	WeeklyPoints     int                           `json:"weekly_points"`
	BonusPoints      int                           `json:"bonus_points"`
	TotalPoints      int                           `json:"total_points"`
	PaymentConfirmed bool                          `json:"payment_confirmed"`
	CreatedAtUTC     string                        `json:"created_at_utc,omitempty"`
	UpdatedAtUTC     string                        `json:"updated_at_utc,omitempty"`
}

type standingDTO struct {
	Rank             int    `json:"rank"`
	EntryID          string `json:"entry_id"`
	UserID           string `json:"user_id"`
	TeamName         string `json:"team_name"`
	WeeklyPoints     int    `json:"weekly_points"`
	BonusPoints      int    `json:"bonus_points"`
	TotalPoints      int    `json:"total_points"`
	PaymentConfirmed bool   `json:"payment_confirmed"`
}

func (h *Handler) SubmitEntry(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitEntry")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	poolID := r.PathValue("poolID")
	var req submitEntryRequest
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

	created, err := h.entryService.SubmitDraft(ctx, usecase.SubmitEntryInput{
		PoolID:       poolID,
		UserID:       principal.UserID,
		TeamName:     req.TeamName,
		PlayerIDs:    req.PlayerIDs,
		BonusAnswers: answersFromPayload(req.BonusAnswers),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit entry failed", "pool_id", poolID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, entryToDTO(ctx, created))
}

func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateEntry")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	entryID := r.PathValue("entryID")
	var req updateEntryRequest
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

	updated, err := h.entryService.UpdateDraft(ctx, usecase.UpdateEntryInput{
		EntryID:      entryID,
		UserID:       principal.UserID,
		TeamName:     req.TeamName,
		PlayerIDs:    req.PlayerIDs,
		BonusAnswers: answersFromPayload(req.BonusAnswers),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "update entry failed", "entry_id", entryID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, entryToDTO(ctx, updated))
}

func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetEntry")
	defer span.End()

	entryID := r.PathValue("entryID")
	e, err := h.entryService.Get(ctx, entryID)
	if err != nil {
		h.logger.WarnContext(ctx, "get entry failed", "entry_id", entryID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, entryToDTO(ctx, e))
}

func (h *Handler) ListStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListStandings")
	defer span.End()

	poolID := r.PathValue("poolID")
	entries, err := h.entryService.Standings(ctx, poolID)
	if err != nil {
		h.logger.WarnContext(ctx, "list standings failed", "pool_id", poolID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]standingDTO, 0, len(entries))
	for i, e := range entries {
		items = append(items, standingDTO{
			Rank:             i + 1,
			EntryID:          e.ID,
			UserID:           e.UserID,
			TeamName:         e.TeamName,
			WeeklyPoints:     e.WeeklyPoints,
			BonusPoints:      e.BonusPoints,
			TotalPoints:      e.TotalPoints,
			PaymentConfirmed: e.PaymentConfirmed,
		})
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListMyEntries(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyEntries")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	entries, err := h.entryService.ListMine(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list my entries failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]entryDTO, 0, len(entries))
	for _, e := range entries {
		items = append(items, entryToDTO(ctx, e))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ConfirmEntryPayment(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ConfirmEntryPayment")
	defer span.End()

	poolID := r.PathValue("poolID")
	entryID := r.PathValue("entryID")
	if _, err := h.requirePoolAdmin(ctx, poolID); err != nil {
		writeError(ctx, w, err)
		return
	}

	var req confirmPaymentRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}

	updated, err := h.entryService.ConfirmPayment(ctx, entryID, req.Confirmed)
	if err != nil {
		h.logger.WarnContext(ctx, "confirm entry payment failed", "entry_id", entryID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, entryToDTO(ctx, updated))
}

func (h *Handler) WithdrawEntry(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.WithdrawEntry")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	entryID := r.PathValue("entryID")
	e, err := h.entryService.Get(ctx, entryID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	asAdmin := h.poolService.RequireAdmin(ctx, e.PoolID, principal.UserID) == nil
	if err := h.entryService.Withdraw(ctx, entryID, principal.UserID, asAdmin); err != nil {
		h.logger.WarnContext(ctx, "withdraw entry failed", "entry_id", entryID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "withdrawn"})
}

func answersFromPayload(payload map[string]bonusAnswerPayload) map[string]bonus.Answer {
	if len(payload) == 0 {
		return nil
	}
	out := make(map[string]bonus.Answer, len(payload))
	for questionID, a := range payload {
		out[questionID] = bonus.Answer{
			Player1: a.Player1,
			Player2: a.Player2,
			Value:   a.Value,
		}
	}
	return out
}

func answersToPayload(answers map[string]bonus.Answer) map[string]bonusAnswerPayload {
	if len(answers) == 0 {
		return nil
	}
	out := make(map[string]bonusAnswerPayload, len(answers))
	for questionID, a := range answers {
		out[questionID] = bonusAnswerPayload{
			Player1: a.Player1,
			Player2: a.Player2,
			Value:   a.Value,
		}
	}
	return out
}

func entryToDTO(ctx context.Context, v entry.Entry) entryDTO {
	ctx, span := startSpan(ctx, "httpapi.entryToDTO")
	defer span.End()

	dto := entryDTO{
		ID:               v.ID,
		PoolID:           v.PoolID,
		UserID:           v.UserID,
		TeamName:         v.TeamName,
		PlayerIDs:        append([]string(nil), v.PlayerIDs...),
		BonusAnswers:     answersToPayload(v.BonusAnswers),
		WeeklyPoints:     v.WeeklyPoints,
		BonusPoints:      v.BonusPoints,
		TotalPoints:      v.TotalPoints,
		PaymentConfirmed: v.PaymentConfirmed,
	}
	if !v.CreatedAt.IsZero() {
		dto.CreatedAtUTC = v.CreatedAt.UTC().Format(time.RFC3339)
	}
	if !v.UpdatedAt.IsZero() {
		dto.UpdatedAtUTC = v.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return dto
}
