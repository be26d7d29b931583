package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	sonic "github.com/bytedance/sonic"
	"github.com/poolhaus/fantasy-pool/internal/domain/contestant"
	"github.com/poolhaus/fantasy-pool/internal/usecase"
)

type contestantSeedRequest struct {
	Name       string `json:"name" validate:"required,max=120"`
	Age        int    `json:"age" validate:"omitempty,gt=0,lt=120"`
	Hometown   string `json:"hometown" validate:"omitempty,max=120"`
	Occupation string `json:"occupation" validate:"omitempty,max=120"`
	Bio        string `json:"bio" validate:"omitempty,max=2000"`
	PhotoURL   string `json:"photo_url" validate:"omitempty,max=500"`
	GroupID    string `json:"group_id"`
	SortOrder  int    `json:"sort_order" validate:"gte=0"`
}

type updateContestantRequest struct {
	Name       *string `json:"name" validate:"omitempty,max=120"`
	Age        *int    `json:"age" validate:"omitempty,gt=0,lt=120"`
	Hometown   *string `json:"hometown" validate:"omitempty,max=120"`
	Occupation *string `json:"occupation" validate:"omitempty,max=120"`
	Bio        *string `json:"bio" validate:"omitempty,max=2000"`
	PhotoURL   *string `json:"photo_url" validate:"omitempty,max=500"`
	GroupID    *string `json:"group_id"`
	SortOrder  *int    `json:"sort_order" validate:"omitempty,gte=0"`
}

type bulkSeedContestantsRequest struct {
	Contestants []contestantSeedRequest `json:"contestants" validate:"required,min=1,max=30,dive"`
}

type generateRosterRequest struct {
	SeasonHint string `json:"season_hint" validate:"omitempty,max=120"`
	Count      int    `json:"count" validate:"omitempty,gt=0,lte=24"`
}

type verifyWeekDataRequest struct {
	Season    int               `json:"season" validate:"required,gt=0"`
	Week      int               `json:"week" validate:"required,gt=0"`
	Submitted map[string]string `json:"submitted" validate:"required,min=1"`
}

type contestantDTO struct {
	ID                    string `json:"id"`
	PoolID                string `json:"pool_id"`
	Name                  string `json:"name"`
	IsActive              bool   `json:"is_active"`
	GroupID               string `json:"group_id,omitempty"`
	SortOrder             int    `json:"sort_order"`
	Age                   int    `json:"age,omitempty"`
	Hometown              string `json:"hometown,omitempty"`
	Occupation            string `json:"occupation,omitempty"`
	Bio                   string `json:"bio,omitempty"`
	PhotoURL              string `json:"photo_url,omitempty"`
	ConsecutiveWeeksNoWin int    `json:"consecutive_weeks_no_win"`
	LastWinWeek           int    `json:"last_win_week,omitempty"`
}

type contestantGroupDTO struct {
	ID        string `json:"id"`
	PoolID    string `json:"pool_id"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

func (h *Handler) ListContestants(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListContestants")
	defer span.End()

	poolID := r.PathValue("poolID")
	contestants, err := h.contestantService.List(ctx, poolID)
	if err != nil {
		h.logger.WarnContext(ctx, "list contestants failed", "pool_id", poolID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]contestantDTO, 0, len(contestants))
	for _, c := range contestants {
		items = append(items, contestantToDTO(ctx, c))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListContestantGroups(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListContestantGroups")
	defer span.End()

	poolID := r.PathValue("poolID")
	groups, err := h.contestantService.ListGroups(ctx, poolID)
	if err != nil {
		h.logger.WarnContext(ctx, "list contestant groups failed", "pool_id", poolID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]contestantGroupDTO, 0, len(groups))
	for _, g := range groups {
		items = append(items, contestantGroupDTO{
			ID:        g.ID,
			PoolID:    g.PoolID,
			Name:      g.Name,
			SortOrder: g.SortOrder,
		})
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) CreateContestant(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateContestant")
	defer span.End()

	poolID := r.PathValue("poolID")
	if _, err := h.requirePoolAdmin(ctx, poolID); err != nil {
		writeError(ctx, w, err)
		return
	}

	var req contestantSeedRequest
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

	created, err := h.contestantService.Create(ctx, poolID, seedFromRequest(req))
	if err != nil {
		h.logger.WarnContext(ctx, "create contestant failed", "pool_id", poolID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, contestantToDTO(ctx, created))
}

func (h *Handler) UpdateContestant(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateContestant")
	defer span.End()

	poolID := r.PathValue("poolID")
	contestantID := r.PathValue("contestantID")
	if _, err := h.requirePoolAdmin(ctx, poolID); err != nil {
		writeError(ctx, w, err)
		return
	}

	var req updateContestantRequest
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

	updated, err := h.contestantService.Update(ctx, usecase.UpdateContestantInput{
		ContestantID: contestantID,
		Name:         req.Name,
		Age:          req.Age,
		Hometown:     req.Hometown,
		Occupation:   req.Occupation,
		Bio:          req.Bio,
		PhotoURL:     req.PhotoURL,
		GroupID:      req.GroupID,
		SortOrder:    req.SortOrder,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "update contestant failed", "contestant_id", contestantID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, contestantToDTO(ctx, updated))
}

func (h *Handler) DeleteContestant(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteContestant")
	defer span.End()

	poolID := r.PathValue("poolID")
	contestantID := r.PathValue("contestantID")
	if _, err := h.requirePoolAdmin(ctx, poolID); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.contestantService.Delete(ctx, contestantID); err != nil {
		h.logger.WarnContext(ctx, "delete contestant failed", "contestant_id", contestantID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) BulkSeedContestants(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.BulkSeedContestants")
	defer span.End()

	poolID := r.PathValue("poolID")
	if _, err := h.requirePoolAdmin(ctx, poolID); err != nil {
		writeError(ctx, w, err)
		return
	}

	var req bulkSeedContestantsRequest
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

	seeds := make([]usecase.ContestantSeed, 0, len(req.Contestants))
	for _, item := range req.Contestants {
		seeds = append(seeds, seedFromRequest(item))
	}

	result, err := h.contestantService.BulkSeed(ctx, poolID, seeds)
	if err != nil {
		h.logger.WarnContext(ctx, "bulk seed contestants failed", "pool_id", poolID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) GenerateRoster(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GenerateRoster")
	defer span.End()

	poolID := r.PathValue("poolID")
	if _, err := h.requirePoolAdmin(ctx, poolID); err != nil {
		writeError(ctx, w, err)
		return
	}

	var req generateRosterRequest
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

	result, err := h.contestantService.GenerateRoster(ctx, poolID, req.SeasonHint, req.Count)
	if err != nil {
		h.logger.WarnContext(ctx, "generate roster failed", "pool_id", poolID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) VerifyWeekData(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.VerifyWeekData")
	defer span.End()

	poolID := r.PathValue("poolID")
	if _, err := h.requirePoolAdmin(ctx, poolID); err != nil {
		writeError(ctx, w, err)
		return
	}

	var req verifyWeekDataRequest
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

	report, err := h.contestantService.VerifyWeekData(ctx, req.Season, req.Week, req.Submitted)
	if err != nil {
		h.logger.WarnContext(ctx, "verify week data failed",
			"pool_id", poolID,
			"season", strconv.Itoa(req.Season),
			"week", strconv.Itoa(req.Week),
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, report)
}

func seedFromRequest(req contestantSeedRequest) usecase.ContestantSeed {
	return usecase.ContestantSeed{
		Name:       req.Name,
		Age:        req.Age,
		Hometown:   req.Hometown,
		Occupation: req.Occupation,
		Bio:        req.Bio,
		PhotoURL:   req.PhotoURL,
		GroupID:    req.GroupID,
		SortOrder:  req.SortOrder,
	}
}

func contestantToDTO(ctx context.Context, v contestant.Contestant) contestantDTO {
	ctx, span := startSpan(ctx, "httpapi.contestantToDTO")
	defer span.End()

	return contestantDTO{
		ID:                    v.ID,
		PoolID:                v.PoolID,
		Name:                  v.Name,
		IsActive:              v.IsActive,
		GroupID:               v.GroupID,
		SortOrder:             v.SortOrder,
		Age:                   v.Age,
		Hometown:              v.Hometown,
		Occupation:            v.Occupation,
		Bio:                   v.Bio,
		PhotoURL:              v.PhotoURL,
		ConsecutiveWeeksNoWin: v.ConsecutiveWeeksNoWin,
		LastWinWeek:           v.LastWinWeek,
	}
}
