package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/poolhaus/fantasy-pool/internal/domain/weeklyresult"
	"github.com/poolhaus/fantasy-pool/internal/usecase"
)

type evictionCycleForm struct {
	HOHWinnerID          string   `json:"hoh_winner_id"`
	POVWinnerID          string   `json:"pov_winner_id"`
	POVUsed              bool     `json:"pov_used"`
	POVUsedOnID          string   `json:"pov_used_on_id"`
	Nominees             []string `json:"nominees" validate:"omitempty,max=4"`
	ReplacementNomineeID string   `json:"replacement_nominee_id"`
	EvictedID            string   `json:"evicted_id"`
}

type specialEventForm struct {
	ContestantID string `json:"contestant_id" validate:"required"`
	EventType    string `json:"event_type" validate:"required,max=60"`
	Description  string `json:"description" validate:"omitempty,max=500"`
	CustomPoints *int   `json:"custom_points"`
}

type submitWeekRequest struct {
	WeekNumber         int                 `json:"week_number" validate:"required,gt=0"`
	Cycles             []evictionCycleForm `json:"cycles" validate:"required,min=1,max=3,dive"`
	SpecialEvents      []specialEventForm  `json:"special_events" validate:"omitempty,dive"`
	JuryPhaseStarted   bool                `json:"jury_phase_started"`
	IsSeasonFinale     bool                `json:"is_season_finale"`
	WinnerID           string              `json:"winner_id"`
	RunnerUpID         string              `json:"runner_up_id"`
	AmericasFavoriteID string              `json:"americas_favorite_id"`
}

type weekSubmissionResultDTO struct {
	WeekNumber            int                      `json:"week_number"`
	EventsRecorded        int                      `json:"events_recorded"`
	SpecialEventsRecorded int                      `json:"special_events_recorded"`
	EvictedIDs            []string                 `json:"evicted_ids"`
	Recompute             usecase.RecomputeSummary `json:"recompute"`
	CurrentWeek           int                      `json:"current_week"`
}

type weeklyResultDTO struct {
	PoolID               string   `json:"pool_id"`
	WeekNumber           int      `json:"week_number"`
	HOHWinnerID          string   `json:"hoh_winner_id,omitempty"`
	POVWinnerID          string   `json:"pov_winner_id,omitempty"`
	POVUsedOnID          string   `json:"pov_used_on_id,omitempty"`
	Nominees             []string `json:"nominees,omitempty"`
	ReplacementNomineeID string   `json:"replacement_nominee_id,omitempty"`
	EvictedIDs           []string `json:"evicted_ids,omitempty"`
	IsDoubleEviction     bool     `json:"is_double_eviction"`
	IsTripleEviction     bool     `json:"is_triple_eviction"`
	JuryPhaseStarted     bool     `json:"jury_phase_started"`
	IsSeasonFinale       bool     `json:"is_season_finale"`
	WinnerID             string   `json:"winner_id,omitempty"`
	RunnerUpID           string   `json:"runner_up_id,omitempty"`
	AmericasFavoriteID   string   `json:"americas_favorite_id,omitempty"`
	RecordedAtUTC        string   `json:"recorded_at_utc,omitempty"`
}

func (h *Handler) SubmitWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitWeek")
	defer span.End()

	poolID := r.PathValue("poolID")
	if _, err := h.requirePoolAdmin(ctx, poolID); err != nil {
		writeError(ctx, w, err)
		return
	}

	var req submitWeekRequest
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

	cycles := make([]usecase.EvictionCycleForm, 0, len(req.Cycles))
	for _, cycle := range req.Cycles {
		cycles = append(cycles, usecase.EvictionCycleForm{
			HOHWinnerID:          cycle.HOHWinnerID,
			POVWinnerID:          cycle.POVWinnerID,
			POVUsed:              cycle.POVUsed,
			POVUsedOnID:          cycle.POVUsedOnID,
			Nominees:             cycle.Nominees,
			ReplacementNomineeID: cycle.ReplacementNomineeID,
			EvictedID:            cycle.EvictedID,
		})
	}
	specials := make([]usecase.SpecialEventForm, 0, len(req.SpecialEvents))
	for _, se := range req.SpecialEvents {
		specials = append(specials, usecase.SpecialEventForm{
			ContestantID: se.ContestantID,
			EventType:    se.EventType,
			Description:  se.Description,
			CustomPoints: se.CustomPoints,
		})
	}

	result, err := h.weekService.Submit(ctx, usecase.WeekSubmission{
		PoolID:             poolID,
		WeekNumber:         req.WeekNumber,
		Cycles:             cycles,
		SpecialEvents:      specials,
		JuryPhaseStarted:   req.JuryPhaseStarted,
		IsSeasonFinale:     req.IsSeasonFinale,
		WinnerID:           req.WinnerID,
		RunnerUpID:         req.RunnerUpID,
		AmericasFavoriteID: req.AmericasFavoriteID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit week failed", "pool_id", poolID, "week", req.WeekNumber, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, weekSubmissionResultDTO{
		WeekNumber:            result.WeekNumber,
		EventsRecorded:        result.EventsRecorded,
		SpecialEventsRecorded: result.SpecialEventsRecorded,
		EvictedIDs:            result.EvictedIDs,
		Recompute:             result.Recompute,
		CurrentWeek:           result.CurrentWeek,
	})
}

func (h *Handler) ListWeeklyResults(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListWeeklyResults")
	defer span.End()

	poolID := r.PathValue("poolID")
	results, err := h.weekService.ListResults(ctx, poolID)
	if err != nil {
		h.logger.WarnContext(ctx, "list weekly results failed", "pool_id", poolID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]weeklyResultDTO, 0, len(results))
	for _, result := range results {
		items = append(items, weeklyResultToDTO(ctx, result))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetWeeklyResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetWeeklyResult")
	defer span.End()

	poolID := r.PathValue("poolID")
	week, err := strconv.Atoi(r.PathValue("week"))
	if err != nil || week <= 0 {
		writeError(ctx, w, fmt.Errorf("%w: week must be a positive number", usecase.ErrInvalidInput))
		return
	}

	result, err := h.weekService.GetResult(ctx, poolID, week)
	if err != nil {
		h.logger.WarnContext(ctx, "get weekly result failed", "pool_id", poolID, "week", week, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, weeklyResultToDTO(ctx, result))
}

func (h *Handler) RecomputePoints(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecomputePoints")
	defer span.End()

	poolID := r.PathValue("poolID")
	if _, err := h.requirePoolAdmin(ctx, poolID); err != nil {
		writeError(ctx, w, err)
		return
	}

	summary, err := h.pointsService.RecalculatePool(ctx, poolID)
	if err != nil {
		h.logger.WarnContext(ctx, "recompute points failed", "pool_id", poolID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, summary)
}

func weeklyResultToDTO(ctx context.Context, v weeklyresult.Result) weeklyResultDTO {
	ctx, span := startSpan(ctx, "httpapi.weeklyResultToDTO")
	defer span.End()

	dto := weeklyResultDTO{
		PoolID:               v.PoolID,
		WeekNumber:           v.WeekNumber,
		HOHWinnerID:          v.HOHWinnerID,
		POVWinnerID:          v.POVWinnerID,
		POVUsedOnID:          v.POVUsedOnID,
		Nominees:             append([]string(nil), v.Nominees...),
		ReplacementNomineeID: v.ReplacementNomineeID,
		EvictedIDs:           append([]string(nil), v.EvictedIDs...),
		IsDoubleEviction:     v.IsDoubleEviction,
		IsTripleEviction:     v.IsTripleEviction,
		JuryPhaseStarted:     v.JuryPhaseStarted,
		IsSeasonFinale:       v.IsSeasonFinale,
		WinnerID:             v.WinnerID,
		RunnerUpID:           v.RunnerUpID,
		AmericasFavoriteID:   v.AmericasFavoriteID,
	}
	if !v.RecordedAt.IsZero() {
		dto.RecordedAtUTC = v.RecordedAt.UTC().Format(time.RFC3339)
	}
	return dto
}
