package httpapi

import (
	"context"
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/poolhaus/fantasy-pool/internal/domain/scoringrule"
	"github.com/poolhaus/fantasy-pool/internal/usecase"
)

type createScoringRuleRequest struct {
	Category    string `json:"category" validate:"required,max=40"`
	Subcategory string `json:"subcategory" validate:"required,max=80"`
	Points      int    `json:"points" validate:"required"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

type updateScoringRuleRequest struct {
	Points      *int    `json:"points"`
	IsActive    *bool   `json:"is_active"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

type scoringRuleDTO struct {
	ID          string `json:"id"`
	PoolID      string `json:"pool_id"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	Points      int    `json:"points"`
	IsActive    bool   `json:"is_active"`
	Description string `json:"description,omitempty"`
}

func (h *Handler) ListScoringRules(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListScoringRules")
	defer span.End()

	poolID := r.PathValue("poolID")
	rules, err := h.ruleService.List(ctx, poolID)
	if err != nil {
		h.logger.WarnContext(ctx, "list scoring rules failed", "pool_id", poolID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]scoringRuleDTO, 0, len(rules))
	for _, rule := range rules {
		items = append(items, scoringRuleToDTO(ctx, rule))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) CreateScoringRule(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateScoringRule")
	defer span.End()

	poolID := r.PathValue("poolID")
	if _, err := h.requirePoolAdmin(ctx, poolID); err != nil {
		writeError(ctx, w, err)
		return
	}

	var req createScoringRuleRequest
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

	created, err := h.ruleService.Create(ctx, usecase.CreateRuleInput{
		PoolID:      poolID,
		Category:    req.Category,
		Subcategory: req.Subcategory,
		Points:      req.Points,
		Description: req.Description,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create scoring rule failed", "pool_id", poolID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, scoringRuleToDTO(ctx, created))
}

func (h *Handler) UpdateScoringRule(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateScoringRule")
	defer span.End()

	poolID := r.PathValue("poolID")
	ruleID := r.PathValue("ruleID")
	if _, err := h.requirePoolAdmin(ctx, poolID); err != nil {
		writeError(ctx, w, err)
		return
	}

	var req updateScoringRuleRequest
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

	updated, err := h.ruleService.Update(ctx, usecase.UpdateRuleInput{
		RuleID:      ruleID,
		PoolID:      poolID,
		Points:      req.Points,
		IsActive:    req.IsActive,
		Description: req.Description,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "update scoring rule failed", "rule_id", ruleID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, scoringRuleToDTO(ctx, updated))
}

func scoringRuleToDTO(ctx context.Context, v scoringrule.Rule) scoringRuleDTO {
	ctx, span := startSpan(ctx, "httpapi.scoringRuleToDTO")
	defer span.End()

	return scoringRuleDTO{
		ID:          v.ID,
		PoolID:      v.PoolID,
		Category:    v.Category,
		Subcategory: v.Subcategory,
		Points:      v.Points,
		IsActive:    v.IsActive,
		Description: v.Description,
	}
}
