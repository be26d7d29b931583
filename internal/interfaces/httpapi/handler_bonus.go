package httpapi

import (
	"context"
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/poolhaus/fantasy-pool/internal/domain/bonus"
	"github.com/poolhaus/fantasy-pool/internal/usecase"
)

type createBonusQuestionRequest struct {
	Text        string `json:"text" validate:"required,max=500"`
	Type        string `json:"type" validate:"required,max=40"`
	PointsValue int    `json:"points_value" validate:"required"`
	SortOrder   int    `json:"sort_order" validate:"gte=0"`
}

type updateBonusQuestionRequest struct {
	Text        *string `json:"text" validate:"omitempty,max=500"`
	PointsValue *int    `json:"points_value"`
	SortOrder   *int    `json:"sort_order" validate:"omitempty,gte=0"`
}

type revealBonusAnswerRequest struct {
	Answer bonusAnswerPayload `json:"answer" validate:"required"`
}

type bonusQuestionDTO struct {
	ID             string              `json:"id"`
	PoolID         string              `json:"pool_id"`
	Text           string              `json:"text"`
	Type           string              `json:"type"`
	CorrectAnswer  *bonusAnswerPayload `json:"correct_answer,omitempty"`
	PointsValue    int                 `json:"points_value"`
	AnswerRevealed bool                `json:"answer_revealed"`
	SortOrder      int                 `json:"sort_order"`
}

type revealBonusAnswerResponse struct {
	Question  bonusQuestionDTO         `json:"question"`
	Recompute usecase.RecomputeSummary `json:"recompute"`
}

func (h *Handler) ListBonusQuestions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListBonusQuestions")
	defer span.End()

	poolID := r.PathValue("poolID")
	questions, err := h.bonusService.List(ctx, poolID)
	if err != nil {
		h.logger.WarnContext(ctx, "list bonus questions failed", "pool_id", poolID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]bonusQuestionDTO, 0, len(questions))
	for _, q := range questions {
		items = append(items, bonusQuestionToDTO(ctx, q))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) CreateBonusQuestion(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateBonusQuestion")
	defer span.End()

	poolID := r.PathValue("poolID")
	if _, err := h.requirePoolAdmin(ctx, poolID); err != nil {
		writeError(ctx, w, err)
		return
	}

	var req createBonusQuestionRequest
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

	created, err := h.bonusService.Create(ctx, usecase.CreateBonusQuestionInput{
		PoolID:      poolID,
		Text:        req.Text,
		Type:        req.Type,
		PointsValue: req.PointsValue,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create bonus question failed", "pool_id", poolID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, bonusQuestionToDTO(ctx, created))
}

func (h *Handler) UpdateBonusQuestion(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateBonusQuestion")
	defer span.End()

	poolID := r.PathValue("poolID")
	questionID := r.PathValue("questionID")
	if _, err := h.requirePoolAdmin(ctx, poolID); err != nil {
		writeError(ctx, w, err)
		return
	}

	var req updateBonusQuestionRequest
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

	updated, err := h.bonusService.Update(ctx, usecase.UpdateBonusQuestionInput{
		QuestionID:  questionID,
		Text:        req.Text,
		PointsValue: req.PointsValue,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "update bonus question failed", "question_id", questionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, bonusQuestionToDTO(ctx, updated))
}

func (h *Handler) RevealBonusAnswer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RevealBonusAnswer")
	defer span.End()

	poolID := r.PathValue("poolID")
	questionID := r.PathValue("questionID")
	if _, err := h.requirePoolAdmin(ctx, poolID); err != nil {
		writeError(ctx, w, err)
		return
	}

	var req revealBonusAnswerRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}

	summary, err := h.bonusService.Reveal(ctx, questionID, bonus.Answer{
		Player1: req.Answer.Player1,
		Player2: req.Answer.Player2,
		Value:   req.Answer.Value,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "reveal bonus answer failed", "question_id", questionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	questions, err := h.bonusService.List(ctx, poolID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var revealed bonusQuestionDTO
	for _, q := range questions {
		if q.ID == questionID {
			revealed = bonusQuestionToDTO(ctx, q)
			break
		}
	}

	writeSuccess(ctx, w, http.StatusOK, revealBonusAnswerResponse{
		Question:  revealed,
		Recompute: summary,
	})
}

func bonusQuestionToDTO(ctx context.Context, v bonus.Question) bonusQuestionDTO {
	ctx, span := startSpan(ctx, "httpapi.bonusQuestionToDTO")
	defer span.End()

	dto := bonusQuestionDTO{
		ID:             v.ID,
		PoolID:         v.PoolID,
		Text:           v.Text,
		Type:           string(v.Type),
		PointsValue:    v.PointsValue,
		AnswerRevealed: v.AnswerRevealed,
		SortOrder:      v.SortOrder,
	}
	if v.AnswerRevealed && v.CorrectAnswer != nil {
		dto.CorrectAnswer = &bonusAnswerPayload{
			Player1: v.CorrectAnswer.Player1,
			Player2: v.CorrectAnswer.Player2,
			Value:   v.CorrectAnswer.Value,
		}
	}
	return dto
}
