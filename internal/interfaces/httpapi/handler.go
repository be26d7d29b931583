package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/poolhaus/fantasy-pool/internal/domain/user"
	"github.com/poolhaus/fantasy-pool/internal/platform/logging"
	"github.com/poolhaus/fantasy-pool/internal/usecase"
)

type Handler struct {
	poolService       *usecase.PoolService
	contestantService *usecase.ContestantService
	entryService      *usecase.EntryService
	bonusService      *usecase.BonusService
	ruleService       *usecase.RuleService
	weekService       *usecase.WeekSubmissionService
	pointsService     *usecase.PointsService
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	poolService *usecase.PoolService,
	contestantService *usecase.ContestantService,
	entryService *usecase.EntryService,
	bonusService *usecase.BonusService,
	ruleService *usecase.RuleService,
	weekService *usecase.WeekSubmissionService,
	pointsService *usecase.PointsService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		poolService:       poolService,
		contestantService: contestantService,
		entryService:      entryService,
		bonusService:      bonusService,
		ruleService:       ruleService,
		weekService:       weekService,
		pointsService:     pointsService,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// requirePrincipal reads the authenticated principal placed on the context
// by RequireAuth.
func requirePrincipal(ctx context.Context) (user.Principal, error) {
	principal, ok := principalFromContext(ctx)
	if !ok {
		return user.Principal{}, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized)
	}
	return principal, nil
}

// requirePoolAdmin gates admin-only mutations on owner or admin membership.
func (h *Handler) requirePoolAdmin(ctx context.Context, poolID string) (user.Principal, error) {
	principal, err := requirePrincipal(ctx)
	if err != nil {
		return user.Principal{}, err
	}
	if err := h.poolService.RequireAdmin(ctx, poolID, principal.UserID); err != nil {
		return user.Principal{}, err
	}
	return principal, nil
}
