package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/poolhaus/fantasy-pool/internal/domain/pool"
	"github.com/poolhaus/fantasy-pool/internal/platform/cache"
	idgen "github.com/poolhaus/fantasy-pool/internal/platform/id"
	"github.com/poolhaus/fantasy-pool/internal/platform/logging"
)

// ErrTransientBackend marks backend writes that failed for reasons worth
// retrying, like row-level-security races right after signup. Repositories
// wrap qualifying errors with it.
var ErrTransientBackend = errors.New("transient backend failure")

const (
	seedDefaultsMaxAttempts = 3
	seedDefaultsBackoff     = 250 * time.Millisecond
	membershipCacheTTL      = 5 * time.Minute
)

type CreatePoolInput struct {
	Name                 string
	OwnerUserID          string
	TeamSize             int
	FinalWeek            int
	JuryStartWeek        int
	AllowDuplicatePicks  bool
	RegistrationDeadline *time.Time
	EntryFeeCents        int64
}

type UpdatePoolSettingsInput struct {
	PoolID               string
	Name                 *string
	AllowDuplicatePicks  *bool
	DraftLocked          *bool
	RegistrationDeadline *time.Time
	JuryStartWeek        *int
	FinalWeek            *int
}

// rosterSeeder populates a newly created pool with a default contestant
// roster. Best effort only: a failed seed never fails pool creation.
type rosterSeeder interface {
	SeedDefaultRoster(ctx context.Context, poolID string) error
}

type PoolService struct {
	pools       pool.Repository
	seeder      rosterSeeder
	ids         idgen.Generator
	logger      *logging.Logger
	memberships *cache.Store
	sleep       func(time.Duration)
}

func NewPoolService(pools pool.Repository, seeder rosterSeeder, ids idgen.Generator, logger *logging.Logger) *PoolService {
	if logger == nil {
		logger = logging.Default()
	}

	return &PoolService{
		pools:       pools,
		seeder:      seeder,
		ids:         ids,
		logger:      logger,
		memberships: cache.NewStore(membershipCacheTTL),
		sleep:       time.Sleep,
	}
}

func (s *PoolService) Create(ctx context.Context, input CreatePoolInput) (pool.Pool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PoolService.Create")
	defer span.End()

	poolID, err := s.ids.NewID()
	if err != nil {
		return pool.Pool{}, fmt.Errorf("generate pool id: %w", err)
	}
	inviteCode, err := idgen.NewInviteCode()
	if err != nil {
		return pool.Pool{}, fmt.Errorf("generate invite code: %w", err)
	}

	teamSize := input.TeamSize
	if teamSize <= 0 {
		teamSize = 3
	}

	p := pool.Pool{
		ID:                   poolID,
		Name:                 strings.TrimSpace(input.Name),
		InviteCode:           inviteCode,
		OwnerUserID:          input.OwnerUserID,
		TeamSize:             teamSize,
		CurrentWeek:          1,
		FinalWeek:            input.FinalWeek,
		JuryStartWeek:        input.JuryStartWeek,
		AllowDuplicatePicks:  input.AllowDuplicatePicks,
		RegistrationDeadline: input.RegistrationDeadline,
		EntryFeeCents:        input.EntryFeeCents,
	}
	if err := p.Validate(); err != nil {
		return pool.Pool{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.pools.Create(ctx, p); err != nil {
		return pool.Pool{}, fmt.Errorf("create pool: %w", err)
	}

	if err := s.seedDefaultsWithRetry(ctx, poolID); err != nil {
		return pool.Pool{}, err
	}

	if s.seeder != nil {
		if err := s.seeder.SeedDefaultRoster(ctx, poolID); err != nil {
			s.logger.WarnContext(ctx, "default roster seed failed",
				"pool_id", poolID,
				"error", err,
			)
		}
	}

	s.memberships.Delete(ctx, membershipCacheKey(input.OwnerUserID))
	return p, nil
}

// seedDefaultsWithRetry calls the seed_new_pool_defaults procedure, retrying
// transient row-level-security failures with backoff.
func (s *PoolService) seedDefaultsWithRetry(ctx context.Context, poolID string) error {
	var lastErr error
	for attempt := 1; attempt <= seedDefaultsMaxAttempts; attempt++ {
		lastErr = s.pools.SeedDefaults(ctx, poolID)
		if lastErr == nil {
			return nil
		}
		if !errors.Is(lastErr, ErrTransientBackend) {
			break
		}
		s.logger.WarnContext(ctx, "seed pool defaults retry",
			"pool_id", poolID,
			"attempt", attempt,
			"error", lastErr,
		)
		if attempt < seedDefaultsMaxAttempts {
			s.sleep(seedDefaultsBackoff * time.Duration(attempt))
		}
	}
	return fmt.Errorf("seed pool defaults: %w", lastErr)
}

func (s *PoolService) Get(ctx context.Context, poolID string) (pool.Pool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PoolService.Get")
	defer span.End()

	p, found, err := s.pools.GetByID(ctx, poolID)
	if err != nil {
		return pool.Pool{}, fmt.Errorf("get pool: %w", err)
	}
	if !found {
		return pool.Pool{}, fmt.Errorf("%w: pool %s", ErrNotFound, poolID)
	}
	return p, nil
}

func (s *PoolService) JoinByInvite(ctx context.Context, inviteCode, userID string) (pool.Membership, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PoolService.JoinByInvite")
	defer span.End()

	inviteCode = strings.TrimSpace(inviteCode)
	if inviteCode == "" {
		return pool.Membership{}, fmt.Errorf("%w: invite code is required", ErrInvalidInput)
	}

	membership, err := s.pools.JoinByInvite(ctx, inviteCode, userID)
	if err != nil {
		return pool.Membership{}, fmt.Errorf("join pool by invite: %w", err)
	}

	s.memberships.Delete(ctx, membershipCacheKey(userID))
	return membership, nil
}

// ListMemberships serves from a short-lived cache to cut redundant reads on
// dashboard loads; correctness never depends on it.
func (s *PoolService) ListMemberships(ctx context.Context, userID string) ([]pool.Membership, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PoolService.ListMemberships")
	defer span.End()

	value, err := s.memberships.GetOrLoad(ctx, membershipCacheKey(userID), func(ctx context.Context) (any, error) {
		memberships, err := s.pools.ListMembershipsByUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("list memberships: %w", err)
		}
		return memberships, nil
	})
	if err != nil {
		return nil, err
	}

	memberships, ok := value.([]pool.Membership)
	if !ok {
		return nil, fmt.Errorf("unexpected membership cache value type %T", value)
	}
	return memberships, nil
}

// RefreshMemberships drops the cached memberships, e.g. on auth state
// change.
func (s *PoolService) RefreshMemberships(ctx context.Context, userID string) {
	s.memberships.Delete(ctx, membershipCacheKey(userID))
}

func (s *PoolService) UpdateSettings(ctx context.Context, input UpdatePoolSettingsInput) (pool.Pool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PoolService.UpdateSettings")
	defer span.End()

	p, found, err := s.pools.GetByID(ctx, input.PoolID)
	if err != nil {
		return pool.Pool{}, fmt.Errorf("get pool for settings update: %w", err)
	}
	if !found {
		return pool.Pool{}, fmt.Errorf("%w: pool %s", ErrNotFound, input.PoolID)
	}

	if input.Name != nil {
		p.Name = strings.TrimSpace(*input.Name)
	}
	if input.AllowDuplicatePicks != nil {
		p.AllowDuplicatePicks = *input.AllowDuplicatePicks
	}
	if input.DraftLocked != nil {
		p.DraftLocked = *input.DraftLocked
	}
	if input.RegistrationDeadline != nil {
		p.RegistrationDeadline = input.RegistrationDeadline
	}
	if input.JuryStartWeek != nil {
		p.JuryStartWeek = *input.JuryStartWeek
	}
	if input.FinalWeek != nil {
		p.FinalWeek = *input.FinalWeek
	}
	if err := p.Validate(); err != nil {
		return pool.Pool{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.pools.Update(ctx, p); err != nil {
		return pool.Pool{}, fmt.Errorf("update pool settings: %w", err)
	}
	return p, nil
}

// RequireAdmin resolves the caller's membership and rejects non-admins.
func (s *PoolService) RequireAdmin(ctx context.Context, poolID, userID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.PoolService.RequireAdmin")
	defer span.End()

	p, found, err := s.pools.GetByID(ctx, poolID)
	if err != nil {
		return fmt.Errorf("get pool for admin check: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: pool %s", ErrNotFound, poolID)
	}
	if p.OwnerUserID == userID {
		return nil
	}

	memberships, err := s.pools.ListMembershipsByPool(ctx, poolID)
	if err != nil {
		return fmt.Errorf("list memberships for admin check: %w", err)
	}
	for _, m := range memberships {
		if m.UserID == userID && m.IsAdmin() {
			return nil
		}
	}
	return fmt.Errorf("%w: pool admin required", ErrForbidden)
}

func membershipCacheKey(userID string) string {
	return "memberships:" + userID
}
