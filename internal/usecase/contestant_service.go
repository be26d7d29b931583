package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poolhaus/fantasy-pool/internal/domain/contestant"
	idgen "github.com/poolhaus/fantasy-pool/internal/platform/id"
	"github.com/poolhaus/fantasy-pool/internal/platform/logging"
)

const (
	bulkSeedDefaultWorkers = 4
	bulkSeedMaxWorkers     = 16
	defaultRosterSize      = 16
)

type ContestantSeed struct {
	Name       string
	Age        int
	Hometown   string
	Occupation string
	Bio        string
	PhotoURL   string
	GroupID    string
	SortOrder  int
}

type BulkSeedFailure struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// BulkSeedResult is a partial-batch summary: valid rows land even when
// others fail.
type BulkSeedResult struct {
	Successful int               `json:"successful"`
	Failed     []BulkSeedFailure `json:"failed"`
}

type UpdateContestantInput struct {
	ContestantID string
	Name         *string
	Age          *int
	Hometown     *string
	Occupation   *string
	Bio          *string
	PhotoURL     *string
	GroupID      *string
	SortOrder    *int
}

// GenerateRosterResult carries the seeded roster plus degradation state when
// the profile generator was unavailable.
type GenerateRosterResult struct {
	Seed                   BulkSeedResult `json:"seed"`
	ManualEntryRecommended bool           `json:"manual_entry_recommended"`
	Warning                string         `json:"warning,omitempty"`
}

type ContestantService struct {
	contestants contestant.Repository
	generator   ProfileGenerator
	verifier    ShowDataVerifier
	ids         idgen.Generator
	logger      *logging.Logger
}

func NewContestantService(
	contestants contestant.Repository,
	generator ProfileGenerator,
	verifier ShowDataVerifier,
	ids idgen.Generator,
	logger *logging.Logger,
) *ContestantService {
	if logger == nil {
		logger = logging.Default()
	}

	return &ContestantService{
		contestants: contestants,
		generator:   generator,
		verifier:    verifier,
		ids:         ids,
		logger:      logger,
	}
}

func (s *ContestantService) List(ctx context.Context, poolID string) ([]contestant.Contestant, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ContestantService.List")
	defer span.End()

	roster, err := s.contestants.ListByPool(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("list contestants: %w", err)
	}

	sort.SliceStable(roster, func(i, j int) bool {
		if roster[i].SortOrder != roster[j].SortOrder {
			return roster[i].SortOrder < roster[j].SortOrder
		}
		return roster[i].Name < roster[j].Name
	})
	return roster, nil
}

func (s *ContestantService) ListGroups(ctx context.Context, poolID string) ([]contestant.Group, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ContestantService.ListGroups")
	defer span.End()

	groups, err := s.contestants.ListGroupsByPool(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("list contestant groups: %w", err)
	}
	return groups, nil
}

func (s *ContestantService) Create(ctx context.Context, poolID string, seed ContestantSeed) (contestant.Contestant, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ContestantService.Create")
	defer span.End()

	c, err := s.buildContestant(poolID, seed)
	if err != nil {
		return contestant.Contestant{}, err
	}
	if err := s.contestants.Create(ctx, c); err != nil {
		return contestant.Contestant{}, fmt.Errorf("create contestant: %w", err)
	}
	return c, nil
}

func (s *ContestantService) Update(ctx context.Context, input UpdateContestantInput) (contestant.Contestant, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ContestantService.Update")
	defer span.End()

	c, found, err := s.contestants.GetByID(ctx, input.ContestantID)
	if err != nil {
		return contestant.Contestant{}, fmt.Errorf("get contestant: %w", err)
	}
	if !found {
		return contestant.Contestant{}, fmt.Errorf("%w: contestant %s", ErrNotFound, input.ContestantID)
	}

	if input.Name != nil {
		c.Name = strings.TrimSpace(*input.Name)
	}
	if input.Age != nil {
		c.Age = *input.Age
	}
	if input.Hometown != nil {
		c.Hometown = strings.TrimSpace(*input.Hometown)
	}
	if input.Occupation != nil {
		c.Occupation = strings.TrimSpace(*input.Occupation)
	}
	if input.Bio != nil {
		c.Bio = *input.Bio
	}
	if input.PhotoURL != nil {
		c.PhotoURL = strings.TrimSpace(*input.PhotoURL)
	}
	if input.GroupID != nil {
		c.GroupID = *input.GroupID
	}
	if input.SortOrder != nil {
		c.SortOrder = *input.SortOrder
	}
	if err := c.Validate(); err != nil {
		return contestant.Contestant{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.contestants.Update(ctx, c); err != nil {
		return contestant.Contestant{}, fmt.Errorf("update contestant: %w", err)
	}
	return c, nil
}

func (s *ContestantService) Delete(ctx context.Context, contestantID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ContestantService.Delete")
	defer span.End()

	_, found, err := s.contestants.GetByID(ctx, contestantID)
	if err != nil {
		return fmt.Errorf("get contestant for delete: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: contestant %s", ErrNotFound, contestantID)
	}
	if err := s.contestants.Delete(ctx, contestantID); err != nil {
		return fmt.Errorf("delete contestant: %w", err)
	}
	return nil
}

// BulkSeed inserts a batch of contestants through a worker pool. Rows that
// fail validation or insertion are reported; the rest land.
func (s *ContestantService) BulkSeed(ctx context.Context, poolID string, seeds []ContestantSeed) (BulkSeedResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ContestantService.BulkSeed")
	defer span.End()

	if len(seeds) == 0 {
		return BulkSeedResult{}, fmt.Errorf("%w: no contestants to seed", ErrInvalidInput)
	}

	existing, err := s.contestants.ListByPool(ctx, poolID)
	if err != nil {
		return BulkSeedResult{}, fmt.Errorf("list contestants for seed: %w", err)
	}
	existingNames := make(map[string]bool, len(existing))
	for _, c := range existing {
		existingNames[strings.ToLower(c.Name)] = true
	}

	workerCount := bulkSeedDefaultWorkers
	if len(seeds) < workerCount {
		workerCount = len(seeds)
	}
	if workerCount > bulkSeedMaxWorkers {
		workerCount = bulkSeedMaxWorkers
	}

	workerPool, err := ants.NewPool(workerCount)
	if err != nil {
		return BulkSeedResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer workerPool.Release()

	var successCount atomic.Int32
	var mu sync.Mutex
	var failures []BulkSeedFailure
	var workers sync.WaitGroup

	fail := func(name, message string) {
		mu.Lock()
		failures = append(failures, BulkSeedFailure{Name: name, Message: message})
		mu.Unlock()
	}

	for _, seed := range seeds {
		seed := seed

		// The map also claims names for this batch, so a duplicate within
		// the request fails the same way as a pre-existing one.
		nameKey := strings.ToLower(strings.TrimSpace(seed.Name))
		if nameKey != "" {
			if existingNames[nameKey] {
				fail(seed.Name, "a contestant with this name already exists in the pool")
				continue
			}
			existingNames[nameKey] = true
		}

		workers.Add(1)
		if err := workerPool.Submit(func() {
			defer workers.Done()

			c, err := s.buildContestant(poolID, seed)
			if err != nil {
				fail(seed.Name, err.Error())
				return
			}
			if err := s.contestants.Create(ctx, c); err != nil {
				fail(seed.Name, err.Error())
				return
			}
			successCount.Add(1)
		}); err != nil {
			workers.Done()
			fail(seed.Name, fmt.Sprintf("submit to worker pool: %v", err))
		}
	}
	workers.Wait()

	result := BulkSeedResult{
		Successful: int(successCount.Load()),
		Failed:     failures,
	}
	s.logger.InfoContext(ctx, "contestant bulk seed finished",
		"pool_id", poolID,
		"successful", result.Successful,
		"failed", len(result.Failed),
	)
	return result, nil
}

// GenerateRoster asks the profile generator for a cast and seeds it. A
// generator outage degrades to a manual-entry recommendation instead of an
// error.
func (s *ContestantService) GenerateRoster(ctx context.Context, poolID, seasonHint string, count int) (GenerateRosterResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ContestantService.GenerateRoster")
	defer span.End()

	if s.generator == nil {
		return GenerateRosterResult{
			ManualEntryRecommended: true,
			Warning:                "profile generation is not configured; enter contestants manually",
		}, nil
	}
	if count <= 0 {
		count = defaultRosterSize
	}

	profiles, err := s.generator.GenerateProfiles(ctx, seasonHint, count)
	if err != nil {
		s.logger.WarnContext(ctx, "profile generation unavailable",
			"pool_id", poolID,
			"error", err,
		)
		return GenerateRosterResult{
			ManualEntryRecommended: true,
			Warning:                "profile generation is unavailable; enter contestants manually",
		}, nil
	}

	seeds := make([]ContestantSeed, 0, len(profiles))
	for i, profile := range profiles {
		seeds = append(seeds, ContestantSeed{
			Name:       profile.Name,
			Age:        profile.Age,
			Hometown:   profile.Hometown,
			Occupation: profile.Occupation,
			Bio:        profile.Bio,
			PhotoURL:   profile.PhotoURL,
			SortOrder:  i + 1,
		})
	}

	seedResult, err := s.BulkSeed(ctx, poolID, seeds)
	if err != nil {
		return GenerateRosterResult{}, err
	}
	return GenerateRosterResult{Seed: seedResult}, nil
}

// SeedDefaultRoster fills a fresh pool with placeholder slots so admins can
// rename instead of typing a roster from scratch.
func (s *ContestantService) SeedDefaultRoster(ctx context.Context, poolID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ContestantService.SeedDefaultRoster")
	defer span.End()

	seeds := make([]ContestantSeed, 0, defaultRosterSize)
	for i := 1; i <= defaultRosterSize; i++ {
		seeds = append(seeds, ContestantSeed{
			Name:      fmt.Sprintf("Houseguest %d", i),
			SortOrder: i,
		})
	}

	result, err := s.BulkSeed(ctx, poolID, seeds)
	if err != nil {
		return err
	}
	if len(result.Failed) > 0 {
		return fmt.Errorf("default roster seed: %d of %d slots failed", len(result.Failed), defaultRosterSize)
	}
	return nil
}

// VerifyWeekData cross-checks submitted week values against external
// coverage. Outages degrade to a manual-entry recommendation.
func (s *ContestantService) VerifyWeekData(ctx context.Context, season, week int, submitted map[string]string) (WeekDataReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ContestantService.VerifyWeekData")
	defer span.End()

	if s.verifier == nil {
		return WeekDataReport{
			ManualEntryRecommended: true,
			Warning:                "external verification is not configured",
		}, nil
	}

	report, err := s.verifier.VerifyWeek(ctx, season, week, submitted)
	if err != nil {
		s.logger.WarnContext(ctx, "week data verification unavailable",
			"season", season,
			"week", week,
			"error", err,
		)
		return WeekDataReport{
			ManualEntryRecommended: true,
			Warning:                "external verification is unavailable; double-check entries manually",
		}, nil
	}
	return report, nil
}

func (s *ContestantService) buildContestant(poolID string, seed ContestantSeed) (contestant.Contestant, error) {
	contestantID, err := s.ids.NewID()
	if err != nil {
		return contestant.Contestant{}, fmt.Errorf("generate contestant id: %w", err)
	}

	now := time.Now().UTC()
	c := contestant.Contestant{
		ID:         contestantID,
		PoolID:     poolID,
		Name:       strings.TrimSpace(seed.Name),
		IsActive:   true,
		GroupID:    seed.GroupID,
		SortOrder:  seed.SortOrder,
		Age:        seed.Age,
		Hometown:   strings.TrimSpace(seed.Hometown),
		Occupation: strings.TrimSpace(seed.Occupation),
		Bio:        seed.Bio,
		PhotoURL:   strings.TrimSpace(seed.PhotoURL),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := c.Validate(); err != nil {
		return contestant.Contestant{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return c, nil
}
