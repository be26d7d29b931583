package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/poolhaus/fantasy-pool/internal/domain/bonus"
	"github.com/poolhaus/fantasy-pool/internal/domain/contestant"
	"github.com/poolhaus/fantasy-pool/internal/domain/entry"
	"github.com/poolhaus/fantasy-pool/internal/domain/pool"
	idgen "github.com/poolhaus/fantasy-pool/internal/platform/id"
	"github.com/poolhaus/fantasy-pool/internal/platform/logging"
)

type SubmitEntryInput struct {
	PoolID       string
	UserID       string
	TeamName     string
	PlayerIDs    []string
	BonusAnswers map[string]bonus.Answer
}

type UpdateEntryInput struct {
	EntryID      string
	UserID       string
	TeamName     *string
	PlayerIDs    []string
	BonusAnswers map[string]bonus.Answer
}

type EntryService struct {
	pools       pool.Repository
	entries     entry.Repository
	contestants contestant.Repository
	bonuses     bonus.Repository
	ids         idgen.Generator
	logger      *logging.Logger
	now         func() time.Time
}

func NewEntryService(
	pools pool.Repository,
	entries entry.Repository,
	contestants contestant.Repository,
	bonuses bonus.Repository,
	ids idgen.Generator,
	logger *logging.Logger,
) *EntryService {
	if logger == nil {
		logger = logging.Default()
	}

	return &EntryService{
		pools:       pools,
		entries:     entries,
		contestants: contestants,
		bonuses:     bonuses,
		ids:         ids,
		logger:      logger,
		now:         time.Now,
	}
}

// SubmitDraft validates and creates a new entry. Validation failures are
// collected and returned together; nothing is written unless the whole draft
// is valid.
func (s *EntryService) SubmitDraft(ctx context.Context, input SubmitEntryInput) (entry.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EntryService.SubmitDraft")
	defer span.End()

	p, found, err := s.pools.GetByID(ctx, input.PoolID)
	if err != nil {
		return entry.Entry{}, fmt.Errorf("get pool for draft: %w", err)
	}
	if !found {
		return entry.Entry{}, fmt.Errorf("%w: pool %s", ErrNotFound, input.PoolID)
	}

	existing, err := s.entries.ListByPool(ctx, input.PoolID)
	if err != nil {
		return entry.Entry{}, fmt.Errorf("list entries for draft: %w", err)
	}

	problems := s.validateDraft(ctx, p, existing, input.UserID, input.TeamName, input.PlayerIDs, "")
	if len(problems) > 0 {
		return entry.Entry{}, fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
	}

	entryID, err := s.ids.NewID()
	if err != nil {
		return entry.Entry{}, fmt.Errorf("generate entry id: %w", err)
	}

	e := entry.Entry{
		ID:           entryID,
		PoolID:       input.PoolID,
		UserID:       input.UserID,
		TeamName:     strings.TrimSpace(input.TeamName),
		PlayerIDs:    input.PlayerIDs,
		BonusAnswers: input.BonusAnswers,
		CreatedAt:    s.now().UTC(),
		UpdatedAt:    s.now().UTC(),
	}
	if err := s.entries.Create(ctx, e); err != nil {
		return entry.Entry{}, fmt.Errorf("create entry: %w", err)
	}

	s.logger.InfoContext(ctx, "entry drafted",
		"pool_id", e.PoolID,
		"entry_id", e.ID,
		"picks", len(e.PlayerIDs),
	)
	return e, nil
}

// UpdateDraft edits an existing entry while registration is still open. Only
// the owner may edit; picks are revalidated in full when changed.
func (s *EntryService) UpdateDraft(ctx context.Context, input UpdateEntryInput) (entry.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EntryService.UpdateDraft")
	defer span.End()

	e, found, err := s.entries.GetByID(ctx, input.EntryID)
	if err != nil {
		return entry.Entry{}, fmt.Errorf("get entry for update: %w", err)
	}
	if !found || e.DeletedAt != nil {
		return entry.Entry{}, fmt.Errorf("%w: entry %s", ErrNotFound, input.EntryID)
	}
	if e.UserID != input.UserID {
		return entry.Entry{}, fmt.Errorf("%w: entry belongs to another user", ErrForbidden)
	}

	p, found, err := s.pools.GetByID(ctx, e.PoolID)
	if err != nil {
		return entry.Entry{}, fmt.Errorf("get pool for entry update: %w", err)
	}
	if !found {
		return entry.Entry{}, fmt.Errorf("%w: pool %s", ErrNotFound, e.PoolID)
	}

	if input.TeamName != nil {
		e.TeamName = strings.TrimSpace(*input.TeamName)
	}
	if input.PlayerIDs != nil {
		existing, err := s.entries.ListByPool(ctx, e.PoolID)
		if err != nil {
			return entry.Entry{}, fmt.Errorf("list entries for update: %w", err)
		}
		problems := s.validateDraft(ctx, p, existing, e.UserID, e.TeamName, input.PlayerIDs, e.ID)
		if len(problems) > 0 {
			return entry.Entry{}, fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
		}
		e.PlayerIDs = input.PlayerIDs
	}
	if input.BonusAnswers != nil {
		if err := s.validateBonusAnswers(ctx, e.PoolID, input.BonusAnswers); err != nil {
			return entry.Entry{}, err
		}
		e.BonusAnswers = input.BonusAnswers
	}

	e.UpdatedAt = s.now().UTC()
	if err := s.entries.Update(ctx, e); err != nil {
		return entry.Entry{}, fmt.Errorf("update entry: %w", err)
	}
	return e, nil
}

func (s *EntryService) Get(ctx context.Context, entryID string) (entry.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EntryService.Get")
	defer span.End()

	e, found, err := s.entries.GetByID(ctx, entryID)
	if err != nil {
		return entry.Entry{}, fmt.Errorf("get entry: %w", err)
	}
	if !found || e.DeletedAt != nil {
		return entry.Entry{}, fmt.Errorf("%w: entry %s", ErrNotFound, entryID)
	}
	return e, nil
}

// Standings returns the pool's entries in leaderboard order: total points
// descending, ties broken by team name for a stable display.
func (s *EntryService) Standings(ctx context.Context, poolID string) ([]entry.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EntryService.Standings")
	defer span.End()

	entries, err := s.entries.ListByPool(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("list entries for standings: %w", err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TotalPoints != entries[j].TotalPoints {
			return entries[i].TotalPoints > entries[j].TotalPoints
		}
		return entries[i].TeamName < entries[j].TeamName
	})
	return entries, nil
}

func (s *EntryService) ListMine(ctx context.Context, userID string) ([]entry.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EntryService.ListMine")
	defer span.End()

	entries, err := s.entries.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list entries by user: %w", err)
	}
	return entries, nil
}

// ConfirmPayment toggles the admin-tracked payment flag on an entry.
func (s *EntryService) ConfirmPayment(ctx context.Context, entryID string, confirmed bool) (entry.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EntryService.ConfirmPayment")
	defer span.End()

	e, found, err := s.entries.GetByID(ctx, entryID)
	if err != nil {
		return entry.Entry{}, fmt.Errorf("get entry for payment: %w", err)
	}
	if !found || e.DeletedAt != nil {
		return entry.Entry{}, fmt.Errorf("%w: entry %s", ErrNotFound, entryID)
	}

	e.PaymentConfirmed = confirmed
	e.UpdatedAt = s.now().UTC()
	if err := s.entries.Update(ctx, e); err != nil {
		return entry.Entry{}, fmt.Errorf("update entry payment: %w", err)
	}
	return e, nil
}

// Withdraw soft-deletes the entry. Owners may withdraw their own entry;
// handlers gate the admin path separately.
func (s *EntryService) Withdraw(ctx context.Context, entryID, userID string, asAdmin bool) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.EntryService.Withdraw")
	defer span.End()

	e, found, err := s.entries.GetByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("get entry for withdrawal: %w", err)
	}
	if !found || e.DeletedAt != nil {
		return fmt.Errorf("%w: entry %s", ErrNotFound, entryID)
	}
	if !asAdmin && e.UserID != userID {
		return fmt.Errorf("%w: entry belongs to another user", ErrForbidden)
	}

	if err := s.entries.SoftDelete(ctx, entryID); err != nil {
		return fmt.Errorf("soft delete entry: %w", err)
	}

	s.logger.InfoContext(ctx, "entry withdrawn",
		"pool_id", e.PoolID,
		"entry_id", e.ID,
		"by_admin", asAdmin,
	)
	return nil
}

// validateDraft collects every problem with a draft in one pass.
// excludeEntryID skips the entry being edited when checking duplicate picks
// and the one-entry-per-user rule.
func (s *EntryService) validateDraft(
	ctx context.Context,
	p pool.Pool,
	existing []entry.Entry,
	userID, teamName string,
	playerIDs []string,
	excludeEntryID string,
) []string {
	var problems []string

	if !p.RegistrationOpen(s.now()) {
		problems = append(problems, "registration is closed for this pool")
	}
	if strings.TrimSpace(teamName) == "" {
		problems = append(problems, "team name is required")
	}
	if len(playerIDs) != p.TeamSize {
		problems = append(problems, fmt.Sprintf("team must have exactly %d picks, got %d", p.TeamSize, len(playerIDs)))
	}

	seen := make(map[string]bool, len(playerIDs))
	for _, id := range playerIDs {
		if seen[id] {
			problems = append(problems, fmt.Sprintf("contestant %s picked more than once", id))
		}
		seen[id] = true
	}

	roster, err := s.contestants.ListByPool(ctx, p.ID)
	if err != nil {
		problems = append(problems, "could not load the contestant roster")
		return problems
	}
	known := make(map[string]bool, len(roster))
	for _, c := range roster {
		known[c.ID] = true
	}
	for _, id := range playerIDs {
		if !known[id] {
			problems = append(problems, fmt.Sprintf("contestant %s is not in this pool", id))
		}
	}

	taken := make(map[string]string)
	for _, other := range existing {
		if other.ID == excludeEntryID || other.DeletedAt != nil {
			continue
		}
		if other.UserID == userID {
			problems = append(problems, "user already has an entry in this pool")
		}
		for _, id := range other.PlayerIDs {
			taken[id] = other.TeamName
		}
	}
	if !p.AllowDuplicatePicks {
		for _, id := range playerIDs {
			if team, ok := taken[id]; ok {
				problems = append(problems, fmt.Sprintf("contestant %s is already picked by %q", id, team))
			}
		}
	}

	return problems
}

// validateBonusAnswers rejects answers keyed to unknown questions or shaped
// wrong for the question type.
func (s *EntryService) validateBonusAnswers(ctx context.Context, poolID string, answers map[string]bonus.Answer) error {
	questions, err := s.bonuses.ListByPool(ctx, poolID)
	if err != nil {
		return fmt.Errorf("list bonus questions: %w", err)
	}

	byID := make(map[string]bonus.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	var problems []string
	for questionID, answer := range answers {
		q, ok := byID[questionID]
		if !ok {
			problems = append(problems, fmt.Sprintf("unknown bonus question %s", questionID))
			continue
		}
		if err := answer.ValidateFor(q.Type); err != nil {
			problems = append(problems, fmt.Sprintf("question %s: %v", questionID, err))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
	}
	return nil
}
