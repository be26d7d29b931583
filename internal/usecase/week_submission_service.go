package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/poolhaus/fantasy-pool/internal/domain/contestant"
	"github.com/poolhaus/fantasy-pool/internal/domain/event"
	"github.com/poolhaus/fantasy-pool/internal/domain/pool"
	"github.com/poolhaus/fantasy-pool/internal/domain/weeklyresult"
	idgen "github.com/poolhaus/fantasy-pool/internal/platform/id"
	"github.com/poolhaus/fantasy-pool/internal/platform/logging"
)

// Sentinel values older admin clients send for "field not set".
const (
	sentinelNoWinner   = "no-winner"
	sentinelNoEviction = "no-eviction"
)

const maxEvictionRounds = 3

// EvictionCycleForm is one eviction cycle's worth of admin-submitted fields.
// Double and triple eviction weeks submit two or three of these.
type EvictionCycleForm struct {
	HOHWinnerID          string
	POVWinnerID          string
	POVUsed              bool
	POVUsedOnID          string
	Nominees             []string
	ReplacementNomineeID string
	EvictedID            string
}

// SpecialEventForm is one free-form occurrence row on the week form.
type SpecialEventForm struct {
	ContestantID string
	EventType    string
	Description  string
	CustomPoints *int
}

type WeekSubmission struct {
	PoolID             string
	WeekNumber         int
	Cycles             []EvictionCycleForm
	SpecialEvents      []SpecialEventForm
	JuryPhaseStarted   bool
	IsSeasonFinale     bool
	WinnerID           string
	RunnerUpID         string
	AmericasFavoriteID string
}

type WeekSubmissionResult struct {
	WeekNumber            int
	EventsRecorded        int
	SpecialEventsRecorded int
	EvictedIDs            []string
	Recompute             RecomputeSummary
	CurrentWeek           int
}

// WeekSubmissionService runs the full weekly scoring pipeline: build the
// week's event batch, persist it as a full replacement, apply contestant
// side effects, upsert the summary row, recompute every entry's points and
// advance the pool's current week. Resubmitting the same week with the same
// inputs produces the same stored state.
type WeekSubmissionService struct {
	pools       pool.Repository
	contestants contestant.Repository
	events      event.Repository
	results     weeklyresult.Repository
	rules       *RuleLookup
	special     *SpecialEventService
	points      *PointsService
	ids         idgen.Generator
	logger      *logging.Logger
	now         func() time.Time
}

func NewWeekSubmissionService(
	pools pool.Repository,
	contestants contestant.Repository,
	events event.Repository,
	results weeklyresult.Repository,
	rules *RuleLookup,
	special *SpecialEventService,
	points *PointsService,
	ids idgen.Generator,
	logger *logging.Logger,
) *WeekSubmissionService {
	if logger == nil {
		logger = logging.Default()
	}

	return &WeekSubmissionService{
		pools:       pools,
		contestants: contestants,
		events:      events,
		results:     results,
		rules:       rules,
		special:     special,
		points:      points,
		ids:         ids,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *WeekSubmissionService) Submit(ctx context.Context, sub WeekSubmission) (WeekSubmissionResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WeekSubmissionService.Submit")
	defer span.End()

	p, found, err := s.pools.GetByID(ctx, sub.PoolID)
	if err != nil {
		return WeekSubmissionResult{}, fmt.Errorf("get pool for week submission: %w", err)
	}
	if !found {
		return WeekSubmissionResult{}, fmt.Errorf("%w: pool %s", ErrNotFound, sub.PoolID)
	}

	if messages := validateWeekSubmission(p, sub); len(messages) > 0 {
		return WeekSubmissionResult{}, fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(messages, "; "))
	}

	roster, err := s.contestants.ListByPool(ctx, sub.PoolID)
	if err != nil {
		return WeekSubmissionResult{}, fmt.Errorf("list contestants for week submission: %w", err)
	}
	history, err := s.events.ListByPool(ctx, sub.PoolID)
	if err != nil {
		return WeekSubmissionResult{}, fmt.Errorf("list event history for week submission: %w", err)
	}

	weekEvents := make([]event.WeeklyEvent, 0, 16)
	evictedThisWeek := make([]string, 0, maxEvictionRounds)
	for i, cycle := range sub.Cycles {
		cycleEvents, evictedID, err := s.buildCycleEvents(ctx, sub.PoolID, sub.WeekNumber, i+1, cycle)
		if err != nil {
			return WeekSubmissionResult{}, err
		}
		weekEvents = append(weekEvents, cycleEvents...)
		if evictedID != "" {
			evictedThisWeek = append(evictedThisWeek, evictedID)
		}
	}

	specialEvents, syntheticEvictions, sideEffects, err := s.special.Build(ctx, sub.PoolID, sub.WeekNumber, sub.SpecialEvents)
	if err != nil {
		return WeekSubmissionResult{}, err
	}
	weekEvents = append(weekEvents, syntheticEvictions...)
	for _, ev := range syntheticEvictions {
		evictedThisWeek = append(evictedThisWeek, ev.ContestantID)
	}

	// The evicted set must include this submission's evictions before any
	// survival point is awarded.
	evicted := evictedSetBeforeWeek(history, sub.WeekNumber)
	for _, id := range evictedThisWeek {
		evicted[id] = struct{}{}
	}
	survivalEvents, err := s.buildSurvivalEvents(ctx, sub.PoolID, sub.WeekNumber, roster, evicted, sub.JuryPhaseStarted)
	if err != nil {
		return WeekSubmissionResult{}, err
	}
	weekEvents = append(weekEvents, survivalEvents...)

	if sub.IsSeasonFinale {
		finaleEvents, err := s.buildFinaleEvents(ctx, sub)
		if err != nil {
			return WeekSubmissionResult{}, err
		}
		weekEvents = append(weekEvents, finaleEvents...)
	}

	// Form rows carry no ids; every stored event needs a unique public id.
	if err := s.stampEventIDs(weekEvents, specialEvents); err != nil {
		return WeekSubmissionResult{}, err
	}

	if err := s.events.ReplaceWeek(ctx, sub.PoolID, sub.WeekNumber, weekEvents); err != nil {
		return WeekSubmissionResult{}, fmt.Errorf("replace week events: %w", err)
	}
	if err := s.events.DeleteSpecialByWeek(ctx, sub.PoolID, sub.WeekNumber); err != nil {
		return WeekSubmissionResult{}, fmt.Errorf("clear week special events: %w", err)
	}
	for _, se := range specialEvents {
		if err := s.events.InsertSpecial(ctx, se); err != nil {
			return WeekSubmissionResult{}, fmt.Errorf("insert special event contestant=%s: %w", se.ContestantID, err)
		}
	}

	for _, id := range evictedThisWeek {
		if err := s.contestants.SetActive(ctx, id, false); err != nil {
			return WeekSubmissionResult{}, fmt.Errorf("deactivate evicted contestant %s: %w", id, err)
		}
	}
	if err := s.special.ApplySideEffects(ctx, sideEffects); err != nil {
		return WeekSubmissionResult{}, err
	}

	if err := s.special.ScanAchievements(ctx, sub.PoolID, sub.WeekNumber); err != nil {
		return WeekSubmissionResult{}, err
	}

	if err := s.results.Upsert(ctx, buildWeeklyResult(sub, s.now().UTC())); err != nil {
		return WeekSubmissionResult{}, fmt.Errorf("upsert weekly result: %w", err)
	}

	summary, err := s.points.RecalculatePool(ctx, sub.PoolID)
	if err != nil {
		return WeekSubmissionResult{}, err
	}

	currentWeek := p.CurrentWeek
	if sub.IsSeasonFinale {
		if err := s.recordPoolWinners(ctx, p); err != nil {
			return WeekSubmissionResult{}, err
		}
	} else {
		currentWeek, err = s.advanceWeek(ctx, sub.PoolID, sub.WeekNumber)
		if err != nil {
			return WeekSubmissionResult{}, err
		}
	}

	return WeekSubmissionResult{
		WeekNumber:            sub.WeekNumber,
		EventsRecorded:        len(weekEvents),
		SpecialEventsRecorded: len(specialEvents),
		EvictedIDs:            evictedThisWeek,
		Recompute:             summary,
		CurrentWeek:           currentWeek,
	}, nil
}

func (s *WeekSubmissionService) stampEventIDs(weekEvents []event.WeeklyEvent, specials []event.SpecialEvent) error {
	for i := range weekEvents {
		id, err := s.ids.NewID()
		if err != nil {
			return fmt.Errorf("generate weekly event id: %w", err)
		}
		weekEvents[i].ID = id
	}
	for i := range specials {
		id, err := s.ids.NewID()
		if err != nil {
			return fmt.Errorf("generate special event id: %w", err)
		}
		specials[i].ID = id
	}
	return nil
}

// lookupPoints resolves the active rule for a kind. A pool without an active
// rule for the kind scores zero; that is worth a warning because it usually
// means the pool's defaults were never seeded.
func (s *WeekSubmissionService) lookupPoints(ctx context.Context, poolID string, kind event.Kind) (int, error) {
	points, found, err := s.rules.PointsFor(ctx, poolID, kind)
	if err != nil {
		return 0, fmt.Errorf("lookup %s points: %w", kind.Subcategory(), err)
	}
	if !found {
		s.logger.WarnContext(ctx, "no active scoring rule",
			"pool_id", poolID,
			"subcategory", kind.Subcategory(),
		)
	}
	return points, nil
}

// buildCycleEvents turns one eviction cycle into ordered weekly events, one
// per non-empty field, each carrying the rule's point value looked up by
// subcategory. The eviction record itself always carries zero points: the
// downstream cost of being evicted is the lost survival points.
func (s *WeekSubmissionService) buildCycleEvents(
	ctx context.Context,
	poolID string,
	week, round int,
	cycle EvictionCycleForm,
) ([]event.WeeklyEvent, string, error) {
	out := make([]event.WeeklyEvent, 0, 8)

	appendScored := func(contestantID string, kind event.Kind) error {
		contestantID = cleanSentinel(contestantID)
		if contestantID == "" {
			return nil
		}
		points, err := s.lookupPoints(ctx, poolID, kind)
		if err != nil {
			return err
		}
		out = append(out, event.WeeklyEvent{
			PoolID:        poolID,
			WeekNumber:    week,
			ContestantID:  contestantID,
			Kind:          kind,
			PointsAwarded: points,
			EvictionRound: round,
		})
		return nil
	}

	if err := appendScored(cycle.HOHWinnerID, event.KindHOHWinner); err != nil {
		return nil, "", err
	}
	if err := appendScored(cycle.POVWinnerID, event.KindPOVWinner); err != nil {
		return nil, "", err
	}
	if cycle.POVUsed {
		if err := appendScored(cycle.POVUsedOnID, event.KindPOVUsedOn); err != nil {
			return nil, "", err
		}
	}
	for _, nominee := range cycle.Nominees {
		if err := appendScored(nominee, event.KindNominee); err != nil {
			return nil, "", err
		}
	}
	if err := appendScored(cycle.ReplacementNomineeID, event.KindReplacementNominee); err != nil {
		return nil, "", err
	}

	evictedID := cleanSentinel(cycle.EvictedID)
	if evictedID != "" {
		out = append(out, event.WeeklyEvent{
			PoolID:        poolID,
			WeekNumber:    week,
			ContestantID:  evictedID,
			Kind:          event.KindEvicted,
			PointsAwarded: 0,
			EvictionRound: round,
		})
	}

	return out, evictedID, nil
}

// buildSurvivalEvents awards one survival event to every roster contestant
// not in the evicted set, plus a jury event each when the week is marked as
// jury phase.
func (s *WeekSubmissionService) buildSurvivalEvents(
	ctx context.Context,
	poolID string,
	week int,
	roster []contestant.Contestant,
	evicted map[string]struct{},
	juryPhase bool,
) ([]event.WeeklyEvent, error) {
	survivalPoints, err := s.lookupPoints(ctx, poolID, event.KindSurvival)
	if err != nil {
		return nil, err
	}
	juryPoints := 0
	if juryPhase {
		juryPoints, err = s.lookupPoints(ctx, poolID, event.KindJuryMember)
		if err != nil {
			return nil, err
		}
	}

	out := make([]event.WeeklyEvent, 0, len(roster))
	for _, c := range roster {
		if _, gone := evicted[c.ID]; gone {
			continue
		}
		out = append(out, event.WeeklyEvent{
			PoolID:        poolID,
			WeekNumber:    week,
			ContestantID:  c.ID,
			Kind:          event.KindSurvival,
			PointsAwarded: survivalPoints,
		})
		if juryPhase {
			out = append(out, event.WeeklyEvent{
				PoolID:        poolID,
				WeekNumber:    week,
				ContestantID:  c.ID,
				Kind:          event.KindJuryMember,
				PointsAwarded: juryPoints,
			})
		}
	}

	return out, nil
}

func (s *WeekSubmissionService) buildFinaleEvents(ctx context.Context, sub WeekSubmission) ([]event.WeeklyEvent, error) {
	placements := []struct {
		contestantID string
		kind         event.Kind
	}{
		{cleanSentinel(sub.WinnerID), event.KindSeasonWinner},
		{cleanSentinel(sub.RunnerUpID), event.KindSeasonRunnerUp},
		{cleanSentinel(sub.AmericasFavoriteID), event.KindAmericasFavorite},
	}

	out := make([]event.WeeklyEvent, 0, len(placements))
	for _, placement := range placements {
		if placement.contestantID == "" {
			continue
		}
		points, err := s.lookupPoints(ctx, sub.PoolID, placement.kind)
		if err != nil {
			return nil, err
		}
		out = append(out, event.WeeklyEvent{
			PoolID:        sub.PoolID,
			WeekNumber:    sub.WeekNumber,
			ContestantID:  placement.contestantID,
			Kind:          placement.kind,
			PointsAwarded: points,
		})
	}

	return out, nil
}

// advanceWeek sets the pool's current week to one past the highest completed
// week. Never called for the finale: the finale is terminal.
func (s *WeekSubmissionService) advanceWeek(ctx context.Context, poolID string, submittedWeek int) (int, error) {
	results, err := s.results.ListByPool(ctx, poolID)
	if err != nil {
		return 0, fmt.Errorf("list weekly results for advancement: %w", err)
	}

	maxCompleted := submittedWeek
	for _, r := range results {
		if r.WeekNumber > maxCompleted {
			maxCompleted = r.WeekNumber
		}
	}

	next := maxCompleted + 1
	if err := s.pools.SetCurrentWeek(ctx, poolID, next); err != nil {
		return 0, fmt.Errorf("set current week: %w", err)
	}
	return next, nil
}

// recordPoolWinners ranks entries by total points and records the payout
// places after the finale recompute.
func (s *WeekSubmissionService) recordPoolWinners(ctx context.Context, p pool.Pool) error {
	entries, err := s.points.entries.ListByPool(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("list entries for pool winners: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TotalPoints != entries[j].TotalPoints {
			return entries[i].TotalPoints > entries[j].TotalPoints
		}
		return entries[i].ID < entries[j].ID
	})

	prizePot := p.EntryFeeCents * int64(len(entries))
	splits := []int64{60, 30, 10}

	winners := make([]pool.Winner, 0, len(splits))
	for place := 0; place < len(splits) && place < len(entries); place++ {
		winners = append(winners, pool.Winner{
			PoolID:     p.ID,
			EntryID:    entries[place].ID,
			UserID:     entries[place].UserID,
			Place:      place + 1,
			PrizeCents: prizePot * splits[place] / 100,
			RecordedAt: s.now().UTC(),
		})
	}

	if err := s.pools.RecordWinners(ctx, winners); err != nil {
		return fmt.Errorf("record pool winners: %w", err)
	}
	return nil
}

func validateWeekSubmission(p pool.Pool, sub WeekSubmission) []string {
	var messages []string
	if sub.WeekNumber <= 0 {
		messages = append(messages, "week number must be greater than zero")
	}
	if p.FinalWeek > 0 && sub.WeekNumber > p.FinalWeek {
		messages = append(messages, fmt.Sprintf("week %d is past the final week %d", sub.WeekNumber, p.FinalWeek))
	}
	if len(sub.Cycles) == 0 {
		messages = append(messages, "at least one eviction cycle is required")
	}
	if len(sub.Cycles) > maxEvictionRounds {
		messages = append(messages, fmt.Sprintf("at most %d eviction cycles are supported", maxEvictionRounds))
	}
	if sub.IsSeasonFinale && cleanSentinel(sub.WinnerID) == "" {
		messages = append(messages, "season finale requires a winner")
	}
	if !sub.IsSeasonFinale && (cleanSentinel(sub.WinnerID) != "" || cleanSentinel(sub.RunnerUpID) != "") {
		messages = append(messages, "winner and runner-up can only be set on the season finale")
	}
	return messages
}

// evictedSetBeforeWeek collects contestants evicted in weeks strictly before
// the submission week. Current-week rows from a prior submission are
// excluded on purpose: they are about to be regenerated.
func evictedSetBeforeWeek(history []event.WeeklyEvent, week int) map[string]struct{} {
	out := make(map[string]struct{})
	for _, ev := range history {
		if ev.Kind == event.KindEvicted && ev.WeekNumber < week {
			out[ev.ContestantID] = struct{}{}
		}
	}
	return out
}

func buildWeeklyResult(sub WeekSubmission, now time.Time) weeklyresult.Result {
	result := weeklyresult.Result{
		PoolID:           sub.PoolID,
		WeekNumber:       sub.WeekNumber,
		JuryPhaseStarted: sub.JuryPhaseStarted,
		IsSeasonFinale:   sub.IsSeasonFinale,
		RecordedAt:       now,
	}

	if len(sub.Cycles) > 0 {
		first := sub.Cycles[0]
		result.HOHWinnerID = cleanSentinel(first.HOHWinnerID)
		result.POVWinnerID = cleanSentinel(first.POVWinnerID)
		if first.POVUsed {
			result.POVUsedOnID = cleanSentinel(first.POVUsedOnID)
		}
		for _, nominee := range first.Nominees {
			if cleaned := cleanSentinel(nominee); cleaned != "" {
				result.Nominees = append(result.Nominees, cleaned)
			}
		}
		result.ReplacementNomineeID = cleanSentinel(first.ReplacementNomineeID)
	}

	for _, cycle := range sub.Cycles {
		if evictedID := cleanSentinel(cycle.EvictedID); evictedID != "" {
			result.EvictedIDs = append(result.EvictedIDs, evictedID)
		}
	}
	result.IsDoubleEviction = len(sub.Cycles) == 2
	result.IsTripleEviction = len(sub.Cycles) == 3

	if sub.IsSeasonFinale {
		result.WinnerID = cleanSentinel(sub.WinnerID)
		result.RunnerUpID = cleanSentinel(sub.RunnerUpID)
		result.AmericasFavoriteID = cleanSentinel(sub.AmericasFavoriteID)
	}

	return result
}

func (s *WeekSubmissionService) ListResults(ctx context.Context, poolID string) ([]weeklyresult.Result, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WeekSubmissionService.ListResults")
	defer span.End()

	results, err := s.results.ListByPool(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("list weekly results: %w", err)
	}
	return results, nil
}

func (s *WeekSubmissionService) GetResult(ctx context.Context, poolID string, week int) (weeklyresult.Result, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WeekSubmissionService.GetResult")
	defer span.End()

	result, found, err := s.results.Get(ctx, poolID, week)
	if err != nil {
		return weeklyresult.Result{}, fmt.Errorf("get weekly result: %w", err)
	}
	if !found {
		return weeklyresult.Result{}, fmt.Errorf("%w: week %d has no recorded result", ErrNotFound, week)
	}
	return result, nil
}

// cleanSentinel maps the admin form's "not set" sentinels to empty.
func cleanSentinel(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == sentinelNoWinner || trimmed == sentinelNoEviction {
		return ""
	}
	return trimmed
}
