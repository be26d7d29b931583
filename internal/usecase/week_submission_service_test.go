package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/poolhaus/fantasy-pool/internal/domain/contestant"
	"github.com/poolhaus/fantasy-pool/internal/domain/entry"
	"github.com/poolhaus/fantasy-pool/internal/domain/pool"
	"github.com/poolhaus/fantasy-pool/internal/domain/scoringrule"
	"github.com/poolhaus/fantasy-pool/internal/infrastructure/repository/memory"
	"github.com/poolhaus/fantasy-pool/internal/platform/logging"
)

type seqIDGen struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDGen) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%04d", g.n), nil
}

// defaultRules mirrors the rule set seed_new_pool_defaults installs for a
// fresh pool.
func defaultRules(poolID string) []scoringrule.Rule {
	values := []struct {
		category    string
		subcategory string
		points      int
	}{
		{scoringrule.CategoryWeeklyCompetition, "hoh_winner", 10},
		{scoringrule.CategoryWeeklyCompetition, "pov_winner", 5},
		{scoringrule.CategoryWeeklyCompetition, "pov_used_on", 3},
		{scoringrule.CategoryWeeklyCompetition, "nominee", 2},
		{scoringrule.CategoryWeeklyCompetition, "replacement_nominee", 2},
		{scoringrule.CategoryWeeklyCompetition, "evicted", 0},
		{scoringrule.CategoryWeeklyCompetition, "survival", 2},
		{scoringrule.CategoryWeeklyCompetition, "jury_member", 5},
		{scoringrule.CategorySpecialEvents, "self_evicted", -5},
		{scoringrule.CategorySpecialEvents, "removed_production", -5},
		{scoringrule.CategorySpecialEvents, "came_back_after_evicted", 5},
		{scoringrule.CategorySpecialEvents, "block_survival_2_weeks", 5},
		{scoringrule.CategorySpecialEvents, "block_survival_4_weeks", 10},
		{scoringrule.CategorySpecialEvents, "floater_achievement", 5},
		{scoringrule.CategorySpecialEvents, "season_winner", 25},
		{scoringrule.CategorySpecialEvents, "season_runner_up", 15},
		{scoringrule.CategorySpecialEvents, "americas_favorite", 10},
	}

	rules := make([]scoringrule.Rule, 0, len(values))
	for i, v := range values {
		rules = append(rules, scoringrule.Rule{
			ID:          fmt.Sprintf("rule-%02d", i+1),
			PoolID:      poolID,
			Category:    v.category,
			Subcategory: v.subcategory,
			Points:      v.points,
			IsActive:    true,
		})
	}
	return rules
}

type weekFixture struct {
	pools       *memory.PoolRepository
	contestants *memory.ContestantRepository
	entries     *memory.EntryRepository
	events      *memory.EventRepository
	results     *memory.WeeklyResultRepository
	bonuses     *memory.BonusRepository
	points      *PointsService
	svc         *WeekSubmissionService
}

func newWeekFixture(t *testing.T, p pool.Pool) *weekFixture {
	t.Helper()

	pools := memory.NewPoolRepository()
	if err := pools.Create(context.Background(), p); err != nil {
		t.Fatalf("create pool: %v", err)
	}

	contestants := memory.NewContestantRepository()
	entries := memory.NewEntryRepository()
	events := memory.NewEventRepository()
	results := memory.NewWeeklyResultRepository()
	bonuses := memory.NewBonusRepository()
	rules := NewRuleLookup(memory.NewScoringRuleRepository(defaultRules(p.ID)), time.Minute)

	logger := logging.NewNop()
	ids := &seqIDGen{}
	points := NewPointsService(entries, events, bonuses, logger)
	special := NewSpecialEventService(contestants, events, rules, ids, logger)

	return &weekFixture{
		pools:       pools,
		contestants: contestants,
		entries:     entries,
		events:      events,
		results:     results,
		bonuses:     bonuses,
		points:      points,
		svc:         NewWeekSubmissionService(pools, contestants, events, results, rules, special, points, ids, logger),
	}
}

func testPool(id string) pool.Pool {
	return pool.Pool{
		ID:          id,
		Name:        "Season 99 Pool",
		InviteCode:  "abcd1234",
		OwnerUserID: "user-owner",
		TeamSize:    3,
		CurrentWeek: 1,
		FinalWeek:   12,
	}
}

func (f *weekFixture) addContestant(t *testing.T, id, name string) {
	t.Helper()
	err := f.contestants.Create(context.Background(), contestant.Contestant{
		ID:       id,
		PoolID:   "pool-1",
		Name:     name,
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("add contestant %s: %v", id, err)
	}
}

func (f *weekFixture) addEntry(t *testing.T, id, userID string, picks ...string) {
	t.Helper()
	err := f.entries.Create(context.Background(), entry.Entry{
		ID:        id,
		PoolID:    "pool-1",
		UserID:    userID,
		TeamName:  "team " + id,
		PlayerIDs: picks,
	})
	if err != nil {
		t.Fatalf("add entry %s: %v", id, err)
	}
}

func (f *weekFixture) entryByID(t *testing.T, id string) entry.Entry {
	t.Helper()
	e, found, err := f.entries.GetByID(context.Background(), id)
	if err != nil || !found {
		t.Fatalf("get entry %s: found=%t err=%v", id, found, err)
	}
	return e
}

func TestSubmit_SingleEvictionWeek(t *testing.T) {
	f := newWeekFixture(t, testPool("pool-1"))
	f.addContestant(t, "c-a", "Alice")
	f.addContestant(t, "c-b", "Bruno")
	f.addContestant(t, "c-c", "Carla")
	f.addEntry(t, "e-1", "user-1", "c-a")
	f.addEntry(t, "e-2", "user-2", "c-b", "c-c")

	result, err := f.svc.Submit(context.Background(), WeekSubmission{
		PoolID:     "pool-1",
		WeekNumber: 1,
		Cycles: []EvictionCycleForm{{
			HOHWinnerID: "c-a",
			Nominees:    []string{"c-b", "c-c"},
			EvictedID:   "c-c",
		}},
	})
	if err != nil {
		t.Fatalf("submit week: %v", err)
	}

	// HOH, two nominees, eviction, two survivals.
	if result.EventsRecorded != 6 {
		t.Fatalf("unexpected events recorded: got=%d want=%d", result.EventsRecorded, 6)
	}
	if len(result.EvictedIDs) != 1 || result.EvictedIDs[0] != "c-c" {
		t.Fatalf("unexpected evicted ids: %v", result.EvictedIDs)
	}
	if result.CurrentWeek != 2 {
		t.Fatalf("unexpected current week: got=%d want=%d", result.CurrentWeek, 2)
	}
	if result.Recompute.Successful != 2 || len(result.Recompute.Failed) != 0 {
		t.Fatalf("unexpected recompute summary: %+v", result.Recompute)
	}

	// Alice: HOH 10 + survival 2. Bruno: nominee 2 + survival 2.
	// Carla: nominee 2 + zero-point eviction, no survival.
	if e := f.entryByID(t, "e-1"); e.TotalPoints != 12 {
		t.Fatalf("unexpected e-1 points: got=%d want=%d", e.TotalPoints, 12)
	}
	if e := f.entryByID(t, "e-2"); e.TotalPoints != 6 {
		t.Fatalf("unexpected e-2 points: got=%d want=%d", e.TotalPoints, 6)
	}

	c, _, err := f.contestants.GetByID(context.Background(), "c-c")
	if err != nil {
		t.Fatalf("get contestant: %v", err)
	}
	if c.IsActive {
		t.Fatal("evicted contestant is still active")
	}

	stored, found, err := f.results.Get(context.Background(), "pool-1", 1)
	if err != nil || !found {
		t.Fatalf("get weekly result: found=%t err=%v", found, err)
	}
	if stored.HOHWinnerID != "c-a" || len(stored.EvictedIDs) != 1 || stored.EvictedIDs[0] != "c-c" {
		t.Fatalf("unexpected stored result: %+v", stored)
	}
	if stored.IsDoubleEviction || stored.IsTripleEviction {
		t.Fatalf("single cycle marked as multi eviction: %+v", stored)
	}
}

func TestSubmit_ResubmissionIsIdempotent(t *testing.T) {
	f := newWeekFixture(t, testPool("pool-1"))
	f.addContestant(t, "c-a", "Alice")
	f.addContestant(t, "c-b", "Bruno")
	f.addEntry(t, "e-1", "user-1", "c-a")

	sub := WeekSubmission{
		PoolID:     "pool-1",
		WeekNumber: 1,
		Cycles: []EvictionCycleForm{{
			HOHWinnerID: "c-a",
			Nominees:    []string{"c-b"},
			EvictedID:   "c-b",
		}},
	}

	first, err := f.svc.Submit(context.Background(), sub)
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	firstPoints := f.entryByID(t, "e-1").TotalPoints

	second, err := f.svc.Submit(context.Background(), sub)
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}

	if first.EventsRecorded != second.EventsRecorded {
		t.Fatalf("event count changed on resubmit: got=%d want=%d", second.EventsRecorded, first.EventsRecorded)
	}
	if got := f.entryByID(t, "e-1").TotalPoints; got != firstPoints {
		t.Fatalf("points changed on resubmit: got=%d want=%d", got, firstPoints)
	}

	weekEvents, err := f.events.ListByWeek(context.Background(), "pool-1", 1)
	if err != nil {
		t.Fatalf("list week events: %v", err)
	}
	if len(weekEvents) != first.EventsRecorded {
		t.Fatalf("stored events not replaced: got=%d want=%d", len(weekEvents), first.EventsRecorded)
	}
}

func TestSubmit_PriorEvictionsBlockSurvival(t *testing.T) {
	f := newWeekFixture(t, testPool("pool-1"))
	f.addContestant(t, "c-a", "Alice")
	f.addContestant(t, "c-b", "Bruno")
	f.addContestant(t, "c-c", "Carla")
	f.addEntry(t, "e-1", "user-1", "c-c")

	week1 := WeekSubmission{
		PoolID:     "pool-1",
		WeekNumber: 1,
		Cycles:     []EvictionCycleForm{{HOHWinnerID: "c-a", EvictedID: "c-c"}},
	}
	if _, err := f.svc.Submit(context.Background(), week1); err != nil {
		t.Fatalf("submit week 1: %v", err)
	}
	pointsAfterWeek1 := f.entryByID(t, "e-1").TotalPoints

	week2 := WeekSubmission{
		PoolID:     "pool-1",
		WeekNumber: 2,
		Cycles:     []EvictionCycleForm{{HOHWinnerID: "c-b", EvictedID: "no-eviction"}},
	}
	if _, err := f.svc.Submit(context.Background(), week2); err != nil {
		t.Fatalf("submit week 2: %v", err)
	}

	// Carla went home in week 1 and must not pick up week 2 survival.
	if got := f.entryByID(t, "e-1").TotalPoints; got != pointsAfterWeek1 {
		t.Fatalf("evicted contestant scored survival: got=%d want=%d", got, pointsAfterWeek1)
	}
}

func TestSubmit_AdvanceWeekNeverMovesBackwards(t *testing.T) {
	f := newWeekFixture(t, testPool("pool-1"))
	f.addContestant(t, "c-a", "Alice")
	f.addContestant(t, "c-b", "Bruno")

	for week := 1; week <= 2; week++ {
		sub := WeekSubmission{
			PoolID:     "pool-1",
			WeekNumber: week,
			Cycles:     []EvictionCycleForm{{HOHWinnerID: "c-a", EvictedID: "no-eviction"}},
		}
		if _, err := f.svc.Submit(context.Background(), sub); err != nil {
			t.Fatalf("submit week %d: %v", week, err)
		}
	}

	// Correcting week 1 after week 2 is complete must not rewind the pool.
	result, err := f.svc.Submit(context.Background(), WeekSubmission{
		PoolID:     "pool-1",
		WeekNumber: 1,
		Cycles:     []EvictionCycleForm{{HOHWinnerID: "c-b", EvictedID: "no-eviction"}},
	})
	if err != nil {
		t.Fatalf("resubmit week 1: %v", err)
	}
	if result.CurrentWeek != 3 {
		t.Fatalf("unexpected current week after correction: got=%d want=%d", result.CurrentWeek, 3)
	}
}

func TestSubmit_SentinelValuesMeanNotSet(t *testing.T) {
	f := newWeekFixture(t, testPool("pool-1"))
	f.addContestant(t, "c-a", "Alice")
	f.addContestant(t, "c-b", "Bruno")

	result, err := f.svc.Submit(context.Background(), WeekSubmission{
		PoolID:     "pool-1",
		WeekNumber: 1,
		Cycles: []EvictionCycleForm{{
			HOHWinnerID: "no-winner",
			POVWinnerID: "no-winner",
			Nominees:    []string{"no-eviction"},
			EvictedID:   "no-eviction",
		}},
	})
	if err != nil {
		t.Fatalf("submit week: %v", err)
	}

	// Only the two survival events remain.
	if result.EventsRecorded != 2 {
		t.Fatalf("sentinel fields produced events: got=%d want=%d", result.EventsRecorded, 2)
	}
	if len(result.EvictedIDs) != 0 {
		t.Fatalf("sentinel eviction recorded: %v", result.EvictedIDs)
	}

	stored, _, err := f.results.Get(context.Background(), "pool-1", 1)
	if err != nil {
		t.Fatalf("get weekly result: %v", err)
	}
	if stored.HOHWinnerID != "" || stored.POVWinnerID != "" || len(stored.Nominees) != 0 {
		t.Fatalf("sentinels leaked into stored result: %+v", stored)
	}
}

func TestSubmit_DoubleEvictionWeek(t *testing.T) {
	f := newWeekFixture(t, testPool("pool-1"))
	f.addContestant(t, "c-a", "Alice")
	f.addContestant(t, "c-b", "Bruno")
	f.addContestant(t, "c-c", "Carla")
	f.addContestant(t, "c-d", "Dario")

	result, err := f.svc.Submit(context.Background(), WeekSubmission{
		PoolID:     "pool-1",
		WeekNumber: 1,
		Cycles: []EvictionCycleForm{
			{HOHWinnerID: "c-a", EvictedID: "c-c"},
			{HOHWinnerID: "c-b", EvictedID: "c-d"},
		},
	})
	if err != nil {
		t.Fatalf("submit week: %v", err)
	}

	if len(result.EvictedIDs) != 2 || result.EvictedIDs[0] != "c-c" || result.EvictedIDs[1] != "c-d" {
		t.Fatalf("unexpected evicted order: %v", result.EvictedIDs)
	}

	stored, _, err := f.results.Get(context.Background(), "pool-1", 1)
	if err != nil {
		t.Fatalf("get weekly result: %v", err)
	}
	if !stored.IsDoubleEviction || stored.IsTripleEviction {
		t.Fatalf("unexpected eviction flags: %+v", stored)
	}
	// The summary row keeps the first cycle's competition fields.
	if stored.HOHWinnerID != "c-a" {
		t.Fatalf("unexpected result HOH: got=%q want=%q", stored.HOHWinnerID, "c-a")
	}
}

func TestSubmit_JuryPhaseAwardsJuryPoints(t *testing.T) {
	f := newWeekFixture(t, testPool("pool-1"))
	f.addContestant(t, "c-a", "Alice")
	f.addEntry(t, "e-1", "user-1", "c-a")

	_, err := f.svc.Submit(context.Background(), WeekSubmission{
		PoolID:           "pool-1",
		WeekNumber:       8,
		JuryPhaseStarted: true,
		Cycles:           []EvictionCycleForm{{EvictedID: "no-eviction"}},
	})
	if err != nil {
		t.Fatalf("submit week: %v", err)
	}

	// Survival 2 + jury 5.
	if got := f.entryByID(t, "e-1").TotalPoints; got != 7 {
		t.Fatalf("unexpected jury-week points: got=%d want=%d", got, 7)
	}
}

func TestSubmit_QuitEmitsSyntheticEviction(t *testing.T) {
	f := newWeekFixture(t, testPool("pool-1"))
	f.addContestant(t, "c-a", "Alice")
	f.addContestant(t, "c-b", "Bruno")
	f.addEntry(t, "e-1", "user-1", "c-b")

	result, err := f.svc.Submit(context.Background(), WeekSubmission{
		PoolID:     "pool-1",
		WeekNumber: 1,
		Cycles:     []EvictionCycleForm{{EvictedID: "no-eviction"}},
		SpecialEvents: []SpecialEventForm{{
			ContestantID: "c-b",
			EventType:    "self_evicted",
			Description:  "walked out after the veto ceremony",
		}},
	})
	if err != nil {
		t.Fatalf("submit week: %v", err)
	}

	if len(result.EvictedIDs) != 1 || result.EvictedIDs[0] != "c-b" {
		t.Fatalf("quit did not register as eviction: %v", result.EvictedIDs)
	}
	if result.SpecialEventsRecorded != 1 {
		t.Fatalf("unexpected special events: got=%d want=%d", result.SpecialEventsRecorded, 1)
	}

	c, _, err := f.contestants.GetByID(context.Background(), "c-b")
	if err != nil {
		t.Fatalf("get contestant: %v", err)
	}
	if c.IsActive {
		t.Fatal("quitter is still active")
	}

	// Penalty -5, no survival for the quitter.
	if got := f.entryByID(t, "e-1").TotalPoints; got != -5 {
		t.Fatalf("unexpected quitter points: got=%d want=%d", got, -5)
	}
}

func TestSubmit_FinaleRecordsWinnersAndPrizes(t *testing.T) {
	p := testPool("pool-1")
	p.FinalWeek = 3
	p.EntryFeeCents = 1000
	f := newWeekFixture(t, p)
	f.addContestant(t, "c-a", "Alice")
	f.addContestant(t, "c-b", "Bruno")
	f.addContestant(t, "c-c", "Carla")
	f.addEntry(t, "e-1", "user-1", "c-a")
	f.addEntry(t, "e-2", "user-2", "c-b")
	f.addEntry(t, "e-3", "user-3", "c-c")

	result, err := f.svc.Submit(context.Background(), WeekSubmission{
		PoolID:             "pool-1",
		WeekNumber:         3,
		IsSeasonFinale:     true,
		WinnerID:           "c-a",
		RunnerUpID:         "c-b",
		AmericasFavoriteID: "c-c",
		Cycles:             []EvictionCycleForm{{EvictedID: "no-eviction"}},
	})
	if err != nil {
		t.Fatalf("submit finale: %v", err)
	}

	// The finale is terminal: the current week must not advance.
	if result.CurrentWeek != p.CurrentWeek {
		t.Fatalf("finale advanced the week: got=%d want=%d", result.CurrentWeek, p.CurrentWeek)
	}

	winners := f.pools.Winners("pool-1")
	if len(winners) != 3 {
		t.Fatalf("unexpected winner count: got=%d want=%d", len(winners), 3)
	}

	wantPrizes := map[int]int64{1: 1800, 2: 900, 3: 300}
	wantEntries := map[int]string{1: "e-1", 2: "e-2", 3: "e-3"}
	for _, w := range winners {
		if w.PrizeCents != wantPrizes[w.Place] {
			t.Fatalf("place %d prize: got=%d want=%d", w.Place, w.PrizeCents, wantPrizes[w.Place])
		}
		if w.EntryID != wantEntries[w.Place] {
			t.Fatalf("place %d entry: got=%s want=%s", w.Place, w.EntryID, wantEntries[w.Place])
		}
	}

	stored, _, err := f.results.Get(context.Background(), "pool-1", 3)
	if err != nil {
		t.Fatalf("get weekly result: %v", err)
	}
	if !stored.IsSeasonFinale || stored.WinnerID != "c-a" || stored.RunnerUpID != "c-b" {
		t.Fatalf("unexpected finale result: %+v", stored)
	}
}

func TestSubmit_Validation(t *testing.T) {
	f := newWeekFixture(t, testPool("pool-1"))

	cases := []struct {
		name string
		sub  WeekSubmission
		want string
	}{
		{
			name: "week number zero",
			sub:  WeekSubmission{PoolID: "pool-1", WeekNumber: 0, Cycles: []EvictionCycleForm{{}}},
			want: "week number must be greater than zero",
		},
		{
			name: "past final week",
			sub:  WeekSubmission{PoolID: "pool-1", WeekNumber: 13, Cycles: []EvictionCycleForm{{}}},
			want: "past the final week",
		},
		{
			name: "no cycles",
			sub:  WeekSubmission{PoolID: "pool-1", WeekNumber: 1},
			want: "at least one eviction cycle is required",
		},
		{
			name: "too many cycles",
			sub:  WeekSubmission{PoolID: "pool-1", WeekNumber: 1, Cycles: make([]EvictionCycleForm, 4)},
			want: "at most 3 eviction cycles",
		},
		{
			name: "finale without winner",
			sub:  WeekSubmission{PoolID: "pool-1", WeekNumber: 12, IsSeasonFinale: true, Cycles: []EvictionCycleForm{{}}},
			want: "season finale requires a winner",
		},
		{
			name: "winner outside finale",
			sub:  WeekSubmission{PoolID: "pool-1", WeekNumber: 5, WinnerID: "c-a", Cycles: []EvictionCycleForm{{}}},
			want: "winner and runner-up can only be set on the season finale",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Submit(context.Background(), tc.sub)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected invalid input, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("unexpected message: got=%q want substring %q", err.Error(), tc.want)
			}
		})
	}
}

func TestSubmit_UnknownPool(t *testing.T) {
	f := newWeekFixture(t, testPool("pool-1"))

	_, err := f.svc.Submit(context.Background(), WeekSubmission{
		PoolID:     "pool-missing",
		WeekNumber: 1,
		Cycles:     []EvictionCycleForm{{}},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetResult_NotFound(t *testing.T) {
	f := newWeekFixture(t, testPool("pool-1"))

	_, err := f.svc.GetResult(context.Background(), "pool-1", 4)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSubmit_PersistedEventsCarryUniqueIDs(t *testing.T) {
	f := newWeekFixture(t, testPool("pool-1"))
	f.addContestant(t, "c-a", "Alice")
	f.addContestant(t, "c-b", "Bruno")
	f.addContestant(t, "c-c", "Carla")
	f.addEntry(t, "e-1", "user-1", "c-a")

	_, err := f.svc.Submit(context.Background(), WeekSubmission{
		PoolID:     "pool-1",
		WeekNumber: 1,
		Cycles: []EvictionCycleForm{{
			HOHWinnerID: "c-a",
			Nominees:    []string{"c-b", "c-c"},
			EvictedID:   "c-c",
		}},
		SpecialEvents: []SpecialEventForm{{
			ContestantID: "c-b",
			EventType:    "came_back_after_evicted",
		}},
	})
	if err != nil {
		t.Fatalf("submit week: %v", err)
	}

	seen := make(map[string]bool)
	weekly, err := f.events.ListByPool(context.Background(), "pool-1")
	if err != nil {
		t.Fatalf("list weekly events: %v", err)
	}
	if len(weekly) == 0 {
		t.Fatal("no weekly events persisted")
	}
	for _, ev := range weekly {
		if ev.ID == "" {
			t.Fatalf("weekly event without id: %+v", ev)
		}
		if seen[ev.ID] {
			t.Fatalf("duplicate weekly event id %s", ev.ID)
		}
		seen[ev.ID] = true
	}

	specials, err := f.events.ListSpecialByPool(context.Background(), "pool-1")
	if err != nil {
		t.Fatalf("list special events: %v", err)
	}
	if len(specials) == 0 {
		t.Fatal("no special events persisted")
	}
	for _, se := range specials {
		if se.ID == "" {
			t.Fatalf("special event without id: %+v", se)
		}
		if seen[se.ID] {
			t.Fatalf("duplicate special event id %s", se.ID)
		}
		seen[se.ID] = true
	}
}
