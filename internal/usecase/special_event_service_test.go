package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poolhaus/fantasy-pool/internal/domain/contestant"
	"github.com/poolhaus/fantasy-pool/internal/domain/event"
	"github.com/poolhaus/fantasy-pool/internal/infrastructure/repository/memory"
	"github.com/poolhaus/fantasy-pool/internal/platform/logging"
)

type specialFixture struct {
	contestants *memory.ContestantRepository
	events      *memory.EventRepository
	svc         *SpecialEventService
}

func newSpecialFixture(t *testing.T) *specialFixture {
	t.Helper()

	contestants := memory.NewContestantRepository()
	events := memory.NewEventRepository()
	rules := NewRuleLookup(memory.NewScoringRuleRepository(defaultRules("pool-1")), time.Minute)

	return &specialFixture{
		contestants: contestants,
		events:      events,
		svc:         NewSpecialEventService(contestants, events, rules, &seqIDGen{}, logging.NewNop()),
	}
}

func (f *specialFixture) addContestant(t *testing.T, id, name string, active bool) {
	t.Helper()
	err := f.contestants.Create(context.Background(), contestant.Contestant{
		ID:       id,
		PoolID:   "pool-1",
		Name:     name,
		IsActive: active,
	})
	if err != nil {
		t.Fatalf("add contestant %s: %v", id, err)
	}
}

func (f *specialFixture) storeHistory(t *testing.T, week int, events ...event.WeeklyEvent) {
	t.Helper()
	for i := range events {
		events[i].PoolID = "pool-1"
		events[i].WeekNumber = week
	}
	if err := f.events.ReplaceWeek(context.Background(), "pool-1", week, events); err != nil {
		t.Fatalf("store week %d history: %v", week, err)
	}
}

func TestBuild_QuitEmitsSyntheticEvictionAndDeactivation(t *testing.T) {
	f := newSpecialFixture(t)

	for _, eventType := range []string{"self_evicted", "removed_production"} {
		t.Run(eventType, func(t *testing.T) {
			specials, synthetic, activations, err := f.svc.Build(context.Background(), "pool-1", 4, []SpecialEventForm{{
				ContestantID: "c-a",
				EventType:    eventType,
			}})
			if err != nil {
				t.Fatalf("build: %v", err)
			}

			if len(specials) != 1 || specials[0].PointsAwarded != -5 {
				t.Fatalf("unexpected specials: %+v", specials)
			}
			if len(synthetic) != 1 {
				t.Fatalf("expected one synthetic eviction, got %d", len(synthetic))
			}
			if synthetic[0].Kind != event.KindEvicted || synthetic[0].PointsAwarded != 0 {
				t.Fatalf("unexpected synthetic event: %+v", synthetic[0])
			}
			if len(activations) != 1 || activations[0].Active {
				t.Fatalf("unexpected activations: %+v", activations)
			}
		})
	}
}

func TestBuild_CameBackReactivates(t *testing.T) {
	f := newSpecialFixture(t)

	specials, synthetic, activations, err := f.svc.Build(context.Background(), "pool-1", 6, []SpecialEventForm{{
		ContestantID: "c-a",
		EventType:    "came_back_after_evicted",
	}})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if len(specials) != 1 || specials[0].PointsAwarded != 5 {
		t.Fatalf("unexpected specials: %+v", specials)
	}
	if len(synthetic) != 0 {
		t.Fatalf("comeback produced synthetic evictions: %+v", synthetic)
	}
	if len(activations) != 1 || !activations[0].Active {
		t.Fatalf("unexpected activations: %+v", activations)
	}
}

func TestBuild_CustomPointsOverrideRule(t *testing.T) {
	f := newSpecialFixture(t)

	override := 42
	specials, _, _, err := f.svc.Build(context.Background(), "pool-1", 2, []SpecialEventForm{{
		ContestantID: "c-a",
		EventType:    "americas_favorite",
		CustomPoints: &override,
	}})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(specials) != 1 || specials[0].PointsAwarded != 42 {
		t.Fatalf("override ignored: %+v", specials)
	}
}

func TestBuild_LegacyAliasesResolve(t *testing.T) {
	f := newSpecialFixture(t)

	specials, synthetic, _, err := f.svc.Build(context.Background(), "pool-1", 3, []SpecialEventForm{{
		ContestantID: "c-a",
		EventType:    "quit",
	}})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if specials[0].Kind != event.KindSelfEvicted {
		t.Fatalf("alias not resolved: got=%s want=%s", specials[0].Kind, event.KindSelfEvicted)
	}
	if len(synthetic) != 1 {
		t.Fatalf("quit alias lost its eviction side effect: %+v", synthetic)
	}
}

func TestBuild_RejectsBadInput(t *testing.T) {
	f := newSpecialFixture(t)

	_, _, _, err := f.svc.Build(context.Background(), "pool-1", 1, []SpecialEventForm{{
		ContestantID: "",
		EventType:    "self_evicted",
	}})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for missing contestant, got %v", err)
	}

	_, _, _, err = f.svc.Build(context.Background(), "pool-1", 1, []SpecialEventForm{{
		ContestantID: "c-a",
		EventType:    "won_the_lottery",
	}})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for unknown kind, got %v", err)
	}
}

func TestScanAchievements_BlockSurvivalMilestones(t *testing.T) {
	f := newSpecialFixture(t)
	f.addContestant(t, "c-a", "Alice", true)
	f.addContestant(t, "c-b", "Bruno", true)

	// Alice sits on the block weeks 1 and 2; Bruno goes home week 2.
	f.storeHistory(t, 1,
		event.WeeklyEvent{ContestantID: "c-a", Kind: event.KindNominee},
		event.WeeklyEvent{ContestantID: "c-z", Kind: event.KindEvicted},
	)
	f.storeHistory(t, 2,
		event.WeeklyEvent{ContestantID: "c-a", Kind: event.KindNominee},
		event.WeeklyEvent{ContestantID: "c-b", Kind: event.KindNominee},
		event.WeeklyEvent{ContestantID: "c-b", Kind: event.KindEvicted},
	)

	if err := f.svc.ScanAchievements(context.Background(), "pool-1", 2); err != nil {
		t.Fatalf("scan: %v", err)
	}

	has, err := f.events.HasSpecial(context.Background(), "pool-1", "c-a", event.KindBlockSurvival2)
	if err != nil {
		t.Fatalf("check milestone: %v", err)
	}
	if !has {
		t.Fatal("2-week block survival not awarded")
	}

	// Evicted nominees never earn the milestone.
	has, err = f.events.HasSpecial(context.Background(), "pool-1", "c-b", event.KindBlockSurvival2)
	if err != nil {
		t.Fatalf("check milestone: %v", err)
	}
	if has {
		t.Fatal("evicted nominee earned block survival")
	}

	// Rescanning must not duplicate the award.
	if err := f.svc.ScanAchievements(context.Background(), "pool-1", 2); err != nil {
		t.Fatalf("rescan: %v", err)
	}
	specials, err := f.events.ListSpecialByPool(context.Background(), "pool-1")
	if err != nil {
		t.Fatalf("list specials: %v", err)
	}
	count := 0
	for _, se := range specials {
		if se.ContestantID == "c-a" && se.Kind == event.KindBlockSurvival2 {
			count++
			if se.ID == "" {
				t.Fatalf("milestone stored without id: %+v", se)
			}
		}
	}
	if count != 1 {
		t.Fatalf("milestone duplicated: got=%d want=%d", count, 1)
	}
}

func TestScanAchievements_SavedOrWinningNomineesDoNotCount(t *testing.T) {
	f := newSpecialFixture(t)
	f.addContestant(t, "c-a", "Alice", true)

	// Week 1: nominated but pulled off with the veto. Week 2: nominated but
	// won POV. Week 3: no eviction happened. None of these count.
	f.storeHistory(t, 1,
		event.WeeklyEvent{ContestantID: "c-a", Kind: event.KindNominee},
		event.WeeklyEvent{ContestantID: "c-a", Kind: event.KindPOVUsedOn},
		event.WeeklyEvent{ContestantID: "c-z", Kind: event.KindEvicted},
	)
	f.storeHistory(t, 2,
		event.WeeklyEvent{ContestantID: "c-a", Kind: event.KindNominee},
		event.WeeklyEvent{ContestantID: "c-a", Kind: event.KindPOVWinner},
		event.WeeklyEvent{ContestantID: "c-y", Kind: event.KindEvicted},
	)
	f.storeHistory(t, 3,
		event.WeeklyEvent{ContestantID: "c-a", Kind: event.KindNominee},
	)

	if err := f.svc.ScanAchievements(context.Background(), "pool-1", 3); err != nil {
		t.Fatalf("scan: %v", err)
	}

	has, err := f.events.HasSpecial(context.Background(), "pool-1", "c-a", event.KindBlockSurvival2)
	if err != nil {
		t.Fatalf("check milestone: %v", err)
	}
	if has {
		t.Fatal("saved or winning nominee earned block survival")
	}
}

func TestScanAchievements_FloaterStreak(t *testing.T) {
	f := newSpecialFixture(t)
	f.addContestant(t, "c-a", "Alice", true)

	// Four straight weeks with events and no competition win.
	for week := 1; week <= 4; week++ {
		f.storeHistory(t, week,
			event.WeeklyEvent{ContestantID: "c-a", Kind: event.KindSurvival},
			event.WeeklyEvent{ContestantID: "c-z", Kind: event.KindHOHWinner},
		)
	}

	if err := f.svc.ScanAchievements(context.Background(), "pool-1", 4); err != nil {
		t.Fatalf("scan: %v", err)
	}

	has, err := f.events.HasSpecial(context.Background(), "pool-1", "c-a", event.KindFloater)
	if err != nil {
		t.Fatalf("check floater: %v", err)
	}
	if !has {
		t.Fatal("floater achievement not awarded after 4 winless weeks")
	}

	c, _, err := f.contestants.GetByID(context.Background(), "c-a")
	if err != nil {
		t.Fatalf("get contestant: %v", err)
	}
	if c.ConsecutiveWeeksNoWin != 4 {
		t.Fatalf("streak not persisted: got=%d want=%d", c.ConsecutiveWeeksNoWin, 4)
	}
}

func TestScanAchievements_CompetitionWinResetsStreak(t *testing.T) {
	f := newSpecialFixture(t)
	f.addContestant(t, "c-a", "Alice", true)

	for week := 1; week <= 3; week++ {
		f.storeHistory(t, week,
			event.WeeklyEvent{ContestantID: "c-a", Kind: event.KindSurvival},
		)
	}
	f.storeHistory(t, 4,
		event.WeeklyEvent{ContestantID: "c-a", Kind: event.KindHOHWinner},
	)

	if err := f.svc.ScanAchievements(context.Background(), "pool-1", 4); err != nil {
		t.Fatalf("scan: %v", err)
	}

	has, err := f.events.HasSpecial(context.Background(), "pool-1", "c-a", event.KindFloater)
	if err != nil {
		t.Fatalf("check floater: %v", err)
	}
	if has {
		t.Fatal("floater awarded despite a week 4 win")
	}

	c, _, err := f.contestants.GetByID(context.Background(), "c-a")
	if err != nil {
		t.Fatalf("get contestant: %v", err)
	}
	if c.ConsecutiveWeeksNoWin != 0 || c.LastWinWeek != 4 {
		t.Fatalf("streak counters wrong: streak=%d lastWin=%d", c.ConsecutiveWeeksNoWin, c.LastWinWeek)
	}
}

func TestScanAchievements_EvictedContestantsNeverFloat(t *testing.T) {
	f := newSpecialFixture(t)
	f.addContestant(t, "c-a", "Alice", false)

	for week := 1; week <= 3; week++ {
		f.storeHistory(t, week,
			event.WeeklyEvent{ContestantID: "c-a", Kind: event.KindSurvival},
		)
	}
	f.storeHistory(t, 4,
		event.WeeklyEvent{ContestantID: "c-a", Kind: event.KindEvicted},
	)

	if err := f.svc.ScanAchievements(context.Background(), "pool-1", 4); err != nil {
		t.Fatalf("scan: %v", err)
	}

	has, err := f.events.HasSpecial(context.Background(), "pool-1", "c-a", event.KindFloater)
	if err != nil {
		t.Fatalf("check floater: %v", err)
	}
	if has {
		t.Fatal("floater awarded to an evicted contestant")
	}
}
