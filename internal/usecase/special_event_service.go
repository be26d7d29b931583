package usecase

import (
	"context"
	"fmt"

	"github.com/poolhaus/fantasy-pool/internal/domain/contestant"
	"github.com/poolhaus/fantasy-pool/internal/domain/event"
	idgen "github.com/poolhaus/fantasy-pool/internal/platform/id"
	"github.com/poolhaus/fantasy-pool/internal/platform/logging"
)

const (
	blockSurvivalFirstMilestone  = 2
	blockSurvivalSecondMilestone = 4
	floaterWinlessWeeks          = 4
)

// contestantActivation is a pending isActive flip produced while building a
// week's special events and applied after the event batch is persisted.
type contestantActivation struct {
	ContestantID string
	Active       bool
}

// SpecialEventService turns free-form event rows into special-event records,
// applies quit/comeback side effects and detects achievement milestones by
// scanning the full event history.
type SpecialEventService struct {
	contestants contestant.Repository
	events      event.Repository
	rules       *RuleLookup
	ids         idgen.Generator
	logger      *logging.Logger
}

func NewSpecialEventService(
	contestants contestant.Repository,
	events event.Repository,
	rules *RuleLookup,
	ids idgen.Generator,
	logger *logging.Logger,
) *SpecialEventService {
	if logger == nil {
		logger = logging.Default()
	}

	return &SpecialEventService{
		contestants: contestants,
		events:      events,
		rules:       rules,
		ids:         ids,
		logger:      logger,
	}
}

// Build translates the submitted rows. Quit kinds additionally emit a
// synthetic zero-point eviction event, which removes the contestant from all
// future survival calculations, and a deactivation side effect. Came-back
// rows emit a reactivation side effect; past survival-point loss is not
// undone.
func (s *SpecialEventService) Build(
	ctx context.Context,
	poolID string,
	week int,
	forms []SpecialEventForm,
) ([]event.SpecialEvent, []event.WeeklyEvent, []contestantActivation, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SpecialEventService.Build")
	defer span.End()

	specials := make([]event.SpecialEvent, 0, len(forms))
	synthetic := make([]event.WeeklyEvent, 0, 2)
	activations := make([]contestantActivation, 0, 2)

	for _, form := range forms {
		if form.ContestantID == "" {
			return nil, nil, nil, fmt.Errorf("%w: special event contestant is required", ErrInvalidInput)
		}
		kind, err := event.ParseKind(form.EventType)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}

		points, err := s.resolvePoints(ctx, poolID, kind, form.CustomPoints)
		if err != nil {
			return nil, nil, nil, err
		}

		specials = append(specials, event.SpecialEvent{
			PoolID:        poolID,
			ContestantID:  form.ContestantID,
			Kind:          kind,
			Description:   form.Description,
			PointsAwarded: points,
			WeekNumber:    week,
		})

		switch {
		case kind.IsQuit():
			synthetic = append(synthetic, event.WeeklyEvent{
				PoolID:        poolID,
				WeekNumber:    week,
				ContestantID:  form.ContestantID,
				Kind:          event.KindEvicted,
				PointsAwarded: 0,
			})
			activations = append(activations, contestantActivation{ContestantID: form.ContestantID, Active: false})
		case kind == event.KindCameBack:
			activations = append(activations, contestantActivation{ContestantID: form.ContestantID, Active: true})
		}
	}

	return specials, synthetic, activations, nil
}

func (s *SpecialEventService) ApplySideEffects(ctx context.Context, activations []contestantActivation) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SpecialEventService.ApplySideEffects")
	defer span.End()

	for _, activation := range activations {
		if err := s.contestants.SetActive(ctx, activation.ContestantID, activation.Active); err != nil {
			return fmt.Errorf("set contestant %s active=%t: %w", activation.ContestantID, activation.Active, err)
		}
	}
	return nil
}

// resolvePoints prefers the admin's custom override, falling back to the
// active rule for the kind's subcategory.
func (s *SpecialEventService) resolvePoints(ctx context.Context, poolID string, kind event.Kind, override *int) (int, error) {
	if override != nil {
		return *override, nil
	}
	return s.lookupPoints(ctx, poolID, kind)
}

// lookupPoints resolves the active rule for a kind, warning when a pool has
// none: the event then scores zero, which usually means the pool's defaults
// were never seeded.
func (s *SpecialEventService) lookupPoints(ctx context.Context, poolID string, kind event.Kind) (int, error) {
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

// ScanAchievements walks the full event history after a week's events are
// persisted and awards one-time milestones: surviving the block 2 and 4
// times, and the floater achievement after 4 consecutive winless weeks.
func (s *SpecialEventService) ScanAchievements(ctx context.Context, poolID string, throughWeek int) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SpecialEventService.ScanAchievements")
	defer span.End()

	roster, err := s.contestants.ListByPool(ctx, poolID)
	if err != nil {
		return fmt.Errorf("list contestants for achievements: %w", err)
	}
	history, err := s.events.ListByPool(ctx, poolID)
	if err != nil {
		return fmt.Errorf("list events for achievements: %w", err)
	}

	weeks := indexWeeks(history)
	for _, c := range roster {
		if err := s.scanBlockSurvival(ctx, poolID, c, weeks, throughWeek); err != nil {
			return err
		}
		if err := s.scanFloater(ctx, poolID, c, weeks, throughWeek); err != nil {
			return err
		}
	}

	return nil
}

// weekFacts is what one week's event log says about one contestant plus the
// week-level fact of whether anyone was evicted.
type weekFacts struct {
	nominated   map[string]struct{}
	savedByVeto map[string]struct{}
	wonComp     map[string]struct{}
	evicted     map[string]struct{}
	hadEviction bool
}

func indexWeeks(history []event.WeeklyEvent) map[int]*weekFacts {
	weeks := make(map[int]*weekFacts)
	factsFor := func(week int) *weekFacts {
		f, ok := weeks[week]
		if !ok {
			f = &weekFacts{
				nominated:   make(map[string]struct{}),
				savedByVeto: make(map[string]struct{}),
				wonComp:     make(map[string]struct{}),
				evicted:     make(map[string]struct{}),
			}
			weeks[week] = f
		}
		return f
	}

	for _, ev := range history {
		f := factsFor(ev.WeekNumber)
		switch {
		case ev.Kind == event.KindNominee || ev.Kind == event.KindReplacementNominee:
			f.nominated[ev.ContestantID] = struct{}{}
		case ev.Kind == event.KindPOVUsedOn:
			f.savedByVeto[ev.ContestantID] = struct{}{}
		case ev.Kind.IsCompetitionWin():
			f.wonComp[ev.ContestantID] = struct{}{}
		case ev.Kind == event.KindEvicted:
			f.evicted[ev.ContestantID] = struct{}{}
			f.hadEviction = true
		}
	}

	return weeks
}

// scanBlockSurvival counts weeks where the contestant sat on the block
// through an eviction without being saved, winning a competition or going
// home, and awards the 2-week and 4-week milestones exactly once each.
func (s *SpecialEventService) scanBlockSurvival(
	ctx context.Context,
	poolID string,
	c contestant.Contestant,
	weeks map[int]*weekFacts,
	throughWeek int,
) error {
	instances := 0
	for week := 1; week <= throughWeek; week++ {
		f, ok := weeks[week]
		if !ok || !f.hadEviction {
			continue
		}
		if _, nominated := f.nominated[c.ID]; !nominated {
			continue
		}
		if _, saved := f.savedByVeto[c.ID]; saved {
			continue
		}
		if _, won := f.wonComp[c.ID]; won {
			continue
		}
		if _, gone := f.evicted[c.ID]; gone {
			continue
		}
		instances++
	}

	if instances >= blockSurvivalFirstMilestone {
		if err := s.awardOnce(ctx, poolID, c, event.KindBlockSurvival2, throughWeek,
			fmt.Sprintf("%s survived the block %d times", c.Name, blockSurvivalFirstMilestone)); err != nil {
			return err
		}
	}
	if instances >= blockSurvivalSecondMilestone {
		if err := s.awardOnce(ctx, poolID, c, event.KindBlockSurvival4, throughWeek,
			fmt.Sprintf("%s survived the block %d times", c.Name, blockSurvivalSecondMilestone)); err != nil {
			return err
		}
	}

	return nil
}

// scanFloater recomputes the winless streak from the event log, persists the
// counters on the contestant and awards the achievement once the streak
// reaches four while the contestant is still in the game.
func (s *SpecialEventService) scanFloater(
	ctx context.Context,
	poolID string,
	c contestant.Contestant,
	weeks map[int]*weekFacts,
	throughWeek int,
) error {
	streak := 0
	lastWinWeek := 0
	inGame := true
	for week := 1; week <= throughWeek; week++ {
		f, ok := weeks[week]
		if !ok {
			continue
		}
		if _, won := f.wonComp[c.ID]; won {
			streak = 0
			lastWinWeek = week
		} else {
			streak++
		}
		if _, gone := f.evicted[c.ID]; gone {
			inGame = false
			break
		}
	}

	if streak != c.ConsecutiveWeeksNoWin || lastWinWeek != c.LastWinWeek {
		if err := s.contestants.UpdateWinStreak(ctx, c.ID, streak, lastWinWeek); err != nil {
			return fmt.Errorf("update win streak contestant=%s: %w", c.ID, err)
		}
	}

	if inGame && c.IsActive && streak >= floaterWinlessWeeks {
		if err := s.awardOnce(ctx, poolID, c, event.KindFloater, throughWeek,
			fmt.Sprintf("%s reached %d straight weeks without a competition win", c.Name, floaterWinlessWeeks)); err != nil {
			return err
		}
	}

	return nil
}

func (s *SpecialEventService) awardOnce(
	ctx context.Context,
	poolID string,
	c contestant.Contestant,
	kind event.Kind,
	week int,
	description string,
) error {
	exists, err := s.events.HasSpecial(ctx, poolID, c.ID, kind)
	if err != nil {
		return fmt.Errorf("check existing %s milestone: %w", kind.Subcategory(), err)
	}
	if exists {
		return nil
	}

	points, err := s.lookupPoints(ctx, poolID, kind)
	if err != nil {
		return err
	}

	id, err := s.ids.NewID()
	if err != nil {
		return fmt.Errorf("generate %s milestone id: %w", kind.Subcategory(), err)
	}

	if err := s.events.InsertSpecial(ctx, event.SpecialEvent{
		ID:            id,
		PoolID:        poolID,
		ContestantID:  c.ID,
		Kind:          kind,
		Description:   description,
		PointsAwarded: points,
		WeekNumber:    week,
	}); err != nil {
		return fmt.Errorf("insert %s milestone: %w", kind.Subcategory(), err)
	}

	s.logger.InfoContext(ctx, "achievement awarded",
		"pool_id", poolID,
		"contestant_id", c.ID,
		"kind", kind.Subcategory(),
	)
	return nil
}
