package event

import (
	"fmt"
	"time"
)

// Kind identifies what happened. The wire and database representation is the
// canonical scoring-rule subcategory string; legacy short aliases coming from
// older admin clients are resolved once, at ParseKind, and never re-examined
// downstream.
type Kind string

const (
	KindHOHWinner          Kind = "hoh_winner"
	KindPOVWinner          Kind = "pov_winner"
	KindPOVUsedOn          Kind = "pov_used_on"
	KindNominee            Kind = "nominee"
	KindReplacementNominee Kind = "replacement_nominee"
	KindEvicted            Kind = "evicted"
	KindSurvival           Kind = "survival"
	KindJuryMember         Kind = "jury_member"

	KindSelfEvicted       Kind = "self_evicted"
	KindRemovedProduction Kind = "removed_production"
	KindCameBack          Kind = "came_back_after_evicted"
	KindBlockSurvival2    Kind = "block_survival_2_weeks"
	KindBlockSurvival4    Kind = "block_survival_4_weeks"
	KindFloater           Kind = "floater_achievement"

	KindSeasonWinner     Kind = "season_winner"
	KindSeasonRunnerUp   Kind = "season_runner_up"
	KindAmericasFavorite Kind = "americas_favorite"
)

var legacyAliases = map[string]Kind{
	"hoh":        KindHOHWinner,
	"pov":        KindPOVWinner,
	"veto":       KindPOVWinner,
	"nom":        KindNominee,
	"evict":      KindEvicted,
	"quit":       KindSelfEvicted,
	"removed":    KindRemovedProduction,
	"comeback":   KindCameBack,
	"afp":        KindAmericasFavorite,
	"fan_fav":    KindAmericasFavorite,
	"runner_up":  KindSeasonRunnerUp,
	"winner":     KindSeasonWinner,
}

var knownKinds = map[Kind]struct{}{
	KindHOHWinner: {}, KindPOVWinner: {}, KindPOVUsedOn: {},
	KindNominee: {}, KindReplacementNominee: {}, KindEvicted: {},
	KindSurvival: {}, KindJuryMember: {}, KindSelfEvicted: {},
	KindRemovedProduction: {}, KindCameBack: {}, KindBlockSurvival2: {},
	KindBlockSurvival4: {}, KindFloater: {}, KindSeasonWinner: {},
	KindSeasonRunnerUp: {}, KindAmericasFavorite: {},
}

// ParseKind resolves a raw event-type field, legacy aliases included, into a
// canonical Kind.
func ParseKind(raw string) (Kind, error) {
	if raw == "" {
		return "", fmt.Errorf("event kind is required")
	}
	if alias, ok := legacyAliases[raw]; ok {
		return alias, nil
	}
	kind := Kind(raw)
	if _, ok := knownKinds[kind]; !ok {
		return "", fmt.Errorf("unknown event kind %q", raw)
	}
	return kind, nil
}

// Subcategory is the scoring-rule lookup key for this kind.
func (k Kind) Subcategory() string {
	return string(k)
}

// IsQuit reports whether this kind removes the contestant from the game
// outside the normal eviction vote.
func (k Kind) IsQuit() bool {
	return k == KindSelfEvicted || k == KindRemovedProduction
}

// IsCompetitionWin reports whether this kind counts as winning a competition,
// which resets the floater-achievement streak.
func (k Kind) IsCompetitionWin() bool {
	return k == KindHOHWinner || k == KindPOVWinner
}

// WeeklyEvent is one scored occurrence in the normalized event log.
// PointsAwarded is snapshotted from the rule at creation time and never
// recomputed from the rule afterwards.
type WeeklyEvent struct {
	ID            string
	PoolID        string
	WeekNumber    int
	ContestantID  string
	Kind          Kind
	PointsAwarded int
	EvictionRound int
	CreatedAt     time.Time
}

// SpecialEvent is a free-form scored occurrence outside the fixed
// competition structure.
type SpecialEvent struct {
	ID            string
	PoolID        string
	ContestantID  string
	Kind          Kind
	Description   string
	PointsAwarded int
	WeekNumber    int
	CreatedAt     time.Time
}
