package scoringrule

import "fmt"

const (
	CategoryWeeklyCompetition = "weekly_competition"
	CategorySpecialEvents     = "special_events"

	// CategorySeasonFinale rules are seeded, never admin-created.
	CategorySeasonFinale = "season_finale"
)

// Rule is one scorable occurrence definition. Subcategory is the lookup key
// and must be unique among a pool's active rules.
type Rule struct {
	ID          string
	PoolID      string
	Category    string
	Subcategory string
	Points      int
	IsActive    bool
	Description string
}

func (r Rule) Validate() error {
	if r.PoolID == "" {
		return fmt.Errorf("rule pool id is required")
	}
	if r.Category == "" {
		return fmt.Errorf("rule category is required")
	}
	if r.Subcategory == "" {
		return fmt.Errorf("rule subcategory is required")
	}

	return nil
}
