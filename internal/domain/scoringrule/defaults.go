package scoringrule

import (
	"crypto/md5"
	"encoding/hex"
)

// Defaults is the stock rule set a new pool starts with. It mirrors the
// seed_new_pool_defaults SQL function row for row, including the derived
// rule ids, so both storage drivers seed identical rules.
func Defaults(poolID string) []Rule {
	specs := []struct {
		category    string
		subcategory string
		points      int
		description string
	}{
		{CategoryWeeklyCompetition, "hoh_winner", 10, "Head of Household winner"},
		{CategoryWeeklyCompetition, "pov_winner", 5, "Power of Veto winner"},
		{CategoryWeeklyCompetition, "pov_used_on", 3, "Saved by the veto"},
		{CategoryWeeklyCompetition, "nominee", 2, "Nominated for eviction"},
		{CategoryWeeklyCompetition, "replacement_nominee", 2, "Replacement nominee"},
		{CategoryWeeklyCompetition, "evicted", 0, "Evicted from the house"},
		{CategoryWeeklyCompetition, "survival", 2, "Survived the week"},
		{CategoryWeeklyCompetition, "jury_member", 5, "Reached the jury phase"},
		{CategorySpecialEvents, "self_evicted", -5, "Quit the game"},
		{CategorySpecialEvents, "removed_production", -5, "Removed by production"},
		{CategorySpecialEvents, "came_back_after_evicted", 5, "Returned after eviction"},
		{CategorySpecialEvents, "block_survival_2_weeks", 5, "Survived the block twice"},
		{CategorySpecialEvents, "block_survival_4_weeks", 10, "Survived the block four times"},
		{CategorySpecialEvents, "floater_achievement", 5, "Four winless weeks in a row"},
		{CategorySeasonFinale, "season_winner", 25, "Won the season"},
		{CategorySeasonFinale, "season_runner_up", 15, "Season runner-up"},
		{CategorySeasonFinale, "americas_favorite", 10, "America's favorite houseguest"},
	}

	out := make([]Rule, 0, len(specs))
	for _, spec := range specs {
		out = append(out, Rule{
			ID:          defaultRuleID(poolID, spec.subcategory),
			PoolID:      poolID,
			Category:    spec.category,
			Subcategory: spec.subcategory,
			Points:      spec.points,
			IsActive:    true,
			Description: spec.description,
		})
	}
	return out
}

// defaultRuleID matches md5(pool_public_id || ':' || subcategory) in the SQL
// seed function.
func defaultRuleID(poolID, subcategory string) string {
	sum := md5.Sum([]byte(poolID + ":" + subcategory))
	return hex.EncodeToString(sum[:])
}
