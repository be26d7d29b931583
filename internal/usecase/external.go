package usecase

import "context"

// CastProfile is a generated or scraped contestant profile, normalized to
// the fields the roster stores.
type CastProfile struct {
	Name       string `json:"name"`
	Age        int    `json:"age"`
	Hometown   string `json:"hometown"`
	Occupation string `json:"occupation"`
	Bio        string `json:"bio"`
	PhotoURL   string `json:"photo_url"`
}

// ProfileGenerator produces contestant profiles from a free-form season
// hint. Implementations may call out to a generation service.
type ProfileGenerator interface {
	GenerateProfiles(ctx context.Context, seasonHint string, count int) ([]CastProfile, error)
}

// WeekFieldCheck compares one submitted week field against the consensus of
// the consulted public sources.
type WeekFieldCheck struct {
	Field     string `json:"field"`
	Submitted string `json:"submitted"`
	Consensus string `json:"consensus"`
	// Confidence is the reliability-weighted share of sources agreeing with
	// the consensus value, in [0, 1].
	Confidence float64 `json:"confidence"`
	Agrees     bool    `json:"agrees"`
}

// WeekDataReport is the outcome of cross-checking a week submission against
// external sources. ManualEntryRecommended is set whenever the sources were
// unreachable or too contradictory to trust.
type WeekDataReport struct {
	Checks                 []WeekFieldCheck `json:"checks"`
	SourcesConsulted       int              `json:"sources_consulted"`
	ManualEntryRecommended bool             `json:"manual_entry_recommended"`
	Warning                string           `json:"warning,omitempty"`
}

// ShowDataVerifier cross-checks submitted week data against public episode
// coverage.
type ShowDataVerifier interface {
	VerifyWeek(ctx context.Context, season, week int, submitted map[string]string) (WeekDataReport, error)
}
