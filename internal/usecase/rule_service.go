package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/poolhaus/fantasy-pool/internal/domain/scoringrule"
	idgen "github.com/poolhaus/fantasy-pool/internal/platform/id"
	"github.com/poolhaus/fantasy-pool/internal/platform/logging"
)

type CreateRuleInput struct {
	PoolID      string
	Category    string
	Subcategory string
	Points      int
	Description string
}

type UpdateRuleInput struct {
	RuleID      string
	PoolID      string
	Points      *int
	IsActive    *bool
	Description *string
}

// RuleService edits a pool's scoring rules. Every write invalidates the
// rule lookup cache so the next submission scores with fresh values.
type RuleService struct {
	rules  scoringrule.Repository
	lookup *RuleLookup
	ids    idgen.Generator
	logger *logging.Logger
}

func NewRuleService(rules scoringrule.Repository, lookup *RuleLookup, ids idgen.Generator, logger *logging.Logger) *RuleService {
	if logger == nil {
		logger = logging.Default()
	}

	return &RuleService{
		rules:  rules,
		lookup: lookup,
		ids:    ids,
		logger: logger,
	}
}

func (s *RuleService) List(ctx context.Context, poolID string) ([]scoringrule.Rule, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RuleService.List")
	defer span.End()

	rules, err := s.rules.ListByPool(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("list scoring rules: %w", err)
	}
	return rules, nil
}

func (s *RuleService) Create(ctx context.Context, input CreateRuleInput) (scoringrule.Rule, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RuleService.Create")
	defer span.End()

	if input.Category != scoringrule.CategoryWeeklyCompetition && input.Category != scoringrule.CategorySpecialEvents {
		return scoringrule.Rule{}, fmt.Errorf("%w: unknown rule category %q", ErrInvalidInput, input.Category)
	}

	active, err := s.rules.ListActiveByPool(ctx, input.PoolID)
	if err != nil {
		return scoringrule.Rule{}, fmt.Errorf("list active rules: %w", err)
	}
	subcategory := strings.TrimSpace(input.Subcategory)
	for _, r := range active {
		if r.Subcategory == subcategory {
			return scoringrule.Rule{}, fmt.Errorf("%w: an active rule for %q already exists", ErrInvalidInput, subcategory)
		}
	}

	ruleID, err := s.ids.NewID()
	if err != nil {
		return scoringrule.Rule{}, fmt.Errorf("generate rule id: %w", err)
	}

	rule := scoringrule.Rule{
		ID:          ruleID,
		PoolID:      input.PoolID,
		Category:    input.Category,
		Subcategory: subcategory,
		Points:      input.Points,
		IsActive:    true,
		Description: strings.TrimSpace(input.Description),
	}
	if err := rule.Validate(); err != nil {
		return scoringrule.Rule{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.rules.Create(ctx, rule); err != nil {
		return scoringrule.Rule{}, fmt.Errorf("create scoring rule: %w", err)
	}

	s.lookup.Invalidate(ctx, input.PoolID)
	return rule, nil
}

func (s *RuleService) Update(ctx context.Context, input UpdateRuleInput) (scoringrule.Rule, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RuleService.Update")
	defer span.End()

	rules, err := s.rules.ListByPool(ctx, input.PoolID)
	if err != nil {
		return scoringrule.Rule{}, fmt.Errorf("list scoring rules: %w", err)
	}

	var rule scoringrule.Rule
	found := false
	for _, r := range rules {
		if r.ID == input.RuleID {
			rule = r
			found = true
			break
		}
	}
	if !found {
		return scoringrule.Rule{}, fmt.Errorf("%w: scoring rule %s", ErrNotFound, input.RuleID)
	}

	if input.Points != nil {
		rule.Points = *input.Points
	}
	if input.IsActive != nil {
		rule.IsActive = *input.IsActive
	}
	if input.Description != nil {
		rule.Description = strings.TrimSpace(*input.Description)
	}

	if err := s.rules.Update(ctx, rule); err != nil {
		return scoringrule.Rule{}, fmt.Errorf("update scoring rule: %w", err)
	}

	s.lookup.Invalidate(ctx, input.PoolID)
	s.logger.InfoContext(ctx, "scoring rule updated",
		"pool_id", input.PoolID,
		"rule_id", rule.ID,
		"subcategory", rule.Subcategory,
		"points", rule.Points,
		"active", rule.IsActive,
	)
	return rule, nil
}
