package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/danqs/tax-engine/internal/config"
	"github.com/danqs/tax-engine/internal/domain"
	"github.com/danqs/tax-engine/internal/repository"
	customError "github.com/danqs/tax-engine/pkg/errors"
)

// RuleService manages tax rule definitions and serves active-rule
// lookups to the calculator, with a Redis cache in front of the store.
type RuleService struct {
	ruleRepo repository.RuleRepository
	redis    *redis.Client
	config   *config.Config
}

func NewRuleService(ruleRepo repository.RuleRepository, redis *redis.Client, config *config.Config) *RuleService {
	return &RuleService{
		ruleRepo: ruleRepo,
		redis:    redis,
		config:   config,
	}
}

// Create validates and stores a new rule. At most one active rule may
// exist per (category, year).
func (s *RuleService) Create(ctx context.Context, request *domain.CreateRuleRequest) (*domain.TaxRule, error) {
	category := strings.ToLower(strings.TrimSpace(request.Category))

	existing, err := s.ruleRepo.GetActive(ctx, category, request.Year)
	if err == nil && existing != nil {
		return nil, customError.WrapRuleAlreadyExists(category, request.Year)
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDatabaseError(err)
	}

	rule := &domain.TaxRule{
		ID:        uuid.New(),
		Category:  category,
		Type:      request.Type,
		Year:      request.Year,
		Active:    true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := applyRuleFields(rule, request.FixedAmount, request.PercentageRate, request.Brackets); err != nil {
		return nil, err
	}

	if err := s.ruleRepo.Create(ctx, rule); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.invalidateCache(ctx, rule.Category, rule.Year)

	return rule, nil
}

// Update mutates a rule. Changing the rule type resets the fields of the
// other variants before the new ones are applied.
func (s *RuleService) Update(ctx context.Context, id uuid.UUID, request *domain.UpdateRuleRequest) (*domain.TaxRule, error) {
	rule, err := s.ruleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapRuleNotFound(id.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	if request.Type != nil && *request.Type != rule.Type {
		rule.Type = *request.Type
		rule.FixedAmount = decimal.NullDecimal{}
		rule.PercentageRate = decimal.NullDecimal{}
		rule.Brackets = nil
	}

	fixed := request.FixedAmount
	if fixed == nil && rule.FixedAmount.Valid {
		fixed = &rule.FixedAmount.Decimal
	}
	rate := request.PercentageRate
	if rate == nil && rule.PercentageRate.Valid {
		rate = &rule.PercentageRate.Decimal
	}
	brackets := request.Brackets
	if brackets == nil {
		brackets = rule.Brackets
	}

	if err := applyRuleFields(rule, fixed, rate, brackets); err != nil {
		return nil, err
	}

	if request.Active != nil {
		rule.Active = *request.Active
	}
	rule.UpdatedAt = time.Now()

	if err := s.ruleRepo.Update(ctx, rule); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.invalidateCache(ctx, rule.Category, rule.Year)

	return rule, nil
}

// Deactivate soft-deletes a rule so it stops matching calculations.
func (s *RuleService) Deactivate(ctx context.Context, id uuid.UUID) error {
	rule, err := s.ruleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return customError.WrapRuleNotFound(id.String())
		}
		return customError.WrapDatabaseError(err)
	}

	if err := s.ruleRepo.Deactivate(ctx, id); err != nil {
		return customError.WrapDatabaseError(err)
	}

	s.invalidateCache(ctx, rule.Category, rule.Year)

	return nil
}

// GetByID returns a single rule.
func (s *RuleService) GetByID(ctx context.Context, id uuid.UUID) (*domain.TaxRule, error) {
	rule, err := s.ruleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapRuleNotFound(id.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return rule, nil
}

// List returns all rules.
func (s *RuleService) List(ctx context.Context) ([]*domain.TaxRule, error) {
	rules, err := s.ruleRepo.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return rules, nil
}

// ActiveRule returns the active rule for a category and year. Lookups
// are cached; writes through Create/Update/Deactivate invalidate.
func (s *RuleService) ActiveRule(ctx context.Context, category string, year int) (*domain.TaxRule, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	cacheKey := ruleCacheKey(category, year)

	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var rule domain.TaxRule
			if err := json.Unmarshal([]byte(cached), &rule); err == nil {
				return &rule, nil
			}
		}
	}

	rule, err := s.ruleRepo.GetActive(ctx, category, year)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapNoActiveRule(category, year)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	if s.redis != nil {
		if payload, err := json.Marshal(rule); err == nil {
			if err := s.redis.Set(ctx, cacheKey, payload, s.config.Business.RuleCacheTTL).Err(); err != nil {
				log.Printf("rule cache set failed: %v", err)
			}
		}
	}

	return rule, nil
}

func (s *RuleService) invalidateCache(ctx context.Context, category string, year int) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, ruleCacheKey(category, year)).Err(); err != nil {
		log.Printf("rule cache invalidation failed: %v", err)
	}
}

func ruleCacheKey(category string, year int) string {
	return fmt.Sprintf("tax_rule:%s:%d", category, year)
}

// applyRuleFields validates and sets the variant fields for the rule's
// type, clearing the fields of the other variants.
func applyRuleFields(rule *domain.TaxRule, fixed, rate *decimal.Decimal, brackets []domain.Bracket) error {
	switch rule.Type {
	case domain.RuleTypeFixed:
		if fixed == nil || fixed.IsNegative() {
			return customError.WrapInvalidRule("fixed rule requires a fixed amount >= 0")
		}
		rule.FixedAmount = decimal.NewNullDecimal(*fixed)
		rule.PercentageRate = decimal.NullDecimal{}
		rule.Brackets = nil

	case domain.RuleTypePercentage:
		if rate == nil || rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
			return customError.WrapInvalidRule("percentage rule requires a rate between 0 and 100")
		}
		rule.PercentageRate = decimal.NewNullDecimal(*rate)
		rule.FixedAmount = decimal.NullDecimal{}
		rule.Brackets = nil

	case domain.RuleTypeProgressive:
		if err := ValidateBrackets(brackets); err != nil {
			return err
		}
		rule.Brackets = sortedBrackets(brackets)
		rule.FixedAmount = decimal.NullDecimal{}
		rule.PercentageRate = decimal.NullDecimal{}

	default:
		return customError.WrapInvalidRule("unknown rule type " + rule.Type)
	}

	return nil
}
