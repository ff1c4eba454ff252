package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/danqs/tax-engine/internal/config"
	"github.com/danqs/tax-engine/internal/domain"
	"github.com/danqs/tax-engine/internal/repository/mocks"
	customError "github.com/danqs/tax-engine/pkg/errors"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Business.PenaltyRate = "5"
	cfg.Business.PenaltyCap = "0.25"
	cfg.Business.ReminderWindowDays = 3
	cfg.Business.RuleCacheTTL = time.Minute
	return cfg
}

func TestRuleService_Create_Success(t *testing.T) {
	ruleRepo := &mocks.MockRuleRepository{}
	service := NewRuleService(ruleRepo, nil, testConfig())

	ruleRepo.On("GetActive", mock.Anything, "vat", 2025).Return(nil, sql.ErrNoRows)
	ruleRepo.On("Create", mock.Anything, mock.MatchedBy(func(rule *domain.TaxRule) bool {
		return rule.Category == "vat" &&
			rule.Type == domain.RuleTypePercentage &&
			rule.Active &&
			rule.PercentageRate.Valid
	})).Return(nil)

	rate := decimal.NewFromInt(18)
	rule, err := service.Create(context.Background(), &domain.CreateRuleRequest{
		Category:       "VAT",
		Type:           domain.RuleTypePercentage,
		Year:           2025,
		PercentageRate: &rate,
	})

	require.NoError(t, err)
	assert.Equal(t, "vat", rule.Category)
	ruleRepo.AssertExpectations(t)
}

func TestRuleService_Create_DuplicateConflict(t *testing.T) {
	ruleRepo := &mocks.MockRuleRepository{}
	service := NewRuleService(ruleRepo, nil, testConfig())

	existing := &domain.TaxRule{ID: uuid.New(), Category: "vat", Year: 2025, Active: true}
	ruleRepo.On("GetActive", mock.Anything, "vat", 2025).Return(existing, nil)

	rate := decimal.NewFromInt(18)
	_, err := service.Create(context.Background(), &domain.CreateRuleRequest{
		Category:       "vat",
		Type:           domain.RuleTypePercentage,
		Year:           2025,
		PercentageRate: &rate,
	})

	assert.ErrorIs(t, err, customError.ErrRuleAlreadyExists)
	ruleRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRuleService_Create_InvalidVariants(t *testing.T) {
	negative := decimal.NewFromInt(-1)
	over := decimal.NewFromInt(101)

	tests := []struct {
		name    string
		request *domain.CreateRuleRequest
	}{
		{"fixed without amount", &domain.CreateRuleRequest{
			Category: "vat", Type: domain.RuleTypeFixed, Year: 2025,
		}},
		{"fixed negative amount", &domain.CreateRuleRequest{
			Category: "vat", Type: domain.RuleTypeFixed, Year: 2025, FixedAmount: &negative,
		}},
		{"percentage rate above 100", &domain.CreateRuleRequest{
			Category: "vat", Type: domain.RuleTypePercentage, Year: 2025, PercentageRate: &over,
		}},
		{"progressive without brackets", &domain.CreateRuleRequest{
			Category: "vat", Type: domain.RuleTypeProgressive, Year: 2025,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ruleRepo := &mocks.MockRuleRepository{}
			service := NewRuleService(ruleRepo, nil, testConfig())
			ruleRepo.On("GetActive", mock.Anything, "vat", 2025).Return(nil, sql.ErrNoRows)

			_, err := service.Create(context.Background(), tt.request)
			assert.ErrorIs(t, err, customError.ErrInvalidRule)
		})
	}
}

func TestRuleService_Create_SortsBrackets(t *testing.T) {
	ruleRepo := &mocks.MockRuleRepository{}
	service := NewRuleService(ruleRepo, nil, testConfig())

	ruleRepo.On("GetActive", mock.Anything, "business", 2025).Return(nil, sql.ErrNoRows)
	ruleRepo.On("Create", mock.Anything, mock.MatchedBy(func(rule *domain.TaxRule) bool {
		return len(rule.Brackets) == 2 && rule.Brackets[0].MinAmount.IsZero()
	})).Return(nil)

	_, err := service.Create(context.Background(), &domain.CreateRuleRequest{
		Category: "business",
		Type:     domain.RuleTypeProgressive,
		Year:     2025,
		Brackets: []domain.Bracket{
			{MinAmount: decimal.NewFromInt(1000), MaxAmount: decimal.NewFromInt(5000), Rate: decimal.NewFromInt(20)},
			{MinAmount: decimal.Zero, MaxAmount: decimal.NewFromInt(1000), Rate: decimal.NewFromInt(10)},
		},
	})

	require.NoError(t, err)
	ruleRepo.AssertExpectations(t)
}

func TestRuleService_Update_TypeChangeResetsVariants(t *testing.T) {
	ruleRepo := &mocks.MockRuleRepository{}
	service := NewRuleService(ruleRepo, nil, testConfig())

	id := uuid.New()
	existing := &domain.TaxRule{
		ID:          id,
		Category:    "property",
		Type:        domain.RuleTypeFixed,
		Year:        2025,
		FixedAmount: decimal.NewNullDecimal(decimal.NewFromInt(500)),
		Active:      true,
	}

	ruleRepo.On("GetByID", mock.Anything, id).Return(existing, nil)
	ruleRepo.On("Update", mock.Anything, mock.MatchedBy(func(rule *domain.TaxRule) bool {
		return rule.Type == domain.RuleTypePercentage &&
			!rule.FixedAmount.Valid &&
			rule.PercentageRate.Valid
	})).Return(nil)

	newType := domain.RuleTypePercentage
	rate := decimal.NewFromInt(2)
	_, err := service.Update(context.Background(), id, &domain.UpdateRuleRequest{
		Type:           &newType,
		PercentageRate: &rate,
	})

	require.NoError(t, err)
	ruleRepo.AssertExpectations(t)
}

func TestRuleService_Update_NotFound(t *testing.T) {
	ruleRepo := &mocks.MockRuleRepository{}
	service := NewRuleService(ruleRepo, nil, testConfig())

	id := uuid.New()
	ruleRepo.On("GetByID", mock.Anything, id).Return(nil, sql.ErrNoRows)

	_, err := service.Update(context.Background(), id, &domain.UpdateRuleRequest{})
	assert.ErrorIs(t, err, customError.ErrRuleNotFound)
}

func TestRuleService_ActiveRule_NoRule(t *testing.T) {
	ruleRepo := &mocks.MockRuleRepository{}
	service := NewRuleService(ruleRepo, nil, testConfig())

	ruleRepo.On("GetActive", mock.Anything, "vat", 2025).Return(nil, sql.ErrNoRows)

	_, err := service.ActiveRule(context.Background(), "VAT", 2025)
	assert.ErrorIs(t, err, customError.ErrNoActiveRule)
}
