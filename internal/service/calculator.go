package service

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/danqs/tax-engine/internal/domain"
	customError "github.com/danqs/tax-engine/pkg/errors"
	"github.com/danqs/tax-engine/pkg/utils"
)

// TaxBase selects the amount a rule is evaluated against. The "personal"
// category taxes declared monthly income; every other category taxes the
// declared filing amount.
func TaxBase(filing *domain.TaxFiling, taxpayer *domain.User) (decimal.Decimal, error) {
	if filing.TaxCategory == "personal" {
		if !taxpayer.MonthlyIncome.Valid {
			return decimal.Zero, customError.WrapMissingIncome(taxpayer.ID.String())
		}
		return taxpayer.MonthlyIncome.Decimal, nil
	}
	return filing.TotalAmount, nil
}

// CalculateTax evaluates a tax rule against a base amount.
//
// Fixed rules return the fixed amount verbatim. Percentage rules return
// base * rate/100. Progressive rules return base * rate/100 for the first
// bracket containing the base; a base above every bracket is charged the
// top bracket's rate on the full base (flat marginal rate, no stacking),
// and a base below the lowest bracket's floor owes nothing.
func CalculateTax(rule *domain.TaxRule, base decimal.Decimal) (decimal.Decimal, error) {
	switch rule.Type {
	case domain.RuleTypeFixed:
		if !rule.FixedAmount.Valid {
			return decimal.Zero, customError.WrapInvalidRule("fixed rule has no fixed amount")
		}
		return rule.FixedAmount.Decimal, nil

	case domain.RuleTypePercentage:
		if !rule.PercentageRate.Valid {
			return decimal.Zero, customError.WrapInvalidRule("percentage rule has no rate")
		}
		return base.Mul(utils.Percent(rule.PercentageRate.Decimal)), nil

	case domain.RuleTypeProgressive:
		if len(rule.Brackets) == 0 {
			return decimal.Zero, customError.WrapInvalidRule("progressive rule has no brackets")
		}

		brackets := sortedBrackets(rule.Brackets)

		for _, b := range brackets {
			if base.GreaterThanOrEqual(b.MinAmount) && base.LessThanOrEqual(b.MaxAmount) {
				return base.Mul(utils.Percent(b.Rate)), nil
			}
		}

		// Above the highest bracket: the top rate applies to the whole base.
		top := brackets[len(brackets)-1]
		if base.GreaterThan(top.MaxAmount) {
			return base.Mul(utils.Percent(top.Rate)), nil
		}

		// Below the lowest bracket's floor.
		return decimal.Zero, nil

	default:
		return decimal.Zero, customError.WrapInvalidRule("unknown rule type " + rule.Type)
	}
}

// ValidateBrackets checks internal consistency of a progressive bracket
// list: min < max and rate within [0, 100] for each bracket. Gaps and
// overlaps between brackets are not rejected.
func ValidateBrackets(brackets []domain.Bracket) error {
	if len(brackets) == 0 {
		return customError.WrapInvalidRule("progressive rule requires at least one bracket")
	}

	hundred := decimal.NewFromInt(100)
	for _, b := range brackets {
		if b.MinAmount.GreaterThanOrEqual(b.MaxAmount) {
			return customError.WrapInvalidRule("bracket min amount must be below max amount")
		}
		if b.Rate.IsNegative() || b.Rate.GreaterThan(hundred) {
			return customError.WrapInvalidRule("bracket rate must be between 0 and 100")
		}
	}

	return nil
}

func sortedBrackets(brackets []domain.Bracket) []domain.Bracket {
	sorted := make([]domain.Bracket, len(brackets))
	copy(sorted, brackets)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].MinAmount.LessThan(sorted[j].MinAmount)
	})
	return sorted
}
