package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	RuleTypeFixed       = "fixed"
	RuleTypePercentage  = "percentage"
	RuleTypeProgressive = "progressive"
)

// Bracket is one progressive-tax range. Rate is a percentage (0-100).
type Bracket struct {
	MinAmount decimal.Decimal `json:"min_amount"`
	MaxAmount decimal.Decimal `json:"max_amount"`
	Rate      decimal.Decimal `json:"rate"`
}

// TaxRule defines how tax is computed for one category in one year.
// Exactly one of the variant fields is meaningful depending on Type:
// FixedAmount for fixed rules, PercentageRate for percentage rules,
// Brackets for progressive rules. Brackets are stored sorted ascending
// by MinAmount.
type TaxRule struct {
	ID             uuid.UUID           `json:"id" db:"id"`
	Category       string              `json:"category" db:"category"`
	Type           string              `json:"type" db:"type"`
	Year           int                 `json:"year" db:"year"`
	FixedAmount    decimal.NullDecimal `json:"fixed_amount" db:"fixed_amount"`
	PercentageRate decimal.NullDecimal `json:"percentage_rate" db:"percentage_rate"`
	Brackets       BracketList         `json:"brackets" db:"brackets"`
	Active         bool                `json:"active" db:"active"`
	CreatedAt      time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at" db:"updated_at"`
}

// BracketList stores brackets as a jsonb column.
type BracketList []Bracket

func (b BracketList) Value() (driver.Value, error) {
	if b == nil {
		return nil, nil
	}
	return json.Marshal(b)
}

func (b *BracketList) Scan(src interface{}) error {
	if src == nil {
		*b = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, b)
	case string:
		return json.Unmarshal([]byte(v), b)
	}
	return fmt.Errorf("cannot scan %T into BracketList", src)
}

type CreateRuleRequest struct {
	Category       string           `json:"category" validate:"required"`
	Type           string           `json:"type" validate:"required,oneof=fixed percentage progressive"`
	Year           int              `json:"year" validate:"required,gte=2000"`
	FixedAmount    *decimal.Decimal `json:"fixed_amount,omitempty"`
	PercentageRate *decimal.Decimal `json:"percentage_rate,omitempty"`
	Brackets       []Bracket        `json:"brackets,omitempty"`
}

type UpdateRuleRequest struct {
	Type           *string          `json:"type,omitempty" validate:"omitempty,oneof=fixed percentage progressive"`
	FixedAmount    *decimal.Decimal `json:"fixed_amount,omitempty"`
	PercentageRate *decimal.Decimal `json:"percentage_rate,omitempty"`
	Brackets       []Bracket        `json:"brackets,omitempty"`
	Active         *bool            `json:"active,omitempty"`
}
