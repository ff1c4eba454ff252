package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Role gates behavior at the authorization layer. Handlers switch
// exhaustively over it instead of comparing raw strings.
type Role string

const (
	RoleTaxpayer Role = "taxpayer"
	RoleOfficial Role = "official"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleTaxpayer, RoleOfficial, RoleAdmin:
		return true
	}
	return false
}

// User represents a portal account. Taxpayers additionally carry their
// declared tax categories and monthly income (used as the base amount for
// the "personal" category).
type User struct {
	ID            uuid.UUID           `json:"id" db:"id"`
	Email         string              `json:"email" db:"email"`
	Name          string              `json:"name" db:"name"`
	Role          Role                `json:"role" db:"role"`
	TaxCategories pq.StringArray      `json:"tax_categories" db:"tax_categories"`
	MonthlyIncome decimal.NullDecimal `json:"monthly_income" db:"monthly_income"`
	CreatedAt     time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at" db:"updated_at"`
}

type RegisterUserRequest struct {
	Email         string           `json:"email" validate:"required,email"`
	Name          string           `json:"name" validate:"required"`
	Role          string           `json:"role" validate:"required,oneof=taxpayer official admin"`
	TaxCategories []string         `json:"tax_categories" validate:"omitempty,dive,required"`
	MonthlyIncome *decimal.Decimal `json:"monthly_income,omitempty"`
}

type RegisterUserResponse struct {
	User      *User          `json:"user"`
	Schedules []*TaxSchedule `json:"schedules,omitempty"`
}
