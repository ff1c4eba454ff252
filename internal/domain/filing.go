package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	FilingStatusSubmitted = "submitted"
	FilingStatusApproved  = "approved"
	FilingStatusRejected  = "rejected"
)

const (
	PaymentStatusUnpaid        = "unpaid"
	PaymentStatusPartiallyPaid = "partially_paid"
	PaymentStatusPaid          = "paid"
)

// TaxFiling is a taxpayer's declaration for one category and period.
// CalculatedTax stays null until an official approves the filing.
// PaymentStatus is always derived from the sum of linked payments
// against CalculatedTax, never set directly.
type TaxFiling struct {
	ID            uuid.UUID           `json:"id" db:"id"`
	TaxpayerID    uuid.UUID           `json:"taxpayer_id" db:"taxpayer_id"`
	TaxCategory   string              `json:"tax_category" db:"tax_category"`
	FilingPeriod  string              `json:"filing_period" db:"filing_period"`
	TotalAmount   decimal.Decimal     `json:"total_amount" db:"total_amount"`
	CalculatedTax decimal.NullDecimal `json:"calculated_tax" db:"calculated_tax"`
	DocumentURL   string              `json:"document_url" db:"document_url"`
	Status        string              `json:"status" db:"status"`
	PaymentStatus string              `json:"payment_status" db:"payment_status"`
	IsLate        bool                `json:"is_late" db:"is_late"`
	Remarks       string              `json:"remarks" db:"remarks"`
	CreatedAt     time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at" db:"updated_at"`
}

type CreateFilingRequest struct {
	TaxpayerID   uuid.UUID       `json:"taxpayer_id" validate:"required"`
	TaxCategory  string          `json:"tax_category" validate:"required"`
	FilingPeriod string          `json:"filing_period" validate:"required,filing_period"`
	TotalAmount  decimal.Decimal `json:"total_amount" validate:"dgte"`
	DocumentURL  string          `json:"document_url" validate:"required,url"`
}

type ReviewFilingRequest struct {
	Decision string `json:"decision" validate:"required"`
	Remarks  string `json:"remarks,omitempty"`
}

type FilingResponse struct {
	Filing   *TaxFiling `json:"filing"`
	Payments []*Payment `json:"payments,omitempty"`
}
