package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PaymentStatePending       = "pending"
	PaymentStatePaid          = "paid"
	PaymentStateOverdue       = "overdue"
	PaymentStateFailed        = "failed"
	PaymentStatePartiallyPaid = "partially_paid"
)

const (
	PaymentTypeFull    = "full"
	PaymentTypePartial = "partial"
)

// Payment is money recorded against one filing. RemainingAmount is zero
// for a full payment and the unpaid balance for a partial one. Every
// payment is written together with a ledger Transaction in a single
// database transaction.
type Payment struct {
	ID              uuid.UUID           `json:"id" db:"id"`
	TaxpayerID      uuid.UUID           `json:"taxpayer_id" db:"taxpayer_id"`
	TaxFilingID     uuid.UUID           `json:"tax_filing_id" db:"tax_filing_id"`
	Amount          decimal.Decimal     `json:"amount" db:"amount"`
	RemainingAmount decimal.Decimal     `json:"remaining_amount" db:"remaining_amount"`
	PenaltyAmount   decimal.Decimal     `json:"penalty_amount" db:"penalty_amount"`
	Method          string              `json:"method" db:"method"`
	PaymentType     string              `json:"payment_type" db:"payment_type"`
	Status          string              `json:"status" db:"status"`
	ReferenceID     string              `json:"reference_id" db:"reference_id"`
	PaymentDate     *time.Time          `json:"payment_date" db:"payment_date"`
	CreatedAt       time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at" db:"updated_at"`
}

// Transaction is the append-only ledger entry mirroring a payment.
type Transaction struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	ReferenceID string          `json:"reference_id" db:"reference_id"`
	TaxpayerID  uuid.UUID       `json:"taxpayer_id" db:"taxpayer_id"`
	TaxFilingID uuid.UUID       `json:"tax_filing_id" db:"tax_filing_id"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Type        string          `json:"type" db:"type"`
	Status      string          `json:"status" db:"status"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

type CreatePaymentRequest struct {
	TaxpayerID  uuid.UUID       `json:"taxpayer_id" validate:"required"`
	TaxFilingID uuid.UUID       `json:"tax_filing_id" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"dgt"`
	Method      string          `json:"method" validate:"required"`
}

type CreatePaymentResponse struct {
	Payment     *Payment     `json:"payment"`
	Transaction *Transaction `json:"transaction"`
}
