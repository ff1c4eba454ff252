package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/danqs/tax-engine/internal/domain"
)

type filingRepository struct {
	db *sqlx.DB
}

func NewFilingRepository(db *sqlx.DB) FilingRepository {
	return &filingRepository{db: db}
}

func (r *filingRepository) Create(ctx context.Context, filing *domain.TaxFiling) error {
	query := `
		INSERT INTO tax_filings (id, taxpayer_id, tax_category, filing_period, total_amount, calculated_tax, document_url, status, payment_status, is_late, remarks, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.ExecContext(ctx, query,
		filing.ID,
		filing.TaxpayerID,
		filing.TaxCategory,
		filing.FilingPeriod,
		filing.TotalAmount,
		filing.CalculatedTax,
		filing.DocumentURL,
		filing.Status,
		filing.PaymentStatus,
		filing.IsLate,
		filing.Remarks,
		filing.CreatedAt,
		filing.UpdatedAt,
	)

	return err
}

func (r *filingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.TaxFiling, error) {
	query := `
		SELECT id, taxpayer_id, tax_category, filing_period, total_amount, calculated_tax, document_url, status, payment_status, is_late, remarks, created_at, updated_at
		FROM tax_filings
		WHERE id = $1
	`

	var filing domain.TaxFiling
	err := r.db.GetContext(ctx, &filing, query, id)
	if err != nil {
		return nil, err
	}

	return &filing, nil
}

func (r *filingRepository) Exists(ctx context.Context, taxpayerID uuid.UUID, category, period string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM tax_filings
			WHERE taxpayer_id = $1 AND LOWER(tax_category) = LOWER($2) AND filing_period = $3
		)
	`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, taxpayerID, category, period)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (r *filingRepository) UpdateReview(ctx context.Context, id uuid.UUID, status, remarks string, calculatedTax decimal.NullDecimal) error {
	query := `
		UPDATE tax_filings
		SET status = $2, remarks = $3, calculated_tax = $4, updated_at = $5
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, status, remarks, calculatedTax, time.Now())
	return err
}

func (r *filingRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, paymentStatus string) error {
	query := `
		UPDATE tax_filings
		SET payment_status = $2, updated_at = $3
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, paymentStatus, time.Now())
	return err
}

func (r *filingRepository) ListByTaxpayer(ctx context.Context, taxpayerID uuid.UUID) ([]*domain.TaxFiling, error) {
	query := `
		SELECT id, taxpayer_id, tax_category, filing_period, total_amount, calculated_tax, document_url, status, payment_status, is_late, remarks, created_at, updated_at
		FROM tax_filings
		WHERE taxpayer_id = $1
		ORDER BY created_at DESC
	`

	var filings []*domain.TaxFiling
	err := r.db.SelectContext(ctx, &filings, query, taxpayerID)
	if err != nil {
		return nil, err
	}

	return filings, nil
}
