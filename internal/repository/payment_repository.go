package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/danqs/tax-engine/internal/domain"
)

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// CreateWithLedger writes the payment and its ledger entry in a single
// database transaction so a payment can never exist without its
// transaction record. The filing payment-status recompute runs outside
// this transaction, after commit.
func (r *paymentRepository) CreateWithLedger(ctx context.Context, payment *domain.Payment, txn *domain.Transaction) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	paymentQuery := `
		INSERT INTO payments (id, taxpayer_id, tax_filing_id, amount, remaining_amount, penalty_amount, method, payment_type, status, reference_id, payment_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err = tx.ExecContext(ctx, paymentQuery,
		payment.ID,
		payment.TaxpayerID,
		payment.TaxFilingID,
		payment.Amount,
		payment.RemainingAmount,
		payment.PenaltyAmount,
		payment.Method,
		payment.PaymentType,
		payment.Status,
		payment.ReferenceID,
		payment.PaymentDate,
		payment.CreatedAt,
		payment.UpdatedAt,
	)
	if err != nil {
		return err
	}

	txnQuery := `
		INSERT INTO transactions (id, reference_id, taxpayer_id, tax_filing_id, amount, type, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = tx.ExecContext(ctx, txnQuery,
		txn.ID,
		txn.ReferenceID,
		txn.TaxpayerID,
		txn.TaxFilingID,
		txn.Amount,
		txn.Type,
		txn.Status,
		txn.CreatedAt,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *paymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	query := `
		SELECT id, taxpayer_id, tax_filing_id, amount, remaining_amount, penalty_amount, method, payment_type, status, reference_id, payment_date, created_at, updated_at
		FROM payments
		WHERE id = $1
	`

	var payment domain.Payment
	err := r.db.GetContext(ctx, &payment, query, id)
	if err != nil {
		return nil, err
	}

	return &payment, nil
}

func (r *paymentRepository) GetByFilingID(ctx context.Context, filingID uuid.UUID) ([]*domain.Payment, error) {
	query := `
		SELECT id, taxpayer_id, tax_filing_id, amount, remaining_amount, penalty_amount, method, payment_type, status, reference_id, payment_date, created_at, updated_at
		FROM payments
		WHERE tax_filing_id = $1
		ORDER BY created_at
	`

	var payments []*domain.Payment
	err := r.db.SelectContext(ctx, &payments, query, filingID)
	if err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *paymentRepository) GetTotalPaidByFiling(ctx context.Context, filingID uuid.UUID) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM payments
		WHERE tax_filing_id = $1
	`

	var total decimal.Decimal
	err := r.db.GetContext(ctx, &total, query, filingID)
	if err != nil {
		return decimal.Zero, err
	}

	return total, nil
}

func (r *paymentRepository) Approve(ctx context.Context, id uuid.UUID, paymentDate time.Time) error {
	query := `
		UPDATE payments
		SET status = $2, payment_date = $3, updated_at = $4
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, domain.PaymentStatePaid, paymentDate, time.Now())
	return err
}
