package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/danqs/tax-engine/internal/config"
	"github.com/danqs/tax-engine/internal/domain"
	"github.com/danqs/tax-engine/internal/repository"
	customError "github.com/danqs/tax-engine/pkg/errors"
	"github.com/danqs/tax-engine/pkg/utils"
)

// PaymentService records payments against approved filings and keeps
// each filing's payment status consistent with its payment set.
type PaymentService struct {
	paymentRepo  repository.PaymentRepository
	filingRepo   repository.FilingRepository
	scheduleRepo repository.ScheduleRepository
	notifRepo    repository.NotificationRepository
	config       *config.Config
	now          func() time.Time
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	filingRepo repository.FilingRepository,
	scheduleRepo repository.ScheduleRepository,
	notifRepo repository.NotificationRepository,
	config *config.Config,
) *PaymentService {
	return &PaymentService{
		paymentRepo:  paymentRepo,
		filingRepo:   filingRepo,
		scheduleRepo: scheduleRepo,
		notifRepo:    notifRepo,
		config:       config,
		now:          time.Now,
	}
}

// Create records a payment against an approved filing. The payment and
// its ledger transaction are written in one database transaction; the
// filing's payment status is recomputed after commit, so a concurrent
// read can briefly observe the committed payment with the prior status.
func (s *PaymentService) Create(ctx context.Context, request *domain.CreatePaymentRequest) (*domain.Payment, *domain.Transaction, error) {
	filing, err := s.filingRepo.GetByID(ctx, request.TaxFilingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, customError.WrapFilingNotFound(request.TaxFilingID.String())
		}
		return nil, nil, customError.WrapDatabaseError(err)
	}

	if filing.Status != domain.FilingStatusApproved || !filing.CalculatedTax.Valid {
		return nil, nil, customError.WrapFilingNotApproved(filing.ID.String())
	}

	if !request.Amount.IsPositive() {
		return nil, nil, customError.WrapInvalidPayment("payment amount must be greater than 0")
	}

	alreadyPaid, err := s.paymentRepo.GetTotalPaidByFiling(ctx, filing.ID)
	if err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}

	owed := filing.CalculatedTax.Decimal
	outstanding := owed.Sub(alreadyPaid)
	if outstanding.IsNegative() {
		outstanding = decimal.Zero
	}

	paymentType := domain.PaymentTypePartial
	if request.Amount.GreaterThanOrEqual(outstanding) {
		paymentType = domain.PaymentTypeFull
	}

	remaining := outstanding.Sub(request.Amount)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	now := s.now()
	penalty := s.latePenalty(ctx, filing, request.Amount, now)

	payment := &domain.Payment{
		ID:              uuid.New(),
		TaxpayerID:      request.TaxpayerID,
		TaxFilingID:     filing.ID,
		Amount:          request.Amount,
		RemainingAmount: remaining.Round(2),
		PenaltyAmount:   penalty.Round(2),
		Method:          request.Method,
		PaymentType:     paymentType,
		Status:          domain.PaymentStatePending,
		ReferenceID:     newReferenceID(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	txn := &domain.Transaction{
		ID:          uuid.New(),
		ReferenceID: payment.ReferenceID,
		TaxpayerID:  request.TaxpayerID,
		TaxFilingID: filing.ID,
		Amount:      request.Amount,
		Type:        paymentType,
		Status:      domain.PaymentStatePending,
		CreatedAt:   now,
	}

	if err := s.paymentRepo.CreateWithLedger(ctx, payment, txn); err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}

	if err := s.UpdateFilingPaymentStatus(ctx, filing.ID); err != nil {
		log.Printf("payment status recompute failed for filing %s: %v", filing.ID, err)
	}

	return payment, txn, nil
}

// Approve is the official's confirmation of a recorded payment: status
// goes to paid, the payment date is stamped, the filing status is
// recomputed and the taxpayer is notified.
func (s *PaymentService) Approve(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapPaymentNotFound(paymentID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	now := s.now()
	if err := s.paymentRepo.Approve(ctx, paymentID, now); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	payment.Status = domain.PaymentStatePaid
	payment.PaymentDate = &now

	if err := s.UpdateFilingPaymentStatus(ctx, payment.TaxFilingID); err != nil {
		log.Printf("payment status recompute failed for filing %s: %v", payment.TaxFilingID, err)
	}

	notification := &domain.Notification{
		ID:        uuid.New(),
		UserID:    payment.TaxpayerID,
		Type:      domain.NotificationPaymentApproved,
		Title:     "Payment approved",
		Message:   fmt.Sprintf("Your payment %s of %s was approved", payment.ReferenceID, payment.Amount.StringFixed(2)),
		CreatedAt: now,
	}
	if err := s.notifRepo.Create(ctx, notification); err != nil {
		log.Printf("failed to create payment notification for %s: %v", payment.ID, err)
	}

	return payment, nil
}

// UpdateFilingPaymentStatus recomputes a filing's payment status from
// the sum of its linked payments. Re-running it against the same payment
// set always converges to the same status.
func (s *PaymentService) UpdateFilingPaymentStatus(ctx context.Context, filingID uuid.UUID) error {
	filing, err := s.filingRepo.GetByID(ctx, filingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return customError.WrapFilingNotFound(filingID.String())
		}
		return customError.WrapDatabaseError(err)
	}

	if !filing.CalculatedTax.Valid {
		return nil
	}

	total, err := s.paymentRepo.GetTotalPaidByFiling(ctx, filingID)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}

	status := DerivePaymentStatus(total, filing.CalculatedTax.Decimal)
	if status == filing.PaymentStatus {
		return nil
	}

	if err := s.filingRepo.UpdatePaymentStatus(ctx, filingID, status); err != nil {
		return customError.WrapDatabaseError(err)
	}

	if status == domain.PaymentStatusPaid {
		s.markSchedulePaid(ctx, filing)
	}

	return nil
}

// DerivePaymentStatus maps total paid versus tax owed to a filing
// payment status.
func DerivePaymentStatus(total, owed decimal.Decimal) string {
	switch {
	case total.GreaterThanOrEqual(owed):
		return domain.PaymentStatusPaid
	case total.IsPositive():
		return domain.PaymentStatusPartiallyPaid
	default:
		return domain.PaymentStatusUnpaid
	}
}

// latePenalty computes the penalty owed when the filing's schedule due
// date has passed. Without a matching schedule no penalty applies.
func (s *PaymentService) latePenalty(ctx context.Context, filing *domain.TaxFiling, amount decimal.Decimal, now time.Time) decimal.Decimal {
	at := now
	if period, err := utils.ParseFilingPeriod(filing.FilingPeriod); err == nil {
		at = period
	}

	schedule, err := s.scheduleRepo.FindOverlapping(ctx, filing.TaxpayerID, filing.TaxCategory, at)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("schedule lookup failed for filing %s: %v", filing.ID, err)
		}
		return decimal.Zero
	}

	penalty := ApplyPenalty(amount, schedule.DueDate, now, s.config.GetPenaltyRate(), s.config.GetPenaltyCap())
	if penalty.IsPositive() {
		log.Printf("late payment on filing %s: %d day(s) overdue, penalty %s",
			filing.ID, utils.OverdueDays(schedule.DueDate, now), penalty.StringFixed(2))
	}

	return penalty
}

func (s *PaymentService) markSchedulePaid(ctx context.Context, filing *domain.TaxFiling) {
	at := s.now()
	if period, err := utils.ParseFilingPeriod(filing.FilingPeriod); err == nil {
		at = period
	}

	schedule, err := s.scheduleRepo.FindOverlapping(ctx, filing.TaxpayerID, filing.TaxCategory, at)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("schedule lookup failed for filing %s: %v", filing.ID, err)
		}
		return
	}

	if err := s.scheduleRepo.UpdateStatus(ctx, schedule.ID, domain.ScheduleStatusPaid); err != nil {
		log.Printf("failed to mark schedule %s paid: %v", schedule.ID, err)
	}
}

func newReferenceID() string {
	return "PAY-" + strings.ToUpper(uuid.New().String()[:8])
}
