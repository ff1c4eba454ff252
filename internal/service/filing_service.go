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

	"github.com/danqs/tax-engine/internal/domain"
	"github.com/danqs/tax-engine/internal/repository"
	customError "github.com/danqs/tax-engine/pkg/errors"
	"github.com/danqs/tax-engine/pkg/utils"
)

// FilingService owns the filing lifecycle: submission (with the late
// check against the matching schedule) and the official's review
// decision, which triggers tax calculation on approval.
type FilingService struct {
	filingRepo   repository.FilingRepository
	scheduleRepo repository.ScheduleRepository
	paymentRepo  repository.PaymentRepository
	userRepo     repository.UserRepository
	notifRepo    repository.NotificationRepository
	rules        *RuleService
	now          func() time.Time
}

func NewFilingService(
	filingRepo repository.FilingRepository,
	scheduleRepo repository.ScheduleRepository,
	paymentRepo repository.PaymentRepository,
	userRepo repository.UserRepository,
	notifRepo repository.NotificationRepository,
	rules *RuleService,
) *FilingService {
	return &FilingService{
		filingRepo:   filingRepo,
		scheduleRepo: scheduleRepo,
		paymentRepo:  paymentRepo,
		userRepo:     userRepo,
		notifRepo:    notifRepo,
		rules:        rules,
		now:          time.Now,
	}
}

// Create submits a new filing. A supporting document is required, a
// duplicate (taxpayer, category, period) is a conflict, and the filing
// is flagged late when the matching schedule's due date has passed. The
// matching schedule, if any, transitions to "filed".
func (s *FilingService) Create(ctx context.Context, request *domain.CreateFilingRequest) (*domain.TaxFiling, error) {
	if _, err := s.userRepo.GetByID(ctx, request.TaxpayerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapUserNotFound(request.TaxpayerID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	category := strings.ToLower(strings.TrimSpace(request.TaxCategory))

	if _, err := utils.ParseFilingPeriod(request.FilingPeriod); err != nil {
		return nil, customError.WrapInvalidFiling(err.Error())
	}

	exists, err := s.filingRepo.Exists(ctx, request.TaxpayerID, category, request.FilingPeriod)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if exists {
		return nil, customError.WrapDuplicateFiling(category, request.FilingPeriod)
	}

	now := s.now()

	isLate := false
	schedule, err := s.scheduleRepo.FindOverlapping(ctx, request.TaxpayerID, category, now)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDatabaseError(err)
	}
	if schedule != nil {
		isLate = utils.IsDateOverdue(schedule.DueDate, now)
	}

	filing := &domain.TaxFiling{
		ID:            uuid.New(),
		TaxpayerID:    request.TaxpayerID,
		TaxCategory:   category,
		FilingPeriod:  request.FilingPeriod,
		TotalAmount:   request.TotalAmount,
		DocumentURL:   request.DocumentURL,
		Status:        domain.FilingStatusSubmitted,
		PaymentStatus: domain.PaymentStatusUnpaid,
		IsLate:        isLate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.filingRepo.Create(ctx, filing); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if schedule != nil && (schedule.Status == domain.ScheduleStatusPending || schedule.Status == domain.ScheduleStatusOverdue) {
		if err := s.scheduleRepo.UpdateStatus(ctx, schedule.ID, domain.ScheduleStatusFiled); err != nil {
			log.Printf("failed to mark schedule %s filed: %v", schedule.ID, err)
		}
	}

	return filing, nil
}

// Review applies an official's decision to a submitted filing. Approval
// calculates and persists the tax owed; a calculation failure aborts the
// review and leaves the filing untouched. Exactly one notification goes
// to the taxpayer per review.
func (s *FilingService) Review(ctx context.Context, filingID uuid.UUID, decision, remarks string) (*domain.TaxFiling, error) {
	if decision != domain.FilingStatusApproved && decision != domain.FilingStatusRejected {
		return nil, customError.WrapInvalidDecision(decision)
	}

	filing, err := s.filingRepo.GetByID(ctx, filingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapFilingNotFound(filingID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	if filing.Status != domain.FilingStatusSubmitted {
		return nil, customError.WrapInvalidDecision(
			fmt.Sprintf("filing is already %s", filing.Status))
	}

	var calculatedTax decimal.NullDecimal
	if decision == domain.FilingStatusApproved {
		tax, err := s.calculateFilingTax(ctx, filing)
		if err != nil {
			return nil, err
		}
		calculatedTax = decimal.NewNullDecimal(tax.Round(2))
	}

	if err := s.filingRepo.UpdateReview(ctx, filingID, decision, remarks, calculatedTax); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	filing.Status = decision
	filing.Remarks = remarks
	filing.CalculatedTax = calculatedTax

	s.notifyReview(ctx, filing, decision)

	return filing, nil
}

// ListByTaxpayer returns a taxpayer's filings, newest first.
func (s *FilingService) ListByTaxpayer(ctx context.Context, taxpayerID uuid.UUID) ([]*domain.TaxFiling, error) {
	if _, err := s.userRepo.GetByID(ctx, taxpayerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapUserNotFound(taxpayerID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	filings, err := s.filingRepo.ListByTaxpayer(ctx, taxpayerID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return filings, nil
}

// GetByID returns a filing with its linked payments.
func (s *FilingService) GetByID(ctx context.Context, filingID uuid.UUID) (*domain.FilingResponse, error) {
	filing, err := s.filingRepo.GetByID(ctx, filingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapFilingNotFound(filingID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	payments, err := s.paymentRepo.GetByFilingID(ctx, filingID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return &domain.FilingResponse{Filing: filing, Payments: payments}, nil
}

// calculateFilingTax resolves the active rule for the filing's category
// and year and evaluates it against the filing's base amount.
func (s *FilingService) calculateFilingTax(ctx context.Context, filing *domain.TaxFiling) (decimal.Decimal, error) {
	taxpayer, err := s.userRepo.GetByID(ctx, filing.TaxpayerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, customError.WrapUserNotFound(filing.TaxpayerID.String())
		}
		return decimal.Zero, customError.WrapDatabaseError(err)
	}

	period, err := utils.ParseFilingPeriod(filing.FilingPeriod)
	if err != nil {
		return decimal.Zero, customError.WrapInvalidFiling(err.Error())
	}

	rule, err := s.rules.ActiveRule(ctx, filing.TaxCategory, period.Year())
	if err != nil {
		return decimal.Zero, err
	}

	base, err := TaxBase(filing, taxpayer)
	if err != nil {
		return decimal.Zero, err
	}

	return CalculateTax(rule, base)
}

func (s *FilingService) notifyReview(ctx context.Context, filing *domain.TaxFiling, decision string) {
	notification := &domain.Notification{
		ID:        uuid.New(),
		UserID:    filing.TaxpayerID,
		Type:      domain.NotificationFilingReviewed,
		Title:     "Tax filing reviewed",
		Message:   fmt.Sprintf("Your %s filing for %s was %s", filing.TaxCategory, filing.FilingPeriod, decision),
		CreatedAt: s.now(),
	}

	if err := s.notifRepo.Create(ctx, notification); err != nil {
		log.Printf("failed to create review notification for filing %s: %v", filing.ID, err)
	}
}
