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

	"github.com/danqs/tax-engine/internal/domain"
	"github.com/danqs/tax-engine/internal/repository/mocks"
	customError "github.com/danqs/tax-engine/pkg/errors"
)

type filingFixture struct {
	filingRepo   *mocks.MockFilingRepository
	scheduleRepo *mocks.MockScheduleRepository
	paymentRepo  *mocks.MockPaymentRepository
	userRepo     *mocks.MockUserRepository
	notifRepo    *mocks.MockNotificationRepository
	ruleRepo     *mocks.MockRuleRepository
	service      *FilingService
}

func newFilingFixture(now time.Time) *filingFixture {
	f := &filingFixture{
		filingRepo:   &mocks.MockFilingRepository{},
		scheduleRepo: &mocks.MockScheduleRepository{},
		paymentRepo:  &mocks.MockPaymentRepository{},
		userRepo:     &mocks.MockUserRepository{},
		notifRepo:    &mocks.MockNotificationRepository{},
		ruleRepo:     &mocks.MockRuleRepository{},
	}

	rules := NewRuleService(f.ruleRepo, nil, testConfig())
	f.service = NewFilingService(f.filingRepo, f.scheduleRepo, f.paymentRepo, f.userRepo, f.notifRepo, rules)
	f.service.now = func() time.Time { return now }

	return f
}

func TestFilingService_Create_Success(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	f := newFilingFixture(now)

	taxpayerID := uuid.New()
	f.userRepo.On("GetByID", mock.Anything, taxpayerID).Return(&domain.User{ID: taxpayerID}, nil)
	f.filingRepo.On("Exists", mock.Anything, taxpayerID, "vat", "2025-03").Return(false, nil)
	f.scheduleRepo.On("FindOverlapping", mock.Anything, taxpayerID, "vat", now).Return(nil, sql.ErrNoRows)
	f.filingRepo.On("Create", mock.Anything, mock.MatchedBy(func(filing *domain.TaxFiling) bool {
		return filing.Status == domain.FilingStatusSubmitted &&
			filing.PaymentStatus == domain.PaymentStatusUnpaid &&
			!filing.IsLate &&
			!filing.CalculatedTax.Valid
	})).Return(nil)

	filing, err := f.service.Create(context.Background(), &domain.CreateFilingRequest{
		TaxpayerID:   taxpayerID,
		TaxCategory:  "VAT",
		FilingPeriod: "2025-03",
		TotalAmount:  decimal.NewFromInt(8000),
		DocumentURL:  "https://files.example.com/doc.pdf",
	})

	require.NoError(t, err)
	assert.Equal(t, "vat", filing.TaxCategory)
	f.filingRepo.AssertExpectations(t)
}

func TestFilingService_Create_DuplicateConflict(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	f := newFilingFixture(now)

	taxpayerID := uuid.New()
	f.userRepo.On("GetByID", mock.Anything, taxpayerID).Return(&domain.User{ID: taxpayerID}, nil)
	f.filingRepo.On("Exists", mock.Anything, taxpayerID, "vat", "2025-03").Return(true, nil)

	_, err := f.service.Create(context.Background(), &domain.CreateFilingRequest{
		TaxpayerID:   taxpayerID,
		TaxCategory:  "vat",
		FilingPeriod: "2025-03",
		TotalAmount:  decimal.NewFromInt(8000),
		DocumentURL:  "https://files.example.com/doc.pdf",
	})

	assert.ErrorIs(t, err, customError.ErrDuplicateFiling)
	f.filingRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestFilingService_Create_LateAgainstSchedule(t *testing.T) {
	now := time.Date(2025, 4, 10, 12, 0, 0, 0, time.UTC)
	f := newFilingFixture(now)

	taxpayerID := uuid.New()
	schedule := &domain.TaxSchedule{
		ID:          uuid.New(),
		TaxpayerID:  taxpayerID,
		TaxCategory: "vat",
		DueDate:     now.AddDate(0, 0, -5),
		Status:      domain.ScheduleStatusOverdue,
	}

	f.userRepo.On("GetByID", mock.Anything, taxpayerID).Return(&domain.User{ID: taxpayerID}, nil)
	f.filingRepo.On("Exists", mock.Anything, taxpayerID, "vat", "2025-04").Return(false, nil)
	f.scheduleRepo.On("FindOverlapping", mock.Anything, taxpayerID, "vat", now).Return(schedule, nil)
	f.filingRepo.On("Create", mock.Anything, mock.MatchedBy(func(filing *domain.TaxFiling) bool {
		return filing.IsLate
	})).Return(nil)
	f.scheduleRepo.On("UpdateStatus", mock.Anything, schedule.ID, domain.ScheduleStatusFiled).Return(nil)

	filing, err := f.service.Create(context.Background(), &domain.CreateFilingRequest{
		TaxpayerID:   taxpayerID,
		TaxCategory:  "vat",
		FilingPeriod: "2025-04",
		TotalAmount:  decimal.NewFromInt(8000),
		DocumentURL:  "https://files.example.com/doc.pdf",
	})

	require.NoError(t, err)
	assert.True(t, filing.IsLate)
	f.scheduleRepo.AssertExpectations(t)
}

func TestFilingService_ListByTaxpayer(t *testing.T) {
	f := newFilingFixture(time.Now())

	taxpayerID := uuid.New()
	filings := []*domain.TaxFiling{
		{ID: uuid.New(), TaxpayerID: taxpayerID, TaxCategory: "vat"},
		{ID: uuid.New(), TaxpayerID: taxpayerID, TaxCategory: "business"},
	}

	f.userRepo.On("GetByID", mock.Anything, taxpayerID).Return(&domain.User{ID: taxpayerID}, nil)
	f.filingRepo.On("ListByTaxpayer", mock.Anything, taxpayerID).Return(filings, nil)

	got, err := f.service.ListByTaxpayer(context.Background(), taxpayerID)

	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestFilingService_Review_InvalidDecision(t *testing.T) {
	f := newFilingFixture(time.Now())

	_, err := f.service.Review(context.Background(), uuid.New(), "maybe", "")
	assert.ErrorIs(t, err, customError.ErrInvalidDecision)
}

func TestFilingService_Review_NotFound(t *testing.T) {
	f := newFilingFixture(time.Now())

	id := uuid.New()
	f.filingRepo.On("GetByID", mock.Anything, id).Return(nil, sql.ErrNoRows)

	_, err := f.service.Review(context.Background(), id, domain.FilingStatusApproved, "")
	assert.ErrorIs(t, err, customError.ErrFilingNotFound)
}

func TestFilingService_Review_ApprovePersonalFiling(t *testing.T) {
	// income 3000 against brackets [0,2000)@5% and [2000,10000)@15%
	// lands in the second bracket: 3000 * 15% = 450
	now := time.Date(2025, 5, 2, 9, 0, 0, 0, time.UTC)
	f := newFilingFixture(now)

	taxpayerID := uuid.New()
	filingID := uuid.New()

	filing := &domain.TaxFiling{
		ID:           filingID,
		TaxpayerID:   taxpayerID,
		TaxCategory:  "personal",
		FilingPeriod: "2025-04",
		TotalAmount:  decimal.NewFromInt(12000),
		Status:       domain.FilingStatusSubmitted,
	}

	taxpayer := &domain.User{
		ID:            taxpayerID,
		MonthlyIncome: decimal.NewNullDecimal(decimal.NewFromInt(3000)),
	}

	rule := &domain.TaxRule{
		Category: "personal",
		Type:     domain.RuleTypeProgressive,
		Year:     2025,
		Brackets: domain.BracketList{
			{MinAmount: decimal.Zero, MaxAmount: decimal.NewFromInt(2000), Rate: decimal.NewFromInt(5)},
			{MinAmount: decimal.NewFromInt(2000), MaxAmount: decimal.NewFromInt(10000), Rate: decimal.NewFromInt(15)},
		},
	}

	f.filingRepo.On("GetByID", mock.Anything, filingID).Return(filing, nil)
	f.userRepo.On("GetByID", mock.Anything, taxpayerID).Return(taxpayer, nil)
	f.ruleRepo.On("GetActive", mock.Anything, "personal", 2025).Return(rule, nil)
	f.filingRepo.On("UpdateReview", mock.Anything, filingID, domain.FilingStatusApproved, "ok",
		mock.MatchedBy(func(tax decimal.NullDecimal) bool {
			return tax.Valid && tax.Decimal.Equal(decimal.NewFromInt(450))
		})).Return(nil)
	f.notifRepo.On("Create", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.UserID == taxpayerID && n.Type == domain.NotificationFilingReviewed
	})).Return(nil)

	reviewed, err := f.service.Review(context.Background(), filingID, domain.FilingStatusApproved, "ok")

	require.NoError(t, err)
	assert.True(t, reviewed.CalculatedTax.Valid)
	assert.True(t, reviewed.CalculatedTax.Decimal.Equal(decimal.NewFromInt(450)))
	f.filingRepo.AssertExpectations(t)
	f.notifRepo.AssertExpectations(t)
}

func TestFilingService_Review_Reject(t *testing.T) {
	f := newFilingFixture(time.Now())

	filingID := uuid.New()
	taxpayerID := uuid.New()
	filing := &domain.TaxFiling{
		ID:         filingID,
		TaxpayerID: taxpayerID,
		Status:     domain.FilingStatusSubmitted,
	}

	f.filingRepo.On("GetByID", mock.Anything, filingID).Return(filing, nil)
	f.filingRepo.On("UpdateReview", mock.Anything, filingID, domain.FilingStatusRejected, "missing document",
		mock.MatchedBy(func(tax decimal.NullDecimal) bool { return !tax.Valid })).Return(nil)
	f.notifRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	reviewed, err := f.service.Review(context.Background(), filingID, domain.FilingStatusRejected, "missing document")

	require.NoError(t, err)
	assert.Equal(t, domain.FilingStatusRejected, reviewed.Status)
	assert.False(t, reviewed.CalculatedTax.Valid)
	f.filingRepo.AssertExpectations(t)
}

func TestFilingService_Review_CalculationFailureAborts(t *testing.T) {
	// no active rule: the review fails and the filing keeps its state
	f := newFilingFixture(time.Now())

	filingID := uuid.New()
	taxpayerID := uuid.New()
	filing := &domain.TaxFiling{
		ID:           filingID,
		TaxpayerID:   taxpayerID,
		TaxCategory:  "vat",
		FilingPeriod: "2025-04",
		TotalAmount:  decimal.NewFromInt(100),
		Status:       domain.FilingStatusSubmitted,
	}

	f.filingRepo.On("GetByID", mock.Anything, filingID).Return(filing, nil)
	f.userRepo.On("GetByID", mock.Anything, taxpayerID).Return(&domain.User{ID: taxpayerID}, nil)
	f.ruleRepo.On("GetActive", mock.Anything, "vat", 2025).Return(nil, sql.ErrNoRows)

	_, err := f.service.Review(context.Background(), filingID, domain.FilingStatusApproved, "")

	assert.ErrorIs(t, err, customError.ErrNoActiveRule)
	f.filingRepo.AssertNotCalled(t, "UpdateReview", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.notifRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestFilingService_Review_AlreadyReviewed(t *testing.T) {
	f := newFilingFixture(time.Now())

	filingID := uuid.New()
	filing := &domain.TaxFiling{ID: filingID, Status: domain.FilingStatusApproved}
	f.filingRepo.On("GetByID", mock.Anything, filingID).Return(filing, nil)

	_, err := f.service.Review(context.Background(), filingID, domain.FilingStatusRejected, "")
	assert.ErrorIs(t, err, customError.ErrInvalidDecision)
}
