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

type paymentFixture struct {
	paymentRepo  *mocks.MockPaymentRepository
	filingRepo   *mocks.MockFilingRepository
	scheduleRepo *mocks.MockScheduleRepository
	notifRepo    *mocks.MockNotificationRepository
	service      *PaymentService
}

func newPaymentFixture(now time.Time) *paymentFixture {
	f := &paymentFixture{
		paymentRepo:  &mocks.MockPaymentRepository{},
		filingRepo:   &mocks.MockFilingRepository{},
		scheduleRepo: &mocks.MockScheduleRepository{},
		notifRepo:    &mocks.MockNotificationRepository{},
	}

	f.service = NewPaymentService(f.paymentRepo, f.filingRepo, f.scheduleRepo, f.notifRepo, testConfig())
	f.service.now = func() time.Time { return now }

	return f
}

func approvedFiling(taxpayerID uuid.UUID, owed int64) *domain.TaxFiling {
	return &domain.TaxFiling{
		ID:            uuid.New(),
		TaxpayerID:    taxpayerID,
		TaxCategory:   "vat",
		FilingPeriod:  "2025-03",
		Status:        domain.FilingStatusApproved,
		PaymentStatus: domain.PaymentStatusUnpaid,
		CalculatedTax: decimal.NewNullDecimal(decimal.NewFromInt(owed)),
	}
}

func TestDerivePaymentStatus(t *testing.T) {
	owed := decimal.NewFromInt(1000)

	tests := []struct {
		name     string
		total    decimal.Decimal
		expected string
	}{
		{"nothing paid", decimal.Zero, domain.PaymentStatusUnpaid},
		{"partially paid", decimal.NewFromInt(400), domain.PaymentStatusPartiallyPaid},
		{"exactly paid", decimal.NewFromInt(1000), domain.PaymentStatusPaid},
		{"overpaid", decimal.NewFromInt(1200), domain.PaymentStatusPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DerivePaymentStatus(tt.total, owed))
		})
	}
}

func TestDerivePaymentStatus_Idempotent(t *testing.T) {
	owed := decimal.NewFromInt(1000)
	total := decimal.NewFromInt(400)

	first := DerivePaymentStatus(total, owed)
	second := DerivePaymentStatus(total, owed)
	assert.Equal(t, first, second)
}

func TestPaymentService_Create_FullPayment(t *testing.T) {
	now := time.Date(2025, 3, 20, 10, 0, 0, 0, time.UTC)
	f := newPaymentFixture(now)

	taxpayerID := uuid.New()
	filing := approvedFiling(taxpayerID, 1000)

	f.filingRepo.On("GetByID", mock.Anything, filing.ID).Return(filing, nil)
	f.paymentRepo.On("GetTotalPaidByFiling", mock.Anything, filing.ID).Return(decimal.Zero, nil).Once()
	f.scheduleRepo.On("FindOverlapping", mock.Anything, taxpayerID, "vat", mock.Anything).Return(nil, sql.ErrNoRows)
	f.paymentRepo.On("CreateWithLedger", mock.Anything,
		mock.MatchedBy(func(p *domain.Payment) bool {
			return p.PaymentType == domain.PaymentTypeFull &&
				p.RemainingAmount.IsZero() &&
				p.PenaltyAmount.IsZero() &&
				p.Status == domain.PaymentStatePending
		}),
		mock.MatchedBy(func(txn *domain.Transaction) bool {
			return txn.TaxFilingID == filing.ID && txn.Amount.Equal(decimal.NewFromInt(1000))
		})).Return(nil)

	// post-commit status recompute
	f.paymentRepo.On("GetTotalPaidByFiling", mock.Anything, filing.ID).Return(decimal.NewFromInt(1000), nil)
	f.filingRepo.On("UpdatePaymentStatus", mock.Anything, filing.ID, domain.PaymentStatusPaid).Return(nil)

	payment, txn, err := f.service.Create(context.Background(), &domain.CreatePaymentRequest{
		TaxpayerID:  taxpayerID,
		TaxFilingID: filing.ID,
		Amount:      decimal.NewFromInt(1000),
		Method:      "bank_transfer",
	})

	require.NoError(t, err)
	assert.Equal(t, payment.ReferenceID, txn.ReferenceID)
	f.paymentRepo.AssertExpectations(t)
	f.filingRepo.AssertExpectations(t)
}

func TestPaymentService_Create_PartialPayment(t *testing.T) {
	now := time.Date(2025, 3, 20, 10, 0, 0, 0, time.UTC)
	f := newPaymentFixture(now)

	taxpayerID := uuid.New()
	filing := approvedFiling(taxpayerID, 1000)

	f.filingRepo.On("GetByID", mock.Anything, filing.ID).Return(filing, nil)
	f.paymentRepo.On("GetTotalPaidByFiling", mock.Anything, filing.ID).Return(decimal.Zero, nil).Once()
	f.scheduleRepo.On("FindOverlapping", mock.Anything, taxpayerID, "vat", mock.Anything).Return(nil, sql.ErrNoRows)
	f.paymentRepo.On("CreateWithLedger", mock.Anything,
		mock.MatchedBy(func(p *domain.Payment) bool {
			return p.PaymentType == domain.PaymentTypePartial &&
				p.RemainingAmount.Equal(decimal.NewFromInt(600))
		}),
		mock.Anything).Return(nil)

	f.paymentRepo.On("GetTotalPaidByFiling", mock.Anything, filing.ID).Return(decimal.NewFromInt(400), nil)
	f.filingRepo.On("UpdatePaymentStatus", mock.Anything, filing.ID, domain.PaymentStatusPartiallyPaid).Return(nil)

	payment, _, err := f.service.Create(context.Background(), &domain.CreatePaymentRequest{
		TaxpayerID:  taxpayerID,
		TaxFilingID: filing.ID,
		Amount:      decimal.NewFromInt(400),
		Method:      "card",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentTypePartial, payment.PaymentType)
	f.paymentRepo.AssertExpectations(t)
}

func TestPaymentService_Create_LatePaymentGetsPenalty(t *testing.T) {
	now := time.Date(2025, 4, 20, 10, 0, 0, 0, time.UTC)
	f := newPaymentFixture(now)

	taxpayerID := uuid.New()
	filing := approvedFiling(taxpayerID, 1000)
	schedule := &domain.TaxSchedule{
		ID:      uuid.New(),
		DueDate: now.AddDate(0, 0, -15),
	}

	f.filingRepo.On("GetByID", mock.Anything, filing.ID).Return(filing, nil)
	f.paymentRepo.On("GetTotalPaidByFiling", mock.Anything, filing.ID).Return(decimal.Zero, nil).Once()
	f.scheduleRepo.On("FindOverlapping", mock.Anything, taxpayerID, "vat", mock.Anything).Return(schedule, nil)
	f.paymentRepo.On("CreateWithLedger", mock.Anything,
		mock.MatchedBy(func(p *domain.Payment) bool {
			// 5% of 1000, under the 25% cap
			return p.PenaltyAmount.Equal(decimal.NewFromInt(50))
		}),
		mock.Anything).Return(nil)

	f.paymentRepo.On("GetTotalPaidByFiling", mock.Anything, filing.ID).Return(decimal.NewFromInt(1000), nil)
	f.filingRepo.On("UpdatePaymentStatus", mock.Anything, filing.ID, domain.PaymentStatusPaid).Return(nil)
	f.scheduleRepo.On("UpdateStatus", mock.Anything, schedule.ID, domain.ScheduleStatusPaid).Return(nil)

	_, _, err := f.service.Create(context.Background(), &domain.CreatePaymentRequest{
		TaxpayerID:  taxpayerID,
		TaxFilingID: filing.ID,
		Amount:      decimal.NewFromInt(1000),
		Method:      "bank_transfer",
	})

	require.NoError(t, err)
	f.paymentRepo.AssertExpectations(t)
}

func TestPaymentService_Create_RejectsUnapprovedFiling(t *testing.T) {
	f := newPaymentFixture(time.Now())

	taxpayerID := uuid.New()
	filing := &domain.TaxFiling{
		ID:         uuid.New(),
		TaxpayerID: taxpayerID,
		Status:     domain.FilingStatusSubmitted,
	}

	f.filingRepo.On("GetByID", mock.Anything, filing.ID).Return(filing, nil)

	_, _, err := f.service.Create(context.Background(), &domain.CreatePaymentRequest{
		TaxpayerID:  taxpayerID,
		TaxFilingID: filing.ID,
		Amount:      decimal.NewFromInt(100),
		Method:      "card",
	})

	assert.ErrorIs(t, err, customError.ErrFilingNotApproved)
	f.paymentRepo.AssertNotCalled(t, "CreateWithLedger", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentService_UpdateFilingPaymentStatus_Converges(t *testing.T) {
	f := newPaymentFixture(time.Now())

	taxpayerID := uuid.New()
	filing := approvedFiling(taxpayerID, 1000)
	filing.PaymentStatus = domain.PaymentStatusPartiallyPaid

	// same payment set on both runs: the second run sees the status
	// already converged and writes nothing
	f.filingRepo.On("GetByID", mock.Anything, filing.ID).Return(filing, nil)
	f.paymentRepo.On("GetTotalPaidByFiling", mock.Anything, filing.ID).Return(decimal.NewFromInt(400), nil)

	require.NoError(t, f.service.UpdateFilingPaymentStatus(context.Background(), filing.ID))
	require.NoError(t, f.service.UpdateFilingPaymentStatus(context.Background(), filing.ID))

	f.filingRepo.AssertNotCalled(t, "UpdatePaymentStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentService_Approve(t *testing.T) {
	now := time.Date(2025, 3, 25, 10, 0, 0, 0, time.UTC)
	f := newPaymentFixture(now)

	taxpayerID := uuid.New()
	filing := approvedFiling(taxpayerID, 1000)
	payment := &domain.Payment{
		ID:          uuid.New(),
		TaxpayerID:  taxpayerID,
		TaxFilingID: filing.ID,
		Amount:      decimal.NewFromInt(1000),
		ReferenceID: "PAY-TEST1234",
		Status:      domain.PaymentStatePending,
	}

	f.paymentRepo.On("GetByID", mock.Anything, payment.ID).Return(payment, nil)
	f.paymentRepo.On("Approve", mock.Anything, payment.ID, now).Return(nil)
	f.filingRepo.On("GetByID", mock.Anything, filing.ID).Return(filing, nil)
	f.paymentRepo.On("GetTotalPaidByFiling", mock.Anything, filing.ID).Return(decimal.NewFromInt(1000), nil)
	f.filingRepo.On("UpdatePaymentStatus", mock.Anything, filing.ID, domain.PaymentStatusPaid).Return(nil)
	f.scheduleRepo.On("FindOverlapping", mock.Anything, taxpayerID, "vat", mock.Anything).Return(nil, sql.ErrNoRows)
	f.notifRepo.On("Create", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.UserID == taxpayerID && n.Type == domain.NotificationPaymentApproved
	})).Return(nil)

	approved, err := f.service.Approve(context.Background(), payment.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatePaid, approved.Status)
	require.NotNil(t, approved.PaymentDate)
	assert.True(t, approved.PaymentDate.Equal(now))
	f.notifRepo.AssertExpectations(t)
}

func TestPaymentService_Approve_NotFound(t *testing.T) {
	f := newPaymentFixture(time.Now())

	id := uuid.New()
	f.paymentRepo.On("GetByID", mock.Anything, id).Return(nil, sql.ErrNoRows)

	_, err := f.service.Approve(context.Background(), id)
	assert.ErrorIs(t, err, customError.ErrPaymentNotFound)
}
