package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/danqs/tax-engine/internal/domain"
)

type MockRuleRepository struct {
	mock.Mock
}

func (m *MockRuleRepository) Create(ctx context.Context, rule *domain.TaxRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockRuleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.TaxRule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TaxRule), args.Error(1)
}

func (m *MockRuleRepository) GetActive(ctx context.Context, category string, year int) (*domain.TaxRule, error) {
	args := m.Called(ctx, category, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TaxRule), args.Error(1)
}

func (m *MockRuleRepository) List(ctx context.Context) ([]*domain.TaxRule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.TaxRule), args.Error(1)
}

func (m *MockRuleRepository) Update(ctx context.Context, rule *domain.TaxRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockRuleRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockFilingRepository struct {
	mock.Mock
}

func (m *MockFilingRepository) Create(ctx context.Context, filing *domain.TaxFiling) error {
	args := m.Called(ctx, filing)
	return args.Error(0)
}

func (m *MockFilingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.TaxFiling, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TaxFiling), args.Error(1)
}

func (m *MockFilingRepository) Exists(ctx context.Context, taxpayerID uuid.UUID, category, period string) (bool, error) {
	args := m.Called(ctx, taxpayerID, category, period)
	return args.Bool(0), args.Error(1)
}

func (m *MockFilingRepository) UpdateReview(ctx context.Context, id uuid.UUID, status, remarks string, calculatedTax decimal.NullDecimal) error {
	args := m.Called(ctx, id, status, remarks, calculatedTax)
	return args.Error(0)
}

func (m *MockFilingRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, paymentStatus string) error {
	args := m.Called(ctx, id, paymentStatus)
	return args.Error(0)
}

func (m *MockFilingRepository) ListByTaxpayer(ctx context.Context, taxpayerID uuid.UUID) ([]*domain.TaxFiling, error) {
	args := m.Called(ctx, taxpayerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.TaxFiling), args.Error(1)
}

type MockScheduleRepository struct {
	mock.Mock
}

func (m *MockScheduleRepository) Create(ctx context.Context, schedule *domain.TaxSchedule) error {
	args := m.Called(ctx, schedule)
	return args.Error(0)
}

func (m *MockScheduleRepository) FindOverlapping(ctx context.Context, taxpayerID uuid.UUID, category string, at time.Time) (*domain.TaxSchedule, error) {
	args := m.Called(ctx, taxpayerID, category, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TaxSchedule), args.Error(1)
}

func (m *MockScheduleRepository) ListPendingByTaxpayer(ctx context.Context, taxpayerID uuid.UUID) ([]*domain.TaxSchedule, error) {
	args := m.Called(ctx, taxpayerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.TaxSchedule), args.Error(1)
}

func (m *MockScheduleRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockScheduleRepository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockScheduleRepository) ListDueBetween(ctx context.Context, from, to time.Time) ([]*domain.TaxSchedule, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.TaxSchedule), args.Error(1)
}

func (m *MockScheduleRepository) MarkReminderSent(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) CreateWithLedger(ctx context.Context, payment *domain.Payment, txn *domain.Transaction) error {
	args := m.Called(ctx, payment, txn)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) GetByFilingID(ctx context.Context, filingID uuid.UUID) ([]*domain.Payment, error) {
	args := m.Called(ctx, filingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) GetTotalPaidByFiling(ctx context.Context, filingID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, filingID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentRepository) Approve(ctx context.Context, id uuid.UUID, paymentDate time.Time) error {
	args := m.Called(ctx, id, paymentDate)
	return args.Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Notification), args.Error(1)
}
