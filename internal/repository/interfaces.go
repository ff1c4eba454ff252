package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/danqs/tax-engine/internal/domain"
)

// RuleRepository defines the interface for tax rule data operations
type RuleRepository interface {
	// Create creates a new tax rule
	Create(ctx context.Context, rule *domain.TaxRule) error

	// GetByID retrieves a rule by id
	GetByID(ctx context.Context, id uuid.UUID) (*domain.TaxRule, error)

	// GetActive retrieves the active rule for a category and year.
	// Category is matched case-insensitively.
	GetActive(ctx context.Context, category string, year int) (*domain.TaxRule, error)

	// List retrieves all rules
	List(ctx context.Context) ([]*domain.TaxRule, error)

	// Update updates a rule
	Update(ctx context.Context, rule *domain.TaxRule) error

	// Deactivate soft-deletes a rule
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// FilingRepository defines the interface for tax filing data operations
type FilingRepository interface {
	// Create creates a new filing
	Create(ctx context.Context, filing *domain.TaxFiling) error

	// GetByID retrieves a filing by id
	GetByID(ctx context.Context, id uuid.UUID) (*domain.TaxFiling, error)

	// Exists reports whether a filing exists for (taxpayer, category, period)
	Exists(ctx context.Context, taxpayerID uuid.UUID, category, period string) (bool, error)

	// UpdateReview persists a review decision, remarks and calculated tax
	UpdateReview(ctx context.Context, id uuid.UUID, status, remarks string, calculatedTax decimal.NullDecimal) error

	// UpdatePaymentStatus sets the derived payment status
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, paymentStatus string) error

	// ListByTaxpayer retrieves all filings for a taxpayer
	ListByTaxpayer(ctx context.Context, taxpayerID uuid.UUID) ([]*domain.TaxFiling, error)
}

// ScheduleRepository defines the interface for tax schedule data operations
type ScheduleRepository interface {
	// Create creates a new schedule
	Create(ctx context.Context, schedule *domain.TaxSchedule) error

	// FindOverlapping finds a schedule for (taxpayer, category) whose
	// period contains the given instant
	FindOverlapping(ctx context.Context, taxpayerID uuid.UUID, category string, at time.Time) (*domain.TaxSchedule, error)

	// ListPendingByTaxpayer retrieves pending and overdue schedules
	ListPendingByTaxpayer(ctx context.Context, taxpayerID uuid.UUID) ([]*domain.TaxSchedule, error)

	// UpdateStatus updates the status of a schedule
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error

	// MarkOverdue flips pending schedules past their due date to overdue
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)

	// ListDueBetween retrieves pending schedules due inside [from, to]
	// that have not been reminded yet
	ListDueBetween(ctx context.Context, from, to time.Time) ([]*domain.TaxSchedule, error)

	// MarkReminderSent flags a schedule as reminded
	MarkReminderSent(ctx context.Context, id uuid.UUID) error
}

// PaymentRepository defines the interface for payment data operations
type PaymentRepository interface {
	// CreateWithLedger inserts the payment and its ledger transaction
	// atomically in one database transaction
	CreateWithLedger(ctx context.Context, payment *domain.Payment, txn *domain.Transaction) error

	// GetByID retrieves a payment by id
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)

	// GetByFilingID retrieves all payments linked to a filing
	GetByFilingID(ctx context.Context, filingID uuid.UUID) ([]*domain.Payment, error)

	// GetTotalPaidByFiling sums payment amounts for a filing
	GetTotalPaidByFiling(ctx context.Context, filingID uuid.UUID) (decimal.Decimal, error)

	// Approve marks a payment paid and stamps the payment date
	Approve(ctx context.Context, id uuid.UUID, paymentDate time.Time) error
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by id
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// NotificationRepository defines the interface for notification data operations
type NotificationRepository interface {
	// Create appends a notification
	Create(ctx context.Context, n *domain.Notification) error

	// ListByUser retrieves notifications for a user, newest first
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error)
}
