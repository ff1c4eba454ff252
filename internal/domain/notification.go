package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotificationFilingReviewed  = "filing_reviewed"
	NotificationPaymentApproved = "payment_approved"
	NotificationScheduleCreated = "schedule_created"
	NotificationDueReminder     = "due_reminder"
)

// Notification is an append-only message to a user. Creation is
// fire-and-forget: a failed insert is logged, never propagated.
type Notification struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Type      string    `json:"type" db:"type"`
	Title     string    `json:"title" db:"title"`
	Message   string    `json:"message" db:"message"`
	Read      bool      `json:"read" db:"read"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
