package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	ScheduleStatusPending = "pending"
	ScheduleStatusFiled   = "filed"
	ScheduleStatusPaid    = "paid"
	ScheduleStatusOverdue = "overdue"
)

// Filing frequency per tax category. Categories missing from the map do
// not generate schedules.
const (
	FrequencyMonthly   = "monthly"
	FrequencyQuarterly = "quarterly"
	FrequencyYearly    = "yearly"
)

// CategoryFrequency maps a tax category to how often a filing is due.
var CategoryFrequency = map[string]string{
	"vat":      FrequencyMonthly,
	"business": FrequencyQuarterly,
	"personal": FrequencyYearly,
	"property": FrequencyYearly,
}

// TaxSchedule is a system-generated obligation to file for one category
// in one period. DueDate equals PeriodEnd.
type TaxSchedule struct {
	ID           uuid.UUID `json:"id" db:"id"`
	TaxpayerID   uuid.UUID `json:"taxpayer_id" db:"taxpayer_id"`
	TaxCategory  string    `json:"tax_category" db:"tax_category"`
	PeriodStart  time.Time `json:"period_start" db:"period_start"`
	PeriodEnd    time.Time `json:"period_end" db:"period_end"`
	DueDate      time.Time `json:"due_date" db:"due_date"`
	Status       string    `json:"status" db:"status"`
	ReminderSent bool      `json:"reminder_sent" db:"reminder_sent"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type PendingSchedulesResponse struct {
	TaxpayerID uuid.UUID      `json:"taxpayer_id"`
	Schedules  []*TaxSchedule `json:"schedules"`
}
