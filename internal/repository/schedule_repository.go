package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/danqs/tax-engine/internal/domain"
)

type scheduleRepository struct {
	db *sqlx.DB
}

func NewScheduleRepository(db *sqlx.DB) ScheduleRepository {
	return &scheduleRepository{db: db}
}

func (r *scheduleRepository) Create(ctx context.Context, schedule *domain.TaxSchedule) error {
	query := `
		INSERT INTO tax_schedules (id, taxpayer_id, tax_category, period_start, period_end, due_date, status, reminder_sent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		schedule.ID,
		schedule.TaxpayerID,
		schedule.TaxCategory,
		schedule.PeriodStart,
		schedule.PeriodEnd,
		schedule.DueDate,
		schedule.Status,
		schedule.ReminderSent,
		schedule.CreatedAt,
		schedule.UpdatedAt,
	)

	return err
}

func (r *scheduleRepository) FindOverlapping(ctx context.Context, taxpayerID uuid.UUID, category string, at time.Time) (*domain.TaxSchedule, error) {
	query := `
		SELECT id, taxpayer_id, tax_category, period_start, period_end, due_date, status, reminder_sent, created_at, updated_at
		FROM tax_schedules
		WHERE taxpayer_id = $1 AND LOWER(tax_category) = LOWER($2) AND period_start <= $3 AND period_end >= $3
		ORDER BY period_start
		LIMIT 1
	`

	var schedule domain.TaxSchedule
	err := r.db.GetContext(ctx, &schedule, query, taxpayerID, category, at)
	if err != nil {
		return nil, err
	}

	return &schedule, nil
}

func (r *scheduleRepository) ListPendingByTaxpayer(ctx context.Context, taxpayerID uuid.UUID) ([]*domain.TaxSchedule, error) {
	query := `
		SELECT id, taxpayer_id, tax_category, period_start, period_end, due_date, status, reminder_sent, created_at, updated_at
		FROM tax_schedules
		WHERE taxpayer_id = $1 AND status IN ('pending', 'overdue')
		ORDER BY due_date
	`

	var schedules []*domain.TaxSchedule
	err := r.db.SelectContext(ctx, &schedules, query, taxpayerID)
	if err != nil {
		return nil, err
	}

	return schedules, nil
}

func (r *scheduleRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `
		UPDATE tax_schedules
		SET status = $2, updated_at = $3
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, status, time.Now())
	return err
}

func (r *scheduleRepository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE tax_schedules
		SET status = 'overdue', updated_at = $1
		WHERE status = 'pending' AND due_date < $1
	`

	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func (r *scheduleRepository) ListDueBetween(ctx context.Context, from, to time.Time) ([]*domain.TaxSchedule, error) {
	query := `
		SELECT id, taxpayer_id, tax_category, period_start, period_end, due_date, status, reminder_sent, created_at, updated_at
		FROM tax_schedules
		WHERE status = 'pending' AND reminder_sent = false AND due_date BETWEEN $1 AND $2
		ORDER BY due_date
	`

	var schedules []*domain.TaxSchedule
	err := r.db.SelectContext(ctx, &schedules, query, from, to)
	if err != nil {
		return nil, err
	}

	return schedules, nil
}

func (r *scheduleRepository) MarkReminderSent(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE tax_schedules
		SET reminder_sent = true, updated_at = $2
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, time.Now())
	return err
}
