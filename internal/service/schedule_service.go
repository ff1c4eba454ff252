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

	"github.com/danqs/tax-engine/internal/config"
	"github.com/danqs/tax-engine/internal/domain"
	"github.com/danqs/tax-engine/internal/repository"
	customError "github.com/danqs/tax-engine/pkg/errors"
	"github.com/danqs/tax-engine/pkg/utils"
)

// ScheduleService generates periodic filing obligations per taxpayer and
// drives the cron jobs that mark overdue schedules and send due
// reminders.
type ScheduleService struct {
	scheduleRepo repository.ScheduleRepository
	userRepo     repository.UserRepository
	notifRepo    repository.NotificationRepository
	config       *config.Config
	now          func() time.Time
}

func NewScheduleService(
	scheduleRepo repository.ScheduleRepository,
	userRepo repository.UserRepository,
	notifRepo repository.NotificationRepository,
	config *config.Config,
) *ScheduleService {
	return &ScheduleService{
		scheduleRepo: scheduleRepo,
		userRepo:     userRepo,
		notifRepo:    notifRepo,
		config:       config,
		now:          time.Now,
	}
}

// GenerateInitial creates one schedule per declared tax category for a
// taxpayer, skipping categories that already have a schedule overlapping
// the current period. Calling it twice in the same period creates
// nothing new.
func (s *ScheduleService) GenerateInitial(ctx context.Context, userID uuid.UUID) ([]*domain.TaxSchedule, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapUserNotFound(userID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	now := s.now()
	created := make([]*domain.TaxSchedule, 0, len(user.TaxCategories))

	for _, raw := range user.TaxCategories {
		category := strings.ToLower(strings.TrimSpace(raw))

		frequency, ok := domain.CategoryFrequency[category]
		if !ok {
			log.Printf("no filing frequency for category %q, skipping", category)
			continue
		}

		_, err := s.scheduleRepo.FindOverlapping(ctx, userID, category, now)
		if err == nil {
			continue // a schedule for this period already exists
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapDatabaseError(err)
		}

		periodEnd := utils.AddFrequency(now, frequency)
		schedule := &domain.TaxSchedule{
			ID:          uuid.New(),
			TaxpayerID:  userID,
			TaxCategory: category,
			PeriodStart: now,
			PeriodEnd:   periodEnd,
			DueDate:     periodEnd,
			Status:      domain.ScheduleStatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := s.scheduleRepo.Create(ctx, schedule); err != nil {
			return nil, customError.WrapDatabaseError(err)
		}

		created = append(created, schedule)
		s.notifySchedule(ctx, schedule)
	}

	return created, nil
}

// PendingForUser returns a taxpayer's pending and overdue schedules.
func (s *ScheduleService) PendingForUser(ctx context.Context, userID uuid.UUID) ([]*domain.TaxSchedule, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapUserNotFound(userID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	schedules, err := s.scheduleRepo.ListPendingByTaxpayer(ctx, userID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return schedules, nil
}

// MarkOverdue flips pending schedules past their due date to overdue.
// Cron job body, runs daily.
func (s *ScheduleService) MarkOverdue(ctx context.Context) (int64, error) {
	count, err := s.scheduleRepo.MarkOverdue(ctx, s.now())
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	if count > 0 {
		log.Printf("marked %d schedule(s) overdue", count)
	}

	return count, nil
}

// SendDueReminders notifies taxpayers whose schedules fall due within
// the reminder window, once per schedule. Cron job body.
func (s *ScheduleService) SendDueReminders(ctx context.Context) (int, error) {
	now := s.now()
	windowEnd := now.AddDate(0, 0, s.config.Business.ReminderWindowDays)

	due, err := s.scheduleRepo.ListDueBetween(ctx, now, windowEnd)
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	sent := 0
	for _, schedule := range due {
		notification := &domain.Notification{
			ID:        uuid.New(),
			UserID:    schedule.TaxpayerID,
			Type:      domain.NotificationDueReminder,
			Title:     "Tax filing due soon",
			Message:   fmt.Sprintf("Your %s filing is due on %s", schedule.TaxCategory, schedule.DueDate.Format("2006-01-02")),
			CreatedAt: now,
		}

		if err := s.notifRepo.Create(ctx, notification); err != nil {
			log.Printf("failed to create reminder for schedule %s: %v", schedule.ID, err)
			continue
		}

		if err := s.scheduleRepo.MarkReminderSent(ctx, schedule.ID); err != nil {
			log.Printf("failed to flag reminder for schedule %s: %v", schedule.ID, err)
			continue
		}

		sent++
	}

	return sent, nil
}

func (s *ScheduleService) notifySchedule(ctx context.Context, schedule *domain.TaxSchedule) {
	notification := &domain.Notification{
		ID:        uuid.New(),
		UserID:    schedule.TaxpayerID,
		Type:      domain.NotificationScheduleCreated,
		Title:     "New tax schedule",
		Message:   fmt.Sprintf("A %s filing obligation was created, due %s", schedule.TaxCategory, schedule.DueDate.Format("2006-01-02")),
		CreatedAt: s.now(),
	}

	if err := s.notifRepo.Create(ctx, notification); err != nil {
		log.Printf("failed to create schedule notification for %s: %v", schedule.ID, err)
	}
}
