package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/danqs/tax-engine/internal/domain"
	"github.com/danqs/tax-engine/internal/repository"
	customError "github.com/danqs/tax-engine/pkg/errors"
)

// UserService registers portal accounts. Registering a taxpayer also
// generates their initial filing schedules.
type UserService struct {
	userRepo  repository.UserRepository
	notifRepo repository.NotificationRepository
	schedules *ScheduleService
	now       func() time.Time
}

func NewUserService(userRepo repository.UserRepository, notifRepo repository.NotificationRepository, schedules *ScheduleService) *UserService {
	return &UserService{
		userRepo:  userRepo,
		notifRepo: notifRepo,
		schedules: schedules,
		now:       time.Now,
	}
}

// Register creates a user. Taxpayers get their initial schedules in the
// same call.
func (s *UserService) Register(ctx context.Context, request *domain.RegisterUserRequest) (*domain.User, []*domain.TaxSchedule, error) {
	role := domain.Role(request.Role)
	if !role.Valid() {
		return nil, nil, customError.WrapInvalidUser("unknown role " + request.Role)
	}

	categories := make(pq.StringArray, 0, len(request.TaxCategories))
	for _, c := range request.TaxCategories {
		categories = append(categories, strings.ToLower(strings.TrimSpace(c)))
	}

	var income decimal.NullDecimal
	if request.MonthlyIncome != nil {
		income = decimal.NewNullDecimal(*request.MonthlyIncome)
	}

	now := s.now()
	user := &domain.User{
		ID:            uuid.New(),
		Email:         strings.ToLower(strings.TrimSpace(request.Email)),
		Name:          request.Name,
		Role:          role,
		TaxCategories: categories,
		MonthlyIncome: income,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}

	var schedules []*domain.TaxSchedule
	switch role {
	case domain.RoleTaxpayer:
		var err error
		schedules, err = s.schedules.GenerateInitial(ctx, user.ID)
		if err != nil {
			return nil, nil, err
		}
	case domain.RoleOfficial, domain.RoleAdmin:
		// no filing obligations for staff accounts
	}

	return user, schedules, nil
}

// GetByID returns a user.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapUserNotFound(id.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return user, nil
}

// Notifications returns a user's notifications, newest first.
func (s *UserService) Notifications(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error) {
	if _, err := s.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	notifications, err := s.notifRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return notifications, nil
}
