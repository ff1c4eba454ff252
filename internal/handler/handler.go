package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/danqs/tax-engine/internal/service"
	"github.com/danqs/tax-engine/pkg/utils"
)

// TaxHandler carries the services behind the REST surface and the
// request validator.
type TaxHandler struct {
	rules     *service.RuleService
	filings   *service.FilingService
	payments  *service.PaymentService
	schedules *service.ScheduleService
	users     *service.UserService
	validator *validator.Validate
}

func NewTaxHandler(
	rules *service.RuleService,
	filings *service.FilingService,
	payments *service.PaymentService,
	schedules *service.ScheduleService,
	users *service.UserService,
) *TaxHandler {
	return &TaxHandler{
		rules:     rules,
		filings:   filings,
		payments:  payments,
		schedules: schedules,
		users:     users,
		validator: newValidator(),
	}
}

// newValidator registers the decimal and filing-period validations used
// by the request DTO tags.
func newValidator() *validator.Validate {
	v := validator.New()

	_ = v.RegisterValidation("dgt", func(fl validator.FieldLevel) bool {
		d, ok := fl.Field().Interface().(decimal.Decimal)
		return ok && d.IsPositive()
	})

	_ = v.RegisterValidation("dgte", func(fl validator.FieldLevel) bool {
		d, ok := fl.Field().Interface().(decimal.Decimal)
		return ok && !d.IsNegative()
	})

	_ = v.RegisterValidation("filing_period", func(fl validator.FieldLevel) bool {
		_, err := utils.ParseFilingPeriod(fl.Field().String())
		return err == nil
	})

	return v
}
