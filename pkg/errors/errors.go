package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors
var (
	ErrRuleNotFound      = errors.New("tax rule not found")
	ErrRuleAlreadyExists = errors.New("active tax rule already exists for category and year")
	ErrInvalidRule       = errors.New("invalid tax rule definition")
	ErrFilingNotFound    = errors.New("tax filing not found")
	ErrInvalidFiling     = errors.New("invalid filing")
	ErrDuplicateFiling   = errors.New("filing already exists for category and period")
	ErrInvalidDecision   = errors.New("review decision must be approved or rejected")
	ErrFilingNotApproved = errors.New("filing is not approved for payment")
	ErrPaymentNotFound   = errors.New("payment not found")
	ErrInvalidPayment    = errors.New("invalid payment amount")
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidUser       = errors.New("invalid user")
	ErrMissingIncome     = errors.New("taxpayer has no declared monthly income")
	ErrNoActiveRule      = errors.New("no active tax rule for category")
	ErrScheduleNotFound  = errors.New("tax schedule not found")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeRuleNotFound      = "RULE_NOT_FOUND"
	ErrCodeRuleAlreadyExists = "RULE_ALREADY_EXISTS"
	ErrCodeInvalidRule       = "INVALID_RULE"
	ErrCodeFilingNotFound    = "FILING_NOT_FOUND"
	ErrCodeInvalidFiling     = "INVALID_FILING"
	ErrCodeDuplicateFiling   = "DUPLICATE_FILING"
	ErrCodeInvalidDecision   = "INVALID_DECISION"
	ErrCodeFilingNotApproved = "FILING_NOT_APPROVED"
	ErrCodePaymentNotFound   = "PAYMENT_NOT_FOUND"
	ErrCodeInvalidPayment    = "INVALID_PAYMENT"
	ErrCodeUserNotFound      = "USER_NOT_FOUND"
	ErrCodeInvalidUser       = "INVALID_USER"
	ErrCodeMissingIncome     = "MISSING_INCOME"
	ErrCodeNoActiveRule      = "NO_ACTIVE_RULE"
	ErrCodeScheduleNotFound  = "SCHEDULE_NOT_FOUND"
	ErrCodeDatabaseError     = "DATABASE_ERROR"
	ErrCodeCacheError        = "CACHE_ERROR"
)

// Wrap common errors with business context
func WrapRuleNotFound(id string) *BusinessError {
	return NewBusinessError(
		ErrCodeRuleNotFound,
		fmt.Sprintf("Tax rule %s not found", id),
		ErrRuleNotFound,
	)
}

func WrapRuleAlreadyExists(category string, year int) *BusinessError {
	return NewBusinessError(
		ErrCodeRuleAlreadyExists,
		fmt.Sprintf("An active %d rule for category %q already exists", year, category),
		ErrRuleAlreadyExists,
	)
}

func WrapInvalidRule(reason string) *BusinessError {
	return NewBusinessError(ErrCodeInvalidRule, reason, ErrInvalidRule)
}

func WrapInvalidFiling(reason string) *BusinessError {
	return NewBusinessError(ErrCodeInvalidFiling, reason, ErrInvalidFiling)
}

func WrapFilingNotFound(id string) *BusinessError {
	return NewBusinessError(
		ErrCodeFilingNotFound,
		fmt.Sprintf("Tax filing %s not found", id),
		ErrFilingNotFound,
	)
}

func WrapDuplicateFiling(category, period string) *BusinessError {
	return NewBusinessError(
		ErrCodeDuplicateFiling,
		fmt.Sprintf("A filing for category %q and period %s already exists", category, period),
		ErrDuplicateFiling,
	)
}

func WrapInvalidDecision(decision string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidDecision,
		fmt.Sprintf("Invalid review decision %q", decision),
		ErrInvalidDecision,
	)
}

func WrapFilingNotApproved(id string) *BusinessError {
	return NewBusinessError(
		ErrCodeFilingNotApproved,
		fmt.Sprintf("Tax filing %s is not approved, payments are not accepted", id),
		ErrFilingNotApproved,
	)
}

func WrapInvalidPayment(reason string) *BusinessError {
	return NewBusinessError(ErrCodeInvalidPayment, reason, ErrInvalidPayment)
}

func WrapPaymentNotFound(id string) *BusinessError {
	return NewBusinessError(
		ErrCodePaymentNotFound,
		fmt.Sprintf("Payment %s not found", id),
		ErrPaymentNotFound,
	)
}

func WrapInvalidUser(reason string) *BusinessError {
	return NewBusinessError(ErrCodeInvalidUser, reason, ErrInvalidUser)
}

func WrapUserNotFound(id string) *BusinessError {
	return NewBusinessError(
		ErrCodeUserNotFound,
		fmt.Sprintf("User %s not found", id),
		ErrUserNotFound,
	)
}

func WrapMissingIncome(id string) *BusinessError {
	return NewBusinessError(
		ErrCodeMissingIncome,
		fmt.Sprintf("Taxpayer %s has no declared monthly income", id),
		ErrMissingIncome,
	)
}

func WrapNoActiveRule(category string, year int) *BusinessError {
	return NewBusinessError(
		ErrCodeNoActiveRule,
		fmt.Sprintf("No active tax rule for category %q in %d", category, year),
		ErrNoActiveRule,
	)
}

func WrapScheduleNotFound(id string) *BusinessError {
	return NewBusinessError(
		ErrCodeScheduleNotFound,
		fmt.Sprintf("Tax schedule %s not found", id),
		ErrScheduleNotFound,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}

// HTTPStatus maps a business error to the status a handler should
// return: validation 400, not-found 404, conflict 409, everything else
// (database, cache, calculation) 500.
func HTTPStatus(err error) int {
	var be *BusinessError
	if !errors.As(err, &be) {
		return http.StatusInternalServerError
	}

	switch be.Code {
	case ErrCodeInvalidRule, ErrCodeInvalidFiling, ErrCodeInvalidDecision, ErrCodeInvalidPayment,
		ErrCodeInvalidUser, ErrCodeFilingNotApproved:
		return http.StatusBadRequest
	case ErrCodeRuleNotFound, ErrCodeFilingNotFound, ErrCodePaymentNotFound,
		ErrCodeUserNotFound, ErrCodeScheduleNotFound:
		return http.StatusNotFound
	case ErrCodeRuleAlreadyExists, ErrCodeDuplicateFiling:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
