package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusinessError_Unwrap(t *testing.T) {
	err := WrapDuplicateFiling("vat", "2025-03")

	assert.ErrorIs(t, err, ErrDuplicateFiling)
	assert.Equal(t, ErrCodeDuplicateFiling, err.Code)
	assert.Contains(t, err.Error(), "2025-03")
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{WrapInvalidRule("bad brackets"), http.StatusBadRequest},
		{WrapInvalidFiling("bad period"), http.StatusBadRequest},
		{WrapInvalidDecision("maybe"), http.StatusBadRequest},
		{WrapInvalidPayment("negative amount"), http.StatusBadRequest},
		{WrapInvalidUser("unknown role"), http.StatusBadRequest},
		{WrapFilingNotApproved("abc"), http.StatusBadRequest},
		{WrapRuleNotFound("abc"), http.StatusNotFound},
		{WrapFilingNotFound("abc"), http.StatusNotFound},
		{WrapPaymentNotFound("abc"), http.StatusNotFound},
		{WrapUserNotFound("abc"), http.StatusNotFound},
		{WrapScheduleNotFound("abc"), http.StatusNotFound},
		{WrapRuleAlreadyExists("vat", 2025), http.StatusConflict},
		{WrapDuplicateFiling("vat", "2025-03"), http.StatusConflict},
		{WrapDatabaseError(errors.New("boom")), http.StatusInternalServerError},
		{WrapNoActiveRule("vat", 2025), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), tt.err.Error())
	}
}

func TestHTTPStatus_WrappedDeeper(t *testing.T) {
	err := fmt.Errorf("review filing: %w", WrapFilingNotFound("abc"))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
}
