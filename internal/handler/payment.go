package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/danqs/tax-engine/internal/domain"
	customError "github.com/danqs/tax-engine/pkg/errors"
	"github.com/danqs/tax-engine/pkg/response"
)

// CreatePayment handles POST /api/v1/payments
func (h *TaxHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var request domain.CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	payment, txn, err := h.payments.Create(r.Context(), &request)
	if err != nil {
		response.Error(w, customError.HTTPStatus(err), "Failed to create payment", err)
		return
	}

	response.Created(w, domain.CreatePaymentResponse{Payment: payment, Transaction: txn})
}

// ApprovePayment handles PUT /api/v1/payments/{id}/approve
func (h *TaxHandler) ApprovePayment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid payment id", err)
		return
	}

	payment, err := h.payments.Approve(r.Context(), id)
	if err != nil {
		response.Error(w, customError.HTTPStatus(err), "Failed to approve payment", err)
		return
	}

	response.Success(w, payment)
}
