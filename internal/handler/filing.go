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

// CreateFiling handles POST /api/v1/filings
func (h *TaxHandler) CreateFiling(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateFilingRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	filing, err := h.filings.Create(r.Context(), &request)
	if err != nil {
		response.Error(w, customError.HTTPStatus(err), "Failed to create filing", err)
		return
	}

	response.Created(w, filing)
}

// ReviewFiling handles POST /api/v1/filings/{id}/review
func (h *TaxHandler) ReviewFiling(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid filing id", err)
		return
	}

	var request domain.ReviewFilingRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	filing, err := h.filings.Review(r.Context(), id, request.Decision, request.Remarks)
	if err != nil {
		response.Error(w, customError.HTTPStatus(err), "Failed to review filing", err)
		return
	}

	response.Success(w, filing)
}

// ListFilings handles GET /api/v1/filings?taxpayer={id}
func (h *TaxHandler) ListFilings(w http.ResponseWriter, r *http.Request) {
	taxpayerID, err := uuid.Parse(r.URL.Query().Get("taxpayer"))
	if err != nil {
		response.BadRequest(w, "Invalid or missing taxpayer id", err)
		return
	}

	filings, err := h.filings.ListByTaxpayer(r.Context(), taxpayerID)
	if err != nil {
		response.Error(w, customError.HTTPStatus(err), "Failed to list filings", err)
		return
	}

	response.Success(w, filings)
}

// GetFiling handles GET /api/v1/filings/{id}
func (h *TaxHandler) GetFiling(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid filing id", err)
		return
	}

	filing, err := h.filings.GetByID(r.Context(), id)
	if err != nil {
		response.Error(w, customError.HTTPStatus(err), "Failed to get filing", err)
		return
	}

	response.Success(w, filing)
}
