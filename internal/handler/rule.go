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

// CreateRule handles POST /api/v1/rules
func (h *TaxHandler) CreateRule(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	rule, err := h.rules.Create(r.Context(), &request)
	if err != nil {
		response.Error(w, customError.HTTPStatus(err), "Failed to create tax rule", err)
		return
	}

	response.Created(w, rule)
}

// UpdateRule handles PUT /api/v1/rules/{id}
func (h *TaxHandler) UpdateRule(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid rule id", err)
		return
	}

	var request domain.UpdateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	rule, err := h.rules.Update(r.Context(), id, &request)
	if err != nil {
		response.Error(w, customError.HTTPStatus(err), "Failed to update tax rule", err)
		return
	}

	response.Success(w, rule)
}

// ListRules handles GET /api/v1/rules
func (h *TaxHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.rules.List(r.Context())
	if err != nil {
		response.Error(w, customError.HTTPStatus(err), "Failed to list tax rules", err)
		return
	}

	response.Success(w, rules)
}

// DeleteRule handles DELETE /api/v1/rules/{id} (soft deactivate)
func (h *TaxHandler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid rule id", err)
		return
	}

	if err := h.rules.Deactivate(r.Context(), id); err != nil {
		response.Error(w, customError.HTTPStatus(err), "Failed to deactivate tax rule", err)
		return
	}

	response.Success(w, map[string]string{"id": id.String(), "status": "deactivated"})
}
