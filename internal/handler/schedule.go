package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/danqs/tax-engine/internal/domain"
	customError "github.com/danqs/tax-engine/pkg/errors"
	"github.com/danqs/tax-engine/pkg/response"
)

// PendingSchedules handles GET /api/v1/schedules/pending?user={id}
func (h *TaxHandler) PendingSchedules(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.URL.Query().Get("user"))
	if err != nil {
		response.BadRequest(w, "Invalid or missing user id", err)
		return
	}

	schedules, err := h.schedules.PendingForUser(r.Context(), userID)
	if err != nil {
		response.Error(w, customError.HTTPStatus(err), "Failed to list pending schedules", err)
		return
	}

	response.Success(w, domain.PendingSchedulesResponse{TaxpayerID: userID, Schedules: schedules})
}

// GenerateSchedules handles POST /api/v1/users/{id}/schedules
func (h *TaxHandler) GenerateSchedules(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid user id", err)
		return
	}

	schedules, err := h.schedules.GenerateInitial(r.Context(), userID)
	if err != nil {
		response.Error(w, customError.HTTPStatus(err), "Failed to generate schedules", err)
		return
	}

	response.Created(w, schedules)
}
