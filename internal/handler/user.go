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

// RegisterUser handles POST /api/v1/users
func (h *TaxHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var request domain.RegisterUserRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	user, schedules, err := h.users.Register(r.Context(), &request)
	if err != nil {
		response.Error(w, customError.HTTPStatus(err), "Failed to register user", err)
		return
	}

	response.Created(w, domain.RegisterUserResponse{User: user, Schedules: schedules})
}

// GetUser handles GET /api/v1/users/{id}
func (h *TaxHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid user id", err)
		return
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		response.Error(w, customError.HTTPStatus(err), "Failed to get user", err)
		return
	}

	response.Success(w, user)
}

// ListNotifications handles GET /api/v1/notifications?user={id}
func (h *TaxHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.URL.Query().Get("user"))
	if err != nil {
		response.BadRequest(w, "Invalid or missing user id", err)
		return
	}

	notifications, err := h.users.Notifications(r.Context(), userID)
	if err != nil {
		response.Error(w, customError.HTTPStatus(err), "Failed to list notifications", err)
		return
	}

	response.Success(w, notifications)
}
