package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"carpark/backend/services/profile-service/internal/http/middleware"
	"carpark/backend/services/profile-service/internal/models"
	"carpark/backend/services/profile-service/internal/repository"
	"carpark/backend/services/profile-service/internal/service"
)

// ProfileHandler serves GET and PUT /profile for the authenticated owner.
type ProfileHandler struct {
	service *service.ProfileService
	logger  *zap.Logger
}

// NewProfileHandler builds handler.
func NewProfileHandler(svc *service.ProfileService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{service: svc, logger: logger}
}

type profileResponse struct {
	ID        int64    `json:"id"`
	Email     string   `json:"email"`
	Name      string   `json:"name"`
	RegPlates []string `json:"reg_plates"`
}

// ServeHTTP dispatches on method; the router registers a single /profile
// path for both reads and writes.
func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, userID)
	case http.MethodPut:
		h.update(w, r, userID)
	default:
		w.Header().Set("Allow", "GET, PUT")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *ProfileHandler) get(w http.ResponseWriter, r *http.Request, userID int64) {
	user, err := h.service.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error("failed to fetch profile", zap.Int64("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch profile")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(user))
}

func (h *ProfileHandler) update(w http.ResponseWriter, r *http.Request, userID int64) {
	var req struct {
		Name      *string  `json:"name"`
		RegPlates []string `json:"regPlates"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user, err := h.service.Update(r.Context(), userID, req.Name, req.RegPlates)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoFieldsToUpdate):
			writeError(w, http.StatusBadRequest, "no fields to update")
		case errors.Is(err, repository.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "user not found")
		default:
			h.logger.Error("failed to update profile", zap.Int64("user_id", userID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to update profile")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "profile updated",
		"profile": toResponse(user),
	})
}

func toResponse(user *models.User) profileResponse {
	plates := user.RegPlates
	if plates == nil {
		plates = []string{}
	}
	return profileResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		RegPlates: plates,
	}
}
