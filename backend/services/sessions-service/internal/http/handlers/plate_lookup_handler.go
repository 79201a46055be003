package handlers

import (
	"errors"
	"net/http"

	"carpark/backend/services/sessions-service/internal/repository"
	"carpark/backend/services/sessions-service/internal/service"
)

// NewPlateLookupHandler returns GET /sessions/plate?reg= handler serving the
// most recent session for a registration plate.
func NewPlateLookupHandler(svc *service.SessionsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plate := r.URL.Query().Get("reg")
		if plate == "" {
			writeError(w, http.StatusBadRequest, "reg query parameter required")
			return
		}

		session, err := svc.LatestSessionForPlate(r.Context(), plate)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrPlateRequired):
				writeError(w, http.StatusBadRequest, err.Error())
			case errors.Is(err, repository.ErrSessionNotFound):
				writeError(w, http.StatusNotFound, "no sessions for plate")
			default:
				writeError(w, http.StatusInternalServerError, "failed to look up sessions")
			}
			return
		}

		writeJSON(w, http.StatusOK, session)
	}
}
