package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"carpark/backend/services/sessions-service/internal/repository"
	"carpark/backend/services/sessions-service/internal/service"
)

// PlateDetector maps an image reference to an optional plate string.
type PlateDetector interface {
	DetectPlate(ctx context.Context, imageRef string) (plate string, ok bool, err error)
}

// DetectionsHandler receives image-upload events and feeds the lifecycle
// engine.
type DetectionsHandler struct {
	detector PlateDetector
	service  *service.SessionsService
	logger   *zap.Logger
}

// NewDetectionsHandler builds handler.
func NewDetectionsHandler(detector PlateDetector, svc *service.SessionsService, logger *zap.Logger) *DetectionsHandler {
	return &DetectionsHandler{
		detector: detector,
		service:  svc,
		logger:   logger,
	}
}

type detectionRequest struct {
	ImageRef   string `json:"image_ref"`
	ObservedAt int64  `json:"observed_at,omitempty"`
}

// ServeHTTP handles POST /internal/detections.
func (h *DetectionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req detectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.ImageRef) == "" {
		writeError(w, http.StatusBadRequest, "image_ref required")
		return
	}

	plate, ok, err := h.detector.DetectPlate(r.Context(), req.ImageRef)
	if err != nil {
		h.logger.Error("plate recognition failed", zap.String("image_ref", req.ImageRef), zap.Error(err))
		writeError(w, http.StatusBadGateway, "plate recognition failed")
		return
	}
	if !ok {
		writeError(w, http.StatusBadRequest, "no registration plate detected")
		return
	}

	observedAt := req.ObservedAt
	if observedAt == 0 {
		observedAt = time.Now().Unix()
	}

	outcome, err := h.service.RecordDetection(r.Context(), plate, observedAt, req.ImageRef)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlateRequired), errors.Is(err, service.ErrInvalidTimestamp):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, repository.ErrOpenSessionExists), errors.Is(err, repository.ErrSessionClosed):
			// Lost a race with a duplicate frame; the caller retries.
			writeError(w, http.StatusConflict, "concurrent detection for plate, retry")
		default:
			h.logger.Error("failed to record detection", zap.String("car_registration", plate), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to record detection")
		}
		return
	}

	writeJSON(w, http.StatusOK, outcome)
}
