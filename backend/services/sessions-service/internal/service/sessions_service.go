package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"carpark/backend/services/sessions-service/internal/models"
)

// Input validation errors.
var (
	ErrPlateRequired    = errors.New("sessions: plate required")
	ErrInvalidTimestamp = errors.New("sessions: observed_at must be positive")
)

// Outcome kinds for a processed detection.
const (
	OutcomeOpened = "entry_recorded"
	OutcomeClosed = "exit_recorded"
)

// SessionOutcome is the tagged result of a detection. DurationHours and
// PaymentDue are meaningful only when Kind is OutcomeClosed.
type SessionOutcome struct {
	Kind            string  `json:"kind"`
	SessionID       string  `json:"session_id"`
	CarRegistration string  `json:"car_registration"`
	DurationHours   int64   `json:"duration_hours,omitempty"`
	PaymentDue      float64 `json:"payment_due,omitempty"`
}

// SessionStore defines the persistence contract used by the engine.
type SessionStore interface {
	CreateEntry(ctx context.Context, session *models.ParkingSession) error
	FindOpenByPlate(ctx context.Context, plate string) ([]models.ParkingSession, error)
	CloseSession(ctx context.Context, open *models.ParkingSession, exitTime, durationHours int64, paymentDue float64) error
	LatestByPlate(ctx context.Context, plate string) (*models.ParkingSession, error)
	ListOpen(ctx context.Context, limit int) ([]models.ParkingSession, error)
}

// Broadcaster pushes lifecycle events to connected monitor clients.
type Broadcaster interface {
	Broadcast(event interface{})
}

// SessionsService decides whether a plate detection opens or closes a
// session. It performs exactly one store mutation per detection and emits no
// notifications itself; the dispatcher owns those.
type SessionsService struct {
	store      SessionStore
	hourlyRate float64
	monitor    Broadcaster
	logger     *zap.Logger
}

// NewSessionsService builds the engine. monitor may be nil.
func NewSessionsService(store SessionStore, hourlyRate float64, monitor Broadcaster, logger *zap.Logger) *SessionsService {
	if hourlyRate <= 0 {
		hourlyRate = 2
	}
	return &SessionsService{
		store:      store,
		hourlyRate: hourlyRate,
		monitor:    monitor,
		logger:     logger,
	}
}

// RecordDetection processes one plate sighting: no open session for the
// plate opens one, an existing open session is closed with billed duration
// and fee.
func (s *SessionsService) RecordDetection(ctx context.Context, plate string, observedAt int64, photoRef string) (*SessionOutcome, error) {
	plate = strings.TrimSpace(plate)
	if plate == "" {
		return nil, ErrPlateRequired
	}
	if observedAt <= 0 {
		return nil, ErrInvalidTimestamp
	}

	open, err := s.store.FindOpenByPlate(ctx, plate)
	if err != nil {
		return nil, err
	}

	if len(open) == 0 {
		return s.openSession(ctx, plate, observedAt, photoRef)
	}

	if len(open) > 1 {
		// Should be impossible with the store's partial unique index; report
		// and close the most recently opened one.
		s.logger.Error("multiple open sessions for plate",
			zap.String("car_registration", plate),
			zap.Int("count", len(open)),
		)
	}
	return s.closeSession(ctx, &open[0], observedAt)
}

func (s *SessionsService) openSession(ctx context.Context, plate string, observedAt int64, photoRef string) (*SessionOutcome, error) {
	session := &models.ParkingSession{
		SessionID:       uuid.NewString(),
		CarRegistration: plate,
		EntryTime:       observedAt,
		EntryPhoto:      photoRef,
	}
	if err := s.store.CreateEntry(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("entry recorded",
		zap.String("session_id", session.SessionID),
		zap.String("car_registration", plate),
		zap.Int64("entry_time", observedAt),
	)

	outcome := &SessionOutcome{
		Kind:            OutcomeOpened,
		SessionID:       session.SessionID,
		CarRegistration: plate,
	}
	s.broadcast(outcome)
	return outcome, nil
}

func (s *SessionsService) closeSession(ctx context.Context, open *models.ParkingSession, observedAt int64) (*SessionOutcome, error) {
	hours := billableHours(open.EntryTime, observedAt)
	due := float64(hours) * s.hourlyRate

	if err := s.store.CloseSession(ctx, open, observedAt, hours, due); err != nil {
		return nil, err
	}

	s.logger.Info("exit recorded",
		zap.String("session_id", open.SessionID),
		zap.String("car_registration", open.CarRegistration),
		zap.Int64("duration_hours", hours),
		zap.Float64("payment_due", due),
	)

	outcome := &SessionOutcome{
		Kind:            OutcomeClosed,
		SessionID:       open.SessionID,
		CarRegistration: open.CarRegistration,
		DurationHours:   hours,
		PaymentDue:      due,
	}
	s.broadcast(outcome)
	return outcome, nil
}

// LatestSessionForPlate returns the most recent session for the plate.
func (s *SessionsService) LatestSessionForPlate(ctx context.Context, plate string) (*models.ParkingSession, error) {
	plate = strings.TrimSpace(plate)
	if plate == "" {
		return nil, ErrPlateRequired
	}
	return s.store.LatestByPlate(ctx, plate)
}

// OpenSessions returns currently open sessions for the dashboard.
func (s *SessionsService) OpenSessions(ctx context.Context, limit int) ([]models.ParkingSession, error) {
	return s.store.ListOpen(ctx, limit)
}

func (s *SessionsService) broadcast(outcome *SessionOutcome) {
	if s.monitor != nil {
		s.monitor.Broadcast(outcome)
	}
}

// billableHours rounds elapsed seconds up to whole hours with a one hour
// minimum. An exit at or before the recorded entry still bills one hour.
func billableHours(entryTime, exitTime int64) int64 {
	elapsed := exitTime - entryTime
	if elapsed <= 0 {
		return 1
	}
	return (elapsed + 3599) / 3600
}
