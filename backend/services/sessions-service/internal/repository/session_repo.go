package repository

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"carpark/backend/libs/changefeed"
	"carpark/backend/services/sessions-service/internal/models"
)

var (
	// ErrOpenSessionExists signals the conditional entry insert lost to a
	// concurrent open for the same plate.
	ErrOpenSessionExists = errors.New("open session already exists for plate")
	// ErrSessionNotFound indicates no session row matched.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionClosed is returned when closing a session that is already closed.
	ErrSessionClosed = errors.New("session already closed")
)

// SessionRepository persists parking sessions and emits one change-feed
// record per applied mutation. The feed append happens after the SQL write;
// a feed failure is logged but never fails the mutation, since the session
// row stays the source of truth.
type SessionRepository struct {
	db     *sql.DB
	feed   *changefeed.Publisher
	logger *zap.Logger
}

// NewSessionRepository returns repository.
func NewSessionRepository(db *sql.DB, feed *changefeed.Publisher, logger *zap.Logger) *SessionRepository {
	return &SessionRepository{db: db, feed: feed, logger: logger}
}

// CreateEntry conditionally inserts a new open session. The partial unique
// index on (car_registration) WHERE exit_time IS NULL makes the insert a
// no-op when an open session for the plate already exists.
func (r *SessionRepository) CreateEntry(ctx context.Context, session *models.ParkingSession) error {
	const query = `
		INSERT INTO parking_sessions (session_id, car_registration, entry_time, entry_photo, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT DO NOTHING
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		session.SessionID,
		session.CarRegistration,
		session.EntryTime,
		session.EntryPhoto,
	).Scan(&session.CreatedAt, &session.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrOpenSessionExists
	}
	if err != nil {
		return err
	}

	r.publish(ctx, changefeed.Record{
		Kind:  changefeed.ChangeInsert,
		After: imageOf(session),
	})
	return nil
}

// FindOpenByPlate returns open sessions for the plate, most recently opened
// first. Correct operation yields at most one row.
func (r *SessionRepository) FindOpenByPlate(ctx context.Context, plate string) ([]models.ParkingSession, error) {
	const query = `
		SELECT session_id, car_registration, entry_time, entry_photo, exit_time, duration_hours, payment_due, created_at, updated_at
		FROM parking_sessions
		WHERE car_registration = $1 AND exit_time IS NULL
		ORDER BY entry_time DESC
	`
	rows, err := r.db.QueryContext(ctx, query, plate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSessions(rows)
}

// CloseSession applies the one-way open to closed transition. The WHERE
// clause on exit_time keeps closing fields immutable once set.
func (r *SessionRepository) CloseSession(ctx context.Context, open *models.ParkingSession, exitTime, durationHours int64, paymentDue float64) error {
	const query = `
		UPDATE parking_sessions
		SET exit_time = $2,
		    duration_hours = $3,
		    payment_due = $4,
		    updated_at = NOW()
		WHERE session_id = $1 AND exit_time IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, open.SessionID, exitTime, durationHours, paymentDue)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSessionClosed
	}

	before := imageOf(open)
	after := imageOf(open)
	after.ExitTime = &exitTime
	after.DurationHours = &durationHours
	after.PaymentDue = &paymentDue

	r.publish(ctx, changefeed.Record{
		Kind:   changefeed.ChangeModify,
		Before: before,
		After:  after,
	})

	open.ExitTime = after.ExitTime
	open.DurationHours = after.DurationHours
	open.PaymentDue = after.PaymentDue
	return nil
}

// LatestByPlate returns the most recent session for the plate, open or closed.
func (r *SessionRepository) LatestByPlate(ctx context.Context, plate string) (*models.ParkingSession, error) {
	const query = `
		SELECT session_id, car_registration, entry_time, entry_photo, exit_time, duration_hours, payment_due, created_at, updated_at
		FROM parking_sessions
		WHERE car_registration = $1
		ORDER BY entry_time DESC
		LIMIT 1
	`
	row := r.db.QueryRowContext(ctx, query, plate)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// ListOpen returns currently open sessions, newest entries first.
func (r *SessionRepository) ListOpen(ctx context.Context, limit int) ([]models.ParkingSession, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
		SELECT session_id, car_registration, entry_time, entry_photo, exit_time, duration_hours, payment_due, created_at, updated_at
		FROM parking_sessions
		WHERE exit_time IS NULL
		ORDER BY entry_time DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSessions(rows)
}

func (r *SessionRepository) publish(ctx context.Context, rec changefeed.Record) {
	if r.feed == nil {
		return
	}
	if err := r.feed.Publish(ctx, rec); err != nil {
		r.logger.Error("failed to publish session mutation",
			zap.String("kind", string(rec.Kind)),
			zap.Error(err),
		)
	}
}

func imageOf(s *models.ParkingSession) *changefeed.SessionImage {
	return &changefeed.SessionImage{
		SessionID:       s.SessionID,
		CarRegistration: s.CarRegistration,
		EntryTime:       s.EntryTime,
		EntryPhoto:      s.EntryPhoto,
		ExitTime:        s.ExitTime,
		DurationHours:   s.DurationHours,
		PaymentDue:      s.PaymentDue,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*models.ParkingSession, error) {
	var s models.ParkingSession
	if err := row.Scan(
		&s.SessionID,
		&s.CarRegistration,
		&s.EntryTime,
		&s.EntryPhoto,
		&s.ExitTime,
		&s.DurationHours,
		&s.PaymentDue,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

func scanSessions(rows *sql.Rows) ([]models.ParkingSession, error) {
	var sessions []models.ParkingSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}
