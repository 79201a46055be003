package dispatcher

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"carpark/backend/libs/changefeed"
)

// Placeholder contact fields used when the owner directory has no entry for
// the plate.
const (
	PlaceholderOwnerName = "Car Owner"
	PlaceholderContact   = "Unknown"
)

// Owner is the registered keeper of a plate.
type Owner struct {
	Name    string
	Contact string
}

// OwnerDirectory resolves a registration plate to its owner. A missing
// owner returns (nil, nil), not an error.
type OwnerDirectory interface {
	OwnerByPlate(ctx context.Context, plate string) (*Owner, error)
}

// Publisher delivers one notification to the outbound topic.
type Publisher interface {
	Publish(ctx context.Context, subject string, notification Notification) error
}

// Notification is the payment-due payload published per closing mutation.
type Notification struct {
	SessionID       string  `json:"session_id"`
	CarRegistration string  `json:"car_registration"`
	EntryTime       int64   `json:"entry_time"`
	ExitTime        int64   `json:"exit_time"`
	DurationHours   int64   `json:"duration_hours"`
	PaymentDue      float64 `json:"payment_due"`
	OwnerName       string  `json:"owner_name"`
	Contact         string  `json:"contact"`
	Message         string  `json:"message"`
}

// Dispatcher turns genuine payment-due transitions from the session change
// feed into notifications. It publishes once per distinct closing mutation;
// redelivery of the same mutation republishes, so end-to-end at-most-once
// requires a dedup layer downstream.
type Dispatcher struct {
	owners    OwnerDirectory
	publisher Publisher
	logger    *zap.Logger
}

// NewDispatcher builds dispatcher.
func NewDispatcher(owners OwnerDirectory, publisher Publisher, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		owners:    owners,
		publisher: publisher,
		logger:    logger,
	}
}

// HandleBatch evaluates every record independently. A record-level failure
// is logged and never blocks the rest of the batch, so the batch itself
// always succeeds.
func (d *Dispatcher) HandleBatch(ctx context.Context, records []changefeed.Record) error {
	for _, rec := range records {
		if err := d.HandleMutation(ctx, rec); err != nil {
			d.logger.Error("failed to handle session mutation",
				zap.String("kind", string(rec.Kind)),
				zap.Error(err),
			)
		}
	}
	return nil
}

// HandleMutation classifies one mutation record and publishes a single
// notification when it is the genuine first close of the session.
func (d *Dispatcher) HandleMutation(ctx context.Context, rec changefeed.Record) error {
	switch Classify(rec) {
	case DecisionIgnore:
		return nil
	case DecisionAlreadyClosed:
		d.logger.Debug("skipping re-save of closed session",
			zap.String("session_id", rec.After.SessionID),
		)
		return nil
	case DecisionNotify:
	}

	after := rec.After
	if *after.PaymentDue <= 0 {
		// No fee, no notice.
		d.logger.Debug("suppressing zero-amount notification",
			zap.String("session_id", after.SessionID),
		)
		return nil
	}

	notification := d.buildNotification(ctx, after)
	subject := fmt.Sprintf("Parking Payment Due for %s", after.CarRegistration)
	if err := d.publisher.Publish(ctx, subject, notification); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}

	d.logger.Info("payment notification published",
		zap.String("session_id", after.SessionID),
		zap.String("car_registration", after.CarRegistration),
		zap.Float64("payment_due", *after.PaymentDue),
	)
	return nil
}

func (d *Dispatcher) buildNotification(ctx context.Context, after *changefeed.SessionImage) Notification {
	ownerName := PlaceholderOwnerName
	contact := PlaceholderContact
	owner, err := d.owners.OwnerByPlate(ctx, after.CarRegistration)
	if err != nil {
		// Degrade to placeholders; the amount still has to go out.
		d.logger.Warn("owner lookup failed",
			zap.String("car_registration", after.CarRegistration),
			zap.Error(err),
		)
	} else if owner != nil {
		if owner.Name != "" {
			ownerName = owner.Name
		}
		if owner.Contact != "" {
			contact = owner.Contact
		}
	}

	var durationHours int64
	if after.DurationHours != nil {
		durationHours = *after.DurationHours
	}

	return Notification{
		SessionID:       after.SessionID,
		CarRegistration: after.CarRegistration,
		EntryTime:       after.EntryTime,
		ExitTime:        *after.ExitTime,
		DurationHours:   durationHours,
		PaymentDue:      *after.PaymentDue,
		OwnerName:       ownerName,
		Contact:         contact,
		Message:         fmt.Sprintf("Your parking session for %s has ended. Payment due: $%g", after.CarRegistration, *after.PaymentDue),
	}
}
