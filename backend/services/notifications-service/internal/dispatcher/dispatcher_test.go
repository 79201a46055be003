package dispatcher

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"carpark/backend/libs/changefeed"
)

type fakeDirectory struct {
	owners map[string]Owner
	err    error
}

func (f *fakeDirectory) OwnerByPlate(_ context.Context, plate string) (*Owner, error) {
	if f.err != nil {
		return nil, f.err
	}
	if owner, ok := f.owners[plate]; ok {
		return &owner, nil
	}
	return nil, nil
}

type fakePublisher struct {
	published []publishCall
	err       error
}

type publishCall struct {
	subject      string
	notification Notification
}

func (f *fakePublisher) Publish(_ context.Context, subject string, notification Notification) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, publishCall{subject: subject, notification: notification})
	return nil
}

func closingRecord(sessionID string, paymentDue float64) changefeed.Record {
	return changefeed.Record{
		Kind:   changefeed.ChangeModify,
		Before: openImage(sessionID),
		After:  closedImage(sessionID, paymentDue),
	}
}

func TestHandleMutationPublishesOnClose(t *testing.T) {
	directory := &fakeDirectory{owners: map[string]Owner{
		"AB12CDE": {Name: "Sam Driver", Contact: "sam@example.com"},
	}}
	publisher := &fakePublisher{}
	d := NewDispatcher(directory, publisher, zap.NewNop())

	if err := d.HandleMutation(context.Background(), closingRecord("s1", 4)); err != nil {
		t.Fatalf("HandleMutation: %v", err)
	}

	if len(publisher.published) != 1 {
		t.Fatalf("published %d notifications, want 1", len(publisher.published))
	}
	got := publisher.published[0]
	if got.subject != "Parking Payment Due for AB12CDE" {
		t.Errorf("subject = %q", got.subject)
	}
	if got.notification.PaymentDue != 4 {
		t.Errorf("PaymentDue = %v, want 4", got.notification.PaymentDue)
	}
	if got.notification.OwnerName != "Sam Driver" || got.notification.Contact != "sam@example.com" {
		t.Errorf("owner = %q/%q", got.notification.OwnerName, got.notification.Contact)
	}
	if got.notification.Message != "Your parking session for AB12CDE has ended. Payment due: $4" {
		t.Errorf("message = %q", got.notification.Message)
	}
}

func TestHandleMutationUnknownOwnerGetsPlaceholders(t *testing.T) {
	publisher := &fakePublisher{}
	d := NewDispatcher(&fakeDirectory{}, publisher, zap.NewNop())

	if err := d.HandleMutation(context.Background(), closingRecord("s1", 4)); err != nil {
		t.Fatalf("HandleMutation: %v", err)
	}

	if len(publisher.published) != 1 {
		t.Fatalf("published %d notifications, want 1", len(publisher.published))
	}
	got := publisher.published[0].notification
	if got.OwnerName != PlaceholderOwnerName || got.Contact != PlaceholderContact {
		t.Errorf("owner = %q/%q, want placeholders", got.OwnerName, got.Contact)
	}
}

func TestHandleMutationDirectoryFailureStillPublishes(t *testing.T) {
	publisher := &fakePublisher{}
	d := NewDispatcher(&fakeDirectory{err: errors.New("directory down")}, publisher, zap.NewNop())

	if err := d.HandleMutation(context.Background(), closingRecord("s1", 4)); err != nil {
		t.Fatalf("HandleMutation: %v", err)
	}
	if len(publisher.published) != 1 {
		t.Fatalf("published %d notifications, want 1", len(publisher.published))
	}
	if publisher.published[0].notification.Contact != PlaceholderContact {
		t.Errorf("contact = %q, want placeholder", publisher.published[0].notification.Contact)
	}
}

func TestHandleMutationZeroAmountSuppressed(t *testing.T) {
	publisher := &fakePublisher{}
	d := NewDispatcher(&fakeDirectory{}, publisher, zap.NewNop())

	if err := d.HandleMutation(context.Background(), closingRecord("s1", 0)); err != nil {
		t.Fatalf("HandleMutation: %v", err)
	}
	if len(publisher.published) != 0 {
		t.Fatalf("published %d notifications, want 0 for zero amount", len(publisher.published))
	}
}

func TestHandleMutationIgnoresNonTransitions(t *testing.T) {
	publisher := &fakePublisher{}
	d := NewDispatcher(&fakeDirectory{}, publisher, zap.NewNop())

	records := []changefeed.Record{
		{Kind: changefeed.ChangeInsert, After: openImage("s1")},
		{Kind: changefeed.ChangeModify, Before: closedImage("s1", 4), After: closedImage("s1", 4)},
		{Kind: changefeed.ChangeDelete, Before: closedImage("s1", 4)},
	}
	for _, rec := range records {
		if err := d.HandleMutation(context.Background(), rec); err != nil {
			t.Fatalf("HandleMutation(%s): %v", rec.Kind, err)
		}
	}
	if len(publisher.published) != 0 {
		t.Fatalf("published %d notifications, want 0", len(publisher.published))
	}
}

func TestHandleMutationRedeliveryRepublishes(t *testing.T) {
	// Same mutation record twice yields the same decision both times: one
	// publish per delivery, deduplication is not this layer's contract.
	publisher := &fakePublisher{}
	d := NewDispatcher(&fakeDirectory{}, publisher, zap.NewNop())

	rec := closingRecord("s1", 4)
	for i := 0; i < 2; i++ {
		if err := d.HandleMutation(context.Background(), rec); err != nil {
			t.Fatalf("HandleMutation: %v", err)
		}
	}
	if len(publisher.published) != 2 {
		t.Fatalf("published %d notifications, want 2", len(publisher.published))
	}
}

func TestHandleBatchContinuesPastFailures(t *testing.T) {
	publisher := &fakePublisher{err: errors.New("transport down")}
	d := NewDispatcher(&fakeDirectory{}, publisher, zap.NewNop())

	records := []changefeed.Record{
		closingRecord("s1", 4),
		closingRecord("s2", 6),
	}
	if err := d.HandleBatch(context.Background(), records); err != nil {
		t.Fatalf("HandleBatch must not surface record-level failures, got %v", err)
	}

	publisher.err = nil
	if err := d.HandleBatch(context.Background(), records); err != nil {
		t.Fatalf("HandleBatch: %v", err)
	}
	if len(publisher.published) != 2 {
		t.Fatalf("published %d notifications, want 2", len(publisher.published))
	}
}

func TestHandleBatchBillingExample(t *testing.T) {
	// Entry at t=1000, exit at t=5000: 2 hours at rate 2 gives amount 4.
	publisher := &fakePublisher{}
	d := NewDispatcher(&fakeDirectory{}, publisher, zap.NewNop())

	exitTime := int64(5000)
	durationHours := int64(2)
	paymentDue := float64(4)
	rec := changefeed.Record{
		Kind:   changefeed.ChangeModify,
		Before: openImage("s1"),
		After: &changefeed.SessionImage{
			SessionID:       "s1",
			CarRegistration: "AB12CDE",
			EntryTime:       1000,
			ExitTime:        &exitTime,
			DurationHours:   &durationHours,
			PaymentDue:      &paymentDue,
		},
	}

	if err := d.HandleBatch(context.Background(), []changefeed.Record{rec}); err != nil {
		t.Fatalf("HandleBatch: %v", err)
	}
	if len(publisher.published) != 1 {
		t.Fatalf("published %d notifications, want exactly 1", len(publisher.published))
	}
	got := publisher.published[0].notification
	if got.CarRegistration != "AB12CDE" || got.PaymentDue != 4 || got.ExitTime != 5000 {
		t.Errorf("notification = %+v", got)
	}
}
