package dispatcher

import "carpark/backend/libs/changefeed"

// Decision classifies one session mutation record.
type Decision int

const (
	// DecisionIgnore covers deletes, still-open sessions, and malformed
	// records.
	DecisionIgnore Decision = iota
	// DecisionAlreadyClosed marks a re-save of a session that was closed
	// before this mutation, such as an unrelated field edit.
	DecisionAlreadyClosed
	// DecisionNotify marks the genuine first transition into payment due.
	DecisionNotify
)

// Classify inspects only the before/after pair, so re-evaluating the same
// record always yields the same decision.
//
// A record is a genuine payment-due transition iff the after image carries
// both exit_time and payment_due, and either the record is an insert (the
// row was created already closed) or it is a modify whose before image was
// still open.
func Classify(rec changefeed.Record) Decision {
	if rec.Kind == changefeed.ChangeDelete {
		return DecisionIgnore
	}
	if !rec.After.Closed() {
		return DecisionIgnore
	}

	switch rec.Kind {
	case changefeed.ChangeInsert:
		return DecisionNotify
	case changefeed.ChangeModify:
		if rec.Before == nil {
			return DecisionIgnore
		}
		if rec.Before.Closed() {
			return DecisionAlreadyClosed
		}
		return DecisionNotify
	}
	return DecisionIgnore
}
