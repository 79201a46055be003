package changefeed

import "encoding/json"

// ChangeKind labels a session store mutation.
type ChangeKind string

// Mutation kinds delivered by the feed.
const (
	ChangeInsert ChangeKind = "INSERT"
	ChangeModify ChangeKind = "MODIFY"
	ChangeDelete ChangeKind = "DELETE"
)

// SessionImage is a point-in-time snapshot of a parking session row as it
// appears in a mutation record. Optional fields are pointers so "absent"
// stays distinguishable from zero.
type SessionImage struct {
	SessionID       string   `json:"session_id"`
	CarRegistration string   `json:"car_registration"`
	EntryTime       int64    `json:"entry_time"`
	EntryPhoto      string   `json:"entry_photo,omitempty"`
	ExitTime        *int64   `json:"exit_time,omitempty"`
	DurationHours   *int64   `json:"duration_hours,omitempty"`
	PaymentDue      *float64 `json:"payment_due,omitempty"`
}

// Closed reports whether the image carries the full set of closing fields.
func (img *SessionImage) Closed() bool {
	return img != nil && img.ExitTime != nil && img.PaymentDue != nil
}

// Record is one before/after mutation pair from the session store feed.
// Before is nil for inserts; After is nil for deletes.
type Record struct {
	Kind   ChangeKind    `json:"kind"`
	Before *SessionImage `json:"before,omitempty"`
	After  *SessionImage `json:"after,omitempty"`
}

// Encode serializes the record for the stream payload field.
func (r Record) Encode() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeRecord parses a stream payload field back into a Record.
func DecodeRecord(payload string) (Record, error) {
	var rec Record
	err := json.Unmarshal([]byte(payload), &rec)
	return rec, err
}
