package models

import "time"

// ParkingSession is one vehicle's parked interval: opened by an entry
// detection, closed by the next detection of the same plate. Closing fields
// are pointers because they are absent while the session is open.
type ParkingSession struct {
	SessionID       string    `db:"session_id" json:"session_id"`
	CarRegistration string    `db:"car_registration" json:"car_registration"`
	EntryTime       int64     `db:"entry_time" json:"entry_time"`
	EntryPhoto      string    `db:"entry_photo" json:"entry_photo,omitempty"`
	ExitTime        *int64    `db:"exit_time" json:"exit_time,omitempty"`
	DurationHours   *int64    `db:"duration_hours" json:"duration_hours,omitempty"`
	PaymentDue      *float64  `db:"payment_due" json:"payment_due,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Open reports whether the session has no recorded exit yet.
func (s *ParkingSession) Open() bool {
	return s.ExitTime == nil
}
