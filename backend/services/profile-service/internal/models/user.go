package models

import "time"

// User is a registered car owner. RegPlates lists the registration plates
// the user claims; the notification dispatcher resolves plates against them.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Name         string    `db:"name" json:"name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	RegPlates    []string  `json:"reg_plates"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
