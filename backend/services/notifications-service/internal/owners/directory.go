package owners

import (
	"context"
	"database/sql"
	"errors"

	"carpark/backend/services/notifications-service/internal/dispatcher"
)

// Directory resolves registration plates against the registered-user store.
type Directory struct {
	db *sql.DB
}

// NewDirectory returns plate-to-owner directory.
func NewDirectory(db *sql.DB) *Directory {
	return &Directory{db: db}
}

// OwnerByPlate returns the owner registered for the plate, or (nil, nil)
// when nobody claims it.
func (d *Directory) OwnerByPlate(ctx context.Context, plate string) (*dispatcher.Owner, error) {
	const query = `
		SELECT u.name, u.email
		FROM users u
		JOIN user_plates p ON p.user_id = u.id
		WHERE p.plate = $1
		LIMIT 1
	`
	row := d.db.QueryRowContext(ctx, query, plate)

	var owner dispatcher.Owner
	if err := row.Scan(&owner.Name, &owner.Contact); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &owner, nil
}
