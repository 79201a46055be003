package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"carpark/backend/services/profile-service/internal/models"
)

// ErrUserNotFound represents missing user rows.
var ErrUserNotFound = errors.New("user not found")

// UserRepository handles CRUD for users and their registered plates.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository returns repository instance.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	const query = `
		INSERT INTO users (email, name, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, query, user.Email, user.Name, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

// GetByEmail fetches a user by email, plates included.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = `
		SELECT id, email, name, password_hash, created_at, updated_at
		FROM users
		WHERE email = $1
		LIMIT 1
	`
	return r.getOne(ctx, query, strings.ToLower(strings.TrimSpace(email)))
}

// GetByID fetches a user by id, plates included.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	const query = `
		SELECT id, email, name, password_hash, created_at, updated_at
		FROM users
		WHERE id = $1
		LIMIT 1
	`
	return r.getOne(ctx, query, id)
}

// UpdateProfile applies the provided fields. A nil name leaves the name
// unchanged; a nil plates slice leaves the plate list unchanged, while an
// empty non-nil slice clears it.
func (r *UserRepository) UpdateProfile(ctx context.Context, userID int64, name *string, plates []string) (*models.User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if name != nil {
		const query = `UPDATE users SET name = $2, updated_at = NOW() WHERE id = $1`
		result, err := tx.ExecContext(ctx, query, userID, *name)
		if err != nil {
			return nil, err
		}
		if affected, err := result.RowsAffected(); err != nil {
			return nil, err
		} else if affected == 0 {
			return nil, ErrUserNotFound
		}
	}

	if plates != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM user_plates WHERE user_id = $1`, userID); err != nil {
			return nil, err
		}
		const insert = `INSERT INTO user_plates (user_id, plate) VALUES ($1, $2) ON CONFLICT DO NOTHING`
		for _, plate := range plates {
			if _, err := tx.ExecContext(ctx, insert, userID, plate); err != nil {
				return nil, err
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE users SET updated_at = NOW() WHERE id = $1`, userID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return r.GetByID(ctx, userID)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, query, arg)

	var user models.User
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	plates, err := r.platesFor(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.RegPlates = plates
	return &user, nil
}

func (r *UserRepository) platesFor(ctx context.Context, userID int64) ([]string, error) {
	const query = `
		SELECT plate
		FROM user_plates
		WHERE user_id = $1
		ORDER BY plate
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plates := []string{}
	for rows.Next() {
		var plate string
		if err := rows.Scan(&plate); err != nil {
			return nil, err
		}
		plates = append(plates, plate)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return plates, nil
}
