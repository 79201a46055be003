package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"carpark/backend/services/profile-service/internal/models"
)

// ErrNoFieldsToUpdate is returned for profile updates carrying nothing.
var ErrNoFieldsToUpdate = errors.New("profile: no fields to update")

// ProfileStore defines the user persistence used by profile operations.
type ProfileStore interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int64, name *string, plates []string) (*models.User, error)
}

// ProfileService serves car owner profiles and their registered plates.
type ProfileService struct {
	store  ProfileStore
	subs   Subscriptions
	logger *zap.Logger
}

// NewProfileService builds service. subs may be nil.
func NewProfileService(store ProfileStore, subs Subscriptions, logger *zap.Logger) *ProfileService {
	return &ProfileService{
		store:  store,
		subs:   subs,
		logger: logger,
	}
}

// Get returns the profile for the user.
func (s *ProfileService) Get(ctx context.Context, userID int64) (*models.User, error) {
	return s.store.GetByID(ctx, userID)
}

// Update applies name and/or plate changes. Plates are trimmed and blanks
// dropped; a nil plates slice leaves the list untouched.
func (s *ProfileService) Update(ctx context.Context, userID int64, name *string, plates []string) (*models.User, error) {
	if name == nil && plates == nil {
		return nil, ErrNoFieldsToUpdate
	}

	if plates != nil {
		normalized := make([]string, 0, len(plates))
		for _, plate := range plates {
			if trimmed := strings.TrimSpace(plate); trimmed != "" {
				normalized = append(normalized, trimmed)
			}
		}
		plates = normalized
	}

	user, err := s.store.UpdateProfile(ctx, userID, name, plates)
	if err != nil {
		return nil, err
	}

	if s.subs != nil && user.Email != "" {
		if err := s.subs.Subscribe(ctx, user.Email); err != nil {
			s.logger.Warn("failed to refresh notification subscription",
				zap.String("email", user.Email),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("profile updated",
		zap.Int64("user_id", userID),
		zap.Int("plates", len(user.RegPlates)),
	)
	return user, nil
}
