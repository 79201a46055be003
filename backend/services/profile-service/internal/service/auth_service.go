package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"carpark/backend/services/profile-service/internal/models"
	"carpark/backend/services/profile-service/internal/password"
	"carpark/backend/services/profile-service/internal/repository"
)

var (
	// ErrEmailInUse is returned when attempting to register duplicate email.
	ErrEmailInUse = errors.New("auth: email already registered")
	// ErrInvalidCredentials represents login failure.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
)

// Subscriptions records emails on the payment notification topic.
type Subscriptions interface {
	Subscribe(ctx context.Context, email string) error
}

// AuthStore defines the user persistence used during signup and login.
type AuthStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// AuthService contains registration/login logic.
type AuthService struct {
	store     AuthStore
	hasher    password.Hasher
	tokenizer *TokenService
	subs      Subscriptions
	logger    *zap.Logger
}

// NewAuthService builds AuthService. subs may be nil.
func NewAuthService(store AuthStore, hasher password.Hasher, tokenizer *TokenService, subs Subscriptions, logger *zap.Logger) *AuthService {
	return &AuthService{
		store:     store,
		hasher:    hasher,
		tokenizer: tokenizer,
		subs:      subs,
		logger:    logger,
	}
}

// Signup registers a new car owner and subscribes their email to payment
// notifications.
func (s *AuthService) Signup(ctx context.Context, email, plainPassword, name string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, errors.New("auth: email required")
	}
	if plainPassword == "" {
		return nil, errors.New("auth: password required")
	}

	if _, err := s.store.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailInUse
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(plainPassword)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	}
	if err := s.store.Create(ctx, user); err != nil {
		return nil, err
	}

	s.subscribe(ctx, email)

	s.logger.Info("user signed up", zap.Int64("user_id", user.ID), zap.String("email", user.Email))
	return user, nil
}

// Login authenticates a user and produces a JWT.
func (s *AuthService) Login(ctx context.Context, email, plainPassword string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || plainPassword == "" {
		return "", nil, ErrInvalidCredentials
	}

	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := s.hasher.Compare(user.PasswordHash, plainPassword); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokenizer.GenerateToken(user.ID, user.Email)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

func (s *AuthService) subscribe(ctx context.Context, email string) {
	if s.subs == nil || email == "" {
		return
	}
	if err := s.subs.Subscribe(ctx, email); err != nil {
		s.logger.Warn("failed to subscribe email to notifications",
			zap.String("email", email),
			zap.Error(err),
		)
	}
}
