package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/groompost/groompost-api/internal/core/domain"
	"github.com/groompost/groompost-api/internal/core/ports"
)

const minPasswordLength = 6

// AuthService implements registration, login, guest login and profile edits.
type AuthService struct {
	repo         ports.UserRepository
	guestEnabled bool
	now          func() time.Time
	log          zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, guestEnabled bool, log zerolog.Logger) *AuthService {
	return &AuthService{
		repo:         repo,
		guestEnabled: guestEnabled,
		now:          func() time.Time { return time.Now().UTC() },
		log:          log.With().Str("component", "auth").Logger(),
	}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || strings.TrimSpace(in.Email) == "" {
		return nil, fmt.Errorf("%w: username and email are required", domain.ErrValidation)
	}
	if len(in.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLength)
	}

	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: hash,
		Email:        strings.TrimSpace(in.Email),
		FullName:     optional(in.FullName),
		SalonName:    optional(in.SalonName),
		CreatedAt:    s.now(),
	}
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	return created, nil
}

func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := VerifyPassword(password, user.PasswordHash)
	if err != nil {
		s.log.Warn().Err(err).Int64("user_id", user.ID).Msg("stored password hash unreadable")
		return nil, domain.ErrInvalidCredentials
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	now := s.now()
	if err := s.repo.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}
	user.LastLogin = &now
	return user, nil
}

// GuestLogin authenticates as the shared demo account, creating it on first
// use. It is a demo convenience and can be switched off per deployment.
func (s *AuthService) GuestLogin(ctx context.Context) (*domain.User, error) {
	if !s.guestEnabled {
		return nil, domain.ErrGuestDisabled
	}

	_, err := s.repo.FindByUsername(ctx, domain.GuestUsername)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		if _, err := s.Register(ctx, ports.RegisterInput{
			Username:  domain.GuestUsername,
			Password:  domain.GuestPassword,
			Email:     domain.GuestEmail,
			FullName:  domain.GuestFullName,
			SalonName: domain.GuestSalonName,
		}); err != nil && !errors.Is(err, domain.ErrUserExists) {
			return nil, fmt.Errorf("provision guest: %w", err)
		}
		s.log.Info().Msg("guest account provisioned")
	case err != nil:
		return nil, err
	}

	return s.Authenticate(ctx, domain.GuestUsername, domain.GuestPassword)
}

func (s *AuthService) CurrentUser(ctx context.Context, userID int64) (*domain.User, error) {
	return s.repo.FindByID(ctx, userID)
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, patch domain.ProfilePatch) (*domain.User, error) {
	if patch.Email != nil && strings.TrimSpace(*patch.Email) == "" {
		return nil, fmt.Errorf("%w: email cannot be empty", domain.ErrValidation)
	}
	if patch.Empty() {
		return s.repo.FindByID(ctx, userID)
	}
	return s.repo.UpdateProfile(ctx, userID, patch)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
