package ports

import (
	"context"

	"github.com/groompost/groompost-api/internal/core/domain"
)

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Username  string
	Password  string
	Email     string
	FullName  string
	SalonName string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	GuestLogin(ctx context.Context) (*domain.User, error)
	CurrentUser(ctx context.Context, userID int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID int64, patch domain.ProfilePatch) (*domain.User, error)
}
