package domain

import (
	"errors"
	"time"
)

// Guest account provisioned on first guest login.
const (
	GuestUsername  = "guest"
	GuestPassword  = "guest123"
	GuestEmail     = "guest@example.com"
	GuestFullName  = "Guest User"
	GuestSalonName = "Demo Grooming Salon"
)

var (
	ErrUserExists         = errors.New("username already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrGuestDisabled      = errors.New("guest login is disabled")
)

// User models a salon account. PasswordHash never leaves the process.
type User struct {
	ID              int64      `json:"id"`
	Username        string     `json:"username"`
	PasswordHash    string     `json:"-"`
	Email           string     `json:"email"`
	FullName        *string    `json:"fullName"`
	SalonName       *string    `json:"salonName"`
	Bio             *string    `json:"bio"`
	ProfileImageURL *string    `json:"profileImageUrl"`
	CreatedAt       time.Time  `json:"createdAt"`
	LastLogin       *time.Time `json:"lastLogin"`
}

// ProfilePatch holds the user fields that may change after registration.
// A nil field is left untouched.
type ProfilePatch struct {
	Email           *string
	FullName        *string
	SalonName       *string
	Bio             *string
	ProfileImageURL *string
}

// Empty reports whether the patch carries no changes.
func (p ProfilePatch) Empty() bool {
	return p.Email == nil && p.FullName == nil && p.SalonName == nil &&
		p.Bio == nil && p.ProfileImageURL == nil
}
