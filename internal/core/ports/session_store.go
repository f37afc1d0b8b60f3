package ports

import "context"

// SessionStore maps opaque session tokens to user ids. Implementations expire
// a session after a fixed inactivity window; Resolve slides that window.
type SessionStore interface {
	Create(ctx context.Context, userID int64) (string, error)
	// Resolve returns ok=false for unknown or expired tokens.
	Resolve(ctx context.Context, token string) (userID int64, ok bool, err error)
	Destroy(ctx context.Context, token string) error
}
