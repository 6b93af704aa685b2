package domain

import "context"

// Role codes stored in the roles table.
const (
	RoleAdmin    = "admin"
	RoleAttendee = "attendee"
)

// UserDirectory answers identity questions about users managed outside this service.
// Engines only ask Exists; IsAdmin is consulted by callers before using privileged operations.
type UserDirectory interface {
	Exists(ctx context.Context, userID string) (bool, error)
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// TokenVerifier verifies a token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}
