package memory

import (
	"context"
	"sync"

	"eventteams/internal/domain"
)

// UserDirectory is an in-memory domain.UserDirectory.
type UserDirectory struct {
	mu     sync.RWMutex
	users  map[string]struct{}
	admins map[string]struct{}
}

// NewUserDirectory returns an empty directory.
func NewUserDirectory() *UserDirectory {
	return &UserDirectory{users: make(map[string]struct{}), admins: make(map[string]struct{})}
}

// AddUser registers userID, optionally with the admin role.
func (d *UserDirectory) AddUser(userID string, admin bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[userID] = struct{}{}
	if admin {
		d.admins[userID] = struct{}{}
	}
}

// GrantRole registers the user if needed and grants it the role.
func (d *UserDirectory) GrantRole(ctx context.Context, userID, role string) error {
	d.AddUser(userID, role == domain.RoleAdmin)
	return nil
}

func (d *UserDirectory) Exists(ctx context.Context, userID string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.users[userID]
	return ok, nil
}

func (d *UserDirectory) IsAdmin(ctx context.Context, userID string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.admins[userID]
	return ok, nil
}
