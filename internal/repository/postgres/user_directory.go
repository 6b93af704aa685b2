package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventteams/internal/domain"
)

// UserDirectory reads the users and roles tables. Accounts are provisioned elsewhere.
type UserDirectory struct {
	DB DBTX
}

func NewUserDirectory(db DBTX) *UserDirectory {
	return &UserDirectory{DB: db}
}

func (d *UserDirectory) Exists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := d.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (d *UserDirectory) IsAdmin(ctx context.Context, userID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1
			FROM user_roles ur
			INNER JOIN roles r ON r.id = ur.role_id
			WHERE ur.user_id = $1 AND r.code = $2
		)
	`
	var admin bool
	if err := d.DB.QueryRowContext(ctx, query, userID, domain.RoleAdmin).Scan(&admin); err != nil {
		return false, err
	}
	return admin, nil
}

// GrantRole inserts the user row if missing and assigns the role by code.
func (d *UserDirectory) GrantRole(ctx context.Context, userID, role string) error {
	if _, err := d.DB.ExecContext(ctx, `INSERT INTO users (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, userID); err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	query := `
		INSERT INTO user_roles (user_id, role_id)
		SELECT $1, id FROM roles WHERE code = $2
		ON CONFLICT (user_id, role_id) DO NOTHING
	`
	result, err := d.DB.ExecContext(ctx, query, userID, role)
	if err != nil {
		return fmt.Errorf("assign role: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		if _, err := d.lookupRole(ctx, role); err != nil {
			return err
		}
	}
	return nil
}

func (d *UserDirectory) lookupRole(ctx context.Context, code string) (string, error) {
	var id string
	err := d.DB.QueryRowContext(ctx, `SELECT id FROM roles WHERE code = $1`, code).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: role %q", domain.ErrNotFound, code)
		}
		return "", err
	}
	return id, nil
}
