package postgres

import (
	"context"

	"eventteams/internal/domain"
)

type invitationRepository struct {
	DB DBTX
}

func NewInvitationRepository(db DBTX) domain.InvitationRepository {
	return &invitationRepository{
		DB: db,
	}
}

func (r *invitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	query := `
		INSERT INTO invitations (team_id, event_id, invited_id, invited_by_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, inv.TeamID, inv.EventID, inv.InvitedID, inv.InvitedByID, inv.CreatedAt).
		Scan(&inv.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		if isForeignKeyViolation(err) || isInvalidTextRepresentation(err) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *invitationRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Invitation, error) {
	inv := &domain.Invitation{}
	err := r.DB.QueryRowContext(ctx, query, args...).
		Scan(&inv.ID, &inv.TeamID, &inv.EventID, &inv.InvitedID, &inv.InvitedByID, &inv.CreatedAt)
	if err != nil {
		if isNoRow(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}

func (r *invitationRepository) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	query := `
		SELECT id, team_id, event_id, invited_id, invited_by_id, created_at
		FROM invitations
		WHERE id = $1
	`
	return r.getOne(ctx, query, id)
}

func (r *invitationRepository) GetByTeamAndInvitee(ctx context.Context, teamID, invitedID string) (*domain.Invitation, error) {
	query := `
		SELECT id, team_id, event_id, invited_id, invited_by_id, created_at
		FROM invitations
		WHERE team_id = $1 AND invited_id = $2
	`
	return r.getOne(ctx, query, teamID, invitedID)
}

func (r *invitationRepository) list(ctx context.Context, query, id string) ([]*domain.Invitation, error) {
	rows, err := r.DB.QueryContext(ctx, query, id)
	if err != nil {
		if isInvalidTextRepresentation(err) {
			return []*domain.Invitation{}, nil
		}
		return nil, err
	}
	defer rows.Close()

	var invs []*domain.Invitation
	for rows.Next() {
		inv := &domain.Invitation{}
		if err := rows.Scan(&inv.ID, &inv.TeamID, &inv.EventID, &inv.InvitedID, &inv.InvitedByID, &inv.CreatedAt); err != nil {
			return nil, err
		}
		invs = append(invs, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if invs == nil {
		invs = []*domain.Invitation{}
	}
	return invs, nil
}

func (r *invitationRepository) ListByTeamID(ctx context.Context, teamID string) ([]*domain.Invitation, error) {
	query := `
		SELECT id, team_id, event_id, invited_id, invited_by_id, created_at
		FROM invitations
		WHERE team_id = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, teamID)
}

func (r *invitationRepository) ListByInvitedID(ctx context.Context, invitedID string) ([]*domain.Invitation, error) {
	query := `
		SELECT id, team_id, event_id, invited_id, invited_by_id, created_at
		FROM invitations
		WHERE invited_id = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, invitedID)
}

func (r *invitationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM invitations WHERE id = $1`, id)
	if err != nil {
		if isInvalidTextRepresentation(err) {
			return domain.ErrNotFound
		}
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *invitationRepository) DeleteByTeamAndInvitee(ctx context.Context, teamID, invitedID string) (bool, error) {
	query := `DELETE FROM invitations WHERE team_id = $1 AND invited_id = $2`
	result, err := r.DB.ExecContext(ctx, query, teamID, invitedID)
	if err != nil {
		if isInvalidTextRepresentation(err) {
			return false, nil
		}
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

func (r *invitationRepository) DeleteByTeamID(ctx context.Context, teamID string) (int, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM invitations WHERE team_id = $1`, teamID)
	if err != nil {
		if isInvalidTextRepresentation(err) {
			return 0, nil
		}
		return 0, err
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}
