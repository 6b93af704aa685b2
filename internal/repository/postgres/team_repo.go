package postgres

import (
	"context"

	"eventteams/internal/domain"
)

type teamRepository struct {
	DB DBTX
}

func NewTeamRepository(db DBTX) domain.TeamRepository {
	return &teamRepository{DB: db}
}

func (r *teamRepository) Create(ctx context.Context, t *domain.Team) error {
	query := `
		INSERT INTO teams (name, event_id, leader_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, t.Name, t.EventID, t.LeaderID, t.CreatedAt).Scan(&t.ID)
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

func (r *teamRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Team, error) {
	t := &domain.Team{}
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(&t.ID, &t.Name, &t.EventID, &t.LeaderID, &t.CreatedAt)
	if err != nil {
		if isNoRow(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *teamRepository) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	query := `SELECT id, name, event_id, leader_id, created_at FROM teams WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *teamRepository) GetByEventAndName(ctx context.Context, eventID, name string) (*domain.Team, error) {
	query := `SELECT id, name, event_id, leader_id, created_at FROM teams WHERE event_id = $1 AND name = $2`
	return r.getOne(ctx, query, eventID, name)
}

func (r *teamRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Team, error) {
	query := `
		SELECT id, name, event_id, leader_id, created_at
		FROM teams
		WHERE event_id = $1
		ORDER BY created_at
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		if isInvalidTextRepresentation(err) {
			return []*domain.Team{}, nil
		}
		return nil, err
	}
	defer rows.Close()
	teams := make([]*domain.Team, 0)
	for rows.Next() {
		t := &domain.Team{}
		if err := rows.Scan(&t.ID, &t.Name, &t.EventID, &t.LeaderID, &t.CreatedAt); err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (r *teamRepository) UpdateName(ctx context.Context, id, name string) error {
	result, err := r.DB.ExecContext(ctx, `UPDATE teams SET name = $1 WHERE id = $2`, name, id)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
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

func (r *teamRepository) UpdateLeader(ctx context.Context, id, leaderID string) error {
	result, err := r.DB.ExecContext(ctx, `UPDATE teams SET leader_id = $1 WHERE id = $2`, leaderID, id)
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

// Delete relies on ON DELETE CASCADE for the team's participants and invitations.
func (r *teamRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
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
