package postgres

import (
	"context"
	"database/sql"

	"eventteams/internal/domain"
)

type participantRepository struct {
	DB DBTX
}

func NewParticipantRepository(db DBTX) domain.ParticipantRepository {
	return &participantRepository{
		DB: db,
	}
}

func (r *participantRepository) Create(ctx context.Context, p *domain.Participant) error {
	query := `
		INSERT INTO participants (event_id, user_id, team_id, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.DB.ExecContext(ctx, query, p.EventID, p.UserID, p.TeamID, p.CreatedAt)
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

func scanParticipant(row rowScanner) (*domain.Participant, error) {
	p := &domain.Participant{}
	var teamID sql.NullString
	if err := row.Scan(&p.EventID, &p.UserID, &teamID, &p.CreatedAt); err != nil {
		return nil, err
	}
	if teamID.Valid {
		p.TeamID = &teamID.String
	}
	return p, nil
}

func (r *participantRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Participant, error) {
	p, err := scanParticipant(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if isNoRow(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *participantRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Participant, error) {
	query := `
		SELECT event_id, user_id, team_id, created_at
		FROM participants
		WHERE event_id = $1 AND user_id = $2
	`
	return r.getOne(ctx, query, eventID, userID)
}

func (r *participantRepository) GetByTeamAndUser(ctx context.Context, teamID, userID string) (*domain.Participant, error) {
	query := `
		SELECT event_id, user_id, team_id, created_at
		FROM participants
		WHERE team_id = $1 AND user_id = $2
	`
	return r.getOne(ctx, query, teamID, userID)
}

func (r *participantRepository) count(ctx context.Context, query, id string) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, query, id).Scan(&n); err != nil {
		if isInvalidTextRepresentation(err) {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}

func (r *participantRepository) CountByEventID(ctx context.Context, eventID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM participants WHERE event_id = $1`, eventID)
}

func (r *participantRepository) CountByTeamID(ctx context.Context, teamID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM participants WHERE team_id = $1`, teamID)
}

func (r *participantRepository) list(ctx context.Context, query, id string) ([]*domain.Participant, error) {
	rows, err := r.DB.QueryContext(ctx, query, id)
	if err != nil {
		if isInvalidTextRepresentation(err) {
			return []*domain.Participant{}, nil
		}
		return nil, err
	}
	defer rows.Close()
	participants := make([]*domain.Participant, 0)
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (r *participantRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Participant, error) {
	query := `
		SELECT event_id, user_id, team_id, created_at
		FROM participants
		WHERE event_id = $1
		ORDER BY created_at, user_id
	`
	return r.list(ctx, query, eventID)
}

func (r *participantRepository) ListByTeamID(ctx context.Context, teamID string) ([]*domain.Participant, error) {
	query := `
		SELECT event_id, user_id, team_id, created_at
		FROM participants
		WHERE team_id = $1
		ORDER BY created_at, user_id
	`
	return r.list(ctx, query, teamID)
}

func (r *participantRepository) Delete(ctx context.Context, eventID, userID string) error {
	query := `DELETE FROM participants WHERE event_id = $1 AND user_id = $2`
	result, err := r.DB.ExecContext(ctx, query, eventID, userID)
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

func (r *participantRepository) DeleteByTeamID(ctx context.Context, teamID string) (int, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM participants WHERE team_id = $1`, teamID)
	if err != nil {
		if isInvalidTextRepresentation(err) {
			return 0, nil
		}
		return 0, err
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}
