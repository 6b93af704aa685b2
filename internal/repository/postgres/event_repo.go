package postgres

import (
	"context"
	"database/sql"

	"eventteams/internal/domain"
)

const eventColumns = `id, title, description_summary, description, location, start_date, end_date,
		registration_start, registration_end, max_participants, allow_teams, max_team_size, external_link,
		created_at, updated_at`

type eventRepository struct {
	DB DBTX
}

func NewEventRepository(db DBTX) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var summary, location, link sql.NullString
	var start, end, regStart, regEnd sql.NullTime
	var maxParticipants, maxTeamSize sql.NullInt64
	err := row.Scan(
		&e.ID, &e.Title, &summary, &e.Description, &location, &start, &end,
		&regStart, &regEnd, &maxParticipants, &e.AllowTeams, &maxTeamSize, &link,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if summary.Valid {
		e.DescriptionSummary = &summary.String
	}
	if location.Valid {
		e.Location = &location.String
	}
	if link.Valid {
		e.ExternalLink = &link.String
	}
	if start.Valid {
		e.StartDate = &start.Time
	}
	if end.Valid {
		e.EndDate = &end.Time
	}
	if regStart.Valid {
		e.RegistrationStart = &regStart.Time
	}
	if regEnd.Valid {
		e.RegistrationEnd = &regEnd.Time
	}
	if maxParticipants.Valid {
		n := int(maxParticipants.Int64)
		e.MaxParticipants = &n
	}
	if maxTeamSize.Valid {
		n := int(maxTeamSize.Int64)
		e.MaxTeamSize = &n
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, description_summary, description, location, start_date, end_date,
			registration_start, registration_end, max_participants, allow_teams, max_team_size, external_link,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Title, e.DescriptionSummary, e.Description, e.Location, e.StartDate, e.EndDate,
		e.RegistrationStart, e.RegistrationEnd, e.MaxParticipants, e.AllowTeams, e.MaxTeamSize, e.ExternalLink,
		e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) get(ctx context.Context, query, id string) (*domain.Event, error) {
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if isNoRow(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	return r.get(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
}

func (r *eventRepository) Lock(ctx context.Context, id string) (*domain.Event, error) {
	return r.get(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, id)
}

func (r *eventRepository) List(ctx context.Context) ([]*domain.Event, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+eventColumns+` FROM events ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events SET title = $1, description_summary = $2, description = $3, location = $4,
			start_date = $5, end_date = $6, registration_start = $7, registration_end = $8,
			max_participants = $9, allow_teams = $10, max_team_size = $11, external_link = $12, updated_at = $13
		WHERE id = $14
	`
	result, err := r.DB.ExecContext(ctx, query,
		e.Title, e.DescriptionSummary, e.Description, e.Location, e.StartDate, e.EndDate,
		e.RegistrationStart, e.RegistrationEnd, e.MaxParticipants, e.AllowTeams, e.MaxTeamSize, e.ExternalLink,
		e.UpdatedAt, e.ID,
	)
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

// Delete relies on ON DELETE CASCADE for teams, participants and invitations.
func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
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
