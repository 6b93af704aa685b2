package domain

import (
	"context"
	"time"
)

// Participant is the join record linking a user to an event, optionally through a team.
// There is at most one participant per (EventID, UserID).
// swagger:model Participant
type Participant struct {
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	TeamID    *string   `json:"team_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewParticipant returns a participant for the given event and user. teamID is nil for solo participation.
func NewParticipant(eventID, userID string, teamID *string, createdAt time.Time) *Participant {
	return &Participant{
		EventID:   eventID,
		UserID:    userID,
		TeamID:    teamID,
		CreatedAt: createdAt,
	}
}

// ParticipantRepository defines storage operations for participants.
type ParticipantRepository interface {
	// Create inserts the participant. An existing row for (event, user) yields ErrConflict.
	Create(ctx context.Context, p *Participant) error
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*Participant, error)
	GetByTeamAndUser(ctx context.Context, teamID, userID string) (*Participant, error)
	CountByEventID(ctx context.Context, eventID string) (int, error)
	CountByTeamID(ctx context.Context, teamID string) (int, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Participant, error)
	ListByTeamID(ctx context.Context, teamID string) ([]*Participant, error)
	Delete(ctx context.Context, eventID, userID string) error
	DeleteByTeamID(ctx context.Context, teamID string) (int, error)
}

// RegistrationService defines solo participation in events.
type RegistrationService interface {
	// JoinSolo registers the user without a team. bypassWindow skips the registration window
	// check; the caller decides who holds that privilege.
	JoinSolo(ctx context.Context, eventID, userID string, bypassWindow bool) (*Participant, error)
	LeaveSolo(ctx context.Context, eventID, userID string) error
	ListParticipants(ctx context.Context, eventID string) ([]*Participant, error)
	IsParticipant(ctx context.Context, eventID, userID string) (bool, error)
}
