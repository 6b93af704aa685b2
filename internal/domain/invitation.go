package domain

import (
	"context"
	"time"
)

// Invitation is a pending offer for a user to join a team. Only pending invitations are stored:
// accepting, declining or withdrawing deletes the row.
// swagger:model Invitation
type Invitation struct {
	ID          string    `json:"id"`
	TeamID      string    `json:"team_id"`
	EventID     string    `json:"event_id"`
	InvitedID   string    `json:"invited_id"`
	InvitedByID string    `json:"invited_by_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// InvitationRepository defines storage operations for team invitations.
type InvitationRepository interface {
	// Create inserts the invitation. A pending invitation for the same (team, invitee) yields ErrConflict.
	Create(ctx context.Context, inv *Invitation) error
	GetByID(ctx context.Context, id string) (*Invitation, error)
	GetByTeamAndInvitee(ctx context.Context, teamID, invitedID string) (*Invitation, error)
	ListByTeamID(ctx context.Context, teamID string) ([]*Invitation, error)
	ListByInvitedID(ctx context.Context, invitedID string) ([]*Invitation, error)
	Delete(ctx context.Context, id string) error
	// DeleteByTeamAndInvitee reports whether a row was removed; a missing row is not an error.
	DeleteByTeamAndInvitee(ctx context.Context, teamID, invitedID string) (bool, error)
	DeleteByTeamID(ctx context.Context, teamID string) (int, error)
}

// InvitationService manages the invite → accept/decline/withdraw life cycle.
type InvitationService interface {
	Invite(ctx context.Context, teamID, invitedID, invitedByID string) (*Invitation, error)
	// Respond resolves the invitation. On acceptance it returns the new participant; on decline it returns nil.
	Respond(ctx context.Context, invitationID string, accept bool) (*Participant, error)
	// Withdraw deletes a pending invitation without notifying anyone.
	Withdraw(ctx context.Context, invitationID string) error
	Get(ctx context.Context, invitationID string) (*Invitation, error)
	GetByTeamAndInvitee(ctx context.Context, teamID, invitedID string) (*Invitation, error)
	ListForUser(ctx context.Context, userID string) ([]*Invitation, error)
}
