package domain

import (
	"context"
	"time"
)

// Team is a capacity-bounded group of participants within one event.
// swagger:model Team
type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	EventID   string    `json:"event_id"`
	LeaderID  string    `json:"leader_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TeamDetails is a team with its current members and pending invitations.
// swagger:model TeamDetails
type TeamDetails struct {
	Team
	Members     []*Participant `json:"members"`
	Invitations []*Invitation  `json:"invitations"`
}

// TeamRepository defines the interface for team storage.
type TeamRepository interface {
	// Create inserts the team. A name already used within the event yields ErrConflict.
	Create(ctx context.Context, team *Team) error
	GetByID(ctx context.Context, id string) (*Team, error)
	GetByEventAndName(ctx context.Context, eventID, name string) (*Team, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Team, error)
	UpdateName(ctx context.Context, id, name string) error
	UpdateLeader(ctx context.Context, id, leaderID string) error
	Delete(ctx context.Context, id string) error
}

// MemberAdder adds a user to a team. It is the only part of the team engine the
// invitation engine depends on.
type MemberAdder interface {
	AddMember(ctx context.Context, teamID, userID string) (*Participant, error)
}

// TeamService defines team formation and membership operations.
type TeamService interface {
	MemberAdder
	CreateTeam(ctx context.Context, eventID, leaderID, name string) (*TeamDetails, error)
	// RemoveMember deletes the user's membership. A non-nil removedBy marks a kick and notifies the removed user.
	RemoveMember(ctx context.Context, teamID, userID string, removedBy *string) error
	ChangeLeader(ctx context.Context, teamID, newLeaderID string) (*Team, error)
	RenameTeam(ctx context.Context, teamID, name string) (*Team, error)
	DeleteTeam(ctx context.Context, teamID string) error
	GetTeam(ctx context.Context, teamID string) (*TeamDetails, error)
	ListTeamsByEvent(ctx context.Context, eventID string) ([]*TeamDetails, error)
	IsMember(ctx context.Context, teamID, userID string) (bool, error)
	IsLeader(ctx context.Context, teamID, userID string) (bool, error)
	ListInvitations(ctx context.Context, teamID string) ([]*Invitation, error)
}
