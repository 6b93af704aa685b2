package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Event represents an activity users register for, solo or in teams.
// swagger:model Event
type Event struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	DescriptionSummary *string    `json:"description_summary,omitempty"`
	Description        string     `json:"description"`
	Location           *string    `json:"location,omitempty"`
	StartDate          *time.Time `json:"start_date,omitempty"`
	EndDate            *time.Time `json:"end_date,omitempty"`
	RegistrationStart  *time.Time `json:"registration_start,omitempty"`
	RegistrationEnd    *time.Time `json:"registration_end,omitempty"`
	MaxParticipants    *int       `json:"max_participants,omitempty"`
	AllowTeams         bool       `json:"allow_teams"`
	MaxTeamSize        *int       `json:"max_team_size,omitempty"`
	ExternalLink       *string    `json:"external_link,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// Validate checks the event's content fields. It returns an error wrapping ErrBadRequest.
func (e *Event) Validate() error {
	var problems []string
	if strings.TrimSpace(e.Title) == "" {
		problems = append(problems, "title is required")
	}
	if e.StartDate != nil && e.EndDate != nil && e.EndDate.Before(*e.StartDate) {
		problems = append(problems, "end_date must not be before start_date")
	}
	if e.RegistrationStart != nil && e.RegistrationEnd != nil && e.RegistrationEnd.Before(*e.RegistrationStart) {
		problems = append(problems, "registration_end must not be before registration_start")
	}
	if e.MaxParticipants != nil && *e.MaxParticipants < 1 {
		problems = append(problems, "max_participants must be at least 1")
	}
	if e.MaxTeamSize != nil && *e.MaxTeamSize < 1 {
		problems = append(problems, "max_team_size must be at least 1")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrBadRequest, strings.Join(problems, "; "))
	}
	return nil
}

// EventDetails is an event together with its live participant count.
// swagger:model EventDetails
type EventDetails struct {
	Event
	CurrentParticipants int `json:"current_participants"`
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	// Lock returns the event and, inside Store.Atomic, holds it exclusively until the unit ends.
	// Every check-then-act sequence on an event's participants or teams takes this lock first.
	Lock(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context) ([]*Event, error)
	Update(ctx context.Context, event *Event) error
	// Delete removes the event together with its teams, participants and invitations.
	Delete(ctx context.Context, id string) error
}

// EventService defines the administrative operations on events.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	UpdateEvent(ctx context.Context, event *Event) (*EventDetails, error)
	DeleteEvent(ctx context.Context, id string) error
	GetEvent(ctx context.Context, id string) (*EventDetails, error)
	ListEvents(ctx context.Context) ([]*EventDetails, error)
}
