package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventteams/internal/domain"
)

type eventService struct {
	store          domain.Store
	clock          domain.Clock
	contextTimeout time.Duration
}

func NewEventService(store domain.Store, clock domain.Clock, timeout time.Duration) domain.EventService {
	return &eventService{
		store:          store,
		clock:          clock,
		contextTimeout: timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := event.Validate(); err != nil {
		return err
	}
	now := s.clock.Now()
	event.CreatedAt = now
	event.UpdatedAt = now
	if err := s.store.Events().Create(ctx, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// UpdateEvent replaces the event's fields. Caps may not drop below what the event already holds.
func (s *eventService) UpdateEvent(ctx context.Context, event *domain.Event) (*domain.EventDetails, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := event.Validate(); err != nil {
		return nil, err
	}

	var details *domain.EventDetails
	err := s.store.Atomic(ctx, func(ctx context.Context, tx domain.Store) error {
		current, err := tx.Events().Lock(ctx, event.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: event %s does not exist", domain.ErrNotFound, event.ID)
			}
			return fmt.Errorf("lock event: %w", err)
		}
		count, err := tx.Participants().CountByEventID(ctx, event.ID)
		if err != nil {
			return fmt.Errorf("count participants: %w", err)
		}
		if event.MaxParticipants != nil && *event.MaxParticipants < count {
			return fmt.Errorf("%w: event already has %d participants", domain.ErrConflict, count)
		}
		teams, err := tx.Teams().ListByEventID(ctx, event.ID)
		if err != nil {
			return fmt.Errorf("list teams: %w", err)
		}
		if !event.AllowTeams && len(teams) > 0 {
			return fmt.Errorf("%w: event still has %d teams", domain.ErrConflict, len(teams))
		}
		if event.MaxTeamSize != nil {
			for _, team := range teams {
				members, err := tx.Participants().CountByTeamID(ctx, team.ID)
				if err != nil {
					return fmt.Errorf("count team members: %w", err)
				}
				if members > *event.MaxTeamSize {
					return fmt.Errorf("%w: team %s already has %d members", domain.ErrConflict, team.Name, members)
				}
			}
		}

		event.CreatedAt = current.CreatedAt
		event.UpdatedAt = s.clock.Now()
		if err := tx.Events().Update(ctx, event); err != nil {
			return fmt.Errorf("update event: %w", err)
		}
		details = &domain.EventDetails{Event: *event, CurrentParticipants: count}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return details, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.store.Events().Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: event %s does not exist", domain.ErrNotFound, id)
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *eventService) GetEvent(ctx context.Context, id string) (*domain.EventDetails, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.store.Events().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: event %s does not exist", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	count, err := s.store.Participants().CountByEventID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count participants: %w", err)
	}
	return &domain.EventDetails{Event: *event, CurrentParticipants: count}, nil
}

func (s *eventService) ListEvents(ctx context.Context) ([]*domain.EventDetails, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.store.Events().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	result := make([]*domain.EventDetails, 0, len(events))
	for _, event := range events {
		count, err := s.store.Participants().CountByEventID(ctx, event.ID)
		if err != nil {
			return nil, fmt.Errorf("count participants: %w", err)
		}
		result = append(result, &domain.EventDetails{Event: *event, CurrentParticipants: count})
	}
	return result, nil
}
