package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventteams/internal/domain"
)

type registrationService struct {
	store          domain.Store
	users          domain.UserDirectory
	clock          domain.Clock
	contextTimeout time.Duration
}

func NewRegistrationService(store domain.Store, users domain.UserDirectory, clock domain.Clock, timeout time.Duration) domain.RegistrationService {
	return &registrationService{
		store:          store,
		users:          users,
		clock:          clock,
		contextTimeout: timeout,
	}
}

func (s *registrationService) JoinSolo(ctx context.Context, eventID, userID string, bypassWindow bool) (*domain.Participant, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	var participant *domain.Participant
	err := s.store.Atomic(ctx, func(ctx context.Context, tx domain.Store) error {
		event, err := tx.Events().Lock(ctx, eventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: event %s does not exist", domain.ErrNotFound, eventID)
			}
			return fmt.Errorf("lock event: %w", err)
		}
		if err := userMustExist(ctx, s.users, userID, domain.ErrNotFound); err != nil {
			return err
		}

		full, err := eventFull(ctx, tx, event)
		if err != nil {
			return err
		}
		if full {
			return fmt.Errorf("%w: event is full", domain.ErrConflict)
		}
		if !bypassWindow && !domain.InRegistrationWindow(event, s.clock.Now()) {
			return fmt.Errorf("%w: event is not in its registration period", domain.ErrConflict)
		}
		if domain.EventAllowsTeams(event) {
			return fmt.Errorf("%w: event requires joining through a team", domain.ErrBadRequest)
		}
		already, err := participating(ctx, tx, eventID, userID)
		if err != nil {
			return err
		}
		if already {
			return fmt.Errorf("%w: user is already participating in this event", domain.ErrConflict)
		}

		p := domain.NewParticipant(eventID, userID, nil, s.clock.Now())
		if err := tx.Participants().Create(ctx, p); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return fmt.Errorf("%w: user is already participating in this event", domain.ErrConflict)
			}
			return fmt.Errorf("create participant: %w", err)
		}
		participant = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return participant, nil
}

func (s *registrationService) LeaveSolo(ctx context.Context, eventID, userID string) error {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.store.Atomic(ctx, func(ctx context.Context, tx domain.Store) error {
		event, err := tx.Events().Lock(ctx, eventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: user is not participating in this event", domain.ErrNotFound)
			}
			return fmt.Errorf("lock event: %w", err)
		}
		if _, err := tx.Participants().GetByEventAndUser(ctx, eventID, userID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: user is not participating in this event", domain.ErrNotFound)
			}
			return fmt.Errorf("get participant: %w", err)
		}
		if domain.EventAllowsTeams(event) {
			return fmt.Errorf("%w: leave the team instead", domain.ErrBadRequest)
		}
		if err := tx.Participants().Delete(ctx, eventID, userID); err != nil {
			return fmt.Errorf("delete participant: %w", err)
		}
		return nil
	})
}

func (s *registrationService) ListParticipants(ctx context.Context, eventID string) ([]*domain.Participant, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.store.Events().GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: event %s does not exist", domain.ErrNotFound, eventID)
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	participants, err := s.store.Participants().ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return participants, nil
}

func (s *registrationService) IsParticipant(ctx context.Context, eventID, userID string) (bool, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	_, err := s.store.Participants().GetByEventAndUser(ctx, eventID, userID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("get participant: %w", err)
}
