package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventteams/internal/domain"
)

type invitationService struct {
	store          domain.Store
	users          domain.UserDirectory
	members        domain.MemberAdder
	sink           domain.NotificationSink
	clock          domain.Clock
	contextTimeout time.Duration
}

func NewInvitationService(store domain.Store, users domain.UserDirectory, members domain.MemberAdder, sink domain.NotificationSink, clock domain.Clock, timeout time.Duration) domain.InvitationService {
	return &invitationService{
		store:          store,
		users:          users,
		members:        members,
		sink:           sink,
		clock:          clock,
		contextTimeout: timeout,
	}
}

func (s *invitationService) Invite(ctx context.Context, teamID, invitedID, invitedByID string) (*domain.Invitation, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	team, err := s.store.Teams().GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: team %s does not exist", domain.ErrBadRequest, teamID)
		}
		return nil, fmt.Errorf("get team: %w", err)
	}
	if err := userMustExist(ctx, s.users, invitedByID, domain.ErrBadRequest); err != nil {
		return nil, err
	}
	if err := userMustExist(ctx, s.users, invitedID, domain.ErrBadRequest); err != nil {
		return nil, err
	}

	inv := &domain.Invitation{
		TeamID:      team.ID,
		EventID:     team.EventID,
		InvitedID:   invitedID,
		InvitedByID: invitedByID,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.store.Invitations().Create(ctx, inv); err != nil {
		switch {
		case errors.Is(err, domain.ErrConflict):
			return nil, fmt.Errorf("%w: user already has a pending invitation to this team", domain.ErrConflict)
		case errors.Is(err, domain.ErrNotFound):
			return nil, fmt.Errorf("%w: team %s does not exist", domain.ErrBadRequest, teamID)
		}
		return nil, fmt.Errorf("create invitation: %w", err)
	}

	s.sink.Notify(ctx, domain.NotificationInput{
		UserID:     invitedID,
		FromUserID: strPtr(invitedByID),
		Type:       domain.NotificationTeamInvitation,
		Message:    fmt.Sprintf("You have been invited to join team %s", team.Name),
		Link:       strPtr(team.ID),
	})
	return inv, nil
}

func (s *invitationService) Respond(ctx context.Context, invitationID string, accept bool) (*domain.Participant, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	var (
		inv         *domain.Invitation
		participant *domain.Participant
	)
	err := s.store.Atomic(ctx, func(ctx context.Context, tx domain.Store) error {
		var err error
		inv, err = tx.Invitations().GetByID(ctx, invitationID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: invitation %s does not exist", domain.ErrNotFound, invitationID)
			}
			return fmt.Errorf("get invitation: %w", err)
		}
		if !accept {
			if err := tx.Invitations().Delete(ctx, inv.ID); err != nil {
				return fmt.Errorf("delete invitation: %w", err)
			}
			return nil
		}

		event, err := tx.Events().Lock(ctx, inv.EventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: event %s does not exist", domain.ErrNotFound, inv.EventID)
			}
			return fmt.Errorf("lock event: %w", err)
		}
		full, err := eventFull(ctx, tx, event)
		if err != nil {
			return err
		}
		if full {
			return fmt.Errorf("%w: event is full", domain.ErrConflict)
		}
		if !domain.InRegistrationWindow(event, s.clock.Now()) {
			return fmt.Errorf("%w: event is not in its registration period", domain.ErrConflict)
		}
		full, err = teamFull(ctx, tx, event, inv.TeamID)
		if err != nil {
			return err
		}
		if full {
			return fmt.Errorf("%w: team is full", domain.ErrConflict)
		}

		if err := tx.Invitations().Delete(ctx, inv.ID); err != nil {
			return fmt.Errorf("delete invitation: %w", err)
		}
		participant, err = s.members.AddMember(ctx, inv.TeamID, inv.InvitedID)
		return err
	})
	if err != nil {
		return nil, err
	}

	in := domain.NotificationInput{
		UserID:     inv.InvitedByID,
		FromUserID: strPtr(inv.InvitedID),
		Type:       domain.NotificationInvitationDeclined,
		Message:    "Your team invitation was declined",
		Link:       strPtr(inv.TeamID),
	}
	if accept {
		in.Type = domain.NotificationInvitationAccepted
		in.Message = "Your team invitation was accepted"
	}
	s.sink.Notify(ctx, in)
	return participant, nil
}

func (s *invitationService) Withdraw(ctx context.Context, invitationID string) error {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.store.Invitations().Delete(ctx, invitationID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: invitation %s does not exist", domain.ErrNotFound, invitationID)
		}
		return fmt.Errorf("delete invitation: %w", err)
	}
	return nil
}

func (s *invitationService) Get(ctx context.Context, invitationID string) (*domain.Invitation, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	inv, err := s.store.Invitations().GetByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: invitation %s does not exist", domain.ErrNotFound, invitationID)
		}
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	return inv, nil
}

func (s *invitationService) GetByTeamAndInvitee(ctx context.Context, teamID, invitedID string) (*domain.Invitation, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	inv, err := s.store.Invitations().GetByTeamAndInvitee(ctx, teamID, invitedID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: no pending invitation for this user", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	return inv, nil
}

func (s *invitationService) ListForUser(ctx context.Context, userID string) ([]*domain.Invitation, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	invitations, err := s.store.Invitations().ListByInvitedID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	return invitations, nil
}
