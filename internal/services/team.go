package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventteams/internal/domain"
)

type teamService struct {
	store          domain.Store
	users          domain.UserDirectory
	sink           domain.NotificationSink
	clock          domain.Clock
	contextTimeout time.Duration
}

func NewTeamService(store domain.Store, users domain.UserDirectory, sink domain.NotificationSink, clock domain.Clock, timeout time.Duration) domain.TeamService {
	return &teamService{
		store:          store,
		users:          users,
		sink:           sink,
		clock:          clock,
		contextTimeout: timeout,
	}
}

func (s *teamService) CreateTeam(ctx context.Context, eventID, leaderID, name string) (*domain.TeamDetails, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	name, err := validateTeamName(name)
	if err != nil {
		return nil, err
	}

	var details *domain.TeamDetails
	err = s.store.Atomic(ctx, func(ctx context.Context, tx domain.Store) error {
		event, err := tx.Events().Lock(ctx, eventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: event %s does not exist", domain.ErrBadRequest, eventID)
			}
			return fmt.Errorf("lock event: %w", err)
		}
		if err := userMustExist(ctx, s.users, leaderID, domain.ErrBadRequest); err != nil {
			return err
		}
		if !domain.InRegistrationWindow(event, s.clock.Now()) {
			return fmt.Errorf("%w: event is not in its registration period", domain.ErrConflict)
		}
		if !domain.EventAllowsTeams(event) {
			return fmt.Errorf("%w: event does not allow teams", domain.ErrBadRequest)
		}
		already, err := participating(ctx, tx, eventID, leaderID)
		if err != nil {
			return err
		}
		if already {
			return fmt.Errorf("%w: user is already participating in this event", domain.ErrConflict)
		}
		if _, err := tx.Teams().GetByEventAndName(ctx, eventID, name); err == nil {
			return fmt.Errorf("%w: team name %q is already used in this event", domain.ErrConflict, name)
		} else if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("get team by name: %w", err)
		}
		full, err := eventFull(ctx, tx, event)
		if err != nil {
			return err
		}
		if full {
			return fmt.Errorf("%w: event is full", domain.ErrConflict)
		}

		now := s.clock.Now()
		team := &domain.Team{Name: name, EventID: eventID, LeaderID: leaderID, CreatedAt: now}
		if err := tx.Teams().Create(ctx, team); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return fmt.Errorf("%w: team name %q is already used in this event", domain.ErrConflict, name)
			}
			return fmt.Errorf("create team: %w", err)
		}
		leader := domain.NewParticipant(eventID, leaderID, &team.ID, now)
		if err := tx.Participants().Create(ctx, leader); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return fmt.Errorf("%w: user is already participating in this event", domain.ErrConflict)
			}
			return fmt.Errorf("create leader participant: %w", err)
		}
		details = &domain.TeamDetails{
			Team:        *team,
			Members:     []*domain.Participant{leader},
			Invitations: []*domain.Invitation{},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return details, nil
}

// AddMember joins the caller's atomic unit when ctx carries one, so acceptance of an
// invitation and the membership it creates commit together.
func (s *teamService) AddMember(ctx context.Context, teamID, userID string) (*domain.Participant, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	var participant *domain.Participant
	err := s.store.Atomic(ctx, func(ctx context.Context, tx domain.Store) error {
		team, event, err := lockTeam(ctx, tx, teamID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: team %s does not exist", domain.ErrBadRequest, teamID)
			}
			return fmt.Errorf("lock team: %w", err)
		}
		if err := userMustExist(ctx, s.users, userID, domain.ErrBadRequest); err != nil {
			return err
		}
		full, err := teamFull(ctx, tx, event, team.ID)
		if err != nil {
			return err
		}
		if full {
			return fmt.Errorf("%w: team is full", domain.ErrConflict)
		}
		full, err = eventFull(ctx, tx, event)
		if err != nil {
			return err
		}
		if full {
			return fmt.Errorf("%w: event is full", domain.ErrConflict)
		}
		already, err := participating(ctx, tx, event.ID, userID)
		if err != nil {
			return err
		}
		if already {
			return fmt.Errorf("%w: user is already participating in this event", domain.ErrConflict)
		}

		p := domain.NewParticipant(event.ID, userID, &team.ID, s.clock.Now())
		if err := tx.Participants().Create(ctx, p); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return fmt.Errorf("%w: user is already participating in this event", domain.ErrConflict)
			}
			return fmt.Errorf("create participant: %w", err)
		}
		if _, err := tx.Invitations().DeleteByTeamAndInvitee(ctx, team.ID, userID); err != nil {
			return fmt.Errorf("delete pending invitation: %w", err)
		}
		participant = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return participant, nil
}

func (s *teamService) RemoveMember(ctx context.Context, teamID, userID string, removedBy *string) error {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	var team *domain.Team
	err := s.store.Atomic(ctx, func(ctx context.Context, tx domain.Store) error {
		var err error
		team, _, err = lockTeam(ctx, tx, teamID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: team %s does not exist", domain.ErrBadRequest, teamID)
			}
			return fmt.Errorf("lock team: %w", err)
		}
		member, err := tx.Participants().GetByTeamAndUser(ctx, teamID, userID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: user is not a member of this team", domain.ErrBadRequest)
			}
			return fmt.Errorf("get member: %w", err)
		}
		if team.LeaderID == userID {
			return fmt.Errorf("%w: the leader cannot leave the team; change leader or delete the team", domain.ErrBadRequest)
		}
		if err := tx.Participants().Delete(ctx, member.EventID, userID); err != nil {
			return fmt.Errorf("delete member: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if removedBy != nil {
		s.sink.Notify(ctx, domain.NotificationInput{
			UserID:     userID,
			FromUserID: removedBy,
			Type:       domain.NotificationTeamKick,
			Message:    fmt.Sprintf("You have been removed from team %s", team.Name),
			Link:       strPtr(team.ID),
		})
	}
	return nil
}

func (s *teamService) ChangeLeader(ctx context.Context, teamID, newLeaderID string) (*domain.Team, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	var team *domain.Team
	err := s.store.Atomic(ctx, func(ctx context.Context, tx domain.Store) error {
		var err error
		team, err = tx.Teams().GetByID(ctx, teamID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: team %s does not exist", domain.ErrBadRequest, teamID)
			}
			return fmt.Errorf("get team: %w", err)
		}
		if err := userMustExist(ctx, s.users, newLeaderID, domain.ErrBadRequest); err != nil {
			return err
		}
		if err := tx.Teams().UpdateLeader(ctx, teamID, newLeaderID); err != nil {
			return fmt.Errorf("update leader: %w", err)
		}
		team.LeaderID = newLeaderID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

func (s *teamService) RenameTeam(ctx context.Context, teamID, name string) (*domain.Team, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	name, err := validateTeamName(name)
	if err != nil {
		return nil, err
	}

	var team *domain.Team
	err = s.store.Atomic(ctx, func(ctx context.Context, tx domain.Store) error {
		var err error
		team, _, err = lockTeam(ctx, tx, teamID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: team %s does not exist", domain.ErrNotFound, teamID)
			}
			return fmt.Errorf("lock team: %w", err)
		}
		if team.Name == name {
			return nil
		}
		if _, err := tx.Teams().GetByEventAndName(ctx, team.EventID, name); err == nil {
			return fmt.Errorf("%w: team name %q is already used in this event", domain.ErrConflict, name)
		} else if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("get team by name: %w", err)
		}
		if err := tx.Teams().UpdateName(ctx, teamID, name); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return fmt.Errorf("%w: team name %q is already used in this event", domain.ErrConflict, name)
			}
			return fmt.Errorf("update team name: %w", err)
		}
		team.Name = name
		return nil
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

func (s *teamService) DeleteTeam(ctx context.Context, teamID string) error {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.store.Atomic(ctx, func(ctx context.Context, tx domain.Store) error {
		if _, _, err := lockTeam(ctx, tx, teamID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: team %s does not exist", domain.ErrNotFound, teamID)
			}
			return fmt.Errorf("lock team: %w", err)
		}
		if _, err := tx.Participants().DeleteByTeamID(ctx, teamID); err != nil {
			return fmt.Errorf("delete team members: %w", err)
		}
		if _, err := tx.Invitations().DeleteByTeamID(ctx, teamID); err != nil {
			return fmt.Errorf("delete team invitations: %w", err)
		}
		if err := tx.Teams().Delete(ctx, teamID); err != nil {
			return fmt.Errorf("delete team: %w", err)
		}
		return nil
	})
}

func (s *teamService) details(ctx context.Context, team *domain.Team) (*domain.TeamDetails, error) {
	members, err := s.store.Participants().ListByTeamID(ctx, team.ID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	invitations, err := s.store.Invitations().ListByTeamID(ctx, team.ID)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	return &domain.TeamDetails{Team: *team, Members: members, Invitations: invitations}, nil
}

func (s *teamService) GetTeam(ctx context.Context, teamID string) (*domain.TeamDetails, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	team, err := s.store.Teams().GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: team %s does not exist", domain.ErrNotFound, teamID)
		}
		return nil, fmt.Errorf("get team: %w", err)
	}
	return s.details(ctx, team)
}

func (s *teamService) ListTeamsByEvent(ctx context.Context, eventID string) ([]*domain.TeamDetails, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.store.Events().GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: event %s does not exist", domain.ErrNotFound, eventID)
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !domain.EventAllowsTeams(event) {
		return nil, fmt.Errorf("%w: event does not allow teams", domain.ErrBadRequest)
	}
	teams, err := s.store.Teams().ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	result := make([]*domain.TeamDetails, 0, len(teams))
	for _, team := range teams {
		d, err := s.details(ctx, team)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, nil
}

func (s *teamService) IsMember(ctx context.Context, teamID, userID string) (bool, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	_, err := s.store.Participants().GetByTeamAndUser(ctx, teamID, userID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("get member: %w", err)
}

func (s *teamService) IsLeader(ctx context.Context, teamID, userID string) (bool, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	team, err := s.store.Teams().GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get team: %w", err)
	}
	return team.LeaderID == userID, nil
}

func (s *teamService) ListInvitations(ctx context.Context, teamID string) ([]*domain.Invitation, error) {
	ctx, cancel := withTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.store.Teams().GetByID(ctx, teamID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: team %s does not exist", domain.ErrBadRequest, teamID)
		}
		return nil, fmt.Errorf("get team: %w", err)
	}
	invitations, err := s.store.Invitations().ListByTeamID(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	return invitations, nil
}
