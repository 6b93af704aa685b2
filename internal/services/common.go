package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"eventteams/internal/domain"
)

const maxTeamNameLength = 64

// withTimeout bounds ctx by d. A non-positive d leaves ctx unbounded.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// userMustExist returns kind wrapped with a message when the directory does not know userID.
func userMustExist(ctx context.Context, users domain.UserDirectory, userID string, kind error) error {
	ok, err := users.Exists(ctx, userID)
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: user %s does not exist", kind, userID)
	}
	return nil
}

// participating reports whether userID already has a participant row for eventID.
func participating(ctx context.Context, tx domain.Store, eventID, userID string) (bool, error) {
	_, err := tx.Participants().GetByEventAndUser(ctx, eventID, userID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("get participant: %w", err)
}

// eventFull counts the event's participants and applies the cap.
func eventFull(ctx context.Context, tx domain.Store, event *domain.Event) (bool, error) {
	count, err := tx.Participants().CountByEventID(ctx, event.ID)
	if err != nil {
		return false, fmt.Errorf("count participants: %w", err)
	}
	return domain.EventIsFull(event, count), nil
}

// teamFull counts the team's members and applies the event's team size cap.
func teamFull(ctx context.Context, tx domain.Store, event *domain.Event, teamID string) (bool, error) {
	count, err := tx.Participants().CountByTeamID(ctx, teamID)
	if err != nil {
		return false, fmt.Errorf("count team members: %w", err)
	}
	return domain.TeamIsFull(event, count), nil
}

// lockTeam loads the team, locks its event and re-reads the team under the lock.
// A missing team or event is reported as domain.ErrNotFound.
func lockTeam(ctx context.Context, tx domain.Store, teamID string) (*domain.Team, *domain.Event, error) {
	team, err := tx.Teams().GetByID(ctx, teamID)
	if err != nil {
		return nil, nil, err
	}
	event, err := tx.Events().Lock(ctx, team.EventID)
	if err != nil {
		return nil, nil, err
	}
	team, err = tx.Teams().GetByID(ctx, teamID)
	if err != nil {
		return nil, nil, err
	}
	return team, event, nil
}

func validateTeamName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: team name is required", domain.ErrBadRequest)
	}
	if utf8.RuneCountInString(name) > maxTeamNameLength {
		return "", fmt.Errorf("%w: team name must not exceed %d characters", domain.ErrBadRequest, maxTeamNameLength)
	}
	return name, nil
}

func strPtr(s string) *string { return &s }
