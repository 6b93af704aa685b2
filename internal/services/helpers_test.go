package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"eventteams/internal/domain"
	"eventteams/internal/repository/memory"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type recordingSink struct {
	mu  sync.Mutex
	got []domain.NotificationInput
}

func (s *recordingSink) Notify(_ context.Context, in domain.NotificationInput) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, in)
}

func (s *recordingSink) ofType(t domain.NotificationType) []domain.NotificationInput {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.NotificationInput
	for _, in := range s.got {
		if in.Type == t {
			out = append(out, in)
		}
	}
	return out
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.got)
}

type fixture struct {
	store         *memory.Store
	users         *memory.UserDirectory
	sink          *recordingSink
	clock         *testClock
	events        domain.EventService
	registrations domain.RegistrationService
	teams         domain.TeamService
	invitations   domain.InvitationService
	notifications domain.NotificationService
}

func newFixture(t *testing.T, userIDs ...string) *fixture {
	t.Helper()
	f := &fixture{
		store: memory.NewStore(),
		users: memory.NewUserDirectory(),
		sink:  &recordingSink{},
		clock: &testClock{now: baseTime},
	}
	for _, id := range userIDs {
		f.users.AddUser(id, false)
	}
	timeout := 5 * time.Second
	f.events = NewEventService(f.store, f.clock, timeout)
	f.registrations = NewRegistrationService(f.store, f.users, f.clock, timeout)
	f.teams = NewTeamService(f.store, f.users, f.sink, f.clock, timeout)
	f.invitations = NewInvitationService(f.store, f.users, f.teams, f.sink, f.clock, timeout)
	f.notifications = NewNotificationService(f.store.Notifications(), f.sink, timeout)
	return f
}

type eventOption func(*domain.Event)

func withMaxParticipants(n int) eventOption {
	return func(e *domain.Event) { e.MaxParticipants = &n }
}

func withTeams(maxTeamSize int) eventOption {
	return func(e *domain.Event) {
		e.AllowTeams = true
		e.MaxTeamSize = &maxTeamSize
	}
}

func withWindow(start, end time.Time) eventOption {
	return func(e *domain.Event) {
		e.RegistrationStart = &start
		e.RegistrationEnd = &end
	}
}

func withoutWindow() eventOption {
	return func(e *domain.Event) {
		e.RegistrationStart = nil
		e.RegistrationEnd = nil
	}
}

// createEvent creates an event whose registration window is open at baseTime.
func (f *fixture) createEvent(t *testing.T, opts ...eventOption) *domain.Event {
	t.Helper()
	start, end := baseTime.Add(-time.Hour), baseTime.Add(time.Hour)
	e := &domain.Event{Title: "Game Jam", RegistrationStart: &start, RegistrationEnd: &end}
	for _, opt := range opts {
		opt(e)
	}
	require.NoError(t, f.events.CreateEvent(context.Background(), e))
	return e
}

func (f *fixture) participantCount(t *testing.T, eventID string) int {
	t.Helper()
	n, err := f.store.Participants().CountByEventID(context.Background(), eventID)
	require.NoError(t, err)
	return n
}

func (f *fixture) teamSize(t *testing.T, teamID string) int {
	t.Helper()
	n, err := f.store.Participants().CountByTeamID(context.Background(), teamID)
	require.NoError(t, err)
	return n
}
