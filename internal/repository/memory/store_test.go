package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventteams/internal/domain"
)

func seedEvent(t *testing.T, s *Store) *domain.Event {
	t.Helper()
	e := &domain.Event{Title: "Hackathon", AllowTeams: true, CreatedAt: time.Now()}
	require.NoError(t, s.Events().Create(context.Background(), e))
	return e
}

func TestStore_AtomicRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	e := seedEvent(t, s)

	boom := errors.New("boom")
	err := s.Atomic(ctx, func(ctx context.Context, tx domain.Store) error {
		require.NoError(t, tx.Participants().Create(ctx, domain.NewParticipant(e.ID, "u1", nil, time.Now())))
		return boom
	})
	require.ErrorIs(t, err, boom)

	n, err := s.Participants().CountByEventID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestStore_AtomicCommits(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	e := seedEvent(t, s)

	err := s.Atomic(ctx, func(ctx context.Context, tx domain.Store) error {
		return tx.Participants().Create(ctx, domain.NewParticipant(e.ID, "u1", nil, time.Now()))
	})
	require.NoError(t, err)

	_, err = s.Participants().GetByEventAndUser(ctx, e.ID, "u1")
	require.NoError(t, err)
}

func TestStore_NestedAtomicJoinsOuterUnit(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	e := seedEvent(t, s)

	boom := errors.New("boom")
	err := s.Atomic(ctx, func(ctx context.Context, tx domain.Store) error {
		// Re-entering through the root store with the unit's ctx must not deadlock.
		inner := s.Atomic(ctx, func(ctx context.Context, tx domain.Store) error {
			return tx.Participants().Create(ctx, domain.NewParticipant(e.ID, "u1", nil, time.Now()))
		})
		require.NoError(t, inner)
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Participants().GetByEventAndUser(ctx, e.ID, "u1")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestParticipantRepository_UniquePerEvent(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	e := seedEvent(t, s)

	require.NoError(t, s.Participants().Create(ctx, domain.NewParticipant(e.ID, "u1", nil, time.Now())))
	err := s.Participants().Create(ctx, domain.NewParticipant(e.ID, "u1", nil, time.Now()))
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestTeamRepository_NameUniqueWithinEvent(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	e := seedEvent(t, s)
	other := seedEvent(t, s)

	require.NoError(t, s.Teams().Create(ctx, &domain.Team{Name: "Alpha", EventID: e.ID, LeaderID: "u1"}))
	require.ErrorIs(t, s.Teams().Create(ctx, &domain.Team{Name: "Alpha", EventID: e.ID, LeaderID: "u2"}), domain.ErrConflict)
	require.NoError(t, s.Teams().Create(ctx, &domain.Team{Name: "Alpha", EventID: other.ID, LeaderID: "u2"}))
}

func TestTeamRepository_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	e := seedEvent(t, s)

	team := &domain.Team{Name: "Alpha", EventID: e.ID, LeaderID: "u1"}
	require.NoError(t, s.Teams().Create(ctx, team))
	require.NoError(t, s.Participants().Create(ctx, domain.NewParticipant(e.ID, "u1", &team.ID, time.Now())))
	require.NoError(t, s.Invitations().Create(ctx, &domain.Invitation{TeamID: team.ID, EventID: e.ID, InvitedID: "u2", InvitedByID: "u1"}))

	require.NoError(t, s.Teams().Delete(ctx, team.ID))

	n, err := s.Participants().CountByEventID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	invs, err := s.Invitations().ListByInvitedID(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, invs)
}

func TestEventRepository_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	e := seedEvent(t, s)

	team := &domain.Team{Name: "Alpha", EventID: e.ID, LeaderID: "u1"}
	require.NoError(t, s.Teams().Create(ctx, team))
	require.NoError(t, s.Participants().Create(ctx, domain.NewParticipant(e.ID, "u1", &team.ID, time.Now())))

	require.NoError(t, s.Events().Delete(ctx, e.ID))

	_, err := s.Teams().GetByID(ctx, team.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.Participants().GetByEventAndUser(ctx, e.ID, "u1")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInvitationRepository(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	e := seedEvent(t, s)
	team := &domain.Team{Name: "Alpha", EventID: e.ID, LeaderID: "u1"}
	require.NoError(t, s.Teams().Create(ctx, team))

	inv := &domain.Invitation{TeamID: team.ID, EventID: e.ID, InvitedID: "u2", InvitedByID: "u1"}
	require.NoError(t, s.Invitations().Create(ctx, inv))
	assert.NotEmpty(t, inv.ID)

	dup := &domain.Invitation{TeamID: team.ID, EventID: e.ID, InvitedID: "u2", InvitedByID: "u1"}
	require.ErrorIs(t, s.Invitations().Create(ctx, dup), domain.ErrConflict)

	removed, err := s.Invitations().DeleteByTeamAndInvitee(ctx, team.ID, "u2")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.Invitations().DeleteByTeamAndInvitee(ctx, team.ID, "u2")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestReturnedValuesAreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	e := seedEvent(t, s)

	got, err := s.Events().GetByID(ctx, e.ID)
	require.NoError(t, err)
	got.Title = "changed"

	again, err := s.Events().GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hackathon", again.Title)
}

func TestNotificationRepository(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	now := time.Now()

	first := &domain.Notification{UserID: "u1", Type: domain.NotificationGeneral, Message: "a", CreatedAt: now}
	second := &domain.Notification{UserID: "u1", Type: domain.NotificationGeneral, Message: "b", CreatedAt: now.Add(time.Second)}
	require.NoError(t, s.Notifications().Create(ctx, first))
	require.NoError(t, s.Notifications().Create(ctx, second))

	read, err := s.Notifications().MarkRead(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	all, err := s.Notifications().ListByUserID(ctx, "u1", false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].Message)

	unread, err := s.Notifications().ListByUserID(ctx, "u1", true)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, second.ID, unread[0].ID)

	require.NoError(t, s.Notifications().Delete(ctx, first.ID))
	require.ErrorIs(t, s.Notifications().Delete(ctx, first.ID), domain.ErrNotFound)
}

func TestUserDirectory(t *testing.T) {
	ctx := context.Background()
	d := NewUserDirectory()
	d.AddUser("u1", false)
	require.NoError(t, d.GrantRole(ctx, "admin1", domain.RoleAdmin))

	ok, err := d.Exists(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = d.IsAdmin(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = d.IsAdmin(ctx, "admin1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = d.Exists(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, ok)
}
