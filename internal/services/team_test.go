package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventteams/internal/domain"
)

func TestCreateTeam_LeaderBecomesMember(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "u1")
	event := f.createEvent(t, withTeams(3))

	team, err := f.teams.CreateTeam(ctx, event.ID, "u1", "  Alpha  ")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", team.Name)
	assert.Equal(t, "u1", team.LeaderID)
	require.Len(t, team.Members, 1)
	require.NotNil(t, team.Members[0].TeamID)
	assert.Equal(t, team.ID, *team.Members[0].TeamID)
	assert.Empty(t, team.Invitations)

	isLeader, err := f.teams.IsLeader(ctx, team.ID, "u1")
	require.NoError(t, err)
	assert.True(t, isLeader)
	isMember, err := f.teams.IsMember(ctx, team.ID, "u1")
	require.NoError(t, err)
	assert.True(t, isMember)
}

func TestCreateTeam_NameUniquePerEvent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "u1", "u2", "u3")
	first := f.createEvent(t, withTeams(3))
	second := f.createEvent(t, withTeams(3))

	_, err := f.teams.CreateTeam(ctx, first.ID, "u1", "Alpha")
	require.NoError(t, err)

	_, err = f.teams.CreateTeam(ctx, first.ID, "u2", "Alpha")
	require.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.teams.CreateTeam(ctx, second.ID, "u3", "Alpha")
	require.NoError(t, err)
}

func TestCreateTeam_Errors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		setup   func(t *testing.T, f *fixture) (eventID, leaderID, teamName string)
		wantErr error
	}{
		{
			name: "event missing",
			setup: func(t *testing.T, f *fixture) (string, string, string) {
				return "missing", "u1", "Alpha"
			},
			wantErr: domain.ErrBadRequest,
		},
		{
			name: "leader missing",
			setup: func(t *testing.T, f *fixture) (string, string, string) {
				return f.createEvent(t, withTeams(3)).ID, "ghost", "Alpha"
			},
			wantErr: domain.ErrBadRequest,
		},
		{
			name: "outside window",
			setup: func(t *testing.T, f *fixture) (string, string, string) {
				e := f.createEvent(t, withTeams(3), withWindow(baseTime.Add(-2*time.Hour), baseTime.Add(-time.Hour)))
				return e.ID, "u1", "Alpha"
			},
			wantErr: domain.ErrConflict,
		},
		{
			name: "teams disallowed",
			setup: func(t *testing.T, f *fixture) (string, string, string) {
				return f.createEvent(t).ID, "u1", "Alpha"
			},
			wantErr: domain.ErrBadRequest,
		},
		{
			name: "leader already in another team",
			setup: func(t *testing.T, f *fixture) (string, string, string) {
				e := f.createEvent(t, withTeams(3))
				_, err := f.teams.CreateTeam(context.Background(), e.ID, "u1", "Beta")
				require.NoError(t, err)
				return e.ID, "u1", "Alpha"
			},
			wantErr: domain.ErrConflict,
		},
		{
			name: "event full",
			setup: func(t *testing.T, f *fixture) (string, string, string) {
				e := f.createEvent(t, withTeams(3), withMaxParticipants(1))
				_, err := f.teams.CreateTeam(context.Background(), e.ID, "u2", "Beta")
				require.NoError(t, err)
				return e.ID, "u1", "Alpha"
			},
			wantErr: domain.ErrConflict,
		},
		{
			name: "blank name",
			setup: func(t *testing.T, f *fixture) (string, string, string) {
				return f.createEvent(t, withTeams(3)).ID, "u1", "   "
			},
			wantErr: domain.ErrBadRequest,
		},
		{
			name: "name too long",
			setup: func(t *testing.T, f *fixture) (string, string, string) {
				return f.createEvent(t, withTeams(3)).ID, "u1", strings.Repeat("x", 65)
			},
			wantErr: domain.ErrBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "u1", "u2")
			eventID, leaderID, name := tt.setup(t, f)
			_, err := f.teams.CreateTeam(ctx, eventID, leaderID, name)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAddMember(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "u1", "u2", "u3", "u4")
	event := f.createEvent(t, withTeams(2))
	team, err := f.teams.CreateTeam(ctx, event.ID, "u1", "Alpha")
	require.NoError(t, err)

	_, err = f.invitations.Invite(ctx, team.ID, "u2", "u1")
	require.NoError(t, err)

	p, err := f.teams.AddMember(ctx, team.ID, "u2")
	require.NoError(t, err)
	assert.Equal(t, team.ID, *p.TeamID)
	assert.Equal(t, event.ID, p.EventID)

	_, err = f.invitations.GetByTeamAndInvitee(ctx, team.ID, "u2")
	require.ErrorIs(t, err, domain.ErrNotFound, "direct add must clear the pending invitation")

	_, err = f.teams.AddMember(ctx, team.ID, "u3")
	require.ErrorIs(t, err, domain.ErrConflict, "team is full")

	_, err = f.teams.AddMember(ctx, "missing", "u3")
	require.ErrorIs(t, err, domain.ErrBadRequest)

	_, err = f.teams.AddMember(ctx, team.ID, "ghost")
	require.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestAddMember_UserAlreadyInEvent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "u1", "u2")
	event := f.createEvent(t, withTeams(3))
	alpha, err := f.teams.CreateTeam(ctx, event.ID, "u1", "Alpha")
	require.NoError(t, err)
	_, err = f.teams.CreateTeam(ctx, event.ID, "u2", "Beta")
	require.NoError(t, err)

	_, err = f.teams.AddMember(ctx, alpha.ID, "u2")
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 2, f.participantCount(t, event.ID))
}

func TestAddMember_ConcurrentAddsNeverExceedTeamSize(t *testing.T) {
	const teamSize = 4
	users := []string{"leader"}
	for i := 0; i < 12; i++ {
		users = append(users, fmt.Sprintf("user-%d", i))
	}
	f := newFixture(t, users...)
	event := f.createEvent(t, withTeams(teamSize))
	team, err := f.teams.CreateTeam(context.Background(), event.ID, "leader", "Alpha")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, userID := range users[1:] {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			_, _ = f.teams.AddMember(context.Background(), team.ID, userID)
		}(userID)
	}
	wg.Wait()

	assert.Equal(t, teamSize, f.teamSize(t, team.ID))
}

func TestRemoveMember(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "u1", "u2", "u3")
	event := f.createEvent(t, withTeams(3))
	team, err := f.teams.CreateTeam(ctx, event.ID, "u1", "Alpha")
	require.NoError(t, err)
	_, err = f.teams.AddMember(ctx, team.ID, "u2")
	require.NoError(t, err)
	_, err = f.teams.AddMember(ctx, team.ID, "u3")
	require.NoError(t, err)

	t.Run("second removal is a bad request", func(t *testing.T) {
		require.NoError(t, f.teams.RemoveMember(ctx, team.ID, "u2", nil))
		err := f.teams.RemoveMember(ctx, team.ID, "u2", nil)
		require.ErrorIs(t, err, domain.ErrBadRequest)
		assert.Empty(t, f.sink.ofType(domain.NotificationTeamKick), "self-leave does not notify")
	})

	t.Run("kick notifies the removed user", func(t *testing.T) {
		leader := "u1"
		require.NoError(t, f.teams.RemoveMember(ctx, team.ID, "u3", &leader))
		kicks := f.sink.ofType(domain.NotificationTeamKick)
		require.Len(t, kicks, 1)
		assert.Equal(t, "u3", kicks[0].UserID)
		require.NotNil(t, kicks[0].FromUserID)
		assert.Equal(t, "u1", *kicks[0].FromUserID)
		require.NotNil(t, kicks[0].Link)
		assert.Equal(t, team.ID, *kicks[0].Link)
	})

	t.Run("leader cannot be removed", func(t *testing.T) {
		err := f.teams.RemoveMember(ctx, team.ID, "u1", nil)
		require.ErrorIs(t, err, domain.ErrBadRequest)
		assert.Equal(t, 1, f.teamSize(t, team.ID))
	})

	t.Run("missing team", func(t *testing.T) {
		err := f.teams.RemoveMember(ctx, "missing", "u1", nil)
		require.ErrorIs(t, err, domain.ErrBadRequest)
	})
}

func TestChangeLeader(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "u1", "u2")
	event := f.createEvent(t, withTeams(3))
	team, err := f.teams.CreateTeam(ctx, event.ID, "u1", "Alpha")
	require.NoError(t, err)
	_, err = f.teams.AddMember(ctx, team.ID, "u2")
	require.NoError(t, err)

	updated, err := f.teams.ChangeLeader(ctx, team.ID, "u2")
	require.NoError(t, err)
	assert.Equal(t, "u2", updated.LeaderID)

	// The former leader is now an ordinary member and may leave.
	require.NoError(t, f.teams.RemoveMember(ctx, team.ID, "u1", nil))

	_, err = f.teams.ChangeLeader(ctx, "missing", "u2")
	require.ErrorIs(t, err, domain.ErrBadRequest)
	_, err = f.teams.ChangeLeader(ctx, team.ID, "ghost")
	require.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestRenameTeam(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "u1", "u2")
	event := f.createEvent(t, withTeams(3))
	alpha, err := f.teams.CreateTeam(ctx, event.ID, "u1", "Alpha")
	require.NoError(t, err)
	_, err = f.teams.CreateTeam(ctx, event.ID, "u2", "Beta")
	require.NoError(t, err)

	renamed, err := f.teams.RenameTeam(ctx, alpha.ID, "Gamma")
	require.NoError(t, err)
	assert.Equal(t, "Gamma", renamed.Name)

	_, err = f.teams.RenameTeam(ctx, alpha.ID, "Beta")
	require.ErrorIs(t, err, domain.ErrConflict)

	same, err := f.teams.RenameTeam(ctx, alpha.ID, "Gamma")
	require.NoError(t, err)
	assert.Equal(t, "Gamma", same.Name)

	_, err = f.teams.RenameTeam(ctx, "missing", "Delta")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteTeam_RemovesMembersAndInvitations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "u1", "u2", "u3")
	event := f.createEvent(t, withTeams(3))
	team, err := f.teams.CreateTeam(ctx, event.ID, "u1", "Alpha")
	require.NoError(t, err)
	_, err = f.teams.AddMember(ctx, team.ID, "u2")
	require.NoError(t, err)
	_, err = f.invitations.Invite(ctx, team.ID, "u3", "u1")
	require.NoError(t, err)

	require.NoError(t, f.teams.DeleteTeam(ctx, team.ID))

	assert.Equal(t, 0, f.participantCount(t, event.ID))
	invs, err := f.invitations.ListForUser(ctx, "u3")
	require.NoError(t, err)
	assert.Empty(t, invs)

	err = f.teams.DeleteTeam(ctx, team.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetTeamAndListTeamsByEvent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "u1", "u2", "u3")
	event := f.createEvent(t, withTeams(3))
	soloEvent := f.createEvent(t)
	team, err := f.teams.CreateTeam(ctx, event.ID, "u1", "Alpha")
	require.NoError(t, err)
	_, err = f.teams.AddMember(ctx, team.ID, "u2")
	require.NoError(t, err)
	_, err = f.invitations.Invite(ctx, team.ID, "u3", "u1")
	require.NoError(t, err)

	got, err := f.teams.GetTeam(ctx, team.ID)
	require.NoError(t, err)
	assert.Len(t, got.Members, 2)
	assert.Len(t, got.Invitations, 1)

	invs, err := f.teams.ListInvitations(ctx, team.ID)
	require.NoError(t, err)
	assert.Len(t, invs, 1)

	teams, err := f.teams.ListTeamsByEvent(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, "Alpha", teams[0].Name)

	_, err = f.teams.ListTeamsByEvent(ctx, soloEvent.ID)
	require.ErrorIs(t, err, domain.ErrBadRequest)
	_, err = f.teams.ListTeamsByEvent(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.teams.GetTeam(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.teams.ListInvitations(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrBadRequest)
}
