package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"eventteams/internal/domain"
	"eventteams/internal/repository/memory"
	"eventteams/internal/repository/postgres"
)

// Ids are opaque to callers; the Postgres store rejects non-UUID text with SQLSTATE 22P02.
func malformedUUID(id string) error {
	return &pq.Error{Code: "22P02", Message: `invalid input syntax for type uuid: "` + id + `"`}
}

func TestPostgresStore_MalformedIDs(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserDirectory()
	users.AddUser("u1", false)
	users.AddUser("u2", false)
	clock := domain.FixedClock(baseTime)

	t.Run("join unknown event", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`FOR UPDATE`).WithArgs("nope").WillReturnError(malformedUUID("nope"))
		mock.ExpectRollback()

		svc := NewRegistrationService(postgres.NewStore(db), users, clock, time.Second)
		_, err = svc.JoinSolo(ctx, "nope", "u1", false)
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invite to unknown team", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM teams`).WithArgs("abc").WillReturnError(malformedUUID("abc"))

		store := postgres.NewStore(db)
		teams := NewTeamService(store, users, &recordingSink{}, clock, time.Second)
		svc := NewInvitationService(store, users, teams, &recordingSink{}, clock, time.Second)
		_, err = svc.Invite(ctx, "abc", "u2", "u1")
		require.ErrorIs(t, err, domain.ErrBadRequest)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("respond to unknown invitation", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM invitations`).WithArgs("x").WillReturnError(malformedUUID("x"))
		mock.ExpectRollback()

		store := postgres.NewStore(db)
		teams := NewTeamService(store, users, &recordingSink{}, clock, time.Second)
		svc := NewInvitationService(store, users, teams, &recordingSink{}, clock, time.Second)
		_, err = svc.Respond(ctx, "x", true)
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
