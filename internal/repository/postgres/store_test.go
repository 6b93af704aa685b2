package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"eventteams/internal/domain"
)

func TestStore_AtomicCommits(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO participants`).
		WithArgs("ev-1", "user-1", nil, created).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	store := NewStore(db)
	err = store.Atomic(context.Background(), func(ctx context.Context, tx domain.Store) error {
		return tx.Participants().Create(ctx, domain.NewParticipant("ev-1", "user-1", nil, created))
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_AtomicRollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err = NewStore(db).Atomic(context.Background(), func(ctx context.Context, tx domain.Store) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_NestedAtomicJoinsTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM invitations WHERE id = \$1`).
		WithArgs("inv-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM participants WHERE team_id = \$1`).
		WithArgs("team-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	store := NewStore(db)
	err = store.Atomic(context.Background(), func(ctx context.Context, tx domain.Store) error {
		if err := tx.Invitations().Delete(ctx, "inv-1"); err != nil {
			return err
		}
		// Only one BEGIN is expected: the inner unit must reuse the outer transaction.
		return store.Atomic(ctx, func(ctx context.Context, inner domain.Store) error {
			_, err := inner.Participants().DeleteByTeamID(ctx, "team-1")
			return err
		})
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_AtomicBeginError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	called := false
	err = NewStore(db).Atomic(context.Background(), func(ctx context.Context, tx domain.Store) error {
		called = true
		return nil
	})
	require.ErrorContains(t, err, "begin transaction")
	require.False(t, called)
}
