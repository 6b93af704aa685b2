package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"eventteams/internal/domain"
)

func TestInvitationRepository_Create(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantID  string
		wantErr error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO invitations \(team_id, event_id, invited_id, invited_by_id, created_at\)`).
					WithArgs("team-1", "ev-1", "user-2", "user-1", created).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("inv-1"))
			},
			wantID: "inv-1",
		},
		{
			name: "pending invitation returns ErrConflict",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO invitations`).WillReturnError(&pq.Error{Code: "23505"})
			},
			wantErr: domain.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			inv := &domain.Invitation{TeamID: "team-1", EventID: "ev-1", InvitedID: "user-2", InvitedByID: "user-1", CreatedAt: created}
			err = NewInvitationRepository(db).Create(ctx, inv)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, inv.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestInvitationRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, team_id, event_id, invited_id, invited_by_id, created_at FROM invitations WHERE id = \$1`).
			WithArgs("inv-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "team_id", "event_id", "invited_id", "invited_by_id", "created_at"}).
				AddRow("inv-1", "team-1", "ev-1", "user-2", "user-1", created))

		inv, err := NewInvitationRepository(db).GetByID(ctx, "inv-1")
		require.NoError(t, err)
		require.Equal(t, &domain.Invitation{
			ID: "inv-1", TeamID: "team-1", EventID: "ev-1", InvitedID: "user-2", InvitedByID: "user-1", CreatedAt: created,
		}, inv)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, team_id`).WithArgs("inv-1").WillReturnError(sql.ErrNoRows)
		_, err = NewInvitationRepository(db).GetByID(ctx, "inv-1")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestInvitationRepository_ListByInvitedID_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, team_id.* WHERE invited_id = \$1`).
		WithArgs("user-2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "team_id", "event_id", "invited_id", "invited_by_id", "created_at"}))

	got, err := NewInvitationRepository(db).ListByInvitedID(context.Background(), "user-2")
	require.NoError(t, err)
	require.Equal(t, []*domain.Invitation{}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvitationRepository_DeleteByTeamAndInvitee(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{name: "removed", affected: 1, want: true},
		{name: "nothing pending", affected: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectExec(`DELETE FROM invitations WHERE team_id = \$1 AND invited_id = \$2`).
				WithArgs("team-1", "user-2").
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			got, err := NewInvitationRepository(db).DeleteByTeamAndInvitee(ctx, "team-1", "user-2")
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestInvitationRepository_Delete_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM invitations WHERE id = \$1`).
		WithArgs("inv-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewInvitationRepository(db).Delete(context.Background(), "inv-1")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
