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

func TestTeamRepository_Create(t *testing.T) {
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
				mock.ExpectQuery(`INSERT INTO teams \(name, event_id, leader_id, created_at\)`).
					WithArgs("Alpha", "ev-1", "user-1", created).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("team-1"))
			},
			wantID: "team-1",
		},
		{
			name: "duplicate name returns ErrConflict",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO teams`).WillReturnError(&pq.Error{Code: "23505"})
			},
			wantErr: domain.ErrConflict,
		},
		{
			name: "missing event returns ErrNotFound",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO teams`).WillReturnError(&pq.Error{Code: "23503"})
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			team := &domain.Team{Name: "Alpha", EventID: "ev-1", LeaderID: "user-1", CreatedAt: created}
			err = NewTeamRepository(db).Create(ctx, team)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, team.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTeamRepository_GetByEventAndName(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, name, event_id, leader_id, created_at FROM teams WHERE event_id = \$1 AND name = \$2`).
			WithArgs("ev-1", "Alpha").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "event_id", "leader_id", "created_at"}).
				AddRow("team-1", "Alpha", "ev-1", "user-1", created))

		team, err := NewTeamRepository(db).GetByEventAndName(ctx, "ev-1", "Alpha")
		require.NoError(t, err)
		require.Equal(t, &domain.Team{ID: "team-1", Name: "Alpha", EventID: "ev-1", LeaderID: "user-1", CreatedAt: created}, team)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, name`).WillReturnError(sql.ErrNoRows)
		_, err = NewTeamRepository(db).GetByEventAndName(ctx, "ev-1", "Alpha")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestTeamRepository_UpdateName(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE teams SET name = \$1 WHERE id = \$2`).
					WithArgs("Beta", "team-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "collision returns ErrConflict",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE teams SET name`).WillReturnError(&pq.Error{Code: "23505"})
			},
			wantErr: domain.ErrConflict,
		},
		{
			name: "missing team returns ErrNotFound",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE teams SET name`).WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			err = NewTeamRepository(db).UpdateName(ctx, "team-1", "Beta")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTeamRepository_UpdateLeaderAndDelete(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE teams SET leader_id = \$1 WHERE id = \$2`).
		WithArgs("user-2", "team-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM teams WHERE id = \$1`).
		WithArgs("team-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewTeamRepository(db)
	require.NoError(t, repo.UpdateLeader(ctx, "team-1", "user-2"))
	require.NoError(t, repo.Delete(ctx, "team-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
