// Package postgres implements the domain store on PostgreSQL through database/sql and lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"eventteams/internal/domain"
)

// DBTX is the subset of *sql.DB and *sql.Tx the repositories use.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is a domain.Store backed by PostgreSQL. Inside Atomic its repositories run on the transaction.
type Store struct {
	db *sql.DB
	q  DBTX
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, q: db}
}

type txKey struct{}

// Atomic runs fn in a READ COMMITTED transaction. Row locks taken through Events().Lock
// serialize competing units on the same event.
func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context, tx domain.Store) error) error {
	if _, ok := s.q.(*sql.Tx); ok {
		return fn(ctx, s)
	}
	if tx, ok := ctx.Value(txKey{}).(*Store); ok && tx.db == s.db {
		return fn(ctx, tx)
	}

	sqlTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = sqlTx.Rollback() }()

	tx := &Store{db: s.db, q: sqlTx}
	if err := fn(context.WithValue(ctx, txKey{}, tx), tx); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Store) Events() domain.EventRepository               { return NewEventRepository(s.q) }
func (s *Store) Teams() domain.TeamRepository                 { return NewTeamRepository(s.q) }
func (s *Store) Participants() domain.ParticipantRepository   { return NewParticipantRepository(s.q) }
func (s *Store) Invitations() domain.InvitationRepository     { return NewInvitationRepository(s.q) }
func (s *Store) Notifications() domain.NotificationRepository { return NewNotificationRepository(s.q) }

// isUniqueViolation reports a unique_violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var perr *pq.Error
	return errors.As(err, &perr) && perr.Code == "23505"
}

// isInvalidTextRepresentation reports invalid_text_representation (SQLSTATE 22P02), which
// PostgreSQL raises when a malformed id is compared with a UUID column.
func isInvalidTextRepresentation(err error) bool {
	var perr *pq.Error
	return errors.As(err, &perr) && perr.Code == "22P02"
}

// isNoRow reports a single-row lookup that matched nothing. A malformed id can match nothing either.
func isNoRow(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || isInvalidTextRepresentation(err)
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// isForeignKeyViolation reports a foreign_key_violation (SQLSTATE 23503).
func isForeignKeyViolation(err error) bool {
	var perr *pq.Error
	return errors.As(err, &perr) && perr.Code == "23503"
}
