// Package memory is an in-process implementation of domain.Store.
// Atomic units are serialized by a single mutex and rolled back by restoring a snapshot.
package memory

import (
	"context"
	"sync"

	"eventteams/internal/domain"
)

type participantKey struct {
	eventID string
	userID  string
}

type tables struct {
	events        map[string]*domain.Event
	teams         map[string]*domain.Team
	participants  map[participantKey]*domain.Participant
	invitations   map[string]*domain.Invitation
	notifications map[string]*domain.Notification
}

func newTables() *tables {
	return &tables{
		events:        make(map[string]*domain.Event),
		teams:         make(map[string]*domain.Team),
		participants:  make(map[participantKey]*domain.Participant),
		invitations:   make(map[string]*domain.Invitation),
		notifications: make(map[string]*domain.Notification),
	}
}

// clone copies the maps. Values are never mutated in place, so sharing them is safe.
func (t *tables) clone() *tables {
	c := newTables()
	for k, v := range t.events {
		c.events[k] = v
	}
	for k, v := range t.teams {
		c.teams[k] = v
	}
	for k, v := range t.participants {
		c.participants[k] = v
	}
	for k, v := range t.invitations {
		c.invitations[k] = v
	}
	for k, v := range t.notifications {
		c.notifications[k] = v
	}
	return c
}

// Store is an in-memory domain.Store.
type Store struct {
	mu   *sync.Mutex
	data *tables
	inTx bool
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{mu: &sync.Mutex{}, data: newTables()}
}

type txKey struct{}

// Atomic serializes fn against every other atomic unit and every single operation on the store.
func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context, tx domain.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}
	if tx, ok := ctx.Value(txKey{}).(*Store); ok && tx.data == s.data {
		return fn(ctx, tx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	tx := &Store{mu: s.mu, data: s.data, inTx: true}
	if err := fn(context.WithValue(ctx, txKey{}, tx), tx); err != nil {
		*s.data = *snapshot
		return err
	}
	return nil
}

// lock guards a single operation. Inside an atomic unit the mutex is already held.
func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) Events() domain.EventRepository               { return &eventRepository{s: s} }
func (s *Store) Teams() domain.TeamRepository                 { return &teamRepository{s: s} }
func (s *Store) Participants() domain.ParticipantRepository   { return &participantRepository{s: s} }
func (s *Store) Invitations() domain.InvitationRepository     { return &invitationRepository{s: s} }
func (s *Store) Notifications() domain.NotificationRepository { return &notificationRepository{s: s} }
