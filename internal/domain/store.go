package domain

import (
	"context"
	"time"
)

// Store is the entity store shared by every engine. It is the only mutable shared resource.
type Store interface {
	Events() EventRepository
	Teams() TeamRepository
	Participants() ParticipantRepository
	Invitations() InvitationRepository
	Notifications() NotificationRepository

	// Atomic runs fn as one all-or-nothing unit. Repositories obtained from tx share the unit,
	// and the ctx passed to fn carries it: calling Atomic again with that ctx joins the unit
	// instead of starting a new one. If fn returns an error nothing fn wrote is kept.
	Atomic(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

// Clock returns the current time. Injected so registration windows can be tested.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }
