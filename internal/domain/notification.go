package domain

import (
	"context"
	"time"
)

// NotificationType enumerates what a notification is about.
type NotificationType string

const (
	NotificationTeamInvitation       NotificationType = "TEAM_INVITATION"
	NotificationTeamInvitationDelete NotificationType = "TEAM_INVITATION_DELETE"
	NotificationInvitationAccepted   NotificationType = "INVITATION_ACCEPTED"
	NotificationInvitationDeclined   NotificationType = "INVITATION_DECLINED"
	NotificationTeamKick             NotificationType = "TEAM_KICK"
	NotificationGeneral              NotificationType = "GENERAL"
)

// Valid reports whether t is one of the known notification types.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationTeamInvitation, NotificationTeamInvitationDelete, NotificationInvitationAccepted,
		NotificationInvitationDeclined, NotificationTeamKick, NotificationGeneral:
		return true
	}
	return false
}

// Notification is an append-only fact addressed to a user.
// swagger:model Notification
type Notification struct {
	ID         string           `json:"id"`
	UserID     string           `json:"user_id"`
	FromUserID *string          `json:"from_user_id,omitempty"`
	Type       NotificationType `json:"type"`
	Message    string           `json:"message"`
	Link       *string          `json:"link,omitempty"`
	IsRead     bool             `json:"is_read"`
	CreatedAt  time.Time        `json:"created_at"`
}

// NotificationInput is what engines hand to a NotificationSink.
type NotificationInput struct {
	UserID     string
	FromUserID *string
	Type       NotificationType
	Message    string
	Link       *string
}

// NotificationSink receives fire-and-forget notifications. Notify must not block on
// delivery and never reports failure to the caller.
type NotificationSink interface {
	Notify(ctx context.Context, in NotificationInput)
}

// NotificationRepository defines storage operations for notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, id string) (*Notification, error)
	ListByUserID(ctx context.Context, userID string, unreadOnly bool) ([]*Notification, error)
	MarkRead(ctx context.Context, id string) (*Notification, error)
	Delete(ctx context.Context, id string) error
}

// NotificationService is the user-facing notification inbox.
type NotificationService interface {
	ListForUser(ctx context.Context, userID string, unreadOnly bool) ([]*Notification, error)
	Get(ctx context.Context, id string) (*Notification, error)
	MarkRead(ctx context.Context, id string) (*Notification, error)
	Delete(ctx context.Context, id string) error
	// Broadcast queues a GENERAL notification for every user and returns how many were queued.
	Broadcast(ctx context.Context, userIDs []string, fromUserID *string, message string, link *string) (int, error)
}

// NotificationPublisher pushes a persisted notification to an external broker for realtime delivery.
type NotificationPublisher interface {
	Publish(ctx context.Context, n *Notification) error
	Close() error
}
